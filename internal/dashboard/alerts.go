package dashboard

import (
	"fmt"
	"time"
)

// Tunable business thresholds. These are judgement calls about when the
// owner should be nudged, not invariants.
const (
	// dropPaceGate: pace alerts stay quiet during the first half of a drop,
	// early days are too noisy to judge.
	dropPaceGate = 0.5
	// paceTolerance: revenue may trail elapsed time by up to 30% before a
	// drop counts as behind.
	paceTolerance = 0.7
	// lowStockRatio: below this remaining share an item counts as low stock.
	lowStockRatio = 0.25
	// provisioningFactor: the production cash a pipeline order is assumed to
	// need, as a share of its selling price.
	provisioningFactor = 0.4
	// cashRiskCushion: recorded cash below this share of the provisioning
	// need triggers the treasury alert.
	cashRiskCushion = 0.5
)

// Alert severities, ordered.
const (
	AlertDanger  = "danger"
	AlertWarning = "warning"
	AlertInfo    = "info"
)

// Alert is one actionable signal for the owner.
type Alert struct {
	Type     string `json:"type"`
	Category string `json:"category"`
	Message  string `json:"message"`
	Count    int64  `json:"count,omitempty"`
	Action   string `json:"action"`
}

// DropPace is the pace input for one active drop.
type DropPace struct {
	DropName      string
	StartDate     *time.Time
	EndDate       *time.Time
	TargetRevenue *float64
	ActualRevenue float64
}

// CheckDropPace compares collected revenue against elapsed time. It returns
// a danger alert when the drop is past its gate and trailing beyond
// tolerance, and false when the drop is on pace or not assessable.
func CheckDropPace(drop DropPace, today time.Time) (Alert, bool) {
	if drop.StartDate == nil || drop.EndDate == nil || drop.TargetRevenue == nil || *drop.TargetRevenue <= 0 {
		return Alert{}, false
	}
	totalDays := drop.EndDate.Sub(*drop.StartDate).Hours() / 24
	if totalDays < 1 {
		totalDays = 1
	}
	daysPassed := today.Sub(*drop.StartDate).Hours() / 24
	if daysPassed < 0 {
		daysPassed = 0
	}
	expectedPct := daysPassed / totalDays
	actualPct := drop.ActualRevenue / *drop.TargetRevenue
	if expectedPct > dropPaceGate && actualPct < expectedPct*paceTolerance {
		return Alert{
			Type:     AlertDanger,
			Category: "drop_pace",
			Message: fmt.Sprintf("Drop %q est en retard : %d%% vs %d%% attendu",
				drop.DropName, int(actualPct*100+0.5), int(expectedPct*100+0.5)),
			Action: "drops",
		}, true
	}
	return Alert{}, false
}

// CheckStock classifies one item's remaining quantity. Out of stock beats
// low stock; healthy items return false.
func CheckStock(itemName string, quantity, remaining float64, unit *string) (Alert, bool) {
	if remaining <= 0 {
		return Alert{
			Type:     AlertDanger,
			Category: "inventory",
			Message:  fmt.Sprintf("Stock épuisé : %s", itemName),
			Action:   "inventory",
		}, true
	}
	ratio := 1.0
	if quantity > 0 {
		ratio = remaining / quantity
	}
	if ratio < lowStockRatio {
		unitLabel := ""
		if unit != nil {
			unitLabel = " " + *unit
		}
		return Alert{
			Type:     AlertWarning,
			Category: "inventory",
			Message: fmt.Sprintf("Stock faible : %s, %.2f%s restant (%d%%)",
				itemName, remaining, unitLabel, int(ratio*100+0.5)),
			Action: "inventory",
		}, true
	}
	return Alert{}, false
}

// CheckCashRisk flags a recorded position too thin to provision the pipeline.
// pipelineValue is the summed selling price of new and in-progress orders.
func CheckCashRisk(recordedCash, pipelineValue float64) (Alert, bool) {
	need := pipelineValue * provisioningFactor
	if recordedCash < need*cashRiskCushion {
		return Alert{
			Type:     AlertDanger,
			Category: "cash",
			Message: fmt.Sprintf("Risque trésorerie : position enregistrée (%.0f FCFA) peut être insuffisante",
				recordedCash),
			Action: "cash",
		}, true
	}
	return Alert{}, false
}
