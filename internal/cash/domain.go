package cash

import "time"

// Movement types. Orders and expenses flow into the position automatically;
// movements cover everything else crossing the till.
const (
	TypeOwnerInjection  = "owner_injection"
	TypeOwnerWithdrawal = "owner_withdrawal"
	TypeAdjustment      = "adjustment"
)

// Movement is one manual cash entry.
type Movement struct {
	TransactionID int64     `json:"transaction_id"`
	Date          time.Time `json:"date"`
	Type          string    `json:"type"`
	Amount        float64   `json:"amount"`
	Note          *string   `json:"note"`
	CreatedAt     time.Time `json:"created_at"`
}

// MovementInput is the write shape for movements.
type MovementInput struct {
	Date   string  `json:"date"`
	Type   string  `json:"type" validate:"required,oneof=owner_injection owner_withdrawal adjustment"`
	Amount float64 `json:"amount" validate:"required,gt=0"`
	Note   *string `json:"note"`
}

// Position is the derived cash standing. RecordedCash counts only money that
// actually moved; EstimatedCash adds receivables still expected on unpaid and
// partial orders. HasIncomplete flags that the two differ.
type Position struct {
	TotalPaid        float64 `json:"total_paid"`
	TotalExpenses    float64 `json:"total_expenses"`
	OwnerInjections  float64 `json:"owner_injections"`
	OwnerWithdrawals float64 `json:"owner_withdrawals"`
	RecordedCash     float64 `json:"recorded_cash"`
	UnpaidEstimate   float64 `json:"unpaid_estimate"`
	EstimatedCash    float64 `json:"estimated_cash"`
	HasIncomplete    bool    `json:"has_incomplete"`
}

// Overview is the cash page payload.
type Overview struct {
	Movements []Movement `json:"movements"`
	Position  Position   `json:"position"`
}

// BuildPosition assembles the position from its raw sums.
func BuildPosition(totalPaid, totalExpenses, injections, withdrawals, unpaidEstimate float64) Position {
	recorded := totalPaid - totalExpenses + (injections - withdrawals)
	return Position{
		TotalPaid:        totalPaid,
		TotalExpenses:    totalExpenses,
		OwnerInjections:  injections,
		OwnerWithdrawals: withdrawals,
		RecordedCash:     recorded,
		UnpaidEstimate:   unpaidEstimate,
		EstimatedCash:    recorded + unpaidEstimate,
		HasIncomplete:    unpaidEstimate > 0,
	}
}
