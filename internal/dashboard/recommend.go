package dashboard

import (
	"fmt"
	"math"
	"sort"
)

// Recommendation weighting: half estimated margin, half recent demand, with
// each sale worth ten score points.
const (
	marginWeight   = 0.5
	demandWeight   = 0.5
	pointsPerSale  = 10
	recommendLimit = 3
	// recommendWindowDays is the trailing sales window recommendations look at.
	recommendWindowDays = 14
)

// RecommendationRow is one product's recent trading figures.
type RecommendationRow struct {
	ProductName string
	RecentSales int64
	AvgPrice    float64
	EstCOGS     float64
}

// Recommendation is a push-this-product suggestion with its rationale.
type Recommendation struct {
	ProductName  string  `json:"product_name"`
	RecentSales  int64   `json:"recent_sales"`
	AvgPrice     float64 `json:"avg_price"`
	EstCOGS      float64 `json:"est_cogs"`
	EstMarginPct float64 `json:"est_margin_pct"`
	Score        float64 `json:"score"`
	Reason       string  `json:"reason"`
}

// BuildRecommendations scores recent sellers and keeps the top three.
// Margin uses the product's default estimates against the average discounted
// price, so it is only as good as the catalog's cost assumptions.
func BuildRecommendations(rows []RecommendationRow) []Recommendation {
	recs := make([]Recommendation, 0, len(rows))
	for _, row := range rows {
		var marginPct float64
		if row.AvgPrice > 0 {
			marginPct = (row.AvgPrice - row.EstCOGS) / row.AvgPrice * 100
		}
		score := marginPct*marginWeight + float64(row.RecentSales)*pointsPerSale*demandWeight
		recs = append(recs, Recommendation{
			ProductName:  row.ProductName,
			RecentSales:  row.RecentSales,
			AvgPrice:     math.Round(row.AvgPrice),
			EstCOGS:      math.Round(row.EstCOGS),
			EstMarginPct: math.Round(marginPct),
			Score:        math.Round(score),
			Reason:       fmt.Sprintf("%d vente(s) récente(s), marge estimée %d%%", row.RecentSales, int(math.Round(marginPct))),
		})
	}
	sort.SliceStable(recs, func(i, j int) bool { return recs[i].Score > recs[j].Score })
	if len(recs) > recommendLimit {
		recs = recs[:recommendLimit]
	}
	return recs
}
