package dashboard

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuildRecommendationsScoresAndRanks(t *testing.T) {
	rows := []RecommendationRow{
		{ProductName: "Robe Ankara", RecentSales: 2, AvgPrice: 40000, EstCOGS: 10000},
		{ProductName: "Ensemble Wax", RecentSales: 6, AvgPrice: 30000, EstCOGS: 24000},
		{ProductName: "Jupe Plissée", RecentSales: 1, AvgPrice: 20000, EstCOGS: 18000},
		{ProductName: "Boubou", RecentSales: 4, AvgPrice: 35000, EstCOGS: 14000},
	}

	recs := BuildRecommendations(rows)
	require.Len(t, recs, 3)

	// Robe Ankara: margin 75%, score 75*0.5 + 2*10*0.5 = 47.5 -> 48.
	// Ensemble Wax: margin 20%, score 20*0.5 + 6*10*0.5 = 40.
	// Boubou: margin 60%, score 60*0.5 + 4*10*0.5 = 50.
	require.Equal(t, "Boubou", recs[0].ProductName)
	require.Equal(t, 50.0, recs[0].Score)
	require.Equal(t, "Robe Ankara", recs[1].ProductName)
	require.Equal(t, 48.0, recs[1].Score)
	require.Equal(t, "Ensemble Wax", recs[2].ProductName)
	require.Equal(t, 40.0, recs[2].Score)

	require.Equal(t, 60.0, recs[0].EstMarginPct)
	require.Contains(t, recs[0].Reason, "4 vente(s)")
	require.Contains(t, recs[0].Reason, "60%")
}

func TestBuildRecommendationsZeroPrice(t *testing.T) {
	recs := BuildRecommendations([]RecommendationRow{
		{ProductName: "Échantillon", RecentSales: 3, AvgPrice: 0, EstCOGS: 5000},
	})
	require.Len(t, recs, 1)
	require.Zero(t, recs[0].EstMarginPct)
	require.Equal(t, 15.0, recs[0].Score)
}
