package portfolio

// Metrics holds the dashboard's top-line numbers for one render pass.
type Metrics struct {
	Balance         float64
	OpenPositions   int
	LatestPrice     *float64
	UnrealizedPnL   float64
	TotalCollateral float64
}

// ComputeMetrics aggregates the normalized positions into the header row.
func ComputeMetrics(balance float64, views []PositionView, latestPrice *float64) Metrics {
	m := Metrics{
		Balance:       balance,
		OpenPositions: len(views),
		LatestPrice:   latestPrice,
	}
	for _, v := range views {
		m.UnrealizedPnL += v.PnL
		m.TotalCollateral += v.Collateral
	}
	return m
}
