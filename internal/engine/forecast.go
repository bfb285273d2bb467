package engine

// PeriodMetrics holds one trailing window's headline aggregates. Slices of
// PeriodMetrics are ordered most recent first (index 0 = current window).
type PeriodMetrics struct {
	Period           Period  `json:"period"`
	Revenue          float64 `json:"revenue"`
	TransactionCount int     `json:"transaction_count"`
	CustomerCount    int     `json:"customer_count"`
	AvgBasket        float64 `json:"avg_basket"`
}

// Projection is a forecast value with its growth rate against the oldest
// observed period.
type Projection struct {
	Forecast      float64 `json:"forecast"`
	GrowthPercent float64 `json:"growth_percent"`
}

// ForecastReport projects the four headline metrics from trailing periods.
type ForecastReport struct {
	Periods          []PeriodMetrics `json:"periods"`
	Revenue          Projection      `json:"revenue"`
	TransactionCount Projection      `json:"transaction_count"`
	CustomerCount    Projection      `json:"customer_count"`
	AvgBasket        Projection      `json:"avg_basket"`
}

// Forecast projects a metric from a most-recent-first series: the mean of the
// up-to-3 most recent values, with growth measured against the oldest value
// (0 when the oldest is 0). A 3-period moving average, nothing fancier.
func Forecast(series []float64) Projection {
	if len(series) == 0 {
		return Projection{}
	}
	window := 3
	if len(series) < window {
		window = len(series)
	}
	var sum float64
	for _, v := range series[:window] {
		sum += v
	}
	forecast := sum / float64(window)
	oldest := series[len(series)-1]
	var growth float64
	if oldest != 0 {
		growth = (forecast - oldest) / oldest * 100
	}
	return Projection{Forecast: forecast, GrowthPercent: growth}
}

// BuildForecast assembles projections for every headline metric from the
// given trailing periods (most recent first).
func BuildForecast(periods []PeriodMetrics) ForecastReport {
	pick := func(f func(PeriodMetrics) float64) []float64 {
		out := make([]float64, len(periods))
		for i, p := range periods {
			out[i] = f(p)
		}
		return out
	}
	return ForecastReport{
		Periods:          periods,
		Revenue:          Forecast(pick(func(p PeriodMetrics) float64 { return p.Revenue })),
		TransactionCount: Forecast(pick(func(p PeriodMetrics) float64 { return float64(p.TransactionCount) })),
		CustomerCount:    Forecast(pick(func(p PeriodMetrics) float64 { return float64(p.CustomerCount) })),
		AvgBasket:        Forecast(pick(func(p PeriodMetrics) float64 { return p.AvgBasket })),
	}
}
