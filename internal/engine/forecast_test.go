package engine

import (
	"math"
	"testing"
)

func almostEqual(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestForecastMovingAverage(t *testing.T) {
	// index 0 = most recent period
	p := Forecast([]float64{1000, 1100, 900, 800})
	if !almostEqual(p.Forecast, 1000) {
		t.Fatalf("forecast: got %v, want 1000", p.Forecast)
	}
	if !almostEqual(p.GrowthPercent, 25) {
		t.Fatalf("growth: got %v, want 25", p.GrowthPercent)
	}
}

func TestForecastZeroOldest(t *testing.T) {
	p := Forecast([]float64{100, 100, 100, 0})
	if p.GrowthPercent != 0 {
		t.Fatalf("growth must be 0 when oldest is 0, got %v", p.GrowthPercent)
	}
	if !almostEqual(p.Forecast, 100) {
		t.Fatalf("forecast: got %v", p.Forecast)
	}
}

func TestForecastShortSeries(t *testing.T) {
	if p := Forecast(nil); p.Forecast != 0 || p.GrowthPercent != 0 {
		t.Fatalf("empty series: got %+v", p)
	}
	p := Forecast([]float64{200, 100})
	if !almostEqual(p.Forecast, 150) {
		t.Fatalf("2-value series: got %v, want 150", p.Forecast)
	}
	if !almostEqual(p.GrowthPercent, 50) {
		t.Fatalf("growth: got %v, want 50", p.GrowthPercent)
	}
}

func TestBuildForecast(t *testing.T) {
	periods := []PeriodMetrics{
		{Revenue: 1000, TransactionCount: 50, CustomerCount: 20, AvgBasket: 20},
		{Revenue: 1100, TransactionCount: 55, CustomerCount: 22, AvgBasket: 20},
		{Revenue: 900, TransactionCount: 45, CustomerCount: 18, AvgBasket: 20},
		{Revenue: 800, TransactionCount: 40, CustomerCount: 16, AvgBasket: 20},
	}
	r := BuildForecast(periods)
	if !almostEqual(r.Revenue.Forecast, 1000) || !almostEqual(r.Revenue.GrowthPercent, 25) {
		t.Fatalf("revenue projection: %+v", r.Revenue)
	}
	if !almostEqual(r.TransactionCount.Forecast, 50) {
		t.Fatalf("tx projection: %+v", r.TransactionCount)
	}
	if !almostEqual(r.AvgBasket.GrowthPercent, 0) {
		t.Fatalf("flat basket should have 0 growth: %+v", r.AvgBasket)
	}
	if len(r.Periods) != 4 {
		t.Fatalf("periods must be echoed back")
	}
}
