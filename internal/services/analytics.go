package services

import (
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/zelloapp/zello-backend/internal/engine"
	"github.com/zelloapp/zello-backend/internal/models"
)

// AnalyticsService loads a store's rows for a window and hands them to the
// engine. All arithmetic lives in the engine; this layer only fetches and
// maps. Now is injectable so handler tests get stable output.
type AnalyticsService struct {
	DB  *gorm.DB
	Now func() time.Time
}

func NewAnalyticsService(db *gorm.DB) *AnalyticsService {
	return &AnalyticsService{DB: db, Now: time.Now}
}

// loadInput fetches the window's transactions with their line items plus the
// store's full catalog and customer links.
func (s *AnalyticsService) loadInput(storeID uint, window engine.Period) (engine.Input, error) {
	var in engine.Input

	var txs []models.Transaction
	if err := s.DB.Where("store_id = ? AND timestamp BETWEEN ? AND ?", storeID, window.Start, window.End).
		Find(&txs).Error; err != nil {
		return in, err
	}
	txIDs := make([]uint, 0, len(txs))
	for _, tx := range txs {
		var customerID uint
		if tx.CustomerID != nil {
			customerID = *tx.CustomerID
		}
		in.Transactions = append(in.Transactions, engine.Transaction{
			ID:            tx.ID,
			Timestamp:     tx.Timestamp,
			CustomerID:    customerID,
			Total:         tx.Total,
			PointsAwarded: tx.PointsAwarded,
		})
		txIDs = append(txIDs, tx.ID)
	}

	if len(txIDs) > 0 {
		var items []models.TransactionItem
		if err := s.DB.Where("transaction_id IN ?", txIDs).Find(&items).Error; err != nil {
			return in, err
		}
		for _, it := range items {
			in.Items = append(in.Items, engine.LineItem{
				TransactionID: it.TransactionID,
				ProductID:     it.ProductID,
				Quantity:      it.Quantity,
				UnitPrice:     it.UnitPrice,
			})
		}
	}

	var products []models.Product
	if err := s.DB.Where("store_id = ?", storeID).Find(&products).Error; err != nil {
		return in, err
	}
	for _, p := range products {
		in.Products = append(in.Products, engine.Product{
			ID:            p.ID,
			Name:          p.Name,
			Category:      p.Category,
			PurchasePrice: p.PurchasePrice,
			SalePrice:     p.SalePrice,
		})
	}

	var links []models.CustomerStoreLink
	if err := s.DB.Preload("Customer").Where("store_id = ?", storeID).Find(&links).Error; err != nil {
		return in, err
	}
	for _, l := range links {
		var lastVisit time.Time
		if l.LastVisitAt != nil {
			lastVisit = *l.LastVisitAt
		}
		in.Customers = append(in.Customers, engine.CustomerLink{
			CustomerID:  l.CustomerID,
			Name:        customerName(l.Customer),
			Points:      l.Points,
			Visits:      l.Visits,
			VIP:         l.VIP,
			JoinedAt:    l.JoinedAt,
			LastVisitAt: lastVisit,
		})
	}
	return in, nil
}

func customerName(c models.Customer) string {
	return strings.TrimSpace(strings.TrimSpace(c.Prenom) + " " + strings.TrimSpace(c.Nom))
}

// Overview runs the full engine pipeline for the window.
func (s *AnalyticsService) Overview(storeID uint, window engine.Period) (engine.Result, error) {
	in, err := s.loadInput(storeID, window)
	if err != nil {
		return engine.Result{}, err
	}
	return engine.Compute(in, window, s.Now()), nil
}

// FrequentationResult bundles the visit buckets with the resolved window so
// clients can discard responses from superseded requests.
type FrequentationResult struct {
	Window engine.Period             `json:"window"`
	Stats  engine.FrequentationStats `json:"stats"`
}

// Frequentation aggregates visits by day, hour and weekday.
func (s *AnalyticsService) Frequentation(storeID uint, window engine.Period) (FrequentationResult, error) {
	in, err := s.loadInput(storeID, window)
	if err != nil {
		return FrequentationResult{}, err
	}
	txs := make([]engine.Transaction, 0, len(in.Transactions))
	for _, tx := range in.Transactions {
		if window.Contains(tx.Timestamp) {
			txs = append(txs, tx)
		}
	}
	return FrequentationResult{Window: window, Stats: engine.Frequentation(txs)}, nil
}

// periodMetrics computes one trailing window's headline numbers with SQL
// aggregates; no need to hydrate full rows for the forecast.
func (s *AnalyticsService) periodMetrics(storeID uint, p engine.Period) (engine.PeriodMetrics, error) {
	m := engine.PeriodMetrics{Period: p}
	row := struct {
		Revenue float64
		TxCount int
	}{}
	if err := s.DB.Model(&models.Transaction{}).
		Select("COALESCE(SUM(total),0) AS revenue, COUNT(*) AS tx_count").
		Where("store_id = ? AND timestamp BETWEEN ? AND ?", storeID, p.Start, p.End).
		Scan(&row).Error; err != nil {
		return m, err
	}
	m.Revenue = row.Revenue
	m.TransactionCount = row.TxCount

	var customerCount int64
	if err := s.DB.Model(&models.Transaction{}).
		Where("store_id = ? AND timestamp BETWEEN ? AND ? AND customer_id IS NOT NULL", storeID, p.Start, p.End).
		Distinct("customer_id").Count(&customerCount).Error; err != nil {
		return m, err
	}
	m.CustomerCount = int(customerCount)
	m.AvgBasket = engine.AvgBasket(m.Revenue, m.TransactionCount)
	return m, nil
}

// trailingWindows is how many periods feed the forecast: the current one
// plus three prior.
const trailingWindows = 4

// Forecast projects revenue, transaction count, customer count and average
// basket from trailing periods of the given token.
func (s *AnalyticsService) Forecast(storeID uint, token string) (engine.ForecastReport, error) {
	periods, err := engine.TrailingPeriods(token, s.Now(), trailingWindows)
	if err != nil {
		return engine.ForecastReport{}, err
	}
	metrics := make([]engine.PeriodMetrics, 0, len(periods))
	for _, p := range periods {
		m, err := s.periodMetrics(storeID, p)
		if err != nil {
			return engine.ForecastReport{}, err
		}
		metrics = append(metrics, m)
	}
	return engine.BuildForecast(metrics), nil
}

// SummaryResult carries the current window's headline numbers plus the
// previous equal-length window and period-over-period growth rates.
type SummaryResult struct {
	Window   engine.Period             `json:"window"`
	Current  engine.Summary            `json:"current"`
	Previous *engine.Summary           `json:"previous,omitempty"`
	Growth   map[string]float64        `json:"growth,omitempty"`
	Warnings []engine.DataQualityIssue `json:"warnings"`
}

// Summary computes the dashboard headline for the window; with compare set it
// also evaluates the immediately preceding window and growth rates.
func (s *AnalyticsService) Summary(storeID uint, window engine.Period, compare bool) (SummaryResult, error) {
	res, err := s.Overview(storeID, window)
	if err != nil {
		return SummaryResult{}, err
	}
	out := SummaryResult{Window: window, Current: res.Totals, Warnings: res.Warnings}
	if !compare {
		return out, nil
	}
	prevRes, err := s.Overview(storeID, window.Previous())
	if err != nil {
		return SummaryResult{}, err
	}
	prev := prevRes.Totals
	out.Previous = &prev
	out.Growth = map[string]float64{
		"revenue":           growthPercent(res.Totals.Revenue, prev.Revenue),
		"transaction_count": growthPercent(float64(res.Totals.TransactionCount), float64(prev.TransactionCount)),
		"avg_basket":        growthPercent(res.Totals.AvgBasket, prev.AvgBasket),
		"customer_count":    growthPercent(float64(res.Totals.CustomerCount), float64(prev.CustomerCount)),
	}
	return out, nil
}

func growthPercent(cur, prev float64) float64 {
	if prev == 0 {
		return 0
	}
	return (cur - prev) / prev * 100
}
