// Package engine computes the analytics shown in the Zello dashboard:
// per-product and per-customer aggregates, ABC classification, customer
// segmentation, frequentation and simple trailing-period forecasts.
//
// Everything here is pure: rows in, stats out, with the evaluation time
// injected so results are reproducible. Malformed rows never raise; they are
// skipped and surfaced as DataQualityIssue counts in the result envelope.
package engine

import (
	"sort"
	"time"
)

// Input rows, already scoped to one store. The storage layer maps its models
// into these before calling Compute.
type Transaction struct {
	ID            uint
	Timestamp     time.Time
	CustomerID    uint // 0 = anonymous sale
	Total         float64
	PointsAwarded int
}

type LineItem struct {
	TransactionID uint
	ProductID     uint
	Quantity      int
	UnitPrice     float64
}

type Product struct {
	ID            uint
	Name          string
	Category      string
	PurchasePrice float64
	SalePrice     float64
}

type CustomerLink struct {
	CustomerID  uint
	Name        string
	Points      int
	Visits      int
	VIP         bool
	JoinedAt    time.Time
	LastVisitAt time.Time // zero = never visited
}

// Input bundles the rows Compute operates on.
type Input struct {
	Transactions []Transaction
	Items        []LineItem
	Products     []Product
	Customers    []CustomerLink
}

// fallbackCategory replaces an absent product category.
const fallbackCategory = "non classé"

// ProductStat is the derived, per-window view of one product.
type ProductStat struct {
	ProductID         uint      `json:"product_id"`
	Name              string    `json:"name"`
	Category          string    `json:"category"`
	Rank              int       `json:"rank"`
	Quantity          int       `json:"quantity"`
	Revenue           float64   `json:"revenue"`
	RevenuePercent    float64   `json:"revenue_percent"`
	Cost              float64   `json:"cost"`
	Margin            float64   `json:"margin"`
	MarginPercent     float64   `json:"margin_percent"`
	TransactionCount  int       `json:"transaction_count"`
	AvgPrice          float64   `json:"avg_price"`
	LastSoldAt        time.Time `json:"last_sold_at"`
	DaysSinceLastSold int       `json:"days_since_last_sold"`
	Trend             string    `json:"trend"`
	Class             string    `json:"class"`
}

// CustomerStat is the derived, per-window view of one customer link.
type CustomerStat struct {
	CustomerID         uint    `json:"customer_id"`
	Name               string  `json:"name"`
	Revenue            float64 `json:"revenue"`
	TransactionCount   int     `json:"transaction_count"`
	AvgBasket          float64 `json:"avg_basket"`
	DaysSinceLastVisit int     `json:"days_since_last_visit"`
	Points             int     `json:"points"`
	Visits             int     `json:"visits"`
	VIP                bool    `json:"vip"`
	Segment            string  `json:"segment"`
	SegmentLabel       string  `json:"segment_label"`
}

// Summary holds the headline numbers for the window.
type Summary struct {
	Revenue          float64 `json:"revenue"`
	TransactionCount int     `json:"transaction_count"`
	AvgBasket        float64 `json:"avg_basket"`
	Margin           float64 `json:"margin"`
	MarginPercent    float64 `json:"margin_percent"`
	CustomerCount    int     `json:"customer_count"`
	PointsAwarded    int     `json:"points_awarded"`
}

// Result is the envelope returned by Compute. Deterministic for a fixed
// input and now.
type Result struct {
	Window    Period             `json:"window"`
	Products  []ProductStat      `json:"products"`
	Customers []CustomerStat     `json:"customers"`
	Totals    Summary            `json:"totals"`
	Warnings  []DataQualityIssue `json:"warnings"`
}

// Compute runs the full pipeline: window filter, aggregation, metric
// derivation, classification. Every product and customer in the input
// receives exactly one class/segment.
func Compute(in Input, window Period, now time.Time) Result {
	issues := issueCounter{}

	txs := make([]Transaction, 0, len(in.Transactions))
	txByID := make(map[uint]Transaction, len(in.Transactions))
	for _, tx := range in.Transactions {
		if !window.Contains(tx.Timestamp) {
			continue
		}
		txs = append(txs, tx)
		txByID[tx.ID] = tx
	}

	products := make(map[uint]Product, len(in.Products))
	for _, p := range in.Products {
		products[p.ID] = p
	}
	links := make(map[uint]CustomerLink, len(in.Customers))
	for _, l := range in.Customers {
		links[l.CustomerID] = l
	}

	prodAccs := aggregateProducts(in.Items, products, txByID, issues)
	custAccs := aggregateCustomers(txs, links, issues)

	res := Result{
		Window:    window,
		Products:  buildProductStats(in.Products, prodAccs, now),
		Customers: buildCustomerStats(in.Customers, custAccs, now),
		Warnings:  issues.list(),
	}
	res.Totals = buildSummary(txs, res.Products, custAccs)
	return res
}

func buildProductStats(products []Product, accs map[uint]*productAcc, now time.Time) []ProductStat {
	stats := make([]ProductStat, 0, len(products))
	var totalRevenue float64
	for _, acc := range accs {
		totalRevenue += acc.revenue
	}
	for _, p := range products {
		s := ProductStat{ProductID: p.ID, Name: p.Name, Category: p.Category}
		if s.Category == "" {
			s.Category = fallbackCategory
		}
		if acc := accs[p.ID]; acc != nil {
			s.Quantity = acc.quantity
			s.Revenue = acc.revenue
			s.Cost = acc.cost
			s.TransactionCount = len(acc.txIDs)
			s.LastSoldAt = acc.lastSold
		}
		s.Margin = Margin(s.Revenue, s.Cost)
		s.MarginPercent = MarginPercent(s.Revenue, s.Cost)
		if s.Quantity > 0 {
			s.AvgPrice = s.Revenue / float64(s.Quantity)
		}
		if totalRevenue > 0 {
			s.RevenuePercent = s.Revenue / totalRevenue * 100
		}
		s.DaysSinceLastSold = RecencyDays(s.LastSoldAt, now)
		s.Trend = ClassifyTrend(s.DaysSinceLastSold)
		stats = append(stats, s)
	}

	// Revenue descending; equal revenues ordered by ascending product id so
	// ranking is stable regardless of fetch order.
	sort.Slice(stats, func(i, j int) bool {
		if stats[i].Revenue != stats[j].Revenue {
			return stats[i].Revenue > stats[j].Revenue
		}
		return stats[i].ProductID < stats[j].ProductID
	})
	n := len(stats)
	for i := range stats {
		stats[i].Rank = i
		stats[i].Class = ClassifyABC(i, n, stats[i].RevenuePercent)
	}
	return stats
}

func buildCustomerStats(customers []CustomerLink, accs map[uint]*customerAcc, now time.Time) []CustomerStat {
	stats := make([]CustomerStat, 0, len(customers))
	for _, l := range customers {
		s := CustomerStat{
			CustomerID: l.CustomerID,
			Name:       l.Name,
			Points:     l.Points,
			Visits:     l.Visits,
			VIP:        l.VIP,
		}
		lastEvent := l.LastVisitAt
		if acc := accs[l.CustomerID]; acc != nil {
			s.Revenue = acc.revenue
			s.TransactionCount = acc.txCount
			if acc.lastTx.After(lastEvent) {
				lastEvent = acc.lastTx
			}
		}
		s.AvgBasket = AvgBasket(s.Revenue, s.TransactionCount)
		s.DaysSinceLastVisit = RecencyDays(lastEvent, now)
		s.Segment = ClassifySegment(s.Revenue, s.TransactionCount, s.DaysSinceLastVisit)
		s.SegmentLabel = SegmentLabel(s.Segment)
		stats = append(stats, s)
	}
	sort.Slice(stats, func(i, j int) bool {
		if stats[i].Revenue != stats[j].Revenue {
			return stats[i].Revenue > stats[j].Revenue
		}
		return stats[i].CustomerID < stats[j].CustomerID
	})
	return stats
}

func buildSummary(txs []Transaction, products []ProductStat, custAccs map[uint]*customerAcc) Summary {
	var s Summary
	for _, tx := range txs {
		s.Revenue += tx.Total
		s.TransactionCount++
		s.PointsAwarded += tx.PointsAwarded
	}
	s.AvgBasket = AvgBasket(s.Revenue, s.TransactionCount)
	var itemRevenue, itemCost float64
	for _, p := range products {
		itemRevenue += p.Revenue
		itemCost += p.Cost
	}
	s.Margin = Margin(itemRevenue, itemCost)
	s.MarginPercent = MarginPercent(itemRevenue, itemCost)
	s.CustomerCount = len(custAccs)
	return s
}

// SegmentCounts tallies customers per segment code. Every segment appears in
// the map, zeros included.
func SegmentCounts(stats []CustomerStat) map[string]int {
	counts := map[string]int{
		SegmentVIP:        0,
		SegmentLoyal:      0,
		SegmentRegular:    0,
		SegmentInactive:   0,
		SegmentOccasional: 0,
	}
	for _, s := range stats {
		counts[s.Segment]++
	}
	return counts
}
