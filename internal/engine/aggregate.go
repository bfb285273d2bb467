package engine

import (
	"fmt"
	"sort"
	"time"
)

// groupBy folds records into buckets keyed by key, applying reduce to each
// record in a single pass. Callers must impose their own output ordering;
// map iteration order is never part of the contract.
func groupBy[R any, K comparable, A any](records []R, key func(R) K, reduce func(A, R) A) map[K]A {
	out := make(map[K]A)
	for _, r := range records {
		k := key(r)
		out[k] = reduce(out[k], r)
	}
	return out
}

// Data-quality issue kinds reported in the result envelope.
const (
	IssueNegativeQuantity = "negative_quantity"
	IssueNegativePrice    = "negative_unit_price"
	IssueUnknownProduct   = "unknown_product"
	IssueUnknownCustomer  = "unknown_customer"
	IssueOrphanLineItem   = "orphan_line_item"
)

// DataQualityIssue counts malformed rows skipped during aggregation.
type DataQualityIssue struct {
	Kind  string `json:"kind"`
	Count int    `json:"count"`
}

type issueCounter map[string]int

func (c issueCounter) add(kind string) { c[kind]++ }

func (c issueCounter) list() []DataQualityIssue {
	out := make([]DataQualityIssue, 0, len(c))
	for kind, n := range c {
		out = append(out, DataQualityIssue{Kind: kind, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Kind < out[j].Kind })
	return out
}

type productAcc struct {
	quantity int
	revenue  float64
	cost     float64
	txIDs    map[uint]struct{}
	lastSold time.Time
}

// aggregateProducts folds line items into per-product accumulators. Malformed
// rows are skipped and counted instead of propagated.
func aggregateProducts(items []LineItem, products map[uint]Product, txByID map[uint]Transaction, issues issueCounter) map[uint]*productAcc {
	accs := make(map[uint]*productAcc)
	for _, it := range items {
		tx, ok := txByID[it.TransactionID]
		if !ok {
			issues.add(IssueOrphanLineItem)
			continue
		}
		if it.Quantity < 0 {
			issues.add(IssueNegativeQuantity)
			continue
		}
		if it.UnitPrice < 0 {
			issues.add(IssueNegativePrice)
			continue
		}
		p, ok := products[it.ProductID]
		if !ok {
			issues.add(IssueUnknownProduct)
			continue
		}
		acc := accs[it.ProductID]
		if acc == nil {
			acc = &productAcc{txIDs: make(map[uint]struct{})}
			accs[it.ProductID] = acc
		}
		acc.quantity += it.Quantity
		acc.revenue += float64(it.Quantity) * it.UnitPrice
		acc.cost += float64(it.Quantity) * p.PurchasePrice
		acc.txIDs[it.TransactionID] = struct{}{}
		if tx.Timestamp.After(acc.lastSold) {
			acc.lastSold = tx.Timestamp
		}
	}
	return accs
}

type customerAcc struct {
	revenue float64
	txCount int
	points  int
	lastTx  time.Time
}

// aggregateCustomers folds transactions into per-customer accumulators.
// Anonymous sales (CustomerID 0) contribute to totals only. Transactions
// referencing a customer absent from links are counted as unknown_customer.
func aggregateCustomers(txs []Transaction, links map[uint]CustomerLink, issues issueCounter) map[uint]*customerAcc {
	accs := make(map[uint]*customerAcc)
	for _, tx := range txs {
		if tx.CustomerID == 0 {
			continue
		}
		if _, ok := links[tx.CustomerID]; !ok {
			issues.add(IssueUnknownCustomer)
			continue
		}
		acc := accs[tx.CustomerID]
		if acc == nil {
			acc = &customerAcc{}
			accs[tx.CustomerID] = acc
		}
		acc.revenue += tx.Total
		acc.txCount++
		acc.points += tx.PointsAwarded
		if tx.Timestamp.After(acc.lastTx) {
			acc.lastTx = tx.Timestamp
		}
	}
	return accs
}

// VisitBucket is one frequentation bucket (a day, an hour or a weekday).
type VisitBucket struct {
	Key     string  `json:"key"`
	Count   int     `json:"count"`
	Revenue float64 `json:"revenue"`
}

// FrequentationStats breaks transaction counts down by calendar day, hour of
// day and weekday.
type FrequentationStats struct {
	ByDay     []VisitBucket `json:"by_day"`
	ByHour    []VisitBucket `json:"by_hour"`
	ByWeekday []VisitBucket `json:"by_weekday"`
}

var weekdayLabels = [...]string{"dimanche", "lundi", "mardi", "mercredi", "jeudi", "vendredi", "samedi"}

type visitAcc struct {
	count   int
	revenue float64
}

// Frequentation aggregates transactions into day/hour/weekday buckets.
// Hour and weekday slices always carry all 24/7 buckets, zeros included, so
// charts render a full axis.
func Frequentation(txs []Transaction) FrequentationStats {
	reduce := func(a visitAcc, tx Transaction) visitAcc {
		a.count++
		a.revenue += tx.Total
		return a
	}
	byDay := groupBy(txs, func(tx Transaction) string { return tx.Timestamp.Format("2006-01-02") }, reduce)
	byHour := groupBy(txs, func(tx Transaction) int { return tx.Timestamp.Hour() }, reduce)
	byWeekday := groupBy(txs, func(tx Transaction) int { return int(tx.Timestamp.Weekday()) }, reduce)

	out := FrequentationStats{
		ByDay:     make([]VisitBucket, 0, len(byDay)),
		ByHour:    make([]VisitBucket, 0, 24),
		ByWeekday: make([]VisitBucket, 0, 7),
	}
	for day, a := range byDay {
		out.ByDay = append(out.ByDay, VisitBucket{Key: day, Count: a.count, Revenue: a.revenue})
	}
	sort.Slice(out.ByDay, func(i, j int) bool { return out.ByDay[i].Key < out.ByDay[j].Key })
	for h := 0; h < 24; h++ {
		a := byHour[h]
		out.ByHour = append(out.ByHour, VisitBucket{Key: fmt.Sprintf("%02dh", h), Count: a.count, Revenue: a.revenue})
	}
	for wd := 0; wd < 7; wd++ {
		a := byWeekday[wd]
		out.ByWeekday = append(out.ByWeekday, VisitBucket{Key: weekdayLabels[wd], Count: a.count, Revenue: a.revenue})
	}
	return out
}
