package engine

import (
	"math"
	"reflect"
	"testing"
	"time"
)

func fixtureInput(now time.Time) Input {
	ts := func(daysAgo int) time.Time { return now.AddDate(0, 0, -daysAgo) }
	return Input{
		Products: []Product{
			{ID: 1, Name: "Croissant", Category: "viennoiserie", PurchasePrice: 0.4, SalePrice: 1.2},
			{ID: 2, Name: "Baguette", Category: "pain", PurchasePrice: 0.3, SalePrice: 1.1},
			{ID: 3, Name: "Éclair", PurchasePrice: 1.0, SalePrice: 3.0}, // no category
		},
		Customers: []CustomerLink{
			{CustomerID: 10, Name: "Alice", Points: 120, Visits: 14, LastVisitAt: ts(2)},
			{CustomerID: 11, Name: "Bruno", Points: 10, Visits: 2, LastVisitAt: ts(100)},
		},
		Transactions: []Transaction{
			{ID: 100, Timestamp: ts(2), CustomerID: 10, Total: 24, PointsAwarded: 24},
			{ID: 101, Timestamp: ts(5), CustomerID: 10, Total: 11, PointsAwarded: 11},
			{ID: 102, Timestamp: ts(10), CustomerID: 0, Total: 3, PointsAwarded: 0},
			// outside any 30d window
			{ID: 103, Timestamp: ts(400), CustomerID: 11, Total: 50, PointsAwarded: 50},
		},
		Items: []LineItem{
			{TransactionID: 100, ProductID: 1, Quantity: 20, UnitPrice: 1.2},
			{TransactionID: 101, ProductID: 2, Quantity: 10, UnitPrice: 1.1},
			{TransactionID: 102, ProductID: 3, Quantity: 1, UnitPrice: 3.0},
			{TransactionID: 103, ProductID: 1, Quantity: 40, UnitPrice: 1.25},
		},
	}
}

func TestComputeRevenueConservation(t *testing.T) {
	now := testNow
	window, _ := ResolvePeriod("30d", "", "", now)
	res := Compute(fixtureInput(now), window, now)

	// Window keeps tx 100-102. Line-item revenue: 20*1.2 + 10*1.1 + 1*3.0.
	want := 20*1.2 + 10*1.1 + 3.0
	var got float64
	for _, p := range res.Products {
		got += p.Revenue
	}
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("product revenue %v, want %v", got, want)
	}
	if res.Totals.TransactionCount != 3 {
		t.Fatalf("expected 3 transactions in window, got %d", res.Totals.TransactionCount)
	}
	if res.Totals.Revenue != 38 {
		t.Fatalf("total revenue %v, want 38", res.Totals.Revenue)
	}
	if res.Totals.PointsAwarded != 35 {
		t.Fatalf("points awarded %v, want 35", res.Totals.PointsAwarded)
	}
}

func TestComputeIdempotent(t *testing.T) {
	now := testNow
	window, _ := ResolvePeriod("30d", "", "", now)
	in := fixtureInput(now)
	a := Compute(in, window, now)
	b := Compute(in, window, now)
	if !reflect.DeepEqual(a, b) {
		t.Fatal("repeated calls with identical input and now must match")
	}
}

func TestComputeClassificationCoverage(t *testing.T) {
	now := testNow
	window, _ := ResolvePeriod("30d", "", "", now)
	res := Compute(fixtureInput(now), window, now)

	if len(res.Products) != 3 {
		t.Fatalf("every product gets a stat, got %d", len(res.Products))
	}
	valid := map[string]bool{ClassA: true, ClassB: true, ClassC: true, ClassD: true}
	for _, p := range res.Products {
		if !valid[p.Class] {
			t.Fatalf("product %d has invalid class %q", p.ProductID, p.Class)
		}
	}
	if len(res.Customers) != 2 {
		t.Fatalf("every customer gets a stat, got %d", len(res.Customers))
	}
	for _, c := range res.Customers {
		if SegmentLabel(c.Segment) == c.Segment && c.Segment != "" {
			t.Fatalf("customer %d has unknown segment %q", c.CustomerID, c.Segment)
		}
	}
}

func TestComputeRankMonotonicity(t *testing.T) {
	now := testNow
	window, _ := ResolvePeriod("all", "", "", now)
	res := Compute(fixtureInput(now), window, now)
	order := map[string]int{ClassA: 0, ClassB: 1, ClassC: 2, ClassD: 3}
	prev := 0
	for _, p := range res.Products {
		if order[p.Class] < prev {
			t.Fatalf("class %s at rank %d after a worse class", p.Class, p.Rank)
		}
		prev = order[p.Class]
	}
}

func TestComputeTieBreakByProductID(t *testing.T) {
	now := testNow
	window, _ := ResolvePeriod("30d", "", "", now)
	in := Input{
		Products: []Product{
			{ID: 7, Name: "B"}, {ID: 3, Name: "A"},
		},
		Transactions: []Transaction{{ID: 1, Timestamp: now.AddDate(0, 0, -1), Total: 20}},
		Items: []LineItem{
			{TransactionID: 1, ProductID: 7, Quantity: 1, UnitPrice: 10},
			{TransactionID: 1, ProductID: 3, Quantity: 1, UnitPrice: 10},
		},
	}
	res := Compute(in, window, now)
	if res.Products[0].ProductID != 3 || res.Products[1].ProductID != 7 {
		t.Fatalf("equal revenue must order by ascending id, got %d then %d",
			res.Products[0].ProductID, res.Products[1].ProductID)
	}
}

func TestComputeEmptyWindow(t *testing.T) {
	now := testNow
	window, _ := ResolvePeriod("custom", "2001-01-01", "2001-01-31", now)
	res := Compute(fixtureInput(now), window, now)
	if res.Totals.Revenue != 0 || res.Totals.TransactionCount != 0 {
		t.Fatalf("empty window totals: %+v", res.Totals)
	}
	if res.Totals.AvgBasket != 0 || math.IsNaN(res.Totals.MarginPercent) {
		t.Fatalf("ratios must be 0, not NaN: %+v", res.Totals)
	}
	for _, p := range res.Products {
		if p.Revenue != 0 || math.IsNaN(p.MarginPercent) {
			t.Fatalf("product %d not zeroed: %+v", p.ProductID, p)
		}
	}
}

func TestComputeDataQualityWarnings(t *testing.T) {
	now := testNow
	window, _ := ResolvePeriod("30d", "", "", now)
	in := Input{
		Products: []Product{{ID: 1, Name: "P"}},
		Transactions: []Transaction{
			{ID: 1, Timestamp: now.AddDate(0, 0, -1), CustomerID: 99, Total: 10},
		},
		Items: []LineItem{
			{TransactionID: 1, ProductID: 1, Quantity: -2, UnitPrice: 5},
			{TransactionID: 1, ProductID: 42, Quantity: 1, UnitPrice: 5},
			{TransactionID: 77, ProductID: 1, Quantity: 1, UnitPrice: 5},
			{TransactionID: 1, ProductID: 1, Quantity: 1, UnitPrice: -5},
		},
	}
	res := Compute(in, window, now)
	got := map[string]int{}
	for _, w := range res.Warnings {
		got[w.Kind] = w.Count
	}
	want := map[string]int{
		IssueNegativeQuantity: 1,
		IssueUnknownProduct:   1,
		IssueOrphanLineItem:   1,
		IssueNegativePrice:    1,
		IssueUnknownCustomer:  1,
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("warnings %v, want %v", got, want)
	}
	// all malformed rows were skipped
	if res.Products[0].Revenue != 0 {
		t.Fatalf("malformed rows must not contribute revenue: %v", res.Products[0].Revenue)
	}
}

func TestComputeCustomerSegments(t *testing.T) {
	now := testNow
	window, _ := ResolvePeriod("30d", "", "", now)
	ts := now.AddDate(0, 0, -5)
	in := Input{
		Customers: []CustomerLink{{CustomerID: 1, Name: "Grosse Cliente", LastVisitAt: ts}},
	}
	// 12 transactions of 100 -> VIP (rule 1 matches before Loyal is checked)
	for i := 0; i < 12; i++ {
		in.Transactions = append(in.Transactions, Transaction{
			ID: uint(i + 1), Timestamp: ts, CustomerID: 1, Total: 100,
		})
	}
	res := Compute(in, window, now)
	if len(res.Customers) != 1 {
		t.Fatalf("expected 1 customer stat")
	}
	c := res.Customers[0]
	if c.Segment != SegmentVIP {
		t.Fatalf("revenue=%v tx=%d recency=%d: got %s, want vip", c.Revenue, c.TransactionCount, c.DaysSinceLastVisit, c.Segment)
	}
	if c.SegmentLabel != "VIP" {
		t.Fatalf("label: %s", c.SegmentLabel)
	}
	if c.AvgBasket != 100 {
		t.Fatalf("avg basket: %v", c.AvgBasket)
	}
}

func TestComputeFallbackCategory(t *testing.T) {
	now := testNow
	window, _ := ResolvePeriod("30d", "", "", now)
	res := Compute(fixtureInput(now), window, now)
	for _, p := range res.Products {
		if p.ProductID == 3 && p.Category != "non classé" {
			t.Fatalf("missing category should fall back, got %q", p.Category)
		}
	}
}

func TestFrequentationBuckets(t *testing.T) {
	day := time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC) // a Monday
	txs := []Transaction{
		{ID: 1, Timestamp: day.Add(9 * time.Hour), Total: 10},
		{ID: 2, Timestamp: day.Add(9*time.Hour + 30*time.Minute), Total: 5},
		{ID: 3, Timestamp: day.AddDate(0, 0, 1).Add(14 * time.Hour), Total: 7},
	}
	f := Frequentation(txs)
	if len(f.ByDay) != 2 {
		t.Fatalf("expected 2 day buckets, got %d", len(f.ByDay))
	}
	if f.ByDay[0].Key != "2026-08-24" || f.ByDay[0].Count != 2 || f.ByDay[0].Revenue != 15 {
		t.Fatalf("day bucket: %+v", f.ByDay[0])
	}
	if len(f.ByHour) != 24 || len(f.ByWeekday) != 7 {
		t.Fatalf("hour/weekday axes must be complete: %d/%d", len(f.ByHour), len(f.ByWeekday))
	}
	if f.ByHour[9].Count != 2 || f.ByHour[14].Count != 1 {
		t.Fatalf("hour buckets: 9h=%d 14h=%d", f.ByHour[9].Count, f.ByHour[14].Count)
	}
	if f.ByWeekday[1].Key != "lundi" || f.ByWeekday[1].Count != 2 {
		t.Fatalf("weekday bucket: %+v", f.ByWeekday[1])
	}
}

func TestSegmentCountsComplete(t *testing.T) {
	counts := SegmentCounts([]CustomerStat{{Segment: SegmentVIP}, {Segment: SegmentVIP}, {Segment: SegmentInactive}})
	if counts[SegmentVIP] != 2 || counts[SegmentInactive] != 1 {
		t.Fatalf("counts: %v", counts)
	}
	if _, ok := counts[SegmentOccasional]; !ok {
		t.Fatal("all segments must be present, zeros included")
	}
}
