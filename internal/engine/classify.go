package engine

// Product classes, best to worst.
const (
	ClassA = "A"
	ClassB = "B"
	ClassC = "C"
	ClassD = "D"
)

// Trend directions.
const (
	TrendUp     = "up"
	TrendStable = "stable"
	TrendDown   = "down"
)

// Customer segment codes.
const (
	SegmentVIP        = "vip"
	SegmentLoyal      = "loyal"
	SegmentRegular    = "regular"
	SegmentInactive   = "inactive"
	SegmentOccasional = "occasional"
)

const (
	// ABC thresholds (rank share and revenue share)
	abcTopRankShare  = 0.20
	abcMidRankShare  = 0.50
	abcLowRankShare  = 0.80
	abcTopRevenuePct = 5.0
	abcMidRevenuePct = 1.0

	// Trend thresholds (days since last sale)
	trendUpDays     = 7
	trendStableDays = 30

	// Customer segmentation thresholds
	vipRevenue         = 1000.0
	vipTxCount         = 10
	loyalTxCount       = 5
	loyalRecencyDays   = 30
	regularTxCount     = 3
	regularRecencyDays = 60
	inactiveRecency    = 90
)

// segmentLabels maps segment codes to the labels shown in the dashboard.
var segmentLabels = map[string]string{
	SegmentVIP:        "VIP",
	SegmentLoyal:      "Fidèle",
	SegmentRegular:    "Régulier",
	SegmentInactive:   "Inactif",
	SegmentOccasional: "Occasionnel",
}

// SegmentLabel returns the display label for a segment code.
func SegmentLabel(code string) string {
	if l, ok := segmentLabels[code]; ok {
		return l
	}
	return code
}

// ClassifyABC assigns the ABC class for the product at zero-indexed rank i of
// n products, where revenuePercent is its share of total revenue. The guards
// are checked in this exact order; they are not mutually exclusive and the
// first match wins.
func ClassifyABC(i, n int, revenuePercent float64) string {
	if n <= 0 {
		return ClassD
	}
	rankShare := float64(i) / float64(n)
	if rankShare <= abcTopRankShare || revenuePercent >= abcTopRevenuePct {
		return ClassA
	}
	if rankShare <= abcMidRankShare || revenuePercent >= abcMidRevenuePct {
		return ClassB
	}
	if rankShare <= abcLowRankShare {
		return ClassC
	}
	return ClassD
}

// ClassifyTrend derives the sales trend from days since the last sale.
func ClassifyTrend(daysSinceLastSold int) string {
	if daysSinceLastSold < trendUpDays {
		return TrendUp
	}
	if daysSinceLastSold < trendStableDays {
		return TrendStable
	}
	return TrendDown
}

// ClassifySegment assigns a customer segment from revenue, transaction count
// and recency. Ordered guard clauses, first match wins.
func ClassifySegment(revenue float64, txCount, recencyDays int) string {
	if revenue > vipRevenue && txCount > vipTxCount {
		return SegmentVIP
	}
	if txCount > loyalTxCount && recencyDays < loyalRecencyDays {
		return SegmentLoyal
	}
	if txCount > regularTxCount && recencyDays < regularRecencyDays {
		return SegmentRegular
	}
	if recencyDays > inactiveRecency {
		return SegmentInactive
	}
	return SegmentOccasional
}
