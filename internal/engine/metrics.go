package engine

import "time"

// NeverSeen is the recency sentinel for entities without a last event.
const NeverSeen = 100000

const msPerDay = 24 * 60 * 60 * 1000

// Margin is revenue minus cost.
func Margin(revenue, cost float64) float64 { return revenue - cost }

// MarginPercent returns the margin as a percentage of revenue, 0 when
// revenue is not positive. Never NaN or Inf.
func MarginPercent(revenue, cost float64) float64 {
	if revenue <= 0 {
		return 0
	}
	return Margin(revenue, cost) / revenue * 100
}

// AvgBasket returns revenue per transaction, 0 when there are none.
func AvgBasket(revenue float64, txCount int) float64 {
	if txCount <= 0 {
		return 0
	}
	return revenue / float64(txCount)
}

// RecencyDays returns whole days elapsed between last and now, or NeverSeen
// when last is the zero time.
func RecencyDays(last, now time.Time) int {
	if last.IsZero() {
		return NeverSeen
	}
	ms := now.UnixMilli() - last.UnixMilli()
	if ms < 0 {
		return 0
	}
	return int(ms / msPerDay)
}
