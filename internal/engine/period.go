package engine

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidPeriod marks every period parameter error so handlers can tell
// bad client input apart from downstream failures.
var ErrInvalidPeriod = errors.New("invalid period")

// Period is a concrete analysis window, bounds inclusive.
type Period struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// epochFloor bounds the "all" token so date arithmetic stays sane.
var epochFloor = time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)

// ResolvePeriod maps a symbolic token (7d|30d|3m|6m|1y|all|custom) anchored at
// now to a concrete window. For "custom" both bounds are required; a missing
// or unparseable bound is an error rather than a silent fallback.
func ResolvePeriod(token, customStart, customEnd string, now time.Time) (Period, error) {
	switch token {
	case "7d":
		return Period{Start: now.AddDate(0, 0, -7), End: now}, nil
	case "30d":
		return Period{Start: now.AddDate(0, 0, -30), End: now}, nil
	case "3m":
		return Period{Start: now.AddDate(0, -3, 0), End: now}, nil
	case "6m":
		return Period{Start: now.AddDate(0, -6, 0), End: now}, nil
	case "1y":
		return Period{Start: now.AddDate(-1, 0, 0), End: now}, nil
	case "all":
		return Period{Start: epochFloor, End: now}, nil
	case "custom":
		start, err := parseBound(customStart, false)
		if err != nil {
			return Period{}, fmt.Errorf("%w: custom start: %v", ErrInvalidPeriod, err)
		}
		end, err := parseBound(customEnd, true)
		if err != nil {
			return Period{}, fmt.Errorf("%w: custom end: %v", ErrInvalidPeriod, err)
		}
		if end.Before(start) {
			return Period{}, fmt.Errorf("%w: custom end before start", ErrInvalidPeriod)
		}
		return Period{Start: start, End: end}, nil
	default:
		return Period{}, fmt.Errorf("%w: unknown token %q", ErrInvalidPeriod, token)
	}
}

// parseBound accepts RFC3339 or a bare date. A bare date used as an end bound
// extends to the last millisecond of that day.
func parseBound(s string, endOfDay bool) (time.Time, error) {
	if s == "" {
		return time.Time{}, fmt.Errorf("missing date")
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q", s)
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Millisecond)
	}
	return t, nil
}

// Previous returns the immediately preceding window of equal duration,
// ending exactly 1ms before p.Start.
func (p Period) Previous() Period {
	d := p.End.Sub(p.Start)
	end := p.Start.Add(-time.Millisecond)
	return Period{Start: end.Add(-d), End: end}
}

// Contains reports whether t falls inside the window (bounds inclusive).
func (p Period) Contains(t time.Time) bool {
	return !t.Before(p.Start) && !t.After(p.End)
}

// TrailingPeriods returns n back-to-back windows for token, most recent
// first. Index 0 is the current window. Only repeating tokens qualify:
// "all" and "custom" have no meaningful previous window.
func TrailingPeriods(token string, now time.Time, n int) ([]Period, error) {
	if token == "all" || token == "custom" {
		return nil, fmt.Errorf("%w: %q cannot be repeated", ErrInvalidPeriod, token)
	}
	cur, err := ResolvePeriod(token, "", "", now)
	if err != nil {
		return nil, err
	}
	out := make([]Period, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, cur)
		cur = cur.Previous()
	}
	return out, nil
}
