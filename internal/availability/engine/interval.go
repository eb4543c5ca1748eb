package engine

import (
	"sort"
	"time"
)

// Interval is a half-open time range [Start, End).
type Interval struct {
	Start time.Time
	End   time.Time
}

// Empty reports whether the interval has zero or negative length.
func (iv Interval) Empty() bool { return !iv.End.After(iv.Start) }

// Duration returns the interval length.
func (iv Interval) Duration() time.Duration { return iv.End.Sub(iv.Start) }

// Covers reports whether [Start, End) fully contains other.
func (iv Interval) Covers(other Interval) bool {
	return !other.Start.Before(iv.Start) && !other.End.After(iv.End)
}

// Union merges a set of intervals into sorted, disjoint form. Overlapping and
// adjacent intervals collapse into one; empty intervals are dropped.
func Union(intervals []Interval) []Interval {
	in := make([]Interval, 0, len(intervals))
	for _, iv := range intervals {
		if !iv.Empty() {
			in = append(in, iv)
		}
	}
	if len(in) == 0 {
		return nil
	}
	sort.Slice(in, func(i, j int) bool { return in[i].Start.Before(in[j].Start) })

	merged := []Interval{in[0]}
	for _, iv := range in[1:] {
		last := &merged[len(merged)-1]
		if iv.Start.After(last.End) {
			merged = append(merged, iv)
			continue
		}
		if iv.End.After(last.End) {
			last.End = iv.End
		}
	}
	return merged
}

// Subtract removes every interval in closed from the open set. Open intervals
// fully covered by a closed range disappear; partial overlaps leave the
// non-overlapping remainder pieces. The result is sorted and disjoint provided
// open was (Union output qualifies).
func Subtract(open, closed []Interval) []Interval {
	result := open
	for _, c := range closed {
		if c.Empty() {
			continue
		}
		var next []Interval
		for _, o := range result {
			if !c.Start.Before(o.End) || !c.End.After(o.Start) {
				next = append(next, o)
				continue
			}
			if left := (Interval{Start: o.Start, End: c.Start}); !left.Empty() {
				next = append(next, left)
			}
			if right := (Interval{Start: c.End, End: o.End}); !right.Empty() {
				next = append(next, right)
			}
		}
		result = next
	}
	return result
}
