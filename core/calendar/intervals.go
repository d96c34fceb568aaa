package calendar

import (
	"sort"
	"time"

	"github.com/platotv/plato/core/model"
)

// Set is an ordered list of disjoint half-open windows.
type Set []model.Window

// NewSet normalises the given windows into a Set: sorted, merged, empty
// windows dropped.
func NewSet(ws ...model.Window) Set {
	var s Set
	for _, w := range ws {
		if w.End.After(w.Start) {
			s = append(s, w)
		}
	}
	sort.Slice(s, func(i, j int) bool { return s[i].Start.Before(s[j].Start) })
	var out Set
	for _, w := range s {
		if n := len(out); n > 0 && !w.Start.After(out[n-1].End) {
			if w.End.After(out[n-1].End) {
				out[n-1].End = w.End
			}
			continue
		}
		out = append(out, w)
	}
	return out
}

// Subtract removes a window from every interval of the set.
func (s Set) Subtract(w model.Window) Set {
	if !w.End.After(w.Start) {
		return s
	}
	var out Set
	for _, iv := range s {
		if !iv.Overlaps(w) {
			out = append(out, iv)
			continue
		}
		if iv.Start.Before(w.Start) {
			out = append(out, model.Window{Start: iv.Start, End: w.Start})
		}
		if w.End.Before(iv.End) {
			out = append(out, model.Window{Start: w.End, End: iv.End})
		}
	}
	return out
}

// SubtractAll removes every window of o.
func (s Set) SubtractAll(o Set) Set {
	out := s
	for _, w := range o {
		out = out.Subtract(w)
	}
	return out
}

// Intersect keeps the overlap of both sets.
func (s Set) Intersect(o Set) Set {
	var out Set
	i, j := 0, 0
	for i < len(s) && j < len(o) {
		start := s[i].Start
		if o[j].Start.After(start) {
			start = o[j].Start
		}
		end := s[i].End
		if o[j].End.Before(end) {
			end = o[j].End
		}
		if end.After(start) {
			out = append(out, model.Window{Start: start, End: end})
		}
		if s[i].End.Before(o[j].End) {
			i++
		} else {
			j++
		}
	}
	return out
}

// FirstFit returns the earliest start not before notBefore at which a block
// of duration d fits inside the set.
func (s Set) FirstFit(d time.Duration, notBefore time.Time) (time.Time, bool) {
	if d <= 0 {
		return time.Time{}, false
	}
	for _, iv := range s {
		start := iv.Start
		if notBefore.After(start) {
			start = notBefore
		}
		if !start.Add(d).After(iv.End) {
			return start, true
		}
	}
	return time.Time{}, false
}

// Covers reports whether [start, start+d) lies fully inside the set.
func (s Set) Covers(start time.Time, d time.Duration) bool {
	end := start.Add(d)
	for _, iv := range s {
		if !start.Before(iv.Start) && !end.After(iv.End) {
			return true
		}
	}
	return false
}
