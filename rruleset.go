package rrule

import (
	"container/heap"
	"sort"
	"time"
)

// Set composes multiple include-rules, include-dates, exclude-rules,
// and exclude-dates into one merged, ordered, deduplicated stream of
// instants. It owns its component rules and date lists.
type Set struct {
	rrule       []*RRule
	exrule      []*RRule
	rdate       []time.Time
	exdate      []time.Time
	dtstart     time.Time
	hasDtstart  bool
}

// RRule adds an additive rule to the set.
func (s *Set) RRule(r *RRule) {
	s.rrule = append(s.rrule, r)
}

// ExRule adds a subtractive rule to the set: any instant it produces is
// removed from the merged stream, instant-for-instant.
func (s *Set) ExRule(r *RRule) {
	s.exrule = append(s.exrule, r)
}

// RDate adds an explicit additive date. If dt exactly matches a
// previously added EXDATE, the EXDATE is removed instead of inserting
// dt — the cancellation rule from the set composer design. Equality is
// by exact instant, not by calendar day.
func (s *Set) RDate(dt time.Time) {
	dt = dt.Truncate(time.Second)
	if removeExact(&s.exdate, dt) {
		return
	}
	s.rdate = insertSortedTime(s.rdate, dt)
}

// ExDate adds an explicit subtractive date, with the same
// RDATE<->EXDATE cancellation rule as RDate.
func (s *Set) ExDate(dt time.Time) {
	dt = dt.Truncate(time.Second)
	if removeExact(&s.rdate, dt) {
		return
	}
	s.exdate = insertSortedTime(s.exdate, dt)
}

// MoveInstance relocates a single occurrence from old to new. It is
// equivalent to ExDate(old) followed by RDate(new); it does not try to
// locate or special-case old within any RRULE's generated stream.
func (s *Set) MoveInstance(old, new time.Time) {
	s.ExDate(old)
	s.RDate(new)
}

// GetRRule returns the set's additive rules.
func (s *Set) GetRRule() []*RRule { return s.rrule }

// GetExRule returns the set's subtractive rules.
func (s *Set) GetExRule() []*RRule { return s.exrule }

// GetRDate returns the set's explicit additive dates, ascending.
func (s *Set) GetRDate() []time.Time { return s.rdate }

// GetExDate returns the set's explicit subtractive dates, ascending.
func (s *Set) GetExDate() []time.Time { return s.exdate }

// GetDTStart returns the set-level DTSTART, or the zero time if none
// was ever set.
func (s *Set) GetDTStart() time.Time { return s.dtstart }

// DTStart records a set-level anchor instant, read back only by
// GetDTStart and by String (as a DTSTART property line). Rules already
// in the set keep their own anchors.
func (s *Set) DTStart(dt time.Time) {
	s.dtstart = dt
	s.hasDtstart = true
}

func removeExact(list *[]time.Time, dt time.Time) bool {
	for i, v := range *list {
		if v.Equal(dt) {
			*list = append((*list)[:i:i], (*list)[i+1:]...)
			return true
		}
	}
	return false
}

func insertSortedTime(list []time.Time, dt time.Time) []time.Time {
	idx := sort.Search(len(list), func(i int) bool { return !list[i].Before(dt) })
	list = append(list, time.Time{})
	copy(list[idx+1:], list[idx:])
	list[idx] = dt
	return list
}

// genCursor is one input stream to the heap merge: the next value it
// will produce, and the function to pull the one after that.
type genCursor struct {
	next Next
	cur  time.Time
}

type genHeap []*genCursor

func (h genHeap) Len() int            { return len(h) }
func (h genHeap) Less(i, j int) bool  { return h[i].cur.Before(h[j].cur) }
func (h genHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *genHeap) Push(x interface{}) { *h = append(*h, x.(*genCursor)) }
func (h *genHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

func newGenHeap(nexts []Next) *genHeap {
	h := &genHeap{}
	for _, n := range nexts {
		if v, ok := n(); ok {
			*h = append(*h, &genCursor{next: n, cur: v})
		}
	}
	heap.Init(h)
	return h
}

// sliceNext turns an already-sorted slice of instants into a Next
// generator, for RDATE/EXDATE lists to participate in the same merge
// as RRULE iterators.
func sliceNext(values []time.Time) Next {
	i := 0
	return func() (time.Time, bool) {
		if i >= len(values) {
			return time.Time{}, false
		}
		v := values[i]
		i++
		return v, true
	}
}

// Iterator returns the merged, deduplicated stream of instants the set
// produces: every RRULE and RDATE instant, minus every EXRULE and
// EXDATE instant at the same exact value.
func (s *Set) Iterator() Next {
	var includeNexts, excludeNexts []Next
	for _, r := range s.rrule {
		includeNexts = append(includeNexts, r.Iterator())
	}
	if len(s.rdate) != 0 {
		includeNexts = append(includeNexts, sliceNext(s.rdate))
	}
	for _, r := range s.exrule {
		excludeNexts = append(excludeNexts, r.Iterator())
	}
	if len(s.exdate) != 0 {
		excludeNexts = append(excludeNexts, sliceNext(s.exdate))
	}

	includeHeap := newGenHeap(includeNexts)
	excludeHeap := newGenHeap(excludeNexts)
	var lastEmitted time.Time
	hasLast := false

	return func() (time.Time, bool) {
		for includeHeap.Len() > 0 {
			top := (*includeHeap)[0]

			for excludeHeap.Len() > 0 && (*excludeHeap)[0].cur.Before(top.cur) {
				item := heap.Pop(excludeHeap).(*genCursor)
				if v, ok := item.next(); ok {
					item.cur = v
					heap.Push(excludeHeap, item)
				}
			}

			skip := excludeHeap.Len() > 0 && (*excludeHeap)[0].cur.Equal(top.cur)

			incItem := heap.Pop(includeHeap).(*genCursor)
			value := incItem.cur
			if v, ok := incItem.next(); ok {
				incItem.cur = v
				heap.Push(includeHeap, incItem)
			}

			if skip {
				continue
			}
			if hasLast && value.Equal(lastEmitted) {
				continue
			}
			lastEmitted = value
			hasLast = true
			return value, true
		}
		return time.Time{}, false
	}
}

// All returns every occurrence of the set. Only terminates if every
// include source is bounded.
func (s *Set) All() []time.Time {
	return all(s.Iterator())
}

// Between returns the set's occurrences in the window (after, before).
func (s *Set) Between(after, before time.Time, inc bool) []time.Time {
	return between(s.Iterator(), after, before, inc)
}

// Before returns the set's last occurrence before dt.
func (s *Set) Before(dt time.Time, inc bool) time.Time {
	return before(s.Iterator(), dt, inc)
}

// After returns the set's first occurrence after dt.
func (s *Set) After(dt time.Time, inc bool) time.Time {
	return after(s.Iterator(), dt, inc)
}

// At returns the i-th occurrence of the set (0-based). Negative
// indices materialize the whole stream, so the set must be bounded.
func (s *Set) At(i int) (time.Time, error) {
	if i >= 0 {
		next := s.Iterator()
		for idx := 0; ; idx++ {
			dt, ok := next()
			if !ok {
				return time.Time{}, newError(KindIndexOutOfRange, "index %d out of range", i)
			}
			if idx == i {
				return dt, nil
			}
		}
	}
	occurrences := s.All()
	idx := len(occurrences) + i
	if idx < 0 || idx >= len(occurrences) {
		return time.Time{}, newError(KindIndexOutOfRange, "index %d out of range", i)
	}
	return occurrences[idx], nil
}

// Total returns the number of instants the set produces, or -1 if any
// additive source (an RRULE with no Count/Until) makes the stream
// provably infinite.
func (s *Set) Total() int {
	for _, r := range s.rrule {
		if r.Total() == -1 {
			return -1
		}
	}
	return len(s.All())
}
