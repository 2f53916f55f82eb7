package rrule

import (
	"sort"
	"time"
)

// contains reports whether list holds value. Lists here are always short
// (BY* filters top out in the dozens), so linear scan beats building a set.
func contains(list []int, value int) bool {
	for _, v := range list {
		if v == value {
			return true
		}
	}
	return false
}

// divmod mimics Python's divmod: the remainder always has the same sign
// as the divisor, which the week/month rollover arithmetic in rrule.go
// depends on for negative offsets.
func divmod(a, b int) (div, mod int) {
	div, mod = a/b, a%b
	if (mod < 0 && b > 0) || (mod > 0 && b < 0) {
		div--
		mod += b
	}
	return
}

// pymod mimics Python's % operator: always non-negative for a positive
// modulus, unlike Go's %.
func pymod(a, b int) int {
	r := a % b
	if r < 0 {
		r += b
	}
	return r
}

func isLeap(year int) int {
	if year%4 == 0 && (year%100 != 0 || year%400 == 0) {
		return 1
	}
	return 0
}

var daysInMonthCommon = [...]int{31, 28, 31, 30, 31, 30, 31, 31, 30, 31, 30, 31}

func daysIn(month time.Month, year int) int {
	if month == time.February {
		return 28 + isLeap(year)
	}
	return daysInMonthCommon[month-1]
}

// toPyWeekday converts Go's Sunday=0 weekday numbering into this
// package's Monday=0 numbering used throughout BYDAY and Wkst.
func toPyWeekday(wd time.Weekday) int {
	return pymod(int(wd)-1, 7)
}

func concat(lists ...[]int) []int {
	var result []int
	for _, l := range lists {
		result = append(result, l...)
	}
	return result
}

func repeat(value, times int) []int {
	result := make([]int, times)
	for i := range result {
		result[i] = value
	}
	return result
}

// rang returns the integers [from, to), matching Python's range(from, to).
func rang(from, to int) []int {
	if to < from {
		return nil
	}
	result := make([]int, to-from)
	for i := range result {
		result[i] = from + i
	}
	return result
}

// pySubscript indexes a slice the way Python does, allowing negative
// indices counted from the end. It errors instead of panicking so
// BYSETPOS lookups that fall outside the candidate window are a
// no-op rather than a crash.
func pySubscript(list []int, index int) (int, error) {
	if index < 0 {
		index += len(list)
	}
	if index < 0 || index >= len(list) {
		return 0, newError(KindIndexOutOfRange, "index %d out of range for slice of length %d", index, len(list))
	}
	return list[index], nil
}

type timeSlice []time.Time

func (s timeSlice) Len() int           { return len(s) }
func (s timeSlice) Less(i, j int) bool { return s[i].Before(s[j]) }
func (s timeSlice) Swap(i, j int)      { s[i], s[j] = s[j], s[i] }

func sortTimes(ts []time.Time) { sort.Sort(timeSlice(ts)) }

func timeContains(list []time.Time, value time.Time) bool {
	for _, v := range list {
		if v.Equal(value) {
			return true
		}
	}
	return false
}

// all drains an iterator completely. Only safe to call on a bounded
// rule (Count or Until set); callers are responsible for that check.
func all(next Next) []time.Time {
	var result []time.Time
	for {
		dt, ok := next()
		if !ok {
			return result
		}
		result = append(result, dt)
	}
}

// between collects the occurrences of next in (after, before), honoring
// inc for both endpoints.
func between(next Next, after, before time.Time, inc bool) []time.Time {
	var result []time.Time
	for {
		dt, ok := next()
		if !ok {
			return result
		}
		if inc {
			if dt.After(before) {
				return result
			}
		} else {
			if !dt.Before(before) {
				return result
			}
		}
		cmpAfter := dt.After(after) || (inc && dt.Equal(after))
		if cmpAfter {
			result = append(result, dt)
		}
	}
}

// before returns the last occurrence of next that is <= dt (or < dt
// when inc is false), by scanning forward and remembering the last
// candidate seen before the cutoff.
func before(next Next, dt time.Time, inc bool) time.Time {
	var last time.Time
	for {
		cur, ok := next()
		if !ok {
			return last
		}
		if inc {
			if cur.After(dt) {
				return last
			}
		} else {
			if !cur.Before(dt) {
				return last
			}
		}
		last = cur
	}
}

// after returns the first occurrence of next that is >= dt (or > dt
// when inc is false).
func after(next Next, dt time.Time, inc bool) time.Time {
	for {
		cur, ok := next()
		if !ok {
			return time.Time{}
		}
		if inc {
			if !cur.Before(dt) {
				return cur
			}
		} else {
			if cur.After(dt) {
				return cur
			}
		}
	}
}
