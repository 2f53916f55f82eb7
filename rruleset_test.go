package rrule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetMergesRuleAndExRule(t *testing.T) {
	daily := mustRRule(t, ROption{
		Freq:    DAILY,
		Dtstart: time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC),
		Count:   5,
	})
	everyOtherDay := mustRRule(t, ROption{
		Freq:     DAILY,
		Dtstart:  time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC),
		Interval: 2,
		Count:    3,
	})

	set := &Set{}
	set.RRule(daily)
	set.ExRule(everyOtherDay)

	got := set.All()
	want := []time.Time{
		time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC),
		time.Date(2023, 1, 4, 0, 0, 0, 0, time.UTC),
	}
	assert.Equal(t, want, got)
}

func TestSetRDateExDateCancellation(t *testing.T) {
	set := &Set{}
	dt := time.Date(2023, 1, 5, 9, 0, 0, 0, time.UTC)

	set.ExDate(dt)
	require.Len(t, set.GetExDate(), 1)

	set.RDate(dt)
	assert.Len(t, set.GetExDate(), 0, "RDate must cancel a matching ExDate")
	assert.Len(t, set.GetRDate(), 0, "the cancelled pair produces no RDate entry either")
}

func TestSetRDateDedupAcrossRule(t *testing.T) {
	daily := mustRRule(t, ROption{
		Freq:    DAILY,
		Dtstart: time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC),
		Count:   3,
	})
	set := &Set{}
	set.RRule(daily)
	set.RDate(time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC))

	got := set.All()
	assert.Len(t, got, 3, "a duplicate RDate must not produce a repeated instant")
}

func TestSetMoveInstance(t *testing.T) {
	daily := mustRRule(t, ROption{
		Freq:    DAILY,
		Dtstart: time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC),
		Count:   3,
	})
	set := &Set{}
	set.RRule(daily)

	old := time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC)
	moved := time.Date(2023, 1, 10, 0, 0, 0, 0, time.UTC)
	set.MoveInstance(old, moved)

	got := set.All()
	want := []time.Time{
		time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2023, 1, 3, 0, 0, 0, 0, time.UTC),
		moved,
	}
	assert.Equal(t, want, got)
}

func TestSetTotalInfiniteFromRule(t *testing.T) {
	unbounded := mustRRule(t, ROption{
		Freq:    DAILY,
		Dtstart: time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC),
	})
	set := &Set{}
	set.RRule(unbounded)
	assert.Equal(t, -1, set.Total())
}

func TestSetAt(t *testing.T) {
	daily := mustRRule(t, ROption{
		Freq:    DAILY,
		Dtstart: time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC),
		Count:   3,
	})
	set := &Set{}
	set.RRule(daily)

	dt, err := set.At(1)
	require.NoError(t, err)
	assert.True(t, dt.Equal(time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC)))

	_, err = set.At(10)
	require.Error(t, err)
}

func TestSetBeforeAfter(t *testing.T) {
	daily := mustRRule(t, ROption{
		Freq:    DAILY,
		Dtstart: time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC),
		Count:   5,
	})
	set := &Set{}
	set.RRule(daily)

	after := set.After(time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC), false)
	assert.True(t, after.Equal(time.Date(2023, 1, 3, 0, 0, 0, 0, time.UTC)))

	before := set.Before(time.Date(2023, 1, 3, 0, 0, 0, 0, time.UTC), false)
	assert.True(t, before.Equal(time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC)))
}
