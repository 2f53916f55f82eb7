package rrule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDivmod(t *testing.T) {
	div, mod := divmod(-1, 7)
	assert.Equal(t, -1, div)
	assert.Equal(t, 6, mod)

	div, mod = divmod(8, 7)
	assert.Equal(t, 1, div)
	assert.Equal(t, 1, mod)
}

func TestPymod(t *testing.T) {
	assert.Equal(t, 6, pymod(-1, 7))
	assert.Equal(t, 0, pymod(7, 7))
	assert.Equal(t, 3, pymod(3, 7))
}

func TestDaysIn(t *testing.T) {
	assert.Equal(t, 29, daysIn(time.February, 2020))
	assert.Equal(t, 28, daysIn(time.February, 2021))
	assert.Equal(t, 31, daysIn(time.January, 2021))
}

func TestPySubscript(t *testing.T) {
	list := []int{10, 20, 30}

	v, err := pySubscript(list, 0)
	assert.NoError(t, err)
	assert.Equal(t, 10, v)

	v, err = pySubscript(list, -1)
	assert.NoError(t, err)
	assert.Equal(t, 30, v)

	_, err = pySubscript(list, 3)
	assert.Error(t, err)
	kind, ok := KindOf(err)
	assert.True(t, ok)
	assert.Equal(t, KindIndexOutOfRange, kind)
}

func TestBetween(t *testing.T) {
	values := []time.Time{
		time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2020, 1, 2, 0, 0, 0, 0, time.UTC),
		time.Date(2020, 1, 3, 0, 0, 0, 0, time.UTC),
	}
	got := between(sliceNext(values), values[0], values[2], false)
	assert.Equal(t, []time.Time{values[1]}, got)

	got = between(sliceNext(values), values[0], values[2], true)
	assert.Equal(t, values, got)
}

func TestBeforeAfter(t *testing.T) {
	values := []time.Time{
		time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2020, 1, 2, 0, 0, 0, 0, time.UTC),
		time.Date(2020, 1, 3, 0, 0, 0, 0, time.UTC),
	}
	b := before(sliceNext(values), values[2], false)
	assert.True(t, b.Equal(values[1]))

	a := after(sliceNext(values), values[0], false)
	assert.True(t, a.Equal(values[1]))

	a = after(sliceNext(values), values[2], false)
	assert.True(t, a.IsZero())
}
