package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTaxPortion(t *testing.T) {
	assert.Equal(t, 28, TaxPortion(300))
	assert.Equal(t, 100, TaxPortion(1100))
	assert.Equal(t, 0, TaxPortion(0))
}

func TestNetAmount(t *testing.T) {
	assert.Equal(t, 272, NetAmount(300))
	assert.Equal(t, 1000, NetAmount(1100))
}

func TestClosedOnWeekday(t *testing.T) {
	s := Shop{WeeklyHolidays: "mon, wed"}
	assert.True(t, s.ClosedOnWeekday("mon"))
	assert.True(t, s.ClosedOnWeekday("wed"))
	assert.False(t, s.ClosedOnWeekday("sun"))

	empty := Shop{}
	assert.False(t, empty.ClosedOnWeekday("mon"))
}
