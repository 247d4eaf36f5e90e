package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strptr(s string) *string { return &s }

func TestSlotsAlignedWindow(t *testing.T) {
	got := Slots(strptr("17:00"), strptr("21:00"))
	require.NotNil(t, got)

	// (end-start)/30 + 1 slots plus the placeholder.
	assert.Len(t, got, 9+1)
	assert.Equal(t, Placeholder, got[0])
	assert.Equal(t, "17:00", got[1])
	assert.Equal(t, "21:00", got[len(got)-1])

	// strictly increasing
	for i := 2; i < len(got); i++ {
		assert.Less(t, got[i-1], got[i])
	}
}

func TestSlotsSingleSlot(t *testing.T) {
	got := Slots(strptr("18:00"), strptr("18:00"))
	assert.Equal(t, []string{Placeholder, "18:00"}, got)
}

func TestSlotsUnalignedEndExcluded(t *testing.T) {
	got := Slots(strptr("17:00"), strptr("18:15"))
	assert.Equal(t, []string{Placeholder, "17:00", "17:30", "18:00"}, got)
}

func TestSlotsUnavailable(t *testing.T) {
	assert.Nil(t, Slots(nil, strptr("18:00")))
	assert.Nil(t, Slots(strptr("18:00"), nil))
	assert.Nil(t, Slots(strptr("21:00"), strptr("17:00")))
	assert.Nil(t, Slots(strptr("bogus"), strptr("17:00")))
}

func TestPartySizes(t *testing.T) {
	sizes := PartySizes()
	assert.Equal(t, []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, sizes)

	assert.NoError(t, ValidatePartySize(1))
	assert.NoError(t, ValidatePartySize(10))
	assert.ErrorIs(t, ValidatePartySize(0), ErrPartySize)
	assert.ErrorIs(t, ValidatePartySize(11), ErrPartySize)
}

func TestValidateSlot(t *testing.T) {
	start, end := strptr("17:00"), strptr("21:00")

	assert.NoError(t, ValidateSlot(start, end, "17:00"))
	assert.NoError(t, ValidateSlot(start, end, "19:30"))
	assert.NoError(t, ValidateSlot(start, end, "21:00"))

	assert.ErrorIs(t, ValidateSlot(start, end, "16:30"), ErrOutsideWindow)
	assert.ErrorIs(t, ValidateSlot(start, end, "21:30"), ErrOutsideWindow)
	assert.ErrorIs(t, ValidateSlot(start, end, "19:15"), ErrOutsideWindow)
	assert.ErrorIs(t, ValidateSlot(start, end, "bogus"), ErrMalformed)
	assert.ErrorIs(t, ValidateSlot(nil, end, "18:00"), ErrNoWindow)
}

func TestValidateFuture(t *testing.T) {
	loc, err := time.LoadLocation("Asia/Tokyo")
	require.NoError(t, err)

	now := time.Date(2026, 3, 10, 18, 0, 0, 0, loc)

	// strictly later is accepted
	assert.NoError(t, ValidateFuture("2026-03-10", "18:30", loc, now))
	assert.NoError(t, ValidateFuture("2026-03-11", "09:00", loc, now))

	// equality is rejected, not accepted
	assert.ErrorIs(t, ValidateFuture("2026-03-10", "18:00", loc, now), ErrPastDateTime)

	// anything earlier is rejected
	assert.ErrorIs(t, ValidateFuture("2026-03-10", "17:30", loc, now), ErrPastDateTime)
	assert.ErrorIs(t, ValidateFuture("2025-12-31", "23:30", loc, now), ErrPastDateTime)

	assert.ErrorIs(t, ValidateFuture("10-03-2026", "18:30", loc, now), ErrMalformed)
	assert.ErrorIs(t, ValidateFuture("2026-03-10", "25:00", loc, now), ErrMalformed)
}

func TestValidateFutureUsesLocation(t *testing.T) {
	tokyo, err := time.LoadLocation("Asia/Tokyo")
	require.NoError(t, err)

	// 09:00 UTC is 18:00 in Tokyo; a 18:30 Tokyo reservation for the same
	// day is still in the future at that instant.
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	assert.NoError(t, ValidateFuture("2026-03-10", "18:30", tokyo, now))
	assert.ErrorIs(t, ValidateFuture("2026-03-10", "18:00", tokyo, now), ErrPastDateTime)
}
