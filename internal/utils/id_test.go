package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimestampID(t *testing.T) {
	at := time.Date(2026, 3, 14, 9, 26, 53, 589793000, time.UTC)
	id := TimestampID(at)

	assert.Len(t, id, 20)
	assert.Equal(t, "20260314092653589793", id)
}

func TestTimestampIDPadsMicroseconds(t *testing.T) {
	at := time.Date(2026, 1, 2, 3, 4, 5, 7000, time.UTC)
	id := TimestampID(at)

	assert.Len(t, id, 20)
	assert.Equal(t, "20260102030405000007", id)
}

func TestNewUserID(t *testing.T) {
	a := NewUserID()
	b := NewUserID()

	require.Len(t, a, 36)
	assert.NotEqual(t, a, b)
}
