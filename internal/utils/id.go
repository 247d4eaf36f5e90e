package utils

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// NewUserID returns an opaque identifier for a new user account.
func NewUserID() string {
	return uuid.NewString()
}

// TimestampID returns a 20-character identifier derived from the given time
// at microsecond precision (YYYYMMDDHHMMSS + 6 digits). Used for reservation
// and order primary keys so rows sort by creation time.
func TimestampID(t time.Time) string {
	return fmt.Sprintf("%s%06d", t.Format("20060102150405"), t.Nanosecond()/1000)
}
