package model

import (
	"strings"
	"time"
)

// Weekday codes stored in shops.weekly_holidays, comma separated.
var WeekdayCodes = []string{"mon", "tue", "wed", "thu", "fri", "sat", "sun"}

// Shop represents a listed restaurant. The reservation window
// (ReserveStart/ReserveEnd, "HH:MM") drives the slot generator; both must be
// set for the shop to accept bookings and start must not be after end.
// WeeklyHolidays holds fixed closing weekdays as a comma separated list of
// codes ("mon,tue"). Only published shops appear on the public search
// surface.
type Shop struct {
	ID              uint64    // shops.id
	Name            string    // shops.name
	Mail            string    // shops.mail
	Zipcode         string    // shops.zipcode
	Address         string    // shops.address
	Tel             string    // shops.tel
	Description     string    // shops.description
	PriceRange      string    // shops.price_range
	SeatingCapacity string    // shops.seating_capacity
	OpeningHours    string    // shops.opening_hours
	WeeklyHolidays  string    // shops.weekly_holidays
	HolidayNote     string    // shops.holiday_note
	ReserveStart    *string   // shops.reserve_start (nullable "HH:MM")
	ReserveEnd      *string   // shops.reserve_end (nullable "HH:MM")
	Image           string    // shops.image
	CategoryID      *uint64   // shops.category_id (nullable)
	IsPublished     bool      // shops.is_published
	CreatedAt       time.Time // shops.created_at
	UpdatedAt       time.Time // shops.updated_at
}

// ClosedOnWeekday reports whether the given weekday code ("mon".."sun") is a
// fixed weekly holiday for the shop.
func (s Shop) ClosedOnWeekday(code string) bool {
	for _, h := range strings.Split(s.WeeklyHolidays, ",") {
		if strings.TrimSpace(h) == code {
			return true
		}
	}
	return false
}

// Category groups shops, one per shop. Slug is unique.
type Category struct {
	ID   uint64 `json:"id"`   // categories.id
	Name string `json:"name"` // categories.name
	Slug string `json:"slug"` // categories.slug
}

// Tag labels shops, many per shop. Slug is unique.
type Tag struct {
	ID   uint64 `json:"id"`   // tags.id
	Name string `json:"name"` // tags.name
	Slug string `json:"slug"` // tags.slug
}

// IrregularHoliday is a one-off closing date for a shop on top of its fixed
// weekly holidays. (shop_id, holiday_on) is unique.
type IrregularHoliday struct {
	ID     uint64    // irregular_holidays.id
	ShopID uint64    // irregular_holidays.shop_id
	Date   time.Time // irregular_holidays.holiday_on
}
