package handler

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tabegoro/tabegoro/internal/config"
	"github.com/tabegoro/tabegoro/internal/model"
	"github.com/tabegoro/tabegoro/internal/repository"
)

// fakeShops serves one published shop and scripts its closing days.
type fakeShops struct {
	shop        model.Shop
	closedDates map[string]bool
	holidays    []model.IrregularHoliday

	closedOnCalled bool
}

func (f *fakeShops) GetPublishedByID(_ context.Context, id uint64) (model.Shop, error) {
	if id != f.shop.ID {
		return model.Shop{}, sql.ErrNoRows
	}
	return f.shop, nil
}
func (f *fakeShops) IrregularHolidays(_ context.Context, _ uint64, _ time.Time) ([]model.IrregularHoliday, error) {
	return f.holidays, nil
}
func (f *fakeShops) ClosedOn(_ context.Context, _ uint64, date time.Time) (bool, error) {
	f.closedOnCalled = true
	return f.closedDates[date.Format("2006-01-02")], nil
}

// fakeReservations records created reservations.
type fakeReservations struct {
	created []*model.Reservation
}

func (f *fakeReservations) Create(_ context.Context, res *model.Reservation) (string, error) {
	f.created = append(f.created, res)
	return fmt.Sprintf("2026010112000000%04d", len(f.created)), nil
}
func (f *fakeReservations) ListByUser(_ context.Context, _ string) ([]repository.ReservationDetail, error) {
	return nil, nil
}
func (f *fakeReservations) GetForUser(_ context.Context, _, _ string) (*repository.ReservationDetail, error) {
	return nil, sql.ErrNoRows
}
func (f *fakeReservations) Delete(_ context.Context, _, _ string) error { return sql.ErrNoRows }

type fakeReviewStats struct {
	count int64
	avg   float64
}

func (f *fakeReviewStats) Stats(_ context.Context, _ uint64) (int64, float64, error) {
	return f.count, f.avg, nil
}

func newReservationShop() model.Shop {
	start, end := "17:00", "21:00"
	return model.Shop{
		ID:             7,
		Name:           "Sakura Tei",
		IsPublished:    true,
		WeeklyHolidays: "mon,tue",
		ReserveStart:   &start,
		ReserveEnd:     &end,
	}
}

func newReservationHandler(shops *fakeShops, store *fakeReservations) *ReservationHandler {
	cfg := config.Config{Location: time.UTC}
	return NewReservationHandler(cfg, shops, store, &fakeReviewStats{count: 3, avg: 4.5}, zap.NewNop())
}

func resvCtx(t *testing.T, body, userID string, shopID uint64) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/v1/restaurants/7/reserve", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(fmt.Sprintf("%d", shopID))
	if userID != "" {
		c.Set("user_id", userID)
	}
	return c, rec
}

// upcoming returns the first occurrence of the weekday at least a week out,
// so the reservation is always in the future regardless of wall clock.
func upcoming(w time.Weekday) string {
	d := time.Now().UTC().AddDate(0, 0, 7)
	for d.Weekday() != w {
		d = d.AddDate(0, 0, 1)
	}
	return d.Format("2006-01-02")
}

func TestCreateRejectsWeeklyClosingDay(t *testing.T) {
	shops := &fakeShops{shop: newReservationShop()}
	store := &fakeReservations{}
	h := newReservationHandler(shops, store)

	body := fmt.Sprintf(`{"date":%q,"time":"18:00","party_size":2}`, upcoming(time.Monday))
	c, rec := resvCtx(t, body, "u-1", 7)
	require.NoError(t, h.Create(c))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "closed on that day")
	assert.Empty(t, store.created)
	// The fixed weekday closings are checked before the per-date ones.
	assert.False(t, shops.closedOnCalled)
}

func TestCreateRejectsIrregularHoliday(t *testing.T) {
	date := upcoming(time.Friday)
	shops := &fakeShops{
		shop:        newReservationShop(),
		closedDates: map[string]bool{date: true},
	}
	store := &fakeReservations{}
	h := newReservationHandler(shops, store)

	body := fmt.Sprintf(`{"date":%q,"time":"18:00","party_size":2}`, date)
	c, rec := resvCtx(t, body, "u-1", 7)
	require.NoError(t, h.Create(c))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "closed on that day")
	assert.True(t, shops.closedOnCalled)
	assert.Empty(t, store.created)
}

func TestCreateBooksOnAnOpenDay(t *testing.T) {
	shops := &fakeShops{shop: newReservationShop()}
	store := &fakeReservations{}
	h := newReservationHandler(shops, store)

	body := fmt.Sprintf(`{"date":%q,"time":"18:30","party_size":4}`, upcoming(time.Friday))
	c, rec := resvCtx(t, body, "u-1", 7)
	require.NoError(t, h.Create(c))

	assert.Equal(t, http.StatusCreated, rec.Code)
	require.Len(t, store.created, 1)
	assert.Equal(t, "u-1", store.created[0].UserID)
	assert.Equal(t, uint64(7), store.created[0].ShopID)
	assert.Equal(t, "18:30", store.created[0].ReservedTime)
	assert.Equal(t, 4, store.created[0].PartySize)
}

func TestCreateRejectsSlotOutsideWindow(t *testing.T) {
	shops := &fakeShops{shop: newReservationShop()}
	store := &fakeReservations{}
	h := newReservationHandler(shops, store)

	body := fmt.Sprintf(`{"date":%q,"time":"09:00","party_size":2}`, upcoming(time.Friday))
	c, rec := resvCtx(t, body, "u-1", 7)
	require.NoError(t, h.Create(c))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, store.created)
}

func TestFormListsSlotsAndClosingDays(t *testing.T) {
	shops := &fakeShops{
		shop: newReservationShop(),
		holidays: []model.IrregularHoliday{
			{ID: 1, ShopID: 7, Date: time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC)},
		},
	}
	h := newReservationHandler(shops, &fakeReservations{})

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/restaurants/7/reserve", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("7")
	require.NoError(t, h.Form(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"17:00"`)
	assert.Contains(t, rec.Body.String(), "2026-09-15")
	assert.Contains(t, rec.Body.String(), "mon,tue")
}
