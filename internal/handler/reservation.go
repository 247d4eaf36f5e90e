package handler

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/tabegoro/tabegoro/internal/config"
	"github.com/tabegoro/tabegoro/internal/metrics"
	"github.com/tabegoro/tabegoro/internal/model"
	"github.com/tabegoro/tabegoro/internal/queue"
	"github.com/tabegoro/tabegoro/internal/repository"
	"github.com/tabegoro/tabegoro/internal/schedule"
	queue_publisher "github.com/tabegoro/tabegoro/internal/service"
)

// weekdayCode maps time.Weekday onto the codes stored in
// shops.weekly_holidays.
var weekdayCode = map[time.Weekday]string{
	time.Sunday:    "sun",
	time.Monday:    "mon",
	time.Tuesday:   "tue",
	time.Wednesday: "wed",
	time.Thursday:  "thu",
	time.Friday:    "fri",
	time.Saturday:  "sat",
}

// ReservationShops is the slice of the shop store the reservation flow
// reads: the published shop itself plus its closing days.
type ReservationShops interface {
	GetPublishedByID(ctx context.Context, id uint64) (model.Shop, error)
	IrregularHolidays(ctx context.Context, shopID uint64, from time.Time) ([]model.IrregularHoliday, error)
	ClosedOn(ctx context.Context, shopID uint64, date time.Time) (bool, error)
}

// ReservationStore is the reservation persistence the handler writes
// through.
type ReservationStore interface {
	Create(ctx context.Context, res *model.Reservation) (string, error)
	ListByUser(ctx context.Context, userID string) ([]repository.ReservationDetail, error)
	GetForUser(ctx context.Context, reservationID, userID string) (*repository.ReservationDetail, error)
	Delete(ctx context.Context, reservationID, userID string) error
}

// ReservationReviews supplies the review aggregates shown on the form.
type ReservationReviews interface {
	Stats(ctx context.Context, shopID uint64) (int64, float64, error)
}

// ReservationHandler serves the paid-member reservation flow: the form
// data, creation, listing and cancellation.
type ReservationHandler struct {
	Cfg          config.Config
	Shops        ReservationShops
	Reservations ReservationStore
	Reviews      ReservationReviews
	Log          *zap.Logger
}

func NewReservationHandler(cfg config.Config, s ReservationShops, r ReservationStore, rev ReservationReviews, log *zap.Logger) *ReservationHandler {
	return &ReservationHandler{Cfg: cfg, Shops: s, Reservations: r, Reviews: rev, Log: log}
}

type createReservationReq struct {
	Date      string `json:"date"`       // "2006-01-02"
	Time      string `json:"time"`       // "HH:MM", one of the shop's slots
	PartySize int    `json:"party_size"` // 1..10
}

// Form returns everything the booking form needs: the shop's selectable
// time slots, party sizes and upcoming closing days.
func (h *ReservationHandler) Form(c echo.Context) error {
	shopID, ok := paramUint(c, "id")
	if !ok {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	shop, err := h.Shops.GetPublishedByID(ctx, shopID)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load failed"})
	}

	slots := schedule.Slots(shop.ReserveStart, shop.ReserveEnd)
	if slots == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": schedule.ErrNoWindow.Error()})
	}

	today := time.Now().In(h.Cfg.Location)
	holidays, err := h.Shops.IrregularHolidays(ctx, shop.ID, today)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load failed"})
	}
	holidayDates := make([]string, 0, len(holidays))
	for _, hd := range holidays {
		holidayDates = append(holidayDates, hd.Date.Format("2006-01-02"))
	}

	count, avg, err := h.Reviews.Stats(ctx, shop.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load failed"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"shop_id":            shop.ID,
		"shop_name":          shop.Name,
		"slots":              slots,
		"party_sizes":        schedule.PartySizes(),
		"weekly_holidays":    shop.WeeklyHolidays,
		"irregular_holidays": holidayDates,
		"review_count":       count,
		"avg_stars":          avg,
	})
}

// Create places a reservation after the full validation chain: the shop
// must accept bookings, the slot must sit on the shop's 30-minute grid,
// the date/time must be strictly in the future and the shop must be open
// that day. The confirmation event is published best effort.
func (h *ReservationHandler) Create(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required", "redirect": "/login/"})
	}
	shopID, ok := paramUint(c, "id")
	if !ok {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
	}

	var req createReservationReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	shop, err := h.Shops.GetPublishedByID(ctx, shopID)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load failed"})
	}

	if err := schedule.ValidatePartySize(req.PartySize); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	if err := schedule.ValidateSlot(shop.ReserveStart, shop.ReserveEnd, req.Time); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	if err := schedule.ValidateFuture(req.Date, req.Time, h.Cfg.Location, time.Now()); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	at, err := schedule.At(req.Date, req.Time, h.Cfg.Location)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": schedule.ErrMalformed.Error()})
	}
	if shop.ClosedOnWeekday(weekdayCode[at.Weekday()]) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "the restaurant is closed on that day"})
	}
	closed, err := h.Shops.ClosedOn(ctx, shop.ID, at)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load failed"})
	}
	if closed {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "the restaurant is closed on that day"})
	}

	res := &model.Reservation{
		UserID:       uid,
		ShopID:       shop.ID,
		ReservedDate: at,
		ReservedTime: req.Time,
		PartySize:    req.PartySize,
	}
	id, err := h.Reservations.Create(ctx, res)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create failed"})
	}

	metrics.ReservationsCreatedCounter.Inc()

	// Best effort: a broker outage must not fail the booking.
	if err := queue_publisher.PublishReservationConfirmed(c.Request().Context(), queue.ReservationConfirmedEvent{
		ReservationID: id,
		UserID:        uid,
		ShopID:        shop.ID,
		ShopName:      shop.Name,
		ReservedDate:  req.Date,
		ReservedTime:  req.Time,
		PartySize:     req.PartySize,
		ConfirmedAt:   time.Now().UTC().Format(time.RFC3339),
	}); err != nil {
		h.Log.Warn("publish reservation event failed", zap.String("reservation_id", id), zap.Error(err))
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"id":       id,
		"message":  "reservation confirmed",
		"redirect": "/mypage/",
	})
}

// ListMine returns the caller's reservations, soonest first.
func (h *ReservationHandler) ListMine(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required", "redirect": "/login/"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	rows, err := h.Reservations.ListByUser(ctx, uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"reservations": rows})
}

// Detail returns one of the caller's reservations.
func (h *ReservationHandler) Detail(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required", "redirect": "/login/"})
	}
	id := c.Param("reservation_id")
	if id == "" {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	res, err := h.Reservations.GetForUser(ctx, id, uid)
	if err != nil {
		switch err {
		case sql.ErrNoRows:
			return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
		case repository.ErrForbidden:
			return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load failed"})
	}
	return c.JSON(http.StatusOK, res)
}

// Cancel deletes the caller's reservation.
func (h *ReservationHandler) Cancel(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required", "redirect": "/login/"})
	}
	id := c.Param("reservation_id")
	if id == "" {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Reservations.Delete(ctx, id, uid); err != nil {
		switch err {
		case sql.ErrNoRows:
			return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
		case repository.ErrForbidden:
			return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "cancel failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "reservation cancelled", "redirect": "/mypage/"})
}
