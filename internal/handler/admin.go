package handler

import (
	"database/sql"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/tabegoro/tabegoro/internal/model"
	"github.com/tabegoro/tabegoro/internal/repository"
)

// The monthly platform fee charged per listed shop, used on the dashboard
// revenue projection.
const monthlyShopFee = 300

// AdminHandler serves the management surface: the revenue dashboard plus
// catalog CRUD for shops, categories, tags and irregular holidays.
type AdminHandler struct {
	Shops      *repository.ShopRepo
	Categories *repository.CategoryRepo
	Tags       *repository.TagRepo
	Holidays   *repository.HolidayRepo
	Summaries  *repository.SummaryRepo
}

func NewAdminHandler(s *repository.ShopRepo, cat *repository.CategoryRepo, tag *repository.TagRepo, hol *repository.HolidayRepo, sum *repository.SummaryRepo) *AdminHandler {
	return &AdminHandler{Shops: s, Categories: cat, Tags: tag, Holidays: hol, Summaries: sum}
}

// Summary returns membership counts, confirmed revenue and the per-month
// breakdown for the dashboard.
func (h *AdminHandler) Summary(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	totals, err := h.Summaries.Totals(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "summary failed"})
	}
	monthly, err := h.Summaries.Monthly(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "summary failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"active_members": totals.ActiveMembers,
		"paying_members": totals.PayingMembers,
		"revenue":        totals.Revenue,
		"monthly_fee":    monthlyShopFee,
		"monthly":        monthly,
	})
}

// ----- shops -----

type shopReq struct {
	Name            string   `json:"name"`
	Mail            string   `json:"mail"`
	Zipcode         string   `json:"zipcode"`
	Address         string   `json:"address"`
	Tel             string   `json:"tel"`
	Description     string   `json:"description"`
	PriceRange      string   `json:"price_range"`
	SeatingCapacity string   `json:"seating_capacity"`
	OpeningHours    string   `json:"opening_hours"`
	WeeklyHolidays  string   `json:"weekly_holidays"`
	HolidayNote     string   `json:"holiday_note"`
	ReserveStart    *string  `json:"reserve_start"`
	ReserveEnd      *string  `json:"reserve_end"`
	Image           string   `json:"image"`
	CategoryID      *uint64  `json:"category_id"`
	TagIDs          []uint64 `json:"tag_ids"`
	IsPublished     bool     `json:"is_published"`
}

func (r shopReq) validate() (string, bool) {
	if strings.TrimSpace(r.Name) == "" {
		return "name required", false
	}
	for _, code := range strings.Split(r.WeeklyHolidays, ",") {
		code = strings.TrimSpace(code)
		if code == "" {
			continue
		}
		known := false
		for _, w := range model.WeekdayCodes {
			if code == w {
				known = true
				break
			}
		}
		if !known {
			return "unknown weekday code: " + code, false
		}
	}
	// The reservation window must be set as a pair and in "HH:MM".
	if (r.ReserveStart == nil) != (r.ReserveEnd == nil) {
		return "reserve_start and reserve_end must be set together", false
	}
	if r.ReserveStart != nil {
		s, err1 := time.Parse("15:04", *r.ReserveStart)
		e, err2 := time.Parse("15:04", *r.ReserveEnd)
		if err1 != nil || err2 != nil {
			return "reservation window must be HH:MM", false
		}
		if e.Before(s) {
			return "reserve_end must not be before reserve_start", false
		}
	}
	return "", true
}

func (r shopReq) toModel() *model.Shop {
	image := r.Image
	if image == "" {
		image = "noImage.png"
	}
	return &model.Shop{
		Name:            strings.TrimSpace(r.Name),
		Mail:            r.Mail,
		Zipcode:         r.Zipcode,
		Address:         r.Address,
		Tel:             r.Tel,
		Description:     r.Description,
		PriceRange:      r.PriceRange,
		SeatingCapacity: r.SeatingCapacity,
		OpeningHours:    r.OpeningHours,
		WeeklyHolidays:  r.WeeklyHolidays,
		HolidayNote:     r.HolidayNote,
		ReserveStart:    r.ReserveStart,
		ReserveEnd:      r.ReserveEnd,
		Image:           image,
		CategoryID:      r.CategoryID,
		IsPublished:     r.IsPublished,
	}
}

// ListShops returns every shop including unpublished drafts.
func (h *AdminHandler) ListShops(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	rows, err := h.Shops.ListAll(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"shops": rows})
}

type adminShopResp struct {
	ID              uint64   `json:"id"`
	Name            string   `json:"name"`
	Mail            string   `json:"mail"`
	Zipcode         string   `json:"zipcode"`
	Address         string   `json:"address"`
	Tel             string   `json:"tel"`
	Description     string   `json:"description"`
	PriceRange      string   `json:"price_range"`
	SeatingCapacity string   `json:"seating_capacity"`
	OpeningHours    string   `json:"opening_hours"`
	WeeklyHolidays  string   `json:"weekly_holidays"`
	HolidayNote     string   `json:"holiday_note"`
	ReserveStart    *string  `json:"reserve_start"`
	ReserveEnd      *string  `json:"reserve_end"`
	Image           string   `json:"image"`
	CategoryID      *uint64  `json:"category_id"`
	TagIDs          []uint64 `json:"tag_ids"`
	IsPublished     bool     `json:"is_published"`
}

// GetShop returns one shop with its tag assignments for the edit form.
func (h *AdminHandler) GetShop(c echo.Context) error {
	id, ok := paramUint(c, "id")
	if !ok {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	shop, err := h.Shops.GetByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load failed"})
	}
	tags, err := h.Shops.TagsForShop(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load failed"})
	}
	tagIDs := make([]uint64, 0, len(tags))
	for _, t := range tags {
		tagIDs = append(tagIDs, t.ID)
	}
	return c.JSON(http.StatusOK, adminShopResp{
		ID:              shop.ID,
		Name:            shop.Name,
		Mail:            shop.Mail,
		Zipcode:         shop.Zipcode,
		Address:         shop.Address,
		Tel:             shop.Tel,
		Description:     shop.Description,
		PriceRange:      shop.PriceRange,
		SeatingCapacity: shop.SeatingCapacity,
		OpeningHours:    shop.OpeningHours,
		WeeklyHolidays:  shop.WeeklyHolidays,
		HolidayNote:     shop.HolidayNote,
		ReserveStart:    shop.ReserveStart,
		ReserveEnd:      shop.ReserveEnd,
		Image:           shop.Image,
		CategoryID:      shop.CategoryID,
		TagIDs:          tagIDs,
		IsPublished:     shop.IsPublished,
	})
}

// CreateShop registers a new listing.
func (h *AdminHandler) CreateShop(c echo.Context) error {
	var req shopReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if msg, ok := req.validate(); !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	id, err := h.Shops.Create(ctx, req.toModel(), req.TagIDs)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create failed"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"id": id, "message": "shop created"})
}

// UpdateShop rewrites a listing and its tag assignments.
func (h *AdminHandler) UpdateShop(c echo.Context) error {
	id, ok := paramUint(c, "id")
	if !ok {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
	}
	var req shopReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if msg, ok := req.validate(); !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	shop := req.toModel()
	shop.ID = id
	if err := h.Shops.Update(ctx, shop, req.TagIDs); err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "shop updated"})
}

// DeleteShop removes a listing and everything hanging off it.
func (h *AdminHandler) DeleteShop(c echo.Context) error {
	id, ok := paramUint(c, "id")
	if !ok {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Shops.Delete(ctx, id); err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "shop deleted"})
}

// ----- categories and tags -----

type taxonomyReq struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

func (r taxonomyReq) validate() (string, bool) {
	if strings.TrimSpace(r.Name) == "" || strings.TrimSpace(r.Slug) == "" {
		return "name and slug required", false
	}
	return "", true
}

func (h *AdminHandler) CreateCategory(c echo.Context) error {
	var req taxonomyReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if msg, ok := req.validate(); !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	id, err := h.Categories.Create(ctx, strings.TrimSpace(req.Name), strings.TrimSpace(req.Slug))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create failed"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"id": id, "message": "category created"})
}

func (h *AdminHandler) UpdateCategory(c echo.Context) error {
	id, ok := paramUint(c, "id")
	if !ok {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
	}
	var req taxonomyReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if msg, ok := req.validate(); !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Categories.Update(ctx, id, strings.TrimSpace(req.Name), strings.TrimSpace(req.Slug)); err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "category updated"})
}

func (h *AdminHandler) DeleteCategory(c echo.Context) error {
	id, ok := paramUint(c, "id")
	if !ok {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Categories.Delete(ctx, id); err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "category deleted"})
}

func (h *AdminHandler) CreateTag(c echo.Context) error {
	var req taxonomyReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if msg, ok := req.validate(); !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	id, err := h.Tags.Create(ctx, strings.TrimSpace(req.Name), strings.TrimSpace(req.Slug))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create failed"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"id": id, "message": "tag created"})
}

func (h *AdminHandler) UpdateTag(c echo.Context) error {
	id, ok := paramUint(c, "id")
	if !ok {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
	}
	var req taxonomyReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if msg, ok := req.validate(); !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Tags.Update(ctx, id, strings.TrimSpace(req.Name), strings.TrimSpace(req.Slug)); err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "tag updated"})
}

func (h *AdminHandler) DeleteTag(c echo.Context) error {
	id, ok := paramUint(c, "id")
	if !ok {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Tags.Delete(ctx, id); err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "tag deleted"})
}

// ----- irregular holidays -----

type holidayReq struct {
	Date string `json:"date"` // "2006-01-02"
}

// ListHolidays returns a shop's one-off closing dates.
func (h *AdminHandler) ListHolidays(c echo.Context) error {
	shopID, ok := paramUint(c, "id")
	if !ok {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if _, err := h.Shops.GetByID(ctx, shopID); err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load failed"})
	}

	rows, err := h.Holidays.ListForShop(ctx, shopID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list failed"})
	}
	out := make([]echo.Map, 0, len(rows))
	for _, r := range rows {
		out = append(out, echo.Map{"id": r.ID, "date": r.Date.Format("2006-01-02")})
	}
	return c.JSON(http.StatusOK, echo.Map{"holidays": out})
}

// CreateHoliday registers a closing date for a shop.
func (h *AdminHandler) CreateHoliday(c echo.Context) error {
	shopID, ok := paramUint(c, "id")
	if !ok {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
	}
	var req holidayReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	date, err := time.Parse("2006-01-02", strings.TrimSpace(req.Date))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "date must be YYYY-MM-DD"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if _, err := h.Shops.GetByID(ctx, shopID); err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load failed"})
	}

	id, err := h.Holidays.Create(ctx, shopID, date)
	if err != nil {
		if err == repository.ErrHolidayExists {
			return c.JSON(http.StatusConflict, echo.Map{"error": "holiday already registered"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create failed"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"id": id, "message": "holiday registered"})
}

// DeleteHoliday drops a closing date.
func (h *AdminHandler) DeleteHoliday(c echo.Context) error {
	id, ok := paramUint(c, "holiday_id")
	if !ok {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Holidays.Delete(ctx, id); err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "holiday deleted"})
}
