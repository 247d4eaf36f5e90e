package handler

import (
	"database/sql"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/tabegoro/tabegoro/internal/model"
	"github.com/tabegoro/tabegoro/internal/repository"
)

// ShopHandler serves the public browse and search surface.
type ShopHandler struct {
	Shops      *repository.ShopRepo
	Categories *repository.CategoryRepo
	Tags       *repository.TagRepo
	Reviews    *repository.ReviewRepo
	Favorites  *repository.FavoriteRepo
}

func NewShopHandler(s *repository.ShopRepo, cat *repository.CategoryRepo, tag *repository.TagRepo, rev *repository.ReviewRepo, fav *repository.FavoriteRepo) *ShopHandler {
	return &ShopHandler{Shops: s, Categories: cat, Tags: tag, Reviews: rev, Favorites: fav}
}

// Index lists every shop for the landing page, newest first, with review
// aggregates. Unpublished listings are included as teasers; they carry
// is_published=false and have no detail page until published. The category
// and tag lists ride along for the filter sidebar.
func (h *ShopHandler) Index(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	rows, err := h.Shops.ListAnnotated(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list failed"})
	}
	cats, err := h.Categories.List(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list failed"})
	}
	tags, err := h.Tags.List(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"shops": rows, "categories": cats, "tags": tags})
}

// Search returns published shops matching keyword/category/tag filters.
// Every keyword token must match; tokens separated by full-width spaces are
// honored the same as ASCII ones.
func (h *ShopHandler) Search(c echo.Context) error {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	if page < 1 {
		page = 1
	}
	pageSize, _ := strconv.Atoi(c.QueryParam("page_size"))
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	q := repository.ShopSearchQuery{
		Keyword:    c.QueryParam("keyword"),
		CategoryID: c.QueryParam("category_id"),
		TagID:      c.QueryParam("tag_id"),
		Page:       page,
		PageSize:   pageSize,
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	rows, total, err := h.Shops.Search(ctx, q)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "search failed"})
	}

	// Filter lists for the sidebar.
	cats, err := h.Categories.List(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "search failed"})
	}
	tags, err := h.Tags.List(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "search failed"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"restaurants": rows,
		"total":       total,
		"page":        page,
		"page_size":   pageSize,
		"categories":  cats,
		"tags":        tags,
	})
}

type shopDetailResp struct {
	ID              uint64      `json:"id"`
	Name            string      `json:"name"`
	Mail            string      `json:"mail"`
	Zipcode         string      `json:"zipcode"`
	Address         string      `json:"address"`
	Tel             string      `json:"tel"`
	Description     string      `json:"description"`
	PriceRange      string      `json:"price_range"`
	SeatingCapacity string      `json:"seating_capacity"`
	OpeningHours    string      `json:"opening_hours"`
	WeeklyHolidays  string      `json:"weekly_holidays"`
	HolidayNote     string      `json:"holiday_note"`
	Image           string      `json:"image"`
	Category        string      `json:"category"`
	Tags            []model.Tag `json:"tags"`
	Reservable      bool        `json:"reservable"`
	ReviewCount     int64       `json:"review_count"`
	AvgStars        float64     `json:"avg_stars"`
	IsFavorited     bool        `json:"is_favorited"`
}

// Detail returns one published shop with its tags, category and review
// aggregates. When the caller is authenticated the favorite flag is
// populated.
func (h *ShopHandler) Detail(c echo.Context) error {
	id, ok := paramUint(c, "id")
	if !ok {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	shop, err := h.Shops.GetPublishedByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load failed"})
	}

	catName, err := h.Shops.CategoryName(ctx, shop.CategoryID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load failed"})
	}
	tags, err := h.Shops.TagsForShop(ctx, shop.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load failed"})
	}
	count, avg, err := h.Reviews.Stats(ctx, shop.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load failed"})
	}

	favorited := false
	if uid := viewerID(c); uid != "" {
		favorited, err = h.Favorites.IsFavorited(ctx, uid, shop.ID)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load failed"})
		}
	}

	return c.JSON(http.StatusOK, shopDetailResp{
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
		Image:           shop.Image,
		Category:        catName,
		Tags:            tags,
		Reservable:      shop.ReserveStart != nil && shop.ReserveEnd != nil,
		ReviewCount:     count,
		AvgStars:        avg,
		IsFavorited:     favorited,
	})
}
