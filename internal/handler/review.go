package handler

import (
	"database/sql"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/tabegoro/tabegoro/internal/repository"
)

// ReviewHandler serves review listing (public) and authoring (paid members).
type ReviewHandler struct {
	Shops   *repository.ShopRepo
	Reviews *repository.ReviewRepo
}

func NewReviewHandler(s *repository.ShopRepo, r *repository.ReviewRepo) *ReviewHandler {
	return &ReviewHandler{Shops: s, Reviews: r}
}

type reviewReq struct {
	Stars   int    `json:"stars"`
	Comment string `json:"comment"`
}

func (r reviewReq) validate() (string, bool) {
	if r.Stars < 1 || r.Stars > 5 {
		return "stars must be between 1 and 5", false
	}
	if strings.TrimSpace(r.Comment) == "" {
		return "comment required", false
	}
	return "", true
}

// ListForShop returns the shop's reviews. Authenticated viewers get their
// own review flagged as "mine".
func (h *ReviewHandler) ListForShop(c echo.Context) error {
	shopID, ok := paramUint(c, "id")
	if !ok {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if _, err := h.Shops.GetPublishedByID(ctx, shopID); err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load failed"})
	}

	rows, err := h.Reviews.ListForShop(ctx, shopID, viewerID(c))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list failed"})
	}
	count, avg, err := h.Reviews.Stats(ctx, shopID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"reviews":      rows,
		"review_count": count,
		"avg_stars":    avg,
	})
}

// Create posts a review on a shop. One review per member per shop; a second
// attempt is reported as a conflict.
func (h *ReviewHandler) Create(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required", "redirect": "/login/"})
	}
	shopID, ok := paramUint(c, "id")
	if !ok {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
	}

	var req reviewReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if msg, ok := req.validate(); !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if _, err := h.Shops.GetPublishedByID(ctx, shopID); err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load failed"})
	}

	id, err := h.Reviews.Create(ctx, uid, shopID, req.Stars, strings.TrimSpace(req.Comment))
	if err != nil {
		if err == repository.ErrDuplicateReview {
			return c.JSON(http.StatusConflict, echo.Map{"error": "you have already reviewed this restaurant"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create failed"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"id": id, "message": "review posted"})
}

// Update rewrites the caller's own review.
func (h *ReviewHandler) Update(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required", "redirect": "/login/"})
	}
	reviewID, ok := paramUint(c, "review_id")
	if !ok {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
	}

	var req reviewReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if msg, ok := req.validate(); !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Reviews.Update(ctx, reviewID, uid, req.Stars, strings.TrimSpace(req.Comment)); err != nil {
		switch err {
		case sql.ErrNoRows:
			return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
		case repository.ErrForbidden:
			return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "review updated"})
}

// Delete removes the caller's own review.
func (h *ReviewHandler) Delete(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required", "redirect": "/login/"})
	}
	reviewID, ok := paramUint(c, "review_id")
	if !ok {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Reviews.Delete(ctx, reviewID, uid); err != nil {
		switch err {
		case sql.ErrNoRows:
			return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
		case repository.ErrForbidden:
			return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "review deleted"})
}
