package handler

import (
	"database/sql"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/tabegoro/tabegoro/internal/repository"
)

// FavoriteHandler serves the paid-member favorite toggle and list.
type FavoriteHandler struct {
	Shops     *repository.ShopRepo
	Favorites *repository.FavoriteRepo
}

func NewFavoriteHandler(s *repository.ShopRepo, f *repository.FavoriteRepo) *FavoriteHandler {
	return &FavoriteHandler{Shops: s, Favorites: f}
}

// Toggle flips the favorite state for a shop and reports the new state.
func (h *FavoriteHandler) Toggle(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required", "redirect": "/login/"})
	}
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

	favorited, err := h.Favorites.Toggle(ctx, uid, shopID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "toggle failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"favorited": favorited})
}

// ListMine returns the caller's saved shops.
func (h *FavoriteHandler) ListMine(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required", "redirect": "/login/"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	rows, err := h.Favorites.ListByUser(ctx, uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"favorites": rows})
}
