package handler

import (
	"database/sql"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/tabegoro/tabegoro/internal/repository"
)

// AccountHandler serves the member's own profile and billing history.
type AccountHandler struct {
	Users  *repository.UserRepo
	Orders *repository.OrderRepo
}

func NewAccountHandler(u *repository.UserRepo, o *repository.OrderRepo) *AccountHandler {
	return &AccountHandler{Users: u, Orders: o}
}

type profileResp struct {
	ID         string `json:"id"`
	Username   string `json:"username"`
	Email      string `json:"email"`
	Zipcode    string `json:"zipcode"`
	Prefecture string `json:"prefecture"`
	City       string `json:"city"`
	Address1   string `json:"address1"`
	Address2   string `json:"address2"`
	Tel        string `json:"tel"`
	IsPaying   bool   `json:"is_paying"`
	CardBrand  string `json:"card_brand,omitempty"`
	CardLast4  string `json:"card_last4,omitempty"`
}

type updateProfileReq struct {
	Username   string `json:"username"`
	Zipcode    string `json:"zipcode"`
	Prefecture string `json:"prefecture"`
	City       string `json:"city"`
	Address1   string `json:"address1"`
	Address2   string `json:"address2"`
	Tel        string `json:"tel"`
}

// Me returns the caller's profile and subscription summary.
func (h *AccountHandler) Me(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required", "redirect": "/login/"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	u, err := h.Users.GetByID(ctx, uid)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required", "redirect": "/login/"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load user failed"})
	}

	return c.JSON(http.StatusOK, profileResp{
		ID:         u.ID,
		Username:   u.Username,
		Email:      u.Email,
		Zipcode:    u.Zipcode,
		Prefecture: u.Prefecture,
		City:       u.City,
		Address1:   u.Address1,
		Address2:   u.Address2,
		Tel:        u.Tel,
		IsPaying:   u.IsPaymentStatus,
		CardBrand:  u.PayCardBrand,
		CardLast4:  u.PayCardLast4,
	})
}

// Update rewrites the caller's editable profile fields.
func (h *AccountHandler) Update(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required", "redirect": "/login/"})
	}

	var req updateProfileReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if strings.TrimSpace(req.Username) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "username required"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	err = h.Users.UpdateProfile(ctx, uid, req.Username, req.Zipcode, req.Prefecture, req.City, req.Address1, req.Address2, req.Tel)
	if err != nil {
		if err == repository.ErrEmailExists {
			return c.JSON(http.StatusConflict, echo.Map{"error": "username already exists"})
		}
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required", "redirect": "/login/"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "profile updated", "redirect": "/mypage/"})
}

type orderResp struct {
	ID          string `json:"id"`
	IsConfirmed bool   `json:"is_confirmed"`
	Amount      int    `json:"amount"`
	TaxIncluded int    `json:"tax_included"`
	Memo        string `json:"memo"`
	CreatedAt   string `json:"created_at"`
}

// OrderHistory returns the caller's subscription charges, newest first.
func (h *AccountHandler) OrderHistory(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required", "redirect": "/login/"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	orders, err := h.Orders.ListByUser(ctx, uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list failed"})
	}
	out := make([]orderResp, 0, len(orders))
	for _, o := range orders {
		out = append(out, orderResp{
			ID:          o.ID,
			IsConfirmed: o.IsConfirmed,
			Amount:      o.Amount,
			TaxIncluded: o.TaxIncluded,
			Memo:        o.Memo,
			CreatedAt:   o.CreatedAt.Format(time.RFC3339),
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"orders": out})
}
