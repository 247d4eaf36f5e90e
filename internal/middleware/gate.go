package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// PaymentChecker reports the caller's current paid-subscription state.
// It is deliberately re-read per request instead of carried in the access
// token so a cancellation locks the member out immediately.
type PaymentChecker interface {
	IsPaying(ctx context.Context, userID string) (bool, error)
}

// RequirePaid gates paid-member features. The caller must already be
// authenticated by JWTAuth; non-paying members receive 403 with a pointer
// to the subscription page.
func RequirePaid(store PaymentChecker) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			uid, ok := c.Get("user_id").(string)
			if !ok || uid == "" {
				return c.JSON(http.StatusUnauthorized, echo.Map{
					"error":    "authentication required",
					"redirect": "/login/",
				})
			}
			ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
			defer cancel()
			paying, err := store.IsPaying(ctx, uid)
			if err != nil {
				return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
			}
			if !paying {
				return c.JSON(http.StatusForbidden, echo.Map{
					"error":    "paid membership required",
					"redirect": "/subscription/",
				})
			}
			return next(c)
		}
	}
}

// RequireAdmin restricts a route group to administrator accounts.
func RequireAdmin() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			admin, ok := c.Get("is_admin").(bool)
			if !ok || !admin {
				return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
			}
			return next(c)
		}
	}
}
