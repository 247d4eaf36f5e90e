// Package handler defines the HTTP handlers for the service. Handlers bind
// JSON request bodies into DTOs, call repositories with a bounded context
// and translate sentinel errors into HTTP status codes. Responses that
// correspond to a page transition carry a "redirect" hint for the client.
package handler

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
)

// dbTimeout bounds every repository call made from a handler.
const dbTimeout = 5 * time.Second

// getUserID extracts the authenticated user's id from echo.Context.
func getUserID(c echo.Context) (string, error) {
	if s, ok := c.Get("user_id").(string); ok && s != "" {
		return s, nil
	}
	return "", errors.New("invalid user_id in context")
}

// viewerID returns the caller's id or "" for anonymous requests.
func viewerID(c echo.Context) string {
	s, _ := c.Get("user_id").(string)
	return s
}

// paramUint parses a positive numeric path parameter.
func paramUint(c echo.Context, name string) (uint64, bool) {
	n, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || n == 0 {
		return 0, false
	}
	return n, true
}

// reqCtx derives a bounded context for repository calls.
func reqCtx(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), dbTimeout)
}
