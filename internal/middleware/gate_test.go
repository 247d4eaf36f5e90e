package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeChecker struct {
	paying map[string]bool
}

func (f *fakeChecker) IsPaying(_ context.Context, userID string) (bool, error) {
	return f.paying[userID], nil
}

func signToken(t *testing.T, secret, sub string, admin bool) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   sub,
		"admin": admin,
		"exp":   time.Now().Add(time.Hour).Unix(),
	})
	signed, err := tok.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func runChain(t *testing.T, token string, mws ...echo.MiddlewareFunc) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	h := func(c echo.Context) error { return c.NoContent(http.StatusOK) }
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	require.NoError(t, h(c))
	return rec
}

func TestJWTAuthRejectsMissingToken(t *testing.T) {
	rec := runChain(t, "", JWTAuth("secret"))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "/login/")
}

func TestJWTAuthRejectsWrongSecret(t *testing.T) {
	tok := signToken(t, "other", "u-1", false)
	rec := runChain(t, tok, JWTAuth("secret"))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTAuthAcceptsValidToken(t *testing.T) {
	tok := signToken(t, "secret", "u-1", false)
	rec := runChain(t, tok, JWTAuth("secret"))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequirePaidBlocksFreeMember(t *testing.T) {
	store := &fakeChecker{paying: map[string]bool{"u-free": false}}
	tok := signToken(t, "secret", "u-free", false)
	rec := runChain(t, tok, JWTAuth("secret"), RequirePaid(store))
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "/subscription/")
}

func TestRequirePaidAllowsPayingMember(t *testing.T) {
	store := &fakeChecker{paying: map[string]bool{"u-paid": true}}
	tok := signToken(t, "secret", "u-paid", false)
	rec := runChain(t, tok, JWTAuth("secret"), RequirePaid(store))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireAdmin(t *testing.T) {
	member := signToken(t, "secret", "u-1", false)
	rec := runChain(t, member, JWTAuth("secret"), RequireAdmin())
	assert.Equal(t, http.StatusForbidden, rec.Code)

	admin := signToken(t, "secret", "u-2", true)
	rec = runChain(t, admin, JWTAuth("secret"), RequireAdmin())
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestOptionalJWTLetsAnonymousThrough(t *testing.T) {
	rec := runChain(t, "", OptionalJWT("secret"))
	assert.Equal(t, http.StatusOK, rec.Code)
}
