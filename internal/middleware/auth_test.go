package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/user-auth-service/internal/httperr"
	"github.com/iliyamo/user-auth-service/internal/model"
	"github.com/iliyamo/user-auth-service/internal/utils"
)

const testSecret = "middleware-test-secret"

func newContext(t *testing.T, authHeader string) echo.Context {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	return e.NewContext(req, httptest.NewRecorder())
}

// run pushes a context through a middleware with a probe handler and
// reports whether the handler was reached.
func run(mw echo.MiddlewareFunc, c echo.Context) (reached bool, err error) {
	h := mw(func(c echo.Context) error {
		reached = true
		return nil
	})
	return reached, h(c)
}

func kindOf(t *testing.T, err error) httperr.Kind {
	t.Helper()
	var appErr *httperr.Error
	require.ErrorAs(t, err, &appErr)
	return appErr.Kind
}

func TestAuthenticateMissingHeader(t *testing.T) {
	reached, err := run(Authenticate(testSecret), newContext(t, ""))
	assert.False(t, reached)
	assert.Equal(t, httperr.KindUnauthorized, kindOf(t, err))
}

func TestAuthenticateMalformedHeader(t *testing.T) {
	for _, header := range []string{"Basic abc", "Bearer", "bearer x", "token"} {
		reached, err := run(Authenticate(testSecret), newContext(t, header))
		assert.False(t, reached, "header %q", header)
		assert.Equal(t, httperr.KindUnauthorized, kindOf(t, err), "header %q", header)
	}
}

func TestAuthenticateInvalidToken(t *testing.T) {
	reached, err := run(Authenticate(testSecret), newContext(t, "Bearer garbage.token.value"))
	assert.False(t, reached)
	assert.Equal(t, httperr.KindForbidden, kindOf(t, err))
}

func TestAuthenticateWrongSecret(t *testing.T) {
	tok, err := utils.NewAccessToken("another-secret", 1, model.RoleUser, 15)
	require.NoError(t, err)

	reached, err := run(Authenticate(testSecret), newContext(t, "Bearer "+tok.Token))
	assert.False(t, reached)
	assert.Equal(t, httperr.KindForbidden, kindOf(t, err))
}

func TestAuthenticateExpiredToken(t *testing.T) {
	tok, err := utils.NewAccessToken(testSecret, 1, model.RoleUser, -1)
	require.NoError(t, err)

	reached, err := run(Authenticate(testSecret), newContext(t, "Bearer "+tok.Token))
	assert.False(t, reached)
	assert.Equal(t, httperr.KindForbidden, kindOf(t, err))
}

func TestAuthenticateAttachesIdentity(t *testing.T) {
	tok, err := utils.NewAccessToken(testSecret, 42, model.RoleAdmin, 15)
	require.NoError(t, err)

	c := newContext(t, "Bearer "+tok.Token)
	reached, err := run(Authenticate(testSecret), c)
	require.NoError(t, err)
	assert.True(t, reached)

	id, ok := CurrentIdentity(c)
	require.True(t, ok)
	assert.Equal(t, uint64(42), id.UserID)
	assert.Equal(t, model.RoleAdmin, id.Role)
}

func TestRequireAdminWithoutIdentity(t *testing.T) {
	// The gate treats a missing identity as unauthenticated even though a
	// correctly assembled chain never reaches it without one.
	reached, err := run(RequireAdmin(), newContext(t, ""))
	assert.False(t, reached)
	assert.Equal(t, httperr.KindUnauthorized, kindOf(t, err))
}

func TestRequireAdminRejectsNonAdmin(t *testing.T) {
	c := newContext(t, "")
	c.Set(identityKey, Identity{UserID: 7, Role: model.RoleUser})

	reached, err := run(RequireAdmin(), c)
	assert.False(t, reached)
	assert.Equal(t, httperr.KindForbidden, kindOf(t, err))
}

func TestRequireAdminAllowsAdmin(t *testing.T) {
	c := newContext(t, "")
	c.Set(identityKey, Identity{UserID: 7, Role: model.RoleAdmin})

	reached, err := run(RequireAdmin(), c)
	require.NoError(t, err)
	assert.True(t, reached)
}
