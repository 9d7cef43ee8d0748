package middleware // declare the middleware package; contains reusable HTTP middleware functions

import (
    "strings" // string utilities for prefix checking and trimming

    "github.com/labstack/echo/v4" // Echo framework used for defining middleware and handlers

    "github.com/iliyamo/user-auth-service/internal/httperr" // domain error taxonomy
    "github.com/iliyamo/user-auth-service/internal/model"   // role constants
    "github.com/iliyamo/user-auth-service/internal/utils"   // token verification
)

// identityKey is the single context key under which the authenticated
// identity is stored.  It is package-private so only Authenticate can
// populate it; handlers read it through CurrentIdentity and may trust it
// without re-verifying the token.
const identityKey = "auth.identity"

// Identity is the typed request-scoped value carrying who the caller is.
// It replaces ad-hoc per-field context entries: the authentication step
// writes it exactly once and everything downstream is read-only.
type Identity struct {
    UserID uint64
    Role   string
}

// CurrentIdentity returns the identity attached by Authenticate, and
// whether one is present.
func CurrentIdentity(c echo.Context) (Identity, bool) {
    id, ok := c.Get(identityKey).(Identity)
    return id, ok
}

// Authenticate returns an Echo middleware that validates a Bearer access
// token and injects the decoded identity into the request context.  The
// provided secret must be the access-token signing secret.  Status
// mapping is part of the contract: a missing or malformed Authorization
// header is 401 (no credential), while a present but unverifiable token
// is 403 (credential rejected).
func Authenticate(secret string) echo.MiddlewareFunc {
    // The outer function returns a middleware function.  Echo executes this
    // once when registering the middleware.
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        // The returned handler is invoked for each incoming HTTP request.
        return func(c echo.Context) error {
            // Read the Authorization header.  A valid header starts with
            // "Bearer " followed by the JWT.  Anything else means the
            // caller presented no credential at all.
            auth := c.Request().Header.Get("Authorization")
            if !strings.HasPrefix(auth, "Bearer ") {
                return httperr.Unauthorized("no token provided")
            }
            raw := strings.TrimPrefix(auth, "Bearer ")

            // Verify signature, algorithm and expiry in one step.  The
            // parser does not reveal which of them failed and neither do
            // we: every rejection reads "invalid token".
            claims, err := utils.ParseAccessToken(secret, raw)
            if err != nil {
                return httperr.Forbidden("invalid token")
            }

            // Attach the typed identity for downstream middleware and
            // handlers, then continue the chain.
            c.Set(identityKey, Identity{UserID: claims.UserID, Role: claims.Role})
            return next(c)
        }
    }
}

// RequireAdmin returns a middleware that enforces the admin role.  It
// must run after Authenticate; if the identity is missing the chain was
// mis-assembled and the request is treated as unauthenticated rather
// than letting an anonymous caller through.
func RequireAdmin() echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            id, ok := CurrentIdentity(c)
            if !ok {
                return httperr.Unauthorized("unauthorized")
            }
            if id.Role != model.RoleAdmin {
                return httperr.Forbidden("access denied: admins only")
            }
            return next(c)
        }
    }
}
