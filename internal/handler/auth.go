package handler

import (
    "context"  // context with cancellation for DB calls
    "errors"   // sentinel error matching
    "net/http" // HTTP status codes and cookie primitives
    "strings"  // email normalization
    "time"     // timeouts and cookie expiry

    "github.com/labstack/echo/v4" // Echo framework for HTTP routing

    "github.com/iliyamo/user-auth-service/internal/config"     // app configuration
    "github.com/iliyamo/user-auth-service/internal/httperr"    // domain error taxonomy
    "github.com/iliyamo/user-auth-service/internal/queue"      // auth lifecycle events
    "github.com/iliyamo/user-auth-service/internal/repository" // sentinel errors
    queue_publisher "github.com/iliyamo/user-auth-service/internal/service"
    "github.com/iliyamo/user-auth-service/internal/utils" // hashing and token issuing
)

// refreshCookieName is the cookie carrying the refresh token.  The token
// never appears in a JSON body: HttpOnly + SameSite=Strict keeps it out
// of reach of client-side script.
const refreshCookieName = "refreshToken"

const dbTimeout = 5 * time.Second

// AuthHandler bundles dependencies for the auth endpoints.
type AuthHandler struct {
    Cfg    config.Config
    Users  UserStore
    Tokens TokenStore
    // Publish sends auth lifecycle events to the broker.  Failures are
    // ignored by callers; tests replace it with a no-op.
    Publish func(ctx context.Context, ev queue.AuthEvent) error
}

func NewAuthHandler(cfg config.Config, u UserStore, t TokenStore) *AuthHandler {
    return &AuthHandler{Cfg: cfg, Users: u, Tokens: t, Publish: queue_publisher.PublishAuthEvent}
}

// ----- DTOs -----

type registerReq struct {
    Email    string `json:"email"`
    Password string `json:"password"`
    Name     string `json:"name"`
}
type loginReq struct {
    Email    string `json:"email"`
    Password string `json:"password"`
}

// Register creates a user with the default role.  It deliberately does
// not log the user in: no tokens are issued and nothing touches the
// ledger.  The response carries only the new user's id.
func (h *AuthHandler) Register(c echo.Context) error {
    var req registerReq
    if err := c.Bind(&req); err != nil {
        return httperr.BadRequest("invalid body")
    }
    req.Email = strings.ToLower(strings.TrimSpace(req.Email))
    if req.Email == "" || req.Password == "" {
        return httperr.BadRequest("email and password are required")
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
    defer cancel()

    // Hash before insert; the store never sees the plain password.
    hash, err := utils.HashPassword(req.Password, h.Cfg.BcryptCost)
    if err != nil {
        return httperr.Internal(err)
    }

    u, err := h.Users.Create(ctx, req.Email, hash, strings.TrimSpace(req.Name))
    if err != nil {
        if errors.Is(err, repository.ErrEmailExists) {
            return httperr.Conflict("user already exists")
        }
        return httperr.Internal(err)
    }

    h.publishEvent(queue.AuthEvent{
        Type:       queue.EventUserRegistered,
        UserID:     u.ID,
        Email:      u.Email,
        Role:       u.Role,
        OccurredAt: time.Now().UTC().Format(time.RFC3339),
    })

    return c.JSON(http.StatusCreated, echo.Map{
        "message": "user registered successfully",
        "userId":  u.ID,
    })
}

// Login verifies credentials and issues the token pair: the access token
// in the response body and the refresh token in the HTTP-only cookie,
// with a matching ledger row.  Unknown email and wrong password produce
// the same generic 401 so the endpoint cannot be used to probe for
// registered addresses.
func (h *AuthHandler) Login(c echo.Context) error {
    var req loginReq
    if err := c.Bind(&req); err != nil {
        return httperr.BadRequest("invalid body")
    }
    req.Email = strings.ToLower(strings.TrimSpace(req.Email))
    if req.Email == "" || req.Password == "" {
        return httperr.BadRequest("email and password are required")
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
    defer cancel()

    u, err := h.Users.GetByEmail(ctx, req.Email)
    if err != nil {
        if errors.Is(err, repository.ErrUserNotFound) {
            return httperr.Unauthorized("invalid credentials")
        }
        return httperr.Internal(err)
    }
    if !utils.VerifyPassword(u.PasswordHash, req.Password) {
        return httperr.Unauthorized("invalid credentials")
    }

    access, err := utils.NewAccessToken(h.Cfg.AccessSecret, u.ID, u.Role, h.Cfg.AccessTTLMin)
    if err != nil {
        return httperr.Internal(err)
    }
    refresh, err := utils.NewRefreshToken(h.Cfg.RefreshSecret, u.ID, h.Cfg.RefreshTTLDays)
    if err != nil {
        return httperr.Internal(err)
    }
    if err := h.Tokens.Store(ctx, u.ID, utils.HashRefreshRaw(refresh.Raw), refresh.Exp); err != nil {
        return httperr.Internal(err)
    }

    h.setRefreshCookie(c, refresh.Raw, refresh.Exp)
    return c.JSON(http.StatusOK, echo.Map{
        "message":     "login successful",
        "accessToken": access.Token,
    })
}

// Refresh exchanges a valid refresh cookie for a new access token.  Three
// checks run cheapest-first and all three must pass: the signature, the
// ledger row, and the owning user.  The refresh token itself is not
// rotated; the same cookie stays valid until expiry or logout.
func (h *AuthHandler) Refresh(c echo.Context) error {
    cookie, err := c.Cookie(refreshCookieName)
    if err != nil || cookie.Value == "" {
        return httperr.Unauthorized("no refresh token")
    }
    raw := cookie.Value
    hash := utils.HashRefreshRaw(raw)

    ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
    defer cancel()

    claims, err := utils.ParseRefreshToken(h.Cfg.RefreshSecret, raw)
    if err != nil {
        // Proven invalid: drop any ledger row so the dead token stops
        // occupying the table.
        _ = h.Tokens.Revoke(ctx, hash)
        return httperr.Forbidden("invalid token")
    }

    ok, err := h.Tokens.Exists(ctx, hash)
    if err != nil {
        return httperr.Internal(err)
    }
    if !ok {
        return httperr.Forbidden("token revoked")
    }

    // Role is re-read from the store, not from the old token, so a role
    // change is reflected in the next access token.
    u, err := h.Users.GetByID(ctx, claims.UserID)
    if err != nil {
        if errors.Is(err, repository.ErrUserNotFound) {
            return httperr.Forbidden("user not found")
        }
        return httperr.Internal(err)
    }

    access, err := utils.NewAccessToken(h.Cfg.AccessSecret, u.ID, u.Role, h.Cfg.AccessTTLMin)
    if err != nil {
        return httperr.Internal(err)
    }
    return c.JSON(http.StatusOK, echo.Map{"accessToken": access.Token})
}

// Logout revokes the refresh token named by the cookie and clears the
// cookie.  It never fails visibly: a missing cookie, an unknown token and
// a repeated logout all return 200.
func (h *AuthHandler) Logout(c echo.Context) error {
    if cookie, err := c.Cookie(refreshCookieName); err == nil && cookie.Value != "" {
        ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
        defer cancel()
        // Best-effort: absence of the ledger row is not an error.
        _ = h.Tokens.Revoke(ctx, utils.HashRefreshRaw(cookie.Value))
    }
    h.clearRefreshCookie(c)
    return c.JSON(http.StatusOK, echo.Map{"message": "logged out successfully"})
}

// setRefreshCookie writes the refresh cookie with the contract the
// clients rely on: HttpOnly, SameSite=Strict, Secure in production.
func (h *AuthHandler) setRefreshCookie(c echo.Context, value string, exp time.Time) {
    c.SetCookie(&http.Cookie{
        Name:     refreshCookieName,
        Value:    value,
        Path:     "/",
        Expires:  exp,
        MaxAge:   h.Cfg.RefreshTTLDays * 24 * 60 * 60,
        HttpOnly: true,
        Secure:   h.Cfg.IsProd(),
        SameSite: http.SameSiteStrictMode,
    })
}

func (h *AuthHandler) clearRefreshCookie(c echo.Context) {
    c.SetCookie(&http.Cookie{
        Name:     refreshCookieName,
        Value:    "",
        Path:     "/",
        Expires:  time.Unix(0, 0),
        MaxAge:   -1,
        HttpOnly: true,
        Secure:   h.Cfg.IsProd(),
        SameSite: http.SameSiteStrictMode,
    })
}

func (h *AuthHandler) publishEvent(ev queue.AuthEvent) {
    if h.Publish == nil {
        return
    }
    // Fire and forget off the request goroutine; the publisher logs its
    // own failures.
    go func() {
        ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
        defer cancel()
        _ = h.Publish(ctx, ev)
    }()
}
