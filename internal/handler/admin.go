package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/user-auth-service/internal/httperr"
	"github.com/iliyamo/user-auth-service/internal/middleware"
	"github.com/iliyamo/user-auth-service/internal/model"
	"github.com/iliyamo/user-auth-service/internal/queue"
	"github.com/iliyamo/user-auth-service/internal/repository"
	queue_publisher "github.com/iliyamo/user-auth-service/internal/service"
)

// AdminHandler implements the role-gated user management endpoints.  All
// of its routes sit behind Authenticate + RequireAdmin.
type AdminHandler struct {
	Users   UserStore
	Tokens  TokenStore
	Publish func(ctx context.Context, ev queue.AuthEvent) error
}

func NewAdminHandler(u UserStore, t TokenStore) *AdminHandler {
	return &AdminHandler{Users: u, Tokens: t, Publish: queue_publisher.PublishAuthEvent}
}

// userResponse is the outward projection of a user.  The password hash
// has no field here and therefore cannot leak through any admin endpoint.
type userResponse struct {
	ID        uint64    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name,omitempty"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func toUserResponse(u model.User) userResponse {
	return userResponse{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// Dashboard greets the authenticated admin.  It exists mostly as the
// smallest possible admin-gated probe endpoint.
func (h *AdminHandler) Dashboard(c echo.Context) error {
	id, _ := middleware.CurrentIdentity(c)
	return c.JSON(http.StatusOK, echo.Map{
		"message": "welcome to the admin dashboard",
		"userId":  id.UserID,
	})
}

// ListUsers returns one page of users, newest first, with paging totals.
func (h *AdminHandler) ListUsers(c echo.Context) error {
	page := queryInt(c, "page", 1)
	limit := queryInt(c, "limit", 10)
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 10
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	users, total, err := h.Users.List(ctx, page, limit)
	if err != nil {
		return httperr.Internal(err)
	}

	out := make([]userResponse, 0, len(users))
	for _, u := range users {
		out = append(out, toUserResponse(u))
	}
	totalPages := (total + int64(limit) - 1) / int64(limit)
	return c.JSON(http.StatusOK, echo.Map{
		"users":      out,
		"total":      total,
		"page":       page,
		"limit":      limit,
		"totalPages": totalPages,
	})
}

// GetUser returns a single user by id.
func (h *AdminHandler) GetUser(c echo.Context) error {
	id, err := parseUserID(c)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	u, err := h.Users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return httperr.NotFound("user not found")
		}
		return httperr.Internal(err)
	}
	return c.JSON(http.StatusOK, toUserResponse(u))
}

type updateRoleReq struct {
	Role string `json:"role"`
}

// UpdateUserRole changes a user's role to "user" or "admin".  Outstanding
// access tokens keep their old role until they expire; the next refresh
// picks up the new one.
func (h *AdminHandler) UpdateUserRole(c echo.Context) error {
	id, err := parseUserID(c)
	if err != nil {
		return err
	}
	var req updateRoleReq
	if err := c.Bind(&req); err != nil {
		return httperr.BadRequest("invalid body")
	}
	req.Role = strings.ToLower(strings.TrimSpace(req.Role))
	if !model.ValidRole(req.Role) {
		return httperr.BadRequest("role must be 'user' or 'admin'")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	u, err := h.Users.UpdateRole(ctx, id, req.Role)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return httperr.NotFound("user not found")
		}
		return httperr.Internal(err)
	}

	h.publishEvent(queue.AuthEvent{
		Type:       queue.EventUserRoleChanged,
		UserID:     u.ID,
		Email:      u.Email,
		Role:       u.Role,
		OccurredAt: time.Now().UTC().Format(time.RFC3339),
	})

	return c.JSON(http.StatusOK, echo.Map{
		"message": "user role updated to '" + u.Role + "'",
		"user":    toUserResponse(u),
	})
}

// DeleteUser removes a user together with all of that user's refresh
// tokens, so any session the user still holds dies with the account.
func (h *AdminHandler) DeleteUser(c echo.Context) error {
	id, err := parseUserID(c)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	// Read first so the deletion event can carry the email.
	u, getErr := h.Users.GetByID(ctx, id)

	if err := h.Users.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return httperr.NotFound("user not found")
		}
		return httperr.Internal(err)
	}
	if err := h.Tokens.DeleteAllForUser(ctx, id); err != nil {
		return httperr.Internal(err)
	}

	ev := queue.AuthEvent{
		Type:       queue.EventUserDeleted,
		UserID:     id,
		OccurredAt: time.Now().UTC().Format(time.RFC3339),
	}
	if getErr == nil {
		ev.Email = u.Email
		ev.Role = u.Role
	}
	h.publishEvent(ev)

	return c.JSON(http.StatusOK, echo.Map{"message": "user deleted successfully"})
}

func (h *AdminHandler) publishEvent(ev queue.AuthEvent) {
	if h.Publish == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = h.Publish(ctx, ev)
	}()
}

// parseUserID extracts the numeric :id path parameter.
func parseUserID(c echo.Context) (uint64, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, httperr.BadRequest("invalid user id")
	}
	return id, nil
}

func queryInt(c echo.Context, name string, def int) int {
	v := c.QueryParam(name)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
