package handler

import (
	"context"
	"time"

	"github.com/iliyamo/user-auth-service/internal/model"
)

// UserStore is the credential store contract the handlers depend on.
// *repository.UserRepo satisfies it in production; tests plug in an
// in-memory fake.
type UserStore interface {
	Create(ctx context.Context, email, passwordHash, name string) (model.User, error)
	GetByEmail(ctx context.Context, email string) (model.User, error)
	GetByID(ctx context.Context, id uint64) (model.User, error)
	List(ctx context.Context, page, limit int) ([]model.User, int64, error)
	UpdateRole(ctx context.Context, id uint64, role string) (model.User, error)
	Delete(ctx context.Context, id uint64) error
}

// TokenStore is the refresh token ledger contract, satisfied by
// *repository.TokenRepo.
type TokenStore interface {
	Store(ctx context.Context, userID uint64, tokenHash string, expiresAt time.Time) error
	Exists(ctx context.Context, tokenHash string) (bool, error)
	Revoke(ctx context.Context, tokenHash string) error
	DeleteAllForUser(ctx context.Context, userID uint64) error
}
