// Package repository implements data access for users and the refresh
// token ledger over database/sql.  The sentinel errors declared here let
// handlers distinguish failure scenarios without inspecting driver
// errors: ErrEmailExists maps to an HTTP 409, ErrUserNotFound and
// ErrTokenNotFound to 404/403 depending on the caller.
package repository

import "errors"

// ErrEmailExists is returned by UserRepo.Create when the email is already
// taken.  The unique index on users.email is the authority; concurrent
// registrations race there and exactly one wins.
var ErrEmailExists = errors.New("email already exists")

// ErrUserNotFound is returned when a user lookup or mutation targets an id
// or email that has no row.
var ErrUserNotFound = errors.New("user not found")

// ErrTokenNotFound is returned when a refresh token lookup finds no ledger
// row for the given hash.
var ErrTokenNotFound = errors.New("refresh token not found")
