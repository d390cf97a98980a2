package services

import "errors"

// Typed domain failures. Controllers translate these to HTTP statuses in a
// single mapping layer; the services never encode HTTP semantics.
var (
	ErrUserNotFound     = errors.New("user not found")
	ErrCheckInNotFound  = errors.New("check-in not found")
	ErrUsernameTaken    = errors.New("username already exists")
	ErrEmailTaken       = errors.New("email already exists")
	ErrDuplicateCheckIn = errors.New("already checked in today")
)
