package models

import "errors"

var (
	// ErrUserNotFound is returned by repositories when no user matches a lookup
	ErrUserNotFound = errors.New("user not found")
	// ErrDuplicateEmail is returned by repositories when an email is already registered
	ErrDuplicateEmail = errors.New("email already exists")
)
