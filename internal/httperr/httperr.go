// Package httperr defines the typed error that crosses the HTTP boundary.
// Every failure leaving a service or the auth guard is converted to an
// Error carrying a status code and a client-safe message; internal detail
// stays in the server logs.
package httperr

import (
	"fmt"
	"net/http"
)

// Client-safe message texts
const (
	MsgServerError       = "Server error. Please try again later."
	MsgWrongCredentials  = "Email or password is incorrect."
	MsgEmailExist        = "A user with this email already exists."
	MsgUserNoLongerExist = "User belonging to this token no longer exists."
	MsgEmptyPassword     = "Password cannot be empty."
	MsgHashingError      = "Error while hashing password."
	MsgInvalidHashFormat = "Invalid password hash format."
	MsgInvalidToken      = "Authentication token is invalid or has expired."
	MsgTokenNotProvided  = "You are not logged in, please provide a token."
	MsgPermissionDenied  = "You are not allowed to perform this action."
)

// MsgExceededMaxPasswordLength formats the over-length password message
func MsgExceededMaxPasswordLength(max int) string {
	return fmt.Sprintf("Password must not be more than %d characters.", max)
}

// Error is an HTTP-facing error with a status code and a safe message
type Error struct {
	Message string
	Status  int
}

func (e *Error) Error() string {
	return e.Message
}

// New creates an Error with an explicit status code
func New(message string, status int) *Error {
	return &Error{Message: message, Status: status}
}

// BadRequest creates a 400 error
func BadRequest(message string) *Error {
	return New(message, http.StatusBadRequest)
}

// Unauthorized creates a 401 error
func Unauthorized(message string) *Error {
	return New(message, http.StatusUnauthorized)
}

// Forbidden creates a 403 error
func Forbidden(message string) *Error {
	return New(message, http.StatusForbidden)
}

// Conflict creates a 409 error
func Conflict(message string) *Error {
	return New(message, http.StatusConflict)
}

// ServerError creates a 500 error with the generic message. The underlying
// cause is intentionally not carried here, it belongs in the logs.
func ServerError() *Error {
	return New(MsgServerError, http.StatusInternalServerError)
}
