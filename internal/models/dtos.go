package models

import "time"

// RegisterRequest represents a user registration request
type RegisterRequest struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	PasswordConfirm string `json:"passwordConfirm"`
}

// LoginRequest represents a user login request
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// FilterUser is the public projection of a User, without the password hash
type FilterUser struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	Photo     string    `json:"photo"`
	Verified  bool      `json:"verified"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NewFilterUser builds the public projection of a user
func NewFilterUser(user *User) FilterUser {
	return FilterUser{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		Role:      string(user.Role),
		Photo:     user.Photo,
		Verified:  user.Verified,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}

// NewFilterUsers builds public projections for a list of users
func NewFilterUsers(users []*User) []FilterUser {
	filtered := make([]FilterUser, 0, len(users))
	for _, user := range users {
		filtered = append(filtered, NewFilterUser(user))
	}
	return filtered
}

// UserData wraps a single filtered user in a response payload
type UserData struct {
	User FilterUser `json:"user"`
}

// UserResponse is the envelope for single-user responses
type UserResponse struct {
	Status string   `json:"status"`
	Data   UserData `json:"data"`
}

// UserListResponse is the envelope for the user listing endpoint
type UserListResponse struct {
	Status  string       `json:"status"`
	Users   []FilterUser `json:"users"`
	Results int          `json:"results"`
}

// LoginResponse is the envelope for a successful login
type LoginResponse struct {
	Status string `json:"status"`
	Token  string `json:"token"`
}

// Response is the generic status/message envelope
type Response struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}
