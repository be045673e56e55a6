package services

import (
	"context"
	"errors"
	"net/http"
	"regexp"
	"strings"

	"github.com/japanesestudent/account-service/internal/auth"
	"github.com/japanesestudent/account-service/internal/httperr"
	"github.com/japanesestudent/account-service/internal/models"
	"go.uber.org/zap"
)

// MinPasswordLength is the shortest password accepted at registration
const MinPasswordLength = 6

// UserRepository is the interface that wraps methods for User table data access
type UserRepository interface {
	// Method Create inserts a new user into the database.
	//
	// "user" parameter is used to create a new user. Generated fields are
	// filled in on success.
	//
	// If the email is already registered, models.ErrDuplicateEmail is returned.
	Create(ctx context.Context, user *models.User) error
	// Method GetByEmail retrieves a user by email.
	//
	// If user with such email does not exist, models.ErrUserNotFound is
	// returned together with "nil" value.
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	// Method GetByID retrieves a user by ID.
	//
	// If user with such ID does not exist, models.ErrUserNotFound is
	// returned together with "nil" value.
	GetByID(ctx context.Context, id string) (*models.User, error)
	// Method List retrieves a page of users.
	List(ctx context.Context, page, limit int) ([]*models.User, error)
}

// authService implements authentication business logic
type authService struct {
	userRepo UserRepository
	codec    *auth.TokenCodec
	logger   *zap.Logger
}

// NewAuthService creates a new auth service
func NewAuthService(userRepo UserRepository, codec *auth.TokenCodec, logger *zap.Logger) *authService {
	return &authService{
		userRepo: userRepo,
		codec:    codec,
		logger:   logger,
	}
}

// emailRegex validates email format
var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// Register validates the registration request, hashes the password and
// creates the user. The created user is returned with its generated fields.
func (s *authService) Register(ctx context.Context, req *models.RegisterRequest) (*models.User, error) {
	if err := validateRegisterRequest(req); err != nil {
		return nil, err
	}

	passwordHash, err := auth.HashPassword(req.Password)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrEmptyPassword):
			return nil, httperr.BadRequest(httperr.MsgEmptyPassword)
		case errors.Is(err, auth.ErrPasswordTooLong):
			return nil, httperr.BadRequest(httperr.MsgExceededMaxPasswordLength(auth.MaxPasswordLength))
		default:
			s.logger.Error("failed to hash password", zap.Error(err))
			return nil, httperr.New(httperr.MsgHashingError, http.StatusInternalServerError)
		}
	}

	user := &models.User{
		Name:         strings.TrimSpace(req.Name),
		Email:        strings.TrimSpace(strings.ToLower(req.Email)),
		PasswordHash: passwordHash,
		Role:         models.RoleUser, // Default role
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, models.ErrDuplicateEmail) {
			return nil, httperr.Conflict(httperr.MsgEmailExist)
		}
		s.logger.Error("failed to create user", zap.Error(err))
		return nil, httperr.ServerError()
	}

	return user, nil
}

// Login authenticates the user and issues a session token. Unknown email
// and wrong password both map to the same credentials error.
func (s *authService) Login(ctx context.Context, req *models.LoginRequest) (string, error) {
	if err := validateLoginRequest(req); err != nil {
		return "", err
	}

	user, err := s.userRepo.GetByEmail(ctx, strings.TrimSpace(strings.ToLower(req.Email)))
	if err != nil {
		if errors.Is(err, models.ErrUserNotFound) {
			return "", httperr.Unauthorized(httperr.MsgWrongCredentials)
		}
		s.logger.Error("failed to get user by email", zap.Error(err))
		return "", httperr.ServerError()
	}

	// Compare against the record already fetched, no second lookup
	matches, err := auth.ComparePassword(req.Password, user.PasswordHash)
	if err != nil {
		s.logger.Error("failed to compare password", zap.Error(err))
		return "", httperr.New(httperr.MsgInvalidHashFormat, http.StatusInternalServerError)
	}
	if !matches {
		return "", httperr.Unauthorized(httperr.MsgWrongCredentials)
	}

	token, err := s.codec.Issue(user.ID)
	if err != nil {
		s.logger.Error("failed to issue token", zap.Error(err))
		return "", httperr.ServerError()
	}

	return token, nil
}

// validateRegisterRequest checks the registration payload and returns a bad
// request error on the first violation
func validateRegisterRequest(req *models.RegisterRequest) error {
	if strings.TrimSpace(req.Name) == "" {
		return httperr.BadRequest("Name is required.")
	}
	email := strings.TrimSpace(strings.ToLower(req.Email))
	if email == "" {
		return httperr.BadRequest("Email is required.")
	}
	if !emailRegex.MatchString(email) {
		return httperr.BadRequest("Email is invalid.")
	}
	if req.Password == "" {
		return httperr.BadRequest(httperr.MsgEmptyPassword)
	}
	if len(req.Password) < MinPasswordLength {
		return httperr.BadRequest("Password must be at least 6 characters.")
	}
	if req.PasswordConfirm != req.Password {
		return httperr.BadRequest("Passwords do not match.")
	}
	return nil
}

// validateLoginRequest checks the login payload. Validation failures are bad
// requests, matching the register handling.
func validateLoginRequest(req *models.LoginRequest) error {
	email := strings.TrimSpace(strings.ToLower(req.Email))
	if email == "" {
		return httperr.BadRequest("Email is required.")
	}
	if !emailRegex.MatchString(email) {
		return httperr.BadRequest("Email is invalid.")
	}
	if req.Password == "" {
		return httperr.BadRequest(httperr.MsgEmptyPassword)
	}
	return nil
}
