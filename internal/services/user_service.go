package services

import (
	"context"

	"github.com/japanesestudent/account-service/internal/httperr"
	"github.com/japanesestudent/account-service/internal/models"
	"go.uber.org/zap"
)

// Paging bounds for the user listing
const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 50
)

// userService implements user listing business logic
type userService struct {
	userRepo UserRepository
	logger   *zap.Logger
}

// NewUserService creates a new user service
func NewUserService(userRepo UserRepository, logger *zap.Logger) *userService {
	return &userService{
		userRepo: userRepo,
		logger:   logger,
	}
}

// List retrieves a page of users. Page and limit outside their bounds are a
// bad request.
func (s *userService) List(ctx context.Context, page, limit int) ([]*models.User, error) {
	if page < 1 {
		return nil, httperr.BadRequest("Page must be 1 or greater.")
	}
	if limit < 1 || limit > MaxLimit {
		return nil, httperr.BadRequest("Limit must be between 1 and 50.")
	}

	users, err := s.userRepo.List(ctx, page, limit)
	if err != nil {
		s.logger.Error("failed to list users", zap.Error(err))
		return nil, httperr.ServerError()
	}

	return users, nil
}
