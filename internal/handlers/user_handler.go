package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/japanesestudent/account-service/internal/auth"
	"github.com/japanesestudent/account-service/internal/httperr"
	"github.com/japanesestudent/account-service/internal/models"
	"github.com/japanesestudent/account-service/internal/services"
	"go.uber.org/zap"
)

// UserService is the interface that wraps methods for user listing business logic.
type UserService interface {
	// Method List retrieves a page of users.
	//
	// "page" must be 1 or greater, "limit" between 1 and 50.
	List(ctx context.Context, page, limit int) ([]*models.User, error)
}

// UserHandler handles user-related HTTP requests
type UserHandler struct {
	BaseHandler
	userService UserService
}

// NewUserHandler creates a new user handler
func NewUserHandler(userService UserService, logger *zap.Logger) *UserHandler {
	return &UserHandler{
		BaseHandler: BaseHandler{Logger: logger},
		userService: userService,
	}
}

// RegisterRoutes registers all user handler routes
// Note: This assumes the router is already scoped to /api
func (h *UserHandler) RegisterRoutes(r chi.Router, authenticated, adminOnly func(http.Handler) http.Handler) {
	r.Route("/users", func(r chi.Router) {
		r.With(adminOnly).Get("/", h.GetUsers)
		r.With(authenticated).Get("/me", h.GetMe)
	})
}

// GetMe handles GET /users/me
// @Summary Get authenticated user
// @Description Return the profile of the currently authenticated user.
// @Tags users
// @Produce json
// @Success 200 {object} models.UserResponse "Authenticated user"
// @Failure 401 {object} models.Response "Not authenticated"
// @Failure 500 {object} models.Response "Internal server error"
// @Security ApiKeyAuth
// @Router /users/me [get]
func (h *UserHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.CurrentUser(r.Context())
	if !ok {
		// Route registered without the guard, not an auth failure
		h.Logger.Error("no authenticated user in context", zap.String("path", r.URL.Path))
		h.RespondError(w, httperr.ServerError())
		return
	}

	h.RespondJSON(w, http.StatusOK, models.UserResponse{
		Status: "success",
		Data:   models.UserData{User: models.NewFilterUser(user)},
	})
}

// GetUsers handles GET /users
// @Summary List users
// @Description Return a page of users. Admin only.
// @Tags users
// @Produce json
// @Param page query int false "Page number (default 1)"
// @Param limit query int false "Page size (default 10, max 50)"
// @Success 200 {object} models.UserListResponse "Page of users"
// @Failure 400 {object} models.Response "Invalid paging parameters"
// @Failure 401 {object} models.Response "Not authenticated"
// @Failure 403 {object} models.Response "Permission denied"
// @Failure 500 {object} models.Response "Internal server error"
// @Security ApiKeyAuth
// @Router /users [get]
func (h *UserHandler) GetUsers(w http.ResponseWriter, r *http.Request) {
	page, err := queryInt(r, "page", services.DefaultPage)
	if err != nil {
		h.RespondError(w, httperr.BadRequest("Page must be an integer."))
		return
	}

	limit, err := queryInt(r, "limit", services.DefaultLimit)
	if err != nil {
		h.RespondError(w, httperr.BadRequest("Limit must be an integer."))
		return
	}

	users, err := h.userService.List(r.Context(), page, limit)
	if err != nil {
		h.RespondError(w, err)
		return
	}

	h.RespondJSON(w, http.StatusOK, models.UserListResponse{
		Status:  "success",
		Users:   models.NewFilterUsers(users),
		Results: len(users),
	})
}

// queryInt parses an optional integer query parameter
func queryInt(r *http.Request, name string, fallback int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, nil
	}
	return strconv.Atoi(raw)
}
