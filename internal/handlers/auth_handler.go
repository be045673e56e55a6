package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/japanesestudent/account-service/internal/auth"
	"github.com/japanesestudent/account-service/internal/models"
	"go.uber.org/zap"
)

// AuthService is the interface that wraps methods for authentication business logic.
type AuthService interface {
	// Method Register performs user credential validation and creation.
	//
	// "req" parameter contains name, email, password and password confirmation.
	//
	// On success the created user is returned with its generated fields filled in.
	Register(ctx context.Context, req *models.RegisterRequest) (*models.User, error)
	// Method Login performs user credential validation and issues a session token.
	//
	// "req" parameter contains email and password.
	//
	// Unknown email and wrong password both produce the same credentials error.
	Login(ctx context.Context, req *models.LoginRequest) (string, error)
}

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	BaseHandler
	authService AuthService
	tokenTTL    time.Duration
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService AuthService, tokenTTL time.Duration, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		BaseHandler: BaseHandler{Logger: logger},
		authService: authService,
		tokenTTL:    tokenTTL,
	}
}

// RegisterRoutes registers all auth handler routes
// Note: This assumes the router is already scoped to /api
func (h *AuthHandler) RegisterRoutes(r chi.Router, authenticated func(http.Handler) http.Handler) {
	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", h.Register)
		r.Post("/login", h.Login)
		r.With(authenticated).Post("/logout", h.Logout)
	})
}

// Register handles POST /auth/register
// @Summary Register a new user
// @Description Register a new user with name, email, password and password confirmation.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body models.RegisterRequest true "Registration request"
// @Success 201 {object} models.UserResponse "User registered successfully"
// @Failure 400 {object} models.Response "Validation error"
// @Failure 409 {object} models.Response "Email already registered"
// @Failure 500 {object} models.Response "Internal server error"
// @Router /auth/register [post]
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.RespondJSON(w, http.StatusBadRequest, models.Response{Status: "fail", Message: "invalid request body"})
		return
	}

	user, err := h.authService.Register(r.Context(), &req)
	if err != nil {
		h.RespondError(w, err)
		return
	}

	h.RespondJSON(w, http.StatusCreated, models.UserResponse{
		Status: "success",
		Data:   models.UserData{User: models.NewFilterUser(user)},
	})
}

// Login handles POST /auth/login
// @Summary Login user
// @Description Authenticate user with email and password. Returns the session token in the body and as an HTTP-only cookie.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body models.LoginRequest true "Login request"
// @Success 200 {object} models.LoginResponse "Login successful"
// @Failure 400 {object} models.Response "Validation error"
// @Failure 401 {object} models.Response "Invalid credentials"
// @Failure 500 {object} models.Response "Internal server error"
// @Router /auth/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.RespondJSON(w, http.StatusBadRequest, models.Response{Status: "fail", Message: "invalid request body"})
		return
	}

	token, err := h.authService.Login(r.Context(), &req)
	if err != nil {
		h.RespondError(w, err)
		return
	}

	h.setTokenCookie(w, token, int(h.tokenTTL.Seconds()))
	h.RespondJSON(w, http.StatusOK, models.LoginResponse{Status: "success", Token: token})
}

// Logout handles POST /auth/logout
// @Summary Logout user
// @Description Expire the session cookie. Bearer tokens remain valid until natural expiry.
// @Tags auth
// @Produce json
// @Success 200 {object} models.Response "Logout successful"
// @Failure 401 {object} models.Response "Not authenticated"
// @Security ApiKeyAuth
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	// No server-side revocation, the cookie is simply expired
	h.setTokenCookie(w, "", -1)
	h.RespondJSON(w, http.StatusOK, models.Response{Status: "success"})
}

// setTokenCookie sets the session token as an HTTP-only cookie
func (h *AuthHandler) setTokenCookie(w http.ResponseWriter, token string, maxAge int) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.TokenCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	})
}
