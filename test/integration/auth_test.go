package integration

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	_ "github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	"github.com/japanesestudent/account-service/internal/auth"
	"github.com/japanesestudent/account-service/internal/config"
	"github.com/japanesestudent/account-service/internal/handlers"
	"github.com/japanesestudent/account-service/internal/models"
	"github.com/japanesestudent/account-service/internal/repositories"
	"github.com/japanesestudent/account-service/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const (
	testSecret   = "test-secret-key-for-integration-tests"
	testTokenTTL = 1 * time.Hour
)

var (
	testDB     *sql.DB
	testRouter chi.Router
	testCodec  *auth.TokenCodec
	testLogger *zap.Logger
)

// requireDB skips the test when no test database is reachable
func requireDB(t *testing.T) {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping integration tests in short mode")
	}
	if testDB == nil {
		t.Skip("Skipping integration tests: test database not available")
	}
}

// seedUser inserts a user with a known password and returns it
func seedUser(t *testing.T, email string, role models.Role, password string) *models.User {
	t.Helper()

	hash, err := auth.HashPassword(password)
	require.NoError(t, err, "Failed to hash password")

	user := &models.User{
		ID:           uuid.New().String(),
		Name:         "Seeded User",
		Email:        email,
		PasswordHash: hash,
		Role:         role,
	}

	query := `INSERT INTO users (id, name, email, password, role) VALUES (?, ?, ?, ?, ?)`
	_, err = testDB.Exec(query, user.ID, user.Name, user.Email, user.PasswordHash, user.Role)
	require.NoError(t, err, "Failed to seed test user")

	return user
}

// cleanupUsers removes all test data
func cleanupUsers(t *testing.T) {
	t.Helper()
	_, err := testDB.Exec("DELETE FROM users")
	require.NoError(t, err, "Failed to cleanup users")
}

// getCookie extracts a cookie from the response
func getCookie(w *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, cookie := range w.Result().Cookies() {
		if cookie.Name == name {
			return cookie
		}
	}
	return nil
}

// doJSON performs a JSON request against the test router
func doJSON(t *testing.T, method, path string, body any, prepare func(*http.Request)) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if prepare != nil {
		prepare(req)
	}

	w := httptest.NewRecorder()
	testRouter.ServeHTTP(w, req)
	return w
}

// setupTestRouter creates a test router with all handlers, mirroring main.go
func setupTestRouter(db *sql.DB, logger *zap.Logger) chi.Router {
	userRepo := repositories.NewUserRepository(db, logger)
	authSvc := services.NewAuthService(userRepo, testCodec, logger)
	userSvc := services.NewUserService(userRepo, logger)
	authHandler := handlers.NewAuthHandler(authSvc, testTokenTTL, logger)
	userHandler := handlers.NewUserHandler(userSvc, logger)

	authenticated := auth.RequireRoles(testCodec, userRepo, models.RoleUser, models.RoleModerator, models.RoleAdmin)
	adminOnly := auth.RequireRoles(testCodec, userRepo, models.RoleAdmin)

	r := chi.NewRouter()
	r.Route("/api", func(r chi.Router) {
		authHandler.RegisterRoutes(r, authenticated)
		userHandler.RegisterRoutes(r, authenticated, adminOnly)
	})

	return r
}

// setupTestSchema creates the test database schema
func setupTestSchema(db *sql.DB) error {
	usersTable := `
		CREATE TABLE IF NOT EXISTS users (
			id CHAR(36) NOT NULL,
			name VARCHAR(100) NOT NULL,
			email VARCHAR(255) NOT NULL,
			password VARCHAR(100) NOT NULL,
			role ENUM('user', 'moderator', 'admin') NOT NULL DEFAULT 'user',
			verified BOOLEAN NOT NULL DEFAULT FALSE,
			photo VARCHAR(255) NOT NULL DEFAULT '',
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
			PRIMARY KEY (id),
			UNIQUE KEY uq_users_email (email)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;
	`

	_, err := db.Exec(usersTable)
	return err
}

// TestMain sets up and tears down the test environment
func TestMain(m *testing.M) {
	var err error
	testLogger, err = zap.NewDevelopment()
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}

	testCodec = auth.NewTokenCodec(testSecret, testTokenTTL)

	cfg, err := config.LoadTestConfig()
	if err != nil {
		panic(fmt.Sprintf("Failed to load test config: %v", err))
	}
	dsn := cfg.DSN()
	if cfg.Database.Host == "" {
		// Default test database connection
		dsn = "root:password@tcp(localhost:3306)/account_service_test?parseTime=true&charset=utf8mb4"
	}

	db, err := sql.Open("mysql", dsn)
	if err == nil {
		if err = db.Ping(); err == nil {
			testDB = db
			if err := setupTestSchema(testDB); err != nil {
				panic(fmt.Sprintf("Failed to set up test schema: %v", err))
			}
			testRouter = setupTestRouter(testDB, testLogger)
		}
	}

	code := m.Run()

	if testDB != nil {
		testDB.Close()
	}
	os.Exit(code)
}

func TestIntegration_Register(t *testing.T) {
	requireDB(t)
	cleanupUsers(t)

	t.Run("valid registration returns filtered user", func(t *testing.T) {
		w := doJSON(t, http.MethodPost, "/api/auth/register", map[string]string{
			"name":            "John Doe",
			"email":           "a@b.com",
			"password":        "123456",
			"passwordConfirm": "123456",
		}, nil)

		require.Equal(t, http.StatusCreated, w.Code)

		body := w.Body.String()
		var response models.UserResponse
		require.NoError(t, json.Unmarshal([]byte(body), &response))
		assert.Equal(t, "success", response.Status)
		assert.Equal(t, "a@b.com", response.Data.User.Email)
		assert.Equal(t, "user", response.Data.User.Role)
		assert.NotEmpty(t, response.Data.User.ID)

		// No password material in the response body
		assert.NotContains(t, body, "password")

		// Password is stored hashed, never in plaintext
		var storedHash string
		err := testDB.QueryRow("SELECT password FROM users WHERE email = ?", "a@b.com").Scan(&storedHash)
		require.NoError(t, err)
		assert.NotEqual(t, "123456", storedHash)
	})

	t.Run("registering the same email again conflicts", func(t *testing.T) {
		w := doJSON(t, http.MethodPost, "/api/auth/register", map[string]string{
			"name":            "John Clone",
			"email":           "a@b.com",
			"password":        "123456",
			"passwordConfirm": "123456",
		}, nil)

		require.Equal(t, http.StatusConflict, w.Code)

		var response models.Response
		require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
		assert.Equal(t, "fail", response.Status)
		assert.Contains(t, response.Message, "already exists")
	})

	t.Run("password confirmation mismatch is a bad request", func(t *testing.T) {
		w := doJSON(t, http.MethodPost, "/api/auth/register", map[string]string{
			"name":            "Jane Doe",
			"email":           "jane@b.com",
			"password":        "123456",
			"passwordConfirm": "654321",
		}, nil)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestIntegration_Login(t *testing.T) {
	requireDB(t)
	cleanupUsers(t)

	user := seedUser(t, "login@example.com", models.RoleUser, "123456")

	t.Run("wrong password is unauthorized", func(t *testing.T) {
		w := doJSON(t, http.MethodPost, "/api/auth/login", map[string]string{
			"email":    "login@example.com",
			"password": "654321",
		}, nil)

		require.Equal(t, http.StatusUnauthorized, w.Code)

		var response models.Response
		require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
		assert.Contains(t, response.Message, "incorrect")
	})

	t.Run("unknown email is the same unauthorized error", func(t *testing.T) {
		w := doJSON(t, http.MethodPost, "/api/auth/login", map[string]string{
			"email":    "nobody@example.com",
			"password": "123456",
		}, nil)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("correct credentials issue a token for the same user", func(t *testing.T) {
		w := doJSON(t, http.MethodPost, "/api/auth/login", map[string]string{
			"email":    "login@example.com",
			"password": "123456",
		}, nil)

		require.Equal(t, http.StatusOK, w.Code)

		var response models.LoginResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
		assert.Equal(t, "success", response.Status)
		require.NotEmpty(t, response.Token)

		claims, err := testCodec.Verify(response.Token)
		require.NoError(t, err)
		assert.Equal(t, user.ID, claims.Subject)

		// Token also arrives as an HTTP-only session cookie
		cookie := getCookie(w, auth.TokenCookieName)
		require.NotNil(t, cookie)
		assert.Equal(t, response.Token, cookie.Value)
		assert.True(t, cookie.HttpOnly)
		assert.Equal(t, "/", cookie.Path)
		assert.Equal(t, int(testTokenTTL.Seconds()), cookie.MaxAge)
	})
}

func TestIntegration_Logout(t *testing.T) {
	requireDB(t)
	cleanupUsers(t)

	user := seedUser(t, "logout@example.com", models.RoleUser, "123456")
	token, err := testCodec.Issue(user.ID)
	require.NoError(t, err)

	t.Run("logout requires authentication", func(t *testing.T) {
		w := doJSON(t, http.MethodPost, "/api/auth/logout", nil, nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("logout expires the session cookie", func(t *testing.T) {
		w := doJSON(t, http.MethodPost, "/api/auth/logout", nil, func(req *http.Request) {
			req.Header.Set("Authorization", "Bearer "+token)
		})

		require.Equal(t, http.StatusOK, w.Code)

		cookie := getCookie(w, auth.TokenCookieName)
		require.NotNil(t, cookie)
		assert.Empty(t, cookie.Value)
		assert.Equal(t, -1, cookie.MaxAge)
	})
}

func TestIntegration_GetMe(t *testing.T) {
	requireDB(t)
	cleanupUsers(t)

	user := seedUser(t, "me@example.com", models.RoleModerator, "123456")
	token, err := testCodec.Issue(user.ID)
	require.NoError(t, err)

	t.Run("returns the authenticated user", func(t *testing.T) {
		w := doJSON(t, http.MethodGet, "/api/users/me", nil, func(req *http.Request) {
			req.Header.Set("Authorization", "Bearer "+token)
		})

		require.Equal(t, http.StatusOK, w.Code)

		var response models.UserResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
		assert.Equal(t, user.ID, response.Data.User.ID)
		assert.Equal(t, "moderator", response.Data.User.Role)
	})

	t.Run("cookie credential works as well", func(t *testing.T) {
		w := doJSON(t, http.MethodGet, "/api/users/me", nil, func(req *http.Request) {
			req.AddCookie(&http.Cookie{Name: auth.TokenCookieName, Value: token})
		})

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("valid token for a deleted user is rejected", func(t *testing.T) {
		ghost := seedUser(t, "ghost@example.com", models.RoleUser, "123456")
		ghostToken, err := testCodec.Issue(ghost.ID)
		require.NoError(t, err)

		_, err = testDB.Exec("DELETE FROM users WHERE id = ?", ghost.ID)
		require.NoError(t, err)

		w := doJSON(t, http.MethodGet, "/api/users/me", nil, func(req *http.Request) {
			req.Header.Set("Authorization", "Bearer "+ghostToken)
		})

		require.Equal(t, http.StatusUnauthorized, w.Code)

		var response models.Response
		require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
		assert.Contains(t, response.Message, "no longer exists")
	})
}

func TestIntegration_ListUsers(t *testing.T) {
	requireDB(t)
	cleanupUsers(t)

	admin := seedUser(t, "admin@example.com", models.RoleAdmin, "123456")
	member := seedUser(t, "member@example.com", models.RoleUser, "123456")

	adminToken, err := testCodec.Issue(admin.ID)
	require.NoError(t, err)
	memberToken, err := testCodec.Issue(member.ID)
	require.NoError(t, err)

	t.Run("admin can list users", func(t *testing.T) {
		w := doJSON(t, http.MethodGet, "/api/users?page=1&limit=10", nil, func(req *http.Request) {
			req.Header.Set("Authorization", "Bearer "+adminToken)
		})

		require.Equal(t, http.StatusOK, w.Code)

		var response models.UserListResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
		assert.Equal(t, "success", response.Status)
		assert.Equal(t, 2, response.Results)
		assert.Len(t, response.Users, 2)
	})

	t.Run("non-admin is forbidden", func(t *testing.T) {
		w := doJSON(t, http.MethodGet, "/api/users", nil, func(req *http.Request) {
			req.Header.Set("Authorization", "Bearer "+memberToken)
		})

		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("unauthenticated is unauthorized", func(t *testing.T) {
		w := doJSON(t, http.MethodGet, "/api/users", nil, nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("limit above the maximum is a bad request", func(t *testing.T) {
		w := doJSON(t, http.MethodGet, "/api/users?limit=51", nil, func(req *http.Request) {
			req.Header.Set("Authorization", "Bearer "+adminToken)
		})

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
