package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/japanesestudent/account-service/internal/httperr"
	"github.com/japanesestudent/account-service/internal/models"
	"go.uber.org/zap"
)

// BaseHandler provides common handler functionality
type BaseHandler struct {
	Logger *zap.Logger
}

// RespondJSON sends a JSON response
func (h *BaseHandler) RespondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.Logger.Error("failed to encode JSON response", zap.Error(err))
	}
}

// RespondError sends an error JSON response. Errors that are not typed
// httperr errors fall back to a generic server error so internal detail
// never crosses the boundary.
func (h *BaseHandler) RespondError(w http.ResponseWriter, err error) {
	var httpErr *httperr.Error
	if !errors.As(err, &httpErr) {
		h.Logger.Error("unexpected handler error", zap.Error(err))
		httpErr = httperr.ServerError()
	}

	h.RespondJSON(w, httpErr.Status, models.Response{Status: "fail", Message: httpErr.Message})
}
