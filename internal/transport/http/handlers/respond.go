package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/njerikim/baraza/internal/service"
	"github.com/njerikim/baraza/pkg/validator"
)

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, map[string]any{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
	})
}

func writeValidationErrors(w http.ResponseWriter, errs validator.ValidationErrors) {
	writeJSON(w, http.StatusBadRequest, map[string]any{
		"error": map[string]any{
			"code":   "VALIDATION_ERROR",
			"fields": errs,
		},
	})
}

// writeModerationError handles the two moderation outcomes shared by every
// content-creating endpoint. Returns true if err was one of them.
func writeModerationError(w http.ResponseWriter, err error) bool {
	var violation *service.GuidelineViolationError
	if errors.As(err, &violation) {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"error": map[string]any{
				"code":    "CONTENT_REJECTED",
				"message": "Content violates community guidelines",
				"verdict": violation.Verdict,
			},
		})
		return true
	}
	if errors.Is(err, service.ErrModerationUnavailable) {
		writeError(w, http.StatusServiceUnavailable, "MODERATION_UNAVAILABLE", "Content moderation is temporarily unavailable")
		return true
	}
	return false
}
