package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/goccy/go-json"
	"github.com/ukydev/transportease/internal/auth"
	"github.com/ukydev/transportease/internal/models"
)

const maxBodyBytes = 1 << 20

// validationResponse is the 400 body for rejected forms.
type validationResponse struct {
	Message string              `json:"message"`
	Errors  map[string][]string `json:"errors"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, models.ErrorResponse{Message: msg})
}

func writeValidation(w http.ResponseWriter, verr *auth.ValidationError) {
	writeJSON(w, http.StatusBadRequest, validationResponse{
		Message: "Validation failed",
		Errors:  verr.Fields,
	})
}

// decodeBody reads a JSON request body into v.
func decodeBody(r *http.Request, v any) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return fmt.Errorf("failed to read request body: %w", err)
	}
	if err := json.Unmarshal(body, v); err != nil {
		return errors.New("Invalid JSON")
	}
	return nil
}
