package handlers

import (
	"context"
	"errors"
	"net/http"

	log "github.com/sirupsen/logrus"
	"github.com/ukydev/transportease/internal/auth"
	"github.com/ukydev/transportease/internal/client"
	"github.com/ukydev/transportease/internal/models"
)

// AuthAPI is the part of the rental API the auth forms post to.
type AuthAPI interface {
	Login(ctx context.Context, role models.Role, req models.LoginRequest) (*models.AuthResponse, error)
	Register(ctx context.Context, req models.RegisterRequest) (*models.AuthResponse, error)
	RegisterOwner(ctx context.Context, req models.OwnerRegisterRequest) (*models.AuthResponse, error)
}

// AuthHandler validates login and registration forms and forwards them to
// the rental API.
type AuthHandler struct {
	api AuthAPI
	log log.FieldLogger
}

// NewAuthHandler creates a new authentication handler
func NewAuthHandler(api AuthAPI, logger log.FieldLogger) *AuthHandler {
	return &AuthHandler{api: api, log: logger}
}

// Login handles traveller login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	h.login(w, r, models.RoleUser)
}

// LoginOwner handles vehicle owner login
func (h *AuthHandler) LoginOwner(w http.ResponseWriter, r *http.Request) {
	h.login(w, r, models.RoleOwner)
}

func (h *AuthHandler) login(w http.ResponseWriter, r *http.Request, role models.Role) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req models.LoginRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if !h.validate(w, req) {
		return
	}

	resp, err := h.api.Login(r.Context(), role, req)
	if err != nil {
		h.upstreamError(w, err, "Login failed")
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// Register handles traveller registration
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req models.RegisterRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if !h.validate(w, req) {
		return
	}

	resp, err := h.api.Register(r.Context(), req)
	if err != nil {
		h.upstreamError(w, err, "Registration failed")
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

// RegisterOwner handles vehicle owner registration
func (h *AuthHandler) RegisterOwner(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req models.OwnerRegisterRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if !h.validate(w, req) {
		return
	}

	resp, err := h.api.RegisterOwner(r.Context(), req)
	if err != nil {
		h.upstreamError(w, err, "Registration failed")
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (h *AuthHandler) validate(w http.ResponseWriter, req any) bool {
	err := auth.Validate(req)
	if err == nil {
		return true
	}
	var verr *auth.ValidationError
	if errors.As(err, &verr) {
		writeValidation(w, verr)
		return false
	}
	h.log.WithError(err).Error("Request validation failed")
	writeError(w, http.StatusInternalServerError, "Internal server error")
	return false
}

// upstreamError relays an API rejection with its status and message. Network
// failures become 502 with the fallback message.
func (h *AuthHandler) upstreamError(w http.ResponseWriter, err error, fallback string) {
	var apiErr *client.APIError
	if errors.As(err, &apiErr) {
		writeError(w, apiErr.StatusCode, apiErr.Message)
		return
	}
	h.log.WithError(err).Warn("Rental API unreachable")
	writeError(w, http.StatusBadGateway, fallback)
}
