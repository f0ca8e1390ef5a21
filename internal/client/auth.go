package client

import (
	"context"

	"github.com/goccy/go-json"
	"github.com/ukydev/transportease/internal/models"
)

const (
	loginFailed        = "Login failed"
	registrationFailed = "Registration failed"
)

// LoginPath returns the login endpoint for role.
func LoginPath(role models.Role) string {
	if role == models.RoleOwner {
		return "/api/auth/login-owner"
	}
	return "/api/auth/login"
}

type authResponse struct {
	ID       json.RawMessage `json:"id"`
	Username string          `json:"username"`
	Email    string          `json:"email"`
	Role     string          `json:"role"`
	Token    string          `json:"token"`
}

func (r authResponse) model() *models.AuthResponse {
	return &models.AuthResponse{
		ID:       rawID(r.ID),
		Username: r.Username,
		Email:    r.Email,
		Role:     r.Role,
		Token:    r.Token,
	}
}

// Login posts {email, password} to the role-specific login endpoint.
func (c *Client) Login(ctx context.Context, role models.Role, req models.LoginRequest) (*models.AuthResponse, error) {
	var resp authResponse
	if err := c.postJSON(ctx, "login", LoginPath(role), req, loginFailed, &resp); err != nil {
		return nil, err
	}
	return resp.model(), nil
}

// Register creates a traveller account.
func (c *Client) Register(ctx context.Context, req models.RegisterRequest) (*models.AuthResponse, error) {
	var resp authResponse
	if err := c.postJSON(ctx, "register", "/api/auth/register", req, registrationFailed, &resp); err != nil {
		return nil, err
	}
	return resp.model(), nil
}

// RegisterOwner creates a vehicle owner account.
func (c *Client) RegisterOwner(ctx context.Context, req models.OwnerRegisterRequest) (*models.AuthResponse, error) {
	var resp authResponse
	if err := c.postJSON(ctx, "register_owner", "/api/auth/register-owner", req, registrationFailed, &resp); err != nil {
		return nil, err
	}
	return resp.model(), nil
}
