package auth

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/ukydev/transportease/internal/models"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token expired")
)

// ParseClaims reads the subject, role and expiry of a session token.
//
// The signature is NOT verified: the secret lives with the rental API and the
// client only needs the claims to decide whether a stored session is stale.
// Every request still goes through the API, which performs full validation.
func ParseClaims(tokenString string) (*models.Claims, error) {
	tokenString = strings.TrimSpace(strings.TrimPrefix(tokenString, "Bearer "))
	if tokenString == "" {
		return nil, ErrInvalidToken
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tokenString, claims); err != nil {
		return nil, ErrInvalidToken
	}

	out := &models.Claims{}
	if sub, err := claims.GetSubject(); err == nil {
		out.Subject = sub
	}
	if roleStr, ok := claims["role"].(string); ok {
		if role, valid := models.ParseRole(roleStr); valid {
			out.Role = role
		}
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		out.Exp = exp.Unix()
	}
	return out, nil
}

// CheckExpiry returns ErrExpiredToken when the token carries an expiry that
// lies before now. Tokens without an exp claim never expire client-side.
func CheckExpiry(tokenString string, now time.Time) error {
	claims, err := ParseClaims(tokenString)
	if err != nil {
		return err
	}
	if claims.Exp != 0 && now.Unix() >= claims.Exp {
		return ErrExpiredToken
	}
	return nil
}

// ExtractTokenFromHeader extracts token from Authorization header
func ExtractTokenFromHeader(authHeader string) (string, error) {
	if authHeader == "" {
		return "", ErrInvalidToken
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", ErrInvalidToken
	}

	return parts[1], nil
}
