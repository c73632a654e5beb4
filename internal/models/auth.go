package models

import (
	"encoding/json"

	"github.com/golang-jwt/jwt/v5"
)

// LoginRequest holds credentials for authenticating a user against a claimed role.
type LoginRequest struct {
	Username  string   `json:"username"`
	Password  string   `json:"password"`
	Role      UserRole `json:"role"`
	IP        string   `json:"-"`
	UserAgent string   `json:"-"`
}

// LoginResponse returns the identity and an access token.
type LoginResponse struct {
	Message     string   `json:"message"`
	UserID      string   `json:"user_id"`
	Username    string   `json:"username"`
	Role        UserRole `json:"role"`
	AccessToken string   `json:"access_token"`
	ExpiresIn   int64    `json:"expires_in"`
}

// RegisterRequest creates a new account.
type RegisterRequest struct {
	Username  string   `json:"username" validate:"required,min=3,max=64"`
	Password  string   `json:"password" validate:"required,min=6"`
	Email     string   `json:"email" validate:"required,email"`
	Role      UserRole `json:"role" validate:"required,oneof=user officer admin"`
	IP        string   `json:"-"`
	UserAgent string   `json:"-"`
}

// RegisterResponse acknowledges a created account.
type RegisterResponse struct {
	Message string `json:"message"`
	UserID  string `json:"user_id"`
}

// ResetPasswordRequest changes the password of the authenticated user.
type ResetPasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=6"`
}

// UnmarshalJSON also accepts currentPassword and newPassword.
func (r *ResetPasswordRequest) UnmarshalJSON(data []byte) error {
	type plain ResetPasswordRequest
	aux := struct {
		*plain
		CurrentPasswordAlt string `json:"currentPassword"`
		NewPasswordAlt     string `json:"newPassword"`
	}{plain: (*plain)(r)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if r.CurrentPassword == "" {
		r.CurrentPassword = aux.CurrentPasswordAlt
	}
	if r.NewPassword == "" {
		r.NewPassword = aux.NewPasswordAlt
	}
	return nil
}

// JWTClaims represents the JWT payload for access tokens.
type JWTClaims struct {
	UserID   string   `json:"user_id"`
	Username string   `json:"username"`
	Role     UserRole `json:"role"`
	jwt.RegisteredClaims
}

// HasRole reports whether the claims carry one of roles.
func (c *JWTClaims) HasRole(roles ...UserRole) bool {
	if c == nil {
		return false
	}
	for _, r := range roles {
		if c.Role == r {
			return true
		}
	}
	return false
}

// Actor identifies the authenticated caller of a service operation.
type Actor struct {
	UserID string
	Role   UserRole
}

// Actor extracts the caller identity from the claims.
func (c *JWTClaims) Actor() Actor {
	if c == nil {
		return Actor{}
	}
	return Actor{UserID: c.UserID, Role: c.Role}
}
