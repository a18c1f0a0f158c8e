package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// JWTClaims are the claims embedded in issued access tokens.
type JWTClaims struct {
	StaffID  string `json:"staff_id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// LoginRequest is the credential payload for staff login.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// StaffInfo is the public projection of a staff account.
type StaffInfo struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Email string  `json:"email"`
	Phone *string `json:"phone,omitempty"`
}

// LoginResponse carries the issued token and the authenticated staff.
type LoginResponse struct {
	AccessToken string    `json:"access_token"`
	ExpiresIn   int64     `json:"expires_in"`
	IssuedAt    time.Time `json:"issued_at"`
	Staff       StaffInfo `json:"staff"`
}
