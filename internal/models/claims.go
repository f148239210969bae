package models

import "github.com/golang-jwt/jwt/v5"

// UserClaims identifies the caller of an authenticated request.
type UserClaims struct {
	jwt.RegisteredClaims
	UserID       uint   `json:"user_id"`
	Username     string `json:"username"`
	Role         string `json:"role"`
	TokenVersion int    `json:"token_version"`
}
