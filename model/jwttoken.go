package model

import "github.com/golang-jwt/jwt/v5"

type Role string

const (
	RoleRegular Role = "Regular"
	RoleAdmin   Role = "Admin"
)

// TokenClaims is the identity carried by both the access and the refresh token.
type TokenClaims struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     Role   `json:"role"`
	jwt.RegisteredClaims
}

// NewTokenClaims copies the identity fields of a user into a claim set.
func NewTokenClaims(user User) TokenClaims {
	return TokenClaims{
		Username: user.Username,
		Email:    user.Email,
		Role:     user.Role,
	}
}

// Complete reports whether username, email and role are all present.
func (c TokenClaims) Complete() bool {
	return c.Username != "" && c.Email != "" && c.Role != ""
}

// SameIdentity reports whether both claim sets describe the same account.
func (c TokenClaims) SameIdentity(other TokenClaims) bool {
	return c.Username == other.Username && c.Email == other.Email && c.Role == other.Role
}
