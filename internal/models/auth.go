package models

import "github.com/golang-jwt/jwt/v5"

// UserRole classifies dashboard users for route guarding. Tokens are issued
// by the faculty SSO; this service verifies them and stores no accounts.
type UserRole string

const (
	RoleAdmin     UserRole = "ADMIN"
	RoleScheduler UserRole = "SCHEDULER"
	RoleViewer    UserRole = "VIEWER"
)

// JWTClaims is the access-token payload this service understands.
type JWTClaims struct {
	UserID string   `json:"uid"`
	Role   UserRole `json:"role"`
	jwt.RegisteredClaims
}
