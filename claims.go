package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// AuthClaims represents the structured session claim set carried by the JWT
type AuthClaims interface {
	Subject() string
	UserID() string
	Role() string
	Email() string
	Name() string
	Image() string
	HasRole(role string) bool
	IsAtLeast(minRole string) bool
	Expires() time.Time
	IssuedAt() time.Time
}

// JWTClaims is the concrete implementation of AuthClaims. The identity
// fields mirror the session contract consumed by every protected page:
// {id, role, email, name, image}.
type JWTClaims struct {
	jwt.RegisteredClaims
	UID       string `json:"uid,omitempty"`
	UserRole  string `json:"role,omitempty"`
	UserEmail string `json:"email,omitempty"`
	UserName  string `json:"name,omitempty"`
	UserImage string `json:"image,omitempty"`
}

// Verify interface compliance
var _ AuthClaims = (*JWTClaims)(nil)

// Subject returns the subject claim
func (c *JWTClaims) Subject() string {
	return c.RegisteredClaims.Subject
}

// UserID returns the canonical user ID
func (c *JWTClaims) UserID() string {
	if c.UID != "" {
		return c.UID
	}
	return c.Subject()
}

// Role returns the user's role
func (c *JWTClaims) Role() string {
	return c.UserRole
}

// Email returns the user's email
func (c *JWTClaims) Email() string {
	return c.UserEmail
}

// Name returns the user's display name
func (c *JWTClaims) Name() string {
	return c.UserName
}

// Image returns the user's avatar URL, when one was recorded
func (c *JWTClaims) Image() string {
	return c.UserImage
}

// HasRole checks if the user has a specific role
func (c *JWTClaims) HasRole(role string) bool {
	return c.UserRole == role
}

// IsAtLeast checks if the user's role is at least the minimum required role
func (c *JWTClaims) IsAtLeast(minRole string) bool {
	return UserRole(c.UserRole).IsAtLeast(UserRole(minRole))
}

// Expires returns the expiration time
func (c *JWTClaims) Expires() time.Time {
	if c.RegisteredClaims.ExpiresAt != nil {
		return c.RegisteredClaims.ExpiresAt.Time
	}
	return time.Time{}
}

// IssuedAt returns the issued at time
func (c *JWTClaims) IssuedAt() time.Time {
	if c.RegisteredClaims.IssuedAt != nil {
		return c.RegisteredClaims.IssuedAt.Time
	}
	return time.Time{}
}

func ensureTokenID(claims *jwt.RegisteredClaims) {
	if claims.ID == "" {
		claims.ID = uuid.NewString()
	}
}
