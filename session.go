package auth

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

var _ Session = &SessionObject{}

// SessionUser is the identity block consumed by downstream handlers and
// templates: {id, role, email, name, image}.
type SessionUser struct {
	ID    string `json:"id,omitempty"`
	Role  string `json:"role,omitempty"`
	Email string `json:"email,omitempty"`
	Name  string `json:"name,omitempty"`
	Image string `json:"image,omitempty"`
}

// SessionObject is the materialized session: a pure projection of the
// validated claim set. Absent claims yield absent fields.
type SessionObject struct {
	User           SessionUser `json:"user"`
	Audience       []string    `json:"audience,omitempty"`
	Issuer         string      `json:"issuer,omitempty"`
	IssuedAt       *time.Time  `json:"issued_at,omitempty"`
	ExpirationDate *time.Time  `json:"expiration_date,omitempty"`
}

func (s *SessionObject) GetUserID() string {
	return s.User.ID
}

func (s *SessionObject) GetUserUUID() (uuid.UUID, error) {
	return uuid.Parse(s.User.ID)
}

func (s *SessionObject) GetUserRole() string {
	return s.User.Role
}

func (s *SessionObject) GetAudience() []string {
	return s.Audience
}

func (s *SessionObject) GetIssuer() string {
	return s.Issuer
}

func (s *SessionObject) GetIssuedAt() *time.Time {
	return s.IssuedAt
}

// HasRole checks if the user has a specific role
func (s *SessionObject) HasRole(role string) bool {
	return s.User.Role == role
}

// IsAtLeast checks if the user's role is at least the minimum required role
func (s *SessionObject) IsAtLeast(minRole UserRole) bool {
	return UserRole(s.User.Role).IsAtLeast(minRole)
}

func (s SessionObject) String() string {
	issuedAt := "<nil>"
	if s.IssuedAt != nil {
		issuedAt = s.IssuedAt.Format(time.RFC1123)
	}
	return fmt.Sprintf(
		"user=%s role=%s aud=%v iss=%s iat=%s",
		s.User.ID,
		s.User.Role,
		s.Audience,
		s.Issuer,
		issuedAt,
	)
}

// MaterializeSession projects a validated claim set into the session
// object consumed by handlers and templates.
func MaterializeSession(claims AuthClaims) (*SessionObject, error) {
	if claims == nil {
		return nil, ErrUnableToMapClaims
	}

	session := &SessionObject{
		User: SessionUser{
			ID:    claims.UserID(),
			Role:  claims.Role(),
			Email: claims.Email(),
			Name:  claims.Name(),
			Image: claims.Image(),
		},
	}

	if jwtClaims, ok := claims.(*JWTClaims); ok {
		session.Issuer = jwtClaims.RegisteredClaims.Issuer
		for _, aud := range jwtClaims.RegisteredClaims.Audience {
			session.Audience = append(session.Audience, aud)
		}
	}

	if iat := claims.IssuedAt(); !iat.IsZero() {
		session.IssuedAt = &iat
	}
	if exp := claims.Expires(); !exp.IsZero() {
		session.ExpirationDate = &exp
	}

	return session, nil
}
