package auth

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Preferences holds display settings owned by the profile pages.
type Preferences struct {
	Theme         string `json:"theme,omitempty"`
	Notifications bool   `json:"notifications"`
}

// RecentView records a resource visit, owned by the resource pages.
type RecentView struct {
	ResourceID uuid.UUID `json:"resource_id"`
	ViewedAt   time.Time `json:"viewed_at"`
}

// User is the user model. Email is the primary identity key across both
// sign-in paths; the store enforces its uniqueness. PasswordHash is empty
// for accounts created through an OAuth provider, and that absence is a
// meaningful state: it routes the credential path to a uniform denial.
type User struct {
	bun.BaseModel `bun:"table:users,alias:usr"`

	ID           uuid.UUID    `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Name         string       `bun:"name,notnull" json:"name,omitempty"`
	Email        string       `bun:"email,notnull,unique" json:"email,omitempty"`
	PasswordHash string       `bun:"password_hash" json:"-"`
	Role         UserRole     `bun:"user_role,notnull" json:"user_role,omitempty"`
	Image        string       `bun:"image" json:"image,omitempty"`
	Provider     string       `bun:"provider" json:"provider,omitempty"`
	BannedUntil  *time.Time   `bun:"banned_until,nullzero" json:"banned_until,omitempty"`
	Preferences  *Preferences `bun:"preferences,type:jsonb" json:"preferences,omitempty"`
	Enrolled     []uuid.UUID  `bun:"enrolled_resources,type:jsonb" json:"enrolled_resources,omitempty"`
	RecentViews  []RecentView `bun:"recent_views,type:jsonb" json:"recent_views,omitempty"`
	CreatedAt    *time.Time   `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt    *time.Time   `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}

// HasPassword reports whether the account can use the credential path.
func (u *User) HasPassword() bool {
	return u != nil && u.PasswordHash != ""
}

// IsBanned reports whether the ban window is still open at the given
// instant. Always evaluate against the caller's clock, never a cached one.
func (u *User) IsBanned(now time.Time) bool {
	if u == nil || u.BannedUntil == nil {
		return false
	}
	return u.BannedUntil.After(now)
}
