package auth

import (
	"context"
	"strings"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Users is the persistence surface for user records. Email uniqueness is
// enforced by the store, not here: concurrent first-time sign-ins race on
// creation, and GetOrCreateByEmail reconciles the loser by re-reading.
type Users interface {
	repository.Repository[*User]

	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByEmailTx(ctx context.Context, tx bun.IDB, email string) (*User, error)

	Create(ctx context.Context, record *User, criteria ...repository.InsertCriteria) (*User, error)
	CreateTx(ctx context.Context, tx bun.IDB, record *User, criteria ...repository.InsertCriteria) (*User, error)

	GetOrCreateByEmail(ctx context.Context, record *User) (*User, bool, error)
	GetOrCreateByEmailTx(ctx context.Context, tx bun.IDB, record *User) (*User, bool, error)

	PromoteRole(ctx context.Context, email string, role UserRole) (*User, error)
	PromoteRoleTx(ctx context.Context, tx bun.IDB, email string, role UserRole) (*User, error)
}

type users struct {
	repository.Repository[*User]
	db *bun.DB
}

var (
	_ Users                        = (*users)(nil)
	_ repository.Repository[*User] = (*users)(nil)
)

func NewUsersRepository(db *bun.DB) Users {
	repo := repository.NewRepository[*User](db, repository.ModelHandlers[*User]{
		NewRecord: func() *User { return &User{} },
		GetID: func(u *User) uuid.UUID {
			if u == nil {
				return uuid.Nil
			}
			return u.ID
		},
		SetID: func(u *User, id uuid.UUID) {
			if u != nil {
				u.ID = id
			}
		},
		GetIdentifier: func() string {
			return "email"
		},
	})

	return &users{
		Repository: repo,
		db:         db,
	}
}

func (a *users) GetByEmail(ctx context.Context, email string) (*User, error) {
	return a.GetByEmailTx(ctx, a.db, email)
}

// GetByEmailTx looks up the single record for an email. Lookup is
// case-insensitive; the stored value is already normalized on create.
func (a *users) GetByEmailTx(ctx context.Context, tx bun.IDB, email string) (*User, error) {
	record := &User{}
	err := tx.NewSelect().
		Model(record).
		Where("LOWER(?TableAlias.email) = ?", NormalizeEmail(email)).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, repository.NewRecordNotFound().
				WithMetadata(map[string]any{
					"email": email,
				})
		}
		return nil, err
	}

	return record, nil
}

func (a *users) Create(ctx context.Context, record *User, criteria ...repository.InsertCriteria) (*User, error) {
	return a.CreateTx(ctx, a.db, record, criteria...)
}

func (a *users) CreateTx(ctx context.Context, tx bun.IDB, record *User, criteria ...repository.InsertCriteria) (*User, error) {
	prepareUserDefaults(record)
	return a.Repository.CreateTx(ctx, tx, record, criteria...)
}

func (a *users) GetOrCreateByEmail(ctx context.Context, record *User) (*User, bool, error) {
	return a.GetOrCreateByEmailTx(ctx, a.db, record)
}

// GetOrCreateByEmailTx attempts creation first and treats the store's
// uniqueness rejection as "already exists": the now-existing record is
// re-read and returned instead of an error. The returned bool reports
// whether this call created the record.
func (a *users) GetOrCreateByEmailTx(ctx context.Context, tx bun.IDB, record *User) (*User, bool, error) {
	existing, err := a.GetByEmailTx(ctx, tx, record.Email)
	if err == nil {
		return existing, false, nil
	}

	if !repository.IsRecordNotFound(err) {
		return nil, false, err
	}

	created, err := a.CreateTx(ctx, tx, record)
	if err == nil {
		return created, true, nil
	}

	if !IsUniqueViolation(err) {
		return nil, false, err
	}

	// Lost the creation race; the record exists now.
	existing, rerr := a.GetByEmailTx(ctx, tx, record.Email)
	if rerr != nil {
		return nil, false, rerr
	}

	return existing, false, nil
}

func (a *users) PromoteRole(ctx context.Context, email string, role UserRole) (*User, error) {
	return a.PromoteRoleTx(ctx, a.db, email, role)
}

// PromoteRoleTx overwrites the role of the user matching email, trying an
// exact match before falling back to a case-insensitive one. It bypasses
// the authentication flow entirely: active sessions keep their old role
// until their claim set expires.
func (a *users) PromoteRoleTx(ctx context.Context, tx bun.IDB, email string, role UserRole) (*User, error) {
	record := &User{}
	err := tx.NewSelect().
		Model(record).
		Where("?TableAlias.email = ?", email).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if !repository.IsRecordNotFound(err) {
			return nil, err
		}
		record, err = a.GetByEmailTx(ctx, tx, email)
		if err != nil {
			return nil, err
		}
	}

	record.Role = role
	return a.Repository.UpdateTx(ctx, tx, record, repository.UpdateByID(record.ID.String()))
}

func prepareUserDefaults(record *User) {
	if record == nil {
		return
	}

	if record.Role == "" {
		record.Role = RoleStudent
	}

	record.Email = NormalizeEmail(record.Email)

	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
}

// NormalizeEmail lowercases and trims an email so the unique constraint
// holds across both sign-in paths.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
