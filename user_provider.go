package auth

import (
	"context"
	"time"

	"github.com/goliatone/go-errors"
)

// UserStore is the read surface the credential path needs.
type UserStore interface {
	GetByEmail(ctx context.Context, email string) (*User, error)
}

// UserProvider verifies email/password pairs against stored records. It is
// read-only: no field of the user record is ever mutated from here.
type UserProvider struct {
	store  UserStore
	logger Logger
	now    func() time.Time
}

// NewUserProvider will create a new UserProvider
func NewUserProvider(store UserStore) *UserProvider {
	return &UserProvider{
		store:  store,
		logger: defLogger{},
		now:    time.Now,
	}
}

func (u *UserProvider) WithLogger(l Logger) *UserProvider {
	if l != nil {
		u.logger = l
	}
	return u
}

// WithClock overrides the clock used for ban-window checks (useful for tests).
func (u *UserProvider) WithClock(clock func() time.Time) *UserProvider {
	if clock != nil {
		u.now = clock
	}
	return u
}

// VerifyIdentity runs the credential contract in order:
//
//  1. missing email or password
//  2. no account for that email
//  3. account has no password hash: uniform denial, the credential path
//     does not apply to OAuth-only accounts
//  4. ban window still open, regardless of password correctness
//  5. hash comparison
//
// On success it returns the stored identity with the role unchanged.
func (u UserProvider) VerifyIdentity(ctx context.Context, identifier, password string) (Identity, error) {
	if identifier == "" || password == "" {
		return nil, ErrMissingCredentials
	}

	user, err := u.store.GetByEmail(ctx, identifier)
	if err != nil {
		if errors.IsNotFound(err) {
			return nil, ErrIdentityNotFound
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to retrieve user during verification")
	}

	if !user.HasPassword() {
		u.logger.Debug("credential sign-in attempted for passwordless account", "email", identifier)
		return nil, ErrSignInDenied
	}

	if user.IsBanned(u.now()) {
		return nil, NewAccountBannedError(*user.BannedUntil)
	}

	if err := ComparePasswordAndHash(password, user.PasswordHash); err != nil {
		return nil, err
	}

	return NewIdentityFromUser(user), nil
}

// FindIdentityByIdentifier resolves the canonical identity by email without
// any credential or ban checks. The OAuth path uses it to re-resolve the
// store-minted id after account linking.
func (u UserProvider) FindIdentityByIdentifier(ctx context.Context, identifier string) (Identity, error) {
	user, err := u.store.GetByEmail(ctx, identifier)
	if err != nil {
		if errors.IsNotFound(err) {
			return nil, ErrIdentityNotFound
		}
		return nil, err
	}

	return NewIdentityFromUser(user), nil
}

var _ IdentityProvider = (*UserProvider)(nil)
