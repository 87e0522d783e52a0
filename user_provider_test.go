package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	auth "github.com/xErr0Ropx876/UniResources"
)

func notFoundErr() error {
	return auth.ErrIdentityNotFound
}

func TestUserProviderVerifyIdentity(t *testing.T) {
	ctx := context.Background()

	t.Run("Successful verification", func(t *testing.T) {
		store := new(MockUserStore)
		provider := auth.NewUserProvider(store)

		userID := uuid.New()
		passwordHash, err := auth.HashPassword("secret1")
		require.NoError(t, err)

		user := &auth.User{
			ID:           userID,
			Name:         "Ada",
			Email:        "a@b.com",
			PasswordHash: passwordHash,
			Role:         auth.RoleStudent,
		}

		store.On("GetByEmail", ctx, "a@b.com").Return(user, nil).Once()

		identity, err := provider.VerifyIdentity(ctx, "a@b.com", "secret1")

		assert.NoError(t, err)
		require.NotNil(t, identity)
		assert.Equal(t, userID.String(), identity.ID())
		assert.Equal(t, "a@b.com", identity.Email())
		assert.Equal(t, string(auth.RoleStudent), identity.Role())

		store.AssertExpectations(t)
	})

	t.Run("Missing credentials short circuit the store", func(t *testing.T) {
		store := new(MockUserStore)
		provider := auth.NewUserProvider(store)

		for _, pair := range [][2]string{
			{"", "password"},
			{"a@b.com", ""},
			{"", ""},
		} {
			identity, err := provider.VerifyIdentity(ctx, pair[0], pair[1])
			assert.Nil(t, identity)
			assert.ErrorIs(t, err, auth.ErrMissingCredentials)
		}

		store.AssertNotCalled(t, "GetByEmail")
	})

	t.Run("User not found", func(t *testing.T) {
		store := new(MockUserStore)
		provider := auth.NewUserProvider(store)

		store.On("GetByEmail", ctx, "nobody@b.com").Return(nil, notFoundErr()).Once()

		identity, err := provider.VerifyIdentity(ctx, "nobody@b.com", "secret1")

		assert.Nil(t, identity)
		assert.ErrorIs(t, err, auth.ErrIdentityNotFound)
		store.AssertExpectations(t)
	})

	t.Run("Invalid password", func(t *testing.T) {
		store := new(MockUserStore)
		provider := auth.NewUserProvider(store)

		passwordHash, _ := auth.HashPassword("correct-password")
		user := &auth.User{
			ID:           uuid.New(),
			Email:        "a@b.com",
			PasswordHash: passwordHash,
			Role:         auth.RoleStudent,
		}

		store.On("GetByEmail", ctx, "a@b.com").Return(user, nil).Once()

		identity, err := provider.VerifyIdentity(ctx, "a@b.com", "wrong-password")

		assert.Nil(t, identity)
		assert.ErrorIs(t, err, auth.ErrInvalidPassword)
		store.AssertExpectations(t)
	})

	t.Run("OAuth-only account gets the uniform denial", func(t *testing.T) {
		store := new(MockUserStore)
		provider := auth.NewUserProvider(store)

		user := &auth.User{
			ID:       uuid.New(),
			Email:    "oauth@b.com",
			Role:     auth.RoleStudent,
			Provider: "google",
		}

		store.On("GetByEmail", ctx, "oauth@b.com").Return(user, nil).Once()

		identity, err := provider.VerifyIdentity(ctx, "oauth@b.com", "whatever")

		assert.Nil(t, identity)
		assert.ErrorIs(t, err, auth.ErrSignInDenied)
		// The denial must not leak which failure mode it was.
		assert.NotErrorIs(t, err, auth.ErrIdentityNotFound)
		assert.NotErrorIs(t, err, auth.ErrInvalidPassword)
		store.AssertExpectations(t)
	})

	t.Run("Banned account is denied even with the correct password", func(t *testing.T) {
		store := new(MockUserStore)

		now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
		until := now.Add(48 * time.Hour)

		provider := auth.NewUserProvider(store).
			WithClock(func() time.Time { return now })

		passwordHash, _ := auth.HashPassword("secret1")
		user := &auth.User{
			ID:           uuid.New(),
			Email:        "banned@b.com",
			PasswordHash: passwordHash,
			Role:         auth.RoleStudent,
			BannedUntil:  &until,
		}

		store.On("GetByEmail", ctx, "banned@b.com").Return(user, nil).Twice()

		identity, err := provider.VerifyIdentity(ctx, "banned@b.com", "secret1")
		assert.Nil(t, identity)
		assert.True(t, auth.IsAccountBanned(err))

		got, ok := auth.BannedUntil(err)
		assert.True(t, ok)
		assert.True(t, until.Equal(got))

		// Same outcome with a wrong password: the ban check runs first.
		identity, err = provider.VerifyIdentity(ctx, "banned@b.com", "wrong")
		assert.Nil(t, identity)
		assert.True(t, auth.IsAccountBanned(err))

		store.AssertExpectations(t)
	})

	t.Run("Expired ban window signs in normally", func(t *testing.T) {
		store := new(MockUserStore)

		now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
		until := now.Add(-time.Minute)

		provider := auth.NewUserProvider(store).
			WithClock(func() time.Time { return now })

		passwordHash, _ := auth.HashPassword("secret1")
		user := &auth.User{
			ID:           uuid.New(),
			Email:        "was-banned@b.com",
			PasswordHash: passwordHash,
			Role:         auth.RoleTech,
			BannedUntil:  &until,
		}

		store.On("GetByEmail", ctx, "was-banned@b.com").Return(user, nil).Once()

		identity, err := provider.VerifyIdentity(ctx, "was-banned@b.com", "secret1")
		assert.NoError(t, err)
		require.NotNil(t, identity)
		assert.Equal(t, string(auth.RoleTech), identity.Role())

		store.AssertExpectations(t)
	})
}

func TestUserProviderFindIdentityByIdentifier(t *testing.T) {
	ctx := context.Background()

	t.Run("Resolves without credential or ban checks", func(t *testing.T) {
		store := new(MockUserStore)
		provider := auth.NewUserProvider(store)

		until := time.Now().Add(time.Hour)
		user := &auth.User{
			ID:          uuid.New(),
			Email:       "a@b.com",
			Role:        auth.RoleAdmin,
			BannedUntil: &until,
		}

		store.On("GetByEmail", ctx, "a@b.com").Return(user, nil).Once()

		identity, err := provider.FindIdentityByIdentifier(ctx, "a@b.com")

		assert.NoError(t, err)
		require.NotNil(t, identity)
		assert.Equal(t, string(auth.RoleAdmin), identity.Role())
		store.AssertExpectations(t)
	})

	t.Run("User not found", func(t *testing.T) {
		store := new(MockUserStore)
		provider := auth.NewUserProvider(store)

		store.On("GetByEmail", ctx, "nobody@b.com").Return(nil, notFoundErr()).Once()

		identity, err := provider.FindIdentityByIdentifier(ctx, "nobody@b.com")

		assert.Nil(t, identity)
		assert.ErrorIs(t, err, auth.ErrIdentityNotFound)
		store.AssertExpectations(t)
	})
}
