package social_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	auth "github.com/xErr0Ropx876/UniResources"
	"github.com/xErr0Ropx876/UniResources/social"
)

func googleProfile(email string) *social.SocialProfile {
	return &social.SocialProfile{
		ProviderUserID: "g-123",
		Provider:       "google",
		Email:          email,
		EmailVerified:  true,
		Name:           "Ada",
		AvatarURL:      "https://cdn.example.com/ada.png",
	}
}

func TestAccountLinkerResolve(t *testing.T) {
	ctx := context.Background()

	t.Run("First sign-in creates a student account", func(t *testing.T) {
		users := newFakeUsers()
		sink := &capturingSink{}
		linker := social.NewAccountLinker(users).WithActivitySink(sink)

		result, err := linker.Resolve(ctx, googleProfile("Ada@Example.com"))
		require.NoError(t, err)
		require.NotNil(t, result)

		assert.True(t, result.IsNewUser)
		assert.Equal(t, "ada@example.com", result.User.Email)
		assert.Equal(t, auth.RoleStudent, result.User.Role)
		assert.Equal(t, "google", result.User.Provider)
		assert.Equal(t, "https://cdn.example.com/ada.png", result.User.Image)
		assert.False(t, result.User.HasPassword())

		require.Len(t, sink.events, 1)
		assert.Equal(t, auth.ActivityEventUserCreated, sink.events[0].EventType)
		assert.Equal(t, "social", sink.events[0].Actor.Type)
		assert.Equal(t, "google", sink.events[0].Actor.ID)
	})

	t.Run("Existing account is reused verbatim", func(t *testing.T) {
		users := newFakeUsers()
		sink := &capturingSink{}
		linker := social.NewAccountLinker(users).WithActivitySink(sink)

		existing := users.add(&auth.User{
			Name:     "Ada Lovelace",
			Email:    "ada@example.com",
			Role:     auth.RoleAdmin,
			Provider: "github",
			Image:    "https://cdn.example.com/original.png",
		})

		profile := googleProfile("ada@example.com")
		profile.Name = "Totally Different Name"

		result, err := linker.Resolve(ctx, profile)
		require.NoError(t, err)

		assert.False(t, result.IsNewUser)
		assert.Equal(t, existing.ID, result.User.ID)
		assert.Equal(t, "Ada Lovelace", result.User.Name)
		assert.Equal(t, auth.RoleAdmin, result.User.Role)
		assert.Equal(t, "github", result.User.Provider)
		assert.Equal(t, "https://cdn.example.com/original.png", result.User.Image)

		assert.Empty(t, sink.events)
		assert.Zero(t, users.creates)
	})

	t.Run("Repeat sign-ins converge on one account", func(t *testing.T) {
		users := newFakeUsers()
		linker := social.NewAccountLinker(users)

		first, err := linker.Resolve(ctx, googleProfile("ada@example.com"))
		require.NoError(t, err)

		second, err := linker.Resolve(ctx, googleProfile("ada@example.com"))
		require.NoError(t, err)

		assert.True(t, first.IsNewUser)
		assert.False(t, second.IsNewUser)
		assert.Equal(t, first.User.ID, second.User.ID)
		assert.Equal(t, 1, users.creates)
	})

	t.Run("Banned account denies the flow", func(t *testing.T) {
		users := newFakeUsers()

		now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
		until := now.Add(24 * time.Hour)

		users.add(&auth.User{
			Name:        "Ada",
			Email:       "ada@example.com",
			BannedUntil: &until,
		})

		linker := social.NewAccountLinker(users).
			WithClock(func() time.Time { return now })

		result, err := linker.Resolve(ctx, googleProfile("ada@example.com"))
		assert.Nil(t, result)
		assert.True(t, auth.IsAccountBanned(err))

		got, ok := auth.BannedUntil(err)
		assert.True(t, ok)
		assert.True(t, until.Equal(got))
	})

	t.Run("Nil profile", func(t *testing.T) {
		linker := social.NewAccountLinker(newFakeUsers())

		result, err := linker.Resolve(ctx, nil)
		assert.Nil(t, result)
		assert.ErrorIs(t, err, social.ErrUserInfoFailed)
	})

	t.Run("Missing email", func(t *testing.T) {
		linker := social.NewAccountLinker(newFakeUsers())

		result, err := linker.Resolve(ctx, googleProfile(""))
		assert.Nil(t, result)
		assert.ErrorIs(t, err, social.ErrMissingEmail)
	})

	t.Run("Unverified email rejected when required", func(t *testing.T) {
		linker := social.NewAccountLinker(newFakeUsers())
		linker.RequireVerifiedEmail = true

		profile := googleProfile("ada@example.com")
		profile.EmailVerified = false

		result, err := linker.Resolve(ctx, profile)
		assert.Nil(t, result)
		assert.ErrorIs(t, err, social.ErrEmailNotVerified)
	})

	t.Run("Username stands in for a missing name", func(t *testing.T) {
		linker := social.NewAccountLinker(newFakeUsers())

		profile := &social.SocialProfile{
			ProviderUserID: "gh-42",
			Provider:       "github",
			Email:          "octo@example.com",
			EmailVerified:  true,
			Username:       "octocat",
		}

		result, err := linker.Resolve(ctx, profile)
		require.NoError(t, err)
		assert.Equal(t, "octocat", result.User.Name)
	})
}
