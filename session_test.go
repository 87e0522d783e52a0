package auth_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	auth "github.com/xErr0Ropx876/UniResources"
)

func TestMaterializeSession(t *testing.T) {
	t.Run("Nil claims", func(t *testing.T) {
		session, err := auth.MaterializeSession(nil)
		assert.Nil(t, session)
		assert.ErrorIs(t, err, auth.ErrUnableToMapClaims)
	})

	t.Run("Full claim set projects every field", func(t *testing.T) {
		now := time.Now().Truncate(time.Second)
		exp := now.Add(24 * time.Hour)

		claims := &auth.JWTClaims{
			RegisteredClaims: jwt.RegisteredClaims{
				Issuer:    "uniresources",
				Subject:   "user-1",
				Audience:  jwt.ClaimStrings{"web", "mobile"},
				IssuedAt:  jwt.NewNumericDate(now),
				ExpiresAt: jwt.NewNumericDate(exp),
			},
			UID:       "user-1",
			UserRole:  string(auth.RoleTech),
			UserEmail: "a@b.com",
			UserName:  "Ada",
			UserImage: "https://cdn.example.com/ada.png",
		}

		session, err := auth.MaterializeSession(claims)
		require.NoError(t, err)

		assert.Equal(t, "user-1", session.User.ID)
		assert.Equal(t, string(auth.RoleTech), session.User.Role)
		assert.Equal(t, "a@b.com", session.User.Email)
		assert.Equal(t, "Ada", session.User.Name)
		assert.Equal(t, "https://cdn.example.com/ada.png", session.User.Image)

		assert.Equal(t, "uniresources", session.Issuer)
		assert.Equal(t, []string{"web", "mobile"}, session.Audience)

		require.NotNil(t, session.IssuedAt)
		assert.True(t, now.Equal(*session.IssuedAt))
		require.NotNil(t, session.ExpirationDate)
		assert.True(t, exp.Equal(*session.ExpirationDate))
	})

	t.Run("Absent claims yield absent fields", func(t *testing.T) {
		claims := &auth.JWTClaims{
			RegisteredClaims: jwt.RegisteredClaims{Subject: "user-2"},
		}

		session, err := auth.MaterializeSession(claims)
		require.NoError(t, err)

		// uid missing: the subject carries the id.
		assert.Equal(t, "user-2", session.User.ID)
		assert.Empty(t, session.User.Role)
		assert.Nil(t, session.IssuedAt)
		assert.Nil(t, session.ExpirationDate)
		assert.Empty(t, session.Audience)
	})
}

func TestSessionObjectRoleChecks(t *testing.T) {
	session := &auth.SessionObject{
		User: auth.SessionUser{ID: "user-1", Role: string(auth.RoleTech)},
	}

	assert.True(t, session.HasRole(string(auth.RoleTech)))
	assert.False(t, session.HasRole(string(auth.RoleAdmin)))

	assert.True(t, session.IsAtLeast(auth.RoleStudent))
	assert.True(t, session.IsAtLeast(auth.RoleTech))
	assert.False(t, session.IsAtLeast(auth.RoleAdmin))
}

func TestSessionObjectGetUserUUID(t *testing.T) {
	session := &auth.SessionObject{User: auth.SessionUser{ID: "not-a-uuid"}}

	_, err := session.GetUserUUID()
	assert.Error(t, err)
}
