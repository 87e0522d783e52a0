package auth_test

import (
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	auth "github.com/xErr0Ropx876/UniResources"
)

func templateFunc1(t *testing.T, helpers map[string]any, name string) func(any) bool {
	t.Helper()
	fn, ok := helpers[name].(func(any) bool)
	require.True(t, ok, "helper %s", name)
	return fn
}

func templateFunc2(t *testing.T, helpers map[string]any, name string) func(any, string) bool {
	t.Helper()
	fn, ok := helpers[name].(func(any, string) bool)
	require.True(t, ok, "helper %s", name)
	return fn
}

func TestTemplateHelpers(t *testing.T) {
	helpers := auth.TemplateHelpers()

	isAuthenticated := templateFunc1(t, helpers, "is_authenticated")
	hasRole := templateFunc2(t, helpers, "has_role")
	isAtLeast := templateFunc2(t, helpers, "is_at_least")
	canAccess := templateFunc2(t, helpers, "can_access")

	student := &auth.User{ID: uuid.New(), Role: auth.RoleStudent}
	tech := &auth.User{ID: uuid.New(), Role: auth.RoleTech}
	admin := &auth.User{ID: uuid.New(), Role: auth.RoleAdmin}

	t.Run("is_authenticated", func(t *testing.T) {
		assert.True(t, isAuthenticated(student))
		assert.True(t, isAuthenticated(*student))
		assert.False(t, isAuthenticated(nil))
		assert.False(t, isAuthenticated("something else"))
		assert.False(t, isAuthenticated(map[string]any{}))
		assert.True(t, isAuthenticated(map[string]any{"role": "student"}))
	})

	t.Run("has_role", func(t *testing.T) {
		assert.True(t, hasRole(admin, "admin"))
		assert.False(t, hasRole(tech, "admin"))
		assert.True(t, hasRole(*tech, "tech"))
		assert.False(t, hasRole(nil, "admin"))
		assert.True(t, hasRole(map[string]any{"role": "admin"}, "admin"))
		assert.False(t, hasRole(map[string]any{"role": 7}, "admin"))
	})

	t.Run("is_at_least", func(t *testing.T) {
		assert.True(t, isAtLeast(admin, "tech"))
		assert.True(t, isAtLeast(tech, "tech"))
		assert.False(t, isAtLeast(student, "tech"))
		assert.True(t, isAtLeast(map[string]any{"role": "tech"}, "student"))
		assert.False(t, isAtLeast(nil, "student"))
	})

	t.Run("can_access", func(t *testing.T) {
		assert.True(t, canAccess(admin, "admin"))
		assert.False(t, canAccess(tech, "admin"))
		assert.True(t, canAccess(tech, "tech"))
		assert.True(t, canAccess(admin, "tech"))
		assert.False(t, canAccess(student, "tech"))
		assert.False(t, canAccess(admin, "unknown-area"))
	})

	t.Run("Claims work like users", func(t *testing.T) {
		claims := &auth.JWTClaims{
			RegisteredClaims: jwt.RegisteredClaims{Subject: "user-1"},
			UserRole:         string(auth.RoleTech),
		}

		assert.True(t, isAuthenticated(claims))
		assert.True(t, hasRole(claims, "tech"))
		assert.True(t, isAtLeast(claims, "student"))
		assert.False(t, canAccess(claims, "admin"))
	})

	t.Run("Role constants", func(t *testing.T) {
		roles, ok := helpers["roles"].(map[string]string)
		require.True(t, ok)
		assert.Equal(t, "student", roles["student"])
		assert.Equal(t, "tech", roles["tech"])
		assert.Equal(t, "admin", roles["admin"])
	})
}

func TestTemplateHelpersWithUser(t *testing.T) {
	user := &auth.User{ID: uuid.New(), Role: auth.RoleAdmin}

	helpers := auth.TemplateHelpersWithUser(user)
	assert.Equal(t, user, helpers[auth.TemplateUserKey])
}

func TestTemplateHelpersWithRouter(t *testing.T) {
	user := &auth.User{ID: uuid.New(), Role: auth.RoleTech}

	ctx := &MockContext{}
	ctx.On("Locals", auth.TemplateUserKey).Return(user)

	helpers := auth.TemplateHelpersWithRouter(ctx, "")
	assert.Equal(t, user, helpers[auth.TemplateUserKey])

	found, ok := auth.GetTemplateUser(ctx, "")
	assert.True(t, ok)
	assert.Equal(t, user, found)

	t.Run("Empty context", func(t *testing.T) {
		ctx := &MockContext{}
		ctx.On("Locals", auth.TemplateUserKey).Return(nil)

		helpers := auth.TemplateHelpersWithRouter(ctx, "")
		_, present := helpers[auth.TemplateUserKey]
		assert.False(t, present)

		_, ok := auth.GetTemplateUser(ctx, "")
		assert.False(t, ok)
	})
}
