package auth

import (
	"github.com/goliatone/go-router"
)

var TemplateUserKey = "current_user"

// TemplateHelpers returns a map of helper functions and data that can be
// used with a template engine's global-data option.
//
// In templates:
//
//	{% if current_user %}
//	{% if current_user|has_role:"admin" %}
//	{% if current_user|is_at_least:"tech" %}
func TemplateHelpers() map[string]any {
	return map[string]any{
		"is_authenticated": isAuthenticated,
		"has_role":         hasRole,
		"is_at_least":      isAtLeast,
		"can_access":       canAccess,

		// Role constants for easy template access
		"roles": map[string]string{
			"student": string(RoleStudent),
			"tech":    string(RoleTech),
			"admin":   string(RoleAdmin),
		},
	}
}

// TemplateHelpersWithUser returns template helpers with a specific user
// set as current_user.
func TemplateHelpersWithUser(user *User) map[string]any {
	helpers := TemplateHelpers()
	helpers[TemplateUserKey] = user
	return helpers
}

// TemplateHelpersWithRouter returns template helpers with user data
// extracted from the router context, as left there by the route gate.
func TemplateHelpersWithRouter(ctx router.Context, userKey string) map[string]any {
	if userKey == "" {
		userKey = TemplateUserKey
	}

	helpers := TemplateHelpers()

	if user := ctx.Locals(userKey); user != nil {
		helpers[TemplateUserKey] = user
	}

	return helpers
}

// GetTemplateUser extracts user data from the router context for template
// usage.
func GetTemplateUser(ctx router.Context, userKey string) (any, bool) {
	if userKey == "" {
		userKey = TemplateUserKey
	}

	user := ctx.Locals(userKey)
	return user, user != nil
}

func isAuthenticated(user any) bool {
	if user == nil {
		return false
	}

	switch u := user.(type) {
	case *User:
		return u != nil
	case User:
		return true
	case AuthClaims:
		return u != nil && u.UserID() != ""
	case map[string]any:
		return len(u) > 0
	default:
		return false
	}
}

func hasRole(user any, role string) bool {
	targetRole := UserRole(role)

	switch u := user.(type) {
	case *User:
		if u == nil {
			return false
		}
		return u.Role == targetRole
	case User:
		return u.Role == targetRole
	case AuthClaims:
		if u == nil {
			return false
		}
		return u.HasRole(role)
	case map[string]any:
		if userRole, exists := u["role"]; exists {
			if roleStr, ok := userRole.(string); ok {
				return UserRole(roleStr) == targetRole
			}
		}
		return false
	default:
		return false
	}
}

func isAtLeast(user any, minRole string) bool {
	minRoleTyped := UserRole(minRole)

	switch u := user.(type) {
	case *User:
		if u == nil {
			return false
		}
		return u.Role.IsAtLeast(minRoleTyped)
	case User:
		return u.Role.IsAtLeast(minRoleTyped)
	case AuthClaims:
		if u == nil {
			return false
		}
		return u.IsAtLeast(minRole)
	case map[string]any:
		if userRole, exists := u["role"]; exists {
			if roleStr, ok := userRole.(string); ok {
				return UserRole(roleStr).IsAtLeast(minRoleTyped)
			}
		}
		return false
	default:
		return false
	}
}

// canAccess checks whether the user may enter the named dashboard area.
// Areas supported: "admin", "tech".
func canAccess(user any, area string) bool {
	switch area {
	case "admin":
		return hasRole(user, string(RoleAdmin))
	case "tech":
		return isAtLeast(user, string(RoleTech))
	default:
		return false
	}
}
