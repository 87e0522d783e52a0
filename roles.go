package auth

// UserRole is the user's role. The set is closed: every authorization
// decision switches exhaustively over these three values.
type UserRole string

const (
	// RoleStudent is the default role assigned at account creation (i.e. browse, enroll)
	RoleStudent UserRole = "student"
	// RoleTech can additionally manage the tech dashboard
	RoleTech UserRole = "tech"
	// RoleAdmin has full access, including the admin dashboard
	RoleAdmin UserRole = "admin"
)

// IsValid checks if the role is one of the predefined valid roles
func (r UserRole) IsValid() bool {
	switch r {
	case RoleStudent, RoleTech, RoleAdmin:
		return true
	default:
		return false
	}
}

// CanAccessAdminArea reports whether the role may enter admin-only routes
func (r UserRole) CanAccessAdminArea() bool {
	switch r {
	case RoleAdmin:
		return true
	case RoleStudent, RoleTech:
		return false
	default:
		return false
	}
}

// CanAccessTechArea reports whether the role may enter the tech dashboard
func (r UserRole) CanAccessTechArea() bool {
	switch r {
	case RoleTech, RoleAdmin:
		return true
	case RoleStudent:
		return false
	default:
		return false
	}
}

// IsAtLeast checks if this role meets the minimum required level
func (r UserRole) IsAtLeast(minRole UserRole) bool {
	roleHierarchy := map[UserRole]int{
		RoleStudent: 0,
		RoleTech:    1,
		RoleAdmin:   2,
	}

	currentLevel, exists := roleHierarchy[r]
	if !exists {
		return false
	}

	minLevel, exists := roleHierarchy[minRole]
	if !exists {
		return false
	}

	return currentLevel >= minLevel
}

// GetAllRoles returns all predefined roles in hierarchical order
func GetAllRoles() []UserRole {
	return []UserRole{
		RoleStudent,
		RoleTech,
		RoleAdmin,
	}
}

// ParseRole safely parses a string into a UserRole type
func ParseRole(roleStr string) (UserRole, bool) {
	role := UserRole(roleStr)
	return role, role.IsValid()
}
