package models

// Роли пользователей. Значения совпадают с CHECK-ограничением в БД.
const (
	RoleBooker    = "BOOKER"
	RoleCompanion = "COMPANION"
)

// AllRoles returns every assignable role.
func AllRoles() []string {
	return []string{RoleBooker, RoleCompanion}
}

// IsValidRole reports whether role is one of the assignable roles.
// Matching is case-sensitive.
func IsValidRole(role string) bool {
	switch role {
	case RoleBooker, RoleCompanion:
		return true
	}
	return false
}
