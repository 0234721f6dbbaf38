package entity

// Role names stored on users.role
const (
	RoleAdmin  = "admin"
	RoleDoctor = "doctor"
)

// IsStaffRole reports whether the role may work the doctor queue
func IsStaffRole(role string) bool {
	switch role {
	case RoleAdmin, RoleDoctor:
		return true
	default:
		return false
	}
}
