package auth

// Role is the closed set of staff roles known to the system.
type Role string

const (
	RoleAdmin         Role = "admin"
	RoleOTStaff       Role = "ot_staff"
	RolePharmacyStaff Role = "pharmacy_staff"
	RoleGeneralStaff  Role = "general_staff"
)

// AllRoles lists every valid role, in display order.
var AllRoles = []Role{RoleAdmin, RoleOTStaff, RolePharmacyStaff, RoleGeneralStaff}

// ValidRole reports whether s names a known role.
func ValidRole(s string) bool {
	switch Role(s) {
	case RoleAdmin, RoleOTStaff, RolePharmacyStaff, RoleGeneralStaff:
		return true
	}
	return false
}
