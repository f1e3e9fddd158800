package config

// Role represents the access level of a user account
type Role string

const (
	RoleBorrower Role = "BORROWER"
	RoleAdmin    Role = "ADMIN"
)

// Capability names an action guarded by role
type Capability string

const (
	CapBorrow            Capability = "borrow"
	CapViewOwnBorrowings Capability = "view_own_borrowings"
	CapManageCatalog     Capability = "manage_catalog"
	CapManageUsers       Capability = "manage_users"
	CapViewReports       Capability = "view_reports"
)

// roleCapabilities is the full grant table; a role not listed here can do nothing
var roleCapabilities = map[Role]map[Capability]bool{
	RoleBorrower: {
		CapBorrow:            true,
		CapViewOwnBorrowings: true,
	},
	RoleAdmin: {
		CapBorrow:            true,
		CapViewOwnBorrowings: true,
		CapManageCatalog:     true,
		CapManageUsers:       true,
		CapViewReports:       true,
	},
}

// Can reports whether the role is granted the capability
func (r Role) Can(c Capability) bool {
	return roleCapabilities[r][c]
}

// IsValidRole checks if a role value is one of the known roles
func IsValidRole(r Role) bool {
	_, ok := roleCapabilities[r]
	return ok
}

// ValidRoles lists the accepted role values in display order
func ValidRoles() []string {
	return []string{string(RoleBorrower), string(RoleAdmin)}
}
