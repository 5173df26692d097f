package pipeline

import "strings"

// Role identifies the kind of actor operating on a project.
type Role string

const (
	RoleCompany    Role = "company" // admin / back office
	RoleAgent      Role = "agent"
	RoleFreelancer Role = "freelancer"
	RoleInstaller  Role = "installer"
	RoleTechnician Role = "technician"
	RoleCustomer   Role = "customer"
)

// Actor is the authenticated identity performing an operation, as supplied
// by the identity collaborator. The engine trusts it as given.
type Actor struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Role Role   `json:"role"`
}

// ParseRole normalises a role string. Unrecognised values pass through: the
// permission table treats them as having no grants rather than erroring.
func ParseRole(s string) Role {
	return Role(strings.ToLower(strings.TrimSpace(s)))
}

// KnownRole reports whether r is one of the wired-in roles. Callers should
// log lookups for unknown roles as a data-quality signal.
func KnownRole(r Role) bool {
	switch r {
	case RoleCompany, RoleAgent, RoleFreelancer, RoleInstaller, RoleTechnician, RoleCustomer:
		return true
	}
	return false
}
