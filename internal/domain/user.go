package domain

// Role names a user's function in the helpdesk.
type Role string

const (
	RoleAdmin      Role = "admin"
	RoleSupervisor Role = "supervisor"
	RoleAgent      Role = "agent"
	RoleEmployee   Role = "employee"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleSupervisor, RoleAgent, RoleEmployee:
		return true
	default:
		return false
	}
}

// Staff reports whether the role may toggle availability and work tickets.
func (r Role) Staff() bool {
	return r == RoleAdmin || r == RoleSupervisor || r == RoleAgent
}

// DefaultMaxActiveTickets is the capacity given to users without one.
const DefaultMaxActiveTickets = 5

// RoleRecord is a row of the roles table.
type RoleRecord struct {
	ID   Role
	Name string
}

// User is a department member with a role.
type User struct {
	ID               string
	Name             string
	Email            string
	Role             Role
	DepartmentID     string
	MaxActiveTickets int
	IsActive         bool
	IsAvailable      bool
}

// AgentLoad is an assignable agent with its count of open tickets.
type AgentLoad struct {
	UserID           string
	Name             string
	MaxActiveTickets int
	OpenTickets      int
}
