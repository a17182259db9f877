package domain

import "time"

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusNew        TicketStatus = "Nuevo"
	TicketStatusAssigned   TicketStatus = "Asignado"
	TicketStatusInProgress TicketStatus = "En Proceso"
	TicketStatusWaiting    TicketStatus = "En Espera"
	TicketStatusResolved   TicketStatus = "Resuelto"
	TicketStatusClosed     TicketStatus = "Cerrado"
)

// TicketStatuses lists every known status in lifecycle order.
var TicketStatuses = []TicketStatus{
	TicketStatusNew,
	TicketStatusAssigned,
	TicketStatusInProgress,
	TicketStatusWaiting,
	TicketStatusResolved,
	TicketStatusClosed,
}

// Valid reports whether s is one of the known statuses.
func (s TicketStatus) Valid() bool {
	switch s {
	case TicketStatusNew, TicketStatusAssigned, TicketStatusInProgress,
		TicketStatusWaiting, TicketStatusResolved, TicketStatusClosed:
		return true
	default:
		return false
	}
}

// Open reports whether a ticket in this status counts towards an agent's load.
func (s TicketStatus) Open() bool {
	return s != TicketStatusResolved && s != TicketStatusClosed
}

// Ticket is the aggregate for support requests.
type Ticket struct {
	ID              string
	Title           string
	Description     string
	UserID          string
	DepartmentID    string
	CategoryID      string
	Impact          Level
	Urgency         Level
	Priority        Priority
	Status          TicketStatus
	AssignedAgentID *string
	CreatedAt       time.Time
	UpdatedAt       time.Time
	ResolvedAt      *time.Time
	ClosedAt        *time.Time
	SLADeadline     time.Time
}

// TicketView is a ticket joined with the display names of its requester,
// agent and category.
type TicketView struct {
	Ticket
	UserName     string
	AgentName    *string
	CategoryName string
}

// TicketMetrics are simple counts over all tickets.
type TicketMetrics struct {
	Total      int
	ByStatus   map[TicketStatus]int
	ByPriority map[Priority]int
}
