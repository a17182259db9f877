package domain

import "time"

// SystemActor is recorded as the actor for automatic actions.
const SystemActor = "system"

// TicketHistory is an immutable audit trail entry.
type TicketHistory struct {
	ID            string
	TicketID      string
	UserID        string
	Action        string
	PreviousState *TicketStatus
	NewState      *TicketStatus
	CreatedAt     time.Time
}

// TimeLog records effort spent on a ticket.
type TimeLog struct {
	ID              string
	TicketID        string
	UserID          string
	UserName        string
	DurationMinutes int
	Description     string
	CreatedAt       time.Time
}
