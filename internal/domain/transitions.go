package domain

var allowedTransitions = map[TicketStatus][]TicketStatus{
	TicketStatusNew:        {TicketStatusAssigned, TicketStatusInProgress, TicketStatusClosed},
	TicketStatusAssigned:   {TicketStatusInProgress, TicketStatusWaiting, TicketStatusResolved, TicketStatusClosed},
	TicketStatusInProgress: {TicketStatusWaiting, TicketStatusResolved},
	TicketStatusWaiting:    {TicketStatusInProgress, TicketStatusResolved},
	TicketStatusResolved:   {TicketStatusClosed, TicketStatusInProgress},
	TicketStatusClosed:     {},
}

// CanTransition reports whether the lifecycle graph allows moving from
// current to next. Only enforced when strict transitions are enabled.
func CanTransition(current, next TicketStatus) bool {
	for _, candidate := range allowedTransitions[current] {
		if candidate == next {
			return true
		}
	}
	return false
}
