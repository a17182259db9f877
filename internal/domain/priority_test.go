package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculatePriority(t *testing.T) {
	cases := []struct {
		impact, urgency Level
		want            Priority
	}{
		{LevelHigh, LevelHigh, PriorityCritical},
		{LevelHigh, LevelMedium, PriorityHigh},
		{LevelHigh, LevelLow, PriorityHigh},
		{LevelMedium, LevelHigh, PriorityHigh},
		{LevelLow, LevelHigh, PriorityHigh},
		{LevelMedium, LevelMedium, PriorityMedium},
		{LevelMedium, LevelLow, PriorityLow},
		{LevelLow, LevelMedium, PriorityLow},
		{LevelLow, LevelLow, PriorityLow},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, CalculatePriority(tc.impact, tc.urgency), "%s/%s", tc.impact, tc.urgency)
	}
}

func TestCalculatePriorityUnknownLevelsDegrade(t *testing.T) {
	assert.Equal(t, PriorityLow, CalculatePriority("Critical", "???"))
	assert.Equal(t, PriorityLow, CalculatePriority("", ""))
	assert.Equal(t, PriorityLow, CalculatePriority("alta", "alta"))
	// A single recognized Alta still wins over garbage on the other axis.
	assert.Equal(t, PriorityHigh, CalculatePriority("bogus", LevelHigh))
}

func TestStatusOpen(t *testing.T) {
	for _, s := range TicketStatuses {
		want := s != TicketStatusResolved && s != TicketStatusClosed
		assert.Equal(t, want, s.Open(), string(s))
	}
	assert.True(t, TicketStatus("Pendiente").Open())
	assert.False(t, TicketStatus("Pendiente").Valid())
}

func TestCanTransition(t *testing.T) {
	assert.True(t, CanTransition(TicketStatusNew, TicketStatusAssigned))
	assert.True(t, CanTransition(TicketStatusInProgress, TicketStatusWaiting))
	assert.True(t, CanTransition(TicketStatusWaiting, TicketStatusInProgress))
	assert.True(t, CanTransition(TicketStatusResolved, TicketStatusClosed))
	assert.False(t, CanTransition(TicketStatusClosed, TicketStatusInProgress))
	assert.False(t, CanTransition(TicketStatusNew, TicketStatusResolved))
	assert.False(t, CanTransition(TicketStatusNew, "whatever"))
}
