package domain

// Level is the impact or urgency reported for a ticket.
type Level string

const (
	LevelLow    Level = "Baja"
	LevelMedium Level = "Media"
	LevelHigh   Level = "Alta"
)

// Valid reports whether l is one of the three known levels.
func (l Level) Valid() bool {
	switch l {
	case LevelLow, LevelMedium, LevelHigh:
		return true
	default:
		return false
	}
}

// Priority is derived from impact and urgency and never set directly.
type Priority string

const (
	PriorityLow      Priority = "Baja"
	PriorityMedium   Priority = "Media"
	PriorityHigh     Priority = "Alta"
	PriorityCritical Priority = "Crítico"
)

// Priorities lists every priority from lowest to highest.
var Priorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical}

// CalculatePriority maps impact and urgency to a priority. Unknown levels are
// treated as the weakest one and never rejected.
func CalculatePriority(impact, urgency Level) Priority {
	switch {
	case impact == LevelHigh && urgency == LevelHigh:
		return PriorityCritical
	case impact == LevelHigh || urgency == LevelHigh:
		return PriorityHigh
	case impact == LevelMedium && urgency == LevelMedium:
		return PriorityMedium
	default:
		return PriorityLow
	}
}
