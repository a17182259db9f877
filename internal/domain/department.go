package domain

// Department represents a high-level organizational unit.
type Department struct {
	ID   string
	Name string
}

// DefaultSLAHours applies when a category carries no SLA policy.
const DefaultSLAHours = 24

// Category classifies tickets and carries the hours-to-resolve policy.
type Category struct {
	ID       string
	Name     string
	SLAHours int
}
