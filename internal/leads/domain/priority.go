package domain

// Priority is the operator-set urgency of a lead.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

var knownPriorities = map[Priority]struct{}{
	PriorityLow:    {},
	PriorityMedium: {},
	PriorityHigh:   {},
	PriorityUrgent: {},
}

// IsKnownPriority reports whether p is a valid priority value.
func IsKnownPriority(p Priority) bool {
	_, ok := knownPriorities[p]
	return ok
}
