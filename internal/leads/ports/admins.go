package ports

import (
	"context"

	"github.com/google/uuid"
)

// AdminInfo is the minimal admin user data the leads domain needs for
// assignment decisions.
type AdminInfo struct {
	ID    uuid.UUID
	Name  string
	Email string
}

// AdminDirectory provides the eligible assignee pool and the persisted
// history counts the assignment selector derives its decisions from.
// Counts are queried fresh on every call; there is no cached cursor.
type AdminDirectory interface {
	// ListActiveAdmins returns admins eligible for lead assignment.
	ListActiveAdmins(ctx context.Context) ([]AdminInfo, error)

	// CountOpenAssignments returns the number of leads currently assigned to
	// the admin in a non-terminal status.
	CountOpenAssignments(ctx context.Context, adminID uuid.UUID) (int, error)

	// CountAssignmentsForRule returns how many assignments have been
	// attributed to the given assignment rule, driving the round-robin cursor.
	CountAssignmentsForRule(ctx context.Context, ruleID uuid.UUID) (int, error)
}
