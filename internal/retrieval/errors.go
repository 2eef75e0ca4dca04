package retrieval

import (
	"fmt"

	"github.com/google/uuid"
)

// NoCandidatesError indicates the hard filters left no eligible jobs.
// It is not an engine failure; callers decide how to report it.
type NoCandidatesError struct {
	UserID uuid.UUID
}

func (e *NoCandidatesError) Error() string {
	return fmt.Sprintf("no eligible jobs after hard filters for user %s", e.UserID)
}
