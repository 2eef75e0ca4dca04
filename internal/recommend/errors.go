// Package recommend orchestrates recommendation generation, interaction
// tracking, feedback, and stats for individual users.
package recommend

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/windrush/job-recommender/internal/types"
)

// ValidationError indicates a malformed request value. It is raised before
// any state mutation and names the offending field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// NotFoundError indicates the referenced record does not exist for the
// requesting user. Records owned by other users are reported identically.
type NotFoundError struct {
	Resource string
	ID       uuid.UUID
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// UpstreamUnavailableError indicates the job catalog or profile store could
// not be read. Generation fails without mutating stored recommendations and
// the caller may retry.
type UpstreamUnavailableError struct {
	Upstream string
	Err      error
}

func (e *UpstreamUnavailableError) Error() string {
	return fmt.Sprintf("%s unavailable: %v", e.Upstream, e.Err)
}

func (e *UpstreamUnavailableError) Unwrap() error { return e.Err }

// asValidationError converts validator and field errors into the service's
// ValidationError, or wraps err unchanged when it is neither.
func asValidationError(err error) error {
	var fieldErr *types.FieldError
	if errors.As(err, &fieldErr) {
		return &ValidationError{Field: fieldErr.Field, Message: fieldErr.Message}
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		first := verrs[0]
		return &ValidationError{
			Field:   strings.ToLower(first.Field()),
			Message: fmt.Sprintf("failed %q validation", first.Tag()),
		}
	}
	return err
}
