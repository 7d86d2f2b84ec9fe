/*
errors.go - Centralized error types for the planner

PURPOSE:
  All error types in one place for consistency and discoverability.
  The scheduler itself never fails; these errors come from the store,
  the write-back action and request validation.

ERROR CATEGORIES:
  1. Lookup errors - Missing workers or projects
  2. Validation errors - Malformed holiday intervals, years, tokens
  3. Write-back errors - Applying computed dates to a project

USAGE:
    if errors.Is(err, generic.ErrNoAllocations) {
        // project has nothing scheduled in the requested year
    }

SEE ALSO:
  - workshop/apply.go: Returns NoAllocationsError
  - api/handlers.go: Maps errors to HTTP statuses
*/
package generic

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrWorkerNotFound is returned when a referenced worker doesn't exist.
	ErrWorkerNotFound = errors.New("worker not found")

	// ErrProjectNotFound is returned when a referenced project doesn't exist.
	ErrProjectNotFound = errors.New("project not found")

	// ErrAssignmentNotFound is returned when a process assignment doesn't exist.
	ErrAssignmentNotFound = errors.New("process assignment not found")

	// ErrNoAllocations is returned when dates are applied to a project that
	// received no allocation in the plan.
	ErrNoAllocations = errors.New("project has no allocations")

	// ErrInvalidInterval is returned when a holiday ends before it starts.
	ErrInvalidInterval = errors.New("invalid interval: end before start")

	// ErrInvalidYear is returned when a plan is requested without a usable year.
	ErrInvalidYear = errors.New("invalid year")

	// ErrUnauthorized is returned when a write request has no valid token.
	ErrUnauthorized = errors.New("unauthorized")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// NoAllocationsError names the project and year that produced no allocations.
type NoAllocationsError struct {
	ProjectID ProjectID
	Year      int
}

func (e *NoAllocationsError) Error() string {
	return fmt.Sprintf("project %s has no allocations in %d", e.ProjectID, e.Year)
}

func (e *NoAllocationsError) Unwrap() error { return ErrNoAllocations }

// WriteBackError wraps a failed project date update.
type WriteBackError struct {
	ProjectID ProjectID
	Err       error
}

func (e *WriteBackError) Error() string {
	return fmt.Sprintf("apply dates to project %s: %v", e.ProjectID, e.Err)
}

func (e *WriteBackError) Unwrap() error { return e.Err }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid client input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidInterval) ||
		errors.Is(err, ErrInvalidYear)
}

// IsNotFound returns true if the error indicates a missing resource.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrWorkerNotFound) ||
		errors.Is(err, ErrProjectNotFound) ||
		errors.Is(err, ErrAssignmentNotFound)
}

// IsConflict returns true if the request is valid but cannot be applied to
// the current plan.
func IsConflict(err error) bool {
	return errors.Is(err, ErrNoAllocations)
}
