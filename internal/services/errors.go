package services

import (
	"fmt"

	"decision-engine/internal/models"
)

// The engine's failures are deterministic business-rule violations, never
// retried internally. Each category gets its own type so handlers can map
// them to distinct responses with errors.As.

// ValidationError reports malformed or missing required input.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// InvalidTransitionError reports a claim transition not present in the
// transition table.
type InvalidTransitionError struct {
	From models.ClaimStatus
	To   models.ClaimStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot transition claim from %s to %s", e.From, e.To)
}

// InvalidStateError reports an operation attempted from a state that does
// not permit it.
type InvalidStateError struct {
	Msg string
}

func (e *InvalidStateError) Error() string { return e.Msg }

// UnauthorizedError reports an actor lacking the role required by the
// resolved approval threshold.
type UnauthorizedError struct {
	Msg string
}

func (e *UnauthorizedError) Error() string { return e.Msg }

// PreconditionError reports an unmet precondition of a downstream operation.
type PreconditionError struct {
	Msg string
}

func (e *PreconditionError) Error() string { return e.Msg }

// ExpiredError reports time-based invalidity.
type ExpiredError struct {
	Msg string
}

func (e *ExpiredError) Error() string { return e.Msg }
