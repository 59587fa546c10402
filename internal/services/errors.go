package services

// Service error taxonomy. Handlers map these onto HTTP codes; anything else
// falls through as a 500.

type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string { return "Validation error" }

type ConflictError struct{ Message string }

func (e *ConflictError) Error() string { return e.Message }

type NotFoundError struct{ Message string }

func (e *NotFoundError) Error() string { return e.Message }

type UnauthorizedError struct{ Message string }

func (e *UnauthorizedError) Error() string { return e.Message }

type ForbiddenError struct{ Message string }

func (e *ForbiddenError) Error() string { return e.Message }

// PaywallError is not a failure: it is the deliberate entitlement gate.
// Every denial reaches the user as an explicit upgrade signal, never a
// silent drop.
type PaywallError struct{ Message string }

func (e *PaywallError) Error() string { return e.Message }

// InFlightError rejects a send while a previous one for the same session is
// still outstanding.
type InFlightError struct{ Message string }

func (e *InFlightError) Error() string { return e.Message }
