package apperrors

import (
	"errors"
	"fmt"
)

// Sentinel kinds surfaced by the core. Transport layers map these to
// user-visible behaviour; the core never swallows them.
var (
	ErrValidation             = errors.New("validation failed")
	ErrNotFound               = errors.New("not found")
	ErrInvalidTransition      = errors.New("invalid transition")
	ErrReferentialIntegrity   = errors.New("referential integrity violation")
	ErrConcurrentModification = errors.New("concurrent modification")
)

// Validationf wraps ErrValidation with a formatted reason.
func Validationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// NotFoundf wraps ErrNotFound naming the missing entity.
func NotFoundf(entity, id string) error {
	return fmt.Errorf("%w: %s %s", ErrNotFound, entity, id)
}

// TransitionError describes a rejected state change. It carries the
// current and requested states so callers can report both.
type TransitionError struct {
	From string
	To   string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("invalid transition: %s -> %s", e.From, e.To)
}

func (e *TransitionError) Unwrap() error { return ErrInvalidTransition }

// NewTransitionError builds a TransitionError for the given states.
func NewTransitionError(from, to string) error {
	return &TransitionError{From: from, To: to}
}

// ReferentialIntegrityf wraps ErrReferentialIntegrity with a formatted reason.
func ReferentialIntegrityf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrReferentialIntegrity, fmt.Sprintf(format, args...))
}

// ConcurrentModificationf wraps ErrConcurrentModification naming the entity.
func ConcurrentModificationf(entity, id string) error {
	return fmt.Errorf("%w: %s %s was modified since read", ErrConcurrentModification, entity, id)
}

// IsValidation reports whether err is a validation error.
func IsValidation(err error) bool { return errors.Is(err, ErrValidation) }

// IsNotFound reports whether err is a not-found error.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

// IsInvalidTransition reports whether err is a state machine violation.
func IsInvalidTransition(err error) bool { return errors.Is(err, ErrInvalidTransition) }

// IsReferentialIntegrity reports whether err is a cross-entity mismatch.
func IsReferentialIntegrity(err error) bool { return errors.Is(err, ErrReferentialIntegrity) }

// IsConcurrentModification reports whether err is a stale-state write.
func IsConcurrentModification(err error) bool { return errors.Is(err, ErrConcurrentModification) }
