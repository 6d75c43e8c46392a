package maintenance

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ukydev/fleet-maintenance/internal/models"
)

var (
	// ErrNotFound covers both missing entities and entities outside the
	// caller's tenant.
	ErrNotFound = errors.New("not found")
	// ErrIllegalTransition is returned when a state change is not allowed
	// from the current state.
	ErrIllegalTransition = errors.New("illegal transition")
	// ErrInvoiceAlreadyApproved guards the closure cascade against replays.
	ErrInvoiceAlreadyApproved = fmt.Errorf("%w: invoice already approved", ErrIllegalTransition)
	// ErrConflict is returned by stores when a conditional write lost a race.
	ErrConflict = errors.New("concurrent modification")
)

// ValidationError reports malformed or out-of-range input.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// Invalid builds a ValidationError for field.
func Invalid(field, format string, args ...interface{}) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// TransitionError describes a rejected status change.
type TransitionError struct {
	Entity string
	From   string
	To     string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("%s cannot move from %s to %s", e.Entity, e.From, e.To)
}

func (e *TransitionError) Unwrap() error { return ErrIllegalTransition }

// ClosureBlockedError lists the items that keep a work order open.
type ClosureBlockedError struct {
	Pending []PendingItem
}

func (e *ClosureBlockedError) Error() string {
	parts := make([]string, 0, len(e.Pending))
	for _, p := range e.Pending {
		parts = append(parts, fmt.Sprintf("%s (%s)", p.Description, p.ID.Hex()))
	}
	return "work order has open items: " + strings.Join(parts, ", ")
}

func (e *ClosureBlockedError) Unwrap() error { return ErrIllegalTransition }

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

func workOrderTransitionError(from, to models.WorkOrderStatus) error {
	return &TransitionError{Entity: "work order", From: string(from), To: string(to)}
}
