package inventory

import (
	"fmt"

	"github.com/erp/purchase/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// CodeInsufficientRemovable is raised when a reduction asks for more than
// what remains to be done on the eligible moves.
const CodeInsufficientRemovable = "INSUFFICIENT_REMOVABLE_QUANTITY"

// ErrInsufficientRemovable matches any InsufficientRemovableError with errors.Is
var ErrInsufficientRemovable = shared.NewDomainError(CodeInsufficientRemovable, "Cannot remove more than what remains to be done")

// InsufficientRemovableError carries the largest quantity that could have been removed
type InsufficientRemovableError struct {
	shared.DomainError
	MaxRemovable decimal.Decimal
	Requested    decimal.Decimal
}

// NewInsufficientRemovableError builds the user-facing reduction failure
func NewInsufficientRemovableError(maxRemovable, requested decimal.Decimal) *InsufficientRemovableError {
	return &InsufficientRemovableError{
		DomainError: shared.DomainError{
			Code: CodeInsufficientRemovable,
			Message: fmt.Sprintf(
				"You cannot remove more than what remains to be done. Max removable quantity %s.",
				maxRemovable.String(),
			),
		},
		MaxRemovable: maxRemovable,
		Requested:    requested,
	}
}

// Unwrap exposes the embedded domain error to errors.As and errors.Is
func (e *InsufficientRemovableError) Unwrap() error {
	return &e.DomainError
}
