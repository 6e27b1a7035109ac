package operations

import "fmt"

// ControllerError is a known, expected failure raised by an operation. Both
// front ends render its message verbatim; anything else an operation returns
// is treated as internal.
type ControllerError struct {
	Message string
}

func (e *ControllerError) Error() string { return e.Message }

// Errorf builds a ControllerError from a format string.
func Errorf(format string, args ...any) *ControllerError {
	return &ControllerError{Message: fmt.Sprintf(format, args...)}
}

// BuilderErrorKind identifies a transaction-construction failure. The kind
// name, not a free-form message, is what callers see.
type BuilderErrorKind string

const (
	InsufficientFunds         BuilderErrorKind = "InsufficientFundsError"
	InsufficientAssetQuantity BuilderErrorKind = "InsufficientAssetQuantityError"
	DustOutput                BuilderErrorKind = "DustOutputError"
)

// TransactionBuilderError is a known failure raised while constructing a
// ledger transaction.
type TransactionBuilderError struct {
	Kind BuilderErrorKind
}

func (e *TransactionBuilderError) Error() string { return string(e.Kind) }

// InvalidParamsError reports a parameter-shape mismatch between the caller's
// named arguments and an operation's declared parameters.
type InvalidParamsError struct {
	Operation string
	Reason    string
}

func (e *InvalidParamsError) Error() string {
	return fmt.Sprintf("invalid parameters for %s: %s", e.Operation, e.Reason)
}
