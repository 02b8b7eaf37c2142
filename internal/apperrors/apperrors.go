// Package apperrors defines the application error taxonomy and the central
// error handler.
package apperrors

import "fmt"

type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

const (
	CodeValidation   = "E100"
	CodePrecondition = "E110"
	CodePermission   = "E200"
	CodeNotFound     = "E210"
	CodeDurability   = "E300"
	CodeTransport    = "E400"
)

// AppError carries an error code, an operator-facing message, and a safe
// user-facing message.
type AppError struct {
	Code        string
	Message     string
	UserMessage string
	Severity    Severity
	Retryable   bool
	cause       error
}

func (e *AppError) Error() string {
	if e == nil {
		return ""
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.cause
}

// NewValidationError marks malformed user input: the step is reprompted and
// no state changes.
func NewValidationError(msg string) *AppError {
	return &AppError{
		Code:        CodeValidation,
		Message:     msg,
		UserMessage: msg,
		Severity:    SeverityLow,
		Retryable:   false,
	}
}

// NewPreconditionError marks an action attempted before its prerequisites
// were met, such as picking a payment rail before a term is chosen.
func NewPreconditionError(msg string) *AppError {
	return &AppError{
		Code:        CodePrecondition,
		Message:     msg,
		UserMessage: msg,
		Severity:    SeverityLow,
		Retryable:   false,
	}
}

// NewPermissionError marks an operator action issued by a non-operator.
func NewPermissionError(msg string) *AppError {
	return &AppError{
		Code:        CodePermission,
		Message:     msg,
		UserMessage: "Not allowed",
		Severity:    SeverityMedium,
		Retryable:   false,
	}
}

// NewNotFoundError marks a decision referencing an unknown or already
// resolved order token. Both cases are reported identically.
func NewNotFoundError(msg string) *AppError {
	return &AppError{
		Code:        CodeNotFound,
		Message:     msg,
		UserMessage: msg,
		Severity:    SeverityLow,
		Retryable:   false,
	}
}

// NewDurabilityError marks a snapshot read or write failure. These are
// logged and swallowed: persistence is a best-effort cache.
func NewDurabilityError(op string, cause error) *AppError {
	return &AppError{
		Code:      CodeDurability,
		Message:   fmt.Sprintf("durability failure in %s: %v", op, cause),
		Severity:  SeverityMedium,
		Retryable: true,
		cause:     cause,
	}
}

// NewTransportError marks a failed outbound call to the messaging transport.
func NewTransportError(op string, cause error) *AppError {
	return &AppError{
		Code:      CodeTransport,
		Message:   fmt.Sprintf("transport failure in %s: %v", op, cause),
		Severity:  SeverityHigh,
		Retryable: true,
		cause:     cause,
	}
}
