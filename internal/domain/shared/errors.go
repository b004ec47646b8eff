package shared

import "fmt"

// DomainError is the base error type for all domain errors
type DomainError struct {
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

func NewDomainError(message string) *DomainError {
	return &DomainError{Message: message}
}

// Validation error

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// RejectionCode classifies why a player command was refused
type RejectionCode string

const (
	RejectInvalidID           RejectionCode = "INVALID_ID"
	RejectLocked              RejectionCode = "LOCKED"
	RejectMaxCount            RejectionCode = "MAX_COUNT"
	RejectNoSlots             RejectionCode = "NO_SLOTS"
	RejectInsufficientFunds   RejectionCode = "INSUFFICIENT_RESOURCES"
	RejectIncomplete          RejectionCode = "INCOMPLETE"
	RejectQueueFull           RejectionCode = "QUEUE_FULL"
	RejectInsufficientWorkers RejectionCode = "INSUFFICIENT_WORKERS"
	RejectAlreadyOwned        RejectionCode = "ALREADY_OWNED"
	RejectPrerequisiteMissing RejectionCode = "PREREQUISITE_MISSING"
	RejectMaxLevel            RejectionCode = "MAX_LEVEL"
	RejectInvalidAmount       RejectionCode = "INVALID_AMOUNT"
)

// RejectionError is returned when a command is refused. Engine state is
// unchanged whenever a RejectionError is returned.
type RejectionError struct {
	*DomainError
	Code RejectionCode
}

// Reason returns the human-readable reason
func (e *RejectionError) Reason() string {
	return e.Message
}

func NewRejectionError(code RejectionCode, format string, args ...interface{}) *RejectionError {
	return &RejectionError{
		DomainError: &DomainError{Message: fmt.Sprintf(format, args...)},
		Code:        code,
	}
}
