package shared

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// ErrorKind classifies failures surfaced by the purchasing core
type ErrorKind string

const (
	ErrorKindNone       ErrorKind = ""
	ErrorKindValidation ErrorKind = "VALIDATION"
	ErrorKindNetwork    ErrorKind = "NETWORK"
	ErrorKindNotFound   ErrorKind = "NOT_FOUND"
	ErrorKindUnknown    ErrorKind = "UNKNOWN"
)

// Common domain errors
var (
	ErrNotFound = NewDomainError("NOT_FOUND", "Resource not found")
	ErrNoItems  = NewDomainError("NO_ITEMS", "must contain at least one item")
)

// Violation is a single field-level validation failure.
// Field is a path such as "supplierId" or "items[2].unitPrice".
type Violation struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ValidationError blocks a submission before it reaches the network
type ValidationError struct {
	Violations []Violation
}

// NewValidationError creates a validation error carrying the given violations
func NewValidationError(violations ...Violation) *ValidationError {
	return &ValidationError{Violations: violations}
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	if len(e.Violations) == 0 {
		return "validation failed"
	}
	parts := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		parts = append(parts, v.Field+": "+v.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Fields returns the sorted, de-duplicated set of violating field paths
func (e *ValidationError) Fields() []string {
	seen := make(map[string]struct{}, len(e.Violations))
	fields := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		if _, ok := seen[v.Field]; ok {
			continue
		}
		seen[v.Field] = struct{}{}
		fields = append(fields, v.Field)
	}
	sort.Strings(fields)
	return fields
}

// Has reports whether a violation exists for the field path
func (e *ValidationError) Has(field string) bool {
	for _, v := range e.Violations {
		if v.Field == field {
			return true
		}
	}
	return false
}

// NetworkError is a transport or backend failure on a gateway call
type NetworkError struct {
	Op         string
	StatusCode int
	Err        error
}

// Error implements the error interface
func (e *NetworkError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: backend returned status %d: %v", e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying cause
func (e *NetworkError) Unwrap() error {
	return e.Err
}

// NotFoundError is an id-based lookup with no matching record
type NotFoundError struct {
	Resource string
	ID       int64
}

// Error implements the error interface
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Resource, e.ID)
}

// Is lets errors.Is(err, ErrNotFound) match any NotFoundError
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// KindOf maps an error onto the purchasing error taxonomy
func KindOf(err error) ErrorKind {
	if err == nil {
		return ErrorKindNone
	}
	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		return ErrorKindValidation
	}
	var notFoundErr *NotFoundError
	if errors.As(err, &notFoundErr) {
		return ErrorKindNotFound
	}
	var networkErr *NetworkError
	if errors.As(err, &networkErr) {
		return ErrorKindNetwork
	}
	return ErrorKindUnknown
}
