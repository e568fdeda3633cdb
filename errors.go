package tabula

import (
	"errors"
	"fmt"
	"strings"
)

// Standard sentinel errors. Every typed error below reports true for
// errors.Is against its sentinel.
var (
	// ErrShape is returned when an entity type cannot be mapped to a table.
	ErrShape = errors.New("tabula: invalid entity shape")

	// ErrUnsupportedOperator is returned when a predicate uses an operator
	// the compiler does not translate.
	ErrUnsupportedOperator = errors.New("tabula: unsupported operator")

	// ErrExecution is returned when the database rejects a statement.
	ErrExecution = errors.New("tabula: statement execution failed")

	// ErrMapping is returned when a column value cannot be assigned to a field.
	ErrMapping = errors.New("tabula: field mapping failed")

	// ErrNotFound is returned by strict lookups that match no row.
	ErrNotFound = errors.New("tabula: entity not found")
)

// ShapeError reports an entity type that cannot be described: no identity
// field, mismatched field tables, or a reference to an unknown column.
// It indicates a programming mistake and is never swallowed.
type ShapeError struct {
	Entity string // Entity type name
	Field  string // Offending field or column, if any
	Reason string
}

// Error returns the error string.
func (e *ShapeError) Error() string {
	var b strings.Builder
	b.WriteString("tabula: invalid shape")
	if e.Entity != "" {
		b.WriteString(" for ")
		b.WriteString(e.Entity)
	}
	if e.Field != "" {
		fmt.Fprintf(&b, " (field %q)", e.Field)
	}
	if e.Reason != "" {
		b.WriteString(": ")
		b.WriteString(e.Reason)
	}
	return b.String()
}

// Is reports whether the target error matches ErrShape.
func (e *ShapeError) Is(err error) bool {
	return err == ErrShape
}

// NewShapeError returns a new ShapeError.
func NewShapeError(entity, field, reason string) *ShapeError {
	return &ShapeError{Entity: entity, Field: field, Reason: reason}
}

// IsShapeError returns true if the error is a ShapeError.
func IsShapeError(err error) bool {
	if err == nil {
		return false
	}
	var e *ShapeError
	return errors.As(err, &e)
}

// UnsupportedOperatorError reports a predicate operator that has no SQL
// translation. The compiler never approximates.
type UnsupportedOperatorError struct {
	Op string
}

// Error returns the error string.
func (e *UnsupportedOperatorError) Error() string {
	return fmt.Sprintf("tabula: unsupported operator: %s", e.Op)
}

// Is reports whether the target error matches ErrUnsupportedOperator.
func (e *UnsupportedOperatorError) Is(err error) bool {
	return err == ErrUnsupportedOperator
}

// NewUnsupportedOperatorError returns a new UnsupportedOperatorError.
func NewUnsupportedOperatorError(op string) *UnsupportedOperatorError {
	return &UnsupportedOperatorError{Op: op}
}

// IsUnsupportedOperator returns true if the error is an UnsupportedOperatorError.
func IsUnsupportedOperator(err error) bool {
	if err == nil {
		return false
	}
	var e *UnsupportedOperatorError
	return errors.As(err, &e)
}

// ExecutionError wraps a driver error with the operation that produced it.
type ExecutionError struct {
	Op     string // Operation (e.g. "create", "get_by_id", "where")
	Table  string // Target table
	Query  string // Statement text as sent to the driver
	CallID string // Correlates the error with its log record
	Err    error  // Underlying driver error
}

// Error returns the error string.
func (e *ExecutionError) Error() string {
	return fmt.Sprintf("tabula: %s %s: %v", e.Op, e.Table, e.Err)
}

// Unwrap returns the underlying error.
func (e *ExecutionError) Unwrap() error {
	return e.Err
}

// Is reports whether the target error matches ErrExecution.
func (e *ExecutionError) Is(err error) bool {
	return err == ErrExecution
}

// NewExecutionError returns a new ExecutionError.
func NewExecutionError(op, table, query string, err error) *ExecutionError {
	return &ExecutionError{Op: op, Table: table, Query: query, Err: err}
}

// IsExecutionError returns true if the error is an ExecutionError.
func IsExecutionError(err error) bool {
	if err == nil {
		return false
	}
	var e *ExecutionError
	return errors.As(err, &e)
}

// MappingError reports a single column value that could not be coerced into
// its field. The field is left at its zero value.
type MappingError struct {
	Entity string // Entity type name
	Field  string // Target field
	Column string // Source column, empty when the column is missing
	Value  any    // Raw driver value
	Err    error  // Coercion error
}

// Error returns the error string.
func (e *MappingError) Error() string {
	if e.Column == "" {
		return fmt.Sprintf("tabula: mapping %s.%s: %v", e.Entity, e.Field, e.Err)
	}
	return fmt.Sprintf("tabula: mapping %s.%s from column %q (%T): %v", e.Entity, e.Field, e.Column, e.Value, e.Err)
}

// Unwrap returns the underlying error.
func (e *MappingError) Unwrap() error {
	return e.Err
}

// Is reports whether the target error matches ErrMapping.
func (e *MappingError) Is(err error) bool {
	return err == ErrMapping
}

// IsMappingError returns true if the error is a MappingError.
func IsMappingError(err error) bool {
	if err == nil {
		return false
	}
	var e *MappingError
	return errors.As(err, &e)
}

// NotFoundError represents an error when an entity is not found.
type NotFoundError struct {
	label string
	id    any
}

// Error returns the error string.
func (e *NotFoundError) Error() string {
	if e.id != nil {
		return fmt.Sprintf("tabula: %s not found (id=%v)", e.label, e.id)
	}
	return fmt.Sprintf("tabula: %s not found", e.label)
}

// Is reports whether the target error matches ErrNotFound.
func (e *NotFoundError) Is(err error) bool {
	return err == ErrNotFound
}

// Label returns the entity label.
func (e *NotFoundError) Label() string {
	return e.label
}

// ID returns the ID that was searched for, if available.
func (e *NotFoundError) ID() any {
	return e.id
}

// NewNotFoundError returns a new NotFoundError for the given entity type.
func NewNotFoundError(label string) *NotFoundError {
	return &NotFoundError{label: label}
}

// NewNotFoundErrorWithID returns a new NotFoundError with the ID that was searched for.
func NewNotFoundErrorWithID(label string, id any) *NotFoundError {
	return &NotFoundError{label: label, id: id}
}

// IsNotFound returns true if the error is a NotFoundError.
func IsNotFound(err error) bool {
	if err == nil {
		return false
	}
	var e *NotFoundError
	return errors.As(err, &e) || errors.Is(err, ErrNotFound)
}

// AggregateError represents multiple errors collected during an operation,
// such as every field that failed to map on one row.
type AggregateError struct {
	Errors []error
}

// Error returns the error string.
func (e *AggregateError) Error() string {
	if len(e.Errors) == 0 {
		return "tabula: no errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	var sb strings.Builder
	sb.WriteString("tabula: multiple errors:")
	for i, err := range e.Errors {
		fmt.Fprintf(&sb, "\n  [%d] %v", i+1, err)
	}
	return sb.String()
}

// Unwrap returns the collected errors so errors.Is and errors.As see each of them.
func (e *AggregateError) Unwrap() []error {
	return e.Errors
}

// NewAggregateError returns a new AggregateError if there are errors,
// otherwise returns nil.
func NewAggregateError(errs ...error) error {
	var filtered []error
	for _, err := range errs {
		if err != nil {
			filtered = append(filtered, err)
		}
	}
	if len(filtered) == 0 {
		return nil
	}
	if len(filtered) == 1 {
		return filtered[0]
	}
	return &AggregateError{Errors: filtered}
}

// IsUnrecoverable reports whether err signals a programming or shape mistake
// that must surface to the caller rather than be logged and swallowed.
func IsUnrecoverable(err error) bool {
	return IsShapeError(err) || IsUnsupportedOperator(err)
}
