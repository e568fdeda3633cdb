// Package gen generates the entity methods of packages loaded by
// compiler/load.
package gen

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidOption is matched by every OptionError.
	ErrInvalidOption = errors.New("tabulagen: invalid option")
	// ErrGenerationFailed is matched by every GenerationError.
	ErrGenerationFailed = errors.New("tabulagen: generation failed")
)

// OptionError reports an option value the generator cannot use.
type OptionError struct {
	Option string
	Value  any // nil when the option is missing
	Reason string
}

func (e *OptionError) Error() string {
	if e.Value == nil {
		return fmt.Sprintf("tabulagen: option %s: %s", e.Option, e.Reason)
	}
	return fmt.Sprintf("tabulagen: option %s=%v: %s", e.Option, e.Value, e.Reason)
}

// Is matches ErrInvalidOption.
func (e *OptionError) Is(target error) bool { return target == ErrInvalidOption }

// NewOptionError returns an OptionError.
func NewOptionError(option string, value any, reason string) *OptionError {
	return &OptionError{Option: option, Value: value, Reason: reason}
}

// GenerationError reports a package whose generated file could not be
// produced.
type GenerationError struct {
	Package string // import path
	File    string // generated file, when known
	Reason  string
	Cause   error
}

func (e *GenerationError) Error() string {
	msg := "tabulagen: " + e.Package
	if e.Package == "" {
		msg = "tabulagen: <unknown package>"
	}
	if e.File != "" {
		msg += " (" + e.File + ")"
	}
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *GenerationError) Unwrap() error { return e.Cause }

// Is matches ErrGenerationFailed.
func (e *GenerationError) Is(target error) bool { return target == ErrGenerationFailed }

// NewGenerationError returns a GenerationError.
func NewGenerationError(pkg, file, reason string, cause error) *GenerationError {
	return &GenerationError{Package: pkg, File: file, Reason: reason, Cause: cause}
}

// IsOptionError reports whether err wraps an OptionError.
func IsOptionError(err error) bool {
	var oe *OptionError
	return errors.As(err, &oe)
}

// IsGenerationError reports whether err wraps a GenerationError.
func IsGenerationError(err error) bool {
	var ge *GenerationError
	return errors.As(err, &ge)
}
