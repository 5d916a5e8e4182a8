package spirv

import (
	"errors"
	"fmt"
)

// ErrorKind categorizes SPIR-V compilation errors.
type ErrorKind uint8

const (
	// ErrUnsupportedType indicates a type that cannot be represented in SPIR-V.
	ErrUnsupportedType ErrorKind = iota

	// ErrUnsupportedFeature indicates a feature the compiler does not implement.
	ErrUnsupportedFeature

	// ErrInternalError indicates an internal compiler error.
	ErrInternalError

	// ErrInvalidProgram indicates the program description is malformed.
	ErrInvalidProgram

	// ErrEntryPointNotFound indicates the program has no entry method.
	ErrEntryPointNotFound

	// ErrInvalidState indicates a compiler instance was used twice.
	ErrInvalidState
)

// String returns a human-readable error kind name.
func (k ErrorKind) String() string {
	switch k {
	case ErrUnsupportedType:
		return "UnsupportedType"
	case ErrUnsupportedFeature:
		return "UnsupportedFeature"
	case ErrInternalError:
		return "InternalError"
	case ErrInvalidProgram:
		return "InvalidProgram"
	case ErrEntryPointNotFound:
		return "EntryPointNotFound"
	case ErrInvalidState:
		return "InvalidState"
	default:
		return "Unknown"
	}
}

// Error represents a SPIR-V compilation error.
type Error struct {
	// Kind categorizes the error.
	Kind ErrorKind

	// Message provides details about the error.
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("spirv %s: %s", e.Kind, e.Message)
}

// NewError creates a new SPIR-V error.
func NewError(kind ErrorKind, message string) *Error {
	return &Error{
		Kind:    kind,
		Message: message,
	}
}

func errorf(kind ErrorKind, format string, args ...any) *Error {
	return NewError(kind, fmt.Sprintf(format, args...))
}

// IsUnsupported returns true if the error is ErrUnsupportedType or ErrUnsupportedFeature.
func (e *Error) IsUnsupported() bool {
	return e.Kind == ErrUnsupportedType || e.Kind == ErrUnsupportedFeature
}

// IsInternalError returns true if the error is ErrInternalError.
func (e *Error) IsInternalError() bool {
	return e.Kind == ErrInternalError
}

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) (ErrorKind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}

// IsUnsupported reports whether err was caused by an unsupported type or feature.
func IsUnsupported(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.IsUnsupported()
}
