package setof

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for common failure cases.
var (
	// ErrDuplicateType is returned when a type name is registered twice.
	ErrDuplicateType = errors.New("setof: duplicate type name")

	// ErrRegistryFrozen is returned when the registry is written after Finalize.
	ErrRegistryFrozen = errors.New("setof: registry is frozen")

	// ErrUnknownType is returned when a field refers to a type that was never declared.
	ErrUnknownType = errors.New("setof: unknown type")

	// ErrEmptyType is returned when an object type defines no fields.
	ErrEmptyType = errors.New("setof: type defines no fields")

	// ErrInvalidMetadata is returned when introspection metadata is inconsistent.
	ErrInvalidMetadata = errors.New("setof: invalid introspection metadata")

	// ErrInvalidCursor is returned when a cursor cannot be encoded or decoded.
	ErrInvalidCursor = errors.New("setof: invalid cursor")

	// ErrMissingConfig indicates a configuration error.
	ErrMissingConfig = errors.New("setof: missing configuration")

	// ErrIntrospection indicates a failure while reading the database catalog.
	ErrIntrospection = errors.New("setof: introspection failed")
)

// SchemaError represents a failure while building the output schema.
type SchemaError struct {
	Type    string // GraphQL type name
	Field   string // Field name (if applicable)
	Message string
	Cause   error
	kind    error
}

// Error implements the error interface.
func (e *SchemaError) Error() string {
	var b strings.Builder
	b.WriteString("setof: schema error")
	if e.Type != "" {
		b.WriteString(" on type ")
		b.WriteString(e.Type)
	}
	if e.Field != "" {
		b.WriteString(" field ")
		b.WriteString(e.Field)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

// Unwrap returns the underlying error.
func (e *SchemaError) Unwrap() error {
	return e.Cause
}

// Is reports whether the target matches the sentinel the error was created with.
func (e *SchemaError) Is(target error) bool {
	return e.kind != nil && target == e.kind
}

// NewSchemaError creates a new SchemaError classified by the given sentinel.
func NewSchemaError(kind error, typeName, fieldName, message string, cause error) *SchemaError {
	return &SchemaError{
		Type:    typeName,
		Field:   fieldName,
		Message: message,
		Cause:   cause,
		kind:    kind,
	}
}

// ConfigError represents a configuration error.
type ConfigError struct {
	Option  string
	Value   any
	Message string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	if e.Value != nil {
		return fmt.Sprintf("setof: config error for %q (value: %v): %s", e.Option, e.Value, e.Message)
	}
	return fmt.Sprintf("setof: config error for %q: %s", e.Option, e.Message)
}

// Is reports whether the target matches the sentinel error for ConfigError.
func (e *ConfigError) Is(target error) bool {
	return target == ErrMissingConfig
}

// NewConfigError creates a new ConfigError.
func NewConfigError(option string, value any, message string) *ConfigError {
	return &ConfigError{
		Option:  option,
		Value:   value,
		Message: message,
	}
}

// CursorError represents a cursor that could not be encoded or decoded.
type CursorError struct {
	Cursor  string // the opaque form, when decoding
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *CursorError) Error() string {
	var b strings.Builder
	b.WriteString("setof: invalid cursor")
	if e.Cursor != "" {
		fmt.Fprintf(&b, " %q", e.Cursor)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

// Unwrap returns the underlying error.
func (e *CursorError) Unwrap() error {
	return e.Cause
}

// Is reports whether the target matches the sentinel error for CursorError.
func (e *CursorError) Is(target error) bool {
	return target == ErrInvalidCursor
}

// NewCursorError creates a new CursorError.
func NewCursorError(cursor, message string, cause error) *CursorError {
	return &CursorError{
		Cursor:  cursor,
		Message: message,
		Cause:   cause,
	}
}

// IntrospectionError represents a failure while loading one kind of catalog record.
type IntrospectionError struct {
	Kind    string // "namespace", "class", "type", "procedure"
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *IntrospectionError) Error() string {
	var b strings.Builder
	b.WriteString("setof: introspection error")
	if e.Kind != "" {
		b.WriteString(" loading ")
		b.WriteString(e.Kind)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

// Unwrap returns the underlying error.
func (e *IntrospectionError) Unwrap() error {
	return e.Cause
}

// Is reports whether the target matches the sentinel error for IntrospectionError.
func (e *IntrospectionError) Is(target error) bool {
	return target == ErrIntrospection
}

// NewIntrospectionError creates a new IntrospectionError.
func NewIntrospectionError(kind, message string, cause error) *IntrospectionError {
	return &IntrospectionError{
		Kind:    kind,
		Message: message,
		Cause:   cause,
	}
}

// IsSchemaError reports whether the error is a SchemaError.
func IsSchemaError(err error) bool {
	var schemaErr *SchemaError
	return errors.As(err, &schemaErr)
}

// IsConfigError reports whether the error is a ConfigError.
func IsConfigError(err error) bool {
	var configErr *ConfigError
	return errors.As(err, &configErr)
}

// IsCursorError reports whether the error is a CursorError.
func IsCursorError(err error) bool {
	var cursorErr *CursorError
	return errors.As(err, &cursorErr)
}

// IsIntrospectionError reports whether the error is an IntrospectionError.
func IsIntrospectionError(err error) bool {
	var introErr *IntrospectionError
	return errors.As(err, &introErr)
}
