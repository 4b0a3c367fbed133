// Package modelgraph holds the error taxonomy shared by the graph extractor,
// the descriptor registry and the database inspector.
package modelgraph

import (
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"
)

// Standard sentinel errors. Every typed error below matches exactly one of
// them through errors.Is.
var (
	// ErrReflectionUnavailable is returned when relationship or ancestor
	// metadata cannot be produced for a type (e.g. it is not mapped).
	ErrReflectionUnavailable = errors.New("modelgraph: reflection unavailable")

	// ErrUnresolvedTarget is returned when a relationship target cannot be
	// resolved to a concrete type.
	ErrUnresolvedTarget = errors.New("modelgraph: unresolved relationship target")

	// ErrMultiplicityUnknown is returned when a relationship direction is
	// outside the four supported kinds.
	ErrMultiplicityUnknown = errors.New("modelgraph: unknown multiplicity")

	// ErrInvalidSchema indicates a malformed type descriptor set.
	ErrInvalidSchema = errors.New("modelgraph: invalid schema")

	// ErrInvalidConfig indicates a bad option value.
	ErrInvalidConfig = errors.New("modelgraph: invalid configuration")
)

// ReflectionError reports that the provider has no metadata for a type.
type ReflectionError struct {
	Type  string // Qualified type name
	Cause error  // Optional underlying error
}

// Error returns the error string.
func (e *ReflectionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("modelgraph: reflection unavailable for %s: %v", e.Type, e.Cause)
	}
	return fmt.Sprintf("modelgraph: reflection unavailable for %s", e.Type)
}

// Unwrap returns the underlying error.
func (e *ReflectionError) Unwrap() error { return e.Cause }

// Is reports whether the target is ErrReflectionUnavailable.
func (e *ReflectionError) Is(target error) bool { return target == ErrReflectionUnavailable }

// NewReflectionError returns a new ReflectionError for the given type.
func NewReflectionError(typ string, cause error) *ReflectionError {
	return &ReflectionError{Type: typ, Cause: cause}
}

// IsReflectionUnavailable returns true if the error is a ReflectionError.
func IsReflectionUnavailable(err error) bool {
	if err == nil {
		return false
	}
	var e *ReflectionError
	return errors.As(err, &e) || errors.Is(err, ErrReflectionUnavailable)
}

// TargetError reports a relationship whose target could not be resolved.
type TargetError struct {
	Type         string // Owner type
	Relationship string // Relationship name
	Target       string // Target reference as declared
	Cause        error
}

// Error returns the error string.
func (e *TargetError) Error() string {
	msg := fmt.Sprintf("modelgraph: relationship %s.%s: cannot resolve target %q", e.Type, e.Relationship, e.Target)
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying error.
func (e *TargetError) Unwrap() error { return e.Cause }

// Is reports whether the target is ErrUnresolvedTarget.
func (e *TargetError) Is(target error) bool { return target == ErrUnresolvedTarget }

// NewTargetError returns a new TargetError.
func NewTargetError(typ, rel, target string, cause error) *TargetError {
	return &TargetError{Type: typ, Relationship: rel, Target: target, Cause: cause}
}

// IsUnresolvedTarget returns true if the error is a TargetError.
func IsUnresolvedTarget(err error) bool {
	if err == nil {
		return false
	}
	var e *TargetError
	return errors.As(err, &e) || errors.Is(err, ErrUnresolvedTarget)
}

// MultiplicityError reports a relationship with an unsupported direction.
type MultiplicityError struct {
	Type         string
	Relationship string
	Rel          string // Direction as reported by the provider
}

// Error returns the error string.
func (e *MultiplicityError) Error() string {
	return fmt.Sprintf("modelgraph: relationship %s.%s: no multiplicity for direction %q", e.Type, e.Relationship, e.Rel)
}

// Is reports whether the target is ErrMultiplicityUnknown.
func (e *MultiplicityError) Is(target error) bool { return target == ErrMultiplicityUnknown }

// NewMultiplicityError returns a new MultiplicityError.
func NewMultiplicityError(typ, rel, direction string) *MultiplicityError {
	return &MultiplicityError{Type: typ, Relationship: rel, Rel: direction}
}

// IsMultiplicityUnknown returns true if the error is a MultiplicityError.
func IsMultiplicityUnknown(err error) bool {
	if err == nil {
		return false
	}
	var e *MultiplicityError
	return errors.As(err, &e) || errors.Is(err, ErrMultiplicityUnknown)
}

// SchemaError represents a type descriptor error.
type SchemaError struct {
	Type    string // Type name
	Edge    string // Edge name (if applicable)
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *SchemaError) Error() string {
	var b strings.Builder
	b.WriteString("modelgraph: schema error")
	if e.Type != "" {
		b.WriteString(" on type ")
		b.WriteString(e.Type)
	}
	if e.Edge != "" {
		b.WriteString(" edge ")
		b.WriteString(e.Edge)
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
func (e *SchemaError) Unwrap() error { return e.Cause }

// Is reports whether the target is ErrInvalidSchema.
func (e *SchemaError) Is(target error) bool { return target == ErrInvalidSchema }

// NewSchemaError creates a new SchemaError.
func NewSchemaError(typ, edge, message string, cause error) *SchemaError {
	return &SchemaError{Type: typ, Edge: edge, Message: message, Cause: cause}
}

// IsSchemaError returns true if the error is a SchemaError.
func IsSchemaError(err error) bool {
	var e *SchemaError
	return errors.As(err, &e)
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
		return fmt.Sprintf("modelgraph: config error for %q (value: %v): %s", e.Option, e.Value, e.Message)
	}
	return fmt.Sprintf("modelgraph: config error for %q: %s", e.Option, e.Message)
}

// Is reports whether the target is ErrInvalidConfig.
func (e *ConfigError) Is(target error) bool { return target == ErrInvalidConfig }

// NewConfigError creates a new ConfigError.
func NewConfigError(option string, value any, message string) *ConfigError {
	return &ConfigError{Option: option, Value: value, Message: message}
}

// IsConfigError returns true if the error is a ConfigError.
func IsConfigError(err error) bool {
	var e *ConfigError
	return errors.As(err, &e)
}
