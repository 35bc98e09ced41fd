// Package options describes model options and validates caller input against
// them. A model publishes its options as a slice of Field descriptors so the
// host can list them and expose them as flags; values arrive as Raw strings
// and are parsed and checked by the typed helpers here. Every failure is a
// *ValidationError that unwraps to ErrInvalidOption.
package options

import (
	"errors"
	"fmt"
	"slices"
	"sort"
	"strconv"
	"strings"
)

// ErrInvalidOption is the sentinel wrapped by every ValidationError.
var ErrInvalidOption = errors.New("invalid option")

// ValidationError reports an option value outside its allowed domain.
type ValidationError struct {
	Field      string // Option name, e.g. "max_tokens".
	Constraint string // e.g. "must be between 2 and 4000".
	Value      any    // Offending value; nil when absent or unparseable.
}

// Error implements error.
func (e *ValidationError) Error() string {
	if e.Value == nil {
		return fmt.Sprintf("%s %s", e.Field, e.Constraint)
	}
	return fmt.Sprintf("%s %s (got %v)", e.Field, e.Constraint, e.Value)
}

// Unwrap returns ErrInvalidOption.
func (e *ValidationError) Unwrap() error { return ErrInvalidOption }

// Type is the value type of an option.
type Type string

// Supported option types.
const (
	Int    Type = "int"
	Float  Type = "float"
	String Type = "string"
)

// Field describes a single model option.
type Field struct {
	Name        string
	Description string
	Type        Type
	Default     string   // Display form of the default; empty when there is none.
	Choices     []string // Allowed values for enumerated string options.
}

// Raw holds caller-supplied option values keyed by option name, exactly as
// typed on the command line.
type Raw map[string]string

// ParsePairs builds a Raw from "name=value" pairs. A later pair overrides an
// earlier one with the same name.
func ParsePairs(pairs []string) (Raw, error) {
	raw := make(Raw, len(pairs))
	for _, p := range pairs {
		name, value, ok := strings.Cut(p, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, &ValidationError{Field: p, Constraint: "must be written as name=value"}
		}
		raw[name] = value
	}
	return raw, nil
}

// Check rejects names in raw that no field declares. Unknown names are
// reported in sorted order so the error is stable.
func Check(fields []Field, raw Raw) error {
	var unknown []string
	for name := range raw {
		if !slices.ContainsFunc(fields, func(f Field) bool { return f.Name == name }) {
			unknown = append(unknown, name)
		}
	}
	if len(unknown) == 0 {
		return nil
	}
	sort.Strings(unknown)
	return &ValidationError{Field: unknown[0], Constraint: "is not a known option"}
}

// Int parses the named option. It returns nil when the option is absent.
func (r Raw) Int(name string) (*int, error) {
	s, ok := r[name]
	if !ok {
		return nil, nil
	}
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return nil, &ValidationError{Field: name, Constraint: "must be an integer", Value: s}
	}
	return &v, nil
}

// Float parses the named option. It returns nil when the option is absent.
func (r Raw) Float(name string) (*float64, error) {
	s, ok := r[name]
	if !ok {
		return nil, nil
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return nil, &ValidationError{Field: name, Constraint: "must be a number", Value: s}
	}
	return &v, nil
}

// String returns the named option and whether it was supplied.
func (r Raw) String(name string) (string, bool) {
	s, ok := r[name]
	return s, ok
}

// Choice returns the named option, or "" when absent. A supplied value must
// be one of choices; an explicitly empty value is rejected too.
func (r Raw) Choice(name string, choices ...string) (string, error) {
	s, ok := r[name]
	if !ok {
		return "", nil
	}
	if !slices.Contains(choices, s) {
		return "", oneOfError(name, s, choices)
	}
	return s, nil
}

// IntBetween checks min <= *v <= max. A nil v is valid.
func IntBetween(name string, v *int, minV, maxV int) error {
	if v == nil || (*v >= minV && *v <= maxV) {
		return nil
	}
	return &ValidationError{
		Field:      name,
		Constraint: fmt.Sprintf("must be between %d and %d", minV, maxV),
		Value:      *v,
	}
}

// FloatBetween checks min <= *v <= max. A nil v is valid; NaN never is.
func FloatBetween(name string, v *float64, minV, maxV float64) error {
	if v == nil || (*v >= minV && *v <= maxV) {
		return nil
	}
	return &ValidationError{
		Field:      name,
		Constraint: "must be between " + formatFloat(minV) + " and " + formatFloat(maxV),
		Value:      *v,
	}
}

// OneOf checks that a non-empty v is one of choices. Empty means "not
// supplied" and is valid.
func OneOf(name, v string, choices ...string) error {
	if v == "" || slices.Contains(choices, v) {
		return nil
	}
	return oneOfError(name, v, choices)
}

func oneOfError(name, v string, choices []string) error {
	return &ValidationError{
		Field:      name,
		Constraint: "must be one of " + strings.Join(choices, ", "),
		Value:      strconv.Quote(v),
	}
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}
