// Package validate wraps go-playground/validator behind a first-violation
// API so resource schemas can report the offending field with a readable
// reason instead of a joined tag dump.
package validate

import (
	"fmt"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

var instance = validator.New(validator.WithRequiredStructEnabled())

// Violation identifies the first failed constraint on a struct.
type Violation struct {
	Field      string
	Constraint string
	Param      string
}

// Message renders a caller-facing reason for the violation.
func (v Violation) Message() string {
	switch v.Constraint {
	case "required":
		return fmt.Sprintf("%s is required", v.Field)
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", v.Field, v.Param)
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", v.Field, v.Param)
	case "latitude":
		return fmt.Sprintf("%s must be a finite latitude in degrees", v.Field)
	case "longitude":
		return fmt.Sprintf("%s must be a finite longitude in degrees", v.Field)
	case "uuid":
		return fmt.Sprintf("%s must be a valid identifier", v.Field)
	default:
		return fmt.Sprintf("%s failed the %s constraint", v.Field, v.Constraint)
	}
}

// Struct checks the tagged constraints on value and returns the first
// violation, or nil when the value passes. A non-nil error means the value
// could not be validated at all (for example an unregistered tag).
func Struct(value any) (*Violation, error) {
	err := instance.Struct(value)
	if err == nil {
		return nil, nil
	}
	fieldErrors, ok := err.(validator.ValidationErrors)
	if !ok || len(fieldErrors) == 0 {
		return nil, err
	}
	first := fieldErrors[0]
	return &Violation{
		Field:      lowerFirst(first.Field()),
		Constraint: first.Tag(),
		Param:      first.Param(),
	}, nil
}

// Var checks a single value against a tag expression, such as "max=120".
func Var(field string, value any, tag string) *Violation {
	err := instance.Var(value, tag)
	if err == nil {
		return nil
	}
	fieldErrors, ok := err.(validator.ValidationErrors)
	if !ok || len(fieldErrors) == 0 {
		return &Violation{Field: field, Constraint: tag}
	}
	first := fieldErrors[0]
	return &Violation{Field: field, Constraint: first.Tag(), Param: first.Param()}
}

// ISOTime parses an ISO-8601 timestamp. Empty input after trimming
// normalizes to nil.
func ISOTime(raw string) (*time.Time, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, nil
	}
	parsed, err := time.Parse(time.RFC3339, trimmed)
	if err != nil {
		return nil, fmt.Errorf("not a valid ISO-8601 timestamp: %q", raw)
	}
	utc := parsed.UTC()
	return &utc, nil
}

func lowerFirst(name string) string {
	if name == "" {
		return name
	}
	r, size := utf8.DecodeRuneInString(name)
	return string(unicode.ToLower(r)) + name[size:]
}
