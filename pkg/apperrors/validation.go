package apperrors

import (
	"strings"
)

// ValidationError describes a client-side precondition failure on a single field.
type ValidationError struct {
	Field  string // The field that failed validation.
	Value  any    // The offending value.
	ErrStr string // What is wrong with it.
}

func (ve ValidationError) Error() string {
	if len(ve.Field) > 0 {
		return ve.Field + ": " + ve.ErrStr
	}
	return ve.ErrStr
}

// Unwrap lets errors.Is(err, ErrValidation) match any ValidationError.
func (ve ValidationError) Unwrap() error {
	return ErrValidation
}

// ValidationErrors is a collection of field failures reported together.
type ValidationErrors []ValidationError

func (ves ValidationErrors) Error() string {
	msgs := make([]string, 0, len(ves))
	for _, ve := range ves {
		msgs = append(msgs, ve.Error())
	}
	return strings.Join(msgs, "; ")
}

func (ves ValidationErrors) Unwrap() error {
	return ErrValidation
}

// Fields returns the names of the failing fields in order.
func (ves ValidationErrors) Fields() []string {
	fields := make([]string, 0, len(ves))
	for _, ve := range ves {
		fields = append(fields, ve.Field)
	}
	return fields
}

// ErrMissingRequiredAttribute reports an absent or empty required field.
func ErrMissingRequiredAttribute(attr string, value ...any) ValidationError {
	return ValidationError{
		Field:  attr,
		Value:  value,
		ErrStr: "missing required attribute",
	}
}

// ErrEmptyList reports an empty required collection.
func ErrEmptyList(attr string, reason string) ValidationError {
	errStr := "cannot be empty"
	if reason != "" {
		errStr += "; " + reason
	}
	return ValidationError{
		Field:  attr,
		ErrStr: errStr,
	}
}
