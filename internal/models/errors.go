package models

import (
	"errors"
	"fmt"
)

// ErrValidation matches every *ValidationError through errors.Is.
var ErrValidation = errors.New("validation failed")

type ValidationError struct {
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s: %s", ErrValidation, e.Message)
	}
	return fmt.Sprintf("%s: %s: %s", ErrValidation, e.Field, e.Message)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func NewValidationError(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

func ParseCategory(s string) (Category, error) {
	c := Category(s)
	if !c.Valid() {
		return "", NewValidationError("category", "unknown category %q", s)
	}
	return c, nil
}

func ParsePriority(s string) (Priority, error) {
	p := Priority(s)
	if !p.Valid() {
		return "", NewValidationError("priority", "unknown priority %q", s)
	}
	return p, nil
}

func ParseChannel(s string) (Channel, error) {
	c := Channel(s)
	if !c.Valid() {
		return "", NewValidationError("channel", "unknown channel %q", s)
	}
	return c, nil
}

func ParseEmailDigest(s string) (EmailDigest, error) {
	d := EmailDigest(s)
	if !d.Valid() {
		return "", NewValidationError("emailDigest", "unknown email digest %q", s)
	}
	return d, nil
}
