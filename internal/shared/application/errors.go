package application

import (
	"errors"
	"fmt"
)

// ValidationError reports a malformed input field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// NotFoundError reports an absent resource or an unknown filter value.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("%s not found", e.Resource)
	}
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

// ForbiddenError reports an action outside the caller's scope.
type ForbiddenError struct {
	Action   string
	Resource string
	ID       string
}

func (e *ForbiddenError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("not allowed to %s %s", e.Action, e.Resource)
	}
	return fmt.Sprintf("not allowed to %s %s %s", e.Action, e.Resource, e.ID)
}

// StoreError wraps a persistence failure.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store: %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// Store wraps err as a StoreError unless it is already classified.
func Store(op string, err error) error {
	if err == nil {
		return nil
	}
	if IsValidation(err) || IsNotFound(err) || IsForbidden(err) || IsStore(err) {
		return err
	}
	return &StoreError{Op: op, Err: err}
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

// IsNotFound reports whether err is a NotFoundError.
func IsNotFound(err error) bool {
	var target *NotFoundError
	return errors.As(err, &target)
}

// IsForbidden reports whether err is a ForbiddenError.
func IsForbidden(err error) bool {
	var target *ForbiddenError
	return errors.As(err, &target)
}

// IsStore reports whether err is a StoreError.
func IsStore(err error) bool {
	var target *StoreError
	return errors.As(err, &target)
}
