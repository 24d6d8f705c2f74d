package common

import (
	"errors"
	"fmt"
)

// NotFoundError indicates that an entity that an operation refers to doesn't exist.
type NotFoundError struct {
	Entity string
	ID     string
}

// Error returns the error message for a NotFoundError.
func (e NotFoundError) Error() string {
	return fmt.Sprintf("%s with id %s not found", e.Entity, e.ID)
}

// NewNotFound returns a new error indicating that the entity with the given ID doesn't exist.
func NewNotFound(entity string, id interface{}) NotFoundError {
	return NotFoundError{Entity: entity, ID: fmt.Sprintf("%v", id)}
}

// AccessDeniedError indicates that the acting user isn't permitted to perform an operation.
type AccessDeniedError struct {
	message string
}

// Error returns the error message for an AccessDeniedError.
func (e AccessDeniedError) Error() string {
	return e.message
}

// NewAccessDenied returns a new error indicating that an operation isn't permitted.
func NewAccessDenied(formatString string, a ...interface{}) AccessDeniedError {
	return AccessDeniedError{message: fmt.Sprintf(formatString, a...)}
}

// ConflictError indicates that an operation would violate a uniqueness or consistency rule.
type ConflictError struct {
	message string
}

// Error returns the error message for a ConflictError.
func (e ConflictError) Error() string {
	return e.message
}

// NewConflict returns a new error indicating a uniqueness or consistency violation.
func NewConflict(formatString string, a ...interface{}) ConflictError {
	return ConflictError{message: fmt.Sprintf(formatString, a...)}
}

// InternalError indicates an unexpected failure in this service or one of its collaborators.
type InternalError struct {
	message string
}

// Error returns the error message for an InternalError.
func (e InternalError) Error() string {
	return e.message
}

// NewInternal returns a new error indicating an unexpected failure.
func NewInternal(formatString string, a ...interface{}) InternalError {
	return InternalError{message: fmt.Sprintf(formatString, a...)}
}

// IsNotFound determines whether or not an error indicates that an entity doesn't exist.
func IsNotFound(err error) bool {
	var target NotFoundError
	return errors.As(err, &target)
}

// IsAccessDenied determines whether or not an error indicates that an operation isn't permitted.
func IsAccessDenied(err error) bool {
	var target AccessDeniedError
	return errors.As(err, &target)
}

// IsConflict determines whether or not an error indicates a uniqueness or consistency violation.
func IsConflict(err error) bool {
	var target ConflictError
	return errors.As(err, &target)
}
