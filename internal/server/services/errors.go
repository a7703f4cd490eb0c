// Package services contains the server-side business logic of Taskly:
// accounts and sessions (UserService) and per-user tasks (TaskService).
package services

import "github.com/dmitrijs2005/taskly/internal/common"

// ValidationError is a user-facing rejection of input. It matches
// common.ErrorValidation under errors.Is.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func (e *ValidationError) Is(target error) bool { return target == common.ErrorValidation }

func invalid(msg string) error { return &ValidationError{Message: msg} }
