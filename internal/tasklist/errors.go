package tasklist

import (
	"errors"
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// ErrValidation matches every *ValidationError via errors.Is
var ErrValidation = errors.New("validation failed")

// ValidationError reports user input that was rejected without changing state
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// StorageError wraps a failed read or write of the local store. It is
// logged and never returned from controller operations.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// Messages shown when task text is empty after trimming.
const (
	MsgEmptyAdd  = "Please enter a task"
	MsgEmptyEdit = "Task cannot be empty"
)

func validateText(field, text, message string) error {
	if err := validation.Validate(text, validation.Required.Error(message)); err != nil {
		return &ValidationError{Field: field, Message: err.Error()}
	}
	return nil
}
