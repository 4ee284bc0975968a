package models

import (
	"errors"
	"fmt"
)

// Business-rule rejections. Callers match them with errors.Is.
var (
	ErrInvalidInput        = errors.New("invalid input")
	ErrAlreadyExists       = errors.New("already exists")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrNotFound            = errors.New("not found")
	ErrActiveRequestExists = errors.New("active request already exists")
	ErrInvalidTransition   = errors.New("invalid status transition")
)

// StorageError reports an infrastructure failure (I/O, driver, broken schema)
// as opposed to a rejected operation.
type StorageError struct {
	// Op names the store operation that failed.
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// IsStorage reports whether err carries a StorageError.
func IsStorage(err error) bool {
	var se *StorageError
	return errors.As(err, &se)
}
