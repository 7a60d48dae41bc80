package service

import "fmt"

// PersistenceError marks a failed document write. Writes issued earlier in
// the same action are not retracted; the batch itself is only updated after
// every document write succeeds, so on this error the batch state is still
// pre-action.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

func persistf(err error, format string, args ...interface{}) *PersistenceError {
	return &PersistenceError{Op: fmt.Sprintf(format, args...), Err: err}
}
