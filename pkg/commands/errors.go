package commands

import (
	"errors"
	"fmt"
)

// DispatchError is returned when the handler of a selected command fails.
type DispatchError struct {
	Command string
	Err     error
}

func (e *DispatchError) Error() string {
	return fmt.Sprintf("command %q failed: %v", e.Command, e.Err)
}

func (e *DispatchError) Unwrap() error {
	return e.Err
}

// ExitCode returns the exit status carried by the handler error, or 1.
func (e *DispatchError) ExitCode() int {
	var coder interface{ ExitCode() int }
	if errors.As(e.Err, &coder) {
		return coder.ExitCode()
	}
	return 1
}
