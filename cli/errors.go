package cli

import (
	"errors"
)

// ErrFilesFailed is returned when at least one file could not be processed.
var ErrFilesFailed = errors.New("one or more files could not be processed")

// reportedError marks an error the reporter has already written.
type reportedError struct {
	err error
}

func (e *reportedError) Error() string {
	return e.err.Error()
}

func (e *reportedError) Unwrap() error {
	return e.err
}

func isReported(err error) bool {
	var r *reportedError
	return errors.As(err, &r)
}

// fail reports err and marks it as reported.
func (r *Reporter) fail(err error) error {
	r.Error(err)
	return &reportedError{err: err}
}
