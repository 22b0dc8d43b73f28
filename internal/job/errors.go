package job

import (
	"errors"
	"fmt"
)

// ErrDuplicateJob is returned by Store.Create on an id collision. With uuid
// ids this indicates a broken id generator, not a caller mistake.
var ErrDuplicateJob = errors.New("job id already exists")

// ErrNotFound is returned by read paths for unknown job ids. Mutators do not
// return it; they no-op to tolerate late callbacks.
var ErrNotFound = errors.New("job not found")

// ValidationError rejects a submission before any Job Record is created.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// IsValidation reports whether err is a submission validation failure.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
