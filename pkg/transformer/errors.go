package transformer

import (
	"errors"
	"fmt"
)

// ErrLabelPropertyRequired is returned when a new entry is submitted but the
// transformer has no label property to write it into.
var ErrLabelPropertyRequired = errors.New("transformer: label property required to create new entries")

// TransformationFailedError reports a submitted key that does not resolve to
// exactly one persisted entity. It is the only error meant to be shown to end
// users; Unwrap exposes persistence.ErrNotFound or persistence.ErrNotUnique.
type TransformationFailedError struct {
	Value string
	Err   error
}

func (e *TransformationFailedError) Error() string {
	return fmt.Sprintf("transformer: choice %q does not exist or is not unique", e.Value)
}

func (e *TransformationFailedError) Unwrap() error { return e.Err }

// Message returns the user-facing validation message.
func (e *TransformationFailedError) Message() string {
	return fmt.Sprintf("The choice %q does not exist or is not unique", e.Value)
}

// IsTransformationFailed reports whether err is, or wraps, a
// *TransformationFailedError.
func IsTransformationFailed(err error) bool {
	var target *TransformationFailedError
	return errors.As(err, &target)
}
