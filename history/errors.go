package history

import "errors"

var (
	// ErrUnexpectedStatus is returned when the decision log answers with a
	// non-2xx status.
	ErrUnexpectedStatus = errors.New("unexpected status")

	// ErrThrottled is returned when Trigger is called again before the
	// configured interval has passed.
	ErrThrottled = errors.New("trigger throttled")
)
