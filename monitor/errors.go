package monitor

import "errors"

// ErrAlreadyRunning is returned by Run when the monitor is already running.
var ErrAlreadyRunning = errors.New("monitor already running")
