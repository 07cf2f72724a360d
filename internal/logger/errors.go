package logger

import (
	"errors"
	"fmt"
	"os"
	"sync/atomic"
)

var (
	// ErrAppNameIsEmpty is returned when Log.AppName is not set.
	ErrAppNameIsEmpty = errors.New("log app name must be set")

	// ErrServiceNameIsEmpty is returned when Log.ServiceName is not set, it labels the log metrics.
	ErrServiceNameIsEmpty = errors.New("log service name must be set")
)

var writeFailures atomic.Int64 //nolint:gochecknoglobals

// ErrorHandler is installed as zerolog.ErrorHandler. A lost event cannot be
// logged, so it goes to stderr and is counted.
func ErrorHandler(err error) {
	n := writeFailures.Add(1)
	_, _ = fmt.Fprintf(os.Stderr, "rentfusion: dropped log event #%d: %v\n", n, err)
}

// WriteFailures returns how many log events could not be written.
func WriteFailures() int64 {
	return writeFailures.Load()
}
