// Package apperr defines the error kinds shared by the calculators and their callers.
//
// Errors are plain sentinels. Callers wrap them with fmt.Errorf("...: %w", ...) and
// test with errors.Is, so a single error may carry more than one kind.
package apperr

import "errors"

var (
	// ErrInvalidArgument is returned for inputs outside an operation's domain,
	// such as a non-positive step count or an unparseable date.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrInvalidConfiguration is returned when a static table fails validation at load time.
	ErrInvalidConfiguration = errors.New("invalid configuration")

	// ErrLookupMiss is returned when a referenced name is absent from a registry or dictionary.
	ErrLookupMiss = errors.New("lookup miss")
)

// IsInvalidArgument reports whether err carries ErrInvalidArgument.
func IsInvalidArgument(err error) bool {
	return errors.Is(err, ErrInvalidArgument)
}

// IsLookupMiss reports whether err carries ErrLookupMiss.
func IsLookupMiss(err error) bool {
	return errors.Is(err, ErrLookupMiss)
}
