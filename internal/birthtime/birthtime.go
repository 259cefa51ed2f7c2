// Package birthtime reads and sets the file-system creation time of a file.
// Each platform supplies its own implementation; callers only see the
// Capability interface.
package birthtime

import (
	"errors"
	"time"
)

// ErrUnsupported is returned when the platform cannot provide the requested
// operation.
var ErrUnsupported = errors.New("creation time not supported on this platform")

// Capability gives access to a file's creation time.
type Capability interface {
	// CreationTime returns the birth time of path where the platform records
	// one, or the last metadata-change time otherwise.
	CreationTime(path string) (time.Time, error)
	// SetCreationTime changes only the creation time of path. Access and
	// modification times are left alone.
	SetCreationTime(path string, t time.Time) error
}

// Native returns the implementation for the running platform.
func Native() Capability {
	return native{}
}

// Fixed is a Capability with canned answers, for tests and dry runs.
type Fixed struct {
	Time    time.Time
	Err     error
	SetErr  error
	Applied map[string]time.Time
}

func (f *Fixed) CreationTime(path string) (time.Time, error) {
	if f.Err != nil {
		return time.Time{}, f.Err
	}
	return f.Time, nil
}

func (f *Fixed) SetCreationTime(path string, t time.Time) error {
	if f.SetErr != nil {
		return f.SetErr
	}
	if f.Applied == nil {
		f.Applied = map[string]time.Time{}
	}
	f.Applied[path] = t
	return nil
}
