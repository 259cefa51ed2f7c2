//go:build (!unix && !windows) || aix

package birthtime

import "time"

type native struct{}

func (native) CreationTime(path string) (time.Time, error) {
	return time.Time{}, ErrUnsupported
}

func (native) SetCreationTime(path string, t time.Time) error {
	return ErrUnsupported
}
