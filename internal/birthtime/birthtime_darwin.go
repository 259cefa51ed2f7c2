package birthtime

import (
	"fmt"
	"time"

	"golang.org/x/sys/unix"
)

type native struct{}

func (native) CreationTime(path string) (time.Time, error) {
	var st unix.Stat_t
	if err := unix.Stat(path, &st); err != nil {
		return time.Time{}, fmt.Errorf("stat %s: %w", path, err)
	}
	return time.Unix(st.Birthtimespec.Unix()), nil
}

func (native) SetCreationTime(path string, t time.Time) error {
	return ErrUnsupported
}
