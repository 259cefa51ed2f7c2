package birthtime

import (
	"fmt"
	"time"

	"golang.org/x/sys/unix"
)

type native struct{}

// CreationTime uses statx. Kernels or file systems without birth time
// support fall back to the inode change time.
func (native) CreationTime(path string) (time.Time, error) {
	var stx unix.Statx_t
	err := unix.Statx(unix.AT_FDCWD, path, unix.AT_STATX_SYNC_AS_STAT, unix.STATX_BTIME|unix.STATX_CTIME, &stx)
	if err != nil {
		return time.Time{}, fmt.Errorf("statx %s: %w", path, err)
	}
	if stx.Mask&unix.STATX_BTIME != 0 {
		return time.Unix(stx.Btime.Sec, int64(stx.Btime.Nsec)), nil
	}
	return time.Unix(stx.Ctime.Sec, int64(stx.Ctime.Nsec)), nil
}

// SetCreationTime is not possible on Linux; birth time is kernel-managed.
func (native) SetCreationTime(path string, t time.Time) error {
	return ErrUnsupported
}
