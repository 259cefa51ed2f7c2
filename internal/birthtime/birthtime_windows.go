package birthtime

import (
	"fmt"
	"time"

	"golang.org/x/sys/windows"
)

type native struct{}

func open(path string, access uint32) (windows.Handle, error) {
	p, err := windows.UTF16PtrFromString(path)
	if err != nil {
		return windows.InvalidHandle, err
	}
	return windows.CreateFile(p, access, windows.FILE_SHARE_READ|windows.FILE_SHARE_WRITE, nil,
		windows.OPEN_EXISTING, windows.FILE_ATTRIBUTE_NORMAL, 0)
}

func (native) CreationTime(path string) (time.Time, error) {
	h, err := open(path, windows.GENERIC_READ)
	if err != nil {
		return time.Time{}, fmt.Errorf("opening %s: %w", path, err)
	}
	defer windows.CloseHandle(h)

	var ctime, atime, wtime windows.Filetime
	if err := windows.GetFileTime(h, &ctime, &atime, &wtime); err != nil {
		return time.Time{}, fmt.Errorf("reading file times of %s: %w", path, err)
	}
	return time.Unix(0, ctime.Nanoseconds()), nil
}

// SetCreationTime passes nil for the access and write times so Windows keeps
// them as they are.
func (native) SetCreationTime(path string, t time.Time) error {
	h, err := open(path, windows.FILE_WRITE_ATTRIBUTES)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer windows.CloseHandle(h)

	ctime := windows.NsecToFiletime(t.UnixNano())
	if err := windows.SetFileTime(h, &ctime, nil, nil); err != nil {
		return fmt.Errorf("setting creation time of %s: %w", path, err)
	}
	return nil
}
