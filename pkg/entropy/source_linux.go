//go:build linux

package entropy

import (
	"errors"
	"syscall"

	"golang.org/x/sys/unix"

	"bloomkit/pkg/syserr"
)

// PlatformSource returns the kernel random device.
func PlatformSource() Source {
	return DeviceSource{Path: DefaultDevicePath}
}

// GetrandomSource fills from the getrandom(2) system call instead of the
// device file.
type GetrandomSource struct{}

func (GetrandomSource) Fill(p []byte) error {
	for len(p) > 0 {
		n, err := unix.Getrandom(p, 0)
		if err != nil {
			var errno syscall.Errno
			if errors.As(err, &errno) {
				if errno == unix.EINTR {
					continue
				}
				return syserr.FromErrno(errno)
			}
			return err
		}
		p = p[n:]
	}
	return nil
}
