//go:build linux

package out

import (
	"errors"
	"fmt"
	"os"

	"golang.org/x/sys/unix"

	apperrors "quill/internal/platform/errors"
)

// openDevice opens a V4L2 node without blocking on a camera that is still
// powering up. Errno values are folded into the capture sentinels.
func openDevice(path string) (closer, error) {
	f, err := os.OpenFile(path, os.O_RDWR|unix.O_NONBLOCK|unix.O_CLOEXEC, 0)
	if err != nil {
		switch {
		case errors.Is(err, unix.EACCES), errors.Is(err, unix.EPERM), errors.Is(err, unix.EBUSY):
			return nil, fmt.Errorf("%w: %v", apperrors.ErrCaptureDenied, err)
		case errors.Is(err, unix.ENOENT), errors.Is(err, unix.ENODEV), errors.Is(err, unix.ENXIO):
			return nil, fmt.Errorf("%w: %v", apperrors.ErrCaptureUnsupported, err)
		default:
			return nil, err
		}
	}
	var st unix.Stat_t
	if err := unix.Fstat(int(f.Fd()), &st); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("stat device: %w", err)
	}
	if st.Mode&unix.S_IFMT == unix.S_IFDIR {
		_ = f.Close()
		return nil, fmt.Errorf("%s is a directory: %w", path, apperrors.ErrCaptureUnsupported)
	}
	return f, nil
}
