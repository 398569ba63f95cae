//go:build !linux

package out

import (
	"fmt"

	apperrors "quill/internal/platform/errors"
)

func openDevice(path string) (closer, error) {
	return nil, fmt.Errorf("no video device support on this platform for %s: %w", path, apperrors.ErrCaptureUnsupported)
}
