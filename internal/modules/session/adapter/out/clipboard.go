package out

import (
	"fmt"

	"github.com/atotto/clipboard"

	apperrors "quill/internal/platform/errors"
)

// Package-level variables allow stubbing in tests.
var (
	clipboardWriteAll    = clipboard.WriteAll
	clipboardUnsupported = func() bool { return clipboard.Unsupported }
)

type SystemClipboard struct{}

func NewSystemClipboard() SystemClipboard { return SystemClipboard{} }

func (SystemClipboard) WriteText(text string) error {
	if clipboardUnsupported() {
		return apperrors.ErrClipboardUnavailable
	}
	if err := clipboardWriteAll(text); err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrClipboardUnavailable, err)
	}
	return nil
}
