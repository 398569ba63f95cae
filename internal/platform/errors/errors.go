package apperrors

import "errors"

var (
	ErrInvalidInput         = errors.New("invalid input")
	ErrNotFound             = errors.New("not found")
	ErrNoActiveSession      = errors.New("no active session")
	ErrSessionLocked        = errors.New("session is locked")
	ErrEmptyPrompt          = errors.New("prompt is empty")
	ErrNoPrompts            = errors.New("no prompts available")
	ErrCaptureDenied        = errors.New("capture permission denied")
	ErrCaptureUnsupported   = errors.New("capture not supported")
	ErrClipboardUnavailable = errors.New("clipboard unavailable")
)
