package dto

import "time"

const (
	PromptModeRandom = "random"
	PromptModeCustom = "custom"
	PromptModeByID   = "id"
)

type StartInput struct {
	Mode     string
	Prompt   string
	PromptID string
}

type EditInput struct {
	Text string
}

// Snapshot is the presentation view of the live session. Every field is a
// plain value so renderers never reach into session state.
type Snapshot struct {
	SessionID             string
	Screen                string
	PromptTitle           string
	Prompt                string
	Response              string
	SecondsRemaining      int
	RemainingDisplay      string
	TotalSeconds          int
	Running               bool
	Locked                bool
	EndReason             string
	FinalSecondsRemaining int
	HasFinal              bool
	TimeUsedSeconds       int
	TimeUsedDisplay       string
	Words                 int
	Characters            int
	SoftTarget            int
	HardCap               int
	OverTarget            bool
	Advisory              string
	CaptureActive         bool
	PreviewVisible        bool
}

type CopyOutput struct {
	Copied     bool
	Status     string
	ClearAfter time.Duration
}

// Metrics describes a piece of text against the session word limits.
type Metrics struct {
	Words        int
	Characters   int
	SoftTarget   int
	HardCap      int
	OverTarget   bool
	Clamped      bool
	ClampedWords int
}
