package domain

import "fmt"

const (
	DefaultSoftTarget = 300
	DefaultHardCap    = 350
)

// Policy holds the two word thresholds of a practice session. SoftTarget only
// drives display emphasis; HardCap is what the stored response may never exceed.
type Policy struct {
	SoftTarget int
	HardCap    int
}

func (p Policy) Validate() error {
	if p.SoftTarget <= 0 {
		return fmt.Errorf("soft target must be positive")
	}
	if p.HardCap <= p.SoftTarget {
		return fmt.Errorf("hard cap (%d) must be greater than soft target (%d)", p.HardCap, p.SoftTarget)
	}
	return nil
}

// Govern returns the text that should be stored for an edit.
func (p Policy) Govern(next string) string {
	if CountWords(next) <= p.HardCap {
		return next
	}
	return ClampToMaxWords(next, p.HardCap)
}

// OverTarget reports whether words passed the soft target.
func (p Policy) OverTarget(words int) bool {
	return words > p.SoftTarget
}
