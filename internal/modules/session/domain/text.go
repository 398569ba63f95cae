package domain

import (
	"fmt"
	"math"
	"strings"
	"unicode"
	"unicode/utf8"
)

// CountWords counts maximal runs of non-whitespace characters.
func CountWords(text string) int {
	return len(strings.Fields(text))
}

// CountCharacters counts runes, so multi-byte input is not over-reported.
func CountCharacters(text string) int {
	return utf8.RuneCountInString(text)
}

// ClampToMaxWords cuts text right after its maxWords-th word. Leading
// whitespace and interior formatting before the cut are preserved.
func ClampToMaxWords(text string, maxWords int) string {
	if strings.TrimSpace(text) == "" || maxWords <= 0 {
		return text
	}
	seen := 0
	inWord := false
	for i, r := range text {
		if unicode.IsSpace(r) {
			if inWord {
				seen++
				if seen == maxWords {
					return text[:i]
				}
			}
			inWord = false
			continue
		}
		inWord = true
	}
	return text
}

// FormatTimeMMSS renders seconds as MM:SS. Minutes are not capped at 59.
func FormatTimeMMSS(totalSeconds float64) string {
	if math.IsNaN(totalSeconds) || totalSeconds < 0 {
		totalSeconds = 0
	}
	safe := int64(math.Floor(totalSeconds))
	return fmt.Sprintf("%02d:%02d", safe/60, safe%60)
}

// TimeUsed is the number of seconds spent out of total, never negative.
func TimeUsed(totalSeconds, finalRemaining int) int {
	used := totalSeconds - finalRemaining
	if used < 0 {
		return 0
	}
	return used
}
