package common

import (
	"fmt"
	"time"
)

// TruncateName shortens a player name to maxLen runes.
func TruncateName(name string, maxLen int) string {
	runes := []rune(name)
	if len(runes) > maxLen {
		return string(runes[:maxLen-1]) + "…"
	}
	return name
}

// FormatCountdown renders a remaining duration as "m:ss", rounding up so a
// running countdown never shows 0:00 early.
func FormatCountdown(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	secs := int((d + time.Second - 1) / time.Second)
	return fmt.Sprintf("%d:%02d", secs/60, secs%60)
}
