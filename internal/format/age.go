// Package format provides shared text formatting utilities for terminal output.
package format

import (
	"fmt"
	"time"
)

// Age formats a duration as a human-readable age string.
// Uses compact format: "now", "5m", "2h", "3d", "2w", "3mo".
func Age(d time.Duration) string {
	if d < time.Minute {
		return "now"
	}
	if d < time.Hour {
		return fmt.Sprintf("%dm", int(d.Minutes()))
	}
	if d < 24*time.Hour {
		return fmt.Sprintf("%dh", int(d.Hours()))
	}
	days := int(d.Hours() / 24)
	if days < 7 {
		return fmt.Sprintf("%dd", days)
	}
	if days < 30 {
		return fmt.Sprintf("%dw", days/7)
	}
	return fmt.Sprintf("%dmo", days/30)
}
