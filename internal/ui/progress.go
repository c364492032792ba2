package ui

import (
	"fmt"
	"strings"
)

// barWidth is the number of cells in the progress bar.
const barWidth = 40

// renderProgress formats the progress pair. A zero total means the producer
// is still counting, so only the count is shown.
func renderProgress(current, total uint32) string {
	if total == 0 {
		return fmt.Sprintf("  %d directories scanned", current)
	}
	if current > total {
		current = total
	}
	filled := int(uint64(current) * barWidth / uint64(total))
	bar := strings.Repeat("#", filled) + strings.Repeat("-", barWidth-filled)
	return fmt.Sprintf("  [%s] %d/%d", bar, current, total)
}
