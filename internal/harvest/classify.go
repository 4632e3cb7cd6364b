package harvest

import (
	"strconv"
	"strings"
)

// checkoutPhrase is the fixed sentinel preceding the checkout date in an
// item's text block, e.g. "Checked out on: Nov 10, 2025".
const checkoutPhrase = "checked out on"

// yearWindow bounds how far past the sentinel phrase the year scan looks.
const yearWindow = 64

// classifyYear scans an item's text block for the checkout year. It returns
// target or target-1 when one of them appears within yearWindow bytes of the
// sentinel phrase, and 0 when the phrase is absent or neither year is found.
func classifyYear(text string, target int) int {
	lower := strings.ToLower(text)
	i := strings.Index(lower, checkoutPhrase)
	if i < 0 {
		return 0
	}

	end := i + yearWindow
	if end > len(text) {
		end = len(text)
	}
	window := text[i:end]

	switch {
	case strings.Contains(window, strconv.Itoa(target)):
		return target
	case strings.Contains(window, strconv.Itoa(target-1)):
		return target - 1
	}
	return 0
}
