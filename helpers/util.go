package helpers

import (
	"strings"
)

// CleanCell collapses whitespace inside an extracted table cell
func CleanCell(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
