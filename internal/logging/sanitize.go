// MapAdmin - Map Configuration Backend and Live Admin Presence
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mapadmin

package logging

import (
	"fmt"
	"strings"
)

// maxLoggedValueLen bounds client-supplied strings written into log fields.
const maxLoggedValueLen = 256

// SanitizeValue escapes control characters (0x00-0x1F, 0x7F) and truncates
// s so client-supplied text cannot forge or flood log lines.
func SanitizeValue(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	n := 0
	for _, r := range s {
		if n >= maxLoggedValueLen {
			b.WriteString("...")
			break
		}
		if r < 0x20 || r == 0x7F {
			fmt.Fprintf(&b, "\\x%02x", r)
		} else {
			b.WriteRune(r)
		}
		n++
	}
	return b.String()
}
