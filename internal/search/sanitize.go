// MapAdmin - Map Configuration Backend and Live Admin Presence
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mapadmin

package search

import (
	"fmt"
	"strings"
)

// deniedRunes are removed from every sanitized string.
const deniedRunes = "'\"`\\;|&^*()%$#@!~"

// SanitizeForSQL strips SQL metacharacters from v. Numbers are returned
// unchanged; everything else is formatted as a string first.
func SanitizeForSQL(v any) any {
	switch n := v.(type) {
	case int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return n
	case nil:
		return ""
	case string:
		return sanitizeString(n)
	default:
		return sanitizeString(fmt.Sprint(n))
	}
}

// SanitizeString is SanitizeForSQL for string inputs.
func SanitizeString(s string) string {
	return sanitizeString(s)
}

func sanitizeString(s string) string {
	s = strings.Map(func(r rune) rune {
		if strings.ContainsRune(deniedRunes, r) {
			return -1
		}
		return r
	}, s)
	// "/*" and "*/" are gone with '*'; only the dash comment remains.
	for strings.Contains(s, "--") {
		s = strings.ReplaceAll(s, "--", "")
	}
	return s
}

// isZero reports whether a sanitized value counts as missing.
func isZero(v any) bool {
	switch n := v.(type) {
	case string:
		return n == ""
	case int:
		return n == 0
	case int64:
		return n == 0
	case float64:
		return n == 0
	case float32:
		return n == 0
	case nil:
		return true
	default:
		return false
	}
}
