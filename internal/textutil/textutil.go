package textutil

import (
	"crypto/sha256"
	"encoding/hex"
	"unicode/utf16"
	"unicode/utf8"
)

// IsIdeograph reports whether r lies in the CJK unified ideograph block
// U+4E00..U+9FA5 used for span detection.
func IsIdeograph(r rune) bool {
	return r >= 0x4E00 && r <= 0x9FA5
}

// ContainsChinese checks if a string contains at least one CJK ideograph.
func ContainsChinese(s string) bool {
	for _, r := range s {
		if IsIdeograph(r) {
			return true
		}
	}
	return false
}

// UTF16Len returns the length of s in UTF-16 code units, the unit editors
// use for column positions.
func UTF16Len(s string) int {
	n := 0
	for len(s) > 0 {
		r, size := utf8.DecodeRuneInString(s)
		s = s[size:]
		if r == utf8.RuneError && size == 1 {
			n++
			continue
		}
		n += utf16.RuneLen(r)
	}
	return n
}

// ByteOffset converts a UTF-16 column into a byte offset within s.
// It returns -1 if the column falls past the end of s or inside a
// surrogate pair.
func ByteOffset(s string, column int) int {
	if column < 0 {
		return -1
	}
	units := 0
	for i, r := range s {
		if units == column {
			return i
		}
		if units > column {
			return -1
		}
		n := utf16.RuneLen(r)
		if n < 0 {
			n = 1
		}
		units += n
	}
	if units == column {
		return len(s)
	}
	return -1
}

// Hash computes a SHA-256 hex hash of a string for deduplication.
func Hash(s string) string {
	h := sha256.Sum256([]byte(s))
	return hex.EncodeToString(h[:])
}

// Truncate shortens a string to maxLen runes, appending "..." if truncated.
func Truncate(s string, maxLen int) string {
	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	runes := []rune(s)
	return string(runes[:maxLen]) + "..."
}
