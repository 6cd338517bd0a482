package record

import (
	"unicode/utf16"
)

// EncodeUTF16 writes s into dst as UTF-16, at most len(dst)-1 units followed
// by a zero unit; the rest of dst is cleared. A zero-capacity dst is left
// untouched. It returns the number of units written before the terminator.
//
// Truncation is per code unit, so a surrogate pair may be cut in half.
func EncodeUTF16(dst []uint16, s string) int {
	if len(dst) == 0 {
		return 0
	}
	var pair [2]uint16
	n, limit := 0, len(dst)-1
runes:
	for _, r := range s {
		for _, u := range utf16.AppendRune(pair[:0], r) {
			if n == limit {
				break runes
			}
			dst[n] = u
			n++
		}
	}
	clear(dst[n:])
	return n
}

// DecodeUTF16 reads units up to the first zero, or the end of src, and
// decodes them. Invalid sequences decode to U+FFFD.
func DecodeUTF16(src []uint16) string {
	end := len(src)
	for i, u := range src {
		if u == 0 {
			end = i
			break
		}
	}
	return string(utf16.Decode(src[:end]))
}
