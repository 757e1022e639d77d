package uploads

import "strings"

// illegal characters stripped from filename segments, plus control characters.
const illegalFilenameChars = "?[]/\\={}<>:;,'\"&$#*()|~`!@%+" + "\x00"

// SanitizeFilename normalizes a single path segment into a safe filename:
// illegal characters are stripped, whitespace runs collapse to a single
// hyphen, and leading/trailing dots and hyphens are trimmed. A segment of
// only dots (".", "..") therefore sanitizes to the empty string and can never
// survive as a traversal component.
func SanitizeFilename(segment string) string {
	var b strings.Builder
	b.Grow(len(segment))

	pendingSeparator := false
	for _, r := range segment {
		switch {
		case r == ' ' || r == '\t' || r == '\n' || r == '\r':
			pendingSeparator = b.Len() > 0
		case r < 0x20 || strings.ContainsRune(illegalFilenameChars, r):
			// dropped
		default:
			if pendingSeparator {
				b.WriteByte('-')
				pendingSeparator = false
			}
			b.WriteRune(r)
		}
	}

	return strings.Trim(b.String(), ".-")
}

// SanitizePath normalizes a relative file path by sanitizing every segment
// independently and dropping segments that sanitize to nothing. It never
// fails: the result is always a best-effort safe relative path, and the empty
// string means the private root itself. Joined under the private root, the
// result cannot escape it.
func SanitizePath(relativePath string) string {
	segments := strings.Split(relativePath, "/")

	kept := make([]string, 0, len(segments))
	for _, segment := range segments {
		if s := SanitizeFilename(segment); s != "" {
			kept = append(kept, s)
		}
	}

	return strings.Join(kept, "/")
}
