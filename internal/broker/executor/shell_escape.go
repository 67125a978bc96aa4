package executor

import "strings"

// ShellEscape escapes a string for safe use as a single shell argument.
// Returns a properly quoted string that can be embedded in a command line.
func ShellEscape(s string) string {
	if s == "" {
		return "''"
	}

	needsQuoting := false
	for _, r := range s {
		if !isSafeChar(r) {
			needsQuoting = true
			break
		}
	}
	if !needsQuoting {
		return s
	}

	// Replace ' with '\'' (end quote, escaped quote, start quote)
	escaped := strings.ReplaceAll(s, "'", `'\''`)
	return "'" + escaped + "'"
}

// isSafeChar checks if a character is safe to use in shell without quoting
func isSafeChar(r rune) bool {
	return (r >= 'a' && r <= 'z') ||
		(r >= 'A' && r <= 'Z') ||
		(r >= '0' && r <= '9') ||
		r == '-' || r == '_' || r == '.' || r == '/' || r == ':' || r == '@'
}
