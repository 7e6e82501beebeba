// Package util provides common string helpers for command arguments.
package util

import "strings"

// TrimQuotes removes leading and trailing double quotes from a string.
func TrimQuotes(s string) string {
	return strings.Trim(s, `"`)
}

// FixEscapeQuotes replaces escaped double quotes ("") with single double quotes (").
func FixEscapeQuotes(s string) string {
	return strings.ReplaceAll(s, `""`, `"`)
}

// SplitArgs splits a command line on whitespace. Double-quoted runs are kept
// together with their quotes; a doubled quote inside them is a literal quote.
//
// Input format: set name "Foco ""norte"" sur"
// Output: [set, name, "Foco ""norte"" sur"]
func SplitArgs(line string) []string {
	var (
		args    []string
		cur     strings.Builder
		quoted  bool
		hasWord bool
	)

	runes := []rune(line)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		switch {
		case r == '"':
			if quoted && i+1 < len(runes) && runes[i+1] == '"' {
				cur.WriteString(`""`)
				i++
				continue
			}
			quoted = !quoted
			hasWord = true
			cur.WriteRune(r)
		case !quoted && (r == ' ' || r == '\t'):
			if hasWord {
				args = append(args, cur.String())
				cur.Reset()
				hasWord = false
			}
		default:
			hasWord = true
			cur.WriteRune(r)
		}
	}
	if hasWord {
		args = append(args, cur.String())
	}
	return args
}
