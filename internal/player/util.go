package player

import "strings"

// ParseArgs splits a string of command-line arguments on spaces.  Single or double quotes group
// words, and a quote of the other kind inside them is kept literally.
func ParseArgs(argsString string) []string {
	var args []string
	var current strings.Builder
	var quote rune
	hasArg := false

	for _, r := range argsString {
		switch {
		case quote != 0 && r == quote:
			quote = 0
		case quote == 0 && (r == '"' || r == '\''):
			quote = r
			hasArg = true
		case quote == 0 && (r == ' ' || r == '\t'):
			if hasArg {
				args = append(args, current.String())
				current.Reset()
				hasArg = false
			}
		default:
			current.WriteRune(r)
			hasArg = true
		}
	}

	if hasArg {
		args = append(args, current.String())
	}
	return args
}
