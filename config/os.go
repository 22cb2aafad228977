package config

import (
	"os"
	"strings"
	"unicode"
)

// UnnamedFile replaces file names which are empty after cleaning.
const UnnamedFile = "unnamed"

// CleanFileName drops characters which could not be part of a file name or
// would move it out of the output directory.
func CleanFileName(in string) string {
	forbidden := forbiddenNameChars + string(os.PathSeparator) + string(os.PathListSeparator)
	out := strings.Map(func(sym rune) rune {
		if unicode.IsControl(sym) || strings.ContainsRune(forbidden, sym) {
			return -1
		}
		return sym
	}, in)
	out = strings.TrimLeft(strings.TrimSpace(out), ".")
	out = strings.TrimRight(out, trailingNameChars)
	if out == "" {
		return UnnamedFile
	}
	return out
}

// EnableColorOutput reports whether stream could show colors, preparing
// console for it when necessary. NO_COLOR convention is honored.
func EnableColorOutput(stream *os.File) bool {
	if v, ok := os.LookupEnv("NO_COLOR"); ok && v != "" {
		return false
	}
	return enableTerminalColors(stream)
}
