//go:build !windows

package config

import (
	"os"

	"golang.org/x/term"
)

const (
	forbiddenNameChars = ""
	trailingNameChars  = ""
)

func enableTerminalColors(stream *os.File) bool {
	return term.IsTerminal(int(stream.Fd()))
}
