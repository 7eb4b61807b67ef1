//go:build !windows

package config

import (
	"os"
	"strings"

	"golang.org/x/term"
)

// SafeFileName drops path and list separators from name, so results of
// processing archive entries could be written next to each other.
func SafeFileName(in string) string {
	out := strings.TrimLeft(strings.Map(func(sym rune) rune {
		if sym == os.PathSeparator || sym == os.PathListSeparator {
			return -1
		}
		return sym
	}, in), ".")
	if out == "" {
		return "_bad_file_name_"
	}
	return out
}

// EnableColorOutput reports if stream is a terminal.
func EnableColorOutput(stream *os.File) bool {
	return term.IsTerminal(int(stream.Fd()))
}
