//go:build windows

package output

import (
	"os"

	"golang.org/x/term"
)

func systemTerminalWidth() (int, bool) {
	for _, f := range []*os.File{os.Stdout, os.Stderr} {
		if width, _, err := term.GetSize(int(f.Fd())); err == nil && width > 0 {
			return width, true
		}
	}

	return 0, false
}
