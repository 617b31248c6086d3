package logger

import (
	"os"

	"github.com/pterm/pterm"
)

// InitPterm writes all diagnostic output to stderr so stdout only carries
// report data (tables, JSON, CSV).
func InitPterm() {
	pterm.Info.Writer = os.Stderr
	pterm.Success.Writer = os.Stderr
	pterm.Warning.Writer = os.Stderr
	pterm.Error.Writer = os.Stderr
	pterm.Debug.Writer = os.Stderr

	// Tables are rendered with Srender and printed by the output package.
}
