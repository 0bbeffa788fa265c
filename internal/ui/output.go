// Package ui provides formatted terminal output for user-facing messages.
package ui

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

var (
	// Color/style functions
	Bold   = color.New(color.Bold).SprintFunc()
	Yellow = color.New(color.FgYellow).SprintFunc()
	Red    = color.New(color.FgRed).SprintFunc()
	Cyan   = color.New(color.FgCyan).SprintFunc()

	// Output destination; messages go to stderr so they never mix with
	// relayed container output on stdout.
	Out io.Writer = os.Stderr
)

func init() {
	if !isatty.IsTerminal(os.Stderr.Fd()) && !isatty.IsCygwinTerminal(os.Stderr.Fd()) {
		color.NoColor = true
	}
}

// Info prints an informational message.
func Info(format string, args ...interface{}) {
	fmt.Fprintf(Out, "%s %s\n", Cyan("→"), fmt.Sprintf(format, args...))
}

// Warn prints a warning message.
func Warn(format string, args ...interface{}) {
	fmt.Fprintf(Out, "%s %s\n", Yellow("warning:"), fmt.Sprintf(format, args...))
}

// Fail prints an error message.
func Fail(format string, args ...interface{}) {
	fmt.Fprintf(Out, "%s %s\n", Red("error:"), fmt.Sprintf(format, args...))
}
