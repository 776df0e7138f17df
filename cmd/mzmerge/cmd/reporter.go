package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

// consoleReporter prints progress to stdout and warnings to stderr
type consoleReporter struct {
	out   io.Writer
	err   io.Writer
	quiet bool
}

func newReporter(cmd *cobra.Command) *consoleReporter {
	return &consoleReporter{
		out:   cmd.OutOrStdout(),
		err:   cmd.ErrOrStderr(),
		quiet: quiet,
	}
}

func (r *consoleReporter) Info(format string, args ...interface{}) {
	if r.quiet {
		return
	}
	fmt.Fprintf(r.out, format+"\n", args...)
}

func (r *consoleReporter) Warn(format string, args ...interface{}) {
	fmt.Fprintf(r.err, "Warning: "+format+"\n", args...)
}

func (r *consoleReporter) Success(format string, args ...interface{}) {
	if r.quiet {
		return
	}
	fmt.Fprintf(r.out, format+"\n", args...)
}
