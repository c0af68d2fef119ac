// Package diagnostic provides the structured logger used by LinkIQ's
// command-line tool.
package diagnostic

import (
	"os"

	"github.com/charmbracelet/log"
)

// Logger is a structured logger, keyed by fields rather than formatted
// strings.
type Logger = log.Logger

// New returns a Logger that writes to stderr with the given name as its
// prefix, e.g. "controller" or "linkiqctl".
func New(name string) *Logger {
	l := log.NewWithOptions(os.Stderr, log.Options{
		Prefix:          name,
		ReportTimestamp: true,
	})
	return l
}
