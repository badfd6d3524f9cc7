package ui

import (
	"io"

	"github.com/sirupsen/logrus"
)

// NewLogger returns the diagnostic logger shared by the components of one
// invocation. Debug output (every external command, container lifecycle
// step) is only shown with verbose.
func NewLogger(verbose bool, w io.Writer) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(w)
	log.SetFormatter(&logrus.TextFormatter{
		DisableTimestamp:       true,
		DisableLevelTruncation: true,
		PadLevelText:           true,
	})
	if verbose {
		log.SetLevel(logrus.DebugLevel)
	} else {
		log.SetLevel(logrus.InfoLevel)
	}
	return log
}

// DiscardLogger returns a logger that drops everything. Used by tests.
func DiscardLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}
