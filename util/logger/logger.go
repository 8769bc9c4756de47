// Package logger configures the op/go-logging backends used by the bagr
// command-line tool and by tests.
package logger

import (
	"io/ioutil"
	"os"

	"github.com/op/go-logging"
)

// InitLogger routes log output to stderr at a level derived from the
// CLI flags: WARNING by default, INFO with verbose, nothing with quiet.
func InitLogger(quiet, verbose bool) *logging.Logger {
	log := logging.MustGetLogger("bagit")

	format := logging.MustStringFormatter("%{level}: %{message}")
	backend := logging.NewLogBackend(os.Stderr, "", 0)
	leveled := logging.AddModuleLevel(logging.NewBackendFormatter(backend, format))

	level := logging.WARNING
	if verbose {
		level = logging.INFO
	}
	if quiet {
		level = logging.CRITICAL
	}
	leveled.SetLevel(level, "")
	logging.SetBackend(leveled)

	return log
}

// DiscardLogger silences all log output. Suitable for use in testing.
func DiscardLogger() *logging.Logger {
	log := logging.MustGetLogger("bagit")
	devnull := logging.NewLogBackend(ioutil.Discard, "", 0)
	logging.SetBackend(devnull)
	return log
}
