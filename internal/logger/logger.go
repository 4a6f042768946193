// Package logger is the application's leveled logger.  It writes to
// stderr through go-logging and is safe to use before Init is called, in
// which case everything at INFO and above is printed.
package logger

import (
	"io"
	"os"
	"strings"

	"github.com/op/go-logging"
)

const (
	module     = "swapi-mirror"
	timeFormat = "2006/01/02 15:04:05"
)

var log = logging.MustGetLogger(module)

func init() {
	Init("info", os.Stderr)
}

// Init installs a single backend writing to w at the named level
// (debug, info, notice, warning, error).  Unknown names mean info.
func Init(level string, w io.Writer) {
	backend := logging.NewLogBackend(w, "", 0)
	formatted := logging.NewBackendFormatter(backend, logging.MustStringFormatter(
		`%{time:`+timeFormat+`} %{level:.4s} - %{message}`,
	))
	leveled := logging.AddModuleLevel(formatted)
	leveled.SetLevel(ParseLevel(level), module)
	log.SetBackend(leveled)
}

// ParseLevel maps a level name to a go-logging level.
func ParseLevel(name string) logging.Level {
	lvl, err := logging.LogLevel(strings.ToUpper(strings.TrimSpace(name)))
	if err != nil {
		return logging.INFO
	}
	return lvl
}

func Debugf(format string, args ...any)   { log.Debugf(format, args...) }
func Infof(format string, args ...any)    { log.Infof(format, args...) }
func Noticef(format string, args ...any)  { log.Noticef(format, args...) }
func Warningf(format string, args ...any) { log.Warningf(format, args...) }
func Errorf(format string, args ...any)   { log.Errorf(format, args...) }
