// Package logging builds the structured loggers shared by the server, the
// session runtime and the command line tools.
package logging

import (
	"io"
	"os"

	"github.com/inconshreveable/log15"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
)

// New returns a root logger writing to w. Terminals get the colored
// human format, everything else gets logfmt. debug lowers the level.
func New(w io.Writer, debug bool) log15.Logger {
	logger := log15.New()
	logger.SetHandler(Handler(w, debug))
	return logger
}

// Handler builds the level-filtered handler used by New
func Handler(w io.Writer, debug bool) log15.Handler {
	format := log15.LogfmtFormat()
	if f, ok := w.(*os.File); ok && isTerminal(f) {
		format = log15.TerminalFormat()
		w = colorable.NewColorable(f)
	}

	lvl := log15.LvlInfo
	if debug {
		lvl = log15.LvlDebug
	}
	return log15.LvlFilterHandler(lvl, log15.StreamHandler(w, format))
}

// Discard returns a logger that drops every record
func Discard() log15.Logger {
	logger := log15.New()
	logger.SetHandler(log15.DiscardHandler())
	return logger
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
