// Package logging sets up the process-wide zerolog logger.
package logging

import (
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

// DefaultFileName is the log file created inside the log directory.
const DefaultFileName = "popomomo.log"

// Options configures Setup.
type Options struct {
	Debug bool
	// Dir is the log directory. Empty disables the file writer.
	Dir      string
	FileName string
	// Console receives a copy of every entry. Defaults to os.Stderr.
	Console io.Writer

	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// DefaultOptions returns options for a rotating log file in dir.
func DefaultOptions(dir string) Options {
	return Options{
		Dir:        dir,
		FileName:   DefaultFileName,
		MaxSizeMB:  10,
		MaxBackups: 3,
		MaxAgeDays: 28,
		Compress:   true,
	}
}

// Setup builds the logger described by opts, installs it as log.Logger and
// returns it together with a closer for the log file.
func Setup(opts Options) (zerolog.Logger, io.Closer) {
	SetLevel(opts.Debug)

	console := opts.Console
	if console == nil {
		console = os.Stderr
	}

	var (
		writer io.Writer = console
		closer io.Closer = nopCloser{}
	)
	if opts.Dir != "" {
		name := opts.FileName
		if name == "" {
			name = DefaultFileName
		}
		file := &lumberjack.Logger{
			Filename:   filepath.Join(opts.Dir, name),
			MaxSize:    opts.MaxSizeMB,
			MaxBackups: opts.MaxBackups,
			MaxAge:     opts.MaxAgeDays,
			Compress:   opts.Compress,
		}
		writer = zerolog.MultiLevelWriter(console, file)
		closer = file
	}

	logger := zerolog.New(writer).With().
		Timestamp().
		Str("run", uuid.NewString()).
		Logger()
	log.Logger = logger
	return logger, closer
}

// SetLevel switches the global level between info and debug.
func SetLevel(debug bool) {
	if debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
		return
	}
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
