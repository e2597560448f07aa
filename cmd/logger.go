package cmd

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// initLogger builds the zerolog.Logger every subcommand logs through:
// human-readable console output, plus a rotated file under
// logs.Directory when one is configured.
func initLogger(logs LogConfig) zerolog.Logger {
	console := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}

	var out io.Writer = console
	if logs.Directory != "" {
		if err := os.MkdirAll(logs.Directory, 0o755); err == nil {
			rotator := &lumberjack.Logger{
				Filename:   filepath.Join(logs.Directory, "spacepacket.log"),
				MaxSize:    logs.MaxSizeMB,
				MaxAge:     logs.MaxAgeDays,
				MaxBackups: logs.MaxBackups,
				Compress:   logs.Compress,
			}
			out = io.MultiWriter(console, rotator)
		}
	}

	level := zerolog.InfoLevel
	if Verbose {
		level = zerolog.DebugLevel
	}
	return zerolog.New(out).Level(level).With().Timestamp().Str("app", "spacepacket").Logger()
}
