// Package logging configures zerolog for the roomchat binaries and provides
// component loggers that satisfy the roomchat.Logger interface.
package logging

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

type Config struct {
	Level     string // debug, info, warn, error
	LogToFile bool
	LogToJSON bool
	FilePath  string
	MaxSize   int // megabytes
	MaxAge    int // days
	Backups   int
	Compress  bool
}

func DefaultConfig() Config {
	return Config{
		Level:     "info",
		LogToFile: true,
		LogToJSON: true,
		FilePath:  "roomchat.log",
		MaxSize:   10,
		MaxAge:    30,
		Backups:   5,
		Compress:  true,
	}
}

// Init installs the global zerolog logger. A TUI binary should log to file
// only; writing to stdout would fight the renderer for the terminal.
func Init(cfg Config) {
	zerolog.TimeFieldFormat = time.RFC3339
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	var writers []io.Writer
	if !cfg.LogToFile || cfg.FilePath == "" {
		if cfg.LogToJSON {
			writers = append(writers, os.Stdout)
		} else {
			writers = append(writers, zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: "15:04:05"})
		}
	}
	if cfg.LogToFile && cfg.FilePath != "" {
		writers = append(writers, &lumberjack.Logger{
			Filename:   cfg.FilePath,
			MaxSize:    cfg.MaxSize,
			MaxAge:     cfg.MaxAge,
			MaxBackups: cfg.Backups,
			Compress:   cfg.Compress,
		})
	}
	var out io.Writer
	if len(writers) > 1 {
		out = io.MultiWriter(writers...)
	} else {
		out = writers[0]
	}
	log.Logger = zerolog.New(out).With().Timestamp().Logger()
}

// Logger is a component-scoped logger. It implements roomchat.Logger.
type Logger struct {
	zl zerolog.Logger
}

func New(component string) *Logger {
	return &Logger{zl: log.With().Str("component", component).Logger()}
}

func (l *Logger) Debug(msg string, fields map[string]any) { l.emit(l.zl.Debug(), msg, fields) }
func (l *Logger) Info(msg string, fields map[string]any)  { l.emit(l.zl.Info(), msg, fields) }
func (l *Logger) Warn(msg string, fields map[string]any)  { l.emit(l.zl.Warn(), msg, fields) }
func (l *Logger) Error(msg string, fields map[string]any) { l.emit(l.zl.Error(), msg, fields) }

func (l *Logger) emit(ev *zerolog.Event, msg string, fields map[string]any) {
	for k, v := range fields {
		ev = ev.Interface(k, v)
	}
	ev.Msg(msg)
}
