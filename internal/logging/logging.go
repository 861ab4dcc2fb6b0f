package logging

import (
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/mikea/transactor/config"
)

const (
	EnvLogLevel     = "TRANSACTOR_LOG_LEVEL"
	EnvLogTimestamp = "TRANSACTOR_LOG_TIMESTAMP"
	EnvLogNoColor   = "TRANSACTOR_LOG_NOCOLOR"
)

type settings struct {
	level     zerolog.Level
	noColor   bool
	timestamp bool
}

// New builds a console logger from cfg, with environment overrides applied
// on top, and installs it as the global zerolog logger.
func New(app string, cfg config.LogConfig, out io.Writer) zerolog.Logger {
	s := settings{level: zerolog.InfoLevel, noColor: cfg.NoColor, timestamp: cfg.Timestamp}
	if lvl, ok := parseLevel(cfg.Level); ok {
		s.level = lvl
	}
	applyEnvOverrides(&s)

	output := zerolog.ConsoleWriter{
		Out:        out,
		NoColor:    s.noColor,
		TimeFormat: time.RFC3339,
	}
	if !s.timestamp {
		output.PartsExclude = []string{zerolog.TimestampFieldName}
	}
	logger := zerolog.New(output).Level(s.level).With().Timestamp().Str("app", app).Logger()
	log.Logger = logger
	return logger
}

func applyEnvOverrides(s *settings) {
	if lvl, ok := parseLevel(os.Getenv(EnvLogLevel)); ok {
		s.level = lvl
	}
	if v, ok := parseBool(os.Getenv(EnvLogTimestamp)); ok {
		s.timestamp = v
	}
	if v, ok := parseBool(os.Getenv(EnvLogNoColor)); ok {
		s.noColor = v
	}
}

func parseLevel(raw string) (zerolog.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "":
		return zerolog.InfoLevel, false
	case "trace":
		return zerolog.TraceLevel, true
	case "debug":
		return zerolog.DebugLevel, true
	case "info":
		return zerolog.InfoLevel, true
	case "warn", "warning":
		return zerolog.WarnLevel, true
	case "error":
		return zerolog.ErrorLevel, true
	case "disabled", "off", "none":
		return zerolog.Disabled, true
	default:
		return zerolog.InfoLevel, false
	}
}

func parseBool(raw string) (bool, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return false, false
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, false
	}
	return v, true
}
