// Package logging builds the CLI's logrus logger.
package logging

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"
)

// DefaultLevel is used when no level is configured.
const DefaultLevel = log.WarnLevel

// DebugEnv turns on debug logging when set to a true value, regardless of config.
const DebugEnv = "KANBAN_DEBUG"

// New returns a logger writing to w at the named level. An empty level means
// DefaultLevel. Timestamps are omitted so output is stable across runs.
func New(level string, w io.Writer) (*log.Logger, error) {
	lvl := DefaultLevel
	if strings.TrimSpace(level) != "" {
		parsed, err := log.ParseLevel(strings.TrimSpace(level))
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", level, err)
		}
		lvl = parsed
	}
	if dbg, err := strconv.ParseBool(os.Getenv(DebugEnv)); err == nil && dbg {
		lvl = log.DebugLevel
	}

	logger := log.New()
	logger.SetOutput(w)
	logger.SetLevel(lvl)
	logger.SetFormatter(&log.TextFormatter{
		DisableTimestamp: true,
		DisableColors:    true,
	})
	return logger, nil
}
