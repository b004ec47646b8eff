// Package logging provides the Logger implementations used by the host.
package logging

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/andrescamacho/idlecolony-go/internal/application/common"
	"github.com/andrescamacho/idlecolony-go/internal/infrastructure/config"
)

var levelRank = map[string]int{
	common.LevelDebug: 0,
	common.LevelInfo:  1,
	common.LevelWarn:  2,
	common.LevelError: 3,
}

// configLevels maps LoggingConfig levels onto Logger levels
var configLevels = map[string]string{
	"debug": common.LevelDebug,
	"info":  common.LevelInfo,
	"warn":  common.LevelWarn,
	"error": common.LevelError,
}

// StdLogger writes level-filtered lines through the standard library logger
type StdLogger struct {
	out       *log.Logger
	closer    io.Closer
	component string
	minRank   int
	json      bool
	now       func() time.Time
}

// NewStdLogger builds a logger from config. Close releases the log file when
// output is "file".
func NewStdLogger(cfg config.LoggingConfig, component string) (*StdLogger, error) {
	var (
		w      io.Writer
		closer io.Closer
	)
	switch cfg.Output {
	case "", "stdout":
		w = os.Stdout
	case "stderr":
		w = os.Stderr
	case "file":
		f, err := os.OpenFile(cfg.FilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		w, closer = f, f
	default:
		return nil, fmt.Errorf("unsupported log output: %s", cfg.Output)
	}

	l := NewWriterLogger(w, cfg.Level, cfg.Format, component)
	l.closer = closer
	return l, nil
}

// NewWriterLogger builds a logger on an arbitrary writer
func NewWriterLogger(w io.Writer, level, format, component string) *StdLogger {
	minLevel, ok := configLevels[strings.ToLower(level)]
	if !ok {
		minLevel = common.LevelInfo
	}
	return &StdLogger{
		out:       log.New(w, "", 0),
		component: component,
		minRank:   levelRank[minLevel],
		json:      format == "json",
		now:       time.Now,
	}
}

// Log implements common.Logger
func (l *StdLogger) Log(level, message string, metadata map[string]interface{}) {
	rank, ok := levelRank[level]
	if !ok {
		rank = levelRank[common.LevelInfo]
	}
	if rank < l.minRank {
		return
	}

	ts := l.now().UTC().Format(time.RFC3339)
	if l.json {
		line := map[string]interface{}{
			"time":      ts,
			"level":     level,
			"component": l.component,
			"message":   message,
		}
		if len(metadata) > 0 {
			line["metadata"] = metadata
		}
		data, err := json.Marshal(line)
		if err != nil {
			l.out.Printf("[%s] [%s] %s: %s (unencodable metadata: %v)", ts, l.component, level, message, err)
			return
		}
		l.out.Print(string(data))
		return
	}

	l.out.Printf("[%s] [%s] %s: %s%s", ts, l.component, level, message, formatMetadata(metadata))
}

// Close releases the log file, if any
func (l *StdLogger) Close() error {
	if l.closer == nil {
		return nil
	}
	return l.closer.Close()
}

func formatMetadata(metadata map[string]interface{}) string {
	if len(metadata) == 0 {
		return ""
	}
	keys := make([]string, 0, len(metadata))
	for k := range metadata {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&b, " %s=%v", k, metadata[k])
	}
	return b.String()
}
