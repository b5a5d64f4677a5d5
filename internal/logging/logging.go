// Package logging writes structured log entries as one JSON object per line.
package logging

import (
	"encoding/json"
	"io"
	"log"
	"os"
	"sync"
	"time"
)

// Logger writes JSON log lines with a timestamp in a fixed location.
// It is safe for concurrent use.
type Logger struct {
	mu  sync.Mutex
	w   io.Writer
	loc *time.Location
}

// New returns a Logger writing to w. A nil loc means UTC.
func New(w io.Writer, loc *time.Location) *Logger {
	if loc == nil {
		loc = time.UTC
	}
	return &Logger{w: w, loc: loc}
}

// Default returns a Logger writing to stdout in UTC.
func Default() *Logger {
	return New(os.Stdout, time.UTC)
}

// Location returns the location used for timestamps.
func (l *Logger) Location() *time.Location {
	return l.loc
}

// Log writes data as a single line, adding "ts" and, when missing, "level".
// The level is "error" when status is "error" and "info" otherwise.
// data is modified in place.
func (l *Logger) Log(data map[string]any) {
	data["ts"] = time.Now().In(l.loc).Format(time.RFC3339Nano)
	if _, ok := data["level"]; !ok {
		if data["status"] == "error" {
			data["level"] = "error"
		} else {
			data["level"] = "info"
		}
	}

	b, err := json.Marshal(data)
	if err != nil {
		log.Printf("failed to marshal log entry: %v", err)
		return
	}
	b = append(b, '\n')

	l.mu.Lock()
	defer l.mu.Unlock()
	_, _ = l.w.Write(b)
}

// Info logs msg at info level with optional fields.
func (l *Logger) Info(msg string, fields map[string]any) {
	l.Log(entry("info", msg, fields))
}

// Error logs msg at error level, recording err under "error".
func (l *Logger) Error(msg string, err error, fields map[string]any) {
	e := entry("error", msg, fields)
	if err != nil {
		e["error"] = err.Error()
	}
	l.Log(e)
}

func entry(level, msg string, fields map[string]any) map[string]any {
	e := make(map[string]any, len(fields)+3)
	for k, v := range fields {
		e[k] = v
	}
	e["level"] = level
	e["msg"] = msg
	return e
}
