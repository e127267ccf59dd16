// Package chatlog appends per-session conversation transcripts to disk,
// separate from the system log.
package chatlog

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Logger writes user and assistant turns to a timestamped transcript file.
// A nil *Logger is valid and discards everything, so callers can keep the
// transcript optional without branching.
type Logger struct {
	mu   sync.Mutex
	file *os.File
}

// New creates the transcript directory if needed and opens a new session
// transcript named after the current time.
func New(dir string) (*Logger, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	name := time.Now().Format("20060102_1504_05.000") + "_chat.txt"
	f, err := os.OpenFile(filepath.Join(dir, name), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, err
	}
	return &Logger{file: f}, nil
}

// LogUser records a user turn.
func (l *Logger) LogUser(message string) { l.write("USER", message) }

// LogAssistant records an assistant turn.
func (l *Logger) LogAssistant(message string) { l.write("ASSISTANT", message) }

func (l *Logger) write(role, message string) {
	if l == nil || message == "" {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	ts := time.Now().Format("2006-01-02 15:04:05.000")
	fmt.Fprintf(l.file, "\n[%s] %s:\n%s\n", ts, role, message)
}

// Close releases the transcript file.
func (l *Logger) Close() error {
	if l == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.file.Close()
}
