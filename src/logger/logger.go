// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package logger

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"sync"
)

// Logger defines the interface for logging operations.
//
// Printf and Println report normal progress. Warnf reports recoverable
// defects, such as a native handle that failed to release, which must not
// abort the operation in progress.
type Logger interface {
	// Printf formats and prints a log message.
	Printf(format string, v ...any)
	// Println prints a log message with a newline.
	Println(v ...any)
	// Warnf formats and prints a warning.
	Warnf(format string, v ...any)
	// SetOutput sets the output destination for the logger.
	SetOutput(w io.Writer)
}

// CLILogger implements Logger using the standard log package.
// It's designed for command-line interface output with human-readable formatting.
type CLILogger struct{ logger *log.Logger }

// NewCLILogger creates a new CLI logger with timestamps disabled.
func NewCLILogger() *CLILogger {
	return &CLILogger{logger: log.New(os.Stdout, "", 0)}
}

// Printf formats and prints a log message using fmt.Printf semantics.
func (c *CLILogger) Printf(format string, v ...any) { c.logger.Printf(format, v...) }

// Println prints a log message with a newline.
func (c *CLILogger) Println(v ...any) { c.logger.Println(v...) }

// Warnf prints a warning prefixed with "warning: ".
func (c *CLILogger) Warnf(format string, v ...any) {
	c.logger.Printf("warning: "+format, v...)
}

// SetOutput sets the output destination for the CLI logger.
func (c *CLILogger) SetOutput(w io.Writer) { c.logger.SetOutput(w) }

// Log levels emitted by JSONLogger.
const (
	LevelInfo = "info"
	LevelWarn = "warn"
)

// JSONLogger implements Logger by writing one JSON object per line.
//
// It is silent by default when used by the MCP server, since stdout carries
// the protocol there, but can be pointed at stderr or a file.
//
// JSONLogger is safe for concurrent use by multiple goroutines.
type JSONLogger struct {
	mu     sync.Mutex
	writer io.Writer
	silent bool
}

// NewJSONLogger creates a JSON lines logger. A nil writer discards output.
func NewJSONLogger(writer io.Writer, silent bool) *JSONLogger {
	if writer == nil {
		writer = io.Discard
	}
	return &JSONLogger{
		writer: writer,
		silent: silent,
	}
}

// NewNopLogger returns a logger that drops everything.
func NewNopLogger() *JSONLogger { return NewJSONLogger(nil, true) }

// Printf logs a formatted message at info level.
func (j *JSONLogger) Printf(format string, v ...any) {
	j.write(LevelInfo, fmt.Sprintf(format, v...))
}

// Println logs a message at info level.
func (j *JSONLogger) Println(v ...any) {
	j.write(LevelInfo, fmt.Sprint(v...))
}

// Warnf logs a formatted message at warn level.
func (j *JSONLogger) Warnf(format string, v ...any) {
	j.write(LevelWarn, fmt.Sprintf(format, v...))
}

// SetOutput sets the output destination. A nil writer discards output.
func (j *JSONLogger) SetOutput(w io.Writer) {
	j.mu.Lock()
	defer j.mu.Unlock()

	if w == nil {
		j.writer = io.Discard
	} else {
		j.writer = w
	}
}

func (j *JSONLogger) write(level, msg string) {
	if j.silent {
		return
	}

	data, _ := json.Marshal(map[string]any{
		"level":   level,
		"message": msg,
	})

	j.mu.Lock()
	fmt.Fprintln(j.writer, string(data))
	j.mu.Unlock()
}
