// internal/logging/logging.go
// Package logging routes the diagnostic trace to stdout and an optional log file.
package logging

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/mwiater/evalboard/internal/util"
)

// maxPayloadRunes bounds how much of a request or response body is traced.
const maxPayloadRunes = 4096

var (
	mu      sync.Mutex
	logFile *os.File
	debug   bool
)

// Init sends log output to stdout and, when logPath is set, to that file.
func Init(logPath string) error {
	return initWriters(logPath, true)
}

// InitFileOnly sends log output only to logPath (or nowhere when empty). It is
// used by the terminal dashboard, which owns stdout.
func InitFileOnly(logPath string) error {
	return initWriters(logPath, false)
}

func initWriters(logPath string, console bool) error {
	mu.Lock()
	defer mu.Unlock()

	if logFile != nil {
		_ = logFile.Close()
		logFile = nil
	}

	var writers []io.Writer
	if console {
		writers = append(writers, os.Stdout)
	}

	if logPath != "" {
		if dir := filepath.Dir(logPath); dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return err
			}
		}
		file, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return err
		}
		logFile = file
		writers = append(writers, logFile)
	}

	if len(writers) == 0 {
		log.SetOutput(io.Discard)
		return nil
	}
	log.SetOutput(io.MultiWriter(writers...))
	return nil
}

// Close releases the log file, if one is open.
func Close() error {
	mu.Lock()
	defer mu.Unlock()
	if logFile == nil {
		return nil
	}
	log.SetOutput(os.Stderr)
	err := logFile.Close()
	logFile = nil
	return err
}

// SetDebug toggles LogDebug output.
func SetDebug(enabled bool) {
	mu.Lock()
	debug = enabled
	mu.Unlock()
}

func debugEnabled() bool {
	mu.Lock()
	defer mu.Unlock()
	return debug
}

// LogEvent writes one trace line.
func LogEvent(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	log.Println(msg)
}

// LogDebug writes a trace line only when debug logging is enabled.
func LogDebug(format string, args ...any) {
	if !debugEnabled() {
		return
	}
	log.Println("[DEBUG] " + fmt.Sprintf(format, args...))
}

// LogRequest traces one backend exchange.
func LogRequest(direction, host, model, path string, payload any) {
	msg := buildRequestMessage(direction, host, model, path, payload)
	log.Println(msg)
}

func buildRequestMessage(direction, host, model, path string, payload any) string {
	dir := strings.TrimSpace(direction)
	if dir != "" {
		dir = strings.ToUpper(dir)
	}
	hostValue := strings.TrimSpace(host)
	if hostValue == "" {
		hostValue = "unknown"
	}
	modelValue := strings.TrimSpace(model)
	if modelValue == "" {
		modelValue = "unknown"
	}
	parts := []string{fmt.Sprintf("[%s]", dir)}
	parts = append(parts, fmt.Sprintf("host=%s", hostValue))
	parts = append(parts, fmt.Sprintf("model=%s", modelValue))
	if path = strings.TrimSpace(path); path != "" {
		parts = append(parts, fmt.Sprintf("path=%s", path))
	}
	parts = append(parts, fmt.Sprintf("payload=%s", util.TruncateRunes(formatPayload(payload), maxPayloadRunes)))
	return strings.Join(parts, " ")
}

func formatPayload(payload any) string {
	switch v := payload.(type) {
	case nil:
		return "null"
	case string:
		if strings.TrimSpace(v) == "" {
			return `""`
		}
		return v
	case []byte:
		if len(v) == 0 {
			return "[]"
		}
		return string(v)
	case fmt.Stringer:
		return v.String()
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(data)
	}
}
