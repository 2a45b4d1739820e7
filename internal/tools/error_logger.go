package tools

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/sammcj/mcp-pdftools/internal/telemetry"
	"github.com/sirupsen/logrus"
)

const (
	// ToolErrorsEnv switches the tool error log on when set to "true".
	ToolErrorsEnv = "LOG_TOOL_ERRORS"

	// ToolErrorLogName is created next to the main log file.
	ToolErrorLogName = "tool-errors.log"

	// DefaultLogRetentionDays is the default number of days to retain error logs
	DefaultLogRetentionDays = 60
)

// ToolErrorLogEntry represents a logged tool error
type ToolErrorLogEntry struct {
	Timestamp   string         `json:"timestamp"`
	ToolName    string         `json:"tool_name"`
	OperationID string         `json:"operation_id,omitempty"`
	Arguments   map[string]any `json:"arguments,omitempty"`
	Error       string         `json:"error"`
	ErrorType   string         `json:"error_type"`
	Transport   string         `json:"transport,omitempty"`
}

// ToolErrorLogger appends failed tool calls as JSON lines
type ToolErrorLogger struct {
	enabled  bool
	logFile  *os.File
	logger   *logrus.Logger
	mu       sync.Mutex
	filePath string
	now      func() time.Time
}

// NewToolErrorLogger opens <logDir>/tool-errors.log when enabled, pruning entries older than
// the retention window in the background. A disabled logger accepts calls and writes nothing.
func NewToolErrorLogger(logger *logrus.Logger, logDir string, enabled bool) (*ToolErrorLogger, error) {
	l := &ToolErrorLogger{enabled: enabled, logger: logger, now: time.Now}
	if !enabled {
		return l, nil
	}

	if err := os.MkdirAll(logDir, 0700); err != nil {
		return &ToolErrorLogger{logger: logger}, fmt.Errorf("failed to create log directory: %w", err)
	}

	l.filePath = filepath.Join(logDir, ToolErrorLogName)
	logFile, err := os.OpenFile(l.filePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return &ToolErrorLogger{logger: logger}, fmt.Errorf("failed to open tool error log file: %w", err)
	}
	l.logFile = logFile

	go func() {
		if rotateErr := l.rotateOldLogs(); rotateErr != nil {
			logger.WithError(rotateErr).Warn("Failed to rotate old tool error logs")
		}
	}()

	logger.Infof("Tool error logging enabled: %s", l.filePath)
	return l, nil
}

// LogToolError logs a tool execution error with sanitised arguments
func (l *ToolErrorLogger) LogToolError(toolName string, args map[string]any, err error, transport string) {
	if l == nil || !l.enabled {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.logFile == nil {
		return
	}

	entry := ToolErrorLogEntry{
		Timestamp: l.now().Format(time.RFC3339),
		ToolName:  toolName,
		Arguments: telemetry.SanitiseArguments(args),
		Error:     err.Error(),
		ErrorType: telemetry.CategoriseToolError(err),
		Transport: transport,
	}

	jsonData, marshalErr := json.Marshal(entry)
	if marshalErr != nil {
		l.logger.WithError(marshalErr).Error("Failed to marshal tool error log entry")
		return
	}

	if _, writeErr := l.logFile.Write(append(jsonData, '\n')); writeErr != nil {
		l.logger.WithError(writeErr).Error("Failed to write tool error log entry")
		return
	}

	if syncErr := l.logFile.Sync(); syncErr != nil {
		l.logger.WithError(syncErr).Error("Failed to sync tool error log file")
	}
}

// Close closes the error logger and its log file
func (l *ToolErrorLogger) Close() error {
	if l == nil || !l.enabled {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.logFile == nil {
		return nil
	}
	err := l.logFile.Close()
	l.logFile = nil
	return err
}

// IsEnabled returns whether error logging is enabled
func (l *ToolErrorLogger) IsEnabled() bool {
	return l != nil && l.enabled
}

// GetLogFilePath returns the path to the error log file
func (l *ToolErrorLogger) GetLogFilePath() string {
	return l.filePath
}

// rotateOldLogs removes log entries older than the retention period.
// It holds the mutex throughout so LogToolError never writes to a closed file.
func (l *ToolErrorLogger) rotateOldLogs() error {
	if !l.enabled || l.filePath == "" {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.logFile != nil {
		if err := l.logFile.Close(); err != nil {
			return fmt.Errorf("failed to close log file for rotation: %w", err)
		}
		l.logFile = nil
	}

	file, err := os.Open(l.filePath)
	if err != nil {
		return l.reopenLogFileLocked()
	}

	var validEntries []string
	cutoffTime := l.now().AddDate(0, 0, -DefaultLogRetentionDays)

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var entry ToolErrorLogEntry
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			// malformed lines are kept
			validEntries = append(validEntries, line)
			continue
		}

		entryTime, err := time.Parse(time.RFC3339, entry.Timestamp)
		if err != nil {
			validEntries = append(validEntries, line)
			continue
		}

		if entryTime.After(cutoffTime) {
			validEntries = append(validEntries, line)
		}
	}

	scanErr := scanner.Err()
	_ = file.Close()

	if scanErr != nil {
		_ = l.reopenLogFileLocked()
		return fmt.Errorf("error reading log file during rotation: %w", scanErr)
	}

	content := ""
	if len(validEntries) > 0 {
		content = strings.Join(validEntries, "\n") + "\n"
	}

	tmpPath := l.filePath + ".tmp"
	if err := os.WriteFile(tmpPath, []byte(content), 0600); err != nil {
		_ = l.reopenLogFileLocked()
		return fmt.Errorf("failed to write temporary rotated log file: %w", err)
	}

	if err := os.Rename(tmpPath, l.filePath); err != nil {
		_ = os.Remove(tmpPath)
		_ = l.reopenLogFileLocked()
		return fmt.Errorf("failed to rename temporary log file during rotation: %w", err)
	}

	return l.reopenLogFileLocked()
}

// reopenLogFileLocked reopens the log file in append mode.
// Caller must hold l.mu.
func (l *ToolErrorLogger) reopenLogFileLocked() error {
	logFile, err := os.OpenFile(l.filePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return fmt.Errorf("failed to reopen log file: %w", err)
	}

	l.logFile = logFile
	return nil
}
