// Package notification delivers the short user-facing messages ("toasts")
// raised by wallet operations.
package notification

import (
	"fmt"
	"io"
	"sync"

	"go.uber.org/zap"
)

// Level distinguishes success from error notifications
type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
)

// Notifier is a fire-and-forget sink for user notifications
type Notifier interface {
	NotifySuccess(message string)
	NotifyError(message string)
}

// Console prints notifications as single lines, one per message
type Console struct {
	mu  sync.Mutex
	out io.Writer
}

// NewConsole creates a console notifier writing to out
func NewConsole(out io.Writer) *Console {
	return &Console{out: out}
}

func (c *Console) NotifySuccess(message string) { c.write("✔", message) }

func (c *Console) NotifyError(message string) { c.write("✖", message) }

func (c *Console) write(mark, message string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.out, "%s %s\n", mark, message)
}

// Log forwards notifications to a zap logger
type Log struct {
	logger *zap.Logger
}

// NewLog creates a notifier that logs every message
func NewLog(logger *zap.Logger) *Log {
	return &Log{logger: logger}
}

func (l *Log) NotifySuccess(message string) {
	l.logger.Info("Notification", zap.String("level", string(LevelSuccess)), zap.String("message", message))
}

func (l *Log) NotifyError(message string) {
	l.logger.Error("Notification", zap.String("level", string(LevelError)), zap.String("message", message))
}

// Multi fans notifications out to several notifiers
type Multi []Notifier

func (m Multi) NotifySuccess(message string) {
	for _, n := range m {
		n.NotifySuccess(message)
	}
}

func (m Multi) NotifyError(message string) {
	for _, n := range m {
		n.NotifyError(message)
	}
}

// Nop discards notifications
type Nop struct{}

func (Nop) NotifySuccess(string) {}
func (Nop) NotifyError(string)   {}
