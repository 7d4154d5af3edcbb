package cartstore

import (
	"go.uber.org/zap"
)

type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
)

// Notification is a transient, user-facing message (a toast).
type Notification struct {
	Level   Level
	Message string
}

type Notifier interface {
	Notify(n Notification)
}

// LogNotifier writes notifications to a zap logger.
type LogNotifier struct {
	Logger *zap.Logger
}

func (n LogNotifier) Notify(note Notification) {
	if n.Logger == nil {
		return
	}
	if note.Level == LevelError {
		n.Logger.Warn(note.Message, zap.String("level", string(note.Level)))
		return
	}
	n.Logger.Info(note.Message, zap.String("level", string(note.Level)))
}

type nopNotifier struct{}

func (nopNotifier) Notify(Notification) {}
