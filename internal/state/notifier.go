// Package state holds in-memory view stores that back the dashboard
// endpoints. Each store snapshots the result of its last load and
// discards responses from loads that were superseded before finishing.
package state

import "log/slog"

// Notifier receives user-facing outcome messages from store operations.
type Notifier interface {
	Success(message string)
	Error(message string)
}

type slogNotifier struct{}

func NewSlogNotifier() Notifier {
	return slogNotifier{}
}

func (slogNotifier) Success(message string) {
	slog.Info(message)
}

func (slogNotifier) Error(message string) {
	slog.Info(message)
}
