package tasks

import (
	"github.com/charmbracelet/log"
)

// Import job statuses reported through [Notifier.ImportProgress].
const (
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
)

// BookmarkUpdate carries the fields enrichment changed on a bookmark.
type BookmarkUpdate struct {
	Title      string
	FaviconURL *string
	Settled    bool
}

// Notifier receives enrichment and import-progress events. The log-backed implementation
// below is the default; a realtime transport can implement the same interface.
type Notifier interface {
	BookmarkUpdated(userID, bookmarkID string, update BookmarkUpdate)
	ImportProgress(userID, jobID string, progress int, status string)
}

// LogNotifier implements [Notifier] by writing structured log lines.
type LogNotifier struct {
	logger *log.Logger
}

// NewLogNotifier creates a LogNotifier over the given logger.
func NewLogNotifier(logger *log.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) BookmarkUpdated(userID, bookmarkID string, update BookmarkUpdate) {
	n.logger.Info("bookmark updated",
		"user", userID,
		"bookmark", bookmarkID,
		"title", update.Title,
		"settled", update.Settled)
}

func (n *LogNotifier) ImportProgress(userID, jobID string, progress int, status string) {
	n.logger.Info("import progress",
		"user", userID,
		"job", jobID,
		"progress", progress,
		"status", status)
}
