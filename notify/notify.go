// Package notify carries user-facing completion notices, the equivalent of
// the toasts a mobile surface would show for "importing..." and "imported".
package notify

import (
	"log/slog"
	"sync"
)

// Sink receives short user-visible status messages. Implementations must be
// safe for concurrent use; bulk operations report from background goroutines.
type Sink interface {
	Notify(message string)
}

// LogSink writes notices to the structured log.
type LogSink struct {
	Logger *slog.Logger
}

func (s *LogSink) Notify(message string) {
	s.Logger.Info("notice", "message", message)
}

// Recorder captures notices in order, for tests and for surfaces that poll.
type Recorder struct {
	mu       sync.Mutex
	messages []string
}

func (r *Recorder) Notify(message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, message)
}

// Messages returns a copy of everything recorded so far.
func (r *Recorder) Messages() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.messages))
	copy(out, r.messages)
	return out
}
