// Package notify bridges transfer attempt progress into a user-visible
// notification surface. Each attempt is bound to at most one live
// notification: the bridge creates it on the first report and updates
// the same handle for every later transition of that attempt.
package notify

import (
	"sync"

	"github.com/sidrisov/payflow-sub001/internal/logger"
)

// Handle identifies a notification created on a surface.
type Handle string

// TerminalKind classifies a terminal notification update.
type TerminalKind int

const (
	// TerminalNone marks a progress update; the notification stays live.
	TerminalNone TerminalKind = iota
	// TerminalSuccess marks a completed transfer.
	TerminalSuccess
	// TerminalError marks a failed or rejected transfer.
	TerminalError
)

// Surface is the notification backend the bridge writes to.
type Surface interface {
	Create(content string) (Handle, error)
	Update(handle Handle, content string, terminal TerminalKind) error
}

// Bridge binds transfer attempts to surface notifications. A new
// attempt id gets a fresh notification; a superseded attempt's handle
// is orphaned and never touched again.
type Bridge struct {
	mu      sync.Mutex
	surface Surface
	log     logger.Logger

	attemptID uint64
	handle    Handle
	bound     bool
}

// NewBridge creates a bridge over the given surface.
func NewBridge(surface Surface, log logger.Logger) *Bridge {
	if log == nil {
		log = logger.Noop{}
	}
	return &Bridge{surface: surface, log: log}
}

// Report publishes progress for the given attempt. The first report for
// an attempt creates the notification; later reports update it in
// place. Surface failures are logged and swallowed: notification
// delivery never alters transfer state.
func (b *Bridge) Report(attemptID uint64, content string, terminal TerminalKind) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.surface == nil {
		return
	}

	if !b.bound || b.attemptID != attemptID {
		handle, err := b.surface.Create(content)
		if err != nil {
			b.log.Warn("notification create failed", map[string]any{
				"attempt": attemptID,
				"error":   err.Error(),
			})
			return
		}
		b.attemptID = attemptID
		b.handle = handle
		b.bound = true
		if terminal == TerminalNone {
			return
		}
	}

	if err := b.surface.Update(b.handle, content, terminal); err != nil {
		b.log.Warn("notification update failed", map[string]any{
			"attempt": attemptID,
			"error":   err.Error(),
		})
	}
}

// Clear drops the binding for the given attempt so a later attempt
// starts with a fresh notification. The orphaned notification itself is
// left as-is on the surface.
func (b *Bridge) Clear(attemptID uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.bound && b.attemptID == attemptID {
		b.bound = false
		b.handle = ""
	}
}

// Bound reports whether the given attempt currently owns the live
// notification.
func (b *Bridge) Bound(attemptID uint64) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.bound && b.attemptID == attemptID
}
