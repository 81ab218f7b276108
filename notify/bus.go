package notify

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// NoticeType classifies a notice for presentation.
type NoticeType string

const (
	InfoNotice    NoticeType = "info"
	SuccessNotice NoticeType = "success"
	WarningNotice NoticeType = "warning"
	ErrorNotice   NoticeType = "error"
)

// DefaultDuration is how long a notice stays active before it is removed
// automatically.
const DefaultDuration = 4000 * time.Millisecond

// Notice is one user-facing status message.
type Notice struct {
	ID      string
	Message string
	Title   string
	Type    NoticeType

	// Duration controls automatic removal. Nil means DefaultDuration; an
	// explicit zero or negative duration keeps the notice until it is
	// removed.
	Duration *time.Duration
}

// Sticky is a Duration value for notices that never expire on their own.
func Sticky() *time.Duration {
	duration := time.Duration(0)
	return &duration
}

// After is a Duration value expiring the notice after the given interval.
func After(duration time.Duration) *time.Duration {
	return &duration
}

// Bus collects notices in arrival order and expires them after their
// duration. All methods are safe for concurrent use.
type Bus struct {
	mutex   sync.Mutex
	notices []Notice
	timers  map[string]*time.Timer
	closed  bool
}

func NewBus() *Bus {
	return &Bus{timers: make(map[string]*time.Timer)}
}

// Notify adds a notice and returns its generated identifier. A nil
// duration is replaced with DefaultDuration; an explicit non-positive
// duration keeps the notice until it is removed explicitly.
func (b *Bus) Notify(notice Notice) string {
	if b == nil {
		return ""
	}

	b.mutex.Lock()
	defer b.mutex.Unlock()
	if b.closed {
		return ""
	}

	notice.ID = uuid.NewString()
	if notice.Type == "" {
		notice.Type = InfoNotice
	}

	duration := DefaultDuration
	if notice.Duration != nil {
		duration = *notice.Duration
	}
	notice.Duration = &duration

	b.notices = append(b.notices, notice)
	if duration > 0 {
		id := notice.ID
		b.timers[id] = time.AfterFunc(duration, func() {
			b.Remove(id)
		})
	}
	return notice.ID
}

// Remove drops the notice with the given identifier. Removing an unknown or
// already-expired identifier is a no-op.
func (b *Bus) Remove(id string) {
	if b == nil || id == "" {
		return
	}

	b.mutex.Lock()
	defer b.mutex.Unlock()

	if timer, ok := b.timers[id]; ok {
		timer.Stop()
		delete(b.timers, id)
	}
	for index, notice := range b.notices {
		if notice.ID == id {
			b.notices = append(b.notices[:index], b.notices[index+1:]...)
			return
		}
	}
}

// Notices returns a snapshot of the active notices in arrival order.
func (b *Bus) Notices() []Notice {
	if b == nil {
		return nil
	}

	b.mutex.Lock()
	defer b.mutex.Unlock()

	snapshot := make([]Notice, len(b.notices))
	copy(snapshot, b.notices)
	return snapshot
}

// Close stops all expiry timers and rejects further notices. Active notices
// stay readable through Notices.
func (b *Bus) Close() {
	if b == nil {
		return
	}

	b.mutex.Lock()
	defer b.mutex.Unlock()

	b.closed = true
	for id, timer := range b.timers {
		timer.Stop()
		delete(b.timers, id)
	}
}

func (b *Bus) Success(message string) string {
	return b.Notify(Notice{Message: message, Type: SuccessNotice})
}

func (b *Bus) Error(message string) string {
	return b.Notify(Notice{Message: message, Type: ErrorNotice})
}

func (b *Bus) Info(message string) string {
	return b.Notify(Notice{Message: message, Type: InfoNotice})
}

func (b *Bus) Warning(message string) string {
	return b.Notify(Notice{Message: message, Type: WarningNotice})
}
