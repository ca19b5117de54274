package input

import "time"

// EventKind identifies one of the interaction categories the idle monitor
// recognizes as user activity
type EventKind string

const (
	KindPointerDown EventKind = "pointer_down"
	KindKeyDown     EventKind = "key_down"
	KindTouchStart  EventKind = "touch_start"
	KindScroll      EventKind = "scroll"
)

// Event represents a single user interaction reported by the client
type Event struct {
	Kind      EventKind
	Timestamp time.Time
}

// ValidKind reports whether k is one of the recognized interaction categories
func ValidKind(k EventKind) bool {
	switch k {
	case KindPointerDown, KindKeyDown, KindTouchStart, KindScroll:
		return true
	}
	return false
}

// Source delivers interaction events to a single subscriber
type Source interface {
	// StartActivityMonitoring registers the callback invoked on every
	// qualifying interaction event
	StartActivityMonitoring(callback func(Event)) error

	// StopActivityMonitoring unregisters the callback; no further
	// invocations happen after it returns
	StopActivityMonitoring() error
}
