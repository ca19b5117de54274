package input

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// Hub is a Source fed over HTTP: the SPA posts interaction events and the
// hub forwards them to the registered subscriber
type Hub struct {
	mu       sync.RWMutex
	callback func(Event)
	logger   *zap.Logger
}

// NewHub creates a new input hub
func NewHub(logger *zap.Logger) *Hub {
	return &Hub{logger: logger}
}

// StartActivityMonitoring registers the subscriber callback
func (h *Hub) StartActivityMonitoring(callback func(Event)) error {
	h.mu.Lock()
	h.callback = callback
	h.mu.Unlock()
	h.logger.Debug("Input hub subscriber attached")
	return nil
}

// StopActivityMonitoring detaches the subscriber
func (h *Hub) StopActivityMonitoring() error {
	h.mu.Lock()
	h.callback = nil
	h.mu.Unlock()
	h.logger.Debug("Input hub subscriber detached")
	return nil
}

// Dispatch forwards an interaction event to the subscriber, if any.
// Unknown kinds are dropped.
func (h *Hub) Dispatch(ev Event) {
	if !ValidKind(ev.Kind) {
		h.logger.Debug("Dropping event of unknown kind", zap.String("kind", string(ev.Kind)))
		return
	}
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now()
	}

	h.mu.RLock()
	callback := h.callback
	h.mu.RUnlock()

	if callback != nil {
		callback(ev)
	}
}
