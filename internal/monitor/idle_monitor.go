package monitor

import (
	"strconv"
	"sync"
	"time"

	"github.com/igestorphone/agent/internal/input"

	"go.uber.org/zap"
)

// ActivityStore persists the last-activity timestamp under a fixed key.
// Get returns the raw value and whether a record exists.
type ActivityStore interface {
	Get() (string, bool, error)
	Set(value string) error
	Remove() error
}

// Options configures an IdleMonitor
type Options struct {
	// Timeout is the inactivity window after which the session is ended
	Timeout time.Duration
	// WriteThrottle limits persisted timestamp refreshes under rapid
	// interaction (e.g. continuous scrolling)
	WriteThrottle time.Duration
	// CheckInterval is the periodic expiry check tick; must be shorter
	// than Timeout
	CheckInterval time.Duration
	// AttachDelay postpones listener attachment on touch-primary clients
	// so the first tap is not consumed as an "already idle" check
	AttachDelay time.Duration
	// TouchPrimary indicates the client's primary input is touch
	TouchPrimary bool
}

const (
	defaultWriteThrottle = 3 * time.Second
	defaultCheckInterval = 15 * time.Second
	defaultAttachDelay   = 500 * time.Millisecond
)

// IdleMonitor enforces an inactivity timeout: it observes interaction events,
// keeps a persisted last-activity timestamp, and fires the timeout callback
// at most once per monitor lifetime. A brand-new session gets a brand-new
// monitor, which is what resets the latch.
type IdleMonitor struct {
	source    input.Source
	store     ActivityStore
	opts      Options
	onTimeout func()
	logger    *zap.Logger
	now       func() time.Time

	mu          sync.Mutex
	fired       bool
	stopped     bool
	lastWrite   time.Time
	checkTicker *time.Ticker
	attachTimer *time.Timer
	stopChan    chan struct{}
	wg          sync.WaitGroup
}

// NewIdleMonitor creates a new idle monitor
func NewIdleMonitor(source input.Source, store ActivityStore, opts Options, logger *zap.Logger) *IdleMonitor {
	if opts.WriteThrottle <= 0 {
		opts.WriteThrottle = defaultWriteThrottle
	}
	if opts.CheckInterval <= 0 {
		opts.CheckInterval = defaultCheckInterval
	}
	if opts.AttachDelay <= 0 {
		opts.AttachDelay = defaultAttachDelay
	}

	return &IdleMonitor{
		source:   source,
		store:    store,
		opts:     opts,
		logger:   logger,
		now:      time.Now,
		stopChan: make(chan struct{}),
	}
}

// TouchActivity records the current wall-clock time as the latest activity
// timestamp. Persistence errors are swallowed: the monitor degrades to
// treating absence as fresh activity.
func (m *IdleMonitor) TouchActivity() {
	now := m.now()
	if err := m.store.Set(strconv.FormatInt(now.UnixMilli(), 10)); err != nil {
		m.logger.Debug("Failed to persist activity timestamp", zap.Error(err))
	}
}

// LastActivityAt returns the persisted timestamp in epoch milliseconds, or
// nil when the record is absent or unparsable. A corrupted record resets the
// idle clock rather than forcing an immediate logout.
func (m *IdleMonitor) LastActivityAt() *int64 {
	raw, ok, err := m.store.Get()
	if err != nil || !ok {
		return nil
	}
	ms, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil
	}
	return &ms
}

// ClearActivity removes the persisted timestamp, best-effort
func (m *IdleMonitor) ClearActivity() {
	if err := m.store.Remove(); err != nil {
		m.logger.Debug("Failed to clear activity timestamp", zap.Error(err))
	}
}

// Start begins observation. If no activity record exists one is created
// immediately, anchoring session start as the last activity.
func (m *IdleMonitor) Start(onTimeout func()) error {
	m.onTimeout = onTimeout

	if m.LastActivityAt() == nil {
		m.TouchActivity()
	}

	if m.opts.TouchPrimary {
		m.mu.Lock()
		m.attachTimer = time.AfterFunc(m.opts.AttachDelay, m.attach)
		m.mu.Unlock()
	} else {
		m.attach()
	}

	m.checkTicker = time.NewTicker(m.opts.CheckInterval)
	m.wg.Add(1)
	go m.checkLoop()

	m.logger.Info("Idle monitor started",
		zap.Duration("timeout", m.opts.Timeout),
		zap.Duration("check_interval", m.opts.CheckInterval),
		zap.Bool("touch_primary", m.opts.TouchPrimary),
	)

	return nil
}

// Stop releases the listener, the periodic ticker and any pending attach
// delay. No timeout callback can fire after Stop returns.
func (m *IdleMonitor) Stop() {
	m.mu.Lock()
	select {
	case <-m.stopChan:
		// Already stopped
		m.mu.Unlock()
		return
	default:
		m.stopped = true
		close(m.stopChan)
	}
	if m.attachTimer != nil {
		m.attachTimer.Stop()
	}
	m.mu.Unlock()

	m.wg.Wait()
	m.source.StopActivityMonitoring()
	if m.checkTicker != nil {
		m.checkTicker.Stop()
	}
	m.logger.Info("Idle monitor stopped")
}

func (m *IdleMonitor) attach() {
	m.mu.Lock()
	if m.stopped {
		m.mu.Unlock()
		return
	}
	m.mu.Unlock()

	if err := m.source.StartActivityMonitoring(m.handleEvent); err != nil {
		m.logger.Warn("Failed to attach activity listener", zap.Error(err))
	}
}

// handleEvent runs the expiry check before refreshing: an interaction that
// arrives after the window has elapsed must not revive the session.
func (m *IdleMonitor) handleEvent(ev input.Event) {
	m.mu.Lock()
	if m.stopped {
		m.mu.Unlock()
		return
	}
	m.mu.Unlock()

	now := m.now()
	if last := m.LastActivityAt(); last != nil && now.UnixMilli()-*last >= m.opts.Timeout.Milliseconds() {
		m.fire()
		return
	}

	m.mu.Lock()
	refresh := now.Sub(m.lastWrite) >= m.opts.WriteThrottle
	if refresh {
		m.lastWrite = now
	}
	m.mu.Unlock()

	if refresh {
		m.TouchActivity()
	}
}

func (m *IdleMonitor) checkLoop() {
	defer m.wg.Done()

	for {
		select {
		case <-m.checkTicker.C:
			m.periodicCheck()
		case <-m.stopChan:
			return
		}
	}
}

func (m *IdleMonitor) periodicCheck() {
	select {
	case <-m.stopChan:
		return
	default:
	}

	last := m.LastActivityAt()
	if last == nil {
		m.TouchActivity()
		return
	}

	if m.now().UnixMilli()-*last >= m.opts.Timeout.Milliseconds() {
		m.fire()
	}
}

// fire invokes the timeout callback at most once per monitor lifetime, even
// when the interaction path and the periodic check both observe expiry.
func (m *IdleMonitor) fire() {
	m.mu.Lock()
	if m.fired || m.stopped {
		m.mu.Unlock()
		return
	}
	m.fired = true
	callback := m.onTimeout
	m.mu.Unlock()

	m.logger.Info("Idle timeout reached", zap.Duration("timeout", m.opts.Timeout))

	if callback != nil {
		callback()
	}
}
