package session

import (
	"errors"
	"fmt"
	"sync"

	"github.com/igestorphone/agent/internal/input"
	"github.com/igestorphone/agent/internal/monitor"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

// Status describes the current session state
type Status struct {
	Active         bool   `json:"active"`
	TimedOut       bool   `json:"timedOut"`
	LastActivityAt *int64 `json:"lastActivityAt,omitempty"`
}

// Provider tracks whether an authenticated session is active and runs one
// idle monitor per session. Tokens are issued by the backend; the provider
// only verifies signature and expiry of what it is handed.
type Provider struct {
	source      input.Source
	store       monitor.ActivityStore
	opts        monitor.Options
	tokenSecret string
	logger      *zap.Logger

	mu       sync.Mutex
	active   bool
	timedOut bool
	mon      *monitor.IdleMonitor
}

// NewProvider creates a session provider
func NewProvider(source input.Source, store monitor.ActivityStore, opts monitor.Options, tokenSecret string, logger *zap.Logger) *Provider {
	return &Provider{
		source:      source,
		store:       store,
		opts:        opts,
		tokenSecret: tokenSecret,
		logger:      logger,
	}
}

// StartSession validates the presented token and starts a fresh idle
// monitor. An already-active session is replaced, which is what resets the
// timeout latch for the new session.
func (p *Provider) StartSession(token string, touchPrimary bool) error {
	if err := p.validateToken(token); err != nil {
		return err
	}

	p.mu.Lock()
	previous := p.mon
	p.mu.Unlock()
	if previous != nil {
		previous.Stop()
	}

	opts := p.opts
	opts.TouchPrimary = touchPrimary
	mon := monitor.NewIdleMonitor(p.source, p.store, opts, p.logger)

	if err := mon.Start(p.handleTimeout); err != nil {
		return fmt.Errorf("failed to start idle monitor: %w", err)
	}

	p.mu.Lock()
	p.mon = mon
	p.active = true
	p.timedOut = false
	p.mu.Unlock()

	p.logger.Info("Session started", zap.Bool("touch_primary", touchPrimary))
	return nil
}

// Logout ends the session voluntarily: the monitor is stopped and the
// activity record removed
func (p *Provider) Logout() {
	p.mu.Lock()
	mon := p.mon
	p.mon = nil
	p.active = false
	p.mu.Unlock()

	if mon == nil {
		return
	}

	mon.Stop()
	mon.ClearActivity()
	p.logger.Info("Session ended by logout")
}

// Status reports the current session state
func (p *Provider) Status() Status {
	p.mu.Lock()
	defer p.mu.Unlock()

	st := Status{
		Active:   p.active,
		TimedOut: p.timedOut,
	}
	if p.mon != nil {
		st.LastActivityAt = p.mon.LastActivityAt()
	}
	return st
}

// handleTimeout is the monitor's timeout callback: clear the activity
// record, mark the session inactive and flag the forced logout so the UI
// can tell the user why it happened
func (p *Provider) handleTimeout() {
	p.mu.Lock()
	mon := p.mon
	p.mon = nil
	p.active = false
	p.timedOut = true
	p.mu.Unlock()

	if mon != nil {
		mon.ClearActivity()
		// The callback may run on the monitor's own check goroutine, so
		// Stop must not be waited on from here
		go mon.Stop()
	}

	p.logger.Info("Session ended due to inactivity")
}

func (p *Provider) validateToken(tokenString string) error {
	if tokenString == "" {
		return errors.New("missing session token")
	}
	if p.tokenSecret == "" {
		// No shared secret configured: token validity is entirely the
		// backend's concern
		return nil
	}

	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(p.tokenSecret), nil
	})
	if err != nil {
		return fmt.Errorf("invalid session token: %w", err)
	}
	if !token.Valid {
		return errors.New("invalid session token")
	}
	return nil
}
