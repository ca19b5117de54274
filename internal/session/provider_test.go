package session

import (
	"sync"
	"testing"
	"time"

	"github.com/igestorphone/agent/internal/input"
	"github.com/igestorphone/agent/internal/monitor"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

type memStore struct {
	mu    sync.Mutex
	value string
	has   bool
}

func (s *memStore) Get() (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.value, s.has, nil
}

func (s *memStore) Set(value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.value = value
	s.has = true
	return nil
}

func (s *memStore) Remove() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.value = ""
	s.has = false
	return nil
}

func (s *memStore) present() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.has
}

func signToken(t *testing.T, secret string, expiresIn time.Duration) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "user-1",
		"exp": time.Now().Add(expiresIn).Unix(),
	})
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return signed
}

func newTestProvider(secret string, opts monitor.Options) (*Provider, *memStore) {
	store := &memStore{}
	hub := input.NewHub(zap.NewNop())
	return NewProvider(hub, store, opts, secret, zap.NewNop()), store
}

func TestStartSessionTokenValidation(t *testing.T) {
	const secret = "test-secret"
	opts := monitor.Options{Timeout: time.Minute, CheckInterval: time.Minute}

	tests := []struct {
		name    string
		token   string
		wantErr bool
	}{
		{"valid token", signToken(t, secret, time.Hour), false},
		{"expired token", signToken(t, secret, -time.Hour), true},
		{"wrong secret", signToken(t, "other-secret", time.Hour), true},
		{"empty token", "", true},
		{"garbage token", "not-a-jwt", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, _ := newTestProvider(secret, opts)
			err := p.StartSession(tt.token, false)
			if (err != nil) != tt.wantErr {
				t.Fatalf("StartSession() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil {
				defer p.Logout()
				if !p.Status().Active {
					t.Error("session not active after successful start")
				}
			}
		})
	}
}

func TestStartSessionWithoutSecretAcceptsAnyToken(t *testing.T) {
	p, _ := newTestProvider("", monitor.Options{Timeout: time.Minute, CheckInterval: time.Minute})
	defer p.Logout()

	if err := p.StartSession("opaque-backend-token", false); err != nil {
		t.Fatalf("StartSession() error = %v", err)
	}
	if err := p.StartSession("", false); err == nil {
		t.Error("StartSession() accepted an empty token")
	}
}

func TestLogoutClearsActivity(t *testing.T) {
	p, store := newTestProvider("", monitor.Options{Timeout: time.Minute, CheckInterval: time.Minute})

	if err := p.StartSession("token", false); err != nil {
		t.Fatalf("StartSession() error = %v", err)
	}
	if !store.present() {
		t.Fatal("activity record not anchored on session start")
	}

	p.Logout()

	st := p.Status()
	if st.Active {
		t.Error("session still active after Logout()")
	}
	if st.TimedOut {
		t.Error("voluntary logout marked as timed out")
	}
	if store.present() {
		t.Error("activity record not cleared on logout")
	}
}

func TestIdleTimeoutEndsSession(t *testing.T) {
	p, store := newTestProvider("", monitor.Options{
		Timeout:       40 * time.Millisecond,
		CheckInterval: 10 * time.Millisecond,
	})

	if err := p.StartSession("token", false); err != nil {
		t.Fatalf("StartSession() error = %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if st := p.Status(); !st.Active && st.TimedOut {
			if store.present() {
				t.Error("activity record not cleared on timeout")
			}
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("session did not time out")
}

func TestNewSessionAfterTimeoutStartsFresh(t *testing.T) {
	p, _ := newTestProvider("", monitor.Options{
		Timeout:       40 * time.Millisecond,
		CheckInterval: 10 * time.Millisecond,
	})

	if err := p.StartSession("token", false); err != nil {
		t.Fatalf("StartSession() error = %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if st := p.Status(); st.TimedOut {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}

	// A fresh authenticated session gets a brand-new monitor with a reset
	// latch
	if err := p.StartSession("token", false); err != nil {
		t.Fatalf("StartSession() after timeout error = %v", err)
	}
	defer p.Logout()

	st := p.Status()
	if !st.Active || st.TimedOut {
		t.Errorf("Status() after restart = %+v, want active and not timed out", st)
	}
	if st.LastActivityAt == nil {
		t.Error("no activity anchor after restart")
	}
}
