package handler_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/igestorphone/agent/internal/calendar"
	"github.com/igestorphone/agent/internal/database"
	"github.com/igestorphone/agent/internal/handler"
	"github.com/igestorphone/agent/internal/input"
	"github.com/igestorphone/agent/internal/monitor"
	"github.com/igestorphone/agent/internal/queue"
	"github.com/igestorphone/agent/internal/repository"
	"github.com/igestorphone/agent/internal/router"
	"github.com/igestorphone/agent/internal/service"
	"github.com/igestorphone/agent/internal/session"
	"github.com/igestorphone/agent/internal/store"

	"go.uber.org/zap"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	log := zap.NewNop()
	db, err := database.New(filepath.Join(t.TempDir(), "test.db"), log)
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	hub := input.NewHub(log)
	provider := session.NewProvider(hub, store.NewActivityStore(db.DB), monitor.Options{
		Timeout:       time.Minute,
		CheckInterval: time.Minute,
	}, "", log)
	t.Cleanup(provider.Logout)

	calendarService := service.NewCalendarService(
		repository.NewEventRepository(db.DB),
		queue.NewShareQueue(db.DB, log),
		nil,
		time.Minute,
		log,
	)

	srv := httptest.NewServer(router.New(
		handler.NewSessionHandler(provider, hub, log),
		handler.NewCalendarHandler(calendarService, log),
		log,
	))
	t.Cleanup(srv.Close)

	return srv
}

func postJSON(t *testing.T, url string, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(url, "application/json", bytes.NewBufferString(body))
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	return resp
}

func TestSessionLifecycle(t *testing.T) {
	srv := newTestServer(t)

	// Missing token is rejected
	resp := postJSON(t, srv.URL+"/api/v1/session/start", `{"token":""}`)
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("start with empty token = %d, want 401", resp.StatusCode)
	}

	resp = postJSON(t, srv.URL+"/api/v1/session/start", `{"token":"backend-token"}`)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("start = %d, want 200", resp.StatusCode)
	}
	var st session.Status
	if err := json.NewDecoder(resp.Body).Decode(&st); err != nil {
		t.Fatalf("decode status: %v", err)
	}
	if !st.Active || st.LastActivityAt == nil {
		t.Errorf("status after start = %+v, want active with activity anchor", st)
	}

	// Qualifying activity is accepted, unknown kinds are not
	resp = postJSON(t, srv.URL+"/api/v1/session/activity", `{"kind":"pointer_down"}`)
	resp.Body.Close()
	if resp.StatusCode != http.StatusAccepted {
		t.Errorf("activity = %d, want 202", resp.StatusCode)
	}
	resp = postJSON(t, srv.URL+"/api/v1/session/activity", `{"kind":"mouse_wiggle"}`)
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("unknown activity kind = %d, want 400", resp.StatusCode)
	}

	resp = postJSON(t, srv.URL+"/api/v1/session/logout", `{}`)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("logout = %d, want 200", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(&st); err != nil {
		t.Fatalf("decode status: %v", err)
	}
	if st.Active {
		t.Error("session still active after logout")
	}
}

func TestNormalizeEndpoint(t *testing.T) {
	srv := newTestServer(t)

	resp := postJSON(t, srv.URL+"/api/v1/calendar/normalize",
		`{"sale_date":"2024-12-25","iphone_model":"A1","storage":"128GB","imei_end":"1234"}`)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("normalize = %d, want 200", resp.StatusCode)
	}

	var ev calendar.SaleEvent
	if err := json.NewDecoder(resp.Body).Decode(&ev); err != nil {
		t.Fatalf("decode event: %v", err)
	}
	if len(ev.Items) != 1 || ev.Items[0].DeviceModel != "A1" {
		t.Errorf("normalized items = %+v", ev.Items)
	}
	if ev.Date != "2024-12-25" {
		t.Errorf("Date = %q", ev.Date)
	}
}

func TestCalendarEventEndpoints(t *testing.T) {
	srv := newTestServer(t)

	resp := postJSON(t, srv.URL+"/api/v1/calendar/events",
		`{"date":"2025-01-15","clientName":"Maria","items":[{"deviceModel":"iPhone 13","storage":"128GB","imeiSuffix":"4321","cashPrice":3500.5,"financedPrice":3800,"paymentMethod":"PIX"}]}`)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create = %d, want 201", resp.StatusCode)
	}
	var created calendar.SaleEvent
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		t.Fatalf("decode created event: %v", err)
	}
	resp.Body.Close()
	if created.ID == "" {
		t.Fatal("created event has no id")
	}

	base := srv.URL + "/api/v1/calendar/events/" + created.ID

	resp, err := http.Get(base)
	if err != nil {
		t.Fatalf("GET event: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("get = %d, want 200", resp.StatusCode)
	}

	resp, err = http.Get(srv.URL + "/api/v1/calendar/events?from=2025-01-01&to=2025-01-31")
	if err != nil {
		t.Fatalf("GET events: %v", err)
	}
	var listed []calendar.SaleEvent
	if err := json.NewDecoder(resp.Body).Decode(&listed); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	resp.Body.Close()
	if len(listed) != 1 {
		t.Errorf("listed %d events, want 1", len(listed))
	}

	req, _ := http.NewRequest(http.MethodPatch, base+"/status",
		bytes.NewBufferString(`{"status":"purchased"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("PATCH status: %v", err)
	}
	var updated calendar.SaleEvent
	if err := json.NewDecoder(resp.Body).Decode(&updated); err != nil {
		t.Fatalf("decode updated event: %v", err)
	}
	resp.Body.Close()
	if updated.Status != calendar.StatusPurchased {
		t.Errorf("Status = %q, want purchased", updated.Status)
	}

	resp, err = http.Get(base + "/summary")
	if err != nil {
		t.Fatalf("GET summary: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("summary = %d, want 200", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
		t.Errorf("summary content type = %q", ct)
	}
	buf := new(bytes.Buffer)
	buf.ReadFrom(resp.Body)
	summary := buf.String()
	for _, want := range []string{"Pedido 15/01/2025", "Cliente: Maria", "IMEI: ***4321", "3500,50"} {
		if !strings.Contains(summary, want) {
			t.Errorf("summary missing %q:\n%s", want, summary)
		}
	}
}

func TestEventNotFound(t *testing.T) {
	srv := newTestServer(t)

	for _, path := range []string{
		"/api/v1/calendar/events/missing",
		"/api/v1/calendar/events/missing/summary",
	} {
		resp, err := http.Get(srv.URL + path)
		if err != nil {
			t.Fatalf("GET %s: %v", path, err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusNotFound {
			t.Errorf("GET %s = %d, want 404", path, resp.StatusCode)
		}
	}

	resp := postJSON(t, srv.URL+"/api/v1/calendar/events/missing/share", `{}`)
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("share missing = %d, want 404", resp.StatusCode)
	}
}

func TestHealthEndpoint(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/health")
	if err != nil {
		t.Fatalf("GET /health: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("health = %d, want 200", resp.StatusCode)
	}
	var fmtCheck map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&fmtCheck); err != nil {
		t.Fatalf("decode health: %v", err)
	}
	if fmtCheck["status"] != "ok" {
		t.Errorf("health body = %v", fmtCheck)
	}
}
