package repository

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/igestorphone/agent/internal/calendar"
	"github.com/igestorphone/agent/internal/database"

	"go.uber.org/zap"
)

func newTestRepo(t *testing.T) *EventRepository {
	t.Helper()

	db, err := database.New(filepath.Join(t.TempDir(), "test.db"), zap.NewNop())
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	return NewEventRepository(db.DB)
}

func testEvent(date string) calendar.SaleEvent {
	return calendar.NormalizeEvent(calendar.RawSaleEvent{
		Date: date,
		Items: []calendar.RawSaleItem{
			{DeviceModel: "iPhone 13", Storage: "128GB", CashPrice: 3500.0},
		},
	})
}

func TestSaveAssignsID(t *testing.T) {
	repo := newTestRepo(t)

	saved, err := repo.Save(testEvent("2025-01-15"))
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if saved.ID == "" {
		t.Error("Save() did not assign an id")
	}
	if saved.CreatedAt == "" {
		t.Error("Save() did not stamp createdAt")
	}
}

func TestSaveGetRoundTrip(t *testing.T) {
	repo := newTestRepo(t)

	saved, err := repo.Save(testEvent("2025-01-15"))
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, err := repo.Get(saved.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Date != "2025-01-15" {
		t.Errorf("Date = %q, want %q", got.Date, "2025-01-15")
	}
	if len(got.Items) != 1 || got.Items[0].DeviceModel != "iPhone 13" {
		t.Errorf("items not preserved: %+v", got.Items)
	}
	if got.DeviceModel != "iPhone 13" {
		t.Errorf("convenience mirror lost on round trip: %q", got.DeviceModel)
	}
}

func TestGetNotFound(t *testing.T) {
	repo := newTestRepo(t)

	if _, err := repo.Get("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get(missing) error = %v, want ErrNotFound", err)
	}
}

func TestListByDateRange(t *testing.T) {
	repo := newTestRepo(t)

	for _, date := range []string{"2025-01-10", "2025-01-20", "2025-02-05"} {
		if _, err := repo.Save(testEvent(date)); err != nil {
			t.Fatalf("Save(%s) error = %v", date, err)
		}
	}

	events, err := repo.ListByDateRange("2025-01-01", "2025-01-31")
	if err != nil {
		t.Fatalf("ListByDateRange() error = %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("got %d events in January, want 2", len(events))
	}
	if events[0].Date > events[1].Date {
		t.Error("events not ordered by date")
	}

	all, err := repo.ListByDateRange("", "")
	if err != nil {
		t.Fatalf("ListByDateRange(open) error = %v", err)
	}
	if len(all) != 3 {
		t.Errorf("got %d events with open bounds, want 3", len(all))
	}
}

func TestUpdateStatus(t *testing.T) {
	repo := newTestRepo(t)

	saved, err := repo.Save(testEvent("2025-01-15"))
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	updated, err := repo.UpdateStatus(saved.ID, calendar.StatusPurchased)
	if err != nil {
		t.Fatalf("UpdateStatus() error = %v", err)
	}
	if updated.Status != calendar.StatusPurchased {
		t.Errorf("Status = %q, want %q", updated.Status, calendar.StatusPurchased)
	}
	if updated.UpdatedAt == "" {
		t.Error("UpdateStatus() did not stamp updatedAt")
	}

	if _, err := repo.UpdateStatus(saved.ID, calendar.Status("cancelled")); err == nil {
		t.Error("UpdateStatus() accepted an unknown status")
	}
	if _, err := repo.UpdateStatus("missing", calendar.StatusPurchased); !errors.Is(err, ErrNotFound) {
		t.Errorf("UpdateStatus(missing) error = %v, want ErrNotFound", err)
	}
}

func TestDelete(t *testing.T) {
	repo := newTestRepo(t)

	saved, err := repo.Save(testEvent("2025-01-15"))
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	if err := repo.Delete(saved.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := repo.Get(saved.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() after delete error = %v, want ErrNotFound", err)
	}
	if err := repo.Delete(saved.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Delete() twice error = %v, want ErrNotFound", err)
	}
}
