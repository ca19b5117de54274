package service

import (
	"fmt"
	"sync"
	"time"

	"github.com/igestorphone/agent/internal/calendar"
	"github.com/igestorphone/agent/internal/notifier"
	"github.com/igestorphone/agent/internal/queue"
	"github.com/igestorphone/agent/internal/repository"

	"go.uber.org/zap"
)

// CalendarService wires the normalizer to persistence and summary sharing
type CalendarService struct {
	repo       *repository.EventRepository
	shareQueue *queue.ShareQueue
	sender     notifier.Sender // nil when sharing is not configured
	retryEvery time.Duration
	logger     *zap.Logger

	stopChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewCalendarService creates a calendar service. sender may be nil, in
// which case shares stay queued until a sender is configured.
func NewCalendarService(
	repo *repository.EventRepository,
	shareQueue *queue.ShareQueue,
	sender notifier.Sender,
	retryEvery time.Duration,
	logger *zap.Logger,
) *CalendarService {
	return &CalendarService{
		repo:       repo,
		shareQueue: shareQueue,
		sender:     sender,
		retryEvery: retryEvery,
		logger:     logger,
		stopChan:   make(chan struct{}),
	}
}

// Start launches the background share retry loop
func (cs *CalendarService) Start() {
	cs.wg.Add(1)
	go cs.shareProcessor()
	cs.logger.Info("Calendar service started", zap.Duration("share_retry", cs.retryEvery))
}

// Stop stops the retry loop
func (cs *CalendarService) Stop() {
	cs.stopOnce.Do(func() {
		close(cs.stopChan)
	})
	cs.wg.Wait()
	cs.logger.Info("Calendar service stopped")
}

// CreateEvent normalizes a raw record and persists the canonical event
func (cs *CalendarService) CreateEvent(raw calendar.RawSaleEvent) (calendar.SaleEvent, error) {
	ev := calendar.NormalizeEvent(raw)
	saved, err := cs.repo.Save(ev)
	if err != nil {
		return calendar.SaleEvent{}, err
	}

	cs.logger.Info("Calendar event saved",
		zap.String("id", saved.ID),
		zap.String("date", saved.Date),
		zap.Int("items", len(saved.Items)),
	)
	return saved, nil
}

// GetEvent returns one stored event
func (cs *CalendarService) GetEvent(id string) (calendar.SaleEvent, error) {
	return cs.repo.Get(id)
}

// ListEvents returns events within the given date range (bounds optional)
func (cs *CalendarService) ListEvents(from, to string) ([]calendar.SaleEvent, error) {
	return cs.repo.ListByDateRange(from, to)
}

// UpdateStatus moves an event to a new status
func (cs *CalendarService) UpdateStatus(id string, status calendar.Status) (calendar.SaleEvent, error) {
	return cs.repo.UpdateStatus(id, status)
}

// Summary renders the shareable order summary for a stored event
func (cs *CalendarService) Summary(id string) (string, error) {
	ev, err := cs.repo.Get(id)
	if err != nil {
		return "", err
	}
	return calendar.BuildOrderSummary(ev), nil
}

// Share sends the event's order summary; delivery failures are queued for
// retry rather than surfaced as hard errors
func (cs *CalendarService) Share(id string) error {
	summary, err := cs.Summary(id)
	if err != nil {
		return err
	}

	if cs.sender == nil {
		cs.logger.Warn("No share destination configured, queuing summary",
			zap.String("event_id", id),
		)
		return cs.shareQueue.Enqueue(id, summary)
	}

	if err := cs.sender.Send(summary); err != nil {
		cs.logger.Warn("Failed to deliver summary, queuing for retry",
			zap.Error(err),
			zap.String("event_id", id),
		)
		if queueErr := cs.shareQueue.Enqueue(id, summary); queueErr != nil {
			return fmt.Errorf("failed to queue share after send failure: %w", queueErr)
		}
	}
	return nil
}

// shareProcessor retries queued shares in the background
func (cs *CalendarService) shareProcessor() {
	defer cs.wg.Done()

	ticker := time.NewTicker(cs.retryEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			cs.processShareQueue()
		case <-cs.stopChan:
			return
		}
	}
}

func (cs *CalendarService) processShareQueue() {
	if cs.sender == nil {
		return
	}

	shares, err := cs.shareQueue.Dequeue(20)
	if err != nil {
		cs.logger.Error("Failed to dequeue shares", zap.Error(err))
		return
	}
	if len(shares) == 0 {
		return
	}

	var sent, failed []int64
	for _, s := range shares {
		if err := cs.sender.Send(s.Summary); err != nil {
			failed = append(failed, s.ID)
			continue
		}
		sent = append(sent, s.ID)
	}

	if err := cs.shareQueue.Remove(sent); err != nil {
		cs.logger.Error("Failed to remove delivered shares", zap.Error(err))
	}
	if err := cs.shareQueue.IncrementRetry(failed); err != nil {
		cs.logger.Error("Failed to increment share retries", zap.Error(err))
	}

	if len(sent) > 0 {
		cs.logger.Info("Delivered queued shares", zap.Int("count", len(sent)))
	}
}
