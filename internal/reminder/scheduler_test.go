package reminder

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Domenick1991/showbooking/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockReservationRepository struct {
	mock.Mock
}

func (m *MockReservationRepository) Create(ctx context.Context, reservation *domain.Reservation) error {
	args := m.Called(ctx, reservation)
	return args.Error(0)
}

func (m *MockReservationRepository) GetByRef(ctx context.Context, ref string) (*domain.Reservation, error) {
	args := m.Called(ctx, ref)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Reservation), args.Error(1)
}

func (m *MockReservationRepository) ListDue(ctx context.Context, stage domain.Stage, startsBefore time.Time) ([]domain.DueReminder, error) {
	args := m.Called(ctx, stage, startsBefore)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.DueReminder), args.Error(1)
}

func (m *MockReservationRepository) AdvanceStage(ctx context.Context, reservationID int64, from, to domain.Stage) (bool, error) {
	args := m.Called(ctx, reservationID, from, to)
	return args.Bool(0), args.Error(1)
}

type MockSink struct {
	mock.Mock
}

func (m *MockSink) Send(ctx context.Context, n Notification) error {
	args := m.Called(ctx, n)
	return args.Error(0)
}

var testLeads = []time.Duration{30 * time.Minute, 10 * time.Minute}

func TestScheduler_Tick_AdvancesCrossedThreshold(t *testing.T) {
	mockRepo := &MockReservationRepository{}
	mockSink := &MockSink{}
	scheduler := NewScheduler(mockRepo, mockSink, testLeads, time.Minute)

	ctx := context.Background()
	start := time.Date(2025, 6, 1, 20, 0, 0, 0, time.UTC)
	now := start.Add(-29 * time.Minute)

	due := []domain.DueReminder{
		{ReservationID: 1, UserID: "user-1", Stage: domain.StagePending, ShowingID: 4, ShowingName: "The Matrix", StartsAt: start},
	}

	mockRepo.On("ListDue", ctx, domain.StagePending, now.Add(30*time.Minute)).Return(due, nil).Once()
	mockRepo.On("ListDue", ctx, domain.Stage("NOTIFIED_30M"), now.Add(10*time.Minute)).Return(nil, nil).Once()
	mockSink.On("Send", ctx, mock.MatchedBy(func(n Notification) bool {
		return n.ReservationID == 1 && n.UserID == "user-1" && n.Lead == 30*time.Minute
	})).Return(nil).Once()
	mockRepo.On("AdvanceStage", ctx, int64(1), domain.StagePending, domain.Stage("NOTIFIED_30M")).Return(true, nil).Once()

	sent := scheduler.Tick(ctx, now)

	assert.Equal(t, 1, sent)
	mockRepo.AssertExpectations(t)
	mockSink.AssertExpectations(t)
}

func TestScheduler_Tick_SendFailureLeavesStage(t *testing.T) {
	mockRepo := &MockReservationRepository{}
	mockSink := &MockSink{}
	scheduler := NewScheduler(mockRepo, mockSink, testLeads, time.Minute)

	ctx := context.Background()
	start := time.Date(2025, 6, 1, 20, 0, 0, 0, time.UTC)
	now := start.Add(-29 * time.Minute)

	due := []domain.DueReminder{
		{ReservationID: 1, UserID: "user-1", Stage: domain.StagePending, ShowingName: "The Matrix", StartsAt: start},
		{ReservationID: 2, UserID: "user-2", Stage: domain.StagePending, ShowingName: "The Matrix", StartsAt: start},
	}

	mockRepo.On("ListDue", ctx, domain.StagePending, mock.Anything).Return(due, nil).Once()
	mockRepo.On("ListDue", ctx, domain.Stage("NOTIFIED_30M"), mock.Anything).Return(nil, nil).Once()

	// First delivery fails, second one still goes out and advances.
	mockSink.On("Send", ctx, mock.MatchedBy(func(n Notification) bool { return n.ReservationID == 1 })).
		Return(errors.New("delivery failed")).Once()
	mockSink.On("Send", ctx, mock.MatchedBy(func(n Notification) bool { return n.ReservationID == 2 })).
		Return(nil).Once()
	mockRepo.On("AdvanceStage", ctx, int64(2), domain.StagePending, domain.Stage("NOTIFIED_30M")).Return(true, nil).Once()

	sent := scheduler.Tick(ctx, now)

	assert.Equal(t, 1, sent)
	mockRepo.AssertNotCalled(t, "AdvanceStage", ctx, int64(1), mock.Anything, mock.Anything)
	mockSink.AssertExpectations(t)
}

func TestScheduler_Tick_ListFailureSkipsLead(t *testing.T) {
	mockRepo := &MockReservationRepository{}
	mockSink := &MockSink{}
	scheduler := NewScheduler(mockRepo, mockSink, testLeads, time.Minute)

	ctx := context.Background()
	now := time.Date(2025, 6, 1, 19, 31, 0, 0, time.UTC)

	mockRepo.On("ListDue", ctx, domain.StagePending, mock.Anything).Return(nil, errors.New("connection reset")).Once()
	mockRepo.On("ListDue", ctx, domain.Stage("NOTIFIED_30M"), mock.Anything).Return(nil, nil).Once()

	sent := scheduler.Tick(ctx, now)

	assert.Equal(t, 0, sent)
	mockRepo.AssertExpectations(t)
	mockSink.AssertNotCalled(t, "Send")
}

func TestNewScheduler_SortsLeadsLongestFirst(t *testing.T) {
	scheduler := NewScheduler(nil, nil, []time.Duration{10 * time.Minute, 30 * time.Minute}, time.Minute)

	assert.Equal(t, []time.Duration{30 * time.Minute, 10 * time.Minute}, scheduler.leads)
}

// fakeLedger keeps reservations in memory with the same ListDue/AdvanceStage
// semantics as the pg repository, so a test can walk wall-clock time through
// the whole notification lifecycle.
type fakeLedger struct {
	mu           sync.Mutex
	showing      domain.Showing
	reservations map[int64]*domain.Reservation
}

func (f *fakeLedger) Create(ctx context.Context, reservation *domain.Reservation) error {
	return errors.New("not used")
}

func (f *fakeLedger) GetByRef(ctx context.Context, ref string) (*domain.Reservation, error) {
	return nil, domain.ErrReservationNotFound
}

func (f *fakeLedger) ListDue(ctx context.Context, stage domain.Stage, startsBefore time.Time) ([]domain.DueReminder, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var due []domain.DueReminder
	for _, r := range f.reservations {
		if r.Stage == stage && !f.showing.StartsAt.After(startsBefore) {
			due = append(due, domain.DueReminder{
				ReservationID: r.ID,
				UserID:        r.UserID,
				Stage:         r.Stage,
				ShowingID:     f.showing.ID,
				ShowingName:   f.showing.Name,
				StartsAt:      f.showing.StartsAt,
			})
		}
	}
	return due, nil
}

func (f *fakeLedger) AdvanceStage(ctx context.Context, reservationID int64, from, to domain.Stage) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.reservations[reservationID]
	if !ok || r.Stage != from {
		return false, nil
	}
	r.Stage = to
	return true, nil
}

type recordingSink struct {
	sent []Notification
}

func (s *recordingSink) Send(ctx context.Context, n Notification) error {
	s.sent = append(s.sent, n)
	return nil
}

func TestScheduler_LifecycleWalk(t *testing.T) {
	start := time.Date(2025, 6, 1, 20, 0, 0, 0, time.UTC)
	ledger := &fakeLedger{
		showing: domain.Showing{ID: 4, Name: "The Matrix", StartsAt: start},
		reservations: map[int64]*domain.Reservation{
			1: {ID: 1, UserID: "user-1", ShowingID: 4, Stage: domain.StagePending},
		},
	}
	sink := &recordingSink{}
	scheduler := NewScheduler(ledger, sink, testLeads, time.Minute)

	ctx := context.Background()

	// Well before the first threshold: nothing fires.
	assert.Equal(t, 0, scheduler.Tick(ctx, start.Add(-45*time.Minute)))
	assert.Empty(t, sink.sent)
	assert.Equal(t, domain.StagePending, ledger.reservations[1].Stage)

	// Past the 30-minute trigger: first reminder, stage advances once.
	assert.Equal(t, 1, scheduler.Tick(ctx, start.Add(-29*time.Minute)))
	assert.Len(t, sink.sent, 1)
	assert.Equal(t, 30*time.Minute, sink.sent[0].Lead)
	assert.Equal(t, domain.Stage("NOTIFIED_30M"), ledger.reservations[1].Stage)

	// Re-running between thresholds is a no-op.
	assert.Equal(t, 0, scheduler.Tick(ctx, start.Add(-28*time.Minute)))
	assert.Len(t, sink.sent, 1)

	// Past the 10-minute trigger: second reminder, final stage.
	assert.Equal(t, 1, scheduler.Tick(ctx, start.Add(-9*time.Minute)))
	assert.Len(t, sink.sent, 2)
	assert.Equal(t, 10*time.Minute, sink.sent[1].Lead)
	assert.Equal(t, domain.Stage("NOTIFIED_10M"), ledger.reservations[1].Stage)

	// Every later tick before showtime stays quiet.
	assert.Equal(t, 0, scheduler.Tick(ctx, start.Add(-time.Minute)))
	assert.Len(t, sink.sent, 2)
}

type failingSink struct {
	failures int
	sent     []Notification
}

func (s *failingSink) Send(ctx context.Context, n Notification) error {
	if s.failures > 0 {
		s.failures--
		return errors.New("delivery failed")
	}
	s.sent = append(s.sent, n)
	return nil
}

func TestScheduler_RetriesUndeliveredOnNextTick(t *testing.T) {
	start := time.Date(2025, 6, 1, 20, 0, 0, 0, time.UTC)
	ledger := &fakeLedger{
		showing: domain.Showing{ID: 4, Name: "The Matrix", StartsAt: start},
		reservations: map[int64]*domain.Reservation{
			1: {ID: 1, UserID: "user-1", ShowingID: 4, Stage: domain.StagePending},
		},
	}
	sink := &failingSink{failures: 1}
	scheduler := NewScheduler(ledger, sink, testLeads, time.Minute)

	ctx := context.Background()

	// Delivery fails: stage must not move.
	assert.Equal(t, 0, scheduler.Tick(ctx, start.Add(-29*time.Minute)))
	assert.Equal(t, domain.StagePending, ledger.reservations[1].Stage)

	// Next tick picks the same reservation up again.
	assert.Equal(t, 1, scheduler.Tick(ctx, start.Add(-28*time.Minute)))
	assert.Len(t, sink.sent, 1)
	assert.Equal(t, domain.Stage("NOTIFIED_30M"), ledger.reservations[1].Stage)
}

func TestScheduler_RunStopsOnContextCancel(t *testing.T) {
	ledger := &fakeLedger{
		showing:      domain.Showing{ID: 4, Name: "The Matrix", StartsAt: time.Now().Add(time.Hour)},
		reservations: map[int64]*domain.Reservation{},
	}
	scheduler := NewScheduler(ledger, &recordingSink{}, testLeads, time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		scheduler.Run(ctx)
		close(done)
	}()

	time.Sleep(10 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop on context cancel")
	}
}
