package reminder

import (
	"context"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/Domenick1991/showbooking/internal/domain"
	"github.com/Domenick1991/showbooking/internal/repository"
)

// Notification is what the scheduler hands to the sink: the addressed user,
// the rendered text and enough showing context for the delivery side.
type Notification struct {
	ReservationID int64
	UserID        string
	Text          string
	ShowingName   string
	StartsAt      time.Time
	Lead          time.Duration
}

// Sink delivers a notification. A returned error means the notification was
// not delivered; the scheduler leaves the reservation's stage alone so the
// same reminder is retried on the next sweep.
type Sink interface {
	Send(ctx context.Context, n Notification) error
}

// Scheduler sweeps the reservation ledger on a fixed period and advances each
// reservation through the notification stages as its showing's reminder
// thresholds pass. Thresholds are re-evaluated from absolute timestamps every
// tick, so a sweep that finds nothing new is a no-op and a crashed send is
// simply picked up again next time.
type Scheduler struct {
	reservations repository.ReservationRepository
	sink         Sink
	leads        []time.Duration
	interval     time.Duration
	now          func() time.Time
}

type SchedulerOption func(*Scheduler)

// WithClock replaces the wall clock, for tests.
func WithClock(now func() time.Time) SchedulerOption {
	return func(s *Scheduler) {
		s.now = now
	}
}

func NewScheduler(
	reservations repository.ReservationRepository,
	sink Sink,
	leads []time.Duration,
	interval time.Duration,
	opts ...SchedulerOption,
) *Scheduler {
	sorted := make([]time.Duration, len(leads))
	copy(sorted, leads)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] > sorted[j] })

	s := &Scheduler{
		reservations: reservations,
		sink:         sink,
		leads:        sorted,
		interval:     interval,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run drives Tick until the context is canceled. No tick outcome stops the
// loop: storage and delivery failures are logged and the next tick runs on
// schedule.
func (s *Scheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	log.Printf("reminder scheduler started: leads=%v interval=%s", s.leads, s.interval)
	for {
		select {
		case <-ctx.Done():
			log.Printf("reminder scheduler stopped: %v", ctx.Err())
			return
		case <-ticker.C:
			if sent := s.Tick(ctx, s.now()); sent > 0 {
				log.Printf("reminder sweep delivered %d notifications", sent)
			}
		}
	}
}

// Tick runs one sweep at the given instant and returns how many notifications
// were delivered. Lead times are processed longest first; for each one, every
// reservation sitting in the preceding stage whose trigger time has passed
// gets a send followed by a compare-and-set stage advance. The advance only
// happens after a successful send, and a failed send for one reservation
// never blocks the rest.
func (s *Scheduler) Tick(ctx context.Context, now time.Time) int {
	sent := 0
	for i, lead := range s.leads {
		from := domain.PrecedingStage(s.leads, i)
		to := domain.NotifiedStage(lead)

		// Trigger time starts_at-lead has passed exactly when
		// starts_at <= now+lead.
		due, err := s.reservations.ListDue(ctx, from, now.Add(lead))
		if err != nil {
			log.Printf("list due reminders for stage %s: %v", from, err)
			continue
		}

		for _, d := range due {
			n := Notification{
				ReservationID: d.ReservationID,
				UserID:        d.UserID,
				Text:          renderText(d.ShowingName, lead, i == len(s.leads)-1),
				ShowingName:   d.ShowingName,
				StartsAt:      d.StartsAt,
				Lead:          lead,
			}
			if err := s.sink.Send(ctx, n); err != nil {
				log.Printf("send reminder for reservation %d: %v", d.ReservationID, err)
				continue
			}
			advanced, err := s.reservations.AdvanceStage(ctx, d.ReservationID, from, to)
			if err != nil {
				log.Printf("advance reservation %d to %s: %v", d.ReservationID, to, err)
				continue
			}
			if advanced {
				sent++
			}
		}
	}
	return sent
}

func renderText(showingName string, lead time.Duration, final bool) string {
	minutes := int(lead.Minutes())
	if final {
		return fmt.Sprintf("Your booked showing %q starts in %d minutes, please take your seat!", showingName, minutes)
	}
	return fmt.Sprintf("Your booked showing %q starts in %d minutes, please get ready!", showingName, minutes)
}
