package booking

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/Domenick1991/showbooking/internal/domain"
	"github.com/Domenick1991/showbooking/internal/kafka"
	"github.com/Domenick1991/showbooking/internal/repository"
	"github.com/google/uuid"
)

type BookingUseCase interface {
	Book(ctx context.Context, input BookInput, now time.Time) (*domain.Reservation, error)
	GetByRef(ctx context.Context, ref string) (*domain.Reservation, error)
}

type Cache interface {
	InvalidateShowings(ctx context.Context) error
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

type BookingService struct {
	reservations repository.ReservationRepository
	showings     repository.ShowingRepository
	cache        Cache
	producer     Producer
	bookingTopic string
}

type BookInput struct {
	UserID    string `json:"user_id"`
	ShowingID int64  `json:"showing_id"`
}

type BookingServiceOption func(*BookingService)

func WithCache(cache Cache) BookingServiceOption {
	return func(s *BookingService) {
		s.cache = cache
	}
}

func WithProducer(producer Producer, bookingTopic string) BookingServiceOption {
	return func(s *BookingService) {
		s.producer = producer
		s.bookingTopic = bookingTopic
	}
}

func NewBookingService(
	reservations repository.ReservationRepository,
	showings repository.ShowingRepository,
	opts ...BookingServiceOption,
) *BookingService {
	service := &BookingService{
		reservations: reservations,
		showings:     showings,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

// Book takes one seat of the showing and records a reservation for the user,
// both inside one storage transaction. Repeated calls by the same user keep
// taking seats: there is no idempotency key, duplicate reservations per user
// are allowed.
//
// Expected denials come back as domain.ErrShowingNotFound, domain.ErrSoldOut
// and domain.ErrSalesClosed; anything else is a storage failure with the seat
// count untouched and no reservation row.
func (s *BookingService) Book(ctx context.Context, input BookInput, now time.Time) (*domain.Reservation, error) {
	if input.UserID == "" {
		return nil, errors.New("user id is required")
	}
	if input.ShowingID <= 0 {
		return nil, errors.New("showing id must be positive")
	}

	showing, err := s.showings.GetByID(ctx, input.ShowingID)
	if err != nil {
		return nil, err
	}
	if !showing.Bookable(now) {
		return nil, domain.ErrSalesClosed
	}
	if showing.SeatsLeft <= 0 {
		// Fast denial; the transaction below re-checks under lock.
		return nil, domain.ErrSoldOut
	}

	reservation := &domain.Reservation{
		Ref:       uuid.NewString(),
		UserID:    input.UserID,
		ShowingID: input.ShowingID,
	}

	if err := s.reservations.Create(ctx, reservation); err != nil {
		if !errors.Is(err, domain.ErrSoldOut) && !errors.Is(err, domain.ErrShowingNotFound) {
			log.Printf("booking storage failure for showing %d: %v", input.ShowingID, err)
		}
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.InvalidateShowings(ctx); err != nil {
			log.Printf("invalidate showings cache: %v", err)
		}
	}

	if err := s.publish(ctx, "booking_created", reservation, showing); err != nil {
		log.Printf("publish booking_created for reservation %s: %v", reservation.Ref, err)
	}
	return reservation, nil
}

func (s *BookingService) GetByRef(ctx context.Context, ref string) (*domain.Reservation, error) {
	return s.reservations.GetByRef(ctx, ref)
}

func (s *BookingService) publish(ctx context.Context, eventType string, reservation *domain.Reservation, showing *domain.Showing) error {
	if s.producer == nil || s.bookingTopic == "" {
		return nil
	}
	event := kafka.BookingEvent{
		Type:          eventType,
		ReservationID: reservation.ID,
		Ref:           reservation.Ref,
		UserID:        reservation.UserID,
		ShowingID:     showing.ID,
		ShowingName:   showing.Name,
		StartsAt:      showing.StartsAt,
		Stage:         string(reservation.Stage),
	}
	return s.producer.Publish(ctx, s.bookingTopic, reservation.Ref, event)
}

var _ BookingUseCase = (*BookingService)(nil)
