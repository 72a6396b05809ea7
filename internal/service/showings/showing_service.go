package showings

import (
	"context"
	"time"

	"github.com/Domenick1991/showbooking/internal/domain"
	"github.com/Domenick1991/showbooking/internal/repository"
)

type ShowingUseCase interface {
	ListBookable(ctx context.Context, now time.Time) ([]domain.Showing, error)
	GetByID(ctx context.Context, id int64) (*domain.Showing, error)
}

type Cache interface {
	GetShowings(ctx context.Context) ([]domain.Showing, error)
	SetShowings(ctx context.Context, showings []domain.Showing) error
}

type ShowingService struct {
	repo     repository.ShowingRepository
	cache    Cache
	pageSize int
}

func NewShowingService(repo repository.ShowingRepository, cache Cache, pageSize int) *ShowingService {
	return &ShowingService{repo: repo, cache: cache, pageSize: pageSize}
}

// ListBookable returns up to a page of showings that start strictly after
// now, soonest first. The cached listing is re-filtered against now on every
// call so a showing never outlives its start time in the response, however
// stale the cache entry is.
func (s *ShowingService) ListBookable(ctx context.Context, now time.Time) ([]domain.Showing, error) {
	if s.cache != nil {
		if cached, err := s.cache.GetShowings(ctx); err == nil && cached != nil {
			return s.bookableOnly(cached, now), nil
		}
	}

	showings, err := s.repo.ListBookable(ctx, now, s.pageSize)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		_ = s.cache.SetShowings(ctx, showings)
	}
	return s.bookableOnly(showings, now), nil
}

func (s *ShowingService) GetByID(ctx context.Context, id int64) (*domain.Showing, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *ShowingService) bookableOnly(showings []domain.Showing, now time.Time) []domain.Showing {
	out := make([]domain.Showing, 0, len(showings))
	for _, showing := range showings {
		if !showing.Bookable(now) {
			continue
		}
		out = append(out, showing)
		if s.pageSize > 0 && len(out) == s.pageSize {
			break
		}
	}
	return out
}

var _ ShowingUseCase = (*ShowingService)(nil)
