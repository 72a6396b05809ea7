package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Domenick1991/showbooking/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ShowingRepository interface {
	ListBookable(ctx context.Context, now time.Time, limit int) ([]domain.Showing, error)
	GetByID(ctx context.Context, id int64) (*domain.Showing, error)
}

type PGShowingRepository struct {
	db *pgxpool.Pool
}

func NewShowingRepository(db *pgxpool.Pool) ShowingRepository {
	return &PGShowingRepository{db: db}
}

// ListBookable returns showings that have not started yet at the given
// instant, soonest first. Ties on start time break by id so the order is
// stable.
func (r *PGShowingRepository) ListBookable(ctx context.Context, now time.Time, limit int) ([]domain.Showing, error) {
	rows, err := r.db.Query(ctx, `SELECT id, name, starts_at, seats_left, created_at, updated_at FROM showings WHERE starts_at > $1 ORDER BY starts_at, id LIMIT $2`, now, limit)
	if err != nil {
		return nil, fmt.Errorf("list bookable showings: %w", err)
	}
	defer rows.Close()

	showings := make([]domain.Showing, 0)
	for rows.Next() {
		var s domain.Showing
		if err := rows.Scan(&s.ID, &s.Name, &s.StartsAt, &s.SeatsLeft, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan showing: %w", err)
		}
		showings = append(showings, s)
	}
	return showings, rows.Err()
}

func (r *PGShowingRepository) GetByID(ctx context.Context, id int64) (*domain.Showing, error) {
	row := r.db.QueryRow(ctx, `SELECT id, name, starts_at, seats_left, created_at, updated_at FROM showings WHERE id=$1`, id)
	var s domain.Showing
	if err := row.Scan(&s.ID, &s.Name, &s.StartsAt, &s.SeatsLeft, &s.CreatedAt, &s.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrShowingNotFound
		}
		return nil, fmt.Errorf("get showing %d: %w", id, err)
	}
	return &s, nil
}

var _ ShowingRepository = (*PGShowingRepository)(nil)
