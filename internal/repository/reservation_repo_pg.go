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

type ReservationRepository interface {
	Create(ctx context.Context, reservation *domain.Reservation) error
	GetByRef(ctx context.Context, ref string) (*domain.Reservation, error)
	ListDue(ctx context.Context, stage domain.Stage, startsBefore time.Time) ([]domain.DueReminder, error)
	AdvanceStage(ctx context.Context, reservationID int64, from, to domain.Stage) (bool, error)
}

type PGReservationRepository struct {
	db *pgxpool.Pool
}

func NewReservationRepository(db *pgxpool.Pool) ReservationRepository {
	return &PGReservationRepository{db: db}
}

// Create takes one seat from the reservation's showing and records the
// reservation, both inside a single transaction. The conditional UPDATE with
// seats_left > 0 holds the row lock until commit, so two concurrent calls on
// a showing with one seat left can never both succeed; the loser gets
// domain.ErrSoldOut (or domain.ErrShowingNotFound if the id never existed).
func (r *PGReservationRepository) Create(ctx context.Context, reservation *domain.Reservation) error {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin booking tx: %w", err)
	}
	defer tx.Rollback(ctx)

	var seatsLeft int
	err = tx.QueryRow(ctx, `UPDATE showings SET seats_left = seats_left - 1, updated_at = now() WHERE id=$1 AND seats_left > 0 RETURNING seats_left`, reservation.ShowingID).Scan(&seatsLeft)
	if errors.Is(err, pgx.ErrNoRows) {
		var exists bool
		if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM showings WHERE id=$1)`, reservation.ShowingID).Scan(&exists); err != nil {
			return fmt.Errorf("check showing %d: %w", reservation.ShowingID, err)
		}
		if !exists {
			return domain.ErrShowingNotFound
		}
		return domain.ErrSoldOut
	}
	if err != nil {
		return fmt.Errorf("take seat for showing %d: %w", reservation.ShowingID, err)
	}

	reservation.Stage = domain.StagePending
	if err := tx.QueryRow(ctx, `INSERT INTO reservations (ref, user_id, showing_id, stage)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at`, reservation.Ref, reservation.UserID, reservation.ShowingID, reservation.Stage).
		Scan(&reservation.ID, &reservation.CreatedAt, &reservation.UpdatedAt); err != nil {
		return fmt.Errorf("insert reservation: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit booking tx: %w", err)
	}
	return nil
}

func (r *PGReservationRepository) GetByRef(ctx context.Context, ref string) (*domain.Reservation, error) {
	row := r.db.QueryRow(ctx, `SELECT id, ref, user_id, showing_id, stage, created_at, updated_at FROM reservations WHERE ref=$1`, ref)
	var res domain.Reservation
	if err := row.Scan(&res.ID, &res.Ref, &res.UserID, &res.ShowingID, &res.Stage, &res.CreatedAt, &res.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrReservationNotFound
		}
		return nil, fmt.Errorf("get reservation %s: %w", ref, err)
	}
	return &res, nil
}

// ListDue returns reservations sitting in the given stage whose showing
// starts at or before startsBefore, in reservation id order. Callers pass
// now+lead as the bound, which is the same cut as "reminder trigger time has
// passed".
func (r *PGReservationRepository) ListDue(ctx context.Context, stage domain.Stage, startsBefore time.Time) ([]domain.DueReminder, error) {
	rows, err := r.db.Query(ctx, `SELECT r.id, r.user_id, r.stage, s.id, s.name, s.starts_at
		FROM reservations r
		JOIN showings s ON s.id = r.showing_id
		WHERE r.stage = $1 AND s.starts_at <= $2
		ORDER BY r.id`, stage, startsBefore)
	if err != nil {
		return nil, fmt.Errorf("list due reminders: %w", err)
	}
	defer rows.Close()

	var due []domain.DueReminder
	for rows.Next() {
		var d domain.DueReminder
		if err := rows.Scan(&d.ReservationID, &d.UserID, &d.Stage, &d.ShowingID, &d.ShowingName, &d.StartsAt); err != nil {
			return nil, fmt.Errorf("scan due reminder: %w", err)
		}
		due = append(due, d)
	}
	return due, rows.Err()
}

// AdvanceStage moves a reservation from one stage to the next with a
// compare-and-set, which makes repeated sweeps over the same threshold
// harmless: once the row has left the from stage the update matches nothing.
// Returns false when no row was advanced.
func (r *PGReservationRepository) AdvanceStage(ctx context.Context, reservationID int64, from, to domain.Stage) (bool, error) {
	cmd, err := r.db.Exec(ctx, `UPDATE reservations SET stage=$1, updated_at=now() WHERE id=$2 AND stage=$3`, to, reservationID, from)
	if err != nil {
		return false, fmt.Errorf("advance reservation %d to %s: %w", reservationID, to, err)
	}
	return cmd.RowsAffected() > 0, nil
}

var _ ReservationRepository = (*PGReservationRepository)(nil)
