package domain

import (
	"fmt"
	"time"
)

// Stage is a reservation's position in the notification progression. A fresh
// reservation starts at StagePending and is advanced by the reminder sweep,
// one stage per crossed threshold, longest lead first:
//
//	PENDING -> NOTIFIED_30M -> NOTIFIED_10M
//
// for lead times [30m, 10m]. Stages only ever move forward.
type Stage string

const StagePending Stage = "PENDING"

// NotifiedStage returns the stage a reservation holds after the reminder for
// the given lead time has been delivered.
func NotifiedStage(lead time.Duration) Stage {
	return Stage(fmt.Sprintf("NOTIFIED_%dM", int(lead.Minutes())))
}

// PrecedingStage returns the stage a reservation must hold for the reminder
// at leads[i] to apply: StagePending for the longest lead, the previous
// notified stage for every shorter one. leads must be sorted longest first.
func PrecedingStage(leads []time.Duration, i int) Stage {
	if i == 0 {
		return StagePending
	}
	return NotifiedStage(leads[i-1])
}

type Reservation struct {
	ID        int64     `json:"id"`
	Ref       string    `json:"ref"`
	UserID    string    `json:"user_id"`
	ShowingID int64     `json:"showing_id"`
	Stage     Stage     `json:"stage"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DueReminder is a reservation joined with the showing fields the reminder
// sweep needs to render and address a notification.
type DueReminder struct {
	ReservationID int64
	UserID        string
	Stage         Stage
	ShowingID     int64
	ShowingName   string
	StartsAt      time.Time
}
