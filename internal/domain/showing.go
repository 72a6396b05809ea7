package domain

import "time"

type Showing struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	StartsAt  time.Time `json:"starts_at"`
	SeatsLeft int       `json:"seats_left"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ReminderAt returns the absolute trigger time for a reminder with the given
// lead before showtime.
func (s Showing) ReminderAt(lead time.Duration) time.Time {
	return s.StartsAt.Add(-lead)
}

// Bookable reports whether seats for the showing can still be sold at the
// given instant. Showings that have started are never bookable, whatever the
// seat count says.
func (s Showing) Bookable(now time.Time) bool {
	return s.StartsAt.After(now)
}
