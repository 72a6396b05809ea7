package kafka

import "time"

// BookingEvent is published to the booking topic after a reservation is
// committed. Consumers must treat it as informational; the seat is already
// taken by the time it appears.
type BookingEvent struct {
	Type          string    `json:"type"`
	ReservationID int64     `json:"reservation_id"`
	Ref           string    `json:"ref"`
	UserID        string    `json:"user_id"`
	ShowingID     int64     `json:"showing_id"`
	ShowingName   string    `json:"showing_name"`
	StartsAt      time.Time `json:"starts_at"`
	Stage         string    `json:"stage"`
}

// ReminderEvent is published to the notifications topic once per crossed
// reminder threshold per reservation. The worker delivers it to the chat
// channel named in Channel.
type ReminderEvent struct {
	ReservationID int64     `json:"reservation_id"`
	UserID        string    `json:"user_id"`
	Channel       string    `json:"channel"`
	Text          string    `json:"text"`
	ShowingName   string    `json:"showing_name"`
	StartsAt      time.Time `json:"starts_at"`
	LeadMinutes   int       `json:"lead_minutes"`
}
