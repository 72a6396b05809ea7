package domain

import "errors"

// Expected outcomes, surfaced to the command layer as user-facing denials.
// Anything else coming out of the repositories is a storage failure and is
// wrapped with context instead.
var (
	ErrShowingNotFound     = errors.New("showing not found")
	ErrReservationNotFound = errors.New("reservation not found")
	ErrSoldOut             = errors.New("no seats left")
	ErrSalesClosed         = errors.New("showing has already started")
)
