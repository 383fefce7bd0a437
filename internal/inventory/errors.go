package inventory

import (
	"net/http"

	"cineseat/internal/shared/utils/fault"
)

var (
	// ErrSeatNotFound is returned when a requested seat code does not exist
	// in the session's inventory.
	ErrSeatNotFound = fault.New("SEAT_NOT_FOUND", http.StatusNotFound, "seat not found")

	// ErrSeatOccupied is returned when any requested seat is held by another
	// cart or already sold. Holds are all-or-nothing, so one occupied seat
	// fails the whole request and nothing is held.
	ErrSeatOccupied = fault.New("SEAT_OCCUPIED", http.StatusConflict, "one or more seats are not available")

	// ErrNoSeats is returned when a hold request names no seats.
	ErrNoSeats = fault.New("NO_SEATS", http.StatusBadRequest, "no seats requested")
)
