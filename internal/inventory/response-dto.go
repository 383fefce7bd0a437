package inventory

import "time"

type HeldSeatResponse struct {
	SeatID   string  `json:"seat_id"`
	SeatCode string  `json:"seat_code"`
	Price    float64 `json:"price"`
}

type HoldResponse struct {
	CartID     string             `json:"cart_id"`
	SessionID  string             `json:"session_id"`
	HeldUntil  time.Time          `json:"held_until"`
	TTLSeconds int                `json:"ttl_seconds"`
	Seats      []HeldSeatResponse `json:"seats"`
}

type ReleaseResponse struct {
	CartID   string   `json:"cart_id"`
	Released []string `json:"released"`
	Count    int      `json:"count"`
}

type SeatMapSeat struct {
	ID        string     `json:"id"`
	SeatCode  string     `json:"seat_code"`
	Number    int        `json:"number"`
	Type      string     `json:"type"`
	Price     float64    `json:"price"`
	Status    string     `json:"status"`
	HeldUntil *time.Time `json:"held_until,omitempty"`
}

type SeatMapRow struct {
	Row   string        `json:"row"`
	Seats []SeatMapSeat `json:"seats"`
}

type SeatMapSummary struct {
	Total     int `json:"total"`
	Available int `json:"available"`
	Held      int `json:"held"`
	Sold      int `json:"sold"`
}

// SeatMapResponse is the merged read projection of a session's seats. Stale is
// set only when the projection was served from the last good in-memory copy
// because the store was unreachable.
type SeatMapResponse struct {
	SessionID   string         `json:"session_id"`
	GeneratedAt time.Time      `json:"generated_at"`
	Stale       bool           `json:"stale,omitempty"`
	Summary     SeatMapSummary `json:"summary"`
	Rows        []SeatMapRow   `json:"rows"`
}

// SeatStatuses flattens the projection into seat-code → status, used by tests
// and callers that do not care about row grouping.
func (r *SeatMapResponse) SeatStatuses() map[string]string {
	out := make(map[string]string, r.Summary.Total)
	for _, row := range r.Rows {
		for _, seat := range row.Seats {
			out[seat.SeatCode] = seat.Status
		}
	}
	return out
}
