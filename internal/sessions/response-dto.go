package sessions

import "time"

type SessionResponse struct {
	ID             string    `json:"id"`
	MovieTitle     string    `json:"movie_title"`
	Auditorium     string    `json:"auditorium"`
	StartsAt       time.Time `json:"starts_at"`
	BasePrice      float64   `json:"base_price"`
	VIPPrice       float64   `json:"vip_price"`
	SeatCount      int       `json:"seat_count"`
	SeatsGenerated bool      `json:"seats_generated"`
	CreatedAt      time.Time `json:"created_at"`
}

func toResponse(s *Session, seatCount int) *SessionResponse {
	return &SessionResponse{
		ID:             s.ID.String(),
		MovieTitle:     s.MovieTitle,
		Auditorium:     s.Auditorium,
		StartsAt:       s.StartsAt,
		BasePrice:      s.BasePrice,
		VIPPrice:       s.VIPPrice,
		SeatCount:      seatCount,
		SeatsGenerated: s.SeatsGenerated,
		CreatedAt:      s.CreatedAt,
	}
}
