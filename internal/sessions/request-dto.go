package sessions

import (
	"time"

	"cineseat/internal/layout"
)

type CreateSessionRequest struct {
	MovieTitle string        `json:"movie_title" validate:"required,min=1,max=255"`
	Auditorium string        `json:"auditorium" validate:"required,min=1,max=64"`
	StartsAt   time.Time     `json:"starts_at" validate:"required"`
	BasePrice  float64       `json:"base_price" validate:"required,gt=0"`
	VIPPrice   float64       `json:"vip_price" validate:"omitempty,gt=0"`
	Layout     layout.Layout `json:"layout"`
}

type ListSessionsQuery struct {
	From  string `form:"from" binding:"omitempty,uuid"`
	Limit int    `form:"limit" binding:"omitempty,min=1,max=100"`
}
