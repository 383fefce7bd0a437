package checkout

import "time"

type CartItemResponse struct {
	SeatCode  string    `json:"seat_code"`
	Price     float64   `json:"price"`
	HeldUntil time.Time `json:"held_until"`
}

type CartResponse struct {
	ID        string             `json:"id"`
	SessionID string             `json:"session_id"`
	UserID    string             `json:"user_id"`
	Status    string             `json:"status"`
	Total     float64            `json:"total"`
	Items     []CartItemResponse `json:"items"`
}

type IntentResponse struct {
	ID        string    `json:"id"`
	CartID    string    `json:"cart_id"`
	Amount    float64   `json:"amount"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

type TicketResponse struct {
	ID         string    `json:"id"`
	TicketCode string    `json:"ticket_code"`
	SeatCode   string    `json:"seat_code"`
	SessionID  string    `json:"session_id"`
	Price      float64   `json:"price"`
	Status     string    `json:"status"`
	IssuedAt   time.Time `json:"issued_at"`
}

type OrderResponse struct {
	ID          string    `json:"id"`
	CartID      string    `json:"cart_id"`
	SessionID   string    `json:"session_id"`
	UserID      string    `json:"user_id"`
	Amount      float64   `json:"amount"`
	TicketCount int       `json:"ticket_count"`
	CreatedAt   time.Time `json:"created_at"`
}

// FinalizeResponse reports the outcome of a finalize call. AlreadyProcessed
// distinguishes a replay that found everything done from the first success;
// both carry the same order and tickets.
type FinalizeResponse struct {
	AlreadyProcessed bool             `json:"already_processed"`
	Order            OrderResponse    `json:"order"`
	Tickets          []TicketResponse `json:"tickets"`
}

func toTicketResponse(t *Ticket) TicketResponse {
	return TicketResponse{
		ID:         t.ID.String(),
		TicketCode: t.TicketCode,
		SeatCode:   t.SeatCode,
		SessionID:  t.SessionID.String(),
		Price:      t.Price,
		Status:     string(t.Status),
		IssuedAt:   t.IssuedAt,
	}
}

func toOrderResponse(o *Order) OrderResponse {
	return OrderResponse{
		ID:          o.ID.String(),
		CartID:      o.CartID.String(),
		SessionID:   o.SessionID.String(),
		UserID:      o.UserID,
		Amount:      o.Amount,
		TicketCount: o.TicketCount,
		CreatedAt:   o.CreatedAt,
	}
}
