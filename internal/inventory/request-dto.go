package inventory

// Seats may be addressed by id or by seat code; either list (or both) works.
// UserID is optional so guests can hold seats; the cart still pins whatever
// identity (or lack of one) it was created with.
type HoldSeatsRequest struct {
	SessionID  string   `json:"session_id" binding:"required,uuid"`
	SeatIDs    []string `json:"seat_ids" binding:"omitempty,dive,uuid"`
	SeatCodes  []string `json:"seat_codes" binding:"omitempty,dive,required"`
	UserID     string   `json:"user_id" binding:"omitempty,max=128"`
	CartID     string   `json:"cart_id" binding:"omitempty,uuid"`
	TTLMinutes int      `json:"ttl_minutes" binding:"omitempty,min=1"`
}

type ReleaseSeatsRequest struct {
	CartID    string   `json:"cart_id" binding:"required,uuid"`
	UserID    string   `json:"user_id" binding:"omitempty,max=128"`
	SeatIDs   []string `json:"seat_ids" binding:"omitempty,dive,uuid"`
	SeatCodes []string `json:"seat_codes" binding:"omitempty,dive,required"`
}
