package inventory

import (
	"time"

	"cineseat/internal/layout"

	"github.com/google/uuid"
)

// SeatStatus is the persisted state of a seat. A HELD row whose hold has
// lapsed is still stored as HELD; every reader and every write predicate
// treats it as AVAILABLE, so expiry needs no writer to become visible.
type SeatStatus string

const (
	SeatAvailable SeatStatus = "AVAILABLE"
	SeatHeld      SeatStatus = "HELD"
	SeatSold      SeatStatus = "SOLD"
)

// Seat is one sellable seat of a session. The (session, row, number) key makes
// seat generation idempotent: re-provisioning a session inserts nothing.
type Seat struct {
	ID        uuid.UUID       `gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	SessionID uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_seats_session_row_number,priority:1"`
	Row       string          `gorm:"not null;uniqueIndex:idx_seats_session_row_number,priority:2"`
	Number    int             `gorm:"not null;uniqueIndex:idx_seats_session_row_number,priority:3"`
	SeatCode  string          `gorm:"not null;index"`
	Type      layout.SeatType `gorm:"not null"`
	Price     float64         `gorm:"not null"`
	Status    SeatStatus      `gorm:"not null;default:'AVAILABLE';index"`

	// HeldUntil and HeldByCartID describe the active hold while Status is
	// HELD. They are kept on SOLD rows so a replayed finalize can recognise
	// seats it already sold.
	HeldUntil    *time.Time
	HeldByCartID *uuid.UUID `gorm:"type:uuid;index"`
	HeldByUserID *string

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Seat) TableName() string {
	return "seats"
}

// EffectiveStatus applies lazy expiry: a lapsed hold reads as AVAILABLE.
func (s *Seat) EffectiveStatus(now time.Time) SeatStatus {
	if s.Status == SeatHeld && (s.HeldUntil == nil || !s.HeldUntil.After(now)) {
		return SeatAvailable
	}
	return s.Status
}

// HeldBy reports whether the seat carries a live hold owned by cartID.
func (s *Seat) HeldBy(cartID uuid.UUID, now time.Time) bool {
	return s.Status == SeatHeld &&
		s.HeldByCartID != nil && *s.HeldByCartID == cartID &&
		s.HeldUntil != nil && s.HeldUntil.After(now)
}

// SoldTo reports whether the seat was sold through cartID.
func (s *Seat) SoldTo(cartID uuid.UUID) bool {
	return s.Status == SeatSold && s.HeldByCartID != nil && *s.HeldByCartID == cartID
}

// ClaimState classifies a seat relative to one cart's claim on it.
type ClaimState string

const (
	ClaimHeld      ClaimState = "HELD"       // live hold owned by the cart
	ClaimSoldSelf  ClaimState = "SOLD_SELF"  // already sold through the cart
	ClaimSoldOther ClaimState = "SOLD_OTHER" // sold through a different cart
	ClaimLost      ClaimState = "LOST"       // hold expired or taken over
)

// SeatClaim is the per-seat answer to "can this cart still buy this seat".
type SeatClaim struct {
	SeatID   uuid.UUID
	SeatCode string
	Price    float64
	State    ClaimState
}

// HeldSeat is the slice of seat data the cart layer records per hold.
type HeldSeat struct {
	SeatID   uuid.UUID
	SeatCode string
	Price    float64
}
