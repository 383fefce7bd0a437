package checkout

import (
	"time"

	"github.com/google/uuid"
)

// CartStatus is the lifecycle state of a cart. Only ACTIVE carts can take new
// holds or payment intents; COMPLETED is terminal.
type CartStatus string

const (
	CartActive    CartStatus = "ACTIVE"
	CartCompleted CartStatus = "COMPLETED"
	CartAbandoned CartStatus = "ABANDONED"
)

// Cart groups one user's seat holds for a single session.
type Cart struct {
	ID        uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	SessionID uuid.UUID  `gorm:"type:uuid;not null;index"`
	UserID    string     `gorm:"not null;index"`
	Status    CartStatus `gorm:"not null;default:'ACTIVE'"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Cart) TableName() string {
	return "carts"
}

// CartItem is one seat claimed into a cart. The (cart, seat) key lets the
// hold path upsert items without duplicating rows when a hold is extended.
type CartItem struct {
	ID        uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	CartID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_cart_items_cart_seat,priority:1"`
	SeatID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_cart_items_cart_seat,priority:2"`
	SeatCode  string    `gorm:"not null"`
	Price     float64   `gorm:"not null"`
	HeldUntil time.Time `gorm:"not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (CartItem) TableName() string {
	return "cart_items"
}

// IntentStatus mirrors the payment provider's view of an intent. A finalize
// that cannot confirm payment leaves the intent PENDING so it can be retried.
type IntentStatus string

const (
	IntentPending   IntentStatus = "PENDING"
	IntentSucceeded IntentStatus = "SUCCEEDED"
	IntentFailed    IntentStatus = "FAILED"
)

// PaymentIntent records the amount owed for a cart and what the provider has
// confirmed about it.
type PaymentIntent struct {
	ID        uuid.UUID    `gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	CartID    uuid.UUID    `gorm:"type:uuid;not null;index"`
	UserID    string       `gorm:"not null"`
	Amount    float64      `gorm:"not null"`
	Status    IntentStatus `gorm:"not null;default:'PENDING'"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (PaymentIntent) TableName() string {
	return "payment_intents"
}

// TicketStatus is the lifecycle state of an issued ticket. Finalize writes
// CONFIRMED directly; RESERVED exists for tickets issued ahead of payment
// capture, and CANCELLED tickets no longer block their seat.
type TicketStatus string

const (
	TicketReserved  TicketStatus = "RESERVED"
	TicketConfirmed TicketStatus = "CONFIRMED"
	TicketCancelled TicketStatus = "CANCELLED"
)

// Ticket is the durable proof of purchase for one seat. The (cart, seat) key
// is what makes finalize exactly-once: a replayed insert lands on the same
// key and adds nothing.
type Ticket struct {
	ID         uuid.UUID    `gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	CartID     uuid.UUID    `gorm:"type:uuid;not null;uniqueIndex:idx_tickets_cart_seat,priority:1"`
	SeatID     uuid.UUID    `gorm:"type:uuid;not null;uniqueIndex:idx_tickets_cart_seat,priority:2"`
	SessionID  uuid.UUID    `gorm:"type:uuid;not null;index"`
	UserID     string       `gorm:"not null;index"`
	SeatCode   string       `gorm:"not null"`
	Price      float64      `gorm:"not null"`
	TicketCode string       `gorm:"not null;uniqueIndex"`
	Status     TicketStatus `gorm:"not null;default:'CONFIRMED'"`
	IssuedAt   time.Time    `gorm:"not null"`
}

func (Ticket) TableName() string {
	return "tickets"
}

// Order is the per-cart purchase summary. One cart yields at most one order.
type Order struct {
	ID          uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	CartID      uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"`
	SessionID   uuid.UUID `gorm:"type:uuid;not null;index"`
	UserID      string    `gorm:"not null;index"`
	Amount      float64   `gorm:"not null"`
	TicketCount int       `gorm:"not null"`
	CreatedAt   time.Time
}

func (Order) TableName() string {
	return "orders"
}
