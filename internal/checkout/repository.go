package checkout

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository interface for checkout persistence. Mutations that must be
// idempotent are expressed as conflict-skipping inserts or guarded updates so
// a replayed finalize converges instead of duplicating.
type Repository interface {
	CreateCart(ctx context.Context, cart *Cart) error
	GetCart(ctx context.Context, id uuid.UUID) (*Cart, error)
	CompleteCart(ctx context.Context, id uuid.UUID) error
	AbandonCart(ctx context.Context, id uuid.UUID) error

	UpsertItems(ctx context.Context, items []CartItem) error
	RemoveItems(ctx context.Context, cartID uuid.UUID, seatIDs []uuid.UUID) error
	GetItems(ctx context.Context, cartID uuid.UUID) ([]CartItem, error)

	CreateIntent(ctx context.Context, intent *PaymentIntent) error
	GetIntent(ctx context.Context, id uuid.UUID) (*PaymentIntent, error)
	GetPendingIntentByCart(ctx context.Context, cartID uuid.UUID) (*PaymentIntent, error)
	GetLatestIntentByCart(ctx context.Context, cartID uuid.UUID) (*PaymentIntent, error)
	SetIntentStatus(ctx context.Context, id uuid.UUID, status IntentStatus) error

	CreateTickets(ctx context.Context, tickets []Ticket) error
	GetTicketsByCart(ctx context.Context, cartID uuid.UUID) ([]Ticket, error)
	GetTicketByID(ctx context.Context, id uuid.UUID) (*Ticket, error)
	TicketedSeatIDs(ctx context.Context, sessionID uuid.UUID) ([]uuid.UUID, error)

	UpsertOrder(ctx context.Context, order *Order) error
	GetOrderByCart(ctx context.Context, cartID uuid.UUID) (*Order, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// ============= CARTS =============

func (r *repository) CreateCart(ctx context.Context, cart *Cart) error {
	return r.db.WithContext(ctx).Create(cart).Error
}

func (r *repository) GetCart(ctx context.Context, id uuid.UUID) (*Cart, error) {
	var cart Cart
	err := r.db.WithContext(ctx).First(&cart, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

// CompleteCart flips ACTIVE to COMPLETED. Zero affected rows means the cart
// already completed, which a replayed finalize treats as done.
func (r *repository) CompleteCart(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&Cart{}).
		Where("id = ? AND status = ?", id, CartActive).
		Update("status", CartCompleted).Error
}

func (r *repository) AbandonCart(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&Cart{}).
		Where("id = ? AND status = ?", id, CartActive).
		Update("status", CartAbandoned).Error
}

// ============= CART ITEMS =============

// UpsertItems records held seats. Re-holding a seat already in the cart
// refreshes its deadline and price instead of inserting a second row.
func (r *repository) UpsertItems(ctx context.Context, items []CartItem) error {
	if len(items) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "cart_id"}, {Name: "seat_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"held_until", "price", "updated_at"}),
		}).
		Create(&items).Error
}

func (r *repository) RemoveItems(ctx context.Context, cartID uuid.UUID, seatIDs []uuid.UUID) error {
	if len(seatIDs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Where("cart_id = ? AND seat_id IN ?", cartID, seatIDs).
		Delete(&CartItem{}).Error
}

func (r *repository) GetItems(ctx context.Context, cartID uuid.UUID) ([]CartItem, error) {
	var items []CartItem
	err := r.db.WithContext(ctx).
		Where("cart_id = ?", cartID).
		Order("seat_code ASC").
		Find(&items).Error
	return items, err
}

// ============= PAYMENT INTENTS =============

func (r *repository) CreateIntent(ctx context.Context, intent *PaymentIntent) error {
	return r.db.WithContext(ctx).Create(intent).Error
}

func (r *repository) GetIntent(ctx context.Context, id uuid.UUID) (*PaymentIntent, error) {
	var intent PaymentIntent
	err := r.db.WithContext(ctx).First(&intent, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &intent, nil
}

func (r *repository) GetPendingIntentByCart(ctx context.Context, cartID uuid.UUID) (*PaymentIntent, error) {
	var intent PaymentIntent
	err := r.db.WithContext(ctx).
		Where("cart_id = ? AND status = ?", cartID, IntentPending).
		Order("created_at DESC").
		First(&intent).Error
	if err != nil {
		return nil, err
	}
	return &intent, nil
}

// GetLatestIntentByCart returns the newest intent for the cart regardless of
// status; finalize uses it when the caller only knows the cart.
func (r *repository) GetLatestIntentByCart(ctx context.Context, cartID uuid.UUID) (*PaymentIntent, error) {
	var intent PaymentIntent
	err := r.db.WithContext(ctx).
		Where("cart_id = ?", cartID).
		Order("created_at DESC").
		First(&intent).Error
	if err != nil {
		return nil, err
	}
	return &intent, nil
}

func (r *repository) SetIntentStatus(ctx context.Context, id uuid.UUID, status IntentStatus) error {
	return r.db.WithContext(ctx).
		Model(&PaymentIntent{}).
		Where("id = ?", id).
		Update("status", status).Error
}

// ============= TICKETS =============

// CreateTickets issues tickets. A replay hits the (cart, seat) key and
// inserts nothing, so tickets are never duplicated.
func (r *repository) CreateTickets(ctx context.Context, tickets []Ticket) error {
	if len(tickets) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "cart_id"}, {Name: "seat_id"}},
			DoNothing: true,
		}).
		Create(&tickets).Error
}

func (r *repository) GetTicketsByCart(ctx context.Context, cartID uuid.UUID) ([]Ticket, error) {
	var tickets []Ticket
	err := r.db.WithContext(ctx).
		Where("cart_id = ?", cartID).
		Order("seat_code ASC").
		Find(&tickets).Error
	return tickets, err
}

func (r *repository) GetTicketByID(ctx context.Context, id uuid.UUID) (*Ticket, error) {
	var ticket Ticket
	err := r.db.WithContext(ctx).First(&ticket, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &ticket, nil
}

// TicketedSeatIDs feeds the seat-map merge. Cancelled tickets no longer block
// their seat, so only live statuses count.
func (r *repository) TicketedSeatIDs(ctx context.Context, sessionID uuid.UUID) ([]uuid.UUID, error) {
	var seatIDs []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&Ticket{}).
		Where("session_id = ? AND status IN ?", sessionID, []TicketStatus{TicketReserved, TicketConfirmed}).
		Pluck("seat_id", &seatIDs).Error
	return seatIDs, err
}

// ============= ORDERS =============

func (r *repository) UpsertOrder(ctx context.Context, order *Order) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "cart_id"}},
			DoNothing: true,
		}).
		Create(order).Error
}

func (r *repository) GetOrderByCart(ctx context.Context, cartID uuid.UUID) (*Order, error) {
	var order Order
	err := r.db.WithContext(ctx).First(&order, "cart_id = ?", cartID).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}
