package checkout

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"cineseat/internal/inventory"
	"cineseat/internal/notifications"
	"cineseat/pkg/logger"

	"github.com/google/uuid"
	qrcode "github.com/skip2/go-qrcode"
	"gorm.io/gorm"
)

// SeatService is the slice of the inventory layer checkout needs: claim
// inspection and settlement. Declared locally; the inventory service
// satisfies it.
type SeatService interface {
	ClaimStates(ctx context.Context, cartID uuid.UUID, seatIDs []uuid.UUID) ([]inventory.SeatClaim, error)
	MarkSold(ctx context.Context, cartID uuid.UUID, seatIDs []uuid.UUID) error
	ReleaseCart(ctx context.Context, cartID uuid.UUID) error
}

type Service interface {
	// Cart operations used by the seat-hold path.
	GetOrCreateCart(ctx context.Context, cartID string, userID string, sessionID uuid.UUID) (uuid.UUID, error)
	RecordItems(ctx context.Context, cartID uuid.UUID, seats []inventory.HeldSeat, heldUntil time.Time) error
	RemoveItems(ctx context.Context, cartID uuid.UUID, seatIDs []uuid.UUID) error

	// TicketedSeatIDs feeds the seat-map projection.
	TicketedSeatIDs(ctx context.Context, sessionID uuid.UUID) (map[uuid.UUID]bool, error)

	// HTTP-facing operations.
	GetCart(ctx context.Context, id string) (*CartResponse, error)
	AbandonCart(ctx context.Context, req AbandonCartRequest) error
	CreateIntent(ctx context.Context, req CreateIntentRequest) (*IntentResponse, error)
	Finalize(ctx context.Context, req FinalizeRequest) (*FinalizeResponse, error)
	HandleWebhook(ctx context.Context, req WebhookRequest) error
	TicketQR(ctx context.Context, ticketID string) ([]byte, error)
}

type service struct {
	repo     Repository
	seats    SeatService
	provider PaymentProvider
	producer notifications.TicketProducer
	log      *logger.Logger
}

func NewService(repo Repository, provider PaymentProvider, producer notifications.TicketProducer) *service {
	return &service{
		repo:     repo,
		provider: provider,
		producer: producer,
		log:      logger.GetDefault(),
	}
}

// SetSeatService injects the inventory service after both are constructed.
func (s *service) SetSeatService(seats SeatService) {
	s.seats = seats
}

// ============= CART OPERATIONS =============

func (s *service) GetOrCreateCart(ctx context.Context, cartID string, userID string, sessionID uuid.UUID) (uuid.UUID, error) {
	if cartID == "" {
		cart := &Cart{SessionID: sessionID, UserID: userID, Status: CartActive}
		if err := s.repo.CreateCart(ctx, cart); err != nil {
			return uuid.Nil, fmt.Errorf("failed to create cart: %w", err)
		}
		return cart.ID, nil
	}

	id, err := uuid.Parse(cartID)
	if err != nil {
		return uuid.Nil, ErrCartNotFound.Wrap("invalid cart id %q", cartID)
	}
	cart, err := s.repo.GetCart(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return uuid.Nil, ErrCartNotFound
		}
		return uuid.Nil, fmt.Errorf("failed to get cart: %w", err)
	}

	if cart.UserID != userID || cart.SessionID != sessionID {
		return uuid.Nil, ErrCartMismatch
	}
	if cart.Status != CartActive {
		return uuid.Nil, ErrCartNotActive
	}
	return cart.ID, nil
}

func (s *service) RecordItems(ctx context.Context, cartID uuid.UUID, seats []inventory.HeldSeat, heldUntil time.Time) error {
	items := make([]CartItem, len(seats))
	for i, seat := range seats {
		items[i] = CartItem{
			CartID:    cartID,
			SeatID:    seat.SeatID,
			SeatCode:  seat.SeatCode,
			Price:     seat.Price,
			HeldUntil: heldUntil,
		}
	}
	return s.repo.UpsertItems(ctx, items)
}

func (s *service) RemoveItems(ctx context.Context, cartID uuid.UUID, seatIDs []uuid.UUID) error {
	return s.repo.RemoveItems(ctx, cartID, seatIDs)
}

func (s *service) TicketedSeatIDs(ctx context.Context, sessionID uuid.UUID) (map[uuid.UUID]bool, error) {
	ids, err := s.repo.TicketedSeatIDs(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	out := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		out[id] = true
	}
	return out, nil
}

func (s *service) GetCart(ctx context.Context, id string) (*CartResponse, error) {
	cartID, err := uuid.Parse(id)
	if err != nil {
		return nil, ErrCartNotFound.Wrap("invalid cart id %q", id)
	}
	cart, err := s.repo.GetCart(ctx, cartID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCartNotFound
		}
		return nil, fmt.Errorf("failed to get cart: %w", err)
	}
	items, err := s.repo.GetItems(ctx, cartID)
	if err != nil {
		return nil, fmt.Errorf("failed to get cart items: %w", err)
	}

	resp := &CartResponse{
		ID:        cart.ID.String(),
		SessionID: cart.SessionID.String(),
		UserID:    cart.UserID,
		Status:    string(cart.Status),
		Items:     make([]CartItemResponse, len(items)),
	}
	for i, item := range items {
		resp.Items[i] = CartItemResponse{
			SeatCode:  item.SeatCode,
			Price:     item.Price,
			HeldUntil: item.HeldUntil,
		}
		resp.Total += item.Price
	}
	return resp, nil
}

// AbandonCart closes the cart and frees everything it still holds.
func (s *service) AbandonCart(ctx context.Context, req AbandonCartRequest) error {
	cartID, err := uuid.Parse(req.CartID)
	if err != nil {
		return ErrCartNotFound.Wrap("invalid cart id %q", req.CartID)
	}
	cart, err := s.repo.GetCart(ctx, cartID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCartNotFound
		}
		return fmt.Errorf("failed to get cart: %w", err)
	}
	if req.UserID != "" && cart.UserID != req.UserID {
		return ErrCartMismatch
	}
	if cart.Status == CartCompleted {
		return ErrCartNotActive
	}

	if err := s.repo.AbandonCart(ctx, cartID); err != nil {
		return fmt.Errorf("failed to abandon cart: %w", err)
	}
	return s.seats.ReleaseCart(ctx, cartID)
}

// ============= PAYMENT INTENTS =============

func (s *service) CreateIntent(ctx context.Context, req CreateIntentRequest) (*IntentResponse, error) {
	cartID, err := uuid.Parse(req.CartID)
	if err != nil {
		return nil, ErrCartNotFound.Wrap("invalid cart id %q", req.CartID)
	}
	cart, err := s.repo.GetCart(ctx, cartID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCartNotFound
		}
		return nil, fmt.Errorf("failed to get cart: %w", err)
	}
	if cart.UserID != req.UserID {
		return nil, ErrCartMismatch
	}
	if cart.Status != CartActive {
		return nil, ErrCartNotActive
	}

	// Reuse an open intent so repeated checkouts of the same cart do not
	// stack intents.
	if existing, err := s.repo.GetPendingIntentByCart(ctx, cartID); err == nil {
		return toIntentResponse(existing), nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to look up intent: %w", err)
	}

	items, err := s.repo.GetItems(ctx, cartID)
	if err != nil {
		return nil, fmt.Errorf("failed to get cart items: %w", err)
	}
	if len(items) == 0 {
		return nil, ErrHoldExpired.Wrap("cart has no held seats")
	}

	var amount float64
	for _, item := range items {
		amount += item.Price
	}

	intent := &PaymentIntent{
		CartID: cartID,
		UserID: req.UserID,
		Amount: amount,
		Status: IntentPending,
	}
	if err := s.repo.CreateIntent(ctx, intent); err != nil {
		return nil, fmt.Errorf("failed to create intent: %w", err)
	}
	return toIntentResponse(intent), nil
}

func toIntentResponse(intent *PaymentIntent) *IntentResponse {
	return &IntentResponse{
		ID:        intent.ID.String(),
		CartID:    intent.CartID.String(),
		Amount:    intent.Amount,
		Status:    string(intent.Status),
		CreatedAt: intent.CreatedAt,
	}
}

// ============= FINALIZE =============

// resolveIntent locates the payment intent by its id, falling back to the
// cart's newest intent when only the cart id was supplied.
func (s *service) resolveIntent(ctx context.Context, req FinalizeRequest) (*PaymentIntent, error) {
	if req.PaymentIntentID != "" {
		intentID, err := uuid.Parse(req.PaymentIntentID)
		if err != nil {
			return nil, ErrIntentNotFound.Wrap("invalid intent id %q", req.PaymentIntentID)
		}
		intent, err := s.repo.GetIntent(ctx, intentID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrIntentNotFound
			}
			return nil, fmt.Errorf("failed to get intent: %w", err)
		}
		return intent, nil
	}

	if req.CartID == "" {
		return nil, ErrIntentNotFound.Wrap("payment_intent_id or cart_id required")
	}
	cartID, err := uuid.Parse(req.CartID)
	if err != nil {
		return nil, ErrIntentNotFound.Wrap("invalid cart id %q", req.CartID)
	}
	intent, err := s.repo.GetLatestIntentByCart(ctx, cartID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrIntentNotFound
		}
		return nil, fmt.Errorf("failed to get intent: %w", err)
	}
	return intent, nil
}

// Finalize converts a paid cart into tickets exactly once. The flow is a
// sequence of individually idempotent steps; a crash at any point is healed
// by replaying the same call:
//
//  1. verify payment with the provider (intent stays PENDING on failure)
//  2. short-circuit if the cart already completed with tickets
//  3. classify the cart's seat claims; any lost seat aborts before issuing
//  4. settle the seats (guarded update, replay-safe)
//  5. insert CONFIRMED tickets (conflict-skipping on the cart+seat key)
//  6. complete the cart, mark the intent, upsert the order
//  7. publish the ticket event (best effort)
func (s *service) Finalize(ctx context.Context, req FinalizeRequest) (*FinalizeResponse, error) {
	intent, err := s.resolveIntent(ctx, req)
	if err != nil {
		return nil, err
	}

	if intent.Status != IntentSucceeded {
		status, err := s.provider.VerifyPayment(ctx, intent)
		if err != nil {
			return nil, fmt.Errorf("payment verification failed: %w", err)
		}
		if status == ProviderFailed {
			if err := s.repo.SetIntentStatus(ctx, intent.ID, IntentFailed); err != nil {
				return nil, fmt.Errorf("failed to record intent failure: %w", err)
			}
			return nil, ErrNotSucceeded
		}
		if status != ProviderSucceeded {
			return nil, ErrNotSucceeded
		}
	}

	cart, err := s.repo.GetCart(ctx, intent.CartID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCartNotFound
		}
		return nil, fmt.Errorf("failed to get cart: %w", err)
	}

	if cart.Status == CartCompleted {
		return s.replayResponse(ctx, cart, intent)
	}

	items, err := s.repo.GetItems(ctx, cart.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get cart items: %w", err)
	}
	if len(items) == 0 {
		return nil, ErrHoldExpired
	}

	seatIDs := make([]uuid.UUID, len(items))
	for i, item := range items {
		seatIDs[i] = item.SeatID
	}

	claims, err := s.seats.ClaimStates(ctx, cart.ID, seatIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to inspect seat claims: %w", err)
	}
	claimed := make(map[uuid.UUID]inventory.ClaimState, len(claims))
	for _, claim := range claims {
		claimed[claim.SeatID] = claim.State
	}
	for _, item := range items {
		switch claimed[item.SeatID] {
		case inventory.ClaimHeld, inventory.ClaimSoldSelf:
			// still ours
		case inventory.ClaimSoldOther:
			return nil, ErrSeatConflict.Wrap("seat %s", item.SeatCode)
		default:
			return nil, ErrHoldExpired.Wrap("seat %s", item.SeatCode)
		}
	}

	// Settle seats before issuing tickets so a crash in between leaves SOLD
	// seats with no tickets, which the replay path completes.
	if err := s.seats.MarkSold(ctx, cart.ID, seatIDs); err != nil {
		if errors.Is(err, inventory.ErrSeatOccupied) {
			return nil, ErrSeatConflict.Wrap("lost a seat during settlement")
		}
		return nil, err
	}

	now := time.Now().UTC()
	tickets := make([]Ticket, len(items))
	for i, item := range items {
		code, err := generateTicketCode()
		if err != nil {
			return nil, fmt.Errorf("failed to generate ticket code: %w", err)
		}
		tickets[i] = Ticket{
			CartID:     cart.ID,
			SeatID:     item.SeatID,
			SessionID:  cart.SessionID,
			UserID:     cart.UserID,
			SeatCode:   item.SeatCode,
			Price:      item.Price,
			TicketCode: code,
			Status:     TicketConfirmed,
			IssuedAt:   now,
		}
	}
	if err := s.repo.CreateTickets(ctx, tickets); err != nil {
		return nil, fmt.Errorf("failed to issue tickets: %w", err)
	}

	if err := s.repo.CompleteCart(ctx, cart.ID); err != nil {
		return nil, fmt.Errorf("failed to complete cart: %w", err)
	}
	if err := s.repo.SetIntentStatus(ctx, intent.ID, IntentSucceeded); err != nil {
		return nil, fmt.Errorf("failed to mark intent succeeded: %w", err)
	}

	issued, err := s.repo.GetTicketsByCart(ctx, cart.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load issued tickets: %w", err)
	}

	order := &Order{
		CartID:      cart.ID,
		SessionID:   cart.SessionID,
		UserID:      cart.UserID,
		Amount:      intent.Amount,
		TicketCount: len(issued),
	}
	if err := s.repo.UpsertOrder(ctx, order); err != nil {
		return nil, fmt.Errorf("failed to record order: %w", err)
	}
	stored, err := s.repo.GetOrderByCart(ctx, cart.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load order: %w", err)
	}

	s.publishTicketEvent(ctx, stored, issued)
	s.log.LogTicketsIssued(ctx, cart.ID.String(), intent.ID.String(), len(issued), false)

	resp := &FinalizeResponse{
		Order:   toOrderResponse(stored),
		Tickets: make([]TicketResponse, len(issued)),
	}
	for i := range issued {
		resp.Tickets[i] = toTicketResponse(&issued[i])
	}
	return resp, nil
}

// replayResponse rebuilds the original success payload for a cart that
// already completed. It also heals a crash that landed between completing the
// cart and recording the order or intent: the order is rebuilt from the
// tickets and the verified intent is marked SUCCEEDED, so every retry
// converges on the same end state.
func (s *service) replayResponse(ctx context.Context, cart *Cart, intent *PaymentIntent) (*FinalizeResponse, error) {
	tickets, err := s.repo.GetTicketsByCart(ctx, cart.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load issued tickets: %w", err)
	}

	order, err := s.repo.GetOrderByCart(ctx, cart.ID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		var amount float64
		for _, t := range tickets {
			amount += t.Price
		}
		rebuilt := &Order{
			CartID:      cart.ID,
			SessionID:   cart.SessionID,
			UserID:      cart.UserID,
			Amount:      amount,
			TicketCount: len(tickets),
		}
		if err := s.repo.UpsertOrder(ctx, rebuilt); err != nil {
			return nil, fmt.Errorf("failed to record order: %w", err)
		}
		order, err = s.repo.GetOrderByCart(ctx, cart.ID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load order: %w", err)
	}

	if intent.Status != IntentSucceeded {
		if err := s.repo.SetIntentStatus(ctx, intent.ID, IntentSucceeded); err != nil {
			return nil, fmt.Errorf("failed to mark intent succeeded: %w", err)
		}
	}

	s.log.LogTicketsIssued(ctx, cart.ID.String(), intent.ID.String(), len(tickets), true)

	resp := &FinalizeResponse{
		AlreadyProcessed: true,
		Order:            toOrderResponse(order),
		Tickets:          make([]TicketResponse, len(tickets)),
	}
	for i := range tickets {
		resp.Tickets[i] = toTicketResponse(&tickets[i])
	}
	return resp, nil
}

func (s *service) publishTicketEvent(ctx context.Context, order *Order, tickets []Ticket) {
	if s.producer == nil {
		return
	}

	event := &notifications.TicketIssuedEvent{
		OrderID:   order.ID.String(),
		CartID:    order.CartID.String(),
		SessionID: order.SessionID.String(),
		UserID:    order.UserID,
		Amount:    order.Amount,
		IssuedAt:  time.Now().UTC(),
	}
	for _, t := range tickets {
		event.TicketCodes = append(event.TicketCodes, t.TicketCode)
		event.SeatCodes = append(event.SeatCodes, t.SeatCode)
	}

	// Best effort: the sale is already durable, so a broker outage only
	// costs the notification.
	if err := s.producer.PublishTicketsIssued(ctx, event); err != nil {
		s.log.WithError(err).Warn("failed to publish ticket event", "order_id", event.OrderID)
	}
}

// ============= WEBHOOK =============

// HandleWebhook records the provider's asynchronous verdict on an intent and,
// on success, settles the cart through Finalize.
func (s *service) HandleWebhook(ctx context.Context, req WebhookRequest) error {
	intentID, err := uuid.Parse(req.IntentID)
	if err != nil {
		return ErrIntentNotFound.Wrap("invalid intent id %q", req.IntentID)
	}
	if _, err := s.repo.GetIntent(ctx, intentID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrIntentNotFound
		}
		return fmt.Errorf("failed to get intent: %w", err)
	}

	switch ProviderStatus(strings.ToUpper(req.Status)) {
	case ProviderSucceeded:
		// The push is only a prompt to settle. Finalize re-verifies with the
		// provider before touching anything, so a forged or mistaken body
		// cannot issue tickets, and duplicate deliveries converge.
		_, err := s.Finalize(ctx, FinalizeRequest{PaymentIntentID: intentID.String()})
		return err
	case ProviderFailed:
		return s.repo.SetIntentStatus(ctx, intentID, IntentFailed)
	default:
		return nil
	}
}

// ============= TICKETS =============

// TicketQR renders a scannable PNG for gate entry.
func (s *service) TicketQR(ctx context.Context, ticketID string) ([]byte, error) {
	id, err := uuid.Parse(ticketID)
	if err != nil {
		return nil, ErrTicketNotFound.Wrap("invalid ticket id %q", ticketID)
	}
	ticket, err := s.repo.GetTicketByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTicketNotFound
		}
		return nil, fmt.Errorf("failed to get ticket: %w", err)
	}

	payload, err := json.Marshal(map[string]string{
		"ticket_code": ticket.TicketCode,
		"session_id":  ticket.SessionID.String(),
		"seat_code":   ticket.SeatCode,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode ticket payload: %w", err)
	}

	png, err := qrcode.Encode(string(payload), qrcode.Medium, 256)
	if err != nil {
		return nil, fmt.Errorf("failed to render QR code: %w", err)
	}
	return png, nil
}

// generateTicketCode builds a human-readable unique code, e.g.
// TKT-20260901-KQXRTB.
func generateTicketCode() (string, error) {
	timestamp := time.Now().Format("20060102")

	const letters = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	randomPart := make([]byte, 6)
	for i := range randomPart {
		num, err := rand.Int(rand.Reader, big.NewInt(int64(len(letters))))
		if err != nil {
			return "", err
		}
		randomPart[i] = letters[num.Int64()]
	}

	return fmt.Sprintf("TKT-%s-%s", timestamp, string(randomPart)), nil
}
