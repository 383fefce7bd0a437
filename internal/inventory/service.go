package inventory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"cineseat/internal/layout"
	"cineseat/internal/shared/config"
	"cineseat/internal/shared/constants"
	"cineseat/pkg/cache"
	"cineseat/pkg/logger"

	"github.com/google/uuid"
)

// CartService is the slice of the checkout layer the inventory needs: holds
// are always bound to a cart. Declared locally so the two packages stay
// decoupled; the concrete adapter is wired at router setup.
type CartService interface {
	// GetOrCreateCart returns an ACTIVE cart for the user and session,
	// creating one when cartID is empty. It fails when the cart is unknown,
	// no longer ACTIVE, or bound to a different user or session.
	GetOrCreateCart(ctx context.Context, cartID string, userID string, sessionID uuid.UUID) (uuid.UUID, error)
	RecordItems(ctx context.Context, cartID uuid.UUID, seats []HeldSeat, heldUntil time.Time) error
	RemoveItems(ctx context.Context, cartID uuid.UUID, seatIDs []uuid.UUID) error
}

// SessionProvider supplies the deterministic seat plan of a session, and
// doubles as the existence check for unknown session IDs.
type SessionProvider interface {
	SessionSeatPlan(ctx context.Context, sessionID uuid.UUID) ([]layout.SeatPlan, error)
}

// TicketSource reports which seats of a session already have issued tickets.
// The seat map merges those in as SOLD even if a seat row update lagged.
type TicketSource interface {
	TicketedSeatIDs(ctx context.Context, sessionID uuid.UUID) (map[uuid.UUID]bool, error)
}

type Service interface {
	EnsureSeats(ctx context.Context, sessionID uuid.UUID, plans []layout.SeatPlan) (int, error)
	HoldSeats(ctx context.Context, req HoldSeatsRequest) (*HoldResponse, error)
	ReleaseSeats(ctx context.Context, req ReleaseSeatsRequest) (*ReleaseResponse, error)
	SeatMap(ctx context.Context, sessionID string, ensure bool) (*SeatMapResponse, error)

	// Claim inspection and settlement for the checkout layer.
	ClaimStates(ctx context.Context, cartID uuid.UUID, seatIDs []uuid.UUID) ([]SeatClaim, error)
	MarkSold(ctx context.Context, cartID uuid.UUID, seatIDs []uuid.UUID) error
	ReleaseCart(ctx context.Context, cartID uuid.UUID) error
}

type staleProjection struct {
	resp     SeatMapResponse
	storedAt time.Time
}

type service struct {
	repo     Repository
	cache    cache.Service
	carts    CartService
	sessions SessionProvider
	tickets  TicketSource
	holds    config.HoldConfig
	log      *logger.Logger

	// Last good projection per session, served when the store is down.
	staleMu     sync.RWMutex
	stale       map[string]staleProjection
	staleWindow time.Duration
}

func NewService(repo Repository, cacheService cache.Service, holds config.HoldConfig, staleWindow time.Duration) *service {
	return &service{
		repo:        repo,
		cache:       cacheService,
		holds:       holds,
		log:         logger.GetDefault(),
		stale:       make(map[string]staleProjection),
		staleWindow: staleWindow,
	}
}

// SetCartService injects the checkout adapter after both services exist.
func (s *service) SetCartService(carts CartService) {
	s.carts = carts
}

// SetSessionProvider injects the sessions service.
func (s *service) SetSessionProvider(sessions SessionProvider) {
	s.sessions = sessions
}

// SetTicketSource injects the checkout ticket lookup.
func (s *service) SetTicketSource(tickets TicketSource) {
	s.tickets = tickets
}

// EnsureSeats provisions the session's seat rows if none exist yet. Both the
// count check and the conflict-skipping insert tolerate concurrent callers,
// so two racing provisions converge on the same inventory.
func (s *service) EnsureSeats(ctx context.Context, sessionID uuid.UUID, plans []layout.SeatPlan) (int, error) {
	count, err := s.repo.CountBySession(ctx, sessionID)
	if err != nil {
		return 0, fmt.Errorf("failed to count seats: %w", err)
	}
	if count > 0 {
		return int(count), nil
	}

	seats := make([]Seat, len(plans))
	for i, p := range plans {
		seats[i] = Seat{
			SessionID: sessionID,
			Row:       p.Row,
			Number:    p.Number,
			SeatCode:  p.SeatCode,
			Type:      p.Type,
			Price:     p.Price,
			Status:    SeatAvailable,
		}
	}
	if err := s.repo.CreateSeats(ctx, seats); err != nil {
		return 0, fmt.Errorf("failed to create seats: %w", err)
	}
	return len(seats), nil
}

func (s *service) HoldSeats(ctx context.Context, req HoldSeatsRequest) (*HoldResponse, error) {
	sessionID, err := uuid.Parse(req.SessionID)
	if err != nil {
		return nil, ErrSeatNotFound.Wrap("invalid session id %q", req.SessionID)
	}
	if len(req.SeatIDs) == 0 && len(req.SeatCodes) == 0 {
		return nil, ErrNoSeats
	}

	seats, err := s.resolveSeats(ctx, sessionID, req.SeatIDs, req.SeatCodes)
	if err != nil {
		return nil, err
	}

	cart, err := s.carts.GetOrCreateCart(ctx, req.CartID, req.UserID, sessionID)
	if err != nil {
		return nil, err
	}

	ttl := s.clampTTL(req.TTLMinutes)
	now := time.Now().UTC()
	heldUntil := now.Add(ttl)

	seatIDs := make([]uuid.UUID, len(seats))
	held := make([]HeldSeat, len(seats))
	for i, seat := range seats {
		seatIDs[i] = seat.ID
		held[i] = HeldSeat{SeatID: seat.ID, SeatCode: seat.SeatCode, Price: seat.Price}
	}

	if err := s.repo.HoldSeats(ctx, sessionID, seatIDs, cart, req.UserID, heldUntil, now); err != nil {
		return nil, err
	}
	if err := s.carts.RecordItems(ctx, cart, held, heldUntil); err != nil {
		return nil, fmt.Errorf("failed to record cart items: %w", err)
	}

	s.invalidateSeatMap(ctx, req.SessionID)
	s.log.LogHoldPlaced(ctx, req.SessionID, cart.String(), len(seats), heldUntil)

	resp := &HoldResponse{
		CartID:     cart.String(),
		SessionID:  req.SessionID,
		HeldUntil:  heldUntil,
		TTLSeconds: int(ttl.Seconds()),
		Seats:      make([]HeldSeatResponse, len(seats)),
	}
	for i, seat := range seats {
		resp.Seats[i] = HeldSeatResponse{SeatID: seat.ID.String(), SeatCode: seat.SeatCode, Price: seat.Price}
	}
	return resp, nil
}

func (s *service) ReleaseSeats(ctx context.Context, req ReleaseSeatsRequest) (*ReleaseResponse, error) {
	cartID, err := uuid.Parse(req.CartID)
	if err != nil {
		return nil, ErrSeatNotFound.Wrap("invalid cart id %q", req.CartID)
	}

	releaseIDs := make([]uuid.UUID, 0, len(req.SeatIDs))
	for _, raw := range req.SeatIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, ErrSeatNotFound.Wrap("invalid seat id %q", raw)
		}
		releaseIDs = append(releaseIDs, id)
	}

	released, err := s.repo.ReleaseSeats(ctx, cartID, req.UserID, releaseIDs, req.SeatCodes, time.Now().UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to release seats: %w", err)
	}

	resp := &ReleaseResponse{
		CartID:   req.CartID,
		Released: make([]string, 0, len(released)),
		Count:    len(released),
	}
	if len(released) == 0 {
		// Nothing matched: the seats were never held, or lapsed and were
		// taken over. Either way the caller's goal is met.
		return resp, nil
	}

	seatIDs := make([]uuid.UUID, len(released))
	sessions := make(map[string]bool)
	for i, seat := range released {
		seatIDs[i] = seat.ID
		resp.Released = append(resp.Released, seat.SeatCode)
		sessions[seat.SessionID.String()] = true
	}
	if err := s.carts.RemoveItems(ctx, cartID, seatIDs); err != nil {
		return nil, fmt.Errorf("failed to remove cart items: %w", err)
	}

	for sessionID := range sessions {
		s.invalidateSeatMap(ctx, sessionID)
		s.log.LogHoldReleased(ctx, sessionID, req.CartID, len(released))
	}
	return resp, nil
}

// SeatMap builds the merged availability projection: seat rows with lazy
// expiry applied, plus issued tickets folded in as SOLD. Served cache-first;
// if the store is unreachable the last good copy is returned while it is
// fresh enough. With ensure set, a session whose seats were never provisioned
// gets them generated on this read.
func (s *service) SeatMap(ctx context.Context, sessionID string, ensure bool) (*SeatMapResponse, error) {
	id, err := uuid.Parse(sessionID)
	if err != nil {
		return nil, ErrSeatNotFound.Wrap("invalid session id %q", sessionID)
	}

	var cached SeatMapResponse
	if err := s.cache.Get(ctx, constants.BuildSeatMapKey(sessionID), &cached); err == nil {
		return &cached, nil
	}

	resp, err := s.buildSeatMap(ctx, id, ensure)
	if err != nil {
		if f, ok := s.staleFor(sessionID); ok {
			s.log.WithError(err).Warn("serving stale seat map", "session_id", sessionID)
			return f, nil
		}
		return nil, err
	}

	// An empty projection is never cached: a later ensure read must reach the
	// store and provision the seats.
	if resp.Summary.Total > 0 {
		if err := s.cache.Set(ctx, constants.BuildSeatMapKey(sessionID), resp, constants.TTL_SEAT_MAP); err != nil {
			s.log.WithError(err).Warn("failed to cache seat map", "session_id", sessionID)
		}
		s.storeStale(sessionID, resp)
	}
	return resp, nil
}

func (s *service) buildSeatMap(ctx context.Context, sessionID uuid.UUID, ensure bool) (*SeatMapResponse, error) {
	seats, err := s.repo.GetSeatsBySession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load seats: %w", err)
	}
	if len(seats) == 0 {
		// Unknown sessions fail here; known ones with no seat rows stay empty
		// unless the caller asked for provisioning.
		plans, err := s.sessions.SessionSeatPlan(ctx, sessionID)
		if err != nil {
			return nil, err
		}
		if ensure {
			if _, err := s.EnsureSeats(ctx, sessionID, plans); err != nil {
				return nil, err
			}
			seats, err = s.repo.GetSeatsBySession(ctx, sessionID)
			if err != nil {
				return nil, fmt.Errorf("failed to load seats: %w", err)
			}
		}
	}

	var ticketed map[uuid.UUID]bool
	if s.tickets != nil {
		ticketed, err = s.tickets.TicketedSeatIDs(ctx, sessionID)
		if err != nil {
			return nil, fmt.Errorf("failed to load ticketed seats: %w", err)
		}
	}

	sort.Slice(seats, func(i, j int) bool {
		if seats[i].Row != seats[j].Row {
			return seats[i].Row < seats[j].Row
		}
		return seats[i].Number < seats[j].Number
	})

	now := time.Now().UTC()
	resp := &SeatMapResponse{
		SessionID:   sessionID.String(),
		GeneratedAt: now,
	}
	for _, seat := range seats {
		status := seat.EffectiveStatus(now)
		if ticketed[seat.ID] {
			status = SeatSold
		}
		mapped := SeatMapSeat{
			ID:       seat.ID.String(),
			SeatCode: seat.SeatCode,
			Number:   seat.Number,
			Type:     string(seat.Type),
			Price:    seat.Price,
			Status:   string(status),
		}
		if status == SeatHeld && seat.HeldUntil != nil {
			until := *seat.HeldUntil
			mapped.HeldUntil = &until
		}

		if n := len(resp.Rows); n == 0 || resp.Rows[n-1].Row != seat.Row {
			resp.Rows = append(resp.Rows, SeatMapRow{Row: seat.Row})
		}
		last := &resp.Rows[len(resp.Rows)-1]
		last.Seats = append(last.Seats, mapped)

		resp.Summary.Total++
		switch status {
		case SeatAvailable:
			resp.Summary.Available++
		case SeatHeld:
			resp.Summary.Held++
		case SeatSold:
			resp.Summary.Sold++
		}
	}
	return resp, nil
}

func (s *service) ClaimStates(ctx context.Context, cartID uuid.UUID, seatIDs []uuid.UUID) ([]SeatClaim, error) {
	seats, err := s.repo.GetSeatsByIDs(ctx, seatIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load seats: %w", err)
	}

	now := time.Now().UTC()
	claims := make([]SeatClaim, len(seats))
	for i, seat := range seats {
		claim := SeatClaim{SeatID: seat.ID, SeatCode: seat.SeatCode, Price: seat.Price}
		switch {
		case seat.SoldTo(cartID):
			claim.State = ClaimSoldSelf
		case seat.Status == SeatSold:
			claim.State = ClaimSoldOther
		case seat.HeldBy(cartID, now):
			claim.State = ClaimHeld
		default:
			claim.State = ClaimLost
		}
		claims[i] = claim
	}
	return claims, nil
}

func (s *service) MarkSold(ctx context.Context, cartID uuid.UUID, seatIDs []uuid.UUID) error {
	affected, err := s.repo.MarkSold(ctx, cartID, seatIDs, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to mark seats sold: %w", err)
	}
	if affected != int64(len(seatIDs)) {
		return ErrSeatOccupied.Wrap("%d of %d seats no longer claimable", int64(len(seatIDs))-affected, len(seatIDs))
	}
	return nil
}

// ReleaseCart frees everything the cart still holds, without a user filter.
// Used when a cart is abandoned through the checkout layer.
func (s *service) ReleaseCart(ctx context.Context, cartID uuid.UUID) error {
	released, err := s.repo.ReleaseSeats(ctx, cartID, "", nil, nil, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to release cart seats: %w", err)
	}
	sessions := make(map[string]bool)
	for _, seat := range released {
		sessions[seat.SessionID.String()] = true
	}
	for sessionID := range sessions {
		s.invalidateSeatMap(ctx, sessionID)
	}
	return nil
}

// resolveSeats maps seat ids and seat codes to rows, scoped to the session,
// and fails on the first unknown identifier. The two lists may overlap; each
// seat resolves once.
func (s *service) resolveSeats(ctx context.Context, sessionID uuid.UUID, ids []string, codes []string) ([]Seat, error) {
	seatIDs := make([]uuid.UUID, 0, len(ids))
	for _, raw := range ids {
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, ErrSeatNotFound.Wrap("invalid seat id %q", raw)
		}
		seatIDs = append(seatIDs, id)
	}

	seats, err := s.lookupSeats(ctx, sessionID, seatIDs, codes)
	if err != nil {
		return nil, err
	}
	if len(seats) == 0 {
		// Either the session is unknown or its seats were never provisioned.
		plans, err := s.sessions.SessionSeatPlan(ctx, sessionID)
		if err != nil {
			return nil, err
		}
		if _, err := s.EnsureSeats(ctx, sessionID, plans); err != nil {
			return nil, err
		}
		seats, err = s.lookupSeats(ctx, sessionID, seatIDs, codes)
		if err != nil {
			return nil, err
		}
	}

	foundID := make(map[uuid.UUID]bool, len(seats))
	foundCode := make(map[string]bool, len(seats))
	for _, seat := range seats {
		foundID[seat.ID] = true
		foundCode[seat.SeatCode] = true
	}
	for _, id := range seatIDs {
		if !foundID[id] {
			return nil, ErrSeatNotFound.Wrap("seat %s", id)
		}
	}
	for _, code := range codes {
		if !foundCode[code] {
			return nil, ErrSeatNotFound.Wrap("seat %q", code)
		}
	}
	return seats, nil
}

func (s *service) lookupSeats(ctx context.Context, sessionID uuid.UUID, seatIDs []uuid.UUID, codes []string) ([]Seat, error) {
	seen := make(map[uuid.UUID]bool)
	var seats []Seat

	if len(seatIDs) > 0 {
		byID, err := s.repo.GetSeatsByIDs(ctx, seatIDs)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve seats: %w", err)
		}
		for _, seat := range byID {
			if seat.SessionID != sessionID {
				return nil, ErrSeatNotFound.Wrap("seat %s", seat.ID)
			}
			if !seen[seat.ID] {
				seen[seat.ID] = true
				seats = append(seats, seat)
			}
		}
	}
	if len(codes) > 0 {
		byCode, err := s.repo.ResolveSeatCodes(ctx, sessionID, codes)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve seats: %w", err)
		}
		for _, seat := range byCode {
			if !seen[seat.ID] {
				seen[seat.ID] = true
				seats = append(seats, seat)
			}
		}
	}
	return seats, nil
}

func (s *service) clampTTL(minutes int) time.Duration {
	ttl := s.holds.DefaultTTL
	if minutes > 0 {
		ttl = time.Duration(minutes) * time.Minute
	}
	if ttl < s.holds.MinTTL {
		ttl = s.holds.MinTTL
	}
	if ttl > s.holds.MaxTTL {
		ttl = s.holds.MaxTTL
	}
	return ttl
}

func (s *service) invalidateSeatMap(ctx context.Context, sessionID string) {
	if err := s.cache.Delete(ctx, constants.BuildSeatMapKey(sessionID)); err != nil {
		s.log.WithError(err).Warn("failed to invalidate seat map cache", "session_id", sessionID)
	}
}

func (s *service) storeStale(sessionID string, resp *SeatMapResponse) {
	s.staleMu.Lock()
	s.stale[sessionID] = staleProjection{resp: *resp, storedAt: time.Now()}
	s.staleMu.Unlock()
}

func (s *service) staleFor(sessionID string) (*SeatMapResponse, bool) {
	s.staleMu.RLock()
	entry, ok := s.stale[sessionID]
	s.staleMu.RUnlock()
	if !ok || time.Since(entry.storedAt) > s.staleWindow {
		return nil, false
	}
	resp := entry.resp
	resp.Stale = true
	return &resp, true
}
