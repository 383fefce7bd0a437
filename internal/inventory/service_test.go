package inventory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"cineseat/internal/layout"
	"cineseat/internal/shared/config"
	"cineseat/pkg/cache"

	"github.com/google/uuid"
)

// fakeRepo reproduces the guarded-update semantics of the SQL repository in
// memory: every mutation checks its predicate per row and a short row count
// rejects the whole hold.
type fakeRepo struct {
	mu    sync.Mutex
	seats map[uuid.UUID]*Seat

	failReads bool
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{seats: make(map[uuid.UUID]*Seat)}
}

func (r *fakeRepo) CreateSeats(_ context.Context, seats []Seat) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range seats {
		seat := seats[i]
		if r.findByCode(seat.SessionID, seat.SeatCode) != nil {
			continue
		}
		seat.ID = uuid.New()
		r.seats[seat.ID] = &seat
	}
	return nil
}

func (r *fakeRepo) CountBySession(_ context.Context, sessionID uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, seat := range r.seats {
		if seat.SessionID == sessionID {
			n++
		}
	}
	return n, nil
}

func (r *fakeRepo) GetSeatsBySession(_ context.Context, sessionID uuid.UUID) ([]Seat, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failReads {
		return nil, errors.New("store unavailable")
	}
	var out []Seat
	for _, seat := range r.seats {
		if seat.SessionID == sessionID {
			out = append(out, *seat)
		}
	}
	return out, nil
}

func (r *fakeRepo) GetSeatsByIDs(_ context.Context, seatIDs []uuid.UUID) ([]Seat, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Seat
	for _, id := range seatIDs {
		if seat, ok := r.seats[id]; ok {
			out = append(out, *seat)
		}
	}
	return out, nil
}

func (r *fakeRepo) ResolveSeatCodes(_ context.Context, sessionID uuid.UUID, codes []string) ([]Seat, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Seat
	for _, code := range codes {
		if seat := r.findByCode(sessionID, code); seat != nil {
			out = append(out, *seat)
		}
	}
	return out, nil
}

func (r *fakeRepo) HoldSeats(_ context.Context, sessionID uuid.UUID, seatIDs []uuid.UUID, cartID uuid.UUID, userID string, heldUntil, now time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var claimable []*Seat
	for _, id := range seatIDs {
		seat, ok := r.seats[id]
		if !ok || seat.SessionID != sessionID {
			continue
		}
		available := seat.Status == SeatAvailable ||
			(seat.Status == SeatHeld && (seat.HeldUntil == nil || !seat.HeldUntil.After(now) || *seat.HeldByCartID == cartID))
		if available {
			claimable = append(claimable, seat)
		}
	}
	if len(claimable) != len(seatIDs) {
		return ErrSeatOccupied
	}
	for _, seat := range claimable {
		until := heldUntil
		cart := cartID
		user := userID
		seat.Status = SeatHeld
		seat.HeldUntil = &until
		seat.HeldByCartID = &cart
		seat.HeldByUserID = &user
	}
	return nil
}

func (r *fakeRepo) ReleaseSeats(_ context.Context, cartID uuid.UUID, userID string, seatIDs []uuid.UUID, seatCodes []string, now time.Time) ([]Seat, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	wantedID := make(map[uuid.UUID]bool)
	for _, id := range seatIDs {
		wantedID[id] = true
	}
	wantedCode := make(map[string]bool)
	for _, code := range seatCodes {
		wantedCode[code] = true
	}

	var released []Seat
	for _, seat := range r.seats {
		if seat.Status != SeatHeld || seat.HeldByCartID == nil || *seat.HeldByCartID != cartID {
			continue
		}
		if userID != "" && (seat.HeldByUserID == nil || *seat.HeldByUserID != userID) {
			continue
		}
		if (len(seatIDs) > 0 || len(seatCodes) > 0) && !wantedID[seat.ID] && !wantedCode[seat.SeatCode] {
			continue
		}
		seat.Status = SeatAvailable
		seat.HeldUntil = nil
		seat.HeldByCartID = nil
		seat.HeldByUserID = nil
		released = append(released, *seat)
	}
	return released, nil
}

func (r *fakeRepo) MarkSold(_ context.Context, cartID uuid.UUID, seatIDs []uuid.UUID, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var affected int64
	for _, id := range seatIDs {
		seat, ok := r.seats[id]
		if !ok || seat.HeldByCartID == nil || *seat.HeldByCartID != cartID {
			continue
		}
		live := seat.Status == SeatHeld && seat.HeldUntil != nil && seat.HeldUntil.After(now)
		if live || seat.Status == SeatSold {
			seat.Status = SeatSold
			seat.HeldUntil = nil
			affected++
		}
	}
	return affected, nil
}

func (r *fakeRepo) SweepExpired(_ context.Context, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var cleared int64
	for _, seat := range r.seats {
		if seat.Status == SeatHeld && seat.HeldUntil != nil && !seat.HeldUntil.After(now) {
			seat.Status = SeatAvailable
			seat.HeldUntil = nil
			seat.HeldByCartID = nil
			seat.HeldByUserID = nil
			cleared++
		}
	}
	return cleared, nil
}

func (r *fakeRepo) findByCode(sessionID uuid.UUID, code string) *Seat {
	for _, seat := range r.seats {
		if seat.SessionID == sessionID && seat.SeatCode == code {
			return seat
		}
	}
	return nil
}

func (r *fakeRepo) expireHold(code string, sessionID uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if seat := r.findByCode(sessionID, code); seat != nil && seat.Status == SeatHeld {
		past := time.Now().UTC().Add(-time.Minute)
		seat.HeldUntil = &past
	}
}

type fakeCache struct{}

func (fakeCache) Get(context.Context, string, interface{}) error                { return cache.ErrCacheMiss }
func (fakeCache) Set(context.Context, string, interface{}, time.Duration) error { return nil }
func (fakeCache) Delete(context.Context, string) error                          { return nil }
func (fakeCache) Exists(context.Context, string) bool                           { return false }
func (fakeCache) Ping(context.Context) error                                    { return nil }

type fakeCarts struct {
	recorded []HeldSeat
	removed  []uuid.UUID
}

func (f *fakeCarts) GetOrCreateCart(_ context.Context, cartID string, _ string, _ uuid.UUID) (uuid.UUID, error) {
	if cartID != "" {
		return uuid.Parse(cartID)
	}
	return uuid.New(), nil
}

func (f *fakeCarts) RecordItems(_ context.Context, _ uuid.UUID, seats []HeldSeat, _ time.Time) error {
	f.recorded = append(f.recorded, seats...)
	return nil
}

func (f *fakeCarts) RemoveItems(_ context.Context, _ uuid.UUID, seatIDs []uuid.UUID) error {
	f.removed = append(f.removed, seatIDs...)
	return nil
}

type fakeSessions struct {
	plans map[uuid.UUID][]layout.SeatPlan
}

func (f *fakeSessions) SessionSeatPlan(_ context.Context, sessionID uuid.UUID) ([]layout.SeatPlan, error) {
	plans, ok := f.plans[sessionID]
	if !ok {
		return nil, errors.New("session not found")
	}
	return plans, nil
}

var testHolds = config.HoldConfig{
	DefaultTTL: 10 * time.Minute,
	MinTTL:     5 * time.Minute,
	MaxTTL:     30 * time.Minute,
}

func newTestService(t *testing.T) (*service, *fakeRepo, uuid.UUID) {
	t.Helper()

	repo := newFakeRepo()
	sessionID := uuid.New()

	plans := []layout.SeatPlan{
		{Row: "A", Number: 1, SeatCode: "A-1", Type: layout.SeatTypeStandard, Price: 10},
		{Row: "A", Number: 2, SeatCode: "A-2", Type: layout.SeatTypeStandard, Price: 10},
		{Row: "A", Number: 3, SeatCode: "A-3", Type: layout.SeatTypeVIP, Price: 18},
	}

	svc := NewService(repo, fakeCache{}, testHolds, 2*time.Minute)
	svc.SetCartService(&fakeCarts{})
	svc.SetSessionProvider(&fakeSessions{plans: map[uuid.UUID][]layout.SeatPlan{sessionID: plans}})

	if _, err := svc.EnsureSeats(context.Background(), sessionID, plans); err != nil {
		t.Fatalf("EnsureSeats: %v", err)
	}
	return svc, repo, sessionID
}

func TestHoldSeatsAllOrNothing(t *testing.T) {
	svc, _, sessionID := newTestService(t)
	ctx := context.Background()

	first, err := svc.HoldSeats(ctx, HoldSeatsRequest{
		SessionID: sessionID.String(),
		SeatCodes: []string{"A-1", "A-2"},
		UserID:    "user-1",
	})
	if err != nil {
		t.Fatalf("first hold: %v", err)
	}
	if len(first.Seats) != 2 {
		t.Fatalf("first hold got %d seats, want 2", len(first.Seats))
	}

	// Overlapping request from a second cart must fail whole, leaving A-3
	// unheld even though it was free.
	_, err = svc.HoldSeats(ctx, HoldSeatsRequest{
		SessionID: sessionID.String(),
		SeatCodes: []string{"A-2", "A-3"},
		UserID:    "user-2",
	})
	if !errors.Is(err, ErrSeatOccupied) {
		t.Fatalf("overlapping hold error = %v, want SEAT_OCCUPIED", err)
	}

	seatMap, err := svc.SeatMap(ctx, sessionID.String(), false)
	if err != nil {
		t.Fatalf("SeatMap: %v", err)
	}
	statuses := seatMap.SeatStatuses()
	for _, code := range []string{"A-1", "A-2"} {
		if statuses[code] != string(SeatHeld) {
			t.Errorf("seat %s status = %s, want HELD", code, statuses[code])
		}
	}
	if statuses["A-3"] != string(SeatAvailable) {
		t.Errorf("seat A-3 status = %s, want AVAILABLE", statuses["A-3"])
	}
}

func TestHoldSeatsUnknownCode(t *testing.T) {
	svc, _, sessionID := newTestService(t)

	_, err := svc.HoldSeats(context.Background(), HoldSeatsRequest{
		SessionID: sessionID.String(),
		SeatCodes: []string{"A-1", "Z-99"},
		UserID:    "user-1",
	})
	if !errors.Is(err, ErrSeatNotFound) {
		t.Fatalf("error = %v, want SEAT_NOT_FOUND", err)
	}
}

func TestHoldSeatsBySeatID(t *testing.T) {
	svc, repo, sessionID := newTestService(t)
	ctx := context.Background()

	seats, err := repo.ResolveSeatCodes(ctx, sessionID, []string{"A-1", "A-2"})
	if err != nil || len(seats) != 2 {
		t.Fatalf("resolve fixture seats: %v (%d)", err, len(seats))
	}

	resp, err := svc.HoldSeats(ctx, HoldSeatsRequest{
		SessionID: sessionID.String(),
		SeatIDs:   []string{seats[0].ID.String()},
		SeatCodes: []string{"A-2"},
		UserID:    "user-1",
	})
	if err != nil {
		t.Fatalf("HoldSeats: %v", err)
	}
	if len(resp.Seats) != 2 {
		t.Fatalf("held %d seats, want 2", len(resp.Seats))
	}

	if _, err := svc.HoldSeats(ctx, HoldSeatsRequest{
		SessionID: sessionID.String(),
		SeatIDs:   []string{uuid.NewString()},
		UserID:    "user-2",
	}); !errors.Is(err, ErrSeatNotFound) {
		t.Fatalf("error = %v, want SEAT_NOT_FOUND for unknown seat id", err)
	}
}

func TestHoldSeatsGuestUser(t *testing.T) {
	svc, _, sessionID := newTestService(t)
	ctx := context.Background()

	hold, err := svc.HoldSeats(ctx, HoldSeatsRequest{
		SessionID: sessionID.String(),
		SeatCodes: []string{"A-1"},
	})
	if err != nil {
		t.Fatalf("guest hold: %v", err)
	}
	if hold.CartID == "" {
		t.Fatal("guest hold returned no cart")
	}

	resp, err := svc.ReleaseSeats(ctx, ReleaseSeatsRequest{CartID: hold.CartID})
	if err != nil {
		t.Fatalf("guest release: %v", err)
	}
	if resp.Count != 1 {
		t.Fatalf("guest release freed %d seats, want 1", resp.Count)
	}
}

func TestHoldSeatsExpiredHoldIsClaimable(t *testing.T) {
	svc, repo, sessionID := newTestService(t)
	ctx := context.Background()

	if _, err := svc.HoldSeats(ctx, HoldSeatsRequest{
		SessionID: sessionID.String(),
		SeatCodes: []string{"A-1"},
		UserID:    "user-1",
	}); err != nil {
		t.Fatalf("first hold: %v", err)
	}

	repo.expireHold("A-1", sessionID)

	// A lapsed hold must read as AVAILABLE without any sweep having run.
	seatMap, err := svc.SeatMap(ctx, sessionID.String(), false)
	if err != nil {
		t.Fatalf("SeatMap: %v", err)
	}
	if status := seatMap.SeatStatuses()["A-1"]; status != string(SeatAvailable) {
		t.Errorf("expired seat status = %s, want AVAILABLE", status)
	}

	second, err := svc.HoldSeats(ctx, HoldSeatsRequest{
		SessionID: sessionID.String(),
		SeatCodes: []string{"A-1"},
		UserID:    "user-2",
	})
	if err != nil {
		t.Fatalf("hold over lapsed hold: %v", err)
	}
	if second.CartID == "" {
		t.Fatal("second hold returned no cart")
	}
}

func TestHoldSeatsExtendsOwnHold(t *testing.T) {
	svc, _, sessionID := newTestService(t)
	ctx := context.Background()

	first, err := svc.HoldSeats(ctx, HoldSeatsRequest{
		SessionID: sessionID.String(),
		SeatCodes: []string{"A-1"},
		UserID:    "user-1",
	})
	if err != nil {
		t.Fatalf("first hold: %v", err)
	}

	second, err := svc.HoldSeats(ctx, HoldSeatsRequest{
		SessionID: sessionID.String(),
		SeatCodes: []string{"A-1"},
		UserID:    "user-1",
		CartID:    first.CartID,
	})
	if err != nil {
		t.Fatalf("re-hold by same cart: %v", err)
	}
	if !second.HeldUntil.After(first.HeldUntil) && !second.HeldUntil.Equal(first.HeldUntil) {
		t.Errorf("re-hold did not refresh deadline: %v then %v", first.HeldUntil, second.HeldUntil)
	}
}

func TestHoldTTLClamped(t *testing.T) {
	svc, _, sessionID := newTestService(t)
	ctx := context.Background()

	cases := []struct {
		name    string
		minutes int
		want    time.Duration
	}{
		{"default", 0, testHolds.DefaultTTL},
		{"below minimum", 1, testHolds.MinTTL},
		{"above maximum", 120, testHolds.MaxTTL},
		{"in range", 15, 15 * time.Minute},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp, err := svc.HoldSeats(ctx, HoldSeatsRequest{
				SessionID:  sessionID.String(),
				SeatCodes:  []string{"A-1"},
				UserID:     "user-1",
				TTLMinutes: tc.minutes,
			})
			if err != nil {
				t.Fatalf("HoldSeats: %v", err)
			}
			if got := time.Duration(resp.TTLSeconds) * time.Second; got != tc.want {
				t.Errorf("ttl = %v, want %v", got, tc.want)
			}

			if _, err := svc.ReleaseSeats(ctx, ReleaseSeatsRequest{CartID: resp.CartID}); err != nil {
				t.Fatalf("cleanup release: %v", err)
			}
		})
	}
}

func TestReleaseSeats(t *testing.T) {
	svc, _, sessionID := newTestService(t)
	ctx := context.Background()

	hold, err := svc.HoldSeats(ctx, HoldSeatsRequest{
		SessionID: sessionID.String(),
		SeatCodes: []string{"A-1", "A-2"},
		UserID:    "user-1",
	})
	if err != nil {
		t.Fatalf("hold: %v", err)
	}

	// Wrong owner releases nothing and does not fail.
	resp, err := svc.ReleaseSeats(ctx, ReleaseSeatsRequest{CartID: hold.CartID, UserID: "intruder"})
	if err != nil {
		t.Fatalf("release with wrong user: %v", err)
	}
	if resp.Count != 0 {
		t.Fatalf("wrong user released %d seats, want 0", resp.Count)
	}

	// Partial release only frees the named seat.
	resp, err = svc.ReleaseSeats(ctx, ReleaseSeatsRequest{
		CartID:    hold.CartID,
		UserID:    "user-1",
		SeatCodes: []string{"A-1"},
	})
	if err != nil {
		t.Fatalf("partial release: %v", err)
	}
	if resp.Count != 1 || resp.Released[0] != "A-1" {
		t.Fatalf("partial release = %+v, want just A-1", resp)
	}

	// Releasing already-released seats is a quiet no-op.
	resp, err = svc.ReleaseSeats(ctx, ReleaseSeatsRequest{
		CartID:    hold.CartID,
		SeatCodes: []string{"A-1"},
	})
	if err != nil {
		t.Fatalf("repeat release: %v", err)
	}
	if resp.Count != 0 {
		t.Fatalf("repeat release freed %d seats, want 0", resp.Count)
	}

	// Full-cart release frees the rest.
	resp, err = svc.ReleaseSeats(ctx, ReleaseSeatsRequest{CartID: hold.CartID})
	if err != nil {
		t.Fatalf("full release: %v", err)
	}
	if resp.Count != 1 || resp.Released[0] != "A-2" {
		t.Fatalf("full release = %+v, want just A-2", resp)
	}
}

func TestClaimStates(t *testing.T) {
	svc, repo, sessionID := newTestService(t)
	ctx := context.Background()

	hold, err := svc.HoldSeats(ctx, HoldSeatsRequest{
		SessionID: sessionID.String(),
		SeatCodes: []string{"A-1", "A-2"},
		UserID:    "user-1",
	})
	if err != nil {
		t.Fatalf("hold: %v", err)
	}
	cartID, err := uuid.Parse(hold.CartID)
	if err != nil {
		t.Fatalf("parse cart id: %v", err)
	}

	seats, err := repo.ResolveSeatCodes(ctx, sessionID, []string{"A-1", "A-2"})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	seatIDs := []uuid.UUID{seats[0].ID, seats[1].ID}

	claims, err := svc.ClaimStates(ctx, cartID, seatIDs)
	if err != nil {
		t.Fatalf("ClaimStates: %v", err)
	}
	for _, claim := range claims {
		if claim.State != ClaimHeld {
			t.Errorf("seat %s state = %s, want HELD", claim.SeatCode, claim.State)
		}
	}

	if err := svc.MarkSold(ctx, cartID, seatIDs); err != nil {
		t.Fatalf("MarkSold: %v", err)
	}

	claims, err = svc.ClaimStates(ctx, cartID, seatIDs)
	if err != nil {
		t.Fatalf("ClaimStates after sale: %v", err)
	}
	for _, claim := range claims {
		if claim.State != ClaimSoldSelf {
			t.Errorf("seat %s state = %s, want SOLD_SELF", claim.SeatCode, claim.State)
		}
	}

	claims, err = svc.ClaimStates(ctx, uuid.New(), seatIDs)
	if err != nil {
		t.Fatalf("ClaimStates for other cart: %v", err)
	}
	for _, claim := range claims {
		if claim.State != ClaimSoldOther {
			t.Errorf("seat %s state = %s, want SOLD_OTHER", claim.SeatCode, claim.State)
		}
	}
}

func TestMarkSoldRejectsLapsedClaim(t *testing.T) {
	svc, repo, sessionID := newTestService(t)
	ctx := context.Background()

	hold, err := svc.HoldSeats(ctx, HoldSeatsRequest{
		SessionID: sessionID.String(),
		SeatCodes: []string{"A-1"},
		UserID:    "user-1",
	})
	if err != nil {
		t.Fatalf("hold: %v", err)
	}
	cartID, _ := uuid.Parse(hold.CartID)

	repo.expireHold("A-1", sessionID)

	seats, _ := repo.ResolveSeatCodes(ctx, sessionID, []string{"A-1"})
	err = svc.MarkSold(ctx, cartID, []uuid.UUID{seats[0].ID})
	if !errors.Is(err, ErrSeatOccupied) {
		t.Fatalf("MarkSold over lapsed hold = %v, want SEAT_OCCUPIED", err)
	}
}

func TestSeatMapStaleFallback(t *testing.T) {
	svc, repo, sessionID := newTestService(t)
	ctx := context.Background()

	fresh, err := svc.SeatMap(ctx, sessionID.String(), false)
	if err != nil {
		t.Fatalf("SeatMap: %v", err)
	}
	if fresh.Stale {
		t.Fatal("fresh projection marked stale")
	}

	repo.failReads = true

	stale, err := svc.SeatMap(ctx, sessionID.String(), false)
	if err != nil {
		t.Fatalf("SeatMap with store down: %v", err)
	}
	if !stale.Stale {
		t.Fatal("fallback projection not marked stale")
	}
	if stale.Summary.Total != fresh.Summary.Total {
		t.Fatalf("stale projection has %d seats, want %d", stale.Summary.Total, fresh.Summary.Total)
	}

	// Outside the freshness window the fallback is refused.
	svc.staleMu.Lock()
	entry := svc.stale[sessionID.String()]
	entry.storedAt = time.Now().Add(-time.Hour)
	svc.stale[sessionID.String()] = entry
	svc.staleMu.Unlock()

	if _, err := svc.SeatMap(ctx, sessionID.String(), false); err == nil {
		t.Fatal("expected error once stale copy aged out")
	}
}

func TestSeatMapEnsureProvisioning(t *testing.T) {
	repo := newFakeRepo()
	sessionID := uuid.New()
	plans := []layout.SeatPlan{
		{Row: "A", Number: 1, SeatCode: "A-1", Type: layout.SeatTypeStandard, Price: 10},
		{Row: "A", Number: 2, SeatCode: "A-2", Type: layout.SeatTypeStandard, Price: 10},
	}

	svc := NewService(repo, fakeCache{}, testHolds, 2*time.Minute)
	svc.SetCartService(&fakeCarts{})
	svc.SetSessionProvider(&fakeSessions{plans: map[uuid.UUID][]layout.SeatPlan{sessionID: plans}})
	ctx := context.Background()

	// Without the flag the read reports the session as-is and provisions
	// nothing.
	plain, err := svc.SeatMap(ctx, sessionID.String(), false)
	if err != nil {
		t.Fatalf("SeatMap: %v", err)
	}
	if plain.Summary.Total != 0 {
		t.Fatalf("unprovisioned session shows %d seats, want 0", plain.Summary.Total)
	}
	if n, _ := repo.CountBySession(ctx, sessionID); n != 0 {
		t.Fatalf("plain read provisioned %d seats", n)
	}

	ensured, err := svc.SeatMap(ctx, sessionID.String(), true)
	if err != nil {
		t.Fatalf("SeatMap with ensure: %v", err)
	}
	if ensured.Summary.Total != 2 {
		t.Fatalf("ensured seat map has %d seats, want 2", ensured.Summary.Total)
	}
	if n, _ := repo.CountBySession(ctx, sessionID); n != 2 {
		t.Fatalf("ensure persisted %d seat rows, want 2", n)
	}

	// Unknown sessions fail either way.
	if _, err := svc.SeatMap(ctx, uuid.NewString(), true); err == nil {
		t.Fatal("expected error for unknown session")
	}
}

func TestSweepExpiredClearsOnlyLapsed(t *testing.T) {
	svc, repo, sessionID := newTestService(t)
	ctx := context.Background()

	if _, err := svc.HoldSeats(ctx, HoldSeatsRequest{
		SessionID: sessionID.String(),
		SeatCodes: []string{"A-1", "A-2"},
		UserID:    "user-1",
	}); err != nil {
		t.Fatalf("hold: %v", err)
	}

	repo.expireHold("A-1", sessionID)

	cleared, err := repo.SweepExpired(ctx, time.Now().UTC())
	if err != nil {
		t.Fatalf("SweepExpired: %v", err)
	}
	if cleared != 1 {
		t.Fatalf("sweep cleared %d holds, want 1", cleared)
	}

	seatMap, err := svc.SeatMap(ctx, sessionID.String(), false)
	if err != nil {
		t.Fatalf("SeatMap: %v", err)
	}
	statuses := seatMap.SeatStatuses()
	if statuses["A-1"] != string(SeatAvailable) {
		t.Errorf("swept seat status = %s, want AVAILABLE", statuses["A-1"])
	}
	if statuses["A-2"] != string(SeatHeld) {
		t.Errorf("live hold status = %s, want HELD", statuses["A-2"])
	}
}

func TestEnsureSeatsIdempotent(t *testing.T) {
	svc, repo, sessionID := newTestService(t)
	ctx := context.Background()

	plans := []layout.SeatPlan{
		{Row: "A", Number: 1, SeatCode: "A-1", Type: layout.SeatTypeStandard, Price: 10},
	}
	count, err := svc.EnsureSeats(ctx, sessionID, plans)
	if err != nil {
		t.Fatalf("EnsureSeats: %v", err)
	}
	if count != 3 {
		t.Fatalf("repeat EnsureSeats count = %d, want existing 3", count)
	}

	total, _ := repo.CountBySession(ctx, sessionID)
	if total != 3 {
		t.Fatalf("seat rows = %d after repeat provisioning, want 3", total)
	}
}
