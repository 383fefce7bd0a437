package sessions

import (
	"context"
	"errors"
	"testing"
	"time"

	"cineseat/internal/layout"
	"cineseat/pkg/cache"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type fakeRepo struct {
	sessions map[uuid.UUID]*Session
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{sessions: make(map[uuid.UUID]*Session)}
}

func (r *fakeRepo) Create(_ context.Context, session *Session) error {
	session.ID = uuid.New()
	session.CreatedAt = time.Now()
	copied := *session
	r.sessions[session.ID] = &copied
	return nil
}

func (r *fakeRepo) GetByID(_ context.Context, id uuid.UUID) (*Session, error) {
	session, ok := r.sessions[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *session
	return &copied, nil
}

func (r *fakeRepo) List(_ context.Context, from *uuid.UUID, limit int) ([]Session, error) {
	var out []Session
	for _, s := range r.sessions {
		if limit > 0 && len(out) >= limit {
			break
		}
		out = append(out, *s)
	}
	return out, nil
}

func (r *fakeRepo) MarkSeatsGenerated(_ context.Context, id uuid.UUID) error {
	session, ok := r.sessions[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	session.SeatsGenerated = true
	return nil
}

type fakeCache struct{}

func (fakeCache) Get(_ context.Context, _ string, _ interface{}) error { return cache.ErrCacheMiss }
func (fakeCache) Set(_ context.Context, _ string, _ interface{}, _ time.Duration) error {
	return nil
}
func (fakeCache) Delete(_ context.Context, _ string) error { return nil }
func (fakeCache) Exists(_ context.Context, _ string) bool  { return false }
func (fakeCache) Ping(_ context.Context) error             { return nil }

type fakeSeeder struct {
	seeded map[uuid.UUID]int
	err    error
}

func (f *fakeSeeder) EnsureSeats(_ context.Context, sessionID uuid.UUID, plans []layout.SeatPlan) (int, error) {
	if f.err != nil {
		return 0, f.err
	}
	if f.seeded == nil {
		f.seeded = make(map[uuid.UUID]int)
	}
	f.seeded[sessionID] = len(plans)
	return len(plans), nil
}

func ruleLayout() layout.Layout {
	return layout.Layout{
		RowsConfig: []layout.RowConfig{
			{Row: "A", SeatCount: 4},
			{Row: "B", SeatCount: 4},
		},
		VIPZones: []layout.VIPZone{
			{Rows: []string{"B"}, From: 0.0, To: 0.5},
		},
	}
}

func TestCreateSessionSeedsSeats(t *testing.T) {
	repo := newFakeRepo()
	seeder := &fakeSeeder{}
	svc := NewService(repo, fakeCache{})
	svc.SetSeatSeeder(seeder)

	resp, err := svc.CreateSession(context.Background(), CreateSessionRequest{
		MovieTitle: "Stalker",
		Auditorium: "Auditorium 1",
		StartsAt:   time.Now().Add(24 * time.Hour),
		BasePrice:  10,
		VIPPrice:   15,
		Layout:     ruleLayout(),
	})
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	if resp.SeatCount != 8 {
		t.Fatalf("seat count = %d, want 8", resp.SeatCount)
	}
	if !resp.SeatsGenerated {
		t.Fatal("expected seats_generated to be set")
	}

	id := uuid.MustParse(resp.ID)
	if seeder.seeded[id] != 8 {
		t.Fatalf("seeder received %d plans, want 8", seeder.seeded[id])
	}
	if stored := repo.sessions[id]; !stored.SeatsGenerated {
		t.Fatal("seats_generated not persisted")
	}
}

func TestCreateSessionDefaultsVIPPrice(t *testing.T) {
	svc := NewService(newFakeRepo(), fakeCache{})

	resp, err := svc.CreateSession(context.Background(), CreateSessionRequest{
		MovieTitle: "La Haine",
		Auditorium: "Auditorium 2",
		StartsAt:   time.Now().Add(24 * time.Hour),
		BasePrice:  12,
		Layout:     ruleLayout(),
	})
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	if resp.VIPPrice != 12 {
		t.Fatalf("vip price = %v, want base price 12", resp.VIPPrice)
	}
}

func TestCreateSessionRejectsInvalidLayout(t *testing.T) {
	svc := NewService(newFakeRepo(), fakeCache{})

	_, err := svc.CreateSession(context.Background(), CreateSessionRequest{
		MovieTitle: "Ran",
		Auditorium: "Auditorium 1",
		StartsAt:   time.Now(),
		BasePrice:  10,
		Layout:     layout.Layout{},
	})
	if !errors.Is(err, layout.ErrLayoutInvalid) {
		t.Fatalf("err = %v, want layout invalid", err)
	}
}

func TestCreateSessionToleratesSeederFailure(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, fakeCache{})
	svc.SetSeatSeeder(&fakeSeeder{err: errors.New("db down")})

	resp, err := svc.CreateSession(context.Background(), CreateSessionRequest{
		MovieTitle: "Amadeus",
		Auditorium: "Auditorium 3",
		StartsAt:   time.Now().Add(time.Hour),
		BasePrice:  10,
		Layout:     ruleLayout(),
	})
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	if resp.SeatsGenerated {
		t.Fatal("seats_generated should stay false when seeding fails")
	}
	if repo.sessions[uuid.MustParse(resp.ID)] == nil {
		t.Fatal("session row should still exist")
	}
}

func TestGetSessionUnknownID(t *testing.T) {
	svc := NewService(newFakeRepo(), fakeCache{})

	if _, err := svc.GetSession(context.Background(), uuid.NewString()); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("err = %v, want session not found", err)
	}
	if _, err := svc.GetSession(context.Background(), "not-a-uuid"); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("err = %v, want session not found for malformed id", err)
	}
}

func TestSessionSeatPlanIsDeterministic(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, fakeCache{})

	resp, err := svc.CreateSession(context.Background(), CreateSessionRequest{
		MovieTitle: "Heat",
		Auditorium: "Auditorium 1",
		StartsAt:   time.Now().Add(time.Hour),
		BasePrice:  10,
		VIPPrice:   16,
		Layout:     ruleLayout(),
	})
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}

	id := uuid.MustParse(resp.ID)
	first, err := svc.SessionSeatPlan(context.Background(), id)
	if err != nil {
		t.Fatalf("SessionSeatPlan: %v", err)
	}
	second, err := svc.SessionSeatPlan(context.Background(), id)
	if err != nil {
		t.Fatalf("SessionSeatPlan: %v", err)
	}
	if len(first) != 8 || len(second) != 8 {
		t.Fatalf("plan sizes = %d, %d, want 8", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("plan diverged at %d: %+v vs %+v", i, first[i], second[i])
		}
	}

	if _, err := svc.SessionSeatPlan(context.Background(), uuid.New()); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("err = %v, want session not found", err)
	}
}
