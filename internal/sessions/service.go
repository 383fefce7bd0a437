package sessions

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"cineseat/internal/layout"
	"cineseat/internal/shared/constants"
	"cineseat/internal/shared/utils/fault"
	"cineseat/pkg/cache"
	"cineseat/pkg/logger"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrSessionNotFound is returned for unknown session IDs.
var ErrSessionNotFound = fault.New("SESSION_NOT_FOUND", http.StatusNotFound, "session not found")

// SeatSeeder provisions the concrete seat rows for a session. Implemented by
// the inventory service; declared locally to keep the dependency one-way.
type SeatSeeder interface {
	EnsureSeats(ctx context.Context, sessionID uuid.UUID, plans []layout.SeatPlan) (int, error)
}

type Service interface {
	CreateSession(ctx context.Context, req CreateSessionRequest) (*SessionResponse, error)
	GetSession(ctx context.Context, id string) (*SessionResponse, error)
	ListSessions(ctx context.Context, q ListSessionsQuery) ([]SessionResponse, error)

	// SessionSeatPlan re-expands a session's layout. Expansion is
	// deterministic, so inventory uses it both to seed seats lazily and to
	// verify a session exists.
	SessionSeatPlan(ctx context.Context, sessionID uuid.UUID) ([]layout.SeatPlan, error)
}

type service struct {
	repo   Repository
	cache  cache.Service
	seeder SeatSeeder
	log    *logger.Logger
}

func NewService(repo Repository, cacheService cache.Service) *service {
	return &service{
		repo:  repo,
		cache: cacheService,
		log:   logger.GetDefault(),
	}
}

// SetSeatSeeder injects the inventory service after both are constructed.
func (s *service) SetSeatSeeder(seeder SeatSeeder) {
	s.seeder = seeder
}

func (s *service) CreateSession(ctx context.Context, req CreateSessionRequest) (*SessionResponse, error) {
	vipPrice := req.VIPPrice
	if vipPrice == 0 {
		vipPrice = req.BasePrice
	}

	prices := layout.Prices{Base: req.BasePrice, VIP: vipPrice}
	plans, err := layout.Expand(req.Layout, prices)
	if err != nil {
		return nil, err
	}

	session := &Session{
		MovieTitle: req.MovieTitle,
		Auditorium: req.Auditorium,
		StartsAt:   req.StartsAt.UTC(),
		BasePrice:  req.BasePrice,
		VIPPrice:   vipPrice,
		Layout:     req.Layout,
	}
	if err := s.repo.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	if s.seeder != nil {
		count, err := s.seeder.EnsureSeats(ctx, session.ID, plans)
		if err != nil {
			// The session row exists; seats will be provisioned lazily on the
			// first seat-map read instead.
			s.log.WithError(err).Warn("seat provisioning deferred", "session_id", session.ID)
		} else {
			session.SeatsGenerated = true
			if err := s.repo.MarkSeatsGenerated(ctx, session.ID); err != nil {
				return nil, fmt.Errorf("failed to mark seats generated: %w", err)
			}
			s.log.LogSeatsGenerated(ctx, session.ID.String(), count)
		}
	}

	resp := toResponse(session, len(plans))
	if err := s.cache.Set(ctx, constants.BuildSessionDetailKey(resp.ID), resp, constants.TTL_SESSION_DETAIL); err != nil {
		s.log.WithError(err).Warn("failed to cache session detail", "session_id", resp.ID)
	}
	return resp, nil
}

func (s *service) GetSession(ctx context.Context, id string) (*SessionResponse, error) {
	sessionID, err := uuid.Parse(id)
	if err != nil {
		return nil, ErrSessionNotFound.Wrap("invalid session id %q", id)
	}

	var cached SessionResponse
	if err := s.cache.Get(ctx, constants.BuildSessionDetailKey(id), &cached); err == nil {
		return &cached, nil
	}

	session, err := s.repo.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	resp := toResponse(session, s.seatCount(session))
	if err := s.cache.Set(ctx, constants.BuildSessionDetailKey(id), resp, constants.TTL_SESSION_DETAIL); err != nil {
		s.log.WithError(err).Warn("failed to cache session detail", "session_id", id)
	}
	return resp, nil
}

func (s *service) ListSessions(ctx context.Context, q ListSessionsQuery) ([]SessionResponse, error) {
	var from *uuid.UUID
	if q.From != "" {
		id, err := uuid.Parse(q.From)
		if err != nil {
			return nil, ErrSessionNotFound.Wrap("invalid cursor %q", q.From)
		}
		from = &id
	}
	limit := q.Limit
	if limit == 0 {
		limit = 50
	}

	list, err := s.repo.List(ctx, from, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}

	out := make([]SessionResponse, 0, len(list))
	for i := range list {
		out = append(out, *toResponse(&list[i], s.seatCount(&list[i])))
	}
	return out, nil
}

func (s *service) SessionSeatPlan(ctx context.Context, sessionID uuid.UUID) ([]layout.SeatPlan, error) {
	session, err := s.repo.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return layout.Expand(session.Layout, session.Prices())
}

// seatCount re-derives the seat total from the stored layout. Sessions that
// were persisted with an invalid layout report zero rather than failing reads.
func (s *service) seatCount(session *Session) int {
	plans, err := layout.Expand(session.Layout, session.Prices())
	if err != nil {
		return 0
	}
	return len(plans)
}
