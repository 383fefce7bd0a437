package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository interface for seat inventory operations. Every mutation is a
// guarded statement: the precondition lives in the WHERE clause and the
// affected-row count is the verdict, so concurrent writers cannot interleave
// between a check and its write.
type Repository interface {
	CreateSeats(ctx context.Context, seats []Seat) error
	CountBySession(ctx context.Context, sessionID uuid.UUID) (int64, error)
	GetSeatsBySession(ctx context.Context, sessionID uuid.UUID) ([]Seat, error)
	GetSeatsByIDs(ctx context.Context, seatIDs []uuid.UUID) ([]Seat, error)
	ResolveSeatCodes(ctx context.Context, sessionID uuid.UUID, codes []string) ([]Seat, error)

	HoldSeats(ctx context.Context, sessionID uuid.UUID, seatIDs []uuid.UUID, cartID uuid.UUID, userID string, heldUntil, now time.Time) error
	ReleaseSeats(ctx context.Context, cartID uuid.UUID, userID string, seatIDs []uuid.UUID, seatCodes []string, now time.Time) ([]Seat, error)
	MarkSold(ctx context.Context, cartID uuid.UUID, seatIDs []uuid.UUID, now time.Time) (int64, error)
	SweepExpired(ctx context.Context, now time.Time) (int64, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// CreateSeats inserts the expanded seat set. Rows that already exist for the
// (session, row, number) key are skipped, which makes provisioning a safe
// no-op to repeat.
func (r *repository) CreateSeats(ctx context.Context, seats []Seat) error {
	if len(seats) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "session_id"}, {Name: "row"}, {Name: "number"}},
			DoNothing: true,
		}).
		CreateInBatches(seats, 500).Error
}

func (r *repository) CountBySession(ctx context.Context, sessionID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&Seat{}).
		Where("session_id = ?", sessionID).
		Count(&count).Error
	return count, err
}

func (r *repository) GetSeatsBySession(ctx context.Context, sessionID uuid.UUID) ([]Seat, error) {
	var seats []Seat
	err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("row ASC, number ASC").
		Find(&seats).Error
	return seats, err
}

func (r *repository) GetSeatsByIDs(ctx context.Context, seatIDs []uuid.UUID) ([]Seat, error) {
	var seats []Seat
	if len(seatIDs) == 0 {
		return seats, nil
	}
	err := r.db.WithContext(ctx).
		Where("id IN ?", seatIDs).
		Order("row ASC, number ASC").
		Find(&seats).Error
	return seats, err
}

func (r *repository) ResolveSeatCodes(ctx context.Context, sessionID uuid.UUID, codes []string) ([]Seat, error) {
	var seats []Seat
	if len(codes) == 0 {
		return seats, nil
	}
	err := r.db.WithContext(ctx).
		Where("session_id = ? AND seat_code IN ?", sessionID, codes).
		Order("row ASC, number ASC").
		Find(&seats).Error
	return seats, err
}

// HoldSeats claims every requested seat in one guarded update. A seat
// qualifies when it is AVAILABLE, carries a lapsed hold, or is already held by
// the same cart (extending a hold refreshes its deadline). If fewer rows than
// requested qualify the transaction rolls back and nothing is held.
func (r *repository) HoldSeats(ctx context.Context, sessionID uuid.UUID, seatIDs []uuid.UUID, cartID uuid.UUID, userID string, heldUntil, now time.Time) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&Seat{}).
			Where("session_id = ? AND id IN ?", sessionID, seatIDs).
			Where("status = ? OR (status = ? AND (held_until <= ? OR held_by_cart_id = ?))",
				SeatAvailable, SeatHeld, now, cartID).
			Updates(map[string]interface{}{
				"status":          SeatHeld,
				"held_until":      heldUntil,
				"held_by_cart_id": cartID,
				"held_by_user_id": userID,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected != int64(len(seatIDs)) {
			return ErrSeatOccupied
		}
		return nil
	})
}

// ReleaseSeats frees the cart's held seats and reports which ones were freed.
// Seats the cart no longer holds are skipped rather than failed, so releases
// are idempotent. Empty seatIDs and seatCodes release the whole cart; a
// non-empty userID additionally requires the hold owner to match.
func (r *repository) ReleaseSeats(ctx context.Context, cartID uuid.UUID, userID string, seatIDs []uuid.UUID, seatCodes []string, now time.Time) ([]Seat, error) {
	var released []Seat
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		q := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("status = ? AND held_by_cart_id = ?", SeatHeld, cartID)
		if userID != "" {
			q = q.Where("held_by_user_id = ?", userID)
		}
		if len(seatIDs) > 0 && len(seatCodes) > 0 {
			q = q.Where("id IN ? OR seat_code IN ?", seatIDs, seatCodes)
		} else if len(seatIDs) > 0 {
			q = q.Where("id IN ?", seatIDs)
		} else if len(seatCodes) > 0 {
			q = q.Where("seat_code IN ?", seatCodes)
		}
		if err := q.Order("row ASC, number ASC").Find(&released).Error; err != nil {
			return err
		}
		if len(released) == 0 {
			return nil
		}

		ids := make([]uuid.UUID, len(released))
		for i := range released {
			ids[i] = released[i].ID
		}
		return tx.Model(&Seat{}).
			Where("id IN ?", ids).
			Updates(map[string]interface{}{
				"status":          SeatAvailable,
				"held_until":      nil,
				"held_by_cart_id": nil,
				"held_by_user_id": nil,
			}).Error
	})
	return released, err
}

// MarkSold converts the cart's claims to SOLD. The predicate accepts live
// holds owned by the cart and rows it already sold, so a replay affects the
// same rows again and still reports a full count.
func (r *repository) MarkSold(ctx context.Context, cartID uuid.UUID, seatIDs []uuid.UUID, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&Seat{}).
		Where("id IN ? AND held_by_cart_id = ?", seatIDs, cartID).
		Where("(status = ? AND held_until > ?) OR status = ?", SeatHeld, now, SeatSold).
		Updates(map[string]interface{}{
			"status":     SeatSold,
			"held_until": nil,
		})
	return res.RowsAffected, res.Error
}

// SweepExpired clears lapsed holds back to AVAILABLE. Purely hygiene: readers
// and write predicates already ignore lapsed holds.
func (r *repository) SweepExpired(ctx context.Context, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&Seat{}).
		Where("status = ? AND held_until <= ?", SeatHeld, now).
		Updates(map[string]interface{}{
			"status":          SeatAvailable,
			"held_until":      nil,
			"held_by_cart_id": nil,
			"held_by_user_id": nil,
		})
	return res.RowsAffected, res.Error
}
