package constants

import (
	"fmt"
	"time"
)

// Redis cache keys and TTLs.
// Pattern: cineseat:{module}:{operation}:{identifier}

// ================== CACHE TTL DURATIONS ==================

const (
	TTL_SESSION_DETAIL = 2 * time.Hour // session metadata is effectively immutable once on sale

	// Seat maps are contended, real-time-sensitive data: keep the cache just
	// long enough to absorb read bursts.
	TTL_SEAT_MAP = 5 * time.Second
)

// ================== REDIS KEY PREFIXES ==================

const (
	CACHE_PREFIX = "cineseat"

	CACHE_KEY_SESSION_DETAIL = CACHE_PREFIX + ":sessions:detail:uuid:" // + session-id
	CACHE_KEY_SEAT_MAP       = CACHE_PREFIX + ":inventory:seatmap:"    // + session-id
)

// BuildSeatMapKey returns the cache key for a session's seat projection.
func BuildSeatMapKey(sessionID string) string {
	return fmt.Sprintf("%s%s", CACHE_KEY_SEAT_MAP, sessionID)
}

// BuildSessionDetailKey returns the cache key for a session's metadata.
func BuildSessionDetailKey(sessionID string) string {
	return fmt.Sprintf("%s%s", CACHE_KEY_SESSION_DETAIL, sessionID)
}
