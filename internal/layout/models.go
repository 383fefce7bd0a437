package layout

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// SeatType classifies a physical seat.
type SeatType string

const (
	SeatTypeStandard   SeatType = "STANDARD"
	SeatTypeVIP        SeatType = "VIP"
	SeatTypeWheelchair SeatType = "WHEELCHAIR"

	// SeatTypeGap marks a non-seat in explicit layouts (aisles, pillars).
	// Gap entries are skipped during expansion and never become inventory.
	SeatTypeGap SeatType = "GAP"
)

// Layout is the declarative auditorium shape a session is provisioned from.
// Exactly one of the two variants must be populated:
//
//   - RowsConfig: row/seat-count rules, optionally with accessible-seat
//     overrides and VIP percentage zones (legacy shape)
//   - Rows: a fully enumerated seat list (detailed shape)
//
// The variant is resolved once by Expand; callers never branch on it.
type Layout struct {
	RowsConfig []RowConfig      `json:"rows_config,omitempty"`
	Accessible map[string][]int `json:"accessible,omitempty"`
	VIPZones   []VIPZone        `json:"vip_zones,omitempty"`

	Rows []SeatSpec `json:"rows,omitempty"`
}

// RowConfig declares one row of the rows-config variant.
type RowConfig struct {
	Row       string `json:"row"`
	SeatCount int    `json:"seat_count"`
}

// VIPZone marks a percentage range of the listed rows as VIP. From and To are
// fractions in [0, 1]; seat n of a row with c seats is inside the zone when
// floor(From*c)+1 <= n <= ceil(To*c).
type VIPZone struct {
	Rows []string `json:"rows"`
	From float64  `json:"from"`
	To   float64  `json:"to"`
}

// SeatSpec is one fully specified seat of the explicit variant.
type SeatSpec struct {
	Row    string   `json:"row"`
	Number int      `json:"number"`
	Type   SeatType `json:"type,omitempty"`
}

// SeatPlan is one concrete seat produced by the expander, ready to be
// persisted as inventory.
type SeatPlan struct {
	Row      string
	Number   int
	SeatCode string
	Type     SeatType
	Price    float64
}

// Value implements driver.Valuer so layouts persist as JSONB.
func (l Layout) Value() (driver.Value, error) {
	return json.Marshal(l)
}

// Scan implements sql.Scanner for JSONB columns.
func (l *Layout) Scan(value interface{}) error {
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, l)
	case string:
		return json.Unmarshal([]byte(v), l)
	case nil:
		*l = Layout{}
		return nil
	default:
		return fmt.Errorf("unsupported layout column type %T", value)
	}
}
