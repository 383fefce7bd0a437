package layout

import (
	"fmt"
	"math"
	"net/http"

	"cineseat/internal/shared/utils/fault"
)

// ErrLayoutInvalid is returned when an auditorium layout cannot be expanded.
var ErrLayoutInvalid = fault.New("LAYOUT_INVALID", http.StatusBadRequest, "auditorium layout is invalid")

// Prices carries the session's two price tiers. Wheelchair seats use the base
// tier.
type Prices struct {
	Base float64
	VIP  float64
}

// Expand turns a layout and the session price tiers into the full ordered
// seat set. Expansion is deterministic: the same layout and prices always
// produce the same seats in the same order (row order, then 1-based seat
// number), so re-running it against a seeded session is a safe no-op.
func Expand(l Layout, prices Prices) ([]SeatPlan, error) {
	hasRules := len(l.RowsConfig) > 0
	hasExplicit := len(l.Rows) > 0

	switch {
	case hasRules && hasExplicit:
		return nil, ErrLayoutInvalid.Wrap("both rows_config and rows are set")
	case hasRules:
		return expandRules(l, prices)
	case hasExplicit:
		return expandExplicit(l.Rows, prices)
	default:
		return nil, ErrLayoutInvalid.Wrap("layout declares no rows")
	}
}

func expandRules(l Layout, prices Prices) ([]SeatPlan, error) {
	for _, z := range l.VIPZones {
		if z.From < 0 || z.To > 1 || z.From > z.To {
			return nil, ErrLayoutInvalid.Wrap("vip zone range [%v, %v] out of bounds", z.From, z.To)
		}
	}

	var plans []SeatPlan
	for _, rc := range l.RowsConfig {
		if rc.Row == "" {
			return nil, ErrLayoutInvalid.Wrap("row label is empty")
		}
		if rc.SeatCount <= 0 {
			return nil, ErrLayoutInvalid.Wrap("row %s has non-positive seat count %d", rc.Row, rc.SeatCount)
		}

		accessible := make(map[int]bool)
		for _, n := range l.Accessible[rc.Row] {
			accessible[n] = true
		}

		for n := 1; n <= rc.SeatCount; n++ {
			seatType := SeatTypeStandard
			switch {
			case inVIPZone(l.VIPZones, rc.Row, n, rc.SeatCount):
				seatType = SeatTypeVIP
			case accessible[n]:
				seatType = SeatTypeWheelchair
			}
			plans = append(plans, newPlan(rc.Row, n, seatType, prices))
		}
	}
	return plans, nil
}

func expandExplicit(rows []SeatSpec, prices Prices) ([]SeatPlan, error) {
	var plans []SeatPlan
	for _, spec := range rows {
		if spec.Type == SeatTypeGap {
			continue
		}
		if spec.Row == "" || spec.Number <= 0 {
			return nil, ErrLayoutInvalid.Wrap("explicit seat lacks row or number (%q, %d)", spec.Row, spec.Number)
		}
		seatType := spec.Type
		if seatType == "" {
			seatType = SeatTypeStandard
		}
		if seatType != SeatTypeStandard && seatType != SeatTypeVIP && seatType != SeatTypeWheelchair {
			return nil, ErrLayoutInvalid.Wrap("unknown seat type %q", seatType)
		}
		plans = append(plans, newPlan(spec.Row, spec.Number, seatType, prices))
	}
	if len(plans) == 0 {
		return nil, ErrLayoutInvalid.Wrap("explicit layout contains no seats")
	}
	return plans, nil
}

// inVIPZone reports whether seat n of a row with count seats falls inside any
// zone that lists the row.
func inVIPZone(zones []VIPZone, row string, n, count int) bool {
	for _, z := range zones {
		if !containsRow(z.Rows, row) {
			continue
		}
		lo := int(math.Floor(z.From*float64(count))) + 1
		hi := int(math.Ceil(z.To * float64(count)))
		if n >= lo && n <= hi {
			return true
		}
	}
	return false
}

func containsRow(rows []string, row string) bool {
	for _, r := range rows {
		if r == row {
			return true
		}
	}
	return false
}

func newPlan(row string, number int, seatType SeatType, prices Prices) SeatPlan {
	price := prices.Base
	if seatType == SeatTypeVIP {
		price = prices.VIP
	}
	return SeatPlan{
		Row:      row,
		Number:   number,
		SeatCode: fmt.Sprintf("%s-%d", row, number),
		Type:     seatType,
		Price:    price,
	}
}
