package layout

import (
	"errors"
	"reflect"
	"testing"
)

var testPrices = Prices{Base: 10, VIP: 18}

func TestExpandVIPZoneBoundaries(t *testing.T) {
	l := Layout{
		RowsConfig: []RowConfig{{Row: "A", SeatCount: 10}},
		VIPZones:   []VIPZone{{Rows: []string{"A"}, From: 0.3, To: 0.7}},
	}

	plans, err := Expand(l, testPrices)
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	if len(plans) != 10 {
		t.Fatalf("expected 10 seats, got %d", len(plans))
	}

	// floor(0.3*10)+1 = 4 through ceil(0.7*10) = 7
	for _, p := range plans {
		want := SeatTypeStandard
		if p.Number >= 4 && p.Number <= 7 {
			want = SeatTypeVIP
		}
		if p.Type != want {
			t.Errorf("seat %s: type = %s, want %s", p.SeatCode, p.Type, want)
		}
		wantPrice := testPrices.Base
		if want == SeatTypeVIP {
			wantPrice = testPrices.VIP
		}
		if p.Price != wantPrice {
			t.Errorf("seat %s: price = %v, want %v", p.SeatCode, p.Price, wantPrice)
		}
	}
}

func TestExpandAccessibleOverride(t *testing.T) {
	l := Layout{
		RowsConfig: []RowConfig{{Row: "B", SeatCount: 5}},
		Accessible: map[string][]int{"B": {1, 2}},
	}

	plans, err := Expand(l, testPrices)
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}

	types := map[int]SeatType{}
	for _, p := range plans {
		types[p.Number] = p.Type
	}
	if types[1] != SeatTypeWheelchair || types[2] != SeatTypeWheelchair {
		t.Errorf("accessible seats B1/B2 not wheelchair: %v", types)
	}
	if types[3] != SeatTypeStandard {
		t.Errorf("seat B3 = %s, want STANDARD", types[3])
	}
}

func TestExpandVIPWinsOverAccessible(t *testing.T) {
	l := Layout{
		RowsConfig: []RowConfig{{Row: "C", SeatCount: 4}},
		Accessible: map[string][]int{"C": {2}},
		VIPZones:   []VIPZone{{Rows: []string{"C"}, From: 0, To: 1}},
	}

	plans, err := Expand(l, testPrices)
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	for _, p := range plans {
		if p.Type != SeatTypeVIP {
			t.Errorf("seat %s: type = %s, want VIP", p.SeatCode, p.Type)
		}
	}
}

func TestExpandExplicitRows(t *testing.T) {
	l := Layout{
		Rows: []SeatSpec{
			{Row: "A", Number: 1, Type: SeatTypeVIP},
			{Row: "A", Number: 2, Type: SeatTypeGap},
			{Row: "A", Number: 3},
			{Row: "B", Number: 1, Type: SeatTypeWheelchair},
		},
	}

	plans, err := Expand(l, testPrices)
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}

	want := []SeatPlan{
		{Row: "A", Number: 1, SeatCode: "A-1", Type: SeatTypeVIP, Price: 18},
		{Row: "A", Number: 3, SeatCode: "A-3", Type: SeatTypeStandard, Price: 10},
		{Row: "B", Number: 1, SeatCode: "B-1", Type: SeatTypeWheelchair, Price: 10},
	}
	if !reflect.DeepEqual(plans, want) {
		t.Errorf("plans = %+v, want %+v", plans, want)
	}
}

func TestExpandDeterministic(t *testing.T) {
	l := Layout{
		RowsConfig: []RowConfig{
			{Row: "A", SeatCount: 8},
			{Row: "B", SeatCount: 12},
		},
		Accessible: map[string][]int{"B": {11, 12}},
		VIPZones:   []VIPZone{{Rows: []string{"A", "B"}, From: 0.25, To: 0.5}},
	}

	first, err := Expand(l, testPrices)
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	second, err := Expand(l, testPrices)
	if err != nil {
		t.Fatalf("Expand (second run): %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Error("two expansions of the same layout differ")
	}
}

func TestExpandInvalidLayouts(t *testing.T) {
	cases := []struct {
		name string
		l    Layout
	}{
		{"empty", Layout{}},
		{"both variants", Layout{
			RowsConfig: []RowConfig{{Row: "A", SeatCount: 1}},
			Rows:       []SeatSpec{{Row: "A", Number: 1}},
		}},
		{"non-positive seat count", Layout{
			RowsConfig: []RowConfig{{Row: "A", SeatCount: 0}},
		}},
		{"missing row label", Layout{
			RowsConfig: []RowConfig{{Row: "", SeatCount: 3}},
		}},
		{"zone out of bounds", Layout{
			RowsConfig: []RowConfig{{Row: "A", SeatCount: 3}},
			VIPZones:   []VIPZone{{Rows: []string{"A"}, From: 0.5, To: 1.5}},
		}},
		{"zone inverted", Layout{
			RowsConfig: []RowConfig{{Row: "A", SeatCount: 3}},
			VIPZones:   []VIPZone{{Rows: []string{"A"}, From: 0.8, To: 0.2}},
		}},
		{"explicit seat without number", Layout{
			Rows: []SeatSpec{{Row: "A"}},
		}},
		{"explicit all gaps", Layout{
			Rows: []SeatSpec{{Row: "A", Number: 1, Type: SeatTypeGap}},
		}},
		{"unknown seat type", Layout{
			Rows: []SeatSpec{{Row: "A", Number: 1, Type: "RECLINER"}},
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Expand(tc.l, testPrices)
			if !errors.Is(err, ErrLayoutInvalid) {
				t.Errorf("Expand() error = %v, want LAYOUT_INVALID", err)
			}
		})
	}
}
