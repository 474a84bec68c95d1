package methods

import (
	"testing"
)

func TestParseBBox(t *testing.T) {
	box, err := ParseBBox("-63,-28,-62,-27")
	if err != nil {
		t.Fatalf("ParseBBox failed: %v", err)
	}
	if box.MinX != -63 || box.MinY != -28 || box.MaxX != -62 || box.MaxY != -27 {
		t.Errorf("unexpected box: %+v", box)
	}
}

func TestParseBBoxRejectsBadInput(t *testing.T) {
	cases := []struct {
		name string
		in   string
	}{
		{"empty", ""},
		{"three components", "1,2,3"},
		{"five components", "1,2,3,4,5"},
		{"not a number", "1,2,x,4"},
		{"nan", "1,2,NaN,4"},
		{"infinity", "1,2,+Inf,4"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := ParseBBox(tc.in); err == nil {
				t.Errorf("ParseBBox(%q) = nil error, want failure", tc.in)
			}
		})
	}
}

func TestBBoxString(t *testing.T) {
	box := BBox{MinX: -63.5, MinY: -28, MaxX: -62, MaxY: -27.25}
	got := box.String()
	want := "-63.5,-28,-62,-27.25"
	if got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
