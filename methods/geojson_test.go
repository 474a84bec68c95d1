package methods

import (
	"encoding/hex"
	"math"
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkb"
	"github.com/paulmach/orb/geojson"
)

func TestGeoJsonToWKBRoundTrip(t *testing.T) {
	point := orb.Point{-62.5, -27.5}
	feature := geojson.NewFeature(point)

	wkbHex, err := GeoJsonToWKB(*feature)
	if err != nil {
		t.Fatalf("GeoJsonToWKB failed: %v", err)
	}

	raw, err := hex.DecodeString(wkbHex)
	if err != nil {
		t.Fatalf("not valid hex: %v", err)
	}
	geom, err := wkb.Unmarshal(raw)
	if err != nil {
		t.Fatalf("wkb.Unmarshal failed: %v", err)
	}

	got, ok := geom.(orb.Point)
	if !ok {
		t.Fatalf("decoded %T, want orb.Point", geom)
	}
	if math.Abs(got[0]-point[0]) > 1e-9 || math.Abs(got[1]-point[1]) > 1e-9 {
		t.Errorf("round trip moved point: got %v, want %v", got, point)
	}
}

func TestGeoJsonToWKBPromotesPolygon(t *testing.T) {
	polygon := orb.Polygon{{{0, 0}, {1, 0}, {1, 1}, {0, 0}}}
	feature := geojson.NewFeature(polygon)

	wkbHex, err := GeoJsonToWKB(*feature)
	if err != nil {
		t.Fatalf("GeoJsonToWKB failed: %v", err)
	}
	raw, _ := hex.DecodeString(wkbHex)
	geom, err := wkb.Unmarshal(raw)
	if err != nil {
		t.Fatalf("wkb.Unmarshal failed: %v", err)
	}
	if _, ok := geom.(orb.MultiPolygon); !ok {
		t.Errorf("decoded %T, want orb.MultiPolygon", geom)
	}
}

func TestSlugify(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Radios Censales", "radios_censales"},
		{"UPPER-case.name", "upper_case_name"},
		{"already_ok_1", "already_ok_1"},
		{"ñandú", "_and_"},
	}
	for _, tc := range cases {
		if got := Slugify(tc.in); got != tc.want {
			t.Errorf("Slugify(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestSlugifyIdempotent(t *testing.T) {
	in := "Árbol Viejo 3"
	once := Slugify(in)
	twice := Slugify(once)
	if once != twice {
		t.Errorf("Slugify not idempotent: %q -> %q", once, twice)
	}
}

func TestCleanString(t *testing.T) {
	in := "abc\x00def"
	if got := CleanString(in); got != "abcdef" {
		t.Errorf("CleanString(%q) = %q", in, got)
	}
}
