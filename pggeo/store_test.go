package pggeo

import (
	"strings"
	"testing"
)

func TestQuoteIdent(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"geom", `"geom"`},
		{"carto_censal", `"carto_censal"`},
		{`evil"name`, `"evil""name"`},
	}
	for _, tc := range cases {
		if got := quoteIdent(tc.in); got != tc.want {
			t.Errorf("quoteIdent(%q) = %s, want %s", tc.in, got, tc.want)
		}
	}
}

func TestCalculateSafeBatchSize(t *testing.T) {
	cases := []struct {
		fields int
		want   int
	}{
		{1, 2000},   // capped high
		{5, 2000},   // still capped
		{100, 600},  // 60000/100
		{1000, 100}, // floored low
	}
	for _, tc := range cases {
		if got := calculateSafeBatchSize(tc.fields); got != tc.want {
			t.Errorf("calculateSafeBatchSize(%d) = %d, want %d", tc.fields, got, tc.want)
		}
	}
}

func TestGeomExprReprojectsOnlyWhenNeeded(t *testing.T) {
	same := GeomExpr("0101", StorageSRID)
	if strings.Contains(same.SQL, "ST_Transform") {
		t.Errorf("source 4326 should not reproject: %s", same.SQL)
	}
	if !strings.Contains(same.SQL, "ST_SetSRID") {
		t.Errorf("missing SRID tag: %s", same.SQL)
	}

	other := GeomExpr("0101", 22185)
	if !strings.Contains(other.SQL, "ST_Transform") {
		t.Errorf("source 22185 must reproject: %s", other.SQL)
	}
	if !strings.Contains(other.SQL, "22185") || !strings.Contains(other.SQL, "4326") {
		t.Errorf("SRIDs missing from expression: %s", other.SQL)
	}
}

func TestDecodeFeatureRows(t *testing.T) {
	rows := []featureRow{
		{GeoJSON: []byte(`{"type":"Point","coordinates":[-62.5,-27.5]}`), Properties: []byte(`{"jur":"82"}`)},
		{GeoJSON: []byte(`not json`)},
		{GeoJSON: []byte(`{"type":"Point","coordinates":[0,0]}`), Properties: []byte(`broken`)},
		{GeoJSON: []byte(`{"type":"Point","coordinates":[1,1]}`)},
	}

	fc := decodeFeatureRows("radios", rows)
	if len(fc.Features) != 2 {
		t.Fatalf("decoded %d features, want 2", len(fc.Features))
	}
	if fc.Features[0].Properties["jur"] != "82" {
		t.Errorf("properties lost: %v", fc.Features[0].Properties)
	}
	if len(fc.Features[1].Properties) != 0 {
		t.Errorf("row without properties decoded %v", fc.Features[1].Properties)
	}
}

func TestIndexName(t *testing.T) {
	if got := IndexName("qgis_radios_17"); got != "qgis_radios_17_geom_gix" {
		t.Errorf("IndexName = %s", got)
	}
}
