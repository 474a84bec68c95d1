package models

import (
	"strings"
	"testing"
)

func TestParseLayerConfigVector(t *testing.T) {
	raw := []byte(`{"type":"vector","schema":"carto_censal","table":"pais8622","geomColumn":"geom","srid":4326,"popupProps":["cod_indec","jur"]}`)
	cfg, err := ParseLayerConfig(KindVector, raw)
	if err != nil {
		t.Fatalf("ParseLayerConfig failed: %v", err)
	}
	vector, ok := cfg.(*VectorConfig)
	if !ok {
		t.Fatalf("got %T, want *VectorConfig", cfg)
	}
	if vector.Table != "pais8622" || vector.SRID != 4326 {
		t.Errorf("unexpected config: %+v", vector)
	}
}

func TestParseLayerConfigMissingField(t *testing.T) {
	cases := []struct {
		kind    string
		raw     string
		missing string
	}{
		{KindVector, `{"type":"vector","schema":"public","table":"t"}`, "geomColumn"},
		{KindVector, `{"type":"vector","schema":"public","geomColumn":"geom"}`, "table"},
		{KindWMS, `{"type":"wms","url":"https://example.com/wms"}`, "layers"},
		{KindWMS, `{"type":"wms","layers":"a,b"}`, "url"},
		{KindXYZ, `{"type":"xyz","attribution":"OSM"}`, "url"},
	}
	for _, tc := range cases {
		_, err := ParseLayerConfig(tc.kind, []byte(tc.raw))
		if err == nil {
			t.Errorf("kind %s raw %s: expected error", tc.kind, tc.raw)
			continue
		}
		if !strings.Contains(err.Error(), tc.missing) {
			t.Errorf("kind %s: error %q does not name missing field %q", tc.kind, err, tc.missing)
		}
	}
}

func TestParseLayerConfigKindMismatch(t *testing.T) {
	raw := []byte(`{"type":"xyz","url":"https://tile.example.com/{z}/{x}/{y}.png"}`)
	if _, err := ParseLayerConfig(KindWMS, raw); err == nil {
		t.Error("xyz config accepted for wms kind")
	}
}

func TestParseLayerConfigUnknownKind(t *testing.T) {
	if _, err := ParseLayerConfig("raster", []byte(`{}`)); err == nil {
		t.Error("unknown kind accepted")
	}
}

func TestParseLayerConfigEmpty(t *testing.T) {
	if _, err := ParseLayerConfig(KindVector, nil); err == nil {
		t.Error("nil config accepted")
	}
}
