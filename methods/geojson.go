package methods

import (
	"encoding/hex"
	"strings"
	"unicode/utf8"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkb"
	"github.com/paulmach/orb/geojson"
)

// GeoJsonToWKB 将要素几何编码为十六进制WKB
func GeoJsonToWKB(geo geojson.Feature) (string, error) {
	//  检查几何类型是否为  Polygon，如果是，则转换为  MultiPolygon
	if polygon, ok := geo.Geometry.(orb.Polygon); ok {
		geo.Geometry = orb.MultiPolygon{polygon}
	}

	TempWkb, err := wkb.Marshal(geo.Geometry)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(TempWkb), nil
}

// Slugify lower-cases a name and maps anything outside [a-z0-9_] to "_".
// Applying it twice gives the same result.
func Slugify(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return b.String()
}

// CleanString 清理字符串中的空字符和非法字符
func CleanString(s string) string {
	return strings.Map(func(r rune) rune {
		if r == 0x00 || !utf8.ValidRune(r) {
			return -1
		}
		return r
	}, s)
}
