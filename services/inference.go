package services

import (
	"regexp"
	"sort"

	"github.com/mapaserver/geocatalog/methods"
	"github.com/paulmach/orb/geojson"
)

// Column types a property can resolve to. Widening only ever moves toward
// TEXT: once two conflicting primitive types are seen for a key the column
// stays TEXT no matter what comes later.
const (
	TypeText    = "TEXT"
	TypeNumeric = "NUMERIC"
	TypeBoolean = "BOOLEAN"
)

// InferredColumn 推断出的一个属性列，按首次出现顺序排列
type InferredColumn struct {
	Name string
	Type string
}

// InferredSchema is the result of analyzing every feature of an upload.
type InferredSchema struct {
	Columns []InferredColumn
	// KeyMap maps each original property key to its sanitized column name.
	KeyMap map[string]string
	// Collisions lists sanitized names that more than one original key
	// mapped onto. Data from the losing keys is merged last-write-wins.
	Collisions []string
	// PKColumn is a primary-key name not colliding with any column.
	PKColumn string
	// SRID declared by the collection's CRS member, 4326 when absent.
	SRID int
}

// InferSchema derives a table schema that is a safe superset of every
// feature's property bag.
func InferSchema(fc *geojson.FeatureCollection) *InferredSchema {
	inf := &InferredSchema{
		KeyMap: make(map[string]string),
		SRID:   DetectSRID(fc),
	}

	types := make(map[string]string)
	sources := make(map[string]int) // sanitized name -> distinct original keys
	collided := make(map[string]bool)

	for _, feature := range fc.Features {
		// Sorted keys per feature: identical uploads must infer identical
		// column order, map iteration alone does not give that.
		keys := make([]string, 0, len(feature.Properties))
		for key := range feature.Properties {
			keys = append(keys, key)
		}
		sort.Strings(keys)

		for _, key := range keys {
			value := feature.Properties[key]
			sanitized := methods.Slugify(key)

			if _, seen := inf.KeyMap[key]; !seen {
				inf.KeyMap[key] = sanitized
				sources[sanitized]++
				if sources[sanitized] == 2 && !collided[sanitized] {
					collided[sanitized] = true
					inf.Collisions = append(inf.Collisions, sanitized)
				}
			}

			observed := classifyValue(value)
			current, known := types[sanitized]
			if !known {
				types[sanitized] = observed
				inf.Columns = append(inf.Columns, InferredColumn{Name: sanitized, Type: observed})
			} else if current != observed && current != TypeText {
				// Conflict: upgrade to TEXT, never narrows back.
				types[sanitized] = TypeText
			}
		}
	}

	for i := range inf.Columns {
		inf.Columns[i].Type = types[inf.Columns[i].Name]
	}

	inf.PKColumn = pickPrimaryKey(types)
	return inf
}

// classifyValue 首次观察即定型：数值、布尔，其余一律 TEXT
func classifyValue(v interface{}) string {
	switch v.(type) {
	case float64, float32, int, int32, int64, uint, uint32, uint64:
		return TypeNumeric
	case bool:
		return TypeBoolean
	default:
		// strings, arrays, objects and null all store as TEXT
		return TypeText
	}
}

// pickPrimaryKey returns the first of id, ogc_fid, gid not taken by an
// inferred column.
func pickPrimaryKey(columns map[string]string) string {
	for _, candidate := range []string{"id", "ogc_fid", "gid"} {
		if _, taken := columns[candidate]; !taken {
			return candidate
		}
	}
	// Three user columns named id, ogc_fid and gid at once; disambiguate.
	return "gid_"
}

var epsgPattern = regexp.MustCompile(`(?i)EPSG[:]+(\d+)`)

// DetectSRID parses an EPSG code out of the collection's declared CRS.
// GeoJSON without a crs member is longitude/latitude by definition.
func DetectSRID(fc *geojson.FeatureCollection) int {
	if fc == nil || fc.ExtraMembers == nil {
		return 4326
	}
	crs, ok := fc.ExtraMembers["crs"].(map[string]interface{})
	if !ok {
		return 4326
	}
	props, ok := crs["properties"].(map[string]interface{})
	if !ok {
		return 4326
	}
	name, ok := props["name"].(string)
	if !ok {
		return 4326
	}
	m := epsgPattern.FindStringSubmatch(name)
	if len(m) != 2 {
		return 4326
	}
	srid := 0
	for _, r := range m[1] {
		srid = srid*10 + int(r-'0')
	}
	if srid == 0 {
		return 4326
	}
	return srid
}
