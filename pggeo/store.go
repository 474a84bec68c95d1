package pggeo

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/mapaserver/geocatalog/methods"
	"github.com/paulmach/orb/geojson"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// StorageSRID 所有矢量表的存储坐标系，GeoJSON 默认的经纬度
const StorageSRID = 4326

// Store wraps a gorm handle (connection or transaction) and speaks the
// spatial SQL dialect. Every call hits the database directly, no caching.
type Store struct {
	DB *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{DB: db}
}

// Column 推断出的一个属性列
type Column struct {
	Name string
	Type string // TEXT / NUMERIC / BOOLEAN
}

// quoteIdent quotes a SQL identifier, doubling embedded quotes.
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func qualifiedTable(schema, table string) string {
	return quoteIdent(schema) + "." + quoteIdent(table)
}

// CreateTable 创建矢量表，已存在则跳过（不校验既有表结构）
func (s *Store) CreateTable(ctx context.Context, schema, table, pkName string, cols []Column, geomColumn string) error {
	var columns []string
	columns = append(columns, fmt.Sprintf("%s SERIAL PRIMARY KEY", quoteIdent(pkName)))
	for _, col := range cols {
		columns = append(columns, fmt.Sprintf("%s %s", quoteIdent(col.Name), col.Type))
	}
	columns = append(columns, fmt.Sprintf("%s GEOMETRY(Geometry, %d)", quoteIdent(geomColumn), StorageSRID))

	query := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)",
		qualifiedTable(schema, table), strings.Join(columns, ", "))

	if err := s.DB.WithContext(ctx).Exec(query).Error; err != nil {
		log.Printf("Error creating table %s: %v", table, err)
		return err
	}
	return nil
}

// GeomExpr builds the geometry insert expression for one WKB hex value,
// reprojecting into the storage SRID when the source differs.
func GeomExpr(wkbHex string, sourceSRID int) clause.Expr {
	if sourceSRID != StorageSRID {
		return clause.Expr{
			SQL:  fmt.Sprintf("ST_Transform(ST_Force2D(ST_SetSRID(ST_GeomFromWKB(decode(?, 'hex')), %d)), %d)", sourceSRID, StorageSRID),
			Vars: []interface{}{wkbHex},
		}
	}
	return clause.Expr{
		SQL:  fmt.Sprintf("ST_Force2D(ST_SetSRID(ST_GeomFromWKB(decode(?, 'hex')), %d))", StorageSRID),
		Vars: []interface{}{wkbHex},
	}
}

// InsertFeatures 批量写入要素行，geom 值须已为 GeomExpr
func (s *Store) InsertFeatures(ctx context.Context, schema, table string, rows []map[string]interface{}, fieldCount int) error {
	if len(rows) == 0 {
		return nil
	}

	batchSize := calculateSafeBatchSize(fieldCount + 1) // +1 for geom field
	err := s.DB.WithContext(ctx).Table(qualifiedTable(schema, table)).CreateInBatches(rows, batchSize).Error
	if err != nil {
		log.Printf("Error inserting %d rows into %s: %v", len(rows), table, err)
	}
	return err
}

// 计算安全的批次大小，避免接近 PostgreSQL 65535 参数上限
func calculateSafeBatchSize(fieldCount int) int {
	const maxParams = 60000
	safeBatchSize := maxParams / fieldCount

	if safeBatchSize > 2000 {
		return 2000
	}
	if safeBatchSize < 100 {
		return 100
	}
	return safeBatchSize
}

// IndexName 矢量表空间索引的规范名称
func IndexName(table string) string {
	return table + "_geom_gix"
}

// CreateSpatialIndex creates the GiST index if the canonical name is absent.
// The existence probe is best-effort: on probe failure we fall through to
// CREATE INDEX IF NOT EXISTS.
func (s *Store) CreateSpatialIndex(ctx context.Context, schema, table, geomColumn string) error {
	indexName := IndexName(table)

	var exists bool
	checkIndexSql := `
		SELECT COUNT(*) > 0
		FROM pg_indexes
		WHERE schemaname = ? AND tablename = ? AND indexname = ?
	`
	if err := s.DB.WithContext(ctx).Raw(checkIndexSql, schema, table, indexName).Scan(&exists).Error; err != nil {
		log.Printf("Error checking index existence: %v", err)
	}
	if exists {
		return nil
	}

	createIndexSql := fmt.Sprintf("CREATE INDEX IF NOT EXISTS %s ON %s USING GIST (%s)",
		quoteIdent(indexName), qualifiedTable(schema, table), quoteIdent(geomColumn))
	if err := s.DB.WithContext(ctx).Exec(createIndexSql).Error; err != nil {
		log.Printf("Error creating index %s: %v", indexName, err)
		return err
	}
	return nil
}

// QueryBBox returns the features of a table intersecting the envelope.
// Geometry comes back as GeoJSON text, attributes as a jsonb bag without
// the geometry column. The envelope is built in the table's SRID so the
// GiST index drives the intersection.
func (s *Store) QueryBBox(ctx context.Context, schema, table, geomColumn string, srid int, box methods.BBox, limit int) (*geojson.FeatureCollection, error) {
	query := fmt.Sprintf(`
		SELECT
			ST_AsGeoJSON(t.%s) AS geojson,
			to_jsonb(t) - ? AS properties
		FROM %s t
		WHERE ST_Intersects(t.%s, ST_MakeEnvelope(?, ?, ?, ?, %d))
		LIMIT %d
	`, quoteIdent(geomColumn), qualifiedTable(schema, table), quoteIdent(geomColumn), srid, limit)

	var rows []featureRow
	err := s.DB.WithContext(ctx).Raw(query, geomColumn, box.MinX, box.MinY, box.MaxX, box.MaxY).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return decodeFeatureRows(table, rows), nil
}

type featureRow struct {
	GeoJSON    []byte `gorm:"column:geojson"`
	Properties []byte `gorm:"column:properties"`
}

// decodeFeatureRows 解码查询结果行；解码失败的行跳过并记录日志
func decodeFeatureRows(table string, rows []featureRow) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for i, row := range rows {
		geom := &geojson.Geometry{}
		if err := json.Unmarshal(row.GeoJSON, geom); err != nil {
			log.Printf("Skipping row %d of %s: bad geometry json: %v", i, table, err)
			continue
		}
		feature := geojson.NewFeature(geom.Geometry())
		props := make(map[string]interface{})
		if len(row.Properties) > 0 {
			if err := json.Unmarshal(row.Properties, &props); err != nil {
				log.Printf("Skipping row %d of %s: bad properties json: %v", i, table, err)
				continue
			}
		}
		feature.Properties = props
		fc.Features = append(fc.Features, feature)
	}
	return fc
}

// TableColumns 查询表的全部字段名
func (s *Store) TableColumns(ctx context.Context, schema, table string) ([]string, error) {
	var columns []struct {
		ColumnName string `gorm:"column:column_name"`
	}

	query := `
		SELECT column_name
		FROM information_schema.columns
		WHERE table_schema = ? AND table_name = ?
		ORDER BY ordinal_position
	`
	if err := s.DB.WithContext(ctx).Raw(query, schema, table).Scan(&columns).Error; err != nil {
		return nil, err
	}

	names := make([]string, 0, len(columns))
	for _, col := range columns {
		names = append(names, col.ColumnName)
	}
	return names, nil
}

// TableExtent returns the bounding box of every geometry in the table,
// or nil when the table is empty.
func (s *Store) TableExtent(ctx context.Context, schema, table, geomColumn string) (*methods.BBox, error) {
	query := fmt.Sprintf(`
		SELECT ST_XMin(ext) AS min_x, ST_YMin(ext) AS min_y,
		       ST_XMax(ext) AS max_x, ST_YMax(ext) AS max_y
		FROM (SELECT ST_Extent(%s) AS ext FROM %s) e
		WHERE ext IS NOT NULL
	`, quoteIdent(geomColumn), qualifiedTable(schema, table))

	var row struct {
		MinX *float64 `gorm:"column:min_x"`
		MinY *float64 `gorm:"column:min_y"`
		MaxX *float64 `gorm:"column:max_x"`
		MaxY *float64 `gorm:"column:max_y"`
	}
	if err := s.DB.WithContext(ctx).Raw(query).Scan(&row).Error; err != nil {
		return nil, err
	}
	if row.MinX == nil {
		return nil, nil
	}
	return &methods.BBox{MinX: *row.MinX, MinY: *row.MinY, MaxX: *row.MaxX, MaxY: *row.MaxY}, nil
}
