package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/mapaserver/geocatalog/methods"
	"github.com/mapaserver/geocatalog/models"
	"github.com/mapaserver/geocatalog/pggeo"
	"github.com/paulmach/orb/geojson"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Pipeline steps, reported on failure.
const (
	stepValidated    = "validated"
	stepTableCreated = "table created"
	stepPopulated    = "populated"
	stepIndexed      = "indexed"
	stepRegistered   = "registered"
)

// IngestService turns an uploaded feature collection into a queryable
// vector table plus a registered catalog layer. Table creation, load,
// indexing and registration run inside one transaction, so a failed
// ingest leaves nothing behind and the layer only becomes visible on
// commit.
type IngestService struct {
	DB *gorm.DB
}

func NewIngestService(db *gorm.DB) *IngestService {
	return &IngestService{DB: db}
}

// IngestResult 导入结果
type IngestResult struct {
	LayerID string   `json:"layerId"`
	Table   string   `json:"table"`
	Columns []string `json:"columns"`
}

// IngestGeoJSON runs the full pipeline for a named upload into a group.
func (s *IngestService) IngestGeoJSON(ctx context.Context, name, groupID string, fc *geojson.FeatureCollection) (*IngestResult, error) {
	// Validated
	if name == "" || groupID == "" {
		return nil, badInput("name and groupId are required")
	}
	if fc == nil || len(fc.Features) == 0 {
		return nil, badInput("geojson has no features")
	}
	for i, feature := range fc.Features {
		if feature == nil || feature.Geometry == nil {
			return nil, badInput("feature %d has no geometry", i)
		}
	}

	var group models.LayerGroup
	err := s.DB.WithContext(ctx).Where("id = ?", groupID).First(&group).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound("group %s", groupID)
	}
	if err != nil {
		return nil, storage(stepValidated, err)
	}

	// Globally unique physical table id: slug plus creation timestamp,
	// so re-uploading the same name never collides.
	tableID := fmt.Sprintf("qgis_%s_%d", methods.Slugify(name), time.Now().UnixMilli())

	inf := InferSchema(fc)
	columns := make([]pggeo.Column, 0, len(inf.Columns))
	columnNames := make([]string, 0, len(inf.Columns))
	for _, col := range inf.Columns {
		columns = append(columns, pggeo.Column{Name: col.Name, Type: col.Type})
		columnNames = append(columnNames, col.Name)
	}
	if len(inf.Collisions) > 0 {
		log.Printf("Upload %s: colliding property names merged into %v", name, inf.Collisions)
	}

	result := &IngestResult{LayerID: tableID, Table: tableID, Columns: columnNames}

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		store := pggeo.NewStore(tx)

		// TableCreated
		if err := store.CreateTable(ctx, "public", tableID, inf.PKColumn, columns, "geom"); err != nil {
			return storage(stepTableCreated, err)
		}

		// Populated
		rows, err := buildRows(fc, inf)
		if err != nil {
			return storage(stepPopulated, err)
		}
		if err := store.InsertFeatures(ctx, "public", tableID, rows, len(columns)); err != nil {
			return storage(stepPopulated, err)
		}

		// Indexed
		if err := store.CreateSpatialIndex(ctx, "public", tableID, "geom"); err != nil {
			return storage(stepIndexed, err)
		}

		// Registered
		cfg := models.VectorConfig{
			Type:       models.KindVector,
			Schema:     "public",
			Table:      tableID,
			GeomColumn: "geom",
			SRID:       pggeo.StorageSRID,
			PopupProps: columnNames,
		}
		rawCfg, err := json.Marshal(&cfg)
		if err != nil {
			return storage(stepRegistered, err)
		}
		layer := models.Layer{
			ID:             tableID,
			Name:           name,
			Kind:           models.KindVector,
			GroupID:        groupID,
			Order:          0,
			DefaultVisible: true,
			Config:         datatypes.JSON(rawCfg),
		}
		if err := tx.Create(&layer).Error; err != nil {
			return storage(stepRegistered, err)
		}
		return nil
	})
	if err != nil {
		log.Printf("Ingest of %s rolled back: %v", name, err)
		return nil, err
	}
	return result, nil
}

// buildRows maps every feature onto a table row, one row per feature.
// Properties go through the inferred key map, geometry becomes a
// reprojecting insert expression. Features without properties still
// produce a geometry-only row; a feature without geometry is an error
// (callers validate that up front).
func buildRows(fc *geojson.FeatureCollection, inf *InferredSchema) ([]map[string]interface{}, error) {
	rows := make([]map[string]interface{}, 0, len(fc.Features))
	for i, feature := range fc.Features {
		if feature == nil || feature.Geometry == nil {
			return nil, fmt.Errorf("feature %d has no geometry", i)
		}
		wkbHex, err := methods.GeoJsonToWKB(*feature)
		if err != nil {
			return nil, err
		}

		// Uniform rows: absent properties insert as NULL so the batched
		// statement has one column set.
		row := make(map[string]interface{}, len(inf.Columns)+1)
		for _, col := range inf.Columns {
			row[col.Name] = nil
		}
		for key, value := range feature.Properties {
			column, ok := inf.KeyMap[key]
			if !ok {
				continue
			}
			if str, isStr := value.(string); isStr {
				value = methods.CleanString(str)
			}
			row[column] = value
		}
		row["geom"] = pggeo.GeomExpr(wkbHex, inf.SRID)
		rows = append(rows, row)
	}
	return rows, nil
}

// UploadVector is the inline-JSON ingestion path: the caller names the
// target schema/table/column explicitly and gets back a vector config to
// register manually. Geometries are stored without attributes, reprojected
// into the storage SRID when the declared one differs.
func (s *IngestService) UploadVector(ctx context.Context, schema, table, geomColumn string, srid int, fc *geojson.FeatureCollection) (*models.VectorConfig, error) {
	if table == "" {
		return nil, badInput("table is required")
	}
	if fc == nil || len(fc.Features) == 0 {
		return nil, badInput("geojson must be a FeatureCollection with features")
	}
	if schema == "" {
		schema = "public"
	}
	if geomColumn == "" {
		geomColumn = "geom"
	}
	if srid == 0 {
		srid = pggeo.StorageSRID
	}

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		store := pggeo.NewStore(tx)

		if err := store.CreateTable(ctx, schema, table, "id", nil, geomColumn); err != nil {
			return storage(stepTableCreated, err)
		}

		rows := make([]map[string]interface{}, 0, len(fc.Features))
		for _, feature := range fc.Features {
			if feature == nil || feature.Geometry == nil {
				continue
			}
			wkbHex, err := methods.GeoJsonToWKB(*feature)
			if err != nil {
				return storage(stepPopulated, err)
			}
			rows = append(rows, map[string]interface{}{
				geomColumn: pggeo.GeomExpr(wkbHex, srid),
			})
		}
		if err := store.InsertFeatures(ctx, schema, table, rows, 1); err != nil {
			return storage(stepPopulated, err)
		}

		if err := store.CreateSpatialIndex(ctx, schema, table, geomColumn); err != nil {
			return storage(stepIndexed, err)
		}
		return nil
	})
	if err != nil {
		log.Printf("Vector upload into %s.%s rolled back: %v", schema, table, err)
		return nil, err
	}

	return &models.VectorConfig{
		Type:       models.KindVector,
		Schema:     schema,
		Table:      table,
		GeomColumn: geomColumn,
		SRID:       pggeo.StorageSRID,
		PopupProps: []string{},
	}, nil
}
