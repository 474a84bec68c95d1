package services

import (
	"context"
	"math"

	"github.com/mapaserver/geocatalog/methods"
	"github.com/mapaserver/geocatalog/models"
	"github.com/paulmach/orb/geojson"
)

// FeatureStore is the slice of the geometry store the query service needs.
type FeatureStore interface {
	QueryBBox(ctx context.Context, schema, table, geomColumn string, srid int, box methods.BBox, limit int) (*geojson.FeatureCollection, error)
}

// FeatureService serves windowed feature collections for vector layers.
// Read-only, no caching, safe to call concurrently.
type FeatureService struct {
	Catalog *CatalogService
	Store   FeatureStore
}

func NewFeatureService(catalog *CatalogService, store FeatureStore) *FeatureService {
	return &FeatureService{Catalog: catalog, Store: store}
}

// ZoomLimit 按缩放级别取结果上限：低缩放宁可截断也不拖垮视图
func ZoomLimit(zoom int) int {
	switch {
	case zoom >= 11:
		return 20000
	case zoom >= 9:
		return 10000
	case zoom >= 7:
		return 5000
	default:
		return 2000
	}
}

// GetFeatures resolves the layer, windows its table by the bbox and returns
// the matching features capped by the zoom-derived ceiling. Zero matches
// yield an empty collection, not an error.
func (s *FeatureService) GetFeatures(ctx context.Context, layerID string, box methods.BBox, zoom int) (*geojson.FeatureCollection, error) {
	// Resolve first: an unknown layer is not found even when the bbox is
	// also garbage.
	layer, err := s.Catalog.GetLayer(ctx, layerID)
	if err != nil {
		return nil, err
	}
	if layer.Kind != models.KindVector {
		return nil, unsupportedKind(layer.Kind)
	}

	for _, v := range []float64{box.MinX, box.MinY, box.MaxX, box.MaxY} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, badInput("bbox must be four finite numbers")
		}
	}

	cfg, err := models.ParseLayerConfig(models.KindVector, layer.Config)
	if err != nil {
		return nil, validation(err)
	}
	vector := cfg.(*models.VectorConfig)
	srid := vector.SRID
	if srid == 0 {
		srid = 4326
	}

	fc, err := s.Store.QueryBBox(ctx, vector.Schema, vector.Table, vector.GeomColumn, srid, box, ZoomLimit(zoom))
	if err != nil {
		return nil, storage("bbox query", err)
	}
	if fc == nil {
		fc = geojson.NewFeatureCollection()
	}
	return fc, nil
}
