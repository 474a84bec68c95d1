// views/helper.go
package views

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mapaserver/geocatalog/pggeo"
	"github.com/mapaserver/geocatalog/services"
	"gorm.io/gorm"
)

// MapController exposes the catalog, ingestion and feature services over
// HTTP. One instance serves all requests; the services carry no state.
type MapController struct {
	Catalog  *services.CatalogService
	Ingest   *services.IngestService
	Features *services.FeatureService
	Store    *pggeo.Store
}

func NewMapController(db *gorm.DB) *MapController {
	catalog := services.NewCatalogService(db)
	store := pggeo.NewStore(db)
	return &MapController{
		Catalog:  catalog,
		Ingest:   services.NewIngestService(db),
		Features: services.NewFeatureService(catalog, store),
		Store:    store,
	}
}

// abortWithError maps the service error taxonomy onto HTTP statuses.
// Storage failures surface their message with a 500.
func abortWithError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, services.ErrBadInput),
		errors.Is(err, services.ErrValidation),
		errors.Is(err, services.ErrUnsupportedKind):
		status = http.StatusBadRequest
	case errors.Is(err, services.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, services.ErrConflict):
		status = http.StatusConflict
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
