package routers

import (
	"github.com/gin-gonic/gin"
	"github.com/mapaserver/geocatalog/views"
	"gorm.io/gorm"
)

func GeoRouters(r *gin.Engine, db *gorm.DB) {
	mc := views.NewMapController(db)

	api := r.Group("/api")
	{
		api.GET("/catalog", mc.GetCatalog)
		api.GET("/catalog/tree", mc.GetCatalogTree)
		api.GET("/layers/:id/data", mc.GetLayerData)
	}

	admin := api.Group("/admin")
	{
		admin.GET("/layer-groups", mc.GetLayerGroups)
		admin.POST("/layer-groups", mc.AddLayerGroup)
		admin.DELETE("/layer-groups/:id", mc.DelLayerGroup)

		admin.GET("/layers", mc.GetLayers)
		admin.POST("/layers", mc.AddLayer)
		admin.PUT("/layers/:id", mc.ChangeLayer)
		admin.DELETE("/layers/:id", mc.DelLayer)
		admin.GET("/layers/:id/extent", mc.GetLayerExtent)
		admin.GET("/tables/:table/attributes", mc.GetTableAttributes)

		admin.POST("/qgis/upload", mc.QgisUpload)
		admin.POST("/upload/vector", mc.VectorUpload)
	}
}
