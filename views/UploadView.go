package views

import (
	"encoding/json"
	"io"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/paulmach/orb/geojson"
)

// QgisUpload 接收 GeoJSON 文件上传，动态建表并注册图层
// POST /api/admin/qgis/upload  multipart: file, name, groupId
func (mc *MapController) QgisUpload(c *gin.Context) {
	uploadID := uuid.New().String()

	file, err := c.FormFile("file")
	layerName := c.PostForm("name")
	groupID := c.PostForm("groupId")
	if err != nil || layerName == "" || groupID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file, name and groupId are required"})
		return
	}

	src, err := file.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot read uploaded file"})
		return
	}
	defer src.Close()

	raw, err := io.ReadAll(src)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot read uploaded file"})
		return
	}

	fc, err := geojson.UnmarshalFeatureCollection(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid GeoJSON file"})
		return
	}

	log.Printf("Upload %s: %s (%d features) into group %s", uploadID, layerName, len(fc.Features), groupID)

	result, err := mc.Ingest.IngestGeoJSON(c.Request.Context(), layerName, groupID, fc)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "layerId": result.LayerID, "columns": result.Columns})
}

// VectorUpload 内联 JSON 上传：调用方自报表名，返回建议的图层配置
// POST /api/admin/upload/vector
func (mc *MapController) VectorUpload(c *gin.Context) {
	var jsonData VectorUploadData
	if err := c.BindJSON(&jsonData); err != nil {
		return
	}
	if jsonData.Table == "" || len(jsonData.Geojson) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "table and geojson are required"})
		return
	}

	var probe struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(jsonData.Geojson, &probe); err != nil || probe.Type != "FeatureCollection" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "geojson must be a FeatureCollection"})
		return
	}
	fc, err := geojson.UnmarshalFeatureCollection(jsonData.Geojson)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid geojson"})
		return
	}

	cfg, err := mc.Ingest.UploadVector(c.Request.Context(), jsonData.Schema, jsonData.Table, jsonData.GeomColumn, jsonData.SRID, fc)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "suggestedConfig": cfg})
}
