package views

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/mapaserver/geocatalog/methods"
)

// GetLayerData 按 bbox 窗口查询矢量要素
// GET /api/layers/:id/data?bbox=minX,minY,maxX,maxY&z=12
func (mc *MapController) GetLayerData(c *gin.Context) {
	box, err := methods.ParseBBox(c.Query("bbox"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	zoom := 0
	if zParam := c.Query("z"); zParam != "" {
		z, err := strconv.Atoi(zParam)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "z must be an integer"})
			return
		}
		zoom = z
	}

	fc, err := mc.Features.GetFeatures(c.Request.Context(), c.Param("id"), box, zoom)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, fc)
}
