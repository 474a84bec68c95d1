package views

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mapaserver/geocatalog/models"
	"github.com/mapaserver/geocatalog/services"
	"gorm.io/datatypes"
)

func (mc *MapController) GetLayers(c *gin.Context) {
	layers, err := mc.Catalog.ListLayers(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, layers)
}

// AddLayer 新建图层，config 按 kind 校验
func (mc *MapController) AddLayer(c *gin.Context) {
	var jsonData LayerData
	if err := c.BindJSON(&jsonData); err != nil {
		return
	}

	layer := models.Layer{
		ID:             jsonData.ID,
		Name:           jsonData.Name,
		Kind:           jsonData.Kind,
		GroupID:        jsonData.GroupID,
		Order:          jsonData.Order,
		DefaultVisible: jsonData.DefaultVisible,
		Config:         datatypes.JSON(jsonData.Config),
	}
	if err := mc.Catalog.CreateLayer(c.Request.Context(), &layer); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, layer)
}

// ChangeLayer 部分更新，仅改动提交的字段
func (mc *MapController) ChangeLayer(c *gin.Context) {
	id := c.Param("id")
	var jsonData LayerPatchData
	if err := c.BindJSON(&jsonData); err != nil {
		return
	}

	patch := services.LayerPatch{
		Name:           jsonData.Name,
		GroupID:        jsonData.GroupID,
		Order:          jsonData.Order,
		DefaultVisible: jsonData.DefaultVisible,
		Config:         jsonData.Config,
	}
	layer, err := mc.Catalog.UpdateLayer(c.Request.Context(), id, patch)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, layer)
}

func (mc *MapController) DelLayer(c *gin.Context) {
	id := c.Param("id")
	if err := mc.Catalog.DeleteLayer(c.Request.Context(), id); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// GetLayerExtent 返回矢量图层数据的外包框，用于前端缩放定位
func (mc *MapController) GetLayerExtent(c *gin.Context) {
	ctx := c.Request.Context()
	layer, err := mc.Catalog.GetLayer(ctx, c.Param("id"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	cfg, err := models.ParseLayerConfig(models.KindVector, layer.Config)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "layer is not vector-backed"})
		return
	}
	vector := cfg.(*models.VectorConfig)

	extent, err := mc.Store.TableExtent(ctx, vector.Schema, vector.Table, vector.GeomColumn)
	if err != nil {
		abortWithError(c, err)
		return
	}
	if extent == nil {
		c.JSON(http.StatusOK, gin.H{"bbox": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{"bbox": extent.String()})
}

// GetTableAttributes 列出矢量表的字段名，供弹窗属性配置选择
func (mc *MapController) GetTableAttributes(c *gin.Context) {
	table := c.Param("table")
	columns, err := mc.Store.TableColumns(c.Request.Context(), "public", table)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"table": table, "columns": columns})
}
