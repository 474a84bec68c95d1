package views

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mapaserver/geocatalog/models"
)

func (mc *MapController) GetLayerGroups(c *gin.Context) {
	groups, err := mc.Catalog.ListGroups(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, groups)
}

// AddLayerGroup 新建或更新分组
func (mc *MapController) AddLayerGroup(c *gin.Context) {
	var jsonData GroupData
	if err := c.BindJSON(&jsonData); err != nil {
		return
	}

	group := models.LayerGroup{
		ID:       jsonData.ID,
		Name:     jsonData.Name,
		ParentID: jsonData.ParentID,
		Order:    jsonData.Order,
	}
	if err := mc.Catalog.UpsertGroup(c.Request.Context(), &group); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, group)
}

// DelLayerGroup 删除分组并级联删除其图层
func (mc *MapController) DelLayerGroup(c *gin.Context) {
	id := c.Param("id")
	if err := mc.Catalog.DeleteGroup(c.Request.Context(), id); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
