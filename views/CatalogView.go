package views

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mapaserver/geocatalog/services"
)

// GetCatalog 输出平铺的目录节点，供前端自行建树
func (mc *MapController) GetCatalog(c *gin.Context) {
	nodes, err := mc.Catalog.Nodes(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"nodes": nodes})
}

// GetCatalogTree 输出已建好的目录树（含合成根节点）
func (mc *MapController) GetCatalogTree(c *gin.Context) {
	ctx := c.Request.Context()
	groups, err := mc.Catalog.ListGroups(ctx)
	if err != nil {
		abortWithError(c, err)
		return
	}
	layers, err := mc.Catalog.ListLayers(ctx)
	if err != nil {
		abortWithError(c, err)
		return
	}
	tree, err := services.BuildTree(groups, layers)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"root": services.RootNodeID, "nodes": tree})
}
