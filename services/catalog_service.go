package services

import (
	"context"
	"encoding/json"
	"errors"
	"sort"

	"github.com/mapaserver/geocatalog/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// RootNodeID 目录树的合成根节点
const RootNodeID = "__root__"

// CatalogService owns the layer-groups and layers catalog tables.
type CatalogService struct {
	DB *gorm.DB
}

func NewCatalogService(db *gorm.DB) *CatalogService {
	return &CatalogService{DB: db}
}

// ListGroups 全表扫描，(order, name) 排序
func (s *CatalogService) ListGroups(ctx context.Context) ([]models.LayerGroup, error) {
	var groups []models.LayerGroup
	err := s.DB.WithContext(ctx).Order("sort_order, name").Find(&groups).Error
	if err != nil {
		return nil, storage("list groups", err)
	}
	return groups, nil
}

// ListLayers 全表扫描，(order, name) 排序
func (s *CatalogService) ListLayers(ctx context.Context) ([]models.Layer, error) {
	var layers []models.Layer
	err := s.DB.WithContext(ctx).Order("sort_order, name").Find(&layers).Error
	if err != nil {
		return nil, storage("list layers", err)
	}
	return layers, nil
}

// GetLayer resolves a layer id.
func (s *CatalogService) GetLayer(ctx context.Context, id string) (*models.Layer, error) {
	var layer models.Layer
	err := s.DB.WithContext(ctx).Where("id = ?", id).First(&layer).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound("layer %s", id)
	}
	if err != nil {
		return nil, storage("get layer", err)
	}
	return &layer, nil
}

// UpsertGroup creates or updates a group. The parent chain is walked to
// reject cycles before anything is written.
func (s *CatalogService) UpsertGroup(ctx context.Context, group *models.LayerGroup) error {
	if group.ID == "" || group.Name == "" {
		return badInput("id and name are required")
	}

	if group.ParentID != nil {
		if *group.ParentID == group.ID {
			return validation(errors.New("group cannot be its own parent"))
		}
		var parent models.LayerGroup
		err := s.DB.WithContext(ctx).Where("id = ?", *group.ParentID).First(&parent).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFound("parent group %s", *group.ParentID)
		}
		if err != nil {
			return storage("check parent group", err)
		}
		if err := s.checkAcyclic(ctx, group.ID, *group.ParentID); err != nil {
			return err
		}
	}

	err := s.DB.WithContext(ctx).Save(group).Error
	if err != nil {
		return storage("upsert group", err)
	}
	return nil
}

// checkAcyclic walks up from the proposed parent; reaching the group
// itself means the new edge would close a cycle.
func (s *CatalogService) checkAcyclic(ctx context.Context, groupID, parentID string) error {
	seen := map[string]bool{groupID: true}
	current := parentID
	for current != "" {
		if seen[current] {
			return validation(errors.New("group parent chain would form a cycle"))
		}
		seen[current] = true

		var row models.LayerGroup
		err := s.DB.WithContext(ctx).Where("id = ?", current).First(&row).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return storage("walk parent chain", err)
		}
		if row.ParentID == nil {
			return nil
		}
		current = *row.ParentID
	}
	return nil
}

// DeleteGroup removes a group, cascades its layers and re-roots its child
// groups, all in one transaction.
func (s *CatalogService) DeleteGroup(ctx context.Context, id string) error {
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("group_id = ?", id).Delete(&models.Layer{}).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.LayerGroup{}).Where("parent_id = ?", id).Update("parent_id", nil).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&models.LayerGroup{}).Error
	})
	if err != nil {
		return storage("delete group", err)
	}
	return nil
}

// CreateLayer validates and inserts a new layer. Duplicate ids are a
// conflict, an unknown group is not found, a config that does not match
// the declared kind is a validation error.
func (s *CatalogService) CreateLayer(ctx context.Context, layer *models.Layer) error {
	if layer.ID == "" || layer.Name == "" || layer.Kind == "" || layer.GroupID == "" {
		return badInput("id, name, kind and groupId are required")
	}

	if _, err := models.ParseLayerConfig(layer.Kind, layer.Config); err != nil {
		return validation(err)
	}

	var group models.LayerGroup
	err := s.DB.WithContext(ctx).Where("id = ?", layer.GroupID).First(&group).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound("group %s", layer.GroupID)
	}
	if err != nil {
		return storage("check group", err)
	}

	var count int64
	if err := s.DB.WithContext(ctx).Model(&models.Layer{}).Where("id = ?", layer.ID).Count(&count).Error; err != nil {
		return storage("check layer id", err)
	}
	if count > 0 {
		return conflict("layer %s already exists", layer.ID)
	}

	if err := s.DB.WithContext(ctx).Create(layer).Error; err != nil {
		return storage("create layer", err)
	}
	return nil
}

// LayerPatch carries partial-update semantics: only non-nil fields change.
// Kind is immutable; a patched config is validated against the stored kind.
type LayerPatch struct {
	Name           *string
	GroupID        *string
	Order          *int
	DefaultVisible *bool
	Config         json.RawMessage
}

// UpdateLayer applies a partial patch and returns the updated row.
func (s *CatalogService) UpdateLayer(ctx context.Context, id string, patch LayerPatch) (*models.Layer, error) {
	layer, err := s.GetLayer(ctx, id)
	if err != nil {
		return nil, err
	}

	if patch.Name != nil {
		layer.Name = *patch.Name
	}
	if patch.GroupID != nil {
		var group models.LayerGroup
		err := s.DB.WithContext(ctx).Where("id = ?", *patch.GroupID).First(&group).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("group %s", *patch.GroupID)
		}
		if err != nil {
			return nil, storage("check group", err)
		}
		layer.GroupID = *patch.GroupID
	}
	if patch.Order != nil {
		layer.Order = *patch.Order
	}
	if patch.DefaultVisible != nil {
		layer.DefaultVisible = *patch.DefaultVisible
	}
	if patch.Config != nil {
		if _, err := models.ParseLayerConfig(layer.Kind, patch.Config); err != nil {
			return nil, validation(err)
		}
		layer.Config = datatypes.JSON(patch.Config)
	}

	if err := s.DB.WithContext(ctx).Save(layer).Error; err != nil {
		return nil, storage("update layer", err)
	}
	return layer, nil
}

func (s *CatalogService) DeleteLayer(ctx context.Context, id string) error {
	if err := s.DB.WithContext(ctx).Where("id = ?", id).Delete(&models.Layer{}).Error; err != nil {
		return storage("delete layer", err)
	}
	return nil
}

// Nodes flattens groups and layers into the catalog projection the viewer
// consumes.
func (s *CatalogService) Nodes(ctx context.Context) ([]models.CatalogNode, error) {
	groups, err := s.ListGroups(ctx)
	if err != nil {
		return nil, err
	}
	layers, err := s.ListLayers(ctx)
	if err != nil {
		return nil, err
	}

	nodes := make([]models.CatalogNode, 0, len(groups)+len(layers))
	for _, g := range groups {
		nodes = append(nodes, models.CatalogNode{
			ID:       g.ID,
			Type:     "group",
			ParentID: g.ParentID,
			Name:     g.Name,
			Order:    g.Order,
		})
	}
	for _, l := range layers {
		l := l
		visible := l.DefaultVisible
		nodes = append(nodes, models.CatalogNode{
			ID:             l.ID,
			Type:           "layer",
			ParentID:       &l.GroupID,
			Name:           l.Name,
			Order:          l.Order,
			Kind:           l.Kind,
			Config:         l.Config,
			DefaultVisible: &visible,
		})
	}
	return nodes, nil
}

// BuildTree materializes the id-addressable tree: every node gets its
// sorted children, plus a synthetic root whose children are the top-level
// nodes. Sibling order is ascending order, ties broken by name, and is
// stable across rebuilds for identical input. Cyclic group rows are
// rejected rather than looped over.
func BuildTree(groups []models.LayerGroup, layers []models.Layer) (map[string]models.CatalogNode, error) {
	nodes := make(map[string]models.CatalogNode, len(groups)+len(layers)+1)
	children := make(map[string][]string)

	for _, g := range groups {
		nodes[g.ID] = models.CatalogNode{
			ID:       g.ID,
			Type:     "group",
			ParentID: g.ParentID,
			Name:     g.Name,
			Order:    g.Order,
		}
	}

	// Cycle guard: follow each group's parent chain once.
	for _, g := range groups {
		seen := map[string]bool{}
		current := g.ID
		for {
			if seen[current] {
				return nil, validation(errors.New("group parent graph contains a cycle"))
			}
			seen[current] = true
			node, ok := nodes[current]
			if !ok || node.ParentID == nil {
				break
			}
			current = *node.ParentID
		}
	}

	for _, g := range groups {
		parent := RootNodeID
		if g.ParentID != nil {
			if _, ok := nodes[*g.ParentID]; ok {
				parent = *g.ParentID
			}
		}
		children[parent] = append(children[parent], g.ID)
	}

	for _, l := range layers {
		l := l
		visible := l.DefaultVisible
		nodes[l.ID] = models.CatalogNode{
			ID:             l.ID,
			Type:           "layer",
			ParentID:       &l.GroupID,
			Name:           l.Name,
			Order:          l.Order,
			Kind:           l.Kind,
			Config:         l.Config,
			DefaultVisible: &visible,
		}
		parent := RootNodeID
		if _, ok := nodes[l.GroupID]; ok && l.GroupID != "" {
			parent = l.GroupID
		}
		children[parent] = append(children[parent], l.ID)
	}

	for parent, ids := range children {
		ids := ids
		sort.SliceStable(ids, func(i, j int) bool {
			a, b := nodes[ids[i]], nodes[ids[j]]
			if a.Order != b.Order {
				return a.Order < b.Order
			}
			return a.Name < b.Name
		})
		children[parent] = ids
	}

	for id, node := range nodes {
		node.Children = children[id]
		nodes[id] = node
	}
	nodes[RootNodeID] = models.CatalogNode{
		ID:       RootNodeID,
		Type:     "group",
		Name:     "root",
		Children: children[RootNodeID],
	}

	return nodes, nil
}
