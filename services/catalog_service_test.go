package services

import (
	"context"
	"errors"
	"testing"

	"github.com/mapaserver/geocatalog/models"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&models.LayerGroup{}, &models.Layer{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func mustGroup(t *testing.T, s *CatalogService, id, name string, parent *string, order int) {
	t.Helper()
	err := s.UpsertGroup(context.Background(), &models.LayerGroup{ID: id, Name: name, ParentID: parent, Order: order})
	if err != nil {
		t.Fatalf("UpsertGroup(%s): %v", id, err)
	}
}

func vectorLayer(id, groupID, name string, order int) *models.Layer {
	return &models.Layer{
		ID:      id,
		Name:    name,
		Kind:    models.KindVector,
		GroupID: groupID,
		Order:   order,
		Config:  datatypes.JSON(`{"type":"vector","schema":"public","table":"` + id + `","geomColumn":"geom","srid":4326}`),
	}
}

func TestCreateLayerValidation(t *testing.T) {
	s := NewCatalogService(newTestDB(t))
	ctx := context.Background()
	mustGroup(t, s, "g1", "Group", nil, 0)

	// missing required fields
	err := s.CreateLayer(ctx, &models.Layer{ID: "l1"})
	if !errors.Is(err, ErrBadInput) {
		t.Errorf("missing fields: got %v, want ErrBadInput", err)
	}

	// config not matching kind
	bad := vectorLayer("l1", "g1", "Layer", 0)
	bad.Config = datatypes.JSON(`{"type":"vector","schema":"public"}`)
	err = s.CreateLayer(ctx, bad)
	if !errors.Is(err, ErrValidation) {
		t.Errorf("incomplete config: got %v, want ErrValidation", err)
	}

	// unknown group
	err = s.CreateLayer(ctx, vectorLayer("l1", "nope", "Layer", 0))
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown group: got %v, want ErrNotFound", err)
	}

	// ok, then duplicate id
	if err := s.CreateLayer(ctx, vectorLayer("l1", "g1", "Layer", 0)); err != nil {
		t.Fatalf("CreateLayer: %v", err)
	}
	err = s.CreateLayer(ctx, vectorLayer("l1", "g1", "Layer", 0))
	if !errors.Is(err, ErrConflict) {
		t.Errorf("duplicate id: got %v, want ErrConflict", err)
	}
}

func TestDeleteGroupCascades(t *testing.T) {
	s := NewCatalogService(newTestDB(t))
	ctx := context.Background()

	mustGroup(t, s, "g", "Group", nil, 0)
	if err := s.CreateLayer(ctx, vectorLayer("l", "g", "Layer", 0)); err != nil {
		t.Fatalf("CreateLayer: %v", err)
	}

	if err := s.DeleteGroup(ctx, "g"); err != nil {
		t.Fatalf("DeleteGroup: %v", err)
	}

	layers, err := s.ListLayers(ctx)
	if err != nil {
		t.Fatalf("ListLayers: %v", err)
	}
	for _, l := range layers {
		if l.GroupID == "g" {
			t.Errorf("layer %s survived group delete", l.ID)
		}
	}
	if len(layers) != 0 {
		t.Errorf("expected no layers, got %d", len(layers))
	}
}

func TestDeleteGroupRerootsChildren(t *testing.T) {
	s := NewCatalogService(newTestDB(t))
	ctx := context.Background()

	mustGroup(t, s, "parent", "Parent", nil, 0)
	parentID := "parent"
	mustGroup(t, s, "child", "Child", &parentID, 0)

	if err := s.DeleteGroup(ctx, "parent"); err != nil {
		t.Fatalf("DeleteGroup: %v", err)
	}

	groups, err := s.ListGroups(ctx)
	if err != nil {
		t.Fatalf("ListGroups: %v", err)
	}
	if len(groups) != 1 || groups[0].ID != "child" {
		t.Fatalf("unexpected groups: %+v", groups)
	}
	if groups[0].ParentID != nil {
		t.Errorf("child still references deleted parent %q", *groups[0].ParentID)
	}
}

func TestUpsertGroupRejectsCycle(t *testing.T) {
	s := NewCatalogService(newTestDB(t))
	ctx := context.Background()

	mustGroup(t, s, "a", "A", nil, 0)
	aID := "a"
	mustGroup(t, s, "b", "B", &aID, 0)
	bID := "b"
	mustGroup(t, s, "c", "C", &bID, 0)

	// a -> c closes the loop a -> c -> b -> a
	cID := "c"
	err := s.UpsertGroup(ctx, &models.LayerGroup{ID: "a", Name: "A", ParentID: &cID})
	if !errors.Is(err, ErrValidation) {
		t.Errorf("cycle upsert: got %v, want ErrValidation", err)
	}

	// self parent
	dID := "d"
	err = s.UpsertGroup(ctx, &models.LayerGroup{ID: "d", Name: "D", ParentID: &dID})
	if !errors.Is(err, ErrValidation) {
		t.Errorf("self parent: got %v, want ErrValidation", err)
	}
}

func TestUpsertGroupUnknownParent(t *testing.T) {
	s := NewCatalogService(newTestDB(t))
	ghost := "ghost"
	err := s.UpsertGroup(context.Background(), &models.LayerGroup{ID: "g", Name: "G", ParentID: &ghost})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown parent: got %v, want ErrNotFound", err)
	}
}

func TestUpdateLayerPartialPatch(t *testing.T) {
	s := NewCatalogService(newTestDB(t))
	ctx := context.Background()
	mustGroup(t, s, "g", "Group", nil, 0)
	if err := s.CreateLayer(ctx, vectorLayer("l", "g", "Old Name", 3)); err != nil {
		t.Fatalf("CreateLayer: %v", err)
	}

	newName := "New Name"
	updated, err := s.UpdateLayer(ctx, "l", LayerPatch{Name: &newName})
	if err != nil {
		t.Fatalf("UpdateLayer: %v", err)
	}
	if updated.Name != "New Name" {
		t.Errorf("name not patched: %s", updated.Name)
	}
	if updated.Order != 3 || updated.GroupID != "g" {
		t.Errorf("untouched fields changed: %+v", updated)
	}

	// config patch must validate against the stored kind
	_, err = s.UpdateLayer(ctx, "l", LayerPatch{Config: []byte(`{"type":"xyz","url":"https://x"}`)})
	if !errors.Is(err, ErrValidation) {
		t.Errorf("mismatched config patch: got %v, want ErrValidation", err)
	}

	_, err = s.UpdateLayer(ctx, "missing", LayerPatch{Name: &newName})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("patch of missing layer: got %v, want ErrNotFound", err)
	}
}

func TestBuildTreeSiblingOrdering(t *testing.T) {
	groups := []models.LayerGroup{
		{ID: "A", Name: "b", Order: 1},
		{ID: "B", Name: "a", Order: 1},
		{ID: "C", Name: "c", Order: 0},
	}
	tree, err := BuildTree(groups, nil)
	if err != nil {
		t.Fatalf("BuildTree: %v", err)
	}

	root := tree[RootNodeID]
	want := []string{"C", "B", "A"}
	if len(root.Children) != len(want) {
		t.Fatalf("root children = %v, want %v", root.Children, want)
	}
	for i := range want {
		if root.Children[i] != want[i] {
			t.Fatalf("root children = %v, want %v", root.Children, want)
		}
	}
}

func TestBuildTreeStableAcrossRebuilds(t *testing.T) {
	groups := []models.LayerGroup{
		{ID: "g2", Name: "Two", Order: 1},
		{ID: "g1", Name: "One", Order: 0},
	}
	layers := []models.Layer{
		*vectorLayer("l2", "g1", "beta", 5),
		*vectorLayer("l1", "g1", "alfa", 5),
	}

	first, err := BuildTree(groups, layers)
	if err != nil {
		t.Fatalf("BuildTree: %v", err)
	}
	second, err := BuildTree(groups, layers)
	if err != nil {
		t.Fatalf("BuildTree: %v", err)
	}

	a, b := first["g1"].Children, second["g1"].Children
	if len(a) != 2 || a[0] != "l1" || a[1] != "l2" {
		t.Fatalf("g1 children = %v, want [l1 l2]", a)
	}
	for i := range a {
		if a[i] != b[i] {
			t.Errorf("rebuild changed order: %v vs %v", a, b)
		}
	}
}

func TestBuildTreeRejectsCycle(t *testing.T) {
	a, b := "a", "b"
	groups := []models.LayerGroup{
		{ID: "a", Name: "A", ParentID: &b},
		{ID: "b", Name: "B", ParentID: &a},
	}
	if _, err := BuildTree(groups, nil); !errors.Is(err, ErrValidation) {
		t.Errorf("cyclic input: got %v, want ErrValidation", err)
	}
}

func TestNodesFlattening(t *testing.T) {
	s := NewCatalogService(newTestDB(t))
	ctx := context.Background()
	mustGroup(t, s, "g", "Group", nil, 0)
	if err := s.CreateLayer(ctx, vectorLayer("l", "g", "Layer", 0)); err != nil {
		t.Fatalf("CreateLayer: %v", err)
	}

	nodes, err := s.Nodes(ctx)
	if err != nil {
		t.Fatalf("Nodes: %v", err)
	}
	if len(nodes) != 2 {
		t.Fatalf("expected 2 nodes, got %d", len(nodes))
	}

	byID := map[string]models.CatalogNode{}
	for _, n := range nodes {
		byID[n.ID] = n
	}
	if byID["g"].Type != "group" || byID["g"].ParentID != nil {
		t.Errorf("group node wrong: %+v", byID["g"])
	}
	layerNode := byID["l"]
	if layerNode.Type != "layer" || layerNode.Kind != models.KindVector {
		t.Errorf("layer node wrong: %+v", layerNode)
	}
	if layerNode.ParentID == nil || *layerNode.ParentID != "g" {
		t.Errorf("layer node parent wrong: %+v", layerNode)
	}
	if layerNode.DefaultVisible == nil {
		t.Errorf("layer node missing defaultVisible")
	}
}
