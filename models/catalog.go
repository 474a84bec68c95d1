package models

import (
	"gorm.io/datatypes"
)

// LayerGroup 图层分组，parent_id 指向上级分组形成树
type LayerGroup struct {
	ID       string  `gorm:"primary_key;type:varchar(255)" json:"id"`
	Name     string  `gorm:"type:varchar(255);not null" json:"name"`
	ParentID *string `gorm:"column:parent_id;type:varchar(255);index" json:"parentId"`
	Order    int     `gorm:"column:sort_order;not null;default:0" json:"order"`
}

// Layer 目录中的一个图层记录，Config 为 jsonb 的 kind 专属配置
type Layer struct {
	ID             string         `gorm:"primary_key;type:varchar(255)" json:"id"`
	Name           string         `gorm:"type:varchar(255);not null" json:"name"`
	Kind           string         `gorm:"type:varchar(16);not null" json:"kind"`
	GroupID        string         `gorm:"column:group_id;type:varchar(255);index;not null" json:"groupId"`
	Order          int            `gorm:"column:sort_order;not null;default:0" json:"order"`
	DefaultVisible bool           `gorm:"not null;default:false" json:"defaultVisible"`
	Config         datatypes.JSON `gorm:"type:jsonb;not null" json:"config"`
}

// CatalogNode is the flattened read-only projection served to the viewer.
// Group nodes carry no kind/config; layer nodes add them.
type CatalogNode struct {
	ID             string         `json:"id"`
	Type           string         `json:"type"` // "group" or "layer"
	ParentID       *string        `json:"parentId"`
	Name           string         `json:"name"`
	Order          int            `json:"order"`
	Kind           string         `json:"kind,omitempty"`
	Config         datatypes.JSON `json:"config,omitempty"`
	DefaultVisible *bool          `json:"defaultVisible,omitempty"`
	Children       []string       `json:"children,omitempty"`
}
