package views

import "encoding/json"

// 请求结构体

type GroupData struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	ParentID *string `json:"parentId"`
	Order    int     `json:"order"`
}

type LayerData struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	Kind           string          `json:"kind"`
	GroupID        string          `json:"groupId"`
	Order          int             `json:"order"`
	DefaultVisible bool            `json:"defaultVisible"`
	Config         json.RawMessage `json:"config"`
}

// LayerPatchData carries partial updates; absent fields stay untouched.
type LayerPatchData struct {
	Name           *string         `json:"name"`
	GroupID        *string         `json:"groupId"`
	Order          *int            `json:"order"`
	DefaultVisible *bool           `json:"defaultVisible"`
	Config         json.RawMessage `json:"config"`
}

type VectorUploadData struct {
	Schema     string          `json:"schema"`
	Table      string          `json:"table"`
	SRID       int             `json:"srid"`
	GeomColumn string          `json:"geomColumn"`
	Geojson    json.RawMessage `json:"geojson"`
}
