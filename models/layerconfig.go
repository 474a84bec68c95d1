package models

import (
	"encoding/json"
	"fmt"
)

const (
	KindVector = "vector"
	KindWMS    = "wms"
	KindXYZ    = "xyz"
)

// LayerConfig 图层配置的判别联合，Type 字段必须与图层 kind 一致
type LayerConfig interface {
	ConfigKind() string
	Validate() error
}

type VectorConfig struct {
	Type       string   `json:"type"`
	Schema     string   `json:"schema"`
	Table      string   `json:"table"`
	GeomColumn string   `json:"geomColumn"`
	SRID       int      `json:"srid,omitempty"`
	PopupProps []string `json:"popupProps,omitempty"`
}

func (c *VectorConfig) ConfigKind() string { return KindVector }

func (c *VectorConfig) Validate() error {
	if c.Type != KindVector {
		return fmt.Errorf("vector config.type must be 'vector'")
	}
	required := map[string]string{
		"schema":     c.Schema,
		"table":      c.Table,
		"geomColumn": c.GeomColumn,
	}
	for _, k := range []string{"schema", "table", "geomColumn"} {
		if required[k] == "" {
			return fmt.Errorf("missing %s in vector config", k)
		}
	}
	return nil
}

type WmsConfig struct {
	Type        string `json:"type"`
	URL         string `json:"url"`
	Layers      string `json:"layers"`
	Version     string `json:"version,omitempty"`
	Format      string `json:"format,omitempty"`
	Transparent bool   `json:"transparent,omitempty"`
}

func (c *WmsConfig) ConfigKind() string { return KindWMS }

func (c *WmsConfig) Validate() error {
	if c.Type != KindWMS {
		return fmt.Errorf("wms config.type must be 'wms'")
	}
	if c.URL == "" {
		return fmt.Errorf("missing url in wms config")
	}
	if c.Layers == "" {
		return fmt.Errorf("missing layers in wms config")
	}
	return nil
}

type XyzConfig struct {
	Type        string `json:"type"`
	URL         string `json:"url"`
	Attribution string `json:"attribution,omitempty"`
}

func (c *XyzConfig) ConfigKind() string { return KindXYZ }

func (c *XyzConfig) Validate() error {
	if c.Type != KindXYZ {
		return fmt.Errorf("xyz config.type must be 'xyz'")
	}
	if c.URL == "" {
		return fmt.Errorf("missing url in xyz config")
	}
	return nil
}

// ParseLayerConfig decodes and validates a raw config against the declared kind.
func ParseLayerConfig(kind string, raw []byte) (LayerConfig, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("config must be an object")
	}

	var cfg LayerConfig
	switch kind {
	case KindVector:
		cfg = &VectorConfig{}
	case KindWMS:
		cfg = &WmsConfig{}
	case KindXYZ:
		cfg = &XyzConfig{}
	default:
		return nil, fmt.Errorf("unknown layer kind %q", kind)
	}

	if err := json.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("config must be an object: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
