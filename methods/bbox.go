package methods

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// BBox 地图坐标下的轴对齐查询窗口
type BBox struct {
	MinX float64
	MinY float64
	MaxX float64
	MaxY float64
}

// ParseBBox parses "minX,minY,maxX,maxY". All four numbers must be finite.
func ParseBBox(s string) (BBox, error) {
	var box BBox
	if s == "" {
		return box, fmt.Errorf("missing bbox")
	}

	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return box, fmt.Errorf("bbox must have 4 numbers, got %d", len(parts))
	}

	vals := make([]float64, 4)
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return box, fmt.Errorf("bbox component %q is not a number", p)
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return box, fmt.Errorf("bbox component %q is not finite", p)
		}
		vals[i] = v
	}

	box = BBox{MinX: vals[0], MinY: vals[1], MaxX: vals[2], MaxY: vals[3]}
	return box, nil
}

func (b BBox) String() string {
	return fmt.Sprintf("%g,%g,%g,%g", b.MinX, b.MinY, b.MaxX, b.MaxY)
}
