package dashboard

import (
	"strings"

	"github.com/leapstack-labs/dashql/internal/plan"
)

// GridPos is a panel's position and size in abstract grid units. The grid
// is 24 units wide; rows are 8 units tall.
type GridPos struct {
	X int `json:"x"`
	Y int `json:"y"`
	W int `json:"w"`
	H int `json:"h"`
}

const (
	gridWidth = 24
	rowHeight = 8
)

// layoutPanels assigns grid positions: table and line panels take a full
// row each, every other type fills half a row, alternating left and right.
// A full-width panel closes an open half row before placing itself.
func layoutPanels(types []plan.PanelType) []GridPos {
	positions := make([]GridPos, 0, len(types))
	y := 0
	half := 0 // 0 = left half free, 1 = right half next

	for _, typ := range types {
		if isFullWidth(typ) {
			if half == 1 {
				y += rowHeight
				half = 0
			}
			positions = append(positions, GridPos{X: 0, Y: y, W: gridWidth, H: rowHeight})
			y += rowHeight
			continue
		}

		positions = append(positions, GridPos{X: half * (gridWidth / 2), Y: y, W: gridWidth / 2, H: rowHeight})
		if half == 1 {
			y += rowHeight
		}
		half = 1 - half
	}

	return positions
}

func isFullWidth(typ plan.PanelType) bool {
	switch plan.PanelType(strings.ToLower(string(typ))) {
	case plan.PanelTable, plan.PanelLine:
		return true
	}
	return false
}
