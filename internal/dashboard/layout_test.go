package dashboard

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/leapstack-labs/dashql/internal/plan"
)

func TestLayoutMixedSequence(t *testing.T) {
	got := layoutPanels([]plan.PanelType{
		plan.PanelBar, plan.PanelStat, plan.PanelTable, plan.PanelPie, plan.PanelLine,
	})

	want := []GridPos{
		{X: 0, Y: 0, W: 12, H: 8},   // bar, left half
		{X: 12, Y: 0, W: 12, H: 8},  // stat, right half
		{X: 0, Y: 8, W: 24, H: 8},   // table, full row
		{X: 0, Y: 16, W: 12, H: 8},  // pie, left half
		{X: 0, Y: 24, W: 24, H: 8},  // line closes the open half row
	}
	assert.Equal(t, want, got)
}

func TestLayoutFullWidthAfterSingleHalf(t *testing.T) {
	got := layoutPanels([]plan.PanelType{plan.PanelGauge, plan.PanelTable})
	want := []GridPos{
		{X: 0, Y: 0, W: 12, H: 8},
		{X: 0, Y: 8, W: 24, H: 8},
	}
	assert.Equal(t, want, got)
}

func TestLayoutHalvesAlternate(t *testing.T) {
	got := layoutPanels([]plan.PanelType{
		plan.PanelBar, plan.PanelPie, plan.PanelStat, plan.PanelGauge,
	})
	want := []GridPos{
		{X: 0, Y: 0, W: 12, H: 8},
		{X: 12, Y: 0, W: 12, H: 8},
		{X: 0, Y: 8, W: 12, H: 8},
		{X: 12, Y: 8, W: 12, H: 8},
	}
	assert.Equal(t, want, got)
}

func TestLayoutCaseInsensitiveTypes(t *testing.T) {
	got := layoutPanels([]plan.PanelType{"TABLE"})
	assert.Equal(t, []GridPos{{X: 0, Y: 0, W: 24, H: 8}}, got)
}

func TestLayoutEmpty(t *testing.T) {
	assert.Empty(t, layoutPanels(nil))
}
