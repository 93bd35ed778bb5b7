package plan

// PanelType identifies a visualization panel kind in an analytical plan.
type PanelType string

const (
	PanelBar           PanelType = "bar"
	PanelLine          PanelType = "line"
	PanelStat          PanelType = "stat"
	PanelTable         PanelType = "table"
	PanelPie           PanelType = "pie"
	PanelGauge         PanelType = "gauge"
	PanelHeatmap       PanelType = "heatmap"
	PanelHistogram     PanelType = "histogram"
	PanelStateTimeline PanelType = "state_timeline"
	PanelStatusHistory PanelType = "status_history"
	PanelCandlestick   PanelType = "candlestick"
	PanelTrend         PanelType = "trend"
	PanelXY            PanelType = "xy"
	PanelBarGauge      PanelType = "bar_gauge"
)

var panelTypes = []PanelType{
	PanelBar,
	PanelLine,
	PanelStat,
	PanelTable,
	PanelPie,
	PanelGauge,
	PanelHeatmap,
	PanelHistogram,
	PanelStateTimeline,
	PanelStatusHistory,
	PanelCandlestick,
	PanelTrend,
	PanelXY,
	PanelBarGauge,
}

// ValidPanelTypes returns the closed set of recognized panel types.
func ValidPanelTypes() []PanelType {
	out := make([]PanelType, len(panelTypes))
	copy(out, panelTypes)
	return out
}

// Valid reports whether t is one of the recognized panel types.
func (t PanelType) Valid() bool {
	for _, pt := range panelTypes {
		if t == pt {
			return true
		}
	}
	return false
}
