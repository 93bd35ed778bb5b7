// Package dashboard compiles validated analytical plans into Grafana-style
// dashboard documents and pushes them to a Grafana instance.
package dashboard

import (
	"encoding/binary"
	"strings"

	"github.com/google/uuid"

	"github.com/leapstack-labs/dashql/internal/plan"
)

const datasourceType = "frser-sqlite-datasource"

// maxTitleLen bounds dashboard titles derived from free-form questions.
const maxTitleLen = 50

// Generator builds dashboard documents. DatasourceUID names the Grafana
// datasource the panels query through.
type Generator struct {
	DatasourceUID string
}

// NewGenerator creates a generator for the given datasource UID.
func NewGenerator(datasourceUID string) *Generator {
	if datasourceUID == "" {
		datasourceUID = "DuckDB"
	}
	return &Generator{DatasourceUID: datasourceUID}
}

// PanelRequest pairs a panel spec with the SQL it runs.
type PanelRequest struct {
	Spec plan.Panel
	SQL  string
}

func newDashboardUID() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")[:12]
}

func newPanelID() int {
	u := uuid.New()
	return int(binary.BigEndian.Uint32(u[:4])) % 1000000
}

// GeneratePanel builds one renderer panel document from a panel spec, its
// effective SQL, and a grid position. The panel-type switch below is the
// closed mapping from plan panel types to renderer identifiers and their
// fixed options blocks; an unknown or empty type renders as a plain table
// with headers shown.
func (g *Generator) GeneratePanel(spec plan.Panel, sql string, pos GridPos) map[string]any {
	title := spec.Title
	if title == "" {
		title = "Panel"
	}

	panel := map[string]any{
		"id":          newPanelID(),
		"title":       title,
		"description": spec.Description,
		"gridPos":     pos,
		"datasource":  map[string]any{"type": datasourceType, "uid": g.DatasourceUID},
		"targets": []map[string]any{{
			"queryText":    sql,
			"rawQueryText": sql,
			"refId":        "A",
			"format":       "table",
		}},
	}

	switch plan.PanelType(strings.ToLower(string(spec.Type))) {
	case plan.PanelBar:
		xCol := xAxisColumn(spec.X, sql)
		rewritten := rewriteBarSQL(sql, xCol)
		panel["targets"] = []map[string]any{{
			"queryText":    rewritten,
			"rawQueryText": rewritten,
			"refId":        "A",
			"format":       "table",
		}}

		panel["type"] = "barchart"
		options := map[string]any{
			"legend":  map[string]any{"displayMode": "list", "placement": "bottom"},
			"tooltip": map[string]any{"mode": "single"},
		}
		if xCol != "" {
			options["xField"] = xCol
		}
		panel["options"] = options
		panel["fieldConfig"] = map[string]any{
			"defaults":  map[string]any{"color": map[string]any{"mode": "palette-classic"}},
			"overrides": []any{},
		}

	case plan.PanelLine:
		panel["type"] = "timeseries"
		panel["options"] = map[string]any{
			"legend":  map[string]any{"displayMode": "list", "placement": "bottom"},
			"tooltip": map[string]any{"mode": "single"},
		}
		panel["fieldConfig"] = map[string]any{
			"defaults": map[string]any{
				"color": map[string]any{"mode": "palette-classic"},
				"custom": map[string]any{
					"lineWidth":   2,
					"fillOpacity": 10,
					"pointSize":   5,
				},
			},
			"overrides": []any{},
		}

	case plan.PanelStat:
		panel["type"] = "stat"
		panel["options"] = map[string]any{
			"colorMode":   "value",
			"graphMode":   "area",
			"justifyMode": "auto",
			"textMode":    "auto",
			"reduceOptions": map[string]any{
				"calcs":  []string{"lastNotNull"},
				"fields": "",
				"values": false,
			},
		}
		panel["fieldConfig"] = map[string]any{
			"defaults":  map[string]any{"color": map[string]any{"mode": "thresholds"}},
			"overrides": []any{},
		}

	case plan.PanelTable:
		panel["type"] = "table"
		panel["options"] = map[string]any{
			"showHeader": true,
			"sortBy":     []any{},
		}
		panel["fieldConfig"] = map[string]any{
			"defaults":  map[string]any{},
			"overrides": []any{},
		}

	case plan.PanelPie:
		panel["type"] = "piechart"
		panel["options"] = map[string]any{
			"legend":  map[string]any{"displayMode": "list", "placement": "right"},
			"pieType": "pie",
			"reduceOptions": map[string]any{
				"calcs":  []string{"lastNotNull"},
				"fields": "",
				"values": true,
			},
		}
		panel["fieldConfig"] = map[string]any{
			"defaults":  map[string]any{"color": map[string]any{"mode": "palette-classic"}},
			"overrides": []any{},
		}

	case plan.PanelGauge:
		panel["type"] = "gauge"
		panel["options"] = map[string]any{
			"reduceOptions": map[string]any{
				"calcs":  []string{"lastNotNull"},
				"fields": "",
				"values": false,
			},
			"showThresholdLabels":  false,
			"showThresholdMarkers": true,
		}
		panel["fieldConfig"] = map[string]any{
			"defaults": map[string]any{
				"color": map[string]any{"mode": "thresholds"},
				"thresholds": map[string]any{
					"mode": "absolute",
					"steps": []map[string]any{
						{"color": "green", "value": nil},
						{"color": "yellow", "value": 50},
						{"color": "red", "value": 80},
					},
				},
			},
			"overrides": []any{},
		}

	case plan.PanelHeatmap:
		panel["type"] = "heatmap"
		panel["options"] = map[string]any{
			"calculate": false,
			"cellGap":   1,
			"color": map[string]any{
				"mode":   "scheme",
				"scheme": "Oranges",
				"steps":  64,
			},
			"legend":  map[string]any{"show": true},
			"tooltip": map[string]any{"show": true, "yHistogram": false},
			"yAxis":   map[string]any{"unit": "short"},
		}
		panel["fieldConfig"] = map[string]any{
			"defaults": map[string]any{
				"custom": map[string]any{
					"hideFrom": map[string]any{"legend": false, "tooltip": false, "viz": false},
				},
			},
			"overrides": []any{},
		}

	case plan.PanelHistogram:
		panel["type"] = "histogram"
		panel["options"] = map[string]any{
			"bucketCount": 30,
			"bucketSize":  nil,
			"combine":     false,
			"legend":      map[string]any{"displayMode": "list", "placement": "bottom"},
			"tooltip":     map[string]any{"mode": "single"},
		}
		panel["fieldConfig"] = map[string]any{
			"defaults": map[string]any{
				"color":  map[string]any{"mode": "palette-classic"},
				"custom": map[string]any{"fillOpacity": 80, "lineWidth": 1},
			},
			"overrides": []any{},
		}

	case plan.PanelStateTimeline:
		panel["type"] = "state-timeline"
		panel["options"] = map[string]any{
			"alignValue":  "left",
			"legend":      map[string]any{"displayMode": "list", "placement": "bottom"},
			"mergeValues": true,
			"rowHeight":   0.9,
			"showValue":   "auto",
			"tooltip":     map[string]any{"mode": "single"},
		}
		panel["fieldConfig"] = map[string]any{
			"defaults": map[string]any{
				"color":  map[string]any{"mode": "palette-classic"},
				"custom": map[string]any{"fillOpacity": 70, "lineWidth": 0},
			},
			"overrides": []any{},
		}

	case plan.PanelStatusHistory:
		panel["type"] = "status-history"
		panel["options"] = map[string]any{
			"colWidth":  0.9,
			"legend":    map[string]any{"displayMode": "list", "placement": "bottom"},
			"rowHeight": 0.9,
			"showValue": "auto",
			"tooltip":   map[string]any{"mode": "single"},
		}
		panel["fieldConfig"] = map[string]any{
			"defaults": map[string]any{
				"color":  map[string]any{"mode": "thresholds"},
				"custom": map[string]any{"fillOpacity": 70},
				"thresholds": map[string]any{
					"mode": "absolute",
					"steps": []map[string]any{
						{"color": "green", "value": nil},
						{"color": "red", "value": 1},
					},
				},
			},
			"overrides": []any{},
		}

	case plan.PanelCandlestick:
		panel["type"] = "candlestick"
		panel["options"] = map[string]any{
			"colors":           map[string]any{"down": "red", "flat": "gray", "up": "green"},
			"includeAllFields": false,
			"legend":           map[string]any{"displayMode": "list", "placement": "bottom"},
		}
		panel["fieldConfig"] = map[string]any{
			"defaults": map[string]any{
				"color":  map[string]any{"mode": "palette-classic"},
				"custom": map[string]any{"axisCenteredZero": false, "axisPlacement": "auto"},
			},
			"overrides": []any{},
		}

	case plan.PanelTrend:
		panel["type"] = "trend"
		panel["options"] = map[string]any{
			"legend":  map[string]any{"displayMode": "list", "placement": "bottom"},
			"tooltip": map[string]any{"mode": "single"},
		}
		panel["fieldConfig"] = map[string]any{
			"defaults": map[string]any{
				"color": map[string]any{"mode": "palette-classic"},
				"custom": map[string]any{
					"lineWidth":   2,
					"fillOpacity": 10,
					"pointSize":   5,
				},
			},
			"overrides": []any{},
		}

	case plan.PanelXY:
		panel["type"] = "xychart"
		panel["options"] = map[string]any{
			"dims":    map[string]any{"x": nil, "y": nil},
			"legend":  map[string]any{"displayMode": "list", "placement": "bottom"},
			"series":  []map[string]any{{"pointSize": map[string]any{"fixed": 5}, "showPoints": "always"}},
			"tooltip": map[string]any{"mode": "single"},
		}
		panel["fieldConfig"] = map[string]any{
			"defaults":  map[string]any{"color": map[string]any{"mode": "palette-classic"}},
			"overrides": []any{},
		}

	case plan.PanelBarGauge:
		panel["type"] = "bargauge"
		panel["options"] = map[string]any{
			"displayMode":  "gradient",
			"minVizHeight": 10,
			"minVizWidth":  0,
			"orientation":  "horizontal",
			"reduceOptions": map[string]any{
				"calcs":  []string{"lastNotNull"},
				"fields": "",
				"values": false,
			},
			"showUnfilled": true,
		}
		panel["fieldConfig"] = map[string]any{
			"defaults": map[string]any{
				"color": map[string]any{"mode": "thresholds"},
				"thresholds": map[string]any{
					"mode": "absolute",
					"steps": []map[string]any{
						{"color": "green", "value": nil},
						{"color": "yellow", "value": 50},
						{"color": "red", "value": 80},
					},
				},
			},
			"overrides": []any{},
		}

	default:
		panel["type"] = "table"
		panel["options"] = map[string]any{"showHeader": true}
	}

	return panel
}

// GenerateDashboard builds a dashboard document for a plan. A plan with a
// single panel gets the large single-panel layout with a fast refresh; more
// panels go through the grid layout.
func (g *Generator) GenerateDashboard(p *plan.Plan, title string) map[string]any {
	if title == "" {
		title = p.Question
		if title == "" {
			title = "Analytics Dashboard"
		}
		if r := []rune(title); len(r) > maxTitleLen {
			title = string(r[:maxTitleLen])
		}
	}

	if len(p.Viz) > 1 {
		requests := make([]PanelRequest, 0, len(p.Viz))
		for i := range p.Viz {
			requests = append(requests, PanelRequest{
				Spec: p.Viz[i],
				SQL:  plan.EffectiveSQL(p, &p.Viz[i]),
			})
		}
		return g.GenerateMultiPanelDashboard(requests, title)
	}

	dashboard := map[string]any{
		"uid":           newDashboardUID(),
		"title":         title,
		"tags":          []string{"auto-generated", "analytics"},
		"timezone":      "browser",
		"schemaVersion": 38,
		"version":       1,
		"refresh":       "5s",
		"time":          map[string]any{"from": "now-1h", "to": "now"},
		"panels":        []map[string]any{},
	}

	if len(p.Viz) == 1 {
		sql := plan.EffectiveSQL(p, &p.Viz[0])
		if sql != "" {
			panel := g.GeneratePanel(p.Viz[0], sql, GridPos{X: 0, Y: 0, W: 24, H: 12})
			dashboard["panels"] = []map[string]any{panel}
		}
	}

	return dashboard
}

// GenerateMultiPanelDashboard builds a dashboard from explicit panel
// requests, laying them out on the grid.
func (g *Generator) GenerateMultiPanelDashboard(requests []PanelRequest, title string) map[string]any {
	if title == "" {
		title = "Analytics Dashboard"
	}

	types := make([]plan.PanelType, len(requests))
	for i := range requests {
		types[i] = requests[i].Spec.Type
	}
	positions := layoutPanels(types)

	panels := make([]map[string]any, 0, len(requests))
	for i := range requests {
		panels = append(panels, g.GeneratePanel(requests[i].Spec, requests[i].SQL, positions[i]))
	}

	return map[string]any{
		"uid":           newDashboardUID(),
		"title":         title,
		"tags":          []string{"auto-generated", "analytics", "overview"},
		"timezone":      "browser",
		"schemaVersion": 38,
		"version":       1,
		"refresh":       "30s",
		"time":          map[string]any{"from": "now-24h", "to": "now"},
		"panels":        panels,
	}
}
