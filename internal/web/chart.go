package web

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/camuig/bot-dashboard/internal/timeline"
)

// Marker overlay names and colors, keyed by timeline marker group.
var markerLegend = map[string]struct {
	Name  string
	Color drawing.Color
}{
	timeline.MarkerEnterLong:  {"Enter Long", drawing.ColorFromHex("16a34a")},
	timeline.MarkerEnterShort: {"Enter Short", drawing.ColorFromHex("dc2626")},
	timeline.MarkerAdd:        {"Add", drawing.ColorFromHex("0891b2")},
	timeline.MarkerReduce:     {"Reduce", drawing.ColorFromHex("d97706")},
	timeline.MarkerExit:       {"Exit/Reverse", drawing.ColorFromHex("7c3aed")},
}

func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	logs, err := s.repo.FetchBotLogs(s.config.Fetch.LogLimit)
	if err != nil {
		s.logger.Error("chart fetch failed", "error", err)
		http.Error(w, "database connection error", http.StatusInternalServerError)
		return
	}

	png, err := RenderDecisionChart(timeline.Build(logs))
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	if _, err := w.Write(png); err != nil {
		s.logger.Error("write chart", "error", err)
	}
}

// chartable counts the points a chart line can actually use.
func chartable(series timeline.Series) int {
	n := 0
	for _, p := range series.Points {
		if p.Price != nil {
			n++
		}
	}
	return n
}

// RenderDecisionChart draws the market-price line with one marker overlay per
// decision group. Points without a numeric price are left off the chart.
// Returns raw PNG bytes.
func RenderDecisionChart(series timeline.Series) ([]byte, error) {
	xs, ys := pricePoints(series.Points)
	if len(xs) < 2 {
		return nil, fmt.Errorf("need at least 2 price points, got %d", len(xs))
	}

	priceSeries := chart.TimeSeries{
		Name: "Market Price",
		Style: chart.Style{
			StrokeColor: drawing.ColorFromHex("2563eb"), // blue-600
			StrokeWidth: 2.0,
		},
		XValues: xs,
		YValues: ys,
	}

	allSeries := []chart.Series{priceSeries}
	for _, key := range timeline.MarkerOrder {
		mx, my := pricePoints(series.Markers[key])
		if len(mx) == 0 {
			continue
		}
		legend := markerLegend[key]
		allSeries = append(allSeries, chart.TimeSeries{
			Name: legend.Name,
			Style: chart.Style{
				StrokeWidth: chart.Disabled,
				DotWidth:    5,
				DotColor:    legend.Color,
			},
			XValues: mx,
			YValues: my,
		})
	}

	graph := chart.Chart{
		Title:  "Price with Decision Markers",
		Width:  1100,
		Height: 420,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 10, Right: 20, Bottom: 10},
		},
		XAxis: chart.XAxis{
			TickPosition: chart.TickPositionBetweenTicks,
			ValueFormatter: func(v interface{}) string {
				if t, ok := v.(float64); ok {
					return chart.TimeFromFloat64(t).UTC().Format("Jan 2 15:04")
				}
				return ""
			},
		},
		YAxis: chart.YAxis{
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return fmt.Sprintf("$%.2f", f)
				}
				return ""
			},
		},
		Series: allSeries,
	}

	graph.Elements = []chart.Renderable{
		chart.LegendLeft(&graph),
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("chart render failed: %w", err)
	}

	return buf.Bytes(), nil
}

func pricePoints(points []timeline.Point) ([]time.Time, []float64) {
	xs := make([]time.Time, 0, len(points))
	ys := make([]float64, 0, len(points))
	for _, p := range points {
		if p.Price == nil {
			continue
		}
		xs = append(xs, p.Time)
		ys = append(ys, *p.Price)
	}
	return xs, ys
}
