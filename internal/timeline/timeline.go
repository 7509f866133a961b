// Package timeline shapes the bot's decision log into the chart series and
// the recent-activity table. Log records are heterogeneous: the timestamp
// lives in created_at or timestamp, the decision in intent or action, and the
// reasoning in rationale or thesis, depending on schema generation.
package timeline

import (
	"sort"
	"strings"
	"time"

	"github.com/camuig/bot-dashboard/internal/coerce"
	"github.com/camuig/bot-dashboard/internal/storage"
)

// Canonical intents the chart knows how to plot.
var intentMap = map[string]string{
	"ENTER_LONG":  "enter_long",
	"ENTER_SHORT": "enter_short",
	"ADD":         "add",
	"REDUCE":      "reduce",
	"CLOSE":       "flat",
	"HOLD":        "hold",
	"REVERSE":     "reverse",
}

// Marker group keys. Close and reverse share one group on the chart.
const (
	MarkerEnterLong  = "enter_long"
	MarkerEnterShort = "enter_short"
	MarkerAdd        = "add"
	MarkerReduce     = "reduce"
	MarkerExit       = "exit"
)

// MarkerOrder fixes the legend order of the marker overlays.
var MarkerOrder = []string{MarkerEnterLong, MarkerEnterShort, MarkerAdd, MarkerReduce, MarkerExit}

// NormalizeIntent maps a raw intent/action value onto the canonical set.
// Unknown values pass through lower-cased; they are computed but never
// plotted, since only the five fixed marker groups reach the chart.
func NormalizeIntent(raw string) string {
	if mapped, ok := intentMap[strings.ToUpper(raw)]; ok {
		return mapped
	}
	return strings.ToLower(raw)
}

// Point is one decision record placed on the time axis.
type Point struct {
	Time   time.Time
	Price  *float64
	Intent string
}

// Series is the chart-ready decision timeline for one render pass: all
// parsable records ascending by time, plus the five marker groups.
type Series struct {
	Points  []Point
	Markers map[string][]Point
}

// Build converts the fetched log records into a Series. Records without a
// parsable timestamp are dropped from the chart (but stay visible in the
// recent-activity table, which works off the raw records).
func Build(logs []storage.Record) Series {
	points := make([]Point, 0, len(logs))
	for _, rec := range logs {
		ts, ok := coerce.Time(timestampField(rec))
		if !ok {
			continue
		}
		intent := intentField(rec)
		if intent == "" {
			intent = "hold"
		}
		price, _ := coerce.FloatPtr(rec["market_price"])
		points = append(points, Point{
			Time:   ts,
			Price:  price,
			Intent: NormalizeIntent(intent),
		})
	}

	sort.SliceStable(points, func(i, j int) bool {
		return points[i].Time.Before(points[j].Time)
	})

	markers := map[string][]Point{}
	for _, p := range points {
		switch p.Intent {
		case "enter_long":
			markers[MarkerEnterLong] = append(markers[MarkerEnterLong], p)
		case "enter_short":
			markers[MarkerEnterShort] = append(markers[MarkerEnterShort], p)
		case "add":
			markers[MarkerAdd] = append(markers[MarkerAdd], p)
		case "reduce":
			markers[MarkerReduce] = append(markers[MarkerReduce], p)
		case "flat", "reverse":
			markers[MarkerExit] = append(markers[MarkerExit], p)
		}
	}

	return Series{Points: points, Markers: markers}
}

// LatestPrice extracts the market price of the newest record (the fetch is
// newest-first, so that is the first one). Nil when absent or non-numeric.
func LatestPrice(logs []storage.Record) *float64 {
	if len(logs) == 0 {
		return nil
	}
	price, _ := coerce.FloatPtr(logs[0]["market_price"])
	return price
}

// ActivityRow is one line of the recent-activity table.
type ActivityRow struct {
	Time     string
	Decision string
	Thesis   string
}

const thesisMaxLen = 160

// RecentActivity renders up to limit of the newest raw records, keeping store
// order. The time column shows just the clock part when the raw value looks
// like an ISO timestamp.
func RecentActivity(logs []storage.Record, limit int) []ActivityRow {
	if limit > len(logs) {
		limit = len(logs)
	}
	rows := make([]ActivityRow, 0, limit)
	for _, rec := range logs[:limit] {
		ts := coerce.String(timestampField(rec), "")
		rows = append(rows, ActivityRow{
			Time:     clockPart(ts),
			Decision: intentField(rec),
			Thesis:   truncate(thesisField(rec), thesisMaxLen),
		})
	}
	return rows
}

// timestampField prefers created_at over the legacy timestamp column.
func timestampField(rec storage.Record) any {
	if v, ok := rec["created_at"]; ok && v != nil {
		return v
	}
	return rec["timestamp"]
}

// intentField prefers intent over the legacy action column. The chart
// defaults an empty result to hold; the activity table shows it as-is.
func intentField(rec storage.Record) string {
	if v := coerce.String(rec["intent"], ""); v != "" {
		return v
	}
	return coerce.String(rec["action"], "")
}

func thesisField(rec storage.Record) string {
	if v := coerce.String(rec["rationale"], ""); v != "" {
		return v
	}
	return coerce.String(rec["thesis"], "")
}

// clockPart extracts HH:MM:SS from an ISO timestamp string; anything else is
// shown as-is.
func clockPart(ts string) string {
	if !strings.Contains(ts, "T") {
		return ts
	}
	if len(ts) >= 19 {
		return ts[11:19]
	}
	if len(ts) > 11 {
		return ts[11:]
	}
	return ts
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
