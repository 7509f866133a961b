package timeline

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/camuig/bot-dashboard/internal/storage"
)

func TestNormalizeIntent(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"ENTER_LONG", "enter_long"},
		{"enter_short", "enter_short"},
		{"Add", "add"},
		{"REDUCE", "reduce"},
		{"CLOSE", "flat"},
		{"hold", "hold"},
		{"REVERSE", "reverse"},
		{"UNKNOWN_X", "unknown_x"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeIntent(tt.raw))
		})
	}
}

func TestBuildSortsAscending(t *testing.T) {
	logs := []storage.Record{
		{"created_at": "2024-01-03T10:00:00Z", "intent": "HOLD", "market_price": 103.0},
		{"created_at": "2024-01-01T10:00:00Z", "intent": "HOLD", "market_price": 101.0},
		{"created_at": "2024-01-02T10:00:00Z", "intent": "HOLD", "market_price": 102.0},
	}

	series := Build(logs)
	require.Len(t, series.Points, 3)
	assert.True(t, series.Points[0].Time.Before(series.Points[1].Time))
	assert.True(t, series.Points[1].Time.Before(series.Points[2].Time))
	assert.Equal(t, 101.0, *series.Points[0].Price)
}

func TestBuildMarkerGroups(t *testing.T) {
	logs := []storage.Record{
		{"created_at": "2024-01-01T10:00:00Z", "intent": "ENTER_LONG", "market_price": 100.0},
		{"created_at": "2024-01-01T11:00:00Z", "intent": "ENTER_SHORT", "market_price": 101.0},
		{"created_at": "2024-01-01T12:00:00Z", "intent": "ADD", "market_price": 102.0},
		{"created_at": "2024-01-01T13:00:00Z", "intent": "REDUCE", "market_price": 103.0},
		{"created_at": "2024-01-01T14:00:00Z", "intent": "CLOSE", "market_price": 104.0},
		{"created_at": "2024-01-01T15:00:00Z", "intent": "REVERSE", "market_price": 105.0},
		{"created_at": "2024-01-01T16:00:00Z", "intent": "HOLD", "market_price": 106.0},
	}

	series := Build(logs)
	assert.Len(t, series.Markers[MarkerEnterLong], 1)
	assert.Len(t, series.Markers[MarkerEnterShort], 1)
	assert.Len(t, series.Markers[MarkerAdd], 1)
	assert.Len(t, series.Markers[MarkerReduce], 1)
	// close and reverse share the exit group
	assert.Len(t, series.Markers[MarkerExit], 2)

	total := 0
	for _, pts := range series.Markers {
		total += len(pts)
	}
	assert.Equal(t, 6, total, "hold is never a marker")
}

func TestBuildUnknownIntentNotPlotted(t *testing.T) {
	logs := []storage.Record{
		{"created_at": "2024-01-01T10:00:00Z", "intent": "UNKNOWN_X", "market_price": 100.0},
	}

	series := Build(logs)
	require.Len(t, series.Points, 1)
	assert.Equal(t, "unknown_x", series.Points[0].Intent)
	for key, pts := range series.Markers {
		assert.Empty(t, pts, "group %s", key)
	}
}

func TestBuildDropsUnparsableTimestamps(t *testing.T) {
	logs := []storage.Record{
		{"created_at": "not-a-date", "intent": "HOLD", "market_price": 100.0},
		{"created_at": "2024-01-01T10:00:00Z", "intent": "HOLD", "market_price": 101.0},
		{"intent": "HOLD", "market_price": 102.0},
	}

	series := Build(logs)
	require.Len(t, series.Points, 1)
	assert.Equal(t, 101.0, *series.Points[0].Price)

	// the raw activity view keeps every record
	assert.Len(t, RecentActivity(logs, 25), 3)
}

func TestBuildFieldFallbacks(t *testing.T) {
	logs := []storage.Record{
		{"timestamp": "2024-01-01T10:00:00Z", "action": "ENTER_LONG", "market_price": "99.5"},
		{"created_at": "2024-01-01T11:00:00Z"},
	}

	series := Build(logs)
	require.Len(t, series.Points, 2)

	legacy := series.Points[0]
	assert.Equal(t, "enter_long", legacy.Intent)
	require.NotNil(t, legacy.Price)
	assert.Equal(t, 99.5, *legacy.Price)

	bare := series.Points[1]
	assert.Equal(t, "hold", bare.Intent)
	assert.Nil(t, bare.Price)
}

func TestBuildNonNumericPrice(t *testing.T) {
	logs := []storage.Record{
		{"created_at": "2024-01-01T10:00:00Z", "intent": "HOLD", "market_price": "n/a"},
	}

	series := Build(logs)
	require.Len(t, series.Points, 1)
	assert.Nil(t, series.Points[0].Price)
}

func TestLatestPrice(t *testing.T) {
	logs := []storage.Record{
		{"created_at": "2024-01-02T10:00:00Z", "market_price": 110.0},
		{"created_at": "2024-01-01T10:00:00Z", "market_price": 100.0},
	}

	price := LatestPrice(logs)
	require.NotNil(t, price)
	assert.Equal(t, 110.0, *price)

	assert.Nil(t, LatestPrice(nil))
	assert.Nil(t, LatestPrice([]storage.Record{{"created_at": "2024-01-01T10:00:00Z"}}))
	assert.Nil(t, LatestPrice([]storage.Record{{"market_price": "oops"}}))
}

func TestRecentActivity(t *testing.T) {
	logs := []storage.Record{
		{
			"created_at": "2024-01-01T12:34:56.789+00:00",
			"intent":     "ENTER_LONG",
			"rationale":  strings.Repeat("x", 200),
		},
		{
			"timestamp": "yesterday",
			"action":    "CLOSE",
			"thesis":    "took profit",
		},
		{},
	}

	rows := RecentActivity(logs, 25)
	require.Len(t, rows, 3)

	assert.Equal(t, "12:34:56", rows[0].Time)
	assert.Equal(t, "ENTER_LONG", rows[0].Decision)
	assert.Len(t, rows[0].Thesis, 160)

	assert.Equal(t, "yesterday", rows[1].Time, "non-ISO timestamps shown raw")
	assert.Equal(t, "CLOSE", rows[1].Decision)
	assert.Equal(t, "took profit", rows[1].Thesis)

	assert.Equal(t, "", rows[2].Time)
	assert.Equal(t, "", rows[2].Decision)
}

func TestRecentActivityLimit(t *testing.T) {
	logs := make([]storage.Record, 40)
	for i := range logs {
		logs[i] = storage.Record{
			"created_at": fmt.Sprintf("2024-01-01T10:%02d:00Z", i),
			"intent":     "HOLD",
		}
	}

	rows := RecentActivity(logs, 25)
	require.Len(t, rows, 25)
	// store order preserved, no re-sorting
	assert.Equal(t, "10:00:00", rows[0].Time)
	assert.Equal(t, "10:24:00", rows[24].Time)
}

func TestRecentActivityTimeFromStoreValue(t *testing.T) {
	// drivers may hand back time.Time instead of the raw string
	logs := []storage.Record{
		{"created_at": time.Date(2024, 1, 1, 9, 8, 7, 0, time.UTC), "intent": "HOLD"},
	}

	rows := RecentActivity(logs, 25)
	require.Len(t, rows, 1)
	assert.Equal(t, "09:08:07", rows[0].Time)
}
