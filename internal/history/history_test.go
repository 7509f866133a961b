package history

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/camuig/bot-dashboard/internal/storage"
)

func TestPresentColumnSelection(t *testing.T) {
	records := []storage.Record{
		{"created_at": "2024-01-01T10:00:00Z", "symbol": "BTC/USDT", "side": "long", "pnl": 12.5},
		{"created_at": "2024-01-02T10:00:00Z", "symbol": "ETH/USDT", "side": "short", "pnl": -3.0, "reason": "stop loss"},
	}

	table := Present(records)
	assert.Equal(t, []string{"time", "symbol", "side", "pnl", "reason"}, table.Columns)
	require.Len(t, table.Rows, 2)
}

func TestPresentIgnoresUnknownColumns(t *testing.T) {
	records := []storage.Record{
		{"created_at": "2024-01-01T10:00:00Z", "symbol": "BTC/USDT", "id": 7, "internal_flag": true},
	}

	table := Present(records)
	assert.Equal(t, []string{"time", "symbol"}, table.Columns)
}

func TestPresentSortsNewestFirst(t *testing.T) {
	records := []storage.Record{
		{"created_at": "2024-01-01T10:00:00Z", "symbol": "OLD"},
		{"created_at": "2024-01-03T10:00:00Z", "symbol": "NEW"},
		{"created_at": "2024-01-02T10:00:00Z", "symbol": "MID"},
	}

	table := Present(records)
	require.Len(t, table.Rows, 3)
	assert.Equal(t, "NEW", table.Rows[0][1])
	assert.Equal(t, "MID", table.Rows[1][1])
	assert.Equal(t, "OLD", table.Rows[2][1])
}

func TestPresentTimestampFormat(t *testing.T) {
	records := []storage.Record{
		{"created_at": "2024-01-01T12:34:56.789+00:00", "symbol": "BTC/USDT"},
	}

	table := Present(records)
	require.Len(t, table.Rows, 1)
	assert.Equal(t, "2024-01-01 12:34:56", table.Rows[0][0])

	// deterministic for a fixed input
	again := Present(records)
	assert.Equal(t, table, again)
}

func TestPresentLegacyTimestampColumn(t *testing.T) {
	records := []storage.Record{
		{"timestamp": "2024-01-01T10:00:00Z", "symbol": "BTC/USDT", "qty": 0.5},
	}

	table := Present(records)
	assert.Equal(t, []string{"time", "symbol", "qty"}, table.Columns)
	assert.Equal(t, "2024-01-01 10:00:00", table.Rows[0][0])
}

func TestPresentUnparsableTimestampSortsLast(t *testing.T) {
	records := []storage.Record{
		{"created_at": "garbage", "symbol": "BROKEN"},
		{"created_at": "2024-01-01T10:00:00Z", "symbol": "GOOD"},
	}

	table := Present(records)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, "GOOD", table.Rows[0][1])
	assert.Equal(t, "BROKEN", table.Rows[1][1])
	assert.Equal(t, "", table.Rows[1][0], "unparsable time shows empty cell")
}

func TestPresentEmpty(t *testing.T) {
	table := Present(nil)
	assert.True(t, table.Empty())
	assert.Empty(t, table.Columns)
}
