// Package history presents closed trades. Both schema generations are
// displayed as one table: timestamps are unified into a single column and
// only columns that actually occur in the fetched set are shown.
package history

import (
	"sort"
	"time"

	"github.com/camuig/bot-dashboard/internal/coerce"
	"github.com/camuig/bot-dashboard/internal/storage"
)

const displayTimeLayout = "2006-01-02 15:04:05"

// Columns the table may show, in display order. "time" is the unified
// created_at/timestamp column.
var allowedColumns = []string{
	"time", "symbol", "side", "entry_price", "exit_price",
	"qty", "leverage", "pnl", "fees", "roi_pct", "reason",
}

// Table is the closed-trade table ready for rendering.
type Table struct {
	Columns []string
	Rows    [][]string
}

func (t Table) Empty() bool {
	return len(t.Rows) == 0
}

type trade struct {
	rec    storage.Record
	at     time.Time
	parsed bool
}

// Present sorts trades newest-first and projects them onto the columns that
// are present across the set. Trades with an unparsable timestamp sort last
// and show an empty time cell.
func Present(records []storage.Record) Table {
	trades := make([]trade, 0, len(records))
	for _, rec := range records {
		at, ok := coerce.Time(timestampField(rec))
		trades = append(trades, trade{rec: rec, at: at, parsed: ok})
	}

	sort.SliceStable(trades, func(i, j int) bool {
		return trades[i].at.After(trades[j].at)
	})

	columns := presentColumns(records)
	rows := make([][]string, 0, len(trades))
	for _, t := range trades {
		row := make([]string, 0, len(columns))
		for _, col := range columns {
			if col == "time" {
				if t.parsed {
					row = append(row, t.at.Format(displayTimeLayout))
				} else {
					row = append(row, "")
				}
				continue
			}
			row = append(row, coerce.String(t.rec[col], ""))
		}
		rows = append(rows, row)
	}

	return Table{Columns: columns, Rows: rows}
}

func presentColumns(records []storage.Record) []string {
	seen := map[string]bool{}
	for _, rec := range records {
		for key, v := range rec {
			if v != nil {
				seen[key] = true
			}
		}
	}

	var columns []string
	for _, col := range allowedColumns {
		if col == "time" {
			if seen["created_at"] || seen["timestamp"] {
				columns = append(columns, col)
			}
			continue
		}
		if seen[col] {
			columns = append(columns, col)
		}
	}
	return columns
}

func timestampField(rec storage.Record) any {
	if v, ok := rec["created_at"]; ok && v != nil {
		return v
	}
	return rec["timestamp"]
}
