package storage

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Record is one store row in generic form. The bot's tables exist in two
// schema generations that disagree on column names, so rows are read without
// a fixed model and resolved field-by-field at display time.
type Record = map[string]any

const (
	tableBotLogs        = "bot_logs"
	tableTradeHistory   = "trade_history"
	tablePortfolioState = "portfolio_state"

	// Newer deployments order by created_at; older schemas only have timestamp.
	preferredSortColumn = "created_at"
	fallbackSortColumn  = "timestamp"
)

// ErrPortfolioNotFound is returned when the singleton portfolio row is absent.
var ErrPortfolioNotFound = errors.New("portfolio_state row id=1 not found")

// Repository exposes the three read queries the dashboard needs.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// FetchBotLogs returns the newest decision log records, newest first.
func (r *Repository) FetchBotLogs(limit int) ([]Record, error) {
	return r.fetchList(tableBotLogs, preferredSortColumn, fallbackSortColumn, limit)
}

// FetchTradeHistory returns the newest closed trades, newest first.
func (r *Repository) FetchTradeHistory(limit int) ([]Record, error) {
	return r.fetchList(tableTradeHistory, preferredSortColumn, fallbackSortColumn, limit)
}

// FetchPortfolioState reads the singleton portfolio row (id=1).
func (r *Repository) FetchPortfolioState() (Record, error) {
	var rows []Record
	err := r.db.Table(tablePortfolioState).Where("id = ?", 1).Limit(1).Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", tablePortfolioState, err)
	}
	if len(rows) == 0 {
		return nil, ErrPortfolioNotFound
	}
	return rows[0], nil
}

// fetchList orders by the preferred column and retries exactly once on the
// fallback column. A failure of both attempts propagates to the caller.
func (r *Repository) fetchList(table, preferredCol, fallbackCol string, limit int) ([]Record, error) {
	rows, err := r.fetchOrdered(table, preferredCol, limit)
	if err == nil {
		return rows, nil
	}
	rows, ferr := r.fetchOrdered(table, fallbackCol, limit)
	if ferr != nil {
		return nil, fmt.Errorf("fetch %s: %w", table, ferr)
	}
	return rows, nil
}

func (r *Repository) fetchOrdered(table, orderCol string, limit int) ([]Record, error) {
	var rows []Record
	err := r.db.Table(table).
		Order(clause.OrderByColumn{Column: clause.Column{Name: orderCol}, Desc: true}).
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
