package web

import (
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/camuig/bot-dashboard/internal/coerce"
	"github.com/camuig/bot-dashboard/internal/history"
	"github.com/camuig/bot-dashboard/internal/portfolio"
	"github.com/camuig/bot-dashboard/internal/timeline"
)

//go:embed templates/dashboard.html
var templateFS embed.FS

var dashboardTmpl = template.Must(template.ParseFS(templateFS, "templates/dashboard.html"))

var moneyPrinter = message.NewPrinter(language.English)

const recentActivityLimit = 25

type positionRow struct {
	Symbol     string
	Side       string
	Collateral string
	Leverage   string
	Notional   string
	Entry      string
	PnL        string
	ROI        string
}

type controlState struct {
	Auto     bool
	Interval int
	Min      int
	Max      int
}

type debugInfo struct {
	StoreURL string
	LogRows  int
	LogKeys  []string
}

type dashboardData struct {
	Error string

	Balance       string
	OpenPositions int
	LatestPrice   string
	UnrealizedPnL string

	Positions []positionRow
	HasChart  bool
	Activity  []timeline.ActivityRow
	History   history.Table

	Debug    debugInfo
	Controls controlState
}

// handleDashboard runs one full render pass: fetch, normalize, render.
// Fetch failures end the pass with a visible error; the process keeps
// serving and the next request starts from scratch.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	data := s.buildDashboard(s.parseControls(r))
	if data.Error != "" {
		s.logger.Error("render pass failed", "error", data.Error)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := dashboardTmpl.Execute(w, data); err != nil {
		s.logger.Error("execute template", "error", err)
	}
}

func (s *Server) buildDashboard(controls controlState) dashboardData {
	data := dashboardData{
		Controls: controls,
		Debug:    debugInfo{StoreURL: s.config.Store.URLPreview()},
	}

	state, err := s.repo.FetchPortfolioState()
	if err != nil {
		data.Error = err.Error()
		return data
	}

	logs, err := s.repo.FetchBotLogs(s.config.Fetch.LogLimit)
	if err != nil {
		data.Error = fmt.Sprintf("database connection error: %v", err)
		return data
	}

	trades, err := s.repo.FetchTradeHistory(s.config.Fetch.HistoryLimit)
	if err != nil {
		data.Error = fmt.Sprintf("database connection error: %v", err)
		return data
	}

	rawPositions, err := portfolio.ParsePositions(state["positions"])
	if err != nil {
		// malformed positions column is per-record data, not a pass failure
		s.logger.Warn("positions column unreadable", "error", err)
		rawPositions = portfolio.RawPositions{}
	}

	latest := timeline.LatestPrice(logs)
	views := portfolio.Normalize(rawPositions, latest)
	metrics := portfolio.ComputeMetrics(coerce.Float(state["balance_usdt"], 0), views, latest)
	series := timeline.Build(logs)

	data.Balance = money(metrics.Balance)
	data.OpenPositions = metrics.OpenPositions
	data.LatestPrice = "N/A"
	if metrics.LatestPrice != nil && *metrics.LatestPrice != 0 {
		data.LatestPrice = money(*metrics.LatestPrice)
	}
	data.UnrealizedPnL = money(metrics.UnrealizedPnL)

	for _, v := range views {
		data.Positions = append(data.Positions, positionRow{
			Symbol:     v.Symbol,
			Side:       strings.ToUpper(v.Side),
			Collateral: money(v.Collateral),
			Leverage:   strconv.FormatFloat(v.Leverage, 'f', -1, 64) + "x",
			Notional:   wholeMoney(v.Notional),
			Entry:      money(v.Entry),
			PnL:        money(v.PnL),
			ROI:        fmt.Sprintf("%.2f%%", v.ROIPct),
		})
	}

	data.HasChart = chartable(series) >= 2
	data.Activity = timeline.RecentActivity(logs, recentActivityLimit)
	data.History = history.Present(trades)

	data.Debug.LogRows = len(logs)
	if len(logs) > 0 {
		keys := make([]string, 0, len(logs[0]))
		for k := range logs[0] {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		data.Debug.LogKeys = keys
	}

	return data
}

// parseControls reads the auto-refresh form state, clamping the interval to
// the configured range.
func (s *Server) parseControls(r *http.Request) controlState {
	cfg := s.config.Web
	c := controlState{
		Interval: cfg.DefaultRefreshInterval,
		Min:      cfg.MinRefreshInterval,
		Max:      cfg.MaxRefreshInterval,
	}

	q := r.URL.Query()
	c.Auto = q.Get("auto") == "1" || q.Get("auto") == "on"
	if v, err := strconv.Atoi(q.Get("interval")); err == nil {
		c.Interval = v
	}
	if c.Interval < c.Min {
		c.Interval = c.Min
	}
	if c.Interval > c.Max {
		c.Interval = c.Max
	}
	return c
}

func money(v float64) string {
	d := number.Decimal(v, number.MinFractionDigits(2), number.MaxFractionDigits(2))
	return moneyPrinter.Sprintf("$%v", d)
}

func wholeMoney(v float64) string {
	d := number.Decimal(v, number.MaxFractionDigits(0))
	return moneyPrinter.Sprintf("$%v", d)
}
