package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"syscall"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"ParamSweep/internal/di"
	"ParamSweep/internal/domain/models"
	"ParamSweep/internal/usecase"
	"ParamSweep/pkg/config"
	applogger "ParamSweep/pkg/logger"
	"ParamSweep/pkg/util"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#ffffff")).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	profitStyle = lipgloss.NewStyle().Padding(0, 1).Foreground(lipgloss.Color("#33cc33"))
	lossStyle   = lipgloss.NewStyle().Padding(0, 1).Foreground(lipgloss.Color("#cc3300"))
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#0077cc"))
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "config/config.yaml", "config file path")
	strategyList := flag.String("strategies", "", "comma separated strategy ids (default: all known)")
	coinList := flag.String("coins", "", "comma separated coins (default: backtest.coins)")
	rangeList := flag.String("time-ranges", "", "comma separated time-range labels (default: all configured)")
	positionSize := flag.Float64("position-size", 0, "position size in USD (default: backtest.position_size_usd)")
	dryRun := flag.Bool("dry-run", false, "do not persist the best parameters")
	flag.Parse()

	cfg, err := config.LoadWithEnv(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		return 1
	}

	tk, err := di.InitializeToolkit(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "initialization failed: %v\n", err)
		return 1
	}
	defer tk.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	coins := cfg.Backtest.Coins
	if *coinList != "" {
		coins = util.SplitList(*coinList)
	}
	if len(coins) == 0 {
		tk.Logger.Error("no coins: set backtest.coins or -coins")
		return 2
	}

	var ids []string
	if *strategyList != "" {
		ids = util.SplitList(*strategyList)
	} else {
		for _, d := range tk.Catalog.Definitions() {
			ids = append(ids, string(d.ID))
		}
	}

	var labels []string
	if *rangeList != "" {
		labels = util.SplitList(*rangeList)
	} else {
		for label := range cfg.Backtest.TimeRanges {
			labels = append(labels, label)
		}
		sort.Slice(labels, func(i, j int) bool {
			return cfg.Backtest.TimeRanges[labels[i]] < cfg.Backtest.TimeRanges[labels[j]]
		})
	}

	size := cfg.Backtest.PositionSizeUSD
	if *positionSize > 0 {
		size = *positionSize
	}
	persist := !*dryRun

	failed := false
	for _, label := range labels {
		for _, id := range ids {
			if ctx.Err() != nil {
				tk.Logger.Warn("interrupted")
				return 130
			}
			sw, err := tk.Sweeps.Run(ctx, models.SweepRequest{
				Strategy:     id,
				Coins:        coins,
				TimeRange:    label,
				PositionSize: size,
				Persist:      &persist,
			}, progressPrinter(id, label))
			fmt.Fprintln(os.Stderr)
			if err != nil {
				tk.Logger.Error("sweep failed",
					applogger.String("strategy", id),
					applogger.String("time_range", label),
					applogger.Error(err),
				)
				failed = true
				continue
			}
			printSweep(sw)
		}
	}
	if failed {
		return 1
	}
	return 0
}

// progressPrinter redraws a single status line on stderr at whole-percent
// steps.
func progressPrinter(id, label string) usecase.ProgressFunc {
	last := -1
	return func(p models.Progress) {
		if p.Total == 0 {
			return
		}
		pct := p.Completed * 100 / p.Total
		if pct == last {
			return
		}
		last = pct
		fmt.Fprintf(os.Stderr, "\r%s [%s] %d/%d (%d%%)", id, label, p.Completed, p.Total, pct)
	}
}

func printSweep(sw *models.Sweep) {
	fmt.Println(titleStyle.Render(fmt.Sprintf("%s · %s · status=%s", sw.Strategy, sw.TimeRange, sw.Status)))
	if sw.Error != "" {
		fmt.Println(lossStyle.Render(sw.Error))
	}
	for _, s := range sw.Skipped {
		fmt.Printf("  skipped %s: %s\n", s.Coin, s.Error)
	}
	if len(sw.Best) == 0 {
		fmt.Println("  no parameter set produced a closed trade")
		return
	}

	rows := make([][]string, 0, len(sw.Best))
	for _, r := range sw.Best {
		rows = append(rows, []string{
			r.Coin,
			r.Params.String(),
			strconv.Itoa(r.TotalTrades),
			strconv.FormatFloat(r.WinRate, 'f', 1, 64) + "%",
			strconv.FormatFloat(r.TotalProfit, 'f', 2, 64),
			strconv.Itoa(r.SignalsGenerated),
		})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("#333333"))).
		Headers("COIN", "PARAMS", "TRADES", "WIN RATE", "PROFIT $", "SIGNALS").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			if col == 4 && row >= 0 && row < len(sw.Best) {
				if sw.Best[row].TotalProfit >= 0 {
					return profitStyle
				}
				return lossStyle
			}
			return cellStyle
		})
	fmt.Println(t.Render())

	if sw.Save != nil {
		fmt.Printf("  saved %d", len(sw.Save.Saved))
		if sw.Save.Partial() {
			fmt.Printf(", failed %d", len(sw.Save.Failed))
			for _, f := range sw.Save.Failed {
				fmt.Printf("\n    %s: %s", f.Coin, f.Error)
			}
		}
		fmt.Println()
	}
}
