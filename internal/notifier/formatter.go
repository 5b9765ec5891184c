package notifier

import (
	"fmt"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/shopspring/decimal"

	"RocSentinel/internal/model"
)

// FormatMoney renders v with two decimals, rounding half away from zero.
func FormatMoney(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}

// FormatEvent formats a single trade event as one log line.
func FormatEvent(ev model.TradeEvent) string {
	return fmt.Sprintf("%s at i: %d price: %s units: %.4f value: $%s",
		ev.Action, ev.Index, FormatMoney(ev.Price), ev.Units, FormatMoney(ev.Value))
}

// FormatFinalValue formats the closing line of a run.
func FormatFinalValue(res *model.BacktestResult) string {
	return fmt.Sprintf("Final Portfolio Value: $%s", FormatMoney(res.FinalValue))
}

// FormatSummary renders the run parameters and results as a text table.
func FormatSummary(series *model.PriceSeries, res *model.BacktestResult) string {
	p := res.Params

	t := table.NewWriter()
	t.SetTitle(fmt.Sprintf("ROC Backtest | %s", time.Now().Format("2006-01-02")))
	t.AppendRows([]table.Row{
		{"Symbol", series.Symbol},
		{"Source", series.Source},
		{"Bars", series.Len()},
		{"Period", p.Period},
		{"Threshold", fmt.Sprintf("%.2f", p.Threshold)},
		{"Starting Value", "$" + FormatMoney(p.StartingValue)},
	})
	t.AppendSeparator()
	t.AppendRows([]table.Row{
		{"Trades", res.Trades()},
		{"Final State", holdingLabel(res)},
		{"Realized Value", "$" + FormatMoney(res.RealizedValue)},
		{"Final Value", "$" + FormatMoney(res.FinalValue)},
		{"Return", fmt.Sprintf("%+.2f%%", res.ReturnPct())},
	})
	t.AppendSeparator()
	t.AppendRows([]table.Row{
		{"ROC mean / stddev", fmt.Sprintf("%.2f / %.2f", res.ROCSummary.Mean, res.ROCSummary.StdDev)},
		{"ROC min / max", fmt.Sprintf("%.2f / %.2f", res.ROCSummary.Min, res.ROCSummary.Max)},
	})
	if res.TradeSummary.Count > 0 {
		t.AppendRows([]table.Row{
			{"Round trips", res.TradeSummary.Count},
			{"Trade return mean", fmt.Sprintf("%+.2f%%", res.TradeSummary.Mean)},
			{"Best / worst trade", fmt.Sprintf("%+.2f%% / %+.2f%%", res.TradeSummary.Max, res.TradeSummary.Min)},
		})
	}
	return t.Render()
}

// FormatReport joins the event lines, the summary table and the final value.
func FormatReport(series *model.PriceSeries, res *model.BacktestResult) string {
	var b strings.Builder
	for _, ev := range res.Events {
		b.WriteString(FormatEvent(ev))
		b.WriteString("\n")
	}
	b.WriteString(FormatResult(series, res))
	return b.String()
}

// FormatResult is the summary table followed by the final value.
func FormatResult(series *model.PriceSeries, res *model.BacktestResult) string {
	return FormatSummary(series, res) + "\n" + FormatFinalValue(res)
}

func holdingLabel(res *model.BacktestResult) string {
	if !res.Holding {
		return "flat"
	}
	if res.Params.MarkToMarket {
		return fmt.Sprintf("holding %.4f units (marked at %s)", res.Units, FormatMoney(res.LastPrice))
	}
	return fmt.Sprintf("holding %.4f units (not marked)", res.Units)
}
