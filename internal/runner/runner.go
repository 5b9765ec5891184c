package runner

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"RocSentinel/internal/calculator"
	"RocSentinel/internal/collector"
	"RocSentinel/internal/metrics"
	"RocSentinel/internal/model"
	"RocSentinel/internal/notifier"
	"RocSentinel/internal/recorder"
	"RocSentinel/internal/strategy"
)

// Runner executes one full backtest: collect, compute ROC, simulate, report, record.
type Runner struct {
	Collector *collector.Collector
	Params    model.BacktestParams
	Notifier  notifier.Notifier
	Recorder  recorder.Recorder
	Logger    zerolog.Logger

	// Live, when set, receives each trade line as the simulator emits it.
	// The report sent to Notifier then carries only the summary.
	Live notifier.Notifier
}

// New creates a Runner.
func New(col *collector.Collector, params model.BacktestParams, n notifier.Notifier, rec recorder.Recorder, logger zerolog.Logger) *Runner {
	return &Runner{Collector: col, Params: params, Notifier: n, Recorder: rec, Logger: logger}
}

// Run performs one backtest. Any failure before the simulation completes aborts
// the run; reporting and recording failures are logged and do not.
func (r *Runner) Run(ctx context.Context) (*model.BacktestResult, error) {
	res, err := r.run(ctx)
	if err != nil {
		metrics.RunsTotal.WithLabelValues("error").Inc()
		return nil, err
	}
	metrics.RunsTotal.WithLabelValues("ok").Inc()
	return res, nil
}

func (r *Runner) run(ctx context.Context) (*model.BacktestResult, error) {
	runID := uuid.NewString()
	startedAt := time.Now()
	log := r.Logger.With().Str("run_id", runID).Logger()

	series, err := r.Collector.Collect(ctx)
	if err != nil {
		return nil, fmt.Errorf("collect: %w", err)
	}
	prices := series.Closes()

	roc, err := calculator.CalculateROC(prices, r.Params.Period)
	if err != nil {
		return nil, fmt.Errorf("compute roc: %w", err)
	}
	log.Debug().Int("roc_values", len(roc)).Int("period", r.Params.Period).Msg("roc computed")

	sim := strategy.NewSimulator(r.Params, log)
	if r.Live != nil {
		sim.OnEvent = func(ev model.TradeEvent) {
			if err := r.Live.Send(ctx, notifier.FormatEvent(ev)); err != nil {
				log.Error().Err(err).Int("index", ev.Index).Msg("send trade event")
			}
		}
	}
	res, err := sim.Run(roc, prices)
	if err != nil {
		return nil, fmt.Errorf("simulate: %w", err)
	}
	res.RunID = runID
	res.ROCSummary = calculator.Summarize(roc)
	res.TradeReturns = calculator.RoundTripReturns(res.Events)
	res.TradeSummary = calculator.Summarize(res.TradeReturns)

	for _, ev := range res.Events {
		metrics.TradesTotal.WithLabelValues(string(ev.Action)).Inc()
	}
	metrics.FinalValue.WithLabelValues(series.Symbol).Set(res.FinalValue)

	if r.Notifier != nil {
		report := notifier.FormatReport(series, res)
		if r.Live != nil {
			report = notifier.FormatResult(series, res)
		}
		if err := r.Notifier.Send(ctx, report); err != nil {
			log.Error().Err(err).Msg("send report")
		}
	}
	r.record(log, startedAt, series, res)

	log.Info().
		Str("symbol", series.Symbol).
		Int("trades", res.Trades()).
		Bool("holding", res.Holding).
		Str("final_value", notifier.FormatMoney(res.FinalValue)).
		Msg("backtest finished")
	return res, nil
}

func (r *Runner) record(log zerolog.Logger, startedAt time.Time, series *model.PriceSeries, res *model.BacktestResult) {
	if r.Recorder == nil {
		return
	}
	if err := r.Recorder.RecordRun(&recorder.RunRecord{
		RunID:         res.RunID,
		StartedAt:     startedAt,
		Symbol:        series.Symbol,
		Source:        series.Source,
		Bars:          series.Len(),
		Period:        res.Params.Period,
		Threshold:     res.Params.Threshold,
		StartingValue: res.Params.StartingValue,
		FinalValue:    res.FinalValue,
		RealizedValue: res.RealizedValue,
		Holding:       res.Holding,
		Trades:        res.Trades(),
	}); err != nil {
		log.Error().Err(err).Msg("record run")
		return
	}
	for _, ev := range res.Events {
		if err := r.Recorder.RecordTrade(&recorder.TradeRecord{
			RunID:      res.RunID,
			Action:     string(ev.Action),
			ROCIndex:   ev.Index,
			PriceIndex: ev.PriceIndex,
			Price:      ev.Price,
			Units:      ev.Units,
			ROC:        ev.ROC,
			Value:      ev.Value,
		}); err != nil {
			log.Error().Err(err).Int("index", ev.Index).Msg("record trade")
		}
	}
}
