package strategy

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"RocSentinel/internal/calculator"
	"RocSentinel/internal/model"
)

// DefaultThreshold is the ROC level the strategy trades around.
const DefaultThreshold = -20.0

var (
	// ErrIndexOutOfRange is returned when the price series is too short for the ROC series.
	ErrIndexOutOfRange = errors.New("price index out of range")
	// ErrInvalidStartingValue is returned when the starting cash is not positive.
	ErrInvalidStartingValue = errors.New("starting value must be positive")
	// ErrInvalidPeriod aliases the calculator error so callers can match either.
	ErrInvalidPeriod = calculator.ErrInvalidPeriod
)

// State is the position state of the simulator.
type State int

const (
	Flat State = iota
	Holding
)

func (s State) String() string {
	if s == Holding {
		return "holding"
	}
	return "flat"
}

// EventSink receives trade events as they are produced.
type EventSink func(model.TradeEvent)

// Simulator runs the single-position ROC threshold strategy.
type Simulator struct {
	Params  model.BacktestParams
	Logger  zerolog.Logger
	OnEvent EventSink
}

// NewSimulator creates a Simulator. Pass zerolog.Nop() to silence trade logs.
func NewSimulator(params model.BacktestParams, logger zerolog.Logger) *Simulator {
	return &Simulator{Params: params, Logger: logger}
}

// Run walks the ROC series once and simulates buying on a rising crossover of
// the threshold and selling when the ROC falls back to or below it.
// prices must be the series roc was computed from.
func (s *Simulator) Run(roc, prices []float64) (*model.BacktestResult, error) {
	p := s.Params
	if p.Period <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidPeriod, p.Period)
	}
	if p.StartingValue <= 0 {
		return nil, fmt.Errorf("%w: got %.2f", ErrInvalidStartingValue, p.StartingValue)
	}
	if len(roc) == 0 {
		return nil, fmt.Errorf("%w: period %d leaves no ROC values over %d prices", ErrInvalidPeriod, p.Period, len(prices))
	}
	if last := len(roc) - 1 + p.Period; last >= len(prices) {
		return nil, fmt.Errorf("%w: need price index %d, have %d prices", ErrIndexOutOfRange, last, len(prices))
	}

	res := &model.BacktestResult{Params: p}
	state := Flat
	cash := p.StartingValue
	units := 0.0

	for i := 0; i < len(roc); i++ {
		price := prices[i+p.Period]

		switch state {
		case Flat:
			if roc[i] < p.Threshold {
				continue
			}
			// no predecessor at the first index, so no crossover
			if i == 0 || roc[i-1] >= p.Threshold {
				continue
			}
			if price <= 0 {
				return nil, fmt.Errorf("%w: buy price at index %d", calculator.ErrDivisionByZero, i+p.Period)
			}
			units = cash / price
			state = Holding
			s.emit(res, model.TradeEvent{
				Action: model.ActionBought, Index: i, PriceIndex: i + p.Period,
				Price: price, ROC: roc[i], Units: units, Value: cash,
			})

		case Holding:
			if roc[i] > p.Threshold {
				continue
			}
			cash = units * price
			s.emit(res, model.TradeEvent{
				Action: model.ActionSold, Index: i, PriceIndex: i + p.Period,
				Price: price, ROC: roc[i], Units: units, Value: cash,
			})
			units = 0
			state = Flat
			if p.SkipAfterSell {
				i++
			}
		}
	}

	res.RealizedValue = cash
	res.FinalValue = cash
	res.LastPrice = prices[len(roc)-1+p.Period]
	if state == Holding {
		res.Holding = true
		res.Units = units
		if p.MarkToMarket {
			res.FinalValue = units * res.LastPrice
		}
	}

	s.Logger.Debug().
		Str("state", state.String()).
		Int("trades", len(res.Events)).
		Float64("final_value", res.FinalValue).
		Msg("simulation finished")
	return res, nil
}

func (s *Simulator) emit(res *model.BacktestResult, ev model.TradeEvent) {
	res.Events = append(res.Events, ev)
	s.Logger.Info().
		Str("action", string(ev.Action)).
		Int("index", ev.Index).
		Float64("price", ev.Price).
		Float64("units", ev.Units).
		Float64("value", ev.Value).
		Msg("trade")
	if s.OnEvent != nil {
		s.OnEvent(ev)
	}
}
