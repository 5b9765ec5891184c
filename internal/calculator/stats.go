package calculator

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"RocSentinel/internal/model"
)

// Summarize returns count, mean, standard deviation and range of values.
// An empty input yields a zero Summary; a single value has zero deviation.
func Summarize(values []float64) model.Summary {
	if len(values) == 0 {
		return model.Summary{}
	}
	s := model.Summary{
		Count: len(values),
		Mean:  stat.Mean(values, nil),
		Min:   floats.Min(values),
		Max:   floats.Max(values),
	}
	if len(values) > 1 {
		s.StdDev = stat.StdDev(values, nil)
	}
	return s
}

// RoundTripReturns pairs each buy with the following sell and returns the
// percentage change in value for every closed round trip. An unmatched
// trailing buy is ignored.
func RoundTripReturns(events []model.TradeEvent) []float64 {
	var (
		returns []float64
		entry   float64
		open    bool
	)
	for _, ev := range events {
		switch ev.Action {
		case model.ActionBought:
			entry = ev.Value
			open = true
		case model.ActionSold:
			if !open || entry == 0 {
				continue
			}
			returns = append(returns, (ev.Value-entry)/entry*100)
			open = false
		}
	}
	return returns
}
