package calculator

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"RocSentinel/internal/model"
)

func TestSummarize(t *testing.T) {
	s := Summarize([]float64{2, 4, 4, 4, 5, 5, 7, 9})
	assert.Equal(t, 8, s.Count)
	assert.InDelta(t, 5.0, s.Mean, 1e-12)
	assert.InDelta(t, 2.138089935, s.StdDev, 1e-9)
	assert.Equal(t, 2.0, s.Min)
	assert.Equal(t, 9.0, s.Max)

	assert.Equal(t, model.Summary{}, Summarize(nil))

	one := Summarize([]float64{-3})
	assert.Equal(t, 1, one.Count)
	assert.Equal(t, 0.0, one.StdDev)
	assert.Equal(t, -3.0, one.Mean)
}

func TestRoundTripReturns(t *testing.T) {
	events := []model.TradeEvent{
		{Action: model.ActionBought, Value: 1000},
		{Action: model.ActionSold, Value: 1100},
		{Action: model.ActionBought, Value: 1100},
		{Action: model.ActionSold, Value: 990},
		{Action: model.ActionBought, Value: 990},
	}
	got := RoundTripReturns(events)
	if assert.Len(t, got, 2) {
		assert.InDelta(t, 10.0, got[0], 1e-9)
		assert.InDelta(t, -10.0, got[1], 1e-9)
	}
	assert.Empty(t, RoundTripReturns(nil))
}
