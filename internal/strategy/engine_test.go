package strategy

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"RocSentinel/internal/calculator"
	"RocSentinel/internal/model"
)

func defaultParams() model.BacktestParams {
	return model.BacktestParams{
		Period:        9,
		StartingValue: 100000,
		Threshold:     DefaultThreshold,
		MarkToMarket:  true,
	}
}

func rampPrices(n int) []float64 {
	prices := make([]float64, n)
	for i := range prices {
		prices[i] = 50 + float64(i)*1.5
	}
	return prices
}

// rocFrom builds a ROC series of length n filled with fill, then applies overrides.
func rocFrom(n int, fill float64, overrides map[int]float64) []float64 {
	roc := make([]float64, n)
	for i := range roc {
		roc[i] = fill
	}
	for i, v := range overrides {
		roc[i] = v
	}
	return roc
}

func TestRun_CrossoverBuyThenSell(t *testing.T) {
	// below until 5, above from 5 to 9, back below from 10
	roc := make([]float64, 20)
	for i := range roc {
		switch {
		case i < 5:
			roc[i] = -30
		case i < 10:
			roc[i] = 5
		default:
			roc[i] = -25
		}
	}
	prices := rampPrices(len(roc) + 9)

	sim := NewSimulator(defaultParams(), zerolog.Nop())
	res, err := sim.Run(roc, prices)
	require.NoError(t, err)

	require.Len(t, res.Events, 2)
	buy, sell := res.Events[0], res.Events[1]
	assert.Equal(t, model.ActionBought, buy.Action)
	assert.Equal(t, 5, buy.Index)
	assert.Equal(t, 14, buy.PriceIndex)
	assert.Equal(t, prices[14], buy.Price)
	assert.Equal(t, model.ActionSold, sell.Action)
	assert.Equal(t, 10, sell.Index)
	assert.Equal(t, prices[19], sell.Price)

	want := 100000 * (prices[19] / prices[14])
	assert.InDelta(t, want, res.FinalValue, 1e-6)
	assert.InDelta(t, want, res.RealizedValue, 1e-6)
	assert.False(t, res.Holding)
	assert.Equal(t, 2, res.Trades())
}

func TestRun_NoCrossoverAtFirstIndex(t *testing.T) {
	roc := rocFrom(12, 10, nil)
	res, err := NewSimulator(defaultParams(), zerolog.Nop()).Run(roc, rampPrices(21))
	require.NoError(t, err)
	assert.Empty(t, res.Events)
	assert.Equal(t, 100000.0, res.FinalValue)
	assert.False(t, res.Holding)
}

func TestRun_StaysFlatBelowThreshold(t *testing.T) {
	roc := rocFrom(12, -45, nil)
	res, err := NewSimulator(defaultParams(), zerolog.Nop()).Run(roc, rampPrices(21))
	require.NoError(t, err)
	assert.Empty(t, res.Events)
	assert.Equal(t, 100000.0, res.FinalValue)
}

func TestRun_ThresholdEquality(t *testing.T) {
	// exactly at the threshold after being below buys; exactly at the threshold while holding sells
	roc := []float64{-21, -20, -19, -20, -19}
	params := defaultParams()
	params.Period = 1
	prices := []float64{10, 11, 12, 13, 14, 15}

	res, err := NewSimulator(params, zerolog.Nop()).Run(roc, prices)
	require.NoError(t, err)
	require.Len(t, res.Events, 2)
	assert.Equal(t, 1, res.Events[0].Index)
	assert.Equal(t, model.ActionBought, res.Events[0].Action)
	assert.Equal(t, 3, res.Events[1].Index)
	assert.Equal(t, model.ActionSold, res.Events[1].Action)
	// index 4 is -19 but the predecessor -20 is not below the threshold
	assert.False(t, res.Holding)
}

func TestRun_HoldingAtEnd(t *testing.T) {
	roc := rocFrom(10, 3, map[int]float64{0: -40, 1: -35})
	prices := rampPrices(len(roc) + 9)

	t.Run("mark to market", func(t *testing.T) {
		res, err := NewSimulator(defaultParams(), zerolog.Nop()).Run(roc, prices)
		require.NoError(t, err)
		require.Len(t, res.Events, 1)
		assert.True(t, res.Holding)
		last := prices[len(prices)-1]
		assert.Equal(t, last, res.LastPrice)
		assert.InDelta(t, res.Units*last, res.FinalValue, 1e-9)
		assert.InDelta(t, 100000*last/prices[11], res.FinalValue, 1e-6)
		assert.Equal(t, 100000.0, res.RealizedValue)
	})

	t.Run("last realized value", func(t *testing.T) {
		params := defaultParams()
		params.MarkToMarket = false
		res, err := NewSimulator(params, zerolog.Nop()).Run(roc, prices)
		require.NoError(t, err)
		assert.True(t, res.Holding)
		assert.Equal(t, 100000.0, res.FinalValue)
	})
}

func TestRun_SkipAfterSell(t *testing.T) {
	// buy at 1, sell at 2, crossover again at 3
	roc := []float64{-30, 0, -25, 0, 0, 0}
	prices := rampPrices(len(roc) + 9)

	res, err := NewSimulator(defaultParams(), zerolog.Nop()).Run(roc, prices)
	require.NoError(t, err)
	require.Len(t, res.Events, 3)
	assert.Equal(t, 3, res.Events[2].Index)
	assert.True(t, res.Holding)

	params := defaultParams()
	params.SkipAfterSell = true
	res, err = NewSimulator(params, zerolog.Nop()).Run(roc, prices)
	require.NoError(t, err)
	require.Len(t, res.Events, 2, "the entry after the sell is skipped")
	assert.False(t, res.Holding)
}

func TestRun_CustomThreshold(t *testing.T) {
	roc := []float64{-1, 2, 4, -0.5, 1}
	params := defaultParams()
	params.Period = 1
	params.Threshold = 0
	prices := []float64{10, 10, 12, 15, 9, 11}

	res, err := NewSimulator(params, zerolog.Nop()).Run(roc, prices)
	require.NoError(t, err)
	require.Len(t, res.Events, 3)
	// bought at 12 (index 1 -> price 2), sold at 9 (index 3 -> price 4), bought again at 11
	assert.InDelta(t, 100000*9.0/12.0, res.Events[1].Value, 1e-9)
	assert.Equal(t, 11.0, res.Events[2].Price)
}

func TestRun_ValueOnlyChangesOnTransitions(t *testing.T) {
	roc := []float64{-30, -10, -5, -22, -40, -15, -12, -25, -19, 0, 3}
	prices := []float64{20, 21, 19, 18, 22, 25, 24, 23, 20, 21, 26, 27, 29}
	params := defaultParams()
	params.Period = 2

	var seen []model.TradeEvent
	sim := NewSimulator(params, zerolog.Nop())
	sim.OnEvent = func(ev model.TradeEvent) { seen = append(seen, ev) }

	res, err := sim.Run(roc, prices)
	require.NoError(t, err)
	assert.Equal(t, res.Events, seen)
	require.NotEmpty(t, seen)

	cash := params.StartingValue
	for k, ev := range seen {
		switch ev.Action {
		case model.ActionBought:
			assert.Equal(t, cash, ev.Value, "cash unchanged before buy %d", k)
			assert.InDelta(t, cash/ev.Price, ev.Units, 1e-9)
		case model.ActionSold:
			assert.Equal(t, seen[k-1].Units, ev.Units, "units unchanged before sell %d", k)
			cash = ev.Value
		}
		if k > 0 {
			assert.NotEqual(t, seen[k-1].Action, ev.Action, "actions alternate")
		}
	}
	assert.Equal(t, cash, res.RealizedValue)
}

func TestRun_WithCalculatedROC(t *testing.T) {
	prices := []float64{100, 90, 80, 130, 150}
	roc, err := calculator.CalculateROC(prices, 2)
	require.NoError(t, err)

	params := defaultParams()
	params.Period = 2
	res, err := NewSimulator(params, zerolog.Nop()).Run(roc, prices)
	require.NoError(t, err)
	// ROC = [-20, 44.4, 87.5]: -20 is not below the threshold, so no crossover
	assert.Empty(t, res.Events)
	assert.Equal(t, 150.0, res.LastPrice)
}

func TestRun_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*model.BacktestParams)
		roc    []float64
		prices []float64
		want   error
	}{
		{"zero period", func(p *model.BacktestParams) { p.Period = 0 }, []float64{1}, []float64{1, 2}, ErrInvalidPeriod},
		{"empty roc", nil, []float64{}, []float64{1, 2, 3}, ErrInvalidPeriod},
		{"prices too short", nil, rocFrom(5, 0, nil), rampPrices(13), ErrIndexOutOfRange},
		{"non-positive starting value", func(p *model.BacktestParams) { p.StartingValue = 0 }, []float64{1}, rampPrices(10), ErrInvalidStartingValue},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params := defaultParams()
			if tt.mutate != nil {
				tt.mutate(&params)
			}
			res, err := NewSimulator(params, zerolog.Nop()).Run(tt.roc, tt.prices)
			assert.ErrorIs(t, err, tt.want)
			assert.Nil(t, res)
		})
	}
}

func TestRun_EmptyROCFromLongPeriod(t *testing.T) {
	prices := rampPrices(9)
	roc, err := calculator.CalculateROC(prices, 9)
	require.NoError(t, err)
	_, err = NewSimulator(defaultParams(), zerolog.Nop()).Run(roc, prices)
	assert.ErrorIs(t, err, calculator.ErrInvalidPeriod)
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "flat", Flat.String())
	assert.Equal(t, "holding", Holding.String())
}
