package model

// Action is the side of a simulated trade.
type Action string

const (
	ActionBought Action = "bought"
	ActionSold   Action = "sold"
)

// TradeEvent records a single buy or sell made by the simulator.
type TradeEvent struct {
	Action     Action
	Index      int     // position in the ROC series
	PriceIndex int     // Index + period, position in the price series
	Price      float64 // close at PriceIndex
	ROC        float64
	Units      float64
	Value      float64 // cash-equivalent value right after the trade
}

// BacktestParams configures one simulation.
type BacktestParams struct {
	Period        int
	StartingValue float64
	Threshold     float64
	// MarkToMarket values an open position at the last aligned close when the run ends.
	// When false the last realized cash is reported.
	MarkToMarket bool
	// SkipAfterSell skips the ROC entry following every sell.
	SkipAfterSell bool
}

// Summary describes the distribution of a numeric series.
type Summary struct {
	Count  int
	Mean   float64
	StdDev float64
	Min    float64
	Max    float64
}

// BacktestResult is the final output of the simulator.
type BacktestResult struct {
	RunID         string
	Params        BacktestParams
	Events        []TradeEvent
	FinalValue    float64
	RealizedValue float64
	Holding       bool
	Units         float64 // units still held when Holding is true
	LastPrice     float64 // close aligned with the last ROC index

	// Filled in by the runner.
	ROCSummary   Summary
	TradeReturns []float64 // percent return per closed round trip
	TradeSummary Summary
}

// Trades returns the number of recorded trade events.
func (r *BacktestResult) Trades() int { return len(r.Events) }

// ReturnPct returns the total return over the starting value, in percent.
func (r *BacktestResult) ReturnPct() float64 {
	if r.Params.StartingValue == 0 {
		return 0
	}
	return (r.FinalValue - r.Params.StartingValue) / r.Params.StartingValue * 100
}
