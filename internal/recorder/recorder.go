package recorder

import "time"

// RunRecord holds the outcome of one backtest run.
type RunRecord struct {
	RunID         string
	StartedAt     time.Time
	Symbol        string
	Source        string
	Bars          int
	Period        int
	Threshold     float64
	StartingValue float64
	FinalValue    float64
	RealizedValue float64
	Holding       bool
	Trades        int
}

// TradeRecord holds one buy or sell from a run.
type TradeRecord struct {
	RunID      string
	Action     string // "bought" or "sold"
	ROCIndex   int
	PriceIndex int
	Price      float64
	Units      float64
	ROC        float64
	Value      float64
}

// Recorder persists backtest history for later analysis.
type Recorder interface {
	RecordRun(run *RunRecord) error
	RecordTrade(trade *TradeRecord) error
	Close() error
}
