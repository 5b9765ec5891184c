package model

import "time"

// OHLCV represents a single candlestick bar. Only Close is required by the backtest.
type OHLCV struct {
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// PriceSeries holds the daily bars a backtest runs over, oldest first.
type PriceSeries struct {
	Symbol    string
	Source    string
	Bars      []OHLCV
	FetchedAt time.Time
}

// Closes returns the close column of the series.
func (p *PriceSeries) Closes() []float64 {
	closes := make([]float64, len(p.Bars))
	for i, b := range p.Bars {
		closes[i] = b.Close
	}
	return closes
}

// Len returns the number of bars.
func (p *PriceSeries) Len() int { return len(p.Bars) }
