package collector

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog"

	"RocSentinel/internal/model"
)

var (
	// ErrNoData is returned when a fetcher yields no bars.
	ErrNoData = errors.New("no price data")
	// ErrNonPositivePrice is returned when a close is zero, negative or missing.
	ErrNonPositivePrice = errors.New("close price must be positive")
)

// MockFetcher returns controllable fixed data for development and testing.
type MockFetcher struct {
	Price     float64
	DailyData []model.OHLCV
	Err       error
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchDailyBars(_ context.Context, _ string, days int) ([]model.OHLCV, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	if m.DailyData != nil {
		return m.DailyData, nil
	}
	return generateMockBars(m.Price, days), nil
}

func generateMockBars(basePrice float64, count int) []model.OHLCV {
	bars := make([]model.OHLCV, count)
	for i := 0; i < count; i++ {
		p := basePrice * (1 + float64(i-count/2)*0.001)
		bars[i] = model.OHLCV{
			Time:   time.Now().AddDate(0, 0, -(count - i)),
			Open:   p * 0.999,
			High:   p * 1.005,
			Low:    p * 0.995,
			Close:  p,
			Volume: 1000000,
		}
	}
	return bars
}

// Collector fetches a price series and checks it is usable for a backtest.
type Collector struct {
	Fetcher Fetcher
	Symbol  string
	Days    int
	Logger  zerolog.Logger
}

// NewCollector creates a new Collector.
func NewCollector(fetcher Fetcher, symbol string, days int, logger zerolog.Logger) *Collector {
	return &Collector{Fetcher: fetcher, Symbol: symbol, Days: days, Logger: logger}
}

// Collect fetches daily bars and validates that every close is strictly positive.
func (c *Collector) Collect(ctx context.Context) (*model.PriceSeries, error) {
	bars, err := c.Fetcher.FetchDailyBars(ctx, c.Symbol, c.Days)
	if err != nil {
		return nil, fmt.Errorf("fetch daily bars: %w", err)
	}
	if len(bars) == 0 {
		return nil, fmt.Errorf("%s: %w", c.Fetcher.Name(), ErrNoData)
	}
	for i, b := range bars {
		if math.IsNaN(b.Close) || b.Close <= 0 {
			return nil, fmt.Errorf("%w: row %d has close %v", ErrNonPositivePrice, i, b.Close)
		}
	}

	c.Logger.Info().
		Str("source", c.Fetcher.Name()).
		Str("symbol", c.Symbol).
		Int("bars", len(bars)).
		Msg("price series collected")

	return &model.PriceSeries{
		Symbol:    c.Symbol,
		Source:    c.Fetcher.Name(),
		Bars:      bars,
		FetchedAt: time.Now(),
	}, nil
}
