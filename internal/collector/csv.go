package collector

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"RocSentinel/internal/model"
)

// DateLayout is the layout of the optional Date column.
const DateLayout = "2006-01-02"

// CSVFetcher reads daily bars from a CSV file with a header row. A Close
// column is required; Date, Open, High, Low and Volume are used when present.
// Rows are taken in file order, which must be chronological.
type CSVFetcher struct {
	Path string
}

// NewCSVFetcher creates a fetcher for the file at path.
func NewCSVFetcher(path string) *CSVFetcher {
	return &CSVFetcher{Path: path}
}

func (f *CSVFetcher) Name() string { return "csv" }

// FetchDailyBars ignores symbol. When days is positive only the last days rows are returned.
func (f *CSVFetcher) FetchDailyBars(_ context.Context, _ string, days int) ([]model.OHLCV, error) {
	file, err := os.Open(f.Path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer file.Close()

	df := dataframe.ReadCSV(file,
		dataframe.HasHeader(true),
		dataframe.NaNValues([]string{"NA", "NaN", "<nil>", "null", ""}),
	)
	if df.Err != nil {
		return nil, fmt.Errorf("parse csv: %w", df.Err)
	}

	cols := make(map[string]bool, df.Ncol())
	for _, name := range df.Names() {
		cols[name] = true
	}
	if !cols["Close"] {
		return nil, fmt.Errorf("parse csv: missing Close column in %s", f.Path)
	}

	n := df.Nrow()
	bars := make([]model.OHLCV, n)
	closes := df.Col("Close").Float()
	for i := range bars {
		bars[i].Close = closes[i]
	}
	fill := func(name string, set func(b *model.OHLCV, v float64)) {
		if !cols[name] {
			return
		}
		for i, v := range df.Col(name).Float() {
			set(&bars[i], v)
		}
	}
	fill("Open", func(b *model.OHLCV, v float64) { b.Open = v })
	fill("High", func(b *model.OHLCV, v float64) { b.High = v })
	fill("Low", func(b *model.OHLCV, v float64) { b.Low = v })
	fill("Volume", func(b *model.OHLCV, v float64) { b.Volume = v })

	if cols["Date"] {
		if err := parseDates(df.Col("Date"), bars); err != nil {
			return nil, err
		}
	}

	if days > 0 && len(bars) > days {
		bars = bars[len(bars)-days:]
	}
	return bars, nil
}

func parseDates(col series.Series, bars []model.OHLCV) error {
	for i, s := range col.Records() {
		t, err := time.Parse(DateLayout, s)
		if err != nil {
			return fmt.Errorf("parse csv: row %d date %q: %w", i, s, err)
		}
		bars[i].Time = t
	}
	return nil
}
