package metrics

import (
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

var (
	RunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "backtest_runs_total", Help: "Backtest runs by outcome"},
		[]string{"status"},
	)
	TradesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "backtest_trades_total", Help: "Simulated trades by action"},
		[]string{"action"},
	)
	FinalValue = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{Name: "backtest_final_value", Help: "Final portfolio value of the latest run"},
		[]string{"symbol"},
	)
)

func init() {
	prometheus.MustRegister(RunsTotal, TradesTotal, FinalValue)
}

// Serve exposes /metrics on addr in the background. Listen failures are logged.
func Serve(addr string, logger zerolog.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Str("addr", addr).Msg("metrics server failed")
		}
	}()
	return srv
}
