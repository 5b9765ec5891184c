package calculator

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidPeriod is returned when the lookback period is not positive.
	ErrInvalidPeriod = errors.New("period must be positive")
	// ErrDivisionByZero is returned when a reference price is zero.
	ErrDivisionByZero = errors.New("zero reference price")
)

// CalculateROC computes the rate of change of prices over the given lookback period.
//
//	R[x-period] = 100 * (P[x] - P[x-period]) / P[x-period],  period <= x < len(P)
//
// The result has len(prices)-period entries. When period >= len(prices) the result is empty.
func CalculateROC(prices []float64, period int) ([]float64, error) {
	if period <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidPeriod, period)
	}
	if period >= len(prices) {
		return []float64{}, nil
	}

	roc := make([]float64, 0, len(prices)-period)
	for x := period; x < len(prices); x++ {
		ref := prices[x-period]
		if ref == 0 {
			return nil, fmt.Errorf("%w at index %d", ErrDivisionByZero, x-period)
		}
		roc = append(roc, 100*(prices[x]-ref)/ref)
	}
	return roc, nil
}
