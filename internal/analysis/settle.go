package analysis

import (
	"sort"

	"gonum.org/v1/gonum/stat"
)

// SettleSummary describes how many frames stars needed to freeze.
type SettleSummary struct {
	N      int     `json:"n"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
	Min    float64 `json:"min"`
	P50    float64 `json:"p50"`
	P90    float64 `json:"p90"`
	Max    float64 `json:"max"`
}

// SummarizeSettle returns the zero summary for no samples. The input is
// not modified.
func SummarizeSettle(frames []float64) SettleSummary {
	if len(frames) == 0 {
		return SettleSummary{}
	}

	sorted := make([]float64, len(frames))
	copy(sorted, frames)
	sort.Float64s(sorted)

	s := SettleSummary{
		N:   len(sorted),
		Min: sorted[0],
		Max: sorted[len(sorted)-1],
		P50: stat.Quantile(0.5, stat.Empirical, sorted, nil),
		P90: stat.Quantile(0.9, stat.Empirical, sorted, nil),
	}
	if len(sorted) > 1 {
		s.Mean, s.StdDev = stat.MeanStdDev(sorted, nil)
	} else {
		s.Mean = sorted[0]
	}
	return s
}

// Bin is one histogram bucket covering [Lo, Hi).
type Bin struct {
	Lo, Hi float64
	Count  int
}

// Histogram splits frames into equal-width bins spanning their range. The
// last bin includes the maximum.
func Histogram(frames []float64, bins int) []Bin {
	if len(frames) == 0 || bins <= 0 {
		return nil
	}

	sorted := make([]float64, len(frames))
	copy(sorted, frames)
	sort.Float64s(sorted)

	lo, hi := sorted[0], sorted[len(sorted)-1]
	if hi == lo {
		hi = lo + 1
	}
	width := (hi - lo) / float64(bins)

	dividers := make([]float64, bins+1)
	for i := range dividers {
		dividers[i] = lo + float64(i)*width
	}
	// stat.Histogram needs the last divider strictly above the maximum.
	dividers[bins] = hi + width*1e-9

	counts := stat.Histogram(nil, dividers, sorted, nil)
	out := make([]Bin, bins)
	for i := range out {
		out[i] = Bin{Lo: dividers[i], Hi: lo + float64(i+1)*width, Count: int(counts[i])}
	}
	return out
}
