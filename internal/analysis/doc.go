// Package analysis summarizes finished runs.
//
// The package includes:
//
//   - [SummarizeSettle]: mean, spread and quantiles of settle times
//   - [Histogram]: settle time distribution in equal-width bins
//   - [HeightProfile]: how settled stars are stacked by height
//   - [Sweep]: one run per parameter value for comparing jar behaviour
//
// # Settle Times
//
// Settle times come straight from a run result:
//
//	summary := analysis.SummarizeSettle(result.SettleFrames)
//	if summary.Max >= float64(cfg.Physics.ForcedSettleFrames/cfg.Physics.Substeps) {
//	    // some stars only stopped on the timeout
//	}
package analysis
