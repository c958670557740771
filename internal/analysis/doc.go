// Package analysis looks at played rider paths after the fact.
//
//   - [PowerSpectrum] and [DominantPeriod]: how often the sled bounces
//   - [Divergence]: how fast two rides from nearly the same start drift apart
//   - [NewPhasePortrait]: sled height against vertical speed
//
// A ride is chaotic when the divergence rate is positive: a start nudged by
// a fraction of a unit ends up somewhere else entirely.
//
//	d, err := analysis.Divergence(ctx, cfg, 1e-6, 300)
//	if d.Rate > 0 {
//	    // small edits to the start pose will not give small changes
//	}
package analysis
