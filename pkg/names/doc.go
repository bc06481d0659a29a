// Package names places participant name labels around the seat circle.
//
// Every seat owns one label. The optimizer gives each label a radial distance
// multiplier, a vertical anchor, a readability rotation and a font scale, then
// relaxes label-label collisions by pushing colliding labels outward.
//
// # Heuristic
//
// The starting distance depends on how crowded the circle is:
//
//   - up to [DefaultUniformMax] seats every label starts at the base distance
//   - up to [DefaultAlternateMax] seats labels alternate between two distances
//   - beyond that the distance grows as a spiral over the angular order
//
// Near-horizontal labels get extra clearance and crowded circles rotate and
// shrink their labels. The relaxation loop then runs for at most
// [DefaultMaxRounds] rounds; it is a bounded heuristic and does not promise an
// overlap-free result.
//
// # Passes
//
// A pass must hold a [Lease] obtained from [Optimizer.Begin]. While a lease is
// held every other Begin fails with [ErrPassInProgress]; such a trigger is
// dropped, not queued, and the caller re-triggers if it still needs a fresh
// layout:
//
//	lease, err := opt.Begin()
//	if err != nil {
//	    return err
//	}
//	defer lease.Release()
//	slots, stats, err := opt.Optimize(lease, slots, geo, measurer)
//
// Label boxes come from an injected [Measurer]; a measurement error counts as
// "no overlap" for that pair so one unattached element cannot stall the pass.
package names
