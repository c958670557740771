// Package physics advances an articulated rider one frame at a time.
//
// A [Rider] is a set of body points joined by the bones of a [Topology].
// [Simulate] is a pure function of the previous pose, the lines near the
// rider and the topology:
//
//   - Verlet integration under [Params].Gravity
//   - bone relaxation in topology order, breaking overstretched breakable bones
//   - collision of every point against the lines near its swept path
//
// Relaxation and collision repeat for a fixed number of iterations so the
// same inputs always produce the same pose.
//
// # Example
//
//	topo := physics.DefaultTopology()
//	r := physics.NewRider(topo, geom.V(0, 0), physics.StartingMomentum)
//	for i := 0; i < 40; i++ {
//	    r = physics.Simulate(r, g, topo, physics.DefaultParams())
//	}
package physics
