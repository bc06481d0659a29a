// Package layout runs one complete seating pass.
//
// An [Engine] ties the three stages together: seat angles and anchors from
// package seating, label placement from package names and draw order from
// package stacking. [Engine.Compute] is synchronous and pure apart from the
// measurer it is handed: it does no I/O, logs nothing and starts no
// goroutines.
//
//	eng := layout.New(layout.DefaultConfig())
//	res, err := eng.Compute(layout.Input{
//		Names:     []string{"Ada", "Brin", "Cato", "Dax", "Eve"},
//		Viewport:  seating.Viewport{Width: 1366, Height: 768, Margin: 200},
//		TokenSize: 64,
//	}, measure.NewHeuristic(measure.DefaultMetrics(), nil))
//
// A pass that starts while another pass on the same Engine is running fails
// with [names.ErrPassInProgress] and changes nothing. Results are applied to
// a renderer with [Apply], which walks seats in painting order.
package layout
