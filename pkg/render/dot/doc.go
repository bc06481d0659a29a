// Package dot renders the stacking constraints of a seat layout as a Graphviz
// graph.
//
// Every seat is a node; an edge i → j means the label (or reminder stack) of
// seat i overlaps the token of seat j, so j is drawn above i. The graph is
// laid out bottom-to-top so higher z-indices sit higher on the page. Seats
// on a cycle and edges left violated are highlighted.
//
//	src := dot.ToDOT(result, dot.Options{Detailed: true})
//	svg, err := dot.RenderSVG(src)
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering. PDF and PNG conversion requires librsvg (rsvg-convert).
package dot
