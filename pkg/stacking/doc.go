// Package stacking resolves draw order between seat tokens and the labels
// that cover them.
//
// When the label of seat i overlaps the token of seat j, the token must be
// painted above the label so it stays clickable. Each such overlap becomes a
// constraint edge i → j, and [Resolve] raises z-indices until every edge
// holds:
//
//	z(j) > z(i)
//
// Edges are found with strict intersection: boxes that only share an edge do
// not constrain anything. The relaxation runs at most [DefaultMaxPasses]
// passes. Mutually covering seats form a cycle that no assignment can
// satisfy; such cases are reported through [Assignment.Unresolved],
// [Assignment.Cyclic] and [Assignment.Cycles] instead of being hidden.
//
// A missing box (a failed measurement) never produces an edge.
package stacking
