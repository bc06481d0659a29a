// Package pkg provides the core libraries for Townsquare seating layouts.
//
// # Overview
//
// Townsquare places the participants of a game around a round table: each
// seat gets a token on a circle and a name label pushed outward so that no
// two labels collide, and a draw order in which every token covered by a
// neighbour's label is lifted above it. The pkg directory is organized into
// three main areas:
//
//  1. Engine - seat geometry, label relaxation and stacking
//  2. Pipeline - orchestration (participants → layout → render) with caching
//  3. Surfaces - renderers, transitions and the HTTP API
//
// # Architecture
//
// The typical data flow through Townsquare:
//
//	Participants (names, TOML seating file, HTTP body)
//	         ↓
//	    [seating] package (angles, anchors, rotation)
//	         ↓
//	    [names] package (label distances until nothing collides)
//	         ↓
//	    [stacking] package (z-index per seat)
//	         ↓
//	    [render] packages (SVG/PNG/PDF/JSON/DOT output)
//
// # Quick Start
//
// Lay out a table and render it:
//
//	import (
//	    "context"
//	    "github.com/matzehuels/townsquare/pkg/pipeline"
//	)
//
//	runner := pipeline.NewRunner(nil, nil, logger)
//	result, _ := runner.Execute(context.Background(), pipeline.Options{
//	    Participants: pipeline.FromNames("Ada", "Brin", "Cato", "Dax", "Eve"),
//	    Formats:      []string{pipeline.FormatSVG},
//	})
//	svg := result.Artifacts[pipeline.FormatSVG]
//
// # Main Packages
//
// ## Engine
//
// [geom] - Points, sizes and axis-aligned rectangles with strict
// intersection tests.
//
// [measure] - Label and token measurement. The heuristic measurer derives
// boxes from font metrics; renderers may supply their own.
//
// [seating] - Seat angles, label anchors, rotation, font scale and the
// viewport the circle is fitted into.
//
// [names] - The name placement optimizer: pushes colliding labels outward
// round by round until they clear each other or hit the distance cap.
//
// [stacking] - The stacking resolver: raises every token a label covers and
// reports constraint cycles it could not satisfy.
//
// [layout] - The engine that runs one seating pass end to end.
//
// ## Pipeline
//
// [pipeline] - Complete pipeline (participants → layout → render) used by
// the CLI and the API. Ensures consistent behavior across entry points.
//
// [cache] - Cache backends for layouts and artifacts: file (CLI), Redis,
// MongoDB and a null cache.
//
// [config] - TOML configuration for theme, optimizer, stacking, cache and
// server.
//
// ## Surfaces
//
// [render/svg] - SVG drawing in stacking order.
//
// [render/dot] - The stacking constraint graph as Graphviz DOT, SVG, PNG
// or PDF.
//
// [render] - Format conversion (SVG to PDF/PNG).
//
// [transition] - Tweened frames between two layouts.
//
// [server] - HTTP API over the pipeline.
//
// ## Support
//
// [errors] - Error codes shared by every package.
//
// [observability] - Hooks for layout, cache and HTTP events.
//
// [buildinfo] - Version information set at build time.
package pkg
