package stacking

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/matzehuels/townsquare/pkg/geom"
)

// DefaultMaxPasses caps the z relaxation.
const DefaultMaxPasses = 10

// Config tunes the resolver.
type Config struct {
	MaxPasses int `toml:"max_passes" json:"max_passes"`
}

// DefaultConfig returns the default resolver configuration.
func DefaultConfig() Config { return Config{MaxPasses: DefaultMaxPasses} }

// Validate reports an unusable configuration.
func (c Config) Validate() error {
	if c.MaxPasses < 0 {
		return fmt.Errorf("max_passes must not be negative")
	}
	return nil
}

// Item holds the measured boxes of one seat. Label may be an overlay that
// also covers the seat's reminder markers.
type Item struct {
	Label    geom.Rect
	Token    geom.Rect
	HasLabel bool
	HasToken bool
}

// Edge says the token of Token must render above the label of Label.
type Edge struct {
	Label int `json:"label"`
	Token int `json:"token"`
}

func (e Edge) String() string { return fmt.Sprintf("%d→%d", e.Label, e.Token) }

// Assignment is the resolved draw order and its diagnostics.
type Assignment struct {
	// Z is the z-index of every seat's token container, by seat index.
	Z     []int  `json:"z"`
	Edges []Edge `json:"edges"`
	// Overlaps is len(Edges).
	Overlaps  int  `json:"overlaps"`
	MaxZ      int  `json:"max_z"`
	Passes    int  `json:"passes"`
	Converged bool `json:"converged"`
	// Unresolved lists edges still violated when the pass cap was reached.
	Unresolved []Edge `json:"unresolved,omitempty"`
	// Cyclic is true when the constraint graph contains a cycle.
	Cyclic bool `json:"cyclic"`
	// Cycles lists the seats of every cycle, each sorted ascending.
	Cycles [][]int `json:"cycles,omitempty"`
}

// Edges returns every label/token overlap between different seats, ordered
// by label then token.
func Edges(items []Item) []Edge {
	var edges []Edge
	for i, a := range items {
		if !a.HasLabel {
			continue
		}
		for j, b := range items {
			if i == j || !b.HasToken {
				continue
			}
			if a.Label.Intersects(b.Token) {
				edges = append(edges, Edge{Label: i, Token: j})
			}
		}
	}
	return edges
}

// Resolve computes z-indices for items so that every overlapping token is
// drawn above the label covering it, as far as the pass cap allows.
func Resolve(items []Item, cfg Config) Assignment {
	edges := Edges(items)
	a := Assignment{
		Z:        make([]int, len(items)),
		Edges:    edges,
		Overlaps: len(edges),
	}
	if len(edges) == 0 {
		a.Converged = true
		return a
	}

	for a.Passes < cfg.MaxPasses {
		a.Passes++
		changed := false
		for _, e := range edges {
			if a.Z[e.Token] <= a.Z[e.Label] {
				a.Z[e.Token] = a.Z[e.Label] + 1
				changed = true
			}
		}
		if !changed {
			a.Converged = true
			break
		}
	}

	for _, e := range edges {
		if a.Z[e.Token] <= a.Z[e.Label] {
			a.Unresolved = append(a.Unresolved, e)
		}
	}
	a.MaxZ = slices.Max(a.Z)
	a.Cycles = Cycles(len(items), edges)
	a.Cyclic = len(a.Cycles) > 0
	return a
}

// Order returns seat indices in painting order: ascending z, ties by index.
func (a Assignment) Order() []int {
	order := make([]int, len(a.Z))
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(x, y int) int {
		return cmp.Compare(a.Z[x], a.Z[y])
	})
	return order
}

// Violations reports whether any edge is left unsatisfied.
func (a Assignment) Violations() bool { return len(a.Unresolved) > 0 }

// HitTest returns the topmost token containing p: the highest z wins and,
// on equal z, the later seat (painted last). It returns false when no token
// contains p. Missing entries in z count as 0.
func HitTest(p geom.Point, tokens []geom.Rect, z []int) (int, bool) {
	best, bestZ := -1, 0
	for i, r := range tokens {
		if r.Empty() || !r.Contains(p) {
			continue
		}
		zi := 0
		if i < len(z) {
			zi = z[i]
		}
		if best < 0 || zi >= bestZ {
			best, bestZ = i, zi
		}
	}
	return best, best >= 0
}
