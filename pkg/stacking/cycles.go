package stacking

import "slices"

// Cycles returns the strongly connected components of the constraint graph
// that contain more than one seat. Each component is sorted ascending and the
// components are ordered by their smallest seat.
func Cycles(n int, edges []Edge) [][]int {
	adj := make([][]int, n)
	for _, e := range edges {
		adj[e.Label] = append(adj[e.Label], e.Token)
	}

	t := tarjan{
		adj:     adj,
		index:   make([]int, n),
		low:     make([]int, n),
		onStack: make([]bool, n),
	}
	for i := range t.index {
		t.index[i] = -1
	}
	for v := 0; v < n; v++ {
		if t.index[v] < 0 {
			t.visit(v)
		}
	}

	slices.SortFunc(t.components, func(a, b []int) int { return a[0] - b[0] })
	return t.components
}

type tarjan struct {
	adj        [][]int
	index      []int
	low        []int
	onStack    []bool
	stack      []int
	next       int
	components [][]int
}

func (t *tarjan) visit(v int) {
	t.index[v] = t.next
	t.low[v] = t.next
	t.next++
	t.stack = append(t.stack, v)
	t.onStack[v] = true

	for _, w := range t.adj[v] {
		switch {
		case t.index[w] < 0:
			t.visit(w)
			t.low[v] = min(t.low[v], t.low[w])
		case t.onStack[w]:
			t.low[v] = min(t.low[v], t.index[w])
		}
	}

	if t.low[v] != t.index[v] {
		return
	}
	var comp []int
	for {
		w := t.stack[len(t.stack)-1]
		t.stack = t.stack[:len(t.stack)-1]
		t.onStack[w] = false
		comp = append(comp, w)
		if w == v {
			break
		}
	}
	if len(comp) > 1 {
		slices.Sort(comp)
		t.components = append(t.components, comp)
	}
}
