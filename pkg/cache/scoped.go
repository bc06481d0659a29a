package cache

import "strings"

// Scope returns a keyer whose keys live under namespace, so several game
// tables can share one Redis or MongoDB without colliding:
//
//	k := cache.Scope(cache.NewDefaultKeyer(), "table", "abc123")
//	k.LayoutKey(h, opts) // "table:abc123:layout:<h>:<digest>"
//
// A nil inner keyer means [DefaultKeyer]. An empty namespace returns inner.
func Scope(inner Keyer, namespace ...string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	if len(namespace) == 0 {
		return inner
	}
	return scopedKeyer{inner: inner, prefix: strings.Join(namespace, ":") + ":"}
}

type scopedKeyer struct {
	inner  Keyer
	prefix string
}

func (k scopedKeyer) LayoutKey(inputHash string, opts LayoutKeyOpts) string {
	return k.prefix + k.inner.LayoutKey(inputHash, opts)
}

func (k scopedKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(layoutHash, opts)
}
