package transition

import (
	"github.com/matzehuels/townsquare/pkg/geom"
	"github.com/matzehuels/townsquare/pkg/names"
)

// measureStub reports 1×1 boxes so no labels ever collide.
type measureStub struct{}

func (measureStub) MeasureLabel(l names.Label) (geom.Rect, error) {
	return geom.RectAround(l.Anchor, geom.Size{W: 1, H: 1}), nil
}

func (measureStub) MeasureToken(t names.Token) (geom.Rect, error) {
	return geom.RectAround(t.Center, geom.Size{W: 1, H: 1}), nil
}
