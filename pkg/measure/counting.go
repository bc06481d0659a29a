package measure

import (
	"github.com/matzehuels/townsquare/pkg/geom"
	"github.com/matzehuels/townsquare/pkg/names"
)

// Counting wraps a measurer and counts its calls. It is not safe for
// concurrent use, like the layout pass it observes.
type Counting struct {
	Inner    names.Measurer
	Labels   int
	Tokens   int
	Overlays int
	Failures int
}

// NewCounting wraps m.
func NewCounting(m names.Measurer) *Counting { return &Counting{Inner: m} }

// Total returns the number of calls of any kind.
func (c *Counting) Total() int { return c.Labels + c.Tokens + c.Overlays }

// MeasureLabel implements names.Measurer.
func (c *Counting) MeasureLabel(l names.Label) (geom.Rect, error) {
	c.Labels++
	return c.count(c.Inner.MeasureLabel(l))
}

// MeasureToken implements names.Measurer.
func (c *Counting) MeasureToken(t names.Token) (geom.Rect, error) {
	c.Tokens++
	return c.count(c.Inner.MeasureToken(t))
}

// MeasureOverlay delegates to the inner measurer when it measures overlays
// and falls back to the plain label box otherwise.
func (c *Counting) MeasureOverlay(l names.Label) (geom.Rect, error) {
	c.Overlays++
	if o, ok := c.Inner.(interface {
		MeasureOverlay(names.Label) (geom.Rect, error)
	}); ok {
		return c.count(o.MeasureOverlay(l))
	}
	return c.count(c.Inner.MeasureLabel(l))
}

func (c *Counting) count(r geom.Rect, err error) (geom.Rect, error) {
	if err != nil {
		c.Failures++
	}
	return r, err
}
