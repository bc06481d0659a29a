package layout

// Applier receives computed seats, for example a renderer or a UI binding.
type Applier interface {
	ApplySlot(s SlotResult) error
}

// ApplierFunc adapts a function to Applier.
type ApplierFunc func(SlotResult) error

// ApplySlot calls f(s).
func (f ApplierFunc) ApplySlot(s SlotResult) error { return f(s) }

// Apply hands every seat of r to a in painting order (ascending z, ties by
// seat index) and stops at the first error.
func Apply(r Result, a Applier) error {
	for _, i := range r.Stacking.Order() {
		if i >= len(r.Slots) {
			continue
		}
		if err := a.ApplySlot(r.Slots[i]); err != nil {
			return err
		}
	}
	return nil
}
