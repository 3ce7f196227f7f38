package domain

// CartLine is one orderable entry in the cart. LineID is opaque and
// stable for the lifetime of the line; it is never reused, even after
// the line is removed. TotalPrice is recomputed on every mutation.
type CartLine struct {
	LineID     string                  `json:"line_id"`
	Item       MenuItem                `json:"menu_item"`
	Quantity   int                     `json:"quantity"`
	Selections []SelectedCustomization `json:"selections,omitempty"`
	TotalPrice Money                   `json:"total_price"`
}

// CloneLines deep-copies a cart so snapshots handed to readers cannot
// alias the store's backing slices.
func CloneLines(lines []CartLine) []CartLine {
	if lines == nil {
		return nil
	}
	out := make([]CartLine, len(lines))
	copy(out, lines)
	for i := range out {
		if out[i].Selections != nil {
			sels := make([]SelectedCustomization, len(out[i].Selections))
			copy(sels, out[i].Selections)
			for j := range sels {
				ids := make([]string, len(sels[j].OptionIDs))
				copy(ids, sels[j].OptionIDs)
				sels[j].OptionIDs = ids
			}
			out[i].Selections = sels
		}
	}
	return out
}
