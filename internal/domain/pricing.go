package domain

import (
	"errors"
	"fmt"
)

// MaxLineQuantity caps the quantity of a single cart line.
const MaxLineQuantity = 20

var (
	ErrInvalidQuantity      = errors.New("quantity must be a positive integer")
	ErrRequiredSelection    = errors.New("required customization has no selection")
	ErrUnknownCustomization = errors.New("unknown customization")
	ErrUnknownOption        = errors.New("unknown customization option")
	ErrTooManyAddOns        = fmt.Errorf("more than %d add-on options selected", MaxAddOns)
)

// ComputeLineTotal returns the price of a line: base price plus every
// selected option's price, multiplied by quantity. Selections that name
// a customization the item does not have are ignored, as are option ids
// not present in that customization's option list.
func ComputeLineTotal(item *MenuItem, quantity int, selections []SelectedCustomization) (Money, error) {
	if quantity < 1 {
		return 0, ErrInvalidQuantity
	}
	unit := item.Price
	for _, sel := range selections {
		c := item.customization(sel.CustomizationID)
		if c == nil {
			continue
		}
		for _, optID := range sel.OptionIDs {
			if opt := c.option(optID); opt != nil {
				unit += opt.Price
			}
		}
	}
	return unit * Money(quantity), nil
}

type CartTotals struct {
	Subtotal   Money `json:"subtotal"`
	Tax        Money `json:"tax"`
	GrandTotal Money `json:"grand_total"`
}

// ComputeCartTotals derives subtotal, tax and grand total from the cart
// lines. taxRateBP is the tax rate in basis points (800 = 8%); tax is
// rounded half-up to the minor unit.
func ComputeCartTotals(lines []CartLine, taxRateBP int64) CartTotals {
	var subtotal Money
	for i := range lines {
		subtotal += lines[i].TotalPrice
	}
	tax := Money((int64(subtotal)*taxRateBP + 5000) / 10000)
	return CartTotals{
		Subtotal:   subtotal,
		Tax:        tax,
		GrandTotal: subtotal + tax,
	}
}

// NormalizeSelections validates raw selections against the item's
// customizations and enforces selection-mode semantics: single-mode
// customizations keep only the last chosen option, multi-select
// choices are bounded by MaxAddOns across the whole line, and every
// required customization must end up with at least one option.
func NormalizeSelections(item *MenuItem, raw []SelectedCustomization) ([]SelectedCustomization, error) {
	out := make([]SelectedCustomization, 0, len(raw))
	addOns := 0
	seen := make(map[string]bool, len(raw))

	for _, sel := range raw {
		c := item.customization(sel.CustomizationID)
		if c == nil {
			return nil, fmt.Errorf("%w: %s", ErrUnknownCustomization, sel.CustomizationID)
		}
		if seen[sel.CustomizationID] || len(sel.OptionIDs) == 0 {
			continue
		}
		seen[sel.CustomizationID] = true

		for _, optID := range sel.OptionIDs {
			if c.option(optID) == nil {
				return nil, fmt.Errorf("%w: %s/%s", ErrUnknownOption, c.CustomizationID, optID)
			}
		}

		ids := sel.OptionIDs
		switch c.Mode {
		case SelectionSingle:
			// Exclusive replace-on-select: the last option wins.
			ids = []string{sel.OptionIDs[len(sel.OptionIDs)-1]}
		case SelectionMultiple:
			addOns += len(ids)
			if addOns > MaxAddOns {
				return nil, ErrTooManyAddOns
			}
		}
		out = append(out, SelectedCustomization{
			CustomizationID: c.CustomizationID,
			OptionIDs:       append([]string(nil), ids...),
		})
	}

	for i := range item.Customizations {
		c := &item.Customizations[i]
		if c.Required && !seen[c.CustomizationID] {
			return nil, fmt.Errorf("%w: %s", ErrRequiredSelection, c.CustomizationID)
		}
	}
	return out, nil
}
