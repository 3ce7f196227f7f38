package domain

type SelectionMode string

const (
	SelectionSingle   SelectionMode = "single"
	SelectionMultiple SelectionMode = "multiple"
)

// MaxAddOns bounds the total number of chosen options across all
// multi-select customizations on a single cart line.
const MaxAddOns = 8

type Category struct {
	CategoryID string `json:"category_id"`
	Name       string `json:"name"`
	ItemCount  int    `json:"item_count"`
}

type MenuItem struct {
	ItemID         string          `json:"item_id"`
	Name           string          `json:"name"`
	Description    string          `json:"description,omitempty"`
	Price          Money           `json:"price"`
	Category       string          `json:"category"`
	Popular        bool            `json:"popular,omitempty"`
	Calories       int             `json:"calories,omitempty"`
	Allergens      []string        `json:"allergens,omitempty"`
	Customizations []Customization `json:"customizations,omitempty"`
}

type Customization struct {
	CustomizationID string                `json:"customization_id"`
	Name            string                `json:"name"`
	Mode            SelectionMode         `json:"mode"`
	Required        bool                  `json:"required"`
	Options         []CustomizationOption `json:"options"`
}

type CustomizationOption struct {
	OptionID string `json:"option_id"`
	Name     string `json:"name"`
	Price    Money  `json:"price"`
	Default  bool   `json:"default,omitempty"`
}

// SelectedCustomization pairs a customization with the option ids chosen
// for it. One entry exists per customization that has at least one
// selection.
type SelectedCustomization struct {
	CustomizationID string   `json:"customization_id"`
	OptionIDs       []string `json:"option_ids"`
}

func (m *MenuItem) customization(id string) *Customization {
	for i := range m.Customizations {
		if m.Customizations[i].CustomizationID == id {
			return &m.Customizations[i]
		}
	}
	return nil
}

func (c *Customization) option(id string) *CustomizationOption {
	for i := range c.Options {
		if c.Options[i].OptionID == id {
			return &c.Options[i]
		}
	}
	return nil
}
