// Package catalog holds the read-only menu the kiosk serves from.
// It is loaded once at startup and never mutated.
package catalog

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/Ashhhad/kiosk-flow-master/internal/domain"
)

type Catalog struct {
	categories []domain.Category
	items      []domain.MenuItem
	byID       map[string]*domain.MenuItem
	byCategory map[string][]*domain.MenuItem
}

type menuFile struct {
	Categories []domain.Category `json:"categories"`
	Items      []domain.MenuItem `json:"items"`
}

func Load(path string) (*Catalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read menu file: %w", err)
	}

	var mf menuFile
	if err := json.Unmarshal(raw, &mf); err != nil {
		return nil, fmt.Errorf("parse menu file: %w", err)
	}
	if len(mf.Items) == 0 {
		return nil, fmt.Errorf("menu file %s has no items", path)
	}

	c := &Catalog{
		categories: mf.Categories,
		items:      mf.Items,
		byID:       make(map[string]*domain.MenuItem, len(mf.Items)),
		byCategory: make(map[string][]*domain.MenuItem),
	}
	for i := range c.items {
		item := &c.items[i]
		if _, dup := c.byID[item.ItemID]; dup {
			return nil, fmt.Errorf("duplicate menu item id %q", item.ItemID)
		}
		c.byID[item.ItemID] = item
		c.byCategory[item.Category] = append(c.byCategory[item.Category], item)
	}
	return c, nil
}

func (c *Catalog) Categories() []domain.Category {
	return c.categories
}

func (c *Catalog) Items() []domain.MenuItem {
	return c.items
}

// ItemByID returns the catalog entry, or nil when the id is unknown.
func (c *Catalog) ItemByID(id string) *domain.MenuItem {
	return c.byID[id]
}

func (c *Catalog) ItemsByCategory(category string) []*domain.MenuItem {
	return c.byCategory[category]
}
