package catalog

import (
	"os"
	"path/filepath"
	"testing"
)

const testMenu = `{
  "categories": [
    {"category_id": "burgers", "name": "Burgers"},
    {"category_id": "drinks", "name": "Drinks"}
  ],
  "items": [
    {
      "item_id": "smash-single",
      "name": "Smash Single",
      "category": "burgers",
      "price": 1000,
      "customizations": [
        {
          "customization_id": "extras",
          "name": "Extras",
          "mode": "multiple",
          "options": [
            {"option_id": "bacon", "name": "Bacon", "price": 250}
          ]
        }
      ]
    },
    {"item_id": "smash-double", "name": "Smash Double", "category": "burgers", "price": 1400},
    {"item_id": "cola", "name": "Cola", "category": "drinks", "price": 300}
  ]
}`

func writeMenu(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "menu.json")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write menu: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	c, err := Load(writeMenu(t, testMenu))
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if got := len(c.Categories()); got != 2 {
		t.Errorf("categories = %d, want 2", got)
	}
	if got := len(c.Items()); got != 3 {
		t.Errorf("items = %d, want 3", got)
	}

	item := c.ItemByID("smash-single")
	if item == nil {
		t.Fatal("smash-single not found")
	}
	if item.Price != 1000 {
		t.Errorf("price = %d, want 1000", item.Price)
	}
	if len(item.Customizations) != 1 || len(item.Customizations[0].Options) != 1 {
		t.Errorf("customizations not parsed: %+v", item.Customizations)
	}

	if c.ItemByID("nope") != nil {
		t.Error("unknown id must return nil")
	}
}

func TestItemsByCategory(t *testing.T) {
	c, err := Load(writeMenu(t, testMenu))
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	burgers := c.ItemsByCategory("burgers")
	if len(burgers) != 2 {
		t.Fatalf("burgers = %d, want 2", len(burgers))
	}
	if burgers[0].ItemID != "smash-single" || burgers[1].ItemID != "smash-double" {
		t.Errorf("burger order = %s, %s", burgers[0].ItemID, burgers[1].ItemID)
	}
	if got := c.ItemsByCategory("desserts"); got != nil {
		t.Errorf("unknown category = %v, want nil", got)
	}
}

func TestLoadRejectsDuplicateIDs(t *testing.T) {
	dup := `{"items": [
		{"item_id": "cola", "name": "Cola", "category": "drinks", "price": 300},
		{"item_id": "cola", "name": "Cola Zero", "category": "drinks", "price": 300}
	]}`
	if _, err := Load(writeMenu(t, dup)); err == nil {
		t.Fatal("duplicate item ids must be rejected")
	}
}

func TestLoadRejectsEmptyMenu(t *testing.T) {
	if _, err := Load(writeMenu(t, `{"items": []}`)); err == nil {
		t.Fatal("empty menu must be rejected")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.json")); err == nil {
		t.Fatal("missing file must error")
	}
}
