// Package gallery filters the product gallery by category.
package gallery

import (
	"strings"

	"finitefield.org/storefront-web/internal/catalog"
)

// All shows every gallery item.
const All = "all"

// Button is a filter control.
type Button struct {
	Key    string
	Label  string
	Active bool
}

// Item is a gallery entry with its visibility after filtering.
type Item struct {
	Product catalog.Product
	Visible bool
}

// Result is the filtered gallery.
type Result struct {
	Category string
	Items    []Item
	Buttons  []Button
}

// VisibleCount reports how many items are shown.
func (r Result) VisibleCount() int {
	n := 0
	for _, it := range r.Items {
		if it.Visible {
			n++
		}
	}
	return n
}

// DefaultButtons returns the filter controls of the storefront gallery.
func DefaultButtons() []Button {
	return []Button{
		{Key: All, Label: "All"},
		{Key: "traditional", Label: "Traditional"},
		{Key: "fusion", Label: "Fusion"},
		{Key: "casual", Label: "Casual"},
		{Key: "bridal", Label: "Bridal"},
	}
}

// Filter marks items visible when category is All or matches the item
// category, and activates exactly one button: trigger, the button that
// initiated the filter. An empty or unknown trigger falls back to the button
// for category, then to the first button.
func Filter(products []catalog.Product, buttons []Button, category, trigger string) Result {
	category = strings.ToLower(strings.TrimSpace(category))
	if category == "" {
		category = All
	}
	res := Result{
		Category: category,
		Items:    make([]Item, 0, len(products)),
		Buttons:  make([]Button, len(buttons)),
	}
	for _, p := range products {
		res.Items = append(res.Items, Item{
			Product: p,
			Visible: category == All || p.Category == category,
		})
	}

	active := indexOf(buttons, strings.ToLower(strings.TrimSpace(trigger)))
	if active < 0 {
		active = indexOf(buttons, category)
	}
	if active < 0 && len(buttons) > 0 {
		active = 0
	}
	for i, b := range buttons {
		b.Active = i == active
		res.Buttons[i] = b
	}
	return res
}

func indexOf(buttons []Button, key string) int {
	if key == "" {
		return -1
	}
	for i, b := range buttons {
		if b.Key == key {
			return i
		}
	}
	return -1
}
