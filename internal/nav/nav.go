// Package nav describes the in-page sections reachable from the navbar.
package nav

import "strings"

// Section is one anchor target on the landing page.
type Section struct {
	ID    string
	Label string
}

// Link is a rendered navbar entry.
type Link struct {
	Href   string
	Label  string
	Active bool
}

var sections = []Section{
	{ID: "home", Label: "Home"},
	{ID: "collections", Label: "Collections"},
	{ID: "gallery", Label: "Gallery"},
	{ID: "about", Label: "About"},
	{ID: "testimonials", Label: "Testimonials"},
	{ID: "contact", Label: "Contact"},
}

// Sections returns the page sections in navbar order.
func Sections() []Section {
	out := make([]Section, len(sections))
	copy(out, sections)
	return out
}

// Resolve maps an in-page href such as "#gallery" to its section.
// Unknown or external targets report false and callers ignore them.
func Resolve(href string) (Section, bool) {
	id, ok := strings.CutPrefix(strings.TrimSpace(href), "#")
	if !ok || id == "" {
		return Section{}, false
	}
	for _, s := range sections {
		if s.ID == id {
			return s, true
		}
	}
	return Section{}, false
}

// Build returns the navbar links, marking current as active. An unknown
// current marks the first section.
func Build(current string) []Link {
	active := sections[0].ID
	if s, ok := Resolve("#" + strings.TrimPrefix(current, "#")); ok {
		active = s.ID
	}
	links := make([]Link, 0, len(sections))
	for _, s := range sections {
		links = append(links, Link{
			Href:   "#" + s.ID,
			Label:  s.Label,
			Active: s.ID == active,
		})
	}
	return links
}
