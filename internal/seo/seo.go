// Package seo builds the head metadata and schema.org payloads of the storefront page.
package seo

import (
	"finitefield.org/storefront-web/internal/catalog"
)

type OpenGraph struct {
	Title       string
	Description string
	URL         string
	SiteName    string
	Type        string
}

type Twitter struct {
	Card string
}

// Meta is rendered into the document head. JSONLD entries are emitted as
// application/ld+json scripts.
type Meta struct {
	Title       string
	Description string
	Canonical   string
	OG          OpenGraph
	Twitter     Twitter
	JSONLD      []map[string]any
}

// Landing describes the single storefront page and its products.
func Landing(brand, title, description, canonical string, products []catalog.Product) Meta {
	m := Meta{
		Title:       title,
		Description: description,
		Canonical:   canonical,
		OG: OpenGraph{
			Title:       title,
			Description: description,
			URL:         canonical,
			SiteName:    brand,
			Type:        "website",
		},
		Twitter: Twitter{Card: "summary"},
	}
	m.JSONLD = append(m.JSONLD, Organization(brand, canonical))
	if len(products) > 0 {
		m.JSONLD = append(m.JSONLD, ItemList(products, canonical))
	}
	return m
}
