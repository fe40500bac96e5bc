package seo

import "finitefield.org/storefront-web/internal/catalog"

// Currency is the ISO 4217 code of every catalog price.
const Currency = "INR"

// Organization returns a minimal Organization schema.
func Organization(name, url string) map[string]any {
	m := map[string]any{
		"@context": "https://schema.org",
		"@type":    "Organization",
		"name":     name,
	}
	if url != "" {
		m["url"] = url
	}
	return m
}

// Product returns a product schema with a single in-stock offer.
func Product(p catalog.Product, url string) map[string]any {
	m := map[string]any{
		"@type": "Product",
		"name":  p.Name,
		"offers": map[string]any{
			"@type":         "Offer",
			"price":         p.Price,
			"priceCurrency": Currency,
			"availability":  "https://schema.org/InStock",
		},
	}
	if p.Tagline != "" {
		m["description"] = p.Tagline
	}
	if p.Category != "" {
		m["category"] = p.Category
	}
	if url != "" {
		m["url"] = url
	}
	return m
}

// ItemList wraps products in a schema.org ItemList, positions starting at 1.
func ItemList(products []catalog.Product, url string) map[string]any {
	el := make([]map[string]any, 0, len(products))
	for i, p := range products {
		el = append(el, map[string]any{
			"@type":    "ListItem",
			"position": i + 1,
			"item":     Product(p, url),
		})
	}
	return map[string]any{
		"@context":        "https://schema.org",
		"@type":           "ItemList",
		"itemListElement": el,
	}
}
