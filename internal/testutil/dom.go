package testutil

import (
	"bytes"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
)

// ParseHTML parses a page or fragment into a goquery document.
func ParseHTML(t testing.TB, body []byte) *goquery.Document {
	t.Helper()

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		t.Fatalf("parse html: %v", err)
	}
	return doc
}

// CartBadge returns the text of the navbar cart counter.
func CartBadge(t testing.TB, body []byte) string {
	t.Helper()

	badge := ParseHTML(t, body).Find("#cartCount")
	if badge.Length() != 1 {
		t.Fatalf("expected one #cartCount, found %d", badge.Length())
	}
	return strings.TrimSpace(badge.Text())
}

// CartLine is one rendered row of the cart sidebar.
type CartLine struct {
	ID        string
	Quantity  string
	Price     string
	LineTotal string
}

// CartLines returns the rendered sidebar rows in display order together with
// the footer total label.
func CartLines(t testing.TB, body []byte) ([]CartLine, string) {
	t.Helper()

	doc := ParseHTML(t, body)
	var lines []CartLine
	doc.Find("#cartSidebar .cart-item").Each(func(_ int, s *goquery.Selection) {
		lines = append(lines, CartLine{
			ID:        s.AttrOr("data-item-id", ""),
			Quantity:  strings.TrimSpace(s.Find(".quantity").Text()),
			Price:     strings.TrimSpace(s.Find(".item-price").Text()),
			LineTotal: strings.TrimSpace(s.Find(".line-total").Text()),
		})
	})
	return lines, strings.TrimSpace(doc.Find(".cart-total strong").Text())
}
