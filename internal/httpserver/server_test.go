package httpserver_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"finitefield.org/storefront-web/internal/cart"
	"finitefield.org/storefront-web/internal/contact"
	"finitefield.org/storefront-web/internal/schedule"
	"finitefield.org/storefront-web/internal/testutil"
)

type hxEvents struct {
	CartUpdated *struct {
		Badge int    `json:"badge"`
		Total string `json:"total"`
	} `json:"cart:updated"`
	Notify *struct {
		Text string `json:"text"`
		Tone string `json:"tone"`
	} `json:"notify"`
}

func decodeTrigger(t *testing.T, resp *http.Response) hxEvents {
	t.Helper()
	var ev hxEvents
	raw := resp.Header.Get("HX-Trigger")
	require.NotEmpty(t, raw, "expected HX-Trigger header")
	require.NoError(t, json.Unmarshal([]byte(raw), &ev))
	return ev
}

func addItem(t *testing.T, c *testutil.Client, name string, price int64) *http.Response {
	t.Helper()
	resp, _ := c.Post("/cart/items", url.Values{"name": {name}, "price": {strconv.FormatInt(price, 10)}})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	return resp
}

func TestHealthz(t *testing.T) {
	t.Parallel()

	ts := testutil.NewServer(t)
	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "ok", string(body))
}

func TestLandingPageRendersEmptyStorefront(t *testing.T) {
	t.Parallel()

	ts := testutil.NewServer(t)
	c := testutil.NewClient(t, ts)
	resp, body := c.Get("/", false)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, resp.Header.Get("Content-Type"), "text/html")

	doc := testutil.ParseHTML(t, body)
	require.Equal(t, "Riya Fashions | Ethnic & Fusion Wear", doc.Find("title").Text())
	require.Equal(t, 6, doc.Find(".nav-links a").Length())
	require.Equal(t, "#home", doc.Find(".nav-links a.active").AttrOr("href", ""))
	require.Equal(t, 3, doc.Find(".collection-card").Length())
	require.Equal(t, "0", doc.Find("#cartCount").Text())
	require.Equal(t, cart.EmptyMessage, strings.TrimSpace(doc.Find(".empty-cart").Text()))
	require.Equal(t, "Total: ₹0", doc.Find(".cart-total strong").Text())
	require.False(t, doc.Find("#cartSidebar").HasClass("active"))
	require.Equal(t, 5, doc.Find(".filter-btn").Length())
	require.Equal(t, "All", strings.TrimSpace(doc.Find(".filter-btn.active").Text()))
	require.Equal(t, 6, doc.Find(".gallery-item:not([hidden])").Length())

	require.Equal(t, ts.URL+"/", doc.Find(`link[rel="canonical"]`).AttrOr("href", ""))
	scripts := doc.Find(`script[type="application/ld+json"]`)
	require.Equal(t, 2, scripts.Length())
	var org map[string]any
	require.NoError(t, json.Unmarshal([]byte(scripts.First().Text()), &org))
	require.Equal(t, "Organization", org["@type"])
	require.Equal(t, "Riya Fashions", org["name"])
}

func TestLandingPageHonorsLocale(t *testing.T) {
	t.Parallel()

	ts := testutil.NewServer(t)
	req, err := http.NewRequest(http.MethodGet, ts.URL+"/", nil)
	require.NoError(t, err)
	req.Header.Set("Accept-Language", "hi-IN,hi;q=0.9,en;q=0.5")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	doc := testutil.ParseHTML(t, body)
	require.Equal(t, "hi", doc.Find("html").AttrOr("lang", ""))
	require.Equal(t, "शॉपिंग कार्ट", doc.Find(".cart-header h3").Text())
	require.Equal(t, "Total: ₹0", doc.Find(".cart-total strong").Text(), "totals use the store locale")
}

func TestAddItemUpdatesPanelAndBadge(t *testing.T) {
	t.Parallel()

	ts := testutil.NewServer(t)
	c := testutil.NewClient(t, ts)

	resp, body := c.Post("/cart/items", url.Values{"name": {"Silk Saree"}, "price": {"5999"}})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	ev := decodeTrigger(t, resp)
	require.NotNil(t, ev.CartUpdated)
	require.Equal(t, 1, ev.CartUpdated.Badge)
	require.Equal(t, "Total: ₹5,999", ev.CartUpdated.Total)
	require.NotNil(t, ev.Notify)
	require.Equal(t, "Silk Saree added to cart!", ev.Notify.Text)

	panel := testutil.ParseHTML(t, body)
	require.True(t, panel.Find("#cartSidebar").HasClass("active"))
	require.Equal(t, 1, panel.Find(".cart-item").Length())
	require.Equal(t, "1", panel.Find(".cart-item .quantity").Text())
	require.Equal(t, "₹5,999", panel.Find(".cart-item .item-price").Text())

	c.Post("/cart/items", url.Values{"name": {"Silk Saree"}, "price": {"5999"}})
	resp, body = c.Get("/cart/badge", true)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "2", testutil.CartBadge(t, body))

	_, body = c.Get("/cart", true)
	lines, total := testutil.CartLines(t, body)
	require.Len(t, lines, 1, "same product merges into one line")
	require.Equal(t, "2", lines[0].Quantity)
	require.Equal(t, "₹11,998", lines[0].LineTotal)
	require.Equal(t, "Total: ₹11,998", total)
}

func TestUpdateQuantityRemovesLineAtZero(t *testing.T) {
	t.Parallel()

	ts := testutil.NewServer(t)
	c := testutil.NewClient(t, ts)

	_, body := c.Post("/cart/items", url.Values{"name": {"Jacket Set"}, "price": {"4299"}})
	id := testutil.ParseHTML(t, body).Find(".cart-item").AttrOr("data-item-id", "")
	require.NotEmpty(t, id)

	resp, body := c.Post("/cart/items/"+id+"/quantity", url.Values{"delta": {"1"}})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "2", testutil.ParseHTML(t, body).Find(".cart-item .quantity").Text())

	resp, _ = c.Post("/cart/items/"+id+"/quantity", url.Values{"delta": {"-1"}})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp, body = c.Post("/cart/items/"+id+"/quantity", url.Values{"delta": {"-1"}})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	ev := decodeTrigger(t, resp)
	require.Equal(t, 0, ev.CartUpdated.Badge)
	require.Nil(t, ev.Notify)

	doc := testutil.ParseHTML(t, body)
	require.Zero(t, doc.Find(".cart-item").Length())
	require.Equal(t, cart.EmptyMessage, strings.TrimSpace(doc.Find(".empty-cart").Text()))

	resp, _ = c.Post("/cart/items/999/quantity", url.Values{"delta": {"1"}})
	require.Equal(t, http.StatusOK, resp.StatusCode, "unknown line is a no-op")
}

func TestTotalsStayExactAtPriceCap(t *testing.T) {
	t.Parallel()

	ts := testutil.NewServer(t)
	c := testutil.NewClient(t, ts)

	for _, name := range []string{"Silk Saree", "Designer Lehenga", "Jacket Set"} {
		resp := addItem(t, c, name, cart.MaxUnitPrice)
		require.Equal(t, http.StatusOK, resp.StatusCode)
	}

	_, body := c.Get("/cart", true)
	lines, total := testutil.CartLines(t, body)
	require.Len(t, lines, 3)
	require.Equal(t, "₹10,000,000", lines[2].LineTotal)
	require.Equal(t, "Total: ₹30,000,000", total)
}

func TestMalformedInputIsRejected(t *testing.T) {
	t.Parallel()

	ts := testutil.NewServer(t)
	c := testutil.NewClient(t, ts)

	cases := []struct {
		name string
		path string
		form url.Values
	}{
		{name: "non numeric price", path: "/cart/items", form: url.Values{"name": {"Silk Saree"}, "price": {"lots"}}},
		{name: "missing name", path: "/cart/items", form: url.Values{"price": {"100"}}},
		{name: "non numeric delta", path: "/cart/items/1/quantity", form: url.Values{"delta": {"up"}}},
		{name: "non numeric id", path: "/cart/items/abc/quantity", form: url.Values{"delta": {"1"}}},
		{name: "delta wider than one step", path: "/cart/items/1/quantity", form: url.Values{"delta": {"9223372036854775807"}}},
		{name: "zero delta", path: "/cart/items/1/quantity", form: url.Values{"delta": {"0"}}},
		{name: "price above cap", path: "/cart/items", form: url.Values{"name": {"Silk Saree"}, "price": {"4611686018427387903"}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp, body := c.Post(tc.path, tc.form)
			require.Equal(t, http.StatusBadRequest, resp.StatusCode)
			require.Contains(t, resp.Header.Get("Content-Type"), "application/json")
			var payload map[string]string
			require.NoError(t, json.Unmarshal(body, &payload))
			require.NotEmpty(t, payload["error"])
		})
	}

	_, body := c.Get("/cart/badge", true)
	require.Equal(t, "0", testutil.CartBadge(t, body), "rejected input leaves the cart empty")
}

func TestMutationsRequireCSRFToken(t *testing.T) {
	t.Parallel()

	ts := testutil.NewServer(t)
	c := testutil.NewClient(t, ts)

	resp, _ := c.PostWithToken("/cart/items", url.Values{"name": {"Silk Saree"}, "price": {"5999"}}, "")
	require.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, _ = c.PostWithToken("/cart/items", url.Values{"name": {"Silk Saree"}, "price": {"5999"}}, "forged")
	require.Equal(t, http.StatusForbidden, resp.StatusCode)

	_, body := c.Get("/cart/badge", true)
	require.Equal(t, "0", testutil.ParseHTML(t, body).Find("#cartCount").Text())
}

func TestFragmentsRequireHTMX(t *testing.T) {
	t.Parallel()

	ts := testutil.NewServer(t)
	c := testutil.NewClient(t, ts)
	for _, path := range []string{"/cart", "/cart/badge", "/gallery", "/notifications", "/contact"} {
		resp, _ := c.Get(path, false)
		require.Equal(t, http.StatusNotFound, resp.StatusCode, path)
	}
}

func TestPanelAutoClosesAndUserActionCancels(t *testing.T) {
	t.Parallel()

	clock := schedule.NewFake(time.Time{})
	ts := testutil.NewServer(t, testutil.WithScheduler(clock))
	c := testutil.NewClient(t, ts)

	addItem(t, c, "Embroidered Kurti", 2499)
	clock.Advance(cart.DefaultAutoClose)
	_, body := c.Get("/cart", true)
	require.False(t, testutil.ParseHTML(t, body).Find("#cartSidebar").HasClass("active"))

	addItem(t, c, "Embroidered Kurti", 2499)
	resp, body := c.Post("/cart/panel/open", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.True(t, testutil.ParseHTML(t, body).Find("#cartSidebar").HasClass("active"))

	clock.Advance(cart.DefaultAutoClose)
	_, body = c.Get("/cart", true)
	require.True(t, testutil.ParseHTML(t, body).Find("#cartSidebar").HasClass("active"), "explicit open cancels auto-close")

	_, body = c.Post("/cart/panel/toggle", nil)
	require.False(t, testutil.ParseHTML(t, body).Find("#cartSidebar").HasClass("active"))
}

func TestQuickViewFlow(t *testing.T) {
	t.Parallel()

	ts := testutil.NewServer(t)
	c := testutil.NewClient(t, ts)

	resp, _ := c.Get("/quickview/"+url.PathEscape("Plain Tee"), true)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, body := c.Get("/quickview/"+url.PathEscape("Designer Lehenga"), true)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	modal := testutil.ParseHTML(t, body)
	require.True(t, modal.Find("#quickViewModal").HasClass("active"))
	require.Equal(t, "Designer Lehenga", modal.Find("#modalProductName").Text())
	require.Equal(t, "₹8,999", modal.Find("#modalProductPrice").Text())

	resp, body = c.Post("/quickview/confirm", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	ev := decodeTrigger(t, resp)
	require.Equal(t, 1, ev.CartUpdated.Badge)
	require.Equal(t, "Designer Lehenga added to cart!", ev.Notify.Text)
	require.False(t, testutil.ParseHTML(t, body).Find("#quickViewModal").HasClass("active"))

	resp, _ = c.Post("/quickview/confirm", nil)
	require.Empty(t, resp.Header.Get("HX-Trigger"), "confirm on a closed modal adds nothing")

	c.Get("/quickview/"+url.PathEscape("Silk Saree"), true)
	resp, _ = c.Get("/quickview/"+url.PathEscape("Heritage Collection"), true)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp, _ = c.Post("/quickview/confirm", nil)
	require.Empty(t, resp.Header.Get("HX-Trigger"), "an unknown open drops the earlier preview")

	_, body = c.Get("/cart/badge", true)
	require.Equal(t, "1", testutil.CartBadge(t, body))
}

func TestEscapeClosesModalAndPanel(t *testing.T) {
	t.Parallel()

	ts := testutil.NewServer(t)
	c := testutil.NewClient(t, ts)

	addItem(t, c, "Silk Saree", 5999)
	c.Get("/quickview/"+url.PathEscape("Silk Saree"), true)

	resp, body := c.Post("/ui/escape", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.False(t, testutil.ParseHTML(t, body).Find("#quickViewModal").HasClass("active"))
	require.Equal(t, 1, decodeTrigger(t, resp).CartUpdated.Badge)

	_, body = c.Get("/cart", true)
	require.False(t, testutil.ParseHTML(t, body).Find("#cartSidebar").HasClass("active"))
}

func TestGalleryFilter(t *testing.T) {
	t.Parallel()

	ts := testutil.NewServer(t)
	c := testutil.NewClient(t, ts)

	resp, body := c.Get("/gallery?category=fusion&trigger=fusion", true)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	doc := testutil.ParseHTML(t, body)
	require.Equal(t, 2, doc.Find(".gallery-item:not([hidden])").Length())
	require.Equal(t, 1, doc.Find(".filter-btn.active").Length())
	require.Equal(t, "fusion", doc.Find(".filter-btn.active").AttrOr("data-filter", ""))

	_, body = c.Get("/gallery?category=bridal&trigger=all", true)
	doc = testutil.ParseHTML(t, body)
	require.Equal(t, 1, doc.Find(".gallery-item:not([hidden])").Length())
	require.Equal(t, "all", doc.Find(".filter-btn.active").AttrOr("data-filter", ""), "the trigger is highlighted")
}

func TestContactSubmission(t *testing.T) {
	t.Parallel()

	clock := schedule.NewFake(time.Time{})
	ts := testutil.NewServer(t, testutil.WithScheduler(clock))
	c := testutil.NewClient(t, ts)

	resp, body := c.Post("/contact", url.Values{"name": {"Asha"}, "email": {""}, "message": {"Hello"}})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	ev := decodeTrigger(t, resp)
	require.Equal(t, contact.MissingFieldsMessage, ev.Notify.Text)
	require.Equal(t, "error", ev.Notify.Tone)
	require.Equal(t, "Asha", testutil.ParseHTML(t, body).Find("#name").AttrOr("value", ""), "input is kept")

	resp, body = c.Post("/contact", url.Values{"name": {"Asha"}, "email": {"asha@example.com"}, "message": {"Hello"}})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	form := testutil.ParseHTML(t, body)
	require.True(t, form.Find(".submit-btn").HasClass("loading"))
	require.Empty(t, form.Find("#name").AttrOr("value", ""), "accepted form is cleared")

	clock.Advance(contact.DefaultDelay)

	_, body = c.Get("/contact", true)
	require.False(t, testutil.ParseHTML(t, body).Find(".submit-btn").HasClass("loading"))

	_, body = c.Get("/notifications", true)
	notices := testutil.ParseHTML(t, body).Find(".notification-success")
	require.Equal(t, 1, notices.Length())
	require.Equal(t, contact.ThankYouMessage, strings.TrimSpace(notices.Find("span").Text()))

	id := notices.AttrOr("data-id", "")
	_, body = c.Post("/notifications/"+id+"/dismiss", nil)
	require.Zero(t, testutil.ParseHTML(t, body).Find(".notification-success").Length())
}
