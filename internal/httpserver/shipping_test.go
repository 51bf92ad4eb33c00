package httpserver

import (
	"net/http"
	"testing"

	"storefront/internal/gateway/carrier"
	shippingsvc "storefront/internal/service/shipping"
)

const validQuoteBody = `{
	"destination": {"city": "Córdoba", "state": "Córdoba", "zipcode": "5000"},
	"items": [{"id": "p1", "quantity": 2}, {"id": "p2", "quantity": 1}]
}`

func TestQuote_ReturnsCheapestOption(t *testing.T) {
	shipping := &stubShippingSvc{option: &carrier.RateOption{RateID: "b", PriceInclTaxCents: 180000}}
	deps := defaultDeps()
	deps.ShippingSvc = shipping
	router := newTestRouter(t, deps)

	rec := postJSON(router, "/shipping/quote", validQuoteBody)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rec.Code, rec.Body.String())
	}
	if shipping.got == nil {
		t.Fatalf("expected service call")
	}
	if len(shipping.got.Items) != 2 || shipping.got.Items[0].ProductID != "p1" || shipping.got.Items[0].Quantity != 2 {
		t.Fatalf("unexpected quote items %+v", shipping.got.Items)
	}
}

func TestQuote_IgnoresClientDeclaredValue(t *testing.T) {
	// Only product ids and quantities cross the boundary; prices and the
	// declared value come from the catalog.
	shipping := &stubShippingSvc{option: &carrier.RateOption{RateID: "a"}}
	deps := defaultDeps()
	deps.ShippingSvc = shipping
	router := newTestRouter(t, deps)

	body := `{
		"destination": {"city": "Córdoba", "state": "Córdoba", "zipcode": "5000"},
		"items": [{"id": "p1", "quantity": 1}],
		"declared_value_cents": 1
	}`
	rec := postJSON(router, "/shipping/quote", body)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rec.Code, rec.Body.String())
	}
}

func TestQuote_UnknownProduct(t *testing.T) {
	deps := defaultDeps()
	deps.ShippingSvc = &stubShippingSvc{err: shippingsvc.ErrItemNotFound}
	router := newTestRouter(t, deps)

	rec := postJSON(router, "/shipping/quote", validQuoteBody)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestQuote_MissingQuantity(t *testing.T) {
	router := newTestRouter(t, defaultDeps())

	body := `{
		"destination": {"city": "Córdoba", "state": "Córdoba", "zipcode": "5000"},
		"items": [{"id": "p1"}]
	}`
	rec := postJSON(router, "/shipping/quote", body)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestQuoteOptions_NoRates(t *testing.T) {
	deps := defaultDeps()
	deps.ShippingSvc = &stubShippingSvc{err: shippingsvc.ErrNoRates}
	router := newTestRouter(t, deps)

	rec := postJSON(router, "/shipping/quote-options", validQuoteBody)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}
