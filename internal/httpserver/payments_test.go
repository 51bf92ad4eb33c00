package httpserver

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	checkoutsvc "storefront/internal/service/checkout"
	paymentsvc "storefront/internal/service/payment"
)

func postJSON(router http.Handler, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestWebhook_AcknowledgesPayment(t *testing.T) {
	deps := defaultDeps()
	payments := &stubPaymentSvc{}
	deps.PaymentSvc = payments
	router := newTestRouter(t, deps)

	rec := postJSON(router, "/payments/webhook", `{"type":"payment","data":{"id":"mp-1"}}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rec.Code, rec.Body.String())
	}
	if payments.got == nil || payments.got.PaymentID != "mp-1" || payments.got.Type != "payment" {
		t.Fatalf("unexpected notification %+v", payments.got)
	}
}

func TestWebhook_IgnoredNotificationsStillAck(t *testing.T) {
	deps := defaultDeps()
	deps.PaymentSvc = &stubPaymentSvc{err: fmt.Errorf("%w: duplicate", paymentsvc.ErrIgnored)}
	router := newTestRouter(t, deps)

	rec := postJSON(router, "/payments/webhook", `{"type":"payment","data":{"id":"mp-1"}}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("ignored notifications must be acknowledged, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "ignored") {
		t.Fatalf("unexpected body %s", rec.Body.String())
	}
}

func TestWebhook_MissingPaymentID(t *testing.T) {
	payments := &stubPaymentSvc{}
	deps := defaultDeps()
	deps.PaymentSvc = payments
	router := newTestRouter(t, deps)

	rec := postJSON(router, "/payments/webhook", `{"type":"payment","data":{}}`)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if payments.got != nil {
		t.Fatalf("service must not be called without a payment id")
	}
}

func TestWebhook_UnknownOrderRetries(t *testing.T) {
	deps := defaultDeps()
	deps.PaymentSvc = &stubPaymentSvc{err: paymentsvc.ErrOrderNotFound}
	router := newTestRouter(t, deps)

	rec := postJSON(router, "/payments/webhook", `{"type":"payment","data":{"id":"mp-1"}}`)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 so the provider retries, got %d", rec.Code)
	}
}

func TestWebhook_MalformedBody(t *testing.T) {
	router := newTestRouter(t, defaultDeps())

	rec := postJSON(router, "/payments/webhook", `{not json`)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

const validCheckoutBody = `{
	"items": [{"product_id": "p1", "quantity": 1}],
	"shipping": {
		"rate_id": "rate-1",
		"service_type": "standard_delivery",
		"cost_cents": 150000,
		"destination": {
			"city": "La Plata",
			"state": "Buenos Aires",
			"zipcode": "1900",
			"street": "Calle 7",
			"street_number": "1234"
		},
		"recipient": {"name": "Ana", "email": "ana@example.com"}
	}
}`

func TestCheckout_Created(t *testing.T) {
	checkout := &stubCheckoutSvc{result: &checkoutsvc.Result{
		OrderID:           7,
		ExternalReference: "ref-7",
		PreferenceID:      "pref-7",
		InitPoint:         "https://mp.example/init",
	}}
	deps := defaultDeps()
	deps.CheckoutSvc = checkout
	router := newTestRouter(t, deps)

	rec := postJSON(router, "/payments/create-preference", validCheckoutBody)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d body=%s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"init_point":"https://mp.example/init"`) {
		t.Fatalf("unexpected body %s", rec.Body.String())
	}
	if checkout.got == nil || len(checkout.got.Items) != 1 {
		t.Fatalf("unexpected service request %+v", checkout.got)
	}
}

func TestCheckout_MissingItemsRejected(t *testing.T) {
	checkout := &stubCheckoutSvc{}
	deps := defaultDeps()
	deps.CheckoutSvc = checkout
	router := newTestRouter(t, deps)

	rec := postJSON(router, "/payments/create-preference", `{"items": [], "shipping": {}}`)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if checkout.got != nil {
		t.Fatalf("service must not be called for invalid payloads")
	}
}

func TestCheckout_ServiceValidationMapsTo400(t *testing.T) {
	deps := defaultDeps()
	deps.CheckoutSvc = &stubCheckoutSvc{err: checkoutsvc.ErrLimitExceeded}
	router := newTestRouter(t, deps)

	rec := postJSON(router, "/payments/create-preference", validCheckoutBody)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}
