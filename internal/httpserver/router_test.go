package httpserver

import (
	"context"
	"io"
	"log"
	"testing"

	"github.com/gin-gonic/gin"

	"storefront/internal/domain"
	"storefront/internal/gateway/carrier"
	checkoutsvc "storefront/internal/service/checkout"
	ordersvc "storefront/internal/service/order"
	paymentsvc "storefront/internal/service/payment"
	shippingsvc "storefront/internal/service/shipping"
)

func logDiscard() *log.Logger {
	return log.New(io.Discard, "", 0)
}

type stubProductSvc struct {
	products []domain.Product
	product  *domain.Product
	err      error
	deleted  string
}

func (s *stubProductSvc) List(_ context.Context) ([]domain.Product, error) {
	return s.products, s.err
}

func (s *stubProductSvc) GetByID(_ context.Context, _ string) (*domain.Product, error) {
	if s.err != nil {
		return nil, s.err
	}
	if s.product == nil {
		return nil, domain.ErrNotFound
	}
	return s.product, nil
}

func (s *stubProductSvc) Create(_ context.Context, p domain.Product) (*domain.Product, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &p, nil
}

func (s *stubProductSvc) Update(_ context.Context, p domain.Product) (*domain.Product, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &p, nil
}

func (s *stubProductSvc) Delete(_ context.Context, id string) error {
	s.deleted = id
	return s.err
}

type stubCheckoutSvc struct {
	result *checkoutsvc.Result
	err    error
	got    *checkoutsvc.Request
}

func (s *stubCheckoutSvc) Checkout(_ context.Context, req checkoutsvc.Request) (*checkoutsvc.Result, error) {
	s.got = &req
	return s.result, s.err
}

type stubPaymentSvc struct {
	err error
	got *paymentsvc.Notification
}

func (s *stubPaymentSvc) Process(_ context.Context, n paymentsvc.Notification) error {
	s.got = &n
	return s.err
}

type stubShippingSvc struct {
	option  *carrier.RateOption
	options []carrier.RateOption
	err     error
	got     *shippingsvc.QuoteRequest
}

func (s *stubShippingSvc) Cheapest(_ context.Context, req shippingsvc.QuoteRequest) (*carrier.RateOption, error) {
	s.got = &req
	return s.option, s.err
}

func (s *stubShippingSvc) Options(_ context.Context, req shippingsvc.QuoteRequest) ([]carrier.RateOption, error) {
	s.got = &req
	return s.options, s.err
}

type stubOrderSvc struct {
	orders    []domain.Order
	items     []domain.OrderItem
	cancel    *ordersvc.CancelResult
	err       error
	cancelled int64
}

func (s *stubOrderSvc) List(_ context.Context) ([]domain.Order, error) {
	return s.orders, s.err
}

func (s *stubOrderSvc) Items(_ context.Context, _ int64) ([]domain.OrderItem, error) {
	return s.items, s.err
}

func (s *stubOrderSvc) CancelShipment(_ context.Context, orderID int64) (*ordersvc.CancelResult, error) {
	s.cancelled = orderID
	return s.cancel, s.err
}

type stubAdminSvc struct {
	token     string
	loginErr  error
	username  string
	verifyErr error
}

func (s *stubAdminSvc) Login(_ context.Context, _, _ string) (string, error) {
	return s.token, s.loginErr
}

func (s *stubAdminSvc) Verify(_ context.Context, _ string) (string, error) {
	return s.username, s.verifyErr
}

type stubWaitlistSvc struct {
	entries []domain.WaitlistEntry
	joinErr error
	joined  []string
}

func (s *stubWaitlistSvc) Join(_ context.Context, _, email, _ string) error {
	if s.joinErr != nil {
		return s.joinErr
	}
	s.joined = append(s.joined, email)
	return nil
}

func (s *stubWaitlistSvc) List(_ context.Context) ([]domain.WaitlistEntry, error) {
	return s.entries, nil
}

func (s *stubWaitlistSvc) Count(_ context.Context) (int, error) {
	return len(s.entries), nil
}

func defaultDeps() Deps {
	return Deps{
		ProductSvc:  &stubProductSvc{},
		CheckoutSvc: &stubCheckoutSvc{},
		PaymentSvc:  &stubPaymentSvc{},
		ShippingSvc: &stubShippingSvc{},
		OrderSvc:    &stubOrderSvc{},
		AdminSvc:    &stubAdminSvc{username: "admin"},
		WaitlistSvc: &stubWaitlistSvc{},
	}
}

func newTestRouter(t *testing.T, deps Deps) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	router, err := buildRouter(logDiscard(), nil, deps, nil)
	if err != nil {
		t.Fatalf("build router: %v", err)
	}
	return router
}
