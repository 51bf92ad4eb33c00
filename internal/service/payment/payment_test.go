package payment

import (
	"context"
	"errors"
	"testing"

	"storefront/internal/domain"
	"storefront/internal/gateway/carrier"
	"storefront/internal/gateway/mercadopago"
	"storefront/internal/repository/order"
)

type stubProvider struct {
	payment *mercadopago.PaymentInfo
	err     error
	calls   int
}

func (s *stubProvider) GetPayment(_ context.Context, _ string) (*mercadopago.PaymentInfo, error) {
	s.calls++
	return s.payment, s.err
}

type stubCarrier struct {
	req    *carrier.CreateShipmentRequest
	result *carrier.CreateShipmentResult
	err    error
}

func (s *stubCarrier) CreateShipment(_ context.Context, req carrier.CreateShipmentRequest) (*carrier.CreateShipmentResult, error) {
	s.req = &req
	if s.err != nil {
		return nil, s.err
	}
	if s.result != nil {
		return s.result, nil
	}
	return &carrier.CreateShipmentResult{ShipmentID: "car-1"}, nil
}

type stubStore struct {
	order            *domain.Order
	shipment         *domain.Shipment
	items            []domain.OrderItem
	existingPayment  *domain.Payment
	createPaymentErr error

	recorded          *order.CreatePaymentInput
	transitions       []string
	updateStatusMoved bool
	shipmentMarked    string
}

func (s *stubStore) GetByReference(_ context.Context, ref string) (*domain.Order, error) {
	if s.order == nil || s.order.ExternalReference != ref {
		return nil, domain.ErrNotFound
	}
	return s.order, nil
}

func (s *stubStore) ListItems(_ context.Context, _ int64) ([]domain.OrderItem, error) {
	return s.items, nil
}

func (s *stubStore) UpdateStatus(_ context.Context, _ int64, from, to domain.OrderStatus) (bool, error) {
	s.transitions = append(s.transitions, string(from)+"->"+string(to))
	return s.updateStatusMoved, nil
}

func (s *stubStore) GetShipmentByOrderID(_ context.Context, _ int64) (*domain.Shipment, error) {
	if s.shipment == nil {
		return nil, domain.ErrNotFound
	}
	return s.shipment, nil
}

func (s *stubStore) MarkShipmentCreated(_ context.Context, _ int64, carrierShipmentID string) error {
	s.shipmentMarked = carrierShipmentID
	return nil
}

func (s *stubStore) CreatePayment(_ context.Context, in order.CreatePaymentInput) error {
	if s.createPaymentErr != nil {
		return s.createPaymentErr
	}
	s.recorded = &in
	return nil
}

func (s *stubStore) GetPaymentByProviderID(_ context.Context, _ string) (*domain.Payment, error) {
	if s.existingPayment == nil {
		return nil, domain.ErrNotFound
	}
	return s.existingPayment, nil
}

func pendingOrder() *domain.Order {
	return &domain.Order{
		ID:                42,
		TotalCents:        500000,
		Status:            domain.OrderPending,
		ExternalReference: "ref-42",
	}
}

func pendingShipment() *domain.Shipment {
	return &domain.Shipment{
		ID:          9,
		OrderID:     42,
		RateID:      "rate-1",
		ServiceType: domain.StandardDelivery,
		CostCents:   100000,
		Status:      domain.ShipmentPending,
		Destination: domain.ShipmentDestination{City: "Rosario", State: "Santa Fe", Zipcode: "2000"},
		Recipient:   domain.ShipmentRecipient{Name: "Juan", Email: "juan@example.com"},
	}
}

func approvedPayment() *mercadopago.PaymentInfo {
	return &mercadopago.PaymentInfo{
		ID:                "mp-100",
		Status:            domain.ProviderStatusApproved,
		PaymentMethod:     "credit_card",
		AmountCents:       500000,
		ExternalReference: "ref-42",
	}
}

func TestProcess_IgnoresNonPaymentType(t *testing.T) {
	provider := &stubProvider{}
	svc := New(provider, &stubCarrier{}, &stubStore{}, nil)

	err := svc.Process(context.Background(), Notification{Type: "merchant_order", PaymentID: "x"})
	if !errors.Is(err, ErrIgnored) {
		t.Fatalf("expected ErrIgnored, got %v", err)
	}
	if provider.calls != 0 {
		t.Fatalf("provider must not be queried for ignored types")
	}
}

func TestProcess_SkipsAlreadyRecordedPayment(t *testing.T) {
	provider := &stubProvider{payment: approvedPayment()}
	store := &stubStore{
		order:           pendingOrder(),
		existingPayment: &domain.Payment{ID: 1, ProviderPaymentID: "mp-100"},
	}
	svc := New(provider, &stubCarrier{}, store, nil)

	err := svc.Process(context.Background(), Notification{Type: "payment", PaymentID: "mp-100"})
	if !errors.Is(err, ErrIgnored) {
		t.Fatalf("expected ErrIgnored, got %v", err)
	}
	if provider.calls != 0 {
		t.Fatalf("provider must not be queried when the payment is already recorded")
	}
	if len(store.transitions) != 0 {
		t.Fatalf("no status transition expected, got %v", store.transitions)
	}
}

func TestProcess_IgnoresPaymentWithoutReference(t *testing.T) {
	payment := approvedPayment()
	payment.ExternalReference = ""
	svc := New(&stubProvider{payment: payment}, &stubCarrier{}, &stubStore{}, nil)

	err := svc.Process(context.Background(), Notification{Type: "payment", PaymentID: "mp-100"})
	if !errors.Is(err, ErrIgnored) {
		t.Fatalf("expected ErrIgnored, got %v", err)
	}
}

func TestProcess_UnknownOrder(t *testing.T) {
	svc := New(&stubProvider{payment: approvedPayment()}, &stubCarrier{}, &stubStore{}, nil)

	err := svc.Process(context.Background(), Notification{Type: "payment", PaymentID: "mp-100"})
	if !errors.Is(err, ErrOrderNotFound) {
		t.Fatalf("expected ErrOrderNotFound, got %v", err)
	}
}

func TestProcess_ApprovedMarksPaidAndCreatesShipment(t *testing.T) {
	store := &stubStore{
		order:             pendingOrder(),
		shipment:          pendingShipment(),
		updateStatusMoved: true,
		items: []domain.OrderItem{
			{ProductID: "p1", Quantity: 2},
			{ProductID: "p2", Quantity: 1},
		},
	}
	shipper := &stubCarrier{}
	svc := New(&stubProvider{payment: approvedPayment()}, shipper, store, nil)

	if err := svc.Process(context.Background(), Notification{Type: "payment", PaymentID: "mp-100"}); err != nil {
		t.Fatalf("process: %v", err)
	}

	if store.recorded == nil || store.recorded.ProviderPaymentID != "mp-100" {
		t.Fatalf("payment not recorded: %+v", store.recorded)
	}
	if len(store.transitions) != 1 || store.transitions[0] != "pending->paid" {
		t.Fatalf("expected pending->paid transition, got %v", store.transitions)
	}
	if shipper.req == nil {
		t.Fatalf("expected carrier shipment creation")
	}
	// 2x p1 + 1x p2, one unit per SKU entry.
	if len(shipper.req.Items) != 3 {
		t.Fatalf("expected 3 shipment units, got %d", len(shipper.req.Items))
	}
	wantDeclared := int64(500000 - 100000)
	if shipper.req.DeclaredValueCents != wantDeclared {
		t.Fatalf("expected declared value %d, got %d", wantDeclared, shipper.req.DeclaredValueCents)
	}
	if store.shipmentMarked != "car-1" {
		t.Fatalf("expected shipment marked created with carrier id, got %q", store.shipmentMarked)
	}
}

func TestProcess_CarrierFailureDoesNotFailWebhook(t *testing.T) {
	store := &stubStore{
		order:             pendingOrder(),
		shipment:          pendingShipment(),
		updateStatusMoved: true,
		items:             []domain.OrderItem{{ProductID: "p1", Quantity: 1}},
	}
	shipper := &stubCarrier{err: &carrier.APIError{StatusCode: 503, Message: "down"}}
	svc := New(&stubProvider{payment: approvedPayment()}, shipper, store, nil)

	if err := svc.Process(context.Background(), Notification{Type: "payment", PaymentID: "mp-100"}); err != nil {
		t.Fatalf("carrier outage must not fail the webhook: %v", err)
	}
	if store.shipmentMarked != "" {
		t.Fatalf("shipment must stay pending on carrier failure")
	}
	if len(store.transitions) != 1 || store.transitions[0] != "pending->paid" {
		t.Fatalf("order must still be paid, got %v", store.transitions)
	}
}

func TestProcess_RejectedMarksFailed(t *testing.T) {
	payment := approvedPayment()
	payment.Status = domain.ProviderStatusRejected
	store := &stubStore{order: pendingOrder(), updateStatusMoved: true}
	shipper := &stubCarrier{}
	svc := New(&stubProvider{payment: payment}, shipper, store, nil)

	if err := svc.Process(context.Background(), Notification{Type: "payment", PaymentID: "mp-100"}); err != nil {
		t.Fatalf("process: %v", err)
	}
	if len(store.transitions) != 1 || store.transitions[0] != "pending->failed" {
		t.Fatalf("expected pending->failed transition, got %v", store.transitions)
	}
	if shipper.req != nil {
		t.Fatalf("rejected payments must not create shipments")
	}
}

func TestProcess_NonTerminalStatusKeepsOrderPending(t *testing.T) {
	payment := approvedPayment()
	payment.Status = "in_process"
	store := &stubStore{order: pendingOrder()}
	svc := New(&stubProvider{payment: payment}, &stubCarrier{}, store, nil)

	if err := svc.Process(context.Background(), Notification{Type: "payment", PaymentID: "mp-100"}); err != nil {
		t.Fatalf("process: %v", err)
	}
	if store.recorded == nil {
		t.Fatalf("non-terminal payments are still recorded")
	}
	if len(store.transitions) != 0 {
		t.Fatalf("no transition expected, got %v", store.transitions)
	}
}

func TestProcess_ConcurrentDuplicateInsert(t *testing.T) {
	store := &stubStore{
		order:            pendingOrder(),
		createPaymentErr: domain.ErrAlreadyExists,
	}
	svc := New(&stubProvider{payment: approvedPayment()}, &stubCarrier{}, store, nil)

	err := svc.Process(context.Background(), Notification{Type: "payment", PaymentID: "mp-100"})
	if !errors.Is(err, ErrIgnored) {
		t.Fatalf("expected ErrIgnored on duplicate insert, got %v", err)
	}
	if len(store.transitions) != 0 {
		t.Fatalf("loser of the insert race must not transition the order")
	}
}

func TestProcess_ApprovedOnPaidOrderRetriesPendingShipment(t *testing.T) {
	// First approved webhook moved the order to paid but the carrier was
	// down, so the shipment stayed pending. A later approved payment must
	// retry shipment creation even though the status transition is a no-op.
	o := pendingOrder()
	o.Status = domain.OrderPaid
	store := &stubStore{
		order:             o,
		shipment:          pendingShipment(),
		updateStatusMoved: false,
		items:             []domain.OrderItem{{ProductID: "p1", Quantity: 1}},
	}
	shipper := &stubCarrier{}
	svc := New(&stubProvider{payment: approvedPayment()}, shipper, store, nil)

	if err := svc.Process(context.Background(), Notification{Type: "payment", PaymentID: "mp-100"}); err != nil {
		t.Fatalf("process: %v", err)
	}
	if shipper.req == nil {
		t.Fatalf("expected shipment creation retry for pending shipment")
	}
	if store.shipmentMarked != "car-1" {
		t.Fatalf("expected shipment marked created, got %q", store.shipmentMarked)
	}
}

func TestProcess_ApprovedSkipsAlreadyCreatedShipment(t *testing.T) {
	o := pendingOrder()
	o.Status = domain.OrderPaid
	carrierID := "car-1"
	shipment := pendingShipment()
	shipment.Status = domain.ShipmentCreated
	shipment.CarrierShipmentID = &carrierID
	store := &stubStore{order: o, shipment: shipment, updateStatusMoved: false}
	shipper := &stubCarrier{}
	svc := New(&stubProvider{payment: approvedPayment()}, shipper, store, nil)

	if err := svc.Process(context.Background(), Notification{Type: "payment", PaymentID: "mp-100"}); err != nil {
		t.Fatalf("process: %v", err)
	}
	if shipper.req != nil {
		t.Fatalf("shipment must not be created twice")
	}
}
