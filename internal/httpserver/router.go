package httpserver

import (
	"context"
	"log"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"storefront/internal/domain"
	"storefront/internal/gateway/carrier"
	checkoutsvc "storefront/internal/service/checkout"
	ordersvc "storefront/internal/service/order"
	paymentsvc "storefront/internal/service/payment"
	shippingsvc "storefront/internal/service/shipping"
)

type ProductService interface {
	List(ctx context.Context) ([]domain.Product, error)
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	Create(ctx context.Context, p domain.Product) (*domain.Product, error)
	Update(ctx context.Context, p domain.Product) (*domain.Product, error)
	Delete(ctx context.Context, id string) error
}

type CheckoutService interface {
	Checkout(ctx context.Context, req checkoutsvc.Request) (*checkoutsvc.Result, error)
}

type PaymentService interface {
	Process(ctx context.Context, n paymentsvc.Notification) error
}

type ShippingService interface {
	Cheapest(ctx context.Context, req shippingsvc.QuoteRequest) (*carrier.RateOption, error)
	Options(ctx context.Context, req shippingsvc.QuoteRequest) ([]carrier.RateOption, error)
}

type OrderService interface {
	List(ctx context.Context) ([]domain.Order, error)
	Items(ctx context.Context, orderID int64) ([]domain.OrderItem, error)
	CancelShipment(ctx context.Context, orderID int64) (*ordersvc.CancelResult, error)
}

type AdminService interface {
	Login(ctx context.Context, username, password string) (string, error)
	Verify(ctx context.Context, token string) (string, error)
}

type WaitlistService interface {
	Join(ctx context.Context, name, email, province string) error
	List(ctx context.Context) ([]domain.WaitlistEntry, error)
	Count(ctx context.Context) (int, error)
}

// Deps carries the services the router needs.
type Deps struct {
	ProductSvc  ProductService
	CheckoutSvc CheckoutService
	PaymentSvc  PaymentService
	ShippingSvc ShippingService
	OrderSvc    OrderService
	AdminSvc    AdminService
	WaitlistSvc WaitlistService
}

// buildRouter wires routes for the API.
func buildRouter(logger *log.Logger, db *pgxpool.Pool, deps Deps, allowedOrigins []string) (*gin.Engine, error) {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.LoggerWithWriter(logger.Writer()), gin.Recovery())

	if len(allowedOrigins) > 0 {
		corsCfg := cors.DefaultConfig()
		corsCfg.AllowOrigins = allowedOrigins
		corsCfg.AllowCredentials = true
		corsCfg.AllowHeaders = append(corsCfg.AllowHeaders, "Authorization")
		router.Use(cors.New(corsCfg))
	}

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(db))

	router.GET("/products", listProductsHandler(deps.ProductSvc))
	router.GET("/products/:id", getProductHandler(deps.ProductSvc))

	router.POST("/shipping/quote", quoteHandler(deps.ShippingSvc))
	router.POST("/shipping/quote-options", quoteOptionsHandler(deps.ShippingSvc))

	router.POST("/payments/create-preference", checkoutHandler(deps.CheckoutSvc))
	router.POST("/payments/webhook", webhookHandler(deps.PaymentSvc, logger))

	router.POST("/waitlist", joinWaitlistHandler(deps.WaitlistSvc))

	router.POST("/admin/login", loginHandler(deps.AdminSvc))

	authed := router.Group("/", requireAdmin(deps.AdminSvc))
	authed.GET("/admin/verify", verifyHandler)
	authed.POST("/products", createProductHandler(deps.ProductSvc))
	authed.PUT("/products/:id", updateProductHandler(deps.ProductSvc))
	authed.DELETE("/products/:id", deleteProductHandler(deps.ProductSvc))
	authed.GET("/orders", listOrdersHandler(deps.OrderSvc))
	authed.GET("/orders/:id/items", orderItemsHandler(deps.OrderSvc))
	authed.POST("/orders/:id/cancel-shipment", cancelShipmentHandler(deps.OrderSvc))
	authed.GET("/waitlist", listWaitlistHandler(deps.WaitlistSvc))

	return router, nil
}
