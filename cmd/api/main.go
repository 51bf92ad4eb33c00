package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"storefront/internal/config"
	"storefront/internal/db"
	"storefront/internal/gateway/carrier"
	"storefront/internal/gateway/mercadopago"
	"storefront/internal/httpserver"
	orderrepo "storefront/internal/repository/order"
	productrepo "storefront/internal/repository/product"
	waitlistrepo "storefront/internal/repository/waitlist"
	adminsvc "storefront/internal/service/admin"
	checkoutsvc "storefront/internal/service/checkout"
	ordersvc "storefront/internal/service/order"
	paymentsvc "storefront/internal/service/payment"
	productsvc "storefront/internal/service/product"
	shippingsvc "storefront/internal/service/shipping"
	waitlistsvc "storefront/internal/service/waitlist"
)

func main() {
	cfg := config.FromEnv()
	logger := log.New(os.Stdout, "[api] ", log.LstdFlags|log.LUTC|log.Lshortfile)

	ctx := context.Background()
	dbpool, err := db.Connect(ctx, cfg.DBConnString)
	if err != nil {
		logger.Fatalf("connect to db: %v", err)
	}
	defer dbpool.Close()

	productRepo := productrepo.NewPostgres(dbpool, logger)
	orderRepo := orderrepo.NewPostgres(dbpool, logger)
	waitlistRepo := waitlistrepo.NewPostgres(dbpool)

	carrierClient := carrier.New(carrier.Config{
		BaseURL:   cfg.CarrierBaseURL,
		APIKey:    cfg.CarrierAPIKey,
		APISecret: cfg.CarrierAPISecret,
		AccountID: cfg.CarrierAccountID,
		OriginID:  cfg.CarrierOriginID,
	}, logger)
	mpClient := mercadopago.New(cfg.MPAccessToken, cfg.MPBaseURL, logger)

	productService := productsvc.New(productRepo)
	checkoutService := checkoutsvc.New(productRepo, orderRepo, mpClient, checkoutsvc.URLs{
		Success:      joinURL(cfg.FrontendBaseURL, "/checkout/success"),
		Failure:      joinURL(cfg.FrontendBaseURL, "/checkout/failure"),
		Pending:      joinURL(cfg.FrontendBaseURL, "/checkout/pending"),
		Notification: joinURL(cfg.PublicAPIURL, "/payments/webhook"),
	}, logger)
	paymentService := paymentsvc.New(mpClient, carrierClient, orderRepo, logger)
	shippingService := shippingsvc.New(carrierClient, productRepo)
	orderService := ordersvc.New(orderRepo, carrierClient, mpClient, logger)
	adminService := adminsvc.New(cfg.AdminUser, cfg.AdminPassword, cfg.AdminJWTSecret)
	waitlistService := waitlistsvc.New(waitlistRepo)

	srv, err := httpserver.New(cfg.HTTPAddr, logger, dbpool, httpserver.Deps{
		ProductSvc:  productService,
		CheckoutSvc: checkoutService,
		PaymentSvc:  paymentService,
		ShippingSvc: shippingService,
		OrderSvc:    orderService,
		AdminSvc:    adminService,
		WaitlistSvc: waitlistService,
	}, cfg.AllowedOrigins)
	if err != nil {
		logger.Fatalf("init server: %v", err)
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Printf("starting http server on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stopCh:
		logger.Printf("received signal %s, shutting down", sig)
	case err := <-serverErr:
		logger.Printf("server error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Printf("graceful shutdown failed: %v", err)
	} else {
		logger.Printf("server stopped")
	}
}

func joinURL(base, path string) string {
	return strings.TrimRight(base, "/") + path
}
