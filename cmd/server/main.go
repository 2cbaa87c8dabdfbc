package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"wagate_app_echo/internal/handlers"
	appMiddleware "wagate_app_echo/internal/middleware"
	"wagate_app_echo/internal/services"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment")
	}

	// Initialize Firebase (admin dashboard auth)
	credPath := os.Getenv("FIREBASE_CREDENTIALS_PATH")
	if credPath == "" {
		credPath = "./firebase-service-account.json"
	}

	authClient, err := services.InitFirebase(credPath)
	if err != nil {
		log.Printf("Warning: Firebase initialization failed: %v", err)
		log.Println("Admin routes will not work until valid credentials are provided")
	}

	// Initialize Database
	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		log.Fatal("DATABASE_URL not set")
	}

	db, err := services.InitDB(databaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := services.AutoMigrate(db); err != nil {
		log.Fatalf("Failed to run database migrations: %v", err)
	}

	// Initialize Redis
	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		redisURL = "redis://localhost:6379"
	}

	cache, err := services.NewRedisCache(redisURL)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer cache.Close()

	// Initialize services
	whatsapp := services.NewWhatsAppService()
	duitku := services.NewDuitkuService()
	midtrans := services.NewMidtransService()

	vouchers := services.NewVoucherService(db)
	checkout := services.NewCheckoutService(db, cache, vouchers)
	otp := services.NewOTPService(cache, whatsapp)
	payments := services.NewPaymentService(db, duitku, midtrans)
	subscriptions := services.NewSubscriptionService(db, cache, whatsapp)

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = appMiddleware.CustomErrorHandler

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	// Initialize handlers
	publicHandler := handlers.NewPublicHandler(db, cache)
	checkoutHandler := handlers.NewCheckoutHandler(db, checkout, otp)
	paymentHandler := handlers.NewPaymentHandler(db, payments)
	callbackHandler := handlers.NewCallbackHandler(db, payments, duitku, midtrans)
	transactionHandler := handlers.NewTransactionHandler(db)
	subscriptionHandler := handlers.NewSubscriptionHandler(db, subscriptions)
	adminHandler := handlers.NewAdminHandler(db, cache, payments)

	// Public catalog
	e.GET("/api/packages", publicHandler.ListPackages)
	e.GET("/api/payment-methods", publicHandler.ListPaymentMethods)

	// Checkout wizard. OptionalCustomer lets returning customers skip OTP.
	co := e.Group("/api/checkout", appMiddleware.OptionalCustomer())
	co.POST("/start", checkoutHandler.Start)
	co.GET("/:id", checkoutHandler.GetState)
	co.PUT("/:id/contact", checkoutHandler.SetContact)
	co.POST("/:id/otp/request", checkoutHandler.RequestOTP)
	co.POST("/:id/otp/verify", checkoutHandler.VerifyOTP)
	co.POST("/:id/package", checkoutHandler.SelectPackage)
	co.POST("/:id/voucher", checkoutHandler.ApplyVoucher)
	co.DELETE("/:id/voucher", checkoutHandler.RemoveVoucher)

	// Customer API
	customer := e.Group("/api/customer", appMiddleware.RequireCustomer())
	customer.POST("/checkout/:id/submit", checkoutHandler.Submit)
	customer.POST("/payment/create", paymentHandler.Create)
	customer.GET("/payment/:id", paymentHandler.Get)
	customer.GET("/transactions", transactionHandler.List)
	customer.GET("/transactions/:id", transactionHandler.Get)
	customer.GET("/subscription", subscriptionHandler.Get)
	customer.GET("/sessions", subscriptionHandler.ListSessions)
	customer.POST("/sessions", subscriptionHandler.CreateSession)
	customer.POST("/sessions/:id/stop", subscriptionHandler.StopSession)
	customer.DELETE("/sessions/:id", subscriptionHandler.DeleteSession)

	// Gateway callbacks (authenticated by signature, not by token)
	e.POST("/api/callback/duitku", callbackHandler.Duitku)
	e.POST("/api/callback/midtrans", callbackHandler.Midtrans)

	// Admin dashboard API
	admin := e.Group("/api/admin", appMiddleware.RequireAdmin(authClient))
	admin.GET("/packages", adminHandler.ListPackages)
	admin.POST("/packages", adminHandler.CreatePackage)
	admin.PUT("/packages/:id", adminHandler.UpdatePackage)
	admin.DELETE("/packages/:id", adminHandler.DeletePackage)
	admin.GET("/payment-methods", adminHandler.ListPaymentMethods)
	admin.POST("/payment-methods", adminHandler.CreatePaymentMethod)
	admin.PUT("/payment-methods/:id", adminHandler.UpdatePaymentMethod)
	admin.GET("/vouchers", adminHandler.ListVouchers)
	admin.POST("/vouchers", adminHandler.CreateVoucher)
	admin.PUT("/vouchers/:id", adminHandler.UpdateVoucher)
	admin.DELETE("/vouchers/:id", adminHandler.DeleteVoucher)
	admin.GET("/payments/pending", adminHandler.ListPendingPayments)
	admin.POST("/payments/:id/approve", adminHandler.ApprovePayment)
	admin.POST("/payments/:id/reject", adminHandler.RejectPayment)
	admin.GET("/analytics/summary", adminHandler.AnalyticsSummary)

	// Start server
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Server starting on port %s", port)
	e.Logger.Fatal(e.Start(":" + port))
}
