package main

import (
	"context"
	"fmt"
	"os"
	"time"

	_ "github.com/UP220404/cielito-home-compras/api/swagger" // swagger docs
	"github.com/UP220404/cielito-home-compras/internal/config"
	"github.com/UP220404/cielito-home-compras/internal/database"
	"github.com/UP220404/cielito-home-compras/internal/handler"
	"github.com/UP220404/cielito-home-compras/internal/middleware"
	"github.com/UP220404/cielito-home-compras/internal/notify"
	"github.com/UP220404/cielito-home-compras/internal/repository"
	"github.com/UP220404/cielito-home-compras/internal/service"
	"github.com/UP220404/cielito-home-compras/internal/websocket"
	"github.com/UP220404/cielito-home-compras/internal/worker"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title           Cielito Home — Sistema de Compras API
// @version         1.0
// @description     API para el flujo de solicitudes de compra, cotizaciones, autorizaciones y órdenes.
// @host            localhost:8080
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Structured logging: pretty console in development, JSON in production
	if cfg.Env == "development" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	// Everything that signs or verifies tokens reads the secret through the
	// middleware, so install it from the loaded configuration once, up front.
	middleware.SetJWTSecret(cfg.JWTSecret)

	db, err := database.NewConnection(cfg.DSN())
	if err != nil {
		log.Fatal().Err(err).Msg("database connection failed")
	}
	log.Info().Str("db", cfg.DBName).Msg("connected to postgres")

	// WebSocket hub
	wsHub := websocket.NewHub()
	go wsHub.Run()

	// Repositories
	txManager := repository.NewTransactionManager(db)
	userRepo := repository.NewUserRepository(db)
	supplierRepo := repository.NewSupplierRepository(db)
	requestRepo := repository.NewRequestRepository(db)
	quotationRepo := repository.NewQuotationRepository(db)
	budgetRepo := repository.NewBudgetRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	invoiceRepo := repository.NewInvoiceRepository(db)
	auditRepo := repository.NewAuditRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	// Notification fan-out
	mailer := notify.NewMailer(cfg)
	dispatcher := notify.NewDispatcher(notificationRepo, userRepo, wsHub, mailer)

	// Services
	userService := service.NewUserService(userRepo, middleware.GetJWTSecret())
	supplierService := service.NewSupplierService(supplierRepo)
	budgetService := service.NewBudgetService(budgetRepo, auditRepo, txManager)
	requestService := service.NewRequestService(requestRepo, quotationRepo, userRepo, auditRepo, budgetService, txManager, dispatcher)
	quotationService := service.NewQuotationService(quotationRepo, requestRepo, supplierRepo, auditRepo, txManager, dispatcher)
	orderService := service.NewOrderService(orderRepo, invoiceRepo, requestRepo, quotationRepo, supplierRepo, auditRepo, txManager, dispatcher, cfg.PDFStoragePath)
	notificationService := service.NewNotificationService(notificationRepo)
	auditService := service.NewAuditService(auditRepo)
	statisticsService := service.NewStatisticsService(db)

	// Handlers
	userHandler := handler.NewUserHandler(userService)
	supplierHandler := handler.NewSupplierHandler(supplierService)
	requestHandler := handler.NewRequestHandler(requestService)
	quotationHandler := handler.NewQuotationHandler(quotationService)
	orderHandler := handler.NewOrderHandler(orderService)
	budgetHandler := handler.NewBudgetHandler(budgetService)
	notificationHandler := handler.NewNotificationHandler(notificationService)
	auditHandler := handler.NewAuditHandler(auditService)
	statisticsHandler := handler.NewStatisticsHandler(statisticsService)

	// Scheduled-request poller
	worker.StartScheduler(context.Background(), worker.SchedulerConfig{
		Requests:       requestRepo,
		RequestService: requestService,
		Interval:       time.Duration(cfg.SchedulerIntervalSeconds) * time.Second,
	})

	// Gin router
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{cfg.FrontendURL, "http://localhost:5173", "http://127.0.0.1:5173"}
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	router.Use(cors.New(corsConfig))

	// Swagger route
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "OK"})
	})

	// WebSocket endpoint
	router.GET("/ws", func(c *gin.Context) {
		websocket.ServeWs(wsHub, c, middleware.GetJWTSecret())
	})

	// API routing
	userHandler.RegisterRoutes(router.Group(""))
	supplierHandler.RegisterRoutes(router.Group(""))
	requestHandler.RegisterRoutes(router.Group(""))
	quotationHandler.RegisterRoutes(router.Group(""))
	orderHandler.RegisterRoutes(router.Group(""))
	budgetHandler.RegisterRoutes(router.Group(""))
	notificationHandler.RegisterRoutes(router.Group(""))
	auditHandler.RegisterRoutes(router.Group(""))
	statisticsHandler.RegisterRoutes(router.Group(""))

	addr := fmt.Sprintf(":%d", cfg.Port)
	log.Info().Str("addr", addr).Msg("server listening")
	if err := router.Run(addr); err != nil {
		log.Fatal().Err(err).Msg("server failed")
	}
}
