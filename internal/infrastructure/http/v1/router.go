// Package v1 provides HTTP API version 1.
package v1

import (
	"context"

	"github.com/gin-gonic/gin"

	"shopledger/internal/domain/catalogs/counterpart"
	"shopledger/internal/domain/catalogs/product"
	"shopledger/internal/domain/ledger"
	"shopledger/internal/domain/reports"
	"shopledger/internal/domain/transactions"
	"shopledger/internal/infrastructure/config"
	"shopledger/internal/infrastructure/http/v1/handlers"
	"shopledger/internal/infrastructure/http/v1/middleware"
	"shopledger/internal/infrastructure/storage/postgres"
	"shopledger/internal/infrastructure/storage/postgres/catalog_repo"
	"shopledger/internal/infrastructure/storage/postgres/ledger_repo"
	"shopledger/internal/infrastructure/storage/postgres/report_repo"
	"shopledger/internal/infrastructure/storage/postgres/transaction_repo"
	"shopledger/pkg/logger"
	"shopledger/pkg/numerator"
)

// RouterConfig holds router dependencies.
type RouterConfig struct {
	Pool        *postgres.Pool
	TxManager   *postgres.TxManager
	Idempotency *postgres.IdempotencyStore
	Logger      *logger.Logger
	App         config.AppConfig
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) (*gin.Engine, error) {
	if cfg.App.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Global middleware (order matters!)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())

	// Health endpoints
	healthHandler := handlers.NewHealthHandler(cfg.Pool)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
		health.GET("/info", healthHandler.Info)
	}

	// Repositories share the TxManager so the same instances work inside
	// and outside transactions.
	productRepo := catalog_repo.NewProductRepo(cfg.TxManager)
	counterpartRepo := catalog_repo.NewCounterpartRepo(cfg.TxManager)
	ledgerRepo := ledger_repo.NewLedgerRepo(cfg.TxManager)
	transactionRepo := transaction_repo.NewTransactionRepo(cfg.TxManager)
	reportRepo := report_repo.NewReportRepo(cfg.TxManager)

	// Number generation resolves its querier per call so document numbers
	// are issued inside the commit transaction.
	numbers := numerator.NewWithProvider(func(ctx context.Context) numerator.Querier {
		return cfg.TxManager.GetQuerier(ctx)
	})

	auditService, err := postgres.NewAuditService(cfg.TxManager)
	if err != nil {
		return nil, err
	}

	// Services
	productService := product.NewService(productRepo)
	counterpartService := counterpart.NewService(counterpartRepo)
	ledgerService := ledger.NewService(ledgerRepo, productRepo)
	validator := transactions.NewValidator(productRepo, ledgerRepo)
	transactionService := transactions.NewService(
		validator, transactionRepo, ledgerRepo, productRepo,
		numbers, auditService, cfg.TxManager,
	)
	reportService := reports.NewService(reportRepo, cfg.TxManager)

	// Handlers
	base := handlers.NewBaseHandler()
	productHandler := handlers.NewProductHandler(base, productService)
	counterpartHandler := handlers.NewCounterpartHandler(base, counterpartService)
	transactionHandler := handlers.NewTransactionHandler(base, transactionService)
	stockHandler := handlers.NewStockHandler(base, ledgerService)
	reportsHandler := handlers.NewReportsHandler(base, reportService)

	api := router.Group("/api/v1")
	{
		catalogs := api.Group("/catalog")
		{
			products := catalogs.Group("/products")
			products.POST("", productHandler.Create)
			products.GET("", productHandler.List)
			products.GET("/:id", productHandler.GetByID)
			products.PATCH("/:id", productHandler.Update)
			products.GET("/barcode/:barcode", productHandler.GetByBarcode)

			counterparts := catalogs.Group("/counterparts")
			counterparts.POST("", counterpartHandler.Create)
			counterparts.GET("", counterpartHandler.List)
			counterparts.GET("/:id", counterpartHandler.GetByID)
			counterparts.PATCH("/:id", counterpartHandler.Update)
		}

		// Commits go through idempotency protection: a retried request with
		// the same key replays the original response.
		txGroup := api.Group("/transactions")
		txGroup.Use(middleware.Idempotency(cfg.Idempotency))
		{
			txGroup.POST("", transactionHandler.Commit)
			txGroup.POST("/adjustments", transactionHandler.CommitAdjustment)
			txGroup.GET("", transactionHandler.List)
			txGroup.GET("/number/:number", transactionHandler.GetByNumber)
			txGroup.GET("/:id", transactionHandler.GetByID)
		}

		stock := api.Group("/stock")
		{
			stock.POST("/bulk", stockHandler.GetBulk)
			stock.GET("/:productId", stockHandler.Get)
			stock.GET("/:productId/movements", stockHandler.Movements)
		}

		reportsGroup := api.Group("/reports")
		{
			reportsGroup.GET("/sales-summary", reportsHandler.SalesSummary)
			reportsGroup.GET("/stock-on-hand", reportsHandler.StockOnHand)
			reportsGroup.GET("/low-stock", reportsHandler.LowStock)
		}
	}

	return router, nil
}
