// Package main provides a CLI tool for seeding the database with demo data:
// a small product catalog, a supplier and a customer, and opening stock via
// committed purchase transactions.
package main

import (
	"context"
	"fmt"
	"os"

	appctx "shopledger/internal/core/context"
	"shopledger/internal/core/types"
	"shopledger/internal/domain/catalogs/counterpart"
	"shopledger/internal/domain/catalogs/product"
	"shopledger/internal/domain/ledger"
	"shopledger/internal/domain/transactions"
	"shopledger/internal/infrastructure/config"
	"shopledger/internal/infrastructure/storage/postgres"
	"shopledger/internal/infrastructure/storage/postgres/catalog_repo"
	"shopledger/internal/infrastructure/storage/postgres/ledger_repo"
	"shopledger/internal/infrastructure/storage/postgres/transaction_repo"
	"shopledger/pkg/logger"
	"shopledger/pkg/numerator"
)

type demoProduct struct {
	code         string
	name         string
	barcode      string
	unitPrice    string
	taxPercent   string
	reorderLevel int64
	openingQty   int64
}

var demoProducts = []demoProduct{
	{"COF-001", "Ground Coffee 500g", "4006381333931", "8.50", "5", 10, 120},
	{"TEA-001", "Green Tea 100g", "4006381333948", "4.20", "5", 15, 80},
	{"SUG-001", "Cane Sugar 1kg", "4006381333955", "2.10", "5", 20, 200},
	{"MUG-001", "Ceramic Mug", "4006381333962", "6.90", "19", 5, 40},
	{"GRN-001", "Manual Grinder", "4006381333979", "24.00", "19", 2, 12},
}

func main() {
	log, err := logger.New(logger.Config{
		Level:       "info",
		Development: true,
	})
	if err != nil {
		fmt.Printf("failed to create logger: %v\n", err)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalw("failed to load configuration", "error", err)
	}

	ctx := appctx.WithOperator(context.Background(), "seed")

	pool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(cfg.DB.ConnectionString()))
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	log.Info("connected to database")

	txManager := postgres.NewTxManager(pool)

	productRepo := catalog_repo.NewProductRepo(txManager)
	counterpartRepo := catalog_repo.NewCounterpartRepo(txManager)
	ledgerRepo := ledger_repo.NewLedgerRepo(txManager)
	transactionRepo := transaction_repo.NewTransactionRepo(txManager)

	numbers := numerator.NewWithProvider(func(ctx context.Context) numerator.Querier {
		return txManager.GetQuerier(ctx)
	})

	auditService, err := postgres.NewAuditService(txManager)
	if err != nil {
		log.Fatalw("failed to create audit service", "error", err)
	}

	validator := transactions.NewValidator(productRepo, ledgerRepo)
	committer := transactions.NewService(
		validator, transactionRepo, ledgerRepo, productRepo,
		numbers, auditService, txManager,
	)

	ledgerService := ledger.NewService(ledgerRepo, productRepo)

	supplier, err := seedCounterparts(ctx, counterpartRepo, log)
	if err != nil {
		log.Fatalw("failed to seed counterparts", "error", err)
	}

	products, err := seedProducts(ctx, productRepo, log)
	if err != nil {
		log.Fatalw("failed to seed products", "error", err)
	}

	if err := seedOpeningStock(ctx, committer, ledgerService, supplier, products, log); err != nil {
		log.Fatalw("failed to seed opening stock", "error", err)
	}

	log.Info("seeding completed successfully")
}

func seedCounterparts(ctx context.Context, repo *catalog_repo.CounterpartRepo, log *logger.Logger) (*counterpart.Counterpart, error) {
	supplier := counterpart.New("SUP-001", "Roast & Co Wholesale", counterpart.KindSupplier)
	supplier.Phone = "+49 30 1234567"
	supplier.Email = "orders@roastco.example"

	if existing, err := repo.GetByCode(ctx, supplier.Code); err == nil {
		log.Infow("supplier already present", "code", existing.Code)
		return existing, nil
	}

	if err := repo.Create(ctx, supplier); err != nil {
		return nil, fmt.Errorf("create supplier: %w", err)
	}
	log.Infow("supplier created", "code", supplier.Code)

	customer := counterpart.New("CUS-001", "Walk-in Regular", counterpart.KindCustomer)
	if err := repo.Create(ctx, customer); err != nil {
		return nil, fmt.Errorf("create customer: %w", err)
	}
	log.Infow("customer created", "code", customer.Code)

	return supplier, nil
}

func seedProducts(ctx context.Context, repo *catalog_repo.ProductRepo, log *logger.Logger) ([]*product.Product, error) {
	out := make([]*product.Product, 0, len(demoProducts))

	for _, d := range demoProducts {
		if existing, err := repo.GetByCode(ctx, d.code); err == nil {
			log.Infow("product already present", "code", d.code)
			out = append(out, existing)
			continue
		}

		p := product.New(d.code, d.name, types.MustMoney(d.unitPrice), types.MustMoney(d.taxPercent))
		barcode := d.barcode
		p.Barcode = &barcode
		level := types.Quantity(d.reorderLevel)
		p.ReorderLevel = &level

		if err := repo.Create(ctx, p); err != nil {
			return nil, fmt.Errorf("create product %s: %w", d.code, err)
		}
		log.Infow("product created", "code", p.Code, "name", p.Name)
		out = append(out, p)
	}

	return out, nil
}

// seedOpeningStock commits one purchase covering all demo products, unless
// stock is already present.
func seedOpeningStock(
	ctx context.Context,
	committer *transactions.Service,
	ledgerService *ledger.Service,
	supplier *counterpart.Counterpart,
	products []*product.Product,
	log *logger.Logger,
) error {
	if len(products) == 0 {
		return nil
	}

	qty, err := ledgerService.CurrentStock(ctx, products[0].ID)
	if err != nil {
		return fmt.Errorf("check existing stock: %w", err)
	}
	if !qty.IsZero() {
		log.Info("opening stock already present, skipping")
		return nil
	}

	req := transactions.Request{
		Kind:          transactions.KindPurchase,
		CounterpartID: &supplier.ID,
		Discount:      types.ZeroMoney(),
		Note:          "opening stock",
	}

	for i, p := range products {
		req.Lines = append(req.Lines, transactions.LineInput{
			ProductID: p.ID,
			Quantity:  types.Quantity(demoProducts[i].openingQty),
			UnitPrice: p.UnitPrice,
		})
	}

	t, err := committer.Commit(ctx, req)
	if err != nil {
		return fmt.Errorf("commit opening purchase: %w", err)
	}

	log.Infow("opening stock committed", "number", t.Number, "lines", len(t.Moves))
	return nil
}
