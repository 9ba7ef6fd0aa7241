package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"kasir/internal/config"
	"kasir/internal/domain/model"
	"kasir/internal/handler"
	"kasir/internal/infra/db"
	infraRepo "kasir/internal/infra/repository"
	"kasir/internal/logger"
	"kasir/internal/pricing"
	"kasir/internal/receipt"
	"kasir/internal/server"
	"kasir/internal/usecase"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type uuidGenerator struct{}

func (g *uuidGenerator) NewID() string {
	return uuid.NewString()
}

type realClock struct{}

func (c *realClock) Now() time.Time {
	return time.Now()
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := logger.New(cfg.LogLevel, cfg.IsProd())
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	//DB接続
	gormDB, err := db.Connect(cfg)
	if err != nil {
		return fmt.Errorf("connect db: %w", err)
	}
	if err := db.Migrate(gormDB); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	//Repository（GORM実装）生成
	productRepo := infraRepo.NewProductGormRepository(gormDB)
	inventoryRepo := infraRepo.NewInventoryGormRepository(gormDB)
	txm := infraRepo.NewTxManagerGorm(gormDB)

	//usecaseに渡す部品
	idGen := &uuidGenerator{}
	clock := &realClock{}
	receipts := receipt.NewFileSink(cfg.ReceiptDir)
	defaultTax := pricing.ParseTaxPercent(cfg.TaxPercent)

	//Usecase生成
	productUC := usecase.NewProductUsecase(productRepo, inventoryRepo, log)
	importUC := usecase.NewImportUsecase(txm, productRepo, log)
	cartUC := usecase.NewCartUsecase(productRepo, model.NewCart())
	checkoutUC := usecase.NewCheckoutUsecase(txm, receipts, idGen, clock, log)
	saleUC := usecase.NewSaleUsecase(txm)

	if cfg.SeedSample {
		res, err := importUC.SeedSample(ctx)
		if err != nil {
			return fmt.Errorf("seed sample products: %w", err)
		}
		log.Info("sample products seeded", zap.Int("imported", res.Imported))
	}

	//Handler生成
	e := server.New(server.Handlers{
		Product: handler.NewProductHandler(productUC, importUC),
		Cart:    handler.NewCartHandler(cartUC, checkoutUC, defaultTax),
		Sale:    handler.NewSaleHandler(saleUC),
	}, sqlDB, log)

	log.Info("kasir ready",
		zap.String("db_driver", cfg.DBDriver),
		zap.String("receipt_dir", receipts.Dir()),
		zap.String("tax_percent", defaultTax.String()))

	//Server起動
	return server.Run(ctx, e, cfg.Addr(), log)
}
