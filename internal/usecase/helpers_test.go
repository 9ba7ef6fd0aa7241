package usecase

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"kasir/internal/domain/model"
	"kasir/internal/infra/db"
	infraRepo "kasir/internal/infra/repository"
	"kasir/internal/receipt"
	repo "kasir/internal/repository"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// =====================
// 実DB（sqlite）を使う部品
// =====================

type testEnv struct {
	db       *gorm.DB
	tx       *infraRepo.TxManagerGorm
	products *infraRepo.ProductGormRepository
	sink     *receipt.FileSink
	clock    *fixedClock
	ids      *seqIDGen
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	gdb, err := db.OpenSQLite(filepath.Join(t.TempDir(), "kasir.db"))
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gdb))
	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	return &testEnv{
		db:       gdb,
		tx:       infraRepo.NewTxManagerGorm(gdb),
		products: infraRepo.NewProductGormRepository(gdb),
		sink:     receipt.NewFileSink(filepath.Join(t.TempDir(), "receipts")),
		clock:    &fixedClock{now: time.Date(2025, 3, 14, 9, 26, 53, 0, time.Local)},
		ids:      &seqIDGen{},
	}
}

func (e *testEnv) createProduct(t *testing.T, sku, name string, price, stock int64) model.Product {
	t.Helper()

	p, err := e.products.Create(context.Background(), model.Product{SKU: sku, Name: name, Price: price, Stock: stock})
	require.NoError(t, err)
	return p
}

func (e *testEnv) stockOf(t *testing.T, productID int64) int64 {
	t.Helper()

	p, err := e.products.FindByID(context.Background(), productID)
	require.NoError(t, err)
	return p.Stock
}

func (e *testEnv) countRows(t *testing.T, m any) int64 {
	t.Helper()

	var n int64
	require.NoError(t, e.db.Model(m).Count(&n).Error)
	return n
}

type fixedClock struct {
	now time.Time
}

func (c *fixedClock) Now() time.Time {
	return c.now
}

type seqIDGen struct {
	n int
}

func (g *seqIDGen) NewID() string {
	g.n++
	return fmt.Sprintf("receipt-%04d", g.n)
}

// =====================
// Mocks
// =====================

type ProductRepoMock struct{ mock.Mock }

func (m *ProductRepoMock) FindByID(ctx context.Context, id int64) (model.Product, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(model.Product)
	return p, args.Error(1)
}

func (m *ProductRepoMock) FindBySKU(ctx context.Context, sku string) (model.Product, error) {
	args := m.Called(ctx, sku)
	p, _ := args.Get(0).(model.Product)
	return p, args.Error(1)
}

func (m *ProductRepoMock) Search(ctx context.Context, text string) ([]model.Product, error) {
	args := m.Called(ctx, text)
	items, _ := args.Get(0).([]model.Product)
	return items, args.Error(1)
}

func (m *ProductRepoMock) ListAll(ctx context.Context) ([]model.Product, error) {
	args := m.Called(ctx)
	items, _ := args.Get(0).([]model.Product)
	return items, args.Error(1)
}

func (m *ProductRepoMock) Create(ctx context.Context, p model.Product) (model.Product, error) {
	args := m.Called(ctx, p)
	created, _ := args.Get(0).(model.Product)
	return created, args.Error(1)
}

func (m *ProductRepoMock) Update(ctx context.Context, p model.Product) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *ProductRepoMock) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type InventoryRepoMock struct{ mock.Mock }

func (m *InventoryRepoMock) SetStock(ctx context.Context, productID int64, newStock int64) error {
	args := m.Called(ctx, productID, newStock)
	return args.Error(0)
}

func (m *InventoryRepoMock) DecreaseStockIfEnough(ctx context.Context, productID int64, qty int64) (bool, error) {
	args := m.Called(ctx, productID, qty)
	return args.Bool(0), args.Error(1)
}

func (m *InventoryRepoMock) IncreaseStock(ctx context.Context, productID int64, qty int64) error {
	args := m.Called(ctx, productID, qty)
	return args.Error(0)
}

type SaleItemRepoMock struct{ mock.Mock }

func (m *SaleItemRepoMock) CreateBulk(ctx context.Context, saleID int64, items []model.SaleItem) error {
	args := m.Called(ctx, saleID, items)
	return args.Error(0)
}

func (m *SaleItemRepoMock) ListBySaleID(ctx context.Context, saleID int64) ([]model.SaleItem, error) {
	args := m.Called(ctx, saleID)
	items, _ := args.Get(0).([]model.SaleItem)
	return items, args.Error(1)
}

type ReceiptSinkMock struct{ mock.Mock }

func (m *ReceiptSinkMock) Write(soldAt time.Time, text string) (string, error) {
	args := m.Called(soldAt, text)
	return args.String(0), args.Error(1)
}

func (m *ReceiptSinkMock) Discard(path string) error {
	args := m.Called(path)
	return args.Error(0)
}

// 実Txの中で一部のrepoだけ差し替える
type overrideTx struct {
	inner     repo.TransactionManager
	saleItems repo.SaleItemRepository
}

type overrideRepos struct {
	repo.TxRepos
	saleItems repo.SaleItemRepository
}

func (r overrideRepos) SaleItems() repo.SaleItemRepository { return r.saleItems }

func (m overrideTx) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	return m.inner.WithinTx(ctx, func(r repo.TxRepos) error {
		return fn(overrideRepos{TxRepos: r, saleItems: m.saleItems})
	})
}

// 本体の処理は成功させて、コミットだけ失敗させる
type commitFailTx struct {
	inner repo.TransactionManager
	err   error
}

func (m commitFailTx) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	err := m.inner.WithinTx(ctx, func(r repo.TxRepos) error {
		if err := fn(r); err != nil {
			return err
		}
		// ロールバックさせるために失敗を返す
		return m.err
	})
	return err
}
