package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"kasir/internal/domain/model"
	"kasir/internal/infra/db"
	infraRepo "kasir/internal/infra/repository"
	"kasir/internal/middleware"
	"kasir/internal/receipt"
	"kasir/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

type seqIDGen struct{ n int }

func (g *seqIDGen) NewID() string {
	g.n++
	return fmt.Sprintf("r-%d", g.n)
}

type testApp struct {
	e        *echo.Echo
	products *infraRepo.ProductGormRepository
	sink     *receipt.FileSink
}

// 実DB（sqlite）で全ルートを組む
func newTestApp(t *testing.T) *testApp {
	t.Helper()

	gdb, err := db.OpenSQLite(filepath.Join(t.TempDir(), "kasir.db"))
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gdb))
	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	productRepo := infraRepo.NewProductGormRepository(gdb)
	txm := infraRepo.NewTxManagerGorm(gdb)
	sink := receipt.NewFileSink(filepath.Join(t.TempDir(), "receipts"))
	clock := fixedClock{now: time.Date(2025, 3, 14, 9, 26, 53, 0, time.Local)}

	productUC := usecase.NewProductUsecase(productRepo, infraRepo.NewInventoryGormRepository(gdb), nil)
	importUC := usecase.NewImportUsecase(txm, productRepo, nil)
	cartUC := usecase.NewCartUsecase(productRepo, model.NewCart())
	checkoutUC := usecase.NewCheckoutUsecase(txm, sink, &seqIDGen{}, clock, nil)

	e := echo.New()
	NewProductHandler(productUC, importUC).RegisterRoutes(e)
	NewCartHandler(cartUC, checkoutUC, decimal.NewFromInt(11)).
		RegisterRoutes(e, middleware.SessionLock(middleware.NewSessionSemaphore()))
	NewSaleHandler(usecase.NewSaleUsecase(txm)).RegisterRoutes(e)

	return &testApp{e: e, products: productRepo, sink: sink}
}

func (a *testApp) seed(t *testing.T, sku, name string, price, stock int64) model.Product {
	t.Helper()

	p, err := a.products.Create(context.Background(), model.Product{SKU: sku, Name: name, Price: price, Stock: stock})
	require.NoError(t, err)
	return p
}

func (a *testApp) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func mustStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	require.Equal(t, want, rec.Code, rec.Body.String())
}

