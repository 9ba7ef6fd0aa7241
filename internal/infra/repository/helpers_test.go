package repository

import (
	"context"
	"path/filepath"
	"testing"

	"kasir/internal/domain/model"
	"kasir/internal/infra/db"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	gdb, err := db.OpenSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gdb))

	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return gdb
}

func mustCreateProduct(t *testing.T, r *ProductGormRepository, sku, name string, price, stock int64) model.Product {
	t.Helper()

	p, err := r.Create(context.Background(), model.Product{SKU: sku, Name: name, Price: price, Stock: stock})
	require.NoError(t, err)
	return p
}
