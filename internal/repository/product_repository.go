package repository

import (
	"context"
	"errors"

	"kasir/internal/domain/model"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrDuplicateKey = errors.New("duplicate key")
)

// 商品の永続化（保存・取得）だけを約束。
type ProductRepository interface {
	FindByID(ctx context.Context, id int64) (model.Product, error)
	FindBySKU(ctx context.Context, sku string) (model.Product, error)

	// SKUか名前の部分一致（大文字小文字は区別しない）。空なら全件を名前順。
	Search(ctx context.Context, text string) ([]model.Product, error)
	ListAll(ctx context.Context) ([]model.Product, error)

	Create(ctx context.Context, p model.Product) (model.Product, error)
	Update(ctx context.Context, p model.Product) error
	Delete(ctx context.Context, id int64) error
}
