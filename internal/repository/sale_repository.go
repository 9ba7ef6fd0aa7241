package repository

import (
	"context"
	"time"

	"kasir/internal/domain/model"
)

type SaleListFilter struct {
	From  *time.Time
	To    *time.Time
	Limit int
}

// 会計の記録は追加と参照だけ。更新・削除はしない。
type SaleRepository interface {
	Create(ctx context.Context, sale model.Sale) (model.Sale, error)
	FindByID(ctx context.Context, saleID int64) (model.Sale, error)
	List(ctx context.Context, f SaleListFilter) ([]model.Sale, error)
}

type SaleItemRepository interface {
	CreateBulk(ctx context.Context, saleID int64, items []model.SaleItem) error
	ListBySaleID(ctx context.Context, saleID int64) ([]model.SaleItem, error)
}
