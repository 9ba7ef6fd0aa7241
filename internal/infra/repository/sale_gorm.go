package repository

import (
	"context"

	"kasir/internal/domain/model"
	repo "kasir/internal/repository"

	"gorm.io/gorm"
)

type SaleGormRepository struct {
	db *gorm.DB
}

func NewSaleGormRepository(db *gorm.DB) *SaleGormRepository {
	return &SaleGormRepository{db: db}
}

func (r *SaleGormRepository) Create(ctx context.Context, sale model.Sale) (model.Sale, error) {
	if err := r.db.WithContext(ctx).Create(&sale).Error; err != nil {
		if isDuplicateKey(err) {
			return model.Sale{}, repo.ErrDuplicateKey
		}
		return model.Sale{}, err
	}
	return sale, nil
}

func (r *SaleGormRepository) FindByID(ctx context.Context, saleID int64) (model.Sale, error) {
	var s model.Sale
	err := r.db.WithContext(ctx).Where("id = ?", saleID).First(&s).Error
	if isNotFound(err) {
		return model.Sale{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Sale{}, err
	}
	return s, nil
}

// 新しい順。期間で絞り込み。
func (r *SaleGormRepository) List(ctx context.Context, f repo.SaleListFilter) ([]model.Sale, error) {
	if f.Limit <= 0 || f.Limit > 500 {
		f.Limit = 100
	}

	q := r.db.WithContext(ctx).Model(&model.Sale{})

	//期間絞り込み
	if f.From != nil {
		q = q.Where("sold_at >= ?", *f.From)
	}
	if f.To != nil {
		q = q.Where("sold_at <= ?", *f.To)
	}

	var sales []model.Sale
	if err := q.Order("id desc").Limit(f.Limit).Find(&sales).Error; err != nil {
		return []model.Sale{}, err
	}
	return sales, nil
}
