package usecase

import (
	"context"
	"errors"
	"time"

	"kasir/internal/domain/model"
	"kasir/internal/receipt"
	repo "kasir/internal/repository"
)

// 会計履歴の参照（更新・削除はしない）
type SaleUsecase struct {
	tx repo.TransactionManager
}

func NewSaleUsecase(tx repo.TransactionManager) *SaleUsecase {
	return &SaleUsecase{tx: tx}
}

type SaleDetail struct {
	Sale  model.Sale       `json:"sale"`
	Items []model.SaleItem `json:"items"`
}

func (u *SaleUsecase) List(ctx context.Context, from, to *time.Time) ([]model.Sale, error) {
	if from != nil && to != nil && from.After(*to) {
		return nil, NewAppError(KindValidation, "from must be <= to")
	}

	var out []model.Sale
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		sales, err := r.Sales().List(ctx, repo.SaleListFilter{From: from, To: to})
		if err != nil {
			return persistenceError(err)
		}
		out = sales
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (u *SaleUsecase) Get(ctx context.Context, saleID int64) (SaleDetail, error) {
	if saleID <= 0 {
		return SaleDetail{}, NewAppError(KindValidation, "invalid id")
	}

	var out SaleDetail
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		s, err := r.Sales().FindByID(ctx, saleID)
		if errors.Is(err, repo.ErrNotFound) {
			return NewAppError(KindNotFound, "sale not found")
		}
		if err != nil {
			return persistenceError(err)
		}

		items, err := r.SaleItems().ListBySaleID(ctx, saleID)
		if err != nil {
			return persistenceError(err)
		}

		out = SaleDetail{Sale: s, Items: items}
		return nil
	})
	if err != nil {
		return SaleDetail{}, err
	}
	return out, nil
}

// Receipt は保存済みの会計からレシートを作り直す。
func (u *SaleUsecase) Receipt(ctx context.Context, saleID int64) (string, error) {
	d, err := u.Get(ctx, saleID)
	if err != nil {
		return "", err
	}
	return receipt.Format(d.Sale.SoldAt.In(time.Local), d.Sale.Total, receiptLines(d.Items)), nil
}
