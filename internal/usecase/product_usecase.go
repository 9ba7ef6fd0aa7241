package usecase

import (
	"context"
	"errors"
	"strings"

	"kasir/internal/domain/model"
	"kasir/internal/logger"
	repo "kasir/internal/repository"

	"go.uber.org/zap"
)

const maxSearchLength = 100

type ProductUsecase struct {
	productRepo   repo.ProductRepository
	inventoryRepo repo.InventoryRepository
	logger        *zap.Logger
}

// DI
func NewProductUsecase(
	productRepo repo.ProductRepository,
	inventoryRepo repo.InventoryRepository,
	log *zap.Logger,
) *ProductUsecase {
	return &ProductUsecase{
		productRepo:   productRepo,
		inventoryRepo: inventoryRepo,
		logger:        logger.OrNop(log),
	}
}

// 商品登録・編集の入力
type ProductInput struct {
	SKU   string
	Name  string
	Price int64
	Stock int64
}

// ProductInputFromFields はフォームの文字列をそのまま受けて検証する。
func ProductInputFromFields(fields map[string]string) (ProductInput, error) {
	p, err := model.ProductFromFields(fields)
	if err != nil {
		return ProductInput{}, wrapAppError(KindValidation, err.Error(), err)
	}
	return ProductInput{SKU: p.SKU, Name: p.Name, Price: p.Price, Stock: p.Stock}, nil
}

func (in ProductInput) toModel() (model.Product, error) {
	p := model.Product{
		SKU:   strings.TrimSpace(in.SKU),
		Name:  strings.TrimSpace(in.Name),
		Price: in.Price,
		Stock: in.Stock,
	}
	if err := p.Validate(); err != nil {
		return model.Product{}, wrapAppError(KindValidation, err.Error(), err)
	}
	return p, nil
}

// Search はSKUか名前の部分一致。空なら全件。
func (u *ProductUsecase) Search(ctx context.Context, q string) ([]model.Product, error) {
	if len(q) > maxSearchLength {
		return nil, NewAppError(KindValidation, "q too long")
	}

	items, err := u.productRepo.Search(ctx, strings.TrimSpace(q))
	if err != nil {
		return nil, persistenceError(err)
	}
	return items, nil
}

func (u *ProductUsecase) Get(ctx context.Context, productID int64) (model.Product, error) {
	if productID <= 0 {
		return model.Product{}, NewAppError(KindValidation, "invalid product id")
	}

	p, err := u.productRepo.FindByID(ctx, productID)
	if errors.Is(err, repo.ErrNotFound) {
		return model.Product{}, NewAppError(KindNotFound, "product not found")
	}
	if err != nil {
		return model.Product{}, persistenceError(err)
	}
	return p, nil
}

func (u *ProductUsecase) Create(ctx context.Context, in ProductInput) (model.Product, error) {
	p, err := in.toModel()
	if err != nil {
		return model.Product{}, err
	}

	//SKU重複チェック
	if _, err := u.productRepo.FindBySKU(ctx, p.SKU); err == nil {
		return model.Product{}, NewAppError(KindDuplicateKey, "sku already used")
	} else if !errors.Is(err, repo.ErrNotFound) {
		return model.Product{}, persistenceError(err)
	}

	created, err := u.productRepo.Create(ctx, p)
	if errors.Is(err, repo.ErrDuplicateKey) {
		return model.Product{}, NewAppError(KindDuplicateKey, "sku already used")
	}
	if err != nil {
		return model.Product{}, persistenceError(err)
	}

	u.logger.Info("product created",
		zap.Int64("product_id", created.ID),
		zap.String("sku", created.SKU),
		zap.Int64("stock", created.Stock))
	return created, nil
}

func (u *ProductUsecase) Update(ctx context.Context, productID int64, in ProductInput) (model.Product, error) {
	if productID <= 0 {
		return model.Product{}, NewAppError(KindValidation, "invalid product id")
	}
	p, err := in.toModel()
	if err != nil {
		return model.Product{}, err
	}
	p.ID = productID

	//他の商品が同じSKUを使っていないか
	other, err := u.productRepo.FindBySKU(ctx, p.SKU)
	if err == nil && other.ID != productID {
		return model.Product{}, NewAppError(KindDuplicateKey, "sku already used")
	}
	if err != nil && !errors.Is(err, repo.ErrNotFound) {
		return model.Product{}, persistenceError(err)
	}

	err = u.productRepo.Update(ctx, p)
	if errors.Is(err, repo.ErrNotFound) {
		return model.Product{}, NewAppError(KindNotFound, "product not found")
	}
	if errors.Is(err, repo.ErrDuplicateKey) {
		return model.Product{}, NewAppError(KindDuplicateKey, "sku already used")
	}
	if err != nil {
		return model.Product{}, persistenceError(err)
	}

	u.logger.Info("product updated", zap.Int64("product_id", productID), zap.String("sku", p.SKU))
	return u.Get(ctx, productID)
}

// 商品削除。過去の会計明細は消さない。
func (u *ProductUsecase) Delete(ctx context.Context, productID int64) error {
	if productID <= 0 {
		return NewAppError(KindValidation, "invalid product id")
	}

	err := u.productRepo.Delete(ctx, productID)
	if errors.Is(err, repo.ErrNotFound) {
		return NewAppError(KindNotFound, "product not found")
	}
	if err != nil {
		return persistenceError(err)
	}

	u.logger.Info("product deleted", zap.Int64("product_id", productID))
	return nil
}

// AdjustStock は棚卸しなどで在庫の現在値を設定する。
func (u *ProductUsecase) AdjustStock(ctx context.Context, productID int64, newStock int64) (model.Product, error) {
	if productID <= 0 {
		return model.Product{}, NewAppError(KindValidation, "invalid product id")
	}
	if newStock < 0 {
		return model.Product{}, NewAppError(KindValidation, "stock must be >= 0")
	}

	err := u.inventoryRepo.SetStock(ctx, productID, newStock)
	if errors.Is(err, repo.ErrNotFound) {
		return model.Product{}, NewAppError(KindNotFound, "product not found")
	}
	if err != nil {
		return model.Product{}, persistenceError(err)
	}

	u.logger.Info("stock adjusted", zap.Int64("product_id", productID), zap.Int64("stock", newStock))
	return u.Get(ctx, productID)
}

// Restock は入荷分を足す。
func (u *ProductUsecase) Restock(ctx context.Context, productID int64, qty int64) (model.Product, error) {
	if productID <= 0 {
		return model.Product{}, NewAppError(KindValidation, "invalid product id")
	}
	if qty <= 0 {
		return model.Product{}, NewAppError(KindValidation, "quantity must be > 0")
	}

	err := u.inventoryRepo.IncreaseStock(ctx, productID, qty)
	if errors.Is(err, repo.ErrNotFound) {
		return model.Product{}, NewAppError(KindNotFound, "product not found")
	}
	if err != nil {
		return model.Product{}, persistenceError(err)
	}

	u.logger.Info("restocked", zap.Int64("product_id", productID), zap.Int64("quantity", qty))
	return u.Get(ctx, productID)
}
