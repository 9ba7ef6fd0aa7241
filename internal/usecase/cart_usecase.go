package usecase

import (
	"context"
	"errors"

	"kasir/internal/domain/model"
	"kasir/internal/pricing"
	repo "kasir/internal/repository"

	"github.com/shopspring/decimal"
)

// CartUsecase はレジ1台分のカート操作。
// 商品はカタログから引いてスナップショットとしてカートに入れる。
type CartUsecase struct {
	productRepo repo.ProductRepository
	cart        *model.Cart
}

func NewCartUsecase(productRepo repo.ProductRepository, cart *model.Cart) *CartUsecase {
	return &CartUsecase{
		productRepo: productRepo,
		cart:        cart,
	}
}

// Cart は会計に渡すためのカート本体
func (u *CartUsecase) Cart() *model.Cart {
	return u.cart
}

type CartLineView struct {
	ProductID int64  `json:"product_id"`
	SKU       string `json:"sku"`
	Name      string `json:"name"`
	Price     int64  `json:"price"`
	Quantity  int64  `json:"quantity"`
	Subtotal  int64  `json:"subtotal"`
	// 今の在庫より多い（会計で弾かれる見込み）
	StockWarning bool `json:"stock_warning"`
	// カタログから消えている
	Missing bool `json:"missing"`
}

type CartView struct {
	Lines      []CartLineView `json:"lines"`
	Subtotal   int64          `json:"subtotal"`
	TaxPercent string         `json:"tax_percent"`
	Tax        int64          `json:"tax"`
	Total      int64          `json:"total"`
}

// Add はカートに追加（同一商品は数量加算）。在庫は見ない。
func (u *CartUsecase) Add(ctx context.Context, productID int64, qty int64, tax decimal.Decimal) (CartView, error) {
	if productID <= 0 {
		return CartView{}, NewAppError(KindValidation, "invalid product_id")
	}
	if qty < 1 {
		return CartView{}, NewAppError(KindValidation, "invalid quantity")
	}

	p, err := u.productRepo.FindByID(ctx, productID)
	if errors.Is(err, repo.ErrNotFound) {
		return CartView{}, NewAppError(KindNotFound, "product not found")
	}
	if err != nil {
		return CartView{}, persistenceError(err)
	}

	if err := u.cart.Add(p, qty); err != nil {
		return CartView{}, wrapAppError(KindValidation, err.Error(), err)
	}
	return u.View(ctx, tax)
}

// UpdateQuantity は数量変更。0以下なら明細を消す。
func (u *CartUsecase) UpdateQuantity(ctx context.Context, productID int64, qty int64, tax decimal.Decimal) (CartView, error) {
	if err := u.cart.UpdateQuantity(productID, qty); err != nil {
		if errors.Is(err, model.ErrLineNotFound) {
			return CartView{}, wrapAppError(KindNotFound, "cart line not found", err)
		}
		return CartView{}, wrapAppError(KindValidation, err.Error(), err)
	}
	return u.View(ctx, tax)
}

// Remove は明細削除。無くてもエラーにしない。
func (u *CartUsecase) Remove(ctx context.Context, productID int64, tax decimal.Decimal) (CartView, error) {
	u.cart.Remove(productID)
	return u.View(ctx, tax)
}

func (u *CartUsecase) Clear(ctx context.Context, tax decimal.Decimal) (CartView, error) {
	u.cart.Clear()
	return u.View(ctx, tax)
}

// View は明細と小計・税・合計をまとめる。
func (u *CartUsecase) View(ctx context.Context, tax decimal.Decimal) (CartView, error) {
	lines := u.cart.Lines()

	out := CartView{
		Lines:      make([]CartLineView, 0, len(lines)),
		Subtotal:   u.cart.Subtotal(),
		TaxPercent: tax.String(),
	}

	for _, l := range lines {
		v := CartLineView{
			ProductID: l.ProductID,
			SKU:       l.SKU,
			Name:      l.Name,
			Price:     l.UnitPrice,
			Quantity:  l.Quantity,
			Subtotal:  l.Subtotal(),
		}

		//今の在庫を見て警告だけ出す
		p, err := u.productRepo.FindByID(ctx, l.ProductID)
		switch {
		case errors.Is(err, repo.ErrNotFound):
			v.Missing = true
		case err != nil:
			return CartView{}, persistenceError(err)
		default:
			v.StockWarning = l.Quantity > p.Stock
		}

		out.Lines = append(out.Lines, v)
	}

	total, err := pricing.CheckedTotal(out.Subtotal, tax)
	if err != nil {
		return CartView{}, wrapAppError(KindValidation, "cart total too large", err)
	}
	out.Total = total
	out.Tax = total - out.Subtotal
	return out, nil
}
