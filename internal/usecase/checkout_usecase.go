package usecase

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"kasir/internal/domain/model"
	"kasir/internal/logger"
	"kasir/internal/pricing"
	"kasir/internal/receipt"
	repo "kasir/internal/repository"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// UUID 等のIDを作る約束
type IDGenerator interface {
	NewID() string
}

// 現在の時間
type Clock interface {
	Now() time.Time
}

// レシートの保存先
type ReceiptSink interface {
	Write(soldAt time.Time, text string) (string, error)
	Discard(path string) error
}

type CheckoutUsecase struct {
	tx       repo.TransactionManager
	receipts ReceiptSink
	idGen    IDGenerator
	clock    Clock
	logger   *zap.Logger
}

// DI
func NewCheckoutUsecase(
	tx repo.TransactionManager,
	receipts ReceiptSink,
	idGen IDGenerator,
	clock Clock,
	log *zap.Logger,
) *CheckoutUsecase {
	return &CheckoutUsecase{
		tx:       tx,
		receipts: receipts,
		idGen:    idGen,
		clock:    clock,
		logger:   logger.OrNop(log),
	}
}

type CheckoutOutput struct {
	Sale        model.Sale       `json:"sale"`
	Items       []model.SaleItem `json:"items"`
	ReceiptText string           `json:"receipt_text"`
	ReceiptPath string           `json:"receipt_path"`
}

// Checkout はカートを確定する。
// 在庫の再チェック・会計の保存・在庫減算・レシート保存を1トランザクションで行い、
// 成功したときだけカートを空にする。失敗時はDBもカートも元のまま。
func (u *CheckoutUsecase) Checkout(ctx context.Context, cart *model.Cart, tax decimal.Decimal) (CheckoutOutput, error) {
	if cart.IsEmpty() {
		return CheckoutOutput{}, NewAppError(KindEmptyCart, "cart is empty")
	}

	lines := cart.Lines()
	if err := validateLines(lines); err != nil {
		return CheckoutOutput{}, err
	}
	soldAt := u.clock.Now().Truncate(time.Second)
	subtotal := cart.Subtotal()
	total, err := pricing.CheckedTotal(subtotal, tax)
	if err != nil {
		return CheckoutOutput{}, wrapAppError(KindValidation, "cart total too large", err)
	}

	var (
		out         CheckoutOutput
		receiptPath string
	)

	err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		//書き込み前に全明細の在庫を確認（1つでも足りなければ何もしない）
		for _, l := range lines {
			p, err := r.Products().FindByID(ctx, l.ProductID)
			if errors.Is(err, repo.ErrNotFound) {
				return NewAppError(KindNotFound, "product not found: "+l.SKU)
			}
			if err != nil {
				return persistenceError(err)
			}
			if l.Quantity > p.Stock {
				return insufficientStockError(&StockShortage{
					ProductID: p.ID,
					SKU:       p.SKU,
					Name:      p.Name,
					Requested: l.Quantity,
					Available: p.Stock,
				})
			}
		}

		// 会計作成
		sale, err := r.Sales().Create(ctx, model.Sale{
			ReceiptNo:  u.idGen.NewID(),
			SoldAt:     soldAt,
			Subtotal:   subtotal,
			TaxPercent: tax.String(),
			Total:      total,
		})
		if err != nil {
			return persistenceError(err)
		}

		//スナップショット（追加時点の価格）
		items := make([]model.SaleItem, 0, len(lines))
		for _, l := range lines {
			items = append(items, model.SaleItem{
				ProductID:           l.ProductID,
				ProductSKUSnapshot:  l.SKU,
				ProductNameSnapshot: l.Name,
				UnitPriceSnapshot:   l.UnitPrice,
				Quantity:            l.Quantity,
				Subtotal:            l.Subtotal(),
			})
		}
		if err := r.SaleItems().CreateBulk(ctx, sale.ID, items); err != nil {
			return persistenceError(err)
		}

		//在庫減算（条件付きなので負にはならない）
		for _, l := range lines {
			ok, err := r.Inventory().DecreaseStockIfEnough(ctx, l.ProductID, l.Quantity)
			if err != nil {
				return persistenceError(err)
			}
			if !ok {
				shortage := &StockShortage{ProductID: l.ProductID, SKU: l.SKU, Name: l.Name, Requested: l.Quantity}
				if p, err := r.Products().FindByID(ctx, l.ProductID); err == nil {
					shortage.Available = p.Stock
				}
				return insufficientStockError(shortage)
			}
		}

		text := receipt.Format(soldAt, total, receiptLines(items))
		path, err := u.receipts.Write(soldAt, text)
		if err != nil {
			return wrapAppError(KindPersistence, "write receipt", err)
		}
		receiptPath = path

		out = CheckoutOutput{
			Sale:        sale,
			Items:       items,
			ReceiptText: text,
			ReceiptPath: path,
		}
		return nil
	})

	if err != nil {
		if receiptPath != "" {
			if derr := u.receipts.Discard(receiptPath); derr != nil {
				u.logger.Error("discard receipt failed", zap.String("path", receiptPath), zap.Error(derr))
			}
		}
		//コミット失敗など
		if _, ok := AsAppError(err); !ok {
			err = persistenceError(fmt.Errorf("commit: %w", err))
		}

		u.logger.Warn("checkout rejected",
			zap.Int("lines", len(lines)),
			zap.Int64("subtotal", subtotal),
			zap.Error(err))
		return CheckoutOutput{}, err
	}

	cart.Clear()

	u.logger.Info("checkout committed",
		zap.Int64("sale_id", out.Sale.ID),
		zap.String("receipt_no", out.Sale.ReceiptNo),
		zap.Int64("total", out.Sale.Total),
		zap.String("receipt_path", out.ReceiptPath))
	return out, nil
}

// 書き込み前に数量と金額を確かめる（負の数量で在庫が増えないように）
func validateLines(lines []model.CartLine) error {
	var sum int64
	for _, l := range lines {
		if l.Quantity <= 0 {
			return NewAppError(KindValidation, "invalid quantity: "+l.SKU)
		}
		if l.UnitPrice < 0 || l.Quantity > math.MaxInt64/max(l.UnitPrice, 1) {
			return NewAppError(KindValidation, "amount too large: "+l.SKU)
		}
		sub := l.Subtotal()
		if sub > math.MaxInt64-sum {
			return NewAppError(KindValidation, "cart total too large")
		}
		sum += sub
	}
	return nil
}

func receiptLines(items []model.SaleItem) []receipt.Line {
	out := make([]receipt.Line, 0, len(items))
	for _, it := range items {
		out = append(out, receipt.Line{
			Name:     it.ProductNameSnapshot,
			Quantity: it.Quantity,
			Subtotal: it.Subtotal,
		})
	}
	return out
}
