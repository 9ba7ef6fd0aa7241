package model

import (
	"errors"
	"math"
	"math/bits"
)

var (
	// 数量は1以上
	ErrInvalidQuantity = errors.New("quantity must be positive")
	// 数量・金額が int64 に収まらない
	ErrAmountTooLarge = errors.New("quantity or amount too large")
	// カートにその商品の明細が無い
	ErrLineNotFound = errors.New("cart line not found")
)

// カートの明細
// 追加時点の価格・名前をスナップショットとして持つ。
type CartLine struct {
	ProductID int64  `json:"product_id"`
	SKU       string `json:"sku"`
	Name      string `json:"name"`
	UnitPrice int64  `json:"unit_price"`
	Quantity  int64  `json:"quantity"`
}

func (l CartLine) Subtotal() int64 {
	return l.Quantity * l.UnitPrice
}

// Cart は1セッション分のメモリ上のカート。永続化しない。
// どの操作の後も数量0以下の明細は残らず、同じ商品の明細は1つだけ。
// 明細の小計とカートの小計は常に int64 に収まる。
type Cart struct {
	lines []CartLine
}

func NewCart() *Cart {
	return &Cart{}
}

// Add は同一商品なら数量を加算、無ければ末尾に追加する。
// 在庫チェックはしない（会計時に確定チェック）。
func (c *Cart) Add(p Product, qty int64) error {
	if qty <= 0 {
		return ErrInvalidQuantity
	}

	if i := c.indexOf(p.ID); i >= 0 {
		cur := c.lines[i].Quantity
		if qty > math.MaxInt64-cur {
			return ErrAmountTooLarge
		}
		return c.setQuantity(i, cur+qty)
	}

	line := CartLine{
		ProductID: p.ID,
		SKU:       p.SKU,
		Name:      p.Name,
		UnitPrice: p.Price,
		Quantity:  qty,
	}
	if !c.fits(-1, line) {
		return ErrAmountTooLarge
	}
	c.lines = append(c.lines, line)
	return nil
}

// UpdateQuantity は数量を置き換える。0以下なら明細ごと削除。
func (c *Cart) UpdateQuantity(productID int64, qty int64) error {
	i := c.indexOf(productID)
	if i < 0 {
		return ErrLineNotFound
	}

	if qty <= 0 {
		c.removeAt(i)
		return nil
	}
	return c.setQuantity(i, qty)
}

// Remove は無くてもエラーにしない。
func (c *Cart) Remove(productID int64) {
	if i := c.indexOf(productID); i >= 0 {
		c.removeAt(i)
	}
}

func (c *Cart) Clear() {
	c.lines = nil
}

// Lines は明細のコピーを返す。
func (c *Cart) Lines() []CartLine {
	out := make([]CartLine, len(c.lines))
	copy(out, c.lines)
	return out
}

func (c *Cart) Line(productID int64) (CartLine, bool) {
	if i := c.indexOf(productID); i >= 0 {
		return c.lines[i], true
	}
	return CartLine{}, false
}

func (c *Cart) Subtotal() int64 {
	var sum int64
	for _, l := range c.lines {
		sum += l.Subtotal()
	}
	return sum
}

func (c *Cart) Len() int {
	return len(c.lines)
}

func (c *Cart) IsEmpty() bool {
	return len(c.lines) == 0
}

// 金額が溢れるなら何も変えない
func (c *Cart) setQuantity(i int, qty int64) error {
	line := c.lines[i]
	line.Quantity = qty
	if !c.fits(i, line) {
		return ErrAmountTooLarge
	}
	c.lines[i] = line
	return nil
}

// fits は skip 番目の明細を line に置き換えても小計が int64 に収まるか
func (c *Cart) fits(skip int, line CartLine) bool {
	amount, ok := lineAmount(line.Quantity, line.UnitPrice)
	if !ok {
		return false
	}

	for i, l := range c.lines {
		if i == skip {
			continue
		}
		// 既存の明細はどれも収まっている
		sub := l.Subtotal()
		if amount > math.MaxInt64-sub {
			return false
		}
		amount += sub
	}
	return true
}

// qty, price は0以上
func lineAmount(qty, price int64) (int64, bool) {
	if qty < 0 || price < 0 {
		return 0, false
	}
	hi, lo := bits.Mul64(uint64(qty), uint64(price))
	if hi != 0 || lo > math.MaxInt64 {
		return 0, false
	}
	return int64(lo), true
}

func (c *Cart) indexOf(productID int64) int {
	for i, l := range c.lines {
		if l.ProductID == productID {
			return i
		}
	}
	return -1
}

func (c *Cart) removeAt(i int) {
	c.lines = append(c.lines[:i], c.lines[i+1:]...)
}
