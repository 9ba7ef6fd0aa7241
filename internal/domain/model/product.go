package model

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// 商品マスタ。SKUは業務キーでユニーク。
type Product struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	SKU       string    `gorm:"type:varchar(64);not null;uniqueIndex" json:"sku"`
	Name      string    `gorm:"type:varchar(255);not null;index" json:"name"`
	Price     int64     `gorm:"not null" json:"price"`
	Stock     int64     `gorm:"not null" json:"stock"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

var (
	ErrSKURequired   = errors.New("sku required")
	ErrNameRequired  = errors.New("name required")
	ErrInvalidPrice  = errors.New("price must be a non-negative number")
	ErrInvalidStock  = errors.New("stock must be a non-negative number")
	ErrInvalidNumber = errors.New("invalid number")
)

// Validate は永続化前の不変条件チェック
func (p Product) Validate() error {
	if strings.TrimSpace(p.SKU) == "" {
		return ErrSKURequired
	}
	if strings.TrimSpace(p.Name) == "" {
		return ErrNameRequired
	}
	if p.Price < 0 {
		return ErrInvalidPrice
	}
	if p.Stock < 0 {
		return ErrInvalidStock
	}
	return nil
}

// ProductFromFields はフォームやCSVの1行（列名→値）から商品を組み立てる。
// 必須項目の欠落や数値でない価格・在庫はエラー。
func ProductFromFields(fields map[string]string) (Product, error) {
	get := func(key string) string {
		return strings.TrimSpace(fields[key])
	}

	price, err := parseNonNegative(get("price"))
	if err != nil {
		return Product{}, fmt.Errorf("%w: %q", ErrInvalidPrice, get("price"))
	}
	stock, err := parseNonNegative(get("stock"))
	if err != nil {
		return Product{}, fmt.Errorf("%w: %q", ErrInvalidStock, get("stock"))
	}

	p := Product{
		SKU:   get("sku"),
		Name:  get("name"),
		Price: price,
		Stock: stock,
	}
	if err := p.Validate(); err != nil {
		return Product{}, err
	}
	return p, nil
}

func parseNonNegative(s string) (int64, error) {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, ErrInvalidNumber
	}
	if n < 0 {
		return 0, ErrInvalidNumber
	}
	return n, nil
}
