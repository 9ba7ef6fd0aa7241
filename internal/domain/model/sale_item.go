package model

import "time"

// 会計明細
// 商品が後で変更・削除されても、会計時点の値をそのまま残す。
type SaleItem struct {
	ID                  int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	SaleID              int64     `gorm:"not null;index" json:"sale_id"`
	ProductID           int64     `gorm:"not null;index" json:"product_id"`
	ProductSKUSnapshot  string    `gorm:"type:varchar(64);not null" json:"sku"`
	ProductNameSnapshot string    `gorm:"type:varchar(255);not null" json:"name"`
	UnitPriceSnapshot   int64     `gorm:"not null" json:"unit_price"`
	Quantity            int64     `gorm:"not null" json:"quantity"`
	Subtotal            int64     `gorm:"not null" json:"subtotal"`
	CreatedAt           time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
}
