package model

import "time"

// 会計1回分。作成後は変更しない。
type Sale struct {
	ID         int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	ReceiptNo  string    `gorm:"type:varchar(64);not null;uniqueIndex" json:"receipt_no"`
	SoldAt     time.Time `gorm:"not null;index" json:"sold_at"`
	Subtotal   int64     `gorm:"not null" json:"subtotal"`
	TaxPercent string    `gorm:"type:varchar(32);not null" json:"tax_percent"`
	Total      int64     `gorm:"not null" json:"total"`
	CreatedAt  time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
}
