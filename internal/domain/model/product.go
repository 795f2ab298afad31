package model

import (
	"time"

	"gorm.io/gorm"
)

// 金額はすべて最小通貨単位（セント）のint64で持つ。
// StockQuantity/OrderCountはInventoryRepositoryだけが更新する。
// AverageRating/ReviewCountはレビュー集計だけが更新する。
type Product struct {
	ID            int64          `gorm:"primaryKey;autoIncrement" json:"id"`
	Name          string         `gorm:"type:varchar(255);not null" json:"name"`
	Slug          string         `gorm:"type:varchar(255);not null;index" json:"slug"`
	SKU           string         `gorm:"type:varchar(64);not null;uniqueIndex" json:"sku"`
	Description   string         `gorm:"type:text" json:"description"`
	Price         int64          `gorm:"not null" json:"price"`
	StockQuantity int64          `gorm:"not null;default:0" json:"stock_quantity"`
	OrderCount    int64          `gorm:"not null;default:0" json:"order_count"`
	AverageRating float64        `gorm:"not null;default:0" json:"average_rating"`
	ReviewCount   int64          `gorm:"not null;default:0" json:"review_count"`
	IsActive      bool           `gorm:"not null;default:false" json:"is_active"`
	CreatedAt     time.Time      `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time      `gorm:"not null;autoUpdateTime" json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}
