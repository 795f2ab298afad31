package model

import "time"

// 注文明細。商品名/SKU/単価は注文時点のスナップショット。
// Total = Price × Quantity
type OrderItem struct {
	ID          int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID     int64     `gorm:"not null;index" json:"order_id"`
	ProductID   int64     `gorm:"not null;index" json:"product_id"`
	ProductName string    `gorm:"type:varchar(255);not null" json:"product_name"`
	ProductSKU  string    `gorm:"type:varchar(64);not null" json:"product_sku"`
	Price       int64     `gorm:"not null" json:"price"`
	Quantity    int64     `gorm:"not null" json:"quantity"`
	Total       int64     `gorm:"not null" json:"total"`
	CreatedAt   time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
}
