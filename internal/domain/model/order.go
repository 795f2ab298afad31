package model

import "time"

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
	OrderStatusRefunded   OrderStatus = "refunded"
)

type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusFailed   PaymentStatus = "failed"
	PaymentStatusRefunded PaymentStatus = "refunded"
)

type PaymentMethod string

const (
	PaymentMethodStripe PaymentMethod = "stripe"
	PaymentMethodPaypal PaymentMethod = "paypal"
	PaymentMethodCOD    PaymentMethod = "cod"
)

// 注文時点の宛先スナップショット。
// ユーザーが後で住所を変えても注文側は変わらない。
type OrderAddress struct {
	Name       string `gorm:"type:varchar(255);not null" json:"name"`
	Email      string `gorm:"type:varchar(255);not null" json:"email"`
	Phone      string `gorm:"type:varchar(30)" json:"phone"`
	Address    string `gorm:"type:varchar(255);not null" json:"address"`
	City       string `gorm:"type:varchar(100);not null" json:"city"`
	State      string `gorm:"type:varchar(100)" json:"state"`
	Country    string `gorm:"type:varchar(100);not null" json:"country"`
	PostalCode string `gorm:"type:varchar(20);not null" json:"postal_code"`
}

// 注文。作成後に変わるのはステータス系と配送時刻だけ。
// Total = Subtotal + Tax + ShippingCost - Discount
type Order struct {
	ID            int64         `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderNumber   string        `gorm:"type:varchar(40);not null;uniqueIndex" json:"order_number"`
	UserID        int64         `gorm:"not null;index" json:"user_id"`
	Status        OrderStatus   `gorm:"type:varchar(20);not null;index" json:"status"`
	PaymentMethod PaymentMethod `gorm:"type:varchar(20);not null" json:"payment_method"`
	PaymentStatus PaymentStatus `gorm:"type:varchar(20);not null;index" json:"payment_status"`
	Subtotal      int64         `gorm:"not null" json:"subtotal"`
	Tax           int64         `gorm:"not null" json:"tax"`
	ShippingCost  int64         `gorm:"not null" json:"shipping_cost"`
	Discount      int64         `gorm:"not null;default:0" json:"discount"`
	Total         int64         `gorm:"not null" json:"total"`
	TransactionID string        `gorm:"type:varchar(255)" json:"transaction_id"`
	Notes         string        `gorm:"type:text" json:"notes"`
	Shipping      OrderAddress  `gorm:"embedded;embeddedPrefix:shipping_" json:"shipping"`
	Billing       OrderAddress  `gorm:"embedded;embeddedPrefix:billing_" json:"billing"`
	ShippedAt     *time.Time    `json:"shipped_at"`
	DeliveredAt   *time.Time    `json:"delivered_at"`
	CreatedAt     time.Time     `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time     `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

// キャンセル可能か（pending/processingのみ）
func (o Order) IsCancellable() bool {
	return o.Status == OrderStatusPending || o.Status == OrderStatusProcessing
}
