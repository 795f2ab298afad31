package model

import "time"

// レビュー。(user, product, order)で一意。
// IsApprovedは管理者だけが変更する。本文を直すと承認は取り消し。
type Review struct {
	ID                 int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID             int64     `gorm:"not null;uniqueIndex:idx_review_user_product_order" json:"user_id"`
	ProductID          int64     `gorm:"not null;uniqueIndex:idx_review_user_product_order;index" json:"product_id"`
	OrderID            *int64    `gorm:"uniqueIndex:idx_review_user_product_order" json:"order_id"`
	Rating             int       `gorm:"not null" json:"rating"`
	Title              string    `gorm:"type:varchar(255)" json:"title"`
	Comment            string    `gorm:"type:text;not null" json:"comment"`
	IsVerifiedPurchase bool      `gorm:"not null;default:false" json:"is_verified_purchase"`
	IsApproved         bool      `gorm:"not null;default:false" json:"is_approved"`
	HelpfulCount       int64     `gorm:"not null;default:0" json:"helpful_count"`
	CreatedAt          time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt          time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
