package model

import "time"

type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// 認証・セッション発行は外部の責務。ここではFKとrole判定に使うだけ。
type User struct {
	ID        int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	Name      string `gorm:"type:varchar(255);not null" json:"name"`
	Email     string `gorm:"uniqueIndex;not null" json:"email"`
	Role      Role   `gorm:"type:varchar(20);not null;default:'USER'" json:"role"`
	IsActive  bool   `gorm:"not null;default:true" json:"is_active"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
