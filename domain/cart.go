package domain

import (
	"time"
)

type Cart struct {
	ID        uint64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    uint       `gorm:"column:user_id;uniqueIndex" json:"user_id"`
	Items     []CartItem `gorm:"foreignKey:CartID" json:"items"`
	CreatedAt time.Time  `gorm:"column:created_at" json:"created_at"`
	UpdatedAt time.Time  `gorm:"column:updated_at" json:"updated_at"`
}

func (Cart) TableName() string {
	return "carts"
}

type CartItem struct {
	ID        uint64  `gorm:"primaryKey;autoIncrement" json:"id"`
	CartID    uint64  `gorm:"column:cart_id;index" json:"cart_id"`
	ProductID uint64  `gorm:"column:product_id" json:"product_id"`
	Quantity  int     `gorm:"column:quantity;default:1" json:"quantity"`
	Product   Product `gorm:"foreignKey:ProductID" json:"product"`
}

func (CartItem) TableName() string {
	return "cart_items"
}
