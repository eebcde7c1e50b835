package domain

import (
	"time"
)

type User struct {
	ID         uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	FullName   string    `gorm:"column:full_name;type:text" json:"full_name"`
	Email      string    `gorm:"column:email;type:text;uniqueIndex" json:"email"`
	Password   string    `gorm:"column:password;type:text" json:"-"`
	IsVerified bool      `gorm:"column:is_verified;default:false" json:"is_verified"`
	Role       string    `gorm:"column:role;type:text;default:customer" json:"role"`
	CreatedAt  time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt  time.Time `gorm:"column:updated_at" json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}
