package domain

import (
	"time"
)

// CREATE TABLE public.products (
//     id          BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
//     name        TEXT NOT NULL,
//     description TEXT,
//     category    TEXT NOT NULL,
//     price       NUMERIC NOT NULL CHECK (price >= 0),
//     image_url   TEXT,
//     stock       INTEGER DEFAULT 0 CHECK (stock >= 0),
//     rating      NUMERIC DEFAULT 0 CHECK (rating >= 0 AND rating <= 5),
//     created_at  TIMESTAMPTZ DEFAULT NOW()
// );

type Product struct {
	ID          uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string    `gorm:"column:name;type:text" json:"name"`
	Description string    `gorm:"column:description;type:text" json:"description"`
	Category    string    `gorm:"column:category;type:text;index" json:"category"`
	Price       float64   `gorm:"column:price;type:numeric" json:"price"`
	ImageURL    string    `gorm:"column:image_url;type:text" json:"image_url"`
	Stock       int       `gorm:"column:stock;default:0" json:"stock"`
	Rating      float64   `gorm:"column:rating;type:numeric;default:0" json:"rating"`
	CreatedAt   time.Time `gorm:"column:created_at" json:"created_at"`
}

func (Product) TableName() string {
	return "products"
}
