package domain

import (
	"time"
)

// Interaction types. The engine treats unknown types as "view" weight.
const (
	InteractionView     = "view"
	InteractionLike     = "like"
	InteractionCart     = "cart"
	InteractionPurchase = "purchase"
)

// CREATE TABLE public.interactions (
//     id          BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
//     user_id     BIGINT NOT NULL,
//     product_id  BIGINT NOT NULL,
//     type        TEXT NOT NULL,
//     rating      INTEGER,
//     created_at  TIMESTAMPTZ DEFAULT NOW()
// );
// CREATE INDEX ON public.interactions (user_id, created_at DESC);
// CREATE INDEX ON public.interactions (product_id);

// Interaction is an append-only record of a user touching a product.
// Rows are only ever created (by product/cart operations), never updated.
type Interaction struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    uint      `gorm:"column:user_id;index:idx_interactions_user_created" json:"user_id"`
	ProductID uint64    `gorm:"column:product_id;index" json:"product_id"`
	Type      string    `gorm:"column:type;type:text" json:"type"`
	Rating    *int      `gorm:"column:rating" json:"rating,omitempty"`
	CreatedAt time.Time `gorm:"column:created_at;index:idx_interactions_user_created" json:"created_at"`
}

func (Interaction) TableName() string {
	return "interactions"
}
