package entity

import (
	"time"

	"github.com/uptrace/bun"
)

// Review is a customer's rating of a completed order.
type Review struct {
	bun.BaseModel `bun:"table:reviews"`

	ID        int64     `bun:",pk,autoincrement" json:"id"`
	UserID    int64     `bun:"user_id" json:"userId"`
	TailorID  int64     `bun:"tailor_id" json:"tailorId"`
	OrderID   int64     `bun:"order_id" json:"orderId"`
	Rating    int       `bun:"rating" json:"rating"`
	Comment   string    `bun:"comment" json:"comment,omitempty"`
	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:CURRENT_TIMESTAMP" json:"createdAt"`
}
