package entity

import (
	"time"

	"github.com/uptrace/bun"
)

// Tailor is a producer profile. Rating and revenue columns are rollups
// recomputed by the settlement worker, not maintained inline on the request
// path. Revenue is in kobo and reflects tailor earnings net of commission.
type Tailor struct {
	bun.BaseModel `bun:"table:tailors"`

	ID           int64     `bun:",pk,autoincrement" json:"id"`
	Name         string    `bun:"name" json:"name"`
	Email        string    `bun:"email" json:"email"`
	Phone        string    `bun:"phone" json:"phone"`
	Address      string    `bun:"address" json:"address"`
	Description  string    `bun:"description" json:"description,omitempty"`
	ProfileImage string    `bun:"profile_image" json:"profileImage,omitempty"`
	Rating       float64   `bun:"rating" json:"rating"`
	TotalReviews int64     `bun:"total_reviews" json:"totalReviews"`
	TotalOrders  int64     `bun:"total_orders" json:"totalOrders"`
	Revenue      int64     `bun:"revenue" json:"revenue"`
	IsVerified   bool      `bun:"is_verified" json:"isVerified"`
	CreatedAt    time.Time `bun:"created_at,nullzero,notnull,default:CURRENT_TIMESTAMP" json:"createdAt"`
}
