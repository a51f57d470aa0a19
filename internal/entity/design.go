package entity

import (
	"time"

	"github.com/uptrace/bun"
)

// Design is a catalog listing published by a tailor. Price is in kobo.
type Design struct {
	bun.BaseModel `bun:"table:designs"`

	ID          int64     `bun:",pk,autoincrement" json:"id"`
	TailorID    int64     `bun:"tailor_id" json:"tailorId"`
	Name        string    `bun:"name" json:"name"`
	Description string    `bun:"description" json:"description"`
	Category    string    `bun:"category" json:"category"`
	Price       int64     `bun:"price" json:"price"`
	Images      []string  `bun:"images,array" json:"images,omitempty"`
	Tags        []string  `bun:"tags,array" json:"tags,omitempty"`
	IsActive    bool      `bun:"is_active" json:"isActive"`
	IsTrending  bool      `bun:"is_trending" json:"isTrending"`
	CreatedAt   time.Time `bun:"created_at,nullzero,notnull,default:CURRENT_TIMESTAMP" json:"createdAt"`

	Tailor *Tailor `bun:"rel:belongs-to,join:tailor_id=id" json:"tailor,omitempty"`
}
