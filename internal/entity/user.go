package entity

import (
	"time"

	"github.com/uptrace/bun"
)

// User is a customer account.
type User struct {
	bun.BaseModel `bun:"table:users"`

	ID        int64     `bun:",pk,autoincrement" json:"id"`
	Name      string    `bun:"name" json:"name"`
	Email     string    `bun:"email" json:"email"`
	Phone     string    `bun:"phone" json:"phone,omitempty"`
	Address   string    `bun:"address" json:"address,omitempty"`
	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:CURRENT_TIMESTAMP" json:"createdAt"`
}
