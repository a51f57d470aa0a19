package entity

import (
	"time"

	"github.com/uptrace/bun"
)

// Measurement is a customer's current body measurement record. Orders copy
// these values into their own snapshot at creation time, so later edits here
// never affect placed orders.
type Measurement struct {
	bun.BaseModel `bun:"table:measurements"`

	ID            int64     `bun:",pk,autoincrement" json:"id"`
	UserID        int64     `bun:"user_id" json:"userId"`
	Chest         float64   `bun:"chest" json:"chest,omitempty"`
	Waist         float64   `bun:"waist" json:"waist,omitempty"`
	Hip           float64   `bun:"hip" json:"hip,omitempty"`
	ShoulderWidth float64   `bun:"shoulder_width" json:"shoulderWidth,omitempty"`
	ArmLength     float64   `bun:"arm_length" json:"armLength,omitempty"`
	Height        float64   `bun:"height" json:"height,omitempty"`
	Weight        float64   `bun:"weight" json:"weight,omitempty"`
	Units         string    `bun:"units" json:"units"`
	CreatedAt     time.Time `bun:"created_at,nullzero,notnull,default:CURRENT_TIMESTAMP" json:"createdAt"`
}
