package entity

import (
	"time"

	"github.com/uptrace/bun"
)

// Order is a customer's request to have a design produced by a tailor. The
// measurement and customization maps are snapshots taken at order time, not
// live references to the customer's current records. Monetary amounts are in
// kobo. Orders are never deleted; the row doubles as an audit trail.
type Order struct {
	bun.BaseModel `bun:"table:orders,alias:o"`

	ID                    int64          `bun:",pk,autoincrement" json:"id"`
	UserID                int64          `bun:"user_id" json:"userId"`
	TailorID              int64          `bun:"tailor_id" json:"tailorId"`
	DesignID              int64          `bun:"design_id" json:"designId"`
	Measurements          map[string]string `bun:"measurements,type:jsonb" json:"measurements"`
	Customizations        map[string]any `bun:"customizations,type:jsonb" json:"customizations,omitempty"`
	DeliveryAddress       string         `bun:"delivery_address" json:"deliveryAddress"`
	Phone                 string         `bun:"phone" json:"phone"`
	PreferredDeliveryDate *time.Time     `bun:"preferred_delivery_date,nullzero" json:"preferredDeliveryDate,omitempty"`
	SpecialInstructions   string         `bun:"special_instructions" json:"specialInstructions,omitempty"`
	DesignPrice           int64          `bun:"design_price" json:"designPrice"`
	CustomizationFee      int64          `bun:"customization_fee" json:"customizationFee"`
	DeliveryFee           int64          `bun:"delivery_fee" json:"deliveryFee"`
	TotalAmount           int64          `bun:"total_amount" json:"totalAmount"`
	Status                OrderStatus    `bun:"status" json:"status"`
	Version               int64          `bun:"version" json:"-"`
	CreatedAt             time.Time      `bun:"created_at,nullzero,notnull,default:CURRENT_TIMESTAMP" json:"createdAt"`
	UpdatedAt             time.Time      `bun:"updated_at,nullzero" json:"updatedAt"`

	User   *User   `bun:"rel:belongs-to,join:user_id=id" json:"user,omitempty"`
	Tailor *Tailor `bun:"rel:belongs-to,join:tailor_id=id" json:"tailor,omitempty"`
	Design *Design `bun:"rel:belongs-to,join:design_id=id" json:"design,omitempty"`
}
