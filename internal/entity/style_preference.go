package entity

import (
	"time"

	"github.com/uptrace/bun"
)

// StylePreference captures a customer's style quiz answers.
type StylePreference struct {
	bun.BaseModel `bun:"table:style_preferences"`

	ID               int64     `bun:",pk,autoincrement" json:"id"`
	UserID           int64     `bun:"user_id" json:"userId"`
	Occasions        []string  `bun:"occasions,array" json:"occasions,omitempty"`
	PreferredColors  []string  `bun:"preferred_colors,array" json:"preferredColors,omitempty"`
	BodyType         string    `bun:"body_type" json:"bodyType,omitempty"`
	StylePersonality string    `bun:"style_personality" json:"stylePersonality,omitempty"`
	BudgetRange      string    `bun:"budget_range" json:"budgetRange,omitempty"`
	CompletedAt      time.Time `bun:"completed_at,nullzero,notnull,default:CURRENT_TIMESTAMP" json:"completedAt"`
}
