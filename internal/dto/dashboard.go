package dto

import (
	"time"

	"github.com/atelier-hq/atelier/internal/entity"
)

// DashboardStats summarizes a customer's activity for the home view.
type DashboardStats struct {
	TotalOrders           int  `json:"totalOrders"`
	ActiveOrders          int  `json:"activeOrders"`
	CompletedMeasurements bool `json:"completedMeasurements"`
	CompletedStyleQuiz    bool `json:"completedStyleQuiz"`
}

// ActivityItem is a single entry in the customer's recent-activity feed.
type ActivityItem struct {
	ID          int64              `json:"id"`
	Type        string             `json:"type"`
	Title       string             `json:"title"`
	Description string             `json:"description"`
	Timestamp   time.Time          `json:"timestamp"`
	Status      entity.OrderStatus `json:"status"`
}
