package entity

import "fmt"

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

// Canonical lifecycle, in production order. Cancellation is reachable from
// any non-terminal state; completed and cancelled are terminal.
const (
	StatusPending              OrderStatus = "pending"
	StatusMeasurementsVerified OrderStatus = "measurements_verified"
	StatusInProgress           OrderStatus = "in_progress"
	StatusQualityCheck         OrderStatus = "quality_check"
	StatusShipped              OrderStatus = "shipped"
	StatusCompleted            OrderStatus = "completed"
	StatusCancelled            OrderStatus = "cancelled"
)

var statusSequence = []OrderStatus{
	StatusPending,
	StatusMeasurementsVerified,
	StatusInProgress,
	StatusQualityCheck,
	StatusShipped,
	StatusCompleted,
}

// Legacy vocabulary from the customer-facing tracking flow.
var statusAliases = map[string]OrderStatus{
	"confirmed": StatusMeasurementsVerified,
	"delivered": StatusCompleted,
}

// OrderStatuses returns the canonical progression, excluding cancelled.
func OrderStatuses() []OrderStatus {
	out := make([]OrderStatus, len(statusSequence))
	copy(out, statusSequence)
	return out
}

// ParseOrderStatus resolves raw input, accepting legacy aliases.
func ParseOrderStatus(raw string) (OrderStatus, error) {
	if alias, ok := statusAliases[raw]; ok {
		return alias, nil
	}
	s := OrderStatus(raw)
	if s == StatusCancelled {
		return s, nil
	}
	for _, known := range statusSequence {
		if s == known {
			return s, nil
		}
	}
	return "", fmt.Errorf("unknown order status: %q", raw)
}

// Terminal reports whether no further transitions are allowed.
func (s OrderStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// CanTransitionTo reports whether next is the immediate successor of s, or a
// cancellation of a non-terminal order. Skipping phases or moving backward is
// not allowed.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	if s.Terminal() {
		return false
	}
	if next == StatusCancelled {
		return true
	}
	for i, cur := range statusSequence {
		if cur == s {
			return i+1 < len(statusSequence) && statusSequence[i+1] == next
		}
	}
	return false
}
