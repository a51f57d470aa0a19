package entity

import "testing"

func TestOrderStatus_CanTransitionTo(t *testing.T) {
	cases := []struct {
		name string
		from OrderStatus
		to   OrderStatus
		want bool
	}{
		{name: "pending to measurements_verified", from: StatusPending, to: StatusMeasurementsVerified, want: true},
		{name: "measurements_verified to in_progress", from: StatusMeasurementsVerified, to: StatusInProgress, want: true},
		{name: "in_progress to quality_check", from: StatusInProgress, to: StatusQualityCheck, want: true},
		{name: "quality_check to shipped", from: StatusQualityCheck, to: StatusShipped, want: true},
		{name: "shipped to completed", from: StatusShipped, to: StatusCompleted, want: true},
		{name: "skipping a phase", from: StatusPending, to: StatusInProgress, want: false},
		{name: "skipping to completed", from: StatusPending, to: StatusCompleted, want: false},
		{name: "moving backward", from: StatusInProgress, to: StatusMeasurementsVerified, want: false},
		{name: "cancel from pending", from: StatusPending, to: StatusCancelled, want: true},
		{name: "cancel mid production", from: StatusQualityCheck, to: StatusCancelled, want: true},
		{name: "cancel a completed order", from: StatusCompleted, to: StatusCancelled, want: false},
		{name: "leave completed", from: StatusCompleted, to: StatusShipped, want: false},
		{name: "leave cancelled", from: StatusCancelled, to: StatusPending, want: false},
		{name: "unknown source", from: OrderStatus("mystery"), to: StatusPending, want: false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.from.CanTransitionTo(tc.to); got != tc.want {
				t.Errorf("%s -> %s = %v, want %v", tc.from, tc.to, got, tc.want)
			}
		})
	}
}

func TestOrderStatus_Terminal(t *testing.T) {
	for _, s := range OrderStatuses() {
		if s == StatusCompleted {
			continue
		}
		if s.Terminal() {
			t.Errorf("%s unexpectedly terminal", s)
		}
	}
	if !StatusCompleted.Terminal() {
		t.Error("completed should be terminal")
	}
	if !StatusCancelled.Terminal() {
		t.Error("cancelled should be terminal")
	}
}

func TestParseOrderStatus(t *testing.T) {
	cases := []struct {
		name    string
		raw     string
		want    OrderStatus
		wantErr bool
	}{
		{name: "canonical", raw: "in_progress", want: StatusInProgress},
		{name: "cancelled", raw: "cancelled", want: StatusCancelled},
		{name: "alias confirmed", raw: "confirmed", want: StatusMeasurementsVerified},
		{name: "alias delivered", raw: "delivered", want: StatusCompleted},
		{name: "unknown", raw: "teleported", wantErr: true},
		{name: "empty", raw: "", wantErr: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseOrderStatus(tc.raw)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("ParseOrderStatus(%q) succeeded, want error", tc.raw)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseOrderStatus(%q) failed: %v", tc.raw, err)
			}
			if got != tc.want {
				t.Errorf("ParseOrderStatus(%q) = %s, want %s", tc.raw, got, tc.want)
			}
		})
	}
}

func TestOrderStatuses_FullRun(t *testing.T) {
	seq := OrderStatuses()
	for i := 0; i < len(seq)-1; i++ {
		if !seq[i].CanTransitionTo(seq[i+1]) {
			t.Errorf("sequence broken at %s -> %s", seq[i], seq[i+1])
		}
	}
	last := seq[len(seq)-1]
	if last != StatusCompleted {
		t.Errorf("sequence ends at %s, want %s", last, StatusCompleted)
	}
}
