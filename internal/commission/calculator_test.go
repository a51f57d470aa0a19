package commission

import "testing"

func TestCalculator_Calculate(t *testing.T) {
	c := NewCalculator(0.05)

	cases := []struct {
		name         string
		baseAmount   int64
		wantCut      int64
		wantEarnings int64
	}{
		{name: "round amount", baseAmount: 10000, wantCut: 500, wantEarnings: 9500},
		{name: "zero", baseAmount: 0, wantCut: 0, wantEarnings: 0},
		{name: "rounds half up", baseAmount: 10, wantCut: 1, wantEarnings: 9},
		{name: "rounds down below half", baseAmount: 9, wantCut: 0, wantEarnings: 9},
		{name: "typical order total", baseAmount: 5_200_000, wantCut: 260_000, wantEarnings: 4_940_000},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			b, err := c.Calculate(tc.baseAmount)
			if err != nil {
				t.Fatalf("Calculate(%d) failed: %v", tc.baseAmount, err)
			}
			if b.Commission != tc.wantCut {
				t.Errorf("commission = %d, want %d", b.Commission, tc.wantCut)
			}
			if b.TailorEarnings != tc.wantEarnings {
				t.Errorf("earnings = %d, want %d", b.TailorEarnings, tc.wantEarnings)
			}
			if b.Commission+b.TailorEarnings != tc.baseAmount {
				t.Errorf("commission %d + earnings %d != base %d", b.Commission, b.TailorEarnings, tc.baseAmount)
			}
		})
	}
}

func TestCalculator_Calculate_NegativeAmount(t *testing.T) {
	c := NewCalculator(0.05)
	if _, err := c.Calculate(-1); err == nil {
		t.Fatal("expected error for negative base amount")
	}
}

func TestNewCalculator_RateFallback(t *testing.T) {
	cases := []struct {
		name string
		rate float64
		want float64
	}{
		{name: "zero falls back", rate: 0, want: DefaultRate},
		{name: "negative falls back", rate: -0.1, want: DefaultRate},
		{name: "one falls back", rate: 1, want: DefaultRate},
		{name: "valid rate kept", rate: 0.1, want: 0.1},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := NewCalculator(tc.rate).Rate(); got != tc.want {
				t.Errorf("rate = %v, want %v", got, tc.want)
			}
		})
	}
}
