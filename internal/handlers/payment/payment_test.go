package payment

import "testing"

func TestAmountInCents(t *testing.T) {
	cases := []struct {
		total float64
		want  int64
	}{
		{29.90, 2990},
		{3 * 29.90, 8970}, // 89.69999... en flottant, la troncature donnait 8969
		{0, 0},
		{19.99, 1999},
		{0.01, 1},
	}

	for _, c := range cases {
		if got := amountInCents(c.total); got != c.want {
			t.Errorf("amountInCents(%v) = %d, attendu %d", c.total, got, c.want)
		}
	}
}
