package money_test

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/dasunhq/idurar-erp-crm/money"
)

func TestFromString_RoundsToScale(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"40", "40.00"},
		{"40.005", "40.01"}, // half-up
		{"40.004", "40.00"},
		{"0.1", "0.10"},
		{"-3.555", "-3.56"},
	}
	for _, tc := range cases {
		a, err := money.FromString(tc.in)
		if err != nil {
			t.Fatalf("FromString(%q): %v", tc.in, err)
		}
		if got := a.String(); got != tc.want {
			t.Errorf("FromString(%q) = %s, want %s", tc.in, got, tc.want)
		}
	}
}

func TestFromString_Malformed(t *testing.T) {
	if _, err := money.FromString("forty"); err == nil {
		t.Error("expected error for non-numeric input")
	}
}

func TestAdd_NoBinaryFloatDrift(t *testing.T) {
	// 0.1 + 0.2 must be exactly 0.3; this is the whole reason the package
	// exists.
	sum := money.MustParse("0.1").Add(money.MustParse("0.2"))
	if !sum.Equal(money.MustParse("0.3")) {
		t.Errorf("0.1 + 0.2 = %s, want 0.30", sum)
	}
}

func TestMul_RoundsHalfUp(t *testing.T) {
	// 3 x 19.995 = 59.985 -> 59.99 (the operand itself rounds to 20.00
	// first, so construct via raw decimal to exercise result rounding)
	a := money.Amount{Value: decimal.RequireFromString("19.995")}
	got := money.MustParse("3").Mul(a)
	if got.String() != "59.99" {
		t.Errorf("3 x 19.995 = %s, want 59.99", got)
	}
}

func TestSubAndNeg(t *testing.T) {
	remaining := money.MustParse("100.00").Sub(money.MustParse("40.00"))
	if !remaining.Equal(money.New(60)) {
		t.Errorf("100 - 40 = %s, want 60.00", remaining)
	}
	if !remaining.Neg().Equal(money.MustParse("-60")) {
		t.Errorf("Neg(60) = %s, want -60.00", remaining.Neg())
	}
}

func TestComparisons(t *testing.T) {
	a := money.MustParse("10.00")
	b := money.MustParse("10.001") // rounds to 10.00

	if !a.Equal(b) {
		t.Error("comparison must happen on rounded values")
	}
	if a.GreaterThan(b) || a.LessThan(b) {
		t.Error("rounded-equal values must not order")
	}
	if !money.MustParse("10.01").GreaterThan(a) {
		t.Error("10.01 > 10.00 expected")
	}
	if !money.Zero.IsZero() || money.Zero.IsPositive() || money.Zero.IsNegative() {
		t.Error("Zero sign predicates wrong")
	}
	if !money.MustParse("-1").IsNegative() {
		t.Error("IsNegative(-1) expected")
	}
}

func TestString_FixedTwoDigits(t *testing.T) {
	if got := money.New(7).String(); got != "7.00" {
		t.Errorf("String() = %q, want \"7.00\"", got)
	}
}
