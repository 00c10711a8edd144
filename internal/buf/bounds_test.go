package buf

import (
	"math"
	"testing"
)

func TestAddOverflowSafe(t *testing.T) {
	if sum, ok := AddOverflowSafe(10, 5); !ok || sum != 15 {
		t.Fatalf("AddOverflowSafe(10,5)=%d,%v want 15,true", sum, ok)
	}
	if _, ok := AddOverflowSafe(math.MaxInt, 1); ok {
		t.Fatalf("expected overflow when adding to MaxInt")
	}
	if _, ok := AddOverflowSafe(math.MinInt, -1); ok {
		t.Fatalf("expected underflow when subtracting from MinInt")
	}
}

func TestMulOverflowSafe(t *testing.T) {
	if p, ok := MulOverflowSafe(64, 3200); !ok || p != 204800 {
		t.Fatalf("MulOverflowSafe(64,3200)=%d,%v", p, ok)
	}
	if _, ok := MulOverflowSafe(math.MaxInt/2, 3); ok {
		t.Fatalf("expected overflow")
	}
	if _, ok := MulOverflowSafe(-1, 3); ok {
		t.Fatalf("negative operand should be rejected")
	}
	if p, ok := MulOverflowSafe(0, math.MaxInt); !ok || p != 0 {
		t.Fatalf("zero operand: %d,%v", p, ok)
	}
}

func TestRoundUp(t *testing.T) {
	cases := []struct{ n, step, want int }{
		{0, 16, 0},
		{1, 16, 16},
		{16, 16, 16},
		{17, 16, 32},
		{5, 0, 5},
	}
	for _, c := range cases {
		if got := RoundUp(c.n, c.step); got != c.want {
			t.Fatalf("RoundUp(%d,%d)=%d want %d", c.n, c.step, got, c.want)
		}
	}
	if CeilDiv(65, 64) != 2 || CeilDiv(64, 64) != 1 {
		t.Fatalf("CeilDiv mismatch")
	}
}

func TestCheckRange(t *testing.T) {
	if end, err := CheckRange(10, 2, 8); err != nil || end != 10 {
		t.Fatalf("CheckRange(10,2,8)=%d,%v", end, err)
	}
	if _, err := CheckRange(10, 3, 8); err == nil {
		t.Fatalf("expected bounds error")
	}
	if _, err := CheckRange(10, -1, 1); err == nil {
		t.Fatalf("expected negative offset error")
	}
	if _, err := CheckRange(10, 1, -1); err == nil {
		t.Fatalf("expected negative length error")
	}
	if _, err := CheckRange(math.MaxInt, math.MaxInt, 1); err == nil {
		t.Fatalf("expected overflow error")
	}
}

func TestSliceAndHas(t *testing.T) {
	data := []byte{0, 1, 2, 3, 4}
	if got, ok := Slice(data, 1, 3); !ok || len(got) != 3 || got[0] != 1 || got[2] != 3 {
		t.Fatalf("Slice returned unexpected result: %v, %v", got, ok)
	}
	if got, _ := Slice(data, 1, 3); cap(got) != 3 {
		t.Fatalf("Slice should cap the view, got cap %d", cap(got))
	}
	if _, ok := Slice(data, 4, 2); ok {
		t.Fatalf("Slice should fail when extending beyond len")
	}
	if Has(data, 2, 4) {
		t.Fatalf("Has should be false for out-of-bounds range")
	}
	if !Has(data, 2, 1) {
		t.Fatalf("Has should be true for valid range")
	}
	if _, ok := Slice(data, -1, 1); ok {
		t.Fatalf("Slice should reject negative offset")
	}
}
