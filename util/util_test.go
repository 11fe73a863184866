package util

import "testing"

func TestGenerateLutSymmetric(t *testing.T) {
	lut := GenerateLut(20)
	if len(lut) != 20 {
		t.Fatalf("expected 20 entries, got %d", len(lut))
	}
	if lut[0] != 0 || lut[19] != 0 {
		t.Fatalf("expected ramp to start and end at 0, got %v and %v", lut[0], lut[19])
	}
	for i, j := 0, len(lut)-1; i < j; i, j = i+1, j-1 {
		if lut[i] != lut[j] {
			t.Fatalf("lut not symmetric at %d: %v != %v", i, lut[i], lut[j])
		}
	}
	for i := 1; i < 10; i++ {
		if lut[i] < lut[i-1] {
			t.Fatalf("lut not rising at %d", i)
		}
	}
}

func TestGenerateLutShort(t *testing.T) {
	if lut := GenerateLut(1); len(lut) != 1 || lut[0] != 0 {
		t.Fatalf("unexpected short lut %v", lut)
	}
}

func TestGenerateLutMemoized(t *testing.T) {
	m := Memoizer{}
	a := GenerateLutMemoized(12, m)
	b := GenerateLutMemoized(12, m)
	if &a[0] != &b[0] {
		t.Fatalf("expected the cached table to be reused")
	}
	if len(m) != 1 {
		t.Fatalf("expected one cached table, got %d", len(m))
	}
}

func TestRandomiseSaturation(t *testing.T) {
	for i := 0; i < 100; i++ {
		v := RandomiseSaturation(0.2, 0.4)
		if v < 0.2 || v >= 0.4 {
			t.Fatalf("value %v out of range", v)
		}
	}
}
