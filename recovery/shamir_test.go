package recovery

import (
	"bytes"
	"testing"
)

func TestShamirSplitCombineRoundTrip(t *testing.T) {
	secret := []byte("a 32 byte curve25519 secret key")
	const n, k = 5, 3

	shares, err := ShamirSplit(secret, n, k)
	if err != nil {
		t.Fatalf("ShamirSplit: %v", err)
	}
	if len(shares) != n {
		t.Fatalf("got %d shares, want %d", len(shares), n)
	}
	for _, s := range shares {
		if len(s) != len(secret) {
			t.Fatalf("share length = %d, want %d", len(s), len(secret))
		}
	}

	// Reconstruct from exactly k shares (indices 2, 4, 5 -- not contiguous,
	// not starting at 1).
	use := []int{1, 3, 4} // 0-based into shares, i.e. node indices 2, 4, 5
	picked := make([]Share, len(use))
	data := make([][]byte, len(use))
	for i, idx := range use {
		picked[i] = Share{Index: byte(idx + 1)}
		data[i] = shares[idx]
	}

	got, err := ShamirCombine(picked, data)
	if err != nil {
		t.Fatalf("ShamirCombine: %v", err)
	}
	if !bytes.Equal(got, secret) {
		t.Fatalf("reconstructed secret = %q, want %q", got, secret)
	}
}

func TestShamirCombineDifferentSubsetsAgree(t *testing.T) {
	secret := []byte{0x00, 0x01, 0xff, 0x42, 0x80}
	const n, k = 5, 3

	shares, err := ShamirSplit(secret, n, k)
	if err != nil {
		t.Fatalf("ShamirSplit: %v", err)
	}

	subsets := [][]int{{0, 1, 2}, {0, 2, 4}, {1, 3, 4}, {2, 3, 4}}
	for _, subset := range subsets {
		picked := make([]Share, len(subset))
		data := make([][]byte, len(subset))
		for i, idx := range subset {
			picked[i] = Share{Index: byte(idx + 1)}
			data[i] = shares[idx]
		}
		got, err := ShamirCombine(picked, data)
		if err != nil {
			t.Fatalf("ShamirCombine(%v): %v", subset, err)
		}
		if !bytes.Equal(got, secret) {
			t.Fatalf("subset %v reconstructed %x, want %x", subset, got, secret)
		}
	}
}

func TestShamirSplitRejectsInvalidParameters(t *testing.T) {
	if _, err := ShamirSplit([]byte("x"), 3, 0); err == nil {
		t.Fatal("expected error for k=0")
	}
	if _, err := ShamirSplit([]byte("x"), 3, 4); err == nil {
		t.Fatal("expected error for k>n")
	}
}

func TestGF256MultiplicationTableConsistentWithReference(t *testing.T) {
	for a := 1; a < 256; a++ {
		for b := 1; b < 256; b++ {
			got := gf256MulTable(byte(a), byte(b))
			want := gf256Mul(byte(a), byte(b))
			if got != want {
				t.Fatalf("gf256MulTable(%d,%d) = %d, want %d", a, b, got, want)
			}
		}
	}
}
