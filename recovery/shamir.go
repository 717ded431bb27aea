package recovery

import (
	"fmt"

	"github.com/idos-network/idos-sdk-go/kwcrypto"
)

// gf256Exp and gf256Log are the exponent/log tables for GF(2^8) under the
// AES/Rijndael reduction polynomial 0x11b, used for Shamir share
// arithmetic below.
var (
	gf256Exp [512]byte
	gf256Log [256]byte
)

func init() {
	x := byte(1)
	for i := 0; i < 255; i++ {
		gf256Exp[i] = x
		gf256Log[x] = byte(i)
		x = gf256Mul(x, 3)
	}
	for i := 255; i < 512; i++ {
		gf256Exp[i] = gf256Exp[i-255]
	}
}

// gf256Mul multiplies a and b in GF(2^8) with reduction polynomial 0x11b,
// used only during table construction (init) -- runtime multiplication
// uses the log/exp tables instead.
func gf256Mul(a, b byte) byte {
	var p byte
	for i := 0; i < 8; i++ {
		if b&1 != 0 {
			p ^= a
		}
		hiBitSet := a&0x80 != 0
		a <<= 1
		if hiBitSet {
			a ^= 0x1b
		}
		b >>= 1
	}
	return p
}

func gf256MulTable(a, b byte) byte {
	if a == 0 || b == 0 {
		return 0
	}
	return gf256Exp[int(gf256Log[a])+int(gf256Log[b])]
}

func gf256Div(a, b byte) byte {
	if a == 0 {
		return 0
	}
	if b == 0 {
		panic("recovery: division by zero in GF(256)")
	}
	diff := int(gf256Log[a]) - int(gf256Log[b])
	if diff < 0 {
		diff += 255
	}
	return gf256Exp[diff]
}

// Share is one Shamir share of a single secret byte: its 1-based index
// (the evaluation point x=index) and the evaluated polynomial value y.
type Share struct {
	Index byte
	Value byte
}

// ShamirSplit splits secret byte-wise over GF(256) into n shares, each
// requiring k of them to reconstruct. Share indices are 1-based, as
// required by the reconstruction side. Returns n slices, each len(secret)
// bytes long -- shares[i][j] is the share for node i+1 of secret byte j.
func ShamirSplit(secret []byte, n, k int) ([][]byte, error) {
	if k <= 0 || k > n {
		return nil, fmt.Errorf("recovery: invalid shamir parameters n=%d k=%d", n, k)
	}

	shares := make([][]byte, n)
	for i := range shares {
		shares[i] = make([]byte, len(secret))
	}

	for byteIdx, secretByte := range secret {
		coeffs := make([]byte, k)
		coeffs[0] = secretByte
		randBytes, err := kwcrypto.RandomBytes(k - 1)
		if err != nil {
			return nil, fmt.Errorf("recovery: generating shamir coefficients: %w", err)
		}
		copy(coeffs[1:], randBytes)

		for node := 0; node < n; node++ {
			x := byte(node + 1)
			shares[node][byteIdx] = evalPoly(coeffs, x)
		}
	}
	return shares, nil
}

// evalPoly evaluates the polynomial with the given coefficients (lowest
// degree first) at x, in GF(256), via Horner's method.
func evalPoly(coeffs []byte, x byte) byte {
	var result byte
	for i := len(coeffs) - 1; i >= 0; i-- {
		result = gf256MulTable(result, x) ^ coeffs[i]
	}
	return result
}

// ShamirCombine reconstructs the original secret from a set of (index,
// byte-slice) shares via Lagrange interpolation at x=0, independently for
// every byte position. All shares must carry the same length.
func ShamirCombine(shares []Share, shareData [][]byte) ([]byte, error) {
	if len(shares) == 0 || len(shares) != len(shareData) {
		return nil, fmt.Errorf("recovery: no shares to combine")
	}
	n := len(shareData[0])
	for _, s := range shareData {
		if len(s) != n {
			return nil, fmt.Errorf("recovery: mismatched share lengths")
		}
	}

	secret := make([]byte, n)
	for byteIdx := 0; byteIdx < n; byteIdx++ {
		secret[byteIdx] = lagrangeInterpolateAtZero(shares, shareData, byteIdx)
	}
	return secret, nil
}

// lagrangeInterpolateAtZero evaluates the unique degree-(len(shares)-1)
// polynomial through the given (index, value) points at x=0, where value
// for point i is shareData[i][byteIdx].
func lagrangeInterpolateAtZero(shares []Share, shareData [][]byte, byteIdx int) byte {
	var result byte
	for i, si := range shares {
		yi := shareData[i][byteIdx]

		var num, den byte = 1, 1
		for j, sj := range shares {
			if i == j {
				continue
			}
			// num *= (0 - x_j) = x_j in GF(256) (subtraction is XOR, so -x = x)
			num = gf256MulTable(num, sj.Index)
			// den *= (x_i - x_j) = x_i XOR x_j
			den = gf256MulTable(den, si.Index^sj.Index)
		}
		term := gf256MulTable(yi, gf256Div(num, den))
		result ^= term
	}
	return result
}
