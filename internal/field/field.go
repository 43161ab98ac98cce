// Package field implements modular arithmetic in GF(p) for the two-point
// Lagrange reconstruction used by the escrow secret-sharing scheme.
//
// p is fixed at 2^256 + 297, a prime just above 2^256 chosen so every
// 256-bit hash output is already a valid residue. All intermediate values
// are sized for 512-bit products, since p itself needs 257 bits.
package field

import "math/big"

// P is the field modulus, 2^256 + 297.
var P = mustP()

func mustP() *big.Int {
	p := new(big.Int).Lsh(big.NewInt(1), 256)
	p.Add(p, big.NewInt(297))
	return p
}

// Point is a coordinate pair (x, y) on the secret-sharing line, both
// reduced mod P.
type Point struct {
	X *big.Int
	Y *big.Int
}

// Mod returns the canonical residue of v mod P, correct for negative v.
func Mod(v *big.Int) *big.Int {
	r := new(big.Int).Mod(v, P)
	if r.Sign() < 0 {
		r.Add(r, P)
	}
	return r
}

// DeriveSlope computes the slope of the line through c1 and c2:
//
//	a = (c2.y - c1.y) * modinv(c2.x - c1.x, P) mod P
//
// It reports ok=false when c1.X == c2.X mod P, since the modular inverse
// is then undefined; callers treat that as a decryption failure rather
// than a panic.
func DeriveSlope(c1, c2 Point) (slope *big.Int, ok bool) {
	dx := Mod(new(big.Int).Sub(c2.X, c1.X))
	if dx.Sign() == 0 {
		return nil, false
	}

	inv := new(big.Int).ModInverse(dx, P)
	if inv == nil {
		return nil, false
	}

	dy := Mod(new(big.Int).Sub(c2.Y, c1.Y))
	slope = Mod(new(big.Int).Mul(dy, inv))

	return slope, true
}

// Intercept computes k = c.y - slope*c.x mod P, the shared secret encoded
// at x=0 on the reconstructed line.
func Intercept(c Point, slope *big.Int) *big.Int {
	sx := new(big.Int).Mul(slope, c.X)
	return Mod(new(big.Int).Sub(c.Y, sx))
}

// Eval computes slope*x + intercept mod P, used by the encryptor to
// produce a fresh share on the line defined by (slope, intercept).
func Eval(slope, x, intercept *big.Int) *big.Int {
	sx := new(big.Int).Mul(slope, x)
	return Mod(new(big.Int).Add(sx, intercept))
}
