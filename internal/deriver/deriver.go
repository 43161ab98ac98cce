// Package deriver implements the Deriver component: it maps a 32-byte
// randId (produced by the external OPRF this core does not implement)
// into the slope, key, and matching index a perpetrator's submissions
// share.
package deriver

import (
	"fmt"
	"math/big"

	"github.com/optioncounsel/escrow/internal/codec"
	"github.com/optioncounsel/escrow/internal/primitives"
)

const (
	subkeySlope     = 1
	subkeyKey       = 2
	subkeyMatching  = 3
	ctxSlope        = "slope der" // KDFDeriveFromKey keeps only the first 8 bytes of each context
	ctxKey          = "key deriv"
	ctxMatching     = "match idx"
	matchingHashLen = 32
)

// Derived holds the per-perpetrator values produced from a randId: the
// sharing line's slope, the shared secret k, and the matching index π
// that lets the server bucket submissions without learning anything about
// the perpetrator.
type Derived struct {
	Slope         *big.Int
	Key           []byte // 32 bytes, the shared secret k
	MatchingIndex string // base64, opaque
}

// Derive runs the three KDF calls and the matching-index hash that turn a
// randId into a sharing line and a bucketing key. Callers wrap any
// primitive failure as a KeyDerivationFailure.
func Derive(randID [32]byte) (Derived, error) {
	a, err := primitives.KDFDeriveFromKey(32, subkeySlope, ctxSlope, randID[:])
	if err != nil {
		return Derived{}, fmt.Errorf("deriver: slope derivation: %w", err)
	}

	k, err := primitives.KDFDeriveFromKey(32, subkeyKey, ctxKey, randID[:])
	if err != nil {
		return Derived{}, fmt.Errorf("deriver: key derivation: %w", err)
	}

	ak, err := primitives.GenericHash(32, nil, []byte(codec.B64Encode(a)+codec.B64Encode(k)))
	if err != nil {
		return Derived{}, fmt.Errorf("deriver: matching index hash: %w", err)
	}

	pi, err := primitives.KDFDeriveFromKey(matchingHashLen, subkeyMatching, ctxMatching, ak)
	if err != nil {
		return Derived{}, fmt.Errorf("deriver: matching index derivation: %w", err)
	}

	return Derived{
		Slope:         codec.BytesToInt(a),
		Key:           k,
		MatchingIndex: codec.B64Encode(pi),
	}, nil
}
