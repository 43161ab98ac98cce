// Package codec implements ByteCodec: the little-endian 256-bit integer
// encoding, the URL-safe base64 convention, and the "ct$nonce" symmetric
// ciphertext framing used throughout the escrow core.
package codec

import (
	"encoding/base64"
	"errors"
	"math/big"
	"strings"
)

// IntLen is the fixed width, in bytes, of a round-tripped field element.
const IntLen = 32

// FrameSeparator joins base64(ciphertext) and base64(nonce) in the
// on-the-wire framing of a symmetric ciphertext. It is never produced by
// RawURLEncoding, so splitting on it is unambiguous.
const FrameSeparator = "$"

// ErrMalformedFrame indicates a symmetric ciphertext string contained no
// FrameSeparator. A string with more than one fails base64 decoding of
// its nonce part instead.
var ErrMalformedFrame = errors.New("codec: malformed ciphertext frame")

// BytesToInt interprets b as a little-endian 256-bit integer: the low
// byte is b[0].
func BytesToInt(b []byte) *big.Int {
	be := make([]byte, len(b))
	for i, v := range b {
		be[len(b)-1-i] = v
	}
	return new(big.Int).SetBytes(be)
}

// IntToBytes produces exactly IntLen little-endian bytes for v, truncating
// any bits at or above bit 256. Callers must ensure v < 2^256 before
// round-tripping; the only value this is done for is k, a 32-byte hash
// output.
func IntToBytes(v *big.Int) []byte {
	be := v.Bytes()
	out := make([]byte, IntLen)
	for i, b := range be {
		// be is big-endian, most significant byte first; take only the
		// low IntLen bytes and reverse into little-endian order.
		idx := len(be) - 1 - i
		if idx >= IntLen {
			continue
		}
		out[idx] = b
	}
	return out
}

// B64Encode is the URL-safe, no-padding base64 encoding used on every
// serialization boundary.
func B64Encode(b []byte) string {
	return base64.RawURLEncoding.EncodeToString(b)
}

// B64Decode is the inverse of B64Encode.
func B64Decode(s string) ([]byte, error) {
	return base64.RawURLEncoding.DecodeString(s)
}

// FrameCiphertext serializes a symmetric ciphertext and its nonce as
// base64(ciphertext) + "$" + base64(nonce).
func FrameCiphertext(ciphertext, nonce []byte) string {
	return B64Encode(ciphertext) + FrameSeparator + B64Encode(nonce)
}

// ParseFrame splits a framed ciphertext back into its ciphertext and
// nonce components.
func ParseFrame(framed string) (ciphertext, nonce []byte, err error) {
	parts := strings.SplitN(framed, FrameSeparator, 2)
	if len(parts) != 2 {
		return nil, nil, ErrMalformedFrame
	}

	ciphertext, err = B64Decode(parts[0])
	if err != nil {
		return nil, nil, err
	}

	nonce, err = B64Decode(parts[1])
	if err != nil {
		return nil, nil, err
	}

	return ciphertext, nonce, nil
}
