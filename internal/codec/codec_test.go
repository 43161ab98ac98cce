package codec_test

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/optioncounsel/escrow/internal/codec"
)

func TestBytesToIntLittleEndian(t *testing.T) {
	b := make([]byte, codec.IntLen)
	b[0] = 0x01
	b[1] = 0x02

	v := codec.BytesToInt(b)
	require.Equal(t, big.NewInt(0x0201), v)
}

func TestIntToBytesRoundTrip(t *testing.T) {
	original := big.NewInt(123456789)

	b := codec.IntToBytes(original)
	require.Len(t, b, codec.IntLen)

	back := codec.BytesToInt(b)
	require.Equal(t, 0, original.Cmp(back))
}

func TestIntToBytesTruncatesHighBits(t *testing.T) {
	huge := new(big.Int).Lsh(big.NewInt(1), 300)
	huge.Add(huge, big.NewInt(42))

	b := codec.IntToBytes(huge)
	require.Len(t, b, codec.IntLen)

	back := codec.BytesToInt(b)
	mod := new(big.Int).Mod(huge, new(big.Int).Lsh(big.NewInt(1), 256))
	require.Equal(t, 0, mod.Cmp(back))
}

func TestB64RoundTrip(t *testing.T) {
	data := []byte("arbitrary payload bytes")

	encoded := codec.B64Encode(data)
	require.NotContains(t, encoded, "=")

	decoded, err := codec.B64Decode(encoded)
	require.NoError(t, err)
	require.Equal(t, data, decoded)
}

func TestFrameRoundTrip(t *testing.T) {
	ct := []byte("ciphertext-bytes")
	nonce := []byte("nonce-bytes-here")

	framed := codec.FrameCiphertext(ct, nonce)

	gotCt, gotNonce, err := codec.ParseFrame(framed)
	require.NoError(t, err)
	require.Equal(t, ct, gotCt)
	require.Equal(t, nonce, gotNonce)
}

func TestParseFrameMalformed(t *testing.T) {
	_, _, err := codec.ParseFrame("no-separator-here")
	require.ErrorIs(t, err, codec.ErrMalformedFrame)
}
