package primitives

import (
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/nacl/box"
)

func TestAEADRoundTrip(t *testing.T) {
	key, err := RandomBytes(KeySize)
	require.NoError(t, err)

	ct, nonce, err := AEADEncrypt(key, []byte("hello"), []byte("ad"))
	require.NoError(t, err)

	pt, err := AEADDecrypt(key, ct, nonce, []byte("ad"))
	require.NoError(t, err)
	require.Equal(t, "hello", string(pt))
}

func TestAEADWrongAD(t *testing.T) {
	key, err := RandomBytes(KeySize)
	require.NoError(t, err)

	ct, nonce, err := AEADEncrypt(key, []byte("hello"), []byte("ad-a"))
	require.NoError(t, err)

	_, err = AEADDecrypt(key, ct, nonce, []byte("ad-b"))
	require.Error(t, err)
}

func TestAEADImproperKeyLength(t *testing.T) {
	_, _, err := AEADEncrypt(make([]byte, 16), []byte("hello"), nil)
	require.ErrorIs(t, err, ErrImproperKeyLength)

	_, err = AEADDecrypt(make([]byte, 16), []byte("x"), []byte("y"), nil)
	require.ErrorIs(t, err, ErrImproperKeyLength)
}

func TestSealedBoxRoundTrip(t *testing.T) {
	pub, priv, err := sealedBoxKeyPair()
	require.NoError(t, err)

	sealed, err := SealedBoxSeal([]byte("secret share"), pub)
	require.NoError(t, err)

	opened, err := SealedBoxOpen(sealed, pub, priv)
	require.NoError(t, err)
	require.Equal(t, "secret share", string(opened))
}

func TestSealedBoxWrongRecipient(t *testing.T) {
	pubA, _, err := sealedBoxKeyPair()
	require.NoError(t, err)
	_, privB, err := sealedBoxKeyPair()
	require.NoError(t, err)

	sealed, err := SealedBoxSeal([]byte("secret"), pubA)
	require.NoError(t, err)

	_, err = SealedBoxOpen(sealed, pubA, privB)
	require.ErrorIs(t, err, ErrSealedBoxOpenFailed)
}

func TestKDFDeterministic(t *testing.T) {
	master, err := RandomBytes(KeySize)
	require.NoError(t, err)

	a, err := KDFDeriveFromKey(32, 1, "slope derivation", master)
	require.NoError(t, err)
	b, err := KDFDeriveFromKey(32, 1, "slope derivation", master)
	require.NoError(t, err)
	require.Equal(t, a, b)

	c, err := KDFDeriveFromKey(32, 2, "key derivation", master)
	require.NoError(t, err)
	require.NotEqual(t, a, c)
}

func sealedBoxKeyPair() (pub, priv [KeySize]byte, err error) {
	p, s, err := box.GenerateKey(rand.Reader)
	if err != nil {
		return pub, priv, err
	}
	return *p, *s, nil
}
