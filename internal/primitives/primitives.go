// Package primitives binds the five vetted cryptographic primitives the
// escrow core is built on: an AEAD (XChaCha20-Poly1305-IETF), anonymous
// public-key sealing (a sealed box composed from X25519 + XSalsa20-Poly1305
// via golang.org/x/crypto/nacl/box), a domain-separated KDF, a generic hash
// (BLAKE2b), and a CSPRNG.
package primitives

import (
	"crypto/rand"
	"errors"
	"io"

	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/nacl/box"
)

// KeySize is the required length, in bytes, of every symmetric key and
// sealed-box key used by the core.
const KeySize = 32

// ErrImproperKeyLength indicates a symmetric operation was invoked with a
// key whose length is not exactly KeySize bytes.
var ErrImproperKeyLength = errors.New("primitives: improper key length")

// ErrSealedBoxOpenFailed indicates a sealed-box open failed authentication
// or had an invalid length.
var ErrSealedBoxOpenFailed = errors.New("primitives: sealed box open failed")

// RandomBytes returns n cryptographically random bytes, read from the
// process CSPRNG.
func RandomBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := io.ReadFull(rand.Reader, b); err != nil {
		return nil, err
	}
	return b, nil
}

// Wipe zeroes b in place. Called on record keys once they are no longer
// needed, and on the k that DecryptFast reconstructs for a bucket.
func Wipe(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

// AEADEncrypt seals plaintext under key with the given additional data,
// returning the raw ciphertext and the nonce that was generated for it.
func AEADEncrypt(key, plaintext, ad []byte) (ciphertext, nonce []byte, err error) {
	if len(key) != KeySize {
		return nil, nil, ErrImproperKeyLength
	}

	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, nil, err
	}

	nonce, err = RandomBytes(aead.NonceSize())
	if err != nil {
		return nil, nil, err
	}

	ciphertext = aead.Seal(nil, nonce, plaintext, ad)

	return ciphertext, nonce, nil
}

// AEADDecrypt opens a ciphertext produced by AEADEncrypt. Any integrity
// failure, wrong key length, or malformed nonce is reported as an error;
// callers in the pairing loop treat this as "wrong partner" and retry.
func AEADDecrypt(key, ciphertext, nonce, ad []byte) ([]byte, error) {
	if len(key) != KeySize {
		return nil, ErrImproperKeyLength
	}

	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, err
	}

	if len(nonce) != aead.NonceSize() {
		return nil, errors.New("primitives: improper nonce length")
	}

	return aead.Open(nil, nonce, ciphertext, ad)
}

// SealedBoxSeal anonymously encrypts plaintext to the recipient's X25519
// public key: an ephemeral keypair is generated per call, and the
// ephemeral public key is prefixed to the nacl/box ciphertext so the
// recipient can open it with only their own secret key.
func SealedBoxSeal(plaintext []byte, recipientPublicKey [KeySize]byte) ([]byte, error) {
	ephPub, ephPriv, err := box.GenerateKey(rand.Reader)
	if err != nil {
		return nil, err
	}

	nonce, err := sealedBoxNonce(ephPub, &recipientPublicKey)
	if err != nil {
		return nil, err
	}

	sealed := box.Seal(nil, plaintext, &nonce, &recipientPublicKey, ephPriv)

	out := make([]byte, 0, len(ephPub)+len(sealed))
	out = append(out, ephPub[:]...)
	out = append(out, sealed...)

	return out, nil
}

// SealedBoxOpen is the inverse of SealedBoxSeal, given the recipient's
// keypair.
func SealedBoxOpen(sealed []byte, recipientPublicKey, recipientSecretKey [KeySize]byte) ([]byte, error) {
	if len(sealed) < KeySize {
		return nil, ErrSealedBoxOpenFailed
	}

	var ephPub [KeySize]byte
	copy(ephPub[:], sealed[:KeySize])

	nonce, err := sealedBoxNonce(&ephPub, &recipientPublicKey)
	if err != nil {
		return nil, ErrSealedBoxOpenFailed
	}

	plaintext, ok := box.Open(nil, sealed[KeySize:], &nonce, &ephPub, &recipientSecretKey)
	if !ok {
		return nil, ErrSealedBoxOpenFailed
	}

	return plaintext, nil
}

// sealedBoxNonce derives a deterministic per-message nonce from the
// ephemeral and recipient public keys, the same binding libsodium's
// crypto_box_seal uses so the nonce never needs to be transmitted.
func sealedBoxNonce(ephPub, recipientPublicKey *[KeySize]byte) ([24]byte, error) {
	h, err := blake2b.New(24, nil)
	if err != nil {
		return [24]byte{}, err
	}

	h.Write(ephPub[:])
	h.Write(recipientPublicKey[:])

	var nonce [24]byte
	copy(nonce[:], h.Sum(nil))

	return nonce, nil
}

// GenericHash is the keyed/unkeyed variable-output BLAKE2b primitive.
// key may be nil for the unkeyed mode.
func GenericHash(outLen int, key, data []byte) ([]byte, error) {
	h, err := blake2b.New(outLen, key)
	if err != nil {
		return nil, err
	}

	h.Write(data)

	return h.Sum(nil), nil
}

// KDFDeriveFromKey deterministically derives an outLen-byte subkey from
// masterKey, domain-separated by subkeyID and an 8-byte context (a longer
// context string is cut to its first 8 bytes, a shorter one zero-padded), in
// the construction libsodium's crypto_kdf_derive_from_key uses: a keyed
// BLAKE2b over (context || subkeyID) with masterKey as the hash key.
func KDFDeriveFromKey(outLen int, subkeyID uint64, context string, masterKey []byte) ([]byte, error) {
	if len(masterKey) != KeySize {
		return nil, ErrImproperKeyLength
	}

	ctx := make([]byte, 8)
	copy(ctx, context)

	h, err := blake2b.New(outLen, masterKey)
	if err != nil {
		return nil, err
	}

	h.Write(ctx)

	idBytes := make([]byte, 8)
	for i := 0; i < 8; i++ {
		idBytes[i] = byte(subkeyID >> (8 * i))
	}
	h.Write(idBytes)

	return h.Sum(nil), nil
}
