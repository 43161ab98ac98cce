package decryptor

import (
	"crypto/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/nacl/box"

	"github.com/optioncounsel/escrow/internal/encryptor"
	"github.com/optioncounsel/escrow/internal/model"
	"github.com/optioncounsel/escrow/internal/primitives"
)

func genOCKeyPair(t *testing.T) (pub, priv [primitives.KeySize]byte) {
	t.Helper()
	p, s, err := box.GenerateKey(rand.Reader)
	require.NoError(t, err)
	return *p, *s
}

func randKey(t *testing.T) [primitives.KeySize]byte {
	t.Helper()
	var k [primitives.KeySize]byte
	_, err := rand.Read(k[:])
	require.NoError(t, err)
	return k
}

func TestDecryptTwoUsersSameRandID(t *testing.T) {
	pub, priv := genOCKeyPair(t)
	oc := map[string][primitives.KeySize]byte{"oc1": pub}

	var randID [32]byte
	_, err := rand.Read(randID[:])
	require.NoError(t, err)

	pass := randKey(t)

	r1 := encryptor.Encrypt([][32]byte{randID}, model.Record{PerpID: "p", UserID: "u1"}, oc, pass, time.Now)
	require.Empty(t, r1.Malformed)
	r2 := encryptor.Encrypt([][32]byte{randID}, model.Record{PerpID: "p", UserID: "u2"}, oc, pass, time.Now)
	require.Empty(t, r2.Malformed)

	var entries []model.EncryptedData
	for _, ocs := range r1.Map {
		entries = append(entries, ocs["oc1"]...)
	}
	for _, ocs := range r2.Map {
		entries = append(entries, ocs["oc1"]...)
	}
	require.Len(t, entries, 2)

	result := Decrypt(entries, pub, priv)
	require.Empty(t, result.Malformed)
	require.Len(t, result.Records, 2)
	require.Equal(t, []int{2}, result.BucketSizes)

	perps := map[string]bool{}
	for _, rec := range result.Records {
		perps[rec.UserID] = true
	}
	require.True(t, perps["u1"])
	require.True(t, perps["u2"])
}

func TestDecryptSingletonNotEnoughMatches(t *testing.T) {
	pub, priv := genOCKeyPair(t)
	oc := map[string][primitives.KeySize]byte{"oc1": pub}

	var r1, r2 [32]byte
	_, err := rand.Read(r1[:])
	require.NoError(t, err)
	_, err = rand.Read(r2[:])
	require.NoError(t, err)

	pass := randKey(t)
	result := encryptor.Encrypt([][32]byte{r1, r2}, model.Record{PerpID: "p", UserID: "u1"}, oc, pass, time.Now)
	require.Empty(t, result.Malformed)

	for _, ocs := range result.Map {
		out := Decrypt(ocs["oc1"], pub, priv)
		require.Empty(t, out.Records)
		require.Len(t, out.Malformed, 1)
		require.Equal(t, model.KindNotEnoughMatches, out.Malformed[0].Kind)
	}
}

func TestDecryptMalformedIsolation(t *testing.T) {
	pub, priv := genOCKeyPair(t)
	oc := map[string][primitives.KeySize]byte{"oc1": pub}

	var randID [32]byte
	_, err := rand.Read(randID[:])
	require.NoError(t, err)
	pass := randKey(t)

	var entries []model.EncryptedData
	for i, uid := range []string{"u1", "u2", "u3"} {
		r := encryptor.Encrypt([][32]byte{randID}, model.Record{PerpID: "p", UserID: uid}, oc, pass, time.Now)
		require.Empty(t, r.Malformed)
		for _, ocs := range r.Map {
			entries = append(entries, ocs["oc1"]...)
		}
		_ = i
	}
	require.Len(t, entries, 3)

	// corrupt one entry's eOC
	entries[0].EncOC = "AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"

	result := Decrypt(entries, pub, priv)
	require.Len(t, result.Records, 2)
	require.Len(t, result.Malformed, 1)
	require.Equal(t, model.KindAsymmetricDecryptFailure, result.Malformed[0].Kind)
}

func TestDecryptFastMatchesDecrypt(t *testing.T) {
	pub, priv := genOCKeyPair(t)
	oc := map[string][primitives.KeySize]byte{"oc1": pub}

	var randID [32]byte
	_, err := rand.Read(randID[:])
	require.NoError(t, err)
	pass := randKey(t)

	var entries []model.EncryptedData
	for _, uid := range []string{"u1", "u2", "u3", "u4"} {
		r := encryptor.Encrypt([][32]byte{randID}, model.Record{PerpID: "p", UserID: uid}, oc, pass, time.Now)
		require.Empty(t, r.Malformed)
		for _, ocs := range r.Map {
			entries = append(entries, ocs["oc1"]...)
		}
	}
	require.Len(t, entries, 4)

	slow := Decrypt(entries, pub, priv)
	fast := DecryptFast(entries, pub, priv)

	require.Empty(t, slow.Malformed)
	require.Empty(t, fast.Malformed)
	require.ElementsMatch(t, slow.Records, fast.Records)
}

func TestDecryptFastSingletonNotEnoughMatches(t *testing.T) {
	pub, priv := genOCKeyPair(t)
	oc := map[string][primitives.KeySize]byte{"oc1": pub}

	var r1, r2 [32]byte
	_, err := rand.Read(r1[:])
	require.NoError(t, err)
	_, err = rand.Read(r2[:])
	require.NoError(t, err)

	pass := randKey(t)
	result := encryptor.Encrypt([][32]byte{r1, r2}, model.Record{PerpID: "p", UserID: "u1"}, oc, pass, time.Now)
	require.Empty(t, result.Malformed)

	for _, ocs := range result.Map {
		out := DecryptFast(ocs["oc1"], pub, priv)
		require.Empty(t, out.Records)
		require.Len(t, out.Malformed, 1)
		require.Equal(t, model.KindNotEnoughMatches, out.Malformed[0].Kind)
	}
}
