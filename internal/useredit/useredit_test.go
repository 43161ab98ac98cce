package useredit

import (
	"crypto/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/optioncounsel/escrow/internal/encryptor"
	"github.com/optioncounsel/escrow/internal/model"
	"github.com/optioncounsel/escrow/internal/primitives"
)

func randKey(t *testing.T) [primitives.KeySize]byte {
	t.Helper()
	var k [primitives.KeySize]byte
	_, err := rand.Read(k[:])
	require.NoError(t, err)
	return k
}

func buildEntries(t *testing.T, pass [primitives.KeySize]byte, rec model.Record) []model.EncryptedData {
	t.Helper()

	oc := map[string][primitives.KeySize]byte{"oc1": randKey(t), "oc2": randKey(t)}

	var randID [32]byte
	_, err := rand.Read(randID[:])
	require.NoError(t, err)

	result := encryptor.Encrypt([][32]byte{randID}, rec, oc, pass, time.Now)
	require.Empty(t, result.Malformed)

	var entries []model.EncryptedData
	for _, ocs := range result.Map {
		for _, list := range ocs {
			entries = append(entries, list...)
		}
	}
	return entries
}

func TestEditRoundTrip(t *testing.T) {
	pass := randKey(t)
	entries := buildEntries(t, pass, model.Record{PerpID: "p", UserID: "u1"})

	malformed := UpdateUserRecord(pass, entries, model.Record{PerpID: "p2", UserID: "u1"})
	require.Empty(t, malformed)

	result := DecryptUserRecord(pass, entries)
	require.Empty(t, result.Malformed)
	require.Len(t, result.Records, len(entries))
	for _, rec := range result.Records {
		require.Equal(t, "p2", rec.PerpID)
	}
}

func TestDecryptUserRecordWrongPassphrase(t *testing.T) {
	pass := randKey(t)
	entries := buildEntries(t, pass, model.Record{PerpID: "p", UserID: "u1"})

	wrong := randKey(t)
	result := DecryptUserRecord(wrong, entries)
	require.Empty(t, result.Records)
	require.Len(t, result.Malformed, len(entries))
}
