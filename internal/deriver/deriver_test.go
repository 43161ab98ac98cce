package deriver

import (
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDeriveDeterministic(t *testing.T) {
	var randID [32]byte
	_, err := rand.Read(randID[:])
	require.NoError(t, err)

	d1, err := Derive(randID)
	require.NoError(t, err)
	d2, err := Derive(randID)
	require.NoError(t, err)

	require.Equal(t, d1.MatchingIndex, d2.MatchingIndex)
	require.Equal(t, d1.Key, d2.Key)
	require.Equal(t, 0, d1.Slope.Cmp(d2.Slope))
}

func TestDeriveDistinctRandIDs(t *testing.T) {
	var a, b [32]byte
	_, err := rand.Read(a[:])
	require.NoError(t, err)
	_, err = rand.Read(b[:])
	require.NoError(t, err)

	da, err := Derive(a)
	require.NoError(t, err)
	db, err := Derive(b)
	require.NoError(t, err)

	require.NotEqual(t, da.MatchingIndex, db.MatchingIndex)
}
