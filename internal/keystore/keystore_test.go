package keystore_test

import (
	"encoding/base64"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/optioncounsel/escrow/internal/keystore"
)

func writeYAML(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "keys.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))
	return path
}

func TestLoadValid(t *testing.T) {
	key := make([]byte, 32)
	for i := range key {
		key[i] = byte(i)
	}
	encoded := base64.StdEncoding.EncodeToString(key)

	path := writeYAML(t, "operatingCompanies:\n  - id: oc1\n    publicKey: \""+encoded+"\"\n")

	keys, err := keystore.Load(path)
	require.NoError(t, err)
	require.Len(t, keys, 1)

	got := keys["oc1"]
	require.Equal(t, key, got[:])
}

func TestLoadBadKeyLength(t *testing.T) {
	encoded := base64.StdEncoding.EncodeToString([]byte("too short"))
	path := writeYAML(t, "operatingCompanies:\n  - id: oc1\n    publicKey: \""+encoded+"\"\n")

	_, err := keystore.Load(path)
	require.Error(t, err)
}

func TestLoadMissingID(t *testing.T) {
	path := writeYAML(t, "operatingCompanies:\n  - publicKey: \"AAAA\"\n")

	_, err := keystore.Load(path)
	require.Error(t, err)
}
