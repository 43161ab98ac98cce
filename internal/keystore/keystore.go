// Package keystore loads the OC id -> public key dictionary cmd/escrowctl
// reads from disk. The Engine API itself never touches YAML; it only ever
// accepts the parsed map[string][32]byte this package produces.
package keystore

import (
	"encoding/base64"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/optioncounsel/escrow/internal/primitives"
)

// Entry is one OC's id and base64-encoded public key, as it appears in
// the on-disk YAML dictionary.
type Entry struct {
	ID        string `yaml:"id"`
	PublicKey string `yaml:"publicKey"`
}

type document struct {
	OperatingCompanies []Entry `yaml:"operatingCompanies"`
}

// Load reads a YAML key dictionary from path and decodes every entry's
// base64 public key, rejecting any that isn't exactly KeySize bytes.
func Load(path string) (map[string][primitives.KeySize]byte, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("keystore: reading %s: %w", path, err)
	}

	var doc document
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("keystore: parsing %s: %w", path, err)
	}

	keys := make(map[string][primitives.KeySize]byte, len(doc.OperatingCompanies))

	for _, entry := range doc.OperatingCompanies {
		if entry.ID == "" {
			return nil, fmt.Errorf("keystore: %s: entry with empty id", path)
		}

		decoded, err := base64.StdEncoding.DecodeString(entry.PublicKey)
		if err != nil {
			return nil, fmt.Errorf("keystore: %s: decoding key for %q: %w", path, entry.ID, err)
		}
		if len(decoded) != primitives.KeySize {
			return nil, fmt.Errorf("keystore: %s: key for %q: %w", path, entry.ID, primitives.ErrImproperKeyLength)
		}

		var key [primitives.KeySize]byte
		copy(key[:], decoded)
		keys[entry.ID] = key
	}

	return keys, nil
}
