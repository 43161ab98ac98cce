// Package escrow is the public surface of the matching-escrow
// cryptographic core: independent encryption of per-perpetrator reports
// that become jointly decryptable only once a second report names the
// same perpetrator.
package escrow

import "github.com/optioncounsel/escrow/internal/model"

// Record is the plaintext a user submits.
type Record = model.Record

// EncryptedData is the per-submission, per-OC ciphertext unit persisted
// server-side.
type EncryptedData = model.EncryptedData

// EncryptedMap is the π -> OCid -> []EncryptedData structure produced by
// Encrypt.
type EncryptedMap = model.EncryptedMap

// Kind classifies a Malformed entry's failure.
type Kind = model.Kind

// Malformed reports one recoverable failure from a batch operation.
type Malformed = model.Malformed

// Error-kind constants, re-exported for callers that branch on Kind.
const (
	KindNoOCKeys                 = model.KindNoOCKeys
	KindMissingFields            = model.KindMissingFields
	KindKeyDerivationFailure     = model.KindKeyDerivationFailure
	KindNotEnoughMatches         = model.KindNotEnoughMatches
	KindMatchingIndexSingleton   = model.KindMatchingIndexSingleton
	KindAsymmetricDecryptFailure = model.KindAsymmetricDecryptFailure
	KindSymmetricDecryptFailure  = model.KindSymmetricDecryptFailure
	KindImproperKeyLength        = model.KindImproperKeyLength
)
