// Package useredit implements the UserEditor: letting the original
// submitter decrypt and rotate their own record using only their
// passphrase, independent of any OC or the matching protocol.
package useredit

import (
	"encoding/json"

	"github.com/optioncounsel/escrow/internal/codec"
	"github.com/optioncounsel/escrow/internal/model"
	"github.com/optioncounsel/escrow/internal/primitives"
)

const (
	adUserEdit = "user edit"
	adRecord   = "record"
)

// Result is the output of DecryptUserRecord.
type Result struct {
	Records   []model.Record
	Malformed []model.Malformed
}

// DecryptUserRecord opens every per-OC copy of one user's submission
// independently; all entries should yield identical records (duplicate
// emission is acceptable by contract).
func DecryptUserRecord(passphrase [primitives.KeySize]byte, entries []model.EncryptedData) Result {
	var result Result

	for _, e := range entries {
		recordKey, err := unwrapRecordKey(passphrase, e)
		if err != nil {
			result.Malformed = append(result.Malformed, model.New(e.ID, model.KindSymmetricDecryptFailure, err))
			continue
		}

		rec, err := decryptRecord(recordKey, e)
		primitives.Wipe(recordKey)
		if err != nil {
			result.Malformed = append(result.Malformed, model.New(e.ID, model.KindSymmetricDecryptFailure, err))
			continue
		}

		result.Records = append(result.Records, rec)
	}

	return result
}

// UpdateUserRecord unwraps each entry's record key the same way, then
// rewrites eRecord in place with a fresh nonce and the new plaintext.
// Malformed entries are reported but do not halt iteration over the rest.
func UpdateUserRecord(passphrase [primitives.KeySize]byte, entries []model.EncryptedData, newRecord model.Record) []model.Malformed {
	var malformed []model.Malformed

	newRecordJSON, err := json.Marshal(newRecord)
	if err != nil {
		return []model.Malformed{model.New(model.IDAll, model.KindMissingFields, err)}
	}

	for i := range entries {
		e := &entries[i]

		recordKey, err := unwrapRecordKey(passphrase, *e)
		if err != nil {
			malformed = append(malformed, model.New(e.ID, model.KindSymmetricDecryptFailure, err))
			continue
		}

		ct, nonce, err := primitives.AEADEncrypt(recordKey, newRecordJSON, []byte(adRecord+e.MatchingIndex))
		primitives.Wipe(recordKey)
		if err != nil {
			malformed = append(malformed, model.New(e.ID, model.KindSymmetricDecryptFailure, err))
			continue
		}

		e.EncRecord = codec.FrameCiphertext(ct, nonce)
	}

	return malformed
}

// unwrapRecordKey decrypts eUser under the passphrase to recover the
// base64-encoded record key, then base64-decodes it: the AEAD plaintext
// is the base64 string, so it must be decoded once more before use as an
// AEAD key.
func unwrapRecordKey(passphrase [primitives.KeySize]byte, e model.EncryptedData) ([]byte, error) {
	ct, nonce, err := codec.ParseFrame(e.EncUser)
	if err != nil {
		return nil, err
	}

	recordKeyB64, err := primitives.AEADDecrypt(passphrase[:], ct, nonce, []byte(adUserEdit+e.MatchingIndex))
	if err != nil {
		return nil, err
	}

	return codec.B64Decode(string(recordKeyB64))
}

func decryptRecord(recordKey []byte, e model.EncryptedData) (model.Record, error) {
	ct, nonce, err := codec.ParseFrame(e.EncRecord)
	if err != nil {
		return model.Record{}, err
	}

	plaintext, err := primitives.AEADDecrypt(recordKey, ct, nonce, []byte(adRecord+e.MatchingIndex))
	if err != nil {
		return model.Record{}, err
	}

	var rec model.Record
	if err := json.Unmarshal(plaintext, &rec); err != nil {
		return model.Record{}, err
	}

	return rec, nil
}
