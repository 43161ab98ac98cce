// Package encryptor implements the Encryptor: building one user's
// submission into layered ciphertexts fanned out to every Options
// Counselor.
package encryptor

import (
	"encoding/json"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"

	"github.com/optioncounsel/escrow/internal/codec"
	"github.com/optioncounsel/escrow/internal/deriver"
	"github.com/optioncounsel/escrow/internal/field"
	"github.com/optioncounsel/escrow/internal/model"
	"github.com/optioncounsel/escrow/internal/primitives"
)

const (
	adRecordKey = "record key"
	adUserEdit  = "user edit"
	adRecord    = "record"
)

// Result is the output of a single Encrypt call.
type Result struct {
	Map       model.EncryptedMap
	Malformed []model.Malformed
}

// Encrypt builds one submission per randID, each fanned out across every
// OC in ocKeys, and merges them into a single EncryptedMap. Pre-condition
// failures abort the whole call with a single "All"-tagged Malformed
// entry; per-randID failures are independent and reported under the
// "encryption" id. now stamps every produced EncryptedData's CreatedAt;
// Encrypt never reads the system clock itself, so callers control it.
func Encrypt(randIDs [][32]byte, record model.Record, ocKeys map[string][primitives.KeySize]byte, userPassphrase [primitives.KeySize]byte, now func() time.Time) Result {
	if len(ocKeys) == 0 {
		return Result{Malformed: []model.Malformed{model.New(model.IDAll, model.KindNoOCKeys, nil)}}
	}

	if !record.Valid() {
		return Result{Malformed: []model.Malformed{model.New(model.IDAll, model.KindMissingFields, nil)}}
	}

	result := Result{Map: make(model.EncryptedMap)}

	for _, randID := range randIDs {
		entries, pi, err := encryptOne(randID, record, ocKeys, userPassphrase, now)
		if err != nil {
			result.Malformed = append(result.Malformed, model.New(model.IDEncryption, model.KindKeyDerivationFailure, err))
			continue
		}

		if result.Map[pi] == nil {
			result.Map[pi] = make(map[string][]model.EncryptedData)
		}

		for ocID, entry := range entries {
			result.Map[pi][ocID] = append(result.Map[pi][ocID], entry)
		}
	}

	return result
}

func encryptOne(
	randID [32]byte,
	record model.Record,
	ocKeys map[string][primitives.KeySize]byte,
	userPassphrase [primitives.KeySize]byte,
	now func() time.Time,
) (entries map[string]model.EncryptedData, matchingIndex string, err error) {
	derived, err := deriver.Derive(randID)
	if err != nil {
		return nil, "", err
	}

	u, err := shareX(record.UserID)
	if err != nil {
		return nil, "", fmt.Errorf("encryptor: share x-coordinate: %w", err)
	}

	s := field.Eval(derived.Slope, u, codec.BytesToInt(derived.Key))

	recordKey, err := primitives.RandomBytes(primitives.KeySize)
	if err != nil {
		return nil, "", fmt.Errorf("encryptor: generating record key: %w", err)
	}
	defer primitives.Wipe(recordKey)

	encRecordKey, err := aeadFrame(derived.Key, []byte(codec.B64Encode(recordKey)), adRecordKey, derived.MatchingIndex)
	if err != nil {
		return nil, "", fmt.Errorf("encryptor: sealing record key: %w", err)
	}

	encUser, err := aeadFrame(userPassphrase[:], []byte(codec.B64Encode(recordKey)), adUserEdit, derived.MatchingIndex)
	if err != nil {
		return nil, "", fmt.Errorf("encryptor: sealing user-edit key: %w", err)
	}

	recordJSON, err := json.Marshal(record)
	if err != nil {
		return nil, "", fmt.Errorf("encryptor: marshaling record: %w", err)
	}

	encRecord, err := aeadFrame(recordKey, recordJSON, adRecord, derived.MatchingIndex)
	if err != nil {
		return nil, "", fmt.Errorf("encryptor: sealing record: %w", err)
	}

	recordID, err := uuid.NewRandom()
	if err != nil {
		return nil, "", fmt.Errorf("encryptor: generating record id: %w", err)
	}

	share := model.Share{X: u.String(), Y: s.String(), EncRecordKey: encRecordKey}
	shareJSON, err := json.Marshal(share)
	if err != nil {
		return nil, "", fmt.Errorf("encryptor: marshaling share: %w", err)
	}

	createdAt := now().UTC().Format(time.RFC3339)

	entries = make(map[string]model.EncryptedData, len(ocKeys))
	for ocID, pkOC := range ocKeys {
		sealed, err := primitives.SealedBoxSeal(shareJSON, pkOC)
		if err != nil {
			return nil, "", fmt.Errorf("encryptor: sealing share to OC %q: %w", ocID, err)
		}

		entries[ocID] = model.EncryptedData{
			ID:            recordID.String(),
			MatchingIndex: derived.MatchingIndex,
			EncOC:         codec.B64Encode(sealed),
			EncUser:       encUser,
			EncRecord:     encRecord,
			CreatedAt:     createdAt,
		}
	}

	return entries, derived.MatchingIndex, nil
}

// shareX hashes userID with BLAKE2b and interprets the digest as a
// big-endian integer mod p.
func shareX(userID string) (*big.Int, error) {
	digest, err := primitives.GenericHash(32, nil, []byte(userID))
	if err != nil {
		return nil, err
	}

	return field.Mod(new(big.Int).SetBytes(digest)), nil
}

func aeadFrame(key, plaintext []byte, adPrefix, matchingIndex string) (string, error) {
	ad := []byte(adPrefix + matchingIndex)

	ct, nonce, err := primitives.AEADEncrypt(key, plaintext, ad)
	if err != nil {
		return "", err
	}

	return codec.FrameCiphertext(ct, nonce), nil
}
