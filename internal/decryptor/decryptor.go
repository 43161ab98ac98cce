// Package decryptor implements the Decryptor: opening an OC's bucket of
// submissions into shares, pairing them to reconstruct each matching
// index's shared secret, and decrypting the records it authorizes.
package decryptor

import (
	"encoding/json"
	"math/big"

	"github.com/optioncounsel/escrow/internal/bucket"
	"github.com/optioncounsel/escrow/internal/codec"
	"github.com/optioncounsel/escrow/internal/field"
	"github.com/optioncounsel/escrow/internal/model"
	"github.com/optioncounsel/escrow/internal/primitives"
)

const (
	adRecordKey = "record key"
	adRecord    = "record"
)

// Result is the output of a Decrypt/DecryptFast call.
type Result struct {
	Records   []model.Record
	Malformed []model.Malformed
	// BucketSizes holds the count of successfully reconstructed records
	// for each matching-index bucket that yielded at least one, in the
	// order buckets were processed. Callers use it to observe the
	// distribution of pair reconstructions per bucket.
	BucketSizes []int
}

type openShare struct {
	id            string
	matchingIndex string
	point         field.Point
	encRecordKey  string
	encRecord     string
}

// Decrypt runs the O(n^2) try-every-partner pairing loop over every
// bucket formed by matching index.
func Decrypt(entries []model.EncryptedData, ocPublic, ocSecret [primitives.KeySize]byte) Result {
	buckets, malformed, shares := openAll(entries, ocPublic, ocSecret)
	if buckets == nil {
		return Result{Malformed: malformed}
	}

	result := Result{Malformed: malformed}

	for _, group := range buckets {
		recs, mal := pairAndReconstruct(group, shares)
		result.Records = append(result.Records, recs...)
		result.Malformed = append(result.Malformed, mal...)
		if len(recs) > 0 {
			result.BucketSizes = append(result.BucketSizes, len(recs))
		}
	}

	return result
}

// DecryptFast is an O(n) bucket-first alternate to Decrypt: it
// reconstructs k once per bucket from the first pair of shares that
// verifies, then AEAD-decrypts every remaining share against that k
// instead of trying every pair. External contract matches Decrypt.
func DecryptFast(entries []model.EncryptedData, ocPublic, ocSecret [primitives.KeySize]byte) Result {
	buckets, malformed, shares := openAll(entries, ocPublic, ocSecret)
	if buckets == nil {
		return Result{Malformed: malformed}
	}

	result := Result{Malformed: malformed}

	for _, group := range buckets {
		recs, mal := reconstructBucketFast(group, shares)
		result.Records = append(result.Records, recs...)
		result.Malformed = append(result.Malformed, mal...)
		if len(recs) > 0 {
			result.BucketSizes = append(result.BucketSizes, len(recs))
		}
	}

	return result
}

func reconstructBucketFast(group []model.EncryptedData, shares map[string]openShare) (records []model.Record, malformed []model.Malformed) {
	var list []openShare
	for _, e := range group {
		if s, ok := shares[e.ID]; ok {
			list = append(list, s)
		}
	}

	if len(list) < 2 {
		return nil, nil
	}

	k, bootstrapped := bootstrapKey(list)
	if !bootstrapped {
		for _, s := range list {
			malformed = append(malformed, model.New(s.id, model.KindSymmetricDecryptFailure, nil))
		}
		return nil, malformed
	}
	defer primitives.Wipe(k)

	for _, s := range list {
		rec, ok := openRecordKeyAndRecord(s, k)
		if !ok {
			malformed = append(malformed, model.New(s.id, model.KindSymmetricDecryptFailure, nil))
			continue
		}
		records = append(records, rec)
	}

	return records, malformed
}

// bootstrapKey finds the first pair in list whose reconstructed intercept
// actually opens a record key, establishing the bucket's shared secret.
func bootstrapKey(list []openShare) ([]byte, bool) {
	for i := 0; i < len(list); i++ {
		for j := i + 1; j < len(list); j++ {
			slope, valid := field.DeriveSlope(list[i].point, list[j].point)
			if !valid {
				continue
			}

			k := codec.IntToBytes(field.Intercept(list[i].point, slope))
			if _, ok := openRecordKeyAndRecord(list[i], k); ok {
				return k, true
			}
		}
	}

	return nil, false
}

// openAll runs bucket sanity (step 1) and sealed-box opening (step 2),
// returning the surviving per-index share groups keyed by id.
func openAll(
	entries []model.EncryptedData,
	ocPublic, ocSecret [primitives.KeySize]byte,
) (buckets map[string][]model.EncryptedData, malformed []model.Malformed, shares map[string]openShare) {
	buckets, malformed = bucket.Group(entries)
	if len(buckets) == 0 {
		return nil, malformed, nil
	}

	shares = make(map[string]openShare)

	for _, group := range buckets {
		for _, e := range group {
			s, err := openOne(e, ocPublic, ocSecret)
			if err != nil {
				malformed = append(malformed, model.New(e.ID, model.KindAsymmetricDecryptFailure, err))
				continue
			}
			shares[e.ID] = s
		}
	}

	return buckets, malformed, shares
}

func openOne(e model.EncryptedData, ocPublic, ocSecret [primitives.KeySize]byte) (openShare, error) {
	sealed, err := codec.B64Decode(e.EncOC)
	if err != nil {
		return openShare{}, err
	}

	plaintext, err := primitives.SealedBoxOpen(sealed, ocPublic, ocSecret)
	if err != nil {
		return openShare{}, err
	}

	var share model.Share
	if err := json.Unmarshal(plaintext, &share); err != nil {
		return openShare{}, err
	}

	x, ok := new(big.Int).SetString(share.X, 10)
	if !ok {
		return openShare{}, primitives.ErrSealedBoxOpenFailed
	}
	y, ok := new(big.Int).SetString(share.Y, 10)
	if !ok {
		return openShare{}, primitives.ErrSealedBoxOpenFailed
	}

	return openShare{
		id:            e.ID,
		matchingIndex: e.MatchingIndex,
		point:         field.Point{X: x, Y: y},
		encRecordKey:  share.EncRecordKey,
		encRecord:     e.EncRecord,
	}, nil
}

// pairAndReconstruct is the pivot-and-try-every-partner reconstruction
// loop, restricted to the shares belonging to a single bucket (a single
// matching index).
func pairAndReconstruct(group []model.EncryptedData, shares map[string]openShare) (records []model.Record, malformed []model.Malformed) {
	pending := make(map[string]openShare)
	for _, e := range group {
		if s, ok := shares[e.ID]; ok {
			pending[e.ID] = s
		}
	}

	if len(pending) < 2 {
		return nil, nil
	}

	decrypted := make(map[string]openShare)

	for len(pending) > 0 {
		var i1 string
		var s1 openShare
		for id, s := range pending {
			i1, s1 = id, s
			break
		}

		rec, matched := tryAgainstDecrypted(s1, decrypted)
		if matched {
			records = append(records, rec)
			decrypted[i1] = s1
			delete(pending, i1)
			continue
		}

		rec1, rec2, i2, s2, matchedPair := tryAgainstPending(i1, s1, pending)
		if matchedPair {
			records = append(records, rec1, rec2)
			decrypted[i1] = s1
			decrypted[i2] = s2
			delete(pending, i2)
			delete(pending, i1)
			continue
		}

		malformed = append(malformed, model.New(i1, model.KindSymmetricDecryptFailure, nil))
		delete(pending, i1)
	}

	return records, malformed
}

func tryAgainstDecrypted(s1 openShare, decrypted map[string]openShare) (model.Record, bool) {
	for _, s2 := range decrypted {
		rec, ok := reconstructAndOpen(s1, s2)
		if ok {
			return rec, true
		}
	}
	return model.Record{}, false
}

// tryAgainstPending attempts every remaining pending partner for s1; both
// shares must decrypt for the pair to count.
func tryAgainstPending(i1 string, s1 openShare, pending map[string]openShare) (rec1, rec2 model.Record, i2 string, s2 openShare, ok bool) {
	for id, candidate := range pending {
		if id == i1 {
			continue
		}

		slope, valid := field.DeriveSlope(s1.point, candidate.point)
		if !valid {
			continue
		}
		k := codec.IntToBytes(field.Intercept(s1.point, slope))

		r1, ok1 := openRecordKeyAndRecord(s1, k)
		if !ok1 {
			continue
		}
		r2, ok2 := openRecordKeyAndRecord(candidate, k)
		if !ok2 {
			continue
		}

		return r1, r2, id, candidate, true
	}

	return model.Record{}, model.Record{}, "", openShare{}, false
}

func reconstructAndOpen(s1, s2 openShare) (model.Record, bool) {
	slope, valid := field.DeriveSlope(s1.point, s2.point)
	if !valid {
		return model.Record{}, false
	}

	k := codec.IntToBytes(field.Intercept(s1.point, slope))

	return openRecordKeyAndRecord(s1, k)
}

func openRecordKeyAndRecord(s openShare, k []byte) (model.Record, bool) {
	ct, nonce, err := codec.ParseFrame(s.encRecordKey)
	if err != nil {
		return model.Record{}, false
	}

	recordKeyB64, err := primitives.AEADDecrypt(k, ct, nonce, []byte(adRecordKey+s.matchingIndex))
	if err != nil {
		return model.Record{}, false
	}

	recordKey, err := codec.B64Decode(string(recordKeyB64))
	if err != nil {
		return model.Record{}, false
	}
	defer primitives.Wipe(recordKey)

	rct, rnonce, err := codec.ParseFrame(s.encRecord)
	if err != nil {
		return model.Record{}, false
	}

	plaintext, err := primitives.AEADDecrypt(recordKey, rct, rnonce, []byte(adRecord+s.matchingIndex))
	if err != nil {
		return model.Record{}, false
	}

	var rec model.Record
	if err := json.Unmarshal(plaintext, &rec); err != nil {
		return model.Record{}, false
	}

	return rec, true
}
