// Package model defines the data types shared across the escrow core's
// components: the plaintext Record, the ephemeral Share, the persisted
// EncryptedData unit, and the error-kind taxonomy every public operation
// folds its failures into.
package model

// Record is the plaintext a user submits: a named perpetrator and the
// submitter's own identity. Both fields are required to be non-empty.
type Record struct {
	PerpID string `json:"perpId"`
	UserID string `json:"userId"`
}

// Valid reports whether both Record fields are present.
func (r Record) Valid() bool {
	return r.PerpID != "" && r.UserID != ""
}

// Share is a point on the secret-sharing line, together with the record
// key it authorizes, as serialized inside a sealed box. X and Y are
// decimal strings rather than binary so the JSON form stays
// human-inspectable.
type Share struct {
	X            string `json:"x"`
	Y            string `json:"y"`
	EncRecordKey string `json:"eRecordKey"`
}

// EncryptedData is the per-submission, per-OC ciphertext unit persisted
// server-side.
type EncryptedData struct {
	ID            string `json:"id"`
	MatchingIndex string `json:"matchingIndex"`
	EncOC         string `json:"eOC"`
	EncUser       string `json:"eUser"`
	EncRecord     string `json:"eRecord"`
	// CreatedAt is an ambient bookkeeping field (RFC 3339), stamped by the
	// clock handed to the encryptor: time.Now unless the Engine was built
	// with WithClock; see SPEC_FULL.md §3.
	CreatedAt string `json:"createdAt,omitempty"`
}

// EncryptedMap is the nested π -> OCid -> []EncryptedData structure the
// server groups submissions into.
type EncryptedMap map[string]map[string][]EncryptedData

// Kind classifies a recoverable failure. It is a classification, not a
// type hierarchy: every recoverable failure becomes a Malformed entry
// tagged with one of these kinds plus the offending id.
type Kind string

const (
	KindNoOCKeys                 Kind = "NoOCKeys"
	KindMissingFields            Kind = "MissingFields"
	KindKeyDerivationFailure     Kind = "KeyDerivationFailure"
	KindNotEnoughMatches         Kind = "NotEnoughMatches"
	KindMatchingIndexSingleton   Kind = "MatchingIndexSingleton"
	KindAsymmetricDecryptFailure Kind = "AsymmetricDecryptFailure"
	KindSymmetricDecryptFailure  Kind = "SymmetricDecryptFailure"
	KindImproperKeyLength        Kind = "ImproperKeyLength"
)

// IDAll and IDEncryption are the two non-entry-specific ids a Malformed
// record may carry.
const (
	IDAll        = "All"
	IDEncryption = "encryption"
)

// Malformed reports one recoverable failure, tagged with the id of the
// offending submission (or IDAll / IDEncryption when the failure is not
// attributable to a single entry) so batch operations can proceed past it.
type Malformed struct {
	ID    string
	Kind  Kind
	Error error
}
