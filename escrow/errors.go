package escrow

import "github.com/optioncounsel/escrow/internal/model"

// Sentinel errors, one per Kind. Every Malformed.Error returned by this
// package satisfies errors.Is against exactly one of these.
var (
	ErrNoOCKeys                 = model.ErrNoOCKeys
	ErrMissingFields            = model.ErrMissingFields
	ErrKeyDerivationFailure     = model.ErrKeyDerivationFailure
	ErrNotEnoughMatches         = model.ErrNotEnoughMatches
	ErrMatchingIndexSingleton   = model.ErrMatchingIndexSingleton
	ErrAsymmetricDecryptFailure = model.ErrAsymmetricDecryptFailure
	ErrSymmetricDecryptFailure  = model.ErrSymmetricDecryptFailure
	ErrImproperKeyLength        = model.ErrImproperKeyLength
)
