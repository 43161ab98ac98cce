package model

import "errors"

// Sentinel errors, one per Kind, so callers can use errors.Is against the
// public escrow package's re-exported aliases instead of string-matching
// Malformed.Kind.
var (
	ErrNoOCKeys                 = errors.New("escrow: no OC keys provided")
	ErrMissingFields            = errors.New("escrow: record has missing fields")
	ErrKeyDerivationFailure     = errors.New("escrow: key derivation failed")
	ErrNotEnoughMatches         = errors.New("escrow: fewer than two entries to decrypt")
	ErrMatchingIndexSingleton   = errors.New("escrow: matching index has only one entry")
	ErrAsymmetricDecryptFailure = errors.New("escrow: sealed box open failed")
	ErrSymmetricDecryptFailure  = errors.New("escrow: AEAD authentication failed")
	ErrImproperKeyLength        = errors.New("escrow: improper key length")
)

// KindError returns the sentinel error for a Kind.
func KindError(k Kind) error {
	switch k {
	case KindNoOCKeys:
		return ErrNoOCKeys
	case KindMissingFields:
		return ErrMissingFields
	case KindKeyDerivationFailure:
		return ErrKeyDerivationFailure
	case KindNotEnoughMatches:
		return ErrNotEnoughMatches
	case KindMatchingIndexSingleton:
		return ErrMatchingIndexSingleton
	case KindAsymmetricDecryptFailure:
		return ErrAsymmetricDecryptFailure
	case KindSymmetricDecryptFailure:
		return ErrSymmetricDecryptFailure
	case KindImproperKeyLength:
		return ErrImproperKeyLength
	default:
		return nil
	}
}

// New builds a Malformed entry for id/kind, wrapping cause (if any) with
// the kind's sentinel so errors.Is works against both.
func New(id string, kind Kind, cause error) Malformed {
	sentinel := KindError(kind)

	var err error
	switch {
	case cause != nil && sentinel != nil:
		err = &wrapped{sentinel: sentinel, cause: cause}
	case sentinel != nil:
		err = sentinel
	default:
		err = cause
	}

	return Malformed{ID: id, Kind: kind, Error: err}
}

type wrapped struct {
	sentinel error
	cause    error
}

func (w *wrapped) Error() string {
	return w.sentinel.Error() + ": " + w.cause.Error()
}

func (w *wrapped) Unwrap() []error {
	return []error{w.sentinel, w.cause}
}
