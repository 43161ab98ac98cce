// Package bucket implements the Bucketer: grouping a flat list of
// EncryptedData by matching index, and flagging indices that appear only
// once as malformed rather than lettings them poison a pairing attempt.
package bucket

import (
	"github.com/optioncounsel/escrow/internal/model"
)

// Group partitions entries by MatchingIndex. Any index backed by exactly
// one entry produces a MatchingIndexSingleton Malformed record for that
// entry's id; the remaining, correctly-paired buckets are still returned.
//
// An empty or single-entry input yields NotEnoughMatches instead of
// running the grouping pass at all.
func Group(entries []model.EncryptedData) (buckets map[string][]model.EncryptedData, malformed []model.Malformed) {
	if len(entries) < 2 {
		return nil, []model.Malformed{model.New(model.IDAll, model.KindNotEnoughMatches, nil)}
	}

	byIndex := make(map[string][]model.EncryptedData)
	for _, e := range entries {
		byIndex[e.MatchingIndex] = append(byIndex[e.MatchingIndex], e)
	}

	buckets = make(map[string][]model.EncryptedData, len(byIndex))
	for idx, group := range byIndex {
		if len(group) == 1 {
			malformed = append(malformed, model.New(group[0].ID, model.KindMatchingIndexSingleton, nil))
			continue
		}
		buckets[idx] = group
	}

	return buckets, malformed
}
