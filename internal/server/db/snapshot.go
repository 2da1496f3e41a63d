package db

import (
	"cmp"
	"slices"

	"github.com/samber/lo"

	"github.com/looplj/datavault/internal/objects"
)

// Export copies the whole store into a snapshot. Version is left for the caller to stamp.
func (s *State) Export() objects.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := objects.Snapshot{
		Timestamp:     s.clock.Now(),
		NextDatasetID: s.nextDataset,
		NextQueryID:   s.nextQueryID,
		Queries:       slices.Clone(s.queries),
		Tokens:        lo.Values(s.tokens),
	}

	slices.SortFunc(snap.Tokens, func(a, b objects.AnalyticsToken) int {
		return cmp.Compare(a.Identity, b.Identity)
	})

	for _, id := range s.sortedDatasetIDs() {
		snap.Datasets = append(snap.Datasets, objects.DatasetRecord{
			ID:     id,
			Owner:  s.owners[id],
			Config: s.datasets[id],
		})
	}

	for _, id := range sortedKeys(s.entries) {
		snap.Entries = append(snap.Entries, objects.DatasetEntries{
			DatasetID: id,
			Entries: lo.Map(s.entries[id], func(e objects.DatasetEntry, _ int) objects.DatasetEntry {
				return e.Clone()
			}),
		})
	}

	for _, id := range sortedKeys(s.producers) {
		snap.Producers = append(snap.Producers, objects.DatasetProducers{
			DatasetID: id,
			Producers: slices.Clone(s.producers[id]),
		})
	}

	return snap
}

// Import replaces the whole store with snap.
func (s *State) Import(snap objects.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.reset()

	for _, d := range snap.Datasets {
		s.datasets[d.ID] = d.Config
		s.owners[d.ID] = d.Owner
	}

	for _, e := range snap.Entries {
		s.entries[e.DatasetID] = e.Entries
	}

	for _, p := range snap.Producers {
		s.producers[p.DatasetID] = p.Producers
	}

	for _, t := range snap.Tokens {
		s.tokens[t.Identity] = t
		s.tokenIndex[t.Token] = t.Identity
	}

	s.queries = snap.Queries

	if snap.NextDatasetID > 0 {
		s.nextDataset = snap.NextDatasetID
	}

	if snap.NextQueryID > 0 {
		s.nextQueryID = snap.NextQueryID
	}
}

func sortedKeys[V any](m map[objects.DatasetID]V) []objects.DatasetID {
	keys := lo.Keys(m)
	slices.Sort(keys)

	return keys
}
