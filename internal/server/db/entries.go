package db

import (
	"fmt"
	"slices"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/samber/lo"

	"github.com/looplj/datavault/internal/objects"
)

// PutEntries stamps and stores inputs for producer. A dataset without a collection gets exactly this
// batch in input order; otherwise every new entry is prepended, newest first.
// Under the replace policy a ByUser entry first removes the entries sharing its key and inherits
// the earliest created_at among them. Unregistered datasets are ignored and 0 is returned.
func (s *State) PutEntries(id objects.DatasetID, producer objects.Identity, inputs []objects.DatasetEntryInput) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.datasets[id]; !ok {
		return 0
	}

	now := s.clock.Now()

	collection, exists := s.entries[id]
	if !exists {
		collection = make([]objects.DatasetEntry, 0, len(inputs))
	}

	for _, in := range inputs {
		entry := objects.DatasetEntry{
			Key:       in.Key,
			Producer:  producer,
			Values:    slices.Clone(in.Values),
			CreatedAt: now,
			UpdatedAt: now,
		}

		if user, ok := in.Key.(objects.ByUser); ok && s.putPolicy == PutPolicyReplace {
			collection, entry.CreatedAt = removeUserEntries(collection, objects.Identity(user), now)
		}

		if exists {
			collection = slices.Insert(collection, 0, entry)
		} else {
			collection = append(collection, entry)
		}
	}

	s.entries[id] = collection

	return len(inputs)
}

// removeUserEntries drops the ByUser(identity) entries and returns the earliest created_at seen, or
// fallback when none matched.
func removeUserEntries(collection []objects.DatasetEntry, identity objects.Identity, fallback time.Time) ([]objects.DatasetEntry, time.Time) {
	earliest := fallback

	kept := collection[:0]

	for _, e := range collection {
		if objects.IsUserKey(e.Key, identity) {
			if e.CreatedAt.Before(earliest) {
				earliest = e.CreatedAt
			}

			continue
		}

		kept = append(kept, e)
	}

	clear(collection[len(kept):])

	return kept, earliest
}

// DeleteEntry removes every ByUser(identity) entry of the dataset. It is idempotent.
func (s *State) DeleteEntry(id objects.DatasetID, identity objects.Identity) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.deleteUserEntries(id, identity)
}

func (s *State) deleteUserEntries(id objects.DatasetID, identity objects.Identity) int {
	collection, ok := s.entries[id]
	if !ok {
		return 0
	}

	before := len(collection)
	s.entries[id] = slices.DeleteFunc(collection, func(e objects.DatasetEntry) bool {
		return objects.IsUserKey(e.Key, identity)
	})

	return before - len(s.entries[id])
}

// DeleteAllEntriesForIdentity sweeps every dataset for ByUser(identity) entries.
// A failing dataset is reported in the returned error and does not stop the others.
func (s *State) DeleteAllEntriesForIdentity(identity objects.Identity) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var (
		removed int
		errs    *multierror.Error
	)

	for _, id := range sortedKeys(s.entries) {
		n, err := s.sweepDataset(id, identity)
		if err != nil {
			errs = multierror.Append(errs, err)
			continue
		}

		removed += n
	}

	return removed, errs.ErrorOrNil()
}

func (s *State) sweepDataset(id objects.DatasetID, identity objects.Identity) (n int, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("sweep dataset %d: %v", id, r)
		}
	}()

	if s.beforeSweep != nil {
		s.beforeSweep(id)
	}

	return s.deleteUserEntries(id, identity), nil
}

// ReadEntries projects to allowed when it is non-nil, then truncates to limit when it is non-nil.
// The second result is false when the dataset has no collection.
func (s *State) ReadEntries(id objects.DatasetID, limit *int, allowed []objects.DimensionID) ([]objects.DatasetEntry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	collection, ok := s.entries[id]
	if !ok {
		return nil, false
	}

	n := len(collection)
	if limit != nil && *limit >= 0 && *limit < n {
		n = *limit
	}

	out := make([]objects.DatasetEntry, 0, n)

	var set map[objects.DimensionID]struct{}
	if allowed != nil {
		set = objects.AccessGrant{Allowed: allowed}.AllowedSet()
	}

	for _, e := range collection[:n] {
		if set != nil {
			out = append(out, e.Project(set))
		} else {
			out = append(out, e.Clone())
		}
	}

	return out, true
}

// UserEntries returns the ByUser(identity) entries of the dataset.
func (s *State) UserEntries(id objects.DatasetID, identity objects.Identity) []objects.DatasetEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []objects.DatasetEntry

	for _, e := range s.entries[id] {
		if objects.IsUserKey(e.Key, identity) {
			out = append(out, e.Clone())
		}
	}

	return out
}

// EntryCounts reports 0 for datasets without a collection.
func (s *State) EntryCounts(ids []objects.DatasetID) []objects.EntryCount {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return lo.Map(ids, func(id objects.DatasetID, _ int) objects.EntryCount {
		return objects.EntryCount{DatasetID: id, Count: len(s.entries[id])}
	})
}

// ProducerStats counts entries per producer in order of first appearance.
func (s *State) ProducerStats(id objects.DatasetID) []objects.ProducerStats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var (
		out   []objects.ProducerStats
		index = map[objects.Identity]int{}
	)

	for _, e := range s.entries[id] {
		i, ok := index[e.Producer]
		if !ok {
			i = len(out)
			index[e.Producer] = i
			out = append(out, objects.ProducerStats{Producer: e.Producer})
		}

		out[i].Count++
	}

	return out
}

// EntryTimestamps returns the created_at of every entry in stored order.
func (s *State) EntryTimestamps(id objects.DatasetID) ([]time.Time, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	collection, ok := s.entries[id]
	if !ok {
		return nil, false
	}

	return lo.Map(collection, func(e objects.DatasetEntry, _ int) time.Time {
		return e.CreatedAt
	}), true
}
