package db

import (
	"slices"

	"github.com/looplj/datavault/internal/objects"
)

func (s *State) Producers(id objects.DatasetID) []objects.ProducerState {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return slices.Clone(s.producers[id])
}

// IsProducer reports whether identity holds an enabled producer state on the dataset.
func (s *State) IsProducer(id objects.DatasetID, identity objects.Identity) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.isProducer(id, identity)
}

func (s *State) isProducer(id objects.DatasetID, identity objects.Identity) bool {
	return slices.ContainsFunc(s.producers[id], func(p objects.ProducerState) bool {
		return p.Identity == identity && p.Enabled
	})
}

func (s *State) AddProducer(id objects.DatasetID, identity objects.Identity) objects.ProducerState {
	s.mu.Lock()
	defer s.mu.Unlock()

	state := objects.ProducerState{Identity: identity, Enabled: true, RegisteredAt: s.clock.Now()}
	s.producers[id] = append(s.producers[id], state)

	return state
}

// RemoveProducer drops every state held by identity and returns how many were removed.
func (s *State) RemoveProducer(id objects.DatasetID, identity objects.Identity) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	list, ok := s.producers[id]
	if !ok {
		return 0
	}

	kept := slices.DeleteFunc(slices.Clone(list), func(p objects.ProducerState) bool {
		return p.Identity == identity
	})
	s.producers[id] = kept

	return len(list) - len(kept)
}

func (s *State) DatasetsWhereProducer(identity objects.Identity) []objects.DatasetID {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var ids []objects.DatasetID

	for id := range s.producers {
		if s.isProducer(id, identity) {
			ids = append(ids, id)
		}
	}

	slices.Sort(ids)

	return ids
}
