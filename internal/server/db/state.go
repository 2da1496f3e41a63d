// Package db owns the in-memory store. Every exported method of State is one atomic step.
package db

import (
	"slices"
	"strings"
	"sync"
	"time"

	"go.uber.org/fx"

	"github.com/looplj/datavault/internal/objects"
	"github.com/looplj/datavault/internal/pkg/xtime"
)

type State struct {
	mu sync.RWMutex

	clock     xtime.Clock
	putPolicy PutPolicy

	datasets  map[objects.DatasetID]objects.DatasetConfiguration
	owners    map[objects.DatasetID]objects.Identity
	producers map[objects.DatasetID][]objects.ProducerState
	entries   map[objects.DatasetID][]objects.DatasetEntry

	tokens      map[objects.Identity]objects.AnalyticsToken
	tokenIndex  map[string]objects.Identity
	queries     []objects.QueryRecord
	nextDataset objects.DatasetID
	nextQueryID uint64

	// beforeSweep runs ahead of each per-dataset GDPR sweep step.
	beforeSweep func(objects.DatasetID)
}

type Params struct {
	fx.In

	Config Config
	Clock  xtime.Clock `optional:"true"`
}

func NewState(params Params) *State {
	return New(params.Config, params.Clock)
}

func New(cfg Config, clock xtime.Clock) *State {
	policy := cfg.PutPolicy
	if policy == "" {
		policy = PutPolicyReplace
	}

	s := &State{
		clock:     xtime.OrSystem(clock),
		putPolicy: policy,
	}
	s.reset()

	return s
}

func (s *State) reset() {
	s.datasets = map[objects.DatasetID]objects.DatasetConfiguration{}
	s.owners = map[objects.DatasetID]objects.Identity{}
	s.producers = map[objects.DatasetID][]objects.ProducerState{}
	s.entries = map[objects.DatasetID][]objects.DatasetEntry{}
	s.tokens = map[objects.Identity]objects.AnalyticsToken{}
	s.tokenIndex = map[string]objects.Identity{}
	s.queries = nil
	s.nextDataset = 1
	s.nextQueryID = 1
}

func (s *State) Now() time.Time {
	return s.clock.Now()
}

// CreateDataset registers a dataset owned by owner, who also becomes its first enabled producer.
func (s *State) CreateDataset(owner objects.Identity, cfg objects.DatasetConfiguration) objects.Dataset {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	id := s.nextDataset
	s.nextDataset++

	cfg.CreatedAt = now
	cfg.UpdatedAt = now
	s.datasets[id] = cfg
	s.owners[id] = owner
	s.producers[id] = []objects.ProducerState{{Identity: owner, Enabled: true, RegisteredAt: now}}

	return objects.Dataset{ID: id, DatasetConfiguration: cfg}
}

// UpdateDataset applies fn to a copy of the configuration and stores the result when fn succeeds.
// hasEntries tells fn whether the dataset already holds entries.
func (s *State) UpdateDataset(id objects.DatasetID, fn func(cfg *objects.DatasetConfiguration, hasEntries bool) error) (objects.Dataset, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cfg, ok := s.datasets[id]
	if !ok {
		return objects.Dataset{}, false, nil
	}

	cfg.Dimensions = slices.Clone(cfg.Dimensions)

	if err := fn(&cfg, len(s.entries[id]) > 0); err != nil {
		return objects.Dataset{}, true, err
	}

	cfg.UpdatedAt = s.clock.Now()
	s.datasets[id] = cfg

	return objects.Dataset{ID: id, DatasetConfiguration: cfg}, true, nil
}

// DeleteDataset destroys metadata, ownership, producers and entries together.
func (s *State) DeleteDataset(id objects.DatasetID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.datasets[id]; !ok {
		return false
	}

	delete(s.datasets, id)
	delete(s.owners, id)
	delete(s.producers, id)
	delete(s.entries, id)

	return true
}

func (s *State) GetDataset(id objects.DatasetID) (objects.Dataset, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cfg, ok := s.datasets[id]
	if !ok {
		return objects.Dataset{}, false
	}

	return objects.Dataset{ID: id, DatasetConfiguration: cfg}, true
}

// ListDatasets returns datasets ordered by id, optionally keeping only those accepted by match.
func (s *State) ListDatasets(match func(objects.Dataset) bool) []objects.Dataset {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]objects.Dataset, 0, len(s.datasets))

	for _, id := range s.sortedDatasetIDs() {
		ds := objects.Dataset{ID: id, DatasetConfiguration: s.datasets[id]}
		if match == nil || match(ds) {
			out = append(out, ds)
		}
	}

	return out
}

// SearchDatasets matches text case-insensitively against name and description.
func (s *State) SearchDatasets(text string) []objects.Dataset {
	needle := strings.ToLower(text)

	return s.ListDatasets(func(ds objects.Dataset) bool {
		return strings.Contains(strings.ToLower(ds.Name), needle) ||
			strings.Contains(strings.ToLower(ds.Description), needle)
	})
}

func (s *State) sortedDatasetIDs() []objects.DatasetID {
	ids := make([]objects.DatasetID, 0, len(s.datasets))
	for id := range s.datasets {
		ids = append(ids, id)
	}

	slices.Sort(ids)

	return ids
}

func (s *State) Owner(id objects.DatasetID) (objects.Identity, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	owner, ok := s.owners[id]

	return owner, ok
}

func (s *State) OwnedDatasets(owner objects.Identity) []objects.DatasetID {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var ids []objects.DatasetID

	for _, id := range s.sortedDatasetIDs() {
		if s.owners[id] == owner {
			ids = append(ids, id)
		}
	}

	return ids
}

// Ownerships groups dataset ids by owner, owners in order of their first dataset.
func (s *State) Ownerships() []objects.DatasetOwnership {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var (
		out   []objects.DatasetOwnership
		index = map[objects.Identity]int{}
	)

	for _, id := range s.sortedDatasetIDs() {
		owner := s.owners[id]

		i, ok := index[owner]
		if !ok {
			i = len(out)
			index[owner] = i
			out = append(out, objects.DatasetOwnership{Owner: owner})
		}

		out[i].DatasetIDs = append(out[i].DatasetIDs, id)
	}

	return out
}
