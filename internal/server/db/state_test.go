package db

import (
	"testing"
	"time"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/looplj/datavault/internal/objects"
	"github.com/looplj/datavault/internal/pkg/xtest"
	"github.com/looplj/datavault/internal/pkg/xtime"
)

var epoch = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestState(t *testing.T, policy PutPolicy) (*State, *xtime.ManualClock, objects.DatasetID) {
	t.Helper()

	clock := xtime.NewManualClock(epoch)
	s := New(Config{PutPolicy: policy}, clock)
	ds := s.CreateDataset("owner", objects.DatasetConfiguration{Name: "survey"})

	return s, clock, ds.ID
}

func userInput(user string, values ...objects.DatasetValue) objects.DatasetEntryInput {
	return objects.DatasetEntryInput{Key: objects.ByUser(user), Values: values}
}

func idInput(id uint32, values ...objects.DatasetValue) objects.DatasetEntryInput {
	return objects.DatasetEntryInput{Key: objects.ByID(id), Values: values}
}

func keysOf(entries []objects.DatasetEntry) []objects.RecordKey {
	return lo.Map(entries, func(e objects.DatasetEntry, _ int) objects.RecordKey { return e.Key })
}

func TestPutEntriesOrdering(t *testing.T) {
	s, _, id := newTestState(t, PutPolicyReplace)

	require.Equal(t, 2, s.PutEntries(id, "p", []objects.DatasetEntryInput{idInput(1), idInput(2)}))
	require.Equal(t, 2, s.PutEntries(id, "p", []objects.DatasetEntryInput{idInput(3), idInput(4)}))

	entries, ok := s.ReadEntries(id, nil, nil)
	require.True(t, ok)
	assert.Equal(t, []objects.RecordKey{objects.ByID(4), objects.ByID(3), objects.ByID(1), objects.ByID(2)}, keysOf(entries))

	for _, e := range entries {
		assert.Equal(t, objects.Identity("p"), e.Producer)
		assert.Equal(t, epoch, e.CreatedAt)
		assert.Equal(t, e.CreatedAt, e.UpdatedAt)
	}
}

func TestPutEntriesReplacePolicy(t *testing.T) {
	s, clock, id := newTestState(t, PutPolicyReplace)

	s.PutEntries(id, "p", []objects.DatasetEntryInput{userInput("u", objects.Metric(1, 1)), idInput(9)})

	clock.Advance(time.Hour)
	s.PutEntries(id, "p", []objects.DatasetEntryInput{userInput("u", objects.Metric(1, 2))})

	clock.Advance(time.Hour)
	s.PutEntries(id, "p", []objects.DatasetEntryInput{userInput("u", objects.Metric(1, 3)), userInput("u", objects.Metric(1, 4))})

	entries := s.UserEntries(id, "u")
	require.Len(t, entries, 1)
	assert.Equal(t, []objects.DatasetValue{objects.Metric(1, 4)}, entries[0].Values)
	assert.Equal(t, epoch, entries[0].CreatedAt)
	assert.Equal(t, epoch.Add(2*time.Hour), entries[0].UpdatedAt)

	all, _ := s.ReadEntries(id, nil, nil)
	assert.Len(t, all, 2)
}

func TestPutEntriesAppendPolicyAccumulates(t *testing.T) {
	s, _, id := newTestState(t, PutPolicyAppend)

	s.PutEntries(id, "p", []objects.DatasetEntryInput{userInput("u")})
	s.PutEntries(id, "p", []objects.DatasetEntryInput{userInput("u")})

	assert.Len(t, s.UserEntries(id, "u"), 2)
}

func TestPutEntriesUnregisteredDataset(t *testing.T) {
	s, _, _ := newTestState(t, PutPolicyReplace)

	assert.Equal(t, 0, s.PutEntries(42, "p", []objects.DatasetEntryInput{idInput(1)}))

	_, ok := s.ReadEntries(42, nil, nil)
	assert.False(t, ok)
}

func TestDeleteEntryIdempotent(t *testing.T) {
	s, _, id := newTestState(t, PutPolicyAppend)

	s.PutEntries(id, "p", []objects.DatasetEntryInput{userInput("u"), userInput("v"), userInput("u"), idInput(1)})

	assert.Equal(t, 2, s.DeleteEntry(id, "u"))

	after, _ := s.ReadEntries(id, nil, nil)
	assert.Equal(t, 0, s.DeleteEntry(id, "u"))

	again, _ := s.ReadEntries(id, nil, nil)
	assert.True(t, xtest.Equal(after, again), xtest.Diff(after, again))
	assert.Len(t, again, 2)

	assert.Equal(t, 0, s.DeleteEntry(99, "u"))
}

func TestDeleteAllEntriesForIdentity(t *testing.T) {
	s, _, first := newTestState(t, PutPolicyReplace)
	second := s.CreateDataset("owner", objects.DatasetConfiguration{Name: "b"}).ID
	third := s.CreateDataset("owner", objects.DatasetConfiguration{Name: "c"}).ID

	for _, id := range []objects.DatasetID{first, second, third} {
		s.PutEntries(id, "p", []objects.DatasetEntryInput{userInput("gone"), userInput("stays")})
	}

	removed, err := s.DeleteAllEntriesForIdentity("gone")
	require.NoError(t, err)
	assert.Equal(t, 3, removed)

	counts := s.EntryCounts([]objects.DatasetID{first, second, third})
	for _, c := range counts {
		assert.Equal(t, 1, c.Count)
	}
}

func TestDeleteAllEntriesForIdentityIsolatesFailures(t *testing.T) {
	s, _, first := newTestState(t, PutPolicyReplace)
	second := s.CreateDataset("owner", objects.DatasetConfiguration{Name: "b"}).ID
	third := s.CreateDataset("owner", objects.DatasetConfiguration{Name: "c"}).ID

	for _, id := range []objects.DatasetID{first, second, third} {
		s.PutEntries(id, "p", []objects.DatasetEntryInput{userInput("gone")})
	}

	s.beforeSweep = func(id objects.DatasetID) {
		if id == second {
			panic("corrupted collection")
		}
	}

	removed, err := s.DeleteAllEntriesForIdentity("gone")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sweep dataset 2")
	assert.Equal(t, 2, removed)

	assert.Empty(t, s.UserEntries(first, "gone"))
	assert.Len(t, s.UserEntries(second, "gone"), 1)
	assert.Empty(t, s.UserEntries(third, "gone"))
}

func TestReadEntriesProjectionAndLimit(t *testing.T) {
	s, _, id := newTestState(t, PutPolicyReplace)

	s.PutEntries(id, "p", []objects.DatasetEntryInput{
		idInput(1, objects.Attribute(1, "EU"), objects.Metric(2, 5)),
		idInput(2, objects.Attribute(1, "US"), objects.Metric(2, 7)),
		idInput(3, objects.Attribute(1, "EU"), objects.Metric(2, 1)),
	})

	limit := 2
	entries, ok := s.ReadEntries(id, &limit, []objects.DimensionID{2})
	require.True(t, ok)
	require.Len(t, entries, 2)

	for _, e := range entries {
		require.Len(t, e.Values, 1)
		assert.Equal(t, objects.DimensionID(2), e.Values[0].DimensionID)
	}

	entries[0].Values[0] = objects.Metric(2, 1000)

	fresh, _ := s.ReadEntries(id, nil, nil)
	assert.Equal(t, objects.Metric(2, 5), fresh[0].Values[1])
	assert.Len(t, fresh, 3)
}

func TestEntryCountsAndProducerStats(t *testing.T) {
	s, _, id := newTestState(t, PutPolicyReplace)

	s.PutEntries(id, "a", []objects.DatasetEntryInput{idInput(1), idInput(2)})
	s.PutEntries(id, "b", []objects.DatasetEntryInput{idInput(3)})
	s.PutEntries(id, "a", []objects.DatasetEntryInput{idInput(4)})

	assert.Equal(t, []objects.EntryCount{{DatasetID: id, Count: 4}, {DatasetID: 77, Count: 0}},
		s.EntryCounts([]objects.DatasetID{id, 77}))

	assert.Equal(t, []objects.ProducerStats{{Producer: "a", Count: 3}, {Producer: "b", Count: 1}}, s.ProducerStats(id))
	assert.Empty(t, s.ProducerStats(77))
}

func TestDatasetLifecycle(t *testing.T) {
	s, _, id := newTestState(t, PutPolicyReplace)

	other := s.CreateDataset("someone", objects.DatasetConfiguration{Name: "Weather", Description: "daily rainfall"})
	assert.Equal(t, id+1, other.ID)

	owner, ok := s.Owner(id)
	require.True(t, ok)
	assert.Equal(t, objects.Identity("owner"), owner)
	assert.True(t, s.IsProducer(id, "owner"))

	assert.Len(t, s.SearchDatasets("RAIN"), 1)
	assert.Len(t, s.ListDatasets(nil), 2)
	assert.Equal(t, []objects.DatasetOwnership{
		{Owner: "owner", DatasetIDs: []objects.DatasetID{id}},
		{Owner: "someone", DatasetIDs: []objects.DatasetID{other.ID}},
	}, s.Ownerships())

	s.PutEntries(id, "owner", []objects.DatasetEntryInput{idInput(1)})

	require.True(t, s.DeleteDataset(id))
	assert.False(t, s.DeleteDataset(id))

	_, ok = s.GetDataset(id)
	assert.False(t, ok)
	assert.Empty(t, s.Producers(id))
	assert.Empty(t, s.OwnedDatasets("owner"))

	_, ok = s.ReadEntries(id, nil, nil)
	assert.False(t, ok)
}

func TestUpdateDataset(t *testing.T) {
	s, clock, id := newTestState(t, PutPolicyReplace)
	clock.Advance(time.Minute)

	ds, found, err := s.UpdateDataset(id, func(cfg *objects.DatasetConfiguration, hasEntries bool) error {
		assert.False(t, hasEntries)
		cfg.Name = "renamed"

		return nil
	})
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "renamed", ds.Name)
	assert.Equal(t, epoch.Add(time.Minute), ds.UpdatedAt)
	assert.Equal(t, epoch, ds.CreatedAt)

	_, found, _ = s.UpdateDataset(404, func(*objects.DatasetConfiguration, bool) error { return nil })
	assert.False(t, found)
}

func TestProducers(t *testing.T) {
	s, _, id := newTestState(t, PutPolicyReplace)

	s.AddProducer(id, "p")
	s.AddProducer(id, "p")
	assert.True(t, s.IsProducer(id, "p"))
	assert.Equal(t, []objects.DatasetID{id}, s.DatasetsWhereProducer("p"))

	assert.Equal(t, 2, s.RemoveProducer(id, "p"))
	assert.False(t, s.IsProducer(id, "p"))
	assert.Len(t, s.Producers(id), 1)

	s.AddProducer(55, "p")
	assert.True(t, s.IsProducer(55, "p"))
}

func TestTokens(t *testing.T) {
	s, clock, _ := newTestState(t, PutPolicyReplace)

	first := s.RegisterToken("alice", "t1", time.Hour)
	assert.Equal(t, epoch.Add(time.Hour), first.ExpireAt)

	second := s.RegisterToken("alice", "t2", time.Hour)

	_, ok := s.LookupToken("t1")
	assert.False(t, ok)

	got, ok := s.LookupToken("t2")
	require.True(t, ok)
	assert.Equal(t, second, got)

	s.RegisterToken("bob", "t2", time.Hour)

	_, ok = s.TokenOf("alice")
	assert.False(t, ok)

	clock.Advance(2 * time.Hour)

	removed := s.RemoveExpiredTokens(clock.Now())
	require.Len(t, removed, 1)
	assert.Equal(t, objects.Identity("bob"), removed[0].Identity)

	_, ok = s.LookupToken("t2")
	assert.False(t, ok)
}

func TestQueries(t *testing.T) {
	s, clock, id := newTestState(t, PutPolicyReplace)

	rec := s.AppendQuery(objects.QueryRecord{Query: objects.QueryInput{DatasetID: id}, Identity: "alice"})
	assert.Equal(t, uint64(1), rec.ID)
	assert.Equal(t, objects.QueryStatePending, rec.State)

	clock.Advance(time.Hour)
	s.AppendQuery(objects.QueryRecord{Query: objects.QueryInput{DatasetID: id}})
	s.AppendQuery(objects.QueryRecord{Query: objects.QueryInput{DatasetID: id + 1}})

	assert.Equal(t, []time.Time{epoch, epoch.Add(time.Hour)}, s.QueryTimestamps(id))
	assert.Len(t, s.Queries(id), 2)
}

func TestExportImport(t *testing.T) {
	s, _, id := newTestState(t, PutPolicyReplace)

	s.PutEntries(id, "owner", []objects.DatasetEntryInput{userInput("u", objects.Attribute(1, "EU"))})
	s.AddProducer(id, "p")
	s.RegisterToken("alice", "tok", time.Hour)
	s.AppendQuery(objects.QueryRecord{Query: objects.QueryInput{DatasetID: id}})

	snap := s.Export()

	restored := New(Config{}, xtime.NewManualClock(epoch))
	restored.Import(snap)

	assert.True(t, xtest.Equal(snap, restored.Export()), xtest.Diff(snap, restored.Export()))

	next := restored.CreateDataset("x", objects.DatasetConfiguration{})
	assert.Equal(t, id+1, next.ID)

	tok, ok := restored.LookupToken("tok")
	require.True(t, ok)
	assert.Equal(t, objects.Identity("alice"), tok.Identity)
}
