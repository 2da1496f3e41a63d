package db

import (
	"time"

	"github.com/looplj/datavault/internal/objects"
)

// AppendQuery assigns the next id and timestamp to rec and appends it to the query log.
func (s *State) AppendQuery(rec objects.QueryRecord) objects.QueryRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec.ID = s.nextQueryID
	s.nextQueryID++
	rec.Timestamp = s.clock.Now()

	if rec.State == "" {
		rec.State = objects.QueryStatePending
	}

	s.queries = append(s.queries, rec)

	return rec
}

// QueryTimestamps returns the timestamps of the dataset's logged queries in log order.
func (s *State) QueryTimestamps(id objects.DatasetID) []time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []time.Time

	for _, q := range s.queries {
		if q.Query.DatasetID == id {
			out = append(out, q.Timestamp)
		}
	}

	return out
}

func (s *State) Queries(id objects.DatasetID) []objects.QueryRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []objects.QueryRecord

	for _, q := range s.queries {
		if q.Query.DatasetID == id {
			out = append(out, q)
		}
	}

	return out
}
