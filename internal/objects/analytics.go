package objects

import "time"

// QueryInput selects attribute dimensions to group by, metric dimensions to sum and exclusion filters.
type QueryInput struct {
	DatasetID  DatasetID      `json:"dataset_id"`
	Attributes []DimensionID  `json:"attributes"`
	Metrics    []DimensionID  `json:"metrics"`
	Filters    []DatasetValue `json:"filters"`
}

type QueryState string

const QueryStatePending QueryState = "pending"

// QueryRecord is an append only log line for every authorized analytics query.
type QueryRecord struct {
	ID            uint64     `json:"id" msgpack:"id"`
	Query         QueryInput `json:"query" msgpack:"query"`
	Identity      Identity   `json:"identity" msgpack:"identity"`
	Timestamp     time.Time  `json:"timestamp" msgpack:"timestamp"`
	State         QueryState `json:"state" msgpack:"state"`
	GDPREnabled   bool       `json:"gdpr_enabled" msgpack:"gdpr_enabled"`
	GDPRThreshold uint32     `json:"gdpr_threshold" msgpack:"gdpr_threshold"`
}

type AnalyticsGroup struct {
	GroupKey   string                 `json:"group_key"`
	Attributes []Value                `json:"attributes"`
	Metrics    map[DimensionID]uint64 `json:"metrics"`
	Count      uint32                 `json:"count"`
}

// StageSizes holds record or group counts after each stage:
// pre-filter, post-filter, post-transform, post-aggregate, post-suppression.
type StageSizes [5]uint32

type AnalyticsResult struct {
	Groups     []AnalyticsGroup `json:"groups"`
	StageSizes StageSizes       `json:"stage_sizes"`
}

// AccessGrant is the caller's entitlement on one dataset as reported by the access oracle.
type AccessGrant struct {
	Allowed     []DimensionID `json:"allowed"`
	GDPREnabled bool          `json:"gdpr_enabled"`
}

func (g AccessGrant) Empty() bool {
	return len(g.Allowed) == 0
}

func (g AccessGrant) AllowedSet() map[DimensionID]struct{} {
	set := make(map[DimensionID]struct{}, len(g.Allowed))
	for _, id := range g.Allowed {
		set[id] = struct{}{}
	}

	return set
}

type DateMetrics struct {
	// Date is the bucket start in unix nanoseconds.
	Date  int64  `json:"date"`
	Value uint32 `json:"value"`
}

type AnalyticsToken struct {
	Token    string        `json:"token" msgpack:"token"`
	Identity Identity      `json:"identity" msgpack:"identity"`
	Lifetime time.Duration `json:"lifetime" msgpack:"lifetime"`
	IssuedAt time.Time     `json:"issued_at" msgpack:"issued_at"`
	ExpireAt time.Time     `json:"expire_at" msgpack:"expire_at"`
}

func (t AnalyticsToken) Expired(now time.Time) bool {
	return !t.ExpireAt.IsZero() && !now.Before(t.ExpireAt)
}
