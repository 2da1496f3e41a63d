// Package analytics implements the aggregation pipeline and activity bucketing.
// Everything here is a pure function of its input so results can be re-derived from stored entries on every call.
package analytics

import (
	"slices"
	"sort"
	"strings"

	"github.com/samber/lo"

	"github.com/looplj/datavault/internal/objects"
)

// GroupKeySeparator joins attribute values into a group key.
const GroupKeySeparator = "--"

type Query struct {
	AttributeDims []objects.DimensionID
	MetricDims    []objects.DimensionID
	Filters       []objects.DatasetValue
	GDPREnabled   bool
	GDPRThreshold uint32
}

type prepared struct {
	key        string
	attributes []objects.Value
	metrics    []objects.DatasetValue
}

// Run executes filter, transform, group and aggregate, then privacy suppression over entries.
// A nil entries slice means the dataset has no collection and yields an empty result.
func Run(entries []objects.DatasetEntry, q Query) objects.AnalyticsResult {
	var sizes objects.StageSizes

	if entries == nil {
		return objects.AnalyticsResult{Groups: []objects.AnalyticsGroup{}, StageSizes: sizes}
	}

	sizes[0] = uint32(len(entries))

	kept := Filter(entries, q.Filters)
	sizes[1] = uint32(len(kept))

	rows := make([]prepared, 0, len(kept))
	for _, entry := range kept {
		rows = append(rows, transform(entry, q.AttributeDims, q.MetricDims))
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].key < rows[j].key
	})

	sizes[2] = uint32(len(rows))

	groups := aggregate(rows, lo.Uniq(q.MetricDims))
	sizes[3] = uint32(len(groups))

	groups = Suppress(groups, q.GDPREnabled, q.GDPRThreshold)
	sizes[4] = uint32(len(groups))

	return objects.AnalyticsResult{Groups: groups, StageSizes: sizes}
}

// Filter drops every entry holding at least one value equal to any filter pair.
func Filter(entries []objects.DatasetEntry, filters []objects.DatasetValue) []objects.DatasetEntry {
	if len(filters) == 0 {
		return entries
	}

	kept := make([]objects.DatasetEntry, 0, len(entries))

	for _, entry := range entries {
		if !matchesAny(entry, filters) {
			kept = append(kept, entry)
		}
	}

	return kept
}

func matchesAny(entry objects.DatasetEntry, filters []objects.DatasetValue) bool {
	for _, f := range filters {
		for _, v := range entry.Values {
			if v.DimensionID == f.DimensionID && v.Value == f.Value {
				return true
			}
		}
	}

	return false
}

func transform(entry objects.DatasetEntry, attributeDims, metricDims []objects.DimensionID) prepared {
	var (
		attributes []objects.Value
		metrics    []objects.DatasetValue
		parts      []string
	)

	for _, v := range entry.Values {
		if slices.Contains(attributeDims, v.DimensionID) {
			attributes = append(attributes, v.Value)
			parts = append(parts, v.Value.String())
		}

		if slices.Contains(metricDims, v.DimensionID) {
			metrics = append(metrics, v)
		}
	}

	return prepared{
		key:        strings.Join(parts, GroupKeySeparator),
		attributes: attributes,
		metrics:    metrics,
	}
}

// aggregate folds consecutive rows sharing a key. rows must be sorted by key.
func aggregate(rows []prepared, metricDims []objects.DimensionID) []objects.AnalyticsGroup {
	groups := make([]objects.AnalyticsGroup, 0)

	for start := 0; start < len(rows); {
		end := start
		for end < len(rows) && rows[end].key == rows[start].key {
			end++
		}

		group := objects.AnalyticsGroup{
			GroupKey:   rows[start].key,
			Attributes: rows[start].attributes,
			Metrics:    make(map[objects.DimensionID]uint64),
			Count:      uint32(end - start),
		}

		if group.Attributes == nil {
			group.Attributes = []objects.Value{}
		}

		for _, row := range rows[start:end] {
			for _, dim := range metricDims {
				cell, ok := firstValue(row.metrics, dim)
				if !ok {
					continue
				}

				// The dimension shows up once any member carries it, even if nothing is summable.
				sum := group.Metrics[dim]
				if m, ok := cell.(objects.MetricValue); ok {
					sum += uint64(m)
				}

				group.Metrics[dim] = sum
			}
		}

		groups = append(groups, group)
		start = end
	}

	return groups
}

func firstValue(values []objects.DatasetValue, dim objects.DimensionID) (objects.Value, bool) {
	for _, v := range values {
		if v.DimensionID == dim {
			return v.Value, true
		}
	}

	return nil, false
}

// Suppress keeps only groups whose count is strictly greater than threshold when enabled.
func Suppress(groups []objects.AnalyticsGroup, enabled bool, threshold uint32) []objects.AnalyticsGroup {
	if !enabled || threshold == 0 {
		return groups
	}

	kept := make([]objects.AnalyticsGroup, 0, len(groups))

	for _, g := range groups {
		if g.Count > threshold {
			kept = append(kept, g)
		}
	}

	return kept
}
