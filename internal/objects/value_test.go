package objects

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"
)

func TestValueString(t *testing.T) {
	assert.Equal(t, "10", MetricValue(10).String())
	assert.Equal(t, "EU", AttributeValue("EU").String())
}

func TestValueEquality(t *testing.T) {
	var (
		a Value = MetricValue(5)
		b Value = MetricValue(5)
		c Value = AttributeValue("5")
	)

	assert.True(t, a == b)
	assert.False(t, a == c)
}

func TestDatasetValueJSON(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    DatasetValue
		wantErr bool
	}{
		{
			name:  "metric",
			input: `{"dimension_id":2,"value":{"metric":10}}`,
			want:  Metric(2, 10),
		},
		{
			name:  "attribute",
			input: `{"dimension_id":1,"value":{"attribute":"EU"}}`,
			want:  Attribute(1, "EU"),
		},
		{
			name:    "both tags",
			input:   `{"dimension_id":1,"value":{"attribute":"EU","metric":1}}`,
			wantErr: true,
		},
		{
			name:    "no tag",
			input:   `{"dimension_id":1,"value":{}}`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got DatasetValue

			err := json.Unmarshal([]byte(tt.input), &got)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidValue)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)

			out, err := json.Marshal(got)
			require.NoError(t, err)
			assert.JSONEq(t, tt.input, string(out))
		})
	}
}

func TestEntryInputJSON(t *testing.T) {
	var input []DatasetEntryInput

	err := json.Unmarshal([]byte(`[
		{"key":{"user":"alice"},"values":[{"dimension_id":1,"value":{"attribute":"EU"}}]},
		{"key":{"id":7},"values":[]}
	]`), &input)
	require.NoError(t, err)
	require.Len(t, input, 2)

	assert.Equal(t, ByUser("alice"), input[0].Key)
	assert.Equal(t, ByID(7), input[1].Key)

	err = json.Unmarshal([]byte(`{"key":{},"values":[]}`), &DatasetEntryInput{})
	require.ErrorIs(t, err, ErrInvalidRecordKey)
}

func TestDatasetEntryMsgpack(t *testing.T) {
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	entry := DatasetEntry{
		Key:       ByUser("alice"),
		Producer:  "producer-1",
		Values:    []DatasetValue{Attribute(1, "EU"), Metric(2, 10)},
		CreatedAt: now,
		UpdatedAt: now,
	}

	data, err := msgpack.Marshal(entry)
	require.NoError(t, err)

	var decoded DatasetEntry
	require.NoError(t, msgpack.Unmarshal(data, &decoded))

	assert.Equal(t, entry.Key, decoded.Key)
	assert.Equal(t, entry.Producer, decoded.Producer)
	assert.Equal(t, entry.Values, decoded.Values)
	assert.True(t, entry.CreatedAt.Equal(decoded.CreatedAt))
}

func TestIsUserKey(t *testing.T) {
	assert.True(t, IsUserKey(ByUser("alice"), "alice"))
	assert.False(t, IsUserKey(ByUser("bob"), "alice"))
	assert.False(t, IsUserKey(ByID(1), "alice"))
}

func TestProject(t *testing.T) {
	entry := DatasetEntry{Values: []DatasetValue{Attribute(1, "EU"), Metric(2, 10), Attribute(3, "x")}}

	projected := entry.Project(map[DimensionID]struct{}{1: {}, 2: {}})

	assert.Equal(t, []DatasetValue{Attribute(1, "EU"), Metric(2, 10)}, projected.Values)
	assert.Len(t, entry.Values, 3)
}

func TestDimensionTypeValidate(t *testing.T) {
	require.NoError(t, DimensionType{Kind: DimensionCategorical, Labels: []string{"EU", "US"}}.Validate())
	require.NoError(t, DimensionType{Kind: DimensionNumerical}.Validate())
	require.Error(t, DimensionType{Kind: DimensionCategorical}.Validate())
	require.Error(t, DimensionType{Kind: DimensionBinary, Labels: []string{"x"}}.Validate())
	require.Error(t, DimensionType{Kind: "matrix"}.Validate())

	err := ValidateDimensions([]Dimension{
		{ID: 1, Type: DimensionType{Kind: DimensionFreetext}},
		{ID: 1, Type: DimensionType{Kind: DimensionFreetext}},
	})
	require.Error(t, err)
}

func TestTokenExpired(t *testing.T) {
	issued := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	token := AnalyticsToken{IssuedAt: issued, ExpireAt: issued.Add(time.Hour)}

	assert.False(t, token.Expired(issued.Add(59*time.Minute)))
	assert.True(t, token.Expired(issued.Add(time.Hour)))
	assert.False(t, AnalyticsToken{}.Expired(issued))
}
