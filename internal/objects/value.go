package objects

import (
	"encoding/json"
	"errors"
	"strconv"

	"github.com/vmihailenco/msgpack/v5"
)

var (
	ErrInvalidValue     = errors.New("value must carry exactly one of metric or attribute")
	ErrInvalidRecordKey = errors.New("record key must carry exactly one of user or id")
)

// Value is either a summable MetricValue or a groupable AttributeValue.
type Value interface {
	isValue()
	String() string
}

type MetricValue uint32

type AttributeValue string

func (MetricValue) isValue()    {}
func (AttributeValue) isValue() {}

func (v MetricValue) String() string {
	return strconv.FormatUint(uint64(v), 10)
}

func (v AttributeValue) String() string {
	return string(v)
}

type valueWire struct {
	Metric    *uint32 `json:"metric,omitempty" msgpack:"metric,omitempty"`
	Attribute *string `json:"attribute,omitempty" msgpack:"attribute,omitempty"`
}

func (v MetricValue) wire() valueWire {
	m := uint32(v)
	return valueWire{Metric: &m}
}

func (v AttributeValue) wire() valueWire {
	a := string(v)
	return valueWire{Attribute: &a}
}

func (v MetricValue) MarshalJSON() ([]byte, error) { return json.Marshal(v.wire()) }

func (v AttributeValue) MarshalJSON() ([]byte, error) { return json.Marshal(v.wire()) }

func (v MetricValue) EncodeMsgpack(enc *msgpack.Encoder) error { return enc.Encode(v.wire()) }

func (v AttributeValue) EncodeMsgpack(enc *msgpack.Encoder) error { return enc.Encode(v.wire()) }

func (w valueWire) value() (Value, error) {
	switch {
	case w.Metric != nil && w.Attribute == nil:
		return MetricValue(*w.Metric), nil
	case w.Attribute != nil && w.Metric == nil:
		return AttributeValue(*w.Attribute), nil
	default:
		return nil, ErrInvalidValue
	}
}

// DatasetValue is one (dimension, value) cell of an entry.
type DatasetValue struct {
	DimensionID DimensionID `json:"dimension_id" msgpack:"dimension_id"`
	Value       Value       `json:"value" msgpack:"value"`
}

type datasetValueWire struct {
	DimensionID DimensionID `json:"dimension_id" msgpack:"dimension_id"`
	Value       valueWire   `json:"value" msgpack:"value"`
}

func (d *DatasetValue) fromWire(w datasetValueWire) error {
	value, err := w.Value.value()
	if err != nil {
		return err
	}

	d.DimensionID = w.DimensionID
	d.Value = value

	return nil
}

func (d *DatasetValue) UnmarshalJSON(data []byte) error {
	var w datasetValueWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	return d.fromWire(w)
}

func (d *DatasetValue) DecodeMsgpack(dec *msgpack.Decoder) error {
	var w datasetValueWire
	if err := dec.Decode(&w); err != nil {
		return err
	}

	return d.fromWire(w)
}

// Metric builds a metric cell.
func Metric(dim DimensionID, v uint32) DatasetValue {
	return DatasetValue{DimensionID: dim, Value: MetricValue(v)}
}

// Attribute builds an attribute cell.
func Attribute(dim DimensionID, v string) DatasetValue {
	return DatasetValue{DimensionID: dim, Value: AttributeValue(v)}
}
