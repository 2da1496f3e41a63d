package objects

import (
	"encoding/json"
	"time"

	"github.com/vmihailenco/msgpack/v5"
)

// DatasetEntryInput is what a producer submits for one record.
type DatasetEntryInput struct {
	Key    RecordKey      `json:"key"`
	Values []DatasetValue `json:"values"`
}

type DatasetEntry struct {
	Key       RecordKey      `json:"key" msgpack:"key"`
	Producer  Identity       `json:"producer" msgpack:"producer"`
	Values    []DatasetValue `json:"values" msgpack:"values"`
	CreatedAt time.Time      `json:"created_at" msgpack:"created_at"`
	UpdatedAt time.Time      `json:"updated_at" msgpack:"updated_at"`
}

type entryInputWire struct {
	Key    recordKeyWire  `json:"key"`
	Values []DatasetValue `json:"values"`
}

func (e *DatasetEntryInput) UnmarshalJSON(data []byte) error {
	var w entryInputWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	key, err := w.Key.key()
	if err != nil {
		return err
	}

	e.Key = key
	e.Values = w.Values

	return nil
}

type entryWire struct {
	Key       recordKeyWire  `json:"key" msgpack:"key"`
	Producer  Identity       `json:"producer" msgpack:"producer"`
	Values    []DatasetValue `json:"values" msgpack:"values"`
	CreatedAt time.Time      `json:"created_at" msgpack:"created_at"`
	UpdatedAt time.Time      `json:"updated_at" msgpack:"updated_at"`
}

func (e *DatasetEntry) fromWire(w entryWire) error {
	key, err := w.Key.key()
	if err != nil {
		return err
	}

	*e = DatasetEntry{
		Key:       key,
		Producer:  w.Producer,
		Values:    w.Values,
		CreatedAt: w.CreatedAt,
		UpdatedAt: w.UpdatedAt,
	}

	return nil
}

func (e *DatasetEntry) UnmarshalJSON(data []byte) error {
	var w entryWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	return e.fromWire(w)
}

func (e *DatasetEntry) DecodeMsgpack(dec *msgpack.Decoder) error {
	var w entryWire
	if err := dec.Decode(&w); err != nil {
		return err
	}

	return e.fromWire(w)
}

// Project returns a copy of the entry keeping only values whose dimension is in allowed.
func (e DatasetEntry) Project(allowed map[DimensionID]struct{}) DatasetEntry {
	values := make([]DatasetValue, 0, len(e.Values))

	for _, v := range e.Values {
		if _, ok := allowed[v.DimensionID]; ok {
			values = append(values, v)
		}
	}

	e.Values = values

	return e
}

// Clone copies the value slice so callers cannot alias store memory.
func (e DatasetEntry) Clone() DatasetEntry {
	e.Values = append([]DatasetValue(nil), e.Values...)
	return e
}
