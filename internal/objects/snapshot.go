package objects

import "time"

// Snapshot is the full persisted image of the store.
type Snapshot struct {
	Version       string             `msgpack:"version"`
	Timestamp     time.Time          `msgpack:"timestamp"`
	Datasets      []DatasetRecord    `msgpack:"datasets"`
	Entries       []DatasetEntries   `msgpack:"entries"`
	Producers     []DatasetProducers `msgpack:"producers"`
	Tokens        []AnalyticsToken   `msgpack:"tokens"`
	Queries       []QueryRecord      `msgpack:"queries"`
	NextDatasetID DatasetID          `msgpack:"next_dataset_id"`
	NextQueryID   uint64             `msgpack:"next_query_id"`
}

type DatasetRecord struct {
	ID     DatasetID            `msgpack:"id"`
	Owner  Identity             `msgpack:"owner"`
	Config DatasetConfiguration `msgpack:"config"`
}

type DatasetEntries struct {
	DatasetID DatasetID      `msgpack:"dataset_id"`
	Entries   []DatasetEntry `msgpack:"entries"`
}

type DatasetProducers struct {
	DatasetID DatasetID       `msgpack:"dataset_id"`
	Producers []ProducerState `msgpack:"producers"`
}
