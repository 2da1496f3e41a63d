package objects

import (
	"encoding/json"

	"github.com/vmihailenco/msgpack/v5"
)

// RecordKey identifies an entry, either by submitting identity (ByUser) or by producer assigned id (ByID).
type RecordKey interface {
	isRecordKey()
}

type ByUser Identity

type ByID uint32

func (ByUser) isRecordKey() {}
func (ByID) isRecordKey()   {}

type recordKeyWire struct {
	User *Identity `json:"user,omitempty" msgpack:"user,omitempty"`
	ID   *uint32   `json:"id,omitempty" msgpack:"id,omitempty"`
}

func (k ByUser) wire() recordKeyWire {
	id := Identity(k)
	return recordKeyWire{User: &id}
}

func (k ByID) wire() recordKeyWire {
	id := uint32(k)
	return recordKeyWire{ID: &id}
}

func (k ByUser) MarshalJSON() ([]byte, error) { return json.Marshal(k.wire()) }

func (k ByID) MarshalJSON() ([]byte, error) { return json.Marshal(k.wire()) }

func (k ByUser) EncodeMsgpack(enc *msgpack.Encoder) error { return enc.Encode(k.wire()) }

func (k ByID) EncodeMsgpack(enc *msgpack.Encoder) error { return enc.Encode(k.wire()) }

func (w recordKeyWire) key() (RecordKey, error) {
	switch {
	case w.User != nil && w.ID == nil:
		return ByUser(*w.User), nil
	case w.ID != nil && w.User == nil:
		return ByID(*w.ID), nil
	default:
		return nil, ErrInvalidRecordKey
	}
}

// IsUserKey reports whether key is ByUser(identity).
func IsUserKey(key RecordKey, identity Identity) bool {
	k, ok := key.(ByUser)
	return ok && Identity(k) == identity
}
