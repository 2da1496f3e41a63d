package snapshot

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/Masterminds/semver/v3"
	"github.com/klauspost/compress/zstd"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/looplj/datavault/internal/objects"
)

// FormatVersion is stamped on every encoded snapshot. Only snapshots with the same major version decode.
const FormatVersion = "1.0.0"

var magic = []byte("DVS1")

var (
	ErrInvalidSnapshot     = errors.New("invalid snapshot")
	ErrIncompatibleVersion = errors.New("incompatible snapshot version")
)

// Encode writes the magic header followed by the zstd compressed msgpack image.
func Encode(snap objects.Snapshot) ([]byte, error) {
	if snap.Version == "" {
		snap.Version = FormatVersion
	}

	payload, err := msgpack.Marshal(snap)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd encoder: %w", err)
	}
	defer enc.Close()

	out := make([]byte, 0, len(magic)+len(payload)/2)
	out = append(out, magic...)

	return enc.EncodeAll(payload, out), nil
}

func Decode(data []byte) (objects.Snapshot, error) {
	if !bytes.HasPrefix(data, magic) {
		return objects.Snapshot{}, fmt.Errorf("%w: missing header", ErrInvalidSnapshot)
	}

	dec, err := zstd.NewReader(nil)
	if err != nil {
		return objects.Snapshot{}, fmt.Errorf("failed to create zstd decoder: %w", err)
	}
	defer dec.Close()

	payload, err := dec.DecodeAll(data[len(magic):], nil)
	if err != nil {
		return objects.Snapshot{}, fmt.Errorf("%w: %w", ErrInvalidSnapshot, err)
	}

	var snap objects.Snapshot
	if err := msgpack.Unmarshal(payload, &snap); err != nil {
		return objects.Snapshot{}, fmt.Errorf("%w: %w", ErrInvalidSnapshot, err)
	}

	if err := CheckVersion(snap.Version); err != nil {
		return objects.Snapshot{}, err
	}

	return snap, nil
}

// CheckVersion accepts versions sharing the major version of FormatVersion.
func CheckVersion(version string) error {
	got, err := semver.NewVersion(version)
	if err != nil {
		return fmt.Errorf("%w: %q: %w", ErrIncompatibleVersion, version, err)
	}

	want := semver.MustParse(FormatVersion)
	if got.Major() != want.Major() {
		return fmt.Errorf("%w: %s, expected %d.x", ErrIncompatibleVersion, got, want.Major())
	}

	return nil
}
