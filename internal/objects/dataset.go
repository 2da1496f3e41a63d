package objects

import (
	"fmt"
	"time"
)

type DimensionKind string

const (
	DimensionNumerical   DimensionKind = "numerical"
	DimensionBinary      DimensionKind = "binary"
	DimensionCategorical DimensionKind = "categorical"
	DimensionFreetext    DimensionKind = "freetext"
)

// DimensionType carries Labels only for categorical dimensions.
type DimensionType struct {
	Kind   DimensionKind `json:"kind" msgpack:"kind"`
	Labels []string      `json:"labels,omitempty" msgpack:"labels,omitempty"`
}

func (t DimensionType) Validate() error {
	switch t.Kind {
	case DimensionNumerical, DimensionBinary, DimensionFreetext:
		if len(t.Labels) > 0 {
			return fmt.Errorf("%s dimension cannot declare labels", t.Kind)
		}

		return nil
	case DimensionCategorical:
		if len(t.Labels) == 0 {
			return fmt.Errorf("categorical dimension requires labels")
		}

		return nil
	default:
		return fmt.Errorf("unknown dimension kind %q", t.Kind)
	}
}

type Dimension struct {
	ID    DimensionID   `json:"id" msgpack:"id"`
	Title string        `json:"title" msgpack:"title"`
	Type  DimensionType `json:"type" msgpack:"type"`
}

type DatasetConfiguration struct {
	Name            string      `json:"name" msgpack:"name"`
	Description     string      `json:"description" msgpack:"description"`
	JupyterNotebook string      `json:"jupyter_notebook,omitempty" msgpack:"jupyter_notebook"`
	AssetID         string      `json:"asset_id,omitempty" msgpack:"asset_id"`
	Category        string      `json:"category,omitempty" msgpack:"category"`
	IsActive        bool        `json:"is_active" msgpack:"is_active"`
	Dimensions      []Dimension `json:"dimensions" msgpack:"dimensions"`
	CreatedAt       time.Time   `json:"created_at" msgpack:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at" msgpack:"updated_at"`
}

type Dataset struct {
	ID DatasetID `json:"id"`
	DatasetConfiguration
}

type DatasetCreateRequest struct {
	Name            string      `json:"name" binding:"required"`
	Description     string      `json:"description"`
	JupyterNotebook string      `json:"jupyter_notebook"`
	AssetID         string      `json:"asset_id"`
	Category        string      `json:"category"`
	Dimensions      []Dimension `json:"dimensions"`
}

// DatasetUpdateRequest is a partial update; zero fields are left untouched.
type DatasetUpdateRequest struct {
	Name            string      `json:"name,omitempty"`
	Description     string      `json:"description,omitempty"`
	JupyterNotebook string      `json:"jupyter_notebook,omitempty"`
	AssetID         string      `json:"asset_id,omitempty"`
	Category        string      `json:"category,omitempty"`
	IsActive        *bool       `json:"is_active,omitempty"`
	Dimensions      []Dimension `json:"dimensions,omitempty"`
}

// ValidateDimensions checks dimension types and id uniqueness.
func ValidateDimensions(dims []Dimension) error {
	seen := make(map[DimensionID]struct{}, len(dims))

	for _, d := range dims {
		if _, ok := seen[d.ID]; ok {
			return fmt.Errorf("duplicate dimension id %d", d.ID)
		}

		seen[d.ID] = struct{}{}

		if err := d.Type.Validate(); err != nil {
			return fmt.Errorf("dimension %d: %w", d.ID, err)
		}
	}

	return nil
}

type UpdateMode string

const (
	UpdateModeAdd    UpdateMode = "add"
	UpdateModeRemove UpdateMode = "remove"
)

type ProducerState struct {
	Identity     Identity  `json:"identity" msgpack:"identity"`
	Enabled      bool      `json:"enabled" msgpack:"enabled"`
	RegisteredAt time.Time `json:"registered_at" msgpack:"registered_at"`
}

type DatasetOwnership struct {
	Owner      Identity    `json:"owner"`
	DatasetIDs []DatasetID `json:"dataset_ids"`
}

type EntryCount struct {
	DatasetID DatasetID `json:"dataset_id"`
	Count     int       `json:"count"`
}

type ProducerStats struct {
	Producer Identity `json:"producer"`
	Count    uint32   `json:"count"`
}
