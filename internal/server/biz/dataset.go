package biz

import (
	"context"
	"fmt"

	"dario.cat/mergo"
	"go.uber.org/fx"

	"github.com/looplj/datavault/internal/log"
	"github.com/looplj/datavault/internal/objects"
	"github.com/looplj/datavault/internal/server/db"
)

type DatasetServiceParams struct {
	fx.In

	Config        DatasetConfig
	State         *db.State
	AccessService *AccessService
}

type DatasetService struct {
	config DatasetConfig
	state  *db.State
	access *AccessService
}

func NewDatasetService(params DatasetServiceParams) *DatasetService {
	return &DatasetService{
		config: params.Config,
		state:  params.State,
		access: params.AccessService,
	}
}

// CreateDataset registers a new active dataset owned by caller.
func (s *DatasetService) CreateDataset(ctx context.Context, caller objects.Identity, req objects.DatasetCreateRequest) (objects.Dataset, error) {
	if caller.IsAnonymous() {
		return objects.Dataset{}, ErrAnonymousUnauthorized
	}

	if err := objects.ValidateDimensions(req.Dimensions); err != nil {
		return objects.Dataset{}, fmt.Errorf("%w: %w", ErrInvalidDataset, err)
	}

	ds := s.state.CreateDataset(caller, objects.DatasetConfiguration{
		Name:            req.Name,
		Description:     req.Description,
		JupyterNotebook: req.JupyterNotebook,
		AssetID:         req.AssetID,
		Category:        req.Category,
		IsActive:        true,
		Dimensions:      req.Dimensions,
	})

	log.Info(ctx, "dataset created",
		log.Uint32("dataset_id", uint32(ds.ID)),
		log.String("owner", caller.String()))

	return ds, nil
}

// UpdateDataset merges the non-zero fields of req into the dataset. Owner only.
func (s *DatasetService) UpdateDataset(ctx context.Context, caller objects.Identity, id objects.DatasetID, req objects.DatasetUpdateRequest) (objects.Dataset, error) {
	if err := s.requireOwner(caller, id); err != nil {
		return objects.Dataset{}, err
	}

	if req.Dimensions != nil {
		if err := objects.ValidateDimensions(req.Dimensions); err != nil {
			return objects.Dataset{}, fmt.Errorf("%w: %w", ErrInvalidDataset, err)
		}
	}

	ds, found, err := s.state.UpdateDataset(id, func(cfg *objects.DatasetConfiguration, hasEntries bool) error {
		if req.Dimensions != nil && hasEntries && s.config.EnforceImmutableSchema {
			return ErrSchemaImmutable
		}

		patch := objects.DatasetConfiguration{
			Name:            req.Name,
			Description:     req.Description,
			JupyterNotebook: req.JupyterNotebook,
			AssetID:         req.AssetID,
			Category:        req.Category,
			Dimensions:      req.Dimensions,
		}

		createdAt := cfg.CreatedAt

		if err := mergo.Merge(cfg, patch, mergo.WithOverride); err != nil {
			return err
		}

		cfg.CreatedAt = createdAt

		if req.IsActive != nil {
			cfg.IsActive = *req.IsActive
		}

		return nil
	})
	if err != nil {
		return objects.Dataset{}, err
	}

	if !found {
		return objects.Dataset{}, ErrDatasetNotFound
	}

	return ds, nil
}

// DeleteDataset removes the dataset with its producers and entries. Owner only.
func (s *DatasetService) DeleteDataset(ctx context.Context, caller objects.Identity, id objects.DatasetID) error {
	if err := s.requireOwner(caller, id); err != nil {
		return err
	}

	if !s.state.DeleteDataset(id) {
		return ErrDatasetNotFound
	}

	s.access.InvalidateDataset(ctx, id)

	log.Info(ctx, "dataset deleted",
		log.Uint32("dataset_id", uint32(id)),
		log.String("owner", caller.String()))

	return nil
}

func (s *DatasetService) requireOwner(caller objects.Identity, id objects.DatasetID) error {
	if caller.IsAnonymous() {
		return ErrAnonymousUnauthorized
	}

	owner, ok := s.state.Owner(id)
	if !ok {
		return ErrDatasetNotFound
	}

	if owner != caller {
		return ErrNotOwner
	}

	return nil
}

func (s *DatasetService) GetDataset(_ context.Context, id objects.DatasetID) (objects.Dataset, error) {
	ds, ok := s.state.GetDataset(id)
	if !ok {
		return objects.Dataset{}, ErrDatasetNotFound
	}

	return ds, nil
}

// GetManyDatasets keeps input order; missing ids map to nil.
func (s *DatasetService) GetManyDatasets(_ context.Context, ids []objects.DatasetID) []*objects.Dataset {
	out := make([]*objects.Dataset, len(ids))

	for i, id := range ids {
		if ds, ok := s.state.GetDataset(id); ok {
			out[i] = &ds
		}
	}

	return out
}

func (s *DatasetService) ListDatasets(_ context.Context) []objects.Dataset {
	return s.state.ListDatasets(nil)
}

func (s *DatasetService) SearchDatasets(_ context.Context, text string) []objects.Dataset {
	return s.state.SearchDatasets(text)
}

func (s *DatasetService) OwnedDatasets(_ context.Context, owner objects.Identity) []objects.Dataset {
	ids := s.state.OwnedDatasets(owner)
	out := make([]objects.Dataset, 0, len(ids))

	for _, id := range ids {
		if ds, ok := s.state.GetDataset(id); ok {
			out = append(out, ds)
		}
	}

	return out
}

func (s *DatasetService) Ownerships(_ context.Context) []objects.DatasetOwnership {
	out := s.state.Ownerships()
	if out == nil {
		out = []objects.DatasetOwnership{}
	}

	return out
}
