package biz

import (
	"context"
	"fmt"

	"go.uber.org/fx"

	"github.com/looplj/datavault/internal/log"
	"github.com/looplj/datavault/internal/objects"
	"github.com/looplj/datavault/internal/server/db"
)

type ProducerServiceParams struct {
	fx.In

	State *db.State
}

type ProducerService struct {
	state *db.State
}

func NewProducerService(params ProducerServiceParams) *ProducerService {
	return &ProducerService{state: params.State}
}

func (s *ProducerService) Producers(_ context.Context, id objects.DatasetID) []objects.ProducerState {
	out := s.state.Producers(id)
	if out == nil {
		out = []objects.ProducerState{}
	}

	return out
}

func (s *ProducerService) IsProducer(_ context.Context, id objects.DatasetID, identity objects.Identity) bool {
	return s.state.IsProducer(id, identity)
}

func (s *ProducerService) DatasetsWhereProducer(_ context.Context, identity objects.Identity) []objects.DatasetID {
	out := s.state.DatasetsWhereProducer(identity)
	if out == nil {
		out = []objects.DatasetID{}
	}

	return out
}

// UpdateProducerList adds or removes user as a producer. Owner only.
func (s *ProducerService) UpdateProducerList(ctx context.Context, caller objects.Identity, id objects.DatasetID, user objects.Identity, mode objects.UpdateMode) error {
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

	switch mode {
	case objects.UpdateModeAdd:
		s.state.AddProducer(id, user)
	case objects.UpdateModeRemove:
		s.state.RemoveProducer(id, user)
	default:
		return fmt.Errorf("unknown update mode %q", mode)
	}

	log.Info(ctx, "producer list updated",
		log.Uint32("dataset_id", uint32(id)),
		log.String("user", user.String()),
		log.String("mode", string(mode)))

	return nil
}
