package biz

import (
	"context"

	"go.uber.org/fx"

	"github.com/looplj/datavault/internal/log"
	"github.com/looplj/datavault/internal/objects"
	"github.com/looplj/datavault/internal/server/db"
)

type EntryServiceParams struct {
	fx.In

	State *db.State
}

type EntryService struct {
	state *db.State
}

func NewEntryService(params EntryServiceParams) *EntryService {
	return &EntryService{state: params.State}
}

// PutEntries stores inputs on behalf of caller, who must be an enabled producer.
func (s *EntryService) PutEntries(ctx context.Context, caller objects.Identity, id objects.DatasetID, inputs []objects.DatasetEntryInput) (int, error) {
	if caller.IsAnonymous() {
		return 0, ErrAnonymousUnauthorized
	}

	if !s.state.IsProducer(id, caller) {
		return 0, ErrNotProducer
	}

	n := s.state.PutEntries(id, caller, inputs)

	log.Debug(ctx, "entries stored",
		log.Uint32("dataset_id", uint32(id)),
		log.String("producer", caller.String()),
		log.Int("count", n))

	return n, nil
}

// DeleteMyEntry removes the caller's ByUser entries from one dataset.
func (s *EntryService) DeleteMyEntry(_ context.Context, caller objects.Identity, id objects.DatasetID) (int, error) {
	if caller.IsAnonymous() {
		return 0, ErrAnonymousUnauthorized
	}

	return s.state.DeleteEntry(id, caller), nil
}

// DeleteAllMyEntries removes the caller's ByUser entries from every dataset.
// Datasets that fail are logged and reported through the error; the rest are still swept.
func (s *EntryService) DeleteAllMyEntries(ctx context.Context, caller objects.Identity) (int, error) {
	if caller.IsAnonymous() {
		return 0, ErrAnonymousUnauthorized
	}

	removed, err := s.state.DeleteAllEntriesForIdentity(caller)
	if err != nil {
		log.Error(ctx, "gdpr sweep incomplete",
			log.String("identity", caller.String()),
			log.Int("removed", removed),
			log.Cause(err))
	}

	return removed, err
}

func (s *EntryService) MyEntries(_ context.Context, caller objects.Identity, id objects.DatasetID) ([]objects.DatasetEntry, error) {
	if caller.IsAnonymous() {
		return nil, ErrAnonymousUnauthorized
	}

	out := s.state.UserEntries(id, caller)
	if out == nil {
		out = []objects.DatasetEntry{}
	}

	return out, nil
}

func (s *EntryService) EntryCounts(_ context.Context, ids []objects.DatasetID) []objects.EntryCount {
	return s.state.EntryCounts(ids)
}

func (s *EntryService) ProducerStats(_ context.Context, id objects.DatasetID) []objects.ProducerStats {
	out := s.state.ProducerStats(id)
	if out == nil {
		out = []objects.ProducerStats{}
	}

	return out
}
