package resource

import (
	"context"
	"log/slog"
	"time"

	"github.com/massiben/rh-backend/internal"
	"github.com/massiben/rh-backend/internal/core/common/validation"
	"github.com/massiben/rh-backend/internal/core/events"
	"github.com/massiben/rh-backend/internal/datastore"
)

// Service implements the CRUD semantics of one collection according to its
// descriptor. All state lives in the injected store.
type Service struct {
	store  *datastore.Store
	desc   Descriptor
	bus    *events.EventBus
	logger *slog.Logger
}

func NewService(store *datastore.Store, desc Descriptor, bus *events.EventBus, logger *slog.Logger) *Service {
	store.EnsureCollection(desc.Collection)
	return &Service{
		store:  store,
		desc:   desc,
		bus:    bus,
		logger: logger,
	}
}

func (s *Service) Descriptor() Descriptor {
	return s.desc
}

// List applies the filter/sort/paginate contract over the full collection.
func (s *Service) List(q datastore.ListQuery) datastore.ListResult {
	return q.Apply(s.store.All(s.desc.Collection))
}

func (s *Service) Get(id string) (datastore.Record, error) {
	rec, ok := s.store.Find(s.desc.Collection, datastore.CoerceID(id))
	if !ok {
		return nil, internal.ErrRecordNotFound
	}
	return rec, nil
}

func (s *Service) Create(body datastore.Record) (datastore.Record, error) {
	if body == nil {
		body = datastore.Record{}
	}

	err := validation.New().
		TrimStrings(body, s.desc.Trimmed...).
		Require(body, s.desc.Required...).
		Numbers(body, s.desc.Numeric...).
		Err()
	if err != nil {
		return nil, err
	}

	if conflictErr := s.checkUnique(body, nil); conflictErr != nil {
		return nil, conflictErr
	}

	if s.desc.Timestamps {
		now := time.Now().Format(time.RFC3339)
		if body["created_at"] == nil {
			body["created_at"] = now
		}
		if body["updated_at"] == nil {
			body["updated_at"] = now
		}
	}

	rec := s.store.Insert(s.desc.Collection, body)
	s.logger.Info("record created", "collection", s.desc.Collection, "id", rec.ID())
	s.bus.Publish(context.Background(), events.NewResourceEvent(events.ResourceCreated, s.desc.Collection, rec.ID()))
	return rec, nil
}

// Update shallow-merges the body over the stored record. PUT and PATCH share
// this path: the original backend never distinguished full replace from
// partial update.
func (s *Service) Update(id string, body datastore.Record) (datastore.Record, error) {
	coerced := datastore.CoerceID(id)
	existing, ok := s.store.Find(s.desc.Collection, coerced)
	if !ok {
		return nil, internal.ErrRecordNotFound
	}
	if s.desc.Immutable != nil && s.desc.Immutable(existing) {
		return nil, internal.NewForbiddenError("Ce paramètre est requis et ne peut pas être modifié", internal.ErrCodeImmutableRecord)
	}

	if body == nil {
		body = datastore.Record{}
	}
	err := validation.New().
		TrimStrings(body, s.desc.Trimmed...).
		Numbers(body, s.desc.Numeric...).
		Err()
	if err != nil {
		return nil, err
	}
	if conflictErr := s.checkUnique(body, coerced); conflictErr != nil {
		return nil, conflictErr
	}

	if s.desc.Timestamps {
		body["updated_at"] = time.Now().Format(time.RFC3339)
	}

	rec, _ := s.store.Update(s.desc.Collection, coerced, body)
	s.bus.Publish(context.Background(), events.NewResourceEvent(events.ResourceUpdated, s.desc.Collection, rec.ID()))
	return rec, nil
}

func (s *Service) Delete(id string) (datastore.Record, error) {
	coerced := datastore.CoerceID(id)
	existing, ok := s.store.Find(s.desc.Collection, coerced)
	if !ok {
		return nil, internal.ErrRecordNotFound
	}
	if s.desc.Immutable != nil && s.desc.Immutable(existing) {
		return nil, internal.NewForbiddenError("Ce paramètre est requis et ne peut pas être supprimé", internal.ErrCodeImmutableRecord)
	}

	rec, _ := s.store.Delete(s.desc.Collection, coerced)
	s.logger.Info("record deleted", "collection", s.desc.Collection, "id", rec.ID())
	s.bus.Publish(context.Background(), events.NewResourceEvent(events.ResourceDeleted, s.desc.Collection, rec.ID()))
	return rec, nil
}

// SetActive toggles the two-state lifecycle of collections that carry it.
func (s *Service) SetActive(id string, active bool) (datastore.Record, error) {
	coerced := datastore.CoerceID(id)
	patch := datastore.Record{
		"is_active":  active,
		"updated_at": time.Now().Format(time.RFC3339),
	}
	rec, ok := s.store.Update(s.desc.Collection, coerced, patch)
	if !ok {
		return nil, internal.ErrRecordNotFound
	}
	s.bus.Publish(context.Background(), events.NewResourceEvent(events.ResourceUpdated, s.desc.Collection, rec.ID()))
	return rec, nil
}

// checkUnique rejects a body whose unique field duplicates another record.
// excludeID skips the record being updated.
func (s *Service) checkUnique(body datastore.Record, excludeID any) error {
	if s.desc.UniqueField == "" {
		return nil
	}
	value, ok := body[s.desc.UniqueField]
	if !ok || value == nil {
		return nil
	}

	_, found := s.store.FindBy(s.desc.Collection, func(rec datastore.Record) bool {
		if excludeID != nil && datastore.IDEqual(rec.ID(), excludeID) {
			return false
		}
		return valuesEqual(rec[s.desc.UniqueField], value)
	})
	if found {
		return internal.NewConflictError(s.desc.UniqueMessage, internal.ErrCodeDuplicateValue)
	}
	return nil
}

func valuesEqual(a, b any) bool {
	if a == nil || b == nil {
		return false
	}
	na, aok := datastore.AsNumber(a)
	nb, bok := datastore.AsNumber(b)
	if aok && bok {
		return na == nb
	}
	sa, saok := a.(string)
	sb, sbok := b.(string)
	return saok && sbok && sa == sb
}
