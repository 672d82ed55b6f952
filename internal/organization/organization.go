package organization

import (
	"log/slog"

	"github.com/massiben/rh-backend/internal"
	"github.com/massiben/rh-backend/internal/datastore"
)

const (
	siegesCollection    = "sieges"
	groupesCollection   = "groupes"
	membresCollection   = "membres"
	employeesCollection = "employees"
)

// Service serves the headquarters hierarchy: sieges own groupes, groupes own
// membres, membres point at employees. Joins are recomputed on every request
// by linear scans; nothing is materialized.
type Service struct {
	store  *datastore.Store
	logger *slog.Logger
}

func NewService(store *datastore.Store, logger *slog.Logger) *Service {
	for _, name := range []string{siegesCollection, groupesCollection, membresCollection} {
		store.EnsureCollection(name)
	}
	return &Service{store: store, logger: logger}
}

// ListSieges returns every siege enriched with its groupes.
func (s *Service) ListSieges() []datastore.Record {
	sieges := s.store.All(siegesCollection)
	for _, siege := range sieges {
		siege["groupes"] = s.groupesOf(siege.ID())
	}
	if sieges == nil {
		sieges = []datastore.Record{}
	}
	return sieges
}

// GetSiege returns one siege enriched with its groupes.
func (s *Service) GetSiege(id string) (datastore.Record, error) {
	siege, ok := s.store.Find(siegesCollection, datastore.CoerceID(id))
	if !ok {
		return nil, internal.ErrRecordNotFound
	}
	siege["groupes"] = s.groupesOf(siege.ID())
	return siege, nil
}

// SiegeGroupes returns the groupes belonging to one siege.
func (s *Service) SiegeGroupes(id string) ([]datastore.Record, error) {
	siege, ok := s.store.Find(siegesCollection, datastore.CoerceID(id))
	if !ok {
		return nil, internal.ErrRecordNotFound
	}
	return s.groupesOf(siege.ID()), nil
}

// GroupeMembres returns the membres of one groupe, each joined to its
// employee record projected for display. Membres whose employee no longer
// resolves keep a null employee instead of disappearing.
func (s *Service) GroupeMembres(id string) ([]datastore.Record, error) {
	groupe, ok := s.store.Find(groupesCollection, datastore.CoerceID(id))
	if !ok {
		return nil, internal.ErrRecordNotFound
	}

	membres := s.store.FilterBy(membresCollection, func(rec datastore.Record) bool {
		return datastore.IDEqual(rec["groupe_id"], groupe.ID())
	})
	for _, membre := range membres {
		membre["employee"] = s.employeeProjection(membre["employee_id"])
	}
	if membres == nil {
		membres = []datastore.Record{}
	}
	return membres, nil
}

func (s *Service) groupesOf(siegeID any) []datastore.Record {
	groupes := s.store.FilterBy(groupesCollection, func(rec datastore.Record) bool {
		return datastore.IDEqual(rec["siege_id"], siegeID)
	})
	if groupes == nil {
		groupes = []datastore.Record{}
	}
	return groupes
}

// employeeProjection reduces an employee record to its display fields.
func (s *Service) employeeProjection(employeeID any) any {
	employee, ok := s.store.FindBy(employeesCollection, func(rec datastore.Record) bool {
		return datastore.IDEqual(rec.ID(), employeeID)
	})
	if !ok {
		return nil
	}
	return datastore.Record{
		"id":        employee["id"],
		"nom":       employee["nom"],
		"prenom":    employee["prenom"],
		"matricule": employee["matricule"],
	}
}
