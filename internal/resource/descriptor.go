package resource

import (
	"github.com/massiben/rh-backend/internal/datastore"
)

// Descriptor configures the parameterized resource handler for one
// collection. The original backend hand-wrote a near-identical route file per
// collection; every behavioral difference between them fits in this struct.
type Descriptor struct {
	// Collection is the key in the store document.
	Collection string
	// Route is the path the collection is mounted at, e.g. /settings/canaux.
	Route string

	// Required fields checked on create.
	Required []string
	// Trimmed string fields, cleaned before validation and storage.
	Trimmed []string
	// Numeric fields, coerced on create and update; NaN and unparsable
	// values are rejected.
	Numeric []string

	// UniqueField, when set, is checked against the rest of the collection
	// on create and update; duplicates answer 409 with UniqueMessage.
	UniqueField   string
	UniqueMessage string

	// Immutable guards records from update and delete (403) when it
	// returns true for the stored record.
	Immutable func(datastore.Record) bool

	// Timestamps controls created_at/updated_at maintenance.
	Timestamps bool
	// Lifecycle adds the activate/deactivate PATCH sub-routes.
	Lifecycle bool
}

// Catalog lists the collections served by specialized routes. Everything else
// in the document falls through to the generic router.
func Catalog() []Descriptor {
	return []Descriptor{
		{
			Collection:    "employees",
			Route:         "/employees",
			Required:      []string{"nom", "prenom"},
			Trimmed:       []string{"nom", "prenom", "matricule", "email"},
			UniqueField:   "matricule",
			UniqueMessage: "Matricule déjà existant",
			Timestamps:    true,
		},
		{
			Collection: "avenants",
			Route:      "/avenants",
			Required:   []string{"contrat_id"},
			Numeric:    []string{"contrat_id", "employee_id"},
			Timestamps: true,
		},
		{
			Collection: "compteurs_conges",
			Route:      "/compteurs-conges",
			Required:   []string{"employee_id"},
			Numeric:    []string{"employee_id", "solde"},
			Timestamps: true,
		},
		{
			Collection:    "departements",
			Route:         "/settings/departements",
			Required:      []string{"code", "libelle"},
			Trimmed:       []string{"code", "libelle"},
			UniqueField:   "code",
			UniqueMessage: "Code déjà existant",
			Timestamps:    true,
			Lifecycle:     true,
		},
		{
			Collection:    "canaux",
			Route:         "/settings/canaux",
			Required:      []string{"code", "libelle"},
			Trimmed:       []string{"code", "libelle"},
			UniqueField:   "code",
			UniqueMessage: "Code déjà existant",
			Timestamps:    true,
		},
		{
			Collection:    "parametres_generaux_max",
			Route:         "/settings/parametres-generaux-max",
			Required:      []string{"type", "valeur"},
			Trimmed:       []string{"type"},
			Numeric:       []string{"valeur"},
			UniqueField:   "type",
			UniqueMessage: "Type déjà existant",
			Immutable: func(rec datastore.Record) bool {
				required, _ := rec["is_required"].(bool)
				return required
			},
			Timestamps: true,
		},
	}
}
