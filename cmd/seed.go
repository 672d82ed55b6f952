package cmd

import (
	"fmt"
	"log"
	"os"

	"github.com/massiben/rh-backend/internal/datastore"
	"github.com/massiben/rh-backend/pkg/logger"
	"github.com/spf13/cobra"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the store with sample data",
	Long:  `Seed the JSON store with sample HR data for development and testing purposes.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(".")
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		logger.Init(cfg.Logging.Level, cfg.Logging.Format)

		if clearData {
			if err := os.Remove(cfg.Store.Path); err != nil && !os.IsNotExist(err) {
				log.Fatalf("failed to clear store file: %v", err)
			}
			fmt.Println("Cleared existing store file:", cfg.Store.Path)
		}

		store, err := datastore.Open(cfg.Store.Path, logger.LoggerWrapper())
		if err != nil {
			log.Fatalf("failed to open store: %v", err)
		}

		store.Bootstrap()

		seedCollection(store, "departements", []datastore.Record{
			{"id": float64(1), "code": "RH", "libelle": "Ressources Humaines", "is_active": true},
			{"id": float64(2), "code": "IT", "libelle": "Informatique", "is_active": true},
			{"id": float64(3), "code": "FIN", "libelle": "Finance", "is_active": false},
		})

		seedCollection(store, "canaux", []datastore.Record{
			{"id": float64(1), "code": "EMAIL", "libelle": "Email"},
			{"id": float64(2), "code": "SMS", "libelle": "SMS"},
		})

		seedCollection(store, "parametres_generaux_max", []datastore.Record{
			{"id": float64(1), "type": "JOURS_CONGES_ANNUELS", "valeur": float64(30), "is_required": true},
			{"id": float64(2), "type": "JOURS_RTT", "valeur": float64(10), "is_required": false},
			{"id": float64(3), "type": "HEURES_HEBDO", "valeur": float64(35), "is_required": true},
		})

		seedCollection(store, "employees", []datastore.Record{
			{"id": float64(1), "matricule": "EMP-001", "nom": "Diallo", "prenom": "Aminata", "email": "a.diallo@example.com", "departement_id": float64(1)},
			{"id": float64(2), "matricule": "EMP-002", "nom": "Martin", "prenom": "Lucas", "email": "l.martin@example.com", "departement_id": float64(2)},
			{"id": float64(3), "matricule": "EMP-003", "nom": "Benali", "prenom": "Yasmine", "email": "y.benali@example.com", "departement_id": float64(2)},
		})

		seedCollection(store, "contrats", []datastore.Record{
			{"id": float64(1), "employee_id": float64(1), "type": "CDI", "date_debut": "2023-01-09"},
			{"id": float64(2), "employee_id": float64(2), "type": "CDD", "date_debut": "2024-03-01", "date_fin": "2025-02-28"},
		})

		seedCollection(store, "avenants", []datastore.Record{
			{"id": float64(1), "contrat_id": float64(1), "employee_id": float64(1), "objet": "Augmentation salariale", "date_effet": "2024-06-01"},
			{"id": float64(2), "contrat_id": float64(2), "employee_id": float64(2), "objet": "Prolongation de mission", "date_effet": "2024-09-01"},
		})

		seedCollection(store, "compteurs_conges", []datastore.Record{
			{"id": float64(1), "employee_id": float64(1), "type": "CP", "solde": float64(18.5)},
			{"id": float64(2), "employee_id": float64(2), "type": "CP", "solde": float64(25)},
			{"id": float64(3), "employee_id": float64(2), "type": "RTT", "solde": float64(4)},
		})

		seedCollection(store, "sieges", []datastore.Record{
			{"id": float64(1), "code": "PAR", "libelle": "Siège Paris"},
			{"id": float64(2), "code": "LYO", "libelle": "Siège Lyon"},
		})

		seedCollection(store, "groupes", []datastore.Record{
			{"id": float64(1), "siege_id": float64(1), "libelle": "Groupe Paie"},
			{"id": float64(2), "siege_id": float64(1), "libelle": "Groupe Recrutement"},
			{"id": float64(3), "siege_id": float64(2), "libelle": "Groupe Support"},
		})

		seedCollection(store, "membres", []datastore.Record{
			{"id": float64(1), "groupe_id": float64(1), "employee_id": float64(1)},
			{"id": float64(2), "groupe_id": float64(1), "employee_id": float64(2)},
			{"id": float64(3), "groupe_id": float64(3), "employee_id": float64(3)},
		})

		if err := store.Flush(); err != nil {
			log.Fatalf("failed to write store file: %v", err)
		}

		fmt.Println("Store seeded successfully:", cfg.Store.Path)
	},
}

// seedCollection inserts the samples only when the collection is empty, so
// re-running the seeder never duplicates data.
func seedCollection(store *datastore.Store, name string, records []datastore.Record) {
	store.EnsureCollection(name)
	if store.Len(name) > 0 {
		fmt.Printf("collection %s already has data; skipping\n", name)
		return
	}
	for _, rec := range records {
		store.Insert(name, rec)
	}
	fmt.Printf("Seeded %s (%d records)\n", name, len(records))
}
