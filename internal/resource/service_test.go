package resource_test

import (
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"github.com/massiben/rh-backend/internal"
	"github.com/massiben/rh-backend/internal/core/events"
	"github.com/massiben/rh-backend/internal/datastore"
	"github.com/massiben/rh-backend/internal/resource"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func newStore() *datastore.Store {
	path := filepath.Join(GinkgoT().TempDir(), "db.json")
	store, err := datastore.Open(path, quietLogger())
	Expect(err).NotTo(HaveOccurred())
	return store
}

func descriptorFor(collection string) resource.Descriptor {
	for _, desc := range resource.Catalog() {
		if desc.Collection == collection {
			return desc
		}
	}
	Fail("unknown collection " + collection)
	return resource.Descriptor{}
}

func expectStatus(err error, status int) {
	appErr, ok := internal.IsAppError(err)
	ExpectWithOffset(1, ok).To(BeTrue(), "expected an AppError, got %v", err)
	ExpectWithOffset(1, appErr.StatusCode).To(Equal(status))
}

var _ = Describe("Resource Service", func() {
	var (
		store *datastore.Store
		bus   *events.EventBus
	)

	BeforeEach(func() {
		store = newStore()
		bus = events.NewEventBus(quietLogger())
	})

	Describe("departements", func() {
		var service *resource.Service

		BeforeEach(func() {
			service = resource.NewService(store, descriptorFor("departements"), bus, quietLogger())
		})

		It("creates with trimming and timestamps", func() {
			rec, err := service.Create(datastore.Record{"code": "  RH ", "libelle": "Ressources Humaines"})
			Expect(err).NotTo(HaveOccurred())

			Expect(rec["code"]).To(Equal("RH"))
			Expect(rec["created_at"]).NotTo(BeNil())
			Expect(rec["updated_at"]).NotTo(BeNil())
			Expect(rec["id"]).NotTo(BeNil())
		})

		It("rejects missing required fields", func() {
			_, err := service.Create(datastore.Record{"code": "RH"})
			expectStatus(err, http.StatusBadRequest)
		})

		It("rejects duplicate codes with the exact message", func() {
			_, err := service.Create(datastore.Record{"code": "RH", "libelle": "Ressources Humaines"})
			Expect(err).NotTo(HaveOccurred())

			_, err = service.Create(datastore.Record{"code": "RH", "libelle": "Autre"})
			expectStatus(err, http.StatusConflict)
			Expect(err.Error()).To(Equal("Code déjà existant"))
		})

		It("allows updating a record without tripping its own uniqueness", func() {
			rec, err := service.Create(datastore.Record{"id": float64(1), "code": "RH", "libelle": "Ressources Humaines"})
			Expect(err).NotTo(HaveOccurred())

			_, err = service.Update("1", datastore.Record{"code": "RH", "libelle": "Renommé"})
			Expect(err).NotTo(HaveOccurred())
			Expect(rec["code"]).To(Equal("RH"))
		})

		It("applies identical shallow merges for repeated updates", func() {
			_, err := service.Create(datastore.Record{"id": float64(1), "code": "RH", "libelle": "Ressources Humaines"})
			Expect(err).NotTo(HaveOccurred())

			first, err := service.Update("1", datastore.Record{"libelle": "Nouvelle"})
			Expect(err).NotTo(HaveOccurred())
			second, err := service.Update("1", datastore.Record{"libelle": "Nouvelle"})
			Expect(err).NotTo(HaveOccurred())

			Expect(second["libelle"]).To(Equal(first["libelle"]))
			Expect(second["code"]).To(Equal(first["code"]))
			Expect(second["id"]).To(Equal(first["id"]))
		})

		It("toggles the lifecycle flag", func() {
			_, err := service.Create(datastore.Record{"id": float64(1), "code": "RH", "libelle": "Ressources Humaines"})
			Expect(err).NotTo(HaveOccurred())

			rec, err := service.SetActive("1", false)
			Expect(err).NotTo(HaveOccurred())
			Expect(rec["is_active"]).To(Equal(false))

			rec, err = service.SetActive("1", true)
			Expect(err).NotTo(HaveOccurred())
			Expect(rec["is_active"]).To(Equal(true))
		})

		It("404s deletes of unknown ids and keeps the collection intact", func() {
			_, err := service.Create(datastore.Record{"id": float64(1), "code": "RH", "libelle": "Ressources Humaines"})
			Expect(err).NotTo(HaveOccurred())

			_, err = service.Delete("99")
			expectStatus(err, http.StatusNotFound)
			Expect(store.Len("departements")).To(Equal(1))
		})
	})

	Describe("parametres_generaux_max", func() {
		var service *resource.Service

		BeforeEach(func() {
			service = resource.NewService(store, descriptorFor("parametres_generaux_max"), bus, quietLogger())
			_, err := service.Create(datastore.Record{"id": float64(1), "type": "JOURS_CONGES_ANNUELS", "valeur": float64(30), "is_required": true})
			Expect(err).NotTo(HaveOccurred())
			_, err = service.Create(datastore.Record{"id": float64(2), "type": "JOURS_RTT", "valeur": float64(10), "is_required": false})
			Expect(err).NotTo(HaveOccurred())
		})

		It("coerces numeric strings and rejects garbage", func() {
			rec, err := service.Create(datastore.Record{"id": float64(3), "type": "HEURES_HEBDO", "valeur": "35"})
			Expect(err).NotTo(HaveOccurred())
			Expect(rec["valeur"]).To(Equal(float64(35)))

			_, err = service.Create(datastore.Record{"type": "AUTRE", "valeur": "beaucoup"})
			expectStatus(err, http.StatusBadRequest)
		})

		It("forbids updating a required parameter and leaves it unchanged", func() {
			_, err := service.Update("1", datastore.Record{"valeur": float64(0)})
			expectStatus(err, http.StatusForbidden)

			rec, err := service.Get("1")
			Expect(err).NotTo(HaveOccurred())
			Expect(rec["valeur"]).To(Equal(float64(30)))
		})

		It("forbids deleting a required parameter", func() {
			_, err := service.Delete("1")
			expectStatus(err, http.StatusForbidden)
			Expect(store.Len("parametres_generaux_max")).To(Equal(2))
		})

		It("still mutates non-required parameters", func() {
			rec, err := service.Update("2", datastore.Record{"valeur": float64(12)})
			Expect(err).NotTo(HaveOccurred())
			Expect(rec["valeur"]).To(Equal(float64(12)))

			_, err = service.Delete("2")
			Expect(err).NotTo(HaveOccurred())
			Expect(store.Len("parametres_generaux_max")).To(Equal(1))
		})
	})

	Describe("employees list", func() {
		var service *resource.Service

		BeforeEach(func() {
			service = resource.NewService(store, descriptorFor("employees"), bus, quietLogger())
			for i, nom := range []string{"Diallo", "Martin", "Benali", "Durand"} {
				_, err := service.Create(datastore.Record{
					"id":     float64(i + 1),
					"nom":    nom,
					"prenom": "Test",
				})
				Expect(err).NotTo(HaveOccurred())
			}
		})

		It("obeys the recordsTotal/recordsFiltered/page law", func() {
			result := service.List(datastore.ListQuery{
				Start:   1,
				Length:  2,
				SortBy:  "nom",
				SortDir: "asc",
				Filters: map[string]string{"nom": "n"},
			})

			// Benali, Durand, Martin contain "n"; window skips Benali
			Expect(result.Total).To(Equal(4))
			Expect(result.Filtered).To(Equal(3))
			Expect(result.Records).To(HaveLen(2))
			Expect(result.Records[0]["nom"]).To(Equal("Durand"))
			Expect(result.Records[1]["nom"]).To(Equal("Martin"))
		})
	})
})
