package rest_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"

	"github.com/massiben/rh-backend/internal/core/events"
	"github.com/massiben/rh-backend/internal/datastore"
	"github.com/massiben/rh-backend/internal/transport/rest"
	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func newRouter() (*chi.Mux, *datastore.Store) {
	path := filepath.Join(GinkgoT().TempDir(), "db.json")
	store, err := datastore.Open(path, quietLogger())
	Expect(err).NotTo(HaveOccurred())
	store.Bootstrap()

	router := chi.NewRouter()
	rest.RegisterAllRoutes(router, store, events.NewEventBus(quietLogger()), quietLogger())
	return router, store
}

// do performs one request and decodes the JSON response body.
func do(router *chi.Mux, method, target string, body any, headers ...http.Header) (*httptest.ResponseRecorder, map[string]any) {
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		Expect(err).NotTo(HaveOccurred())
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	for _, h := range headers {
		for key, values := range h {
			req.Header[key] = values
		}
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	decoded := map[string]any{}
	if rec.Body.Len() > 0 {
		Expect(json.Unmarshal(rec.Body.Bytes(), &decoded)).To(Succeed())
	}
	return rec, decoded
}

func bearer(token string) http.Header {
	h := http.Header{}
	h.Set("Authorization", "Bearer "+token)
	return h
}

var _ = Describe("HTTP API", func() {
	var (
		router *chi.Mux
		store  *datastore.Store
	)

	BeforeEach(func() {
		router, store = newRouter()
	})

	Describe("health endpoints", func() {
		It("pings", func() {
			rec, body := do(router, http.MethodGet, "/ping", nil)
			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(body["status"]).To(Equal("OK"))
		})

		It("reports the store component", func() {
			rec, body := do(router, http.MethodGet, "/health", nil)
			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(body["status"]).To(Equal("healthy"))

			components, _ := body["components"].(map[string]any)
			Expect(components).To(HaveKey("store"))
		})
	})

	Describe("authentication flow", func() {
		It("logs in, identifies and refreshes", func() {
			rec, body := do(router, http.MethodPost, "/login", map[string]string{
				"email":    "admin@example.com",
				"password": "password",
			})
			Expect(rec.Code).To(Equal(http.StatusOK))
			accessToken, _ := body["access_token"].(string)
			refreshToken, _ := body["refresh_token"].(string)
			Expect(accessToken).NotTo(BeEmpty())

			role, _ := body["role"].(map[string]any)
			Expect(role["code"]).To(Equal("ADMIN"))

			rec, body = do(router, http.MethodGet, "/me", nil, bearer(accessToken))
			Expect(rec.Code).To(Equal(http.StatusOK))
			user, _ := body["user"].(map[string]any)
			Expect(user["email"]).To(Equal("admin@example.com"))
			Expect(user).NotTo(HaveKey("password"))

			rec, body = do(router, http.MethodPost, "/refresh", map[string]string{
				"refresh_token": refreshToken,
			})
			Expect(rec.Code).To(Equal(http.StatusOK))
			rotated, _ := body["access_token"].(string)
			Expect(rotated).NotTo(BeEmpty())
			Expect(rotated).NotTo(Equal(accessToken))

			// the pre-rotation access token no longer resolves
			rec, body = do(router, http.MethodGet, "/me", nil, bearer(accessToken))
			Expect(rec.Code).To(Equal(http.StatusUnauthorized))
			Expect(body["status"]).To(Equal("error"))

			rec, _ = do(router, http.MethodGet, "/me", nil, bearer(rotated))
			Expect(rec.Code).To(Equal(http.StatusOK))
		})

		It("answers the error envelope on bad credentials", func() {
			rec, body := do(router, http.MethodPost, "/login", map[string]string{
				"email":    "admin@example.com",
				"password": "wrong",
			})
			Expect(rec.Code).To(Equal(http.StatusUnauthorized))
			Expect(body["status"]).To(Equal("error"))
			Expect(body["message"]).To(Equal("Identifiants invalides"))
			Expect(body).To(HaveKeyWithValue("data", BeNil()))
		})

		It("rejects /me without a token", func() {
			rec, body := do(router, http.MethodGet, "/me", nil)
			Expect(rec.Code).To(Equal(http.StatusUnauthorized))
			Expect(body["message"]).To(Equal("Token manquant"))
		})
	})

	Describe("employees", func() {
		It("creates then reads back a superset of the posted body", func() {
			rec, body := do(router, http.MethodPost, "/employees", map[string]any{
				"nom":       "Diallo",
				"prenom":    "Aminata",
				"matricule": "EMP-001",
			})
			Expect(rec.Code).To(Equal(http.StatusCreated))
			Expect(body["message"]).To(Equal("Enregistrement créé"))

			created, _ := body["data"].(map[string]any)
			id, _ := created["id"].(float64)
			Expect(id).To(BeNumerically(">", 0))

			rec, body = do(router, http.MethodGet, "/employees?sortBy=nom", nil)
			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(body["recordsTotal"]).To(Equal(float64(1)))
			Expect(body["recordsFiltered"]).To(Equal(float64(1)))

			records, _ := body["data"].([]any)
			Expect(records).To(HaveLen(1))
			first, _ := records[0].(map[string]any)
			Expect(first["nom"]).To(Equal("Diallo"))
			Expect(first["created_at"]).NotTo(BeNil())
		})

		It("treats PUT and PATCH identically", func() {
			_, body := do(router, http.MethodPost, "/employees", map[string]any{
				"id": 1, "nom": "Diallo", "prenom": "Aminata",
			})
			created, _ := body["data"].(map[string]any)
			Expect(created["id"]).To(Equal(float64(1)))

			rec, putBody := do(router, http.MethodPut, "/employees/1", map[string]any{"email": "d@example.com"})
			Expect(rec.Code).To(Equal(http.StatusOK))
			rec, patchBody := do(router, http.MethodPatch, "/employees/1", map[string]any{"email": "d@example.com"})
			Expect(rec.Code).To(Equal(http.StatusOK))

			putRec, _ := putBody["data"].(map[string]any)
			patchRec, _ := patchBody["data"].(map[string]any)
			Expect(patchRec["email"]).To(Equal(putRec["email"]))
			Expect(patchRec["nom"]).To(Equal("Diallo"))
			Expect(patchRec["id"]).To(Equal(float64(1)))
		})

		It("rejects duplicate matricules", func() {
			do(router, http.MethodPost, "/employees", map[string]any{
				"nom": "Diallo", "prenom": "Aminata", "matricule": "EMP-001",
			})
			rec, body := do(router, http.MethodPost, "/employees", map[string]any{
				"nom": "Martin", "prenom": "Lucas", "matricule": "EMP-001",
			})
			Expect(rec.Code).To(Equal(http.StatusConflict))
			Expect(body["message"]).To(Equal("Matricule déjà existant"))
		})
	})

	Describe("settings collections", func() {
		It("409s duplicate departement codes", func() {
			rec, _ := do(router, http.MethodPost, "/settings/departements", map[string]any{
				"code": "RH", "libelle": "Ressources Humaines",
			})
			Expect(rec.Code).To(Equal(http.StatusCreated))

			rec, body := do(router, http.MethodPost, "/settings/departements", map[string]any{
				"code": "RH", "libelle": "Autre",
			})
			Expect(rec.Code).To(Equal(http.StatusConflict))
			Expect(body["message"]).To(Equal("Code déjà existant"))
		})

		It("activates and deactivates departements", func() {
			_, body := do(router, http.MethodPost, "/settings/departements", map[string]any{
				"id": 1, "code": "RH", "libelle": "Ressources Humaines",
			})
			created, _ := body["data"].(map[string]any)
			Expect(created["id"]).To(Equal(float64(1)))

			rec, body := do(router, http.MethodPatch, "/settings/departements/1/deactivate", nil)
			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(body["message"]).To(Equal("Enregistrement désactivé"))
			data, _ := body["data"].(map[string]any)
			Expect(data["is_active"]).To(Equal(false))

			rec, body = do(router, http.MethodPatch, "/settings/departements/1/activate", nil)
			Expect(rec.Code).To(Equal(http.StatusOK))
			data, _ = body["data"].(map[string]any)
			Expect(data["is_active"]).To(Equal(true))
		})

		It("protects required general parameters from update and delete", func() {
			_, body := do(router, http.MethodPost, "/settings/parametres-generaux-max", map[string]any{
				"id": 1, "type": "JOURS_CONGES_ANNUELS", "valeur": 30, "is_required": true,
			})
			created, _ := body["data"].(map[string]any)
			Expect(created["id"]).To(Equal(float64(1)))

			rec, body := do(router, http.MethodPut, "/settings/parametres-generaux-max/1", map[string]any{"valeur": 0})
			Expect(rec.Code).To(Equal(http.StatusForbidden))
			Expect(body["message"]).To(Equal("Ce paramètre est requis et ne peut pas être modifié"))

			rec, _ = do(router, http.MethodDelete, "/settings/parametres-generaux-max/1", nil)
			Expect(rec.Code).To(Equal(http.StatusForbidden))

			rec, body = do(router, http.MethodGet, "/settings/parametres-generaux-max/1", nil)
			Expect(rec.Code).To(Equal(http.StatusOK))
			data, _ := body["data"].(map[string]any)
			Expect(data["valeur"]).To(Equal(float64(30)))
		})
	})

	Describe("organization routes", func() {
		BeforeEach(func() {
			store.Insert("sieges", datastore.Record{"id": float64(1), "code": "PAR", "libelle": "Paris"})
			store.Insert("groupes", datastore.Record{"id": float64(10), "siege_id": float64(1), "libelle": "Direction"})
			store.Insert("membres", datastore.Record{"id": float64(100), "groupe_id": float64(10), "employee_id": float64(7)})
			store.Insert("employees", datastore.Record{"id": float64(7), "nom": "Diallo", "prenom": "Aminata", "matricule": "EMP-001"})
		})

		It("serves sieges with embedded groupes", func() {
			rec, body := do(router, http.MethodGet, "/sieges/1", nil)
			Expect(rec.Code).To(Equal(http.StatusOK))

			data, _ := body["data"].(map[string]any)
			groupes, _ := data["groupes"].([]any)
			Expect(groupes).To(HaveLen(1))
		})

		It("serves groupe membres with employee projections", func() {
			rec, body := do(router, http.MethodGet, "/groupes/10/membres", nil)
			Expect(rec.Code).To(Equal(http.StatusOK))

			membres, _ := body["data"].([]any)
			Expect(membres).To(HaveLen(1))
			membre, _ := membres[0].(map[string]any)
			employee, _ := membre["employee"].(map[string]any)
			Expect(employee["matricule"]).To(Equal("EMP-001"))
		})
	})

	Describe("generic collections", func() {
		BeforeEach(func() {
			store.EnsureCollection("conges")
		})

		It("serves CRUD on any document collection", func() {
			rec, body := do(router, http.MethodPost, "/conges", map[string]any{"id": 1, "motif": "Vacances"})
			Expect(rec.Code).To(Equal(http.StatusCreated))
			data, _ := body["data"].(map[string]any)
			Expect(data["id"]).To(Equal(float64(1)))

			rec, body = do(router, http.MethodGet, "/conges/1", nil)
			Expect(rec.Code).To(Equal(http.StatusOK))
			data, _ = body["data"].(map[string]any)
			Expect(data["motif"]).To(Equal("Vacances"))

			rec, _ = do(router, http.MethodDelete, "/conges/1", nil)
			Expect(rec.Code).To(Equal(http.StatusOK))

			rec, body = do(router, http.MethodGet, "/conges/1", nil)
			Expect(rec.Code).To(Equal(http.StatusNotFound))
			Expect(body["message"]).To(Equal("Enregistrement introuvable"))
		})

		It("404s collections absent from the document", func() {
			rec, body := do(router, http.MethodGet, "/inconnus", nil)
			Expect(rec.Code).To(Equal(http.StatusNotFound))
			Expect(body["message"]).To(Equal("Collection introuvable"))
		})
	})
})
