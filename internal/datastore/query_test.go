package datastore_test

import (
	"net/url"

	"github.com/massiben/rh-backend/internal/datastore"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("ListQuery", func() {
	var records []datastore.Record

	BeforeEach(func() {
		records = []datastore.Record{
			{"id": float64(1), "nom": "Durand", "solde": float64(12)},
			{"id": float64(2), "nom": "martin", "solde": float64(3)},
			{"id": float64(3), "nom": "Ébert", "solde": float64(25)},
			{"id": float64(4), "nom": "Benali"},
			{"id": float64(5), "solde": float64(7)},
		}
	})

	Describe("ParseListQuery", func() {
		It("separates reserved keys from field filters", func() {
			values, _ := url.ParseQuery("start=10&length=5&sortBy=nom&sortDir=desc&nom=dur&departement=RH")
			q := datastore.ParseListQuery(values)

			Expect(q.Start).To(Equal(10))
			Expect(q.Length).To(Equal(5))
			Expect(q.SortBy).To(Equal("nom"))
			Expect(q.SortDir).To(Equal("desc"))
			Expect(q.Filters).To(HaveKeyWithValue("nom", "dur"))
			Expect(q.Filters).To(HaveKeyWithValue("departement", "RH"))
			Expect(q.Filters).NotTo(HaveKey("start"))
		})

		It("defaults to the whole collection", func() {
			q := datastore.ParseListQuery(url.Values{})
			Expect(q.Start).To(Equal(0))
			Expect(q.Length).To(Equal(-1))
			Expect(q.SortDir).To(Equal("asc"))
		})
	})

	Describe("filtering", func() {
		It("matches case-insensitive substrings", func() {
			q := datastore.ListQuery{Length: -1, Filters: map[string]string{"nom": "MART"}}
			result := q.Apply(records)

			Expect(result.Filtered).To(Equal(1))
			Expect(result.Records[0]["nom"]).To(Equal("martin"))
		})

		It("excludes records missing the filtered field", func() {
			q := datastore.ListQuery{Length: -1, Filters: map[string]string{"nom": "a"}}
			result := q.Apply(records)

			for _, rec := range result.Records {
				Expect(rec).To(HaveKey("nom"))
			}
		})

		It("matches numbers by their textual form", func() {
			q := datastore.ListQuery{Length: -1, Filters: map[string]string{"solde": "12"}}
			result := q.Apply(records)

			Expect(result.Filtered).To(Equal(1))
			Expect(result.Records[0]["id"]).To(Equal(float64(1)))
		})
	})

	Describe("sorting", func() {
		It("orders numeric fields numerically", func() {
			q := datastore.ListQuery{Length: -1, SortBy: "solde", SortDir: "asc"}
			result := q.Apply(records)

			Expect(result.Records[0]["solde"]).To(Equal(float64(3)))
			Expect(result.Records[1]["solde"]).To(Equal(float64(7)))
			Expect(result.Records[2]["solde"]).To(Equal(float64(12)))
			Expect(result.Records[3]["solde"]).To(Equal(float64(25)))
		})

		It("keeps records missing the field last regardless of direction", func() {
			for _, dir := range []string{"asc", "desc"} {
				q := datastore.ListQuery{Length: -1, SortBy: "solde", SortDir: dir}
				result := q.Apply(records)

				last := result.Records[len(result.Records)-1]
				Expect(last).NotTo(HaveKey("solde"))
			}
		})

		It("collates strings with accent and case awareness", func() {
			q := datastore.ListQuery{Length: -1, SortBy: "nom", SortDir: "asc"}
			result := q.Apply(records)

			// Benali, Durand, Ébert, martin — É sorts with E, case ignored
			Expect(result.Records[0]["nom"]).To(Equal("Benali"))
			Expect(result.Records[1]["nom"]).To(Equal("Durand"))
			Expect(result.Records[2]["nom"]).To(Equal("Ébert"))
			Expect(result.Records[3]["nom"]).To(Equal("martin"))
		})

		It("reverses present values on desc but is stable otherwise", func() {
			q := datastore.ListQuery{Length: -1, SortBy: "solde", SortDir: "desc"}
			result := q.Apply(records)

			Expect(result.Records[0]["solde"]).To(Equal(float64(25)))
			Expect(result.Records[3]["solde"]).To(Equal(float64(3)))
		})
	})

	Describe("pagination", func() {
		It("slices the filtered and sorted array", func() {
			q := datastore.ListQuery{Start: 1, Length: 2, SortBy: "id", SortDir: "asc"}
			result := q.Apply(records)

			Expect(result.Total).To(Equal(5))
			Expect(result.Filtered).To(Equal(5))
			Expect(result.Records).To(HaveLen(2))
			Expect(result.Records[0]["id"]).To(Equal(float64(2)))
			Expect(result.Records[1]["id"]).To(Equal(float64(3)))
		})

		It("clamps windows past the end", func() {
			q := datastore.ListQuery{Start: 4, Length: 10}
			result := q.Apply(records)
			Expect(result.Records).To(HaveLen(1))

			q = datastore.ListQuery{Start: 50, Length: 10}
			result = q.Apply(records)
			Expect(result.Records).To(BeEmpty())
		})

		It("keeps recordsTotal unfiltered while recordsFiltered tracks filters", func() {
			q := datastore.ListQuery{Start: 0, Length: 1, Filters: map[string]string{"nom": "n"}}
			result := q.Apply(records)

			Expect(result.Total).To(Equal(5))
			Expect(result.Filtered).To(Equal(3)) // Durand, martin, Benali
			Expect(result.Records).To(HaveLen(1))
		})
	})
})
