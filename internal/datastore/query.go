package datastore

import (
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// reserved query keys of the server-side list contract; everything else is a
// field filter.
var reservedKeys = map[string]bool{
	"start":   true,
	"length":  true,
	"sortBy":  true,
	"sortDir": true,
}

// ListQuery is the DataTables-style server-side list contract: slice window,
// optional sort, and case-insensitive substring filters on arbitrary fields.
type ListQuery struct {
	Start   int
	Length  int // -1 means no pagination
	SortBy  string
	SortDir string
	Filters map[string]string
}

// ListResult carries the page plus the counts the front-end tables expect.
type ListResult struct {
	Records  []Record
	Total    int // unfiltered collection size
	Filtered int // size after applying all filters
}

// ParseListQuery reads the list contract from URL query values. Invalid or
// absent numbers fall back to "from the beginning" and "everything".
func ParseListQuery(values url.Values) ListQuery {
	q := ListQuery{
		Start:   0,
		Length:  -1,
		SortDir: "asc",
		Filters: make(map[string]string),
	}

	if v := values.Get("start"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			q.Start = n
		}
	}
	if v := values.Get("length"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			q.Length = n
		}
	}
	q.SortBy = values.Get("sortBy")
	if v := strings.ToLower(values.Get("sortDir")); v == "desc" {
		q.SortDir = "desc"
	}

	for key := range values {
		if reservedKeys[key] {
			continue
		}
		if v := values.Get(key); v != "" {
			q.Filters[key] = v
		}
	}
	return q
}

// Apply filters, sorts and paginates records according to q. The input slice
// is the full collection; it is not modified.
func (q ListQuery) Apply(records []Record) ListResult {
	result := ListResult{Total: len(records)}

	filtered := records
	if len(q.Filters) > 0 {
		filtered = make([]Record, 0, len(records))
		for _, rec := range records {
			if q.matches(rec) {
				filtered = append(filtered, rec)
			}
		}
	} else {
		filtered = append([]Record(nil), records...)
	}
	result.Filtered = len(filtered)

	if q.SortBy != "" {
		sortRecords(filtered, q.SortBy, q.SortDir == "desc")
	}

	result.Records = q.page(filtered)
	if result.Records == nil {
		result.Records = []Record{}
	}
	return result
}

func (q ListQuery) matches(rec Record) bool {
	for field, want := range q.Filters {
		value, ok := rec[field]
		if !ok || value == nil {
			return false
		}
		if !strings.Contains(strings.ToLower(stringify(value)), strings.ToLower(want)) {
			return false
		}
	}
	return true
}

func (q ListQuery) page(records []Record) []Record {
	if q.Length < 0 {
		return records
	}
	if q.Start >= len(records) {
		return []Record{}
	}
	end := q.Start + q.Length
	if end > len(records) {
		end = len(records)
	}
	return records[q.Start:end]
}

// sortRecords orders records by one field. Records missing the field sort
// last regardless of direction; numeric values compare numerically, anything
// else through French-locale, case-insensitive collation.
func sortRecords(records []Record, field string, desc bool) {
	coll := collate.New(language.French, collate.IgnoreCase)

	sort.SliceStable(records, func(i, j int) bool {
		va, aok := presentValue(records[i], field)
		vb, bok := presentValue(records[j], field)
		if aok != bok {
			return aok // present before missing, whatever the direction
		}
		if !aok {
			return false
		}
		cmp := compareValues(coll, va, vb)
		if desc {
			return cmp > 0
		}
		return cmp < 0
	})
}

func presentValue(rec Record, field string) (any, bool) {
	v, ok := rec[field]
	if !ok || v == nil {
		return nil, false
	}
	return v, true
}

func compareValues(coll *collate.Collator, a, b any) int {
	na, aok := AsNumber(a)
	nb, bok := AsNumber(b)
	if aok && bok {
		switch {
		case na < nb:
			return -1
		case na > nb:
			return 1
		default:
			return 0
		}
	}
	return coll.CompareString(stringify(a), stringify(b))
}

func stringify(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}
