package validation

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/massiben/rh-backend/internal"
	"github.com/massiben/rh-backend/internal/datastore"
)

// Builder accumulates field-level checks over one record and reports them as
// a single 400 AppError. Checks that coerce (trim, numeric parsing) mutate
// the record in place so the stored value is the cleaned one.
type Builder struct {
	messages []string
	code     internal.ErrorCode
}

func New() *Builder {
	return &Builder{code: internal.ErrCodeValidationFailed}
}

// Require flags every listed field that is absent, nil or blank.
func (b *Builder) Require(rec datastore.Record, fields ...string) *Builder {
	for _, field := range fields {
		value, ok := rec[field]
		if !ok || value == nil {
			b.add(fmt.Sprintf("Le champ %s est requis", field), internal.ErrCodeMissingField)
			continue
		}
		if s, isString := value.(string); isString && strings.TrimSpace(s) == "" {
			b.add(fmt.Sprintf("Le champ %s est requis", field), internal.ErrCodeMissingField)
		}
	}
	return b
}

// TrimStrings trims whitespace from the listed string fields in place.
func (b *Builder) TrimStrings(rec datastore.Record, fields ...string) *Builder {
	for _, field := range fields {
		if s, ok := rec[field].(string); ok {
			rec[field] = strings.TrimSpace(s)
		}
	}
	return b
}

// Numbers coerces the listed fields to numbers, rejecting NaN and unparsable
// values. String representations are converted so "12" stores as 12.
func (b *Builder) Numbers(rec datastore.Record, fields ...string) *Builder {
	for _, field := range fields {
		value, ok := rec[field]
		if !ok || value == nil {
			continue
		}
		if n, isNum := datastore.AsNumber(value); isNum {
			if math.IsNaN(n) {
				b.add(fmt.Sprintf("Le champ %s doit être numérique", field), internal.ErrCodeInvalidNumber)
				continue
			}
			rec[field] = n
			continue
		}
		if s, isString := value.(string); isString {
			if n, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil && !math.IsNaN(n) {
				rec[field] = n
				continue
			}
		}
		b.add(fmt.Sprintf("Le champ %s doit être numérique", field), internal.ErrCodeInvalidNumber)
	}
	return b
}

func (b *Builder) add(message string, code internal.ErrorCode) {
	if len(b.messages) == 0 {
		b.code = code
	}
	b.messages = append(b.messages, message)
}

// Err returns nil when every check passed, otherwise one 400 error carrying
// all collected messages.
func (b *Builder) Err() *internal.AppError {
	if len(b.messages) == 0 {
		return nil
	}
	return internal.NewValidationError(strings.Join(b.messages, "; "), b.code)
}
