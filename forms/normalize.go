package forms

import (
	"fmt"
	"strings"
	"time"

	"github.com/mlefranc/crm-actions/model"
)

const DateLayout = "2006-01-02"

// Normalize coerces every declared field of values to its canonical form:
// dates to YYYY-MM-DD, booleans made explicit, enum values rewritten to
// their accepted literal. Undeclared keys pass through untouched.
// The pass is idempotent.
func (s Schema) Normalize(values model.Payload) model.Payload {
	out := values.Clone()
	for _, f := range s.Fields {
		switch f.Kind {
		case KindDate:
			if v, ok := out[f.Name]; ok {
				out[f.Name] = NormalizeDate(v)
			}
		case KindBoolean:
			out[f.Name] = asBool(out[f.Name])
		case KindEnum:
			if v, ok := out[f.Name]; ok {
				out[f.Name] = normalizeEnum(f, v)
			}
		}
	}
	return out
}

// NormalizeDate coerces a date value to the YYYY-MM-DD wire form.
// time.Time values are formatted; ISO datetime strings keep the date
// part only; already-canonical strings come back unchanged. Values it
// cannot interpret are returned as-is for validation to reject.
func NormalizeDate(v any) any {
	switch d := v.(type) {
	case time.Time:
		return d.Format(DateLayout)
	case *time.Time:
		if d == nil {
			return v
		}
		return d.Format(DateLayout)
	case string:
		if d == "" {
			return d
		}
		if _, err := time.Parse(DateLayout, d); err == nil {
			return d
		}
		if len(d) >= len(DateLayout) {
			head := d[:len(DateLayout)]
			if _, err := time.Parse(DateLayout, head); err == nil {
				return head
			}
		}
		return d
	}
	return v
}

func asBool(v any) bool {
	switch b := v.(type) {
	case bool:
		return b
	case int:
		return b != 0
	case int64:
		return b != 0
	case float64:
		return b != 0
	case string:
		return b == "1" || strings.EqualFold(b, "true")
	}
	return false
}

// normalizeEnum rewrites a free-cased value to the accepted literal.
// Values outside the accept list are only first-letter capitalized and
// left for validation to reject.
func normalizeEnum(f Field, v any) any {
	s, ok := v.(string)
	if !ok || s == "" {
		return v
	}
	for _, accepted := range f.Accept {
		if strings.EqualFold(s, accepted) {
			return accepted
		}
	}
	return capitalize(s)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
}

// ReferenceID coerces a reference value to its numeric identifier.
// Empty and nil values report ok=false so callers can omit the key.
func ReferenceID(v any) (id int64, ok bool) {
	switch r := v.(type) {
	case int64:
		return r, r != 0
	case int:
		return int64(r), r != 0
	case float64:
		return int64(r), r != 0
	case string:
		if r == "" {
			return 0, false
		}
		var n int64
		if _, err := fmt.Sscanf(r, "%d", &n); err != nil {
			return 0, false
		}
		return n, n != 0
	}
	return 0, false
}
