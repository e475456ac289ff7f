package forms

import (
	"fmt"
	"time"

	"github.com/mlefranc/crm-actions/model"
)

const (
	msgRequired    = "is required"
	msgBadDate     = "must be a valid date (YYYY-MM-DD)"
	msgBadEnum     = "is not an accepted value"
	msgBadRef      = "must be a numeric identifier"
	MsgEndBefore   = "must be the same day or after date_debut"
	startFieldName = "date_debut"
	endFieldName   = "date_fin"
)

// Validate checks values against the field declarations: required-ness,
// per-kind shape, enum membership, and the end/start cross rule when both
// date fields are declared. Cross rules run here, at validation time,
// not on every field change. Equal start and end dates pass.
func Validate(fields []Field, values model.Payload) model.ValidationErrors {
	errs := model.ValidationErrors{}

	for _, f := range fields {
		v := values[f.Name]
		if isEmpty(v) {
			if f.Required {
				errs.Add(f.Name, msgRequired)
			}
			continue
		}

		switch f.Kind {
		case KindDate:
			if _, err := parseDate(v); err != nil {
				errs.Add(f.Name, msgBadDate)
			}
		case KindEnum:
			if !accepts(f, v) {
				errs.Add(f.Name, msgBadEnum)
			}
		case KindReference:
			if _, ok := ReferenceID(v); !ok {
				errs.Add(f.Name, msgBadRef)
			}
		}
	}

	validateDateOrder(fields, values, errs)
	return errs
}

// validateDateOrder enforces end >= start, same-or-after inclusive.
func validateDateOrder(fields []Field, values model.Payload, errs model.ValidationErrors) {
	if _, ok := findField(fields, endFieldName); !ok {
		return
	}
	start, err := parseDate(values[startFieldName])
	if err != nil {
		return
	}
	end, err := parseDate(values[endFieldName])
	if err != nil {
		return
	}
	if end.Before(start) {
		errs.Add(endFieldName, MsgEndBefore)
	}
}

func parseDate(v any) (time.Time, error) {
	switch d := v.(type) {
	case time.Time:
		return d, nil
	case string:
		if d == "" {
			return time.Time{}, fmt.Errorf("empty date")
		}
		return time.Parse(DateLayout, NormalizeDate(d).(string))
	}
	return time.Time{}, fmt.Errorf("not a date: %v", v)
}

func accepts(f Field, v any) bool {
	s, ok := v.(string)
	if !ok {
		return false
	}
	for _, accepted := range f.Accept {
		if s == accepted {
			return true
		}
	}
	return false
}

func isEmpty(v any) bool {
	switch e := v.(type) {
	case nil:
		return true
	case string:
		return e == ""
	}
	return false
}
