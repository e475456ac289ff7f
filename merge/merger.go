package merge

import (
	"github.com/mlefranc/crm-actions/forms"
	"github.com/mlefranc/crm-actions/log"
	"github.com/mlefranc/crm-actions/model"
)

// Input carries the three draft layers and the field declarations that
// drive the final normalization pass.
type Input struct {
	// Schema is the active sub-form schema; its declarations cover the
	// type-specific keys of the payload.
	Schema forms.Schema
	// SubForm is the latest sub-form snapshot.
	SubForm model.Payload
	// Steps holds the captured step snapshots in ascending step order.
	Steps []model.Payload
	// BaseName and BaseDate are the authoritative identity and
	// scheduling values owned by the top-level wizard.
	BaseName string
	BaseDate string
	// Fields declares the wizard-owned keys (name, dates, references)
	// for the normalization pass.
	Fields []forms.Field
}

const (
	nameKey = "name"
	dateKey = "date_debut"
)

// Build combines the draft layers into the single flat payload handed to
// the persistence gateway. Precedence, in order: the sub-form snapshot is
// the base; step snapshots overlay it in ascending step order; a
// non-empty base name and start date always win last. Either the full
// merged object is produced or a validation error names the first
// missing required field.
func Build(in Input) (model.Payload, error) {
	merged := model.Payload{}
	for k, v := range in.SubForm {
		merged[k] = v
	}
	for _, snapshot := range in.Steps {
		for k, v := range snapshot {
			merged[k] = v
		}
	}

	// the top-level record is authoritative for identity and scheduling
	if in.BaseName != "" {
		merged[nameKey] = in.BaseName
	}
	if in.BaseDate != "" {
		merged[dateKey] = in.BaseDate
	}

	// last resort: recover the start date from the sub-form
	if isBlank(merged[dateKey]) {
		if fallback := subFormDate(in); fallback != "" {
			log.Debugf("merge.date_fallback: start date recovered from sub-form (%s)", fallback)
			merged[dateKey] = fallback
		}
	}

	if isBlank(merged[nameKey]) {
		return nil, model.ValidationErrors{nameKey: {"is required"}}
	}
	if isBlank(merged[dateKey]) {
		return nil, model.ValidationErrors{dateKey: {"is required"}}
	}

	normalize(merged, in.Fields)
	normalize(merged, in.Schema.Fields)
	return merged, nil
}

// normalize is the table-driven pass over declared field types: dates to
// YYYY-MM-DD, booleans to wire 0/1, references to numeric ids or omitted
// entirely when absent.
func normalize(payload model.Payload, fields []forms.Field) {
	for _, f := range fields {
		switch f.Kind {
		case forms.KindDate:
			if v, ok := payload[f.Name]; ok {
				payload[f.Name] = forms.NormalizeDate(v)
			}
		case forms.KindBoolean:
			payload[f.Name] = boolToWire(payload[f.Name])
		case forms.KindReference:
			id, ok := forms.ReferenceID(payload[f.Name])
			if !ok {
				// never send a null placeholder for an optional relation
				delete(payload, f.Name)
				continue
			}
			payload[f.Name] = id
		}
	}
}

func boolToWire(v any) int {
	switch b := v.(type) {
	case bool:
		if b {
			return 1
		}
	case int:
		if b != 0 {
			return 1
		}
	case float64:
		if b != 0 {
			return 1
		}
	}
	return 0
}

func subFormDate(in Input) string {
	anchor := in.Schema.AnchorField()
	if anchor == "" {
		anchor = dateKey
	}
	if v, ok := forms.NormalizeDate(in.SubForm[anchor]).(string); ok {
		return v
	}
	return ""
}

func isBlank(v any) bool {
	if v == nil {
		return true
	}
	s, ok := v.(string)
	return ok && s == ""
}
