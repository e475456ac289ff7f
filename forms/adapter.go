package forms

import "github.com/mlefranc/crm-actions/model"

// SubForm is a mounted schema instance. It owns the current field values
// and reports every mutation upward as a full snapshot, never a delta,
// so the parent never reconstructs partial state.
type SubForm struct {
	schema Schema
	values model.Payload
	notify func(model.Payload)
}

// Mount instantiates a schema with optional initial values (edit-mode
// seeding) and the current anchor date. Declared booleans missing from
// the initial values are made explicit immediately.
func Mount(schema Schema, initial model.Payload, anchorDate string, notify func(model.Payload)) *SubForm {
	values := model.Payload{}
	if initial != nil {
		values = initial.Clone()
	}
	f := &SubForm{schema: schema, values: values, notify: notify}

	for _, fd := range schema.Fields {
		if fd.Kind == KindBoolean {
			f.values[fd.Name] = asBool(f.values[fd.Name])
		}
	}
	if anchorDate != "" {
		if anchor := schema.AnchorField(); anchor != "" {
			f.values[anchor] = anchorDate
		}
	}
	f.values = schema.Normalize(f.values)
	return f
}

func (f *SubForm) Schema() Schema {
	return f.schema
}

func (f *SubForm) Snapshot() model.Payload {
	return f.values.Clone()
}

// SetField records a single field mutation, normalizes it, and fires the
// full-snapshot notification. Anchor-bound fields are read-only: writes
// to them are dropped, the anchor date is the only writer.
func (f *SubForm) SetField(name string, value any) {
	fd, ok := f.schema.Field(name)
	if ok && fd.Anchor {
		return
	}
	f.values[name] = value
	f.values = f.schema.Normalize(f.values)
	f.fire()
}

// SetAnchor overwrites the anchor-bound field and notifies immediately
// so upstream state stays consistent with the wizard's date.
func (f *SubForm) SetAnchor(date string) {
	anchor := f.schema.AnchorField()
	if anchor == "" {
		return
	}
	f.values[anchor] = NormalizeDate(date)
	f.fire()
}

func (f *SubForm) Validate() model.ValidationErrors {
	return Validate(f.schema.Fields, f.values)
}

func (f *SubForm) fire() {
	if f.notify != nil {
		f.notify(f.Snapshot())
	}
}
