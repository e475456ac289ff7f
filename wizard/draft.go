package wizard

import (
	"github.com/mlefranc/crm-actions/forms"
	"github.com/mlefranc/crm-actions/model"
)

// Draft is the full in-memory composition of an action being created or
// edited: base fields, per-step snapshots, and the latest sub-form
// snapshot. It is never persisted; navigating away drops it.
type Draft struct {
	Base          model.Payload
	StepSnapshots map[int]model.Payload
	SubSnapshot   model.Payload
	Anchor        string
	Type          forms.Type

	sub *forms.SubForm
}

// Event is a discrete state transition applied by the draft reducer.
// All cross-cutting updates (anchor propagation, discriminant resets,
// sub-form notifications) flow through Apply; nothing mutates the draft
// from independent callbacks.
type Event interface{ isEvent() }

type AnchorDateChanged struct{ Date string }
type DiscriminantChanged struct{ Type forms.Type }
type SubFormFieldsChanged struct{ Fields model.Payload }

func (AnchorDateChanged) isEvent()    {}
func (DiscriminantChanged) isEvent()  {}
func (SubFormFieldsChanged) isEvent() {}

func NewDraft() *Draft {
	return &Draft{
		Base:          model.Payload{},
		StepSnapshots: map[int]model.Payload{},
	}
}

// SeedDraft builds a draft from a fetched record for edit mode. The
// sub-record fields are copied verbatim into the sub-form, bypassing the
// discriminant-change reset exactly once.
func SeedDraft(rec model.Action) *Draft {
	d := NewDraft()
	d.Base["name"] = rec.Name
	d.Base["description"] = rec.Description
	d.Base["status"] = rec.Status
	d.Base["date_fin"] = rec.DateFin
	d.Base["lieu"] = rec.Lieu
	d.Base["notes"] = rec.Notes
	if rec.ResponsableID != 0 {
		d.Base["responsable_id"] = rec.ResponsableID
	}

	if date, ok := forms.NormalizeDate(rec.DateDebut).(string); ok {
		d.Anchor = date
		d.Base["date_debut"] = date
	}

	if t, err := forms.ParseType(rec.Type); err == nil {
		d.Type = t
		d.mount(rec.Details)
	}
	return d
}

func (d *Draft) SubForm() *forms.SubForm {
	return d.sub
}

// Apply runs one event through the reducer.
func (d *Draft) Apply(ev Event) {
	switch ev := ev.(type) {
	case AnchorDateChanged:
		date, _ := forms.NormalizeDate(ev.Date).(string)
		d.Anchor = date
		d.Base["date_debut"] = date
		if d.sub != nil {
			// overwrites the bound field and re-fires the snapshot
			d.sub.SetAnchor(date)
		}

	case DiscriminantChanged:
		if ev.Type == d.Type {
			return
		}
		// no stale fields may bleed from the previous type
		d.Type = ev.Type
		d.SubSnapshot = nil
		d.mount(nil)

	case SubFormFieldsChanged:
		// replaced wholesale, last write wins
		d.SubSnapshot = ev.Fields
	}
}

func (d *Draft) mount(initial model.Payload) {
	schema := forms.Resolve(d.Type)
	d.sub = forms.Mount(schema, initial, d.Anchor, func(snapshot model.Payload) {
		d.Apply(SubFormFieldsChanged{Fields: snapshot})
	})
	d.SubSnapshot = d.sub.Snapshot()
}
