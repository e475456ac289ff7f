package wizard

import (
	"context"
	"errors"
	"sync"

	"github.com/mlefranc/crm-actions/forms"
	"github.com/mlefranc/crm-actions/merge"
	"github.com/mlefranc/crm-actions/model"
)

// Persister is the create/update boundary the sequencer submits through.
type Persister interface {
	Create(ctx context.Context, payload model.Payload) (int64, error)
	Update(ctx context.Context, id int64, payload model.Payload) error
}

var (
	ErrLastStep       = errors.New("already on the last step, submit is the only forward action")
	ErrNotLastStep    = errors.New("submit is only available from the last step")
	ErrSubmitInFlight = errors.New("a submission is already in flight")
)

// Sequencer drives the user through the wizard steps, gating every
// forward transition on the current step's validation and accumulating
// validated values into the draft.
type Sequencer struct {
	steps   []Step
	step    int
	draft   *Draft
	working map[int]model.Payload

	mu         sync.Mutex
	submitting bool
	gw         Persister
	actionID   int64
}

func New(gw Persister) *Sequencer {
	return &Sequencer{
		steps:   ActionSteps(),
		draft:   NewDraft(),
		working: map[int]model.Payload{},
		gw:      gw,
	}
}

// NewForEdit seeds the wizard from a fetched record. Step inputs are
// pre-filled from the record's base fields.
func NewForEdit(rec model.Action, gw Persister) *Sequencer {
	s := New(gw)
	s.draft = SeedDraft(rec)
	s.actionID = rec.ID
	for i, step := range s.steps {
		values := model.Payload{}
		for _, f := range step.Fields {
			if v, ok := s.draft.Base[f.Name]; ok && v != "" {
				values[f.Name] = v
			}
		}
		if i == 0 && s.draft.Type != "" {
			values["type"] = string(s.draft.Type)
		}
		s.working[i] = values
	}
	return s
}

func (s *Sequencer) Step() int     { return s.step }
func (s *Sequencer) Draft() *Draft { return s.draft }

// SetField records an input on the current step and routes the
// cross-cutting ones through the draft reducer: the discriminant
// remounts the sub-form, the start date propagates as the anchor.
func (s *Sequencer) SetField(name string, value any) {
	values := s.working[s.step]
	if values == nil {
		values = model.Payload{}
		s.working[s.step] = values
	}
	values[name] = value

	switch name {
	case "type":
		if t, err := forms.ParseType(stringValue(value)); err == nil {
			s.draft.Apply(DiscriminantChanged{Type: t})
		}
	case "date_debut":
		s.draft.Apply(AnchorDateChanged{Date: stringValue(value)})
	}
}

// SetSubFormField forwards an input to the mounted sub-form; its change
// notification feeds the draft through the reducer.
func (s *Sequencer) SetSubFormField(name string, value any) {
	if sub := s.draft.SubForm(); sub != nil {
		sub.SetField(name, value)
	}
}

// Next validates the current step and, on success, captures its values
// into the draft and advances. On failure the step index is unchanged
// and the failing fields are reported.
func (s *Sequencer) Next() error {
	if s.step >= len(s.steps)-1 {
		return ErrLastStep
	}
	if err := s.captureStep(); err != nil {
		return err
	}
	s.step++
	return nil
}

// Back performs no validation and discards nothing.
func (s *Sequencer) Back() {
	if s.step > 0 {
		s.step--
	}
}

// Submit validates the final step and the mounted sub-form, merges the
// draft into one payload, and hands it to the persister. Failures leave
// the sequencer state intact for retry; a second submit while one is in
// flight is refused.
func (s *Sequencer) Submit(ctx context.Context) (int64, error) {
	if s.step != len(s.steps)-1 {
		return 0, ErrNotLastStep
	}
	if !s.beginSubmit() {
		return 0, ErrSubmitInFlight
	}
	defer s.endSubmit()

	if err := s.captureStep(); err != nil {
		return 0, err
	}
	if sub := s.draft.SubForm(); sub != nil {
		if errs := sub.Validate(); !errs.Empty() {
			return 0, errs
		}
	}

	payload, err := merge.Build(s.mergeInput())
	if err != nil {
		return 0, err
	}

	if s.actionID > 0 {
		return s.actionID, s.gw.Update(ctx, s.actionID, payload)
	}
	return s.gw.Create(ctx, payload)
}

// beginSubmit flips the in-flight flag under the lock, so the guard
// holds even if a caller strays from the single-threaded event model.
func (s *Sequencer) beginSubmit() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.submitting {
		return false
	}
	s.submitting = true
	return true
}

func (s *Sequencer) endSubmit() {
	s.mu.Lock()
	s.submitting = false
	s.mu.Unlock()
}

func (s *Sequencer) mergeInput() merge.Input {
	snapshots := make([]model.Payload, 0, len(s.steps))
	for i := range s.steps {
		if snap, ok := s.draft.StepSnapshots[i]; ok {
			snapshots = append(snapshots, snap)
		}
	}

	var stepFields []forms.Field
	for _, step := range s.steps {
		stepFields = append(stepFields, step.Fields...)
	}

	return merge.Input{
		Schema:   forms.Resolve(s.draft.Type),
		SubForm:  s.draft.SubSnapshot,
		Steps:    snapshots,
		BaseName: stringValue(s.draft.Base["name"]),
		BaseDate: stringValue(s.draft.Base["date_debut"]),
		Fields:   stepFields,
	}
}

// captureStep runs the current step's validation gate and appends the
// validated values to the draft. Identity fields mirror into the base.
func (s *Sequencer) captureStep() error {
	step := s.steps[s.step]
	values := s.working[s.step]
	if values == nil {
		values = model.Payload{}
	}

	if errs := forms.Validate(step.Fields, values); !errs.Empty() {
		return errs
	}

	s.draft.StepSnapshots[s.step] = values.Clone()
	if name := stringValue(values["name"]); name != "" {
		s.draft.Base["name"] = name
	}
	return nil
}

func stringValue(v any) string {
	s, _ := v.(string)
	return s
}
