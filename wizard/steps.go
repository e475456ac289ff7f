package wizard

import "github.com/mlefranc/crm-actions/forms"

// Step is one wizard page: a name and the fields gating the transition
// past it.
type Step struct {
	Name   string
	Fields []forms.Field
}

// ActionSteps is the three-step flow of the action wizard: identity,
// scheduling, then type-specific details and confirmation.
func ActionSteps() []Step {
	return []Step{
		{Name: "identity", Fields: []forms.Field{
			{Name: "name", Kind: forms.KindText, Required: true},
			{Name: "type", Kind: forms.KindEnum, Required: true, Accept: typeLiterals()},
			{Name: "description", Kind: forms.KindText},
		}},
		{Name: "scheduling", Fields: []forms.Field{
			// presence is enforced at merge time, so an incomplete
			// schedule can still be walked forward and fixed later
			{Name: "date_debut", Kind: forms.KindDate},
			{Name: "date_fin", Kind: forms.KindDate},
			{Name: "lieu", Kind: forms.KindText},
			{Name: "responsable_id", Kind: forms.KindReference},
		}},
		{Name: "details", Fields: []forms.Field{
			{Name: "status", Kind: forms.KindEnum, Accept: []string{"Prevue", "En_cours", "Realisee", "Annulee"}},
			{Name: "notes", Kind: forms.KindText},
		}},
	}
}

func typeLiterals() []string {
	literals := make([]string, len(forms.AllTypes))
	for i, t := range forms.AllTypes {
		literals[i] = string(t)
	}
	return literals
}
