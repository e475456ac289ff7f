package forms

// Kind declares how a field's value is normalized and validated.
// Normalization is a table-driven pass over these declarations,
// never a guess from the field name.
type Kind int

const (
	KindText Kind = iota
	KindDate
	KindBoolean
	KindEnum
	KindNumeric
	KindReference
)

type Field struct {
	Name     string
	Kind     Kind
	Required bool
	// Anchor marks the field as derived from the wizard's anchor date.
	// Anchor fields are overwritten on every anchor change and rendered
	// read-only, uniformly across schemas.
	Anchor bool
	// Accept is the closed value set for KindEnum fields, in the exact
	// casing the backend stores. Input is matched case-insensitively and
	// rewritten to the accepted literal.
	Accept []string
}

func findField(fields []Field, name string) (Field, bool) {
	for _, f := range fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}
