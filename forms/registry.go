package forms

// Schema is one of the nine type-specific field sets. The zero value is
// the empty placeholder rendered when no discriminant is selected yet.
type Schema struct {
	Type   Type
	Fields []Field
}

func (s Schema) Empty() bool {
	return len(s.Fields) == 0
}

func (s Schema) Field(name string) (Field, bool) {
	return findField(s.Fields, name)
}

// AnchorField returns the name of the schema's anchor-bound date field,
// or "" when the schema declares none.
func (s Schema) AnchorField() string {
	for _, f := range s.Fields {
		if f.Anchor {
			return f.Name
		}
	}
	return ""
}

// JoinModes is the participation enum contract shared by several schemas.
// The backend stores these exact literals, first letter capitalized.
var JoinModes = []string{"Binome", "Individuel", "Collectif"}

// Resolve maps a discriminant to its schema. The switch is exhaustive
// over the closed Type set; only the zero Type falls through to the
// empty placeholder.
func Resolve(t Type) Schema {
	switch t {
	case TypeSalon:
		return Schema{Type: t, Fields: []Field{
			{Name: "intitule", Kind: KindText, Required: true},
			{Name: "pays_id", Kind: KindReference, Required: true},
			{Name: "ville", Kind: KindText},
			{Name: "date_debut", Kind: KindDate, Anchor: true},
			{Name: "date_fin", Kind: KindDate},
			{Name: "initiateur_id", Kind: KindReference, Required: true},
			{Name: "binome_id", Kind: KindReference, Required: true},
			{Name: "stand_collectif", Kind: KindBoolean},
			{Name: "superficie", Kind: KindNumeric},
		}}
	case TypeSeminaire:
		return Schema{Type: t, Fields: []Field{
			{Name: "theme", Kind: KindText, Required: true},
			{Name: "date_debut", Kind: KindDate, Anchor: true},
			{Name: "date_fin", Kind: KindDate},
			{Name: "lieu", Kind: KindText},
			{Name: "animateur_id", Kind: KindReference},
			{Name: "participation", Kind: KindEnum, Accept: JoinModes},
			{Name: "support_envoye", Kind: KindBoolean},
		}}
	case TypeSeminaireSectoriel:
		return Schema{Type: t, Fields: []Field{
			{Name: "theme", Kind: KindText, Required: true},
			{Name: "secteur_id", Kind: KindReference, Required: true},
			{Name: "date_debut", Kind: KindDate, Anchor: true},
			{Name: "lieu", Kind: KindText},
			{Name: "avec_programme", Kind: KindBoolean},
		}}
	case TypeDelegation:
		return Schema{Type: t, Fields: []Field{
			{Name: "pays_id", Kind: KindReference, Required: true},
			{Name: "organisme", Kind: KindText, Required: true},
			{Name: "date_debut", Kind: KindDate, Anchor: true},
			{Name: "date_fin", Kind: KindDate},
			{Name: "nb_participants", Kind: KindNumeric},
			{Name: "chef_delegation", Kind: KindText},
			{Name: "participation", Kind: KindEnum, Accept: JoinModes},
		}}
	case TypeVisite:
		return Schema{Type: t, Fields: []Field{
			{Name: "entreprise", Kind: KindText, Required: true},
			{Name: "pays_id", Kind: KindReference},
			{Name: "date_debut", Kind: KindDate, Anchor: true},
			{Name: "objet", Kind: KindText},
			{Name: "rapport_depose", Kind: KindBoolean},
		}}
	case TypeMission:
		return Schema{Type: t, Fields: []Field{
			{Name: "pays_id", Kind: KindReference, Required: true},
			{Name: "objet", Kind: KindText, Required: true},
			{Name: "date_debut", Kind: KindDate, Anchor: true},
			{Name: "date_fin", Kind: KindDate},
			{Name: "budget", Kind: KindNumeric},
			{Name: "binome_id", Kind: KindReference},
		}}
	case TypeFormation:
		return Schema{Type: t, Fields: []Field{
			{Name: "intitule", Kind: KindText, Required: true},
			{Name: "formateur", Kind: KindText},
			{Name: "date_debut", Kind: KindDate, Anchor: true},
			{Name: "duree_jours", Kind: KindNumeric},
			{Name: "certifiante", Kind: KindBoolean},
		}}
	case TypeConference:
		return Schema{Type: t, Fields: []Field{
			{Name: "titre", Kind: KindText, Required: true},
			{Name: "conferencier", Kind: KindText},
			{Name: "date_debut", Kind: KindDate, Anchor: true},
			{Name: "nb_places", Kind: KindNumeric},
			{Name: "en_ligne", Kind: KindBoolean},
		}}
	case TypeRencontreB2B:
		return Schema{Type: t, Fields: []Field{
			{Name: "secteur_id", Kind: KindReference, Required: true},
			{Name: "pays_id", Kind: KindReference},
			{Name: "date_debut", Kind: KindDate, Anchor: true},
			{Name: "nb_entreprises", Kind: KindNumeric},
			{Name: "format", Kind: KindEnum, Accept: []string{"Presentiel", "Hybride", "Distanciel"}},
		}}
	}
	return Schema{}
}
