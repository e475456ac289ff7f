package forms

import "fmt"

// Type is the discriminant selecting which of the nine sub-form schemas
// governs an action's extended fields. The set is closed: unknown values
// are rejected at the parse boundary, never at dispatch time.
type Type string

const (
	TypeSalon              Type = "salon"
	TypeSeminaire          Type = "seminaire"
	TypeSeminaireSectoriel Type = "seminaire_sectoriel"
	TypeDelegation         Type = "delegation"
	TypeVisite             Type = "visite"
	TypeMission            Type = "mission"
	TypeFormation          Type = "formation"
	TypeConference         Type = "conference"
	TypeRencontreB2B       Type = "rencontre_b2b"
)

var AllTypes = []Type{
	TypeSalon,
	TypeSeminaire,
	TypeSeminaireSectoriel,
	TypeDelegation,
	TypeVisite,
	TypeMission,
	TypeFormation,
	TypeConference,
	TypeRencontreB2B,
}

func ParseType(s string) (Type, error) {
	for _, t := range AllTypes {
		if s == string(t) {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown action type %q", s)
}

// WantsAttachment reports whether records of this type carry a PDF
// attachment on the backend.
func (t Type) WantsAttachment() bool {
	switch t {
	case TypeDelegation, TypeVisite, TypeSeminaireSectoriel:
		return true
	}
	return false
}
