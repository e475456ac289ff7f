package model

import (
	"fmt"
	"sort"

	"github.com/hashicorp/go-multierror"
)

// Payload is the flat field set exchanged with the actions API.
// Keys are stable snake_case names; values are already normalized
// to wire form when the payload leaves the merge layer.
type Payload map[string]any

func (p Payload) Clone() Payload {
	out := make(Payload, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

type Action struct {
	ID            int64   `json:"id,omitempty"`
	Name          string  `json:"name"`
	Type          string  `json:"type"`
	Description   string  `json:"description,omitempty"`
	Status        string  `json:"status,omitempty"`
	ResponsableID int64   `json:"responsable_id,omitempty"`
	DateDebut     string  `json:"date_debut"`
	DateFin       string  `json:"date_fin,omitempty"`
	Lieu          string  `json:"lieu,omitempty"`
	Notes         string  `json:"notes,omitempty"`
	Attachment    string  `json:"attachment,omitempty"`
	Details       Payload `json:"details,omitempty"`
}

type LookupItem struct {
	ID          int64  `json:"id"`
	DisplayName string `json:"display_name"`
}

// ValidationErrors maps field names to human readable messages.
// The same shape is produced by client-side validation and decoded
// from 422 responses, so callers surface both the same way.
type ValidationErrors map[string][]string

func (ve ValidationErrors) Add(field, msg string) {
	ve[field] = append(ve[field], msg)
}

func (ve ValidationErrors) Empty() bool {
	return len(ve) == 0
}

// Error joins every field message into the single notification shown
// to the user, in stable field order.
func (ve ValidationErrors) Error() string {
	fields := make([]string, 0, len(ve))
	for f := range ve {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	var joined *multierror.Error
	for _, f := range fields {
		for _, msg := range ve[f] {
			joined = multierror.Append(joined, fmt.Errorf("%s: %s", f, msg))
		}
	}
	if joined == nil {
		return ""
	}
	return joined.Error()
}
