package routes

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/mlefranc/crm-actions/app"
	"github.com/mlefranc/crm-actions/forms"
	"github.com/mlefranc/crm-actions/httpx"
	"github.com/mlefranc/crm-actions/log"
	"github.com/mlefranc/crm-actions/model"
)

// baseColumns are the payload keys stored as dedicated columns; every
// other key lands in the details JSON column.
var baseColumns = map[string]bool{
	"name":           true,
	"type":           true,
	"description":    true,
	"status":         true,
	"responsable_id": true,
	"date_debut":     true,
	"date_fin":       true,
	"lieu":           true,
	"notes":          true,
}

func CreateAction(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload := model.Payload{}
		err := render.DecodeJSON(r.Body, &payload)
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}

		if errs := validateAction(payload); !errs.Empty() {
			httpx.LogValidationErrors(w, r, "create_action.validate", errs)
			return
		}

		rec, details, err := splitPayload(payload)
		if err != nil {
			httpx.LogInternalError(w, "create_action.details", err)
			return
		}

		var actionId int64
		err = app.QueryRowContext(r.Context(), `
		INSERT INTO action (name, type, description, status, responsable_id, date_debut, date_fin, lieu, notes, details)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id`,
			rec.Name,
			rec.Type,
			rec.Description,
			rec.Status,
			nullableId(rec.ResponsableID),
			rec.DateDebut,
			rec.DateFin,
			rec.Lieu,
			rec.Notes,
			details,
		).Scan(&actionId)
		if err != nil {
			httpx.LogInternalError(w, "db.insert_action", err)
			return
		}

		w.WriteHeader(http.StatusCreated)
		render.JSON(w, r, map[string]any{
			"id": actionId,
		})
	}
}

func UpdateAction(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actionId, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.get_url_param.id")
			return
		}

		payload := model.Payload{}
		err = render.DecodeJSON(r.Body, &payload)
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}

		if errs := validateAction(payload); !errs.Empty() {
			httpx.LogValidationErrors(w, r, "update_action.validate", errs)
			return
		}

		rec, details, err := splitPayload(payload)
		if err != nil {
			httpx.LogInternalError(w, "update_action.details", err)
			return
		}

		// last write wins, no version check
		res, err := app.ExecContext(r.Context(), `
		UPDATE action
		SET
			name = ?,
			type = ?,
			description = ?,
			status = ?,
			responsable_id = ?,
			date_debut = ?,
			date_fin = ?,
			lieu = ?,
			notes = ?,
			details = ?
		WHERE id = ?`,
			rec.Name,
			rec.Type,
			rec.Description,
			rec.Status,
			nullableId(rec.ResponsableID),
			rec.DateDebut,
			rec.DateFin,
			rec.Lieu,
			rec.Notes,
			details,
			actionId,
		)
		if err != nil {
			httpx.LogInternalError(w, "db.update_action", err)
			return
		}
		n, err := res.RowsAffected()
		if err != nil {
			httpx.LogInternalError(w, "db.update_action.verify", err)
			return
		}
		if n < 1 {
			httpx.LogNotFound(w, "update_action", actionId)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

func GetActionById(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actionId, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.get_url_param.id")
			return
		}

		rec, err := scanAction(app.QueryRowContext(r.Context(), `
		SELECT id, name, type, description, status, responsable_id,
			date_debut, date_fin, lieu, notes, attachment, details
		FROM action
		WHERE id = ?`,
			actionId,
		))
		if errors.Is(err, sql.ErrNoRows) {
			httpx.LogNotFound(w, "get_action", actionId)
			return
		}
		if err != nil {
			httpx.LogInternalError(w, "db.get_action", err)
			return
		}

		render.JSON(w, r, rec)
	}
}

func ListActions(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := app.QueryContext(r.Context(), `
		SELECT id, name, type, description, status, responsable_id,
			date_debut, date_fin, lieu, notes, attachment, details
		FROM action
		ORDER BY date_debut DESC, id DESC`)
		if err != nil {
			httpx.LogInternalError(w, "db.get_actions", err)
			return
		}
		defer rows.Close()

		actions := []model.Action{}
		for rows.Next() {
			rec, err := scanAction(rows)
			if err != nil {
				httpx.LogInternalError(w, "db.get_actions.scan", err)
				return
			}
			actions = append(actions, rec)
		}

		render.JSON(w, r, map[string]any{
			"actions": actions,
		})
	}
}

func DeleteAction(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actionId, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.get_url_param.id")
			return
		}

		res, err := app.ExecContext(r.Context(), `
		DELETE FROM action WHERE id = ?`,
			actionId,
		)
		if err != nil {
			httpx.LogInternalError(w, "db.delete_action", err)
			return
		}
		n, err := res.RowsAffected()
		if err != nil {
			httpx.LogInternalError(w, "db.delete_action.verify", err)
			return
		}
		if n < 1 {
			httpx.LogNotFound(w, "delete_action", actionId)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

// validateAction is the server-side gate: it re-checks what a
// well-behaved client already validated, since the API is the contract.
func validateAction(payload model.Payload) model.ValidationErrors {
	errs := model.ValidationErrors{}
	if s, _ := payload["name"].(string); s == "" {
		errs.Add("name", "is required")
	}
	t, _ := payload["type"].(string)
	if t == "" {
		errs.Add("type", "is required")
	} else if _, err := forms.ParseType(t); err != nil {
		errs.Add("type", "is not an accepted value")
	}
	if s, _ := payload["date_debut"].(string); s == "" {
		errs.Add("date_debut", "is required")
	}
	return errs
}

func splitPayload(payload model.Payload) (rec model.Action, details string, err error) {
	rec.Name, _ = payload["name"].(string)
	rec.Type, _ = payload["type"].(string)
	rec.Description, _ = payload["description"].(string)
	rec.Status, _ = payload["status"].(string)
	rec.DateDebut, _ = payload["date_debut"].(string)
	rec.DateFin, _ = payload["date_fin"].(string)
	rec.Lieu, _ = payload["lieu"].(string)
	rec.Notes, _ = payload["notes"].(string)
	if id, ok := forms.ReferenceID(payload["responsable_id"]); ok {
		rec.ResponsableID = id
	}

	extra := model.Payload{}
	for k, v := range payload {
		if !baseColumns[k] {
			extra[k] = v
		}
	}
	encoded, err := json.Marshal(extra)
	if err != nil {
		return
	}
	details = string(encoded)
	return
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAction(row rowScanner) (rec model.Action, err error) {
	var responsable sql.NullInt64
	var details string
	err = row.Scan(
		&rec.ID, &rec.Name, &rec.Type, &rec.Description, &rec.Status, &responsable,
		&rec.DateDebut, &rec.DateFin, &rec.Lieu, &rec.Notes, &rec.Attachment, &details,
	)
	if err != nil {
		return
	}
	if responsable.Valid {
		rec.ResponsableID = responsable.Int64
	}
	if details != "" && details != "{}" {
		err = json.Unmarshal([]byte(details), &rec.Details)
	}
	return
}

func nullableId(id int64) any {
	if id == 0 {
		return nil
	}
	return id
}
