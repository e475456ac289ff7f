package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/mlefranc/crm-actions/app"
	"github.com/mlefranc/crm-actions/httpx"
	"github.com/mlefranc/crm-actions/log"
	"github.com/mlefranc/crm-actions/model"
)

var lookupKinds = map[string]bool{
	"pays":        true,
	"secteurs":    true,
	"initiateurs": true,
	"binomes":     true,
}

// GetLookups serves one reference-data list for the sub-form select
// fields.
func GetLookups(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		kind := chi.URLParam(r, "kind")
		if !lookupKinds[kind] {
			httpx.LogStatus(w, http.StatusNotFound, log.DebugLevel, "get_lookups.unknown_kind")
			return
		}

		rows, err := app.QueryContext(r.Context(), `
		SELECT id, display_name FROM lookup
		WHERE kind = ?
		ORDER BY display_name`,
			kind,
		)
		if err != nil {
			httpx.LogInternalError(w, "db.get_lookups", err)
			return
		}
		defer rows.Close()

		items := []model.LookupItem{}
		for rows.Next() {
			item := model.LookupItem{}
			err = rows.Scan(&item.ID, &item.DisplayName)
			if err != nil {
				httpx.LogInternalError(w, "db.get_lookups.scan", err)
				return
			}
			items = append(items, item)
		}

		render.JSON(w, r, items)
	}
}
