package routes

import (
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/mlefranc/crm-actions/app"
	"github.com/mlefranc/crm-actions/httpx"
	"github.com/mlefranc/crm-actions/log"
)

const maxAttachmentSize = 10 << 20

// UploadAttachment stores the single PDF attachment of an action. The
// client already embeds a timestamp in the filename; the path recorded
// on the row is what GET returns for retrieval.
func UploadAttachment(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actionId, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.get_url_param.id")
			return
		}

		err = r.ParseMultipartForm(maxAttachmentSize)
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "upload.parse_form")
			return
		}

		file, header, err := r.FormFile("file")
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "upload.missing_file")
			return
		}
		defer file.Close()

		name := filepath.Base(header.Filename)
		if !strings.EqualFold(filepath.Ext(name), ".pdf") {
			httpx.LogStatusMsg(w, http.StatusBadRequest, log.DebugLevel, "upload.not_pdf", "only PDF attachments are accepted")
			return
		}

		if err = os.MkdirAll(app.UploadDir, 0o755); err != nil {
			httpx.LogInternalError(w, "upload.mkdir", err)
			return
		}

		dst, err := os.Create(filepath.Join(app.UploadDir, name))
		if err != nil {
			httpx.LogInternalError(w, "upload.create", err)
			return
		}
		defer dst.Close()

		if _, err = io.Copy(dst, file); err != nil {
			httpx.LogInternalError(w, "upload.write", err)
			return
		}

		res, err := app.ExecContext(r.Context(), `
		UPDATE action SET attachment = ? WHERE id = ?`,
			name,
			actionId,
		)
		if err != nil {
			httpx.LogInternalError(w, "db.update_attachment", err)
			return
		}
		n, err := res.RowsAffected()
		if err != nil {
			httpx.LogInternalError(w, "db.update_attachment.verify", err)
			return
		}
		if n < 1 {
			httpx.LogNotFound(w, "upload_attachment", actionId)
			return
		}

		w.WriteHeader(http.StatusCreated)
		render.JSON(w, r, map[string]any{
			"attachment": name,
		})
	}
}
