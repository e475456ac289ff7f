package routes

import (
	"net/http"
	"time"

	"github.com/go-chi/render"
	"github.com/gofrs/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/mlefranc/crm-actions/app"
	"github.com/mlefranc/crm-actions/httpx"
	"github.com/mlefranc/crm-actions/log"
)

func Login(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		if !ok {
			httpx.LogStatus(w, http.StatusUnauthorized, log.DebugLevel, "login.basic_auth")
			return
		}

		var hash []byte
		err := app.QueryRowContext(r.Context(),
			"SELECT password_hash FROM user WHERE username = ?", user).
			Scan(&hash)
		if err != nil {
			httpx.LogStatus(w, http.StatusUnauthorized, log.DebugLevel, "login.unknown_user")
			return
		}
		if bcrypt.CompareHashAndPassword(hash, []byte(pass)) != nil {
			httpx.LogStatus(w, http.StatusUnauthorized, log.DebugLevel, "login.bad_password")
			return
		}

		jti, err := uuid.NewV4()
		if err != nil {
			httpx.LogInternalError(w, "login.jti", err)
			return
		}

		expiry := time.Now().Add(app.TokenTTL)
		_, token, err := app.Encode(map[string]any{
			"sub": user,
			"jti": jti.String(),
			"exp": expiry.Unix(),
		})
		if err != nil {
			httpx.LogInternalError(w, "login.encode_token", err)
			return
		}

		render.JSON(w, r, map[string]any{
			"access_token": token,
			"token_type":   "Bearer",
			"expires_in":   int(app.TokenTTL.Seconds()),
		})
	}
}
