package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/jwtauth"

	"github.com/mlefranc/crm-actions/app"
)

func Wire(app app.App) http.Handler {
	root := chi.NewRouter()
	root.Use(middleware.Logger, middleware.Recoverer)

	root.Mount("/api", apiRouter(app))

	return root
}

func apiRouter(app app.App) http.Handler {
	api := chi.NewRouter()

	api.Post("/login", Login(app))

	api.Group(func(r chi.Router) {
		r.Use(jwtauth.Verifier(app.JWTAuth), jwtauth.Authenticator)

		// CRUD actions
		r.Post("/actions", CreateAction(app))
		r.Get("/actions", ListActions(app))
		r.Get(`/actions/{id:^\d+$}`, GetActionById(app))
		r.Put(`/actions/{id:^\d+$}`, UpdateAction(app))
		r.Delete(`/actions/{id:^\d+$}`, DeleteAction(app))

		r.Post(`/actions/{id:^\d+$}/attachment`, UploadAttachment(app))

		r.Get("/lookups/{kind}", GetLookups(app))
	})

	return api
}
