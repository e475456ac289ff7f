package app

import (
	"database/sql"

	"github.com/go-chi/jwtauth"
	"github.com/mlefranc/crm-actions/config"
)

type App struct {
	*sql.DB
	*jwtauth.JWTAuth
	config.Config
}
