package routes_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-chi/jwtauth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/mlefranc/crm-actions/app"
	"github.com/mlefranc/crm-actions/config"
	"github.com/mlefranc/crm-actions/database"
	"github.com/mlefranc/crm-actions/gateway"
	"github.com/mlefranc/crm-actions/model"
	"github.com/mlefranc/crm-actions/routes"
	"github.com/mlefranc/crm-actions/wizard"
)

func newTestServer(t *testing.T) (*httptest.Server, app.App) {
	t.Helper()

	cfg := config.Config{
		DBUrl:       filepath.Join(t.TempDir(), "test.sqlite"),
		UploadDir:   t.TempDir(),
		TokenSecret: "test-secret",
		TokenTTL:    time.Hour,
	}

	db, err := database.Open(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)
	_, err = db.Exec("INSERT INTO user (username, password_hash) VALUES (?, ?)", "alice", string(hash))
	require.NoError(t, err)

	a := app.App{
		DB:      db,
		JWTAuth: jwtauth.New("HS256", []byte(cfg.TokenSecret), nil),
		Config:  cfg,
	}
	srv := httptest.NewServer(routes.Wire(a))
	t.Cleanup(srv.Close)
	return srv, a
}

func login(t *testing.T, srv *httptest.Server) string {
	t.Helper()

	req, err := http.NewRequest(http.MethodPost, srv.URL+"/api/login", nil)
	require.NoError(t, err)
	req.SetBasicAuth("alice", "s3cret")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		AccessToken string `json:"access_token"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.NotEmpty(t, body.AccessToken)
	return body.AccessToken
}

func TestLoginRejectsBadPassword(t *testing.T) {
	srv, _ := newTestServer(t)

	req, err := http.NewRequest(http.MethodPost, srv.URL+"/api/login", nil)
	require.NoError(t, err)
	req.SetBasicAuth("alice", "wrong")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestActionsRequireToken(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/actions")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestCreateSalonThroughWizard(t *testing.T) {
	srv, _ := newTestServer(t)
	token := login(t, srv)
	client := gateway.New(srv.URL+"/api", token)

	s := wizard.New(client)
	s.SetField("name", "Trade Fair")
	s.SetField("type", "salon")
	require.NoError(t, s.Next())

	s.SetField("date_debut", "2024-06-01")
	require.NoError(t, s.Next())

	s.SetSubFormField("intitule", "Foire internationale")
	s.SetSubFormField("pays_id", "1")
	s.SetSubFormField("initiateur_id", "2")
	s.SetSubFormField("binome_id", "3")

	id, err := s.Submit(context.Background())
	require.NoError(t, err)
	require.NotZero(t, id)

	rec, err := client.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "Trade Fair", rec.Name)
	assert.Equal(t, "salon", rec.Type)
	assert.Equal(t, "2024-06-01", rec.DateDebut)
	assert.Equal(t, "Foire internationale", rec.Details["intitule"])
	assert.Equal(t, float64(1), rec.Details["pays_id"])
	assert.Equal(t, float64(0), rec.Details["stand_collectif"])
}

func TestEditRoundTrip(t *testing.T) {
	srv, _ := newTestServer(t)
	token := login(t, srv)
	client := gateway.New(srv.URL+"/api", token)

	id, err := client.Create(context.Background(), model.Payload{
		"name":       "Mission Berlin",
		"type":       "mission",
		"date_debut": "2024-09-15",
		"pays_id":    2,
		"objet":      "Prospection",
	})
	require.NoError(t, err)

	rec, err := client.Get(context.Background(), id)
	require.NoError(t, err)

	s := wizard.NewForEdit(rec, client)
	s.SetField("name", "Mission Berlin 2024")
	require.NoError(t, s.Next())
	require.NoError(t, s.Next())

	updatedID, err := s.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, id, updatedID)

	rec, err = client.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "Mission Berlin 2024", rec.Name)
	assert.Equal(t, "2024-09-15", rec.DateDebut)
}

func TestServerSideValidation(t *testing.T) {
	srv, _ := newTestServer(t)
	token := login(t, srv)
	client := gateway.New(srv.URL+"/api", token)

	_, err := client.Create(context.Background(), model.Payload{"name": "No date", "type": "visite"})
	require.Error(t, err)

	errs, ok := err.(model.ValidationErrors)
	require.True(t, ok, "expected field errors, got %T", err)
	assert.Contains(t, errs, "date_debut")
}

func TestLookupsSeeded(t *testing.T) {
	srv, _ := newTestServer(t)
	token := login(t, srv)
	client := gateway.New(srv.URL+"/api", token)

	items, err := client.Lookups(context.Background(), "pays")
	require.NoError(t, err)
	assert.NotEmpty(t, items)

	_, err = client.Lookups(context.Background(), "nope")
	assert.Error(t, err)
}
