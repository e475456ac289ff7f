package wizard

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mlefranc/crm-actions/model"
)

type fakeGateway struct {
	created  []model.Payload
	updated  map[int64]model.Payload
	createID int64
	err      error
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{createID: 1, updated: map[int64]model.Payload{}}
}

func (g *fakeGateway) Create(_ context.Context, payload model.Payload) (int64, error) {
	if g.err != nil {
		return 0, g.err
	}
	g.created = append(g.created, payload)
	return g.createID, nil
}

func (g *fakeGateway) Update(_ context.Context, id int64, payload model.Payload) error {
	if g.err != nil {
		return g.err
	}
	g.updated[id] = payload
	return nil
}

// blockingGateway parks inside Create until released, holding a
// submission in flight for as long as the test needs.
type blockingGateway struct {
	entered chan struct{}
	release chan struct{}
}

func newBlockingGateway() *blockingGateway {
	return &blockingGateway{
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
}

func (g *blockingGateway) Create(_ context.Context, _ model.Payload) (int64, error) {
	close(g.entered)
	<-g.release
	return 1, nil
}

func (g *blockingGateway) Update(_ context.Context, _ int64, _ model.Payload) error {
	return nil
}

func TestNextBlocksOnMissingRequiredFields(t *testing.T) {
	s := New(newFakeGateway())

	err := s.Next()
	require.Error(t, err)
	errs, ok := err.(model.ValidationErrors)
	require.True(t, ok)
	assert.Contains(t, errs, "name")
	assert.Contains(t, errs, "type")
	assert.Equal(t, 0, s.Step())
}

func TestNextAdvancesAndCaptures(t *testing.T) {
	s := New(newFakeGateway())
	s.SetField("name", "Trade Fair")
	s.SetField("type", "salon")

	require.NoError(t, s.Next())
	assert.Equal(t, 1, s.Step())
	assert.Equal(t, "Trade Fair", s.Draft().StepSnapshots[0]["name"])
	// identity mirrors into the base fields
	assert.Equal(t, "Trade Fair", s.Draft().Base["name"])
}

func TestBackKeepsSnapshots(t *testing.T) {
	s := New(newFakeGateway())
	s.SetField("name", "Trade Fair")
	s.SetField("type", "salon")
	require.NoError(t, s.Next())

	s.Back()
	assert.Equal(t, 0, s.Step())
	assert.Contains(t, s.Draft().StepSnapshots, 0)
}

func TestEndDateBeforeStartBlocksStep(t *testing.T) {
	s := New(newFakeGateway())
	s.SetField("name", "Trade Fair")
	s.SetField("type", "salon")
	require.NoError(t, s.Next())

	s.SetField("date_debut", "2024-06-01")
	s.SetField("date_fin", "2024-05-31")
	err := s.Next()
	require.Error(t, err)
	errs := err.(model.ValidationErrors)
	assert.Contains(t, errs, "date_fin")
	assert.Equal(t, 1, s.Step())

	// equal dates pass, same-or-after is inclusive
	s.SetField("date_fin", "2024-06-01")
	require.NoError(t, s.Next())
}

func TestDiscriminantSwitchClearsSubForm(t *testing.T) {
	s := New(newFakeGateway())
	s.SetField("type", "salon")
	s.SetSubFormField("intitule", "Foire de Lyon")
	require.Equal(t, "Foire de Lyon", s.Draft().SubSnapshot["intitule"])

	s.SetField("type", "seminaire")
	snap := s.Draft().SubSnapshot
	assert.NotContains(t, snap, "intitule")
	assert.Contains(t, snap, "support_envoye")
}

func TestAnchorPropagatesIntoSubForm(t *testing.T) {
	s := New(newFakeGateway())
	s.SetField("name", "Trade Fair")
	s.SetField("type", "salon")
	require.NoError(t, s.Next())

	s.SetField("date_debut", "2024-06-01")
	assert.Equal(t, "2024-06-01", s.Draft().SubSnapshot["date_debut"])
	assert.Equal(t, "2024-06-01", s.Draft().Anchor)
}

func TestSubmitOnlyFromLastStep(t *testing.T) {
	s := New(newFakeGateway())
	_, err := s.Submit(context.Background())
	assert.ErrorIs(t, err, ErrNotLastStep)
}

func TestNextRefusedOnLastStep(t *testing.T) {
	s := New(newFakeGateway())
	s.SetField("name", "Trade Fair")
	s.SetField("type", "visite")
	require.NoError(t, s.Next())
	require.NoError(t, s.Next())

	err := s.Next()
	assert.ErrorIs(t, err, ErrLastStep)
	assert.Equal(t, 2, s.Step())
}

func TestSubmitInFlightBlocksSecondSubmit(t *testing.T) {
	gw := newBlockingGateway()
	s := New(gw)

	s.SetField("name", "Visite Acme")
	s.SetField("type", "visite")
	require.NoError(t, s.Next())
	s.SetField("date_debut", "2024-06-01")
	require.NoError(t, s.Next())
	s.SetSubFormField("entreprise", "Acme")

	done := make(chan error, 1)
	go func() {
		_, err := s.Submit(context.Background())
		done <- err
	}()

	<-gw.entered
	_, err := s.Submit(context.Background())
	assert.ErrorIs(t, err, ErrSubmitInFlight)

	close(gw.release)
	require.NoError(t, <-done)
}

func TestSubmitBlockedOnMissingStartDate(t *testing.T) {
	gw := newFakeGateway()
	s := New(gw)
	s.SetField("name", "Trade Fair")
	s.SetField("type", "salon")
	require.NoError(t, s.Next())
	require.NoError(t, s.Next()) // schedule left empty on purpose

	s.SetSubFormField("intitule", "Foire de Lyon")
	s.SetSubFormField("pays_id", "1")
	s.SetSubFormField("initiateur_id", "2")
	s.SetSubFormField("binome_id", "3")

	_, err := s.Submit(context.Background())
	require.Error(t, err)
	errs, ok := err.(model.ValidationErrors)
	require.True(t, ok)
	assert.Contains(t, errs, "date_debut")
	assert.Empty(t, gw.created, "no create call may be made")
}

func TestSubmitCreatesMergedPayload(t *testing.T) {
	gw := newFakeGateway()
	gw.createID = 42
	s := New(gw)

	s.SetField("name", "Trade Fair")
	s.SetField("type", "salon")
	require.NoError(t, s.Next())

	s.SetField("date_debut", "2024-06-01")
	require.NoError(t, s.Next())

	s.SetSubFormField("intitule", "Foire de Lyon")
	s.SetSubFormField("pays_id", "1")
	s.SetSubFormField("initiateur_id", "2")
	s.SetSubFormField("binome_id", "3")

	id, err := s.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)

	require.Len(t, gw.created, 1)
	payload := gw.created[0]
	assert.Equal(t, "Trade Fair", payload["name"])
	assert.Equal(t, "2024-06-01", payload["date_debut"])
	assert.Equal(t, "salon", payload["type"])
	assert.Equal(t, "Foire de Lyon", payload["intitule"])
	assert.Equal(t, int64(1), payload["pays_id"])
	assert.Equal(t, int64(2), payload["initiateur_id"])
	assert.Equal(t, int64(3), payload["binome_id"])
	// boolean flags default to wire 0
	assert.Equal(t, 0, payload["stand_collectif"])
}

func TestSubmitFailureKeepsDraftForRetry(t *testing.T) {
	gw := newFakeGateway()
	gw.err = assert.AnError
	s := New(gw)

	s.SetField("name", "Trade Fair")
	s.SetField("type", "visite")
	require.NoError(t, s.Next())
	s.SetField("date_debut", "2024-06-01")
	require.NoError(t, s.Next())
	s.SetSubFormField("entreprise", "Acme")

	_, err := s.Submit(context.Background())
	require.Error(t, err)
	assert.Equal(t, 2, s.Step(), "sequencer state must not unwind")

	gw.err = nil
	_, err = s.Submit(context.Background())
	assert.NoError(t, err)
}

func TestEditModeSeedsAndUpdates(t *testing.T) {
	gw := newFakeGateway()
	rec := model.Action{
		ID:        7,
		Name:      "Mission Berlin",
		Type:      "mission",
		DateDebut: "2024-09-15",
		Details:   model.Payload{"pays_id": float64(2), "objet": "Prospection"},
	}

	s := NewForEdit(rec, gw)
	assert.Equal(t, "2024-09-15", s.Draft().Anchor)
	assert.Equal(t, "Prospection", s.Draft().SubSnapshot["objet"])

	require.NoError(t, s.Next())
	require.NoError(t, s.Next())
	id, err := s.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(7), id)

	payload := gw.updated[7]
	require.NotNil(t, payload)
	assert.Equal(t, "Mission Berlin", payload["name"])
	assert.Equal(t, "2024-09-15", payload["date_debut"])
	assert.Equal(t, int64(2), payload["pays_id"])
}
