package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tonmaster/internal/game"
	"tonmaster/internal/logging"
	"tonmaster/internal/session"
)

type fixedSource struct{ c game.Customer }

func (f fixedSource) Fetch(context.Context, game.Difficulty) game.Customer { return f.c }

func setupRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	customer := game.Customer{
		ID:   "fb1",
		Name: "Maria Santos",
		DesiredItems: []game.Product{
			{ID: "p1", Name: "Expresso", Price: decimal.RequireFromString("4.50")},
			{ID: "p2", Name: "Croissant", Price: decimal.RequireFromString("5.00")},
		},
	}
	ctl := session.New(game.SeedPlayer(time.Now()), fixedSource{customer}, game.DefaultPolicy(),
		session.WithLogger(logging.Discard()))
	return NewRouter(NewGameHandler(ctl), logging.Discard())
}

func do(t *testing.T, r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestHealthz(t *testing.T) {
	r := setupRouter(t)
	rec := do(t, r, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))
}

func TestRoundLifecycle(t *testing.T) {
	r := setupRouter(t)

	rec := do(t, r, http.MethodGet, "/v1/rounds/current", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, r, http.MethodPost, "/v1/rounds", nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	snap := decode[session.Snapshot](t, rec)
	assert.Equal(t, game.Ready, snap.Phase)
	require.NotNil(t, snap.Customer)
	assert.Equal(t, "Maria Santos", snap.Customer.Name)

	rec = do(t, r, http.MethodPost, "/v1/rounds", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = do(t, r, http.MethodPost, "/v1/rounds/current/items/p1/toggle", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	snap = decode[session.Snapshot](t, rec)
	assert.Equal(t, []string{"p1"}, snap.Selected)

	rec = do(t, r, http.MethodPost, "/v1/rounds/current/items/nope/toggle", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, r, http.MethodPost, "/v1/rounds/current/charge", map[string]any{"amount": 9.49})
	require.Equal(t, http.StatusOK, rec.Code)
	miss := decode[chargeResp](t, rec)
	assert.Equal(t, game.Failure, miss.Result.Outcome)
	assert.Equal(t, "Pagamento falhou! Esperado R$ 9,50, mas recebido R$ 9,49.", miss.Message)
	assert.Equal(t, "1250.75", miss.Player.Balance.String())

	// still flashing
	rec = do(t, r, http.MethodPost, "/v1/rounds/current/charge", map[string]any{"amount": "9.50"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	require.Eventually(t, func() bool {
		rec := do(t, r, http.MethodGet, "/v1/rounds/current", nil)
		return decode[session.Snapshot](t, rec).Phase == game.Ready
	}, 2*time.Second, 20*time.Millisecond)

	rec = do(t, r, http.MethodPost, "/v1/rounds/current/charge", map[string]any{"keys": "9,50"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	win := decode[chargeResp](t, rec)
	assert.Equal(t, game.Success, win.Result.Outcome)
	assert.Equal(t, "1.9", win.Result.Reward.Money.String())
	assert.Equal(t, "1252.65", win.Player.Balance.String())
	assert.Equal(t, "Maria Santos", win.Player.Transactions[0].CustomerName)

	rec = do(t, r, http.MethodGet, "/v1/transactions", nil)
	txs := decode[[]game.Transaction](t, rec)
	assert.Len(t, txs, 4)

	rec = do(t, r, http.MethodDelete, "/v1/rounds/current", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = do(t, r, http.MethodGet, "/v1/rounds/current", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestChargeValidation(t *testing.T) {
	r := setupRouter(t)
	require.Equal(t, http.StatusCreated, do(t, r, http.MethodPost, "/v1/rounds", nil).Code)

	assert.Equal(t, http.StatusBadRequest, do(t, r, http.MethodPost, "/v1/rounds/current/charge", map[string]any{}).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, r, http.MethodPost, "/v1/rounds/current/charge", map[string]any{"amount": -1}).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, r, http.MethodPost, "/v1/rounds/current/charge", map[string]any{"keys": "9x"}).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, r, http.MethodPost, "/v1/rounds/current/charge", map[string]any{"amount": "abc"}).Code)
}

func TestChargeRejectedKeysLeaveKeypadClean(t *testing.T) {
	r := setupRouter(t)
	require.Equal(t, http.StatusCreated, do(t, r, http.MethodPost, "/v1/rounds", nil).Code)

	rec := do(t, r, http.MethodPost, "/v1/rounds/current/charge", map[string]any{"keys": "9x"})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	snap := decode[session.Snapshot](t, do(t, r, http.MethodGet, "/v1/rounds/current", nil))
	assert.Equal(t, game.Ready, snap.Phase)
	assert.Equal(t, "0", snap.Display)

	rec = do(t, r, http.MethodPost, "/v1/rounds/current/charge", map[string]any{"keys": "9,50"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	res := decode[chargeResp](t, rec)
	assert.Equal(t, game.Success, res.Result.Outcome)
	assert.Equal(t, "9.5", res.Result.Entered.String())
}

func TestStoreAndProfile(t *testing.T) {
	r := setupRouter(t)

	rec := do(t, r, http.MethodGet, "/v1/store/upgrades", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	ups := decode[[]upgradeView](t, rec)
	require.Len(t, ups, 4)
	assert.True(t, ups[3].Affordable)
	assert.False(t, ups[0].Purchased)

	rec = do(t, r, http.MethodPost, "/v1/store/upgrades/u1/purchase", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "750.75", decode[game.PlayerState](t, rec).Balance.String())

	assert.Equal(t, http.StatusConflict, do(t, r, http.MethodPost, "/v1/store/upgrades/u1/purchase", nil).Code)
	assert.Equal(t, http.StatusUnprocessableEntity, do(t, r, http.MethodPost, "/v1/store/upgrades/u4/purchase", nil).Code)
	assert.Equal(t, http.StatusNotFound, do(t, r, http.MethodPost, "/v1/store/upgrades/zz/purchase", nil).Code)

	rec = do(t, r, http.MethodPatch, "/v1/player", map[string]string{"merchantName": "Loja Nova"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Loja Nova", decode[game.PlayerState](t, rec).MerchantName)
	assert.Equal(t, http.StatusBadRequest, do(t, r, http.MethodPatch, "/v1/player", map[string]string{}).Code)

	rec = do(t, r, http.MethodPost, "/v1/tutorial/complete", nil)
	assert.True(t, decode[game.PlayerState](t, rec).CompletedTutorial)

	rec = do(t, r, http.MethodGet, "/v1/player", nil)
	p := decode[game.PlayerState](t, rec)
	assert.Equal(t, "Loja Nova", p.MerchantName)
	assert.True(t, p.HasUnlocked("u1"))
}
