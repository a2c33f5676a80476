package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fastprodman/wagerledger/internal/config"
	"github.com/fastprodman/wagerledger/internal/infra/metrics"
	"github.com/fastprodman/wagerledger/internal/ledger"
	"github.com/fastprodman/wagerledger/internal/services/wagering"
	"github.com/fastprodman/wagerledger/internal/token"
)

const (
	ownerID     = "owner.near"
	partnerID   = "partner.near"
	playerID    = "player.near"
	tokenID     = "usdc.near"
	nftContract = "game-nft.near"

	// one whole token with 24 decimals
	oneToken = "1000000000000000000000000"

	callbackSecret = "token-callback-secret"
)

type fixedDraw bool

func (d fixedDraw) Draw(int64, int64) (bool, error) { return bool(d), nil }

type fakeTokens struct {
	mu  sync.Mutex
	err error
	n   int
}

func (f *fakeTokens) Transfer(context.Context, token.TransferRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.n++

	return f.err
}

func (f *fakeTokens) fail(err error) {
	f.mu.Lock()
	f.err = err
	f.mu.Unlock()
}

func (f *fakeTokens) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.n
}

// flakyStore fails every Save while err is set.
type flakyStore struct {
	*wagering.MemoryStore

	mu  sync.Mutex
	err error
}

func (f *flakyStore) Save(ctx context.Context, snap ledger.Snapshot, notes ...wagering.Notification) error {
	f.mu.Lock()
	err := f.err
	f.mu.Unlock()

	if err != nil {
		return err
	}

	return f.MemoryStore.Save(ctx, snap, notes...)
}

func (f *flakyStore) fail(err error) {
	f.mu.Lock()
	f.err = err
	f.mu.Unlock()
}

type testAPI struct {
	srv     *httptest.Server
	tokens  *fakeTokens
	metrics *metrics.Metrics
	secret  string
}

// newTestAPI serves a memory-backed ledger whose callbacks are signed with
// callbackSecret unless opts names another secret.
func newTestAPI(t *testing.T, won bool, opts Options) *testAPI {
	t.Helper()

	if opts.CallbackSecret == "" {
		opts.CallbackSecret = callbackSecret
	}

	return newTestAPIWithStore(t, won, wagering.NewMemoryStore(), opts)
}

func newTestAPIWithStore(t *testing.T, won bool, store wagering.Store, opts Options) *testAPI {
	t.Helper()

	a := &testAPI{tokens: &fakeTokens{}, metrics: metrics.New(), secret: opts.CallbackSecret}
	opts.Metrics = a.metrics

	svc := wagering.New(store, a.tokens, fixedDraw(won), a.metrics)
	require.NoError(t, svc.Start(context.Background()))

	a.srv = httptest.NewServer(NewRouter(svc, opts))
	t.Cleanup(a.srv.Close)

	return a
}

func (a *testAPI) do(t *testing.T, method, path, caller string, body any, headers ...string) (int, map[string]any) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req, err := http.NewRequest(method, a.srv.URL+path, bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	if a.secret != "" {
		req.Header.Set(token.SignatureHeader, token.Sign(a.secret, buf.Bytes()))
	}

	if caller != "" {
		req.Header.Set(HeaderAccountID, caller)
	}

	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&out)

	return resp.StatusCode, out
}

func (a *testAPI) setup(t *testing.T) {
	t.Helper()

	code, body := a.do(t, http.MethodPost, "/contract", "", map[string]string{"owner_id": ownerID})
	require.Equal(t, http.StatusCreated, code, body)

	code, body = a.do(t, http.MethodPost, "/games", ownerID, map[string]any{
		"partner_owner":  partnerID,
		"token_contract": tokenID,
		"nft_contract":   nftContract,
		"fee_config": map[string]any{
			"partner_fee":            "10000",
			"house_fee":              "5000",
			"owner_fee":              "5000",
			"nft_fee":                "2000",
			"bet_payment_adjustment": "100000",
			"min_bet":                "100000000000000000000000",
			"max_bet":                "5000000000000000000000000",
			"min_odds":               110,
			"max_odds":               200,
		},
	})
	require.Equal(t, http.StatusCreated, code, body)
	require.Equal(t, nftContract, body["game_code"])
}

func (a *testAPI) deposit(t *testing.T, sender, msg, amount string) {
	t.Helper()

	code, body := a.do(t, http.MethodPost, "/token/on-transfer", "",
		map[string]string{"sender_id": sender, "amount": amount, "msg": msg},
		HeaderTokenContract, tokenID)
	require.Equal(t, http.StatusOK, code, body)
	require.Equal(t, "0", body["unused"])

	id := body["transfer"].(map[string]any)["id"].(string)

	code, body = a.do(t, http.MethodPost, "/transfers/"+id+"/resolve", "", map[string]bool{"success": true})
	require.Equal(t, http.StatusOK, code, body)
	require.Equal(t, "confirmed", body["status"])
}

const (
	fundMsg    = `{"type":"FundGame","game_id":"` + nftContract + `"}`
	depositMsg = `{"type":"DepositBalance"}`
)

func TestHealthz(t *testing.T) {
	t.Parallel()

	a := newTestAPI(t, true, Options{})

	code, body := a.do(t, http.MethodGet, "/healthz", "", nil)
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, "ok", body["status"])
}

func TestAPI_PlayFlow(t *testing.T) {
	t.Parallel()

	a := newTestAPI(t, true, Options{})
	a.setup(t)
	a.deposit(t, partnerID, fundMsg, "100"+oneToken[1:])
	a.deposit(t, playerID, depositMsg, "10"+oneToken[1:])

	code, body := a.do(t, http.MethodPost, "/games/"+nftContract+"/play", playerID,
		map[string]any{"bet_size": oneToken, "odds": 128, "bet_type": "heads"})
	require.Equal(t, http.StatusOK, code, body)
	require.Equal(t, true, body["won"])
	require.Equal(t, "280000000000000000000000", body["possible_win"])

	code, body = a.do(t, http.MethodGet, "/credits/"+tokenID+"/"+playerID, "", nil)
	require.Equal(t, http.StatusOK, code, body)
	require.Equal(t, "10280000000000000000000000", body["credits"])

	code, body = a.do(t, http.MethodPost, "/credits/"+tokenID+"/retrieve", playerID,
		map[string]string{"amount": "10280000000000000000000000"})
	require.Equal(t, http.StatusOK, code, body)
	require.Equal(t, "confirmed", body["status"])
	require.Equal(t, 1, a.tokens.calls())

	code, body = a.do(t, http.MethodGet, "/transfers/"+body["id"].(string), "", nil)
	require.Equal(t, http.StatusOK, code, body)
	require.Equal(t, "withdraw_credits", body["kind"])

	code, body = a.do(t, http.MethodGet, "/debug/metrics", "", nil)
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, float64(1), body["ledger.wins"].(map[string]any)["count"])
}

func TestAPI_ErrorMapping(t *testing.T) {
	t.Parallel()

	a := newTestAPI(t, true, Options{})
	a.setup(t)
	a.deposit(t, playerID, depositMsg, "10"+oneToken[1:])

	play := map[string]any{"bet_size": oneToken, "odds": 128}

	tests := []struct {
		name     string
		method   string
		path     string
		caller   string
		body     any
		wantCode int
		wantErr  string
	}{
		{"missing_caller", http.MethodPost, "/games/" + nftContract + "/play", "", play, http.StatusBadRequest, "ERR_011"},
		{"unknown_game", http.MethodGet, "/games/nope.near", "", nil, http.StatusNotFound, "ERR_002"},
		{"not_owner", http.MethodPost, "/contract/panic", playerID, nil, http.StatusForbidden, "ERR_006"},
		{"house_funds_guard", http.MethodPost, "/games/" + nftContract + "/play", playerID, play, http.StatusConflict, "ERR_407"},
		{"odds_out_of_range", http.MethodPost, "/games/" + nftContract + "/play", playerID,
			map[string]any{"bet_size": oneToken, "odds": 500}, http.StatusBadRequest, "ERR_405"},
		{"unregistered_credits", http.MethodGet, "/credits/" + tokenID + "/stranger.near", "", nil, http.StatusNotFound, "ERR_001"},
		{"already_initialized", http.MethodPost, "/contract", "", map[string]string{"owner_id": "x.near"}, http.StatusConflict, "ERR_009"},
		{"unknown_transfer", http.MethodGet, "/transfers/missing", "", nil, http.StatusNotFound, "ERR_012"},
	}

	for _, tt := range tests {
		code, body := a.do(t, tt.method, tt.path, tt.caller, tt.body)
		require.Equal(t, tt.wantCode, code, "%s: %v", tt.name, body)
		require.Equal(t, tt.wantErr, body["code"], tt.name)
	}

	code, body := a.do(t, http.MethodPost, "/games/"+nftContract+"/play", playerID, map[string]any{"bet_size": oneToken, "odds": 128, "extra": 1})
	require.Equal(t, http.StatusBadRequest, code)
	require.Equal(t, "invalid JSON", body["error"])
}

func TestAPI_PanicSuspends(t *testing.T) {
	t.Parallel()

	a := newTestAPI(t, true, Options{})
	a.setup(t)

	code, body := a.do(t, http.MethodPost, "/contract/panic", ownerID, nil)
	require.Equal(t, http.StatusOK, code, body)
	require.Equal(t, true, body["panic_button"])

	code, body = a.do(t, http.MethodPost, "/token/on-transfer", "",
		map[string]string{"sender_id": playerID, "amount": oneToken, "msg": depositMsg},
		HeaderTokenContract, tokenID)
	require.Equal(t, http.StatusLocked, code, body)
	require.Equal(t, "ERR_007", body["code"])
	require.Equal(t, oneToken, body["unused"])
}

func TestAPI_RefusedTransferReturnsUnused(t *testing.T) {
	t.Parallel()

	a := newTestAPI(t, true, Options{})
	a.setup(t)

	code, body := a.do(t, http.MethodPost, "/token/on-transfer", "",
		map[string]string{"sender_id": playerID, "amount": oneToken, "msg": "garbage"},
		HeaderTokenContract, tokenID)
	require.Equal(t, http.StatusBadRequest, code, body)
	require.Equal(t, "ERR_005", body["code"])
	require.Equal(t, oneToken, body["unused"])
}

func TestAPI_WithdrawalFailure(t *testing.T) {
	t.Parallel()

	a := newTestAPI(t, true, Options{})
	a.setup(t)
	a.deposit(t, playerID, depositMsg, oneToken)

	a.tokens.fail(token.ErrRejected)

	code, body := a.do(t, http.MethodPost, "/credits/"+tokenID+"/retrieve", playerID, map[string]string{"amount": oneToken})
	require.Equal(t, http.StatusBadGateway, code, body)
	require.Equal(t, "ERR_501", body["code"])
	require.Equal(t, "compensated", body["transfer"].(map[string]any)["status"])

	code, body = a.do(t, http.MethodGet, "/credits/"+tokenID+"/"+playerID, "", nil)
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, oneToken, body["credits"])
}

func TestAPI_CallbackSignature(t *testing.T) {
	t.Parallel()

	const secret = "s3cret"

	a := newTestAPI(t, true, Options{CallbackSecret: secret})
	a.setup(t)

	payload := []byte(`{"sender_id":"player.near","amount":"` + oneToken + `","msg":"{\"type\":\"DepositBalance\"}"}`)

	send := func(sig string) int {
		req, err := http.NewRequest(http.MethodPost, a.srv.URL+"/token/on-transfer", bytes.NewReader(payload))
		require.NoError(t, err)
		req.Header.Set(HeaderTokenContract, tokenID)

		if sig != "" {
			req.Header.Set(token.SignatureHeader, sig)
		}

		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		resp.Body.Close()

		return resp.StatusCode
	}

	require.Equal(t, http.StatusUnauthorized, send(""))
	require.Equal(t, http.StatusUnauthorized, send(token.Sign("wrong", payload)))
	require.Equal(t, http.StatusOK, send(token.Sign(secret, payload)))
}

func TestAPI_CallbacksRefusedWithoutSecret(t *testing.T) {
	t.Parallel()

	a := newTestAPIWithStore(t, true, wagering.NewMemoryStore(), Options{})
	a.setup(t)

	const attacker = "attacker.near"

	code, body := a.do(t, http.MethodPost, "/token/on-transfer", "",
		map[string]string{"sender_id": attacker, "amount": oneToken, "msg": depositMsg},
		HeaderTokenContract, tokenID)
	require.Equal(t, http.StatusForbidden, code, body)

	code, body = a.do(t, http.MethodPost, "/transfers/tr-1/resolve", "", map[string]bool{"success": true})
	require.Equal(t, http.StatusForbidden, code, body)

	code, body = a.do(t, http.MethodGet, "/credits/"+tokenID+"/"+attacker, "", nil)
	require.Equal(t, http.StatusNotFound, code, body)

	code, body = a.do(t, http.MethodPost, "/credits/"+tokenID+"/retrieve", attacker, map[string]string{"amount": oneToken})
	require.Equal(t, http.StatusNotFound, code, body)
	require.Equal(t, "ERR_001", body["code"])
	require.Zero(t, a.tokens.calls())
}

func TestAPI_PersistFailureKeepsUnused(t *testing.T) {
	t.Parallel()

	store := &flakyStore{MemoryStore: wagering.NewMemoryStore()}

	a := newTestAPIWithStore(t, true, store, Options{CallbackSecret: callbackSecret})
	a.setup(t)

	store.fail(errors.New("connection reset"))

	code, body := a.do(t, http.MethodPost, "/token/on-transfer", "",
		map[string]string{"sender_id": playerID, "amount": oneToken, "msg": depositMsg},
		HeaderTokenContract, tokenID)
	require.Equal(t, http.StatusInternalServerError, code, body)
	require.Equal(t, "internal error", body["error"])
	require.Equal(t, oneToken, body["unused"])
	require.NotContains(t, body, "code")

	store.fail(nil)
	a.deposit(t, playerID, depositMsg, oneToken)

	code, body = a.do(t, http.MethodGet, "/credits/"+tokenID+"/"+playerID, "", nil)
	require.Equal(t, http.StatusOK, code, body)
	require.Equal(t, oneToken, body["credits"])
}

func TestAPI_RateLimit(t *testing.T) {
	t.Parallel()

	a := newTestAPI(t, true, Options{RateLimit: config.RateLimitConfig{PerSecond: 0.001, Burst: 2}})
	// init is keyed by address, game registration spends one of the owner's two
	a.setup(t)

	code, body := a.do(t, http.MethodPost, "/contract/panic", ownerID, nil)
	require.Equal(t, http.StatusOK, code, body)

	code, body = a.do(t, http.MethodPost, "/contract/panic", ownerID, nil)
	require.Equal(t, http.StatusTooManyRequests, code, body)
	require.EqualValues(t, 1, a.metrics.RateLimited.Count())

	// reads are never limited
	code, _ = a.do(t, http.MethodGet, "/contract", ownerID, nil)
	require.Equal(t, http.StatusOK, code)
}

func TestAPI_CORS(t *testing.T) {
	t.Parallel()

	a := newTestAPI(t, true, Options{CORSOrigins: []string{"https://app.example"}})

	req, err := http.NewRequest(http.MethodOptions, a.srv.URL+"/games", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "https://app.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", HeaderAccountID)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	require.Equal(t, "https://app.example", resp.Header.Get("Access-Control-Allow-Origin"))

	req.Header.Set("Origin", "https://evil.example")

	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	require.Empty(t, resp.Header.Get("Access-Control-Allow-Origin"))
}
