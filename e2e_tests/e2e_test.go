package e2etests

// These tests run against a live API started with APP_ENV=DEV seeds applied:
// owner.dev owns the contract, demo-nft.dev is funded and player.dev holds credits.
// Set E2E_BASE_URL to enable them.

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

const (
	timeout   = 5 * time.Second
	waitReady = 20 * time.Second

	owner    = "owner.dev"
	partner  = "partner.dev"
	player   = "player.dev"
	tokenID  = "usdc.dev"
	gameCode = "demo-nft.dev"

	// 1 token at 24 decimals, inside the seeded bet bounds
	betSize = "1000000000000000000000000"
)

var httpClient = &http.Client{Timeout: timeout}

func baseURL(t *testing.T) string {
	t.Helper()

	u := os.Getenv("E2E_BASE_URL")
	if u == "" {
		t.Skip("E2E_BASE_URL not set")
	}

	return u
}

func TestE2E_PlayConservesValue(t *testing.T) {
	base := baseURL(t)
	waitUntilReady(t, base)

	before := gameTotal(t, base).Add(credits(t, base, player))

	for i := 0; i < 5; i++ {
		code, body := call(t, base, http.MethodPost, "/games/"+gameCode+"/play", player,
			map[string]any{"bet_size": betSize, "odds": 150, "bet_type": "e2e"})
		if code != http.StatusOK {
			t.Fatalf("play %d: want 200, got %d (%s)", i, code, body)
		}
	}

	after := gameTotal(t, base).Add(credits(t, base, player))
	if !before.Equal(after) {
		t.Fatalf("value not conserved: before %s, after %s", before, after)
	}
}

func TestE2E_Rejections(t *testing.T) {
	base := baseURL(t)
	waitUntilReady(t, base)

	tests := []struct {
		name     string
		method   string
		path     string
		caller   string
		body     any
		wantCode int
		wantErr  string
	}{
		{"odds_out_of_range", http.MethodPost, "/games/" + gameCode + "/play", player,
			map[string]any{"bet_size": betSize, "odds": 1000}, http.StatusBadRequest, "ERR_405"},
		{"bet_too_small", http.MethodPost, "/games/" + gameCode + "/play", player,
			map[string]any{"bet_size": "1", "odds": 150}, http.StatusBadRequest, "ERR_403"},
		{"unknown_game", http.MethodPost, "/games/nope.dev/play", player,
			map[string]any{"bet_size": betSize, "odds": 150}, http.StatusNotFound, "ERR_002"},
		{"unregistered_player", http.MethodGet, "/credits/" + tokenID + "/stranger.dev", "", nil, http.StatusNotFound, "ERR_001"},
		{"partner_cannot_toggle_panic", http.MethodPost, "/contract/panic", partner, nil, http.StatusForbidden, "ERR_006"},
		{"owner_cannot_take_partner_pool", http.MethodPost, "/games/" + gameCode + "/partner-balance/retrieve", owner, nil,
			http.StatusForbidden, "ERR_004"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, body := call(t, base, tt.method, tt.path, tt.caller, tt.body)
			if code != tt.wantCode {
				t.Fatalf("want %d, got %d (%s)", tt.wantCode, code, body)
			}

			var payload struct {
				Code string `json:"code"`
			}

			err := json.Unmarshal(body, &payload)
			if err != nil {
				t.Fatalf("decode error body: %v (%s)", err, body)
			}

			if payload.Code != tt.wantErr {
				t.Fatalf("want %s, got %s", tt.wantErr, payload.Code)
			}
		})
	}
}

/* -------------------- helpers -------------------- */

func call(t *testing.T, base, method, path, caller string, body any) (int, []byte) {
	t.Helper()

	var data []byte
	if body != nil {
		var err error

		data, err = json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
	}

	req, err := http.NewRequest(method, base+path, bytes.NewReader(data))
	if err != nil {
		t.Fatalf("new request: %v", err)
	}

	req.Header.Set("Content-Type", "application/json")

	if caller != "" {
		req.Header.Set("X-Account-Id", caller)
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer resp.Body.Close()

	b, _ := io.ReadAll(resp.Body)

	return resp.StatusCode, b
}

func gameTotal(t *testing.T, base string) decimal.Decimal {
	t.Helper()

	code, body := call(t, base, http.MethodGet, "/games/"+gameCode, "", nil)
	if code != http.StatusOK {
		t.Fatalf("GET game: want 200, got %d (%s)", code, body)
	}

	var g struct {
		HouseFunds     decimal.Decimal `json:"house_funds"`
		PartnerBalance decimal.Decimal `json:"partner_balance"`
		OwnerBalance   decimal.Decimal `json:"owner_balance"`
		NftBalance     decimal.Decimal `json:"nft_balance"`
	}

	err := json.Unmarshal(body, &g)
	if err != nil {
		t.Fatalf("decode game: %v", err)
	}

	return g.HouseFunds.Add(g.PartnerBalance).Add(g.OwnerBalance).Add(g.NftBalance)
}

func credits(t *testing.T, base, account string) decimal.Decimal {
	t.Helper()

	code, body := call(t, base, http.MethodGet, fmt.Sprintf("/credits/%s/%s", tokenID, account), "", nil)
	if code != http.StatusOK {
		t.Fatalf("GET credits: want 200, got %d (%s)", code, body)
	}

	var payload struct {
		Credits decimal.Decimal `json:"credits"`
	}

	err := json.Unmarshal(body, &payload)
	if err != nil {
		t.Fatalf("decode credits: %v", err)
	}

	return payload.Credits
}

// waitUntilReady waits until GET /healthz responds 200 or times out.
func waitUntilReady(t *testing.T, base string) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), waitReady)
	defer cancel()

	tick := time.NewTicker(200 * time.Millisecond)
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			t.Fatalf("service not ready at %s within %s", base, waitReady)
		case <-tick.C:
			resp, err := httpClient.Get(base + "/healthz")
			if err != nil {
				// not listening yet
				continue
			}

			_ = resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return
			}
		}
	}
}
