package api

import (
	"net/http"

	"github.com/fastprodman/wagerledger/internal/ledger"
)

type initRequest struct {
	OwnerID    string `json:"owner_id"`
	NftAccount string `json:"nft_account"`
}

type updateOwnerRequest struct {
	NewOwner string `json:"new_owner"`
}

// InitHandler handles POST /contract
func (h *HandlerProvider) InitHandler(w http.ResponseWriter, r *http.Request) {
	var req initRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	meta, err := h.svc.Init(r.Context(), req.OwnerID, req.NftAccount)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, meta)
}

// GetContractHandler handles GET /contract
func (h *HandlerProvider) GetContractHandler(w http.ResponseWriter, r *http.Request) {
	meta, err := h.svc.Meta(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, meta)
}

// EmergencyPanicHandler handles POST /contract/panic
func (h *HandlerProvider) EmergencyPanicHandler(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerID(w, r)
	if !ok {
		return
	}

	on, err := h.svc.EmergencyPanic(r.Context(), caller)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"panic_button": on})
}

// UpdateOwnerHandler handles PUT /contract/owner
func (h *HandlerProvider) UpdateOwnerHandler(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerID(w, r)
	if !ok {
		return
	}

	var req updateOwnerRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	err := h.svc.UpdateOwner(r.Context(), caller, req.NewOwner)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"owner_id": req.NewOwner})
}

// ListGamesHandler handles GET /games
func (h *HandlerProvider) ListGamesHandler(w http.ResponseWriter, r *http.Request) {
	games, err := h.svc.Games(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	if games == nil {
		games = []ledger.PartnerGame{}
	}

	writeJSON(w, http.StatusOK, games)
}

// RegisterGameHandler handles POST /games
func (h *HandlerProvider) RegisterGameHandler(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerID(w, r)
	if !ok {
		return
	}

	var req ledger.NewGame
	if !decodeJSON(w, r, &req) {
		return
	}

	g, err := h.svc.RegisterGame(r.Context(), caller, req)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, g)
}

// AlterPartnerHandler handles PUT /games/{code}
func (h *HandlerProvider) AlterPartnerHandler(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerID(w, r)
	if !ok {
		return
	}

	var req ledger.GameUpdate
	if !decodeJSON(w, r, &req) {
		return
	}

	g, err := h.svc.AlterPartner(r.Context(), caller, gameCode(r), req)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, g)
}

// ViewPartnerHandler handles GET /games/{code}
func (h *HandlerProvider) ViewPartnerHandler(w http.ResponseWriter, r *http.Request) {
	g, err := h.svc.ViewPartnerData(r.Context(), gameCode(r))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, g)
}
