package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/fastprodman/wagerledger/internal/ledger"
	"github.com/fastprodman/wagerledger/internal/services/wagering"
)

type playRequest struct {
	BetSize decimal.Decimal `json:"bet_size"`
	Odds    int64           `json:"odds"`
	BetType string          `json:"bet_type"`
}

type amountRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

type onTransferRequest struct {
	SenderID string          `json:"sender_id"`
	Amount   decimal.Decimal `json:"amount"`
	Msg      string          `json:"msg"`
}

type resolveRequest struct {
	Success *bool `json:"success"`
}

// PlayHandler handles POST /games/{code}/play
func (h *HandlerProvider) PlayHandler(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerID(w, r)
	if !ok {
		return
	}

	var req playRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	out, err := h.svc.Play(r.Context(), caller, gameCode(r), req.BetSize, req.Odds, req.BetType)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, out)
}

// GetCreditsHandler handles GET /credits/{token}/{account}
func (h *HandlerProvider) GetCreditsHandler(w http.ResponseWriter, r *http.Request) {
	token, account := chi.URLParam(r, "token"), chi.URLParam(r, "account")

	balance, err := h.svc.GetCredits(r.Context(), token, account)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"token_contract": token,
		"account_id":     account,
		"credits":        balance,
	})
}

// RetrieveCreditsHandler handles POST /credits/{token}/retrieve
func (h *HandlerProvider) RetrieveCreditsHandler(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerID(w, r)
	if !ok {
		return
	}

	var req amountRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	tr, err := h.svc.RetrieveCredits(r.Context(), caller, chi.URLParam(r, "token"), req.Amount)
	writeWithdrawal(w, tr, err)
}

// RetrievePartnerBalanceHandler handles POST /games/{code}/partner-balance/retrieve
func (h *HandlerProvider) RetrievePartnerBalanceHandler(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerID(w, r)
	if !ok {
		return
	}

	tr, err := h.svc.RetrievePartnerBalance(r.Context(), caller, gameCode(r))
	writeWithdrawal(w, tr, err)
}

// RetrieveHouseFundsHandler handles POST /games/{code}/house-funds/retrieve
func (h *HandlerProvider) RetrieveHouseFundsHandler(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerID(w, r)
	if !ok {
		return
	}

	var req amountRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	tr, err := h.svc.RetrieveHouseFunds(r.Context(), caller, gameCode(r), req.Amount)
	writeWithdrawal(w, tr, err)
}

// RetrieveOwnerFundsHandler handles POST /games/{code}/owner-funds/retrieve
func (h *HandlerProvider) RetrieveOwnerFundsHandler(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerID(w, r)
	if !ok {
		return
	}

	tr, err := h.svc.RetrieveOwnerFunds(r.Context(), caller, gameCode(r))
	writeWithdrawal(w, tr, err)
}

// RetrieveNftFundsHandler handles POST /games/{code}/nft-funds/retrieve
func (h *HandlerProvider) RetrieveNftFundsHandler(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerID(w, r)
	if !ok {
		return
	}

	tr, err := h.svc.RetrieveNftFunds(r.Context(), caller, gameCode(r))
	writeWithdrawal(w, tr, err)
}

// writeWithdrawal reports a finished withdrawal. A compensated one is a 502 that
// still carries the transfer record.
func writeWithdrawal(w http.ResponseWriter, tr ledger.Transfer, err error) {
	if err != nil {
		var body errorResponse
		if errors.Is(err, ledger.ErrTransferFailed) && tr.ID != "" {
			body.Transfer = &tr
		}

		writeErrorBody(w, err, body)

		return
	}

	writeJSON(w, http.StatusOK, tr)
}

// OnTransferHandler handles POST /token/on-transfer
func (h *HandlerProvider) OnTransferHandler(w http.ResponseWriter, r *http.Request) {
	var req onTransferRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	unused, tr, err := h.svc.OnTransfer(r.Context(), wagering.InboundTransfer{
		NotificationID: r.Header.Get(HeaderNotificationID),
		Token:          r.Header.Get(HeaderTokenContract),
		Sender:         req.SenderID,
		Amount:         req.Amount,
		Msg:            req.Msg,
	})
	if err != nil {
		writeErrorBody(w, err, errorResponse{Unused: &unused})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"unused":   unused,
		"transfer": tr,
	})
}

// ResolveTransferHandler handles POST /transfers/{id}/resolve
func (h *HandlerProvider) ResolveTransferHandler(w http.ResponseWriter, r *http.Request) {
	var req resolveRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if req.Success == nil {
		writeMessage(w, http.StatusBadRequest, "success required")
		return
	}

	tr, err := h.svc.ResolveDeposit(r.Context(), chi.URLParam(r, "id"), *req.Success)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, tr)
}

// GetTransferHandler handles GET /transfers/{id}
func (h *HandlerProvider) GetTransferHandler(w http.ResponseWriter, r *http.Request) {
	tr, err := h.svc.Transfer(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, tr)
}
