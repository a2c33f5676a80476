package api

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/fastprodman/wagerledger/internal/ledger"
	"github.com/fastprodman/wagerledger/internal/services/wagering"
)

const (
	HeaderAccountID      = "X-Account-Id"
	HeaderTokenContract  = "X-Token-Contract"
	HeaderNotificationID = "X-Notification-Id"

	maxBodyBytes = 1 << 20
)

// HandlerProvider wraps the wagering service and exposes HTTP handlers.
type HandlerProvider struct {
	svc *wagering.Service
}

func NewHandler(svc *wagering.Service) *HandlerProvider {
	return &HandlerProvider{svc: svc}
}

// --- Helpers ---

type errorResponse struct {
	Error    string           `json:"error"`
	Code     string           `json:"code,omitempty"`
	Unused   *decimal.Decimal `json:"unused,omitempty"`
	Transfer *ledger.Transfer `json:"transfer,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	err := json.NewEncoder(w).Encode(v)
	if err != nil {
		slog.Error("failed to encode JSON response", "error", err)
	}
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// statusFor maps a ledger error kind to an HTTP status. Anything that is not a
// ledger error is a 500.
func statusFor(err error) (int, *ledger.Error) {
	var lerr *ledger.Error
	if !errors.As(err, &lerr) {
		return http.StatusInternalServerError, nil
	}

	switch lerr.Kind {
	case ledger.KindValidation:
		return http.StatusBadRequest, lerr
	case ledger.KindNotFound:
		return http.StatusNotFound, lerr
	case ledger.KindUnauthorized:
		return http.StatusForbidden, lerr
	case ledger.KindInsufficientFunds, ledger.KindConflict:
		return http.StatusConflict, lerr
	case ledger.KindSuspended:
		return http.StatusLocked, lerr
	case ledger.KindExternalCall:
		return http.StatusBadGateway, lerr
	default:
		return http.StatusInternalServerError, lerr
	}
}

func writeError(w http.ResponseWriter, err error) {
	writeErrorBody(w, err, errorResponse{})
}

func writeErrorBody(w http.ResponseWriter, err error, body errorResponse) {
	status, lerr := statusFor(err)
	if lerr == nil {
		slog.Error("request failed", "error", err)

		body.Error = "internal error"
		writeJSON(w, status, body)

		return
	}

	body.Error = err.Error()
	body.Code = lerr.Code
	writeJSON(w, status, body)
}

// decodeJSON reads a size-capped body and rejects unknown fields. It writes the
// 400 itself and returns false on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	defer r.Body.Close()

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	err := dec.Decode(v)
	if err != nil {
		if errors.Is(err, io.EOF) {
			writeMessage(w, http.StatusBadRequest, "empty body")
			return false
		}

		writeMessage(w, http.StatusBadRequest, "invalid JSON")

		return false
	}

	return true
}

// callerID reads the X-Account-Id header. A missing caller is ERR_011.
func callerID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := strings.TrimSpace(r.Header.Get(HeaderAccountID))
	if id == "" {
		writeError(w, ledger.ErrInvalidAccount)
		return "", false
	}

	return id, true
}

func gameCode(r *http.Request) string {
	return chi.URLParam(r, "code")
}
