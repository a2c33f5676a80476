package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/fastprodman/wagerledger/internal/services/wagering"
)

// NewServer creates and returns a configured *http.Server for the ledger API.
func NewServer(port uint16, svc *wagering.Service, opts Options) *http.Server {
	mux := NewRouter(svc, opts)

	addr := fmt.Sprintf(":%d", port)

	return &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}
}
