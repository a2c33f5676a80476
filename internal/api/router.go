package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/cors"

	"github.com/fastprodman/wagerledger/internal/config"
	"github.com/fastprodman/wagerledger/internal/infra/metrics"
	"github.com/fastprodman/wagerledger/internal/services/wagering"
)

// Options configures the router. A zero RateLimit disables limiting and no
// CORSOrigins leaves cross-origin requests to the browser's default policy.
// Token callbacks must be signed with CallbackSecret; without one they are all
// refused.
type Options struct {
	CallbackSecret string
	RateLimit      config.RateLimitConfig
	CORSOrigins    []string
	Metrics        *metrics.Metrics
}

// NewRouter builds the chi router with all API endpoints registered.
func NewRouter(svc *wagering.Service, opts Options) http.Handler {
	if opts.Metrics == nil {
		opts.Metrics = metrics.New()
	}

	h := NewHandler(svc)
	r := chi.NewRouter()

	if len(opts.CORSOrigins) > 0 {
		r.Use(cors.New(cors.Options{
			AllowedOrigins: opts.CORSOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut},
			AllowedHeaders: []string{"Content-Type", HeaderAccountID},
		}).Handler)
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Method(http.MethodGet, "/debug/metrics", opts.Metrics.Handler())

	r.Get("/contract", h.GetContractHandler)
	r.Get("/games", h.ListGamesHandler)
	r.Get("/games/{code}", h.ViewPartnerHandler)
	r.Get("/credits/{token}/{account}", h.GetCreditsHandler)
	r.Get("/transfers/{id}", h.GetTransferHandler)

	r.Group(func(r chi.Router) {
		if opts.RateLimit.PerSecond > 0 && opts.RateLimit.Burst > 0 {
			r.Use(rateLimit(opts.RateLimit.PerSecond, opts.RateLimit.Burst, opts.Metrics))
		}

		r.Post("/contract", h.InitHandler)
		r.Post("/contract/panic", h.EmergencyPanicHandler)
		r.Put("/contract/owner", h.UpdateOwnerHandler)

		r.Post("/games", h.RegisterGameHandler)
		r.Put("/games/{code}", h.AlterPartnerHandler)
		r.Post("/games/{code}/play", h.PlayHandler)
		r.Post("/games/{code}/partner-balance/retrieve", h.RetrievePartnerBalanceHandler)
		r.Post("/games/{code}/house-funds/retrieve", h.RetrieveHouseFundsHandler)
		r.Post("/games/{code}/owner-funds/retrieve", h.RetrieveOwnerFundsHandler)
		r.Post("/games/{code}/nft-funds/retrieve", h.RetrieveNftFundsHandler)

		r.Post("/credits/{token}/retrieve", h.RetrieveCreditsHandler)

		r.Group(func(r chi.Router) {
			r.Use(verifySignature(opts.CallbackSecret))

			r.Post("/token/on-transfer", h.OnTransferHandler)
			r.Post("/transfers/{id}/resolve", h.ResolveTransferHandler)
		})
	})

	return r
}
