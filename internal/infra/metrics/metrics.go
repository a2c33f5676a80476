// Package metrics keeps the ledger's counters in a go-metrics registry and dumps
// them as JSON.
package metrics

import (
	"io"
	"net/http"

	gometrics "github.com/rcrowley/go-metrics"
)

type Metrics struct {
	registry gometrics.Registry

	Plays           gometrics.Counter
	Wins            gometrics.Counter
	Losses          gometrics.Counter
	Rejected        gometrics.Counter
	Deposits        gometrics.Counter
	Withdrawals     gometrics.Counter
	Confirmed       gometrics.Counter
	Compensated     gometrics.Counter
	RateLimited     gometrics.Counter
	TransferLatency gometrics.Timer
}

func New() *Metrics {
	r := gometrics.NewRegistry()

	return &Metrics{
		registry:        r,
		Plays:           gometrics.GetOrRegisterCounter("ledger.plays", r),
		Wins:            gometrics.GetOrRegisterCounter("ledger.wins", r),
		Losses:          gometrics.GetOrRegisterCounter("ledger.losses", r),
		Rejected:        gometrics.GetOrRegisterCounter("ledger.rejected", r),
		Deposits:        gometrics.GetOrRegisterCounter("transfers.deposits", r),
		Withdrawals:     gometrics.GetOrRegisterCounter("transfers.withdrawals", r),
		Confirmed:       gometrics.GetOrRegisterCounter("transfers.confirmed", r),
		Compensated:     gometrics.GetOrRegisterCounter("transfers.compensated", r),
		RateLimited:     gometrics.GetOrRegisterCounter("http.rate_limited", r),
		TransferLatency: gometrics.GetOrRegisterTimer("transfers.latency", r),
	}
}

func (m *Metrics) WriteJSON(w io.Writer) {
	gometrics.WriteJSONOnce(m.registry, w)
}

// Handler serves the registry snapshot.
func (m *Metrics) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		m.WriteJSON(w)
	})
}
