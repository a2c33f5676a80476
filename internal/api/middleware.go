package api

import (
	"bytes"
	"io"
	"log/slog"
	"net"
	"net/http"

	"github.com/kevinms/leakybucket-go"

	"github.com/fastprodman/wagerledger/internal/infra/metrics"
	"github.com/fastprodman/wagerledger/internal/token"
)

// rateLimit lets each caller spend burst requests, refilled at perSecond. Callers
// are keyed by X-Account-Id, or the remote host when the header is absent.
func rateLimit(perSecond float64, burst int64, m *metrics.Metrics) func(http.Handler) http.Handler {
	buckets := leakybucket.NewCollector(perSecond, burst, true)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := limiterKey(r)

			if buckets.Remaining(key) <= 0 || buckets.Add(key, 1) == 0 {
				m.RateLimited.Inc(1)
				slog.Warn("rate limited", "key", key, "path", r.URL.Path)
				writeMessage(w, http.StatusTooManyRequests, "rate limit exceeded")

				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func limiterKey(r *http.Request) string {
	if id := r.Header.Get(HeaderAccountID); id != "" {
		return "account:" + id
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}

	return "addr:" + host
}

// verifySignature rejects collaborator callbacks whose body is not signed with
// secret. An empty secret rejects every callback.
func verifySignature(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if secret == "" {
				slog.Error("token callback refused, no callback secret configured", "path", r.URL.Path)
				writeMessage(w, http.StatusForbidden, "token callbacks are disabled")

				return
			}

			body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
			if err != nil {
				writeMessage(w, http.StatusBadRequest, "invalid body")
				return
			}

			err = token.Verify(secret, body, r.Header.Get(token.SignatureHeader))
			if err != nil {
				slog.Warn("rejected unsigned callback", "path", r.URL.Path)
				writeMessage(w, http.StatusUnauthorized, "invalid signature")

				return
			}

			r.Body = io.NopCloser(bytes.NewReader(body))
			next.ServeHTTP(w, r)
		})
	}
}
