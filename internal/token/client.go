// Package token talks to the fungible token collaborator: outbound transfers and
// signature checks on the calls it makes back to us.
package token

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const SignatureHeader = "X-Signature"

var (
	ErrRejected     = errors.New("token transfer rejected")
	ErrBadSignature = errors.New("bad signature")
)

type Client struct {
	endpoint string
	secret   string
	http     *http.Client
}

func NewClient(endpoint, secret string, timeout time.Duration) *Client {
	return &Client{
		endpoint: strings.TrimRight(endpoint, "/"),
		secret:   secret,
		http:     &http.Client{Timeout: timeout},
	}
}

// TransferRequest is one ft_transfer call. RequestID is the ledger transfer id and
// lets the collaborator deduplicate retries.
type TransferRequest struct {
	RequestID string          `json:"request_id"`
	Token     string          `json:"token_contract"`
	Receiver  string          `json:"receiver_id"`
	Amount    decimal.Decimal `json:"amount"`
	Memo      string          `json:"memo,omitempty"`
}

type response struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// Transfer asks the collaborator to move tokens out of the contract. A nil error
// means the collaborator confirmed the transfer.
func (c *Client) Transfer(ctx context.Context, req TransferRequest) error {
	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("marshal transfer: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+"/ft_transfer", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")

	if c.secret != "" {
		httpReq.Header.Set(SignatureHeader, Sign(c.secret, body))
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return fmt.Errorf("call token collaborator: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	var parsed response
	_ = json.Unmarshal(raw, &parsed)

	if resp.StatusCode/100 != 2 {
		return fmt.Errorf("%w: status %d: %s", ErrRejected, resp.StatusCode, parsed.Message)
	}

	if !strings.EqualFold(parsed.Status, "ok") {
		return fmt.Errorf("%w: %s", ErrRejected, parsed.Message)
	}

	return nil
}

// Sign returns the hex HMAC-SHA256 of body under secret.
func Sign(secret string, body []byte) string {
	m := hmac.New(sha256.New, []byte(secret))
	m.Write(body)

	return hex.EncodeToString(m.Sum(nil))
}

// Verify checks a signature produced by Sign.
func Verify(secret string, body []byte, signature string) error {
	want, err := hex.DecodeString(signature)
	if err != nil {
		return ErrBadSignature
	}

	m := hmac.New(sha256.New, []byte(secret))
	m.Write(body)

	if !hmac.Equal(m.Sum(nil), want) {
		return ErrBadSignature
	}

	return nil
}
