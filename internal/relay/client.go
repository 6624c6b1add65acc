// Package relay provides the client for the meta-transaction relay
// service, which pays on-chain gas on the user's behalf, bundles a
// deterministic smart-account deployment when needed, and charges a fee.
package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"net/url"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/sidrisov/payflow-sub001/internal/chain"
	"github.com/sidrisov/payflow-sub001/internal/metrics"
	"github.com/sidrisov/payflow-sub001/internal/wallet"
	payerr "github.com/sidrisov/payflow-sub001/pkg/errors"
)

const defaultTimeout = 30 * time.Second

// TxIntent is the transfer the relay executes on behalf of a smart wallet.
type TxIntent struct {
	From          string        `json:"from"`
	To            string        `json:"to"`
	Value         string        `json:"value"` // wei, decimal string
	Network       chain.Network `json:"network"`
	SaltNonce     string        `json:"saltNonce"`
	WalletVersion string        `json:"walletVersion"`
}

// ClientOptions contains optional configuration for the relay client.
type ClientOptions struct {
	Timeout     time.Duration
	HTTPClient  *http.Client
	RateLimiter *chain.RateLimiter
	Metrics     metrics.Recorder
}

// Client talks to the relay service over HTTP JSON.
type Client struct {
	endpoint string
	host     string
	http     *http.Client
	limiter  *chain.RateLimiter
	metrics  metrics.Recorder
}

// NewClient creates a relay client for the given endpoint.
func NewClient(endpoint string, opts *ClientOptions) (*Client, error) {
	if endpoint == "" {
		return nil, payerr.WithSuggestion(
			payerr.ErrConfigInvalid,
			"relay endpoint is not configured; set relay.endpoint in ~/.payflow/config.yaml",
		)
	}

	u, err := url.Parse(endpoint)
	if err != nil || u.Host == "" {
		return nil, payerr.WithDetails(payerr.ErrConfigInvalid, map[string]string{
			"endpoint": endpoint,
			"reason":   "not a valid URL",
		})
	}

	c := &Client{
		endpoint: endpoint,
		host:     u.Host,
		http:     &http.Client{Timeout: defaultTimeout},
		limiter:  chain.DefaultRateLimiter(),
		metrics:  metrics.NoopRecorder{},
	}

	if opts != nil {
		if opts.Timeout > 0 {
			c.http.Timeout = opts.Timeout
		}
		if opts.HTTPClient != nil {
			c.http = opts.HTTPClient
		}
		if opts.RateLimiter != nil {
			c.limiter = opts.RateLimiter
		}
		if opts.Metrics != nil {
			c.metrics = opts.Metrics
		}
	}

	return c, nil
}

type quoteRequest struct {
	Address  string        `json:"address"`
	Network  chain.Network `json:"network"`
	Version  string        `json:"version"`
	Deployed bool          `json:"deployed"`
}

type quoteResponse struct {
	Fee string `json:"fee"` // wei, decimal string
}

// QuoteFee returns the relay's per-transaction base cost in wei for
// executing a transfer from the given wallet on the given network.
func (c *Client) QuoteFee(ctx context.Context, w wallet.Wallet, network chain.Network) (*big.Int, error) {
	start := time.Now()
	defer func() {
		c.metrics.ObserveLatency(metrics.OpQuoteFee, time.Since(start), map[string]string{
			"network": network.Name(),
		})
	}()

	var resp quoteResponse
	err := c.post(ctx, "/v1/quote", quoteRequest{
		Address:  w.Address,
		Network:  network,
		Version:  w.Version,
		Deployed: w.Deployed,
	}, &resp)
	if err != nil {
		c.metrics.IncCounter(metrics.CounterQuoteFailed, map[string]string{"network": network.Name()})
		return nil, payerr.WithCause(payerr.ErrQuoteUnavailable, err)
	}

	fee, ok := new(big.Int).SetString(resp.Fee, 10)
	if !ok || fee.Sign() < 0 {
		c.metrics.IncCounter(metrics.CounterQuoteFailed, map[string]string{"network": network.Name()})
		return nil, payerr.WithDetails(payerr.ErrQuoteUnavailable, map[string]string{
			"fee":    resp.Fee,
			"reason": "malformed fee in relay response",
		})
	}

	return fee, nil
}

type submitRequest struct {
	Deploy bool     `json:"deploy"`
	Tx     TxIntent `json:"tx"`
}

type submitResponse struct {
	Hash  string `json:"hash"`
	Error string `json:"error,omitempty"`
}

// Submit asks the relay to execute the transfer, bundling the
// smart-account deployment atomically when deploy is true. Returns the
// transaction hash once the relay has accepted and broadcast it.
func (c *Client) Submit(ctx context.Context, deploy bool, tx TxIntent) (common.Hash, error) {
	start := time.Now()
	defer func() {
		c.metrics.ObserveLatency(metrics.OpRelaySubmit, time.Since(start), map[string]string{
			"network": tx.Network.Name(),
		})
	}()

	var resp submitResponse
	if err := c.post(ctx, "/v1/transactions", submitRequest{Deploy: deploy, Tx: tx}, &resp); err != nil {
		return common.Hash{}, payerr.WithCause(payerr.ErrRelayRejected, err)
	}

	if resp.Error != "" {
		return common.Hash{}, payerr.WithDetails(payerr.ErrRelayRejected, map[string]string{
			"reason": resp.Error,
		})
	}

	if len(resp.Hash) != 66 || resp.Hash[:2] != "0x" {
		return common.Hash{}, payerr.WithDetails(payerr.ErrRelayRejected, map[string]string{
			"hash":   resp.Hash,
			"reason": "malformed transaction hash in relay response",
		})
	}

	return common.HexToHash(resp.Hash), nil
}

// post sends a JSON request and decodes the JSON response, retrying
// transient HTTP failures.
func (c *Client) post(ctx context.Context, path string, body, out any) error {
	if err := c.limiter.Wait(ctx, c.host); err != nil {
		return err
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encoding request: %w", err)
	}

	data, err := chain.Retry(ctx, func() ([]byte, error) {
		req, reqErr := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+path, bytes.NewReader(payload))
		if reqErr != nil {
			return nil, reqErr
		}
		req.Header.Set("Content-Type", "application/json")

		resp, doErr := c.http.Do(req)
		if doErr != nil {
			return nil, chain.ErrRetryable
		}
		defer func() { _ = resp.Body.Close() }()

		raw, readErr := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		if readErr != nil {
			return nil, readErr
		}

		if resp.StatusCode != http.StatusOK {
			if chain.RetryableStatus(resp.StatusCode) {
				return nil, chain.ErrRateLimited
			}
			return nil, fmt.Errorf("relay returned status %d: %s", resp.StatusCode, string(raw))
		}

		return raw, nil
	})
	if err != nil {
		return err
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}
