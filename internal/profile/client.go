// Package profile provides the client for the backend profile service:
// identity resolution, flow lookup, and the deployment ledger.
package profile

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sidrisov/payflow-sub001/internal/chain"
	"github.com/sidrisov/payflow-sub001/internal/chain/eth"
	"github.com/sidrisov/payflow-sub001/internal/wallet"
	payerr "github.com/sidrisov/payflow-sub001/pkg/errors"
)

const defaultTimeout = 15 * time.Second

// ClientOptions contains optional configuration for the profile client.
type ClientOptions struct {
	Timeout     time.Duration
	HTTPClient  *http.Client
	RateLimiter *chain.RateLimiter
}

// Client talks to the backend profile service over HTTP JSON.
type Client struct {
	endpoint string
	host     string
	http     *http.Client
	limiter  *chain.RateLimiter
}

// NewClient creates a profile client for the given endpoint.
func NewClient(endpoint string, opts *ClientOptions) (*Client, error) {
	if endpoint == "" {
		return nil, payerr.WithSuggestion(
			payerr.ErrConfigInvalid,
			"profile endpoint is not configured; set profile.endpoint in ~/.payflow/config.yaml",
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
	}

	return c, nil
}

// ResolveIdentity resolves a recipient handle into an identity. A handle
// that parses as an address becomes a bare-address identity locally; any
// other handle is looked up as a username on the backend.
func (c *Client) ResolveIdentity(ctx context.Context, handle string) (wallet.Identity, error) {
	handle = strings.TrimSpace(handle)
	if handle == "" {
		return wallet.Identity{}, payerr.ErrRecipientUnresolved
	}

	if strings.HasPrefix(handle, "0x") {
		if !eth.IsValidAddress(handle) {
			return wallet.Identity{}, payerr.WithDetails(payerr.ErrInvalidAddress, map[string]string{
				"address": handle,
			})
		}
		return wallet.AddressIdentity(handle), nil
	}

	var p wallet.Profile
	err := c.get(ctx, "/api/profiles/"+url.PathEscape(strings.TrimPrefix(handle, "@")), &p)
	if err != nil {
		if payerr.Code(err) == payerr.ErrProfileNotFound.Code {
			return wallet.Identity{}, payerr.WithDetails(payerr.ErrProfileNotFound, map[string]string{
				"handle": handle,
			})
		}
		return wallet.Identity{}, err
	}

	if p.Flow != nil {
		if err := p.Flow.Validate(); err != nil {
			return wallet.Identity{}, payerr.Wrap(err, "profile %q has an invalid flow", handle)
		}
	}

	return wallet.ProfileIdentity(&p), nil
}

// GetFlow fetches a wallet flow by its UUID.
func (c *Client) GetFlow(ctx context.Context, flowID string) (*wallet.Flow, error) {
	if flowID == "" {
		return nil, payerr.ErrFlowNotFound
	}

	var f wallet.Flow
	if err := c.get(ctx, "/api/flows/"+url.PathEscape(flowID), &f); err != nil {
		if payerr.Code(err) == payerr.ErrProfileNotFound.Code {
			return nil, payerr.WithDetails(payerr.ErrFlowNotFound, map[string]string{
				"flow": flowID,
			})
		}
		return nil, err
	}

	if err := f.Validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

type deployedRequest struct {
	Address string        `json:"address"`
	Network chain.Network `json:"network"`
}

// MarkDeployed records on the backend that the flow's wallet on the
// given network is now deployed on-chain. The backend treats the write
// as idempotent.
func (c *Client) MarkDeployed(ctx context.Context, flowID, address string, network chain.Network) error {
	if flowID == "" {
		return payerr.ErrFlowNotFound
	}

	body, err := json.Marshal(deployedRequest{Address: address, Network: network})
	if err != nil {
		return fmt.Errorf("encoding request: %w", err)
	}

	path := fmt.Sprintf("/api/flows/%s/wallets/deployed", url.PathEscape(flowID))
	if _, err := chain.Retry(ctx, func() ([]byte, error) {
		return c.do(ctx, http.MethodPost, path, body)
	}); err != nil {
		return payerr.WithCause(payerr.ErrPersistence, err)
	}
	return nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	data, err := chain.Retry(ctx, func() ([]byte, error) {
		return c.do(ctx, http.MethodGet, path, nil)
	})
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, body []byte) ([]byte, error) {
	if err := c.limiter.Wait(ctx, c.host); err != nil {
		return nil, err
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint+path, reader)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, chain.ErrRetryable
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, err
	}

	switch {
	case resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusNoContent:
		return raw, nil
	case resp.StatusCode == http.StatusNotFound:
		return nil, payerr.ErrProfileNotFound
	case chain.RetryableStatus(resp.StatusCode):
		return nil, chain.ErrRateLimited
	default:
		return nil, fmt.Errorf("profile service returned status %d: %s", resp.StatusCode, string(raw))
	}
}
