// Package eth provides the EVM RPC client used for balance reads,
// receipt observation, and direct transaction broadcast.
package eth

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"net/url"
	"regexp"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/sidrisov/payflow-sub001/internal/chain"
	"github.com/sidrisov/payflow-sub001/internal/metrics"
	payerr "github.com/sidrisov/payflow-sub001/pkg/errors"
)

// GasLimitTransfer is the gas limit for a simple native transfer.
const GasLimitTransfer uint64 = 21000

var (
	// ErrRPCURLRequired indicates the RPC URL was not provided.
	ErrRPCURLRequired = &payerr.PayflowError{
		Code:     "ETH_RPC_URL_REQUIRED",
		Message:  "RPC URL is required",
		ExitCode: payerr.ExitInput,
	}

	// addressRegex validates EVM addresses.
	addressRegex = regexp.MustCompile("^0x[0-9a-fA-F]{40}$")
)

// ClientOptions contains optional configuration for the client.
type ClientOptions struct {
	// Network pins the expected network; when set, the chain ID reported
	// by the endpoint is verified against it on connect.
	Network chain.Network
	// RateLimiter overrides the default per-host limiter.
	RateLimiter *chain.RateLimiter
	// Metrics records RPC latency; defaults to a noop recorder.
	Metrics metrics.Recorder
}

// Client provides EVM blockchain operations over a single RPC endpoint.
type Client struct {
	rpcURL  string
	host    string
	network chain.Network
	limiter *chain.RateLimiter
	metrics metrics.Recorder

	mu        sync.Mutex
	ethClient *ethclient.Client
	chainID   *big.Int
	initErr   error
}

// NewClient creates a new EVM client. The connection is established
// lazily on first use so construction never touches the network.
func NewClient(rpcURL string, opts *ClientOptions) (*Client, error) {
	if rpcURL == "" {
		return nil, ErrRPCURLRequired
	}

	c := &Client{
		rpcURL:  rpcURL,
		limiter: chain.DefaultRateLimiter(),
		metrics: metrics.NoopRecorder{},
	}

	if u, err := url.Parse(rpcURL); err == nil {
		c.host = u.Host
	}
	if c.host == "" {
		c.host = rpcURL
	}

	if opts != nil {
		c.network = opts.Network
		if opts.RateLimiter != nil {
			c.limiter = opts.RateLimiter
		}
		if opts.Metrics != nil {
			c.metrics = opts.Metrics
		}
	}

	return c, nil
}

// Network returns the network this client is pinned to, or 0 when the
// network is derived from the endpoint.
func (c *Client) Network() chain.Network {
	return c.network
}

// ValidateAddress checks if an address is a well-formed EVM address.
func (c *Client) ValidateAddress(address string) error {
	if address == "" || !addressRegex.MatchString(address) {
		return payerr.WithDetails(payerr.ErrInvalidAddress, map[string]string{
			"address": address,
		})
	}
	return nil
}

// IsValidAddress reports whether the address is a well-formed EVM address.
func IsValidAddress(address string) bool {
	return addressRegex.MatchString(address)
}

// GetBalance retrieves the native balance for an address in wei.
func (c *Client) GetBalance(ctx context.Context, address string) (*big.Int, error) {
	if err := c.ValidateAddress(address); err != nil {
		return nil, err
	}
	if err := c.connect(ctx); err != nil {
		return nil, err
	}

	start := time.Now()
	balance, err := c.ethClient.BalanceAt(ctx, common.HexToAddress(address), nil)
	c.observe(start)
	if err != nil {
		return nil, payerr.WithCause(payerr.ErrRPCUnavailable, err)
	}

	return balance, nil
}

// TransactionReceipt returns the receipt for a transaction hash.
// Returns (nil, nil) while the transaction is still pending.
func (c *Client) TransactionReceipt(ctx context.Context, hash common.Hash) (*types.Receipt, error) {
	if err := c.connect(ctx); err != nil {
		return nil, err
	}

	start := time.Now()
	receipt, err := c.ethClient.TransactionReceipt(ctx, hash)
	c.observe(start)
	if err != nil {
		if errors.Is(err, ethereum.NotFound) {
			return nil, nil
		}
		return nil, payerr.WithCause(payerr.ErrRPCUnavailable, err)
	}

	return receipt, nil
}

// SuggestGasPrice returns the current suggested gas price in wei.
func (c *Client) SuggestGasPrice(ctx context.Context) (*big.Int, error) {
	if err := c.connect(ctx); err != nil {
		return nil, err
	}

	start := time.Now()
	price, err := c.ethClient.SuggestGasPrice(ctx)
	c.observe(start)
	if err != nil {
		return nil, payerr.WithCause(payerr.ErrRPCUnavailable, err)
	}

	return price, nil
}

// PendingNonceAt returns the next nonce for the account including
// pending transactions.
func (c *Client) PendingNonceAt(ctx context.Context, address string) (uint64, error) {
	if err := c.ValidateAddress(address); err != nil {
		return 0, err
	}
	if err := c.connect(ctx); err != nil {
		return 0, err
	}

	start := time.Now()
	nonce, err := c.ethClient.PendingNonceAt(ctx, common.HexToAddress(address))
	c.observe(start)
	if err != nil {
		return 0, payerr.WithCause(payerr.ErrRPCUnavailable, err)
	}

	return nonce, nil
}

// SendTransaction broadcasts a signed transaction.
func (c *Client) SendTransaction(ctx context.Context, tx *types.Transaction) error {
	if err := c.connect(ctx); err != nil {
		return err
	}

	start := time.Now()
	err := c.ethClient.SendTransaction(ctx, tx)
	c.observe(start)
	if err != nil {
		return payerr.WithCause(payerr.ErrRPCUnavailable, err)
	}

	return nil
}

// ChainID returns the chain ID reported by the endpoint.
func (c *Client) ChainID(ctx context.Context) (*big.Int, error) {
	if err := c.connect(ctx); err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	return new(big.Int).Set(c.chainID), nil
}

// Close closes the underlying connection.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.ethClient != nil {
		c.ethClient.Close()
		c.ethClient = nil
	}
}

// connect establishes the RPC connection if not already connected.
// Thread-safe and allows retries after transient failures.
func (c *Client) connect(ctx context.Context) error {
	if err := c.limiter.Wait(ctx, c.host); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.ethClient != nil && c.initErr == nil {
		return nil
	}

	client, err := ethclient.DialContext(ctx, c.rpcURL)
	if err != nil {
		c.initErr = payerr.WithCause(payerr.ErrRPCUnavailable, err)
		return c.initErr
	}

	chainID, err := client.ChainID(ctx)
	if err != nil {
		client.Close()
		c.initErr = payerr.WithCause(payerr.ErrRPCUnavailable, fmt.Errorf("getting chain ID: %w", err))
		return c.initErr
	}

	if c.network != 0 && chainID.Uint64() != c.network.ChainID() {
		client.Close()
		c.initErr = payerr.WithDetails(payerr.ErrNetworkMismatch, map[string]string{
			"expected": c.network.Name(),
			"reported": chainID.String(),
		})
		return c.initErr
	}

	c.ethClient = client
	c.chainID = chainID
	c.initErr = nil
	return nil
}

func (c *Client) observe(start time.Time) {
	c.metrics.ObserveLatency(metrics.OpRPCCall, time.Since(start), map[string]string{
		"network": c.network.Name(),
	})
}
