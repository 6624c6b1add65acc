package signer

import (
	"context"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/sidrisov/payflow-sub001/internal/chain"
	"github.com/sidrisov/payflow-sub001/internal/chain/eth"
	payerr "github.com/sidrisov/payflow-sub001/pkg/errors"
)

// LocalSigner signs transactions with an in-process private key and
// broadcasts them through per-network RPC clients. It stands in for a
// browser or hardware signer in the CLI and in tests.
type LocalSigner struct {
	mu      sync.Mutex
	key     []byte
	address string
	clients map[chain.Network]*eth.Client
	active  chain.Network
}

// NewLocalSigner creates a signer from a raw secp256k1 private key and a
// set of per-network clients. The initial active network is the first
// valid one among the provided clients' networks, unless set later via
// RequestNetworkSwitch.
func NewLocalSigner(privateKey []byte, clients map[chain.Network]*eth.Client, active chain.Network) (*LocalSigner, error) {
	key, err := crypto.ToECDSA(privateKey)
	if err != nil {
		return nil, fmt.Errorf("parsing private key: %w", err)
	}

	address := crypto.PubkeyToAddress(key.PublicKey).Hex()

	if _, ok := clients[active]; !ok {
		return nil, payerr.WithDetails(payerr.ErrUnsupportedNetwork, map[string]string{
			"network": active.Name(),
			"reason":  "no RPC client configured",
		})
	}

	s := &LocalSigner{
		key:     make([]byte, len(privateKey)),
		address: address,
		clients: clients,
		active:  active,
	}
	copy(s.key, privateKey)
	return s, nil
}

// Address returns the signer's account address.
func (s *LocalSigner) Address() string {
	return s.address
}

// ActiveNetwork returns the network the signer is currently on.
func (s *LocalSigner) ActiveNetwork(_ context.Context) (chain.Network, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active, nil
}

// RequestNetworkSwitch moves the signer to the given network.
func (s *LocalSigner) RequestNetworkSwitch(_ context.Context, network chain.Network) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.clients[network]; !ok {
		return payerr.WithDetails(payerr.ErrUnsupportedNetwork, map[string]string{
			"network": network.Name(),
			"reason":  "no RPC client configured",
		})
	}
	s.active = network
	return nil
}

// SignAndSendTransaction builds, signs (EIP-155), and broadcasts the
// transfer on the transaction's network.
func (s *LocalSigner) SignAndSendTransaction(ctx context.Context, tx Tx) (common.Hash, error) {
	s.mu.Lock()
	client, ok := s.clients[tx.Network]
	s.mu.Unlock()
	if !ok {
		return common.Hash{}, payerr.WithDetails(payerr.ErrUnsupportedNetwork, map[string]string{
			"network": tx.Network.Name(),
		})
	}

	if !eth.IsValidAddress(tx.To) {
		return common.Hash{}, payerr.WithDetails(payerr.ErrInvalidAddress, map[string]string{
			"field":   "to",
			"address": tx.To,
		})
	}
	if tx.Value == nil || tx.Value.Sign() <= 0 {
		return common.Hash{}, payerr.ErrInvalidAmount
	}

	nonce, err := client.PendingNonceAt(ctx, s.address)
	if err != nil {
		return common.Hash{}, fmt.Errorf("getting nonce: %w", err)
	}

	gasPrice, err := client.SuggestGasPrice(ctx)
	if err != nil {
		return common.Hash{}, fmt.Errorf("getting gas price: %w", err)
	}

	gasLimit := tx.GasLimit
	if gasLimit == 0 {
		gasLimit = eth.GasLimitTransfer
	}

	toAddr := common.HexToAddress(tx.To)
	unsigned := types.NewTx(&types.LegacyTx{
		Nonce:    nonce,
		To:       &toAddr,
		Value:    tx.Value,
		Gas:      gasLimit,
		GasPrice: gasPrice,
	})

	signed, err := s.sign(unsigned, new(big.Int).SetUint64(tx.Network.ChainID()))
	if err != nil {
		return common.Hash{}, err
	}

	if err := client.SendTransaction(ctx, signed); err != nil {
		return common.Hash{}, err
	}

	return signed.Hash(), nil
}

// Close zeroes the private key material.
func (s *LocalSigner) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.key {
		s.key[i] = 0
	}
}

func (s *LocalSigner) sign(tx *types.Transaction, chainID *big.Int) (*types.Transaction, error) {
	s.mu.Lock()
	keyBytes := make([]byte, len(s.key))
	copy(keyBytes, s.key)
	s.mu.Unlock()

	defer zeroBytes(keyBytes)

	key, err := crypto.ToECDSA(keyBytes)
	if err != nil {
		return nil, fmt.Errorf("parsing private key: %w", err)
	}

	signed, err := types.SignTx(tx, types.NewEIP155Signer(chainID), key)
	if err != nil {
		return nil, fmt.Errorf("signing transaction: %w", err)
	}
	return signed, nil
}

func zeroBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

// Compile-time interface check
var _ Provider = (*LocalSigner)(nil)
