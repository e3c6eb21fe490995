package chain

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/ethclient"
	gethrpc "github.com/ethereum/go-ethereum/rpc"
)

// ErrReverted is returned by WaitForReceipt when the transaction was mined
// with status 0.
var ErrReverted = errors.New("transaction reverted")

// EVMClient is a JSON-RPC client for EVM chains. The embedded ethclient
// covers the standard eth_* surface; receipts are fetched raw so that
// pending transactions show up as a nil receipt instead of an error.
type EVMClient struct {
	*ethclient.Client
	url string
	rpc *gethrpc.Client
}

// TxReceipt holds the on-chain receipt of a mined transaction.
type TxReceipt struct {
	Hash            common.Hash
	Status          uint64 // 1 = success, 0 = reverted
	BlockNumber     uint64
	GasUsed         uint64
	ContractAddress string // non-empty when a contract was deployed
}

// Succeeded reports whether the transaction executed without reverting.
func (r *TxReceipt) Succeeded() bool { return r.Status == 1 }

// Dial connects to an HTTP(S) or WebSocket endpoint. HTTP connections are
// lazy, so Dial only fails on a malformed URL.
func Dial(ctx context.Context, url string) (*EVMClient, error) {
	rc, err := gethrpc.DialOptions(ctx, url, gethrpc.WithHTTPClient(&http.Client{
		Timeout: 15 * time.Second,
	}))
	if err != nil {
		return nil, fmt.Errorf("dialing %s: %w", url, err)
	}
	return &EVMClient{Client: ethclient.NewClient(rc), url: url, rpc: rc}, nil
}

// URL returns the endpoint the client was dialled with.
func (c *EVMClient) URL() string { return c.url }

type rawReceipt struct {
	Status          hexutil.Uint64  `json:"status"`
	BlockNumber     hexutil.Uint64  `json:"blockNumber"`
	GasUsed         hexutil.Uint64  `json:"gasUsed"`
	ContractAddress *common.Address `json:"contractAddress"`
}

// GetTransactionReceipt fetches the receipt for hash.
// Returns nil, nil if the transaction is still pending.
func (c *EVMClient) GetTransactionReceipt(ctx context.Context, hash common.Hash) (*TxReceipt, error) {
	var r *rawReceipt
	if err := c.rpc.CallContext(ctx, &r, "eth_getTransactionReceipt", hash); err != nil {
		return nil, err
	}
	if r == nil {
		return nil, nil // still pending
	}
	receipt := &TxReceipt{
		Hash:        hash,
		Status:      uint64(r.Status),
		BlockNumber: uint64(r.BlockNumber),
		GasUsed:     uint64(r.GasUsed),
	}
	if r.ContractAddress != nil {
		receipt.ContractAddress = r.ContractAddress.Hex()
	}
	return receipt, nil
}

// WaitForReceipt polls every interval until the transaction is mined or ctx
// is done. A reverted transaction returns its receipt along with ErrReverted.
func (c *EVMClient) WaitForReceipt(ctx context.Context, hash common.Hash, interval time.Duration) (*TxReceipt, error) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		receipt, err := c.GetTransactionReceipt(ctx, hash)
		if err != nil {
			return nil, err
		}
		if receipt != nil {
			if !receipt.Succeeded() {
				return receipt, fmt.Errorf("%w (hash: %s)", ErrReverted, hash.Hex())
			}
			return receipt, nil
		}
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("transaction %s not mined: %w", hash.Hex(), ctx.Err())
		case <-ticker.C:
		}
	}
}

// Ping tests the RPC endpoint and returns latency + block number.
func (c *EVMClient) Ping(ctx context.Context) (latency time.Duration, blockNum uint64, err error) {
	start := time.Now()
	blockNum, err = c.BlockNumber(ctx)
	latency = time.Since(start)
	return latency, blockNum, err
}

// ChainID64 returns the chain ID as an int64, matching the registry.
func (c *EVMClient) ChainID64(ctx context.Context) (int64, error) {
	id, err := c.ChainID(ctx)
	if err != nil {
		return 0, err
	}
	return id.Int64(), nil
}
