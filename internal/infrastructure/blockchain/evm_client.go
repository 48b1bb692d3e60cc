package blockchain

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
)

var (
	dialEVMClient    = ethclient.Dial
	getClientChainID = func(client *ethclient.Client, ctx context.Context) (*big.Int, error) {
		return client.ChainID(ctx)
	}
)

// EVMClient provides the few EVM reads the scheduler needs: contract code
// probes for registration and the network gas price for the keeper.
type EVMClient struct {
	client  *ethclient.Client
	chainID *big.Int
	rpcURL  string
	// test hooks allow deterministic unit tests without network sockets.
	testCodeAt   func(ctx context.Context, address common.Address) ([]byte, error)
	testGasPrice func(ctx context.Context) (*big.Int, error)
}

// NewEVMClient creates a new EVM client
func NewEVMClient(rpcURL string) (*EVMClient, error) {
	client, err := dialEVMClient(rpcURL)
	if err != nil {
		return nil, err
	}

	chainID, err := getClientChainID(client, context.Background())
	if err != nil {
		return nil, err
	}

	return &EVMClient{
		client:  client,
		chainID: chainID,
		rpcURL:  rpcURL,
	}, nil
}

// NewEVMClientWithHooks creates an EVM client backed by injected functions.
// This is intended for unit tests where RPC sockets are unavailable.
func NewEVMClientWithHooks(
	chainID *big.Int,
	codeAt func(ctx context.Context, address common.Address) ([]byte, error),
	gasPrice func(ctx context.Context) (*big.Int, error),
) *EVMClient {
	if chainID == nil {
		chainID = big.NewInt(1)
	}
	return &EVMClient{
		chainID:      chainID,
		testCodeAt:   codeAt,
		testGasPrice: gasPrice,
	}
}

// ChainID returns the chain ID
func (c *EVMClient) ChainID() *big.Int {
	return c.chainID
}

// CodeAt returns the deployed bytecode at address on the latest block
func (c *EVMClient) CodeAt(ctx context.Context, address common.Address) ([]byte, error) {
	if c.testCodeAt != nil {
		return c.testCodeAt(ctx, address)
	}
	return c.client.CodeAt(ctx, address, nil)
}

// IsContract reports whether address carries deployed code.
func (c *EVMClient) IsContract(ctx context.Context, address common.Address) (bool, error) {
	if address == (common.Address{}) {
		return false, nil
	}
	code, err := c.CodeAt(ctx, address)
	if err != nil {
		return false, err
	}
	return len(code) > 0, nil
}

// SuggestGasPrice returns the node's current gas price suggestion in wei
func (c *EVMClient) SuggestGasPrice(ctx context.Context) (*big.Int, error) {
	if c.testGasPrice != nil {
		return c.testGasPrice(ctx)
	}
	return c.client.SuggestGasPrice(ctx)
}

// GetBlockNumber gets the latest block number
func (c *EVMClient) GetBlockNumber(ctx context.Context) (uint64, error) {
	return c.client.BlockNumber(ctx)
}

// Close closes the client connection
func (c *EVMClient) Close() {
	if c.client != nil {
		c.client.Close()
	}
}
