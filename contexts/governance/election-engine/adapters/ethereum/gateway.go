package ethereum

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"strings"
	"time"

	gethereum "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/shopspring/decimal"
)

// electionABI is the capability surface of the Election contract the engine
// depends on. The contract's internals stay opaque.
const electionABI = `[
  {"type":"function","name":"registerVoter","stateMutability":"nonpayable","inputs":[{"name":"voter","type":"address"}],"outputs":[]},
  {"type":"function","name":"registerCandidate","stateMutability":"payable","inputs":[{"name":"pledgedEther","type":"uint256"}],"outputs":[]},
  {"type":"function","name":"castVote","stateMutability":"nonpayable","inputs":[{"name":"candidate","type":"address"}],"outputs":[]},
  {"type":"function","name":"transferRemainingEtherToAdmin","stateMutability":"nonpayable","inputs":[{"name":"admin","type":"address"}],"outputs":[]}
]`

const receiptPollInterval = 500 * time.Millisecond

// Gateway talks to the Election contract on a development chain whose
// accounts are node-managed and unlocked, so transactions are submitted as
// eth_sendTransaction from the acting user's own address. Every method is
// synchronous: it returns only once the transaction is mined, and a revert
// surfaces as an error with no assumed partial effect.
type Gateway struct {
	rpc      *rpc.Client
	client   *ethclient.Client
	contract common.Address
	abi      abi.ABI
	logger   *slog.Logger
}

func New(rpcURL string, contractAddress string, logger *slog.Logger) (*Gateway, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if !common.IsHexAddress(contractAddress) {
		return nil, fmt.Errorf("invalid election contract address %q", contractAddress)
	}
	rpcClient, err := rpc.Dial(rpcURL)
	if err != nil {
		return nil, fmt.Errorf("dial external ledger rpc: %w", err)
	}
	parsed, err := abi.JSON(strings.NewReader(electionABI))
	if err != nil {
		return nil, fmt.Errorf("parse election abi: %w", err)
	}
	return &Gateway{
		rpc:      rpcClient,
		client:   ethclient.NewClient(rpcClient),
		contract: common.HexToAddress(contractAddress),
		abi:      parsed,
		logger:   logger,
	}, nil
}

func (g *Gateway) Close() {
	g.rpc.Close()
}

func (g *Gateway) IsValidAddress(address string) bool {
	return common.IsHexAddress(address)
}

// IsKnownAccount checks membership in the node's preconfigured account set.
func (g *Gateway) IsKnownAccount(ctx context.Context, address string) (bool, error) {
	var accounts []common.Address
	if err := g.rpc.CallContext(ctx, &accounts, "eth_accounts"); err != nil {
		return false, fmt.Errorf("list ledger accounts: %w", err)
	}
	target := common.HexToAddress(address)
	for _, account := range accounts {
		if account == target {
			return true, nil
		}
	}
	return false, nil
}

func (g *Gateway) GetBalance(ctx context.Context, address string) (decimal.Decimal, error) {
	wei, err := g.client.BalanceAt(ctx, common.HexToAddress(address), nil)
	if err != nil {
		return decimal.Zero, fmt.Errorf("fetch balance: %w", err)
	}
	return weiToEther(wei), nil
}

func (g *Gateway) RegisterVoter(ctx context.Context, address string) error {
	voter := common.HexToAddress(address)
	data, err := g.abi.Pack("registerVoter", voter)
	if err != nil {
		return fmt.Errorf("pack registerVoter: %w", err)
	}
	return g.send(ctx, voter, data, nil)
}

func (g *Gateway) Pledge(ctx context.Context, address string, amount decimal.Decimal) error {
	candidate := common.HexToAddress(address)
	wei := etherToWei(amount)
	data, err := g.abi.Pack("registerCandidate", wei)
	if err != nil {
		return fmt.Errorf("pack registerCandidate: %w", err)
	}
	return g.send(ctx, candidate, data, wei)
}

func (g *Gateway) Vote(ctx context.Context, voterAddress string, candidateAddress string) error {
	data, err := g.abi.Pack("castVote", common.HexToAddress(candidateAddress))
	if err != nil {
		return fmt.Errorf("pack castVote: %w", err)
	}
	return g.send(ctx, common.HexToAddress(voterAddress), data, nil)
}

func (g *Gateway) Transfer(ctx context.Context, adminAddress string, amount decimal.Decimal) error {
	admin := common.HexToAddress(adminAddress)
	data, err := g.abi.Pack("transferRemainingEtherToAdmin", admin)
	if err != nil {
		return fmt.Errorf("pack transferRemainingEtherToAdmin: %w", err)
	}
	return g.send(ctx, admin, data, nil)
}

func (g *Gateway) send(ctx context.Context, from common.Address, data []byte, value *big.Int) error {
	args := map[string]any{
		"from": from,
		"to":   g.contract,
		"data": hexutil.Bytes(data),
	}
	if value != nil {
		args["value"] = (*hexutil.Big)(value)
	}
	var txHash common.Hash
	if err := g.rpc.CallContext(ctx, &txHash, "eth_sendTransaction", args); err != nil {
		return fmt.Errorf("submit transaction: %w", err)
	}
	g.logger.Info("ledger transaction submitted",
		"event", "ledger_tx_submitted",
		"module", "governance/election-engine",
		"layer", "adapters/ethereum",
		"tx", txHash.Hex(),
		"from", from.Hex(),
	)
	return g.waitMined(ctx, txHash)
}

func (g *Gateway) waitMined(ctx context.Context, txHash common.Hash) error {
	ticker := time.NewTicker(receiptPollInterval)
	defer ticker.Stop()
	for {
		receipt, err := g.client.TransactionReceipt(ctx, txHash)
		if err == nil {
			if receipt.Status == 0 {
				return fmt.Errorf("transaction %s reverted", txHash.Hex())
			}
			return nil
		}
		if !errors.Is(err, gethereum.NotFound) {
			return fmt.Errorf("fetch receipt for %s: %w", txHash.Hex(), err)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func etherToWei(amount decimal.Decimal) *big.Int {
	return amount.Shift(18).BigInt()
}

func weiToEther(wei *big.Int) decimal.Decimal {
	return decimal.NewFromBigInt(wei, -18)
}
