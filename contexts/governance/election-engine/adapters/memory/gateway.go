package memory

import (
	"context"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
)

// Gateway is an in-process stand-in for the external ledger. Accounts are
// seeded up front, mirroring a development chain's preconfigured account set.
// Fail, when set, makes every effectful call return that error so tests can
// assert the abort-before-mutation contract.
type Gateway struct {
	mu         sync.RWMutex
	balances   map[string]decimal.Decimal
	registered map[string]bool
	fail       error
}

func NewGateway() *Gateway {
	return &Gateway{
		balances:   make(map[string]decimal.Decimal),
		registered: make(map[string]bool),
	}
}

func (g *Gateway) SeedAccount(address string, balance decimal.Decimal) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.balances[address] = balance
}

func (g *Gateway) SetFail(err error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.fail = err
}

func (g *Gateway) IsValidAddress(address string) bool {
	return common.IsHexAddress(address)
}

func (g *Gateway) IsKnownAccount(_ context.Context, address string) (bool, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	_, ok := g.balances[address]
	return ok, nil
}

func (g *Gateway) GetBalance(_ context.Context, address string) (decimal.Decimal, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if err := g.fail; err != nil {
		return decimal.Zero, err
	}
	return g.balances[address], nil
}

func (g *Gateway) RegisterVoter(_ context.Context, address string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.fail != nil {
		return g.fail
	}
	g.registered[address] = true
	return nil
}

func (g *Gateway) Pledge(_ context.Context, _ string, _ decimal.Decimal) error {
	return g.effect()
}

func (g *Gateway) Vote(_ context.Context, _ string, _ string) error {
	return g.effect()
}

func (g *Gateway) Transfer(_ context.Context, _ string, _ decimal.Decimal) error {
	return g.effect()
}

func (g *Gateway) effect() error {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.fail
}
