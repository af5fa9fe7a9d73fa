// internal/blockchain/solbc/holders.go
package solbc

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/memescope/internal/blockchain"
	"github.com/rovshanmuradov/memescope/internal/risk"
)

var (
	ErrMissingMint = errors.New("snapshot has no mint address")
	ErrZeroSupply  = errors.New("token supply is zero")
)

// HolderStats fills whale and developer holdings of a snapshot from chain data.
type HolderStats struct {
	client  blockchain.TokenClient
	exclude map[solana.PublicKey]struct{}
	logger  *zap.Logger
}

// NewHolderStats creates an enricher. exclude lists token accounts owned by
// programs (pools, bonding curves) that must not count as holders.
func NewHolderStats(client blockchain.TokenClient, exclude []solana.PublicKey, logger *zap.Logger) *HolderStats {
	set := make(map[solana.PublicKey]struct{}, len(exclude))
	for _, pk := range exclude {
		set[pk] = struct{}{}
	}
	return &HolderStats{
		client:  client,
		exclude: set,
		logger:  logger.Named("holders"),
	}
}

// ParseAccounts converts base58 addresses, failing on the first bad one.
func ParseAccounts(addrs []string) ([]solana.PublicKey, error) {
	out := make([]solana.PublicKey, 0, len(addrs))
	for _, a := range addrs {
		pk, err := solana.PublicKeyFromBase58(a)
		if err != nil {
			return nil, fmt.Errorf("invalid account %q: %w", a, err)
		}
		out = append(out, pk)
	}
	return out, nil
}

// Enrich returns a copy of s with whaleStats set from chain data. The
// developer share is only set when the snapshot names a creator wallet.
func (h *HolderStats) Enrich(ctx context.Context, s risk.Snapshot) (risk.Snapshot, error) {
	if s.Address == "" {
		return s, ErrMissingMint
	}
	mint, err := solana.PublicKeyFromBase58(s.Address)
	if err != nil {
		return s, fmt.Errorf("invalid mint %q: %w", s.Address, err)
	}

	supply, err := h.client.GetTokenSupply(ctx, mint)
	if err != nil {
		return s, fmt.Errorf("get supply of %s: %w", s.Address, err)
	}
	if supply == 0 {
		return s, fmt.Errorf("%s: %w", s.Address, ErrZeroSupply)
	}

	accounts, err := h.client.GetTokenLargestAccounts(ctx, mint)
	if err != nil {
		return s, fmt.Errorf("get largest accounts of %s: %w", s.Address, err)
	}
	maxHolder := percentOf(h.largestHolder(accounts), supply)

	var developer *float64
	if s.Creator != "" {
		pct, err := h.developerShare(ctx, s.Creator, mint, supply)
		if err != nil {
			return s, err
		}
		developer = &pct
	}

	h.logger.Debug("Holder stats fetched",
		zap.String("mint", s.Address),
		zap.String("symbol", s.Symbol),
		zap.Float64("max_holder_pct", maxHolder),
		zap.Int("accounts", len(accounts)))

	return s.WithWhaleStats(&maxHolder, developer), nil
}

func (h *HolderStats) largestHolder(accounts []blockchain.TokenAccount) uint64 {
	sorted := make([]blockchain.TokenAccount, len(accounts))
	copy(sorted, accounts)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Amount > sorted[j].Amount })

	for _, acc := range sorted {
		if _, skip := h.exclude[acc.Address]; skip {
			continue
		}
		return acc.Amount
	}
	return 0
}

func (h *HolderStats) developerShare(ctx context.Context, creator string, mint solana.PublicKey, supply uint64) (float64, error) {
	owner, err := solana.PublicKeyFromBase58(creator)
	if err != nil {
		return 0, fmt.Errorf("invalid creator %q: %w", creator, err)
	}
	ata, _, err := solana.FindAssociatedTokenAddress(owner, mint)
	if err != nil {
		return 0, fmt.Errorf("derive creator token account: %w", err)
	}

	balance, err := h.client.GetTokenAccountBalance(ctx, ata)
	if IsAccountNotFoundError(err) {
		// creator never held or closed the account
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("get creator balance: %w", err)
	}
	return percentOf(balance, supply), nil
}

func percentOf(amount, supply uint64) float64 {
	if supply == 0 {
		return 0
	}
	return float64(amount) / float64(supply) * 100
}
