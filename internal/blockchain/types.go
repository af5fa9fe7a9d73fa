// internal/blockchain/types.go
package blockchain

import (
	"context"

	"github.com/gagliardetto/solana-go"
)

// TokenAccount is a token account and its raw (base units) balance.
type TokenAccount struct {
	Address solana.PublicKey
	Amount  uint64
}

// TokenClient определяет методы чтения SPL-токенов, нужные для оценки держателей.
type TokenClient interface {
	// Общее предложение токена в базовых единицах.
	GetTokenSupply(ctx context.Context, mint solana.PublicKey) (uint64, error)
	// Крупнейшие токен-аккаунты (до 20, по убыванию баланса).
	GetTokenLargestAccounts(ctx context.Context, mint solana.PublicKey) ([]TokenAccount, error)
	// Баланс токен-аккаунта в базовых единицах.
	GetTokenAccountBalance(ctx context.Context, account solana.PublicKey) (uint64, error)
}
