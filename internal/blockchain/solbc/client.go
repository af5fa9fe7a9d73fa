// internal/blockchain/solbc/client.go
package solbc

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/memescope/internal/blockchain"
)

const defaultMaxElapsed = 15 * time.Second

var (
	ErrAccountNotFound = errors.New("account not found")
	ErrEmptyResponse   = errors.New("empty RPC response")
)

// IsAccountNotFoundError проверяет, является ли ошибка "not found"
func IsAccountNotFoundError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrAccountNotFound) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "not found") || strings.Contains(msg, "could not find account")
}

// Client – тонкий адаптер над solana-go RPC для чтения данных о токенах.
// Every call is retried with exponential backoff until maxElapsed.
type Client struct {
	rpc        *rpc.Client
	logger     *zap.Logger
	maxElapsed time.Duration
}

var _ blockchain.TokenClient = (*Client)(nil)

// NewClient создаёт новый клиент, принимая RPC URL и логгер через dependency injection.
func NewClient(rpcURL string, logger *zap.Logger) *Client {
	return &Client{
		rpc:        rpc.New(rpcURL),
		logger:     logger.Named("solbc-client"),
		maxElapsed: defaultMaxElapsed,
	}
}

func retry[T any](ctx context.Context, c *Client, method string, op backoff.Operation[T]) (T, error) {
	notify := func(err error, next time.Duration) {
		c.logger.Debug("RPC call failed, retrying",
			zap.String("method", method),
			zap.Duration("backoff", next),
			zap.Error(err))
	}
	return backoff.Retry(ctx, op,
		backoff.WithBackOff(backoff.NewExponentialBackOff()),
		backoff.WithMaxElapsedTime(c.maxElapsed),
		backoff.WithNotify(notify),
	)
}

// GetTokenSupply возвращает общее предложение токена.
func (c *Client) GetTokenSupply(ctx context.Context, mint solana.PublicKey) (uint64, error) {
	return retry(ctx, c, "getTokenSupply", func() (uint64, error) {
		res, err := c.rpc.GetTokenSupply(ctx, mint, rpc.CommitmentConfirmed)
		if err != nil {
			return 0, classify(err)
		}
		if res == nil || res.Value == nil {
			return 0, backoff.Permanent(ErrEmptyResponse)
		}
		return parseAmount(res.Value.Amount)
	})
}

// GetTokenLargestAccounts возвращает крупнейшие токен-аккаунты.
func (c *Client) GetTokenLargestAccounts(ctx context.Context, mint solana.PublicKey) ([]blockchain.TokenAccount, error) {
	return retry(ctx, c, "getTokenLargestAccounts", func() ([]blockchain.TokenAccount, error) {
		res, err := c.rpc.GetTokenLargestAccounts(ctx, mint, rpc.CommitmentConfirmed)
		if err != nil {
			return nil, classify(err)
		}
		if res == nil {
			return nil, backoff.Permanent(ErrEmptyResponse)
		}

		accounts := make([]blockchain.TokenAccount, 0, len(res.Value))
		for _, v := range res.Value {
			if v == nil {
				continue
			}
			amount, err := parseAmount(v.Amount)
			if err != nil {
				return nil, err
			}
			accounts = append(accounts, blockchain.TokenAccount{Address: v.Address, Amount: amount})
		}
		return accounts, nil
	})
}

// GetTokenAccountBalance возвращает баланс токен-аккаунта.
func (c *Client) GetTokenAccountBalance(ctx context.Context, account solana.PublicKey) (uint64, error) {
	return retry(ctx, c, "getTokenAccountBalance", func() (uint64, error) {
		res, err := c.rpc.GetTokenAccountBalance(ctx, account, rpc.CommitmentConfirmed)
		if err != nil {
			return 0, classify(err)
		}
		if res == nil || res.Value == nil {
			return 0, backoff.Permanent(ErrEmptyResponse)
		}
		return parseAmount(res.Value.Amount)
	})
}

// classify marks errors that retrying cannot fix as permanent.
func classify(err error) error {
	if IsAccountNotFoundError(err) {
		return backoff.Permanent(fmt.Errorf("%w: %v", ErrAccountNotFound, err))
	}
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "invalid param") || strings.Contains(msg, "not a token mint") {
		return backoff.Permanent(err)
	}
	return err
}

func parseAmount(raw string) (uint64, error) {
	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, backoff.Permanent(fmt.Errorf("parse token amount %q: %w", raw, err))
	}
	return v, nil
}
