// internal/blockchain/solbc/mint.go
package solbc

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/lp-reader/internal/blockchain"
)

// mintDecimalsOffset is the decimals byte of an SPL (and Token-2022) mint account.
const mintDecimalsOffset = 44

// MintInfo хранит неизменяемые поля SPL mint.
type MintInfo struct {
	Mint     solana.PublicKey
	Decimals uint8
	Symbol   string
}

// MintCache читает decimals из блокчейна один раз на mint.
type MintCache struct {
	reader blockchain.AccountReader
	cache  *cache.Cache
	logger *zap.Logger
}

// NewMintCache creates a cache without expiration: mint decimals never change.
func NewMintCache(reader blockchain.AccountReader, logger *zap.Logger) *MintCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MintCache{
		reader: reader,
		cache:  cache.New(cache.NoExpiration, 0),
		logger: logger.Named("mint-cache"),
	}
}

// Get returns mint info, reading the chain on a miss.
func (c *MintCache) Get(ctx context.Context, mint solana.PublicKey) (*MintInfo, error) {
	if v, ok := c.cache.Get(mint.String()); ok {
		return v.(*MintInfo), nil
	}

	data, err := c.reader.GetAccountData(ctx, mint)
	if err != nil {
		return nil, fmt.Errorf("failed to get mint account %s: %w", mint, err)
	}
	info, err := ParseMint(mint, data)
	if err != nil {
		return nil, err
	}

	c.cache.SetDefault(mint.String(), info)
	c.logger.Debug("mint decimals loaded",
		zap.String("mint", mint.String()),
		zap.Uint8("decimals", info.Decimals),
		zap.String("symbol", info.Symbol))
	return info, nil
}

// ParseMint decodes the decimals of a mint account.
func ParseMint(mint solana.PublicKey, data []byte) (*MintInfo, error) {
	if len(data) <= mintDecimalsOffset {
		return nil, fmt.Errorf("invalid mint account data length: %d", len(data))
	}
	return &MintInfo{
		Mint:     mint,
		Decimals: data[mintDecimalsOffset],
		Symbol:   knownSymbol(mint),
	}, nil
}

func knownSymbol(mint solana.PublicKey) string {
	switch mint.String() {
	case "So11111111111111111111111111111111111111112":
		return "SOL"
	case "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v":
		return "USDC"
	}
	return ""
}
