// internal/dex/dlmm/reader.go
package dlmm

import (
	"context"
	"fmt"
	"math/big"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/rovshanmuradov/lp-reader/internal/blockchain"
	"github.com/rovshanmuradov/lp-reader/internal/blockchain/solbc"
)

// Token is one side of a pool.
type Token struct {
	Mint     solana.PublicKey
	Decimals uint8
}

// Position is the on-chain state of a DLMM position, amounts in raw token units.
type Position struct {
	Address    solana.PublicKey
	LbPair     solana.PublicKey
	Owner      solana.PublicKey
	TokenX     Token
	TokenY     Token
	ActiveID   int32
	LowerBinID int32
	UpperBinID int32

	AmountX *big.Int
	AmountY *big.Int
	FeeX    *big.Int
	FeeY    *big.Int

	ClaimedFeeX uint64
	ClaimedFeeY uint64
}

// InRange reports whether the pool's active bin lies inside the position.
func (p *Position) InRange() bool {
	return p.ActiveID >= p.LowerBinID && p.ActiveID <= p.UpperBinID
}

// Reader reads DLMM positions straight from account data.
type Reader struct {
	accounts blockchain.AccountReader
	mints    *solbc.MintCache
	logger   *zap.Logger
}

// NewReader fails when no account reader is available.
func NewReader(accounts blockchain.AccountReader, logger *zap.Logger) (*Reader, error) {
	if accounts == nil {
		return nil, ErrNoAccountReader
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reader{
		accounts: accounts,
		mints:    solbc.NewMintCache(accounts, logger),
		logger:   logger.Named("dlmm-reader"),
	}, nil
}

// GetPosition loads the pool, the position, both mints and every bin array the position spans.
func (r *Reader) GetPosition(ctx context.Context, lbPair, position solana.PublicKey) (*Position, error) {
	data, err := r.accounts.GetMultipleAccountData(ctx, []solana.PublicKey{lbPair, position})
	if err != nil {
		return nil, fmt.Errorf("failed to load pool and position: %w", err)
	}
	if len(data) != 2 {
		return nil, fmt.Errorf("unexpected account count %d", len(data))
	}
	if data[0] == nil {
		return nil, fmt.Errorf("%w: %s", ErrPoolNotFound, lbPair)
	}
	if data[1] == nil {
		return nil, fmt.Errorf("%w: %s", ErrPositionNotFound, position)
	}

	pair, err := ParseLbPair(data[0])
	if err != nil {
		return nil, err
	}
	pos, err := ParsePositionV2(data[1])
	if err != nil {
		return nil, err
	}
	if !pos.LbPair.Equals(lbPair) {
		return nil, fmt.Errorf("%w: position %s is in %s, not %s", ErrPoolMismatch, position, pos.LbPair, lbPair)
	}

	var (
		mintX, mintY *solbc.MintInfo
		arrays       map[int64]*BinArray
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		mintX, err = r.mints.Get(gctx, pair.TokenXMint)
		return err
	})
	g.Go(func() error {
		var err error
		mintY, err = r.mints.Get(gctx, pair.TokenYMint)
		return err
	})
	g.Go(func() error {
		var err error
		arrays, err = r.loadBinArrays(gctx, lbPair, pos.LowerBinID, pos.UpperBinID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	totals := Aggregate(pos, arrays)
	if totals.BinsMissing > 0 {
		r.logger.Warn("Bin arrays missing for position",
			zap.String("position", position.String()),
			zap.Int("bins_missing", totals.BinsMissing))
		return nil, fmt.Errorf("%w: %d bins with shares unreadable for %s", ErrBinArrayMissing, totals.BinsMissing, position)
	}

	r.logger.Debug("Position aggregated",
		zap.String("position", position.String()),
		zap.Int32("lower_bin", pos.LowerBinID),
		zap.Int32("upper_bin", pos.UpperBinID),
		zap.Int32("active_bin", pair.ActiveID),
		zap.String("amount_x", totals.AmountX.String()),
		zap.String("amount_y", totals.AmountY.String()))

	return &Position{
		Address:     position,
		LbPair:      lbPair,
		Owner:       pos.Owner,
		TokenX:      Token{Mint: pair.TokenXMint, Decimals: mintX.Decimals},
		TokenY:      Token{Mint: pair.TokenYMint, Decimals: mintY.Decimals},
		ActiveID:    pair.ActiveID,
		LowerBinID:  pos.LowerBinID,
		UpperBinID:  pos.UpperBinID,
		AmountX:     totals.AmountX,
		AmountY:     totals.AmountY,
		FeeX:        totals.FeeX,
		FeeY:        totals.FeeY,
		ClaimedFeeX: pos.ClaimedFeeX,
		ClaimedFeeY: pos.ClaimedFeeY,
	}, nil
}

func (r *Reader) loadBinArrays(ctx context.Context, lbPair solana.PublicKey, lower, upper int32) (map[int64]*BinArray, error) {
	indexes := BinArrayIndexes(lower, upper)
	keys := make([]solana.PublicKey, 0, len(indexes))
	for _, idx := range indexes {
		pda, err := DeriveBinArrayPDA(lbPair, idx)
		if err != nil {
			return nil, err
		}
		keys = append(keys, pda)
	}

	data, err := r.accounts.GetMultipleAccountData(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("failed to load bin arrays: %w", err)
	}

	arrays := make(map[int64]*BinArray, len(indexes))
	for i, raw := range data {
		if raw == nil {
			continue
		}
		ba, err := ParseBinArray(raw)
		if err != nil {
			return nil, fmt.Errorf("bin array %d: %w", indexes[i], err)
		}
		if ba.Index != indexes[i] || !ba.LbPair.Equals(lbPair) {
			return nil, fmt.Errorf("bin array %s does not match pool %s index %d", keys[i], lbPair, indexes[i])
		}
		arrays[ba.Index] = ba
	}
	return arrays, nil
}
