// internal/position/amounts.go
package position

import (
	"context"
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"

	"github.com/rovshanmuradov/lp-reader/internal/amount"
	"github.com/rovshanmuradov/lp-reader/internal/apperr"
	"github.com/rovshanmuradov/lp-reader/internal/blockchain"
	"github.com/rovshanmuradov/lp-reader/internal/dex/dlmm"
	"github.com/rovshanmuradov/lp-reader/internal/dex/meteora"
)

const (
	SourceOnChain = "onchain"
	SourceIndexer = "indexer"
)

// Amounts are the raw position sides in venue order (X, Y). Unknown values stay nil.
type Amounts struct {
	MintX amount.AssetRef
	MintY amount.AssetRef

	X *amount.Quantity
	Y *amount.Quantity

	FeeXUnclaimed *amount.Quantity
	FeeYUnclaimed *amount.Quantity
	FeeXClaimed   *amount.Quantity
	FeeYClaimed   *amount.Quantity

	InRange *bool
	Source  string
}

// AmountResolver produces position amounts from one data source.
type AmountResolver interface {
	Name() string
	// Ready reports a construction-time failure before any upstream call is made.
	Ready() error
	ResolveAmounts(ctx context.Context, venueID, positionID string, meta meteora.PositionMeta) (*Amounts, error)
}

// OnChainResolver aggregates the position from DLMM account data.
type OnChainResolver struct {
	reader  *dlmm.Reader
	initErr error
}

// NewOnChainResolver keeps the reader constructor error and reports it on every request.
func NewOnChainResolver(reader *dlmm.Reader, initErr error) *OnChainResolver {
	if reader == nil && initErr == nil {
		initErr = dlmm.ErrNoAccountReader
	}
	return &OnChainResolver{reader: reader, initErr: initErr}
}

func (r *OnChainResolver) Name() string { return SourceOnChain }

func (r *OnChainResolver) Ready() error {
	switch {
	case r.initErr == nil:
		return nil
	case errors.Is(r.initErr, dlmm.ErrNoAccountReader):
		return apperr.InvalidInput("position.OnChainResolver", "Missing HELIUS_API_KEY env")
	default:
		return apperr.Upstream("position.OnChainResolver", fmt.Errorf("DLMM reader failed to initialize: %w", r.initErr))
	}
}

func (r *OnChainResolver) ResolveAmounts(ctx context.Context, venueID, positionID string, _ meteora.PositionMeta) (*Amounts, error) {
	if err := r.Ready(); err != nil {
		return nil, err
	}
	const op = "dlmm.GetPosition"

	poolPK, err := solana.PublicKeyFromBase58(venueID)
	if err != nil {
		return nil, apperr.Upstream(op, fmt.Errorf("indexer returned invalid pool address %q: %w", venueID, err))
	}
	posPK, err := solana.PublicKeyFromBase58(positionID)
	if err != nil {
		return nil, apperr.InvalidInput(op, "positionId is not a valid base58 public key")
	}

	pos, err := r.reader.GetPosition(ctx, poolPK, posPK)
	if err != nil {
		return nil, readerError(op, err)
	}

	decX, decY := int(pos.TokenX.Decimals), int(pos.TokenY.Decimals)
	inRange := pos.InRange()
	return &Amounts{
		MintX:         amount.AssetRef{ID: pos.TokenX.Mint.String(), Scale: &decX},
		MintY:         amount.AssetRef{ID: pos.TokenY.Mint.String(), Scale: &decY},
		X:             &amount.Quantity{Raw: pos.AmountX, Scale: decX},
		Y:             &amount.Quantity{Raw: pos.AmountY, Scale: decY},
		FeeXUnclaimed: &amount.Quantity{Raw: pos.FeeX, Scale: decX},
		FeeYUnclaimed: &amount.Quantity{Raw: pos.FeeY, Scale: decY},
		FeeXClaimed:   amount.NewQuantity(pos.ClaimedFeeX, &decX),
		FeeYClaimed:   amount.NewQuantity(pos.ClaimedFeeY, &decY),
		InRange:       &inRange,
		Source:        SourceOnChain,
	}, nil
}

// readerError maps missing accounts to NotFound; everything else, including
// unreadable bin arrays, is an upstream failure.
func readerError(op string, err error) error {
	switch {
	case errors.Is(err, dlmm.ErrPositionNotFound), errors.Is(err, dlmm.ErrPoolNotFound), errors.Is(err, blockchain.ErrAccountNotFound):
		return &apperr.Error{Kind: apperr.ErrNotFound, Op: op, Err: err}
	default:
		return apperr.Upstream(op, err)
	}
}

// IndexerResolver reads amounts from the position metadata record. Absent fields mean unknown.
type IndexerResolver struct{}

func (IndexerResolver) Name() string { return SourceIndexer }

func (IndexerResolver) Ready() error { return nil }

func (IndexerResolver) ResolveAmounts(_ context.Context, _, _ string, meta meteora.PositionMeta) (*Amounts, error) {
	mintX := assetRef(meta.MintX)
	mintY := assetRef(meta.MintY)
	scaleX, scaleY := mintX.ResolvedScale(), mintY.ResolvedScale()

	return &Amounts{
		MintX:         mintX,
		MintY:         mintY,
		X:             amount.NewQuantity(meta.AmountX, scaleX),
		Y:             amount.NewQuantity(meta.AmountY, scaleY),
		FeeXUnclaimed: amount.NewQuantity(meta.FeeXUnclaimed, scaleX),
		FeeYUnclaimed: amount.NewQuantity(meta.FeeYUnclaimed, scaleY),
		FeeXClaimed:   amount.NewQuantity(meta.FeeXClaimed, scaleX),
		FeeYClaimed:   amount.NewQuantity(meta.FeeYClaimed, scaleY),
		Source:        SourceIndexer,
	}, nil
}

func assetRef(mint *string) amount.AssetRef {
	if mint == nil {
		return amount.AssetRef{}
	}
	return amount.AssetRef{ID: *mint}
}
