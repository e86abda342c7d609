// internal/position/service.go
package position

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/rovshanmuradov/lp-reader/internal/amount"
	"github.com/rovshanmuradov/lp-reader/internal/apperr"
	"github.com/rovshanmuradov/lp-reader/internal/dex/meteora"
	"github.com/rovshanmuradov/lp-reader/internal/upstream"
)

// DefaultMemoTTL bounds how long a resolved snapshot is reused.
const DefaultMemoTTL = 15 * time.Second

// MetaSource returns the raw metadata record of a position.
type MetaSource interface {
	PositionMeta(ctx context.Context, positionID string) (map[string]any, error)
}

// PriceSource returns the reference price of a pool, nil when the pool reports none.
type PriceSource interface {
	PoolPrice(ctx context.Context, poolAddress string) (*float64, error)
}

// MemoRecorder counts memo hits. *metrics.Collector implements it.
type MemoRecorder interface {
	RecordMemo(hit bool)
}

// Snapshot is a fully resolved and valued LP position.
type Snapshot struct {
	PositionID string
	Pool       string
	Owner      *string
	TokenXMint *string
	TokenYMint *string

	Spot     *float64
	QSol     *amount.Quantity
	UUSDC    *amount.Quantity
	TotalUSD *float64

	SOLFeesClaimed    *amount.Quantity
	USDCFeesClaimed   *amount.Quantity
	SOLFeesUnclaimed  *amount.Quantity
	USDCFeesUnclaimed *amount.Quantity

	SlotAssignment SlotAssignment
	Source         string
	InRange        *bool

	Meta       meteora.PositionMeta
	State      State
	ResolvedAt time.Time
}

// Service runs the /lp resolution: meta, then price and amounts in parallel, then valuation.
type Service struct {
	meta     MetaSource
	prices   PriceSource
	amounts  AmountResolver
	memo     *cache.Cache
	recorder MemoRecorder
	logger   *zap.Logger
	now      func() time.Time
}

// Options configures a Service.
type Options struct {
	// MemoTTL of zero disables the memo.
	MemoTTL  time.Duration
	Recorder MemoRecorder
}

func NewService(meta MetaSource, prices PriceSource, amounts AmountResolver, opts Options, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{
		meta:     meta,
		prices:   prices,
		amounts:  amounts,
		recorder: opts.Recorder,
		logger:   logger.Named("position"),
		now:      time.Now,
	}
	if opts.MemoTTL > 0 {
		s.memo = cache.New(opts.MemoTTL, 2*opts.MemoTTL)
	}
	return s
}

// Source names the amount strategy in use.
func (s *Service) Source() string { return s.amounts.Name() }

// Resolve returns the valued snapshot of positionID.
// On a missing pool the returned snapshot carries the metadata record next to the error.
func (s *Service) Resolve(ctx context.Context, positionID string) (*Snapshot, error) {
	positionID = strings.TrimSpace(positionID)
	if positionID == "" {
		return nil, apperr.InvalidInput("position.Resolve", "missing positionId")
	}
	if _, err := solana.PublicKeyFromBase58(positionID); err != nil {
		return nil, apperr.InvalidInput("position.Resolve", "positionId is not a valid base58 public key")
	}
	if err := s.amounts.Ready(); err != nil {
		return nil, err
	}

	if snap, ok := s.fromMemo(positionID); ok {
		return snap, nil
	}

	snap, err := s.resolve(ctx, positionID)
	if err != nil {
		return snap, err
	}
	if s.memo != nil {
		s.memo.SetDefault(positionID, snap)
	}
	return snap, nil
}

func (s *Service) fromMemo(positionID string) (*Snapshot, bool) {
	if s.memo == nil {
		return nil, false
	}
	v, ok := s.memo.Get(positionID)
	if s.recorder != nil {
		s.recorder.RecordMemo(ok)
	}
	if !ok {
		return nil, false
	}
	return v.(*Snapshot), true
}

func (s *Service) resolve(ctx context.Context, positionID string) (*Snapshot, error) {
	logger := s.logger.With(zap.String("position", positionID))
	m := newMachine(logger)

	// START -> META_RESOLVED
	rec, err := s.meta.PositionMeta(ctx, positionID)
	if err != nil {
		if upstream.StatusCode(err) == http.StatusNotFound {
			return nil, m.fail(&apperr.Error{Kind: apperr.ErrNotFound, Op: "meteora.PositionMeta", Err: err})
		}
		return nil, m.fail(apperr.Upstream("meteora.PositionMeta", err))
	}
	meta := meteora.ParsePositionMeta(rec)
	if meta.Pool == nil {
		snap := &Snapshot{PositionID: positionID, Meta: meta, State: StateFailed}
		return snap, m.fail(apperr.NotFound("position.Resolve", "pool not found for this positionId"))
	}
	m.advance(StateMetaResolved)
	pool := *meta.Pool

	// price and amounts run together; both must land before valuation
	var (
		spot    *float64
		amounts *Amounts
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		spot, err = s.prices.PoolPrice(gctx, pool)
		return apperr.Upstream("meteora.PoolPrice", err)
	})
	g.Go(func() error {
		var err error
		amounts, err = s.amounts.ResolveAmounts(gctx, pool, positionID, meta)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, m.fail(err)
	}
	m.advance(StatePriceResolved)
	m.advance(StateAmountsResolved)

	snap := s.value(positionID, pool, meta, spot, amounts)
	m.advance(StateValued)
	snap.State = StateValued

	logger.Info("Position valued",
		zap.String("pool", pool),
		zap.String("source", amounts.Source),
		zap.String("slots", string(snap.SlotAssignment)),
		zap.Stringer("q_sol", snap.QSol),
		zap.Stringer("u_usdc", snap.UUSDC),
		zap.Float64p("spot", spot),
		zap.Float64p("lp_total_usd", snap.TotalUSD))
	return snap, nil
}

func (s *Service) value(positionID, pool string, meta meteora.PositionMeta, spot *float64, a *Amounts) *Snapshot {
	slots := AssignSlots(a.MintX.ID, a.MintY.ID)

	claimedX, claimedY := a.FeeXClaimed, a.FeeYClaimed
	if q := amount.NewQuantity(meta.FeeXClaimed, a.MintX.ResolvedScale()); q != nil {
		claimedX = q
	}
	if q := amount.NewQuantity(meta.FeeYClaimed, a.MintY.ResolvedScale()); q != nil {
		claimedY = q
	}

	snap := &Snapshot{
		PositionID:        positionID,
		Pool:              pool,
		Owner:             meta.Owner,
		TokenXMint:        nonEmpty(a.MintX.ID),
		TokenYMint:        nonEmpty(a.MintY.ID),
		Spot:              spot,
		QSol:              Pick(slots.SOL, a.X, a.Y),
		UUSDC:             Pick(slots.USDC, a.X, a.Y),
		SOLFeesClaimed:    Pick(slots.SOL, claimedX, claimedY),
		USDCFeesClaimed:   Pick(slots.USDC, claimedX, claimedY),
		SOLFeesUnclaimed:  Pick(slots.SOL, a.FeeXUnclaimed, a.FeeYUnclaimed),
		USDCFeesUnclaimed: Pick(slots.USDC, a.FeeXUnclaimed, a.FeeYUnclaimed),
		SlotAssignment:    slots.Assignment,
		Source:            a.Source,
		InRange:           a.InRange,
		Meta:              meta,
		ResolvedAt:        s.now(),
	}
	snap.TotalUSD = ValuePosition(snap.QSol.Human(), snap.UUSDC.Human(), spot)
	return snap
}

func nonEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
