package dlmm

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/lp-reader/internal/utils/binary"
)

var (
	wsolMint = solana.MustPublicKeyFromBase58("So11111111111111111111111111111111111111112")
	usdcMint = solana.MustPublicKeyFromBase58("EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v")
)

// q64 returns v * 2^64.
func q64(v int64) *big.Int {
	return new(big.Int).Lsh(big.NewInt(v), scaleOffset)
}

func encodeLbPair(activeID int32, mintX, mintY solana.PublicKey) []byte {
	data := make([]byte, 904)
	copy(data, LbPairDiscriminator)
	binary.WriteInt32LittleEndian(activeID, data, lbPairActiveIDOffset)
	data[lbPairBinStepOffset] = 4
	binary.WritePubKey(mintX, data, lbPairTokenXMintOffset)
	binary.WritePubKey(mintY, data, lbPairTokenYMintOffset)
	return data
}

type binShare struct {
	share       *big.Int
	feeXPending uint64
	feeXDone    *big.Int
}

func encodePosition(lbPair, owner solana.PublicKey, lower, upper int32, shares map[int]binShare) []byte {
	data := make([]byte, 8120)
	copy(data, PositionV2Discriminator)
	binary.WritePubKey(lbPair, data, positionLbPairOffset)
	binary.WritePubKey(owner, data, positionOwnerOffset)
	binary.WriteInt32LittleEndian(lower, data, positionLowerBinOffset)
	binary.WriteInt32LittleEndian(upper, data, positionUpperBinOffset)
	binary.WriteUint64LittleEndian(11, data, positionClaimedFeeXOffset)
	binary.WriteUint64LittleEndian(22, data, positionClaimedFeeYOffset)
	for i, s := range shares {
		binary.WriteUint128LittleEndian(s.share, data, positionSharesOffset+i*shareSize)
		fi := positionFeeInfosOffset + i*feeInfoSize
		if s.feeXDone != nil {
			binary.WriteUint128LittleEndian(s.feeXDone, data, fi+feeInfoXCompleteOffset)
		}
		binary.WriteUint64LittleEndian(s.feeXPending, data, fi+feeInfoXPendingOffset)
	}
	return data
}

type binState struct {
	amountX, amountY uint64
	supply           *big.Int
	feeXStored       *big.Int
}

func encodeBinArray(lbPair solana.PublicKey, index int64, bins map[int]binState) []byte {
	data := make([]byte, binArraySize)
	copy(data, BinArrayDiscriminator)
	binary.WriteInt64LittleEndian(index, data, binArrayIndexOffset)
	binary.WritePubKey(lbPair, data, binArrayLbPairOffset)
	for i, b := range bins {
		off := binArrayBinsOffset + i*binSize
		binary.WriteUint64LittleEndian(b.amountX, data, off+binAmountXOffset)
		binary.WriteUint64LittleEndian(b.amountY, data, off+binAmountYOffset)
		binary.WriteUint128LittleEndian(b.supply, data, off+binLiquiditySupplyOffset)
		if b.feeXStored != nil {
			binary.WriteUint128LittleEndian(b.feeXStored, data, off+binFeeXPerTokenOffset)
		}
	}
	return data
}

func mintAccount(decimals uint8) []byte {
	data := make([]byte, 82)
	data[44] = decimals
	return data
}

func TestBinArrayIndex(t *testing.T) {
	tests := []struct {
		bin  int32
		want int64
	}{
		{0, 0}, {69, 0}, {70, 1}, {139, 1}, {-1, -1}, {-70, -1}, {-71, -2}, {-140, -2},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, BinArrayIndex(tt.bin), "bin %d", tt.bin)
	}
	assert.Equal(t, []int64{-1, 0}, BinArrayIndexes(-3, 5))
}

func TestDeriveBinArrayPDAIsDeterministic(t *testing.T) {
	pair := solana.NewWallet().PublicKey()
	a, err := DeriveBinArrayPDA(pair, -2)
	require.NoError(t, err)
	b, err := DeriveBinArrayPDA(pair, -2)
	require.NoError(t, err)
	c, err := DeriveBinArrayPDA(pair, 2)
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}

func TestParseRejectsWrongDiscriminator(t *testing.T) {
	_, err := ParseLbPair(encodeBinArray(solana.PublicKey{}, 0, nil))
	assert.Error(t, err)
	_, err = ParsePositionV2(make([]byte, 10))
	assert.Error(t, err)
	_, err = ParseBinArray(encodeLbPair(0, wsolMint, usdcMint))
	assert.Error(t, err)
}

func TestParseLbPair(t *testing.T) {
	p, err := ParseLbPair(encodeLbPair(-443, wsolMint, usdcMint))
	require.NoError(t, err)
	assert.Equal(t, int32(-443), p.ActiveID)
	assert.Equal(t, uint16(4), p.BinStep)
	assert.Equal(t, wsolMint, p.TokenXMint)
	assert.Equal(t, usdcMint, p.TokenYMint)
}

func TestAggregateAcrossBinArrays(t *testing.T) {
	pair := solana.NewWallet().PublicKey()
	owner := solana.NewWallet().PublicKey()

	// bins 68..71 span arrays 0 and 1
	pos, err := ParsePositionV2(encodePosition(pair, owner, 68, 71, map[int]binShare{
		0: {share: q64(100), feeXPending: 5, feeXDone: big.NewInt(0)},
		2: {share: q64(50)},
		3: {share: big.NewInt(0), feeXPending: 7},
	}))
	require.NoError(t, err)

	a0, err := ParseBinArray(encodeBinArray(pair, 0, map[int]binState{
		68: {amountX: 1000, supply: q64(200), feeXStored: q64(3)},
	}))
	require.NoError(t, err)
	a1, err := ParseBinArray(encodeBinArray(pair, 1, map[int]binState{
		0: {amountY: 777, supply: q64(50)},
	}))
	require.NoError(t, err)

	got := Aggregate(pos, map[int64]*BinArray{0: a0, 1: a1})
	assert.Equal(t, "500", got.AmountX.String())
	assert.Equal(t, "777", got.AmountY.String())
	// 5 pending + 100 shares * 3 fee per share + 7 pending on an emptied bin
	assert.Equal(t, "312", got.FeeX.String())
	assert.Equal(t, "0", got.FeeY.String())
	assert.Zero(t, got.BinsMissing)
}

func TestAggregateCountsMissingArrays(t *testing.T) {
	pair := solana.NewWallet().PublicKey()
	pos, err := ParsePositionV2(encodePosition(pair, solana.PublicKey{}, -2, 1, map[int]binShare{
		0: {share: q64(1)},
		3: {share: q64(1)},
	}))
	require.NoError(t, err)

	got := Aggregate(pos, map[int64]*BinArray{})
	assert.Equal(t, 2, got.BinsMissing)
	assert.Equal(t, "0", got.AmountX.String())
}

func TestParsePositionRejectsBadRange(t *testing.T) {
	_, err := ParsePositionV2(encodePosition(solana.PublicKey{}, solana.PublicKey{}, 10, 9, nil))
	assert.Error(t, err)
	_, err = ParsePositionV2(encodePosition(solana.PublicKey{}, solana.PublicKey{}, 0, 70, nil))
	assert.Error(t, err)
}

type mockAccountReader struct {
	mock.Mock
}

func (m *mockAccountReader) GetAccountData(ctx context.Context, pubkey solana.PublicKey) ([]byte, error) {
	args := m.Called(ctx, pubkey)
	data, _ := args.Get(0).([]byte)
	return data, args.Error(1)
}

func (m *mockAccountReader) GetMultipleAccountData(ctx context.Context, pubkeys []solana.PublicKey) ([][]byte, error) {
	args := m.Called(ctx, pubkeys)
	data, _ := args.Get(0).([][]byte)
	return data, args.Error(1)
}

func (m *mockAccountReader) GetVersion(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func TestNewReaderRequiresClient(t *testing.T) {
	r, err := NewReader(nil, zap.NewNop())
	assert.Nil(t, r)
	assert.ErrorIs(t, err, ErrNoAccountReader)
}

func TestReaderGetPosition(t *testing.T) {
	pair := solana.NewWallet().PublicKey()
	position := solana.NewWallet().PublicKey()
	owner := solana.NewWallet().PublicKey()

	arr0, err := DeriveBinArrayPDA(pair, 0)
	require.NoError(t, err)

	accounts := new(mockAccountReader)
	accounts.On("GetMultipleAccountData", mock.Anything, []solana.PublicKey{pair, position}).Return([][]byte{
		encodeLbPair(12, wsolMint, usdcMint),
		encodePosition(pair, owner, 10, 12, map[int]binShare{
			2: {share: q64(10)},
		}),
	}, nil).Once()
	accounts.On("GetMultipleAccountData", mock.Anything, []solana.PublicKey{arr0}).Return([][]byte{
		encodeBinArray(pair, 0, map[int]binState{
			12: {amountX: 26_400_000_000, amountY: 120_500_000, supply: q64(10)},
		}),
	}, nil).Once()
	accounts.On("GetAccountData", mock.Anything, wsolMint).Return(mintAccount(9), nil).Once()
	accounts.On("GetAccountData", mock.Anything, usdcMint).Return(mintAccount(6), nil).Once()

	r, err := NewReader(accounts, zap.NewNop())
	require.NoError(t, err)

	got, err := r.GetPosition(context.Background(), pair, position)
	require.NoError(t, err)

	assert.Equal(t, owner, got.Owner)
	assert.Equal(t, uint8(9), got.TokenX.Decimals)
	assert.Equal(t, uint8(6), got.TokenY.Decimals)
	assert.Equal(t, "26400000000", got.AmountX.String())
	assert.Equal(t, "120500000", got.AmountY.String())
	assert.Equal(t, uint64(11), got.ClaimedFeeX)
	assert.True(t, got.InRange())
	accounts.AssertExpectations(t)
}

func TestReaderGetPositionErrors(t *testing.T) {
	pair := solana.NewWallet().PublicKey()
	other := solana.NewWallet().PublicKey()
	position := solana.NewWallet().PublicKey()

	t.Run("position missing", func(t *testing.T) {
		accounts := new(mockAccountReader)
		accounts.On("GetMultipleAccountData", mock.Anything, mock.Anything).
			Return([][]byte{encodeLbPair(0, wsolMint, usdcMint), nil}, nil)

		r, _ := NewReader(accounts, zap.NewNop())
		_, err := r.GetPosition(context.Background(), pair, position)
		assert.ErrorIs(t, err, ErrPositionNotFound)
	})

	t.Run("pool mismatch", func(t *testing.T) {
		accounts := new(mockAccountReader)
		accounts.On("GetMultipleAccountData", mock.Anything, mock.Anything).
			Return([][]byte{encodeLbPair(0, wsolMint, usdcMint), encodePosition(other, other, 0, 1, nil)}, nil)

		r, _ := NewReader(accounts, zap.NewNop())
		_, err := r.GetPosition(context.Background(), pair, position)
		assert.ErrorIs(t, err, ErrPoolMismatch)
	})

	t.Run("rpc failure", func(t *testing.T) {
		accounts := new(mockAccountReader)
		accounts.On("GetMultipleAccountData", mock.Anything, mock.Anything).
			Return(nil, errors.New("connection refused"))

		r, _ := NewReader(accounts, zap.NewNop())
		_, err := r.GetPosition(context.Background(), pair, position)
		assert.ErrorContains(t, err, "connection refused")
	})
}

func TestReaderGetPositionFailsOnMissingBinArray(t *testing.T) {
	pair := solana.NewWallet().PublicKey()
	position := solana.NewWallet().PublicKey()

	arr0, err := DeriveBinArrayPDA(pair, 0)
	require.NoError(t, err)
	arr1, err := DeriveBinArrayPDA(pair, 1)
	require.NoError(t, err)

	// bins 68..71 hold shares in 68 (array 0) and 71 (array 1)
	accounts := new(mockAccountReader)
	accounts.On("GetMultipleAccountData", mock.Anything, []solana.PublicKey{pair, position}).Return([][]byte{
		encodeLbPair(69, wsolMint, usdcMint),
		encodePosition(pair, solana.PublicKey{}, 68, 71, map[int]binShare{
			0: {share: q64(10)},
			3: {share: q64(10)},
		}),
	}, nil).Once()
	accounts.On("GetMultipleAccountData", mock.Anything, []solana.PublicKey{arr0, arr1}).Return([][]byte{
		encodeBinArray(pair, 0, map[int]binState{
			68: {amountX: 26_400_000_000, supply: q64(10)},
		}),
		nil,
	}, nil).Once()
	accounts.On("GetAccountData", mock.Anything, wsolMint).Return(mintAccount(9), nil).Maybe()
	accounts.On("GetAccountData", mock.Anything, usdcMint).Return(mintAccount(6), nil).Maybe()

	r, err := NewReader(accounts, zap.NewNop())
	require.NoError(t, err)

	got, err := r.GetPosition(context.Background(), pair, position)
	assert.Nil(t, got)
	assert.ErrorIs(t, err, ErrBinArrayMissing)
}
