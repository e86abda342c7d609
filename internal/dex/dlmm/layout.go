// internal/dex/dlmm/layout.go
package dlmm

import (
	"bytes"
	"fmt"
	"math/big"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"

	"github.com/rovshanmuradov/lp-reader/internal/utils/binary"
)

// ProgramID is the Meteora DLMM program.
var ProgramID = solana.MustPublicKeyFromBase58("LBUZKhRxPF3XUpBCjp4YzTKgLccjZhTSDM9YuVaPwxo")

// MaxBinsPerArray is the number of bins in one BinArray and in one PositionV2.
const MaxBinsPerArray = 70

// Account discriminators (anchor "account:<Name>" sighash).
var (
	LbPairDiscriminator     = bin.Sighash(bin.SIGHASH_ACCOUNT_NAMESPACE, "LbPair")
	PositionV2Discriminator = bin.Sighash(bin.SIGHASH_ACCOUNT_NAMESPACE, "PositionV2")
	BinArrayDiscriminator   = bin.Sighash(bin.SIGHASH_ACCOUNT_NAMESPACE, "BinArray")
)

// LbPair offsets.
const (
	lbPairActiveIDOffset   = 76
	lbPairBinStepOffset    = 80
	lbPairTokenXMintOffset = 88
	lbPairTokenYMintOffset = 120
	lbPairMinSize          = 152
)

// PositionV2 offsets.
const (
	positionLbPairOffset      = 8
	positionOwnerOffset       = 40
	positionSharesOffset      = 72
	positionFeeInfosOffset    = 4552
	positionLowerBinOffset    = 7912
	positionUpperBinOffset    = 7916
	positionClaimedFeeXOffset = 7928
	positionClaimedFeeYOffset = 7936
	positionMinSize           = 7944

	shareSize              = 16
	feeInfoSize            = 48
	feeInfoXCompleteOffset = 0
	feeInfoYCompleteOffset = 16
	feeInfoXPendingOffset  = 32
	feeInfoYPendingOffset  = 40
)

// BinArray offsets.
const (
	binArrayIndexOffset  = 8
	binArrayLbPairOffset = 24
	binArrayBinsOffset   = 56
	binSize              = 144
	binArraySize         = binArrayBinsOffset + MaxBinsPerArray*binSize

	binAmountXOffset         = 0
	binAmountYOffset         = 8
	binPriceOffset           = 16
	binLiquiditySupplyOffset = 32
	binFeeXPerTokenOffset    = 80
	binFeeYPerTokenOffset    = 96
)

// LbPair is the subset of the pool account the reader uses.
type LbPair struct {
	ActiveID   int32
	BinStep    uint16
	TokenXMint solana.PublicKey
	TokenYMint solana.PublicKey
}

// FeeInfo is the per-bin fee checkpoint of a position.
type FeeInfo struct {
	FeeXPerTokenComplete *big.Int
	FeeYPerTokenComplete *big.Int
	FeeXPending          uint64
	FeeYPending          uint64
}

// PositionV2 is a decoded DLMM position account.
type PositionV2 struct {
	LbPair          solana.PublicKey
	Owner           solana.PublicKey
	LiquidityShares [MaxBinsPerArray]*big.Int
	FeeInfos        [MaxBinsPerArray]FeeInfo
	LowerBinID      int32
	UpperBinID      int32
	ClaimedFeeX     uint64
	ClaimedFeeY     uint64
}

// Bin is one price bin of a BinArray.
type Bin struct {
	AmountX            uint64
	AmountY            uint64
	Price              *big.Int
	LiquiditySupply    *big.Int
	FeeXPerTokenStored *big.Int
	FeeYPerTokenStored *big.Int
}

// BinArray holds MaxBinsPerArray consecutive bins starting at Index*MaxBinsPerArray.
type BinArray struct {
	Index  int64
	LbPair solana.PublicKey
	Bins   [MaxBinsPerArray]Bin
}

func checkDiscriminator(data, want []byte, name string) error {
	if len(data) < 8 {
		return fmt.Errorf("data too short for %s", name)
	}
	if !bytes.Equal(data[:8], want) {
		return fmt.Errorf("invalid discriminator for %s", name)
	}
	return nil
}

// ParseLbPair decodes a pool account.
func ParseLbPair(data []byte) (*LbPair, error) {
	if err := checkDiscriminator(data, LbPairDiscriminator, "LbPair"); err != nil {
		return nil, err
	}
	if err := binary.Need(data, 0, lbPairMinSize); err != nil {
		return nil, fmt.Errorf("LbPair: %w", err)
	}
	return &LbPair{
		ActiveID:   binary.ReadInt32LittleEndian(data, lbPairActiveIDOffset),
		BinStep:    uint16(data[lbPairBinStepOffset]) | uint16(data[lbPairBinStepOffset+1])<<8,
		TokenXMint: binary.ReadPubKey(data, lbPairTokenXMintOffset),
		TokenYMint: binary.ReadPubKey(data, lbPairTokenYMintOffset),
	}, nil
}

// ParsePositionV2 decodes a position account.
func ParsePositionV2(data []byte) (*PositionV2, error) {
	if err := checkDiscriminator(data, PositionV2Discriminator, "PositionV2"); err != nil {
		return nil, err
	}
	if err := binary.Need(data, 0, positionMinSize); err != nil {
		return nil, fmt.Errorf("PositionV2: %w", err)
	}

	p := &PositionV2{
		LbPair:      binary.ReadPubKey(data, positionLbPairOffset),
		Owner:       binary.ReadPubKey(data, positionOwnerOffset),
		LowerBinID:  binary.ReadInt32LittleEndian(data, positionLowerBinOffset),
		UpperBinID:  binary.ReadInt32LittleEndian(data, positionUpperBinOffset),
		ClaimedFeeX: binary.ReadUint64LittleEndian(data, positionClaimedFeeXOffset),
		ClaimedFeeY: binary.ReadUint64LittleEndian(data, positionClaimedFeeYOffset),
	}
	for i := 0; i < MaxBinsPerArray; i++ {
		p.LiquidityShares[i] = binary.ReadUint128LittleEndian(data, positionSharesOffset+i*shareSize)

		fi := positionFeeInfosOffset + i*feeInfoSize
		p.FeeInfos[i] = FeeInfo{
			FeeXPerTokenComplete: binary.ReadUint128LittleEndian(data, fi+feeInfoXCompleteOffset),
			FeeYPerTokenComplete: binary.ReadUint128LittleEndian(data, fi+feeInfoYCompleteOffset),
			FeeXPending:          binary.ReadUint64LittleEndian(data, fi+feeInfoXPendingOffset),
			FeeYPending:          binary.ReadUint64LittleEndian(data, fi+feeInfoYPendingOffset),
		}
	}
	if p.UpperBinID < p.LowerBinID || int(p.UpperBinID-p.LowerBinID) >= MaxBinsPerArray {
		return nil, fmt.Errorf("PositionV2: invalid bin range [%d, %d]", p.LowerBinID, p.UpperBinID)
	}
	return p, nil
}

// ParseBinArray decodes a bin array account.
func ParseBinArray(data []byte) (*BinArray, error) {
	if err := checkDiscriminator(data, BinArrayDiscriminator, "BinArray"); err != nil {
		return nil, err
	}
	if err := binary.Need(data, 0, binArraySize); err != nil {
		return nil, fmt.Errorf("BinArray: %w", err)
	}

	ba := &BinArray{
		Index:  binary.ReadInt64LittleEndian(data, binArrayIndexOffset),
		LbPair: binary.ReadPubKey(data, binArrayLbPairOffset),
	}
	for i := 0; i < MaxBinsPerArray; i++ {
		off := binArrayBinsOffset + i*binSize
		ba.Bins[i] = Bin{
			AmountX:            binary.ReadUint64LittleEndian(data, off+binAmountXOffset),
			AmountY:            binary.ReadUint64LittleEndian(data, off+binAmountYOffset),
			Price:              binary.ReadUint128LittleEndian(data, off+binPriceOffset),
			LiquiditySupply:    binary.ReadUint128LittleEndian(data, off+binLiquiditySupplyOffset),
			FeeXPerTokenStored: binary.ReadUint128LittleEndian(data, off+binFeeXPerTokenOffset),
			FeeYPerTokenStored: binary.ReadUint128LittleEndian(data, off+binFeeYPerTokenOffset),
		}
	}
	return ba, nil
}
