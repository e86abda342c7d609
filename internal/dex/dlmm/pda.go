// internal/dex/dlmm/pda.go
package dlmm

import (
	"fmt"

	"github.com/gagliardetto/solana-go"

	"github.com/rovshanmuradov/lp-reader/internal/utils/binary"
)

var binArraySeed = []byte("bin_array")

// BinArrayIndex returns the index of the bin array holding binID (floor division).
func BinArrayIndex(binID int32) int64 {
	idx := int64(binID) / MaxBinsPerArray
	if binID < 0 && int64(binID)%MaxBinsPerArray != 0 {
		idx--
	}
	return idx
}

// BinArrayIndexes lists every bin array index covering [lower, upper].
func BinArrayIndexes(lower, upper int32) []int64 {
	first, last := BinArrayIndex(lower), BinArrayIndex(upper)
	out := make([]int64, 0, last-first+1)
	for i := first; i <= last; i++ {
		out = append(out, i)
	}
	return out
}

// DeriveBinArrayPDA derives the bin array address for lbPair and index.
func DeriveBinArrayPDA(lbPair solana.PublicKey, index int64) (solana.PublicKey, error) {
	idx := make([]byte, 8)
	binary.WriteInt64LittleEndian(index, idx, 0)

	addr, _, err := solana.FindProgramAddress([][]byte{binArraySeed, lbPair.Bytes(), idx}, ProgramID)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("failed to derive bin array %d: %w", index, err)
	}
	return addr, nil
}
