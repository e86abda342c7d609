// internal/utils/binary/binary.go
package binary

import (
	"encoding/binary"
	"fmt"
	"math/big"

	"github.com/gagliardetto/solana-go"
)

// Need reports an error when data is too short to read size bytes at offset.
func Need(data []byte, offset, size int) error {
	if offset < 0 || size < 0 || len(data) < offset+size {
		return fmt.Errorf("account data too short: need %d bytes at offset %d, have %d", size, offset, len(data))
	}
	return nil
}

// ReadUint64LittleEndian reads a uint64 from a byte slice in little-endian format
func ReadUint64LittleEndian(data []byte, offset int) uint64 {
	return binary.LittleEndian.Uint64(data[offset : offset+8])
}

// ReadInt64LittleEndian reads an int64 from a byte slice in little-endian format
func ReadInt64LittleEndian(data []byte, offset int) int64 {
	return int64(binary.LittleEndian.Uint64(data[offset : offset+8]))
}

// ReadInt32LittleEndian reads an int32 from a byte slice in little-endian format
func ReadInt32LittleEndian(data []byte, offset int) int32 {
	return int32(binary.LittleEndian.Uint32(data[offset : offset+4]))
}

// ReadUint128LittleEndian reads an unsigned 128-bit integer into a big.Int.
func ReadUint128LittleEndian(data []byte, offset int) *big.Int {
	be := make([]byte, 16)
	for i := 0; i < 16; i++ {
		be[15-i] = data[offset+i]
	}
	return new(big.Int).SetBytes(be)
}

// ReadUint8 reads a uint8 (byte) from a byte slice
func ReadUint8(data []byte, offset int) uint8 {
	return data[offset]
}

// ReadPubKey reads a Solana public key from a byte slice
func ReadPubKey(data []byte, offset int) solana.PublicKey {
	keyBytes := make([]byte, 32)
	copy(keyBytes, data[offset:offset+32])
	return solana.PublicKeyFromBytes(keyBytes)
}

// WriteUint64LittleEndian writes a uint64 to a byte slice in little-endian format
func WriteUint64LittleEndian(val uint64, data []byte, offset int) {
	binary.LittleEndian.PutUint64(data[offset:offset+8], val)
}

// WriteInt64LittleEndian writes an int64 to a byte slice in little-endian format
func WriteInt64LittleEndian(val int64, data []byte, offset int) {
	binary.LittleEndian.PutUint64(data[offset:offset+8], uint64(val))
}

// WriteInt32LittleEndian writes an int32 to a byte slice in little-endian format
func WriteInt32LittleEndian(val int32, data []byte, offset int) {
	binary.LittleEndian.PutUint32(data[offset:offset+4], uint32(val))
}

// WriteUint128LittleEndian writes a non-negative big.Int below 2^128.
func WriteUint128LittleEndian(val *big.Int, data []byte, offset int) {
	be := val.FillBytes(make([]byte, 16))
	for i := 0; i < 16; i++ {
		data[offset+i] = be[15-i]
	}
}

// WriteUint8 writes a uint8 (byte) to a byte slice
func WriteUint8(val uint8, data []byte, offset int) {
	data[offset] = val
}

// WritePubKey writes a Solana public key to a byte slice
func WritePubKey(key solana.PublicKey, data []byte, offset int) {
	copy(data[offset:offset+32], key[:])
}
