// internal/dex/dlmm/errors.go
package dlmm

import "errors"

var (
	// ErrPoolNotFound means the LbPair account does not exist.
	ErrPoolNotFound = errors.New("dlmm pool account not found")

	// ErrPositionNotFound means the position account does not exist.
	ErrPositionNotFound = errors.New("dlmm position account not found")

	// ErrPoolMismatch means the position belongs to another pool.
	ErrPoolMismatch = errors.New("position does not belong to pool")

	// ErrBinArrayMissing means a bin holding position shares could not be loaded.
	ErrBinArrayMissing = errors.New("bin array missing for position range")

	// ErrNoAccountReader is returned by NewReader without an RPC client.
	ErrNoAccountReader = errors.New("solana RPC client is not configured")
)
