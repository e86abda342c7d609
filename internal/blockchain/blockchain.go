// internal/blockchain/blockchain.go
package blockchain

import (
	"context"
	"errors"

	"github.com/gagliardetto/solana-go"
)

// ErrAccountNotFound is returned when the cluster has no account at the address.
var ErrAccountNotFound = errors.New("account not found")

// AccountReader is the read-only slice of the Solana RPC the service needs.
type AccountReader interface {
	// GetAccountData returns the raw account bytes or ErrAccountNotFound.
	GetAccountData(ctx context.Context, pubkey solana.PublicKey) ([]byte, error)
	// GetMultipleAccountData returns one entry per key, nil where the account is missing.
	GetMultipleAccountData(ctx context.Context, pubkeys []solana.PublicKey) ([][]byte, error)
	// GetVersion returns the solana-core version of the node.
	GetVersion(ctx context.Context) (string, error)
}
