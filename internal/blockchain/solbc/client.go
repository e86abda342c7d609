// internal/blockchain/solbc/client.go
package solbc

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/gagliardetto/solana-go/rpc/jsonrpc"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/lp-reader/internal/blockchain"
	"github.com/rovshanmuradov/lp-reader/internal/upstream"
)

const (
	upstreamName = "solana-rpc"

	// maxAccountsPerCall is the getMultipleAccounts limit of public RPC nodes.
	maxAccountsPerCall = 100
)

// Client – тонкий адаптер над solana-go rpc с таймаутом и повторами на каждый вызов.
type Client struct {
	rpc      *rpc.Client
	opts     upstream.Options
	logger   *zap.Logger
	recorder upstream.Recorder
}

var _ blockchain.AccountReader = (*Client)(nil)

// NewClient создаёт клиент для rpcURL.
func NewClient(rpcURL string, opts upstream.Options, logger *zap.Logger, recorder upstream.Recorder) *Client {
	return newWithRPC(rpc.New(rpcURL), opts, logger, recorder)
}

func newWithRPC(rpcClient *rpc.Client, opts upstream.Options, logger *zap.Logger, recorder upstream.Recorder) *Client {
	if opts.Timeout <= 0 {
		opts = upstream.DefaultOptions()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		rpc:      rpcClient,
		opts:     opts,
		logger:   logger.Named("solbc-client"),
		recorder: recorder,
	}
}

// GetVersion returns the node's solana-core version.
func (c *Client) GetVersion(ctx context.Context) (string, error) {
	res, err := call(ctx, c, "getVersion", func(ctx context.Context) (*rpc.GetVersionResult, error) {
		return c.rpc.GetVersion(ctx)
	})
	if err != nil {
		return "", err
	}
	return res.SolanaCore, nil
}

// GetAccountData reads one account at processed commitment.
func (c *Client) GetAccountData(ctx context.Context, pubkey solana.PublicKey) ([]byte, error) {
	res, err := call(ctx, c, "getAccountInfo", func(ctx context.Context) (*rpc.GetAccountInfoResult, error) {
		out, err := c.rpc.GetAccountInfoWithOpts(ctx, pubkey, &rpc.GetAccountInfoOpts{
			Encoding:   solana.EncodingBase64,
			Commitment: rpc.CommitmentProcessed,
		})
		if errors.Is(err, rpc.ErrNotFound) {
			return nil, backoff.Permanent(fmt.Errorf("%w: %s", blockchain.ErrAccountNotFound, pubkey))
		}
		return out, err
	})
	if err != nil {
		return nil, err
	}
	if res == nil || res.Value == nil || res.Value.Data == nil {
		return nil, fmt.Errorf("%w: %s", blockchain.ErrAccountNotFound, pubkey)
	}
	return res.Value.Data.GetBinary(), nil
}

// GetMultipleAccountData reads accounts in batches; missing accounts yield nil entries.
func (c *Client) GetMultipleAccountData(ctx context.Context, pubkeys []solana.PublicKey) ([][]byte, error) {
	out := make([][]byte, 0, len(pubkeys))
	for start := 0; start < len(pubkeys); start += maxAccountsPerCall {
		end := min(start+maxAccountsPerCall, len(pubkeys))
		batch := pubkeys[start:end]

		res, err := call(ctx, c, "getMultipleAccounts", func(ctx context.Context) (*rpc.GetMultipleAccountsResult, error) {
			return c.rpc.GetMultipleAccountsWithOpts(ctx, batch, &rpc.GetMultipleAccountsOpts{
				Encoding:   solana.EncodingBase64,
				Commitment: rpc.CommitmentProcessed,
			})
		})
		if err != nil {
			return nil, err
		}
		if len(res.Value) != len(batch) {
			return nil, fmt.Errorf("getMultipleAccounts returned %d accounts for %d keys", len(res.Value), len(batch))
		}
		for _, acc := range res.Value {
			if acc == nil || acc.Data == nil {
				out = append(out, nil)
				continue
			}
			out = append(out, acc.Data.GetBinary())
		}
	}
	return out, nil
}

// retryableRPC: transport errors, timeouts, HTTP 429 and 5xx. JSON-RPC error
// objects (invalid params, unsupported method) fail the same way on every attempt.
func retryableRPC(err error) bool {
	var rpcErr *jsonrpc.RPCError
	if errors.As(err, &rpcErr) {
		return false
	}
	var httpErr *jsonrpc.HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Code == http.StatusTooManyRequests || httpErr.Code >= http.StatusInternalServerError
	}
	return true
}

// call runs fn with a per-attempt timeout and linear retries.
func call[T any](ctx context.Context, c *Client, method string, fn func(ctx context.Context) (T, error)) (T, error) {
	start := time.Now()
	op := func() (T, error) {
		attemptCtx, cancel := context.WithTimeout(ctx, c.opts.Timeout)
		defer cancel()
		res, err := fn(attemptCtx)
		if err != nil && !retryableRPC(err) {
			var pe *backoff.PermanentError
			if !errors.As(err, &pe) {
				err = backoff.Permanent(err)
			}
		}
		return res, err
	}

	res, err := backoff.Retry(ctx, op,
		backoff.WithBackOff(upstream.NewLinearBackOff(c.opts.Step)),
		backoff.WithMaxTries(uint(c.opts.Retries+1)),
		backoff.WithMaxElapsedTime(0),
		backoff.WithNotify(func(err error, wait time.Duration) {
			if c.recorder != nil {
				c.recorder.RecordRetry(upstreamName)
			}
			c.logger.Debug("Retrying RPC call",
				zap.String("method", method),
				zap.Duration("wait", wait),
				zap.Error(err))
		}),
	)

	if c.recorder != nil {
		c.recorder.RecordUpstream(upstreamName, time.Since(start), err)
	}
	if err != nil {
		var pe *backoff.PermanentError
		if errors.As(err, &pe) {
			err = pe.Err
		}
		c.logger.Debug("RPC call failed", zap.String("method", method), zap.Error(err))
		return res, &Error{Err: err, Method: method}
	}
	return res, nil
}
