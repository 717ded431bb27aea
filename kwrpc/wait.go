package kwrpc

import (
	"context"
	"time"
)

// PollForCommit polls tx_query on interval until txHash is observed
// committed (a non-zero block height), ctx is cancelled, or a query
// itself errors out. It is the always-available fallback wait path for a
// caller that broadcast fire-and-forget and later wants to block for the
// transaction's outcome without a block-commit push feed.
func (c *Client) PollForCommit(ctx context.Context, txHash string, interval time.Duration) (*TxQueryResult, error) {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		res, err := c.TxQuery(ctx, txHash)
		if err != nil {
			return nil, err
		}
		if res.Height > 0 {
			return res, nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}
