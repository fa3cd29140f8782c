package fireblocks

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/Layr-Labs/remote-signer-go/pkg/remoteSigner"
)

func (c *Client) createTransaction(ctx context.Context, req *CreateTransactionRequest) (*CreateTransactionResponse, error) {
	var res CreateTransactionResponse
	if err := c.doRequest(ctx, http.MethodPost, "/v1/transactions", req, &res); err != nil {
		return nil, err
	}
	if res.Id == "" {
		return nil, remoteSigner.NewError(remoteSigner.KindSerialization, "create transaction response has no id")
	}
	return &res, nil
}

func (c *Client) getTransaction(ctx context.Context, txId string) (*TransactionResponse, error) {
	var res TransactionResponse
	uri := fmt.Sprintf("/v1/transactions/%s", url.PathEscape(txId))
	if err := c.doRequest(ctx, http.MethodGet, uri, nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// pollTransaction polls txId until it completes, fails terminally, or the attempt budget runs out.
// Request errors end polling immediately. Once the job exists, a done ctx always yields
// KindPollingTimeout since the job may still complete.
func (c *Client) pollTransaction(ctx context.Context, txId string) (*TransactionResponse, error) {
	for attempt := 1; attempt <= c.maxPollAttempts; attempt++ {
		res, err := c.getTransaction(ctx, txId)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, stoppedPolling(txId, ctxErr)
			}
			return nil, err
		}

		switch {
		case res.Status.IsCompleted():
			c.logger.Sugar().Debugw("Fireblocks transaction completed",
				"txId", txId,
				"attempts", attempt,
			)
			return res, nil
		case res.Status.IsTerminalFailure():
			c.logger.Sugar().Errorw("Fireblocks transaction ended without a signature",
				"txId", txId,
				"status", string(res.Status),
				"subStatus", res.SubStatus,
			)
			return nil, remoteSigner.NewError(remoteSigner.KindSigningFailed, "Transaction %s: %s", res.Status, txId)
		}

		c.logger.Sugar().Debugw("Fireblocks transaction pending",
			"txId", txId,
			"status", string(res.Status),
			"subStatus", res.SubStatus,
			"attempt", attempt,
			"maxAttempts", c.maxPollAttempts,
		)

		if attempt == c.maxPollAttempts {
			break
		}
		if err := sleepContext(ctx, c.pollInterval); err != nil {
			return nil, stoppedPolling(txId, err)
		}
	}

	c.logger.Sugar().Warnw("Fireblocks transaction polling exhausted",
		"txId", txId,
		"maxAttempts", c.maxPollAttempts,
		"pollInterval", c.pollInterval,
	)
	return nil, remoteSigner.NewError(remoteSigner.KindPollingTimeout,
		"transaction %s did not complete after %d polls, outcome unknown", txId, c.maxPollAttempts)
}

func stoppedPolling(txId string, err error) error {
	return remoteSigner.WrapError(remoteSigner.KindPollingTimeout, err,
		"stopped polling transaction %s, outcome unknown", txId)
}

// sleepContext waits for d or until ctx is done.
func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
