package llm

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// RetryPolicy bounds ChatWithRetry. Attempts counts every call, the first
// included. Backoff doubles after each failed attempt.
type RetryPolicy struct {
	Attempts int
	Backoff  time.Duration
}

// DefaultRetry gives a failed call one more try after a second.
var DefaultRetry = RetryPolicy{Attempts: 2, Backoff: time.Second}

// ChatWithRetry calls client.Chat again after failures IsRetryable accepts,
// up to p.Attempts calls in total.
func ChatWithRetry(ctx context.Context, client Client, req Request, result any, p RetryPolicy) (*Response, error) {
	attempts := max(p.Attempts, 1)
	backoff := p.Backoff

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		var resp *Response
		resp, err = client.Chat(ctx, req, result)
		if err == nil {
			return resp, nil
		}
		if attempt == attempts || !IsRetryable(ctx, err) {
			break
		}

		slog.WarnContext(ctx, "llm chat retry",
			"schema", req.SchemaName,
			"attempt", attempt,
			"error", err)

		if backoff > 0 {
			select {
			case <-ctx.Done():
				return nil, fmt.Errorf("waiting to retry: %w", ctx.Err())
			case <-time.After(backoff):
			}
			backoff *= 2
		}
	}
	return nil, err
}
