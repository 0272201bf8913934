package demosource

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff"

	"github.com/warpcomdev/streamcore/internal/feed"
	"github.com/warpcomdev/streamcore/internal/servicelog"
)

// RemoteSource polls an upstream HTTP snapshot endpoint and republishes
// whatever it returns, retrying transient failures with exponential
// backoff rather than giving up on the first error.
type RemoteSource struct {
	url    string
	client *http.Client
	stream *feed.Stream
	logger servicelog.Logger
}

// NewRemoteSource builds a puller for url, publishing fetched frames into
// stream. A nil client defaults to http.DefaultClient.
func NewRemoteSource(url string, client *http.Client, stream *feed.Stream, logger servicelog.Logger) *RemoteSource {
	if client == nil {
		client = http.DefaultClient
	}
	return &RemoteSource{url: url, client: client, stream: stream, logger: logger}
}

// Run polls r.url every interval until ctx is cancelled, retrying each
// individual fetch with exponential backoff (capped by ctx) before giving
// up on that tick and waiting for the next one.
func (r *RemoteSource) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := r.fetchWithRetry(ctx); err != nil {
				r.logger.Warn("remote source fetch failed", servicelog.String("url", r.url), servicelog.Error(err))
			}
		}
	}
}

func (r *RemoteSource) fetchWithRetry(ctx context.Context) error {
	bo := backoff.WithContext(backoff.NewExponentialBackOff(), ctx)
	return backoff.Retry(func() error {
		data, err := r.fetch(ctx)
		if err != nil {
			return err
		}
		r.stream.Publish(0, 0, data)
		return nil
	}, bo)
}

func (r *RemoteSource) fetch(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.url, nil)
	if err != nil {
		return nil, &backoff.PermanentError{Err: err}
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("remote source: unexpected status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}
