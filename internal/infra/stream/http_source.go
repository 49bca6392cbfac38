// internal/infra/stream/http_source.go
package stream

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	domainStream "complaint_notification_engine/internal/domain/stream"
)

type documentsResponse struct {
	Documents []domainStream.Document `json:"documents"`
	Cursor    string                  `json:"cursor"`
}

type changesResponse struct {
	Changes []domainStream.Change `json:"changes"`
	Cursor  string                `json:"cursor"`
}

// HTTPSource implements the document stream port over a cursor-based HTTP
// change feed: one full listing on subscribe, then incremental change
// polls. Deliveries happen serially from a single goroutine per
// subscription.
type HTTPSource struct {
	baseURL      string
	httpClient   *http.Client
	pollInterval time.Duration
	maxRetries   int
	baseDelay    time.Duration
	logger       *logrus.Logger
}

func NewHTTPSource(baseURL string, httpClient *http.Client, pollInterval time.Duration, logger *logrus.Logger) *HTTPSource {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	if pollInterval <= 0 {
		pollInterval = 5 * time.Second
	}
	return &HTTPSource{
		baseURL:      baseURL,
		httpClient:   httpClient,
		pollInterval: pollInterval,
		maxRetries:   3,
		baseDelay:    100 * time.Millisecond,
		logger:       logger,
	}
}

func filterQuery(f domainStream.Filter) url.Values {
	q := url.Values{}
	if f.Field != "" {
		q.Set("field", f.Field)
		q.Set("value", f.Value)
	}
	if f.OrderBy != "" {
		q.Set("orderBy", f.OrderBy)
		if f.Descending {
			q.Set("desc", "true")
		}
	}
	return q
}

func (s *HTTPSource) getJSON(ctx context.Context, path string, q url.Values, out any) error {
	var lastErr error
	for attempt := 0; attempt <= s.maxRetries; attempt++ {
		if attempt > 0 {
			delay := s.baseDelay << (attempt - 1)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+path+"?"+q.Encode(), nil)
		if err != nil {
			return err
		}
		resp, err := s.httpClient.Do(req)
		if err != nil {
			lastErr = err
			continue
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			lastErr = fmt.Errorf("stream endpoint %s: unexpected status %d", path, resp.StatusCode)
			if resp.StatusCode >= 400 && resp.StatusCode < 500 {
				return lastErr // not retryable
			}
			continue
		}
		err = json.NewDecoder(resp.Body).Decode(out)
		resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("stream endpoint %s: decoding response: %w", path, err)
			continue
		}
		return nil
	}
	return lastErr
}

// Subscribe starts the polling loop. The returned unsubscribe function is
// idempotent.
func (s *HTTPSource) Subscribe(
	ctx context.Context,
	f domainStream.Filter,
	onSnapshot domainStream.SnapshotHandler,
	onError domainStream.ErrorHandler,
) (domainStream.Unsubscribe, error) {
	stopCh := make(chan struct{})
	var once sync.Once
	unsub := func() {
		once.Do(func() { close(stopCh) })
	}

	go s.run(ctx, f, onSnapshot, onError, stopCh)
	return unsub, nil
}

func (s *HTTPSource) run(
	ctx context.Context,
	f domainStream.Filter,
	onSnapshot domainStream.SnapshotHandler,
	onError domainStream.ErrorHandler,
	stopCh <-chan struct{},
) {
	q := filterQuery(f)
	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	var cursor string
	delivered := false

	poll := func() {
		if !delivered {
			var listing documentsResponse
			if err := s.getJSON(ctx, "/v1/documents", q, &listing); err != nil {
				s.logger.WithError(err).Warn("initial document listing failed")
				onError(err)
				return
			}
			changes := make([]domainStream.Change, 0, len(listing.Documents))
			for _, doc := range listing.Documents {
				changes = append(changes, domainStream.Change{Type: domainStream.ChangeAdded, Doc: doc})
			}
			cursor = listing.Cursor
			delivered = true
			onSnapshot(domainStream.Snapshot{Docs: listing.Documents, Changes: changes})
			return
		}

		cq := url.Values{}
		for k, v := range q {
			cq[k] = v
		}
		cq.Set("cursor", cursor)
		var feed changesResponse
		if err := s.getJSON(ctx, "/v1/changes", cq, &feed); err != nil {
			s.logger.WithError(err).Warn("change poll failed")
			onError(err)
			return
		}
		if feed.Cursor != "" {
			cursor = feed.Cursor
		}
		if len(feed.Changes) == 0 {
			return
		}
		onSnapshot(domainStream.Snapshot{Changes: feed.Changes})
	}

	poll()
	for {
		select {
		case <-stopCh:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			poll()
		}
	}
}
