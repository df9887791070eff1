package extract

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/codeGROOVE-dev/retry"
	"golang.org/x/time/rate"
)

const fetchTimeout = 30 * time.Second

// Fetcher retrieves and parses retailer pages. A single shared rate
// limiter bounds outbound requests across all extractors so a sampling
// sweep cannot hammer the retailers.
type Fetcher struct {
	client  *http.Client
	limiter *rate.Limiter
}

// NewFetcher creates a fetcher capped at ratePerSec outbound requests.
func NewFetcher(ratePerSec float64) *Fetcher {
	if ratePerSec <= 0 {
		ratePerSec = 1
	}
	return &Fetcher{
		client:  &http.Client{Timeout: fetchTimeout},
		limiter: rate.NewLimiter(rate.Limit(ratePerSec), 1),
	}
}

// Document fetches the page and parses it. Transient HTTP failures are
// retried within the caller's deadline; the sample itself is still
// attempted once per cycle.
func (f *Fetcher) Document(ctx context.Context, pageURL string) (*goquery.Document, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, classify(pageURL, err)
	}

	var doc *goquery.Document
	err := retry.Do(
		func() error {
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, http.NoBody)
			if err != nil {
				return retry.Unrecoverable(err)
			}
			req.Header.Set("User-Agent", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36")
			req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
			req.Header.Set("Accept-Language", "en-US,en;q=0.9")

			resp, err := f.client.Do(req)
			if err != nil {
				return err
			}
			defer resp.Body.Close()

			if resp.StatusCode != http.StatusOK {
				err := fmt.Errorf("unexpected status %d", resp.StatusCode)
				// Client errors won't heal within this job's deadline
				if resp.StatusCode >= 400 && resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
					return retry.Unrecoverable(err)
				}
				return err
			}

			doc, err = goquery.NewDocumentFromReader(resp.Body)
			if err != nil {
				return retry.Unrecoverable(err)
			}
			return nil
		},
		retry.Attempts(3),
		retry.Delay(time.Second),
		retry.MaxDelay(10*time.Second),
		retry.Context(ctx),
	)
	if err != nil {
		return nil, classify(pageURL, err)
	}
	return doc, nil
}

// classify wraps a transport failure into the extraction error kinds
func classify(pageURL string, err error) error {
	kind := KindNavigation
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		kind = KindTimeout
	}
	return &Error{Kind: kind, URL: pageURL, Err: err}
}

// parseError wraps a selector miss on a successfully fetched page
func parseError(pageURL string, err error) error {
	return &Error{Kind: KindParse, URL: pageURL, Err: err}
}
