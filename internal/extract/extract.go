// Package extract fetches one fresh price observation from a retailer
// product page. Retailers are selected through a dispatch table of
// Extractor implementations rather than any inheritance scheme.
package extract

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Kind classifies an extraction failure. Failures are values, not
// control flow: the sampler skips the cycle and moves on.
type Kind string

const (
	KindTimeout    Kind = "timeout"
	KindParse      Kind = "parse-failure"
	KindNavigation Kind = "navigation-failure"
)

// Error is the typed extraction failure.
type Error struct {
	Kind Kind
	URL  string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("extract %s: %s: %v", e.URL, e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the failure kind, or empty when err is not an
// extraction error.
func KindOf(err error) Kind {
	var ee *Error
	if errors.As(err, &ee) {
		return ee.Kind
	}
	return ""
}

// Result is a normalized observation from one product page.
type Result struct {
	Title        string
	Price        float64
	Currency     string
	Availability bool
	ImageURL     string
}

// Extractor is implemented once per retailer.
type Extractor interface {
	// VerifyURL reports whether this extractor handles the URL
	VerifyURL(url string) bool
	Extract(ctx context.Context, url string) (*Result, error)
}

// Registry selects an extractor for a URL.
type Registry struct {
	extractors []Extractor
}

func NewRegistry(extractors ...Extractor) *Registry {
	return &Registry{extractors: extractors}
}

// ErrUnsupportedURL is returned when no extractor claims the URL.
var ErrUnsupportedURL = errors.New("no extractor for URL")

func (r *Registry) For(url string) (Extractor, error) {
	for _, e := range r.extractors {
		if e.VerifyURL(url) {
			return e, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedURL, url)
}

// Supported reports whether any extractor claims the URL.
func (r *Registry) Supported(url string) bool {
	_, err := r.For(url)
	return err == nil
}

// parsePrice strips currency symbols, thousands separators, and
// whitespace from a scraped price string.
func parsePrice(text string) (float64, error) {
	var b strings.Builder
	for _, r := range text {
		if (r >= '0' && r <= '9') || r == '.' {
			b.WriteRune(r)
		}
	}
	cleaned := b.String()
	if cleaned == "" {
		return 0, fmt.Errorf("no digits in price text %q", text)
	}
	var price float64
	if _, err := fmt.Sscanf(cleaned, "%f", &price); err != nil {
		return 0, fmt.Errorf("parse price %q: %w", text, err)
	}
	return price, nil
}
