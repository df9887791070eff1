package extract

import (
	"context"
	"errors"
	"log"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Flipkart extracts from flipkart product pages. Flipkart rotates its
// class names frequently, hence the selector lists.
type Flipkart struct {
	fetcher *Fetcher
}

func NewFlipkart(fetcher *Fetcher) *Flipkart {
	return &Flipkart{fetcher: fetcher}
}

func (f *Flipkart) VerifyURL(url string) bool {
	return strings.Contains(strings.ToLower(url), "flipkart")
}

var (
	flipkartTitleSelectors = []string{".B_NuCI", ".VU-ZEz", "h1 span", "h1"}
	flipkartPriceSelectors = []string{".hZ3P6w", ".Nx9bqj", "._30jeq3", "._16Jk6d"}
	flipkartStockSelectors = []string{"._16FRp0", "[class*='sold-out']", "[class*='unavailable']"}
)

func (f *Flipkart) Extract(ctx context.Context, url string) (*Result, error) {
	log.Printf("Extractor: fetching Flipkart URL %s", url)

	doc, err := f.fetcher.Document(ctx, url)
	if err != nil {
		return nil, err
	}

	title := "Unknown Product"
	for _, selector := range flipkartTitleSelectors {
		text := strings.TrimSpace(doc.Find(selector).First().Text())
		if len(text) > 3 {
			title = text
			break
		}
	}

	var price float64
	found := false
	for _, selector := range flipkartPriceSelectors {
		text := strings.TrimSpace(doc.Find(selector).First().Text())
		if text == "" {
			continue
		}
		if p, perr := parsePrice(text); perr == nil {
			price = p
			found = true
			break
		}
	}
	if !found {
		return nil, parseError(url, errors.New("no price element matched"))
	}

	inStock := true
	for _, selector := range flipkartStockSelectors {
		text := strings.ToLower(doc.Find(selector).First().Text())
		if strings.Contains(text, "sold out") || strings.Contains(text, "unavailable") {
			inStock = false
			break
		}
	}

	// The og:image meta tag is the most reliable source of a clean image
	imageURL, _ := doc.Find("meta[property='og:image']").Attr("content")
	if imageURL == "" {
		doc.Find("._396cs4, .DByuf4").EachWithBreak(func(_ int, s *goquery.Selection) bool {
			if src, ok := s.Attr("src"); ok && strings.Contains(src, "http") {
				imageURL = src
				return false
			}
			return true
		})
	}

	return &Result{
		Title:        title,
		Price:        price,
		Currency:     "INR",
		Availability: inStock,
		ImageURL:     imageURL,
	}, nil
}
