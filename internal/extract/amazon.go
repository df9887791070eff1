package extract

import (
	"context"
	"errors"
	"log"
	"strings"
)

// Amazon extracts from amazon product pages.
type Amazon struct {
	fetcher *Fetcher
}

func NewAmazon(fetcher *Fetcher) *Amazon {
	return &Amazon{fetcher: fetcher}
}

func (a *Amazon) VerifyURL(url string) bool {
	return strings.Contains(strings.ToLower(url), "amazon")
}

// Price handling is tricky on Amazon (deal price, regular price, etc.)
// so several selectors are tried in order.
var amazonPriceSelectors = []string{
	"#corePriceDisplay_desktop_feature_div .a-price-whole",
	".a-price-whole",
	"#priceblock_ourprice",
	"#priceblock_dealprice",
	".a-offscreen",
}

func (a *Amazon) Extract(ctx context.Context, url string) (*Result, error) {
	log.Printf("Extractor: fetching Amazon URL %s", url)

	doc, err := a.fetcher.Document(ctx, url)
	if err != nil {
		return nil, err
	}

	title := strings.TrimSpace(doc.Find("#productTitle").First().Text())
	if title == "" {
		title = strings.TrimSpace(doc.Find("h1").First().Text())
	}
	if title == "" {
		title = "Unknown Product"
	}

	var price float64
	found := false
	for _, selector := range amazonPriceSelectors {
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

	availability := strings.ToLower(doc.Find("#availability").First().Text())
	inStock := !strings.Contains(availability, "out of stock") &&
		!strings.Contains(availability, "currently unavailable")

	imageURL, _ := doc.Find("#landingImage").First().Attr("src")

	return &Result{
		Title:        title,
		Price:        price,
		Currency:     "INR",
		Availability: inStock,
		ImageURL:     imageURL,
	}, nil
}
