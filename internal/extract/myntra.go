package extract

import (
	"context"
	"errors"
	"log"
	"strings"
)

// Myntra extracts from myntra product pages.
type Myntra struct {
	fetcher *Fetcher
}

func NewMyntra(fetcher *Fetcher) *Myntra {
	return &Myntra{fetcher: fetcher}
}

func (m *Myntra) VerifyURL(url string) bool {
	return strings.Contains(strings.ToLower(url), "myntra")
}

func (m *Myntra) Extract(ctx context.Context, url string) (*Result, error) {
	log.Printf("Extractor: fetching Myntra URL %s", url)

	doc, err := m.fetcher.Document(ctx, url)
	if err != nil {
		return nil, err
	}

	brand := strings.TrimSpace(doc.Find(".pdp-title").First().Text())
	name := strings.TrimSpace(doc.Find(".pdp-name").First().Text())
	title := strings.TrimSpace(brand + " " + name)
	if title == "" {
		return nil, parseError(url, errors.New("no title element matched"))
	}

	priceText := strings.TrimSpace(doc.Find(".pdp-price strong").First().Text())
	price, perr := parsePrice(priceText)
	if perr != nil {
		return nil, parseError(url, perr)
	}

	imageURL, _ := doc.Find("meta[property='og:image']").Attr("content")

	return &Result{
		Title:        title,
		Price:        price,
		Currency:     "INR",
		Availability: true,
		ImageURL:     imageURL,
	}, nil
}
