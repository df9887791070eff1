package services

import (
	"context"
	"log"
	"time"

	"github.com/pricesniper/backend/internal/extract"
	"github.com/pricesniper/backend/internal/metrics"
	"github.com/pricesniper/backend/internal/models"
	"github.com/pricesniper/backend/internal/storage"
)

// Sampler runs one product's pipeline: extract a fresh observation,
// commit it atomically, evaluate pending alerts against the committed
// price, and hand fired payloads to the dispatcher. The stages run
// sequentially; alert evaluation only ever sees a durably committed
// price.
type Sampler struct {
	products   storage.ProductStore
	registry   *extract.Registry
	engine     *AlertEngine
	dispatcher *Dispatcher
	jobTimeout time.Duration
}

func NewSampler(products storage.ProductStore, registry *extract.Registry, engine *AlertEngine, dispatcher *Dispatcher, jobTimeout time.Duration) *Sampler {
	return &Sampler{
		products:   products,
		registry:   registry,
		engine:     engine,
		dispatcher: dispatcher,
		jobTimeout: jobTimeout,
	}
}

// SampleProduct samples one product under a hard wall-clock limit.
// Any failure skips this cycle for this product only; the next cadence
// tick tries again. There is no in-cycle retry.
func (s *Sampler) SampleProduct(ctx context.Context, product models.Product) error {
	start := time.Now()
	jobCtx, cancel := context.WithTimeout(ctx, s.jobTimeout)
	defer cancel()

	extractor, err := s.registry.For(product.URL)
	if err != nil {
		metrics.SamplesTotal.WithLabelValues("extraction_failed").Inc()
		log.Printf("Sampler: no extractor for product %s (%s)", product.ID, product.URL)
		return err
	}

	result, err := extractor.Extract(jobCtx, product.URL)
	if err != nil {
		label := "extraction_failed"
		if extract.KindOf(err) == extract.KindTimeout {
			label = "timeout"
		}
		metrics.SamplesTotal.WithLabelValues(label).Inc()
		log.Printf("Sampler: extraction failed for product %s: %v", product.ID, err)
		return err
	}

	// Abandoned jobs must leave no partial write: check the deadline
	// once more before touching the store
	if err := jobCtx.Err(); err != nil {
		metrics.SamplesTotal.WithLabelValues("timeout").Inc()
		log.Printf("Sampler: job abandoned for product %s: %v", product.ID, err)
		return err
	}

	point, err := s.products.CommitSample(product.ID, result.Price, result.Currency, result.Availability, result.ImageURL, time.Now())
	if err != nil {
		metrics.SamplesTotal.WithLabelValues("persist_failed").Inc()
		log.Printf("Sampler: persist failed for product %s: %v", product.ID, err)
		return err
	}

	metrics.SamplesTotal.WithLabelValues("success").Inc()
	metrics.SampleDuration.Observe(time.Since(start).Seconds())

	// Alert evaluation runs only after the committed price
	fired, err := s.engine.Evaluate(&product, point.Price)
	if err != nil {
		log.Printf("Sampler: alert evaluation failed for product %s: %v", product.ID, err)
		return nil // the sample itself succeeded
	}
	if len(fired) > 0 {
		s.dispatcher.Dispatch(ctx, fired)
	}

	return nil
}
