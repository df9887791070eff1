package services

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/pricesniper/backend/internal/metrics"
	"github.com/pricesniper/backend/internal/models"
	"github.com/pricesniper/backend/internal/storage"
)

const urgentDrainInterval = 5 * time.Second

// Scheduler enumerates tracked products on a fixed cadence and
// dispatches one independent sampling job per product through a
// bounded worker pool. One product's failure never cancels, delays,
// or corrupts the jobs of the others.
type Scheduler struct {
	products    storage.ProductStore
	sampler     *Sampler
	interval    time.Duration
	concurrency int

	// On-demand "refresh all" requests collapse into one pending sweep
	sweepCh chan struct{}

	// Priority queue for user-requested single refreshes
	urgentQueue []string
	urgentMu    sync.Mutex

	mu            sync.RWMutex
	lastSweepTime time.Time
	samplesToday  int
	failuresToday int
	lastStatsDay  time.Time
	sweepRunning  bool
}

// SchedulerStatus reports scheduler state for the API layer.
type SchedulerStatus struct {
	LastSweepTime time.Time `json:"last_sweep_time"`
	NextSweepTime time.Time `json:"next_sweep_time"`
	SamplesToday  int       `json:"samples_today"`
	FailuresToday int       `json:"failures_today"`
	Concurrency   int       `json:"concurrency"`
	QueueSize     int       `json:"queue_size"`
}

func NewScheduler(products storage.ProductStore, sampler *Sampler, interval time.Duration, concurrency int) *Scheduler {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Scheduler{
		products:    products,
		sampler:     sampler,
		interval:    interval,
		concurrency: concurrency,
		sweepCh:     make(chan struct{}, 1),
	}
}

// RefreshOne queues a single product for an urgent refresh and returns
// its queue position (1-indexed).
func (s *Scheduler) RefreshOne(productID string) int {
	s.urgentMu.Lock()
	defer s.urgentMu.Unlock()

	for i, id := range s.urgentQueue {
		if id == productID {
			return i + 1
		}
	}
	s.urgentQueue = append(s.urgentQueue, productID)
	metrics.RefreshQueueSize.Set(float64(len(s.urgentQueue)))
	log.Printf("Scheduler: queued refresh for product %s (queue size: %d)", productID, len(s.urgentQueue))
	return len(s.urgentQueue)
}

// RefreshAll requests a full sweep ahead of the next cadence tick.
func (s *Scheduler) RefreshAll() {
	select {
	case s.sweepCh <- struct{}{}:
		log.Println("Scheduler: full refresh requested")
	default:
		// A sweep is already pending
	}
}

// GetQueueSize returns the current urgent queue size.
func (s *Scheduler) GetQueueSize() int {
	s.urgentMu.Lock()
	defer s.urgentMu.Unlock()
	return len(s.urgentQueue)
}

// GetStatus returns the current status.
func (s *Scheduler) GetStatus() SchedulerStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return SchedulerStatus{
		LastSweepTime: s.lastSweepTime,
		NextSweepTime: s.lastSweepTime.Add(s.interval),
		SamplesToday:  s.samplesToday,
		FailuresToday: s.failuresToday,
		Concurrency:   s.concurrency,
		QueueSize:     s.GetQueueSize(),
	}
}

// Start begins the background sampling loop.
func (s *Scheduler) Start(ctx context.Context) {
	log.Printf("Scheduler started: sweeping all products every %v with %d workers", s.interval, s.concurrency)

	// Run immediately on startup
	s.runSweep(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	urgent := time.NewTicker(urgentDrainInterval)
	defer urgent.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Scheduler stopping...")
			return
		case <-ticker.C:
			s.runSweep(ctx)
		case <-s.sweepCh:
			s.runSweep(ctx)
		case <-urgent.C:
			s.drainUrgent(ctx)
		}
	}
}

// resetDailyStatsIfNeeded resets the counters at midnight
func (s *Scheduler) resetDailyStatsIfNeeded() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	if s.lastStatsDay.Before(today) {
		if !s.lastStatsDay.IsZero() {
			log.Printf("Scheduler: daily stats reset (previous day: %d samples, %d failures)", s.samplesToday, s.failuresToday)
		}
		s.samplesToday = 0
		s.failuresToday = 0
		s.lastStatsDay = today
	}
}

// runSweep samples every tracked product once through the worker pool.
func (s *Scheduler) runSweep(ctx context.Context) {
	s.mu.Lock()
	if s.sweepRunning {
		s.mu.Unlock()
		log.Println("Scheduler: sweep already running, skipping")
		return
	}
	s.sweepRunning = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.sweepRunning = false
		s.mu.Unlock()
	}()

	s.resetDailyStatsIfNeeded()
	start := time.Now()

	products, err := s.products.ListProducts()
	if err != nil {
		log.Printf("Scheduler: failed to list products: %v", err)
		return
	}
	metrics.ProductsTracked.Set(float64(len(products)))
	if len(products) == 0 {
		log.Println("Scheduler: no products to sample")
		return
	}

	log.Printf("Scheduler: sweeping %d products", len(products))
	succeeded, failed := s.sampleAll(ctx, products)

	s.mu.Lock()
	s.samplesToday += succeeded
	s.failuresToday += failed
	s.lastSweepTime = time.Now()
	s.mu.Unlock()

	metrics.SweepDuration.Observe(time.Since(start).Seconds())
	log.Printf("Scheduler: sweep complete (%d ok, %d failed) in %v", succeeded, failed, time.Since(start).Round(time.Millisecond))
}

// drainUrgent samples any user-requested products ahead of the cadence.
func (s *Scheduler) drainUrgent(ctx context.Context) {
	s.urgentMu.Lock()
	ids := s.urgentQueue
	s.urgentQueue = nil
	s.urgentMu.Unlock()
	metrics.RefreshQueueSize.Set(0)

	if len(ids) == 0 {
		return
	}

	var products []models.Product
	for _, id := range ids {
		product, err := s.products.ProductByID(id)
		if err != nil || product == nil {
			log.Printf("Scheduler: urgent refresh skipped, product %s not found", id)
			continue
		}
		products = append(products, *product)
	}
	if len(products) == 0 {
		return
	}

	log.Printf("Scheduler: processing %d urgent refresh requests", len(products))
	succeeded, failed := s.sampleAll(ctx, products)

	s.mu.Lock()
	s.samplesToday += succeeded
	s.failuresToday += failed
	s.mu.Unlock()
}

// sampleAll runs one job per product through the bounded pool and
// waits for them all. Each job is independent: a failure or timeout in
// one leaves the rest untouched.
func (s *Scheduler) sampleAll(ctx context.Context, products []models.Product) (succeeded, failed int) {
	jobs := make(chan models.Product)
	var mu sync.Mutex
	var wg sync.WaitGroup

	for i := 0; i < s.concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for product := range jobs {
				err := s.sampler.SampleProduct(ctx, product)
				mu.Lock()
				if err != nil {
					failed++
				} else {
					succeeded++
				}
				mu.Unlock()
			}
		}()
	}

	for _, product := range products {
		select {
		case <-ctx.Done():
			// Stop enqueueing; in-flight jobs drain on their own
			close(jobs)
			wg.Wait()
			return succeeded, failed
		case jobs <- product:
		}
	}
	close(jobs)
	wg.Wait()
	return succeeded, failed
}
