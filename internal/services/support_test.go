package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/pricesniper/backend/internal/extract"
	"github.com/pricesniper/backend/internal/models"
)

// fakeProductStore implements storage.ProductStore and
// storage.HistoryStore in memory.
type fakeProductStore struct {
	mu       sync.Mutex
	products map[string]models.Product
	points   []models.PricePoint
	nextID   uint

	commitErr error
	commits   int
}

func newFakeProductStore(products ...models.Product) *fakeProductStore {
	s := &fakeProductStore{products: make(map[string]models.Product)}
	for _, p := range products {
		s.products[p.ID] = p
	}
	return s
}

func (s *fakeProductStore) ListProducts() ([]models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Product, 0, len(s.products))
	for _, p := range s.products {
		out = append(out, p)
	}
	return out, nil
}

func (s *fakeProductStore) ProductByID(id string) (*models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.products[id]; ok {
		return &p, nil
	}
	return nil, nil
}

func (s *fakeProductStore) ProductByURL(url string) (*models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.products {
		if p.URL == url {
			return &p, nil
		}
	}
	return nil, nil
}

func (s *fakeProductStore) CreateProduct(p *models.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products[p.ID] = *p
	return nil
}

func (s *fakeProductStore) DeleteProduct(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.products, id)
	return nil
}

func (s *fakeProductStore) CommitSample(productID string, price float64, currency string, available bool, imageURL string, at time.Time) (*models.PricePoint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.commitErr != nil {
		return nil, s.commitErr
	}
	p, ok := s.products[productID]
	if !ok {
		return nil, fmt.Errorf("product %s not found", productID)
	}
	s.nextID++
	point := models.PricePoint{ID: s.nextID, ProductID: productID, Price: price, Currency: currency, CapturedAt: at}
	s.points = append(s.points, point)
	p.CurrentPrice = price
	p.IsAvailable = available
	p.LastCheckedAt = &at
	s.products[productID] = p
	s.commits++
	return &point, nil
}

func (s *fakeProductStore) QueryWindow(productID string, since time.Time) ([]models.PricePoint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.PricePoint
	for _, pt := range s.points {
		if pt.ProductID == productID && !pt.CapturedAt.Before(since) {
			out = append(out, pt)
		}
	}
	return out, nil
}

func (s *fakeProductStore) LatestPoint(productID string) (*models.PricePoint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var latest *models.PricePoint
	for i := range s.points {
		pt := s.points[i]
		if pt.ProductID != productID {
			continue
		}
		if latest == nil || pt.CapturedAt.After(latest.CapturedAt) {
			latest = &pt
		}
	}
	return latest, nil
}

func (s *fakeProductStore) commitCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.commits
}

// fakeAlertStore implements storage.AlertStore in memory with the same
// compare-and-set trigger semantics the gorm store provides.
type fakeAlertStore struct {
	mu     sync.Mutex
	alerts map[string]*models.Alert
}

func newFakeAlertStore(alerts ...*models.Alert) *fakeAlertStore {
	s := &fakeAlertStore{alerts: make(map[string]*models.Alert)}
	for _, a := range alerts {
		s.alerts[a.ID] = a
	}
	return s
}

func (s *fakeAlertStore) CreateAlert(a *models.Alert) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.alerts[a.ID] = a
	return nil
}

func (s *fakeAlertStore) ActiveAlerts(productID string) ([]models.Alert, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Alert
	for _, a := range s.alerts {
		if a.ProductID == productID && a.Status == models.AlertActive {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (s *fakeAlertStore) AlertsByProduct(productID string) ([]models.Alert, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Alert
	for _, a := range s.alerts {
		if a.ProductID == productID {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (s *fakeAlertStore) ListAlerts(limit, offset int) ([]models.Alert, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Alert
	for _, a := range s.alerts {
		out = append(out, *a)
	}
	return out, nil
}

func (s *fakeAlertStore) AtomicTrigger(alertID string, at time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.alerts[alertID]
	if !ok || a.Status != models.AlertActive {
		return false, nil
	}
	a.Status = models.AlertTriggered
	a.TriggeredAt = &at
	return true, nil
}

func (s *fakeAlertStore) CancelAlert(alertID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.alerts[alertID]
	if !ok || a.Status != models.AlertActive {
		return false, nil
	}
	a.Status = models.AlertCancelled
	return true, nil
}

func (s *fakeAlertStore) MarkNotified(alertID string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a, ok := s.alerts[alertID]; ok {
		a.NotifiedAt = &at
		a.NotifyError = ""
	}
	return nil
}

func (s *fakeAlertStore) RecordNotifyError(alertID string, msg string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a, ok := s.alerts[alertID]; ok {
		a.NotifyError = msg
	}
	return nil
}

func (s *fakeAlertStore) ListUnnotified() ([]models.Alert, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Alert
	for _, a := range s.alerts {
		if a.Status == models.AlertTriggered && a.NotifiedAt == nil {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (s *fakeAlertStore) get(id string) models.Alert {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.alerts[id]
}

// stubExtractor implements extract.Extractor with scripted behavior.
type stubExtractor struct {
	mu          sync.Mutex
	price       float64
	err         error
	delay       time.Duration
	inFlight    int
	maxInFlight int
	calls       int
}

func (e *stubExtractor) VerifyURL(string) bool { return true }

func (e *stubExtractor) Extract(ctx context.Context, url string) (*extract.Result, error) {
	e.mu.Lock()
	e.calls++
	e.inFlight++
	if e.inFlight > e.maxInFlight {
		e.maxInFlight = e.inFlight
	}
	price, err, delay := e.price, e.err, e.delay
	e.mu.Unlock()

	defer func() {
		e.mu.Lock()
		e.inFlight--
		e.mu.Unlock()
	}()

	if delay > 0 {
		select {
		case <-ctx.Done():
			return nil, &extract.Error{Kind: extract.KindTimeout, URL: url, Err: ctx.Err()}
		case <-time.After(delay):
		}
	}
	if err != nil {
		return nil, err
	}
	return &extract.Result{Title: "Stub", Price: price, Currency: "INR", Availability: true}, nil
}

func (e *stubExtractor) observedMax() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.maxInFlight
}

// fakeNotifier records deliveries and can be told to fail.
type fakeNotifier struct {
	mu        sync.Mutex
	delivered []string
	failFor   map[string]error
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{failFor: make(map[string]error)}
}

func (n *fakeNotifier) Deliver(_ context.Context, message, destination string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if err, ok := n.failFor[destination]; ok {
		return err
	}
	n.delivered = append(n.delivered, destination+": "+message)
	return nil
}

func (n *fakeNotifier) deliveredCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.delivered)
}
