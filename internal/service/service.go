package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"littlelens/backend/internal/billing"
	"littlelens/backend/internal/cache"
	"littlelens/backend/internal/domain"
	"littlelens/backend/internal/store"
)

type actorContextKey struct{}

func WithActor(ctx context.Context, actor domain.Actor) context.Context {
	return context.WithValue(ctx, actorContextKey{}, actor)
}

func ActorFromContext(ctx context.Context) (domain.Actor, bool) {
	actor, ok := ctx.Value(actorContextKey{}).(domain.Actor)
	return actor, ok
}

const (
	catalogCacheKey     = "catalog:v1"
	suggestLimit        = 10
	defaultCatalogTTL   = 5 * time.Minute
	backgroundOpTimeout = 10 * time.Second
)

type Service struct {
	repo       store.Repository
	sessions   *billing.Manager
	catalog    cache.CatalogCache
	catalogTTL time.Duration

	customerMu sync.RWMutex
	customers  []domain.Customer
	loaded     bool
}

func New(repo store.Repository, sessions *billing.Manager, catalog cache.CatalogCache, catalogTTL time.Duration) *Service {
	if sessions == nil {
		sessions = billing.NewManager()
	}
	if catalog == nil {
		catalog = cache.NoopCatalogCache{}
	}
	if catalogTTL <= 0 {
		catalogTTL = defaultCatalogTTL
	}

	return &Service{
		repo:       repo,
		sessions:   sessions,
		catalog:    catalog,
		catalogTTL: catalogTTL,
	}
}

func requireAdmin(ctx context.Context) error {
	actor, ok := ActorFromContext(ctx)
	if !ok || actor.Role != "admin" {
		return fmt.Errorf("admin role required")
	}
	return nil
}

// LoadCatalog merges the curated packages and the ad-hoc pos_items into the
// sellable item list. Packages win name collisions; package prices are stored
// as strings and parse to 0 when malformed. Each source is loaded best-effort
// so a failure on one side still yields a usable catalog.
func (s *Service) LoadCatalog(ctx context.Context, refresh bool) ([]domain.Product, error) {
	if !refresh {
		if cached, ok, err := s.catalog.Get(ctx, catalogCacheKey); err != nil {
			log.Printf("[service] WARN: catalog cache read failed: %v", err)
		} else if ok {
			return cached, nil
		}
	}

	products := make([]domain.Product, 0, 32)
	seen := make(map[string]struct{}, 32)
	loadedAny := false
	var lastErr error

	packages, err := s.repo.ListPackages(ctx)
	if err != nil {
		log.Printf("[service] WARN: failed to load packages for catalog: %v", err)
		lastErr = err
	} else {
		loadedAny = true
		for _, pkg := range packages {
			if pkg.Name == "" {
				continue
			}
			if _, exists := seen[pkg.Name]; exists {
				continue
			}
			seen[pkg.Name] = struct{}{}
			products = append(products, domain.Product{Name: pkg.Name, Rate: parsePrice(pkg.Price)})
		}
	}

	posItems, err := s.repo.ListPOSItems(ctx)
	if err != nil {
		log.Printf("[service] WARN: failed to load pos items for catalog: %v", err)
		lastErr = err
	} else {
		loadedAny = true
		for _, item := range posItems {
			if item.Name == "" {
				continue
			}
			if _, exists := seen[item.Name]; exists {
				continue
			}
			seen[item.Name] = struct{}{}
			products = append(products, domain.Product{Name: item.Name, Rate: item.Rate})
		}
	}

	if !loadedAny {
		return nil, fmt.Errorf("load catalog: %w", lastErr)
	}

	if err := s.catalog.Set(ctx, catalogCacheKey, products, s.catalogTTL); err != nil {
		log.Printf("[service] WARN: catalog cache write failed: %v", err)
	}
	return products, nil
}

// parsePrice mirrors the permissive content-editor format: a leading numeric
// token with optional separators, anything unparseable priced at 0.
func parsePrice(raw string) float64 {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.ReplaceAll(cleaned, ",", "")
	value, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0
	}
	return value
}

func (s *Service) CreateBillSession(ctx context.Context) (domain.BillView, error) {
	sessionID := s.sessions.Create()
	return s.GetBill(ctx, sessionID)
}

func (s *Service) GetBill(_ context.Context, sessionID string) (domain.BillView, error) {
	var view domain.BillView
	err := s.sessions.With(sessionID, func(bill *billing.Bill) error {
		view = billView(sessionID, bill)
		return nil
	})
	return view, err
}

// AddBillItem appends a line to the session bill. Names unknown to the
// catalog are saved to pos_items in the background so they autocomplete next
// time; that save is advisory and its failure never reaches the caller.
func (s *Service) AddBillItem(ctx context.Context, sessionID string, name string, rate float64, qty int) (domain.BillView, error) {
	var view domain.BillView
	var added domain.BillItem
	err := s.sessions.With(sessionID, func(bill *billing.Bill) error {
		item, err := bill.AddItem(name, rate, qty)
		if err != nil {
			return err
		}
		added = item
		view = billView(sessionID, bill)
		return nil
	})
	if err != nil {
		return domain.BillView{}, err
	}

	if !s.catalogKnows(ctx, added.Name) {
		go s.saveCatalogItem(added.Name, added.Rate)
	}
	return view, nil
}

// catalogKnows reports whether a case-insensitive match for name already
// exists in the merged catalog. Errors read as "unknown" so the auto-save
// stays best-effort.
func (s *Service) catalogKnows(ctx context.Context, name string) bool {
	products, err := s.LoadCatalog(ctx, false)
	if err != nil {
		return false
	}
	for _, product := range products {
		if strings.EqualFold(product.Name, name) {
			return true
		}
	}
	return false
}

func (s *Service) saveCatalogItem(name string, rate float64) {
	ctx, cancel := context.WithTimeout(context.Background(), backgroundOpTimeout)
	defer cancel()

	_, err := s.repo.CreatePOSItem(ctx, domain.POSItem{
		Name:      name,
		Rate:      rate,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		log.Printf("[service] WARN: failed to auto-save catalog item name=%q: %v", name, err)
		return
	}
	if err := s.catalog.Invalidate(ctx, catalogCacheKey); err != nil {
		log.Printf("[service] WARN: catalog cache invalidate failed: %v", err)
	}
}

func (s *Service) RemoveBillItem(_ context.Context, sessionID string, itemID string) (domain.BillView, error) {
	var view domain.BillView
	err := s.sessions.With(sessionID, func(bill *billing.Bill) error {
		bill.RemoveItem(itemID)
		view = billView(sessionID, bill)
		return nil
	})
	return view, err
}

func (s *Service) SetBillDiscount(_ context.Context, sessionID string, percent float64) (domain.BillView, error) {
	var view domain.BillView
	err := s.sessions.With(sessionID, func(bill *billing.Bill) error {
		if err := bill.SetDiscountPercent(percent); err != nil {
			return err
		}
		view = billView(sessionID, bill)
		return nil
	})
	if err != nil {
		return domain.BillView{}, err
	}
	return view, nil
}

// SetBillCustomer records the bill's customer identity. A non-empty
// customerID binds an existing record; otherwise the free-typed name and
// phone are kept and any previous binding is dropped.
func (s *Service) SetBillCustomer(ctx context.Context, sessionID string, customerID string, name string, phone string) (domain.BillView, error) {
	var bound *domain.Customer
	if customerID != "" {
		customer, err := s.repo.GetCustomerByID(ctx, customerID)
		if err != nil {
			return domain.BillView{}, err
		}
		bound = customer
	}

	var view domain.BillView
	err := s.sessions.With(sessionID, func(bill *billing.Bill) error {
		if bound != nil {
			bill.BindCustomer(bound.ID, bound.Name, bound.Phone)
		} else {
			bill.SetCustomer(name, phone)
		}
		view = billView(sessionID, bill)
		return nil
	})
	if err != nil {
		return domain.BillView{}, err
	}
	return view, nil
}

func (s *Service) ClearBill(_ context.Context, sessionID string) (domain.BillView, error) {
	var view domain.BillView
	err := s.sessions.With(sessionID, func(bill *billing.Bill) error {
		bill.Clear()
		view = billView(sessionID, bill)
		return nil
	})
	return view, err
}

// CompleteBill commits the session bill: it resolves the customer, writes
// the customer and the transaction snapshot in sequence, then resets the
// session. The two writes are not atomic; a failure between them leaves a
// customer without its transaction, which the reconciliation report surfaces.
func (s *Service) CompleteBill(ctx context.Context, sessionID string) (domain.Transaction, error) {
	var created domain.Transaction
	err := s.sessions.With(sessionID, func(bill *billing.Bill) error {
		items := bill.Items()
		if len(items) == 0 {
			return billing.ErrEmptyBill
		}
		if bill.CustomerName == "" || bill.CustomerPhone == "" {
			return billing.ErrMissingCustomerInfo
		}

		customerID, err := s.resolveCustomer(ctx, bill)
		if err != nil {
			return fmt.Errorf("complete bill: %w", err)
		}

		totals := bill.Totals()
		tx, err := s.repo.CreateTransaction(ctx, domain.Transaction{
			CustomerID:      customerID,
			CustomerName:    bill.CustomerName,
			CustomerPhone:   bill.CustomerPhone,
			Items:           items,
			Subtotal:        totals.Subtotal,
			DiscountPercent: totals.DiscountPercent,
			DiscountAmount:  totals.DiscountAmount,
			GrandTotal:      totals.GrandTotal,
			Status:          domain.TxStatusPaid,
			CreatedAt:       time.Now().UTC(),
		})
		if err != nil {
			return fmt.Errorf("complete bill: %w", err)
		}

		created = *tx
		bill.Clear()
		return nil
	})
	if err != nil {
		return domain.Transaction{}, err
	}

	if err := s.RefreshCustomers(ctx); err != nil {
		log.Printf("[service] WARN: customer cache refresh after commit failed: %v", err)
	}
	return created, nil
}

// resolveCustomer maps the bill's identity fields to a persistent customer
// id. An explicit binding wins; otherwise an exact phone match reuses the
// existing record (its stored name is never overwritten), and an unknown
// phone creates a walk-in record.
func (s *Service) resolveCustomer(ctx context.Context, bill *billing.Bill) (string, error) {
	if bill.BoundCustomerID != "" {
		if err := s.repo.IncrementCustomerBookings(ctx, bill.BoundCustomerID, 1); err != nil {
			return "", err
		}
		return bill.BoundCustomerID, nil
	}

	if existing := s.lookupCustomerByPhone(ctx, bill.CustomerPhone); existing != nil {
		if err := s.repo.IncrementCustomerBookings(ctx, existing.ID, 1); err != nil {
			return "", err
		}
		return existing.ID, nil
	}

	customer, err := s.repo.CreateCustomer(ctx, domain.Customer{
		ID:            uuid.NewString(),
		Name:          bill.CustomerName,
		Phone:         bill.CustomerPhone,
		Source:        domain.SourceOfflinePOS,
		TotalBookings: 1,
		CreatedAt:     time.Now().UTC(),
	})
	if err != nil {
		return "", err
	}
	return customer.ID, nil
}

// lookupCustomerByPhone checks the in-process customer list first and falls
// back to the store when the list has not been loaded yet.
func (s *Service) lookupCustomerByPhone(ctx context.Context, phone string) *domain.Customer {
	s.customerMu.RLock()
	loaded := s.loaded
	for i := range s.customers {
		if s.customers[i].Phone == phone {
			match := s.customers[i]
			s.customerMu.RUnlock()
			return &match
		}
	}
	s.customerMu.RUnlock()
	if loaded {
		return nil
	}

	customer, err := s.repo.FindCustomerByPhone(ctx, phone)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			log.Printf("[service] WARN: customer phone lookup failed: %v", err)
		}
		return nil
	}
	return customer
}

// RefreshCustomers reloads the in-process customer list used by the
// autocomplete and the phone-match path.
func (s *Service) RefreshCustomers(ctx context.Context) error {
	customers, err := s.repo.ListCustomers(ctx)
	if err != nil {
		return err
	}

	s.customerMu.Lock()
	s.customers = customers
	s.loaded = true
	s.customerMu.Unlock()
	return nil
}

// SuggestCustomers returns advisory autocomplete matches: case-insensitive
// substring on the name, or substring on the phone.
func (s *Service) SuggestCustomers(ctx context.Context, query string) ([]domain.Customer, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []domain.Customer{}, nil
	}

	s.customerMu.RLock()
	loaded := s.loaded
	s.customerMu.RUnlock()
	if !loaded {
		if err := s.RefreshCustomers(ctx); err != nil {
			return nil, err
		}
	}

	lowered := strings.ToLower(query)
	matches := make([]domain.Customer, 0, suggestLimit)

	s.customerMu.RLock()
	defer s.customerMu.RUnlock()
	for _, customer := range s.customers {
		if strings.Contains(strings.ToLower(customer.Name), lowered) || strings.Contains(customer.Phone, query) {
			matches = append(matches, customer)
			if len(matches) == suggestLimit {
				break
			}
		}
	}
	return matches, nil
}

// CustomerHistory returns the customer's committed transactions, newest
// first. Ordering happens here rather than in the store: records missing a
// timestamp sort oldest, and same-instant records are broken by id so the
// order is stable across reads.
func (s *Service) CustomerHistory(ctx context.Context, customerID string) ([]domain.Transaction, error) {
	if customerID == "" {
		return nil, store.ErrValidation
	}

	transactions, err := s.repo.ListTransactionsByCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}

	sort.Slice(transactions, func(i, j int) bool {
		a, b := transactions[i], transactions[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID > b.ID
	})
	return transactions, nil
}

func (s *Service) ListCustomers(ctx context.Context) ([]domain.Customer, error) {
	return s.repo.ListCustomers(ctx)
}

func (s *Service) CreateCustomer(ctx context.Context, req domain.CustomerCreateRequest) (domain.Customer, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Phone = strings.TrimSpace(req.Phone)
	if req.Name == "" || req.Phone == "" {
		return domain.Customer{}, store.ErrValidation
	}
	if req.Source == "" {
		req.Source = domain.SourceOffline
	}

	if _, err := s.repo.FindCustomerByPhone(ctx, req.Phone); err == nil {
		return domain.Customer{}, store.ErrDuplicate
	} else if !errors.Is(err, store.ErrNotFound) {
		return domain.Customer{}, err
	}

	customer, err := s.repo.CreateCustomer(ctx, domain.Customer{
		ID:          uuid.NewString(),
		Name:        req.Name,
		Phone:       req.Phone,
		Email:       strings.TrimSpace(req.Email),
		Source:      req.Source,
		BabyDetails: req.BabyDetails,
		Notes:       req.Notes,
		CreatedAt:   time.Now().UTC(),
	})
	if err != nil {
		return domain.Customer{}, err
	}

	if err := s.RefreshCustomers(ctx); err != nil {
		log.Printf("[service] WARN: customer cache refresh after create failed: %v", err)
	}
	return *customer, nil
}

func (s *Service) UpdateCustomer(ctx context.Context, id string, req domain.CustomerUpdateRequest) (domain.Customer, error) {
	if id == "" {
		return domain.Customer{}, store.ErrValidation
	}
	if req.Name != nil && strings.TrimSpace(*req.Name) == "" {
		return domain.Customer{}, store.ErrValidation
	}
	if req.Phone != nil {
		phone := strings.TrimSpace(*req.Phone)
		if phone == "" {
			return domain.Customer{}, store.ErrValidation
		}
		if existing, err := s.repo.FindCustomerByPhone(ctx, phone); err == nil && existing.ID != id {
			return domain.Customer{}, store.ErrDuplicate
		} else if err != nil && !errors.Is(err, store.ErrNotFound) {
			return domain.Customer{}, err
		}
		req.Phone = &phone
	}

	updated, err := s.repo.UpdateCustomer(ctx, id, req)
	if err != nil {
		return domain.Customer{}, err
	}

	if err := s.RefreshCustomers(ctx); err != nil {
		log.Printf("[service] WARN: customer cache refresh after update failed: %v", err)
	}
	return *updated, nil
}

func (s *Service) DeleteCustomer(ctx context.Context, id string) error {
	if err := requireAdmin(ctx); err != nil {
		return err
	}
	if id == "" {
		return store.ErrValidation
	}
	if err := s.repo.DeleteCustomer(ctx, id); err != nil {
		return err
	}
	if err := s.RefreshCustomers(ctx); err != nil {
		log.Printf("[service] WARN: customer cache refresh after delete failed: %v", err)
	}
	return nil
}

func (s *Service) ListTransactions(ctx context.Context) ([]domain.Transaction, error) {
	return s.repo.ListTransactions(ctx)
}

func (s *Service) GetTransaction(ctx context.Context, id string) (domain.Transaction, error) {
	if id == "" {
		return domain.Transaction{}, store.ErrValidation
	}
	tx, err := s.repo.GetTransactionByID(ctx, id)
	if err != nil {
		return domain.Transaction{}, err
	}
	return *tx, nil
}

func (s *Service) DeleteTransaction(ctx context.Context, id string) error {
	if err := requireAdmin(ctx); err != nil {
		return err
	}
	if id == "" {
		return store.ErrValidation
	}
	return s.repo.DeleteTransaction(ctx, id)
}

// SubmitMessage accepts a public booking-form submission.
func (s *Service) SubmitMessage(ctx context.Context, req domain.MessageCreateRequest) (domain.Message, error) {
	req.ParentName = strings.TrimSpace(req.ParentName)
	req.Phone = strings.TrimSpace(req.Phone)
	if req.ParentName == "" || req.Phone == "" {
		return domain.Message{}, store.ErrValidation
	}

	msg, err := s.repo.CreateMessage(ctx, domain.Message{
		CustomerID:    req.CustomerID,
		ParentName:    req.ParentName,
		BabyAge:       req.BabyAge,
		ShootType:     req.ShootType,
		PreferredDate: req.PreferredDate,
		Phone:         req.Phone,
		Email:         strings.TrimSpace(req.Email),
		Message:       req.Message,
		Read:          false,
		CreatedAt:     time.Now().UTC(),
	})
	if err != nil {
		return domain.Message{}, err
	}
	return *msg, nil
}

func (s *Service) ListMessages(ctx context.Context) ([]domain.Message, error) {
	return s.repo.ListMessages(ctx)
}

func (s *Service) SetMessageRead(ctx context.Context, id string, read bool) error {
	if id == "" {
		return store.ErrValidation
	}
	return s.repo.SetMessageRead(ctx, id, read)
}

func (s *Service) DeleteMessage(ctx context.Context, id string) error {
	if id == "" {
		return store.ErrValidation
	}
	return s.repo.DeleteMessage(ctx, id)
}

func (s *Service) ListTestimonials(ctx context.Context) ([]domain.Testimonial, error) {
	return s.repo.ListTestimonials(ctx)
}

func (s *Service) CreateTestimonial(ctx context.Context, req domain.Testimonial) (domain.Testimonial, error) {
	if err := requireAdmin(ctx); err != nil {
		return domain.Testimonial{}, err
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Text = strings.TrimSpace(req.Text)
	if req.Name == "" || req.Text == "" || req.Rating < 1 || req.Rating > 5 {
		return domain.Testimonial{}, store.ErrValidation
	}
	req.ID = ""
	req.CreatedAt = time.Now().UTC()

	created, err := s.repo.CreateTestimonial(ctx, req)
	if err != nil {
		return domain.Testimonial{}, err
	}
	return *created, nil
}

func (s *Service) UpdateTestimonial(ctx context.Context, req domain.Testimonial) (domain.Testimonial, error) {
	if err := requireAdmin(ctx); err != nil {
		return domain.Testimonial{}, err
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Text = strings.TrimSpace(req.Text)
	if req.ID == "" || req.Name == "" || req.Text == "" || req.Rating < 1 || req.Rating > 5 {
		return domain.Testimonial{}, store.ErrValidation
	}

	updated, err := s.repo.UpdateTestimonial(ctx, req)
	if err != nil {
		return domain.Testimonial{}, err
	}
	return *updated, nil
}

func (s *Service) DeleteTestimonial(ctx context.Context, id string) error {
	if err := requireAdmin(ctx); err != nil {
		return err
	}
	if id == "" {
		return store.ErrValidation
	}
	return s.repo.DeleteTestimonial(ctx, id)
}

func (s *Service) ListPackages(ctx context.Context) ([]domain.PackageItem, error) {
	return s.repo.ListPackages(ctx)
}

func (s *Service) CreatePackage(ctx context.Context, req domain.PackageItem) (domain.PackageItem, error) {
	if err := requireAdmin(ctx); err != nil {
		return domain.PackageItem{}, err
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return domain.PackageItem{}, store.ErrValidation
	}
	req.ID = ""

	created, err := s.repo.CreatePackage(ctx, req)
	if err != nil {
		return domain.PackageItem{}, err
	}
	s.invalidateCatalog(ctx)
	return *created, nil
}

func (s *Service) UpdatePackage(ctx context.Context, req domain.PackageItem) (domain.PackageItem, error) {
	if err := requireAdmin(ctx); err != nil {
		return domain.PackageItem{}, err
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.ID == "" || req.Name == "" {
		return domain.PackageItem{}, store.ErrValidation
	}

	updated, err := s.repo.UpdatePackage(ctx, req)
	if err != nil {
		return domain.PackageItem{}, err
	}
	s.invalidateCatalog(ctx)
	return *updated, nil
}

func (s *Service) DeletePackage(ctx context.Context, id string) error {
	if err := requireAdmin(ctx); err != nil {
		return err
	}
	if id == "" {
		return store.ErrValidation
	}
	if err := s.repo.DeletePackage(ctx, id); err != nil {
		return err
	}
	s.invalidateCatalog(ctx)
	return nil
}

func (s *Service) invalidateCatalog(ctx context.Context) {
	if err := s.catalog.Invalidate(ctx, catalogCacheKey); err != nil {
		log.Printf("[service] WARN: catalog cache invalidate failed: %v", err)
	}
}

func (s *Service) ListImages(ctx context.Context) ([]domain.GalleryImage, error) {
	return s.repo.ListImages(ctx)
}

func (s *Service) CreateImage(ctx context.Context, req domain.GalleryImage) (domain.GalleryImage, error) {
	if err := requireAdmin(ctx); err != nil {
		return domain.GalleryImage{}, err
	}
	req.URL = strings.TrimSpace(req.URL)
	if req.URL == "" {
		return domain.GalleryImage{}, store.ErrValidation
	}
	req.ID = ""
	req.CreatedAt = time.Now().UTC()

	created, err := s.repo.CreateImage(ctx, req)
	if err != nil {
		return domain.GalleryImage{}, err
	}
	return *created, nil
}

func (s *Service) DeleteImage(ctx context.Context, id string) error {
	if err := requireAdmin(ctx); err != nil {
		return err
	}
	if id == "" {
		return store.ErrValidation
	}
	return s.repo.DeleteImage(ctx, id)
}

// GetSettings returns the single site settings document, or zero values when
// none has been saved yet.
func (s *Service) GetSettings(ctx context.Context) (domain.Settings, error) {
	settings, err := s.repo.GetSettings(ctx)
	if errors.Is(err, store.ErrNotFound) {
		return domain.Settings{}, nil
	}
	if err != nil {
		return domain.Settings{}, err
	}
	return *settings, nil
}

func (s *Service) SaveSettings(ctx context.Context, settings domain.Settings) error {
	if err := requireAdmin(ctx); err != nil {
		return err
	}
	return s.repo.SaveSettings(ctx, settings)
}

func (s *Service) DashboardStats(ctx context.Context) (domain.DashboardStats, error) {
	customers, err := s.repo.ListCustomers(ctx)
	if err != nil {
		return domain.DashboardStats{}, err
	}
	transactions, err := s.repo.ListTransactions(ctx)
	if err != nil {
		return domain.DashboardStats{}, err
	}
	packages, err := s.repo.ListPackages(ctx)
	if err != nil {
		return domain.DashboardStats{}, err
	}
	images, err := s.repo.ListImages(ctx)
	if err != nil {
		return domain.DashboardStats{}, err
	}
	messages, err := s.repo.ListMessages(ctx)
	if err != nil {
		return domain.DashboardStats{}, err
	}

	unread := 0
	for _, msg := range messages {
		if !msg.Read {
			unread++
		}
	}

	return domain.DashboardStats{
		Customers:      len(customers),
		Transactions:   len(transactions),
		Packages:       len(packages),
		GalleryImages:  len(images),
		UnreadMessages: unread,
	}, nil
}

// Reconcile surfaces the drift the non-atomic commit can leave behind:
// transactions pointing at deleted or never-created customers, and booking
// counters that disagree with the committed transaction count. A counter
// running high only counts as drift for POS-created customers, since online
// bookings raise the counter without a POS transaction.
func (s *Service) Reconcile(ctx context.Context) (domain.ReconciliationReport, error) {
	if err := requireAdmin(ctx); err != nil {
		return domain.ReconciliationReport{}, err
	}

	customers, err := s.repo.ListCustomers(ctx)
	if err != nil {
		return domain.ReconciliationReport{}, err
	}
	transactions, err := s.repo.ListTransactions(ctx)
	if err != nil {
		return domain.ReconciliationReport{}, err
	}

	byID := make(map[string]domain.Customer, len(customers))
	for _, customer := range customers {
		byID[customer.ID] = customer
	}

	orphaned := []domain.Transaction{}
	txCount := make(map[string]int, len(customers))
	for _, tx := range transactions {
		if _, exists := byID[tx.CustomerID]; !exists {
			orphaned = append(orphaned, tx)
			continue
		}
		txCount[tx.CustomerID]++
	}

	drift := []domain.CounterDrift{}
	for _, customer := range customers {
		count := txCount[customer.ID]
		counterLow := count > customer.TotalBookings
		counterHigh := customer.Source == domain.SourceOfflinePOS && customer.TotalBookings > count
		if !counterLow && !counterHigh {
			continue
		}
		drift = append(drift, domain.CounterDrift{
			CustomerID:       customer.ID,
			CustomerName:     customer.Name,
			TotalBookings:    customer.TotalBookings,
			TransactionCount: count,
		})
	}

	sort.Slice(drift, func(i, j int) bool { return drift[i].CustomerID < drift[j].CustomerID })

	return domain.ReconciliationReport{
		GeneratedAt:          time.Now().UTC().Format(time.RFC3339),
		OrphanedTransactions: orphaned,
		CounterDrift:         drift,
	}, nil
}

func billView(sessionID string, bill *billing.Bill) domain.BillView {
	return domain.BillView{
		SessionID:       sessionID,
		CustomerName:    bill.CustomerName,
		CustomerPhone:   bill.CustomerPhone,
		BoundCustomerID: bill.BoundCustomerID,
		Items:           bill.Items(),
		Totals:          bill.Totals(),
	}
}
