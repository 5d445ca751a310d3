package memory

import (
	"context"
	"log"
	"os"
	"slices"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"littlelens/backend/internal/domain"
	"littlelens/backend/internal/store"
	"littlelens/backend/internal/xid"
)

// Store is an in-memory Repository used for dev mode and tests. It also
// counts mutating operations so tests can assert that a failed precondition
// performed zero writes.
type Store struct {
	mu             sync.RWMutex
	writes         int
	packages       map[string]domain.PackageItem
	posItems       map[string]domain.POSItem
	customers      map[string]domain.Customer
	transactions   map[string]domain.Transaction
	messages       map[string]domain.Message
	testimonials   map[string]domain.Testimonial
	images         map[string]domain.GalleryImage
	settings       *domain.Settings
	usersByName    map[string]domain.UserAccount
	failMu         sync.Mutex
	failNextCreate map[string]error
}

func New() *Store {
	return &Store{
		packages:       make(map[string]domain.PackageItem),
		posItems:       make(map[string]domain.POSItem),
		customers:      make(map[string]domain.Customer),
		transactions:   make(map[string]domain.Transaction),
		messages:       make(map[string]domain.Message),
		testimonials:   make(map[string]domain.Testimonial),
		images:         make(map[string]domain.GalleryImage),
		usersByName:    seedUsers(),
		failNextCreate: make(map[string]error),
	}
}

// NewSeeded returns a store preloaded with demo catalog and customer data.
func NewSeeded() *Store {
	s := New()
	now := time.Now().UTC()

	for i, pkg := range []domain.PackageItem{
		{Name: "Newborn Package", Price: "15000", Description: "2 hour newborn session with props"},
		{Name: "Maternity Package", Price: "12000", Description: "Outdoor and studio maternity shoot"},
		{Name: "Cake Smash Package", Price: "9000", Description: "First birthday cake smash"},
	} {
		pkg.ID = xid.New("pkg")
		pkg.Order = i
		s.packages[pkg.ID] = pkg
	}

	for _, item := range []domain.POSItem{
		{Name: "Extra Print", Rate: 200},
		{Name: "Framed Photo 8x10", Rate: 1200},
		{Name: "Digital Copies", Rate: 2500},
	} {
		item.ID = xid.New("pos")
		item.CreatedAt = now
		s.posItems[item.ID] = item
	}

	for _, customer := range []domain.Customer{
		{Name: "Ananya Sharma", Phone: "9000000001", Email: "ananya@example.com", TotalBookings: 2, Source: domain.SourceOnline},
		{Name: "Priya Patel", Phone: "9000000002", TotalBookings: 1, Source: domain.SourceOfflinePOS},
	} {
		customer.ID = xid.New("cus")
		customer.CreatedAt = now
		s.customers[customer.ID] = customer
	}

	return s
}

// seedUsers builds the initial staff accounts for dev/demo mode. Credentials
// come from SEED_ADMIN_PASSWORD and SEED_STAFF_PASSWORD; hardcoded dev
// defaults are used with a warning when unset. Production deployments use
// the mongo-backed users collection instead.
func seedUsers() map[string]domain.UserAccount {
	adminPwd := envOr("SEED_ADMIN_PASSWORD", "admin123")
	staffPwd := envOr("SEED_STAFF_PASSWORD", "staff123")
	if os.Getenv("SEED_ADMIN_PASSWORD") == "" || os.Getenv("SEED_STAFF_PASSWORD") == "" {
		log.Println("[memory-store] WARNING: using default dev credentials. Set SEED_ADMIN_PASSWORD and SEED_STAFF_PASSWORD to override.")
	}

	now := time.Now().UTC()
	users := map[string]domain.UserAccount{}
	for _, u := range []struct {
		username string
		password string
		role     string
	}{
		{"admin", adminPwd, "admin"},
		{"staff", staffPwd, "staff"},
	} {
		hash, err := bcrypt.GenerateFromPassword([]byte(u.password), bcrypt.DefaultCost)
		if err != nil {
			log.Fatalf("[memory-store] failed to hash seed password for %s: %v", u.username, err)
		}
		users[u.username] = domain.UserAccount{
			Username:  u.username,
			Password:  string(hash),
			Role:      u.role,
			Active:    true,
			CreatedAt: now,
		}
	}
	return users
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// WriteCount reports the number of mutating repository calls so far.
func (s *Store) WriteCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.writes
}

// FailNext makes the next call of the named repository operation return err.
// Used by tests to exercise partial-failure paths.
func (s *Store) FailNext(op string, err error) {
	s.failMu.Lock()
	s.failNextCreate[op] = err
	s.failMu.Unlock()
}

func (s *Store) takeFailure(op string) error {
	s.failMu.Lock()
	defer s.failMu.Unlock()
	if err, ok := s.failNextCreate[op]; ok {
		delete(s.failNextCreate, op)
		return err
	}
	return nil
}

func (s *Store) ListPackages(_ context.Context) ([]domain.PackageItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := s.takeFailure("ListPackages"); err != nil {
		return nil, err
	}

	packages := make([]domain.PackageItem, 0, len(s.packages))
	for _, pkg := range s.packages {
		packages = append(packages, pkg)
	}
	slices.SortFunc(packages, func(a, b domain.PackageItem) int {
		if a.Order != b.Order {
			return a.Order - b.Order
		}
		return strings.Compare(a.ID, b.ID)
	})
	return packages, nil
}

func (s *Store) CreatePackage(_ context.Context, pkg domain.PackageItem) (*domain.PackageItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if pkg.Name == "" {
		return nil, store.ErrValidation
	}
	if pkg.ID == "" {
		pkg.ID = xid.New("pkg")
	}
	s.writes++
	s.packages[pkg.ID] = pkg
	created := pkg
	return &created, nil
}

func (s *Store) UpdatePackage(_ context.Context, pkg domain.PackageItem) (*domain.PackageItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.packages[pkg.ID]; !exists {
		return nil, store.ErrNotFound
	}
	s.writes++
	s.packages[pkg.ID] = pkg
	updated := pkg
	return &updated, nil
}

func (s *Store) DeletePackage(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.packages[id]; !exists {
		return store.ErrNotFound
	}
	s.writes++
	delete(s.packages, id)
	return nil
}

func (s *Store) ListPOSItems(_ context.Context) ([]domain.POSItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := s.takeFailure("ListPOSItems"); err != nil {
		return nil, err
	}

	items := make([]domain.POSItem, 0, len(s.posItems))
	for _, item := range s.posItems {
		items = append(items, item)
	}
	slices.SortFunc(items, func(a, b domain.POSItem) int {
		return strings.Compare(a.ID, b.ID)
	})
	return items, nil
}

func (s *Store) CreatePOSItem(_ context.Context, item domain.POSItem) (*domain.POSItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.takeFailure("CreatePOSItem"); err != nil {
		return nil, err
	}
	if item.Name == "" || item.Rate <= 0 {
		return nil, store.ErrValidation
	}
	if item.ID == "" {
		item.ID = xid.New("pos")
	}
	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now().UTC()
	}
	s.writes++
	s.posItems[item.ID] = item
	created := item
	return &created, nil
}

func (s *Store) ListCustomers(_ context.Context) ([]domain.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	customers := make([]domain.Customer, 0, len(s.customers))
	for _, customer := range s.customers {
		customers = append(customers, customer)
	}
	slices.SortFunc(customers, func(a, b domain.Customer) int {
		if a.CreatedAt.Equal(b.CreatedAt) {
			return strings.Compare(b.ID, a.ID)
		}
		if a.CreatedAt.After(b.CreatedAt) {
			return -1
		}
		return 1
	})
	return customers, nil
}

func (s *Store) GetCustomerByID(_ context.Context, id string) (*domain.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	customer, exists := s.customers[id]
	if !exists {
		return nil, store.ErrNotFound
	}
	found := customer
	return &found, nil
}

func (s *Store) FindCustomerByPhone(_ context.Context, phone string) (*domain.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, customer := range s.customers {
		if customer.Phone == phone {
			found := customer
			return &found, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *Store) CreateCustomer(_ context.Context, customer domain.Customer) (*domain.Customer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.takeFailure("CreateCustomer"); err != nil {
		return nil, err
	}
	if customer.Name == "" || customer.Phone == "" {
		return nil, store.ErrValidation
	}
	if customer.ID == "" {
		customer.ID = xid.New("cus")
	}
	if _, exists := s.customers[customer.ID]; exists {
		return nil, store.ErrDuplicate
	}
	if customer.CreatedAt.IsZero() {
		customer.CreatedAt = time.Now().UTC()
	}
	s.writes++
	s.customers[customer.ID] = customer
	created := customer
	return &created, nil
}

func (s *Store) UpdateCustomer(_ context.Context, id string, req domain.CustomerUpdateRequest) (*domain.Customer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	customer, exists := s.customers[id]
	if !exists {
		return nil, store.ErrNotFound
	}
	if req.Name != nil {
		customer.Name = *req.Name
	}
	if req.Phone != nil {
		customer.Phone = *req.Phone
	}
	if req.Email != nil {
		customer.Email = *req.Email
	}
	if req.BabyDetails != nil {
		customer.BabyDetails = *req.BabyDetails
	}
	if req.Notes != nil {
		customer.Notes = *req.Notes
	}
	s.writes++
	s.customers[id] = customer
	updated := customer
	return &updated, nil
}

func (s *Store) IncrementCustomerBookings(_ context.Context, id string, delta int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.takeFailure("IncrementCustomerBookings"); err != nil {
		return err
	}
	customer, exists := s.customers[id]
	if !exists {
		return store.ErrNotFound
	}
	s.writes++
	customer.TotalBookings += delta
	s.customers[id] = customer
	return nil
}

func (s *Store) DeleteCustomer(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.customers[id]; !exists {
		return store.ErrNotFound
	}
	s.writes++
	delete(s.customers, id)
	return nil
}

func (s *Store) CreateTransaction(_ context.Context, tx domain.Transaction) (*domain.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.takeFailure("CreateTransaction"); err != nil {
		return nil, err
	}
	if tx.CustomerID == "" || len(tx.Items) == 0 {
		return nil, store.ErrValidation
	}
	if tx.ID == "" {
		tx.ID = xid.New("tx")
	}
	if tx.CreatedAt.IsZero() {
		tx.CreatedAt = time.Now().UTC()
	}
	s.writes++
	s.transactions[tx.ID] = tx
	created := tx
	return &created, nil
}

func (s *Store) GetTransactionByID(_ context.Context, id string) (*domain.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tx, exists := s.transactions[id]
	if !exists {
		return nil, store.ErrNotFound
	}
	found := tx
	return &found, nil
}

func (s *Store) ListTransactions(_ context.Context) ([]domain.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	transactions := make([]domain.Transaction, 0, len(s.transactions))
	for _, tx := range s.transactions {
		transactions = append(transactions, tx)
	}
	slices.SortFunc(transactions, func(a, b domain.Transaction) int {
		if a.CreatedAt.Equal(b.CreatedAt) {
			return strings.Compare(b.ID, a.ID)
		}
		if a.CreatedAt.After(b.CreatedAt) {
			return -1
		}
		return 1
	})
	return transactions, nil
}

// ListTransactionsByCustomer returns matching transactions without any
// ordering guarantee; callers sort client-side.
func (s *Store) ListTransactionsByCustomer(_ context.Context, customerID string) ([]domain.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	transactions := make([]domain.Transaction, 0, 8)
	for _, tx := range s.transactions {
		if tx.CustomerID == customerID {
			transactions = append(transactions, tx)
		}
	}
	return transactions, nil
}

func (s *Store) DeleteTransaction(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.transactions[id]; !exists {
		return store.ErrNotFound
	}
	s.writes++
	delete(s.transactions, id)
	return nil
}

func (s *Store) CreateMessage(_ context.Context, msg domain.Message) (*domain.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if msg.ParentName == "" || msg.Phone == "" {
		return nil, store.ErrValidation
	}
	if msg.ID == "" {
		msg.ID = xid.New("msg")
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now().UTC()
	}
	s.writes++
	s.messages[msg.ID] = msg
	created := msg
	return &created, nil
}

func (s *Store) ListMessages(_ context.Context) ([]domain.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	messages := make([]domain.Message, 0, len(s.messages))
	for _, msg := range s.messages {
		messages = append(messages, msg)
	}
	slices.SortFunc(messages, func(a, b domain.Message) int {
		if a.CreatedAt.Equal(b.CreatedAt) {
			return strings.Compare(b.ID, a.ID)
		}
		if a.CreatedAt.After(b.CreatedAt) {
			return -1
		}
		return 1
	})
	return messages, nil
}

func (s *Store) SetMessageRead(_ context.Context, id string, read bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	msg, exists := s.messages[id]
	if !exists {
		return store.ErrNotFound
	}
	s.writes++
	msg.Read = read
	s.messages[id] = msg
	return nil
}

func (s *Store) DeleteMessage(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.messages[id]; !exists {
		return store.ErrNotFound
	}
	s.writes++
	delete(s.messages, id)
	return nil
}

func (s *Store) ListTestimonials(_ context.Context) ([]domain.Testimonial, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	testimonials := make([]domain.Testimonial, 0, len(s.testimonials))
	for _, t := range s.testimonials {
		testimonials = append(testimonials, t)
	}
	slices.SortFunc(testimonials, func(a, b domain.Testimonial) int {
		return strings.Compare(b.ID, a.ID)
	})
	return testimonials, nil
}

func (s *Store) CreateTestimonial(_ context.Context, t domain.Testimonial) (*domain.Testimonial, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t.Name == "" || t.Text == "" {
		return nil, store.ErrValidation
	}
	if t.ID == "" {
		t.ID = xid.New("tst")
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}
	s.writes++
	s.testimonials[t.ID] = t
	created := t
	return &created, nil
}

func (s *Store) UpdateTestimonial(_ context.Context, t domain.Testimonial) (*domain.Testimonial, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.testimonials[t.ID]; !exists {
		return nil, store.ErrNotFound
	}
	s.writes++
	s.testimonials[t.ID] = t
	updated := t
	return &updated, nil
}

func (s *Store) DeleteTestimonial(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.testimonials[id]; !exists {
		return store.ErrNotFound
	}
	s.writes++
	delete(s.testimonials, id)
	return nil
}

func (s *Store) ListImages(_ context.Context) ([]domain.GalleryImage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	images := make([]domain.GalleryImage, 0, len(s.images))
	for _, img := range s.images {
		images = append(images, img)
	}
	slices.SortFunc(images, func(a, b domain.GalleryImage) int {
		if a.CreatedAt.Equal(b.CreatedAt) {
			return strings.Compare(b.ID, a.ID)
		}
		if a.CreatedAt.After(b.CreatedAt) {
			return -1
		}
		return 1
	})
	return images, nil
}

func (s *Store) CreateImage(_ context.Context, img domain.GalleryImage) (*domain.GalleryImage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if img.URL == "" {
		return nil, store.ErrValidation
	}
	if img.ID == "" {
		img.ID = xid.New("img")
	}
	if img.CreatedAt.IsZero() {
		img.CreatedAt = time.Now().UTC()
	}
	s.writes++
	s.images[img.ID] = img
	created := img
	return &created, nil
}

func (s *Store) DeleteImage(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.images[id]; !exists {
		return store.ErrNotFound
	}
	s.writes++
	delete(s.images, id)
	return nil
}

func (s *Store) GetSettings(_ context.Context) (*domain.Settings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.settings == nil {
		return nil, store.ErrNotFound
	}
	settings := *s.settings
	return &settings, nil
}

func (s *Store) SaveSettings(_ context.Context, settings domain.Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.writes++
	s.settings = &settings
	return nil
}

func (s *Store) CreateUser(_ context.Context, user domain.UserAccount) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if user.Username == "" {
		return store.ErrValidation
	}
	if _, exists := s.usersByName[user.Username]; exists {
		return store.ErrDuplicate
	}
	s.writes++
	s.usersByName[user.Username] = user
	return nil
}

func (s *Store) ListUsers(_ context.Context) ([]domain.UserAccount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]domain.UserAccount, 0, len(s.usersByName))
	for _, user := range s.usersByName {
		users = append(users, user)
	}
	return users, nil
}

func (s *Store) UpdateUserPassword(_ context.Context, username string, password string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, exists := s.usersByName[username]
	if !exists {
		return store.ErrNotFound
	}
	s.writes++
	user.Password = password
	s.usersByName[username] = user
	return nil
}
