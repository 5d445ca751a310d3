package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"littlelens/backend/internal/domain"
	"littlelens/backend/internal/store"
)

func TestSeededData(t *testing.T) {
	s := NewSeeded()
	ctx := context.Background()

	packages, err := s.ListPackages(ctx)
	if err != nil {
		t.Fatalf("ListPackages: %v", err)
	}
	if len(packages) != 3 {
		t.Fatalf("expected 3 seeded packages, got %d", len(packages))
	}

	customers, err := s.ListCustomers(ctx)
	if err != nil {
		t.Fatalf("ListCustomers: %v", err)
	}
	if len(customers) != 2 {
		t.Fatalf("expected 2 seeded customers, got %d", len(customers))
	}

	users, err := s.ListUsers(ctx)
	if err != nil {
		t.Fatalf("ListUsers: %v", err)
	}
	if len(users) != 2 {
		t.Fatalf("expected 2 seeded accounts, got %d", len(users))
	}
}

func TestFindCustomerByPhoneExactMatch(t *testing.T) {
	s := NewSeeded()
	ctx := context.Background()

	customer, err := s.FindCustomerByPhone(ctx, "9000000001")
	if err != nil {
		t.Fatalf("FindCustomerByPhone: %v", err)
	}
	if customer.Name != "Ananya Sharma" {
		t.Fatalf("unexpected customer %+v", customer)
	}

	// Prefix and suffix matches do not count.
	if _, err := s.FindCustomerByPhone(ctx, "900000000"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for partial phone, got %v", err)
	}
}

func TestIncrementCustomerBookings(t *testing.T) {
	s := NewSeeded()
	ctx := context.Background()

	customer, _ := s.FindCustomerByPhone(ctx, "9000000002")
	before := customer.TotalBookings

	if err := s.IncrementCustomerBookings(ctx, customer.ID, 1); err != nil {
		t.Fatalf("IncrementCustomerBookings: %v", err)
	}
	after, _ := s.GetCustomerByID(ctx, customer.ID)
	if after.TotalBookings != before+1 {
		t.Fatalf("expected %d bookings, got %d", before+1, after.TotalBookings)
	}

	if err := s.IncrementCustomerBookings(ctx, "cus-missing", 1); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListTransactionsByCustomerFilters(t *testing.T) {
	s := NewSeeded()
	ctx := context.Background()

	item := []domain.BillItem{{ID: "i", Name: "A", Qty: 1, Rate: 1, Amount: 1}}
	s.CreateTransaction(ctx, domain.Transaction{ID: "tx-1", CustomerID: "cus-a", Items: item})
	s.CreateTransaction(ctx, domain.Transaction{ID: "tx-2", CustomerID: "cus-b", Items: item})
	s.CreateTransaction(ctx, domain.Transaction{ID: "tx-3", CustomerID: "cus-a", Items: item})

	transactions, err := s.ListTransactionsByCustomer(ctx, "cus-a")
	if err != nil {
		t.Fatalf("ListTransactionsByCustomer: %v", err)
	}
	if len(transactions) != 2 {
		t.Fatalf("expected 2 transactions for cus-a, got %d", len(transactions))
	}
	for _, tx := range transactions {
		if tx.CustomerID != "cus-a" {
			t.Fatalf("foreign transaction leaked: %+v", tx)
		}
	}
}

func TestFailNextConsumedOnce(t *testing.T) {
	s := NewSeeded()
	ctx := context.Background()
	boom := errors.New("boom")

	s.FailNext("ListPackages", boom)
	if _, err := s.ListPackages(ctx); !errors.Is(err, boom) {
		t.Fatalf("expected injected failure, got %v", err)
	}
	if _, err := s.ListPackages(ctx); err != nil {
		t.Fatalf("failure must only fire once, got %v", err)
	}
}

func TestWriteCountTracksWrites(t *testing.T) {
	s := NewSeeded()
	ctx := context.Background()

	base := s.WriteCount()
	if _, err := s.ListCustomers(ctx); err != nil {
		t.Fatalf("ListCustomers: %v", err)
	}
	if s.WriteCount() != base {
		t.Fatalf("reads must not count as writes")
	}

	if _, err := s.CreateMessage(ctx, domain.Message{ParentName: "A", Phone: "1", CreatedAt: time.Now()}); err != nil {
		t.Fatalf("CreateMessage: %v", err)
	}
	if s.WriteCount() != base+1 {
		t.Fatalf("expected one write, got %d", s.WriteCount()-base)
	}
}

func TestSettingsUpsert(t *testing.T) {
	s := NewSeeded()
	ctx := context.Background()

	if _, err := s.GetSettings(ctx); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound before first save, got %v", err)
	}

	want := domain.Settings{Phone: "9555555555"}
	if err := s.SaveSettings(ctx, want); err != nil {
		t.Fatalf("SaveSettings: %v", err)
	}
	got, err := s.GetSettings(ctx)
	if err != nil {
		t.Fatalf("GetSettings: %v", err)
	}
	if *got != want {
		t.Fatalf("expected %+v, got %+v", want, *got)
	}
}
