package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"littlelens/backend/internal/billing"
	"littlelens/backend/internal/cache"
	"littlelens/backend/internal/domain"
	"littlelens/backend/internal/store"
	"littlelens/backend/internal/store/memory"
)

func newTestService(t *testing.T) (*Service, *memory.Store) {
	t.Helper()
	repo := memory.NewSeeded()
	svc := New(repo, billing.NewManager(), cache.NoopCatalogCache{}, time.Minute)
	return svc, repo
}

func adminContext() context.Context {
	return WithActor(context.Background(), domain.Actor{Username: "admin", Role: "admin"})
}

func seededCustomerByPhone(t *testing.T, repo *memory.Store, phone string) domain.Customer {
	t.Helper()
	customer, err := repo.FindCustomerByPhone(context.Background(), phone)
	if err != nil {
		t.Fatalf("seed customer with phone %s missing: %v", phone, err)
	}
	return *customer
}

func TestLoadCatalogMergesBothSources(t *testing.T) {
	svc, _ := newTestService(t)

	products, err := svc.LoadCatalog(context.Background(), false)
	if err != nil {
		t.Fatalf("LoadCatalog: %v", err)
	}

	want := map[string]float64{
		"Newborn Package":    15000,
		"Maternity Package":  12000,
		"Cake Smash Package": 9000,
		"Extra Print":        200,
		"Framed Photo 8x10":  1200,
		"Digital Copies":     2500,
	}
	if len(products) != len(want) {
		t.Fatalf("expected %d catalog entries, got %d: %+v", len(want), len(products), products)
	}
	for _, product := range products {
		rate, ok := want[product.Name]
		if !ok {
			t.Fatalf("unexpected catalog entry %q", product.Name)
		}
		if product.Rate != rate {
			t.Fatalf("entry %q: expected rate %v, got %v", product.Name, rate, product.Rate)
		}
	}
}

func TestLoadCatalogPackageWinsNameCollision(t *testing.T) {
	svc, repo := newTestService(t)

	// Same name in both sources; the package price must win.
	if _, err := repo.CreatePOSItem(context.Background(), domain.POSItem{Name: "Newborn Package", Rate: 111}); err != nil {
		t.Fatalf("CreatePOSItem: %v", err)
	}

	products, err := svc.LoadCatalog(context.Background(), true)
	if err != nil {
		t.Fatalf("LoadCatalog: %v", err)
	}
	for _, product := range products {
		if product.Name == "Newborn Package" && product.Rate != 15000 {
			t.Fatalf("expected package rate 15000 to win, got %v", product.Rate)
		}
	}
}

func TestLoadCatalogUnparseablePriceIsZero(t *testing.T) {
	svc, repo := newTestService(t)

	if _, err := repo.CreatePackage(context.Background(), domain.PackageItem{Name: "Ask Us", Price: "contact for pricing"}); err != nil {
		t.Fatalf("CreatePackage: %v", err)
	}

	products, err := svc.LoadCatalog(context.Background(), true)
	if err != nil {
		t.Fatalf("LoadCatalog: %v", err)
	}
	found := false
	for _, product := range products {
		if product.Name == "Ask Us" {
			found = true
			if product.Rate != 0 {
				t.Fatalf("expected rate 0 for unparseable price, got %v", product.Rate)
			}
		}
	}
	if !found {
		t.Fatalf("expected entry with unparseable price to remain in the catalog")
	}
}

func TestLoadCatalogSurvivesOneSourceFailing(t *testing.T) {
	svc, repo := newTestService(t)

	repo.FailNext("ListPackages", errors.New("backend down"))
	products, err := svc.LoadCatalog(context.Background(), true)
	if err != nil {
		t.Fatalf("one failing source must not fail the load: %v", err)
	}
	for _, product := range products {
		if product.Name == "Newborn Package" {
			t.Fatalf("did not expect package entries when packages failed to load")
		}
	}
	if len(products) != 3 {
		t.Fatalf("expected the 3 pos items, got %d", len(products))
	}
}

func TestLoadCatalogFailsWhenBothSourcesFail(t *testing.T) {
	svc, repo := newTestService(t)

	repo.FailNext("ListPackages", errors.New("down"))
	repo.FailNext("ListPOSItems", errors.New("down"))
	if _, err := svc.LoadCatalog(context.Background(), true); err == nil {
		t.Fatalf("expected error when both catalog sources fail")
	}
}

func TestCatalogKnowsIsCaseInsensitive(t *testing.T) {
	svc, _ := newTestService(t)

	if !svc.catalogKnows(context.Background(), "extra print") {
		t.Fatalf("expected case-insensitive match for seeded pos item")
	}
	if svc.catalogKnows(context.Background(), "Never Sold Before") {
		t.Fatalf("did not expect a match for unknown name")
	}
}

func TestSaveCatalogItemCreatesPOSItem(t *testing.T) {
	svc, repo := newTestService(t)

	svc.saveCatalogItem("Album Upgrade", 3500)

	items, err := repo.ListPOSItems(context.Background())
	if err != nil {
		t.Fatalf("ListPOSItems: %v", err)
	}
	found := false
	for _, item := range items {
		if item.Name == "Album Upgrade" && item.Rate == 3500 {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected auto-saved catalog item, got %+v", items)
	}
}

func TestSaveCatalogItemFailureIsSwallowed(t *testing.T) {
	svc, repo := newTestService(t)

	repo.FailNext("CreatePOSItem", errors.New("write refused"))
	// Must not panic or surface the error anywhere.
	svc.saveCatalogItem("Album Upgrade", 3500)
}

func TestAddBillItemRejectsInvalid(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	view, err := svc.CreateBillSession(ctx)
	if err != nil {
		t.Fatalf("CreateBillSession: %v", err)
	}

	if _, err := svc.AddBillItem(ctx, view.SessionID, "", 100, 1); !errors.Is(err, billing.ErrInvalidItem) {
		t.Fatalf("expected ErrInvalidItem, got %v", err)
	}
	if _, err := svc.AddBillItem(ctx, view.SessionID, "Print", 0, 1); !errors.Is(err, billing.ErrInvalidItem) {
		t.Fatalf("expected ErrInvalidItem for zero rate, got %v", err)
	}

	got, err := svc.GetBill(ctx, view.SessionID)
	if err != nil {
		t.Fatalf("GetBill: %v", err)
	}
	if len(got.Items) != 0 {
		t.Fatalf("rejected adds must leave the bill untouched, got %d items", len(got.Items))
	}
}

func TestAddBillItemUnknownSession(t *testing.T) {
	svc, _ := newTestService(t)

	if _, err := svc.AddBillItem(context.Background(), "bill_missing", "Print", 100, 1); !errors.Is(err, billing.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestSetBillDiscountRejectsOutOfRange(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	view, _ := svc.CreateBillSession(ctx)
	if _, err := svc.SetBillDiscount(ctx, view.SessionID, 101); !errors.Is(err, billing.ErrInvalidDiscount) {
		t.Fatalf("expected ErrInvalidDiscount, got %v", err)
	}
	if _, err := svc.SetBillDiscount(ctx, view.SessionID, -0.5); !errors.Is(err, billing.ErrInvalidDiscount) {
		t.Fatalf("expected ErrInvalidDiscount, got %v", err)
	}
}

func TestCompleteBillEmptyPerformsZeroWrites(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	view, _ := svc.CreateBillSession(ctx)
	if _, err := svc.SetBillCustomer(ctx, view.SessionID, "", "Walk In", "9111111111"); err != nil {
		t.Fatalf("SetBillCustomer: %v", err)
	}

	before := repo.WriteCount()
	_, err := svc.CompleteBill(ctx, view.SessionID)
	if !errors.Is(err, billing.ErrEmptyBill) {
		t.Fatalf("expected ErrEmptyBill, got %v", err)
	}
	if repo.WriteCount() != before {
		t.Fatalf("empty bill completion must not write, writes went %d -> %d", before, repo.WriteCount())
	}
}

func TestCompleteBillMissingCustomerInfo(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	view, _ := svc.CreateBillSession(ctx)
	if _, err := svc.AddBillItem(ctx, view.SessionID, "Extra Print", 200, 1); err != nil {
		t.Fatalf("AddBillItem: %v", err)
	}

	before := repo.WriteCount()
	_, err := svc.CompleteBill(ctx, view.SessionID)
	if !errors.Is(err, billing.ErrMissingCustomerInfo) {
		t.Fatalf("expected ErrMissingCustomerInfo, got %v", err)
	}
	if repo.WriteCount() != before {
		t.Fatalf("missing customer info must not write")
	}
}

func TestCompleteBillReusesCustomerByPhone(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()
	existing := seededCustomerByPhone(t, repo, "9000000001")

	view, _ := svc.CreateBillSession(ctx)
	svc.AddBillItem(ctx, view.SessionID, "Newborn Package", 15000, 1)
	svc.AddBillItem(ctx, view.SessionID, "Extra Print", 200, 3)
	svc.SetBillDiscount(ctx, view.SessionID, 10)
	// Name typed at the counter differs from the stored record.
	svc.SetBillCustomer(ctx, view.SessionID, "", "Ananya S.", "9000000001")

	tx, err := svc.CompleteBill(ctx, view.SessionID)
	if err != nil {
		t.Fatalf("CompleteBill: %v", err)
	}

	if tx.CustomerID != existing.ID {
		t.Fatalf("expected commit against existing customer %s, got %s", existing.ID, tx.CustomerID)
	}
	if tx.CustomerName != "Ananya S." || tx.CustomerPhone != "9000000001" {
		t.Fatalf("transaction must freeze identity as typed, got %q %q", tx.CustomerName, tx.CustomerPhone)
	}
	if tx.Subtotal != 15600 || tx.DiscountAmount != 1560 || tx.GrandTotal != 14040 {
		t.Fatalf("unexpected totals: %+v", tx)
	}
	if tx.Status != domain.TxStatusPaid {
		t.Fatalf("expected status paid, got %q", tx.Status)
	}

	updated, err := repo.GetCustomerByID(ctx, existing.ID)
	if err != nil {
		t.Fatalf("GetCustomerByID: %v", err)
	}
	if updated.TotalBookings != existing.TotalBookings+1 {
		t.Fatalf("expected bookings %d, got %d", existing.TotalBookings+1, updated.TotalBookings)
	}
	if updated.Name != existing.Name {
		t.Fatalf("stored customer name must never be overwritten at commit, got %q", updated.Name)
	}

	// The session survives but its bill is reset.
	after, err := svc.GetBill(ctx, view.SessionID)
	if err != nil {
		t.Fatalf("GetBill after commit: %v", err)
	}
	if len(after.Items) != 0 || after.CustomerName != "" || after.Totals.DiscountPercent != 0 {
		t.Fatalf("expected reset bill after commit, got %+v", after)
	}
}

func TestCompleteBillCreatesWalkInCustomer(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	customersBefore, _ := repo.ListCustomers(ctx)

	view, _ := svc.CreateBillSession(ctx)
	svc.AddBillItem(ctx, view.SessionID, "Digital Copies", 2500, 1)
	svc.SetBillCustomer(ctx, view.SessionID, "", "New Parent", "9222222222")

	tx, err := svc.CompleteBill(ctx, view.SessionID)
	if err != nil {
		t.Fatalf("CompleteBill: %v", err)
	}

	customersAfter, _ := repo.ListCustomers(ctx)
	if len(customersAfter) != len(customersBefore)+1 {
		t.Fatalf("expected exactly one new customer, got %d -> %d", len(customersBefore), len(customersAfter))
	}

	created, err := repo.GetCustomerByID(ctx, tx.CustomerID)
	if err != nil {
		t.Fatalf("created customer not found: %v", err)
	}
	if created.Source != domain.SourceOfflinePOS {
		t.Fatalf("expected source %q, got %q", domain.SourceOfflinePOS, created.Source)
	}
	if created.TotalBookings != 1 {
		t.Fatalf("expected totalBookings 1, got %d", created.TotalBookings)
	}
	if created.Name != "New Parent" || created.Phone != "9222222222" {
		t.Fatalf("unexpected walk-in identity %q %q", created.Name, created.Phone)
	}
}

func TestCompleteBillHonorsExplicitBinding(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()
	existing := seededCustomerByPhone(t, repo, "9000000002")

	view, _ := svc.CreateBillSession(ctx)
	svc.AddBillItem(ctx, view.SessionID, "Extra Print", 200, 1)
	if _, err := svc.SetBillCustomer(ctx, view.SessionID, existing.ID, "", ""); err != nil {
		t.Fatalf("SetBillCustomer with binding: %v", err)
	}

	tx, err := svc.CompleteBill(ctx, view.SessionID)
	if err != nil {
		t.Fatalf("CompleteBill: %v", err)
	}
	if tx.CustomerID != existing.ID {
		t.Fatalf("expected bound customer %s, got %s", existing.ID, tx.CustomerID)
	}
}

func TestCompleteBillSurfacesTransactionWriteFailure(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	view, _ := svc.CreateBillSession(ctx)
	svc.AddBillItem(ctx, view.SessionID, "Extra Print", 200, 1)
	svc.SetBillCustomer(ctx, view.SessionID, "", "Walk In", "9333333333")

	repo.FailNext("CreateTransaction", errors.New("write refused"))
	if _, err := svc.CompleteBill(ctx, view.SessionID); err == nil {
		t.Fatalf("expected commit failure to surface")
	}

	// The customer write happened before the failing transaction write and is
	// not rolled back. The reconciliation report flags it later.
	if _, err := repo.FindCustomerByPhone(ctx, "9333333333"); err != nil {
		t.Fatalf("expected customer from partial commit to persist: %v", err)
	}
}

func TestCustomerHistoryOrdering(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()
	existing := seededCustomerByPhone(t, repo, "9000000001")

	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	for _, tx := range []domain.Transaction{
		{ID: "tx-old", CustomerID: existing.ID, Items: []domain.BillItem{{ID: "i1", Name: "A", Qty: 1, Rate: 100, Amount: 100}}, CreatedAt: base},
		{ID: "tx-a", CustomerID: existing.ID, Items: []domain.BillItem{{ID: "i2", Name: "B", Qty: 1, Rate: 100, Amount: 100}}, CreatedAt: base.Add(time.Hour)},
		{ID: "tx-b", CustomerID: existing.ID, Items: []domain.BillItem{{ID: "i3", Name: "C", Qty: 1, Rate: 100, Amount: 100}}, CreatedAt: base.Add(time.Hour)},
		{ID: "tx-new", CustomerID: existing.ID, Items: []domain.BillItem{{ID: "i4", Name: "D", Qty: 1, Rate: 100, Amount: 100}}, CreatedAt: base.Add(2 * time.Hour)},
	} {
		if _, err := repo.CreateTransaction(ctx, tx); err != nil {
			t.Fatalf("CreateTransaction %s: %v", tx.ID, err)
		}
	}

	history, err := svc.CustomerHistory(ctx, existing.ID)
	if err != nil {
		t.Fatalf("CustomerHistory: %v", err)
	}

	wantOrder := []string{"tx-new", "tx-b", "tx-a", "tx-old"}
	if len(history) != len(wantOrder) {
		t.Fatalf("expected %d transactions, got %d", len(wantOrder), len(history))
	}
	for i, want := range wantOrder {
		if history[i].ID != want {
			t.Fatalf("position %d: expected %s, got %s (full order: %+v)", i, want, history[i].ID, ids(history))
		}
	}
}

func ids(transactions []domain.Transaction) []string {
	out := make([]string, 0, len(transactions))
	for _, tx := range transactions {
		out = append(out, tx.ID)
	}
	return out
}

func TestCustomerHistoryOtherCustomersExcluded(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()
	first := seededCustomerByPhone(t, repo, "9000000001")
	second := seededCustomerByPhone(t, repo, "9000000002")

	repo.CreateTransaction(ctx, domain.Transaction{ID: "tx-1", CustomerID: first.ID, Items: []domain.BillItem{{ID: "i", Name: "A", Qty: 1, Rate: 1, Amount: 1}}})
	repo.CreateTransaction(ctx, domain.Transaction{ID: "tx-2", CustomerID: second.ID, Items: []domain.BillItem{{ID: "i", Name: "A", Qty: 1, Rate: 1, Amount: 1}}})

	history, err := svc.CustomerHistory(ctx, first.ID)
	if err != nil {
		t.Fatalf("CustomerHistory: %v", err)
	}
	if len(history) != 1 || history[0].ID != "tx-1" {
		t.Fatalf("expected only tx-1, got %+v", ids(history))
	}
}

func TestSuggestCustomers(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	matches, err := svc.SuggestCustomers(ctx, "ana")
	if err != nil {
		t.Fatalf("SuggestCustomers: %v", err)
	}
	if len(matches) != 1 || matches[0].Name != "Ananya Sharma" {
		t.Fatalf("expected case-insensitive name match, got %+v", matches)
	}

	matches, err = svc.SuggestCustomers(ctx, "900000000")
	if err != nil {
		t.Fatalf("SuggestCustomers: %v", err)
	}
	if len(matches) != 2 {
		t.Fatalf("expected both seeded customers by phone prefix, got %d", len(matches))
	}

	matches, err = svc.SuggestCustomers(ctx, "  ")
	if err != nil {
		t.Fatalf("SuggestCustomers: %v", err)
	}
	if len(matches) != 0 {
		t.Fatalf("blank query must return no suggestions, got %d", len(matches))
	}
}

func TestCreateCustomerRejectsDuplicatePhone(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.CreateCustomer(context.Background(), domain.CustomerCreateRequest{Name: "Clone", Phone: "9000000001"})
	if !errors.Is(err, store.ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
}

func TestUpdateCustomerPhoneConflict(t *testing.T) {
	svc, repo := newTestService(t)
	second := seededCustomerByPhone(t, repo, "9000000002")

	phone := "9000000001"
	_, err := svc.UpdateCustomer(context.Background(), second.ID, domain.CustomerUpdateRequest{Phone: &phone})
	if !errors.Is(err, store.ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate on phone conflict, got %v", err)
	}
}

func TestDeleteCustomerRequiresAdmin(t *testing.T) {
	svc, repo := newTestService(t)
	existing := seededCustomerByPhone(t, repo, "9000000002")

	staffCtx := WithActor(context.Background(), domain.Actor{Username: "staff", Role: "staff"})
	if err := svc.DeleteCustomer(staffCtx, existing.ID); err == nil {
		t.Fatalf("expected staff delete to be rejected")
	}
	if err := svc.DeleteCustomer(adminContext(), existing.ID); err != nil {
		t.Fatalf("admin delete failed: %v", err)
	}
}

func TestSubmitMessageValidation(t *testing.T) {
	svc, _ := newTestService(t)

	if _, err := svc.SubmitMessage(context.Background(), domain.MessageCreateRequest{ParentName: "", Phone: "9"}); !errors.Is(err, store.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}

	msg, err := svc.SubmitMessage(context.Background(), domain.MessageCreateRequest{
		ParentName: "Riya", Phone: "9444444444", ShootType: "newborn", Message: "Availability next week?",
	})
	if err != nil {
		t.Fatalf("SubmitMessage: %v", err)
	}
	if msg.Read {
		t.Fatalf("new messages start unread")
	}
	if msg.ID == "" || msg.CreatedAt.IsZero() {
		t.Fatalf("expected id and timestamp, got %+v", msg)
	}
}

func TestDashboardStats(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	repo.CreateMessage(ctx, domain.Message{ParentName: "A", Phone: "1", Read: false})
	repo.CreateMessage(ctx, domain.Message{ParentName: "B", Phone: "2", Read: true})

	stats, err := svc.DashboardStats(ctx)
	if err != nil {
		t.Fatalf("DashboardStats: %v", err)
	}
	if stats.Customers != 2 || stats.Packages != 3 || stats.UnreadMessages != 1 {
		t.Fatalf("unexpected stats %+v", stats)
	}
}

func TestReconcileFlagsOrphansAndDrift(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()
	// Seeded: Ananya (online, totalBookings 2), Priya (offline_pos, totalBookings 1).
	undercounted := seededCustomerByPhone(t, repo, "9000000001")
	overcounted := seededCustomerByPhone(t, repo, "9000000002")

	repo.CreateTransaction(ctx, domain.Transaction{ID: "tx-ghost", CustomerID: "cus-ghost", Items: []domain.BillItem{{ID: "i", Name: "A", Qty: 1, Rate: 1, Amount: 1}}})
	for _, id := range []string{"tx-1", "tx-2", "tx-3"} {
		repo.CreateTransaction(ctx, domain.Transaction{ID: id, CustomerID: undercounted.ID, Items: []domain.BillItem{{ID: "i", Name: "A", Qty: 1, Rate: 1, Amount: 1}}})
	}

	report, err := svc.Reconcile(adminContext())
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}

	if len(report.OrphanedTransactions) != 1 || report.OrphanedTransactions[0].ID != "tx-ghost" {
		t.Fatalf("expected tx-ghost orphaned, got %+v", report.OrphanedTransactions)
	}

	byCustomer := map[string]domain.CounterDrift{}
	for _, entry := range report.CounterDrift {
		byCustomer[entry.CustomerID] = entry
	}
	if len(byCustomer) != 2 {
		t.Fatalf("expected two drifting customers, got %+v", report.CounterDrift)
	}
	low, ok := byCustomer[undercounted.ID]
	if !ok || low.TotalBookings != 2 || low.TransactionCount != 3 {
		t.Fatalf("expected counter running low for %s, got %+v", undercounted.ID, report.CounterDrift)
	}
	// A POS-created customer with more bookings than transactions is the
	// other drift direction.
	high, ok := byCustomer[overcounted.ID]
	if !ok || high.TotalBookings != 1 || high.TransactionCount != 0 {
		t.Fatalf("expected counter running high for %s, got %+v", overcounted.ID, report.CounterDrift)
	}
}

func TestReconcileIgnoresOnlineCustomersWithHighCounters(t *testing.T) {
	svc, repo := newTestService(t)

	// Ananya is an online customer with totalBookings 2 and no POS
	// transactions. Online bookings are not POS drift.
	report, err := svc.Reconcile(adminContext())
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	online := seededCustomerByPhone(t, repo, "9000000001")
	for _, entry := range report.CounterDrift {
		if entry.CustomerID == online.ID {
			t.Fatalf("online customer must not be flagged: %+v", entry)
		}
	}
}

func TestReconcileDetectsFailedCommitDrift(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	view, _ := svc.CreateBillSession(ctx)
	svc.AddBillItem(ctx, view.SessionID, "Extra Print", 200, 1)
	svc.SetBillCustomer(ctx, view.SessionID, "", "Walk In", "9333333333")

	repo.FailNext("CreateTransaction", errors.New("write refused"))
	if _, err := svc.CompleteBill(ctx, view.SessionID); err == nil {
		t.Fatalf("expected commit failure")
	}

	// The walk-in customer was written with totalBookings 1 but the
	// transaction insert failed. The report must surface exactly that.
	partial, err := repo.FindCustomerByPhone(ctx, "9333333333")
	if err != nil {
		t.Fatalf("customer from partial commit missing: %v", err)
	}

	report, err := svc.Reconcile(adminContext())
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	found := false
	for _, entry := range report.CounterDrift {
		if entry.CustomerID == partial.ID {
			found = true
			if entry.TotalBookings != 1 || entry.TransactionCount != 0 {
				t.Fatalf("unexpected drift entry %+v", entry)
			}
		}
	}
	if !found {
		t.Fatalf("partial-commit customer missing from drift report: %+v", report.CounterDrift)
	}
}

func TestReconcileRequiresAdmin(t *testing.T) {
	svc, _ := newTestService(t)

	staffCtx := WithActor(context.Background(), domain.Actor{Username: "staff", Role: "staff"})
	if _, err := svc.Reconcile(staffCtx); err == nil {
		t.Fatalf("expected staff reconcile to be rejected")
	}
}

func TestGetSettingsDefaultsWhenUnset(t *testing.T) {
	svc, _ := newTestService(t)

	settings, err := svc.GetSettings(context.Background())
	if err != nil {
		t.Fatalf("GetSettings: %v", err)
	}
	if settings != (domain.Settings{}) {
		t.Fatalf("expected zero settings before first save, got %+v", settings)
	}

	want := domain.Settings{Phone: "9555555555", Instagram: "@littlelens"}
	if err := svc.SaveSettings(adminContext(), want); err != nil {
		t.Fatalf("SaveSettings: %v", err)
	}
	settings, err = svc.GetSettings(context.Background())
	if err != nil {
		t.Fatalf("GetSettings after save: %v", err)
	}
	if settings != want {
		t.Fatalf("expected %+v, got %+v", want, settings)
	}
}
