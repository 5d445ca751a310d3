package billing

import (
	"errors"
	"strings"

	"github.com/google/uuid"

	"littlelens/backend/internal/domain"
)

var (
	ErrEmptyBill           = errors.New("bill is empty")
	ErrMissingCustomerInfo = errors.New("customer name and phone are required")
	ErrInvalidItem         = errors.New("item name and a positive rate are required")
	ErrInvalidDiscount     = errors.New("discount percent must be between 0 and 100")
)

// Bill is one in-progress, unpersisted sale. It has no identity until it is
// committed as a Transaction. All derived amounts are recomputed on read,
// never cached.
type Bill struct {
	CustomerName    string
	CustomerPhone   string
	BoundCustomerID string
	DiscountPercent float64
	items           []domain.BillItem
}

// AddItem validates and appends a line item. Quantities below 1 are treated
// as 1, matching the entry form default. The bill is left untouched on
// rejection.
func (b *Bill) AddItem(name string, rate float64, qty int) (domain.BillItem, error) {
	name = strings.TrimSpace(name)
	if name == "" || rate <= 0 {
		return domain.BillItem{}, ErrInvalidItem
	}
	if qty < 1 {
		qty = 1
	}

	item := domain.BillItem{
		ID:     uuid.NewString(),
		Name:   name,
		Qty:    qty,
		Rate:   rate,
		Amount: float64(qty) * rate,
	}
	b.items = append(b.items, item)
	return item, nil
}

// RemoveItem deletes the matching line item, preserving insertion order.
// Removing an unknown id is a no-op.
func (b *Bill) RemoveItem(id string) bool {
	for i, item := range b.items {
		if item.ID == id {
			b.items = append(b.items[:i], b.items[i+1:]...)
			return true
		}
	}
	return false
}

func (b *Bill) SetDiscountPercent(value float64) error {
	if value < 0 || value > 100 {
		return ErrInvalidDiscount
	}
	b.DiscountPercent = value
	return nil
}

// SetCustomer records free-typed identity fields and drops any explicit
// customer binding, mirroring the entry form where typing detaches a
// previously selected suggestion.
func (b *Bill) SetCustomer(name string, phone string) {
	b.CustomerName = strings.TrimSpace(name)
	b.CustomerPhone = strings.TrimSpace(phone)
	b.BoundCustomerID = ""
}

// BindCustomer attaches an explicitly selected customer record.
func (b *Bill) BindCustomer(id string, name string, phone string) {
	b.BoundCustomerID = id
	b.CustomerName = strings.TrimSpace(name)
	b.CustomerPhone = strings.TrimSpace(phone)
}

// Clear resets the bill to its empty initial state.
func (b *Bill) Clear() {
	b.CustomerName = ""
	b.CustomerPhone = ""
	b.BoundCustomerID = ""
	b.DiscountPercent = 0
	b.items = nil
}

// Items returns a copy of the line items in insertion order.
func (b *Bill) Items() []domain.BillItem {
	items := make([]domain.BillItem, len(b.items))
	copy(items, b.items)
	return items
}

// Totals derives subtotal, discount amount and grand total from the current
// items and discount percent.
func (b *Bill) Totals() domain.BillTotals {
	subtotal := 0.0
	for _, item := range b.items {
		subtotal += item.Amount
	}
	discountAmount := subtotal * b.DiscountPercent / 100
	return domain.BillTotals{
		Subtotal:        subtotal,
		DiscountPercent: b.DiscountPercent,
		DiscountAmount:  discountAmount,
		GrandTotal:      subtotal - discountAmount,
	}
}
