package domain

import "time"

// Product is a read-only catalog row produced by merging the packages and
// pos_items sources. It is never persisted by the billing flow itself.
type Product struct {
	Name string  `json:"name"`
	Rate float64 `json:"rate"`
}

type BillItem struct {
	ID     string  `json:"id" bson:"id"`
	Name   string  `json:"name" bson:"name"`
	Qty    int     `json:"qty" bson:"qty"`
	Rate   float64 `json:"rate" bson:"rate"`
	Amount float64 `json:"amount" bson:"amount"`
}

type BillTotals struct {
	Subtotal        float64 `json:"subtotal"`
	DiscountPercent float64 `json:"discountPercent"`
	DiscountAmount  float64 `json:"discountAmount"`
	GrandTotal      float64 `json:"grandTotal"`
}

// BillView is the API projection of an in-progress billing session.
type BillView struct {
	SessionID       string     `json:"sessionId"`
	CustomerName    string     `json:"customerName"`
	CustomerPhone   string     `json:"customerPhone"`
	BoundCustomerID string     `json:"boundCustomerId,omitempty"`
	Items           []BillItem `json:"items"`
	Totals          BillTotals `json:"totals"`
}

type Customer struct {
	ID            string    `json:"id" bson:"_id,omitempty"`
	Name          string    `json:"name" bson:"name"`
	Phone         string    `json:"phone" bson:"phone"`
	Email         string    `json:"email,omitempty" bson:"email,omitempty"`
	TotalBookings int       `json:"totalBookings" bson:"totalBookings"`
	Source        string    `json:"source" bson:"source"`
	BabyDetails   string    `json:"babyDetails,omitempty" bson:"babyDetails,omitempty"`
	Notes         string    `json:"notes,omitempty" bson:"notes,omitempty"`
	CreatedAt     time.Time `json:"createdAt" bson:"createdAt"`
}

type CustomerCreateRequest struct {
	Name        string `json:"name"`
	Phone       string `json:"phone"`
	Email       string `json:"email"`
	Source      string `json:"source"`
	BabyDetails string `json:"babyDetails"`
	Notes       string `json:"notes"`
}

type CustomerUpdateRequest struct {
	Name        *string `json:"name,omitempty"`
	Phone       *string `json:"phone,omitempty"`
	Email       *string `json:"email,omitempty"`
	BabyDetails *string `json:"babyDetails,omitempty"`
	Notes       *string `json:"notes,omitempty"`
}

type Transaction struct {
	ID              string     `json:"id" bson:"_id,omitempty"`
	CustomerID      string     `json:"customerId" bson:"customerId"`
	CustomerName    string     `json:"customerName" bson:"customerName"`
	CustomerPhone   string     `json:"customerPhone" bson:"customerPhone"`
	Items           []BillItem `json:"items" bson:"items"`
	Subtotal        float64    `json:"subtotal" bson:"subtotal"`
	DiscountPercent float64    `json:"discountPercent" bson:"discountPercent"`
	DiscountAmount  float64    `json:"discountAmount" bson:"discountAmount"`
	GrandTotal      float64    `json:"grandTotal" bson:"grandTotal"`
	Status          string     `json:"status" bson:"status"`
	CreatedAt       time.Time  `json:"createdAt" bson:"createdAt"`
}

// PackageItem is a curated content package shown on the public site and
// merged into the POS catalog. Price is stored as a string by the content
// editor, so the catalog resolver parses it defensively.
type PackageItem struct {
	ID          string `json:"id" bson:"_id,omitempty"`
	Name        string `json:"name" bson:"name"`
	Price       string `json:"price" bson:"price"`
	Description string `json:"description,omitempty" bson:"description,omitempty"`
	Order       int    `json:"order" bson:"order"`
}

// POSItem is an ad-hoc catalog entry created the first time an unknown item
// name is billed at the POS.
type POSItem struct {
	ID        string    `json:"id" bson:"_id,omitempty"`
	Name      string    `json:"name" bson:"name"`
	Rate      float64   `json:"rate" bson:"rate"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
}

type Message struct {
	ID            string    `json:"id" bson:"_id,omitempty"`
	CustomerID    string    `json:"customerId,omitempty" bson:"customerId,omitempty"`
	ParentName    string    `json:"parentName" bson:"parentName"`
	BabyAge       string    `json:"babyAge,omitempty" bson:"babyAge,omitempty"`
	ShootType     string    `json:"shootType,omitempty" bson:"shootType,omitempty"`
	PreferredDate string    `json:"preferredDate,omitempty" bson:"preferredDate,omitempty"`
	Phone         string    `json:"phone" bson:"phone"`
	Email         string    `json:"email,omitempty" bson:"email,omitempty"`
	Message       string    `json:"message,omitempty" bson:"message,omitempty"`
	Read          bool      `json:"read" bson:"read"`
	CreatedAt     time.Time `json:"createdAt" bson:"createdAt"`
}

type MessageCreateRequest struct {
	CustomerID    string `json:"customerId"`
	ParentName    string `json:"parentName"`
	BabyAge       string `json:"babyAge"`
	ShootType     string `json:"shootType"`
	PreferredDate string `json:"preferredDate"`
	Phone         string `json:"phone"`
	Email         string `json:"email"`
	Message       string `json:"message"`
}

type Testimonial struct {
	ID        string    `json:"id" bson:"_id,omitempty"`
	Name      string    `json:"name" bson:"name"`
	Text      string    `json:"text" bson:"text"`
	Rating    int       `json:"rating" bson:"rating"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
}

// GalleryImage holds metadata only; the asset itself lives on the external
// media host.
type GalleryImage struct {
	ID        string    `json:"id" bson:"_id,omitempty"`
	URL       string    `json:"url" bson:"url"`
	Title     string    `json:"title,omitempty" bson:"title,omitempty"`
	Category  string    `json:"category,omitempty" bson:"category,omitempty"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
}

type Settings struct {
	Phone     string `json:"phone,omitempty" bson:"phone,omitempty"`
	Email     string `json:"email,omitempty" bson:"email,omitempty"`
	Address   string `json:"address,omitempty" bson:"address,omitempty"`
	WhatsApp  string `json:"whatsapp,omitempty" bson:"whatsapp,omitempty"`
	Instagram string `json:"instagram,omitempty" bson:"instagram,omitempty"`
}

type DashboardStats struct {
	Customers      int `json:"customers"`
	Transactions   int `json:"transactions"`
	Packages       int `json:"packages"`
	GalleryImages  int `json:"galleryImages"`
	UnreadMessages int `json:"unreadMessages"`
}

// CounterDrift flags a customer whose totalBookings counter disagrees with
// the number of committed POS transactions referencing it.
type CounterDrift struct {
	CustomerID       string `json:"customerId"`
	CustomerName     string `json:"customerName"`
	TotalBookings    int    `json:"totalBookings"`
	TransactionCount int    `json:"transactionCount"`
}

// ReconciliationReport is the detectability half of the non-atomic commit:
// it does not repair anything, it only surfaces inconsistencies.
type ReconciliationReport struct {
	GeneratedAt          string         `json:"generatedAt"`
	OrphanedTransactions []Transaction  `json:"orphanedTransactions"`
	CounterDrift         []CounterDrift `json:"counterDrift"`
}

type BillItemRequest struct {
	Name string  `json:"name"`
	Rate float64 `json:"rate"`
	Qty  int     `json:"qty"`
}

type BillDiscountRequest struct {
	Percent float64 `json:"percent"`
}

type BillCustomerRequest struct {
	CustomerID string `json:"customerId"`
	Name       string `json:"name"`
	Phone      string `json:"phone"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	AccessToken string `json:"accessToken"`
	Role        string `json:"role"`
	ExpiresAt   string `json:"expiresAt"`
}

type Actor struct {
	Username string
	Role     string
}

type StaffCreateRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type StaffUser struct {
	Username  string    `json:"username"`
	Role      string    `json:"role"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"createdAt"`
}

// UserAccount is an internal persistence model for staff credentials.
type UserAccount struct {
	Username  string    `bson:"_id"`
	Password  string    `bson:"password"`
	Role      string    `bson:"role"`
	Active    bool      `bson:"active"`
	CreatedAt time.Time `bson:"createdAt"`
}

const (
	SourceOnline     = "online"
	SourceOffline    = "offline"
	SourceOfflinePOS = "offline_pos"
)

const TxStatusPaid = "paid"
