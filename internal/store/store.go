package store

import (
	"context"
	"errors"

	"littlelens/backend/internal/domain"
)

var (
	ErrNotFound   = errors.New("not found")
	ErrValidation = errors.New("invalid input")
	ErrDuplicate  = errors.New("already exists")
)

// Repository is the document persistence collaborator. Implementations
// address named collections and provide insert (with caller-supplied or
// generated ids), merge-style partial updates, equality queries and hard
// deletes. No multi-document transaction primitive is assumed.
type Repository interface {
	// catalog sources
	ListPackages(ctx context.Context) ([]domain.PackageItem, error)
	CreatePackage(ctx context.Context, pkg domain.PackageItem) (*domain.PackageItem, error)
	UpdatePackage(ctx context.Context, pkg domain.PackageItem) (*domain.PackageItem, error)
	DeletePackage(ctx context.Context, id string) error
	ListPOSItems(ctx context.Context) ([]domain.POSItem, error)
	CreatePOSItem(ctx context.Context, item domain.POSItem) (*domain.POSItem, error)

	// customers
	ListCustomers(ctx context.Context) ([]domain.Customer, error)
	GetCustomerByID(ctx context.Context, id string) (*domain.Customer, error)
	FindCustomerByPhone(ctx context.Context, phone string) (*domain.Customer, error)
	CreateCustomer(ctx context.Context, customer domain.Customer) (*domain.Customer, error)
	UpdateCustomer(ctx context.Context, id string, req domain.CustomerUpdateRequest) (*domain.Customer, error)
	IncrementCustomerBookings(ctx context.Context, id string, delta int) error
	DeleteCustomer(ctx context.Context, id string) error

	// transactions
	CreateTransaction(ctx context.Context, tx domain.Transaction) (*domain.Transaction, error)
	GetTransactionByID(ctx context.Context, id string) (*domain.Transaction, error)
	ListTransactions(ctx context.Context) ([]domain.Transaction, error)
	ListTransactionsByCustomer(ctx context.Context, customerID string) ([]domain.Transaction, error)
	DeleteTransaction(ctx context.Context, id string) error

	// booking messages
	CreateMessage(ctx context.Context, msg domain.Message) (*domain.Message, error)
	ListMessages(ctx context.Context) ([]domain.Message, error)
	SetMessageRead(ctx context.Context, id string, read bool) error
	DeleteMessage(ctx context.Context, id string) error

	// testimonials
	ListTestimonials(ctx context.Context) ([]domain.Testimonial, error)
	CreateTestimonial(ctx context.Context, t domain.Testimonial) (*domain.Testimonial, error)
	UpdateTestimonial(ctx context.Context, t domain.Testimonial) (*domain.Testimonial, error)
	DeleteTestimonial(ctx context.Context, id string) error

	// gallery metadata
	ListImages(ctx context.Context) ([]domain.GalleryImage, error)
	CreateImage(ctx context.Context, img domain.GalleryImage) (*domain.GalleryImage, error)
	DeleteImage(ctx context.Context, id string) error

	// site settings
	GetSettings(ctx context.Context) (*domain.Settings, error)
	SaveSettings(ctx context.Context, settings domain.Settings) error

	// staff accounts
	CreateUser(ctx context.Context, user domain.UserAccount) error
	ListUsers(ctx context.Context) ([]domain.UserAccount, error)
	UpdateUserPassword(ctx context.Context, username string, password string) error
}
