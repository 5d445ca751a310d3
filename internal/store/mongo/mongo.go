package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"littlelens/backend/internal/domain"
	"littlelens/backend/internal/store"
	"littlelens/backend/internal/xid"
)

const (
	packagesCollection     = "packages"
	posItemsCollection     = "pos_items"
	customersCollection    = "customers"
	transactionsCollection = "transactions"
	messagesCollection     = "messages"
	testimonialsCollection = "testimonials"
	imagesCollection       = "images"
	settingsCollection     = "settings"
	usersCollection        = "users"
)

// settingsDocID is the fixed id of the single site settings document.
const settingsDocID = "general"

// Store is the MongoDB-backed Repository. Documents use string ids so the
// memory store and this one are interchangeable behind store.Repository.
type Store struct {
	client *mongo.Client
	db     *mongo.Database
}

func New(ctx context.Context, uri string, dbName string) (*Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongodb: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}

	return &Store{client: client, db: client.Database(dbName)}, nil
}

func (s *Store) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

func (s *Store) ListPackages(ctx context.Context) ([]domain.PackageItem, error) {
	opts := options.Find().SetSort(bson.D{{Key: "order", Value: 1}})
	cursor, err := s.db.Collection(packagesCollection).Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	packages := []domain.PackageItem{}
	if err := cursor.All(ctx, &packages); err != nil {
		return nil, err
	}
	return packages, nil
}

func (s *Store) CreatePackage(ctx context.Context, pkg domain.PackageItem) (*domain.PackageItem, error) {
	if pkg.Name == "" {
		return nil, store.ErrValidation
	}
	if pkg.ID == "" {
		pkg.ID = xid.New("pkg")
	}
	if _, err := s.db.Collection(packagesCollection).InsertOne(ctx, pkg); err != nil {
		return nil, err
	}
	return &pkg, nil
}

func (s *Store) UpdatePackage(ctx context.Context, pkg domain.PackageItem) (*domain.PackageItem, error) {
	update := bson.M{"$set": bson.M{
		"name":        pkg.Name,
		"price":       pkg.Price,
		"description": pkg.Description,
		"order":       pkg.Order,
	}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var updated domain.PackageItem
	err := s.db.Collection(packagesCollection).FindOneAndUpdate(ctx, bson.M{"_id": pkg.ID}, update, opts).Decode(&updated)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func (s *Store) DeletePackage(ctx context.Context, id string) error {
	return s.deleteByID(ctx, packagesCollection, id)
}

func (s *Store) ListPOSItems(ctx context.Context) ([]domain.POSItem, error) {
	cursor, err := s.db.Collection(posItemsCollection).Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	items := []domain.POSItem{}
	if err := cursor.All(ctx, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) CreatePOSItem(ctx context.Context, item domain.POSItem) (*domain.POSItem, error) {
	if item.Name == "" || item.Rate <= 0 {
		return nil, store.ErrValidation
	}
	if item.ID == "" {
		item.ID = xid.New("pos")
	}
	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now().UTC()
	}
	if _, err := s.db.Collection(posItemsCollection).InsertOne(ctx, item); err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) ListCustomers(ctx context.Context) ([]domain.Customer, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := s.db.Collection(customersCollection).Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	customers := []domain.Customer{}
	if err := cursor.All(ctx, &customers); err != nil {
		return nil, err
	}
	return customers, nil
}

func (s *Store) GetCustomerByID(ctx context.Context, id string) (*domain.Customer, error) {
	var customer domain.Customer
	err := s.db.Collection(customersCollection).FindOne(ctx, bson.M{"_id": id}).Decode(&customer)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &customer, nil
}

func (s *Store) FindCustomerByPhone(ctx context.Context, phone string) (*domain.Customer, error) {
	var customer domain.Customer
	err := s.db.Collection(customersCollection).FindOne(ctx, bson.M{"phone": phone}).Decode(&customer)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &customer, nil
}

func (s *Store) CreateCustomer(ctx context.Context, customer domain.Customer) (*domain.Customer, error) {
	if customer.Name == "" || customer.Phone == "" {
		return nil, store.ErrValidation
	}
	if customer.ID == "" {
		customer.ID = xid.New("cus")
	}
	if customer.CreatedAt.IsZero() {
		customer.CreatedAt = time.Now().UTC()
	}
	if _, err := s.db.Collection(customersCollection).InsertOne(ctx, customer); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, store.ErrDuplicate
		}
		return nil, err
	}
	return &customer, nil
}

func (s *Store) UpdateCustomer(ctx context.Context, id string, req domain.CustomerUpdateRequest) (*domain.Customer, error) {
	set := bson.M{}
	if req.Name != nil {
		set["name"] = *req.Name
	}
	if req.Phone != nil {
		set["phone"] = *req.Phone
	}
	if req.Email != nil {
		set["email"] = *req.Email
	}
	if req.BabyDetails != nil {
		set["babyDetails"] = *req.BabyDetails
	}
	if req.Notes != nil {
		set["notes"] = *req.Notes
	}
	if len(set) == 0 {
		return s.GetCustomerByID(ctx, id)
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var updated domain.Customer
	err := s.db.Collection(customersCollection).FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&updated)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// IncrementCustomerBookings is a merge-style partial update: it touches only
// the totalBookings counter.
func (s *Store) IncrementCustomerBookings(ctx context.Context, id string, delta int) error {
	result, err := s.db.Collection(customersCollection).UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$inc": bson.M{"totalBookings": delta}},
	)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) DeleteCustomer(ctx context.Context, id string) error {
	return s.deleteByID(ctx, customersCollection, id)
}

func (s *Store) CreateTransaction(ctx context.Context, tx domain.Transaction) (*domain.Transaction, error) {
	if tx.CustomerID == "" || len(tx.Items) == 0 {
		return nil, store.ErrValidation
	}
	if tx.ID == "" {
		tx.ID = xid.New("tx")
	}
	if tx.CreatedAt.IsZero() {
		tx.CreatedAt = time.Now().UTC()
	}
	if _, err := s.db.Collection(transactionsCollection).InsertOne(ctx, tx); err != nil {
		return nil, err
	}
	return &tx, nil
}

func (s *Store) GetTransactionByID(ctx context.Context, id string) (*domain.Transaction, error) {
	var tx domain.Transaction
	err := s.db.Collection(transactionsCollection).FindOne(ctx, bson.M{"_id": id}).Decode(&tx)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &tx, nil
}

func (s *Store) ListTransactions(ctx context.Context) ([]domain.Transaction, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := s.db.Collection(transactionsCollection).Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	transactions := []domain.Transaction{}
	if err := cursor.All(ctx, &transactions); err != nil {
		return nil, err
	}
	return transactions, nil
}

// ListTransactionsByCustomer deliberately queries by equality only, without a
// server-side sort, so no composite index is required; callers order the
// result in memory.
func (s *Store) ListTransactionsByCustomer(ctx context.Context, customerID string) ([]domain.Transaction, error) {
	cursor, err := s.db.Collection(transactionsCollection).Find(ctx, bson.M{"customerId": customerID})
	if err != nil {
		return nil, err
	}
	transactions := []domain.Transaction{}
	if err := cursor.All(ctx, &transactions); err != nil {
		return nil, err
	}
	return transactions, nil
}

func (s *Store) DeleteTransaction(ctx context.Context, id string) error {
	return s.deleteByID(ctx, transactionsCollection, id)
}

func (s *Store) CreateMessage(ctx context.Context, msg domain.Message) (*domain.Message, error) {
	if msg.ParentName == "" || msg.Phone == "" {
		return nil, store.ErrValidation
	}
	if msg.ID == "" {
		msg.ID = xid.New("msg")
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now().UTC()
	}
	if _, err := s.db.Collection(messagesCollection).InsertOne(ctx, msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

func (s *Store) ListMessages(ctx context.Context) ([]domain.Message, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := s.db.Collection(messagesCollection).Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	messages := []domain.Message{}
	if err := cursor.All(ctx, &messages); err != nil {
		return nil, err
	}
	return messages, nil
}

func (s *Store) SetMessageRead(ctx context.Context, id string, read bool) error {
	result, err := s.db.Collection(messagesCollection).UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"read": read}},
	)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) DeleteMessage(ctx context.Context, id string) error {
	return s.deleteByID(ctx, messagesCollection, id)
}

func (s *Store) ListTestimonials(ctx context.Context) ([]domain.Testimonial, error) {
	cursor, err := s.db.Collection(testimonialsCollection).Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	testimonials := []domain.Testimonial{}
	if err := cursor.All(ctx, &testimonials); err != nil {
		return nil, err
	}
	return testimonials, nil
}

func (s *Store) CreateTestimonial(ctx context.Context, t domain.Testimonial) (*domain.Testimonial, error) {
	if t.Name == "" || t.Text == "" {
		return nil, store.ErrValidation
	}
	if t.ID == "" {
		t.ID = xid.New("tst")
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}
	if _, err := s.db.Collection(testimonialsCollection).InsertOne(ctx, t); err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *Store) UpdateTestimonial(ctx context.Context, t domain.Testimonial) (*domain.Testimonial, error) {
	update := bson.M{"$set": bson.M{
		"name":   t.Name,
		"text":   t.Text,
		"rating": t.Rating,
	}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var updated domain.Testimonial
	err := s.db.Collection(testimonialsCollection).FindOneAndUpdate(ctx, bson.M{"_id": t.ID}, update, opts).Decode(&updated)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func (s *Store) DeleteTestimonial(ctx context.Context, id string) error {
	return s.deleteByID(ctx, testimonialsCollection, id)
}

func (s *Store) ListImages(ctx context.Context) ([]domain.GalleryImage, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := s.db.Collection(imagesCollection).Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	images := []domain.GalleryImage{}
	if err := cursor.All(ctx, &images); err != nil {
		return nil, err
	}
	return images, nil
}

func (s *Store) CreateImage(ctx context.Context, img domain.GalleryImage) (*domain.GalleryImage, error) {
	if img.URL == "" {
		return nil, store.ErrValidation
	}
	if img.ID == "" {
		img.ID = xid.New("img")
	}
	if img.CreatedAt.IsZero() {
		img.CreatedAt = time.Now().UTC()
	}
	if _, err := s.db.Collection(imagesCollection).InsertOne(ctx, img); err != nil {
		return nil, err
	}
	return &img, nil
}

func (s *Store) DeleteImage(ctx context.Context, id string) error {
	return s.deleteByID(ctx, imagesCollection, id)
}

func (s *Store) GetSettings(ctx context.Context) (*domain.Settings, error) {
	var settings domain.Settings
	err := s.db.Collection(settingsCollection).FindOne(ctx, bson.M{"_id": settingsDocID}).Decode(&settings)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &settings, nil
}

func (s *Store) SaveSettings(ctx context.Context, settings domain.Settings) error {
	update := bson.M{"$set": bson.M{
		"phone":     settings.Phone,
		"email":     settings.Email,
		"address":   settings.Address,
		"whatsapp":  settings.WhatsApp,
		"instagram": settings.Instagram,
	}}
	opts := options.Update().SetUpsert(true)
	_, err := s.db.Collection(settingsCollection).UpdateOne(ctx, bson.M{"_id": settingsDocID}, update, opts)
	return err
}

func (s *Store) CreateUser(ctx context.Context, user domain.UserAccount) error {
	if user.Username == "" {
		return store.ErrValidation
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.Collection(usersCollection).InsertOne(ctx, user)
	if mongo.IsDuplicateKeyError(err) {
		return store.ErrDuplicate
	}
	return err
}

func (s *Store) ListUsers(ctx context.Context) ([]domain.UserAccount, error) {
	cursor, err := s.db.Collection(usersCollection).Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	users := []domain.UserAccount{}
	if err := cursor.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (s *Store) UpdateUserPassword(ctx context.Context, username string, password string) error {
	result, err := s.db.Collection(usersCollection).UpdateOne(ctx,
		bson.M{"_id": username},
		bson.M{"$set": bson.M{"password": password}},
	)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) deleteByID(ctx context.Context, collectionName string, id string) error {
	result, err := s.db.Collection(collectionName).DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}
