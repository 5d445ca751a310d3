package httpapi

import (
	"bytes"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"log"
	"net/http"
	"net/netip"
	"strings"
	"sync"
	"time"

	"littlelens/backend/internal/billing"
	"littlelens/backend/internal/domain"
	"littlelens/backend/internal/service"
	"littlelens/backend/internal/store"
)

type API struct {
	service       *service.Service
	auth          *AuthManager
	allowedOrigin string
	loginLimiter  *attemptLimiter
	csrfSecret    []byte
}

func New(svc *service.Service, auth *AuthManager, allowedOrigin string) *API {
	csrfSecret := make([]byte, 32)
	if _, err := rand.Read(csrfSecret); err != nil {
		// Fall back to a deterministic secret if crypto/rand fails (should not happen in practice).
		csrfSecret = []byte("csrf-fallback-secret-change-me!!")
	}
	return &API{
		service:       svc,
		auth:          auth,
		allowedOrigin: allowedOrigin,
		loginLimiter:  newAttemptLimiter(5, time.Minute),
		csrfSecret:    csrfSecret,
	}
}

// csrfTokenForHour computes an HMAC-SHA256 token for the given hour bucket
// (expressed as Unix time truncated to the hour). The token is hex-encoded.
func (a *API) csrfTokenForHour(hourBucket int64) string {
	h := hmac.New(sha256.New, a.csrfSecret)
	fmt.Fprintf(h, "%d", hourBucket)
	return hex.EncodeToString(h.Sum(nil))
}

// generateCSRFToken returns a token valid for the current hour bucket.
func (a *API) generateCSRFToken() string {
	now := time.Now().UTC()
	bucket := now.Truncate(time.Hour).Unix()
	return a.csrfTokenForHour(bucket)
}

// validateCSRFToken checks whether the provided token matches the current or
// previous hour bucket, giving a 2-hour validity window.
func (a *API) validateCSRFToken(token string) bool {
	if token == "" {
		return false
	}
	now := time.Now().UTC()
	currentBucket := now.Truncate(time.Hour).Unix()
	prevBucket := currentBucket - 3600

	expected1 := a.csrfTokenForHour(currentBucket)
	expected2 := a.csrfTokenForHour(prevBucket)

	return hmac.Equal([]byte(token), []byte(expected1)) ||
		hmac.Equal([]byte(token), []byte(expected2))
}

type attemptLimiter struct {
	mu      sync.Mutex
	max     int
	window  time.Duration
	entries map[string][]time.Time
}

func newAttemptLimiter(max int, window time.Duration) *attemptLimiter {
	if max < 1 {
		max = 1
	}
	if window <= 0 {
		window = time.Minute
	}
	return &attemptLimiter{max: max, window: window, entries: make(map[string][]time.Time)}
}

func (l *attemptLimiter) Allow(key string) bool {
	if l == nil {
		return true
	}
	now := time.Now()
	cutoff := now.Add(-l.window)

	l.mu.Lock()
	defer l.mu.Unlock()

	history := l.entries[key]
	kept := make([]time.Time, 0, len(history)+1)
	for _, ts := range history {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}
	if len(kept) >= l.max {
		l.entries[key] = kept
		return false
	}
	kept = append(kept, now)
	l.entries[key] = kept
	return true
}

func clientKey(r *http.Request) string {
	host := strings.TrimSpace(r.RemoteAddr)
	if host == "" {
		return "unknown"
	}
	if addr, err := netip.ParseAddrPort(host); err == nil {
		return addr.Addr().String()
	}
	if idx := strings.LastIndex(host, ":"); idx > 0 {
		return host[:idx]
	}
	return host
}

func (a *API) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", a.handleHealth)
	mux.HandleFunc("/api/v1/auth/login", a.handleLogin)
	mux.HandleFunc("/api/v1/auth/csrf-token", a.handleCSRFToken)

	// Public site surface: GET is open, mutations require a staff token.
	mux.HandleFunc("/api/v1/messages", a.handleMessages)
	mux.HandleFunc("/api/v1/messages/", a.requireAuth(a.handleMessageActions, "staff", "admin"))
	mux.HandleFunc("/api/v1/testimonials", a.handleTestimonials)
	mux.HandleFunc("/api/v1/testimonials/", a.requireAuth(a.handleTestimonialActions, "admin"))
	mux.HandleFunc("/api/v1/packages", a.handlePackages)
	mux.HandleFunc("/api/v1/packages/", a.requireAuth(a.handlePackageActions, "admin"))
	mux.HandleFunc("/api/v1/gallery", a.handleGallery)
	mux.HandleFunc("/api/v1/gallery/", a.requireAuth(a.handleGalleryActions, "admin"))

	mux.HandleFunc("/api/v1/catalog", a.requireAuth(a.handleCatalog, "staff", "admin"))
	mux.HandleFunc("/api/v1/billing/sessions", a.requireAuth(a.handleBillingSessions, "staff", "admin"))
	mux.HandleFunc("/api/v1/billing/sessions/", a.requireAuth(a.handleBillingSessionActions, "staff", "admin"))

	mux.HandleFunc("/api/v1/customers", a.requireAuth(a.handleCustomers, "staff", "admin"))
	mux.HandleFunc("/api/v1/customers/suggest", a.requireAuth(a.handleCustomerSuggest, "staff", "admin"))
	mux.HandleFunc("/api/v1/customers/refresh", a.requireAuth(a.handleCustomerRefresh, "staff", "admin"))
	mux.HandleFunc("/api/v1/customers/", a.requireAuth(a.handleCustomerActions, "staff", "admin"))

	mux.HandleFunc("/api/v1/transactions", a.requireAuth(a.handleTransactions, "staff", "admin"))
	mux.HandleFunc("/api/v1/transactions/", a.requireAuth(a.handleTransactionActions, "staff", "admin"))

	mux.HandleFunc("/api/v1/settings", a.requireAuth(a.handleSettings, "staff", "admin"))
	mux.HandleFunc("/api/v1/dashboard", a.requireAuth(a.handleDashboard, "staff", "admin"))
	mux.HandleFunc("/api/v1/reconciliation", a.requireAuth(a.handleReconciliation, "admin"))
	mux.HandleFunc("/api/v1/users/staff", a.requireAuth(a.handleStaffAccounts, "admin"))

	return a.withMiddleware(mux)
}

func (a *API) requireAuth(next http.HandlerFunc, roles ...string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := a.authenticate(r)
		if err != nil {
			writeError(w, http.StatusUnauthorized, err)
			return
		}

		if len(roles) > 0 && !isRoleAllowed(actor.Role, roles) {
			writeError(w, http.StatusForbidden, errors.New("forbidden role"))
			return
		}

		next(w, r.WithContext(service.WithActor(r.Context(), actor)))
	}
}

func (a *API) authenticate(r *http.Request) (domain.Actor, error) {
	authorization := strings.TrimSpace(r.Header.Get("Authorization"))
	if !strings.HasPrefix(strings.ToLower(authorization), "bearer ") {
		return domain.Actor{}, errors.New("missing bearer token")
	}
	token := strings.TrimSpace(authorization[len("Bearer "):])
	return a.auth.ParseToken(token)
}

func isRoleAllowed(role string, allowed []string) bool {
	for _, allow := range allowed {
		if role == allow {
			return true
		}
	}
	return false
}

// statusForError maps domain and store sentinels onto HTTP status codes.
func statusForError(err error) int {
	switch {
	case errors.Is(err, store.ErrNotFound), errors.Is(err, billing.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, store.ErrDuplicate):
		return http.StatusConflict
	case errors.Is(err, store.ErrValidation),
		errors.Is(err, billing.ErrEmptyBill),
		errors.Is(err, billing.ErrMissingCustomerInfo),
		errors.Is(err, billing.ErrInvalidItem),
		errors.Is(err, billing.ErrInvalidDiscount):
		return http.StatusBadRequest
	case strings.Contains(strings.ToLower(err.Error()), "admin role required"):
		return http.StatusForbidden
	default:
		return http.StatusUnprocessableEntity
	}
}

func (a *API) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"ok": true,
		"at": time.Now().UTC().Format(time.RFC3339),
	})
}

func (a *API) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w)
		return
	}
	if !a.loginLimiter.Allow(clientKey(r)) {
		writeError(w, http.StatusTooManyRequests, errors.New("too many login attempts"))
		return
	}

	var req domain.LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	resp, err := a.auth.Login(req)
	if err != nil {
		writeError(w, http.StatusUnauthorized, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// handleCSRFToken returns a stateless CSRF token valid for the current hour bucket.
// Clients must include this token in the X-CSRF-Token header for all mutating requests.
func (a *API) handleCSRFToken(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"csrf_token": a.generateCSRFToken(),
	})
}

// csrfExemptPaths lists paths that are exempt from CSRF validation.
// Login and the public booking form are called without a prior token fetch.
var csrfExemptPaths = []string{
	"/api/v1/auth/login",
	"/api/v1/messages",
}

// checkCSRF enforces CSRF token validation for state-changing methods.
// Returns false and writes an error response if validation fails.
func (a *API) checkCSRF(w http.ResponseWriter, r *http.Request) bool {
	method := r.Method
	if method != http.MethodPost && method != http.MethodPut && method != http.MethodPatch && method != http.MethodDelete {
		return true
	}
	for _, exempt := range csrfExemptPaths {
		if r.URL.Path == exempt {
			return true
		}
	}
	token := strings.TrimSpace(r.Header.Get("X-CSRF-Token"))
	if !a.validateCSRFToken(token) {
		writeError(w, http.StatusForbidden, errors.New("missing or invalid CSRF token"))
		return false
	}
	return true
}

func (a *API) handleCatalog(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}

	refresh := strings.EqualFold(r.URL.Query().Get("refresh"), "true")
	products, err := a.service.LoadCatalog(r.Context(), refresh)
	if err != nil {
		writeError(w, statusForError(err), err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"products": products})
}

func (a *API) handleBillingSessions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w)
		return
	}

	view, err := a.service.CreateBillSession(r.Context())
	if err != nil {
		writeError(w, statusForError(err), err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"bill": view})
}

func (a *API) handleBillingSessionActions(w http.ResponseWriter, r *http.Request) {
	prefix := "/api/v1/billing/sessions/"
	tail := strings.Trim(strings.TrimPrefix(r.URL.Path, prefix), "/")
	if tail == "" {
		writeError(w, http.StatusBadRequest, errors.New("session id required"))
		return
	}
	parts := strings.Split(tail, "/")
	sessionID := parts[0]

	switch {
	case len(parts) == 1:
		if r.Method != http.MethodGet {
			writeMethodNotAllowed(w)
			return
		}
		view, err := a.service.GetBill(r.Context(), sessionID)
		if err != nil {
			writeError(w, statusForError(err), err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"bill": view})

	case len(parts) == 2 && parts[1] == "items":
		if r.Method != http.MethodPost {
			writeMethodNotAllowed(w)
			return
		}
		var req domain.BillItemRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		view, err := a.service.AddBillItem(r.Context(), sessionID, req.Name, req.Rate, req.Qty)
		if err != nil {
			writeError(w, statusForError(err), err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"bill": view})

	case len(parts) == 3 && parts[1] == "items":
		if r.Method != http.MethodDelete {
			writeMethodNotAllowed(w)
			return
		}
		view, err := a.service.RemoveBillItem(r.Context(), sessionID, parts[2])
		if err != nil {
			writeError(w, statusForError(err), err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"bill": view})

	case len(parts) == 2 && parts[1] == "discount":
		if r.Method != http.MethodPut {
			writeMethodNotAllowed(w)
			return
		}
		var req domain.BillDiscountRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		view, err := a.service.SetBillDiscount(r.Context(), sessionID, req.Percent)
		if err != nil {
			writeError(w, statusForError(err), err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"bill": view})

	case len(parts) == 2 && parts[1] == "customer":
		if r.Method != http.MethodPut {
			writeMethodNotAllowed(w)
			return
		}
		var req domain.BillCustomerRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		view, err := a.service.SetBillCustomer(r.Context(), sessionID, req.CustomerID, req.Name, req.Phone)
		if err != nil {
			writeError(w, statusForError(err), err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"bill": view})

	case len(parts) == 2 && parts[1] == "clear":
		if r.Method != http.MethodPost {
			writeMethodNotAllowed(w)
			return
		}
		view, err := a.service.ClearBill(r.Context(), sessionID)
		if err != nil {
			writeError(w, statusForError(err), err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"bill": view})

	case len(parts) == 2 && parts[1] == "complete":
		if r.Method != http.MethodPost {
			writeMethodNotAllowed(w)
			return
		}
		tx, err := a.service.CompleteBill(r.Context(), sessionID)
		if err != nil {
			writeError(w, statusForError(err), err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{"transaction": tx})

	default:
		writeError(w, http.StatusBadRequest, errors.New("unknown billing session action"))
	}
}

func (a *API) handleCustomers(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		customers, err := a.service.ListCustomers(r.Context())
		if err != nil {
			writeError(w, statusForError(err), err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"customers": customers})
	case http.MethodPost:
		var req domain.CustomerCreateRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		customer, err := a.service.CreateCustomer(r.Context(), req)
		if err != nil {
			writeError(w, statusForError(err), err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{"customer": customer})
	default:
		writeMethodNotAllowed(w)
	}
}

func (a *API) handleCustomerSuggest(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}

	matches, err := a.service.SuggestCustomers(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		writeError(w, statusForError(err), err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"customers": matches})
}

func (a *API) handleCustomerRefresh(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w)
		return
	}

	if err := a.service.RefreshCustomers(r.Context()); err != nil {
		writeError(w, statusForError(err), err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (a *API) handleCustomerActions(w http.ResponseWriter, r *http.Request) {
	prefix := "/api/v1/customers/"
	tail := strings.Trim(strings.TrimPrefix(r.URL.Path, prefix), "/")
	if tail == "" {
		writeError(w, http.StatusBadRequest, errors.New("customer id required"))
		return
	}
	parts := strings.Split(tail, "/")
	customerID := parts[0]

	if len(parts) == 2 && parts[1] == "history" {
		if r.Method != http.MethodGet {
			writeMethodNotAllowed(w)
			return
		}
		transactions, err := a.service.CustomerHistory(r.Context(), customerID)
		if err != nil {
			writeError(w, statusForError(err), err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"transactions": transactions})
		return
	}
	if len(parts) != 1 {
		writeError(w, http.StatusBadRequest, errors.New("unknown customer action"))
		return
	}

	switch r.Method {
	case http.MethodPatch:
		var req domain.CustomerUpdateRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		customer, err := a.service.UpdateCustomer(r.Context(), customerID, req)
		if err != nil {
			writeError(w, statusForError(err), err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"customer": customer})
	case http.MethodDelete:
		if err := a.service.DeleteCustomer(r.Context(), customerID); err != nil {
			writeError(w, statusForError(err), err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	default:
		writeMethodNotAllowed(w)
	}
}

func (a *API) handleTransactions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}

	transactions, err := a.service.ListTransactions(r.Context())
	if err != nil {
		writeError(w, statusForError(err), err)
		return
	}

	if strings.EqualFold(r.URL.Query().Get("format"), "csv") {
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", `attachment; filename="transactions.csv"`)
		_, _ = w.Write([]byte(transactionsToCSV(transactions)))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"transactions": transactions})
}

func (a *API) handleTransactionActions(w http.ResponseWriter, r *http.Request) {
	prefix := "/api/v1/transactions/"
	tail := strings.Trim(strings.TrimPrefix(r.URL.Path, prefix), "/")
	if tail == "" {
		writeError(w, http.StatusBadRequest, errors.New("transaction id required"))
		return
	}
	parts := strings.Split(tail, "/")
	transactionID := parts[0]

	if len(parts) == 2 && parts[1] == "receipt" {
		if r.Method != http.MethodGet {
			writeMethodNotAllowed(w)
			return
		}
		a.handleReceipt(w, r, transactionID)
		return
	}
	if len(parts) != 1 {
		writeError(w, http.StatusBadRequest, errors.New("unknown transaction action"))
		return
	}

	if r.Method != http.MethodDelete {
		writeMethodNotAllowed(w)
		return
	}
	if err := a.service.DeleteTransaction(r.Context(), transactionID); err != nil {
		writeError(w, statusForError(err), err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

// handleReceipt renders a single transaction as a printable page.
func (a *API) handleReceipt(w http.ResponseWriter, r *http.Request, transactionID string) {
	tx, err := a.service.GetTransaction(r.Context(), transactionID)
	if err != nil {
		writeError(w, statusForError(err), err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(receiptToPrintableHTML(tx)))
}

func (a *API) handleMessages(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		// Public booking-form submission, no token needed.
		var req domain.MessageCreateRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		msg, err := a.service.SubmitMessage(r.Context(), req)
		if err != nil {
			writeError(w, statusForError(err), err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{"message": msg})
	case http.MethodGet:
		actor, err := a.authenticate(r)
		if err != nil {
			writeError(w, http.StatusUnauthorized, err)
			return
		}
		if !isRoleAllowed(actor.Role, []string{"staff", "admin"}) {
			writeError(w, http.StatusForbidden, errors.New("forbidden role"))
			return
		}
		messages, err := a.service.ListMessages(service.WithActor(r.Context(), actor))
		if err != nil {
			writeError(w, statusForError(err), err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"messages": messages})
	default:
		writeMethodNotAllowed(w)
	}
}

func (a *API) handleMessageActions(w http.ResponseWriter, r *http.Request) {
	prefix := "/api/v1/messages/"
	messageID := strings.Trim(strings.TrimPrefix(r.URL.Path, prefix), "/")
	if messageID == "" {
		writeError(w, http.StatusBadRequest, errors.New("message id required"))
		return
	}

	switch r.Method {
	case http.MethodPatch:
		var req struct {
			Read bool `json:"read"`
		}
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		if err := a.service.SetMessageRead(r.Context(), messageID, req.Read); err != nil {
			writeError(w, statusForError(err), err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	case http.MethodDelete:
		if err := a.service.DeleteMessage(r.Context(), messageID); err != nil {
			writeError(w, statusForError(err), err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	default:
		writeMethodNotAllowed(w)
	}
}

func (a *API) handleTestimonials(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		testimonials, err := a.service.ListTestimonials(r.Context())
		if err != nil {
			writeError(w, statusForError(err), err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"testimonials": testimonials})
	case http.MethodPost:
		a.requireAuth(func(w http.ResponseWriter, r *http.Request) {
			var req domain.Testimonial
			if err := decodeJSON(r, &req); err != nil {
				writeError(w, http.StatusBadRequest, err)
				return
			}
			created, err := a.service.CreateTestimonial(r.Context(), req)
			if err != nil {
				writeError(w, statusForError(err), err)
				return
			}
			writeJSON(w, http.StatusCreated, map[string]any{"testimonial": created})
		}, "admin")(w, r)
	default:
		writeMethodNotAllowed(w)
	}
}

func (a *API) handleTestimonialActions(w http.ResponseWriter, r *http.Request) {
	prefix := "/api/v1/testimonials/"
	testimonialID := strings.Trim(strings.TrimPrefix(r.URL.Path, prefix), "/")
	if testimonialID == "" {
		writeError(w, http.StatusBadRequest, errors.New("testimonial id required"))
		return
	}

	switch r.Method {
	case http.MethodPut:
		var req domain.Testimonial
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		req.ID = testimonialID
		updated, err := a.service.UpdateTestimonial(r.Context(), req)
		if err != nil {
			writeError(w, statusForError(err), err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"testimonial": updated})
	case http.MethodDelete:
		if err := a.service.DeleteTestimonial(r.Context(), testimonialID); err != nil {
			writeError(w, statusForError(err), err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	default:
		writeMethodNotAllowed(w)
	}
}

func (a *API) handlePackages(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		packages, err := a.service.ListPackages(r.Context())
		if err != nil {
			writeError(w, statusForError(err), err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"packages": packages})
	case http.MethodPost:
		a.requireAuth(func(w http.ResponseWriter, r *http.Request) {
			var req domain.PackageItem
			if err := decodeJSON(r, &req); err != nil {
				writeError(w, http.StatusBadRequest, err)
				return
			}
			created, err := a.service.CreatePackage(r.Context(), req)
			if err != nil {
				writeError(w, statusForError(err), err)
				return
			}
			writeJSON(w, http.StatusCreated, map[string]any{"package": created})
		}, "admin")(w, r)
	default:
		writeMethodNotAllowed(w)
	}
}

func (a *API) handlePackageActions(w http.ResponseWriter, r *http.Request) {
	prefix := "/api/v1/packages/"
	packageID := strings.Trim(strings.TrimPrefix(r.URL.Path, prefix), "/")
	if packageID == "" {
		writeError(w, http.StatusBadRequest, errors.New("package id required"))
		return
	}

	switch r.Method {
	case http.MethodPut:
		var req domain.PackageItem
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		req.ID = packageID
		updated, err := a.service.UpdatePackage(r.Context(), req)
		if err != nil {
			writeError(w, statusForError(err), err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"package": updated})
	case http.MethodDelete:
		if err := a.service.DeletePackage(r.Context(), packageID); err != nil {
			writeError(w, statusForError(err), err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	default:
		writeMethodNotAllowed(w)
	}
}

func (a *API) handleGallery(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		images, err := a.service.ListImages(r.Context())
		if err != nil {
			writeError(w, statusForError(err), err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"images": images})
	case http.MethodPost:
		a.requireAuth(func(w http.ResponseWriter, r *http.Request) {
			var req domain.GalleryImage
			if err := decodeJSON(r, &req); err != nil {
				writeError(w, http.StatusBadRequest, err)
				return
			}
			created, err := a.service.CreateImage(r.Context(), req)
			if err != nil {
				writeError(w, statusForError(err), err)
				return
			}
			writeJSON(w, http.StatusCreated, map[string]any{"image": created})
		}, "admin")(w, r)
	default:
		writeMethodNotAllowed(w)
	}
}

func (a *API) handleGalleryActions(w http.ResponseWriter, r *http.Request) {
	prefix := "/api/v1/gallery/"
	imageID := strings.Trim(strings.TrimPrefix(r.URL.Path, prefix), "/")
	if imageID == "" {
		writeError(w, http.StatusBadRequest, errors.New("image id required"))
		return
	}
	if r.Method != http.MethodDelete {
		writeMethodNotAllowed(w)
		return
	}
	if err := a.service.DeleteImage(r.Context(), imageID); err != nil {
		writeError(w, statusForError(err), err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (a *API) handleSettings(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		settings, err := a.service.GetSettings(r.Context())
		if err != nil {
			writeError(w, statusForError(err), err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"settings": settings})
	case http.MethodPut:
		var req domain.Settings
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		if err := a.service.SaveSettings(r.Context(), req); err != nil {
			writeError(w, statusForError(err), err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"settings": req})
	default:
		writeMethodNotAllowed(w)
	}
}

func (a *API) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}

	stats, err := a.service.DashboardStats(r.Context())
	if err != nil {
		writeError(w, statusForError(err), err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (a *API) handleReconciliation(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}

	report, err := a.service.Reconcile(r.Context())
	if err != nil {
		writeError(w, statusForError(err), err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (a *API) handleStaffAccounts(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, map[string]any{"staff": a.auth.ListStaff()})
	case http.MethodPost:
		var req domain.StaffCreateRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		staff, err := a.auth.CreateStaff(req)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{"staff": staff})
	default:
		writeMethodNotAllowed(w)
	}
}

func (a *API) withMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		w.Header().Set("Cross-Origin-Opener-Policy", "same-origin")
		w.Header().Set("Access-Control-Allow-Origin", a.allowedOrigin)
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-CSRF-Token")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,PUT,PATCH,DELETE,OPTIONS")
		w.Header().Set("Vary", "Origin")

		if (r.Method == http.MethodPost || r.Method == http.MethodPatch || r.Method == http.MethodPut) && strings.Contains(strings.ToLower(r.Header.Get("Content-Type")), "application/json") {
			r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		// Enforce CSRF protection for all state-changing requests.
		if !a.checkCSRF(w, r) {
			return
		}

		startedAt := time.Now()
		next.ServeHTTP(w, r)
		log.Printf("%s %s %s", r.Method, r.URL.Path, time.Since(startedAt))
	})
}

func transactionsToCSV(transactions []domain.Transaction) string {
	lines := []string{"id,customer_name,customer_phone,subtotal,discount_percent,discount_amount,grand_total,status,created_at"}
	for _, tx := range transactions {
		lines = append(lines, fmt.Sprintf("%s,%s,%s,%.2f,%.2f,%.2f,%.2f,%s,%s",
			tx.ID,
			strings.ReplaceAll(tx.CustomerName, ",", " "),
			tx.CustomerPhone,
			tx.Subtotal,
			tx.DiscountPercent,
			tx.DiscountAmount,
			tx.GrandTotal,
			tx.Status,
			tx.CreatedAt.Format(time.RFC3339),
		))
	}
	return strings.Join(lines, "\n") + "\n"
}

// receiptHTMLTmpl renders a committed transaction as a printable receipt.
// All user-controlled fields are auto-escaped by html/template.
var receiptHTMLTmpl = template.Must(template.New("receipt").Parse(`<!doctype html>
<html>
<head>
  <meta charset="utf-8" />
  <title>Receipt {{.ID}}</title>
  <style>
    body { font-family: sans-serif; margin: 24px; max-width: 420px; }
    table { width: 100%; border-collapse: collapse; margin-top: 8px; }
    th, td { border-bottom: 1px solid #ddd; padding: 6px; font-size: 13px; text-align: left; }
    .totals td { border: none; padding: 3px 6px; }
  </style>
</head>
<body>
  <h2>Little Lens Studio</h2>
  <p>Receipt {{.ID}}</p>
  <p>{{.CustomerName}} &middot; {{.CustomerPhone}}</p>
  <p>{{.CreatedAt.Format "2006-01-02 15:04"}}</p>

  <table>
    <thead><tr><th>Item</th><th>Qty</th><th>Rate</th><th>Amount</th></tr></thead>
    <tbody>{{range .Items}}<tr><td>{{.Name}}</td><td>{{.Qty}}</td><td>{{printf "%.2f" .Rate}}</td><td>{{printf "%.2f" .Amount}}</td></tr>{{end}}</tbody>
  </table>

  <table class="totals">
    <tr><td>Subtotal</td><td style="text-align:right;">{{printf "%.2f" .Subtotal}}</td></tr>
    <tr><td>Discount ({{printf "%.0f" .DiscountPercent}}%)</td><td style="text-align:right;">-{{printf "%.2f" .DiscountAmount}}</td></tr>
    <tr><td><strong>Total</strong></td><td style="text-align:right;"><strong>{{printf "%.2f" .GrandTotal}}</strong></td></tr>
  </table>
  <p>Thank you!</p>
</body>
</html>
`))

func receiptToPrintableHTML(tx domain.Transaction) string {
	var buf bytes.Buffer
	if err := receiptHTMLTmpl.Execute(&buf, tx); err != nil {
		// Fallback: return a plain error page rather than leaking internal details.
		return "<!doctype html><html><body><p>Receipt rendering error.</p></body></html>"
	}
	return buf.String()
}

func decodeJSON(r *http.Request, dest any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dest); err != nil {
		return err
	}
	return nil
}

func writeMethodNotAllowed(w http.ResponseWriter) {
	writeError(w, http.StatusMethodNotAllowed, errors.New("method not allowed"))
}

func writeError(w http.ResponseWriter, status int, err error) {
	// For 5xx responses, return a generic message to avoid leaking internal
	// implementation details (stack traces, driver errors, file paths, etc.).
	// 4xx responses are user-facing so we return the original error message.
	msg := err.Error()
	if status >= 500 {
		log.Printf("internal error (status %d): %v", status, err)
		msg = "internal server error"
	}
	writeJSON(w, status, map[string]any{
		"error": msg,
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
