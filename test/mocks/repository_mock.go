// Package mocks provides in-memory implementations of the port interfaces
// for service and handler tests.
package mocks

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/AchilleasB/campus-library/library-service/internal/core/domain"
	"github.com/AchilleasB/campus-library/library-service/internal/core/ports"
	"github.com/AchilleasB/campus-library/library-service/internal/core/rules"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MockLibraryRepository implements ports.LibraryRepository in memory.
// Mutating methods hold the lock for their whole body, which gives them the
// same all-or-nothing behavior as the SQL transactions.
type MockLibraryRepository struct {
	mu sync.RWMutex

	users        map[string]domain.User
	categories   map[string]domain.Category
	books        map[string]domain.Book
	loans        map[string]domain.Loan
	reservations map[string]domain.Reservation
	fines        map[string]domain.Fine
	loanReqs     map[string]domain.LoanRequest
	renewalReqs  map[string]domain.RenewalRequest

	// Outbox records written alongside state changes
	Events []ports.LibraryEvent

	// Call tracking
	CreateLoanCalls []domain.Loan
	ReturnLoanCalls []domain.LoanReturn

	// Error injection
	FindUserError         error
	PendingFineTotalError error
	CreateLoanError       error
	ReturnLoanError       error
	DashboardStatsError   error

	// BeforeCreateLoan runs before CreateLoan takes the lock. Tests use it
	// to line up concurrent callers.
	BeforeCreateLoan func()
}

var _ ports.LibraryRepository = (*MockLibraryRepository)(nil)

func NewMockLibraryRepository() *MockLibraryRepository {
	return &MockLibraryRepository{
		users:        make(map[string]domain.User),
		categories:   make(map[string]domain.Category),
		books:        make(map[string]domain.Book),
		loans:        make(map[string]domain.Loan),
		reservations: make(map[string]domain.Reservation),
		fines:        make(map[string]domain.Fine),
		loanReqs:     make(map[string]domain.LoanRequest),
		renewalReqs:  make(map[string]domain.RenewalRequest),
	}
}

// Seed helpers

func (m *MockLibraryRepository) SeedUser(u domain.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[u.ID] = u
}

func (m *MockLibraryRepository) SeedCategory(c domain.Category) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.categories[c.ID] = c
}

func (m *MockLibraryRepository) SeedBook(b domain.Book) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.books[b.ID] = b
}

func (m *MockLibraryRepository) SeedLoan(l domain.Loan) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loans[l.ID] = l
}

func (m *MockLibraryRepository) SeedReservation(r domain.Reservation) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reservations[r.ID] = r
}

func (m *MockLibraryRepository) SeedFine(f domain.Fine) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fines[f.ID] = f
}

func (m *MockLibraryRepository) SeedLoanRequest(r domain.LoanRequest) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loanReqs[r.ID] = r
}

func (m *MockLibraryRepository) SeedRenewalRequest(r domain.RenewalRequest) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.renewalReqs[r.ID] = r
}

// Inspection helpers

func (m *MockLibraryRepository) Book(id string) domain.Book {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.books[id]
}

func (m *MockLibraryRepository) Loan(id string) domain.Loan {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.loans[id]
}

func (m *MockLibraryRepository) Reservation(id string) domain.Reservation {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.reservations[id]
}

func (m *MockLibraryRepository) User(id string) domain.User {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.users[id]
}

func (m *MockLibraryRepository) LoanRequest(id string) domain.LoanRequest {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.loanReqs[id]
}

func (m *MockLibraryRepository) RenewalRequest(id string) domain.RenewalRequest {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.renewalReqs[id]
}

// FinesFor returns every fine of a user.
func (m *MockLibraryRepository) FinesFor(userID string) []domain.Fine {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []domain.Fine
	for _, f := range m.fines {
		if f.UserID == userID {
			out = append(out, f)
		}
	}
	return out
}

// LoanCount returns how many loans exist for a book.
func (m *MockLibraryRepository) LoanCount(bookID string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, l := range m.loans {
		if l.BookID == bookID {
			n++
		}
	}
	return n
}

// EventTypes returns the outbox event types in write order.
func (m *MockLibraryRepository) EventTypes() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	types := make([]string, len(m.Events))
	for i, e := range m.Events {
		types[i] = e.Type
	}
	return types
}

func (m *MockLibraryRepository) emit(eventType, aggregateID string, at time.Time) {
	m.Events = append(m.Events, ports.LibraryEvent{
		ID:          uuid.NewString(),
		Type:        eventType,
		AggregateID: aggregateID,
		OccurredAt:  at,
	})
}

// Users

func (m *MockLibraryRepository) FindUser(ctx context.Context, id string) (*domain.User, error) {
	if m.FindUserError != nil {
		return nil, m.FindUserError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return &u, nil
}

func (m *MockLibraryRepository) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, u := range m.users {
		if u.Username == username {
			found := u
			return &found, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (m *MockLibraryRepository) ListUsers(ctx context.Context) ([]domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]domain.User, 0, len(m.users))
	for _, u := range m.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *MockLibraryRepository) CreateUser(ctx context.Context, user domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Username == user.Username || u.Email == user.Email {
			return domain.ErrDuplicateIdentity
		}
	}
	m.users[user.ID] = user
	return nil
}

func (m *MockLibraryRepository) UpdateUser(ctx context.Context, user domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[user.ID]; !ok {
		return domain.ErrUserNotFound
	}
	for id, u := range m.users {
		if id != user.ID && u.Email == user.Email {
			return domain.ErrDuplicateIdentity
		}
	}
	m.users[user.ID] = user
	return nil
}

// Catalog

func (m *MockLibraryRepository) ListCategories(ctx context.Context) ([]domain.Category, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]domain.Category, 0, len(m.categories))
	for _, c := range m.categories {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *MockLibraryRepository) FindCategory(ctx context.Context, id string) (*domain.Category, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.categories[id]
	if !ok {
		return nil, domain.ErrCategoryNotFound
	}
	return &c, nil
}

func (m *MockLibraryRepository) CreateCategory(ctx context.Context, category domain.Category) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.categories {
		if strings.EqualFold(c.Name, category.Name) {
			return domain.ErrDuplicateIdentity
		}
	}
	m.categories[category.ID] = category
	return nil
}

func (m *MockLibraryRepository) FindBook(ctx context.Context, id string) (*domain.Book, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, ok := m.books[id]
	if !ok {
		return nil, domain.ErrBookNotFound
	}
	return &b, nil
}

func (m *MockLibraryRepository) ListBooks(ctx context.Context, filter domain.BookFilter) ([]domain.Book, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	search := strings.ToLower(filter.Search)
	out := make([]domain.Book, 0)
	for _, b := range m.books {
		if filter.Department != "" && b.Department != filter.Department {
			continue
		}
		if filter.CategoryID != "" && (b.CategoryID == nil || *b.CategoryID != filter.CategoryID) {
			continue
		}
		if search != "" {
			isbn := ""
			if b.ISBN != nil {
				isbn = *b.ISBN
			}
			if !strings.Contains(strings.ToLower(b.Title), search) &&
				!strings.Contains(strings.ToLower(b.Author), search) &&
				!strings.Contains(strings.ToLower(isbn), search) {
				continue
			}
		}
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Title < out[j].Title })
	return out, nil
}

func (m *MockLibraryRepository) CreateBook(ctx context.Context, book domain.Book) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if book.ISBN != nil {
		for _, b := range m.books {
			if b.ISBN != nil && *b.ISBN == *book.ISBN {
				return domain.ErrDuplicateIdentity
			}
		}
	}
	m.books[book.ID] = book
	return nil
}

func (m *MockLibraryRepository) UpdateBook(ctx context.Context, book domain.Book) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	current, ok := m.books[book.ID]
	if !ok {
		return domain.ErrBookNotFound
	}
	// availability moves by the change in total, as in the SQL adapter
	book.AvailableCopies = current.AvailableCopies + (book.TotalCopies - current.TotalCopies)
	if book.AvailableCopies < 0 || book.AvailableCopies > book.TotalCopies {
		return domain.Invalid("availableCopies must be between 0 and totalCopies")
	}
	m.books[book.ID] = book
	return nil
}

func (m *MockLibraryRepository) DeleteBook(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.books[id]; !ok {
		return domain.ErrBookNotFound
	}
	for _, l := range m.loans {
		if l.BookID == id {
			return domain.ErrBookHasLoans
		}
	}
	for rid, r := range m.reservations {
		if r.BookID == id {
			delete(m.reservations, rid)
		}
	}
	delete(m.books, id)
	return nil
}

// Loans

func (m *MockLibraryRepository) FindLoan(ctx context.Context, id string) (*domain.Loan, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	l, ok := m.loans[id]
	if !ok {
		return nil, domain.ErrLoanNotFound
	}
	return &l, nil
}

func (m *MockLibraryRepository) ListLoans(ctx context.Context, filter domain.LoanFilter) ([]domain.LoanDetails, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]domain.LoanDetails, 0)
	for _, l := range m.loans {
		if filter.UserID != "" && l.UserID != filter.UserID {
			continue
		}
		if filter.BookID != "" && l.BookID != filter.BookID {
			continue
		}
		switch filter.Status {
		case "":
		case domain.LoanStatusOverdue:
			if !l.IsOverdue(filter.Now) {
				continue
			}
		default:
			if string(l.Status) != filter.Status {
				continue
			}
		}
		out = append(out, domain.LoanDetails{
			Loan:       l,
			UserName:   m.users[l.UserID].Name,
			BookTitle:  m.books[l.BookID].Title,
			BookAuthor: m.books[l.BookID].Author,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LoanDate.After(out[j].LoanDate) })
	return out, nil
}

func (m *MockLibraryRepository) ActiveLoans(ctx context.Context, userID string) ([]domain.ActiveLoan, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]domain.ActiveLoan, 0)
	for _, l := range m.loans {
		if l.UserID == userID && l.IsActive() {
			out = append(out, domain.ActiveLoan{LoanID: l.ID, BookID: l.BookID, Title: m.books[l.BookID].Title})
		}
	}
	return out, nil
}

func (m *MockLibraryRepository) CreateLoan(ctx context.Context, loan domain.Loan) error {
	if m.BeforeCreateLoan != nil {
		m.BeforeCreateLoan()
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.CreateLoanCalls = append(m.CreateLoanCalls, loan)
	if m.CreateLoanError != nil {
		return m.CreateLoanError
	}

	book, ok := m.books[loan.BookID]
	if !ok || book.AvailableCopies <= 0 {
		return domain.ErrCapacityExceeded
	}
	for _, l := range m.loans {
		if l.UserID == loan.UserID && l.BookID == loan.BookID && l.IsActive() {
			return domain.ErrAlreadyBorrowed
		}
	}

	book.AvailableCopies--
	m.books[book.ID] = book
	m.loans[loan.ID] = loan

	for id, r := range m.reservations {
		if r.UserID == loan.UserID && r.BookID == loan.BookID && r.Status.IsOpen() {
			r.Status = domain.ReservationCompleted
			m.reservations[id] = r
		}
	}

	m.emit(domain.EventLoanCreated, loan.ID, loan.LoanDate)
	return nil
}

func (m *MockLibraryRepository) ReturnLoan(ctx context.Context, ret domain.LoanReturn) (*domain.ReturnOutcome, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.ReturnLoanCalls = append(m.ReturnLoanCalls, ret)
	if m.ReturnLoanError != nil {
		return nil, m.ReturnLoanError
	}

	loan, ok := m.loans[ret.Loan.ID]
	if !ok {
		return nil, domain.ErrLoanNotFound
	}
	if !loan.IsActive() {
		return nil, domain.ErrLoanNotActive
	}

	returnedAt := ret.ReturnedAt
	loan.Status = domain.LoanReturned
	loan.ReturnDate = &returnedAt
	m.loans[loan.ID] = loan
	m.emit(domain.EventLoanReturned, loan.ID, returnedAt)

	outcome := &domain.ReturnOutcome{}
	if ret.Fine != nil {
		m.fines[ret.Fine.ID] = *ret.Fine
		fine := *ret.Fine
		outcome.Fine = &fine
		m.emit(domain.EventFineAssessed, fine.ID, returnedAt)
	}

	if book, ok := m.books[loan.BookID]; ok && book.AvailableCopies < book.TotalCopies {
		book.AvailableCopies++
		m.books[book.ID] = book
	}

	outcome.Promoted = m.promoteNext(loan.BookID, returnedAt, ret.PickupDeadline)
	return outcome, nil
}

// promoteNext must be called with the lock held.
func (m *MockLibraryRepository) promoteNext(bookID string, at, deadline time.Time) *domain.Reservation {
	var queue []domain.Reservation
	for _, r := range m.reservations {
		if r.BookID == bookID {
			queue = append(queue, r)
		}
	}
	next := rules.NextInQueue(queue)
	if next == nil {
		return nil
	}
	notifiedAt, expiresAt := at, deadline
	next.Status = domain.ReservationNotified
	next.NotificationDate = &notifiedAt
	next.ExpirationDate = &expiresAt
	m.reservations[next.ID] = *next
	m.emit(domain.EventReservationNotified, next.ID, at)
	return next
}

func (m *MockLibraryRepository) RenewLoan(ctx context.Context, loanID string, expectedRenewals int, dueDate time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	loan, ok := m.loans[loanID]
	if !ok {
		return domain.ErrLoanNotFound
	}
	if !loan.IsActive() || loan.RenewalCount != expectedRenewals {
		return domain.ErrLoanChanged
	}
	loan.DueDate = dueDate
	loan.RenewalCount++
	m.loans[loanID] = loan
	m.emit(domain.EventLoanRenewed, loanID, time.Now())
	return nil
}

// Reservations

func (m *MockLibraryRepository) FindReservation(ctx context.Context, id string) (*domain.Reservation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.reservations[id]
	if !ok {
		return nil, domain.ErrReservationNotFound
	}
	return &r, nil
}

func (m *MockLibraryRepository) matchReservations(filter domain.ReservationFilter, openOnly bool) []domain.Reservation {
	out := make([]domain.Reservation, 0)
	for _, r := range m.reservations {
		if filter.UserID != "" && r.UserID != filter.UserID {
			continue
		}
		if filter.BookID != "" && r.BookID != filter.BookID {
			continue
		}
		if filter.Status != "" && r.Status != filter.Status {
			continue
		}
		if openOnly && !r.Status.IsOpen() {
			continue
		}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ReservationDate.Before(out[j].ReservationDate) })
	return out
}

func (m *MockLibraryRepository) ListReservations(ctx context.Context, filter domain.ReservationFilter) ([]domain.ReservationDetails, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	matched := m.matchReservations(filter, false)
	out := make([]domain.ReservationDetails, 0, len(matched))
	for _, r := range matched {
		out = append(out, domain.ReservationDetails{
			Reservation: r,
			UserName:    m.users[r.UserID].Name,
			BookTitle:   m.books[r.BookID].Title,
		})
	}
	return out, nil
}

func (m *MockLibraryRepository) OpenReservations(ctx context.Context, filter domain.ReservationFilter) ([]domain.Reservation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.matchReservations(filter, true), nil
}

func (m *MockLibraryRepository) CreateReservation(ctx context.Context, reservation domain.Reservation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reservations[reservation.ID] = reservation
	return nil
}

func (m *MockLibraryRepository) UpdateReservation(ctx context.Context, r domain.Reservation, from domain.ReservationStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	current, ok := m.reservations[r.ID]
	if !ok {
		return domain.ErrReservationNotFound
	}
	if current.Status != from {
		return domain.InvalidState(domain.ReasonInvalidTransition, "reservation was modified concurrently")
	}
	m.reservations[r.ID] = r
	return nil
}

func (m *MockLibraryRepository) ReleaseReservation(ctx context.Context, r domain.Reservation, now, pickupDeadline time.Time) (*domain.Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	current, ok := m.reservations[r.ID]
	if !ok {
		return nil, domain.ErrReservationNotFound
	}
	if current.Status != domain.ReservationNotified {
		return nil, domain.InvalidState(domain.ReasonInvalidTransition, "reservation was modified concurrently")
	}
	current.Status = r.Status
	m.reservations[r.ID] = current
	return m.promoteNext(current.BookID, now, pickupDeadline), nil
}

func (m *MockLibraryRepository) ExpiredReservations(ctx context.Context, now time.Time) ([]domain.Reservation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]domain.Reservation, 0)
	for _, r := range m.reservations {
		if r.Expired(now) {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ExpirationDate.Before(*out[j].ExpirationDate) })
	return out, nil
}

func (m *MockLibraryRepository) ExpireReservation(ctx context.Context, id string, now, pickupDeadline time.Time) (*domain.ExpiryOutcome, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.reservations[id]
	if !ok {
		return nil, domain.ErrReservationNotFound
	}
	if !r.Expired(now) {
		return nil, domain.InvalidState(domain.ReasonInvalidTransition, "reservation is no longer awaiting pickup")
	}
	r.Status = domain.ReservationCancelled
	m.reservations[id] = r
	m.emit(domain.EventReservationExpired, id, now)

	return &domain.ExpiryOutcome{
		Expired:  r,
		Promoted: m.promoteNext(r.BookID, now, pickupDeadline),
	}, nil
}

// Fines

func (m *MockLibraryRepository) FindFine(ctx context.Context, id string) (*domain.Fine, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	f, ok := m.fines[id]
	if !ok {
		return nil, domain.ErrFineNotFound
	}
	return &f, nil
}

func (m *MockLibraryRepository) ListFines(ctx context.Context, userID string) ([]domain.FineDetails, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]domain.FineDetails, 0)
	for _, f := range m.fines {
		if userID != "" && f.UserID != userID {
			continue
		}
		title := ""
		if l, ok := m.loans[f.LoanID]; ok {
			title = m.books[l.BookID].Title
		}
		out = append(out, domain.FineDetails{Fine: f, UserName: m.users[f.UserID].Name, BookTitle: title})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *MockLibraryRepository) PendingFineTotal(ctx context.Context, userID string) (decimal.Decimal, error) {
	if m.PendingFineTotalError != nil {
		return decimal.Zero, m.PendingFineTotalError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	total := decimal.Zero
	for _, f := range m.fines {
		if f.UserID == userID && f.Status == domain.FinePending {
			total = total.Add(f.Amount)
		}
	}
	return total, nil
}

func (m *MockLibraryRepository) PayFine(ctx context.Context, id string, paidAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.fines[id]
	if !ok {
		return domain.ErrFineNotFound
	}
	if f.Status != domain.FinePending {
		return domain.ErrFineAlreadyPaid
	}
	f.Status = domain.FinePaid
	f.PaymentDate = &paidAt
	m.fines[id] = f
	m.emit(domain.EventFinePaid, id, paidAt)
	return nil
}

// Requests

func (m *MockLibraryRepository) CreateLoanRequest(ctx context.Context, req domain.LoanRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loanReqs[req.ID] = req
	return nil
}

func (m *MockLibraryRepository) FindLoanRequest(ctx context.Context, id string) (*domain.LoanRequest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.loanReqs[id]
	if !ok {
		return nil, domain.ErrRequestNotFound
	}
	return &r, nil
}

func (m *MockLibraryRepository) ListLoanRequests(ctx context.Context, filter domain.RequestFilter) ([]domain.LoanRequest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]domain.LoanRequest, 0)
	for _, r := range m.loanReqs {
		if (filter.UserID == "" || r.UserID == filter.UserID) && (filter.Status == "" || r.Status == filter.Status) {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RequestDate.Before(out[j].RequestDate) })
	return out, nil
}

func (m *MockLibraryRepository) ReviewLoanRequest(ctx context.Context, review domain.Review) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.loanReqs[review.RequestID]
	if !ok {
		return domain.ErrRequestNotFound
	}
	if r.Status != domain.RequestPending {
		return domain.ErrRequestReviewed
	}
	reviewedAt := review.ReviewedAt
	reviewer := review.ReviewerID
	r.Status, r.ReviewedBy, r.ReviewDate, r.ReviewNotes = review.Status, &reviewer, &reviewedAt, review.Notes
	m.loanReqs[r.ID] = r
	return nil
}

func (m *MockLibraryRepository) ReopenLoanRequest(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.loanReqs[id]
	if !ok || r.Status != domain.RequestApproved {
		return domain.ErrRequestNotFound
	}
	r.Status, r.ReviewedBy, r.ReviewDate, r.ReviewNotes = domain.RequestPending, nil, nil, nil
	m.loanReqs[id] = r
	return nil
}

func (m *MockLibraryRepository) CreateRenewalRequest(ctx context.Context, req domain.RenewalRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.renewalReqs[req.ID] = req
	return nil
}

func (m *MockLibraryRepository) FindRenewalRequest(ctx context.Context, id string) (*domain.RenewalRequest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.renewalReqs[id]
	if !ok {
		return nil, domain.ErrRequestNotFound
	}
	return &r, nil
}

func (m *MockLibraryRepository) ListRenewalRequests(ctx context.Context, filter domain.RequestFilter) ([]domain.RenewalRequest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]domain.RenewalRequest, 0)
	for _, r := range m.renewalReqs {
		if (filter.UserID == "" || r.UserID == filter.UserID) && (filter.Status == "" || r.Status == filter.Status) {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RequestDate.Before(out[j].RequestDate) })
	return out, nil
}

func (m *MockLibraryRepository) ReviewRenewalRequest(ctx context.Context, review domain.Review) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.renewalReqs[review.RequestID]
	if !ok {
		return domain.ErrRequestNotFound
	}
	if r.Status != domain.RequestPending {
		return domain.ErrRequestReviewed
	}
	reviewedAt := review.ReviewedAt
	reviewer := review.ReviewerID
	r.Status, r.ReviewedBy, r.ReviewDate, r.ReviewNotes = review.Status, &reviewer, &reviewedAt, review.Notes
	m.renewalReqs[r.ID] = r
	return nil
}

func (m *MockLibraryRepository) ReopenRenewalRequest(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.renewalReqs[id]
	if !ok || r.Status != domain.RequestApproved {
		return domain.ErrRequestNotFound
	}
	r.Status, r.ReviewedBy, r.ReviewDate, r.ReviewNotes = domain.RequestPending, nil, nil, nil
	m.renewalReqs[id] = r
	return nil
}

// Reports

func (m *MockLibraryRepository) DashboardStats(ctx context.Context, now time.Time) (*domain.DashboardStats, error) {
	if m.DashboardStatsError != nil {
		return nil, m.DashboardStatsError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	stats := &domain.DashboardStats{
		TotalBooks:       len(m.books),
		TotalUsers:       len(m.users),
		TotalFinesAmount: decimal.Zero,
	}
	for _, b := range m.books {
		stats.AvailableBooks += b.AvailableCopies
	}
	for _, l := range m.loans {
		if l.IsActive() {
			stats.ActiveLoans++
		}
		if l.IsOverdue(now) {
			stats.OverdueLoans++
		}
	}
	for _, f := range m.fines {
		if f.Status == domain.FinePending {
			stats.PendingFines++
			stats.TotalFinesAmount = stats.TotalFinesAmount.Add(f.Amount)
		}
	}
	return stats, nil
}

func (m *MockLibraryRepository) PopularBooks(ctx context.Context, limit int) ([]domain.BookRanking, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	counts := make(map[string]int)
	for _, l := range m.loans {
		counts[l.BookID]++
	}
	out := make([]domain.BookRanking, 0, len(counts))
	for id, n := range counts {
		b := m.books[id]
		out = append(out, domain.BookRanking{BookID: id, Title: b.Title, Author: b.Author, LoanCount: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].LoanCount == out[j].LoanCount {
			return out[i].Title < out[j].Title
		}
		return out[i].LoanCount > out[j].LoanCount
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *MockLibraryRepository) ActiveUsers(ctx context.Context, limit int) ([]domain.UserRanking, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	counts := make(map[string]int)
	for _, l := range m.loans {
		counts[l.UserID]++
	}
	out := make([]domain.UserRanking, 0, len(counts))
	for id, n := range counts {
		u := m.users[id]
		out = append(out, domain.UserRanking{UserID: id, Name: u.Name, Role: u.Role, LoanCount: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].LoanCount == out[j].LoanCount {
			return out[i].Name < out[j].Name
		}
		return out[i].LoanCount > out[j].LoanCount
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
