package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/weilandt/circ-api/internal/domain"
	"github.com/weilandt/circ-api/internal/platform/mailer"
	"github.com/weilandt/circ-api/internal/store"
)

// reminderSubject and reminderBodyFormat fix the wording of overdue
// reminders. The body format is load-bearing: the surrounding app and its
// users rely on the exact phrasing.
const (
	reminderSubject    = "Overdue reminder"
	reminderBodyFormat = "You have %d overdue book(s)."
)

// CirculationService orchestrates search, borrowing, returns, overdue
// scanning, fine posting, and reminder dispatch. It is the only component
// holding cross-entity business rules.
type CirculationService interface {
	// SearchMedia returns the catalog items whose title or author contains
	// the keyword case-insensitively, or whose ID matches it exactly, in
	// catalog insertion order.
	SearchMedia(ctx context.Context, keyword string) ([]*domain.MediaItem, error)

	// AddMedia adds a new title to the catalog with all copies available.
	// Fails with store.ErrMediaExists on a duplicate ID.
	AddMedia(ctx context.Context, id, title, author string, category domain.Category, totalCopies int) (*domain.MediaItem, error)

	// SetTotalCopies changes a title's total copy count. The new total must
	// be at least one and no lower than the available count.
	SetTotalCopies(ctx context.Context, mediaID string, total int) (*domain.MediaItem, error)

	// Borrow checks one copy of the item out to the named user. Fails with
	// ErrMediaUnavailable, ErrUserHasOverdue or ErrUserBlocked; on any
	// failure no state changes.
	Borrow(ctx context.Context, username, mediaID string) (*domain.LoanRecord, error)

	// Return marks the loan returned and puts its copy back on the shelf.
	// Returning an already-returned loan is a no-op.
	Return(ctx context.Context, loanID uuid.UUID) error

	// CheckOverdue posts any newly accrued fines to the named user's
	// balance and returns the user's currently overdue active loans.
	// Called on login to keep balances fresh.
	CheckOverdue(ctx context.Context, username string) ([]*domain.LoanRecord, error)

	// CheckOverdueAll runs the overdue scan across every registered user
	// and returns the overdue loans keyed by user name. Users with no
	// overdue loans are absent from the result.
	CheckOverdueAll(ctx context.Context) (map[string][]*domain.LoanRecord, error)

	// PayFine forwards a payment to the named user's balance. Non-positive
	// amounts are ignored; paying more than is owed clears the balance.
	PayFine(ctx context.Context, username string, amount decimal.Decimal) error

	// SendReminder sends exactly one overdue notice to the named user, or
	// nothing when no active loan is overdue.
	SendReminder(ctx context.Context, username string) error
}

// circulationService implements CirculationService over the store
// interfaces. One coarse mutex serializes every operation that can mutate
// catalog, user or loan state, matching the single-threaded model of the
// workflow; this is a defensive measure, not a throughput design.
type circulationService struct {
	mediaStore store.MediaStore
	userStore  store.UserStore
	loanStore  store.LoanStore
	notifier   mailer.Notifier
	logger     *slog.Logger

	mu  sync.Mutex
	now func() time.Time
}

var _ CirculationService = (*circulationService)(nil)

// NewCirculationService creates a CirculationService.
func NewCirculationService(
	mediaStore store.MediaStore,
	userStore store.UserStore,
	loanStore store.LoanStore,
	notifier mailer.Notifier,
	logger *slog.Logger,
) CirculationService {
	return &circulationService{
		mediaStore: mediaStore,
		userStore:  userStore,
		loanStore:  loanStore,
		notifier:   notifier,
		logger:     logger.With("component", "circulation_service"),
		now:        time.Now,
	}
}

func (s *circulationService) SearchMedia(ctx context.Context, keyword string) ([]*domain.MediaItem, error) {
	items, err := s.mediaStore.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list catalog: %w", err)
	}

	needle := strings.ToLower(keyword)
	var matches []*domain.MediaItem
	for _, item := range items {
		if item.ID == keyword ||
			strings.Contains(strings.ToLower(item.Title), needle) ||
			strings.Contains(strings.ToLower(item.Author), needle) {
			matches = append(matches, item)
		}
	}

	s.logger.Debug("catalog search completed",
		"keyword", keyword,
		"matches", len(matches))
	return matches, nil
}

func (s *circulationService) AddMedia(ctx context.Context, id, title, author string, category domain.Category, totalCopies int) (*domain.MediaItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	media, err := domain.NewMediaItem(id, title, author, category, totalCopies)
	if err != nil {
		return nil, err
	}

	if err := s.mediaStore.Create(ctx, media); err != nil {
		return nil, fmt.Errorf("failed to create media: %w", err)
	}

	s.logger.Info("media added",
		"media_id", media.ID,
		"title", media.Title,
		"category", string(media.Category),
		"total_copies", media.TotalCopies)
	return media, nil
}

func (s *circulationService) SetTotalCopies(ctx context.Context, mediaID string, total int) (*domain.MediaItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	media, err := s.mediaStore.GetByID(ctx, mediaID)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve media: %w", err)
	}

	prev := media.TotalCopies
	if err := media.SetTotalCopies(total); err != nil {
		return nil, err
	}

	if err := s.mediaStore.Update(ctx, media); err != nil {
		media.TotalCopies = prev
		return nil, fmt.Errorf("failed to persist media: %w", err)
	}

	s.logger.Info("total copies changed",
		"media_id", media.ID,
		"total_copies", media.TotalCopies)
	return media, nil
}

func (s *circulationService) Borrow(ctx context.Context, username, mediaID string) (*domain.LoanRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, err := s.userStore.GetByName(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve user: %w", err)
	}

	media, err := s.mediaStore.GetByID(ctx, mediaID)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve media: %w", err)
	}

	now := s.now()

	// preconditions, in reporting order: availability, overdue, balance
	if media.Available <= 0 {
		return nil, ErrMediaUnavailable
	}
	if user.HasOverdueItems(now) {
		return nil, ErrUserHasOverdue
	}
	if user.IsBlocked() {
		return nil, ErrUserBlocked
	}

	loan, err := domain.NewLoanRecord(media, now)
	if err != nil {
		return nil, fmt.Errorf("failed to create loan: %w", err)
	}
	user.Loans = append(user.Loans, loan)

	if err := s.loanStore.Create(ctx, user.Name, loan); err != nil {
		// roll back: drop the loan and put the copy back
		user.Loans = user.Loans[:len(user.Loans)-1]
		media.ReturnCopy()
		s.logger.Error("failed to persist loan, rolled back",
			"error", err,
			"user", user.Name,
			"media_id", media.ID)
		return nil, fmt.Errorf("failed to persist loan: %w", err)
	}

	s.logger.Info("media borrowed",
		"user", user.Name,
		"media_id", media.ID,
		"due_at", loan.DueAt)
	return loan, nil
}

func (s *circulationService) Return(ctx context.Context, loanID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	loan, username, err := s.loanStore.GetByID(ctx, loanID)
	if err != nil {
		return fmt.Errorf("failed to retrieve loan: %w", err)
	}

	if loan.Returned {
		s.logger.Debug("loan already returned", "loan_id", loanID, "user", username)
		return nil
	}

	loan.Return()

	if err := s.loanStore.Update(ctx, loan); err != nil {
		s.logger.Error("failed to persist return",
			"error", err,
			"loan_id", loanID,
			"user", username)
		return fmt.Errorf("failed to persist return: %w", err)
	}

	s.logger.Info("media returned",
		"user", username,
		"media_id", loan.Media.ID,
		"loan_id", loanID)
	return nil
}

func (s *circulationService) CheckOverdue(ctx context.Context, username string) ([]*domain.LoanRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, err := s.userStore.GetByName(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve user: %w", err)
	}

	return s.scanUser(ctx, user), nil
}

func (s *circulationService) CheckOverdueAll(ctx context.Context) (map[string][]*domain.LoanRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.userStore.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	overdue := make(map[string][]*domain.LoanRecord)
	for _, user := range users {
		if loans := s.scanUser(ctx, user); len(loans) > 0 {
			overdue[user.Name] = loans
		}
	}
	return overdue, nil
}

// scanUser posts newly accrued fines and returns the user's overdue loans.
// A persistence failure is logged and the scan result still stands: the
// in-memory state is authoritative and the next successful save catches up.
// Caller holds s.mu.
func (s *circulationService) scanUser(ctx context.Context, user *domain.User) []*domain.LoanRecord {
	now := s.now()

	user.UpdateFineBalance(now)
	if err := s.userStore.Update(ctx, user); err != nil {
		s.logger.Error("failed to persist fine balance",
			"error", err,
			"user", user.Name)
	}

	return user.OverdueLoans(now)
}

func (s *circulationService) PayFine(ctx context.Context, username string, amount decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, err := s.userStore.GetByName(ctx, username)
	if err != nil {
		return fmt.Errorf("failed to retrieve user: %w", err)
	}

	user.PayFine(amount)

	if err := s.userStore.Update(ctx, user); err != nil {
		s.logger.Error("failed to persist payment",
			"error", err,
			"user", user.Name)
		return fmt.Errorf("failed to persist payment: %w", err)
	}

	s.logger.Info("fine paid",
		"user", user.Name,
		"amount", amount.String(),
		"balance", user.FineBalance.String())
	return nil
}

func (s *circulationService) SendReminder(ctx context.Context, username string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, err := s.userStore.GetByName(ctx, username)
	if err != nil {
		return fmt.Errorf("failed to retrieve user: %w", err)
	}

	count := len(user.OverdueLoans(s.now()))
	if count == 0 {
		s.logger.Debug("no overdue loans, no reminder sent", "user", user.Name)
		return nil
	}

	recipient := user.Email
	if recipient == "" {
		recipient = user.Name
	}

	body := fmt.Sprintf(reminderBodyFormat, count)
	if err := s.notifier.Send(ctx, recipient, reminderSubject, body); err != nil {
		return fmt.Errorf("failed to send reminder: %w", err)
	}

	s.logger.Info("overdue reminder sent",
		"user", user.Name,
		"overdue_count", count)
	return nil
}
