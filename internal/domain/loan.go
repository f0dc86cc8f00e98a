package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Loan-specific validation errors
var (
	// ErrLoanIDEmpty is returned when a loan record ID is empty or nil.
	ErrLoanIDEmpty = errors.New("loan ID cannot be empty")

	// ErrLoanMediaNil is returned when a loan record has no media item.
	ErrLoanMediaNil = errors.New("loan must reference a media item")
)

// LoanRecord binds one user to one checked-out copy of a media item. A loan
// is Active until returned; Returned is terminal. Records are never deleted,
// only marked returned, so the loan history stays auditable.
type LoanRecord struct {
	ID         uuid.UUID       `json:"id"`
	Media      *MediaItem      `json:"media"`
	BorrowedAt time.Time       `json:"borrowed_at"`
	DueAt      time.Time       `json:"due_at"`
	Returned   bool            `json:"returned"`
	FinePosted bool            `json:"fine_posted"`
	FineAmount decimal.Decimal `json:"fine_amount"`
}

// NewLoanRecord checks out one copy of media as of now. The due date is fixed
// here from the media's borrow period and never changes afterwards. The copy
// is taken off the shelf as part of construction; if no copy is free the loan
// is not created and ErrNoCopiesAvailable is returned.
func NewLoanRecord(media *MediaItem, now time.Time) (*LoanRecord, error) {
	if media == nil {
		return nil, ErrLoanMediaNil
	}

	if err := media.BorrowCopy(); err != nil {
		return nil, err
	}

	return &LoanRecord{
		ID:         uuid.New(),
		Media:      media,
		BorrowedAt: now.UTC(),
		DueAt:      now.UTC().AddDate(0, 0, media.BorrowPeriodDays),
		FineAmount: decimal.Zero,
	}, nil
}

// Validate checks if the LoanRecord has valid data.
func (l *LoanRecord) Validate() error {
	if l.ID == uuid.Nil {
		return ErrLoanIDEmpty
	}

	if l.Media == nil {
		return ErrLoanMediaNil
	}

	return nil
}

// CurrentFine computes the fine accrued on this loan as of now. A returned
// loan never accrues further fine, no matter how far past due it ran.
func (l *LoanRecord) CurrentFine(now time.Time) decimal.Decimal {
	if l.Returned {
		return decimal.Zero
	}
	return l.Media.FineForDueDate(l.DueAt, now)
}

// Return marks the loan returned and puts the copy back on the shelf. Calling
// Return on an already-returned loan is a no-op, so availability cannot be
// incremented twice for the same loan.
func (l *LoanRecord) Return() {
	if l.Returned {
		return
	}
	l.Returned = true
	l.Media.ReturnCopy()
}

// IsOverdue reports whether the loan is active and its due date falls
// strictly before today's calendar date.
func (l *LoanRecord) IsOverdue(now time.Time) bool {
	return !l.Returned && DateOf(l.DueAt).Before(DateOf(now))
}
