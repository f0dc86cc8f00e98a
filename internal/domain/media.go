package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Media-specific validation errors
var (
	// ErrEmptyMediaID is returned when a media item ID is empty.
	ErrEmptyMediaID = errors.New("media ID cannot be empty")

	// ErrEmptyTitle is returned when a media item title is empty.
	ErrEmptyTitle = errors.New("media title cannot be empty")

	// ErrInvalidCopyCount is returned when a copy count would violate the
	// available <= total invariant or drop the total below one.
	ErrInvalidCopyCount = errors.New("invalid copy count")

	// ErrNoCopiesAvailable is returned when a borrow is attempted against an
	// item with no free copies.
	ErrNoCopiesAvailable = errors.New("no copies available")
)

// Category identifies the kind of media an item is. The category determines
// the item's borrow period and fine strategy; both are resolved once at
// construction time so no further type inspection is needed.
type Category string

const (
	CategoryBook Category = "book"
	CategoryCD   Category = "cd"
)

// FineStrategy converts an overdue day count into a monetary fine at a fixed
// per-day rate. The mapping is pure and linear: negative day counts are passed
// through the formula and yield a negative amount. Callers that want a
// not-yet-due item to report zero must clamp before delegating (see
// MediaItem.FineForDueDate).
type FineStrategy struct {
	PerDay decimal.Decimal
}

// Fine returns the fine for the given number of overdue days.
func (s FineStrategy) Fine(overdueDays int) decimal.Decimal {
	return s.PerDay.Mul(decimal.NewFromInt(int64(overdueDays)))
}

// strategyFor resolves the fine strategy for a category. An unrecognized
// category is a caller defect, not a recoverable condition, and panics.
func strategyFor(c Category) FineStrategy {
	switch c {
	case CategoryBook:
		return FineStrategy{PerDay: decimal.NewFromInt(10)}
	case CategoryCD:
		return FineStrategy{PerDay: decimal.NewFromInt(20)}
	default:
		panic(fmt.Sprintf("unknown media type: %q", c))
	}
}

// borrowPeriodFor resolves the borrow period in days for a category.
func borrowPeriodFor(c Category) int {
	switch c {
	case CategoryBook:
		return 28
	case CategoryCD:
		return 7
	default:
		panic(fmt.Sprintf("unknown media type: %q", c))
	}
}

// MediaItem represents one title in the catalog with its copy accounting.
// Available never exceeds TotalCopies; the only operations that move the
// available count are BorrowCopy and ReturnCopy.
type MediaItem struct {
	ID               string       `json:"id"`
	Title            string       `json:"title"`
	Author           string       `json:"author"`
	Category         Category     `json:"category"`
	TotalCopies      int          `json:"total_copies"`
	Available        int          `json:"available"`
	BorrowPeriodDays int          `json:"borrow_period_days"`
	Strategy         FineStrategy `json:"-"`
	CreatedAt        time.Time    `json:"created_at"`
}

// NewMediaItem creates a catalog entry with all copies available. The borrow
// period and fine strategy are derived from the category here, once; an
// unknown category panics (see strategyFor).
func NewMediaItem(id, title, author string, category Category, totalCopies int) (*MediaItem, error) {
	m := &MediaItem{
		ID:               id,
		Title:            title,
		Author:           author,
		Category:         category,
		TotalCopies:      totalCopies,
		Available:        totalCopies,
		BorrowPeriodDays: borrowPeriodFor(category),
		Strategy:         strategyFor(category),
		CreatedAt:        time.Now().UTC(),
	}

	if err := m.Validate(); err != nil {
		return nil, err
	}

	return m, nil
}

// Validate checks if the MediaItem has valid data.
func (m *MediaItem) Validate() error {
	if m.ID == "" {
		return ErrEmptyMediaID
	}

	if m.Title == "" {
		return ErrEmptyTitle
	}

	if m.TotalCopies < 1 || m.Available < 0 || m.Available > m.TotalCopies {
		return ErrInvalidCopyCount
	}

	return nil
}

// BorrowCopy takes one copy off the shelf. Returns ErrNoCopiesAvailable when
// every copy is already out.
func (m *MediaItem) BorrowCopy() error {
	if m.Available <= 0 {
		return ErrNoCopiesAvailable
	}
	m.Available--
	return nil
}

// ReturnCopy puts one copy back. A return that would push the available count
// past the total is ignored rather than corrupting the invariant.
func (m *MediaItem) ReturnCopy() {
	if m.Available < m.TotalCopies {
		m.Available++
	}
}

// SetTotalCopies changes the total copy count. The new total must cover the
// copies currently on the shelf and stay at least one.
func (m *MediaItem) SetTotalCopies(n int) error {
	if n < 1 || n < m.Available {
		return ErrInvalidCopyCount
	}
	m.TotalCopies = n
	return nil
}

// Fine delegates the raw day count to the item's fine strategy without
/// clamping: a negative day count yields a negative amount. Dispatching over a
// nil item is a caller defect and panics like an unknown category would.
func (m *MediaItem) Fine(overdueDays int) decimal.Decimal {
	if m == nil {
		panic("unknown media type: no media item")
	}
	return m.Strategy.Fine(overdueDays)
}

// FineForDueDate computes the fine owed as of now for an item due on dueDate.
// Unlike Fine, the day difference is clamped at zero first, so a not-yet-due
// item reports no fine.
func (m *MediaItem) FineForDueDate(dueDate, now time.Time) decimal.Decimal {
	days := DaysBetween(dueDate, now)
	if days < 0 {
		days = 0
	}
	return m.Fine(days)
}

// DateOf truncates a timestamp to its UTC calendar date.
func DateOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns the number of whole calendar days from one date to
// another. The result is negative when to precedes from.
func DaysBetween(from, to time.Time) int {
	return int(DateOf(to).Sub(DateOf(from)).Hours() / 24)
}
