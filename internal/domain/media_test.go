package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMediaItem(t *testing.T) {
	t.Parallel()

	t.Run("book gets 28 day period and rate 10", func(t *testing.T) {
		t.Parallel()
		m, err := NewMediaItem("111", "Java Basics", "Yaman", CategoryBook, 3)
		require.NoError(t, err)
		assert.Equal(t, 28, m.BorrowPeriodDays)
		assert.True(t, m.Strategy.PerDay.Equal(decimal.NewFromInt(10)))
		assert.Equal(t, 3, m.TotalCopies)
		assert.Equal(t, 3, m.Available)
	})

	t.Run("cd gets 7 day period and rate 20", func(t *testing.T) {
		t.Parallel()
		m, err := NewMediaItem("222", "Abbey Road", "The Beatles", CategoryCD, 1)
		require.NoError(t, err)
		assert.Equal(t, 7, m.BorrowPeriodDays)
		assert.True(t, m.Strategy.PerDay.Equal(decimal.NewFromInt(20)))
	})

	t.Run("rejects invalid data", func(t *testing.T) {
		t.Parallel()
		_, err := NewMediaItem("", "Java Basics", "Yaman", CategoryBook, 1)
		assert.ErrorIs(t, err, ErrEmptyMediaID)

		_, err = NewMediaItem("111", "", "Yaman", CategoryBook, 1)
		assert.ErrorIs(t, err, ErrEmptyTitle)

		_, err = NewMediaItem("111", "Java Basics", "Yaman", CategoryBook, 0)
		assert.ErrorIs(t, err, ErrInvalidCopyCount)
	})

	t.Run("unknown category panics", func(t *testing.T) {
		t.Parallel()
		assert.PanicsWithValue(t, `unknown media type: "vinyl"`, func() {
			_, _ = NewMediaItem("333", "Kind of Blue", "Miles Davis", Category("vinyl"), 1)
		})
	})
}

func TestMediaItemCopyAccounting(t *testing.T) {
	t.Parallel()

	t.Run("borrow decrements by exactly one", func(t *testing.T) {
		t.Parallel()
		m, err := NewMediaItem("111", "Java Basics", "Yaman", CategoryBook, 2)
		require.NoError(t, err)

		require.NoError(t, m.BorrowCopy())
		assert.Equal(t, 1, m.Available)
		require.NoError(t, m.BorrowCopy())
		assert.Equal(t, 0, m.Available)

		assert.ErrorIs(t, m.BorrowCopy(), ErrNoCopiesAvailable)
		assert.Equal(t, 0, m.Available)
	})

	t.Run("return never exceeds total", func(t *testing.T) {
		t.Parallel()
		m, err := NewMediaItem("111", "Java Basics", "Yaman", CategoryBook, 1)
		require.NoError(t, err)

		require.NoError(t, m.BorrowCopy())
		m.ReturnCopy()
		assert.Equal(t, 1, m.Available)

		m.ReturnCopy() // past total, must be ignored
		assert.Equal(t, 1, m.Available)
	})

	t.Run("set total copies honors available floor", func(t *testing.T) {
		t.Parallel()
		m, err := NewMediaItem("111", "Java Basics", "Yaman", CategoryBook, 5)
		require.NoError(t, err)
		require.NoError(t, m.BorrowCopy())
		require.NoError(t, m.BorrowCopy()) // available now 3

		assert.ErrorIs(t, m.SetTotalCopies(2), ErrInvalidCopyCount)
		assert.Equal(t, 5, m.TotalCopies)

		require.NoError(t, m.SetTotalCopies(3))
		assert.Equal(t, 3, m.TotalCopies)

		assert.ErrorIs(t, m.SetTotalCopies(0), ErrInvalidCopyCount)
	})
}

func TestFineStrategy(t *testing.T) {
	t.Parallel()

	book, err := NewMediaItem("111", "Java Basics", "Yaman", CategoryBook, 1)
	require.NoError(t, err)
	cd, err := NewMediaItem("222", "Abbey Road", "The Beatles", CategoryCD, 1)
	require.NoError(t, err)

	t.Run("linear per-day rates", func(t *testing.T) {
		t.Parallel()
		for _, days := range []int{0, 1, 5, 30} {
			assert.True(t, book.Fine(days).Equal(decimal.NewFromInt(int64(10*days))),
				"book fine for %d days", days)
			assert.True(t, cd.Fine(days).Equal(decimal.NewFromInt(int64(20*days))),
				"cd fine for %d days", days)
			assert.True(t, cd.Fine(days).Equal(book.Fine(days).Mul(decimal.NewFromInt(2))),
				"cd is double the book rate for %d days", days)
		}
	})

	t.Run("negative day count passes through unclamped", func(t *testing.T) {
		t.Parallel()
		assert.True(t, book.Fine(-3).Equal(decimal.NewFromInt(-30)))
		assert.True(t, cd.Fine(-3).Equal(decimal.NewFromInt(-60)))
	})

	t.Run("due date path clamps at zero", func(t *testing.T) {
		t.Parallel()
		now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

		notYetDue := now.AddDate(0, 0, 5)
		assert.True(t, book.FineForDueDate(notYetDue, now).IsZero())

		threeDaysLate := now.AddDate(0, 0, -3)
		assert.True(t, book.FineForDueDate(threeDaysLate, now).Equal(decimal.NewFromInt(30)))
		assert.True(t, cd.FineForDueDate(threeDaysLate, now).Equal(decimal.NewFromInt(60)))
	})

	t.Run("nil media dispatch panics", func(t *testing.T) {
		t.Parallel()
		var missing *MediaItem
		assert.Panics(t, func() {
			_ = missing.Fine(1)
		})
	})
}

func TestDaysBetween(t *testing.T) {
	t.Parallel()

	due := time.Date(2025, 3, 1, 23, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		now  time.Time
		want int
	}{
		{"same day later hour", time.Date(2025, 3, 1, 23, 59, 0, 0, time.UTC), 0},
		{"next day early hour", time.Date(2025, 3, 2, 0, 30, 0, 0, time.UTC), 1},
		{"a week later", time.Date(2025, 3, 8, 1, 0, 0, 0, time.UTC), 7},
		{"day before", time.Date(2025, 2, 28, 1, 0, 0, 0, time.UTC), -1},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, DaysBetween(due, tt.now))
		})
	}
}
