package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/weilandt/circ-api/internal/domain"
)

// LoanStore defines the interface for loan record persistence. Loan records
// are owned by their user; the store keys each record to the owning user's
// name so the loans file can be rebuilt from the user set.
type LoanStore interface {
	// Create saves a new loan record under the named user.
	// Returns ErrUserNotFound if the user does not exist.
	Create(ctx context.Context, username string, loan *domain.LoanRecord) error

	// GetByID retrieves a loan record by its ID, along with the name of the
	// owning user. Returns ErrLoanNotFound if no such record exists.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.LoanRecord, string, error)

	// Update rewrites a loan record's persisted state (returned and posted
	// flags, fine amount). Returns ErrLoanNotFound if no such record exists.
	Update(ctx context.Context, loan *domain.LoanRecord) error

	// ListByUser returns the named user's loan records in borrow order.
	// Returns ErrUserNotFound if the user does not exist.
	ListByUser(ctx context.Context, username string) ([]*domain.LoanRecord, error)
}
