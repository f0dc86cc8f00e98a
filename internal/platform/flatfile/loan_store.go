package flatfile

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/weilandt/circ-api/internal/domain"
	"github.com/weilandt/circ-api/internal/store"
)

// loanStore implements store.LoanStore on the shared DB.
type loanStore struct {
	db *DB
}

var _ store.LoanStore = (*loanStore)(nil)

// Create saves a new loan under the named user. The loan is expected to
// already sit in the user's collection (the user owns it); the store indexes
// it and rewrites the loans and media files, since construction took a copy
// off the shelf.
func (s *loanStore) Create(ctx context.Context, username string, loan *domain.LoanRecord) error {
	if err := loan.Validate(); err != nil {
		return store.NewStoreError("loan", "create", "validation failed", err)
	}

	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	user, ok := s.db.userIndex[strings.ToLower(username)]
	if !ok {
		return store.ErrUserNotFound
	}

	s.db.loans[loan.ID] = &loanEntry{loan: loan, username: user.Name}

	if err := s.db.saveLoans(); err != nil {
		return err
	}
	return s.db.saveMedia()
}

func (s *loanStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.LoanRecord, string, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	entry, ok := s.db.loans[id]
	if !ok {
		return nil, "", store.ErrLoanNotFound
	}
	return entry.loan, entry.username, nil
}

// Update persists a loan state change. Returns touch media availability, so
// the media file is rewritten along with the loans file.
func (s *loanStore) Update(ctx context.Context, loan *domain.LoanRecord) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if _, ok := s.db.loans[loan.ID]; !ok {
		return store.ErrLoanNotFound
	}

	if err := s.db.saveLoans(); err != nil {
		return err
	}
	return s.db.saveMedia()
}

func (s *loanStore) ListByUser(ctx context.Context, username string) ([]*domain.LoanRecord, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	user, ok := s.db.userIndex[strings.ToLower(username)]
	if !ok {
		return nil, store.ErrUserNotFound
	}

	loans := make([]*domain.LoanRecord, len(user.Loans))
	copy(loans, user.Loans)
	return loans, nil
}
