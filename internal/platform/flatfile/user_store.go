package flatfile

import (
	"context"
	"strings"

	"github.com/weilandt/circ-api/internal/domain"
	"github.com/weilandt/circ-api/internal/store"
)

// userStore implements store.UserStore on the shared DB.
type userStore struct {
	db *DB
}

var _ store.UserStore = (*userStore)(nil)

func (s *userStore) Create(ctx context.Context, user *domain.User) error {
	if err := user.Validate(); err != nil {
		return store.NewStoreError("user", "create", "validation failed", err)
	}

	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	key := strings.ToLower(user.Name)
	if _, exists := s.db.userIndex[key]; exists {
		return store.ErrUsernameExists
	}

	s.db.users = append(s.db.users, user)
	s.db.userIndex[key] = user

	return s.db.saveUsers()
}

func (s *userStore) GetByName(ctx context.Context, name string) (*domain.User, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	user, ok := s.db.userIndex[strings.ToLower(name)]
	if !ok {
		return nil, store.ErrUserNotFound
	}
	return user, nil
}

// Update persists the user's current state. Because the posted flags and
// fine amounts live in the loans file, both files are rewritten.
func (s *userStore) Update(ctx context.Context, user *domain.User) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if _, ok := s.db.userIndex[strings.ToLower(user.Name)]; !ok {
		return store.ErrUserNotFound
	}

	if err := s.db.saveUsers(); err != nil {
		return err
	}
	return s.db.saveLoans()
}

func (s *userStore) Delete(ctx context.Context, name string) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	key := strings.ToLower(name)
	user, ok := s.db.userIndex[key]
	if !ok {
		return store.ErrUserNotFound
	}

	delete(s.db.userIndex, key)
	for i, u := range s.db.users {
		if u == user {
			s.db.users = append(s.db.users[:i], s.db.users[i+1:]...)
			break
		}
	}

	// drop the user's loan records and free their active copies
	for _, loan := range user.Loans {
		loan.Return()
		for id, entry := range s.db.loans {
			if entry.loan == loan {
				delete(s.db.loans, id)
				break
			}
		}
	}

	if err := s.db.saveUsers(); err != nil {
		return err
	}
	if err := s.db.saveLoans(); err != nil {
		return err
	}
	return s.db.saveMedia()
}

func (s *userStore) List(ctx context.Context) ([]*domain.User, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	users := make([]*domain.User, len(s.db.users))
	copy(users, s.db.users)
	return users, nil
}
