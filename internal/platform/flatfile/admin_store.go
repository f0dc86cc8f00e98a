package flatfile

import (
	"context"

	"github.com/weilandt/circ-api/internal/domain"
	"github.com/weilandt/circ-api/internal/store"
)

// adminStore implements store.AdminStore on the shared DB.
type adminStore struct {
	db *DB
}

var _ store.AdminStore = (*adminStore)(nil)

func (s *adminStore) Create(ctx context.Context, admin *domain.Admin) error {
	if err := admin.Validate(); err != nil {
		return store.NewStoreError("admin", "create", "validation failed", err)
	}

	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	for _, a := range s.db.admins {
		if a.HasUsername(admin.Name) {
			return store.ErrUsernameExists
		}
	}

	s.db.admins = append(s.db.admins, admin)
	return s.db.saveAdmins()
}

func (s *adminStore) GetByName(ctx context.Context, name string) (*domain.Admin, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	for _, a := range s.db.admins {
		if a.HasUsername(name) {
			return a, nil
		}
	}
	return nil, store.ErrAdminNotFound
}

func (s *adminStore) List(ctx context.Context) ([]*domain.Admin, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	admins := make([]*domain.Admin, len(s.db.admins))
	copy(admins, s.db.admins)
	return admins, nil
}
