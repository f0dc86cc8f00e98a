package flatfile

import (
	"context"

	"github.com/weilandt/circ-api/internal/domain"
	"github.com/weilandt/circ-api/internal/store"
)

// mediaStore implements store.MediaStore on the shared DB.
type mediaStore struct {
	db *DB
}

var _ store.MediaStore = (*mediaStore)(nil)

func (s *mediaStore) Create(ctx context.Context, item *domain.MediaItem) error {
	if err := item.Validate(); err != nil {
		return store.NewStoreError("media", "create", "validation failed", err)
	}

	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if _, exists := s.db.mediaByID[item.ID]; exists {
		return store.ErrMediaExists
	}

	s.db.media = append(s.db.media, item)
	s.db.mediaByID[item.ID] = item

	return s.db.saveMedia()
}

func (s *mediaStore) GetByID(ctx context.Context, id string) (*domain.MediaItem, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	item, ok := s.db.mediaByID[id]
	if !ok {
		return nil, store.ErrMediaNotFound
	}
	return item, nil
}

func (s *mediaStore) Update(ctx context.Context, item *domain.MediaItem) error {
	if err := item.Validate(); err != nil {
		return store.NewStoreError("media", "update", "validation failed", err)
	}

	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if _, ok := s.db.mediaByID[item.ID]; !ok {
		return store.ErrMediaNotFound
	}

	return s.db.saveMedia()
}

func (s *mediaStore) List(ctx context.Context) ([]*domain.MediaItem, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	items := make([]*domain.MediaItem, len(s.db.media))
	copy(items, s.db.media)
	return items, nil
}
