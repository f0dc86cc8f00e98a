package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/weilandt/circ-api/internal/domain"
	"github.com/weilandt/circ-api/internal/platform/mailer"
	"github.com/weilandt/circ-api/internal/service/auth"
	"github.com/weilandt/circ-api/internal/store"
)

const (
	welcomeSubject    = "Welcome to the library"
	welcomeBodyFormat = "Hello %s, your library account is ready."
)

// MembershipService manages member and librarian accounts: registration,
// credential checks, and removal.
type MembershipService interface {
	// Register creates a member account with a bcrypt-hashed password and
	// sends a welcome notice. Fails with store.ErrUsernameExists when the
	// name is taken.
	Register(ctx context.Context, name, password, email string) (*domain.User, error)

	// Authenticate verifies a member's credentials. Unknown names and
	// wrong passwords both report ErrInvalidCredentials.
	Authenticate(ctx context.Context, name, password string) (*domain.User, error)

	// Unregister removes a member account. Copies held on the member's
	// active loans go back on the shelf.
	Unregister(ctx context.Context, name string) error

	// GetUser looks up a member by name.
	GetUser(ctx context.Context, name string) (*domain.User, error)

	// RegisterAdmin creates a librarian account.
	RegisterAdmin(ctx context.Context, name, password string) (*domain.Admin, error)

	// AuthenticateAdmin verifies a librarian's credentials, reporting
	// ErrInvalidCredentials on any mismatch.
	AuthenticateAdmin(ctx context.Context, name, password string) (*domain.Admin, error)
}

type membershipService struct {
	userStore  store.UserStore
	adminStore store.AdminStore
	verifier   auth.PasswordVerifier
	notifier   mailer.Notifier
	bcryptCost int
	logger     *slog.Logger
}

var _ MembershipService = (*membershipService)(nil)

// NewMembershipService creates a MembershipService.
func NewMembershipService(
	userStore store.UserStore,
	adminStore store.AdminStore,
	verifier auth.PasswordVerifier,
	notifier mailer.Notifier,
	bcryptCost int,
	logger *slog.Logger,
) MembershipService {
	return &membershipService{
		userStore:  userStore,
		adminStore: adminStore,
		verifier:   verifier,
		notifier:   notifier,
		bcryptCost: bcryptCost,
		logger:     logger.With("component", "membership_service"),
	}
}

func (s *membershipService) Register(ctx context.Context, name, password, email string) (*domain.User, error) {
	user, err := domain.NewUser(name, email, password)
	if err != nil {
		return nil, err
	}

	hashed, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	user.HashedPassword = hashed
	user.Password = ""

	if err := s.userStore.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	// welcome mail is best-effort; the notifier degrades on its own
	recipient := user.Email
	if recipient == "" {
		recipient = user.Name
	}
	if err := s.notifier.Send(ctx, recipient, welcomeSubject, fmt.Sprintf(welcomeBodyFormat, user.Name)); err != nil {
		s.logger.Warn("failed to send welcome notice",
			"error", err,
			"user", user.Name)
	}

	s.logger.Info("user registered", "user", user.Name)
	return user, nil
}

func (s *membershipService) Authenticate(ctx context.Context, name, password string) (*domain.User, error) {
	user, err := s.userStore.GetByName(ctx, name)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to retrieve user: %w", err)
	}

	if err := s.verifier.Compare(user.HashedPassword, password); err != nil {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}

func (s *membershipService) Unregister(ctx context.Context, name string) error {
	if err := s.userStore.Delete(ctx, name); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	s.logger.Info("user unregistered", "user", name)
	return nil
}

func (s *membershipService) GetUser(ctx context.Context, name string) (*domain.User, error) {
	user, err := s.userStore.GetByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve user: %w", err)
	}
	return user, nil
}

func (s *membershipService) RegisterAdmin(ctx context.Context, name, password string) (*domain.Admin, error) {
	hashed, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	admin, err := domain.NewAdmin(name, hashed)
	if err != nil {
		return nil, err
	}

	if err := s.adminStore.Create(ctx, admin); err != nil {
		return nil, fmt.Errorf("failed to create admin: %w", err)
	}

	s.logger.Info("admin registered", "admin", admin.Name)
	return admin, nil
}

func (s *membershipService) AuthenticateAdmin(ctx context.Context, name, password string) (*domain.Admin, error) {
	admin, err := s.adminStore.GetByName(ctx, name)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to retrieve admin: %w", err)
	}

	if err := s.verifier.Compare(admin.HashedPassword, password); err != nil {
		return nil, ErrInvalidCredentials
	}

	return admin, nil
}
