package staff

import (
	"context"

	"github.com/ristora/fronthouse/internal/errors"
	"github.com/ristora/fronthouse/internal/logging"
	"github.com/ristora/fronthouse/supabase/client"
)

// Accounts is the auth signup surface the service needs. The Supabase
// auth client satisfies it.
type Accounts interface {
	SignUp(ctx context.Context, email, password string, metadata map[string]any) (*client.AuthResponse, error)
}

// Service implements profile lookup and waiter administration.
type Service struct {
	store    StoreInterface
	accounts Accounts
	logger   *logging.Logger
}

// New creates a new staff service.
func New(db *client.Client, logger *logging.Logger) *Service {
	return &Service{
		store:    NewStore(db),
		accounts: db.Auth(),
		logger:   logger,
	}
}

// NewWithStore creates a staff service with custom dependencies.
func NewWithStore(store StoreInterface, accounts Accounts, logger *logging.Logger) *Service {
	return &Service{store: store, accounts: accounts, logger: logger}
}

// CurrentProfile returns the profile for an authenticated user,
// creating it with the waiter role when the row is missing. A missing
// row is the normal first-login case, not a failure.
func (s *Service) CurrentProfile(ctx context.Context, userID, email string) (*Profile, error) {
	if userID == "" {
		return nil, errors.Unauthorized("authentication required")
	}

	profile, err := s.store.GetProfile(ctx, userID)
	if err == nil {
		return profile, nil
	}
	if !errors.IsNotFound(err) {
		return nil, err
	}

	profile, err = s.store.InsertProfile(ctx, map[string]any{
		"id":    userID,
		"email": email,
		"role":  RoleWaiter,
	})
	if err != nil {
		return nil, err
	}

	s.logger.WithContext(ctx).WithFields(map[string]any{
		"user_id": userID,
	}).Info("profile created on first login")
	return profile, nil
}

// ListWaiters returns all waiter profiles. Requires staff admin.
func (s *Service) ListWaiters(ctx context.Context, actor Role) ([]Profile, error) {
	if !Can(actor, PermStaffAdmin) {
		return nil, errors.Forbidden("staff administration requires the admin role")
	}
	return s.store.ListByRole(ctx, RoleWaiter)
}

// CreateWaiter signs up a new auth user and inserts the matching
// waiter profile. Requires staff admin.
func (s *Service) CreateWaiter(ctx context.Context, actor Role, input NewWaiterInput) (*Profile, error) {
	if !Can(actor, PermStaffAdmin) {
		return nil, errors.Forbidden("staff administration requires the admin role")
	}
	if input.Email == "" {
		return nil, errors.InvalidInput("email is required")
	}
	if len(input.Password) < 8 {
		return nil, errors.InvalidInput("password must be at least 8 characters")
	}

	signup, err := s.accounts.SignUp(ctx, input.Email, input.Password, map[string]any{
		"full_name": input.FullName,
	})
	if err != nil {
		return nil, errors.Wrap(err, "sign up waiter")
	}
	if signup.User == nil {
		return nil, errors.Internal("sign up returned no user", nil)
	}

	profile, err := s.store.InsertProfile(ctx, map[string]any{
		"id":        signup.User.ID,
		"email":     input.Email,
		"full_name": input.FullName,
		"role":      RoleWaiter,
	})
	if err != nil {
		return nil, err
	}

	s.logger.WithContext(ctx).WithFields(map[string]any{
		"waiter_id": profile.ID,
	}).Info("waiter created")
	return profile, nil
}

// DeleteWaiter removes a waiter profile. Requires staff admin. Only
// waiter rows can be deleted through this path.
func (s *Service) DeleteWaiter(ctx context.Context, actor Role, id string) error {
	if !Can(actor, PermStaffAdmin) {
		return errors.Forbidden("staff administration requires the admin role")
	}

	profile, err := s.store.GetProfile(ctx, id)
	if err != nil {
		return err
	}
	if profile.Role != RoleWaiter {
		return errors.Forbidden("only waiter accounts can be deleted here")
	}

	if err := s.store.DeleteProfile(ctx, id); err != nil {
		return err
	}

	s.logger.WithContext(ctx).WithFields(map[string]any{
		"waiter_id": id,
	}).Info("waiter deleted")
	return nil
}

// SetRole changes a profile's role. Requires staff admin.
func (s *Service) SetRole(ctx context.Context, actor Role, id string, role Role) (*Profile, error) {
	if !Can(actor, PermStaffAdmin) {
		return nil, errors.Forbidden("staff administration requires the admin role")
	}
	if !ValidRole(role) {
		return nil, errors.InvalidInput("unknown role")
	}
	return s.store.UpdateProfile(ctx, id, map[string]any{"role": role})
}
