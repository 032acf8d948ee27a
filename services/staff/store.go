package staff

import (
	"context"
	"fmt"

	"github.com/ristora/fronthouse/internal/errors"
	"github.com/ristora/fronthouse/services/base"
	"github.com/ristora/fronthouse/supabase/client"
)

// StoreInterface defines the interface for profile storage. Profiles
// are keyed by the auth user UUID, not a bigint id.
type StoreInterface interface {
	GetProfile(ctx context.Context, id string) (*Profile, error)
	ListByRole(ctx context.Context, role Role) ([]Profile, error)
	InsertProfile(ctx context.Context, fields map[string]any) (*Profile, error)
	UpdateProfile(ctx context.Context, id string, fields map[string]any) (*Profile, error)
	DeleteProfile(ctx context.Context, id string) error
}

// Store manages profile data in Supabase.
type Store struct {
	db *client.Client
}

// NewStore creates a new profile store.
func NewStore(db *client.Client) *Store {
	return &Store{db: db}
}

// GetProfile returns a profile by auth user id.
func (s *Store) GetProfile(ctx context.Context, id string) (*Profile, error) {
	var profile Profile
	err := s.db.From("profiles").Select("*").Eq("id", id).Single().Get(ctx, &profile)
	if err != nil {
		if client.IsNotFound(err) {
			return nil, errors.NotFound(fmt.Sprintf("profile %s not found", id))
		}
		return nil, base.WrapRemote(err, "get profile")
	}
	return &profile, nil
}

// ListByRole returns profiles with the given role, ordered by name.
func (s *Store) ListByRole(ctx context.Context, role Role) ([]Profile, error) {
	var profiles []Profile
	err := s.db.From("profiles").Select("*").
		Eq("role", role).
		Order("full_name", true).
		Get(ctx, &profiles)
	if err != nil {
		return nil, base.WrapRemote(err, "list profiles")
	}
	return profiles, nil
}

// InsertProfile inserts a profile row.
func (s *Store) InsertProfile(ctx context.Context, fields map[string]any) (*Profile, error) {
	var profile Profile
	if err := s.db.From("profiles").Single().Insert(ctx, fields, &profile); err != nil {
		return nil, base.WrapRemote(err, "insert profile")
	}
	return &profile, nil
}

// UpdateProfile patches a profile row.
func (s *Store) UpdateProfile(ctx context.Context, id string, fields map[string]any) (*Profile, error) {
	var profile Profile
	err := s.db.From("profiles").Eq("id", id).Single().Update(ctx, fields, &profile)
	if err != nil {
		if client.IsNotFound(err) {
			return nil, errors.NotFound(fmt.Sprintf("profile %s not found", id))
		}
		return nil, base.WrapRemote(err, "update profile")
	}
	return &profile, nil
}

// DeleteProfile removes a profile row.
func (s *Store) DeleteProfile(ctx context.Context, id string) error {
	if err := s.db.From("profiles").Eq("id", id).Delete(ctx); err != nil {
		return base.WrapRemote(err, "delete profile")
	}
	return nil
}
