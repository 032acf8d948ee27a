package reservations

import (
	"context"
	"fmt"
	"time"

	"github.com/ristora/fronthouse/internal/errors"
	"github.com/ristora/fronthouse/internal/logging"
	"github.com/ristora/fronthouse/services/base"
	"github.com/ristora/fronthouse/supabase/client"
)

// StoreInterface defines the interface for reservation storage.
type StoreInterface interface {
	ListReservations(ctx context.Context, date string) ([]Reservation, error)
	GetReservation(ctx context.Context, id int64) (*Reservation, error)
	CreateReservation(ctx context.Context, fields map[string]any) (*Reservation, error)
	UpdateReservation(ctx context.Context, id int64, fields map[string]any) (*Reservation, error)
	DeleteReservation(ctx context.Context, id int64) error
}

// Store manages reservation data in Supabase.
type Store struct {
	reservations *base.Table[Reservation]
}

// NewStore creates a new reservation store.
func NewStore(db *client.Client) *Store {
	return &Store{
		reservations: base.NewTable[Reservation](db, "reservations", "*"),
	}
}

// ListReservations returns reservations ordered by date and time. An
// empty date returns every reservation.
func (s *Store) ListReservations(ctx context.Context, date string) ([]Reservation, error) {
	filters := []base.Filter{base.OrderBy("date", true), base.OrderBy("time", true)}
	if date != "" {
		filters = append(filters, base.Eq("date", date))
	}
	return s.reservations.List(ctx, filters...)
}

// GetReservation returns a reservation by id.
func (s *Store) GetReservation(ctx context.Context, id int64) (*Reservation, error) {
	return s.reservations.Get(ctx, id)
}

// CreateReservation inserts a reservation row.
func (s *Store) CreateReservation(ctx context.Context, fields map[string]any) (*Reservation, error) {
	return s.reservations.Insert(ctx, fields)
}

// UpdateReservation patches a reservation row.
func (s *Store) UpdateReservation(ctx context.Context, id int64, fields map[string]any) (*Reservation, error) {
	return s.reservations.Update(ctx, id, fields)
}

// DeleteReservation removes a reservation row.
func (s *Store) DeleteReservation(ctx context.Context, id int64) error {
	return s.reservations.Delete(ctx, id)
}

// Service implements reservation management.
type Service struct {
	*base.BaseService
	store  StoreInterface
	logger *logging.Logger
}

// New creates a new reservations service.
func New(db *client.Client, logger *logging.Logger) *Service {
	return &Service{
		BaseService: base.NewBaseService("reservations", "reservations", db, logger),
		store:       NewStore(db),
		logger:      logger,
	}
}

// NewWithStore creates a reservations service with a custom store.
func NewWithStore(store StoreInterface, logger *logging.Logger) *Service {
	return &Service{
		BaseService: base.NewBaseService("reservations", "reservations", nil, logger),
		store:       store,
		logger:      logger,
	}
}

// List returns reservations, optionally filtered to one date
// (YYYY-MM-DD).
func (s *Service) List(ctx context.Context, date string) ([]Reservation, error) {
	if date != "" {
		if _, err := time.Parse("2006-01-02", date); err != nil {
			return nil, errors.InvalidInput("date must be YYYY-MM-DD")
		}
	}
	return s.store.ListReservations(ctx, date)
}

// Get returns a reservation by id.
func (s *Service) Get(ctx context.Context, id int64) (*Reservation, error) {
	return s.store.GetReservation(ctx, id)
}

// Create books a reservation. New reservations start confirmed.
func (s *Service) Create(ctx context.Context, input Input) (*Reservation, error) {
	if err := validate(input); err != nil {
		return nil, err
	}
	fields := fieldsOf(input)
	fields["status"] = StatusConfirmed

	reservation, err := s.store.CreateReservation(ctx, fields)
	if err != nil {
		return nil, err
	}

	s.logger.WithContext(ctx).WithFields(map[string]any{
		"reservation_id": reservation.ID,
		"table_id":       reservation.TableID,
		"date":           reservation.Date,
	}).Info("reservation created")
	return reservation, nil
}

// Update rewrites a reservation's booking details.
func (s *Service) Update(ctx context.Context, id int64, input Input) (*Reservation, error) {
	if err := validate(input); err != nil {
		return nil, err
	}
	return s.store.UpdateReservation(ctx, id, fieldsOf(input))
}

// SetStatus writes the reservation status.
func (s *Service) SetStatus(ctx context.Context, id int64, status Status) (*Reservation, error) {
	if !ValidStatus(status) {
		return nil, errors.InvalidInput(fmt.Sprintf("unknown reservation status %q", status))
	}
	return s.store.UpdateReservation(ctx, id, map[string]any{"status": status})
}

// Delete removes a reservation.
func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.store.DeleteReservation(ctx, id)
}

func validate(input Input) error {
	if input.TableID <= 0 {
		return errors.InvalidInput("reservation requires a table")
	}
	if input.CustomerName == "" {
		return errors.InvalidInput("customer name is required")
	}
	if input.Guests <= 0 {
		return errors.InvalidInput("guest count must be positive")
	}
	if _, err := time.Parse("2006-01-02", input.Date); err != nil {
		return errors.InvalidInput("date must be YYYY-MM-DD")
	}
	if _, err := time.Parse("15:04", input.Time); err != nil {
		return errors.InvalidInput("time must be HH:MM")
	}
	return nil
}

func fieldsOf(input Input) map[string]any {
	return map[string]any{
		"table_id":       input.TableID,
		"customer_name":  input.CustomerName,
		"customer_phone": input.CustomerPhone,
		"customer_email": input.CustomerEmail,
		"guests":         input.Guests,
		"date":           input.Date,
		"time":           input.Time,
		"duration":       input.Duration,
		"notes":          input.Notes,
	}
}
