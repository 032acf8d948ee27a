// Package base provides shared components for the domain services.
// Services embed BaseService and build their stores on Table.
package base

import (
	"context"
	"sync"

	"github.com/ristora/fronthouse/internal/logging"
	"github.com/ristora/fronthouse/supabase/client"
)

// Service is the interface every domain service satisfies.
type Service interface {
	Name() string
	Health(ctx context.Context) error
}

// BaseService provides common functionality for domain services.
type BaseService struct {
	mu sync.RWMutex

	name   string
	db     *client.Client
	logger *logging.Logger

	healthTable string
}

// NewBaseService creates a BaseService. healthTable is the table probed
// by Health; pass the service's primary table.
func NewBaseService(name, healthTable string, db *client.Client, logger *logging.Logger) *BaseService {
	return &BaseService{
		name:        name,
		db:          db,
		logger:      logger,
		healthTable: healthTable,
	}
}

// Name returns the service name.
func (s *BaseService) Name() string { return s.name }

// DB returns the Supabase client.
func (s *BaseService) DB() *client.Client { return s.db }

// Logger returns the service logger.
func (s *BaseService) Logger() *logging.Logger { return s.logger }

// Health probes the service's primary table with a minimal select.
func (s *BaseService) Health(ctx context.Context) error {
	s.mu.RLock()
	table := s.healthTable
	s.mu.RUnlock()

	if s.db == nil {
		return nil
	}
	var rows []struct {
		ID int64 `json:"id"`
	}
	return s.db.From(table).Select("id").Limit(1).Get(ctx, &rows)
}
