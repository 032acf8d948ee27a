package base

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"

	"github.com/ristora/fronthouse/internal/errors"
	"github.com/ristora/fronthouse/supabase/client"
)

// Filter customizes a list query before execution.
type Filter func(*client.QueryBuilder) *client.QueryBuilder

// Eq filters rows where column equals value.
func Eq(column string, value any) Filter {
	return func(q *client.QueryBuilder) *client.QueryBuilder {
		return q.Eq(column, value)
	}
}

// OrderBy sorts the result set by column.
func OrderBy(column string, ascending bool) Filter {
	return func(q *client.QueryBuilder) *client.QueryBuilder {
		return q.Order(column, ascending)
	}
}

// WrapRemote converts a Supabase failure into a service error.
// Backend-side failures (5xx responses, open circuit breaker) carry
// the unavailable code so they surface as 503 rather than 500.
func WrapRemote(err error, op string) error {
	if err == nil {
		return nil
	}
	var apiErr *client.APIError
	if stderrors.As(err, &apiErr) && apiErr.StatusCode >= http.StatusInternalServerError {
		return errors.Remote(op+": backend unavailable", err)
	}
	if stderrors.Is(err, client.ErrCircuitOpen) {
		return errors.Remote(op+": backend unavailable", err)
	}
	return errors.Wrap(err, op)
}

// Table is a typed Supabase table accessor for row types keyed by a
// bigint id column. Services build their stores on it and add their
// own query methods and RPC calls alongside.
type Table[T any] struct {
	db    *client.Client
	name  string
	query string
}

// NewTable creates a table accessor. query is the PostgREST select
// expression used for reads; pass "*" for all columns.
func NewTable[T any](db *client.Client, name, query string) *Table[T] {
	if query == "" {
		query = "*"
	}
	return &Table[T]{db: db, name: name, query: query}
}

// Name returns the table name.
func (t *Table[T]) Name() string { return t.name }

// DB returns the underlying client.
func (t *Table[T]) DB() *client.Client { return t.db }

// List returns all rows matching the filters.
func (t *Table[T]) List(ctx context.Context, filters ...Filter) ([]T, error) {
	q := t.db.From(t.name).Select(t.query)
	for _, f := range filters {
		q = f(q)
	}
	var rows []T
	if err := q.Get(ctx, &rows); err != nil {
		return nil, WrapRemote(err, "list "+t.name)
	}
	return rows, nil
}

// Get returns a single row by id.
func (t *Table[T]) Get(ctx context.Context, id int64) (*T, error) {
	var row T
	err := t.db.From(t.name).Select(t.query).Eq("id", id).Single().Get(ctx, &row)
	if err != nil {
		if client.IsNotFound(err) {
			return nil, errors.NotFound(fmt.Sprintf("%s %d not found", t.name, id))
		}
		return nil, WrapRemote(err, "get "+t.name)
	}
	return &row, nil
}

// Insert inserts a row and returns the stored representation.
func (t *Table[T]) Insert(ctx context.Context, data any) (*T, error) {
	var row T
	if err := t.db.From(t.name).Single().Insert(ctx, data, &row); err != nil {
		return nil, WrapRemote(err, "insert "+t.name)
	}
	return &row, nil
}

// Update patches the row with the given id and returns the stored
// representation.
func (t *Table[T]) Update(ctx context.Context, id int64, data any) (*T, error) {
	var row T
	err := t.db.From(t.name).Eq("id", id).Single().Update(ctx, data, &row)
	if err != nil {
		if client.IsNotFound(err) {
			return nil, errors.NotFound(fmt.Sprintf("%s %d not found", t.name, id))
		}
		return nil, WrapRemote(err, "update "+t.name)
	}
	return &row, nil
}

// Delete removes the row with the given id.
func (t *Table[T]) Delete(ctx context.Context, id int64) error {
	if err := t.db.From(t.name).Eq("id", id).Delete(ctx); err != nil {
		return WrapRemote(err, "delete "+t.name)
	}
	return nil
}
