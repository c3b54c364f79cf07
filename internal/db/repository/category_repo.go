package repository

import (
	"context"
	"errors"
	"strings"

	sqlcgen "github.com/gokatarajesh/trivia-api/internal/db/sqlc"
)

type categoryStore interface {
	ListCategories(ctx context.Context) ([]sqlcgen.Category, error)
	GetCategory(ctx context.Context, id int32) (sqlcgen.Category, error)
	FindCategoryByType(ctx context.Context, lower string) (sqlcgen.Category, error)
	CreateCategory(ctx context.Context, type_ string) (sqlcgen.Category, error)
}

// CategoryRepository exposes read access to categories plus the seeding helpers used by the importer.
type CategoryRepository struct {
	store categoryStore
}

// NewCategoryRepository wraps sqlc Queries for category operations.
func NewCategoryRepository(store categoryStore) *CategoryRepository {
	return &CategoryRepository{store: store}
}

// List returns all categories ordered by id.
func (r *CategoryRepository) List(ctx context.Context) ([]sqlcgen.Category, error) {
	return r.store.ListCategories(ctx)
}

// Get fetches a category by id, or ErrNotFound.
func (r *CategoryRepository) Get(ctx context.Context, id int32) (sqlcgen.Category, error) {
	c, err := r.store.GetCategory(ctx, id)
	return c, translate(err)
}

// Ensure returns the category named typ (case-insensitive), creating it when absent.
func (r *CategoryRepository) Ensure(ctx context.Context, typ string) (sqlcgen.Category, error) {
	typ = strings.TrimSpace(typ)
	c, err := r.store.FindCategoryByType(ctx, typ)
	if err == nil {
		return c, nil
	}
	if err = translate(err); !errors.Is(err, ErrNotFound) {
		return sqlcgen.Category{}, err
	}
	return r.store.CreateCategory(ctx, typ)
}
