package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gokatarajesh/trivia-api/internal/trivia"
)

// CategoryRepository is the Postgres-backed trivia.CategoryStore. Categories
// are seeded by migration and read-only at runtime.
type CategoryRepository struct {
	pool *pgxpool.Pool
}

var _ trivia.CategoryStore = (*CategoryRepository)(nil)

func NewCategoryRepository(pool *pgxpool.Pool) *CategoryRepository {
	return &CategoryRepository{pool: pool}
}

func (r *CategoryRepository) All(ctx context.Context) ([]trivia.Category, error) {
	rows, err := r.pool.Query(ctx, "SELECT id, type FROM categories ORDER BY id ASC")
	if err != nil {
		return nil, fmt.Errorf("query categories: %w", err)
	}
	defer rows.Close()

	var categories []trivia.Category
	for rows.Next() {
		var c trivia.Category
		if err := rows.Scan(&c.ID, &c.Type); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate categories: %w", err)
	}
	return categories, nil
}

func (r *CategoryRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM categories").Scan(&count); err != nil {
		return 0, fmt.Errorf("count categories: %w", err)
	}
	return count, nil
}
