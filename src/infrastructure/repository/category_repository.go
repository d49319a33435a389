package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"resource-share/src/database"
	"resource-share/src/domain"
	"resource-share/src/security"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const categoryColumns = `id, name, COALESCE(description, ''), created_at`

// CategoryRepository implements domain.CategoryRepository
type CategoryRepository struct {
	db     *database.DB
	logger *logrus.Logger
}

// NewCategoryRepository creates a new category repository
func NewCategoryRepository(db *database.DB, logger *logrus.Logger) *CategoryRepository {
	return &CategoryRepository{
		db:     db,
		logger: logger,
	}
}

func scanCategory(row rowScanner) (*domain.Category, error) {
	var c domain.Category
	if err := row.Scan(&c.ID, &c.Name, &c.Description, &c.CreatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

// List returns every category ordered by creation time
func (r *CategoryRepository) List(ctx context.Context) ([]domain.Category, error) {
	query := "SELECT " + categoryColumns + " FROM categories ORDER BY created_at ASC, id ASC"

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		r.logger.WithError(err).Error("Failed to list categories")
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	categories := []domain.Category{}
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate categories: %w", err)
	}
	return categories, nil
}

// GetByID retrieves a category by ID
func (r *CategoryRepository) GetByID(ctx context.Context, id string) (*domain.Category, error) {
	if !security.ValidateUUID(id) {
		return nil, notFound("category", id)
	}

	c, err := scanCategory(r.db.QueryRowContext(ctx, "SELECT "+categoryColumns+" FROM categories WHERE id = $1", id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, notFound("category", id)
		}
		r.logger.WithError(err).Error("Failed to get category by ID")
		return nil, fmt.Errorf("failed to get category: %w", err)
	}
	return c, nil
}

// Create creates a new category
func (r *CategoryRepository) Create(ctx context.Context, category *domain.Category) (*domain.Category, error) {
	id := category.ID
	if id == "" {
		id = uuid.NewString()
	}

	query := `
		INSERT INTO categories (id, name, description, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + categoryColumns

	c, err := scanCategory(r.db.QueryRowContext(ctx, query, id, category.Name, category.Description, time.Now()))
	if err != nil {
		r.logger.WithError(err).Error("カテゴリの作成に失敗")
		return nil, fmt.Errorf("failed to create category: %w", err)
	}
	return c, nil
}

// Update updates the name and description of a category
func (r *CategoryRepository) Update(ctx context.Context, id string, category *domain.Category) (*domain.Category, error) {
	if !security.ValidateUUID(id) {
		return nil, notFound("category", id)
	}

	query := `UPDATE categories SET name = $1, description = $2 WHERE id = $3 RETURNING ` + categoryColumns

	c, err := scanCategory(r.db.QueryRowContext(ctx, query, category.Name, category.Description, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, notFound("category", id)
		}
		r.logger.WithError(err).Error("Failed to update category")
		return nil, fmt.Errorf("failed to update category: %w", err)
	}
	return c, nil
}

// Delete deletes a category; referencing resources keep their category name
func (r *CategoryRepository) Delete(ctx context.Context, id string) error {
	if !security.ValidateUUID(id) {
		return notFound("category", id)
	}

	result, err := r.db.ExecContext(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		r.logger.WithError(err).Error("Failed to delete category")
		return fmt.Errorf("failed to delete category: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rowsAffected == 0 {
		return notFound("category", id)
	}
	return nil
}

// Count returns the number of categories
func (r *CategoryRepository) Count(ctx context.Context) (int, error) {
	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM categories`).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to count categories: %w", err)
	}
	return total, nil
}
