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
	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
)

const resourceColumns = `id, title, COALESCE(description, ''), link, category, category_id,
	COALESCE(tags, '{}'), COALESCE(extraction_code, ''), COALESCE(file_size, ''), COALESCE(file_type, ''),
	view_count, download_count, COALESCE(is_active, true), created_at, updated_at`

var resourceOrder = security.NewSQLSanitizer("created_at", "updated_at", "title", "view_count", "download_count")

// ResourceRepository implements domain.ResourceRepository
type ResourceRepository struct {
	db     *database.DB
	logger *logrus.Logger
}

// NewResourceRepository creates a new resource repository
func NewResourceRepository(db *database.DB, logger *logrus.Logger) *ResourceRepository {
	return &ResourceRepository{
		db:     db,
		logger: logger,
	}
}

func scanResource(row rowScanner) (*domain.Resource, error) {
	var r domain.Resource
	var categoryID sql.NullString
	var tags pq.StringArray

	err := row.Scan(
		&r.ID, &r.Title, &r.Description, &r.Link, &r.Category, &categoryID,
		&tags, &r.ExtractionCode, &r.FileSize, &r.FileType,
		&r.ViewCount, &r.DownloadCount, &r.IsActive, &r.CreatedAt, &r.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if categoryID.Valid {
		r.CategoryID = &categoryID.String
	}
	r.Tags = []string(tags)
	if r.Tags == nil {
		r.Tags = []string{}
	}
	return &r, nil
}

// List retrieves resources with filtering, ordering and pagination
func (r *ResourceRepository) List(ctx context.Context, filter domain.ResourceFilter) ([]domain.Resource, int, error) {
	var cond conditions

	if filter.Search != "" {
		p := cond.bind(likePattern(filter.Search))
		cond.add(fmt.Sprintf("(title ILIKE %s OR description ILIKE %s)", p, p))
	}
	switch {
	case filter.CategoryID != "":
		id := cond.bind(filter.CategoryID)
		name := cond.bind(filter.Category)
		cond.add(fmt.Sprintf("(category_id = %s OR (category_id IS NULL AND category = %s))", id, name))
	case filter.Category != "":
		cond.add("category = " + cond.bind(filter.Category))
	}
	if filter.ActiveOnly {
		cond.add("COALESCE(is_active, true) = true")
	}

	sortBy, order := resourceOrder.NormalizeOrderBy(filter.SortBy, filter.SortOrder)
	limitClause, args := cond.page(filter.Limit, filter.Offset())
	query := "SELECT " + resourceColumns + " FROM resources" + cond.where() +
		fmt.Sprintf(" ORDER BY %s %s, id ASC", sortBy, order) + limitClause

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.WithError(err).Error("Failed to list resources")
		return nil, 0, fmt.Errorf("failed to list resources: %w", err)
	}
	defer rows.Close()

	resources := []domain.Resource{}
	for rows.Next() {
		resource, err := scanResource(rows)
		if err != nil {
			r.logger.WithError(err).Error("Failed to scan resource")
			return nil, 0, fmt.Errorf("failed to scan resource: %w", err)
		}
		resources = append(resources, *resource)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate resources: %w", err)
	}

	// 総数を取得
	var total int
	countQuery := "SELECT COUNT(*) FROM resources" + cond.where()
	if err := r.db.QueryRowContext(ctx, countQuery, cond.args...).Scan(&total); err != nil {
		r.logger.WithError(err).Error("Failed to count resources")
		return nil, 0, fmt.Errorf("failed to count resources: %w", err)
	}

	return resources, total, nil
}

// GetByID retrieves a resource by ID
func (r *ResourceRepository) GetByID(ctx context.Context, id string) (*domain.Resource, error) {
	if !security.ValidateUUID(id) {
		return nil, notFound("resource", id)
	}

	query := "SELECT " + resourceColumns + " FROM resources WHERE id = $1"
	resource, err := scanResource(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, notFound("resource", id)
		}
		r.logger.WithError(err).Error("Failed to get resource by ID")
		return nil, fmt.Errorf("failed to get resource: %w", err)
	}
	return resource, nil
}

// Create creates a new resource
func (r *ResourceRepository) Create(ctx context.Context, resource *domain.Resource) (*domain.Resource, error) {
	id := resource.ID
	if id == "" {
		id = uuid.NewString()
	}
	now := time.Now()

	query := `
		INSERT INTO resources (id, title, description, link, category, category_id, tags,
			extraction_code, file_size, file_type, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING ` + resourceColumns

	created, err := scanResource(r.db.QueryRowContext(ctx, query,
		id, resource.Title, resource.Description, resource.Link, resource.Category, resource.CategoryID,
		pq.Array(nonNilTags(resource.Tags)), resource.ExtractionCode, resource.FileSize, resource.FileType,
		resource.IsActive, now, now,
	))
	if err != nil {
		r.logger.WithError(err).Error("リソースの作成に失敗")
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}
	return created, nil
}

// Update replaces the stored columns of a resource; counters and created_at are kept
func (r *ResourceRepository) Update(ctx context.Context, id string, resource *domain.Resource) (*domain.Resource, error) {
	if !security.ValidateUUID(id) {
		return nil, notFound("resource", id)
	}

	query := `
		UPDATE resources
		SET title = $1, description = $2, link = $3, category = $4, category_id = $5, tags = $6,
			extraction_code = $7, file_size = $8, file_type = $9, is_active = $10, updated_at = $11
		WHERE id = $12
		RETURNING ` + resourceColumns

	updated, err := scanResource(r.db.QueryRowContext(ctx, query,
		resource.Title, resource.Description, resource.Link, resource.Category, resource.CategoryID,
		pq.Array(nonNilTags(resource.Tags)), resource.ExtractionCode, resource.FileSize, resource.FileType,
		resource.IsActive, time.Now(), id,
	))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, notFound("resource", id)
		}
		r.logger.WithError(err).Error("Failed to update resource")
		return nil, fmt.Errorf("failed to update resource: %w", err)
	}
	return updated, nil
}

// Delete permanently deletes a resource
func (r *ResourceRepository) Delete(ctx context.Context, id string) error {
	if !security.ValidateUUID(id) {
		return notFound("resource", id)
	}

	result, err := r.db.ExecContext(ctx, `DELETE FROM resources WHERE id = $1`, id)
	if err != nil {
		r.logger.WithError(err).Error("Failed to delete resource")
		return fmt.Errorf("failed to delete resource: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rowsAffected == 0 {
		return notFound("resource", id)
	}
	return nil
}

// IncrementCounter atomically adds one to a counter column and returns the new value
func (r *ResourceRepository) IncrementCounter(ctx context.Context, id string, counter domain.Counter) (int64, error) {
	if !counter.IsValid() {
		return 0, fmt.Errorf("unknown counter %q", counter)
	}
	if !security.ValidateUUID(id) {
		return 0, notFound("resource", id)
	}

	// カラム名は IsValid で検証済み
	query := fmt.Sprintf(`UPDATE resources SET %[1]s = %[1]s + 1 WHERE id = $1 RETURNING %[1]s`, counter)

	var value int64
	if err := r.db.QueryRowContext(ctx, query, id).Scan(&value); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, notFound("resource", id)
		}
		r.logger.WithError(err).WithField("counter", counter).Error("Failed to increment counter")
		return 0, fmt.Errorf("failed to increment %s: %w", counter, err)
	}
	return value, nil
}

// AssignCategoryID sets category_id on rows without one whose category name matches exactly
func (r *ResourceRepository) AssignCategoryID(ctx context.Context, name, categoryID string) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		`UPDATE resources SET category_id = $1 WHERE category_id IS NULL AND category = $2`,
		categoryID, name,
	)
	if err != nil {
		r.logger.WithError(err).Error("Failed to assign category id")
		return 0, fmt.Errorf("failed to assign category id: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get affected rows: %w", err)
	}
	return rowsAffected, nil
}

// Count returns the number of resources
func (r *ResourceRepository) Count(ctx context.Context) (int, error) {
	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM resources`).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to count resources: %w", err)
	}
	return total, nil
}

func nonNilTags(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return tags
}
