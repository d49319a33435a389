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

const requestColumns = `id, resource_name, COALESCE(description, ''), requester_email, COALESCE(contact_info, ''),
	priority, status, COALESCE(admin_notes, ''), created_at, updated_at, processed_at`

// 優先度は文字列順ではなく重要度順に並べる
const priorityRankExpr = `CASE priority WHEN 'low' THEN 0 WHEN 'normal' THEN 1 WHEN 'high' THEN 2 WHEN 'urgent' THEN 3 END`

var requestOrder = security.NewSQLSanitizer("created_at", "updated_at", "priority", "status")

// RequestRepository implements domain.ResourceRequestRepository
type RequestRepository struct {
	db     *database.DB
	logger *logrus.Logger
}

// NewRequestRepository creates a new resource request repository
func NewRequestRepository(db *database.DB, logger *logrus.Logger) *RequestRepository {
	return &RequestRepository{
		db:     db,
		logger: logger,
	}
}

func scanRequest(row rowScanner) (*domain.ResourceRequest, error) {
	var req domain.ResourceRequest
	var processedAt sql.NullTime

	err := row.Scan(
		&req.ID, &req.ResourceName, &req.Description, &req.RequesterEmail, &req.ContactInfo,
		&req.Priority, &req.Status, &req.AdminNotes, &req.CreatedAt, &req.UpdatedAt, &processedAt,
	)
	if err != nil {
		return nil, err
	}

	if processedAt.Valid {
		req.ProcessedAt = &processedAt.Time
	}
	return &req, nil
}

// Create creates a new resource request
func (r *RequestRepository) Create(ctx context.Context, request *domain.ResourceRequest) (*domain.ResourceRequest, error) {
	id := request.ID
	if id == "" {
		id = uuid.NewString()
	}
	now := time.Now()

	query := `
		INSERT INTO resource_requests (id, resource_name, description, requester_email, contact_info,
			priority, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING ` + requestColumns

	created, err := scanRequest(r.db.QueryRowContext(ctx, query,
		id, request.ResourceName, request.Description, request.RequesterEmail, request.ContactInfo,
		request.Priority, request.Status, now, now,
	))
	if err != nil {
		r.logger.WithError(err).Error("リソースリクエストの作成に失敗")
		return nil, fmt.Errorf("failed to create resource request: %w", err)
	}
	return created, nil
}

// GetByID retrieves a resource request by ID
func (r *RequestRepository) GetByID(ctx context.Context, id string) (*domain.ResourceRequest, error) {
	if !security.ValidateUUID(id) {
		return nil, notFound("resource request", id)
	}

	req, err := scanRequest(r.db.QueryRowContext(ctx, "SELECT "+requestColumns+" FROM resource_requests WHERE id = $1", id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, notFound("resource request", id)
		}
		r.logger.WithError(err).Error("Failed to get resource request by ID")
		return nil, fmt.Errorf("failed to get resource request: %w", err)
	}
	return req, nil
}

// List retrieves resource requests with filtering, ordering and pagination
func (r *RequestRepository) List(ctx context.Context, filter domain.RequestFilter) ([]domain.ResourceRequest, int, error) {
	var cond conditions

	if filter.Search != "" {
		p := cond.bind(likePattern(filter.Search))
		cond.add(fmt.Sprintf("(resource_name ILIKE %s OR requester_email ILIKE %s)", p, p))
	}
	if filter.Status != "" {
		cond.add("status = " + cond.bind(string(filter.Status)))
	}

	sortBy, order := requestOrder.NormalizeOrderBy(filter.SortBy, filter.SortOrder)
	orderExpr := sortBy
	if sortBy == "priority" {
		orderExpr = priorityRankExpr
	}

	limitClause, args := cond.page(filter.Limit, filter.Offset())
	query := "SELECT " + requestColumns + " FROM resource_requests" + cond.where() +
		fmt.Sprintf(" ORDER BY %s %s, id ASC", orderExpr, order) + limitClause

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.WithError(err).Error("Failed to list resource requests")
		return nil, 0, fmt.Errorf("failed to list resource requests: %w", err)
	}
	defer rows.Close()

	requests := []domain.ResourceRequest{}
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan resource request: %w", err)
		}
		requests = append(requests, *req)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate resource requests: %w", err)
	}

	var total int
	countQuery := "SELECT COUNT(*) FROM resource_requests" + cond.where()
	if err := r.db.QueryRowContext(ctx, countQuery, cond.args...).Scan(&total); err != nil {
		r.logger.WithError(err).Error("Failed to count resource requests")
		return nil, 0, fmt.Errorf("failed to count resource requests: %w", err)
	}

	return requests, total, nil
}

// UpdateStatus sets the status; nil notes or processedAt keep the stored values
func (r *RequestRepository) UpdateStatus(ctx context.Context, id string, status domain.Status, adminNotes *string, processedAt *time.Time) (*domain.ResourceRequest, error) {
	if !security.ValidateUUID(id) {
		return nil, notFound("resource request", id)
	}

	query := `
		UPDATE resource_requests
		SET status = $1, admin_notes = COALESCE($2, admin_notes), processed_at = COALESCE($3, processed_at), updated_at = $4
		WHERE id = $5
		RETURNING ` + requestColumns

	var notes sql.NullString
	if adminNotes != nil {
		notes = sql.NullString{String: *adminNotes, Valid: true}
	}
	var processed sql.NullTime
	if processedAt != nil {
		processed = sql.NullTime{Time: *processedAt, Valid: true}
	}

	updated, err := scanRequest(r.db.QueryRowContext(ctx, query, string(status), notes, processed, time.Now(), id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, notFound("resource request", id)
		}
		r.logger.WithError(err).Error("Failed to update resource request status")
		return nil, fmt.Errorf("failed to update resource request: %w", err)
	}
	return updated, nil
}

// CountByStatus returns the number of requests in a status
func (r *RequestRepository) CountByStatus(ctx context.Context, status domain.Status) (int, error) {
	var total int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM resource_requests WHERE status = $1`, string(status)).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("failed to count resource requests: %w", err)
	}
	return total, nil
}

// CountSince returns the number of requests created at or after since
func (r *RequestRepository) CountSince(ctx context.Context, since time.Time) (int, error) {
	var total int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM resource_requests WHERE created_at >= $1`, since).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("failed to count resource requests: %w", err)
	}
	return total, nil
}
