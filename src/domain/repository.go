package domain

import (
	"context"
	"time"
)

// CategoryRepository defines the interface for category data operations.
// List returns stored categories ordered by created_at ascending.
type CategoryRepository interface {
	List(ctx context.Context) ([]Category, error)
	GetByID(ctx context.Context, id string) (*Category, error)
	Create(ctx context.Context, category *Category) (*Category, error)
	Update(ctx context.Context, id string, category *Category) (*Category, error)
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int, error)
}

// ResourceRepository defines the interface for resource data operations
type ResourceRepository interface {
	List(ctx context.Context, filter ResourceFilter) ([]Resource, int, error)
	GetByID(ctx context.Context, id string) (*Resource, error)
	Create(ctx context.Context, resource *Resource) (*Resource, error)
	Update(ctx context.Context, id string, resource *Resource) (*Resource, error)
	Delete(ctx context.Context, id string) error
	IncrementCounter(ctx context.Context, id string, counter Counter) (int64, error)
	// AssignCategoryID sets category_id on rows whose category_id is NULL and
	// whose category equals name exactly. It returns the number of rows changed.
	AssignCategoryID(ctx context.Context, name, categoryID string) (int64, error)
	Count(ctx context.Context) (int, error)
}

// ResourceRequestRepository defines the interface for resource request data operations
type ResourceRequestRepository interface {
	Create(ctx context.Context, request *ResourceRequest) (*ResourceRequest, error)
	GetByID(ctx context.Context, id string) (*ResourceRequest, error)
	List(ctx context.Context, filter RequestFilter) ([]ResourceRequest, int, error)
	UpdateStatus(ctx context.Context, id string, status Status, adminNotes *string, processedAt *time.Time) (*ResourceRequest, error)
	CountByStatus(ctx context.Context, status Status) (int, error)
	CountSince(ctx context.Context, since time.Time) (int, error)
}
