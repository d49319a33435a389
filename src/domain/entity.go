package domain

import (
	"errors"
	"time"
)

// ErrNotFound is returned by repositories when the requested row does not exist
var ErrNotFound = errors.New("not found")

// Category represents a resource category.
// Only ID, Name, Description and CreatedAt are stored; the rest is derived on read.
type Category struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Slug        string    `json:"slug"`
	Icon        string    `json:"icon"`
	Color       string    `json:"color"`
	SortOrder   int       `json:"sort_order"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Resource represents a cataloged external link
type Resource struct {
	ID             string    `json:"id"`
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	Link           string    `json:"link"`
	Category       string    `json:"category"`
	CategoryID     *string   `json:"category_id,omitempty"`
	Tags           []string  `json:"tags"`
	ExtractionCode string    `json:"extraction_code"`
	FileSize       string    `json:"file_size"`
	FileType       string    `json:"file_type"`
	ViewCount      int64     `json:"view_count"`
	DownloadCount  int64     `json:"download_count"`
	IsFeatured     bool      `json:"is_featured"`
	IsActive       bool      `json:"is_active"`
	CategoryInfo   *Category `json:"category_info,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// ResourceRequest represents a user-submitted request for a new resource
type ResourceRequest struct {
	ID             string     `json:"id"`
	ResourceName   string     `json:"resource_name"`
	Description    string     `json:"description"`
	RequesterEmail string     `json:"requester_email"`
	ContactInfo    string     `json:"contact_info"`
	Priority       Priority   `json:"priority"`
	Status         Status     `json:"status"`
	AdminNotes     string     `json:"admin_notes"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
	ProcessedAt    *time.Time `json:"processed_at,omitempty"`
}

// AdminStats represents dashboard counters
type AdminStats struct {
	TotalResources  int `json:"total_resources"`
	TotalCategories int `json:"total_categories"`
	PendingRequests int `json:"pending_requests"`
	TodayRequests   int `json:"today_requests"`
}

// Priority represents resource request priority levels
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityNormal Priority = "normal"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// Status represents resource request status
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusRejected   Status = "rejected"
)

var priorityLabels = map[Priority]string{
	PriorityLow:    "低",
	PriorityNormal: "普通",
	PriorityHigh:   "高",
	PriorityUrgent: "紧急",
}

var statusLabels = map[Status]string{
	StatusPending:    "待处理",
	StatusProcessing: "处理中",
	StatusCompleted:  "已完成",
	StatusRejected:   "已拒绝",
}

// IsValid validates if the priority is valid
func (p Priority) IsValid() bool {
	_, ok := priorityLabels[p]
	return ok
}

// Label returns the display label of the priority
func (p Priority) Label() string {
	return priorityLabels[p]
}

// String returns string representation of Priority
func (p Priority) String() string {
	return string(p)
}

// IsValid validates if the status is valid
func (s Status) IsValid() bool {
	_, ok := statusLabels[s]
	return ok
}

// Label returns the display label of the status
func (s Status) Label() string {
	return statusLabels[s]
}

// String returns string representation of Status
func (s Status) String() string {
	return string(s)
}

// IsTerminal reports whether no further status change is allowed
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusRejected
}

// CanTransitionTo reports whether a request may move from s to next
func (s Status) CanTransitionTo(next Status) bool {
	switch s {
	case StatusPending:
		return next == StatusProcessing || next == StatusCompleted || next == StatusRejected
	case StatusProcessing:
		return next == StatusCompleted || next == StatusRejected
	default:
		return false
	}
}

// Counter identifies a persisted resource counter
type Counter string

const (
	CounterView     Counter = "view_count"
	CounterDownload Counter = "download_count"
)

// IsValid validates if the counter is known
func (c Counter) IsValid() bool {
	return c == CounterView || c == CounterDownload
}

// ResourceFilter represents filter criteria for resource queries
type ResourceFilter struct {
	Search     string // substring of title or description, case-insensitive
	Category   string // exact category name
	CategoryID string // matched by id, or by Category for rows without an id
	ActiveOnly bool
	SortBy     string
	SortOrder  string
	Page       int
	Limit      int
}

// Offset returns the row offset for the page
func (f ResourceFilter) Offset() int {
	return offset(f.Page, f.Limit)
}

// RequestFilter represents filter criteria for resource request queries
type RequestFilter struct {
	Search    string // substring of resource_name or requester_email, case-insensitive
	Status    Status
	SortBy    string
	SortOrder string
	Page      int
	Limit     int
}

// Offset returns the row offset for the page
func (f RequestFilter) Offset() int {
	return offset(f.Page, f.Limit)
}

func offset(page, limit int) int {
	if page <= 1 {
		return 0
	}
	return (page - 1) * limit
}
