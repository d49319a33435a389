package handler

import (
	"resource-share/src/domain"
	"resource-share/src/usecase"
)

// ResourceRequestDTO represents HTTP request for creating or updating a resource
type ResourceRequestDTO struct {
	Title          *string  `json:"title" validate:"omitempty,safe_text"`
	Description    *string  `json:"description" validate:"omitempty,safe_text"`
	Link           *string  `json:"link" validate:"omitempty,max=2048,safe_text"`
	Category       *string  `json:"category" validate:"omitempty,safe_text"`
	Tags           []string `json:"tags" validate:"omitempty,max=100,dive,safe_text"`
	ExtractionCode *string  `json:"extraction_code" validate:"omitempty,extraction_code"`
	FileSize       *string  `json:"file_size" validate:"omitempty,file_size"`
	FileType       *string  `json:"file_type" validate:"omitempty,file_type"`
	IsActive       *bool    `json:"is_active"`
}

// ResourceQueryDTO represents HTTP query parameters for listing resources
type ResourceQueryDTO struct {
	Page       int    `form:"page" validate:"min=0,max=100000"`
	Limit      int    `form:"limit" validate:"min=0"`
	Search     string `form:"search" validate:"omitempty,safe_text"`
	Category   string `form:"category" validate:"omitempty,max=100,safe_text"`
	Sort       string `form:"sort" validate:"omitempty,max=50"`
	Order      string `form:"order" validate:"omitempty,max=10"`
	ActiveOnly bool   `form:"active"`
}

// SearchQueryDTO represents HTTP query parameters for quick search
type SearchQueryDTO struct {
	Query string `form:"q" validate:"omitempty,safe_text"`
	Limit int    `form:"limit" validate:"min=0"`
}

// FeaturedQueryDTO represents HTTP query parameters for featured resources
type FeaturedQueryDTO struct {
	Limit int `form:"limit" validate:"min=0"`
}

// ShareTextDTO represents HTTP request for parsing pasted share text
type ShareTextDTO struct {
	Text string `json:"text" validate:"required,max=5000"`
}

// CategoryRequestDTO represents HTTP request for creating or updating a category
type CategoryRequestDTO struct {
	Name        *string `json:"name" validate:"omitempty,safe_text"`
	Description *string `json:"description" validate:"omitempty,safe_text"`
}

// ResourceRequestCreateDTO represents the public resource request form.
// priority and status are accepted but ignored.
type ResourceRequestCreateDTO struct {
	ResourceName   string `json:"resource_name" validate:"omitempty,safe_text"`
	Description    string `json:"description" validate:"omitempty,safe_text"`
	RequesterEmail string `json:"requester_email" validate:"omitempty,safe_text"`
	ContactInfo    string `json:"contact_info" validate:"omitempty,safe_text"`
	Priority       string `json:"priority"`
	Status         string `json:"status"`
}

// RequestQueryDTO represents HTTP query parameters for listing resource requests
type RequestQueryDTO struct {
	Page   int    `form:"page" validate:"min=0,max=100000"`
	Limit  int    `form:"limit" validate:"min=0"`
	Search string `form:"search" validate:"omitempty,safe_text"`
	Status string `form:"status" validate:"omitempty,request_status"`
	Sort   string `form:"sort" validate:"omitempty,max=50"`
	Order  string `form:"order" validate:"omitempty,max=10"`
}

// StatusUpdateDTO represents HTTP request for changing a resource request status
type StatusUpdateDTO struct {
	Status     string  `json:"status" validate:"required,request_status"`
	AdminNotes *string `json:"admin_notes" validate:"omitempty,safe_text"`
}

// LoginRequestDTO represents HTTP request for admin login
type LoginRequestDTO struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// ResourceResponseDTO wraps a single resource
type ResourceResponseDTO struct {
	Resource *domain.Resource `json:"resource"`
}

// ResourceListResponseDTO represents HTTP response for an unpaginated resource list
type ResourceListResponseDTO struct {
	Resources []domain.Resource `json:"resources"`
	Total     int               `json:"total"`
}

// CounterResponseDTO represents HTTP response after a counter increment
type CounterResponseDTO struct {
	ID    string `json:"id"`
	Count int64  `json:"count"`
}

// CategoryResponseDTO wraps a single category
type CategoryResponseDTO struct {
	Category *domain.Category `json:"category"`
}

// RequestCreatedResponseDTO represents HTTP response for a submitted resource request
type RequestCreatedResponseDTO struct {
	Message string                  `json:"message"`
	Request *domain.ResourceRequest `json:"request"`
}

// RequestResponseDTO wraps a single resource request
type RequestResponseDTO struct {
	Request *domain.ResourceRequest `json:"request"`
}

// StatsResponseDTO wraps the admin dashboard counters
type StatsResponseDTO struct {
	Stats *domain.AdminStats `json:"stats"`
}

// ErrorResponseDTO represents HTTP error response
type ErrorResponseDTO struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Field   string `json:"field,omitempty"`
}

func (dto ResourceRequestDTO) toInput() usecase.ResourceInput {
	return usecase.ResourceInput{
		Title:          dto.Title,
		Description:    dto.Description,
		Link:           dto.Link,
		Category:       dto.Category,
		Tags:           dto.Tags,
		ExtractionCode: dto.ExtractionCode,
		FileSize:       dto.FileSize,
		FileType:       dto.FileType,
		IsActive:       dto.IsActive,
	}
}

func (dto ResourceQueryDTO) toQuery() usecase.ResourceQuery {
	return usecase.ResourceQuery{
		Page:       dto.Page,
		Limit:      dto.Limit,
		Search:     dto.Search,
		Category:   dto.Category,
		Sort:       dto.Sort,
		Order:      dto.Order,
		ActiveOnly: dto.ActiveOnly,
	}
}

func (dto RequestQueryDTO) toQuery() usecase.RequestQuery {
	return usecase.RequestQuery{
		Page:   dto.Page,
		Limit:  dto.Limit,
		Search: dto.Search,
		Status: dto.Status,
		Sort:   dto.Sort,
		Order:  dto.Order,
	}
}
