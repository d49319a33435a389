package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"resource-share/src/domain"

	"github.com/google/uuid"
)

var priorityRank = map[domain.Priority]int{
	domain.PriorityLow:    0,
	domain.PriorityNormal: 1,
	domain.PriorityHigh:   2,
	domain.PriorityUrgent: 3,
}

// RequestStore domain.ResourceRequestRepository のインメモリ実装
type RequestStore struct {
	mu    sync.RWMutex
	items map[string]domain.ResourceRequest
	now   func() time.Time
}

// NewRequestStore 空のストアを作成
func NewRequestStore() *RequestStore {
	return &RequestStore{items: make(map[string]domain.ResourceRequest), now: time.Now}
}

// Create IDと日時を採番して保存
func (s *RequestStore) Create(_ context.Context, request *domain.ResourceRequest) (*domain.ResourceRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r := *request
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if _, exists := s.items[r.ID]; exists {
		return nil, fmt.Errorf("resource request %s already exists", r.ID)
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = s.now()
	}
	if r.UpdatedAt.IsZero() {
		r.UpdatedAt = r.CreatedAt
	}
	s.items[r.ID] = r
	return &r, nil
}

// GetByID IDで取得
func (s *RequestStore) GetByID(_ context.Context, id string) (*domain.ResourceRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.items[id]
	if !ok {
		return nil, fmt.Errorf("resource request %s: %w", id, domain.ErrNotFound)
	}
	return &r, nil
}

// List フィルタ・ソート・ページネーションを適用し、ページと総件数を返す
func (s *RequestStore) List(_ context.Context, filter domain.RequestFilter) ([]domain.ResourceRequest, int, error) {
	s.mu.RLock()
	matched := make([]domain.ResourceRequest, 0, len(s.items))
	search := strings.ToLower(filter.Search)
	for _, r := range s.items {
		if filter.Status != "" && r.Status != filter.Status {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(r.ResourceName), search) &&
			!strings.Contains(strings.ToLower(r.RequesterEmail), search) {
			continue
		}
		matched = append(matched, r)
	}
	s.mu.RUnlock()

	desc := filter.SortOrder != "asc"
	sort.SliceStable(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		var c int
		switch filter.SortBy {
		case "updated_at":
			c = a.UpdatedAt.Compare(b.UpdatedAt)
		case "priority":
			c = priorityRank[a.Priority] - priorityRank[b.Priority]
		case "status":
			c = strings.Compare(string(a.Status), string(b.Status))
		default:
			c = a.CreatedAt.Compare(b.CreatedAt)
		}
		if c == 0 {
			return a.ID < b.ID
		}
		if desc {
			return c > 0
		}
		return c < 0
	})

	total := len(matched)
	return paginate(matched, filter.Offset(), filter.Limit), total, nil
}

// UpdateStatus ステータス・管理メモ・処理日時を更新
func (s *RequestStore) UpdateStatus(_ context.Context, id string, status domain.Status, adminNotes *string, processedAt *time.Time) (*domain.ResourceRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.items[id]
	if !ok {
		return nil, fmt.Errorf("resource request %s: %w", id, domain.ErrNotFound)
	}

	r.Status = status
	if adminNotes != nil {
		r.AdminNotes = *adminNotes
	}
	if processedAt != nil {
		t := *processedAt
		r.ProcessedAt = &t
	}
	r.UpdatedAt = s.now()

	s.items[id] = r
	return &r, nil
}

// CountByStatus 指定ステータスの件数
func (s *RequestStore) CountByStatus(_ context.Context, status domain.Status) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, r := range s.items {
		if r.Status == status {
			count++
		}
	}
	return count, nil
}

// CountSince since 以降に作成された件数
func (s *RequestStore) CountSince(_ context.Context, since time.Time) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, r := range s.items {
		if !r.CreatedAt.Before(since) {
			count++
		}
	}
	return count, nil
}
