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

// ResourceStore domain.ResourceRepository のインメモリ実装
type ResourceStore struct {
	mu    sync.RWMutex
	items map[string]domain.Resource
	now   func() time.Time
}

// NewResourceStore 空のストアを作成
func NewResourceStore() *ResourceStore {
	return &ResourceStore{items: make(map[string]domain.Resource), now: time.Now}
}

// List フィルタ・ソート・ページネーションを適用し、ページと総件数を返す
func (s *ResourceStore) List(_ context.Context, filter domain.ResourceFilter) ([]domain.Resource, int, error) {
	s.mu.RLock()
	matched := make([]domain.Resource, 0, len(s.items))
	search := strings.ToLower(filter.Search)
	for _, r := range s.items {
		if !matchesCategory(r, filter) {
			continue
		}
		if filter.ActiveOnly && !r.IsActive {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(r.Title), search) &&
			!strings.Contains(strings.ToLower(r.Description), search) {
			continue
		}
		matched = append(matched, cloneResource(r))
	}
	s.mu.RUnlock()

	sortResources(matched, filter.SortBy, filter.SortOrder)

	total := len(matched)
	return paginate(matched, filter.Offset(), filter.Limit), total, nil
}

// GetByID IDで取得
func (s *ResourceStore) GetByID(_ context.Context, id string) (*domain.Resource, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.items[id]
	if !ok {
		return nil, fmt.Errorf("resource %s: %w", id, domain.ErrNotFound)
	}
	clone := cloneResource(r)
	return &clone, nil
}

// Create IDと日時を採番して保存
func (s *ResourceStore) Create(_ context.Context, resource *domain.Resource) (*domain.Resource, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r := cloneResource(*resource)
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if _, exists := s.items[r.ID]; exists {
		return nil, fmt.Errorf("resource %s already exists", r.ID)
	}
	now := s.now()
	if r.CreatedAt.IsZero() {
		r.CreatedAt = now
	}
	if r.UpdatedAt.IsZero() {
		r.UpdatedAt = r.CreatedAt
	}
	r.IsFeatured = false
	r.CategoryInfo = nil

	s.items[r.ID] = r
	clone := cloneResource(r)
	return &clone, nil
}

// Update 保存カラムを全て置き換える（カウンタと作成日時は保持）
func (s *ResourceStore) Update(_ context.Context, id string, resource *domain.Resource) (*domain.Resource, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.items[id]
	if !ok {
		return nil, fmt.Errorf("resource %s: %w", id, domain.ErrNotFound)
	}

	r := cloneResource(*resource)
	r.ID = id
	r.ViewCount = existing.ViewCount
	r.DownloadCount = existing.DownloadCount
	r.CreatedAt = existing.CreatedAt
	r.UpdatedAt = s.now()
	r.IsFeatured = false
	r.CategoryInfo = nil

	s.items[id] = r
	clone := cloneResource(r)
	return &clone, nil
}

// Delete 削除
func (s *ResourceStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.items[id]; !ok {
		return fmt.Errorf("resource %s: %w", id, domain.ErrNotFound)
	}
	delete(s.items, id)
	return nil
}

// IncrementCounter カウンタを1増やし、新しい値を返す
func (s *ResourceStore) IncrementCounter(_ context.Context, id string, counter domain.Counter) (int64, error) {
	if !counter.IsValid() {
		return 0, fmt.Errorf("unknown counter %q", counter)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.items[id]
	if !ok {
		return 0, fmt.Errorf("resource %s: %w", id, domain.ErrNotFound)
	}

	var value int64
	switch counter {
	case domain.CounterView:
		r.ViewCount++
		value = r.ViewCount
	case domain.CounterDownload:
		r.DownloadCount++
		value = r.DownloadCount
	}
	s.items[id] = r
	return value, nil
}

// AssignCategoryID category_id が未設定でカテゴリ名が一致する行に設定する
func (s *ResourceStore) AssignCategoryID(_ context.Context, name, categoryID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var changed int64
	for id, r := range s.items {
		if r.CategoryID != nil || r.Category != name {
			continue
		}
		cid := categoryID
		r.CategoryID = &cid
		s.items[id] = r
		changed++
	}
	return changed, nil
}

// Count 件数
func (s *ResourceStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items), nil
}

func matchesCategory(r domain.Resource, filter domain.ResourceFilter) bool {
	if filter.Category == "" && filter.CategoryID == "" {
		return true
	}
	if filter.CategoryID != "" && r.CategoryID != nil {
		return *r.CategoryID == filter.CategoryID
	}
	return filter.Category != "" && r.Category == filter.Category
}

func sortResources(resources []domain.Resource, sortBy, sortOrder string) {
	desc := sortOrder != "asc"
	less := func(a, b domain.Resource) int {
		switch sortBy {
		case "title":
			return strings.Compare(a.Title, b.Title)
		case "updated_at":
			return a.UpdatedAt.Compare(b.UpdatedAt)
		case "view_count":
			return compareInt64(a.ViewCount, b.ViewCount)
		case "download_count":
			return compareInt64(a.DownloadCount, b.DownloadCount)
		default:
			return a.CreatedAt.Compare(b.CreatedAt)
		}
	}

	sort.SliceStable(resources, func(i, j int) bool {
		c := less(resources[i], resources[j])
		if c == 0 {
			return resources[i].ID < resources[j].ID
		}
		if desc {
			return c > 0
		}
		return c < 0
	})
}

func compareInt64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func cloneResource(r domain.Resource) domain.Resource {
	if r.Tags != nil {
		r.Tags = append([]string(nil), r.Tags...)
	} else {
		r.Tags = []string{}
	}
	if r.CategoryID != nil {
		id := *r.CategoryID
		r.CategoryID = &id
	}
	return r
}

func paginate[T any](items []T, offset, limit int) []T {
	if offset < 0 || offset >= len(items) {
		return []T{}
	}
	end := len(items)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return items[offset:end]
}
