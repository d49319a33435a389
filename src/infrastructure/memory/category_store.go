package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"resource-share/src/domain"

	"github.com/google/uuid"
)

// CategoryStore domain.CategoryRepository のインメモリ実装
type CategoryStore struct {
	mu    sync.RWMutex
	items map[string]domain.Category
	now   func() time.Time
}

// NewCategoryStore 空のストアを作成
func NewCategoryStore() *CategoryStore {
	return &CategoryStore{items: make(map[string]domain.Category), now: time.Now}
}

// List created_at の昇順で返す
func (s *CategoryStore) List(_ context.Context) ([]domain.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.Category, 0, len(s.items))
	for _, c := range s.items {
		result = append(result, storedCategory(c))
	}
	sort.SliceStable(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].ID < result[j].ID
		}
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

// GetByID IDで取得
func (s *CategoryStore) GetByID(_ context.Context, id string) (*domain.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.items[id]
	if !ok {
		return nil, fmt.Errorf("category %s: %w", id, domain.ErrNotFound)
	}
	stored := storedCategory(c)
	return &stored, nil
}

// Create IDと作成日時を採番して保存
func (s *CategoryStore) Create(_ context.Context, category *domain.Category) (*domain.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := storedCategory(*category)
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = s.now()
	}
	if _, exists := s.items[c.ID]; exists {
		return nil, fmt.Errorf("category %s already exists", c.ID)
	}
	s.items[c.ID] = c
	return &c, nil
}

// Update 名前と説明を更新
func (s *CategoryStore) Update(_ context.Context, id string, category *domain.Category) (*domain.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.items[id]
	if !ok {
		return nil, fmt.Errorf("category %s: %w", id, domain.ErrNotFound)
	}
	c.Name = category.Name
	c.Description = category.Description
	s.items[id] = c
	return &c, nil
}

// Delete 削除（リソース側の参照は変更しない）
func (s *CategoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.items[id]; !ok {
		return fmt.Errorf("category %s: %w", id, domain.ErrNotFound)
	}
	delete(s.items, id)
	return nil
}

// Count 件数
func (s *CategoryStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items), nil
}

// 保存されるカラムだけを残す
func storedCategory(c domain.Category) domain.Category {
	return domain.Category{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
		CreatedAt:   c.CreatedAt,
	}
}
