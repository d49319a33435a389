package usecase

import (
	"context"
	"errors"
	"strings"

	"resource-share/src/domain"
	"resource-share/src/logger"
	"resource-share/src/metrics"
	"resource-share/src/security"

	"github.com/sirupsen/logrus"
)

const (
	DefaultPageLimit     = 12
	MaxPageLimit         = 100
	DefaultFeaturedLimit = 6
	DefaultSearchLimit   = 20
)

var resourceSortColumns = security.NewSQLSanitizer("created_at", "updated_at", "title", "view_count", "download_count")

// ResourceQuery 一覧取得のパラメータ。Category はスラッグ
type ResourceQuery struct {
	Page       int
	Limit      int
	Search     string
	Category   string
	Sort       string
	Order      string
	ActiveOnly bool
}

// SearchResult ページ付きのリソース一覧
type SearchResult struct {
	Resources  []domain.Resource `json:"resources"`
	Total      int               `json:"total"`
	Page       int               `json:"page"`
	Limit      int               `json:"limit"`
	TotalPages int               `json:"total_pages"`
}

// FeaturedList おすすめリソース。Degraded はストア障害で空を返したことを示す
type FeaturedList struct {
	Resources []domain.Resource `json:"resources"`
	Degraded  bool              `json:"degraded"`
}

// ResourceInput リソース作成・更新の入力。更新時はnilのフィールドを変更しない
type ResourceInput struct {
	Title          *string
	Description    *string
	Link           *string
	Category       *string
	Tags           []string
	ExtractionCode *string
	FileSize       *string
	FileType       *string
	IsActive       *bool
}

// BackfillReport category_id 補完の結果
type BackfillReport struct {
	Categories int   `json:"categories"`
	Updated    int64 `json:"updated"`
}

// ResourceUsecase defines the interface for resource business logic
type ResourceUsecase interface {
	GetResources(ctx context.Context, query ResourceQuery) (*SearchResult, error)
	GetResourceByID(ctx context.Context, id string) (*domain.Resource, error)
	GetFeaturedResources(ctx context.Context, limit int) FeaturedList
	SearchResources(ctx context.Context, query string, limit int) ([]domain.Resource, error)
	CreateResource(ctx context.Context, input ResourceInput) (*domain.Resource, error)
	UpdateResource(ctx context.Context, id string, input ResourceInput) (*domain.Resource, error)
	DeleteResource(ctx context.Context, id string) error
	IncrementViewCount(ctx context.Context, id string) (int64, error)
	IncrementDownloadCount(ctx context.Context, id string) (int64, error)
	BackfillCategoryIDs(ctx context.Context) (*BackfillReport, error)
}

type resourceUsecase struct {
	resourceRepo domain.ResourceRepository
	categoryRepo domain.CategoryRepository
	categories   CategoryResolver
	log          *logrus.Logger
	metrics      *metrics.Recorder
}

// NewResourceUsecase creates a new resource usecase
func NewResourceUsecase(
	resourceRepo domain.ResourceRepository,
	categoryRepo domain.CategoryRepository,
	categories CategoryResolver,
	log *logrus.Logger,
	rec *metrics.Recorder,
) ResourceUsecase {
	if log == nil {
		log = logger.Log
	}
	return &resourceUsecase{
		resourceRepo: resourceRepo,
		categoryRepo: categoryRepo,
		categories:   categories,
		log:          log,
		metrics:      rec,
	}
}

// GetResources 検索・カテゴリ・ソート・ページネーション付きの一覧
func (u *resourceUsecase) GetResources(ctx context.Context, query ResourceQuery) (*SearchResult, error) {
	page, limit := normalizePage(query.Page, query.Limit, DefaultPageLimit, MaxPageLimit)
	if err := checkPageWindow(resourceSortColumns, page, limit); err != nil {
		return nil, err
	}
	sortBy, order := resourceSortColumns.NormalizeOrderBy(query.Sort, query.Order)

	filter := domain.ResourceFilter{
		Search:     resourceSortColumns.NormalizeSearchQuery(query.Search),
		ActiveOnly: query.ActiveOnly,
		SortBy:     sortBy,
		SortOrder:  order,
		Page:       page,
		Limit:      limit,
	}

	list := u.categories.GetCategories(ctx)
	if slug := strings.TrimSpace(query.Category); slug != "" {
		if category := findBySlug(list.Categories, slug); category != nil {
			filter.Category = category.Name
			if !list.Degraded {
				filter.CategoryID = category.ID
			}
		} else {
			u.log.WithField("category", slug).Warn("カテゴリを解決できないため絞り込みを行いません")
		}
	}

	resources, total, err := u.resourceRepo.List(ctx, filter)
	if err != nil {
		return nil, storeFailure(u.log, u.metrics, "resource.list", err, logrus.Fields{"search": filter.Search})
	}

	return &SearchResult{
		Resources:  attachCategories(resources, list.Categories),
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages(total, limit),
	}, nil
}

// GetResourceByID 存在しない・形式が不正なIDは ErrResourceNotFound
func (u *resourceUsecase) GetResourceByID(ctx context.Context, id string) (*domain.Resource, error) {
	if !security.ValidateUUID(id) {
		return nil, ErrResourceNotFound
	}

	resource, err := u.resourceRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrResourceNotFound
		}
		return nil, storeFailure(u.log, u.metrics, "resource.get", err, logrus.Fields{"resource_id": id})
	}

	attached := attachCategories([]domain.Resource{*resource}, u.categories.GetCategories(ctx).Categories)
	return &attached[0], nil
}

// GetFeaturedResources 新しい順に limit 件を is_featured=true で返す。エラーは返さない
func (u *resourceUsecase) GetFeaturedResources(ctx context.Context, limit int) FeaturedList {
	_, limit = normalizePage(1, limit, DefaultFeaturedLimit, MaxPageLimit)

	resources, _, err := u.resourceRepo.List(ctx, domain.ResourceFilter{
		SortBy:    "created_at",
		SortOrder: "desc",
		Page:      1,
		Limit:     limit,
	})
	if err != nil {
		u.log.WithError(err).Warn("おすすめリソースの取得に失敗したため空の一覧を返します")
		u.metrics.StoreError("resource.featured")
		u.metrics.DegradedRead("featured")
		return FeaturedList{Resources: []domain.Resource{}, Degraded: true}
	}

	for i := range resources {
		resources[i].IsFeatured = true
	}
	return FeaturedList{Resources: attachCategories(resources, u.categories.GetCategories(ctx).Categories)}
}

// SearchResources 空のクエリはストアに問い合わせず空の一覧を返す
func (u *resourceUsecase) SearchResources(ctx context.Context, query string, limit int) ([]domain.Resource, error) {
	search := resourceSortColumns.NormalizeSearchQuery(query)
	if search == "" {
		return []domain.Resource{}, nil
	}
	_, limit = normalizePage(1, limit, DefaultSearchLimit, MaxPageLimit)

	resources, _, err := u.resourceRepo.List(ctx, domain.ResourceFilter{
		Search:    search,
		SortBy:    "created_at",
		SortOrder: "desc",
		Page:      1,
		Limit:     limit,
	})
	if err != nil {
		return nil, storeFailure(u.log, u.metrics, "resource.search", err, logrus.Fields{"search": search})
	}
	return attachCategories(resources, u.categories.GetCategories(ctx).Categories), nil
}

// CreateResource タイトル・リンク・カテゴリは必須
func (u *resourceUsecase) CreateResource(ctx context.Context, input ResourceInput) (*domain.Resource, error) {
	required := []struct {
		field string
		value *string
	}{
		{"title", input.Title},
		{"link", input.Link},
		{"category", input.Category},
	}
	for _, r := range required {
		if r.value == nil {
			return nil, &ValidationError{Field: r.field, Message: "此字段为必填项"}
		}
	}

	resource := &domain.Resource{IsActive: true, Tags: []string{}}
	if err := u.applyResourceInput(ctx, resource, input); err != nil {
		return nil, err
	}

	created, err := u.resourceRepo.Create(ctx, resource)
	if err != nil {
		return nil, storeFailure(u.log, u.metrics, "resource.create", err, logrus.Fields{"title": resource.Title})
	}

	u.log.WithFields(logrus.Fields{"resource_id": created.ID, "title": created.Title}).Info("リソースを作成しました")
	attached := attachCategories([]domain.Resource{*created}, u.categories.GetCategories(ctx).Categories)
	return &attached[0], nil
}

// UpdateResource 指定されたフィールドだけを検証して更新
func (u *resourceUsecase) UpdateResource(ctx context.Context, id string, input ResourceInput) (*domain.Resource, error) {
	if !security.ValidateUUID(id) {
		return nil, ErrResourceNotFound
	}

	existing, err := u.resourceRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrResourceNotFound
		}
		return nil, storeFailure(u.log, u.metrics, "resource.get", err, logrus.Fields{"resource_id": id})
	}

	updated := *existing
	if err := u.applyResourceInput(ctx, &updated, input); err != nil {
		return nil, err
	}

	saved, err := u.resourceRepo.Update(ctx, id, &updated)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrResourceNotFound
		}
		return nil, storeFailure(u.log, u.metrics, "resource.update", err, logrus.Fields{"resource_id": id})
	}

	u.log.WithField("resource_id", id).Info("リソースを更新しました")
	attached := attachCategories([]domain.Resource{*saved}, u.categories.GetCategories(ctx).Categories)
	return &attached[0], nil
}

// DeleteResource リソースを削除
func (u *resourceUsecase) DeleteResource(ctx context.Context, id string) error {
	if !security.ValidateUUID(id) {
		return ErrResourceNotFound
	}

	if err := u.resourceRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return ErrResourceNotFound
		}
		return storeFailure(u.log, u.metrics, "resource.delete", err, logrus.Fields{"resource_id": id})
	}

	u.log.WithField("resource_id", id).Info("リソースを削除しました")
	return nil
}

// IncrementViewCount 閲覧数を1増やす
func (u *resourceUsecase) IncrementViewCount(ctx context.Context, id string) (int64, error) {
	return u.increment(ctx, id, domain.CounterView)
}

// IncrementDownloadCount ダウンロード数を1増やす
func (u *resourceUsecase) IncrementDownloadCount(ctx context.Context, id string) (int64, error) {
	return u.increment(ctx, id, domain.CounterDownload)
}

func (u *resourceUsecase) increment(ctx context.Context, id string, counter domain.Counter) (int64, error) {
	if !security.ValidateUUID(id) {
		return 0, ErrResourceNotFound
	}

	value, err := u.resourceRepo.IncrementCounter(ctx, id, counter)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return 0, ErrResourceNotFound
		}
		return 0, storeFailure(u.log, u.metrics, "resource."+string(counter), err, logrus.Fields{"resource_id": id})
	}

	u.log.WithFields(logrus.Fields{"resource_id": id, "counter": counter, "value": value}).Debug("カウンタを更新しました")
	return value, nil
}

// BackfillCategoryIDs category_id が未設定のリソースに、名前が一致するカテゴリのIDを設定する
func (u *resourceUsecase) BackfillCategoryIDs(ctx context.Context) (*BackfillReport, error) {
	categories, err := u.categoryRepo.List(ctx)
	if err != nil {
		return nil, storeFailure(u.log, u.metrics, "category.list", err, nil)
	}

	report := &BackfillReport{Categories: len(categories)}
	for _, c := range categories {
		changed, err := u.resourceRepo.AssignCategoryID(ctx, c.Name, c.ID)
		if err != nil {
			return report, storeFailure(u.log, u.metrics, "resource.assign_category", err, logrus.Fields{"category_id": c.ID})
		}
		if changed > 0 {
			u.log.WithFields(logrus.Fields{"category_id": c.ID, "name": c.Name, "updated": changed}).Info("category_idを補完しました")
		}
		report.Updated += changed
	}
	return report, nil
}

func (u *resourceUsecase) applyResourceInput(ctx context.Context, r *domain.Resource, input ResourceInput) error {
	var err error
	if input.Title != nil {
		if r.Title, err = cleanText(u.log, "title", *input.Title, security.Rules.ResourceTitle); err != nil {
			return err
		}
	}
	if input.Description != nil {
		if r.Description, err = cleanText(u.log, "description", *input.Description, security.Rules.ResourceDescription); err != nil {
			return err
		}
	}
	if input.Link != nil {
		if r.Link, err = cleanLink(u.log, *input.Link); err != nil {
			return err
		}
	}
	if input.ExtractionCode != nil {
		if r.ExtractionCode, err = cleanText(u.log, "extraction_code", *input.ExtractionCode, security.Rules.ExtractionCode); err != nil {
			return err
		}
	}
	if input.FileSize != nil {
		size := strings.TrimSpace(*input.FileSize)
		if size != "" && !security.ValidateFileSize(size) {
			return &ValidationError{Field: "file_size", Message: "格式不正确"}
		}
		r.FileSize = size
	}
	if input.FileType != nil {
		fileType := strings.ToUpper(strings.TrimSpace(*input.FileType))
		if fileType != "" && !security.ValidateFileType(fileType) {
			return &ValidationError{Field: "file_type", Message: "不支持的文件类型"}
		}
		r.FileType = fileType
	}
	if input.Tags != nil {
		if r.Tags, err = cleanTags(u.log, input.Tags); err != nil {
			return err
		}
	}
	if input.IsActive != nil {
		r.IsActive = *input.IsActive
	}
	if input.Category != nil {
		name, err := cleanText(u.log, "category", *input.Category, security.Rules.CategoryName)
		if err != nil {
			return err
		}
		if name != r.Category || r.CategoryID == nil {
			r.Category = name
			r.CategoryID = u.categoryIDFor(ctx, name)
		}
	}
	return nil
}

// categoryIDFor 名前が完全一致するカテゴリのID。障害時や一致なしは nil
func (u *resourceUsecase) categoryIDFor(ctx context.Context, name string) *string {
	list := u.categories.GetCategories(ctx)
	if list.Degraded {
		return nil
	}
	for _, c := range list.Categories {
		if c.Name == name {
			id := c.ID
			return &id
		}
	}
	return nil
}

func findBySlug(categories []domain.Category, slug string) *domain.Category {
	var found *domain.Category
	for i := range categories {
		if categories[i].Slug == slug {
			found = &categories[i]
		}
	}
	return found
}

// attachCategories category_id、なければ名前の完全一致でカテゴリ情報を付ける。一致しなければ付けない
func attachCategories(resources []domain.Resource, categories []domain.Category) []domain.Resource {
	byID := make(map[string]domain.Category, len(categories))
	byName := make(map[string]domain.Category, len(categories))
	for _, c := range categories {
		byID[c.ID] = c
		byName[c.Name] = c
	}

	for i := range resources {
		r := &resources[i]
		if r.Tags == nil {
			r.Tags = []string{}
		}
		r.CategoryInfo = nil
		if r.CategoryID != nil {
			if c, ok := byID[*r.CategoryID]; ok {
				r.CategoryInfo = &c
				continue
			}
		}
		if c, ok := byName[r.Category]; ok {
			r.CategoryInfo = &c
		}
	}
	return resources
}
