package usecase

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"resource-share/src/domain"
	"resource-share/src/logger"
	"resource-share/src/metrics"
	"resource-share/src/security"

	"github.com/sirupsen/logrus"
)

// CategoryPalette カテゴリの表示色。取得順のインデックスで割り当てる
var CategoryPalette = []string{
	"#3B82F6", "#10B981", "#F59E0B", "#EF4444",
	"#8B5CF6", "#06B6D4", "#EC4899", "#6B7280",
}

// DefaultCategoryIcon どのキーワードにも一致しないときのアイコン
const DefaultCategoryIcon = "folder"

// 上から順に判定し、最初に一致したアイコンを使う
var iconKeywords = []struct {
	icon     string
	keywords []string
}{
	{"book", []string{"电子书", "书籍", "图书", "小说", "ebook", "book"}},
	{"graduation-cap", []string{"学习", "教程", "课程", "考试", "study", "course", "tutorial"}},
	{"file-text", []string{"文档", "资料", "document", "doc"}},
	{"music", []string{"音乐", "音频", "music", "audio"}},
	{"video", []string{"视频", "影视", "电影", "video", "movie"}},
	{"download", []string{"软件", "工具", "software", "tool", "app"}},
	{"image", []string{"图片", "壁纸", "素材", "image", "photo"}},
}

var fallbackEpoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// ストアに接続できないときに返す固定のカテゴリ
var fallbackCategories = []domain.Category{
	{ID: "default-ebooks", Name: "电子书籍", Description: "各类电子书籍资源", Slug: "ebooks", Icon: "book"},
	{ID: "default-study", Name: "学习资料", Description: "学习教程与课程资料", Slug: "study", Icon: "graduation-cap"},
	{ID: "default-documents", Name: "文档资料", Description: "常用文档与模板", Slug: "documents", Icon: "file-text"},
}

var slugWhitespace = regexp.MustCompile(`\s+`)

// CategoryList カテゴリ一覧。Degraded はストア障害で固定カテゴリを返したことを示す
type CategoryList struct {
	Categories []domain.Category `json:"categories"`
	Degraded   bool              `json:"degraded"`
}

// CategoryInput カテゴリの作成・更新の入力。nilのフィールドは更新しない
type CategoryInput struct {
	Name        *string
	Description *string
}

// CategoryResolver カテゴリ一覧の取得とスラッグ解決
type CategoryResolver interface {
	GetCategories(ctx context.Context) CategoryList
	GetCategoryBySlug(ctx context.Context, slug string) (*domain.Category, error)
}

// CategoryUsecase defines the interface for category business logic
type CategoryUsecase interface {
	CategoryResolver
	CreateCategory(ctx context.Context, input CategoryInput) (*domain.Category, error)
	UpdateCategory(ctx context.Context, id string, input CategoryInput) (*domain.Category, error)
	DeleteCategory(ctx context.Context, id string) error
}

type categoryUsecase struct {
	categoryRepo domain.CategoryRepository
	log          *logrus.Logger
	metrics      *metrics.Recorder
}

// NewCategoryUsecase creates a new category usecase
func NewCategoryUsecase(categoryRepo domain.CategoryRepository, log *logrus.Logger, rec *metrics.Recorder) CategoryUsecase {
	if log == nil {
		log = logger.Log
	}
	return &categoryUsecase{
		categoryRepo: categoryRepo,
		log:          log,
		metrics:      rec,
	}
}

// GetCategories 保存済みカテゴリに派生フィールドを補って返す。エラーは返さない
func (u *categoryUsecase) GetCategories(ctx context.Context) CategoryList {
	stored, err := u.categoryRepo.List(ctx)
	if err != nil {
		u.log.WithError(err).Warn("カテゴリの取得に失敗したため既定のカテゴリを返します")
		u.metrics.StoreError("category.list")
		u.metrics.DegradedRead("categories")
		return CategoryList{Categories: FallbackCategories(), Degraded: true}
	}

	categories := make([]domain.Category, len(stored))
	for i, c := range stored {
		categories[i] = DecorateCategory(c, i)
	}
	return CategoryList{Categories: categories}
}

// GetCategoryBySlug 一覧を導出し直して線形探索する。スラッグが重複する場合は後のものが優先される
func (u *categoryUsecase) GetCategoryBySlug(ctx context.Context, slug string) (*domain.Category, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return nil, ErrCategoryNotFound
	}

	var found *domain.Category
	list := u.GetCategories(ctx)
	for i := range list.Categories {
		if list.Categories[i].Slug == slug {
			c := list.Categories[i]
			found = &c
		}
	}
	if found == nil {
		return nil, ErrCategoryNotFound
	}
	return found, nil
}

// CreateCategory 名前は必須
func (u *categoryUsecase) CreateCategory(ctx context.Context, input CategoryInput) (*domain.Category, error) {
	if input.Name == nil {
		return nil, &ValidationError{Field: "name", Message: "此字段为必填项"}
	}

	category := &domain.Category{}
	if err := applyCategoryInput(u.log, category, input); err != nil {
		return nil, err
	}

	created, err := u.categoryRepo.Create(ctx, category)
	if err != nil {
		return nil, storeFailure(u.log, u.metrics, "category.create", err, logrus.Fields{"name": category.Name})
	}

	u.log.WithFields(logrus.Fields{"category_id": created.ID, "name": created.Name}).Info("カテゴリを作成しました")
	return u.derived(ctx, created), nil
}

// UpdateCategory 指定されたフィールドだけを更新
func (u *categoryUsecase) UpdateCategory(ctx context.Context, id string, input CategoryInput) (*domain.Category, error) {
	existing, err := u.categoryRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, storeFailure(u.log, u.metrics, "category.get", err, logrus.Fields{"category_id": id})
	}

	if err := applyCategoryInput(u.log, existing, input); err != nil {
		return nil, err
	}

	updated, err := u.categoryRepo.Update(ctx, id, existing)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, storeFailure(u.log, u.metrics, "category.update", err, logrus.Fields{"category_id": id})
	}

	u.log.WithField("category_id", id).Info("カテゴリを更新しました")
	return u.derived(ctx, updated), nil
}

// DeleteCategory 参照しているリソースはそのまま残る
func (u *categoryUsecase) DeleteCategory(ctx context.Context, id string) error {
	if err := u.categoryRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return ErrCategoryNotFound
		}
		return storeFailure(u.log, u.metrics, "category.delete", err, logrus.Fields{"category_id": id})
	}

	u.log.WithField("category_id", id).Info("カテゴリを削除しました")
	return nil
}

// derived 一覧上の位置に基づく派生フィールドを付けて返す
func (u *categoryUsecase) derived(ctx context.Context, stored *domain.Category) *domain.Category {
	list := u.GetCategories(ctx)
	if !list.Degraded {
		for i := range list.Categories {
			if list.Categories[i].ID == stored.ID {
				c := list.Categories[i]
				return &c
			}
		}
	}
	c := DecorateCategory(*stored, 0)
	return &c
}

func applyCategoryInput(log *logrus.Logger, category *domain.Category, input CategoryInput) error {
	if input.Name != nil {
		name, err := cleanText(log, "name", *input.Name, security.Rules.CategoryName)
		if err != nil {
			return err
		}
		category.Name = name
	}
	if input.Description != nil {
		description, err := cleanText(log, "description", *input.Description, security.Rules.CategoryDescription)
		if err != nil {
			return err
		}
		category.Description = description
	}
	return nil
}

// DecorateCategory 保存されていないフィールドを名前と取得順から導出する
func DecorateCategory(c domain.Category, index int) domain.Category {
	c.Slug = CategorySlug(c.Name)
	c.Icon = CategoryIcon(c.Name)
	c.Color = CategoryPalette[index%len(CategoryPalette)]
	c.SortOrder = index
	c.IsActive = true
	c.UpdatedAt = c.CreatedAt
	return c
}

// CategorySlug 小文字化・前後の空白除去・連続空白をハイフンに置換
func CategorySlug(name string) string {
	return slugWhitespace.ReplaceAllString(strings.TrimSpace(strings.ToLower(name)), "-")
}

// CategoryIcon 名前に含まれるキーワードからアイコンを推定
func CategoryIcon(name string) string {
	lower := strings.ToLower(name)
	for _, entry := range iconKeywords {
		for _, keyword := range entry.keywords {
			if strings.Contains(lower, keyword) {
				return entry.icon
			}
		}
	}
	return DefaultCategoryIcon
}

// FallbackCategories ストア障害時の固定カテゴリ（常に3件、呼び出しごとに新しいスライス）
func FallbackCategories() []domain.Category {
	result := make([]domain.Category, len(fallbackCategories))
	for i, c := range fallbackCategories {
		c.Color = CategoryPalette[i%len(CategoryPalette)]
		c.SortOrder = i
		c.IsActive = true
		c.CreatedAt = fallbackEpoch
		c.UpdatedAt = fallbackEpoch
		result[i] = c
	}
	return result
}
