package usecase_test

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"testing"
	"time"

	"resource-share/src/domain"
	"resource-share/src/infrastructure/memory"
	"resource-share/src/security"
	"resource-share/src/usecase"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type resourceFixture struct {
	resources  *memory.ResourceStore
	categories *memory.CategoryStore
	seeded     []*domain.Category
	uc         usecase.ResourceUsecase
}

func newResourceFixture(t *testing.T, categoryNames ...string) *resourceFixture {
	t.Helper()

	f := &resourceFixture{
		resources:  memory.NewResourceStore(),
		categories: memory.NewCategoryStore(),
	}
	f.seeded = seedCategories(t, f.categories, categoryNames...)
	resolver := usecase.NewCategoryUsecase(f.categories, testLogger(), nil)
	f.uc = usecase.NewResourceUsecase(f.resources, f.categories, resolver, testLogger(), nil)
	return f
}

func (f *resourceFixture) seed(t *testing.T, r domain.Resource) *domain.Resource {
	t.Helper()

	if r.CreatedAt.IsZero() {
		r.CreatedAt = epoch
	}
	r.IsActive = true
	created, err := f.resources.Create(context.Background(), &r)
	require.NoError(t, err)
	return created
}

func titles(resources []domain.Resource) []string {
	result := make([]string, len(resources))
	for i, r := range resources {
		result[i] = r.Title
	}
	return result
}

func TestSearchResources(t *testing.T) {
	f := newResourceFixture(t, "学习资料")
	f.seed(t, domain.Resource{Title: "JavaScript Guide", Category: "学习资料"})
	f.seed(t, domain.Resource{Title: "Python Basics", Category: "学习资料"})
	ctx := context.Background()

	t.Run("タイトルの部分一致（大文字小文字を区別しない）", func(t *testing.T) {
		found, err := f.uc.SearchResources(ctx, "java", 0)
		require.NoError(t, err)
		assert.Equal(t, []string{"JavaScript Guide"}, titles(found))
		require.NotNil(t, found[0].CategoryInfo)
		assert.Equal(t, "学习资料", found[0].CategoryInfo.Name)
	})

	t.Run("一致なし", func(t *testing.T) {
		found, err := f.uc.SearchResources(ctx, "xyz123", 0)
		require.NoError(t, err)
		assert.NotNil(t, found)
		assert.Empty(t, found)

		result, err := f.uc.GetResources(ctx, usecase.ResourceQuery{Search: "xyz123"})
		require.NoError(t, err)
		assert.Empty(t, result.Resources)
		assert.Equal(t, 0, result.Total)
		assert.Equal(t, 0, result.TotalPages)
	})

	t.Run("説明文も検索対象", func(t *testing.T) {
		f.seed(t, domain.Resource{Title: "Notes", Description: "covers java generics", Category: "学习资料"})

		result, err := f.uc.GetResources(ctx, usecase.ResourceQuery{Search: "JAVA"})
		require.NoError(t, err)
		assert.Equal(t, 2, result.Total)
	})
}

func TestSearchResources_BlankQuerySkipsStore(t *testing.T) {
	repo := new(MockResourceRepository)
	categories := usecase.NewCategoryUsecase(memory.NewCategoryStore(), testLogger(), nil)
	uc := usecase.NewResourceUsecase(repo, memory.NewCategoryStore(), categories, testLogger(), nil)

	for _, query := range []string{"", "   ", "\t\n"} {
		found, err := uc.SearchResources(context.Background(), query, 10)
		require.NoError(t, err)
		assert.NotNil(t, found)
		assert.Empty(t, found)
	}

	repo.AssertNotCalled(t, "List", mock.Anything, mock.Anything)
}

func TestGetFeaturedResources(t *testing.T) {
	f := newResourceFixture(t, "电子书籍")
	for i := 0; i < 5; i++ {
		f.seed(t, domain.Resource{
			Title:     fmt.Sprintf("resource-%d", i),
			Category:  "电子书籍",
			CreatedAt: epoch.Add(time.Duration(i) * time.Hour),
		})
	}

	featured := f.uc.GetFeaturedResources(context.Background(), 3)

	assert.False(t, featured.Degraded)
	assert.Equal(t, []string{"resource-4", "resource-3", "resource-2"}, titles(featured.Resources))
	for _, r := range featured.Resources {
		assert.True(t, r.IsFeatured)
	}

	// 保存済みの値は変わらない
	stored, _, err := f.resources.List(context.Background(), domain.ResourceFilter{Limit: 10})
	require.NoError(t, err)
	for _, r := range stored {
		assert.False(t, r.IsFeatured)
	}

	assert.Len(t, f.uc.GetFeaturedResources(context.Background(), 0).Resources, 5)
}

func TestGetFeaturedResources_StoreOutage(t *testing.T) {
	repo := new(MockResourceRepository)
	repo.On("List", mock.Anything, mock.Anything).Return(nil, 0, errors.New("connection reset"))
	categories := usecase.NewCategoryUsecase(memory.NewCategoryStore(), testLogger(), nil)
	uc := usecase.NewResourceUsecase(repo, memory.NewCategoryStore(), categories, testLogger(), nil)

	featured := uc.GetFeaturedResources(context.Background(), 6)

	assert.True(t, featured.Degraded)
	assert.NotNil(t, featured.Resources)
	assert.Empty(t, featured.Resources)
	repo.AssertExpectations(t)
}

func TestGetResources_NormalizesQuery(t *testing.T) {
	repo := new(MockResourceRepository)
	categories := usecase.NewCategoryUsecase(memory.NewCategoryStore(), testLogger(), nil)
	uc := usecase.NewResourceUsecase(repo, memory.NewCategoryStore(), categories, testLogger(), nil)

	repo.On("List", mock.Anything, mock.MatchedBy(func(f domain.ResourceFilter) bool {
		return f.Page == 1 &&
			f.Limit == usecase.MaxPageLimit &&
			f.SortBy == "created_at" &&
			f.SortOrder == "desc" &&
			f.Search == "go lang" &&
			f.Category == "" &&
			f.CategoryID == ""
	})).Return([]domain.Resource{}, 250, nil)

	result, err := uc.GetResources(context.Background(), usecase.ResourceQuery{
		Page:   0,
		Limit:  500,
		Search: "  go   lang ",
		Sort:   "password; drop",
		Order:  "sideways",
	})

	require.NoError(t, err)
	assert.Equal(t, 1, result.Page)
	assert.Equal(t, usecase.MaxPageLimit, result.Limit)
	assert.Equal(t, 250, result.Total)
	assert.Equal(t, 3, result.TotalPages)
	repo.AssertExpectations(t)
}

func TestGetResources_Defaults(t *testing.T) {
	f := newResourceFixture(t)
	for i := 0; i < 15; i++ {
		f.seed(t, domain.Resource{
			Title:     fmt.Sprintf("r%02d", i),
			Category:  "其他",
			CreatedAt: epoch.Add(time.Duration(i) * time.Minute),
		})
	}

	first, err := f.uc.GetResources(context.Background(), usecase.ResourceQuery{})
	require.NoError(t, err)
	assert.Equal(t, usecase.DefaultPageLimit, first.Limit)
	assert.Len(t, first.Resources, 12)
	assert.Equal(t, "r14", first.Resources[0].Title)
	assert.Equal(t, 2, first.TotalPages)

	second, err := f.uc.GetResources(context.Background(), usecase.ResourceQuery{Page: 2, Sort: "title", Order: "asc"})
	require.NoError(t, err)
	assert.Equal(t, []string{"r12", "r13", "r14"}, titles(second.Resources))
}

func TestGetResources_CategoryFilter(t *testing.T) {
	f := newResourceFixture(t, "电子书籍", "学习资料")
	ebooks, study := f.seeded[0], f.seeded[1]
	other := uuid.NewString()

	f.seed(t, domain.Resource{Title: "by-name-ebook", Category: "电子书籍"})
	f.seed(t, domain.Resource{Title: "by-id-study", Category: "学习资料", CategoryID: &study.ID})
	f.seed(t, domain.Resource{Title: "renamed", Category: "旧名称", CategoryID: &study.ID})
	f.seed(t, domain.Resource{Title: "foreign-id", Category: "学习资料", CategoryID: &other})
	f.seed(t, domain.Resource{Title: "near-miss", Category: "电子书籍 "})
	ctx := context.Background()

	t.Run("IDが設定されていればIDで絞り込む", func(t *testing.T) {
		result, err := f.uc.GetResources(ctx, usecase.ResourceQuery{Category: "学习资料", Sort: "title", Order: "asc"})
		require.NoError(t, err)
		assert.Equal(t, []string{"by-id-study", "renamed"}, titles(result.Resources))
		for _, r := range result.Resources {
			require.NotNil(t, r.CategoryInfo)
			assert.Equal(t, study.ID, r.CategoryInfo.ID)
		}
	})

	t.Run("IDがなければ名前の完全一致", func(t *testing.T) {
		result, err := f.uc.GetResources(ctx, usecase.ResourceQuery{Category: "电子书籍"})
		require.NoError(t, err)
		assert.Equal(t, []string{"by-name-ebook"}, titles(result.Resources))
		assert.Equal(t, ebooks.ID, result.Resources[0].CategoryInfo.ID)
	})

	t.Run("解決できないスラッグは絞り込まない", func(t *testing.T) {
		result, err := f.uc.GetResources(ctx, usecase.ResourceQuery{Category: "missing"})
		require.NoError(t, err)
		assert.Equal(t, 5, result.Total)
	})

	t.Run("カテゴリ情報の結合", func(t *testing.T) {
		result, err := f.uc.GetResources(ctx, usecase.ResourceQuery{})
		require.NoError(t, err)

		info := make(map[string]*domain.Category)
		for i := range result.Resources {
			info[result.Resources[i].Title] = result.Resources[i].CategoryInfo
		}
		assert.Nil(t, info["near-miss"])
		require.NotNil(t, info["foreign-id"])
		assert.Equal(t, study.ID, info["foreign-id"].ID, "unknown id falls back to the name")
		assert.Equal(t, "学习资料", info["renamed"].Name)
		assert.Equal(t, "电子书籍", info["by-name-ebook"].Slug)
	})
}

func TestGetResourceByID(t *testing.T) {
	f := newResourceFixture(t, "电子书籍")
	stored := f.seed(t, domain.Resource{Title: "Go 入门", Category: "电子书籍"})
	ctx := context.Background()

	found, err := f.uc.GetResourceByID(ctx, stored.ID)
	require.NoError(t, err)
	assert.Equal(t, "Go 入门", found.Title)
	require.NotNil(t, found.CategoryInfo)
	assert.Equal(t, f.seeded[0].ID, found.CategoryInfo.ID)

	_, err = f.uc.GetResourceByID(ctx, "not-a-uuid")
	assert.ErrorIs(t, err, usecase.ErrResourceNotFound)

	_, err = f.uc.GetResourceByID(ctx, uuid.NewString())
	assert.ErrorIs(t, err, usecase.ErrResourceNotFound)
}

func TestGetResourceByID_StoreFailure(t *testing.T) {
	repo := new(MockResourceRepository)
	id := uuid.NewString()
	repo.On("GetByID", mock.Anything, id).Return(nil, errors.New("dial tcp: connection refused"))
	categories := usecase.NewCategoryUsecase(memory.NewCategoryStore(), testLogger(), nil)
	uc := usecase.NewResourceUsecase(repo, memory.NewCategoryStore(), categories, testLogger(), nil)

	_, err := uc.GetResourceByID(context.Background(), id)

	assert.ErrorIs(t, err, usecase.ErrStoreFailure)
	assert.NotErrorIs(t, err, usecase.ErrResourceNotFound)
	assert.NotContains(t, err.Error(), "dial tcp")
}

func validResourceInput() usecase.ResourceInput {
	return usecase.ResourceInput{
		Title:    strPtr("Go 入门"),
		Link:     strPtr("https://pan.example.com/s/abc123"),
		Category: strPtr("电子书籍"),
	}
}

func TestCreateResource(t *testing.T) {
	f := newResourceFixture(t, "电子书籍", "学习资料")

	input := usecase.ResourceInput{
		Title:          strPtr("  Go 入门  "),
		Description:    strPtr("<b>从零开始</b>"),
		Link:           strPtr(" https://pan.example.com/s/abc123 "),
		Category:       strPtr("电子书籍"),
		Tags:           []string{"go", " go ", "", "编程"},
		ExtractionCode: strPtr("ab12"),
		FileSize:       strPtr("1.5 GB"),
		FileType:       strPtr("pdf"),
	}

	created, err := f.uc.CreateResource(context.Background(), input)

	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "Go 入门", created.Title)
	assert.Equal(t, "b从零开始/b", created.Description)
	assert.Equal(t, "https://pan.example.com/s/abc123", created.Link)
	assert.Equal(t, []string{"go", "编程"}, created.Tags)
	assert.Equal(t, "PDF", created.FileType)
	assert.Equal(t, "1.5 GB", created.FileSize)
	assert.True(t, created.IsActive)
	assert.False(t, created.IsFeatured)
	assert.Zero(t, created.ViewCount)
	require.NotNil(t, created.CategoryID)
	assert.Equal(t, f.seeded[0].ID, *created.CategoryID)
	require.NotNil(t, created.CategoryInfo)
	assert.Equal(t, "电子书籍", created.CategoryInfo.Name)

	count, err := f.resources.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestCreateResource_UnknownCategoryKeepsName(t *testing.T) {
	f := newResourceFixture(t, "电子书籍")
	input := validResourceInput()
	input.Category = strPtr("未分类")

	created, err := f.uc.CreateResource(context.Background(), input)

	require.NoError(t, err)
	assert.Equal(t, "未分类", created.Category)
	assert.Nil(t, created.CategoryID)
	assert.Nil(t, created.CategoryInfo)
}

func TestCreateResource_Rejects(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*usecase.ResourceInput)
		wantErr   error
		wantField string
	}{
		{
			name:      "タイトルなし",
			mutate:    func(in *usecase.ResourceInput) { in.Title = nil },
			wantErr:   usecase.ErrInvalidInput,
			wantField: "title",
		},
		{
			name:      "サニタイズ後に空になるタイトル",
			mutate:    func(in *usecase.ResourceInput) { in.Title = strPtr("<>") },
			wantErr:   usecase.ErrInvalidInput,
			wantField: "title",
		},
		{
			name:      "長すぎるタイトル",
			mutate:    func(in *usecase.ResourceInput) { in.Title = strPtr(strings.Repeat("书", 201)) },
			wantErr:   usecase.ErrInvalidInput,
			wantField: "title",
		},
		{
			name:      "リンクなし",
			mutate:    func(in *usecase.ResourceInput) { in.Link = nil },
			wantErr:   usecase.ErrInvalidInput,
			wantField: "link",
		},
		{
			name:      "httpでないリンク",
			mutate:    func(in *usecase.ResourceInput) { in.Link = strPtr("ftp://example.com/file") },
			wantErr:   usecase.ErrInvalidInput,
			wantField: "link",
		},
		{
			name:      "引用符を含むリンク",
			mutate:    func(in *usecase.ResourceInput) { in.Link = strPtr(`https://example.com/"x`) },
			wantErr:   usecase.ErrInvalidInput,
			wantField: "link",
		},
		{
			name:      "カテゴリなし",
			mutate:    func(in *usecase.ResourceInput) { in.Category = nil },
			wantErr:   usecase.ErrInvalidInput,
			wantField: "category",
		},
		{
			name:      "SQLを含む説明",
			mutate:    func(in *usecase.ResourceInput) { in.Description = strPtr("'; DROP TABLE resources; --") },
			wantErr:   usecase.ErrDangerousInput,
			wantField: "description",
		},
		{
			name:      "javascriptプロトコルのリンク",
			mutate:    func(in *usecase.ResourceInput) { in.Link = strPtr("javascript:alert(1)") },
			wantErr:   usecase.ErrDangerousInput,
			wantField: "link",
		},
		{
			name:      "スクリプトタグを含むタグ",
			mutate:    func(in *usecase.ResourceInput) { in.Tags = []string{"ok", "<script>"} },
			wantErr:   usecase.ErrDangerousInput,
			wantField: "tags",
		},
		{
			name: "タグが多すぎる",
			mutate: func(in *usecase.ResourceInput) {
				for i := 0; i < 21; i++ {
					in.Tags = append(in.Tags, fmt.Sprintf("tag%d", i))
				}
			},
			wantErr:   usecase.ErrInvalidInput,
			wantField: "tags",
		},
		{
			name:      "許可されていないファイル種別",
			mutate:    func(in *usecase.ResourceInput) { in.FileType = strPtr("html") },
			wantErr:   usecase.ErrInvalidInput,
			wantField: "file_type",
		},
		{
			name:      "不正なファイルサイズ",
			mutate:    func(in *usecase.ResourceInput) { in.FileSize = strPtr("very big") },
			wantErr:   usecase.ErrInvalidInput,
			wantField: "file_size",
		},
		{
			name:      "記号を含む抽出コード",
			mutate:    func(in *usecase.ResourceInput) { in.ExtractionCode = strPtr("ab-12") },
			wantErr:   usecase.ErrInvalidInput,
			wantField: "extraction_code",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newResourceFixture(t, "电子书籍")
			input := validResourceInput()
			tt.mutate(&input)

			_, err := f.uc.CreateResource(context.Background(), input)

			require.ErrorIs(t, err, tt.wantErr)
			var vErr *usecase.ValidationError
			var dErr *usecase.DangerousInputError
			switch {
			case errors.As(err, &vErr):
				assert.Equal(t, tt.wantField, vErr.Field)
			case errors.As(err, &dErr):
				assert.Equal(t, tt.wantField, dErr.Field)
				assert.NotEmpty(t, dErr.Reasons)
			default:
				t.Fatalf("unexpected error type %T", err)
			}

			count, err := f.resources.Count(context.Background())
			require.NoError(t, err)
			assert.Zero(t, count)
		})
	}
}

func TestCreateResource_StoreFailure(t *testing.T) {
	repo := new(MockResourceRepository)
	repo.On("Create", mock.Anything, mock.Anything).Return(nil, errors.New("pq: relation does not exist"))
	categoryStore := memory.NewCategoryStore()
	categories := usecase.NewCategoryUsecase(categoryStore, testLogger(), nil)
	uc := usecase.NewResourceUsecase(repo, categoryStore, categories, testLogger(), nil)

	_, err := uc.CreateResource(context.Background(), validResourceInput())

	assert.ErrorIs(t, err, usecase.ErrStoreFailure)
	assert.NotContains(t, err.Error(), "relation")
	repo.AssertExpectations(t)
}

func TestUpdateResource(t *testing.T) {
	f := newResourceFixture(t, "电子书籍", "学习资料")
	ctx := context.Background()

	input := validResourceInput()
	input.Tags = []string{"go"}
	created, err := f.uc.CreateResource(ctx, input)
	require.NoError(t, err)
	_, err = f.uc.IncrementViewCount(ctx, created.ID)
	require.NoError(t, err)

	t.Run("指定したフィールドだけ変わる", func(t *testing.T) {
		updated, err := f.uc.UpdateResource(ctx, created.ID, usecase.ResourceInput{Description: strPtr("第二版")})
		require.NoError(t, err)
		assert.Equal(t, "第二版", updated.Description)
		assert.Equal(t, "Go 入门", updated.Title)
		assert.Equal(t, []string{"go"}, updated.Tags)
		assert.Equal(t, created.Link, updated.Link)
		assert.Equal(t, int64(1), updated.ViewCount)
		assert.Equal(t, created.CreatedAt, updated.CreatedAt)
	})

	t.Run("カテゴリ変更でIDも付け替える", func(t *testing.T) {
		updated, err := f.uc.UpdateResource(ctx, created.ID, usecase.ResourceInput{Category: strPtr("学习资料")})
		require.NoError(t, err)
		assert.Equal(t, "学习资料", updated.Category)
		require.NotNil(t, updated.CategoryID)
		assert.Equal(t, f.seeded[1].ID, *updated.CategoryID)
		assert.Equal(t, "学习资料", updated.CategoryInfo.Name)
	})

	t.Run("非公開にする", func(t *testing.T) {
		inactive := false
		updated, err := f.uc.UpdateResource(ctx, created.ID, usecase.ResourceInput{IsActive: &inactive})
		require.NoError(t, err)
		assert.False(t, updated.IsActive)

		active, err := f.uc.GetResources(ctx, usecase.ResourceQuery{ActiveOnly: true})
		require.NoError(t, err)
		assert.Zero(t, active.Total)
	})

	t.Run("不正な値は保存しない", func(t *testing.T) {
		_, err := f.uc.UpdateResource(ctx, created.ID, usecase.ResourceInput{Title: strPtr("   ")})
		assert.ErrorIs(t, err, usecase.ErrInvalidInput)

		stored, err := f.uc.GetResourceByID(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, "Go 入门", stored.Title)
	})

	t.Run("存在しない", func(t *testing.T) {
		_, err := f.uc.UpdateResource(ctx, uuid.NewString(), usecase.ResourceInput{Title: strPtr("x")})
		assert.ErrorIs(t, err, usecase.ErrResourceNotFound)

		_, err = f.uc.UpdateResource(ctx, "1", usecase.ResourceInput{Title: strPtr("x")})
		assert.ErrorIs(t, err, usecase.ErrResourceNotFound)
	})
}

func TestDeleteResource(t *testing.T) {
	f := newResourceFixture(t, "电子书籍")
	ctx := context.Background()
	stored := f.seed(t, domain.Resource{Title: "old", Category: "电子书籍"})

	require.NoError(t, f.uc.DeleteResource(ctx, stored.ID))

	_, err := f.uc.GetResourceByID(ctx, stored.ID)
	assert.ErrorIs(t, err, usecase.ErrResourceNotFound)
	assert.ErrorIs(t, f.uc.DeleteResource(ctx, stored.ID), usecase.ErrResourceNotFound)
	assert.ErrorIs(t, f.uc.DeleteResource(ctx, "bad-id"), usecase.ErrResourceNotFound)
}

func TestIncrementCounters(t *testing.T) {
	f := newResourceFixture(t)
	ctx := context.Background()
	stored := f.seed(t, domain.Resource{Title: "counted", Category: "其他"})

	views, err := f.uc.IncrementViewCount(ctx, stored.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), views)

	views, err = f.uc.IncrementViewCount(ctx, stored.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), views)

	downloads, err := f.uc.IncrementDownloadCount(ctx, stored.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), downloads)

	found, err := f.uc.GetResourceByID(ctx, stored.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), found.ViewCount)
	assert.Equal(t, int64(1), found.DownloadCount)

	_, err = f.uc.IncrementViewCount(ctx, uuid.NewString())
	assert.ErrorIs(t, err, usecase.ErrResourceNotFound)
	_, err = f.uc.IncrementDownloadCount(ctx, "nope")
	assert.ErrorIs(t, err, usecase.ErrResourceNotFound)
}

func TestBackfillCategoryIDs(t *testing.T) {
	f := newResourceFixture(t, "电子书籍", "学习资料")
	ctx := context.Background()
	study := f.seeded[1]

	a := f.seed(t, domain.Resource{Title: "a", Category: "电子书籍"})
	f.seed(t, domain.Resource{Title: "b", Category: "电子书籍"})
	f.seed(t, domain.Resource{Title: "c", Category: "学习资料", CategoryID: &study.ID})
	d := f.seed(t, domain.Resource{Title: "d", Category: "其他"})

	report, err := f.uc.BackfillCategoryIDs(ctx)

	require.NoError(t, err)
	assert.Equal(t, 2, report.Categories)
	assert.Equal(t, int64(2), report.Updated)

	updated, err := f.resources.GetByID(ctx, a.ID)
	require.NoError(t, err)
	require.NotNil(t, updated.CategoryID)
	assert.Equal(t, f.seeded[0].ID, *updated.CategoryID)

	untouched, err := f.resources.GetByID(ctx, d.ID)
	require.NoError(t, err)
	assert.Nil(t, untouched.CategoryID)

	again, err := f.uc.BackfillCategoryIDs(ctx)
	require.NoError(t, err)
	assert.Zero(t, again.Updated)
}

func TestBackfillCategoryIDs_StoreFailure(t *testing.T) {
	categoryRepo := new(MockCategoryRepository)
	categoryRepo.On("List", mock.Anything).Return(nil, errors.New("timeout"))
	categories := usecase.NewCategoryUsecase(categoryRepo, testLogger(), nil)
	uc := usecase.NewResourceUsecase(memory.NewResourceStore(), categoryRepo, categories, testLogger(), nil)

	_, err := uc.BackfillCategoryIDs(context.Background())

	assert.ErrorIs(t, err, usecase.ErrStoreFailure)
}

func TestGetResources_PageOutOfRange(t *testing.T) {
	f := newResourceFixture(t)
	f.seed(t, domain.Resource{Title: "r00", Category: "其他"})

	tests := []struct {
		name  string
		query usecase.ResourceQuery
	}{
		{name: "オフセットがintを溢れるページ", query: usecase.ResourceQuery{Page: 1 << 62, Limit: 12}},
		{name: "最大int", query: usecase.ResourceQuery{Page: math.MaxInt, Limit: usecase.MaxPageLimit}},
		{name: "上限をわずかに超える", query: usecase.ResourceQuery{Page: security.MaxOffset/10 + 2, Limit: 10}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var (
				result *usecase.SearchResult
				err    error
			)
			require.NotPanics(t, func() {
				result, err = f.uc.GetResources(context.Background(), tt.query)
			})
			assert.Nil(t, result)

			var validationErr *usecase.ValidationError
			require.ErrorAs(t, err, &validationErr)
			assert.Equal(t, "page", validationErr.Field)
		})
	}

	// 上限ちょうどのページは空の結果を返す
	result, err := f.uc.GetResources(context.Background(), usecase.ResourceQuery{Page: security.MaxOffset/10 + 1, Limit: 10})
	require.NoError(t, err)
	assert.Empty(t, result.Resources)
	assert.Equal(t, 1, result.Total)
}
