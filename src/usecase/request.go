package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"resource-share/src/domain"
	"resource-share/src/logger"
	"resource-share/src/metrics"
	"resource-share/src/security"

	"github.com/sirupsen/logrus"
)

// 保存前に切り詰める文字数
const (
	maxRequestNameLength        = 200
	maxRequestDescriptionLength = 1000
	maxRequesterEmailLength     = 255
	maxContactInfoLength        = 500
	maxAdminNotesLength         = 1000
)

var requestSortColumns = security.NewSQLSanitizer("created_at", "updated_at", "priority", "status")

// RequestInput 公開フォームからの入力。Priority と Status は受け取っても使わない
type RequestInput struct {
	ResourceName   string
	Description    string
	RequesterEmail string
	ContactInfo    string
	Priority       string
	Status         string
}

// RequestQuery 管理画面の一覧取得パラメータ
type RequestQuery struct {
	Page   int
	Limit  int
	Search string
	Status string
	Sort   string
	Order  string
}

// RequestList ページ付きの依頼一覧
type RequestList struct {
	Requests   []domain.ResourceRequest `json:"requests"`
	Total      int                      `json:"total"`
	Page       int                      `json:"page"`
	Limit      int                      `json:"limit"`
	TotalPages int                      `json:"total_pages"`
}

// StatusUpdate 依頼のステータス変更
type StatusUpdate struct {
	Status     string
	AdminNotes *string
}

// RequestUsecase defines the interface for resource request business logic
type RequestUsecase interface {
	CreateResourceRequest(ctx context.Context, input RequestInput) (*domain.ResourceRequest, error)
	GetResourceRequests(ctx context.Context, query RequestQuery) (*RequestList, error)
	UpdateResourceRequestStatus(ctx context.Context, id string, update StatusUpdate) (*domain.ResourceRequest, error)
}

type requestUsecase struct {
	requestRepo domain.ResourceRequestRepository
	log         *logrus.Logger
	metrics     *metrics.Recorder
}

// NewRequestUsecase creates a new resource request usecase
func NewRequestUsecase(requestRepo domain.ResourceRequestRepository, log *logrus.Logger, rec *metrics.Recorder) RequestUsecase {
	if log == nil {
		log = logger.Log
	}
	return &requestUsecase{
		requestRepo: requestRepo,
		log:         log,
		metrics:     rec,
	}
}

// CreateResourceRequest サニタイズ後に切り詰めて保存する。優先度は normal、ステータスは pending 固定
func (u *requestUsecase) CreateResourceRequest(ctx context.Context, input RequestInput) (*domain.ResourceRequest, error) {
	fields := []struct {
		name  string
		value string
	}{
		{"resource_name", input.ResourceName},
		{"description", input.Description},
		{"requester_email", input.RequesterEmail},
		{"contact_info", input.ContactInfo},
	}
	for _, f := range fields {
		if err := scan(u.log, f.name, f.value); err != nil {
			return nil, err
		}
	}

	request := &domain.ResourceRequest{
		ResourceName:   security.Truncate(security.Sanitize(input.ResourceName), maxRequestNameLength),
		Description:    security.Truncate(security.Sanitize(input.Description), maxRequestDescriptionLength),
		RequesterEmail: security.Truncate(security.Sanitize(input.RequesterEmail), maxRequesterEmailLength),
		ContactInfo:    security.Truncate(security.Sanitize(input.ContactInfo), maxContactInfoLength),
		Priority:       domain.PriorityNormal,
		Status:         domain.StatusPending,
	}

	if strings.TrimSpace(request.ResourceName) == "" {
		return nil, &ValidationError{Field: "resource_name", Message: "此字段为必填项"}
	}
	if request.RequesterEmail == "" {
		return nil, &ValidationError{Field: "requester_email", Message: "此字段为必填项"}
	}
	if !security.ValidateEmail(request.RequesterEmail) {
		return nil, &ValidationError{Field: "requester_email", Message: "请输入有效的邮箱地址"}
	}

	created, err := u.requestRepo.Create(ctx, request)
	if err != nil {
		return nil, storeFailure(u.log, u.metrics, "request.create", err, nil)
	}

	u.log.WithFields(logrus.Fields{
		"request_id":    created.ID,
		"resource_name": created.ResourceName,
	}).Info("リソースリクエストを受け付けました")
	return created, nil
}

// GetResourceRequests 名前またはメールアドレスでの検索とステータス絞り込み
func (u *requestUsecase) GetResourceRequests(ctx context.Context, query RequestQuery) (*RequestList, error) {
	page, limit := normalizePage(query.Page, query.Limit, DefaultPageLimit, MaxPageLimit)
	if err := checkPageWindow(requestSortColumns, page, limit); err != nil {
		return nil, err
	}
	sortBy, order := requestSortColumns.NormalizeOrderBy(query.Sort, query.Order)

	filter := domain.RequestFilter{
		Search:    requestSortColumns.NormalizeSearchQuery(query.Search),
		SortBy:    sortBy,
		SortOrder: order,
		Page:      page,
		Limit:     limit,
	}
	if status := strings.TrimSpace(query.Status); status != "" {
		filter.Status = domain.Status(status)
		if !filter.Status.IsValid() {
			return nil, &ValidationError{Field: "status", Message: "格式不正确"}
		}
	}

	requests, total, err := u.requestRepo.List(ctx, filter)
	if err != nil {
		return nil, storeFailure(u.log, u.metrics, "request.list", err, nil)
	}

	return &RequestList{
		Requests:   requests,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages(total, limit),
	}, nil
}

// UpdateResourceRequestStatus pending → processing/completed/rejected、processing → completed/rejected のみ許可
func (u *requestUsecase) UpdateResourceRequestStatus(ctx context.Context, id string, update StatusUpdate) (*domain.ResourceRequest, error) {
	next := domain.Status(strings.TrimSpace(update.Status))
	if !next.IsValid() {
		return nil, &ValidationError{Field: "status", Message: "格式不正确"}
	}
	if !security.ValidateUUID(id) {
		return nil, ErrRequestNotFound
	}

	var notes *string
	if update.AdminNotes != nil {
		if err := scan(u.log, "admin_notes", *update.AdminNotes); err != nil {
			return nil, err
		}
		cleaned := security.Truncate(security.Sanitize(*update.AdminNotes), maxAdminNotesLength)
		notes = &cleaned
	}

	existing, err := u.requestRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrRequestNotFound
		}
		return nil, storeFailure(u.log, u.metrics, "request.get", err, logrus.Fields{"request_id": id})
	}

	if !existing.Status.CanTransitionTo(next) {
		u.log.WithFields(logrus.Fields{
			"request_id": id,
			"from":       existing.Status,
			"to":         next,
		}).Warn("許可されていないステータス遷移です")
		return nil, ErrInvalidTransition
	}

	var processedAt *time.Time
	if next.IsTerminal() {
		now := time.Now()
		processedAt = &now
	}

	updated, err := u.requestRepo.UpdateStatus(ctx, id, next, notes, processedAt)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrRequestNotFound
		}
		return nil, storeFailure(u.log, u.metrics, "request.update_status", err, logrus.Fields{"request_id": id})
	}

	u.log.WithFields(logrus.Fields{
		"request_id": id,
		"from":       existing.Status,
		"to":         next,
	}).Info("リソースリクエストのステータスを更新しました")
	return updated, nil
}
