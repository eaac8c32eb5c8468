/*
 * @Description: 联系表单留言服务
 * @Author: 安知鱼
 * @Date: 2025-09-10 15:40:26
 * @LastEditTime: 2025-09-17 09:58:14
 * @LastEditors: 安知鱼
 */
package contact

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/anzhiyu-c/anheyu-atelier/internal/pkg/event"
	"github.com/anzhiyu-c/anheyu-atelier/internal/pkg/parser"
	"github.com/anzhiyu-c/anheyu-atelier/pkg/constant"
	"github.com/anzhiyu-c/anheyu-atelier/pkg/domain/model"
	"github.com/anzhiyu-c/anheyu-atelier/pkg/domain/repository"
	"github.com/anzhiyu-c/anheyu-atelier/pkg/idgen"
	"github.com/anzhiyu-c/anheyu-atelier/pkg/service/utility"
)

const (
	// 同一邮箱每小时最多提交的留言数
	perEmailHourlyLimit = 5
	perEmailWindow      = time.Hour
	minMessageLength    = 10
)

// ErrTooManySubmissions 同一邮箱提交过于频繁
var ErrTooManySubmissions = errors.New("提交过于频繁")

// ListResult 是后台留言列表的返回结构
type ListResult struct {
	Items    []*model.ContactSubmission `json:"items"`
	Total    int64                      `json:"total"`
	Page     int                        `json:"page"`
	PageSize int                        `json:"pageSize"`
}

// Service 定义了联系表单留言的业务逻辑接口
type Service interface {
	// Submit 保存一条公开表单提交的留言
	Submit(ctx context.Context, req model.CreateContactSubmissionRequest) (*model.ContactSubmission, error)
	// List 按时间倒序分页返回留言
	List(ctx context.Context, query repository.PageQuery) (*ListResult, error)
	// Get 按公开 ID 获取留言
	Get(ctx context.Context, publicID string) (*model.ContactSubmission, error)
	// Update 修改留言状态或备注
	Update(ctx context.Context, publicID string, req model.UpdateContactSubmissionRequest) (*model.ContactSubmission, error)
}

type contactService struct {
	repo  repository.ContactSubmissionRepository
	cache utility.CacheService
	bus   event.Publisher
}

// NewService 创建留言服务，cache 与 bus 可以为 nil
func NewService(repo repository.ContactSubmissionRepository, cache utility.CacheService, bus event.Publisher) Service {
	return &contactService{
		repo:  repo,
		cache: cache,
		bus:   bus,
	}
}

func (s *contactService) Submit(ctx context.Context, req model.CreateContactSubmissionRequest) (*model.ContactSubmission, error) {
	submission := &model.ContactSubmission{
		Name:      parser.CleanText(req.Name),
		Email:     strings.ToLower(strings.TrimSpace(req.Email)),
		Regarding: parser.CleanText(req.Regarding),
		Message:   parser.CleanText(req.Message),
		Status:    model.ContactStatusUnread,
	}
	if phone := parser.CleanText(req.Phone); phone != "" {
		submission.Phone = &phone
	}

	// 清理之后再次检查，避免只包含标签的内容
	if submission.Name == "" || submission.Regarding == "" || len([]rune(submission.Message)) < minMessageLength {
		return nil, fmt.Errorf("%w: 留言内容不完整", constant.ErrInvalidInput)
	}

	if err := s.checkEmailQuota(ctx, submission.Email); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, submission); err != nil {
		return nil, fmt.Errorf("保存留言失败: %w", err)
	}
	if err := s.attachPublicID(submission); err != nil {
		return nil, err
	}

	log.Printf("[ContactService] 收到新的留言 %s (regarding: %s)", submission.PublicID, submission.Regarding)
	if s.bus != nil {
		s.bus.Publish(event.ContactSubmitted, submission)
	}
	return submission, nil
}

// checkEmailQuota 缓存不可用时不做限制
func (s *contactService) checkEmailQuota(ctx context.Context, email string) error {
	if s.cache == nil {
		return nil
	}
	key := "contact:quota:" + email
	count, err := s.cache.Increment(ctx, key)
	if err != nil {
		log.Printf("[ContactService] 留言频率计数失败: %v", err)
		return nil
	}
	if count == 1 {
		if err := s.cache.Expire(ctx, key, perEmailWindow); err != nil {
			log.Printf("[ContactService] 设置计数过期时间失败: %v", err)
		}
	}
	if count > perEmailHourlyLimit {
		return ErrTooManySubmissions
	}
	return nil
}

func (s *contactService) List(ctx context.Context, query repository.PageQuery) (*ListResult, error) {
	items, total, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("获取留言列表失败: %w", err)
	}
	for _, item := range items {
		if err := s.attachPublicID(item); err != nil {
			return nil, err
		}
	}

	page, pageSize := query.Page, query.PageSize
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = len(items)
	}
	return &ListResult{Items: items, Total: total, Page: page, PageSize: pageSize}, nil
}

func (s *contactService) Get(ctx context.Context, publicID string) (*model.ContactSubmission, error) {
	id, err := decodeSubmissionID(publicID)
	if err != nil {
		return nil, err
	}
	submission, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.attachPublicID(submission); err != nil {
		return nil, err
	}
	return submission, nil
}

func (s *contactService) Update(ctx context.Context, publicID string, req model.UpdateContactSubmissionRequest) (*model.ContactSubmission, error) {
	id, err := decodeSubmissionID(publicID)
	if err != nil {
		return nil, err
	}

	update := repository.ContactSubmissionUpdate{Status: req.Status}
	if req.Notes != nil {
		update.SetNotes = true
		// 备注为空白时清空
		if notes := strings.TrimSpace(*req.Notes); notes != "" {
			update.Notes = &notes
		}
	}

	submission, err := s.repo.Update(ctx, id, update)
	if err != nil {
		return nil, err
	}
	if err := s.attachPublicID(submission); err != nil {
		return nil, err
	}
	return submission, nil
}

func (s *contactService) attachPublicID(submission *model.ContactSubmission) error {
	publicID, err := idgen.GeneratePublicID(submission.ID, idgen.EntityTypeContactSubmission)
	if err != nil {
		return fmt.Errorf("生成留言公共ID失败: %w", err)
	}
	submission.PublicID = publicID
	return nil
}

func decodeSubmissionID(publicID string) (uint, error) {
	id, entityType, err := idgen.DecodePublicID(publicID)
	if err != nil || entityType != idgen.EntityTypeContactSubmission {
		return 0, constant.ErrNotFound
	}
	return id, nil
}
