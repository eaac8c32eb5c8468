/*
 * @Description: CMS 文档的内存存储，负责校验每一次修改并在后台持久化
 * @Author: 安知鱼
 * @Date: 2025-09-06 16:02:31
 * @LastEditTime: 2025-09-18 15:47:26
 * @LastEditors: 安知鱼
 */
package cms

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/anzhiyu-c/anheyu-atelier/internal/pkg/event"
	"github.com/anzhiyu-c/anheyu-atelier/pkg/domain/model"
	"github.com/anzhiyu-c/anheyu-atelier/pkg/schema"
)

// Status 是存储的生命周期状态
type Status string

const (
	StatusLoading Status = "loading"
	StatusReady   Status = "ready"
	StatusError   Status = "error"
)

// Section 对应文档的顶层分区，取值与 JSON 键一致
type Section string

const (
	SectionSiteIdentity Section = "siteIdentity"
	SectionHomepage     Section = "homepage"
	SectionArtLibrary   Section = "artLibrary"
	SectionExpositions  Section = "expositions"
)

// Valid 判断分区名是否已知
func (s Section) Valid() bool {
	switch s {
	case SectionSiteIdentity, SectionHomepage, SectionArtLibrary, SectionExpositions:
		return true
	}
	return false
}

const defaultSaveTimeout = 30 * time.Second

var (
	// ErrStoreUnavailable 存储处于 error 状态时，普通修改会被拒绝，需要重置或整体替换
	ErrStoreUnavailable = errors.New("存储处于错误状态，请先重置或整体替换文档")
	// ErrStoreLoading 文档尚未加载完成
	ErrStoreLoading = errors.New("文档仍在加载中")
	// ErrUnknownSection 未知的文档分区
	ErrUnknownSection = errors.New("未知的文档分区")
	// ErrArtworkNotFound 要修改的作品不在当前文档中
	ErrArtworkNotFound = errors.New("作品不存在")
)

// State 是存储在某一时刻的可观察状态
type State struct {
	Data         *model.CmsData `json:"data"`
	Status       Status         `json:"status"`
	Error        string         `json:"error,omitempty"`
	Issues       []schema.Issue `json:"issues,omitempty"`
	LastSavedAt  *time.Time     `json:"lastSavedAt,omitempty"`
	SaveError    string         `json:"saveError,omitempty"`
	PendingSaves int            `json:"pendingSaves"`
	Revision     uint64         `json:"revision"`
}

// ChangeEvent 是存储发布到事件总线上的负载
type ChangeEvent struct {
	Revision uint64 `json:"revision"`
	Reason   string `json:"reason,omitempty"`
	Error    string `json:"error,omitempty"`
}

// Option 配置 Store
type Option func(*Store)

// WithInitialData 使用服务端已加载的文档作为初始状态，跳过首次读取
func WithInitialData(doc *model.CmsData) Option {
	return func(s *Store) {
		if doc != nil {
			s.data = doc.Clone()
		}
	}
}

// WithEventBus 设置事件发布者
func WithEventBus(bus event.Publisher) Option {
	return func(s *Store) { s.bus = bus }
}

// WithSaveTimeout 设置每次后台保存的超时时间
func WithSaveTimeout(timeout time.Duration) Option {
	return func(s *Store) {
		if timeout > 0 {
			s.saveTimeout = timeout
		}
	}
}

// Store 持有进程内唯一的可写文档。
// 所有修改都在互斥锁内按调用顺序提交，持久化在后台串行进行。
// 过期的保存（版本落后于已写入的版本，或早于最近一次重置与整体替换）会被跳过，
// 仓储中保留的总是最新提交的文档。
type Store struct {
	repo        ContentRepository
	bus         event.Publisher
	saveTimeout time.Duration
	now         func() time.Time

	mu          sync.Mutex
	data        *model.CmsData
	status      Status
	lastErr     string
	issues      []schema.Issue
	lastSavedAt time.Time
	saveErr     string
	pending     int
	revision    uint64
	// epoch 在每次重置或强制替换时递增，过期的加载结果与保存都会被丢弃
	epoch uint64

	// persistMu 串行化所有仓储写入，persisted 是已写入的最高版本，两者都只在持有 persistMu 时访问。
	// 加锁顺序为 persistMu 在前，mu 在后。
	persistMu sync.Mutex
	persisted uint64

	saves sync.WaitGroup
}

// NewStore 创建存储。没有初始文档时状态为 loading，需要调用 Load。
func NewStore(repo ContentRepository, opts ...Option) *Store {
	s := &Store{
		repo:        repo,
		saveTimeout: defaultSaveTimeout,
		now:         time.Now,
		status:      StatusLoading,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.data != nil {
		s.status = StatusReady
	}
	return s
}

// Load 在 loading 状态下从仓储读取文档。已就绪时直接返回。
func (s *Store) Load(ctx context.Context) error {
	s.mu.Lock()
	if s.status != StatusLoading {
		s.mu.Unlock()
		return nil
	}
	epoch := s.epoch
	s.mu.Unlock()

	doc, err := s.repo.Load(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.epoch != epoch || s.status != StatusLoading {
		return nil
	}
	if err != nil {
		s.setError(fmt.Errorf("加载文档失败: %w", err))
		return err
	}
	if doc == nil {
		err = errors.New("仓储返回了空文档")
		s.setError(err)
		return err
	}
	// 刚加载的文档不需要回写
	s.data = doc
	s.status = StatusReady
	s.clearError()
	s.revision++
	return nil
}

// UpdateData 将 updater 应用到当前文档的副本上，校验通过后提交并在后台保存。
// updater 可以直接修改并返回收到的副本。
func (s *Store) UpdateData(updater func(*model.CmsData) *model.CmsData) error {
	return s.mutate("data", false, func(current *model.CmsData) (*model.CmsData, error) {
		return updater(current), nil
	})
}

// UpdateSiteIdentity 只修改站点身份分区
func (s *Store) UpdateSiteIdentity(updater func(model.SiteIdentity) model.SiteIdentity) error {
	return s.mutate(string(SectionSiteIdentity), false, func(current *model.CmsData) (*model.CmsData, error) {
		current.SiteIdentity = updater(current.SiteIdentity)
		return current, nil
	})
}

// UpdateHomepage 只修改首页分区
func (s *Store) UpdateHomepage(updater func(model.HomepageContent) model.HomepageContent) error {
	return s.mutate(string(SectionHomepage), false, func(current *model.CmsData) (*model.CmsData, error) {
		current.Homepage = updater(current.Homepage)
		return current, nil
	})
}

// UpdateArtLibrary 只修改作品库分区
func (s *Store) UpdateArtLibrary(updater func(model.ArtLibrary) model.ArtLibrary) error {
	return s.mutate(string(SectionArtLibrary), false, func(current *model.CmsData) (*model.CmsData, error) {
		current.ArtLibrary = updater(current.ArtLibrary)
		return current, nil
	})
}

// EditArtwork 修改作品库中指定的作品。
// 作品是否存在与修改在同一次提交中判断，作品不存在时返回 ErrArtworkNotFound，文档与状态都不变。
func (s *Store) EditArtwork(id string, updater func(model.ArtLibrary) model.ArtLibrary) error {
	return s.mutate(string(SectionArtLibrary), false, func(current *model.CmsData) (*model.CmsData, error) {
		if indexOfArtwork(current.ArtLibrary.Artworks, id) < 0 {
			return nil, fmt.Errorf("%w: %s", ErrArtworkNotFound, id)
		}
		current.ArtLibrary = updater(current.ArtLibrary)
		return current, nil
	})
}

// UpdateExpositions 只修改展览列表
func (s *Store) UpdateExpositions(updater func([]model.Exposition) []model.Exposition) error {
	return s.mutate(string(SectionExpositions), false, func(current *model.CmsData) (*model.CmsData, error) {
		current.Expositions = updater(current.Expositions)
		return current, nil
	})
}

// UpdateSection 用原始 JSON 替换一个分区。
// 先在 JSON 树上拼接再整体解析，缺省字段会按 schema 补齐默认值。
func (s *Store) UpdateSection(section Section, raw json.RawMessage) error {
	if !section.Valid() {
		return fmt.Errorf("%w: %s", ErrUnknownSection, section)
	}
	return s.mutate(string(section), false, func(current *model.CmsData) (*model.CmsData, error) {
		tree, err := toTree(current)
		if err != nil {
			return nil, err
		}
		value, err := decodeJSON(raw)
		if err != nil {
			return nil, &schema.ValidationError{Issues: []schema.Issue{{Path: string(section), Message: fmt.Sprintf("Invalid JSON: %v", err)}}}
		}
		tree[string(section)] = value
		return schema.ParseValue(tree)
	})
}

// ReplaceData 用一份完整文档替换当前文档，任何状态下都可以调用
func (s *Store) ReplaceData(next *model.CmsData) error {
	return s.mutate("replace", true, func(*model.CmsData) (*model.CmsData, error) {
		if next == nil {
			return nil, &schema.ValidationError{Issues: []schema.Issue{{Message: "Expected object, received null"}}}
		}
		// Validate 会返回独立副本
		return next, nil
	})
}

// ImportJSON 解析原始 JSON 并整体替换当前文档，任何状态下都可以调用
func (s *Store) ImportJSON(raw []byte) error {
	return s.mutate("import", true, func(*model.CmsData) (*model.CmsData, error) {
		return schema.Parse(raw)
	})
}

// Reset 将仓储中的文档重置为默认内容并提交。
// 默认文档写入失败时仍会提交到内存，错误记录在 SaveError 中。
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	s.status = StatusLoading
	s.epoch++
	epoch := s.epoch
	s.mu.Unlock()

	// 等待正在写入的保存结束，之后排队的旧保存会因 epoch 过期而跳过
	s.persistMu.Lock()
	if !s.epochIs(epoch) {
		s.persistMu.Unlock()
		return nil
	}
	doc, err := s.repo.Reset(ctx)
	s.persistMu.Unlock()

	s.mu.Lock()
	if s.epoch != epoch {
		// 重置期间文档已被整体替换
		s.mu.Unlock()
		return nil
	}
	if doc == nil {
		if err == nil {
			err = errors.New("仓储返回了空文档")
		}
		s.setError(fmt.Errorf("重置文档失败: %w", err))
		s.mu.Unlock()
		return err
	}

	s.data = doc
	s.status = StatusReady
	s.clearError()
	s.revision++
	if err != nil {
		s.saveErr = err.Error()
	} else {
		s.lastSavedAt = s.now()
		s.saveErr = ""
	}
	payload := ChangeEvent{Revision: s.revision, Reason: "reset", Error: s.saveErr}
	s.mu.Unlock()

	log.Printf("[CmsStore] 文档已重置为默认内容 (revision %d)", payload.Revision)
	s.publish(event.CmsReset, payload)
	return nil
}

// State 返回当前状态的快照，Data 是独立副本
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := State{
		Data:         s.data.Clone(),
		Status:       s.status,
		Error:        s.lastErr,
		SaveError:    s.saveErr,
		PendingSaves: s.pending,
		Revision:     s.revision,
	}
	if len(s.issues) > 0 {
		st.Issues = append([]schema.Issue(nil), s.issues...)
	}
	if !s.lastSavedAt.IsZero() {
		t := s.lastSavedAt
		st.LastSavedAt = &t
	}
	return st
}

// Data 返回当前文档的副本，尚未加载时返回 nil
func (s *Store) Data() *model.CmsData {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.Clone()
}

// Status 返回当前状态
func (s *Store) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Wait 阻塞直到所有后台保存完成
func (s *Store) Wait() {
	s.saves.Wait()
}

func (s *Store) mutate(reason string, force bool, build func(current *model.CmsData) (*model.CmsData, error)) error {
	revision, err := s.commit(force, build)
	if err != nil {
		if !isRefusal(err) {
			log.Printf("[CmsStore] 修改 '%s' 被拒绝: %v", reason, err)
		}
		return err
	}
	s.publish(event.CmsUpdated, ChangeEvent{Revision: revision, Reason: reason})
	return nil
}

func (s *Store) commit(force bool, build func(current *model.CmsData) (*model.CmsData, error)) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !force {
		switch s.status {
		case StatusLoading:
			return 0, ErrStoreLoading
		case StatusError:
			return 0, ErrStoreUnavailable
		}
	}

	candidate, err := buildCandidate(s.data, build)
	if errors.Is(err, ErrArtworkNotFound) {
		return 0, err
	}
	if err != nil {
		// 候选文档直接丢弃，当前文档保持不变
		s.setError(err)
		return 0, err
	}

	s.data = candidate
	s.status = StatusReady
	s.clearError()
	s.revision++
	if force {
		s.epoch++
	}
	s.scheduleSave(candidate.Clone(), s.revision, s.epoch)
	return s.revision, nil
}

// isRefusal 判断错误是否表示修改没有被尝试，这类错误不记录日志
func isRefusal(err error) bool {
	return errors.Is(err, ErrStoreLoading) || errors.Is(err, ErrStoreUnavailable) || errors.Is(err, ErrArtworkNotFound)
}

// buildCandidate 在当前文档的副本上执行 build 并校验结果，build 中的 panic 会转换为错误
func buildCandidate(current *model.CmsData, build func(*model.CmsData) (*model.CmsData, error)) (candidate *model.CmsData, err error) {
	defer func() {
		if r := recover(); r != nil {
			candidate, err = nil, fmt.Errorf("生成候选文档时发生 panic: %v", r)
		}
	}()

	candidate, err = build(current.Clone())
	if err != nil {
		return nil, err
	}
	return schema.Validate(candidate)
}

// scheduleSave 需要在持有 mu 时调用
func (s *Store) scheduleSave(doc *model.CmsData, revision, epoch uint64) {
	s.pending++
	s.saves.Add(1)
	go func() {
		defer s.saves.Done()

		written, err := s.persist(doc, revision, epoch)

		s.mu.Lock()
		s.pending--
		if written {
			if err != nil {
				// 本地修改不回滚
				s.saveErr = err.Error()
			} else {
				s.lastSavedAt = s.now()
				s.saveErr = ""
			}
		}
		s.mu.Unlock()

		switch {
		case !written:
			log.Printf("[CmsStore] revision %d 已过期，跳过保存", revision)
		case err != nil:
			log.Printf("[CmsStore] 后台保存 revision %d 失败: %v", revision, err)
			s.publish(event.CmsSaveFailed, ChangeEvent{Revision: revision, Error: err.Error()})
		default:
			s.publish(event.CmsSaved, ChangeEvent{Revision: revision})
		}
	}()
}

// persist 在 persistMu 保护下写入文档，过期的版本返回 written=false
func (s *Store) persist(doc *model.CmsData, revision, epoch uint64) (written bool, err error) {
	s.persistMu.Lock()
	defer s.persistMu.Unlock()

	if revision <= s.persisted || !s.epochIs(epoch) {
		return false, nil
	}
	s.persisted = revision

	ctx, cancel := context.WithTimeout(context.Background(), s.saveTimeout)
	defer cancel()
	return true, s.repo.Save(ctx, doc)
}

func (s *Store) epochIs(epoch uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.epoch == epoch
}

func (s *Store) setError(err error) {
	s.status = StatusError
	s.lastErr = err.Error()
	s.issues = nil
	if verr, ok := schema.AsValidationError(err); ok {
		s.issues = append([]schema.Issue(nil), verr.Issues...)
	}
}

func (s *Store) clearError() {
	s.lastErr = ""
	s.issues = nil
}

func (s *Store) publish(topic event.Topic, payload ChangeEvent) {
	if s.bus == nil {
		return
	}
	s.bus.Publish(topic, payload)
}

// toTree 把文档转换为通用 JSON 树，数字保持原样
func toTree(doc *model.CmsData) (map[string]any, error) {
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("序列化站点文档失败: %w", err)
	}
	value, err := decodeJSON(raw)
	if err != nil {
		return nil, err
	}
	tree, ok := value.(map[string]any)
	if !ok {
		return nil, errors.New("站点文档不是 JSON 对象")
	}
	return tree, nil
}

func decodeJSON(raw []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}
