package contact_test

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anzhiyu-c/anheyu-atelier/internal/pkg/event"
	"github.com/anzhiyu-c/anheyu-atelier/pkg/constant"
	"github.com/anzhiyu-c/anheyu-atelier/pkg/domain/model"
	"github.com/anzhiyu-c/anheyu-atelier/pkg/domain/repository"
	"github.com/anzhiyu-c/anheyu-atelier/pkg/idgen"
	"github.com/anzhiyu-c/anheyu-atelier/pkg/service/contact"
	"github.com/anzhiyu-c/anheyu-atelier/pkg/service/utility"
)

type memoryContactRepo struct {
	mu        sync.Mutex
	nextID    uint
	rows      map[uint]*model.ContactSubmission
	createErr error
}

func newMemoryContactRepo() *memoryContactRepo {
	return &memoryContactRepo{rows: make(map[uint]*model.ContactSubmission)}
}

func (r *memoryContactRepo) Create(_ context.Context, submission *model.ContactSubmission) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	r.nextID++
	submission.ID = r.nextID
	submission.CreatedAt = time.Now().Add(time.Duration(r.nextID) * time.Second)
	submission.UpdatedAt = submission.CreatedAt
	row := *submission
	r.rows[row.ID] = &row
	return nil
}

func (r *memoryContactRepo) FindByID(_ context.Context, id uint) (*model.ContactSubmission, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[id]
	if !ok {
		return nil, constant.ErrNotFound
	}
	copied := *row
	return &copied, nil
}

func (r *memoryContactRepo) List(_ context.Context, _ repository.PageQuery) ([]*model.ContactSubmission, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	items := make([]*model.ContactSubmission, 0, len(r.rows))
	for _, row := range r.rows {
		copied := *row
		items = append(items, &copied)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].CreatedAt.After(items[j].CreatedAt) })
	return items, int64(len(items)), nil
}

func (r *memoryContactRepo) Update(_ context.Context, id uint, update repository.ContactSubmissionUpdate) (*model.ContactSubmission, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[id]
	if !ok {
		return nil, constant.ErrNotFound
	}
	if update.Status != nil {
		row.Status = *update.Status
	}
	if update.SetNotes {
		row.Notes = update.Notes
	}
	copied := *row
	return &copied, nil
}

type capturingBus struct {
	mu     sync.Mutex
	events []event.Event
}

func (b *capturingBus) Publish(topic event.Topic, payload interface{}) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, event.Event{Topic: topic, Payload: payload})
}

func validRequest(email string) model.CreateContactSubmissionRequest {
	return model.CreateContactSubmissionRequest{
		Name:      "  Ana Popescu ",
		Email:     email,
		Regarding: "Comision",
		Message:   "Aș dori un tablou abstract pentru sufragerie.",
	}
}

func setup(t *testing.T) (contact.Service, *memoryContactRepo, *capturingBus) {
	t.Helper()
	require.NoError(t, idgen.InitSqidsEncoder())
	repo := newMemoryContactRepo()
	bus := &capturingBus{}
	cache := utility.NewMemoryCacheService()
	return contact.NewService(repo, cache, bus), repo, bus
}

func TestSubmit(t *testing.T) {
	svc, repo, bus := setup(t)
	ctx := context.Background()

	req := validRequest(" Ana@Example.COM ")
	req.Phone = " +40 721 000 000 "
	req.Message = "<b>Bună ziua</b>, aș dori un tablou."

	submission, err := svc.Submit(ctx, req)
	require.NoError(t, err)

	assert.NotEmpty(t, submission.PublicID)
	assert.Equal(t, "Ana Popescu", submission.Name)
	assert.Equal(t, "ana@example.com", submission.Email)
	require.NotNil(t, submission.Phone)
	assert.Equal(t, "+40 721 000 000", *submission.Phone)
	assert.Equal(t, "Bună ziua, aș dori un tablou.", submission.Message)
	assert.Equal(t, model.ContactStatusUnread, submission.Status)
	assert.Len(t, repo.rows, 1)

	require.Len(t, bus.events, 1)
	assert.Equal(t, event.ContactSubmitted, bus.events[0].Topic)
}

func TestSubmitRejectsEmptyAfterCleaning(t *testing.T) {
	svc, repo, _ := setup(t)

	tests := []struct {
		name   string
		mutate func(*model.CreateContactSubmissionRequest)
	}{
		{name: "名字只有标签", mutate: func(r *model.CreateContactSubmissionRequest) { r.Name = "<i></i>" }},
		{name: "主题只有空白", mutate: func(r *model.CreateContactSubmissionRequest) { r.Regarding = "   " }},
		{name: "正文过短", mutate: func(r *model.CreateContactSubmissionRequest) { r.Message = "<p>Salut</p>" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRequest("ana@example.com")
			tt.mutate(&req)
			_, err := svc.Submit(context.Background(), req)
			assert.ErrorIs(t, err, constant.ErrInvalidInput)
		})
	}
	assert.Empty(t, repo.rows)
}

func TestSubmitEmailQuota(t *testing.T) {
	svc, _, _ := setup(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := svc.Submit(ctx, validRequest("ana@example.com"))
		require.NoError(t, err)
	}
	_, err := svc.Submit(ctx, validRequest("ANA@example.com"))
	assert.ErrorIs(t, err, contact.ErrTooManySubmissions)

	// 其他邮箱不受影响
	_, err = svc.Submit(ctx, validRequest("mihai@example.com"))
	assert.NoError(t, err)
}

func TestSubmitWithoutCache(t *testing.T) {
	require.NoError(t, idgen.InitSqidsEncoder())
	svc := contact.NewService(newMemoryContactRepo(), nil, nil)
	for i := 0; i < 8; i++ {
		_, err := svc.Submit(context.Background(), validRequest("ana@example.com"))
		require.NoError(t, err)
	}
}

func TestSubmitRepositoryError(t *testing.T) {
	svc, repo, bus := setup(t)
	repo.createErr = errors.New("disk full")

	_, err := svc.Submit(context.Background(), validRequest("ana@example.com"))
	assert.Error(t, err)
	assert.NotErrorIs(t, err, constant.ErrInvalidInput)
	assert.Empty(t, bus.events)
}

func TestGetAndUpdate(t *testing.T) {
	svc, _, _ := setup(t)
	ctx := context.Background()

	created, err := svc.Submit(ctx, validRequest("ana@example.com"))
	require.NoError(t, err)

	got, err := svc.Get(ctx, created.PublicID)
	require.NoError(t, err)
	assert.Equal(t, created.PublicID, got.PublicID)
	assert.Equal(t, created.Message, got.Message)

	status := model.ContactStatusReplied
	notes := "  Am răspuns pe email.  "
	updated, err := svc.Update(ctx, created.PublicID, model.UpdateContactSubmissionRequest{Status: &status, Notes: &notes})
	require.NoError(t, err)
	assert.Equal(t, model.ContactStatusReplied, updated.Status)
	require.NotNil(t, updated.Notes)
	assert.Equal(t, "Am răspuns pe email.", *updated.Notes)

	t.Run("空白备注会清空", func(t *testing.T) {
		blank := "   "
		cleared, err := svc.Update(ctx, created.PublicID, model.UpdateContactSubmissionRequest{Notes: &blank})
		require.NoError(t, err)
		assert.Nil(t, cleared.Notes)
		assert.Equal(t, model.ContactStatusReplied, cleared.Status)
	})
}

func TestGetUnknownPublicID(t *testing.T) {
	svc, _, _ := setup(t)
	ctx := context.Background()

	otherType, err := idgen.GeneratePublicID(1, 99)
	require.NoError(t, err)
	missing, err := idgen.GeneratePublicID(404, idgen.EntityTypeContactSubmission)
	require.NoError(t, err)

	tests := []struct {
		name     string
		publicID string
	}{
		{name: "无法解码", publicID: "!!"},
		{name: "实体类型不符", publicID: otherType},
		{name: "记录不存在", publicID: missing},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Get(ctx, tt.publicID)
			assert.ErrorIs(t, err, constant.ErrNotFound)
		})
	}
}

func TestList(t *testing.T) {
	svc, _, _ := setup(t)
	ctx := context.Background()

	first, err := svc.Submit(ctx, validRequest("a@example.com"))
	require.NoError(t, err)
	second, err := svc.Submit(ctx, validRequest("b@example.com"))
	require.NoError(t, err)

	result, err := svc.List(ctx, repository.PageQuery{})
	require.NoError(t, err)
	assert.EqualValues(t, 2, result.Total)
	assert.Equal(t, 1, result.Page)
	assert.Equal(t, 2, result.PageSize)
	require.Len(t, result.Items, 2)
	assert.Equal(t, second.PublicID, result.Items[0].PublicID)
	assert.Equal(t, first.PublicID, result.Items[1].PublicID)
}
