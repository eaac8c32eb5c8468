package cms

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/anzhiyu-c/anheyu-atelier/internal/contentdef"
	"github.com/anzhiyu-c/anheyu-atelier/internal/pkg/event"
	"github.com/anzhiyu-c/anheyu-atelier/pkg/constant"
	"github.com/anzhiyu-c/anheyu-atelier/pkg/domain/model"
)

var errBackend = errors.New("backend unavailable")

// memorySnapshots 是测试用的内存快照仓储
type memorySnapshots struct {
	mu        sync.Mutex
	rows      map[string][]byte
	findErr   error
	upsertErr error
	finds     int
	upserts   int
	// upsertDelay 模拟慢速存储，写入在延迟结束后才落地
	upsertDelay time.Duration
}

func newMemorySnapshots() *memorySnapshots {
	return &memorySnapshots{rows: make(map[string][]byte)}
}

func (m *memorySnapshots) FindBySiteID(ctx context.Context, siteID string) (*model.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.finds++
	if m.findErr != nil {
		return nil, m.findErr
	}
	payload, ok := m.rows[siteID]
	if !ok {
		return nil, constant.ErrNotFound
	}
	return &model.Snapshot{SiteID: siteID, Payload: append([]byte(nil), payload...)}, nil
}

func (m *memorySnapshots) Upsert(ctx context.Context, siteID string, payload []byte) error {
	m.mu.Lock()
	delay := m.upsertDelay
	m.mu.Unlock()
	if delay > 0 {
		time.Sleep(delay)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.upserts++
	if m.upsertErr != nil {
		return m.upsertErr
	}
	m.rows[siteID] = append([]byte(nil), payload...)
	return nil
}

func (m *memorySnapshots) payload(siteID string) []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rows[siteID]
}

// fakeRepository 直接控制 ContentRepository 的返回值
type fakeRepository struct {
	mu       sync.Mutex
	loadDoc  *model.CmsData
	loadErr  error
	saveErr  error
	resetErr error
	saved    []*model.CmsData
	// loadGate 非 nil 时 Load 会阻塞到通道关闭
	loadGate chan struct{}
}

func (f *fakeRepository) Load(ctx context.Context) (*model.CmsData, error) {
	if f.loadGate != nil {
		<-f.loadGate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	if f.loadDoc != nil {
		return f.loadDoc.Clone(), nil
	}
	return contentdef.Default(), nil
}

func (f *fakeRepository) Save(ctx context.Context, doc *model.CmsData) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saved = append(f.saved, doc.Clone())
	return nil
}

func (f *fakeRepository) Reset(ctx context.Context) (*model.CmsData, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return contentdef.Default(), f.resetErr
}

func (f *fakeRepository) savedCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.saved)
}

func (f *fakeRepository) lastSaved() *model.CmsData {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.saved) == 0 {
		return nil
	}
	return f.saved[len(f.saved)-1]
}

// recordingBus 同步记录发布的事件
type recordingBus struct {
	mu     sync.Mutex
	events []event.Event
}

func (b *recordingBus) Publish(topic event.Topic, payload interface{}) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, event.Event{Topic: topic, Payload: payload})
}

func (b *recordingBus) topics() []event.Topic {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]event.Topic, 0, len(b.events))
	for _, e := range b.events {
		out = append(out, e.Topic)
	}
	return out
}
