package cms

import (
	"context"
	"encoding/json"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anzhiyu-c/anheyu-atelier/internal/contentdef"
	"github.com/anzhiyu-c/anheyu-atelier/internal/pkg/event"
	"github.com/anzhiyu-c/anheyu-atelier/pkg/domain/model"
	"github.com/anzhiyu-c/anheyu-atelier/pkg/schema"
)

func newReadyStore(t *testing.T, repo *fakeRepository, opts ...Option) *Store {
	t.Helper()
	opts = append([]Option{WithInitialData(contentdef.Default())}, opts...)
	store := NewStore(repo, opts...)
	require.Equal(t, StatusReady, store.Status())
	return store
}

func TestStoreLoad(t *testing.T) {
	repo := &fakeRepository{}
	store := NewStore(repo)
	assert.Equal(t, StatusLoading, store.Status())
	assert.Nil(t, store.Data())

	require.NoError(t, store.Load(context.Background()))
	assert.Equal(t, StatusReady, store.Status())
	assert.Equal(t, contentdef.Default(), store.Data())

	// 刚加载的文档不会回写
	store.Wait()
	assert.Zero(t, repo.savedCount())
}

func TestStoreLoadFailure(t *testing.T) {
	repo := &fakeRepository{loadErr: errBackend}
	store := NewStore(repo)

	err := store.Load(context.Background())
	assert.ErrorIs(t, err, errBackend)

	st := store.State()
	assert.Equal(t, StatusError, st.Status)
	assert.Contains(t, st.Error, errBackend.Error())
}

func TestStoreInitialDataSkipsLoad(t *testing.T) {
	repo := &fakeRepository{loadErr: errBackend}
	store := newReadyStore(t, repo)

	require.NoError(t, store.Load(context.Background()))
	assert.Equal(t, StatusReady, store.Status())
}

func TestStoreUpdateCommitsAndSaves(t *testing.T) {
	repo := &fakeRepository{}
	bus := &recordingBus{}
	store := newReadyStore(t, repo, WithEventBus(bus))
	fixed := time.Date(2025, 9, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return fixed }

	err := store.UpdateHomepage(func(h model.HomepageContent) model.HomepageContent {
		h.Hero.Title = "Lumină nouă"
		return h
	})
	require.NoError(t, err)

	// 修改同步生效
	assert.Equal(t, "Lumină nouă", store.Data().Homepage.Hero.Title)

	store.Wait()
	require.Equal(t, 1, repo.savedCount())
	assert.Equal(t, "Lumină nouă", repo.lastSaved().Homepage.Hero.Title)

	st := store.State()
	require.NotNil(t, st.LastSavedAt)
	assert.Equal(t, fixed, *st.LastSavedAt)
	assert.Empty(t, st.SaveError)
	assert.Zero(t, st.PendingSaves)
	assert.ElementsMatch(t, []event.Topic{event.CmsUpdated, event.CmsSaved}, bus.topics())
}

func TestStoreRejectionWithoutMutation(t *testing.T) {
	repo := &fakeRepository{}
	store := newReadyStore(t, repo)
	before, err := json.Marshal(store.Data())
	require.NoError(t, err)

	err = store.UpdateData(func(doc *model.CmsData) *model.CmsData {
		doc.ArtLibrary.Artworks[0].Status = "sold"
		doc.Homepage.Hero.Title = "Nu ar trebui salvat"
		return doc
	})
	_, isValidation := schema.AsValidationError(err)
	require.True(t, isValidation)

	after, err := json.Marshal(store.Data())
	require.NoError(t, err)
	assert.Equal(t, string(before), string(after))

	st := store.State()
	assert.Equal(t, StatusError, st.Status)
	assert.NotEmpty(t, st.Error)
	require.NotEmpty(t, st.Issues)
	assert.Equal(t, "artLibrary.artworks[0].status", st.Issues[0].Path)

	store.Wait()
	assert.Zero(t, repo.savedCount())
}

func TestStoreRejectsUpdatesInErrorState(t *testing.T) {
	store := newReadyStore(t, &fakeRepository{})
	_ = store.UpdateData(func(doc *model.CmsData) *model.CmsData {
		doc.ArtLibrary.Artworks[0].Status = "sold"
		return doc
	})
	require.Equal(t, StatusError, store.Status())

	called := false
	err := store.UpdateArtLibrary(func(lib model.ArtLibrary) model.ArtLibrary {
		called = true
		return lib
	})
	assert.ErrorIs(t, err, ErrStoreUnavailable)
	assert.False(t, called)
	assert.Equal(t, StatusError, store.Status())
}

func TestStoreRejectsUpdatesWhileLoading(t *testing.T) {
	store := NewStore(&fakeRepository{})
	err := store.UpdateSiteIdentity(func(s model.SiteIdentity) model.SiteIdentity { return s })
	assert.ErrorIs(t, err, ErrStoreLoading)
	assert.Equal(t, StatusLoading, store.Status())
}

func TestStoreReplaceRecoversFromError(t *testing.T) {
	repo := &fakeRepository{}
	store := newReadyStore(t, repo)
	_ = store.UpdateData(func(doc *model.CmsData) *model.CmsData {
		doc.ArtLibrary.Artworks[0].Status = "sold"
		return doc
	})
	require.Equal(t, StatusError, store.Status())

	next := contentdef.Default()
	next.Homepage.Hero.Title = "Import"
	require.NoError(t, store.ReplaceData(next))

	st := store.State()
	assert.Equal(t, StatusReady, st.Status)
	assert.Empty(t, st.Error)
	assert.Empty(t, st.Issues)
	assert.Equal(t, "Import", st.Data.Homepage.Hero.Title)

	// 调用方之后修改自己的副本不影响存储
	next.Homepage.Hero.Title = "Altceva"
	assert.Equal(t, "Import", store.Data().Homepage.Hero.Title)

	store.Wait()
	assert.Equal(t, 1, repo.savedCount())
}

func TestStoreImportJSON(t *testing.T) {
	store := NewStore(&fakeRepository{})

	t.Run("无效 JSON", func(t *testing.T) {
		err := store.ImportJSON([]byte(`{"version":`))
		_, ok := schema.AsValidationError(err)
		assert.True(t, ok)
		assert.Equal(t, StatusError, store.Status())
	})

	t.Run("有效文档", func(t *testing.T) {
		require.NoError(t, store.ImportJSON(contentdef.Raw()))
		assert.Equal(t, StatusReady, store.Status())
		assert.Equal(t, contentdef.Default(), store.Data())
	})
	store.Wait()
}

func TestStoreUpdateSection(t *testing.T) {
	store := newReadyStore(t, &fakeRepository{})

	t.Run("缺省字段补齐默认值", func(t *testing.T) {
		raw := json.RawMessage(`[{
			"id": "expo-new",
			"title": "Expoziție nouă",
			"slug": "expozitie-noua",
			"venue": "Galeria Noua",
			"location": "Cluj",
			"startDate": "2026-01-10",
			"endDate": "2026-02-10",
			"description": "Descriere"
		}]`)
		require.NoError(t, store.UpdateSection(SectionExpositions, raw))

		expos := store.Data().Expositions
		require.Len(t, expos, 1)
		assert.Equal(t, model.ExpositionStatusUpcoming, expos[0].Status)
		assert.NotNil(t, expos[0].Links)
	})

	t.Run("未知分区", func(t *testing.T) {
		err := store.UpdateSection(Section("footer"), json.RawMessage(`{}`))
		assert.ErrorIs(t, err, ErrUnknownSection)
		assert.Equal(t, StatusReady, store.Status())
	})

	t.Run("分区内容无效", func(t *testing.T) {
		err := store.UpdateSection(SectionHomepage, json.RawMessage(`{"hero": {}}`))
		_, ok := schema.AsValidationError(err)
		assert.True(t, ok)
		assert.Equal(t, StatusError, store.Status())
		assert.Len(t, store.Data().Expositions, 1)
	})
	store.Wait()
}

func TestStoreSaveFailureKeepsLocalEdit(t *testing.T) {
	repo := &fakeRepository{saveErr: errBackend}
	bus := &recordingBus{}
	store := newReadyStore(t, repo, WithEventBus(bus))

	require.NoError(t, store.UpdateHomepage(func(h model.HomepageContent) model.HomepageContent {
		h.About.Headline = "Despre mine"
		return h
	}))
	store.Wait()

	st := store.State()
	assert.Equal(t, StatusReady, st.Status)
	assert.Equal(t, "Despre mine", st.Data.Homepage.About.Headline)
	assert.Contains(t, st.SaveError, errBackend.Error())
	assert.Nil(t, st.LastSavedAt)
	assert.Contains(t, bus.topics(), event.CmsSaveFailed)

	// 下一次成功的保存会清除错误
	repo.mu.Lock()
	repo.saveErr = nil
	repo.mu.Unlock()
	require.NoError(t, store.UpdateHomepage(func(h model.HomepageContent) model.HomepageContent { return h }))
	store.Wait()

	st = store.State()
	assert.Empty(t, st.SaveError)
	assert.NotNil(t, st.LastSavedAt)
}

func TestStoreReset(t *testing.T) {
	t.Run("从错误状态恢复", func(t *testing.T) {
		bus := &recordingBus{}
		store := newReadyStore(t, &fakeRepository{}, WithEventBus(bus))
		_ = store.UpdateData(func(doc *model.CmsData) *model.CmsData {
			doc.ArtLibrary.Artworks[0].Status = "sold"
			return doc
		})
		require.Equal(t, StatusError, store.Status())

		require.NoError(t, store.Reset(context.Background()))
		st := store.State()
		assert.Equal(t, StatusReady, st.Status)
		assert.Equal(t, contentdef.Default(), st.Data)
		assert.NotNil(t, st.LastSavedAt)
		assert.Contains(t, bus.topics(), event.CmsReset)
	})

	t.Run("持久化失败时仍提交默认文档", func(t *testing.T) {
		store := newReadyStore(t, &fakeRepository{resetErr: errBackend})
		require.NoError(t, store.UpdateHomepage(func(h model.HomepageContent) model.HomepageContent {
			h.Hero.Title = "Temporar"
			return h
		}))
		store.Wait()

		require.NoError(t, store.Reset(context.Background()))
		st := store.State()
		assert.Equal(t, StatusReady, st.Status)
		assert.Equal(t, contentdef.Default(), st.Data)
		assert.Contains(t, st.SaveError, errBackend.Error())
	})
}

func TestStoreStaleLoadIsDiscarded(t *testing.T) {
	stale := contentdef.Default()
	stale.Homepage.Hero.Title = "Vechi"
	repo := &fakeRepository{loadDoc: stale, loadGate: make(chan struct{})}
	store := NewStore(repo)

	done := make(chan error, 1)
	go func() { done <- store.Load(context.Background()) }()

	// 加载过程中整体替换文档
	fresh := contentdef.Default()
	fresh.Homepage.Hero.Title = "Nou"
	require.NoError(t, store.ReplaceData(fresh))

	close(repo.loadGate)
	require.NoError(t, <-done)
	assert.Equal(t, "Nou", store.Data().Homepage.Hero.Title)
	store.Wait()
}

func TestStoreConcurrentUpdates(t *testing.T) {
	repo := &fakeRepository{}
	store := newReadyStore(t, repo)

	const writers = 20
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = store.UpdateArtLibrary(func(lib model.ArtLibrary) model.ArtLibrary {
				lib.Artworks = append(lib.Artworks, NewArtwork("Serie", lib.Artworks))
				return lib
			})
		}()
	}
	wg.Wait()
	store.Wait()

	st := store.State()
	assert.Equal(t, StatusReady, st.Status)
	assert.Len(t, st.Data.ArtLibrary.Artworks, 3+writers)
	assert.Equal(t, uint64(writers), st.Revision)
	assert.Zero(t, st.PendingSaves)

	// 被更新版本取代的保存会被跳过，最后写入的一定是最新文档
	assert.GreaterOrEqual(t, repo.savedCount(), 1)
	assert.LessOrEqual(t, repo.savedCount(), writers)
	assert.Equal(t, st.Data, repo.lastSaved())
}

func TestStoreResetWinsOverSlowSave(t *testing.T) {
	snaps := newMemorySnapshots()
	snaps.upsertDelay = 50 * time.Millisecond
	repo := NewContentRepository(snaps, testSiteID)
	store := NewStore(repo, WithInitialData(contentdef.Default()))

	require.NoError(t, store.UpdateHomepage(func(h model.HomepageContent) model.HomepageContent {
		h.Hero.Title = "Editat"
		return h
	}))
	require.NoError(t, store.Reset(context.Background()))
	store.Wait()

	st := store.State()
	assert.Equal(t, StatusReady, st.Status)
	assert.Empty(t, st.SaveError)
	assert.Equal(t, contentdef.Default(), st.Data)

	persisted, err := repo.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, contentdef.Default(), persisted)
}

func TestStoreEditAfterResetIsPersisted(t *testing.T) {
	snaps := newMemorySnapshots()
	snaps.upsertDelay = 20 * time.Millisecond
	repo := NewContentRepository(snaps, testSiteID)
	store := NewStore(repo, WithInitialData(contentdef.Default()))

	require.NoError(t, store.UpdateHomepage(func(h model.HomepageContent) model.HomepageContent {
		h.Hero.Title = "Înainte"
		return h
	}))
	require.NoError(t, store.Reset(context.Background()))
	require.NoError(t, store.UpdateHomepage(func(h model.HomepageContent) model.HomepageContent {
		h.Hero.Title = "După"
		return h
	}))
	store.Wait()

	persisted, err := repo.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "După", persisted.Homepage.Hero.Title)
	assert.Equal(t, store.Data(), persisted)
}

func TestStoreReplaceRejectsUnencodableDocument(t *testing.T) {
	repo := &fakeRepository{}
	store := newReadyStore(t, repo)

	next := contentdef.Default()
	next.ArtLibrary.Artworks[0].Dimensions.Width = math.NaN()
	err := store.ReplaceData(next)
	_, ok := schema.AsValidationError(err)
	require.True(t, ok, "期望校验错误，实际为 %v", err)

	// 锁已释放，存储仍可使用
	assert.Equal(t, StatusError, store.Status())
	assert.Equal(t, contentdef.Default(), store.Data())
	require.NoError(t, store.ReplaceData(contentdef.Default()))
	assert.Equal(t, StatusReady, store.Status())
	store.Wait()
}

func TestStoreUpdaterPanicReleasesLock(t *testing.T) {
	store := newReadyStore(t, &fakeRepository{})

	err := store.UpdateArtLibrary(func(lib model.ArtLibrary) model.ArtLibrary {
		_ = lib.Artworks[len(lib.Artworks)+1]
		return lib
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "panic")

	st := store.State()
	assert.Equal(t, StatusError, st.Status)
	assert.Equal(t, contentdef.Default(), st.Data)
	require.NoError(t, store.Reset(context.Background()))
	assert.Equal(t, StatusReady, store.Status())
}

func TestStoreStateIsSnapshot(t *testing.T) {
	store := newReadyStore(t, &fakeRepository{})
	st := store.State()
	st.Data.Homepage.Hero.Title = "Modificat din afară"
	assert.NotEqual(t, "Modificat din afară", store.Data().Homepage.Hero.Title)
}

func TestStoreEditArtwork(t *testing.T) {
	repo := &fakeRepository{}
	store := newReadyStore(t, repo)
	target := store.Data().ArtLibrary.Artworks[1].ID

	t.Run("修改存在的作品", func(t *testing.T) {
		require.NoError(t, store.EditArtwork(target, func(lib model.ArtLibrary) model.ArtLibrary {
			lib.Artworks, _ = ApplyArtworkPatch(lib.Artworks, target, ArtworkPatch{Status: strPtr(model.ArtworkStatusArchived)})
			return lib
		}))
		assert.Equal(t, model.ArtworkStatusArchived, store.Data().ArtLibrary.Artworks[1].Status)
	})

	t.Run("作品已被删除", func(t *testing.T) {
		require.NoError(t, store.UpdateArtLibrary(func(lib model.ArtLibrary) model.ArtLibrary {
			lib.Artworks, _ = RemoveArtwork(lib.Artworks, target)
			return lib
		}))
		revision := store.State().Revision

		called := false
		err := store.EditArtwork(target, func(lib model.ArtLibrary) model.ArtLibrary {
			called = true
			return lib
		})
		assert.ErrorIs(t, err, ErrArtworkNotFound)
		assert.False(t, called)

		st := store.State()
		assert.Equal(t, StatusReady, st.Status)
		assert.Empty(t, st.Error)
		assert.Equal(t, revision, st.Revision)
	})
	store.Wait()
}
