package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"

	"github.com/anzhiyu-c/anheyu-atelier/internal/infra/persistence/database"
	"github.com/anzhiyu-c/anheyu-atelier/pkg/constant"
	"github.com/anzhiyu-c/anheyu-atelier/pkg/domain/model"
	"github.com/anzhiyu-c/anheyu-atelier/pkg/domain/repository"
)

// sqlSnapshotRepository 是 SnapshotRepository 接口的 SQL 实现，
// 语句由 ent 的方言构建器生成，因此同一份代码适用于 MySQL、PostgreSQL 与 SQLite
type sqlSnapshotRepository struct {
	db      *sql.DB
	dialect string
	now     func() time.Time
}

// NewSnapshotRepository 是 sqlSnapshotRepository 的构造函数
func NewSnapshotRepository(db *sql.DB, sqlDialect string) repository.SnapshotRepository {
	return &sqlSnapshotRepository{
		db:      db,
		dialect: sqlDialect,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// FindBySiteID 实现按站点 ID 查找快照的接口
func (r *sqlSnapshotRepository) FindBySiteID(ctx context.Context, siteID string) (*model.Snapshot, error) {
	b := entsql.Dialect(r.dialect)
	query, args := b.Select("site_id", "payload", "created_at", "updated_at").
		From(b.Table(database.TableCmsSnapshots)).
		Where(entsql.EQ("site_id", siteID)).
		Limit(1).
		Query()

	var (
		snap               model.Snapshot
		createdAt, updated dbTime
	)
	err := r.db.QueryRowContext(ctx, query, args...).Scan(&snap.SiteID, &snap.Payload, &createdAt, &updated)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, constant.ErrNotFound
		}
		return nil, fmt.Errorf("查询站点 '%s' 的快照失败: %w", siteID, err)
	}
	snap.CreatedAt = createdAt.Time
	snap.UpdatedAt = updated.Time
	return &snap, nil
}

// Upsert 以 site_id 为冲突目标写入快照，已存在时只更新 payload 与 updated_at
func (r *sqlSnapshotRepository) Upsert(ctx context.Context, siteID string, payload []byte) error {
	now := r.now()
	query, args := entsql.Dialect(r.dialect).
		Insert(database.TableCmsSnapshots).
		Columns("site_id", "payload", "created_at", "updated_at").
		// payload 以字符串写入，PostgreSQL 的 jsonb 列不接受 bytea 参数
		Values(siteID, string(payload), now, now).
		OnConflict(
			entsql.ConflictColumns("site_id"),
			entsql.ResolveWith(func(u *entsql.UpdateSet) {
				u.SetExcluded("payload")
				u.SetExcluded("updated_at")
			}),
		).
		Query()

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("写入站点 '%s' 的快照失败: %w", siteID, err)
	}
	return nil
}
