package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"

	"github.com/anzhiyu-c/anheyu-atelier/internal/infra/persistence/database"
	"github.com/anzhiyu-c/anheyu-atelier/pkg/constant"
	"github.com/anzhiyu-c/anheyu-atelier/pkg/domain/model"
	"github.com/anzhiyu-c/anheyu-atelier/pkg/domain/repository"
)

var contactColumns = []string{
	"id", "name", "email", "phone", "regarding", "message", "status", "notes", "created_at", "updated_at",
}

type sqlContactSubmissionRepository struct {
	db      *sql.DB
	dialect string
	now     func() time.Time
}

// NewContactSubmissionRepository 是 sqlContactSubmissionRepository 的构造函数
func NewContactSubmissionRepository(db *sql.DB, sqlDialect string) repository.ContactSubmissionRepository {
	return &sqlContactSubmissionRepository{
		db:      db,
		dialect: sqlDialect,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Create 写入一条留言，并回填自增 ID 与时间戳
func (r *sqlContactSubmissionRepository) Create(ctx context.Context, s *model.ContactSubmission) error {
	now := r.now()
	insert := entsql.Dialect(r.dialect).
		Insert(database.TableContactSubmissions).
		Columns("name", "email", "phone", "regarding", "message", "status", "notes", "created_at", "updated_at").
		Values(s.Name, s.Email, s.Phone, s.Regarding, s.Message, s.Status, s.Notes, now, now)

	// PostgreSQL 没有 LastInsertId，需要 RETURNING
	if r.dialect == dialect.Postgres {
		query, args := insert.Returning("id").Query()
		var id int64
		if err := r.db.QueryRowContext(ctx, query, args...).Scan(&id); err != nil {
			return fmt.Errorf("创建留言失败: %w", err)
		}
		s.ID = uint(id)
	} else {
		query, args := insert.Query()
		res, err := r.db.ExecContext(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("创建留言失败: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("获取留言 ID 失败: %w", err)
		}
		s.ID = uint(id)
	}

	s.CreatedAt = now
	s.UpdatedAt = now
	return nil
}

func (r *sqlContactSubmissionRepository) FindByID(ctx context.Context, id uint) (*model.ContactSubmission, error) {
	b := entsql.Dialect(r.dialect)
	query, args := b.Select(contactColumns...).
		From(b.Table(database.TableContactSubmissions)).
		Where(entsql.EQ("id", id)).
		Limit(1).
		Query()

	s, err := scanSubmission(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, constant.ErrNotFound
		}
		return nil, fmt.Errorf("查询留言 %d 失败: %w", id, err)
	}
	return s, nil
}

// List 分页返回留言，按创建时间倒序。自增 ID 与创建顺序一致，
// SQLite 的文本时间列按字典序排序并不可靠，因此直接按 ID 排序
func (r *sqlContactSubmissionRepository) List(ctx context.Context, q repository.PageQuery) ([]*model.ContactSubmission, int64, error) {
	page, pageSize := normalizePage(q)
	b := entsql.Dialect(r.dialect)

	countQuery, countArgs := b.Select(entsql.Count("*")).
		From(b.Table(database.TableContactSubmissions)).
		Query()
	var total int64
	if err := r.db.QueryRowContext(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("统计留言数量失败: %w", err)
	}

	query, args := b.Select(contactColumns...).
		From(b.Table(database.TableContactSubmissions)).
		OrderBy(entsql.Desc("id")).
		Limit(pageSize).
		Offset((page - 1) * pageSize).
		Query()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("查询留言列表失败: %w", err)
	}
	defer rows.Close()

	items := make([]*model.ContactSubmission, 0, pageSize)
	for rows.Next() {
		s, err := scanSubmission(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("读取留言失败: %w", err)
		}
		items = append(items, s)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("遍历留言列表失败: %w", err)
	}
	return items, total, nil
}

// Update 部分更新留言，返回更新后的记录
func (r *sqlContactSubmissionRepository) Update(ctx context.Context, id uint, u repository.ContactSubmissionUpdate) (*model.ContactSubmission, error) {
	if _, err := r.FindByID(ctx, id); err != nil {
		return nil, err
	}

	update := entsql.Dialect(r.dialect).
		Update(database.TableContactSubmissions).
		Set("updated_at", r.now())
	if u.Status != nil {
		update.Set("status", *u.Status)
	}
	if u.SetNotes {
		update.Set("notes", u.Notes)
	}
	query, args := update.Where(entsql.EQ("id", id)).Query()

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return nil, fmt.Errorf("更新留言 %d 失败: %w", id, err)
	}
	return r.FindByID(ctx, id)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSubmission(row rowScanner) (*model.ContactSubmission, error) {
	var (
		s                  model.ContactSubmission
		id                 int64
		phone, notes       sql.NullString
		createdAt, updated dbTime
	)
	if err := row.Scan(&id, &s.Name, &s.Email, &phone, &s.Regarding, &s.Message, &s.Status, &notes, &createdAt, &updated); err != nil {
		return nil, err
	}
	s.ID = uint(id)
	if phone.Valid {
		s.Phone = &phone.String
	}
	if notes.Valid {
		s.Notes = &notes.String
	}
	s.CreatedAt = createdAt.Time
	s.UpdatedAt = updated.Time
	return &s, nil
}

func normalizePage(q repository.PageQuery) (page, pageSize int) {
	page, pageSize = q.Page, q.PageSize
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}
	return page, pageSize
}
