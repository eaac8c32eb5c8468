/*
 * @Description: 数据库迁移服务（按方言建表）
 * @Author: 安知鱼
 * @Date: 2025-09-09
 */
package database

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"entgo.io/ent/dialect"
)

// 表名
const (
	TableCmsSnapshots       = "cms_snapshots"
	TableContactSubmissions = "contact_submissions"
)

// tableDDL 按方言给出建表语句
var tableDDL = map[string]map[string]string{
	TableCmsSnapshots: {
		dialect.MySQL: `CREATE TABLE IF NOT EXISTS cms_snapshots (
			site_id VARCHAR(191) NOT NULL PRIMARY KEY,
			payload LONGTEXT NOT NULL,
			created_at DATETIME(3) NOT NULL,
			updated_at DATETIME(3) NOT NULL
		) DEFAULT CHARSET=utf8mb4`,
		dialect.Postgres: `CREATE TABLE IF NOT EXISTS cms_snapshots (
			site_id VARCHAR(191) PRIMARY KEY,
			payload JSONB NOT NULL,
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		)`,
		dialect.SQLite: `CREATE TABLE IF NOT EXISTS cms_snapshots (
			site_id TEXT PRIMARY KEY,
			payload TEXT NOT NULL,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		)`,
	},
	TableContactSubmissions: {
		dialect.MySQL: `CREATE TABLE IF NOT EXISTS contact_submissions (
			id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			email VARCHAR(255) NOT NULL,
			phone VARCHAR(50) NULL,
			regarding VARCHAR(255) NOT NULL,
			message TEXT NOT NULL,
			status VARCHAR(20) NOT NULL DEFAULT 'unread',
			notes TEXT NULL,
			created_at DATETIME(3) NOT NULL,
			updated_at DATETIME(3) NOT NULL,
			INDEX idx_contact_submissions_created_at (created_at)
		) DEFAULT CHARSET=utf8mb4`,
		dialect.Postgres: `CREATE TABLE IF NOT EXISTS contact_submissions (
			id BIGSERIAL PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			email VARCHAR(255) NOT NULL,
			phone VARCHAR(50),
			regarding VARCHAR(255) NOT NULL,
			message TEXT NOT NULL,
			status VARCHAR(20) NOT NULL DEFAULT 'unread',
			notes TEXT,
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		)`,
		dialect.SQLite: `CREATE TABLE IF NOT EXISTS contact_submissions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			email TEXT NOT NULL,
			phone TEXT,
			regarding TEXT NOT NULL,
			message TEXT NOT NULL,
			status TEXT NOT NULL DEFAULT 'unread',
			notes TEXT,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		)`,
	},
}

// MigrationService 数据库迁移服务
type MigrationService struct {
	db      *sql.DB
	dialect string
}

// NewMigrationService 创建迁移服务
func NewMigrationService(db *sql.DB, sqlDialect string) *MigrationService {
	return &MigrationService{
		db:      db,
		dialect: sqlDialect,
	}
}

// RunMigrations 执行所有迁移
func (m *MigrationService) RunMigrations(ctx context.Context) error {
	log.Println("📋 开始执行数据库迁移...")

	for _, table := range []string{TableCmsSnapshots, TableContactSubmissions} {
		if err := m.ensureTable(ctx, table); err != nil {
			return fmt.Errorf("%s 表迁移失败: %w", table, err)
		}
	}

	// MySQL 的索引已经写在建表语句中
	if m.dialect != dialect.MySQL {
		if _, err := m.db.ExecContext(ctx,
			`CREATE INDEX IF NOT EXISTS idx_contact_submissions_created_at ON contact_submissions (created_at)`,
		); err != nil {
			return fmt.Errorf("创建 contact_submissions 索引失败: %w", err)
		}
	}

	log.Println("✅ 数据库迁移完成")
	return nil
}

// RetryUntilReady 每隔 interval 重试一次迁移，成功后调用 onReady。ctx 取消时直接返回。
func (m *MigrationService) RetryUntilReady(ctx context.Context, interval time.Duration, onReady func(context.Context)) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for attempt := 1; ; attempt++ {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		if err := m.RunMigrations(ctx); err != nil {
			log.Printf("⚠️  第 %d 次重试数据库迁移失败: %v", attempt, err)
			continue
		}
		if onReady != nil {
			onReady(ctx)
		}
		return
	}
}

func (m *MigrationService) ensureTable(ctx context.Context, table string) error {
	exists, err := m.tableExists(ctx, table)
	if err != nil {
		return err
	}
	if exists {
		log.Printf("  ✓ %s 表已存在，跳过迁移", table)
		return nil
	}

	ddl, ok := tableDDL[table][m.dialect]
	if !ok {
		return fmt.Errorf("不支持的数据库类型: %s", m.dialect)
	}
	log.Printf("  → 创建 %s 表...", table)
	if _, err := m.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("创建 %s 表失败: %w", table, err)
	}
	return nil
}

// tableExists 检查表是否已存在
func (m *MigrationService) tableExists(ctx context.Context, tableName string) (bool, error) {
	var query string

	switch m.dialect {
	case dialect.MySQL:
		query = `
			SELECT COUNT(*)
			FROM INFORMATION_SCHEMA.TABLES
			WHERE TABLE_SCHEMA = DATABASE()
			AND TABLE_NAME = ?
		`
	case dialect.Postgres:
		query = `
			SELECT COUNT(*)
			FROM information_schema.tables
			WHERE table_name = $1
		`
	case dialect.SQLite:
		query = `
			SELECT COUNT(*)
			FROM sqlite_master
			WHERE type = 'table' AND name = ?
		`
	default:
		return false, fmt.Errorf("不支持的数据库类型: %s", m.dialect)
	}

	var count int
	if err := m.db.QueryRowContext(ctx, query, tableName).Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}
