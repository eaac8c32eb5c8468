package database

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"entgo.io/ent/dialect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anzhiyu-c/anheyu-atelier/pkg/config"
)

func TestDialectOf(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "mysql", want: dialect.MySQL},
		{in: "mariadb", want: dialect.MySQL},
		{in: "postgres", want: dialect.Postgres},
		{in: "sqlite", want: dialect.SQLite},
		{in: "oracle", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := DialectOf(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMigrationsAreIdempotent(t *testing.T) {
	db, err := OpenSQLite(filepath.Join(t.TempDir(), "migrate.db"))
	require.NoError(t, err)
	defer db.Close()

	m := NewMigrationService(db, dialect.SQLite)
	ctx := context.Background()
	require.NoError(t, m.RunMigrations(ctx))
	require.NoError(t, m.RunMigrations(ctx))

	for _, table := range []string{TableCmsSnapshots, TableContactSubmissions} {
		exists, err := m.tableExists(ctx, table)
		require.NoError(t, err)
		assert.True(t, exists, table)
	}
}

func TestRetryUntilReady(t *testing.T) {
	t.Run("迁移成功后回调", func(t *testing.T) {
		db, err := OpenSQLite(filepath.Join(t.TempDir(), "retry.db"))
		require.NoError(t, err)
		defer db.Close()

		ready := make(chan struct{})
		go NewMigrationService(db, dialect.SQLite).RetryUntilReady(context.Background(), 10*time.Millisecond, func(context.Context) {
			close(ready)
		})

		select {
		case <-ready:
		case <-time.After(2 * time.Second):
			t.Fatal("迁移成功后没有调用回调")
		}
	})

	t.Run("取消后不再重试", func(t *testing.T) {
		db, err := OpenSQLite(filepath.Join(t.TempDir(), "closed.db"))
		require.NoError(t, err)
		// 连接已关闭，迁移会一直失败
		require.NoError(t, db.Close())

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()

		called := false
		done := make(chan struct{})
		go func() {
			NewMigrationService(db, dialect.SQLite).RetryUntilReady(ctx, 5*time.Millisecond, func(context.Context) { called = true })
			close(done)
		}()

		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("ctx 取消后仍在重试")
		}
		assert.False(t, called)
	})
}

func newTestConfig(t *testing.T, body string) *config.Config {
	t.Helper()
	path := filepath.Join(t.TempDir(), "conf.ini")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	cfg, err := config.NewConfigFromFile(path)
	require.NoError(t, err)
	return cfg
}

func TestRedisOptions(t *testing.T) {
	t.Run("未配置地址", func(t *testing.T) {
		opts, err := RedisOptions(newTestConfig(t, "[Redis]\nAddr =\n"))
		require.NoError(t, err)
		assert.Nil(t, opts)
	})

	t.Run("完整配置", func(t *testing.T) {
		opts, err := RedisOptions(newTestConfig(t, "[Redis]\nAddr = 127.0.0.1:6379\nPassword = secret\nDB = 3\n"))
		require.NoError(t, err)
		require.NotNil(t, opts)
		assert.Equal(t, "127.0.0.1:6379", opts.Addr)
		assert.Equal(t, "secret", opts.Password)
		assert.Equal(t, 3, opts.DB)
	})

	t.Run("DB 无效", func(t *testing.T) {
		_, err := RedisOptions(newTestConfig(t, "[Redis]\nAddr = 127.0.0.1:6379\nDB = zece\n"))
		assert.Error(t, err)
	})
}
