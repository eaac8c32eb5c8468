/*
 * @Description:
 * @Author: 安知鱼
 * @Date: 2025-07-12 16:09:46
 * @LastEditTime: 2025-09-16 18:44:20
 * @LastEditors: 安知鱼
 */
package task

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/anzhiyu-c/anheyu-atelier/pkg/service/cms"

	"github.com/robfig/cron/v3"
)

// Scheduler 封装了 cron 实例和其依赖。
// 它是整个定时任务模块的核心协调者，负责任务的注册、启动和停止。
type Scheduler struct {
	cron   *cron.Cron
	logger *slog.Logger
	store  *cms.Store
	loc    *time.Location
}

// NewScheduler 是 Scheduler 的构造函数。
// cron 表达式按 loc 时区解释，loc 为 nil 时使用 UTC。
func NewScheduler(store *cms.Store, loc *time.Location) *Scheduler {
	if loc == nil {
		loc = time.UTC
	}

	// 为 logger 添加一个固定的 "system":"cron" 属性
	slogHandler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
	logger := slog.New(slogHandler).With("system", "cron")

	c := cron.New(
		cron.WithSeconds(),
		cron.WithLocation(loc),
		cron.WithChain(
			NewPanicRecoveryWrapper(logger),
			NewLoggingWrapper(logger),
			cron.SkipIfStillRunning(cron.DefaultLogger),
		),
	)

	return &Scheduler{
		cron:   c,
		logger: logger,
		store:  store,
		loc:    loc,
	}
}

// RegisterExpositionStatusJob 注册按日期刷新展览状态的任务。
// spec 使用带秒的 6 段 cron 表达式，或 @daily 这类描述符。
func (s *Scheduler) RegisterExpositionStatusJob(spec string) error {
	job := NewExpositionStatusJob(s.store, s.logger, s.loc)
	if _, err := s.cron.AddJob(spec, job); err != nil {
		s.logger.Error("Failed to add 'ExpositionStatusJob'", slog.Any("error", err))
		return fmt.Errorf("注册展览状态任务失败: %w", err)
	}
	s.logger.Info("-> Successfully registered 'ExpositionStatusJob'", "schedule", spec)
	return nil
}

// Start 启动 cron 调度器。
func (s *Scheduler) Start() {
	s.logger.Info("Cron scheduler started.", "jobs", len(s.cron.Entries()))
	s.cron.Start()
}

// Stop 优雅地停止 cron 调度器，等待正在执行的任务结束。
func (s *Scheduler) Stop() {
	s.logger.Info("Stopping cron scheduler...")
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("Cron scheduler gracefully stopped.")
}
