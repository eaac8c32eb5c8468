/*
 * @Description: 按日期刷新展览状态的定时任务
 * @Author: 安知鱼
 * @Date: 2025-09-16 17:58:12
 * @LastEditTime: 2025-09-16 18:31:47
 * @LastEditors: 安知鱼
 */
package task

import (
	"log/slog"
	"time"

	"github.com/anzhiyu-c/anheyu-atelier/internal/pkg/utils"
	"github.com/anzhiyu-c/anheyu-atelier/pkg/domain/model"
	"github.com/anzhiyu-c/anheyu-atelier/pkg/service/cms"
	"github.com/anzhiyu-c/anheyu-atelier/pkg/service/gallery"
)

// ExpositionStatusJob 根据开始与结束日期更新展览的 upcoming/current/archived 状态，
// 只有状态发生变化时才提交修改
type ExpositionStatusJob struct {
	store  *cms.Store
	logger *slog.Logger
	// loc 决定"今天"是哪一天，展览日期没有时区信息
	loc *time.Location
	now func() time.Time
}

func NewExpositionStatusJob(store *cms.Store, logger *slog.Logger, loc *time.Location) *ExpositionStatusJob {
	if loc == nil {
		loc = time.UTC
	}
	return &ExpositionStatusJob{
		store:  store,
		logger: logger,
		loc:    loc,
		now:    time.Now,
	}
}

// Name 返回任务名称
func (j *ExpositionStatusJob) Name() string {
	return "ExpositionStatusJob"
}

// Run 执行一次状态刷新
func (j *ExpositionStatusJob) Run() {
	if status := j.store.Status(); status != cms.StatusReady {
		j.logger.Warn("存储未就绪，跳过展览状态刷新", slog.String("status", string(status)))
		return
	}
	data := j.store.Data()
	if data == nil {
		return
	}

	today := j.now().In(j.loc)
	changed := statusChanges(data.Expositions, today)
	if len(changed) == 0 {
		j.logger.Info("展览状态无需更新")
		return
	}

	err := j.store.UpdateExpositions(func(expositions []model.Exposition) []model.Exposition {
		for i := range expositions {
			if status, ok := changed[expositions[i].ID]; ok {
				expositions[i].Status = status
			}
		}
		return expositions
	})
	if err != nil {
		j.logger.Error("更新展览状态失败", slog.Any("error", err))
		return
	}
	j.logger.Info("展览状态已更新", slog.Int("count", len(changed)), slog.String("date", utils.DateIn(today, j.loc)))
}

func statusChanges(expositions []model.Exposition, day time.Time) map[string]string {
	changed := make(map[string]string)
	for _, expo := range expositions {
		if status := gallery.ExpositionStatusOn(expo, day); status != expo.Status {
			changed[expo.ID] = status
		}
	}
	return changed
}
