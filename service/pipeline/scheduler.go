/*
 * @module service/pipeline/scheduler
 * @description 流水线定时调度器，按 Cron 表达式周期性刷新全量评分与建议
 * @architecture 调度器模式 - cron 定时 + Redis 分布式锁防多实例重复执行
 * @stateFlow cron 触发 -> 抢锁 -> 流水线运行 -> 释放锁
 * @rules 抢锁失败说明其他实例正在刷新，本次静默跳过；锁不可用时降级为无锁执行
 * @dependencies github.com/robfig/cron/v3, logistics-intel-service/service/distributed_lock
 * @refs service/pipeline/pipeline_service.go, service/init.go
 */

package pipeline

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/robfig/cron/v3"

	"logistics-intel-service/service/distributed_lock"
)

// 调度锁配置
const (
	refreshLockKey = "pipeline_refresh"
	refreshLockTTL = 30 * time.Minute
)

// PipelineScheduler 流水线定时调度器
type PipelineScheduler struct {
	cron     *cron.Cron
	service  *PipelineService
	lock     distributed_lock.DistributedLock
	cronSpec string
}

// NewPipelineScheduler 创建流水线定时调度器
// lock 为 nil 时退化为单实例模式（无锁执行）
func NewPipelineScheduler(service *PipelineService, lock distributed_lock.DistributedLock) *PipelineScheduler {
	cronSpec := os.Getenv("PIPELINE_REFRESH_CRON")
	if cronSpec == "" {
		// 默认每 6 小时刷新一次
		cronSpec = "0 0 */6 * * *"
	}

	return &PipelineScheduler{
		cron:     cron.New(cron.WithSeconds()),
		service:  service,
		lock:     lock,
		cronSpec: cronSpec,
	}
}

// Start 启动调度器
func (s *PipelineScheduler) Start() error {
	if _, err := s.cron.AddFunc(s.cronSpec, s.refresh); err != nil {
		return err
	}
	s.cron.Start()
	slog.Info("流水线调度器已启动", "cron", s.cronSpec)
	return nil
}

// Stop 停止调度器
func (s *PipelineScheduler) Stop() {
	if s.cron != nil {
		s.cron.Stop()
	}
	slog.Info("流水线调度器已停止")
}

// refresh 一次定时刷新
func (s *PipelineScheduler) refresh() {
	ctx, cancel := context.WithTimeout(context.Background(), refreshLockTTL)
	defer cancel()

	if s.lock != nil {
		acquired, err := s.lock.TryLock(ctx, refreshLockKey, refreshLockTTL)
		if err != nil {
			slog.Warn("获取流水线刷新锁失败，降级为无锁执行", "error", err)
		} else if !acquired {
			slog.Debug("其他实例正在执行流水线刷新，本次跳过")
			return
		} else {
			defer func() {
				if err := s.lock.Unlock(context.Background(), refreshLockKey); err != nil {
					slog.Warn("释放流水线刷新锁失败", "error", err)
				}
			}()
		}
	}

	run, err := s.service.RunPipeline(ctx, "schedule")
	if err != nil {
		slog.Error("定时流水线刷新失败", "error", err)
		return
	}
	slog.Info("定时流水线刷新完成", "run_id", run.ID, "total_orders", run.TotalOrders)
}
