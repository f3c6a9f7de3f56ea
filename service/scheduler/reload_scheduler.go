/*
 * @module service/scheduler/reload_scheduler
 * @description 默认数据集定时刷新调度器
 * @architecture 基于robfig/cron的调度器，秒级Cron表达式
 * @stateFlow 启动 -> 按Cron触发刷新 -> 停止
 * @rules 上一次刷新未完成时跳过本次触发；Cron表达式需要6个字段（秒 分 时 日 月 周）
 * @dependencies github.com/robfig/cron/v3
 * @refs service/dashboard, service/init.go
 */

package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
)

// Job 刷新任务
type Job func(ctx context.Context) error

// ReloadScheduler 定时刷新调度器
type ReloadScheduler struct {
	mu      sync.Mutex
	cron    *cron.Cron
	expr    string
	job     Job
	timeout time.Duration
	ctx     context.Context
	cancel  context.CancelFunc
	started bool
	running atomic.Bool
	runs    atomic.Int64
	skipped atomic.Int64
}

// NewReloadScheduler 创建调度器，表达式在创建时校验
func NewReloadScheduler(expr string, job Job, timeout time.Duration) (*ReloadScheduler, error) {
	if _, err := cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor).Parse(expr); err != nil {
		return nil, fmt.Errorf("Cron表达式无效 %q: %w", expr, err)
	}
	if timeout <= 0 {
		timeout = time.Minute
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &ReloadScheduler{
		cron:    cron.New(cron.WithSeconds()),
		expr:    expr,
		job:     job,
		timeout: timeout,
		ctx:     ctx,
		cancel:  cancel,
	}, nil
}

// Start 启动调度器
func (s *ReloadScheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return fmt.Errorf("调度器已经启动")
	}
	if _, err := s.cron.AddFunc(s.expr, s.trigger); err != nil {
		return fmt.Errorf("添加Cron任务失败: %w", err)
	}
	s.cron.Start()
	s.started = true
	slog.Info("默认数据集刷新调度器已启动", "cron_expression", s.expr)
	return nil
}

// Stop 停止调度器并等待正在执行的刷新结束
func (s *ReloadScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	s.cancel()
	<-s.cron.Stop().Done()
	s.started = false
	slog.Info("默认数据集刷新调度器已停止")
}

// RunNow 立即执行一次刷新
func (s *ReloadScheduler) RunNow() {
	s.trigger()
}

// Stats 执行次数与跳过次数
func (s *ReloadScheduler) Stats() (runs, skipped int64) {
	return s.runs.Load(), s.skipped.Load()
}

func (s *ReloadScheduler) trigger() {
	if !s.running.CompareAndSwap(false, true) {
		s.skipped.Add(1)
		slog.Warn("上一次刷新尚未完成，跳过本次触发")
		return
	}
	defer s.running.Store(false)

	ctx, cancel := context.WithTimeout(s.ctx, s.timeout)
	defer cancel()

	s.runs.Add(1)
	start := time.Now()
	if err := s.job(ctx); err != nil {
		slog.Error("定时刷新默认数据集失败", "error", err, "duration", time.Since(start))
		return
	}
	slog.Info("定时刷新默认数据集完成", "duration", time.Since(start))
}
