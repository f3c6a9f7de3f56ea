/*
 * @module service/monitoring/health
 * @description 健康检查器，汇总各组件的检查结果
 * @architecture 分层架构 - 基础设施层
 * @stateFlow 注册检查项 -> 并发执行(带超时) -> 汇总状态
 * @rules 任一必需组件失败时整体为critical，非必需组件失败时为warning
 * @dependencies context, sync
 * @refs api/controllers/health_controller
 */

package monitoring

import (
	"context"
	"sort"
	"sync"
	"time"
)

// 健康状态
const (
	StatusHealthy  = "healthy"
	StatusWarning  = "warning"
	StatusCritical = "critical"
)

// CheckFunc 组件检查函数
type CheckFunc func(ctx context.Context) error

// HealthStatus 整体健康状态
type HealthStatus struct {
	Overall    string                      `json:"overall"`
	Timestamp  time.Time                   `json:"timestamp"`
	Components map[string]*ComponentHealth `json:"components"`
}

// ComponentHealth 组件健康状态
type ComponentHealth struct {
	Name         string        `json:"name"`
	Status       string        `json:"status"`
	Required     bool          `json:"required"`
	ResponseTime time.Duration `json:"response_time"`
	ErrorMessage string        `json:"error_message,omitempty"`
}

type check struct {
	name     string
	required bool
	fn       CheckFunc
}

// HealthChecker 健康检查器
type HealthChecker struct {
	mu      sync.RWMutex
	checks  []check
	timeout time.Duration
}

// NewHealthChecker 创建健康检查器
func NewHealthChecker(timeout time.Duration) *HealthChecker {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &HealthChecker{timeout: timeout}
}

// Register 注册检查项
func (h *HealthChecker) Register(name string, required bool, fn CheckFunc) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.checks = append(h.checks, check{name: name, required: required, fn: fn})
}

// CheckOverallHealth 执行全部检查
func (h *HealthChecker) CheckOverallHealth(ctx context.Context) *HealthStatus {
	h.mu.RLock()
	checks := append([]check(nil), h.checks...)
	h.mu.RUnlock()

	status := &HealthStatus{
		Overall:    StatusHealthy,
		Timestamp:  time.Now(),
		Components: make(map[string]*ComponentHealth, len(checks)),
	}

	results := make([]*ComponentHealth, len(checks))
	var wg sync.WaitGroup
	for i, c := range checks {
		wg.Add(1)
		go func(i int, c check) {
			defer wg.Done()
			cctx, cancel := context.WithTimeout(ctx, h.timeout)
			defer cancel()

			start := time.Now()
			err := c.fn(cctx)
			res := &ComponentHealth{
				Name:         c.name,
				Status:       StatusHealthy,
				Required:     c.required,
				ResponseTime: time.Since(start),
			}
			if err != nil {
				res.ErrorMessage = err.Error()
				res.Status = StatusWarning
				if c.required {
					res.Status = StatusCritical
				}
			}
			results[i] = res
		}(i, c)
	}
	wg.Wait()

	sort.SliceStable(results, func(i, j int) bool { return results[i].Name < results[j].Name })
	for _, res := range results {
		status.Components[res.Name] = res
		switch {
		case res.Status == StatusCritical:
			status.Overall = StatusCritical
		case res.Status == StatusWarning && status.Overall == StatusHealthy:
			status.Overall = StatusWarning
		}
	}
	return status
}

// Healthy 整体是否可用
func (s *HealthStatus) Healthy() bool {
	return s.Overall != StatusCritical
}
