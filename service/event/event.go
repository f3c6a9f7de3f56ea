/*
 * @module service/event/event
 * @description 数据集生命周期事件定义与发布接口
 * @architecture 事件驱动架构 - 发布者接口，SSE与Kafka两种实现
 * @rules 发布失败只记录日志，不影响主流程
 * @dependencies github.com/google/uuid
 * @refs service/dashboard, api/controllers/event_controller
 */

package event

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// 事件类型
const (
	TypeDatasetLoaded     = "dataset.loaded"
	TypeDatasetLoadFailed = "dataset.load_failed"
	TypeExportGenerated   = "export.generated"
)

// Event 事件
type Event struct {
	ID        string                 `json:"id"`
	Type      string                 `json:"event_type"`
	Data      map[string]interface{} `json:"data"`
	CreatedAt time.Time              `json:"created_at"`
}

// New 创建事件
func New(eventType string, data map[string]interface{}) Event {
	if data == nil {
		data = map[string]interface{}{}
	}
	return Event{
		ID:        uuid.New().String(),
		Type:      eventType,
		Data:      data,
		CreatedAt: time.Now(),
	}
}

// Publisher 事件发布者
type Publisher interface {
	Publish(ctx context.Context, evt Event) error
}

// Multi 依次发布到多个发布者，汇总错误
type Multi []Publisher

func (m Multi) Publish(ctx context.Context, evt Event) error {
	var errs []error
	for _, p := range m {
		if p == nil {
			continue
		}
		if err := p.Publish(ctx, evt); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Emit 发布事件，失败时记录日志
func Emit(ctx context.Context, p Publisher, evt Event) {
	if p == nil {
		return
	}
	if err := p.Publish(ctx, evt); err != nil {
		slog.Warn("事件发布失败", "event_type", evt.Type, "event_id", evt.ID, "error", err)
	}
}
