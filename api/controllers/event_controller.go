/*
 * @module api/controllers/event_controller
 * @description 事件控制器，通过SSE向前端推送数据集加载、加载失败与导出事件
 * @architecture 事件驱动架构 - 控制器层
 * @stateFlow 建立连接 -> 发送connected -> 循环推送事件 -> 客户端断开/服务关闭
 * @rules 每个连接独立缓冲；客户端断开时立即释放连接
 * @dependencies service/event, github.com/google/uuid
 * @refs api/routes.go
 */

package controllers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"sales-dashboard-service/service"
	"sales-dashboard-service/service/event"
	"sales-dashboard-service/service/monitoring"
)

// EventController 事件控制器
type EventController struct {
	broker  *event.Broker
	metrics *monitoring.Metrics
}

// NewEventController 创建事件控制器实例
func NewEventController() *EventController {
	return &EventController{
		broker:  service.GlobalBroker,
		metrics: service.GlobalMetrics,
	}
}

// HandleSSE 处理SSE连接
// @Summary 订阅数据集事件
// @Description 前端通过此接口建立SSE连接，接收dataset.loaded、dataset.load_failed、export.generated事件
// @Tags 事件
// @Success 200 {string} string "SSE事件流"
// @Router /sse/dataset [get]
func (c *EventController) HandleSSE(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "当前连接不支持流式响应", http.StatusInternalServerError)
		return
	}

	// 设置SSE响应头
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	connectionID := uuid.New().String()
	clientIP := r.RemoteAddr
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		clientIP = forwarded
	}

	client := c.broker.AddSSEConnection(connectionID, clientIP)
	c.metrics.SSEConnected(1)
	defer func() {
		c.broker.RemoveSSEConnection(connectionID)
		c.metrics.SSEConnected(-1)
	}()

	fmt.Fprintf(w, "data: {\"type\":\"connected\",\"connection_id\":\"%s\",\"timestamp\":\"%s\"}\n\n",
		connectionID, time.Now().Format(time.RFC3339))
	flusher.Flush()

	for {
		select {
		case evt := <-client.Channel:
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", evt.Type, toJSON(evt))
			flusher.Flush()

		case <-client.Done:
			return

		case <-r.Context().Done():
			return
		}
	}
}

func toJSON(v interface{}) string {
	data, _ := json.Marshal(v)
	return string(data)
}
