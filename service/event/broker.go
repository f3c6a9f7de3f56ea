/*
 * @module service/event/broker
 * @description SSE事件广播，管理前端连接并推送数据集生命周期事件
 * @architecture 事件驱动架构 - 内存连接表 + 每连接缓冲通道
 * @stateFlow 建立连接 -> 事件广播 -> 写入连接通道 -> 控制器推送 -> 断开连接
 * @rules 通道满时丢弃该连接的事件，不阻塞发布者
 * @dependencies log/slog
 * @refs api/controllers/event_controller
 */

package event

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

const clientBuffer = 100

// SSEClient SSE客户端连接
type SSEClient struct {
	ID          string
	ClientIP    string
	ConnectedAt time.Time
	Channel     chan Event
	Done        chan struct{}
}

// Broker SSE广播器
type Broker struct {
	mu          sync.RWMutex
	connections map[string]*SSEClient
}

// NewBroker 创建广播器
func NewBroker() *Broker {
	return &Broker{connections: make(map[string]*SSEClient)}
}

// AddSSEConnection 添加SSE连接
func (b *Broker) AddSSEConnection(connectionID, clientIP string) *SSEClient {
	client := &SSEClient{
		ID:          connectionID,
		ClientIP:    clientIP,
		ConnectedAt: time.Now(),
		Channel:     make(chan Event, clientBuffer),
		Done:        make(chan struct{}),
	}

	b.mu.Lock()
	b.connections[connectionID] = client
	b.mu.Unlock()

	slog.Info("SSE连接已建立", "connection_id", connectionID, "client_ip", clientIP)
	return client
}

// RemoveSSEConnection 移除SSE连接
func (b *Broker) RemoveSSEConnection(connectionID string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if client, ok := b.connections[connectionID]; ok {
		close(client.Done)
		delete(b.connections, connectionID)
		slog.Info("SSE连接已断开", "connection_id", connectionID)
	}
}

// Publish 广播事件给所有连接
func (b *Broker) Publish(_ context.Context, evt Event) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, client := range b.connections {
		select {
		case client.Channel <- evt:
		default:
			slog.Warn("SSE连接事件队列已满，跳过发送", "connection_id", client.ID, "event_type", evt.Type)
		}
	}
	return nil
}

// ConnectionCount 当前连接数
func (b *Broker) ConnectionCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.connections)
}

// Close 断开全部连接
func (b *Broker) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for id, client := range b.connections {
		close(client.Done)
		delete(b.connections, id)
	}
}
