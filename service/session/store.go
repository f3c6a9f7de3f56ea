/*
 * @module service/session/store
 * @description 当前会话数据集的持有者，上传或重新加载时整体替换
 * @architecture 单写多读 - 读写锁保护指针替换
 * @stateFlow 空 -> 加载默认资源/上传 -> 替换 -> ...
 * @rules 加载失败不替换现有数据集；数据集本身不可变，读取方拿到的是快照
 * @dependencies service/dataset
 * @refs service/dashboard
 */

package session

import (
	"sync"
	"time"

	"sales-dashboard-service/service/dataset"
)

// Origin 数据集来源
type Origin string

const (
	OriginNone    Origin = ""
	OriginDefault Origin = "default"
	OriginUpload  Origin = "upload"
)

// Snapshot 某一时刻的会话数据集
type Snapshot struct {
	Dataset    *dataset.Dataset
	Origin     Origin
	ReplacedAt time.Time
}

// Store 会话数据集存储
type Store struct {
	mu      sync.RWMutex
	current Snapshot
}

// NewStore 创建空存储
func NewStore() *Store {
	return &Store{}
}

// Current 当前快照；尚未加载时Dataset为nil
func (s *Store) Current() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Dataset 当前数据集，尚未加载时返回空数据集
func (s *Store) Dataset() *dataset.Dataset {
	if ds := s.Current().Dataset; ds != nil {
		return ds
	}
	return dataset.Empty()
}

// Loaded 是否已有数据集
func (s *Store) Loaded() bool {
	return s.Current().Dataset != nil
}

// Replace 整体替换数据集
func (s *Store) Replace(ds *dataset.Dataset, origin Origin) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = Snapshot{Dataset: ds, Origin: origin, ReplacedAt: time.Now()}
}

// ReplaceIf 仅当当前来源符合条件时替换，用于定时刷新默认资源
func (s *Store) ReplaceIf(ds *dataset.Dataset, origin Origin, allowed func(current Origin) bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !allowed(s.current.Origin) {
		return false
	}
	s.current = Snapshot{Dataset: ds, Origin: origin, ReplacedAt: time.Now()}
	return true
}
