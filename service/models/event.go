/*
 * @module service/models/event
 * @description 事件管理相关模型定义，包括SSE事件与数据库变更监听
 * @architecture 事件驱动架构 - 数据模型层
 * @stateFlow 事件生产 -> 事件分发 -> 事件消费
 * @rules 确保事件的可靠传递和处理
 * @dependencies gorm.io/gorm, github.com/google/uuid
 * @refs service/event/, service/pipeline/
 */

package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// 事件类型常量
const (
	EventTypePipelineCompleted    = "pipeline_completed"
	EventTypePipelineFailed       = "pipeline_failed"
	EventTypeRecommendationChange = "recommendation_change"
	EventTypeSystemNotification   = "system_notification"
)

// SSEEvent SSE事件模型
type SSEEvent struct {
	ID        string                 `gorm:"type:uuid;primary_key" json:"id"`
	EventType string                 `gorm:"not null" json:"event_type"`
	UserName  string                 `gorm:"not null;index" json:"user_name"`
	Data      map[string]interface{} `gorm:"type:jsonb;not null" json:"data"`
	CreatedAt time.Time              `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	CreatedBy string                 `gorm:"not null;default:'system'" json:"created_by"`
	Sent      bool                   `gorm:"not null;default:false" json:"sent"`
	SentAt    *time.Time             `json:"sent_at"`
}

// BeforeCreate 创建前钩子
func (s *SSEEvent) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	if s.CreatedBy == "" {
		s.CreatedBy = "system"
	}
	return nil
}

// DBEventProcessor 数据库变更事件处理器
type DBEventProcessor interface {
	ProcessDBChangeEvent(changeData map[string]interface{}) error
	TableName() string
}
