/*
 * @module service/models/pipeline
 * @description 流水线运行记录与数据集装载状态模型
 * @architecture 数据模型层
 * @stateFlow running -> success / failed
 * @dependencies gorm.io/gorm, github.com/google/uuid, time
 * @refs service/pipeline/, service/ingestion/
 */

package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// 流水线运行状态常量
const (
	RunStatusRunning = "running"
	RunStatusSuccess = "success"
	RunStatusFailed  = "failed"
)

// PipelineRun 一次特征融合+打分+决策的完整运行记录
type PipelineRun struct {
	ID             string     `gorm:"type:varchar(50);primaryKey" json:"id"`
	Status         string     `gorm:"type:varchar(20);not null;index" json:"status"`
	TriggeredBy    string     `gorm:"type:varchar(50)" json:"triggered_by"` // manual, schedule, api
	StartTime      time.Time  `json:"start_time"`
	EndTime        *time.Time `json:"end_time,omitempty"`
	Duration       int64      `json:"duration"` // 毫秒
	TotalOrders    int64      `json:"total_orders"`
	ScoredOrders   int64      `json:"scored_orders"`
	DecisionErrors int64      `json:"decision_errors"`
	MissingSources JSONBStringArray `gorm:"type:jsonb" json:"missing_sources"`
	ActionCounts   JSONB      `gorm:"type:jsonb" json:"action_counts"`
	Statistics     JSONB      `gorm:"type:jsonb" json:"statistics"`
	ErrorMessage   string     `gorm:"type:text" json:"error_message,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// TableName 指定表名
func (PipelineRun) TableName() string {
	return "pipeline_runs"
}

// BeforeCreate 创建前钩子
func (p *PipelineRun) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	return nil
}

// DatasetStatus 数据集装载状态，缺失来源不阻断流水线，仅做标记
type DatasetStatus struct {
	ID         string    `gorm:"type:varchar(50);primaryKey" json:"id"`
	Name       string    `gorm:"type:varchar(50);not null;uniqueIndex" json:"name"`
	SourceFile string    `gorm:"type:varchar(200)" json:"source_file"`
	RowCount   int64     `json:"row_count"`
	IsPresent  bool      `gorm:"default:false" json:"is_present"`
	LoadError  string    `gorm:"type:text" json:"load_error,omitempty"`
	LoadedAt   time.Time `json:"loaded_at"`
}

// TableName 指定表名
func (DatasetStatus) TableName() string {
	return "dataset_statuses"
}

// BeforeCreate 创建前钩子
func (d *DatasetStatus) BeforeCreate(tx *gorm.DB) error {
	if d.ID == "" {
		d.ID = uuid.New().String()
	}
	return nil
}
