/*
 * @module service/models/policy
 * @description 运营策略配置模型：承运商-车型映射、天气风险映射、决策阈值、自定义规则脚本、编码器工件
 * @architecture 数据模型层
 * @rules 策略表是显式可审查的配置，不允许在评分逻辑中内联硬编码；调整策略不触碰规则结构
 * @dependencies gorm.io/gorm, github.com/google/uuid, time
 * @refs service/feature/, service/decision/, service/scoring/
 */

package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CarrierMapping 承运商到车队车型的实体解析映射
// 两个数据集键空间不相交（承运商名 vs 车型名），必须通过本表显式桥接
type CarrierMapping struct {
	ID          string    `gorm:"type:varchar(50);primaryKey" json:"id"`
	Carrier     string    `gorm:"type:varchar(100);not null;uniqueIndex" json:"carrier"`
	VehicleType string    `gorm:"type:varchar(50);not null" json:"vehicle_type"`
	IsDefault   bool      `gorm:"default:false" json:"is_default"` // 未知承运商回退到的默认车型
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName 指定表名
func (CarrierMapping) TableName() string {
	return "carrier_mappings"
}

// BeforeCreate 创建前钩子
func (c *CarrierMapping) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	return nil
}

// WeatherSeverity 天气类别到风险权重的固定序数映射，未收录类别按 0 处理
type WeatherSeverity struct {
	ID        string    `gorm:"type:varchar(50);primaryKey" json:"id"`
	Weather   string    `gorm:"type:varchar(50);not null;uniqueIndex" json:"weather"`
	Severity  float64   `gorm:"not null" json:"severity"` // [0,1]
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName 指定表名
func (WeatherSeverity) TableName() string {
	return "weather_severities"
}

// BeforeCreate 创建前钩子
func (w *WeatherSeverity) BeforeCreate(tx *gorm.DB) error {
	if w.ID == "" {
		w.ID = uuid.New().String()
	}
	return nil
}

// DecisionPolicy 决策阈值策略，规则级联的可调参数
// 阈值是策略常量而非推导值，调参不改变级联结构与求值顺序
type DecisionPolicy struct {
	ID                    string    `gorm:"type:varchar(50);primaryKey" json:"id"`
	Name                  string    `gorm:"type:varchar(100);not null;uniqueIndex" json:"name"`
	DelayProbEscalate     float64   `gorm:"default:0.6" json:"delay_prob_escalate"`      // 规则1：延迟概率阈值
	RouteRiskThreshold    float64   `gorm:"default:70" json:"route_risk_threshold"`      // 规则2：路线风险阈值
	VehicleScoreThreshold float64   `gorm:"default:40" json:"vehicle_score_threshold"`   // 规则3：车辆适配性阈值
	DelayProbReassign     float64   `gorm:"default:0.4" json:"delay_prob_reassign"`      // 规则3：延迟概率阈值
	IsActive              bool      `gorm:"default:true;index" json:"is_active"`
	CreatedAt             time.Time `json:"created_at"`
	UpdatedAt             time.Time `json:"updated_at"`
}

// TableName 指定表名
func (DecisionPolicy) TableName() string {
	return "decision_policies"
}

// BeforeCreate 创建前钩子
func (d *DecisionPolicy) BeforeCreate(tx *gorm.DB) error {
	if d.ID == "" {
		d.ID = uuid.New().String()
	}
	return nil
}

// ScriptRule 运营方自定义的脚本规则，在内置级联第4条之后、默认分支之前按优先级求值
type ScriptRule struct {
	ID            string    `gorm:"type:varchar(50);primaryKey" json:"id"`
	Name          string    `gorm:"type:varchar(100);not null" json:"name"`
	Script        string    `gorm:"type:text;not null" json:"script"` // 必须提供 Match(record map[string]interface{}) (bool, error)
	Priority      int       `gorm:"default:0;index" json:"priority"`  // 数值小者先求值
	Action        string    `gorm:"type:varchar(100);not null" json:"action"`
	Reason        string    `gorm:"type:varchar(200)" json:"reason"`
	CostImpact    string    `gorm:"type:varchar(50)" json:"cost_impact"`
	ServiceImpact string    `gorm:"type:varchar(100)" json:"service_impact"`
	IsEnabled     bool      `gorm:"default:true" json:"is_enabled"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// TableName 指定表名
func (ScriptRule) TableName() string {
	return "script_rules"
}

// BeforeCreate 创建前钩子
func (s *ScriptRule) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	return nil
}

// EncoderArtifact 版本化的类别编码器工件
// 训练侧与推理侧共享同一份编码表，避免模块级隐式状态造成编码漂移
type EncoderArtifact struct {
	ID        string    `gorm:"type:varchar(50);primaryKey" json:"id"`
	Version   string    `gorm:"type:varchar(50);not null;uniqueIndex" json:"version"`
	Mappings  JSONB     `gorm:"type:jsonb;not null" json:"mappings"` // column -> {category -> code}
	IsActive  bool      `gorm:"default:false;index" json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName 指定表名
func (EncoderArtifact) TableName() string {
	return "encoder_artifacts"
}

// BeforeCreate 创建前钩子
func (e *EncoderArtifact) BeforeCreate(tx *gorm.DB) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	return nil
}

// ExportApiKey 导出/共享接口的 API 密钥，仅保存 bcrypt 哈希
type ExportApiKey struct {
	ID         string     `gorm:"type:varchar(50);primaryKey" json:"id"`
	Name       string     `gorm:"type:varchar(100);not null" json:"name"`
	KeyHash    string     `gorm:"type:varchar(100);not null" json:"-"`
	KeyPrefix  string     `gorm:"type:varchar(20);not null;index" json:"key_prefix"`
	IsEnabled  bool       `gorm:"default:true" json:"is_enabled"`
	LastUsedAt *time.Time `json:"last_used_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

// TableName 指定表名
func (ExportApiKey) TableName() string {
	return "export_api_keys"
}

// BeforeCreate 创建前钩子
func (k *ExportApiKey) BeforeCreate(tx *gorm.DB) error {
	if k.ID == "" {
		k.ID = uuid.New().String()
	}
	return nil
}
