/*
 * @module service/models/master
 * @description 主数据集模型，七源融合后的每订单视图，含派生特征、模型概率与决策建议
 * @architecture 数据模型层
 * @stateFlow 特征构建 -> 主表装配 -> 模型打分 -> 决策标注 -> 持久化
 * @rules 订单源中的每个 Order_ID 在主表中有且仅有一条记录，缺失来源以空值/插补值表示
 * @dependencies gorm.io/gorm, time
 * @refs service/assembler/, service/decision/
 */

package models

import (
	"time"
)

// MasterRecord 融合后的每订单主记录
// 可空特征使用指针表示"该来源缺失"，与插补后的数值区分开
type MasterRecord struct {
	ID      string `gorm:"column:id;type:varchar(50);primaryKey" json:"id"`
	RunID   string `gorm:"column:run_id;type:varchar(50);index" json:"run_id"`
	OrderID string `gorm:"column:order_id;type:varchar(50);index" json:"Order_ID"`

	// 订单基础属性
	Origin          string    `gorm:"column:origin;type:varchar(100);index" json:"Origin"`
	Destination     string    `gorm:"column:destination;type:varchar(100)" json:"Destination"`
	Priority        string    `gorm:"column:priority;type:varchar(30)" json:"Priority"`
	ProductCategory string    `gorm:"column:product_category;type:varchar(100)" json:"Product_Category"`
	CustomerSegment string    `gorm:"column:customer_segment;type:varchar(50)" json:"Customer_Segment"`
	OrderValueINR   float64   `gorm:"column:order_value_inr" json:"Order_Value_INR"`
	OrderDate       time.Time `gorm:"column:order_date" json:"Order_Date"`
	OrderDOW        int       `gorm:"column:order_dow" json:"order_dow"`
	OrderMonth      int       `gorm:"column:order_month" json:"order_month"`

	// 配送特征
	PromisedDeliveryDays *float64 `gorm:"column:promised_delivery_days" json:"Promised_Delivery_Days,omitempty"`
	ActualDeliveryDays   *float64 `gorm:"column:actual_delivery_days" json:"Actual_Delivery_Days,omitempty"`
	Carrier              string   `gorm:"column:carrier;type:varchar(100)" json:"Carrier,omitempty"`
	DelayDays            *float64 `gorm:"column:delay_days" json:"delay_days,omitempty"`
	IsDelayed            *bool    `gorm:"column:is_delayed" json:"is_delayed,omitempty"`

	// 路线特征
	DistanceKM          *float64 `gorm:"column:distance_km" json:"Distance_KM,omitempty"`
	TrafficDelayMinutes *float64 `gorm:"column:traffic_delay_minutes" json:"Traffic_Delay_Minutes,omitempty"`
	WeatherImpact       string   `gorm:"column:weather_impact;type:varchar(50)" json:"Weather_Impact,omitempty"`
	RouteRiskScore      *float64 `gorm:"column:route_risk_score" json:"route_risk_score,omitempty"`

	// 车辆特征（经承运商映射解析）
	VehicleType             string   `gorm:"column:vehicle_type;type:varchar(50)" json:"vehicle_type,omitempty"`
	VehicleAgeYears         *float64 `gorm:"column:vehicle_age_years" json:"vehicle_age_years,omitempty"`
	VehicleFuelEfficiency   *float64 `gorm:"column:vehicle_fuel_efficiency" json:"vehicle_fuel_efficiency,omitempty"`
	VehicleCapacityKG       *float64 `gorm:"column:vehicle_capacity_kg" json:"vehicle_capacity_kg,omitempty"`
	VehicleEmissions        *float64 `gorm:"column:vehicle_emissions" json:"vehicle_emissions,omitempty"`
	VehicleSuitabilityScore *float64 `gorm:"column:vehicle_suitability_score" json:"vehicle_suitability_score,omitempty"`

	// 客户特征：段级聚合对全部订单可用，不满风险标记仅对有直接反馈的订单可用
	SegmentAvgRating    *float64 `gorm:"column:segment_avg_rating" json:"segment_avg_rating,omitempty"`
	SegmentRecommendPct *float64 `gorm:"column:segment_recommend_pct" json:"segment_recommend_pct,omitempty"`
	DissatisfactionRisk *bool    `gorm:"column:dissatisfaction_risk" json:"customer_dissatisfaction_risk,omitempty"`

	// 成本特征
	TotalCost      *float64 `gorm:"column:total_cost" json:"total_cost,omitempty"`
	CostComponents JSONB    `gorm:"column:cost_components;type:jsonb" json:"cost_components,omitempty"`

	// 模型概率（外部打分服务提供）
	DelayProbability        *float64 `gorm:"column:delay_probability" json:"delay_probability,omitempty"`
	CustomerRiskProbability *float64 `gorm:"column:customer_risk_probability" json:"customer_risk_probability,omitempty"`

	// 决策建议
	Action        string `gorm:"column:action;type:varchar(50);index" json:"Action,omitempty"`
	Reason        string `gorm:"column:reason;type:varchar(200)" json:"Reason,omitempty"`
	CostImpact    string `gorm:"column:cost_impact;type:varchar(50)" json:"Cost_Impact,omitempty"`
	ServiceImpact string `gorm:"column:service_impact;type:varchar(100)" json:"Service_Impact,omitempty"`
	DecisionError string `gorm:"column:decision_error;type:text" json:"decision_error,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// TableName 指定表名
func (MasterRecord) TableName() string {
	return "master_records"
}

// HasValidProbabilities 判断模型概率是否齐备且在 [0,1] 区间内
// 概率缺失或越界时，依赖概率的决策规则必须拒绝执行
func (m *MasterRecord) HasValidProbabilities() bool {
	if m.DelayProbability == nil || m.CustomerRiskProbability == nil {
		return false
	}
	if *m.DelayProbability < 0 || *m.DelayProbability > 1 {
		return false
	}
	if *m.CustomerRiskProbability < 0 || *m.CustomerRiskProbability > 1 {
		return false
	}
	return true
}
