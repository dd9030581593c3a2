/*
 * @module service/meta/decision
 * @description 决策与评分相关的元数据定义：成本列令牌、模型特征子集、默认策略常量
 * @architecture 常量层 - 元数据定义
 * @rules 成本令牌为大小写敏感的子串匹配；模型特征子集是外部打分服务的输入契约
 * @dependencies 无外部依赖
 * @refs service/feature/cost_features.go, service/scoring/
 */

package meta

// CostColumnTokens 成本列发现令牌，列名包含任一令牌即参与 total_cost 汇总（大小写敏感）
var CostColumnTokens = []string{"Cost", "Fee", "Insurance", "Overhead"}

// 延迟预测模型的输入特征子集（顺序即请求中的列顺序）
var DelayModelFeatures = []string{
	"Distance_KM",
	"route_risk_score",
	"vehicle_suitability_score",
	"Traffic_Delay_Minutes",
	"Priority",
	"Origin",
	"Product_Category",
}

// 客户风险模型的输入特征子集
var CustomerRiskModelFeatures = []string{
	"segment_avg_rating",
	"segment_recommend_pct",
	"delay_days",
	"Priority",
	"Order_Value_INR",
}

// EncodedCategoricalColumns 需要预编码为稳定数值表示的类别列
var EncodedCategoricalColumns = []string{
	"Priority",
	"Origin",
	"Destination",
	"Product_Category",
	"Customer_Segment",
	"Weather_Impact",
}

// 默认天气风险映射，未收录类别按 0 处理
var DefaultWeatherSeverities = map[string]float64{
	"Clear":  0,
	"Cloudy": 0.2,
	"Rain":   0.5,
	"Fog":    0.7,
	"Storm":  1.0,
}

// 默认承运商-车型映射与默认回退车型
var DefaultCarrierMappings = map[string]string{
	"GlobalTransit":   "Large_Truck",
	"Speedy":          "Express_Bike",
	"EcoDeliver":      "Small_Van",
	"ReliableExpress": "Medium_Truck",
}

// DefaultVehicleType 未收录承运商回退到的车型
const DefaultVehicleType = "Medium_Truck"

// VehicleAgeCeilingYears 车龄评分上限，超过该车龄的车辆年龄分量恒为 0
const VehicleAgeCeilingYears = 15.0

// 路线风险综合评分权重
const (
	RouteTrafficWeight = 0.6
	RouteWeatherWeight = 0.4
)

// DissatisfactionRatingCeiling 评分小于等于该值视为不满（含边界）
const DissatisfactionRatingCeiling = 3.0
